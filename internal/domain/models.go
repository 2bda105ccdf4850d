// Package domain holds the local data model the sync pipelines write into.
// Every entity is keyed by its natural code from the gestionale; sync never
// assigns surrogate keys to catalog records.
package domain

import "time"

// Product is the local catalog record produced from one external article row.
// Monetary and rate fields are kept as decimal strings exactly as extracted;
// the POS front-end owns formatting and arithmetic.
type Product struct {
	Code                string  `json:"code"`
	Description         string  `json:"description"`
	Barcode             *string `json:"barcode"`
	Price               string  `json:"price"`
	VATRate             string  `json:"vatRate"`
	Discount1           string  `json:"discount1"`
	Discount2           string  `json:"discount2"`
	Discount3           string  `json:"discount3"`
	Discount4           string  `json:"discount4"`
	DepartmentCode      *string `json:"departmentCode"`
	CategoryCode        *string `json:"categoryCode"`
	CategoryDescription *string `json:"categoryDescription"`
	LotManaged          bool    `json:"lotManaged"`
	ActivationDate      *string `json:"activationDate"`
}

// Customer is the local registry record for one external account row of
// customer type.
type Customer struct {
	Code        string  `json:"code"`
	Name        string  `json:"name"`
	VATNumber   *string `json:"vatNumber"`
	FiscalCode  *string `json:"fiscalCode"`
	SDICode     *string `json:"sdiCode"`
	Address     *string `json:"address"`
	City        *string `json:"city"`
	Province    *string `json:"province"`
	Country     *string `json:"country"`
	PaymentCode *string `json:"paymentCode"`
}

// PaymentMethodType classifies a payment method for the POS tender screen.
type PaymentMethodType string

const (
	PaymentTypeCash    PaymentMethodType = "cash"
	PaymentTypeCard    PaymentMethodType = "card"
	PaymentTypeDigital PaymentMethodType = "digital"
	PaymentTypeVoucher PaymentMethodType = "voucher"
	PaymentTypeOther   PaymentMethodType = "other"
)

// PaymentMethod is the local tender record. Type is inferred from the
// description by keyword heuristics, not read from the gestionale.
type PaymentMethod struct {
	Code        string            `json:"code"`
	Description string            `json:"description"`
	Type        PaymentMethodType `json:"type"`
}

// SyncTableNames carries per-domain source table overrides. A non-empty
// value is a pattern where the literal token {companyCode} is replaced with
// the company code at resolution time.
type SyncTableNames struct {
	Products       string `json:"products,omitempty" yaml:"products"`
	Customers      string `json:"customers,omitempty" yaml:"customers"`
	PaymentMethods string `json:"paymentMethods,omitempty" yaml:"payment_methods"`
}

// ConfigOptions is the free-form settings bag attached to an external
// database configuration. Encrypt and TrustServerCertificate are pointers so
// that "absent" keeps the transport defaults (encrypt on, certificate
// validation off, as the self-signed legacy servers require).
type ConfigOptions struct {
	Port                      int            `json:"port,omitempty"`
	Encrypt                   *bool          `json:"encrypt,omitempty"`
	TrustServerCertificate    *bool          `json:"trustServerCertificate,omitempty"`
	SyncTableNames            SyncTableNames `json:"syncTableNames,omitempty"`
	DefaultCompanyCodeForSync string         `json:"defaultCompanyCodeForSync,omitempty"`
}

// ExternalDBConfig is one saved connection to a gestionale instance.
// At most one configuration is active at any time; activation is mutually
// exclusive and enforced by the store in a single transaction.
type ExternalDBConfig struct {
	ID        string        `json:"id"`
	Name      string        `json:"name"`
	Driver    string        `json:"driver"` // informational; transport is always MS SQL Server
	Server    string        `json:"server"`
	Database  string        `json:"database"`
	Username  string        `json:"username"`
	Password  string        `json:"password"`
	Options   ConfigOptions `json:"options"`
	IsActive  bool          `json:"isActive"`
	LastSync  *time.Time    `json:"lastSync"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

// SyncRun is one recorded sync invocation, kept for the admin history view.
type SyncRun struct {
	ID         string     `json:"id"`
	Domain     string     `json:"domain"`
	ConfigID   string     `json:"configId"`
	Status     string     `json:"status"` // "success" | "failure"
	Extracted  int        `json:"extracted"`
	Updated    int        `json:"updated"`
	Skipped    int        `json:"skipped"`
	Error      string     `json:"error,omitempty"`
	StartedAt  time.Time  `json:"startedAt"`
	FinishedAt *time.Time `json:"finishedAt"`
}
