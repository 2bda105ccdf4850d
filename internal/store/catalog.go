package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/gestpos/gestsync/internal/domain"
)

// UpsertProduct inserts the product or, on a code conflict, updates every
// column except the key itself. updated_at is refreshed either way.
func (s *Store) UpsertProduct(ctx context.Context, p domain.Product) error {
	if p.Code == "" {
		return fmt.Errorf("store: product code is required")
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO products (
			code, description, barcode, price, vat_rate,
			discount1, discount2, discount3, discount4,
			department_code, category_code, category_description,
			lot_managed, activation_date
		) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?)
		ON CONFLICT(code) DO UPDATE SET
			description          = excluded.description,
			barcode              = excluded.barcode,
			price                = excluded.price,
			vat_rate             = excluded.vat_rate,
			discount1            = excluded.discount1,
			discount2            = excluded.discount2,
			discount3            = excluded.discount3,
			discount4            = excluded.discount4,
			department_code      = excluded.department_code,
			category_code        = excluded.category_code,
			category_description = excluded.category_description,
			lot_managed          = excluded.lot_managed,
			activation_date      = excluded.activation_date,
			updated_at           = strftime('%Y-%m-%dT%H:%M:%fZ','now')
	`, p.Code, p.Description, p.Barcode, p.Price, p.VATRate,
		p.Discount1, p.Discount2, p.Discount3, p.Discount4,
		p.DepartmentCode, p.CategoryCode, p.CategoryDescription,
		boolToInt(p.LotManaged), p.ActivationDate)
	if err != nil {
		return fmt.Errorf("store: upsert product %q: %w", p.Code, err)
	}
	return nil
}

// UpsertCustomer inserts or updates a customer keyed by code.
func (s *Store) UpsertCustomer(ctx context.Context, c domain.Customer) error {
	if c.Code == "" {
		return fmt.Errorf("store: customer code is required")
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO customers (
			code, name, vat_number, fiscal_code, sdi_code,
			address, city, province, country, payment_code
		) VALUES (?,?,?,?,?,?,?,?,?,?)
		ON CONFLICT(code) DO UPDATE SET
			name         = excluded.name,
			vat_number   = excluded.vat_number,
			fiscal_code  = excluded.fiscal_code,
			sdi_code     = excluded.sdi_code,
			address      = excluded.address,
			city         = excluded.city,
			province     = excluded.province,
			country      = excluded.country,
			payment_code = excluded.payment_code,
			updated_at   = strftime('%Y-%m-%dT%H:%M:%fZ','now')
	`, c.Code, c.Name, c.VATNumber, c.FiscalCode, c.SDICode,
		c.Address, c.City, c.Province, c.Country, c.PaymentCode)
	if err != nil {
		return fmt.Errorf("store: upsert customer %q: %w", c.Code, err)
	}
	return nil
}

// UpsertPaymentMethod inserts or updates a payment method keyed by code.
func (s *Store) UpsertPaymentMethod(ctx context.Context, m domain.PaymentMethod) error {
	if m.Code == "" {
		return fmt.Errorf("store: payment method code is required")
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO payment_methods (code, description, type)
		VALUES (?,?,?)
		ON CONFLICT(code) DO UPDATE SET
			description = excluded.description,
			type        = excluded.type,
			updated_at  = strftime('%Y-%m-%dT%H:%M:%fZ','now')
	`, m.Code, m.Description, string(m.Type))
	if err != nil {
		return fmt.Errorf("store: upsert payment method %q: %w", m.Code, err)
	}
	return nil
}

// ListProducts returns the full local catalog ordered by code.
func (s *Store) ListProducts(ctx context.Context) ([]domain.Product, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT code, description, barcode, price, vat_rate,
		       discount1, discount2, discount3, discount4,
		       department_code, category_code, category_description,
		       lot_managed, activation_date
		FROM products ORDER BY code
	`)
	if err != nil {
		return nil, fmt.Errorf("store: list products: %w", err)
	}
	defer rows.Close()

	var products []domain.Product
	for rows.Next() {
		var p domain.Product
		var lot int
		if err := rows.Scan(&p.Code, &p.Description, &p.Barcode, &p.Price, &p.VATRate,
			&p.Discount1, &p.Discount2, &p.Discount3, &p.Discount4,
			&p.DepartmentCode, &p.CategoryCode, &p.CategoryDescription,
			&lot, &p.ActivationDate); err != nil {
			return nil, fmt.Errorf("store: scan product: %w", err)
		}
		p.LotManaged = lot != 0
		products = append(products, p)
	}
	return products, rows.Err()
}

// ListCustomers returns all local customers ordered by code.
func (s *Store) ListCustomers(ctx context.Context) ([]domain.Customer, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT code, name, vat_number, fiscal_code, sdi_code,
		       address, city, province, country, payment_code
		FROM customers ORDER BY code
	`)
	if err != nil {
		return nil, fmt.Errorf("store: list customers: %w", err)
	}
	defer rows.Close()

	var customers []domain.Customer
	for rows.Next() {
		var c domain.Customer
		if err := rows.Scan(&c.Code, &c.Name, &c.VATNumber, &c.FiscalCode, &c.SDICode,
			&c.Address, &c.City, &c.Province, &c.Country, &c.PaymentCode); err != nil {
			return nil, fmt.Errorf("store: scan customer: %w", err)
		}
		customers = append(customers, c)
	}
	return customers, rows.Err()
}

// ListPaymentMethods returns all local payment methods ordered by code.
func (s *Store) ListPaymentMethods(ctx context.Context) ([]domain.PaymentMethod, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT code, description, type FROM payment_methods ORDER BY code
	`)
	if err != nil {
		return nil, fmt.Errorf("store: list payment methods: %w", err)
	}
	defer rows.Close()

	var methods []domain.PaymentMethod
	for rows.Next() {
		var m domain.PaymentMethod
		var typ string
		if err := rows.Scan(&m.Code, &m.Description, &typ); err != nil {
			return nil, fmt.Errorf("store: scan payment method: %w", err)
		}
		m.Type = domain.PaymentMethodType(typ)
		methods = append(methods, m)
	}
	return methods, rows.Err()
}

// GetCustomer fetches one customer by code.
func (s *Store) GetCustomer(ctx context.Context, code string) (*domain.Customer, error) {
	var c domain.Customer
	err := s.db.QueryRowContext(ctx, `
		SELECT code, name, vat_number, fiscal_code, sdi_code,
		       address, city, province, country, payment_code
		FROM customers WHERE code = ?
	`, code).Scan(&c.Code, &c.Name, &c.VATNumber, &c.FiscalCode, &c.SDICode,
		&c.Address, &c.City, &c.Province, &c.Country, &c.PaymentCode)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("store: get customer %q: %w", code, err)
	}
	return &c, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
