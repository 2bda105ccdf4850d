// Package tablename computes the concrete gestionale table each sync domain
// reads from. Table names are dynamic runtime strings built from
// user-configurable patterns, so resolution is fenced into this package: the
// rest of the code only ever consumes the validated Table value, never a
// bare string.
package tablename

import (
	"fmt"
	"regexp"
	"strings"
)

// Domain is one independent extraction+reconciliation pipeline.
type Domain string

const (
	Products       Domain = "products"
	Customers      Domain = "customers"
	PaymentMethods Domain = "paymentMethods"
)

// CompanyCodeToken is the literal placeholder replaced with the company code
// in table name patterns, e.g. "{companyCode}CONTI" → "SCARLCONTI".
const CompanyCodeToken = "{companyCode}"

// Default patterns per domain. The products export table is company-code
// independent; its rows are scoped by a WHERE clause instead.
const (
	defaultProducts       = "C3EXPPOS"
	defaultCustomers      = CompanyCodeToken + "CONTI"
	defaultPaymentMethods = CompanyCodeToken + "PAG_AMEN"
)

// identRe accepts plain SQL Server identifiers. Anything else in a resolved
// name is rejected rather than quoted, which keeps the dynamic-schema
// injection surface inside this package.
var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Table is a resolved source table reference.
type Table struct {
	Domain Domain
	name   string
}

// Name returns the validated table name for interpolation into a statement.
func (t Table) Name() string { return t.name }

func (t Table) String() string { return t.name }

// Resolve computes the source table for a domain. A non-empty override
// pattern from the configuration wins over the built-in default; in both
// cases the {companyCode} token is substituted literally. A missing company
// code does not fail resolution by itself; it only fails when the chosen
// pattern actually needs the token.
func Resolve(domain Domain, companyCode, override string) (Table, error) {
	pattern := strings.TrimSpace(override)
	if pattern == "" {
		switch domain {
		case Products:
			pattern = defaultProducts
		case Customers:
			pattern = defaultCustomers
		case PaymentMethods:
			pattern = defaultPaymentMethods
		default:
			return Table{}, fmt.Errorf("tablename: unknown domain %q", domain)
		}
	}

	name := pattern
	if strings.Contains(pattern, CompanyCodeToken) {
		if companyCode == "" {
			return Table{}, fmt.Errorf("tablename: pattern %q needs a company code", pattern)
		}
		name = strings.ReplaceAll(pattern, CompanyCodeToken, companyCode)
	}

	if !identRe.MatchString(name) {
		return Table{}, fmt.Errorf("tablename: resolved name %q is not a valid identifier", name)
	}

	return Table{Domain: domain, name: name}, nil
}
