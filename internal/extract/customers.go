package extract

import (
	"context"
	"fmt"

	"github.com/gestpos/gestsync/internal/domain"
	"github.com/gestpos/gestsync/internal/tablename"
)

// Customers pulls account rows flagged as customer records (ANTIPCON = 'C')
// from the per-company accounts table. All ten columns are trimmed; absent
// optional columns map to NULL locally.
func Customers(ctx context.Context, q Querier, table tablename.Table) ([]domain.Customer, error) {
	query := fmt.Sprintf("SELECT * FROM %s WHERE ANTIPCON = 'C'", table.Name())

	result, err := q.Execute(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("extract customers from %s: %w", table.Name(), err)
	}

	customers := make([]domain.Customer, 0, result.RowCount)
	for _, row := range result.Rows {
		customers = append(customers, domain.Customer{
			Code:        trimString(row, "ANCODICE"),
			Name:        trimString(row, "ANDESCRI"),
			VATNumber:   optString(row, "ANPARIVA"),
			FiscalCode:  optString(row, "ANCODFIS"),
			SDICode:     optString(row, "ANCODSDI"),
			Address:     optString(row, "ANINDIRI"),
			City:        optString(row, "ANLOCALI"),
			Province:    optString(row, "ANPROVIN"),
			Country:     optString(row, "ANNAZION"),
			PaymentCode: optString(row, "ANCODPAG"),
		})
	}
	return customers, nil
}
