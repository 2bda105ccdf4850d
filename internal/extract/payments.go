package extract

import (
	"context"
	"fmt"

	"github.com/gestpos/gestsync/internal/domain"
	"github.com/gestpos/gestsync/internal/tablename"
)

// PaymentMethods pulls the full tender table ordered by code. The source
// carries only code and description; the local type is inferred from the
// description by the keyword classifier.
func PaymentMethods(ctx context.Context, q Querier, table tablename.Table) ([]domain.PaymentMethod, error) {
	query := fmt.Sprintf("SELECT PACODICE, PADESCRI FROM %s ORDER BY PACODICE", table.Name())

	result, err := q.Execute(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("extract payment methods from %s: %w", table.Name(), err)
	}

	methods := make([]domain.PaymentMethod, 0, result.RowCount)
	for _, row := range result.Rows {
		description := trimString(row, "PADESCRI")
		methods = append(methods, domain.PaymentMethod{
			Code:        trimString(row, "PACODICE"),
			Description: description,
			Type:        ClassifyPaymentType(description),
		})
	}
	return methods, nil
}
