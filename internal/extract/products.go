package extract

import (
	"context"
	"fmt"

	"github.com/gestpos/gestsync/internal/domain"
	"github.com/gestpos/gestsync/internal/tablename"
)

// Products pulls article rows that are flagged as not yet imported
// (EAIMPPOS='N') and scoped to the company, and maps them into local product
// records. A zero-row result is not an error; the caller reports it as a
// soft condition.
func Products(ctx context.Context, q Querier, table tablename.Table, companyCode string) ([]domain.Product, error) {
	query := fmt.Sprintf("SELECT * FROM %s WHERE EAIMPPOS='N' AND EACODAZI=?", table.Name())

	result, err := q.Execute(ctx, query, companyCode)
	if err != nil {
		return nil, fmt.Errorf("extract products from %s: %w", table.Name(), err)
	}

	products := make([]domain.Product, 0, result.RowCount)
	for _, row := range result.Rows {
		products = append(products, domain.Product{
			Code:                trimString(row, "EACODART"),
			Description:         trimString(row, "EADESART"),
			Barcode:             optString(row, "EACODBAR"),
			Price:               numberString(row, "EAPREZZO"),
			VATRate:             numberString(row, "EACODIVA"),
			Discount1:           numberString(row, "EASCONT1"),
			Discount2:           numberString(row, "EASCONT2"),
			Discount3:           numberString(row, "EASCONT3"),
			Discount4:           numberString(row, "EASCONT4"),
			DepartmentCode:      optString(row, "EACODREP"),
			CategoryCode:        optString(row, "EACODFAM"),
			CategoryDescription: optString(row, "EADESFAM"),
			LotManaged:          DecodeFlag(row["EAFLLOTT"]),
			ActivationDate:      optString(row, "EADATATT"),
		})
	}
	return products, nil
}
