package api

import (
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/gestpos/gestsync/internal/report"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExportProducts streams the local product catalog as an Excel workbook.
func (h *adminHandler) ExportProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.store.ListProducts(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("list products failed")
		writeError(w, http.StatusInternalServerError, "failed to list products")
		return
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="products.xlsx"`)
	if err := report.WriteProducts(w, products); err != nil {
		log.Error().Err(err).Msg("products export failed")
	}
}

// ExportCustomers streams the local customer registry as an Excel workbook.
func (h *adminHandler) ExportCustomers(w http.ResponseWriter, r *http.Request) {
	customers, err := h.store.ListCustomers(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("list customers failed")
		writeError(w, http.StatusInternalServerError, "failed to list customers")
		return
	}

	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", `attachment; filename="customers.xlsx"`)
	if err := report.WriteCustomers(w, customers); err != nil {
		log.Error().Err(err).Msg("customers export failed")
	}
}
