// Package report renders the local catalog as Excel workbooks for the
// back-office export endpoints.
package report

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/gestpos/gestsync/internal/domain"
)

const colWidth = 15

// WriteProducts streams an Excel workbook listing the local products.
func WriteProducts(w io.Writer, products []domain.Product) error {
	headers := []string{
		"Code *", "Description", "Barcode", "Price", "VAT Rate",
		"Discount 1", "Discount 2", "Discount 3", "Discount 4",
		"Department", "Category", "Category Description", "Lot Managed", "Activation Date",
	}
	rows := make([][]any, len(products))
	for i, p := range products {
		rows[i] = []any{
			p.Code, p.Description, deref(p.Barcode), p.Price, p.VATRate,
			p.Discount1, p.Discount2, p.Discount3, p.Discount4,
			deref(p.DepartmentCode), deref(p.CategoryCode), deref(p.CategoryDescription),
			p.LotManaged, deref(p.ActivationDate),
		}
	}
	return writeSheet(w, "Products", headers, rows)
}

// WriteCustomers streams an Excel workbook listing the local customers.
func WriteCustomers(w io.Writer, customers []domain.Customer) error {
	headers := []string{
		"Code *", "Name", "VAT Number", "Fiscal Code", "SDI Code",
		"Address", "City", "Province", "Country", "Payment Code",
	}
	rows := make([][]any, len(customers))
	for i, c := range customers {
		rows[i] = []any{
			c.Code, c.Name, deref(c.VATNumber), deref(c.FiscalCode), deref(c.SDICode),
			deref(c.Address), deref(c.City), deref(c.Province), deref(c.Country),
			deref(c.PaymentCode),
		}
	}
	return writeSheet(w, "Customers", headers, rows)
}

func writeSheet(w io.Writer, sheetName string, headers []string, rows [][]any) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if sheetName != "Sheet1" {
		f.DeleteSheet("Sheet1")
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	for col, header := range headers {
		cell := columnName(col+1) + "1"
		f.SetCellValue(sheetName, cell, header)
		f.SetCellStyle(sheetName, cell, cell, headerStyle)
	}

	for rowIdx, row := range rows {
		for col, value := range row {
			cell := fmt.Sprintf("%s%d", columnName(col+1), rowIdx+2)
			f.SetCellValue(sheetName, cell, value)
		}
	}

	for col := range headers {
		name := columnName(col + 1)
		f.SetColWidth(sheetName, name, name, colWidth)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// columnName converts a 1-based column index to its Excel letter form.
func columnName(col int) string {
	name := ""
	for col > 0 {
		col--
		name = string(rune('A'+col%26)) + name
		col /= 26
	}
	return name
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
