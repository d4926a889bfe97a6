package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"strconv"

	"github.com/jung-kurt/gofpdf/v2"
	"github.com/shopspring/decimal"

	"lab-backend/internal/catalog"
	"lab-backend/internal/models"
	"lab-backend/internal/timeutil"
)

const (
	CSVFilename = "materiais_laboratorio.csv"
	PDFFilename = "relatorio_materiais.pdf"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

var csvHeader = []string{
	"ID", "Nome", "Tipo", "Fabricante", "Quantidade", "Unidade", "Estoque Atual",
	"Estoque Mínimo", "Validade", "Preço", "Código", "Status",
}

// ExportCSV renders the filtered material list as a UTF-8 CSV with a BOM so
// spreadsheet tools pick the right encoding.
func (s *MaterialService) ExportCSV(ctx context.Context, q catalog.MaterialQuery) ([]byte, error) {
	views, err := s.List(ctx, q)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.Write(utf8BOM)
	w := csv.NewWriter(&buf)
	w.Write(csvHeader)
	for _, v := range views {
		w.Write([]string{
			strconv.Itoa(v.ID),
			v.Name,
			v.Type,
			v.Manufacturer,
			v.Quantity.String(),
			v.Unit,
			nullDecimalText(v.CurrentStock),
			nullDecimalText(v.MinimumStock),
			nullDateText(v.Expiry),
			nullDecimalFixed(v.Price),
			v.Code,
			v.Status,
		})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ReportPDF renders the filtered material list as a landscape A4 table.
func (s *MaterialService) ReportPDF(ctx context.Context, q catalog.MaterialQuery) ([]byte, error) {
	views, err := s.List(ctx, q)
	if err != nil {
		return nil, err
	}

	pdf := gofpdf.New("L", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetMargins(10, 10, 10)
	pdf.SetAutoPageBreak(true, 12)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.CellFormat(277, 10, tr("Inventário de Materiais do Laboratório"), "", 1, "C", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	pdf.CellFormat(277, 6, tr(fmt.Sprintf("Gerado em: %s", s.Now().Format("02/01/2006 15:04"))), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	cols := []struct {
		title string
		width float64
		align string
	}{
		{"Nome", 62, "L"},
		{"Tipo", 30, "L"},
		{"Fabricante", 40, "L"},
		{"Estoque", 25, "R"},
		{"Mínimo", 22, "R"},
		{"Unid.", 16, "C"},
		{"Validade", 24, "C"},
		{"Preço", 24, "R"},
		{"Status", 34, "C"},
	}

	pdf.SetFont("Arial", "B", 9)
	pdf.SetFillColor(200, 200, 200)
	for i, c := range cols {
		ln := 0
		if i == len(cols)-1 {
			ln = 1
		}
		pdf.CellFormat(c.width, 7, tr(c.title), "1", ln, "C", true, 0, "")
	}

	pdf.SetFont("Arial", "", 9)
	for _, v := range views {
		r, g, b := statusFill(catalog.Status(v.Status))
		pdf.SetFillColor(r, g, b)
		cells := []string{
			truncate(v.Name, 38),
			truncate(v.Type, 18),
			truncate(v.Manufacturer, 24),
			nullDecimalText(v.CurrentStock),
			nullDecimalText(v.MinimumStock),
			v.Unit,
			nullDateText(v.Expiry),
			nullDecimalFixed(v.Price),
			v.Status,
		}
		for i, text := range cells {
			ln := 0
			if i == len(cells)-1 {
				ln = 1
			}
			fill := i == len(cells)-1
			pdf.CellFormat(cols[i].width, 6, tr(text), "1", ln, cols[i].align, fill, 0, "")
		}
	}

	stats := catalog.Stats(materialsOf(views), s.Today())
	pdf.Ln(4)
	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(277, 7, tr(fmt.Sprintf(
		"Total: %d   Vencidos: %d   Críticos: %d   Próximos: %d   Estoque baixo: %d   OK: %d",
		stats.Total, stats.Expired, stats.Critical, stats.NearExpiry, stats.LowStock, stats.OK,
	)), "1", 1, "L", false, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func statusFill(status catalog.Status) (int, int, int) {
	switch status {
	case catalog.StatusExpired:
		return 255, 190, 190
	case catalog.StatusCritical:
		return 255, 220, 180
	case catalog.StatusNearExpiry:
		return 255, 245, 190
	case catalog.StatusLowStock:
		return 220, 225, 255
	default:
		return 210, 245, 210
	}
}

func materialsOf(views []models.MaterialView) []models.Material {
	out := make([]models.Material, len(views))
	for i, v := range views {
		out[i] = v.Material
	}
	return out
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

func nullDecimalText(d decimal.NullDecimal) string {
	if !d.Valid {
		return ""
	}
	return d.Decimal.String()
}

func nullDecimalFixed(d decimal.NullDecimal) string {
	if !d.Valid {
		return ""
	}
	return d.Decimal.StringFixed(2)
}

func nullDateText(d models.NullDate) string {
	if !d.Valid {
		return ""
	}
	return d.Date.Format(timeutil.DisplayLayout)
}
