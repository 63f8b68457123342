package infra

// pdf.go — Orders report generation using go-pdf/fpdf.
// Produces an A4 landscape table (codigo, sucursal, cliente, entrega, estado,
// total) for the admin's restaurant, optionally filtered by business date.
// The output file is saved to storagePath/reporte_pedidos_{fecha}.pdf.

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"ceats/internal/repository"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"
)

// GenerateReportePedidosPDF writes the report and returns its absolute path.
func GenerateReportePedidosPDF(restaurante string, fecha string, pedidos []repository.PedidoConSucursal, storagePath string) (string, error) {
	if err := os.MkdirAll(storagePath, 0755); err != nil {
		return "", fmt.Errorf("pdf: create storage dir: %w", err)
	}

	label := fecha
	if label == "" {
		label = "todos"
	}
	filePath := filepath.Join(storagePath, fmt.Sprintf("reporte_pedidos_%s.pdf", label))

	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(10, 10, 10)
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 20

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(contentW, 8, restaurante, "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	subtitle := "Reporte de pedidos"
	if fecha != "" {
		subtitle += " — " + fecha
	}
	pdf.CellFormat(contentW, 6, subtitle, "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "I", 7)
	pdf.CellFormat(contentW, 5, "Generado: "+time.Now().Format("02/01/2006 15:04"), "", 1, "C", false, 0, "")
	pdf.Ln(3)

	// ── Table header ─────────────────────────────────────────────────────────
	cols := []struct {
		label string
		w     float64
	}{
		{"Código", contentW * 0.12},
		{"Sucursal", contentW * 0.16},
		{"Cliente", contentW * 0.18},
		{"Entrega", contentW * 0.12},
		{"Estado", contentW * 0.12},
		{"Fecha", contentW * 0.10},
		{"Hora", contentW * 0.08},
		{"Total", contentW * 0.12},
	}

	pdf.SetFont("Helvetica", "B", 8)
	for _, col := range cols {
		pdf.CellFormat(col.w, 6, col.label, "B", 0, "L", false, 0, "")
	}
	pdf.Ln(-1)

	// ── Rows ─────────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "", 8)
	total := decimal.Zero
	for _, p := range pedidos {
		nombre := p.Nombre
		if len(nombre) > 26 {
			nombre = nombre[:25] + "…"
		}
		pdf.CellFormat(cols[0].w, 5.5, p.Codigo, "", 0, "L", false, 0, "")
		pdf.CellFormat(cols[1].w, 5.5, p.SucursalNombre, "", 0, "L", false, 0, "")
		pdf.CellFormat(cols[2].w, 5.5, nombre, "", 0, "L", false, 0, "")
		pdf.CellFormat(cols[3].w, 5.5, p.TipoEntrega, "", 0, "L", false, 0, "")
		pdf.CellFormat(cols[4].w, 5.5, p.Estado, "", 0, "L", false, 0, "")
		pdf.CellFormat(cols[5].w, 5.5, p.Fecha, "", 0, "L", false, 0, "")
		pdf.CellFormat(cols[6].w, 5.5, p.Hora, "", 0, "L", false, 0, "")
		pdf.CellFormat(cols[7].w, 5.5, p.Total.StringFixed(2)+" "+p.Moneda, "", 1, "R", false, 0, "")
		total = total.Add(p.Total)
	}

	// ── Footer total ─────────────────────────────────────────────────────────
	pdf.Ln(2)
	pdf.Line(10, pdf.GetY(), pageW-10, pdf.GetY())
	pdf.Ln(2)
	pdf.SetFont("Helvetica", "B", 9)
	pdf.CellFormat(contentW*0.88, 6, fmt.Sprintf("Pedidos: %d — TOTAL:", len(pedidos)), "", 0, "R", false, 0, "")
	pdf.CellFormat(contentW*0.12, 6, total.StringFixed(2), "", 1, "R", false, 0, "")

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", fmt.Errorf("pdf: write file: %w", err)
	}

	return filePath, nil
}
