package infra

// pdf.go — cierre de caja report generation using go-pdf/fpdf.
// One A5 page per session: opening amount, sales broken down by payment
// method, manual movements, calculated total and the counted difference.
// The output file is saved to storagePath/cierre_{fecha}_{id}.pdf.

import (
	"fmt"
	"os"
	"path/filepath"

	"almacenpos/internal/model"

	"github.com/go-pdf/fpdf"
)

// GenerateCierreCajaPDF renders the closing report of a sesión de caja.
// Returns the absolute path to the generated file.
func GenerateCierreCajaPDF(sesion *model.SesionCaja, movimientos []model.MovimientoManual, nombreNegocio, storagePath string) (string, error) {
	if err := os.MkdirAll(storagePath, 0755); err != nil {
		return "", fmt.Errorf("pdf: create storage dir: %w", err)
	}

	fileName := fmt.Sprintf("cierre_%s_%s.pdf", sesion.Fecha, sesion.ID.String()[:8])
	filePath := filepath.Join(storagePath, fileName)

	pdf := fpdf.New("P", "mm", "A5", "")
	pdf.SetMargins(12, 12, 12)
	pdf.AddPage()

	pageW, _ := pdf.GetPageSize()
	contentW := pageW - 24

	// ── Header ───────────────────────────────────────────────────────────────
	pdf.SetFont("Helvetica", "B", 14)
	pdf.CellFormat(contentW, 8, nombreNegocio, "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(contentW, 6, "Cierre de Caja", "", 1, "C", false, 0, "")
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(contentW, 5, "Fecha: "+sesion.Fecha, "", 1, "L", false, 0, "")
	if sesion.Usuario != nil {
		pdf.CellFormat(contentW, 5, "Abierta por: "+sesion.Usuario.Nombre, "", 1, "L", false, 0, "")
	}
	pdf.CellFormat(contentW, 5, "Apertura: "+sesion.AbiertaAt.Format("02/01/2006 15:04"), "", 1, "L", false, 0, "")
	if sesion.CerradaAt != nil {
		pdf.CellFormat(contentW, 5, "Cierre: "+sesion.CerradaAt.Format("02/01/2006 15:04"), "", 1, "L", false, 0, "")
	}
	pdf.Ln(2)
	pdf.Line(12, pdf.GetY(), pageW-12, pdf.GetY())
	pdf.Ln(2)

	labelW := contentW * 0.65
	valueW := contentW * 0.35

	row := func(label, value string, bold bool) {
		style := ""
		if bold {
			style = "B"
		}
		pdf.SetFont("Helvetica", style, 9)
		pdf.CellFormat(labelW, 6, label, "", 0, "L", false, 0, "")
		pdf.CellFormat(valueW, 6, value, "", 1, "R", false, 0, "")
	}

	// ── Totals ────────────────────────────────────────────────────────────────
	row("Monto inicial", "$"+sesion.MontoInicial.StringFixed(2), false)
	row("Ventas en efectivo", "$"+sesion.TotalEfectivo.StringFixed(2), false)
	row("Ventas con tarjeta", "$"+sesion.TotalTarjeta.StringFixed(2), false)
	row("Ventas por transferencia", "$"+sesion.TotalTransferencia.StringFixed(2), false)
	row("Total ventas", "$"+sesion.TotalVentas.StringFixed(2), true)
	row("Ingresos extra", "$"+sesion.TotalIngresosExtra.StringFixed(2), false)
	row("Gastos", "-$"+sesion.TotalGastos.StringFixed(2), false)
	pdf.Ln(1)
	row("Total calculado", "$"+sesion.TotalCalculado.StringFixed(2), true)

	if sesion.MontoFinal != nil {
		row("Monto contado", "$"+sesion.MontoFinal.StringFixed(2), true)
	}
	if sesion.Diferencia != nil {
		row("Diferencia", "$"+sesion.Diferencia.StringFixed(2), true)
	}

	// ── Manual movements ──────────────────────────────────────────────────────
	if len(movimientos) > 0 {
		pdf.Ln(3)
		pdf.Line(12, pdf.GetY(), pageW-12, pdf.GetY())
		pdf.Ln(2)

		pdf.SetFont("Helvetica", "B", 9)
		pdf.CellFormat(contentW, 6, "Movimientos manuales", "", 1, "L", false, 0, "")

		pdf.SetFont("Helvetica", "", 8)
		for _, m := range movimientos {
			concepto := m.Concepto
			if len(concepto) > 38 {
				concepto = concepto[:37] + "…"
			}
			sign := "+"
			if m.Tipo == model.ManualGasto {
				sign = "-"
			}
			pdf.CellFormat(labelW, 5, fmt.Sprintf("[%s] %s", m.Tipo, concepto), "", 0, "L", false, 0, "")
			pdf.CellFormat(valueW, 5, sign+"$"+m.Monto.StringFixed(2), "", 1, "R", false, 0, "")
		}
	}

	if err := pdf.OutputFileAndClose(filePath); err != nil {
		return "", fmt.Errorf("pdf: write file: %w", err)
	}

	return filePath, nil
}
