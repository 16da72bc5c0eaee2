package export

import (
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// Base column widths in mm; scaled to fill the printable A4-landscape width
var pdfBaseWidths = []float64{42, 22, 20, 20, 22, 22, 22, 58, 16, 26, 26}

const pdfLineHeight = 4.5

func writePDF(path string, report *Report) error {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(10, 10, 10)
	pdf.SetAutoPageBreak(false, 10)
	pdf.AddPage()

	pageW, pageH := pdf.GetPageSize()
	left, _, right, bottom := pdf.GetMargins()
	usableW := pageW - left - right
	bottomY := pageH - bottom

	// Scale base widths so the table fills the printable width exactly
	var baseTotal float64
	for _, w := range pdfBaseWidths {
		baseTotal += w
	}
	widths := make([]float64, len(pdfBaseWidths))
	for i, w := range pdfBaseWidths {
		widths[i] = w / baseTotal * usableW
	}

	// Title block
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(usableW, 8, report.Title, "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(51, 65, 85)
	pdf.CellFormat(usableW, 5, report.FilterLine, "", 1, "L", false, 0, "")
	pdf.CellFormat(usableW, 5, SummaryLine(report.Summary), "", 1, "L", false, 0, "")
	pdf.CellFormat(usableW, 5, GeneratedLine(time.Now()), "", 1, "L", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
	pdf.Ln(3)

	drawHeader := func() {
		pdf.SetFont("Helvetica", "B", 8)
		pdf.SetFillColor(241, 245, 249)
		for i, h := range Headers {
			pdf.CellFormat(widths[i], 6, h, "1", 0, "L", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetFont("Helvetica", "", 8)
	}

	drawHeader()

	for _, row := range report.Rows {
		// Wrap every cell and size the row to the tallest one
		lines := make([][]string, len(row))
		maxLines := 1
		for i, value := range row {
			lines[i] = pdf.SplitText(value, widths[i]-2)
			if len(lines[i]) == 0 {
				lines[i] = []string{""}
			}
			if len(lines[i]) > maxLines {
				maxLines = len(lines[i])
			}
		}
		rowH := float64(maxLines)*pdfLineHeight + 1.5

		if pdf.GetY()+rowH > bottomY {
			pdf.AddPage()
			drawHeader()
		}

		x, y := pdf.GetX(), pdf.GetY()
		for i := range row {
			pdf.Rect(x, y, widths[i], rowH, "D")
			for l, line := range lines[i] {
				pdf.Text(x+1, y+3.2+float64(l)*pdfLineHeight, line)
			}
			x += widths[i]
		}
		pdf.SetXY(left, y+rowH)
	}

	if err := pdf.OutputFileAndClose(path); err != nil {
		return fmt.Errorf("failed to write pdf: %w", err)
	}
	return nil
}
