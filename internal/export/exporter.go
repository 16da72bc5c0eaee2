// Package export renders complaint report rows to spreadsheet, PDF and CSV
// files. The core hands it a stable row shape (one record per row, columns
// matching Headers); everything about rendering lives here.
package export

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jipl/complaint-register/internal/domain"
	"go.uber.org/zap"
)

// Headers is the fixed column set of every export format, in order
var Headers = []string{
	"Complaint No",
	"Name",
	"Mobile",
	"Location",
	"Department",
	"Product",
	"Serial Number",
	"Problem",
	"Status",
	"Created At",
	"Completed At",
}

const timestampLayout = "2006-01-02 15:04:05"

// BuildRows maps complaint records to export rows, one record per row,
// columns aligned with Headers
func BuildRows(complaints []domain.Complaint) [][]string {
	rows := make([][]string, 0, len(complaints))
	for _, c := range complaints {
		completed := ""
		if c.CompletedAt != nil {
			completed = c.CompletedAt.Format(timestampLayout)
		}
		rows = append(rows, []string{
			c.ComplaintNo,
			c.Name,
			c.Mobile,
			c.Location,
			c.Department,
			c.Product,
			c.SerialNo,
			c.Problem,
			string(c.Status),
			c.CreatedAt.Format(timestampLayout),
			completed,
		})
	}
	return rows
}

// Report carries everything a renderer needs for one export
type Report struct {
	Title string
	// FilterLine describes the active month/status/location filters
	FilterLine string
	Summary    domain.ReportSummary
	Rows       [][]string
}

// Exporter writes reports to files under a configured output directory
type Exporter struct {
	outputDir string
	logger    *zap.Logger
}

func NewExporter(outputDir string, logger *zap.Logger) *Exporter {
	return &Exporter{outputDir: outputDir, logger: logger}
}

// Export renders the report in the requested format and returns the path of
// the written file. Supported formats: xlsx, pdf, csv.
func (e *Exporter) Export(report *Report, format, baseName string) (string, error) {
	if err := os.MkdirAll(e.outputDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create export directory: %w", err)
	}

	path := filepath.Join(e.outputDir, baseName+"."+format)

	var err error
	switch format {
	case "xlsx":
		err = writeXLSX(path, report)
	case "pdf":
		err = writePDF(path, report)
	case "csv":
		err = writeCSV(path, report)
	default:
		return "", fmt.Errorf("unsupported export format %q", format)
	}
	if err != nil {
		return "", err
	}

	e.logger.Info("report exported",
		zap.String("format", format),
		zap.String("path", path),
		zap.Int("rows", len(report.Rows)))
	return path, nil
}

// SummaryLine formats the aggregate counts the way they appear in the
// rendered report header
func SummaryLine(s domain.ReportSummary) string {
	return fmt.Sprintf("Total: %d   Pending: %d   Complete: %d", s.Total, s.Pending, s.Complete)
}

// GeneratedLine returns the render timestamp footer line
func GeneratedLine(now time.Time) string {
	return "Generated: " + now.Format(timestampLayout)
}
