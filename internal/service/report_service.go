package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/jipl/complaint-register/internal/config"
	"github.com/jipl/complaint-register/internal/domain"
	"github.com/jipl/complaint-register/internal/export"
	"github.com/jipl/complaint-register/internal/numbering"
	"github.com/jipl/complaint-register/internal/repository"
	"go.uber.org/zap"
)

const defaultReportTitle = "Monthly Complaint Report"

// ReportService answers the monthly report queries and drives file exports
type ReportService struct {
	repo     *repository.ComplaintRepository
	exporter *export.Exporter
	numCfg   config.NumberingConfig
	logger   *zap.Logger
}

func NewReportService(
	repo *repository.ComplaintRepository,
	exporter *export.Exporter,
	numCfg config.NumberingConfig,
	logger *zap.Logger,
) *ReportService {
	return &ReportService{
		repo:     repo,
		exporter: exporter,
		numCfg:   numCfg,
		logger:   logger,
	}
}

// MonthlyReport returns the rows for one month and the aggregate counts
// computed over the filtered set. A status outside the enum means no status
// filter; the location filter is normalized through the same tokenizer the
// allocator uses, so it matches regardless of case or punctuation.
func (s *ReportService) MonthlyReport(ctx context.Context, filters domain.ReportFilters) (*domain.MonthlyReportResponse, error) {
	monthKey := strings.TrimSpace(filters.MonthKey)
	if !isMonthKey(monthKey) {
		return nil, NewValidationError("monthKey", "must be a 6-digit yyyymm value")
	}

	status := strings.TrimSpace(filters.Status)
	if !domain.IsValidStatus(status) {
		status = ""
	}

	locationCode := ""
	if loc := strings.TrimSpace(filters.Location); loc != "" {
		locationCode = numbering.NormalizeToken(loc, "", s.numCfg.TokenMaxLength)
	}

	rows, err := s.repo.ListByMonth(ctx, monthKey, status, locationCode)
	if err != nil {
		return nil, fmt.Errorf("failed to query monthly report: %w", err)
	}

	summary := domain.ReportSummary{Total: len(rows)}
	for _, row := range rows {
		switch row.Status {
		case domain.StatusPending:
			summary.Pending++
		case domain.StatusComplete:
			summary.Complete++
		}
	}

	return &domain.MonthlyReportResponse{
		OK:      true,
		Rows:    rows,
		Summary: summary,
	}, nil
}

// Export renders a monthly report to the requested format and returns the
// path of the written file. Rendering failures (disk full, bad path)
// surface as ErrStorage with the underlying message preserved.
func (s *ReportService) Export(ctx context.Context, req *domain.ExportRequest) (string, error) {
	result, err := s.MonthlyReport(ctx, domain.ReportFilters{
		MonthKey: req.MonthKey,
		Status:   req.Status,
		Location: req.Location,
	})
	if err != nil {
		return "", err
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = defaultReportTitle
	}

	report := &export.Report{
		Title:      title,
		FilterLine: filterLine(req),
		Summary:    result.Summary,
		Rows:       export.BuildRows(result.Rows),
	}

	path, err := s.exporter.Export(report, req.Format, "complaints_"+req.MonthKey)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrStorage, err)
	}
	return path, nil
}

func filterLine(req *domain.ExportRequest) string {
	status := "All"
	if domain.IsValidStatus(strings.TrimSpace(req.Status)) {
		status = strings.TrimSpace(req.Status)
	}
	location := "All"
	if loc := strings.TrimSpace(req.Location); loc != "" {
		location = loc
	}
	return fmt.Sprintf("Month: %s   |   Status: %s   |   Location: %s", req.MonthKey, status, location)
}

func isMonthKey(s string) bool {
	if len(s) != 6 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
