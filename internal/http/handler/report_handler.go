package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/jipl/complaint-register/internal/domain"
	"github.com/jipl/complaint-register/internal/service"
	"go.uber.org/zap"
)

// ReportHandler handles HTTP requests for monthly reports and exports
type ReportHandler struct {
	reportService *service.ReportService
	logger        *zap.Logger
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(reportService *service.ReportService, logger *zap.Logger) *ReportHandler {
	return &ReportHandler{
		reportService: reportService,
		logger:        logger,
	}
}

// MonthlyReport godoc
// @Summary Monthly report
// @Description Get the complaint rows for one month plus pending/complete/total counts over the filtered set
// @Tags Reports
// @Produce json
// @Param monthKey query string true "Month key (yyyymm)"
// @Param status query string false "Filter by status" Enums(Pending, Complete)
// @Param location query string false "Filter by location (case and punctuation insensitive)"
// @Success 200 {object} domain.MonthlyReportResponse
// @Failure 400 {object} domain.APIError
// @Failure 500 {object} domain.APIError
// @Router /reports/monthly [get]
func (h *ReportHandler) MonthlyReport(w http.ResponseWriter, r *http.Request) {
	filters := domain.ReportFilters{
		MonthKey: r.URL.Query().Get("monthKey"),
		Status:   r.URL.Query().Get("status"),
		Location: r.URL.Query().Get("location"),
	}

	result, err := h.reportService.MonthlyReport(r.Context(), filters)
	if err != nil {
		if respondServiceError(w, err) {
			return
		}
		h.logger.Error("failed to build monthly report", zap.Error(err),
			zap.String("month_key", filters.MonthKey))
		respondWithError(w, http.StatusInternalServerError, "Failed to build monthly report")
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// ExportReport godoc
// @Summary Export monthly report
// @Description Render a monthly report to xlsx, pdf or csv and return the path of the written file
// @Tags Reports
// @Accept json
// @Produce json
// @Param request body domain.ExportRequest true "Export parameters"
// @Success 200 {object} domain.ExportResponse
// @Failure 400 {object} domain.APIError
// @Failure 500 {object} domain.APIError
// @Router /reports/export [post]
func (h *ReportHandler) ExportReport(w http.ResponseWriter, r *http.Request) {
	var req domain.ExportRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	path, err := h.reportService.Export(r.Context(), &req)
	if err != nil {
		if respondServiceError(w, err) {
			return
		}
		if errors.Is(err, service.ErrStorage) {
			h.logger.Error("report export failed", zap.Error(err),
				zap.String("month_key", req.MonthKey),
				zap.String("format", req.Format))
			// keep the underlying cause in the body so the client can show it
			respondJSON(w, http.StatusInternalServerError, domain.ExportResponse{
				OK:      false,
				Message: storageFailureMessage(err),
			})
			return
		}
		h.logger.Error("report export failed", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to export report")
		return
	}

	h.logger.Info("report exported",
		zap.String("month_key", req.MonthKey),
		zap.String("format", req.Format),
		zap.String("file", path))

	respondJSON(w, http.StatusOK, domain.ExportResponse{
		OK:       true,
		FilePath: path,
	})
}

// storageFailureMessage strips the sentinel prefix off a wrapped storage
// error, leaving the cause (disk full, bad path) for display
func storageFailureMessage(err error) string {
	msg := err.Error()
	if trimmed := strings.TrimPrefix(msg, service.ErrStorage.Error()+": "); trimmed != "" {
		return trimmed
	}
	return msg
}
