package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/jipl/complaint-register/internal/domain"
	"github.com/jipl/complaint-register/internal/service"
	"go.uber.org/zap"
)

// ComplaintHandler handles HTTP requests for complaints
type ComplaintHandler struct {
	complaintService *service.ComplaintService
	logger           *zap.Logger
}

// NewComplaintHandler creates a new ComplaintHandler
func NewComplaintHandler(complaintService *service.ComplaintService, logger *zap.Logger) *ComplaintHandler {
	return &ComplaintHandler{
		complaintService: complaintService,
		logger:           logger,
	}
}

// CreateComplaint godoc
// @Summary Register complaint
// @Description Register a new complaint and allocate its complaint number
// @Tags Complaints
// @Accept json
// @Produce json
// @Param request body domain.CreateComplaintRequest true "Complaint data"
// @Success 201 {object} domain.CreateComplaintResponse
// @Failure 400 {object} domain.APIError
// @Failure 409 {object} domain.APIError
// @Failure 500 {object} domain.APIError
// @Router /complaints [post]
func (h *ComplaintHandler) CreateComplaint(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateComplaintRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	complaint, err := h.complaintService.Create(r.Context(), &req)
	if err != nil {
		if respondServiceError(w, err) {
			return
		}
		h.logger.Error("failed to create complaint", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to register complaint")
		return
	}

	w.Header().Set("Location", "/api/v1/complaints/"+strconv.FormatUint(uint64(complaint.ID), 10))
	respondJSON(w, http.StatusCreated, domain.CreateComplaintResponse{
		OK:              true,
		ID:              complaint.ID,
		ComplaintNumber: complaint.ComplaintNo,
	})
}

// ListComplaints godoc
// @Summary List complaints
// @Description Get complaints with optional status, date-range and search filters, newest first
// @Tags Complaints
// @Produce json
// @Param status query string false "Filter by status" Enums(Pending, Complete)
// @Param from query string false "Inclusive lower creation-date bound (YYYY-MM-DD)"
// @Param to query string false "Inclusive upper creation-date bound (YYYY-MM-DD)"
// @Param search query string false "Substring match across number, name, mobile, location, department, product and serial number"
// @Success 200 {array} domain.Complaint
// @Failure 400 {object} domain.APIError
// @Failure 500 {object} domain.APIError
// @Router /complaints [get]
func (h *ComplaintHandler) ListComplaints(w http.ResponseWriter, r *http.Request) {
	filters := domain.ListFilters{
		Status: r.URL.Query().Get("status"),
		From:   r.URL.Query().Get("from"),
		To:     r.URL.Query().Get("to"),
		Search: r.URL.Query().Get("search"),
	}

	if filters.Status != "" && !domain.IsValidStatus(filters.Status) {
		respondWithError(w, http.StatusBadRequest, "Invalid status: must be one of Pending, Complete")
		return
	}

	complaints, err := h.complaintService.List(r.Context(), filters)
	if err != nil {
		h.logger.Error("failed to list complaints", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to list complaints")
		return
	}

	respondJSON(w, http.StatusOK, complaints)
}

// LookupComplaint godoc
// @Summary Look up complaint by number
// @Description Get a complaint by its allocated complaint number. The number contains slashes, so it is passed as a query parameter.
// @Tags Complaints
// @Produce json
// @Param number query string true "Complaint number"
// @Success 200 {object} domain.Complaint
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Router /complaints/lookup [get]
func (h *ComplaintHandler) LookupComplaint(w http.ResponseWriter, r *http.Request) {
	number := r.URL.Query().Get("number")

	complaint, err := h.complaintService.GetByNumber(r.Context(), number)
	if err != nil {
		if respondServiceError(w, err) {
			return
		}
		h.logger.Error("failed to look up complaint", zap.Error(err), zap.String("complaint_no", number))
		respondWithError(w, http.StatusInternalServerError, "Failed to look up complaint")
		return
	}

	respondJSON(w, http.StatusOK, complaint)
}

// GetComplaint godoc
// @Summary Get complaint
// @Description Get a complaint by ID
// @Tags Complaints
// @Produce json
// @Param id path int true "Complaint ID"
// @Success 200 {object} domain.Complaint
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Router /complaints/{id} [get]
func (h *ComplaintHandler) GetComplaint(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	complaint, err := h.complaintService.GetByID(r.Context(), id)
	if err != nil {
		if respondServiceError(w, err) {
			return
		}
		h.logger.Error("failed to get complaint", zap.Error(err), zap.Uint("complaint_id", id))
		respondWithError(w, http.StatusInternalServerError, "Failed to get complaint")
		return
	}

	respondJSON(w, http.StatusOK, complaint)
}

// UpdateComplaint godoc
// @Summary Update complaint
// @Description Apply a partial update to the editable fields of a complaint. The complaint number, location, department and creation time are immutable.
// @Tags Complaints
// @Accept json
// @Produce json
// @Param id path int true "Complaint ID"
// @Param request body domain.UpdateComplaintRequest true "Fields to update"
// @Success 200 {object} domain.OKResponse
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 500 {object} domain.APIError
// @Router /complaints/{id} [put]
func (h *ComplaintHandler) UpdateComplaint(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	var req domain.UpdateComplaintRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	if err := h.complaintService.UpdateFields(r.Context(), id, &req); err != nil {
		if respondServiceError(w, err) {
			return
		}
		h.logger.Error("failed to update complaint", zap.Error(err), zap.Uint("complaint_id", id))
		respondWithError(w, http.StatusInternalServerError, "Failed to update complaint")
		return
	}

	respondJSON(w, http.StatusOK, domain.OKResponse{OK: true})
}

// UpdateComplaintStatus godoc
// @Summary Update complaint status
// @Description Flip the lifecycle state. Transitioning to Complete stamps the completion time; back to Pending clears it.
// @Tags Complaints
// @Accept json
// @Produce json
// @Param id path int true "Complaint ID"
// @Param request body domain.UpdateStatusRequest true "New status"
// @Success 200 {object} domain.OKResponse
// @Failure 400 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 500 {object} domain.APIError
// @Router /complaints/{id}/status [put]
func (h *ComplaintHandler) UpdateComplaintStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	var req domain.UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	if err := h.complaintService.UpdateStatus(r.Context(), id, req.Status); err != nil {
		if respondServiceError(w, err) {
			return
		}
		h.logger.Error("failed to update complaint status", zap.Error(err), zap.Uint("complaint_id", id))
		respondWithError(w, http.StatusInternalServerError, "Failed to update complaint status")
		return
	}

	respondJSON(w, http.StatusOK, domain.OKResponse{OK: true})
}

// parseID reads the numeric {id} path parameter, writing a 400 on failure
func parseID(w http.ResponseWriter, r *http.Request) (uint, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		respondWithError(w, http.StatusBadRequest, "Invalid complaint ID: must be a positive integer")
		return 0, false
	}
	return uint(id), true
}
