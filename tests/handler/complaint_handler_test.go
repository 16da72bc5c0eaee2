package handler_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jipl/complaint-register/internal/config"
	"github.com/jipl/complaint-register/internal/domain"
	"github.com/jipl/complaint-register/internal/export"
	"github.com/jipl/complaint-register/internal/http/handler"
	"github.com/jipl/complaint-register/internal/repository"
	"github.com/jipl/complaint-register/internal/service"
	"github.com/jipl/complaint-register/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var testNumbering = config.NumberingConfig{
	OrgPrefix:        "JIPL",
	TokenMaxLength:   12,
	SequencePadWidth: 4,
}

// setupAPI wires repositories, services and handlers onto a chi router the
// same way the application router does
func setupAPI(t *testing.T) *chi.Mux {
	db := testutil.SetupTestDB(t)
	repo := repository.NewComplaintRepository(db)
	log := zap.NewNop()

	complaintService := service.NewComplaintService(repo, testNumbering, log)
	complaintService.SetClock(func() time.Time {
		return time.Date(2025, 1, 15, 10, 30, 0, 0, time.UTC)
	})
	exporter := export.NewExporter(t.TempDir(), log)
	reportService := service.NewReportService(repo, exporter, testNumbering, log)

	complaintHandler := handler.NewComplaintHandler(complaintService, log)
	reportHandler := handler.NewReportHandler(reportService, log)

	r := chi.NewRouter()
	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/complaints", func(r chi.Router) {
			r.Get("/", complaintHandler.ListComplaints)
			r.Post("/", complaintHandler.CreateComplaint)
			r.Get("/lookup", complaintHandler.LookupComplaint)
			r.Get("/{id}", complaintHandler.GetComplaint)
			r.Put("/{id}", complaintHandler.UpdateComplaint)
			r.Put("/{id}/status", complaintHandler.UpdateComplaintStatus)
		})
		r.Route("/reports", func(r chi.Router) {
			r.Get("/monthly", reportHandler.MonthlyReport)
			r.Post("/export", reportHandler.ExportReport)
		})
	})
	return r
}

func doJSON(t *testing.T, router http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func createComplaintPayload() map[string]string {
	return map[string]string{
		"name":         "Asha Verma",
		"mobile":       "9876543210",
		"location":     "Delhi North",
		"department":   "Service",
		"product":      "Water Purifier",
		"serialNumber": "WP-2024-1187",
		"problem":      "No power on startup",
	}
}

func TestCreateComplaint(t *testing.T) {
	router := setupAPI(t)

	w := doJSON(t, router, http.MethodPost, "/api/v1/complaints", createComplaintPayload())
	require.Equal(t, http.StatusCreated, w.Code)

	var resp domain.CreateComplaintResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.OK)
	assert.Equal(t, "JIPL/DELHINORTH/20250115/SERVICE/0001", resp.ComplaintNumber)
	assert.Equal(t, fmt.Sprintf("/api/v1/complaints/%d", resp.ID), w.Header().Get("Location"))

	// second registration in the same scope gets the next sequence
	w = doJSON(t, router, http.MethodPost, "/api/v1/complaints", createComplaintPayload())
	require.Equal(t, http.StatusCreated, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "JIPL/DELHINORTH/20250115/SERVICE/0002", resp.ComplaintNumber)
}

func TestCreateComplaint_ValidationError(t *testing.T) {
	router := setupAPI(t)

	payload := createComplaintPayload()
	payload["name"] = ""
	w := doJSON(t, router, http.MethodPost, "/api/v1/complaints", payload)
	require.Equal(t, http.StatusBadRequest, w.Code)

	var apiErr domain.APIError
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &apiErr))
	assert.Equal(t, domain.ErrorTypeValidation, apiErr.Type)
	assert.Contains(t, apiErr.Errors, "name")
}

func TestCreateComplaint_BadMobile(t *testing.T) {
	router := setupAPI(t)

	payload := createComplaintPayload()
	payload["mobile"] = "12a34"
	w := doJSON(t, router, http.MethodPost, "/api/v1/complaints", payload)
	require.Equal(t, http.StatusBadRequest, w.Code)

	var apiErr domain.APIError
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &apiErr))
	assert.Equal(t, domain.ErrorTypeValidation, apiErr.Type)
	assert.Contains(t, apiErr.Errors, "mobile")
}

func TestCreateComplaint_MalformedJSON(t *testing.T) {
	router := setupAPI(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/complaints", bytes.NewBufferString("{not json"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetComplaint(t *testing.T) {
	router := setupAPI(t)

	w := doJSON(t, router, http.MethodPost, "/api/v1/complaints", createComplaintPayload())
	require.Equal(t, http.StatusCreated, w.Code)
	var created domain.CreateComplaintResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	w = doJSON(t, router, http.MethodGet, fmt.Sprintf("/api/v1/complaints/%d", created.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)

	var c domain.Complaint
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &c))
	assert.Equal(t, created.ComplaintNumber, c.ComplaintNo)
	assert.Equal(t, domain.StatusPending, c.Status)
}

func TestGetComplaint_NotFound(t *testing.T) {
	router := setupAPI(t)

	w := doJSON(t, router, http.MethodGet, "/api/v1/complaints/999", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetComplaint_BadID(t *testing.T) {
	router := setupAPI(t)

	for _, id := range []string{"abc", "-1", "0"} {
		w := doJSON(t, router, http.MethodGet, "/api/v1/complaints/"+id, nil)
		assert.Equal(t, http.StatusBadRequest, w.Code, "id %q", id)
	}
}

func TestLookupComplaint(t *testing.T) {
	router := setupAPI(t)

	w := doJSON(t, router, http.MethodPost, "/api/v1/complaints", createComplaintPayload())
	require.Equal(t, http.StatusCreated, w.Code)
	var created domain.CreateComplaintResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	w = doJSON(t, router, http.MethodGet,
		"/api/v1/complaints/lookup?number="+url.QueryEscape(created.ComplaintNumber), nil)
	require.Equal(t, http.StatusOK, w.Code)

	var c domain.Complaint
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &c))
	assert.Equal(t, created.ID, c.ID)
	assert.Equal(t, created.ComplaintNumber, c.ComplaintNo)
}

func TestLookupComplaint_Unknown(t *testing.T) {
	router := setupAPI(t)

	w := doJSON(t, router, http.MethodGet,
		"/api/v1/complaints/lookup?number="+url.QueryEscape("JIPL/DELHINORTH/20250115/SERVICE/9999"), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestLookupComplaint_MissingNumber(t *testing.T) {
	router := setupAPI(t)

	w := doJSON(t, router, http.MethodGet, "/api/v1/complaints/lookup", nil)
	require.Equal(t, http.StatusBadRequest, w.Code)

	var apiErr domain.APIError
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &apiErr))
	assert.Contains(t, apiErr.Errors, "number")
}

func TestCreateComplaint_NumberCollision(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewComplaintRepository(db)
	log := zap.NewNop()

	complaintService := service.NewComplaintService(repo, testNumbering, log)
	complaintService.SetClock(func() time.Time {
		return time.Date(2025, 1, 15, 10, 30, 0, 0, time.UTC)
	})
	complaintHandler := handler.NewComplaintHandler(complaintService, log)

	r := chi.NewRouter()
	r.Post("/api/v1/complaints", complaintHandler.CreateComplaint)

	// a row whose stored sequence lags behind its number makes the next
	// allocation rebuild the same number and trip the uniqueness constraint
	testutil.CreateTestComplaint(t, db, "JIPL/DELHINORTH/20250115/SERVICE/0001", func(c *domain.Complaint) {
		c.SeqNo = 0
	})

	w := doJSON(t, r, http.MethodPost, "/api/v1/complaints", createComplaintPayload())
	require.Equal(t, http.StatusConflict, w.Code)

	var apiErr domain.APIError
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &apiErr))
	assert.Equal(t, domain.ErrorTypeConflict, apiErr.Type)
	// a colliding number means corrupted allocation state, not a transient
	// race, so the message must not suggest retrying
	assert.NotContains(t, apiErr.Detail, "retry")
	assert.Equal(t, "Complaint number already allocated", apiErr.Detail)
}

func TestUpdateComplaintStatus(t *testing.T) {
	router := setupAPI(t)

	w := doJSON(t, router, http.MethodPost, "/api/v1/complaints", createComplaintPayload())
	require.Equal(t, http.StatusCreated, w.Code)
	var created domain.CreateComplaintResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	w = doJSON(t, router, http.MethodPut, fmt.Sprintf("/api/v1/complaints/%d/status", created.ID),
		map[string]string{"status": "Complete"})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodGet, fmt.Sprintf("/api/v1/complaints/%d", created.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	var c domain.Complaint
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &c))
	assert.Equal(t, domain.StatusComplete, c.Status)
	assert.NotNil(t, c.CompletedAt)
}

func TestUpdateComplaintStatus_InvalidValue(t *testing.T) {
	router := setupAPI(t)

	w := doJSON(t, router, http.MethodPost, "/api/v1/complaints", createComplaintPayload())
	require.Equal(t, http.StatusCreated, w.Code)
	var created domain.CreateComplaintResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	w = doJSON(t, router, http.MethodPut, fmt.Sprintf("/api/v1/complaints/%d/status", created.ID),
		map[string]string{"status": "Done"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateComplaint_PartialEdit(t *testing.T) {
	router := setupAPI(t)

	w := doJSON(t, router, http.MethodPost, "/api/v1/complaints", createComplaintPayload())
	require.Equal(t, http.StatusCreated, w.Code)
	var created domain.CreateComplaintResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	w = doJSON(t, router, http.MethodPut, fmt.Sprintf("/api/v1/complaints/%d", created.ID),
		map[string]string{"problem": "Unit trips breaker on startup"})
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodGet, fmt.Sprintf("/api/v1/complaints/%d", created.ID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	var c domain.Complaint
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &c))
	assert.Equal(t, "Unit trips breaker on startup", c.Problem)
	assert.Equal(t, "Asha Verma", c.Name)
	// number stays locked
	assert.Equal(t, created.ComplaintNumber, c.ComplaintNo)
}

func TestUpdateComplaint_NotFound(t *testing.T) {
	router := setupAPI(t)

	w := doJSON(t, router, http.MethodPut, "/api/v1/complaints/424242",
		map[string]string{"name": "Nobody"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestListComplaints(t *testing.T) {
	router := setupAPI(t)

	// two complaints, one completed
	w := doJSON(t, router, http.MethodPost, "/api/v1/complaints", createComplaintPayload())
	require.Equal(t, http.StatusCreated, w.Code)
	var first domain.CreateComplaintResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &first))

	second := createComplaintPayload()
	second["name"] = "Ravi Kumar"
	w = doJSON(t, router, http.MethodPost, "/api/v1/complaints", second)
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, router, http.MethodPut, fmt.Sprintf("/api/v1/complaints/%d/status", first.ID),
		map[string]string{"status": "Complete"})
	require.Equal(t, http.StatusOK, w.Code)

	t.Run("all", func(t *testing.T) {
		w := doJSON(t, router, http.MethodGet, "/api/v1/complaints", nil)
		require.Equal(t, http.StatusOK, w.Code)
		var got []domain.Complaint
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		assert.Len(t, got, 2)
	})

	t.Run("status filter", func(t *testing.T) {
		w := doJSON(t, router, http.MethodGet, "/api/v1/complaints?status=Complete", nil)
		require.Equal(t, http.StatusOK, w.Code)
		var got []domain.Complaint
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		require.Len(t, got, 1)
		assert.Equal(t, "Asha Verma", got[0].Name)
	})

	t.Run("search", func(t *testing.T) {
		w := doJSON(t, router, http.MethodGet, "/api/v1/complaints?search=Ravi", nil)
		require.Equal(t, http.StatusOK, w.Code)
		var got []domain.Complaint
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		require.Len(t, got, 1)
		assert.Equal(t, "Ravi Kumar", got[0].Name)
	})

	t.Run("bad status", func(t *testing.T) {
		w := doJSON(t, router, http.MethodGet, "/api/v1/complaints?status=Bogus", nil)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
