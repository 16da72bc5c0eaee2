package service_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jipl/complaint-register/internal/domain"
	"github.com/jipl/complaint-register/internal/export"
	"github.com/jipl/complaint-register/internal/repository"
	"github.com/jipl/complaint-register/internal/service"
	"github.com/jipl/complaint-register/tests/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setupReportService(t *testing.T) (*service.ReportService, *gorm.DB, string) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewComplaintRepository(db)
	outDir := t.TempDir()
	exporter := export.NewExporter(outDir, zap.NewNop())
	svc := service.NewReportService(repo, exporter, testNumbering, zap.NewNop())
	return svc, db, outDir
}

// seedReportMonth inserts 3 pending and 2 complete complaints in 202501,
// plus one record in 202502 that must never show up
func seedReportMonth(t *testing.T, db *gorm.DB) {
	for i, no := range []string{
		"JIPL/DELHINORTH/20250110/SERVICE/0001",
		"JIPL/DELHINORTH/20250112/SERVICE/0001",
		"JIPL/MUMBAI/20250114/SERVICE/0001",
	} {
		day := []string{"20250110", "20250112", "20250114"}[i]
		testutil.CreateTestComplaint(t, db, no, func(c *domain.Complaint) {
			c.DayKey = day
			if i == 2 {
				c.Location = "Mumbai"
				c.LocationCode = "MUMBAI"
			}
		})
	}
	for i, no := range []string{
		"JIPL/DELHINORTH/20250116/SERVICE/0001",
		"JIPL/MUMBAI/20250118/SERVICE/0001",
	} {
		day := []string{"20250116", "20250118"}[i]
		testutil.CreateTestComplaint(t, db, no, func(c *domain.Complaint) {
			c.DayKey = day
			c.Status = domain.StatusComplete
			completed := time.Date(2025, 1, 20, 11, 0, 0, 0, time.UTC)
			c.CompletedAt = &completed
			if i == 1 {
				c.Location = "Mumbai"
				c.LocationCode = "MUMBAI"
			}
		})
	}
	testutil.CreateTestComplaint(t, db, "JIPL/DELHINORTH/20250201/SERVICE/0001", func(c *domain.Complaint) {
		c.DayKey = "20250201"
		c.MonthKey = "202502"
		c.CreatedAt = time.Date(2025, 2, 1, 9, 0, 0, 0, time.UTC)
	})
}

func TestMonthlyReport_SummaryCounts(t *testing.T) {
	svc, db, _ := setupReportService(t)
	seedReportMonth(t, db)

	result, err := svc.MonthlyReport(context.Background(), domain.ReportFilters{MonthKey: "202501"})
	require.NoError(t, err)

	assert.True(t, result.OK)
	assert.Len(t, result.Rows, 5)
	assert.Equal(t, 3, result.Summary.Pending)
	assert.Equal(t, 2, result.Summary.Complete)
	assert.Equal(t, 5, result.Summary.Total)
}

func TestMonthlyReport_SummaryReflectsFilters(t *testing.T) {
	svc, db, _ := setupReportService(t)
	seedReportMonth(t, db)
	ctx := context.Background()

	t.Run("status filter", func(t *testing.T) {
		result, err := svc.MonthlyReport(ctx, domain.ReportFilters{MonthKey: "202501", Status: "Complete"})
		require.NoError(t, err)
		assert.Equal(t, 0, result.Summary.Pending)
		assert.Equal(t, 2, result.Summary.Complete)
		assert.Equal(t, 2, result.Summary.Total)
	})

	t.Run("location filter normalizes free text", func(t *testing.T) {
		result, err := svc.MonthlyReport(ctx, domain.ReportFilters{MonthKey: "202501", Location: " mum-bai "})
		require.NoError(t, err)
		assert.Equal(t, 2, result.Summary.Total)
		for _, row := range result.Rows {
			assert.Equal(t, "MUMBAI", row.LocationCode)
		}
	})

	t.Run("unknown status means no filter", func(t *testing.T) {
		result, err := svc.MonthlyReport(ctx, domain.ReportFilters{MonthKey: "202501", Status: "whatever"})
		require.NoError(t, err)
		assert.Equal(t, 5, result.Summary.Total)
	})
}

func TestMonthlyReport_EmptyMonth(t *testing.T) {
	svc, db, _ := setupReportService(t)
	seedReportMonth(t, db)

	result, err := svc.MonthlyReport(context.Background(), domain.ReportFilters{MonthKey: "202412"})
	require.NoError(t, err)
	assert.Empty(t, result.Rows)
	assert.Equal(t, domain.ReportSummary{}, result.Summary)
}

func TestMonthlyReport_BadMonthKey(t *testing.T) {
	svc, _, _ := setupReportService(t)
	ctx := context.Background()

	for _, key := range []string{"", "2025", "2025-01", "20250101", "2025ab"} {
		_, err := svc.MonthlyReport(ctx, domain.ReportFilters{MonthKey: key})
		require.Error(t, err, "month key %q must be rejected", key)

		var ve *service.ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, "monthKey", ve.Field)
	}
}

func TestExport_WritesEachFormat(t *testing.T) {
	svc, db, outDir := setupReportService(t)
	seedReportMonth(t, db)
	ctx := context.Background()

	for _, format := range []string{"xlsx", "pdf", "csv"} {
		t.Run(format, func(t *testing.T) {
			path, err := svc.Export(ctx, &domain.ExportRequest{
				MonthKey: "202501",
				Format:   format,
			})
			require.NoError(t, err)
			assert.Equal(t, filepath.Join(outDir, "complaints_202501."+format), path)

			info, err := os.Stat(path)
			require.NoError(t, err)
			assert.Greater(t, info.Size(), int64(0))
		})
	}
}

func TestExport_StorageFailure(t *testing.T) {
	db := testutil.SetupTestDB(t)
	repo := repository.NewComplaintRepository(db)

	// point the exporter at a path that cannot be a directory
	blocked := filepath.Join(t.TempDir(), "occupied")
	require.NoError(t, os.WriteFile(blocked, []byte("x"), 0o644))

	exporter := export.NewExporter(filepath.Join(blocked, "nested"), zap.NewNop())
	svc := service.NewReportService(repo, exporter, testNumbering, zap.NewNop())

	_, err := svc.Export(context.Background(), &domain.ExportRequest{
		MonthKey: "202501",
		Format:   "csv",
	})
	assert.ErrorIs(t, err, service.ErrStorage)
}
