package testutil

import (
	"testing"
	"time"

	"github.com/jipl/complaint-register/internal/domain"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SetupTestDB opens a fresh in-memory SQLite database with the complaint
// schema migrated. Each call returns an isolated database.
func SetupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err, "failed to open test database")

	// An in-memory SQLite database exists per connection, so the pool must
	// stay at one connection or later queries would see an empty schema.
	sqlDB, err := db.DB()
	require.NoError(t, err, "failed to access underlying sql.DB")
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&domain.Complaint{}), "failed to migrate test schema")

	return db
}

// CreateTestComplaint inserts a complaint with sensible defaults, overridden
// by mutate when given, and returns it
func CreateTestComplaint(t *testing.T, db *gorm.DB, complaintNo string, mutate func(*domain.Complaint)) *domain.Complaint {
	now := time.Date(2025, 1, 15, 10, 30, 0, 0, time.UTC)
	c := &domain.Complaint{
		ComplaintNo:    complaintNo,
		Name:           "Asha Verma",
		Mobile:         "9876543210",
		Location:       "Delhi North",
		LocationCode:   "DELHINORTH",
		Department:     "Service",
		DepartmentCode: "SERVICE",
		Product:        "Water Purifier",
		SerialNo:       "WP-2024-1187",
		Problem:        "No power on startup",
		Status:         domain.StatusPending,
		DayKey:         "20250115",
		MonthKey:       "202501",
		SeqNo:          1,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if mutate != nil {
		mutate(c)
	}
	require.NoError(t, db.Create(c).Error, "failed to insert test complaint")
	return c
}
