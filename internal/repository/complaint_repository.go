package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jipl/complaint-register/internal/domain"
	"gorm.io/gorm"
)

// ErrDuplicateComplaintNo is returned when an insert collides with an
// existing complaint number. With allocation and insert running in one
// transaction this is unreachable; observing it means the locking
// discipline is broken, so callers must treat it as fatal, not retryable.
var ErrDuplicateComplaintNo = errors.New("duplicate complaint number")

// ComplaintRepository owns the durable complaint record set
type ComplaintRepository struct {
	db *gorm.DB
}

func NewComplaintRepository(db *gorm.DB) *ComplaintRepository {
	return &ComplaintRepository{db: db}
}

// editableColumns is the only field set a post-creation update may touch.
// The complaint number, scope tokens, keys and creation timestamp are
// locked because they are embedded in the identifier.
var editableColumns = []string{
	"name", "mobile", "product", "serial_no", "problem",
	"status", "completed_at", "updated_at",
}

// CreateWithSequence atomically allocates the next per-scope sequence and
// inserts the record. The max-sequence read and the insert run in a single
// transaction; SQLite's single-writer locking makes the read-then-insert
// pair atomic with respect to other creations in the same scope+day.
//
// The complaint must arrive with LocationCode, DepartmentCode and DayKey
// already set; SeqNo and ComplaintNo are filled in here via buildNumber.
func (r *ComplaintRepository) CreateWithSequence(ctx context.Context, c *domain.Complaint, buildNumber func(seq int) string) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		maxSeq, err := maxSequenceTx(tx, c.LocationCode, c.DepartmentCode, c.DayKey)
		if err != nil {
			return fmt.Errorf("failed to read max sequence: %w", err)
		}

		c.SeqNo = maxSeq + 1
		c.ComplaintNo = buildNumber(c.SeqNo)

		if err := tx.Create(c).Error; err != nil {
			if isUniqueViolation(err) {
				return fmt.Errorf("%w: %s", ErrDuplicateComplaintNo, c.ComplaintNo)
			}
			return fmt.Errorf("failed to insert complaint: %w", err)
		}
		return nil
	})
	return err
}

// MaxSequence returns the highest sequence already allocated for the exact
// (location code, department code, day key) scope, 0 when none exists.
func (r *ComplaintRepository) MaxSequence(ctx context.Context, locationCode, departmentCode, dayKey string) (int, error) {
	return maxSequenceTx(r.db.WithContext(ctx), locationCode, departmentCode, dayKey)
}

func maxSequenceTx(tx *gorm.DB, locationCode, departmentCode, dayKey string) (int, error) {
	var maxSeq int
	err := tx.Model(&domain.Complaint{}).
		Select("COALESCE(MAX(seq_no), 0)").
		Where("location_code = ? AND department_code = ? AND day_key = ?", locationCode, departmentCode, dayKey).
		Scan(&maxSeq).Error
	if err != nil {
		return 0, err
	}
	return maxSeq, nil
}

func (r *ComplaintRepository) GetByID(ctx context.Context, id uint) (*domain.Complaint, error) {
	var c domain.Complaint
	err := r.db.WithContext(ctx).First(&c, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *ComplaintRepository) GetByNumber(ctx context.Context, complaintNo string) (*domain.Complaint, error) {
	var c domain.Complaint
	err := r.db.WithContext(ctx).First(&c, "complaint_no = ?", complaintNo).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// Update persists the editable fields of c. Returns the number of rows
// affected so callers can distinguish a vanished record.
func (r *ComplaintRepository) Update(ctx context.Context, c *domain.Complaint) (int64, error) {
	res := r.db.WithContext(ctx).Model(&domain.Complaint{}).
		Where("id = ?", c.ID).
		Select(editableColumns).
		Updates(c)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

// UpdateStatus flips the lifecycle state. completedAt carries the matching
// completion timestamp (nil when returning to Pending).
func (r *ComplaintRepository) UpdateStatus(ctx context.Context, id uint, status domain.ComplaintStatus, completedAt *time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Model(&domain.Complaint{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":       status,
			"completed_at": completedAt,
		})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

// List returns complaints matching the listing filters, newest first
func (r *ComplaintRepository) List(ctx context.Context, filters domain.ListFilters) ([]domain.Complaint, error) {
	query := r.db.WithContext(ctx).Model(&domain.Complaint{})

	if domain.IsValidStatus(filters.Status) {
		query = query.Where("status = ?", filters.Status)
	}
	if filters.From != "" {
		query = query.Where("date(created_at) >= date(?)", filters.From)
	}
	if filters.To != "" {
		query = query.Where("date(created_at) <= date(?)", filters.To)
	}
	if s := strings.TrimSpace(filters.Search); s != "" {
		pattern := "%" + s + "%"
		query = query.Where(
			"complaint_no LIKE ? OR name LIKE ? OR mobile LIKE ? OR location LIKE ? OR department LIKE ? OR product LIKE ? OR serial_no LIKE ?",
			pattern, pattern, pattern, pattern, pattern, pattern, pattern,
		)
	}

	var complaints []domain.Complaint
	err := query.Order("created_at DESC, id DESC").Find(&complaints).Error
	return complaints, err
}

// ListByMonth returns complaints for one month key, optionally narrowed by
// status and by normalized location code, newest first. locationCode must
// already be normalized by the caller.
func (r *ComplaintRepository) ListByMonth(ctx context.Context, monthKey string, status string, locationCode string) ([]domain.Complaint, error) {
	query := r.db.WithContext(ctx).Model(&domain.Complaint{}).
		Where("month_key = ?", monthKey)

	if domain.IsValidStatus(status) {
		query = query.Where("status = ?", status)
	}
	if locationCode != "" {
		query = query.Where("location_code = ?", locationCode)
	}

	var complaints []domain.Complaint
	err := query.Order("created_at DESC, id DESC").Find(&complaints).Error
	return complaints, err
}

func (r *ComplaintRepository) Count(ctx context.Context) (int, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Complaint{}).Count(&count).Error
	return int(count), err
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	// mattn/go-sqlite3 surfaces constraint failures as plain errors
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
