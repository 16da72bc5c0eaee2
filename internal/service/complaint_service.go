package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jipl/complaint-register/internal/config"
	"github.com/jipl/complaint-register/internal/domain"
	"github.com/jipl/complaint-register/internal/numbering"
	"github.com/jipl/complaint-register/internal/repository"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Fallback tokens used when a scope field normalizes to nothing
const (
	fallbackLocationToken   = "LOC"
	fallbackDepartmentToken = "DEPT"
)

// ComplaintService validates registration payloads, derives the scope
// tokens and calendar keys, and drives the allocate+insert step that
// assigns complaint numbers.
type ComplaintService struct {
	repo   *repository.ComplaintRepository
	numCfg config.NumberingConfig
	logger *zap.Logger
	// now is swappable for tests
	now func() time.Time
}

func NewComplaintService(
	repo *repository.ComplaintRepository,
	numCfg config.NumberingConfig,
	logger *zap.Logger,
) *ComplaintService {
	return &ComplaintService{
		repo:   repo,
		numCfg: numCfg,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// SetClock overrides the service clock. Tests only.
func (s *ComplaintService) SetClock(now func() time.Time) {
	s.now = now
}

// Create validates the payload, allocates the next complaint number for the
// (location, department, day) scope and persists the record. Status is
// forced to Pending and the completion timestamp to null regardless of
// input. All validation happens before any write.
func (s *ComplaintService) Create(ctx context.Context, req *domain.CreateComplaintRequest) (*domain.Complaint, error) {
	name := strings.TrimSpace(req.Name)
	mobile := strings.TrimSpace(req.Mobile)
	location := strings.TrimSpace(req.Location)
	department := strings.TrimSpace(req.Department)
	product := strings.TrimSpace(req.Product)
	serialNo := strings.TrimSpace(req.SerialNumber)
	problem := strings.TrimSpace(req.Problem)

	switch {
	case name == "":
		return nil, NewValidationError("name", "must not be empty")
	case mobile == "":
		return nil, NewValidationError("mobile", "must not be empty")
	case location == "":
		return nil, NewValidationError("location", "must not be empty")
	case department == "":
		return nil, NewValidationError("department", "must not be empty")
	case product == "":
		return nil, NewValidationError("product", "must not be empty")
	case serialNo == "":
		return nil, NewValidationError("serialNumber", "must not be empty")
	}

	normalizedMobile, err := normalizeMobile(mobile)
	if err != nil {
		return nil, err
	}

	now := s.now()
	complaint := &domain.Complaint{
		Name:           name,
		Mobile:         normalizedMobile,
		Location:       location,
		LocationCode:   numbering.NormalizeToken(location, fallbackLocationToken, s.numCfg.TokenMaxLength),
		Department:     department,
		DepartmentCode: numbering.NormalizeToken(department, fallbackDepartmentToken, s.numCfg.TokenMaxLength),
		Product:        product,
		SerialNo:       serialNo,
		Problem:        problem,
		Status:         domain.StatusPending,
		DayKey:         numbering.DayKey(now),
		MonthKey:       numbering.MonthKey(now),
		CreatedAt:      now,
		CompletedAt:    nil,
		UpdatedAt:      now,
	}

	buildNumber := func(seq int) string {
		return numbering.Build(
			s.numCfg.OrgPrefix,
			complaint.LocationCode,
			complaint.DepartmentCode,
			complaint.DayKey,
			seq,
			s.numCfg.SequencePadWidth,
		)
	}

	if err := s.repo.CreateWithSequence(ctx, complaint, buildNumber); err != nil {
		if errors.Is(err, repository.ErrDuplicateComplaintNo) {
			// Unreachable with the transactional allocator; a sighting
			// means the locking discipline is broken somewhere.
			s.logger.Error("complaint number collision",
				zap.String("complaint_no", complaint.ComplaintNo),
				zap.Error(err))
			return nil, fmt.Errorf("%w: %s", ErrIntegrity, complaint.ComplaintNo)
		}
		return nil, fmt.Errorf("failed to create complaint: %w", err)
	}

	s.logger.Info("complaint registered",
		zap.Uint("id", complaint.ID),
		zap.String("complaint_no", complaint.ComplaintNo),
		zap.String("location_code", complaint.LocationCode),
		zap.String("department_code", complaint.DepartmentCode),
		zap.Int("sequence", complaint.SeqNo))

	return complaint, nil
}

// GetByID returns one complaint
func (s *ComplaintService) GetByID(ctx context.Context, id uint) (*domain.Complaint, error) {
	complaint, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get complaint: %w", err)
	}
	return complaint, nil
}

// GetByNumber resolves a complaint by its human-readable number
func (s *ComplaintService) GetByNumber(ctx context.Context, complaintNo string) (*domain.Complaint, error) {
	complaintNo = strings.TrimSpace(complaintNo)
	if complaintNo == "" {
		return nil, NewValidationError("number", "must not be empty")
	}

	complaint, err := s.repo.GetByNumber(ctx, complaintNo)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get complaint: %w", err)
	}
	return complaint, nil
}

// UpdateStatus flips the lifecycle state. Transitioning to Complete stamps
// the completion time; transitioning to Pending clears it.
func (s *ComplaintService) UpdateStatus(ctx context.Context, id uint, status string) error {
	if !domain.IsValidStatus(status) {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	var completedAt *time.Time
	if status == string(domain.StatusComplete) {
		now := s.now()
		completedAt = &now
	}

	affected, err := s.repo.UpdateStatus(ctx, id, domain.ComplaintStatus(status), completedAt)
	if err != nil {
		return fmt.Errorf("failed to update status: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}

	s.logger.Info("complaint status updated",
		zap.Uint("id", id),
		zap.String("status", status))
	return nil
}

// UpdateFields applies a partial update to the editable field set. The
// complaint number, location, department, creation timestamp and calendar
// keys are never touched. A status change to Complete keeps an existing
// completion timestamp instead of overwriting it.
func (s *ComplaintService) UpdateFields(ctx context.Context, id uint, req *domain.UpdateComplaintRequest) error {
	complaint, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("failed to load complaint: %w", err)
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return NewValidationError("name", "must not be empty")
		}
		complaint.Name = name
	}
	if req.Mobile != nil {
		mobile, err := normalizeMobile(strings.TrimSpace(*req.Mobile))
		if err != nil {
			return err
		}
		complaint.Mobile = mobile
	}
	if req.Product != nil {
		product := strings.TrimSpace(*req.Product)
		if product == "" {
			return NewValidationError("product", "must not be empty")
		}
		complaint.Product = product
	}
	if req.SerialNumber != nil {
		serialNo := strings.TrimSpace(*req.SerialNumber)
		if serialNo == "" {
			return NewValidationError("serialNumber", "must not be empty")
		}
		complaint.SerialNo = serialNo
	}
	if req.Problem != nil {
		problem := strings.TrimSpace(*req.Problem)
		if problem == "" {
			return NewValidationError("problem", "must not be empty")
		}
		complaint.Problem = problem
	}
	if req.Status != nil {
		if !domain.IsValidStatus(*req.Status) {
			return fmt.Errorf("%w: %q", ErrInvalidStatus, *req.Status)
		}
		newStatus := domain.ComplaintStatus(*req.Status)
		if newStatus == domain.StatusComplete {
			if complaint.CompletedAt == nil {
				now := s.now()
				complaint.CompletedAt = &now
			}
		} else {
			complaint.CompletedAt = nil
		}
		complaint.Status = newStatus
	}

	complaint.UpdatedAt = s.now()

	affected, err := s.repo.Update(ctx, complaint)
	if err != nil {
		return fmt.Errorf("failed to update complaint: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}

	s.logger.Info("complaint updated", zap.Uint("id", id))
	return nil
}

// List returns complaints matching the listing filters, newest first
func (s *ComplaintService) List(ctx context.Context, filters domain.ListFilters) ([]domain.Complaint, error) {
	complaints, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list complaints: %w", err)
	}
	return complaints, nil
}

// normalizeMobile strips whitespace and enforces the 7-15 digit format
func normalizeMobile(mobile string) (string, error) {
	stripped := strings.Map(func(r rune) rune {
		if r == ' ' || r == '\t' {
			return -1
		}
		return r
	}, mobile)

	if len(stripped) < 7 || len(stripped) > 15 {
		return "", NewValidationError("mobile", "must be 7-15 digits")
	}
	for _, r := range stripped {
		if r < '0' || r > '9' {
			return "", NewValidationError("mobile", "must contain digits only")
		}
	}
	return stripped, nil
}
