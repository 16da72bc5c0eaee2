package domain

import (
	"time"
)

// ComplaintStatus represents the lifecycle state of a complaint
type ComplaintStatus string

const (
	StatusPending  ComplaintStatus = "Pending"
	StatusComplete ComplaintStatus = "Complete"
)

// IsValidStatus reports whether s is one of the two lifecycle states
func IsValidStatus(s string) bool {
	return s == string(StatusPending) || s == string(StatusComplete)
}

// Complaint is the sole persisted entity: one registered service complaint.
//
// ComplaintNo, LocationCode, DepartmentCode, DayKey, MonthKey, SeqNo and
// CreatedAt are fixed at creation. They are embedded in (or derived alongside)
// the complaint number and must never be mutated afterwards; only the fields
// listed in UpdateComplaintRequest are editable.
type Complaint struct {
	ID uint `gorm:"primaryKey;autoIncrement" json:"id"`

	// ComplaintNo is the human-readable identifier, e.g.
	// JIPL/DELHINORTH/20250115/SERVICE/0001. Globally unique for the
	// lifetime of the store.
	ComplaintNo string `gorm:"type:varchar(64);uniqueIndex;not null;column:complaint_no" json:"complaintNo"`

	Name     string `gorm:"type:varchar(200);not null" json:"name"`
	Mobile   string `gorm:"type:varchar(20);not null" json:"mobile"`
	Location string `gorm:"type:varchar(200);not null" json:"location"`
	// LocationCode is the normalized token derived from Location
	LocationCode string `gorm:"type:varchar(12);not null;index:idx_scope_day,priority:1;column:location_code" json:"locationCode"`
	Department   string `gorm:"type:varchar(200);not null" json:"department"`
	// DepartmentCode is the normalized token derived from Department
	DepartmentCode string `gorm:"type:varchar(12);not null;index:idx_scope_day,priority:2;column:department_code" json:"departmentCode"`
	Product        string `gorm:"type:varchar(200);not null" json:"product"`
	SerialNo       string `gorm:"type:varchar(100);not null;column:serial_no" json:"serialNumber"`
	Problem        string `gorm:"type:text;not null;default:''" json:"problem"`

	Status ComplaintStatus `gorm:"type:varchar(20);not null;default:'Pending';index" json:"status"`

	// DayKey is the 8-digit calendar day of creation (yyyymmdd); partitions
	// sequence numbering together with the scope tokens
	DayKey string `gorm:"type:varchar(8);not null;index:idx_scope_day,priority:3;column:day_key" json:"dayKey"`
	// MonthKey is the 6-digit calendar month of creation (yyyymm); used for
	// report filtering
	MonthKey string `gorm:"type:varchar(6);not null;index;column:month_key" json:"monthKey"`
	// SeqNo is the per-scope, per-day ordinal embedded in ComplaintNo
	SeqNo int `gorm:"not null;column:seq_no" json:"seqNo"`

	CreatedAt time.Time `gorm:"not null;index" json:"createdAt"`
	// CompletedAt is set exactly when Status is Complete, null otherwise
	CompletedAt *time.Time `gorm:"column:completed_at" json:"completedAt,omitempty"`
	UpdatedAt   time.Time  `gorm:"not null" json:"updatedAt"`
}

// TableName overrides the GORM default pluralization
func (Complaint) TableName() string {
	return "complaints"
}
