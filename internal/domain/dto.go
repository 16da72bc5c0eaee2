package domain

// CreateComplaintRequest is the payload for registering a new complaint.
// Problem is the only optional field; everything else must be non-empty
// after trimming. Mobile format is checked in the service layer (7-15
// digits after stripping whitespace).
type CreateComplaintRequest struct {
	Name         string `json:"name" validate:"required,max=200"`
	Mobile       string `json:"mobile" validate:"required,max=20"`
	Location     string `json:"location" validate:"required,max=200"`
	Department   string `json:"department" validate:"required,max=200"`
	Product      string `json:"product" validate:"required,max=200"`
	SerialNumber string `json:"serialNumber" validate:"required,max=100"`
	Problem      string `json:"problem" validate:"max=4000"`
}

// CreateComplaintResponse reports the allocated identifier
type CreateComplaintResponse struct {
	OK              bool   `json:"ok"`
	ID              uint   `json:"id"`
	ComplaintNumber string `json:"complaintNumber"`
}

// UpdateComplaintRequest applies a partial update to the editable field set.
// Nil fields are left untouched. Location and department are deliberately
// absent: they are embedded in the complaint number and locked post-creation.
type UpdateComplaintRequest struct {
	Name         *string `json:"name,omitempty" validate:"omitempty,max=200"`
	Mobile       *string `json:"mobile,omitempty" validate:"omitempty,max=20"`
	Product      *string `json:"product,omitempty" validate:"omitempty,max=200"`
	SerialNumber *string `json:"serialNumber,omitempty" validate:"omitempty,max=100"`
	Problem      *string `json:"problem,omitempty" validate:"omitempty,max=4000"`
	Status       *string `json:"status,omitempty" validate:"omitempty,oneof=Pending Complete"`
}

// UpdateStatusRequest toggles the lifecycle state
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=Pending Complete"`
}

// OKResponse is the generic success/failure envelope for mutations
type OKResponse struct {
	OK      bool   `json:"ok"`
	Message string `json:"message,omitempty"`
}

// ListFilters narrows the complaint listing. From/To are inclusive
// YYYY-MM-DD day bounds on the creation date; Search is matched as a
// substring across number, name, mobile, location, department, product
// and serial number.
type ListFilters struct {
	Status string
	From   string
	To     string
	Search string
}

// ReportFilters narrows the monthly report. Status values outside the
// enum and an empty Location mean "no filter"; Location is normalized
// before matching so the filter is case and punctuation insensitive.
type ReportFilters struct {
	MonthKey string
	Status   string
	Location string
}

// ReportSummary holds aggregate counts over the filtered row set
type ReportSummary struct {
	Pending  int `json:"pending"`
	Complete int `json:"complete"`
	Total    int `json:"total"`
}

// MonthlyReportResponse is the report query result
type MonthlyReportResponse struct {
	OK      bool          `json:"ok"`
	Rows    []Complaint   `json:"rows"`
	Summary ReportSummary `json:"summary"`
}

// ExportRequest renders a monthly report to a file
type ExportRequest struct {
	MonthKey string `json:"monthKey" validate:"required,len=6,numeric"`
	Status   string `json:"status,omitempty"`
	Location string `json:"location,omitempty"`
	Format   string `json:"format" validate:"required,oneof=xlsx pdf csv"`
	Title    string `json:"title,omitempty" validate:"max=200"`
}

// ExportResponse reports where the rendered file was written
type ExportResponse struct {
	OK       bool   `json:"ok"`
	FilePath string `json:"filePath,omitempty"`
	Message  string `json:"message,omitempty"`
}

// ErrorResponse is the standard JSON error body
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
