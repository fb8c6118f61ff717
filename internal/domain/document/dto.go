package document

import (
	"mime/multipart"
	"strings"
	"time"

	"github.com/lucidata/hr-core-go/internal/pkg/validator"
)

const dateLayout = "2006-01-02"

type CreateDocumentRequest struct {
	EmployeeID string `json:"employee_id"`
	Category   string `json:"category"`
	FileName   string `json:"file_name"`
	IssueDate  string `json:"issue_date"`
	ExpiryDate string `json:"expiry_date"`

	File       multipart.File        `json:"-"`
	FileHeader *multipart.FileHeader `json:"-"`

	issue  time.Time
	expiry time.Time
}

func (r *CreateDocumentRequest) Validate() error {
	var errs validator.ValidationErrors

	errs.Required("employee_id", r.EmployeeID)
	if !validator.IsEmpty(r.EmployeeID) && !validator.IsValidUUID(r.EmployeeID) {
		errs.Add("employee_id", "employee_id must be a valid UUID")
	}
	if !Category(r.Category).IsValid() {
		errs.Add("category", "category must be one of identity_card, contract, diploma, certificate")
	}
	if r.FileHeader == nil {
		errs.Required("file_name", r.FileName)
	}

	var issueOK, expiryOK bool
	if t, err := ParseDate("issue_date", r.IssueDate); err != nil {
		errs.Add("issue_date", err.Error())
	} else {
		r.issue, issueOK = t, true
	}
	if t, err := ParseDate("expiry_date", r.ExpiryDate); err != nil {
		errs.Add("expiry_date", err.Error())
	} else {
		r.expiry, expiryOK = t, true
	}
	if issueOK && expiryOK && !r.expiry.After(r.issue) {
		errs.Add("expiry_date", ErrExpiryBeforeIssue.Error())
	}

	return errs.Err()
}

// Dates returns the parsed issue and expiry dates. Only valid after Validate.
func (r *CreateDocumentRequest) Dates() (issue, expiry time.Time) {
	return r.issue, r.expiry
}

type UpdateDocumentRequest struct {
	ID         string  `json:"-"`
	Category   *string `json:"category,omitempty"`
	FileName   *string `json:"file_name,omitempty"`
	IssueDate  *string `json:"issue_date,omitempty"`
	ExpiryDate *string `json:"expiry_date,omitempty"`

	issue  *time.Time
	expiry *time.Time
}

func (r *UpdateDocumentRequest) Validate() error {
	var errs validator.ValidationErrors

	errs.Required("id", r.ID)
	if r.Category != nil && !Category(*r.Category).IsValid() {
		errs.Add("category", "category must be one of identity_card, contract, diploma, certificate")
	}
	if r.FileName != nil && validator.IsEmpty(*r.FileName) {
		errs.Add("file_name", "file_name must not be empty")
	}
	r.issue, r.expiry = nil, nil
	if r.IssueDate != nil {
		if t, err := ParseDate("issue_date", *r.IssueDate); err != nil {
			errs.Add("issue_date", err.Error())
		} else {
			r.issue = &t
		}
	}
	if r.ExpiryDate != nil {
		if t, err := ParseDate("expiry_date", *r.ExpiryDate); err != nil {
			errs.Add("expiry_date", err.Error())
		} else {
			r.expiry = &t
		}
	}

	return errs.Err()
}

// Dates returns the dates parsed by Validate; nil means the field was not
// sent.
func (r *UpdateDocumentRequest) Dates() (issue, expiry *time.Time) {
	return r.issue, r.expiry
}

type DocumentFilter struct {
	EmployeeID *string
	Category   *string
	Status     *string
	Search     *string
	SortBy     string
	SortOrder  string
	Page       int
	Limit      int
}

var sortableFields = []string{"expiry_date", "issue_date", "uploaded_at", "file_name"}

func (f *DocumentFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.EmployeeID != nil && !validator.IsValidUUID(*f.EmployeeID) {
		errs.Add("employee_id", "employee_id must be a valid UUID")
	}
	if f.Category != nil && !Category(*f.Category).IsValid() {
		errs.Add("category", "invalid category")
	}
	if f.Status != nil && !Status(*f.Status).IsValid() {
		errs.Add("status", "status must be one of OK, Warning, Expired")
	}
	if f.SortBy != "" && !validator.IsInSlice(f.SortBy, sortableFields) {
		errs.Add("sort_by", "sort_by must be one of "+strings.Join(sortableFields, ", "))
	}
	if f.SortOrder != "" && !validator.IsInSlice(strings.ToLower(f.SortOrder), []string{"asc", "desc"}) {
		errs.Add("sort_order", "sort_order must be asc or desc")
	}

	return errs.Err()
}

type DocumentResponse struct {
	ID            string    `json:"id"`
	EmployeeID    string    `json:"employee_id"`
	Category      Category  `json:"category"`
	FileName      string    `json:"file_name"`
	FileType      string    `json:"file_type,omitempty"`
	FileSize      int64     `json:"file_size"`
	FileURL       *string   `json:"file_url,omitempty"`
	IssueDate     string    `json:"issue_date"`
	ExpiryDate    string    `json:"expiry_date"`
	Status        Status    `json:"status"`
	DaysRemaining int       `json:"days_remaining"`
	UploadedAt    time.Time `json:"uploaded_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// NewDocumentResponse builds the API view of doc. Status and DaysRemaining
// must already be evaluated at now.
func NewDocumentResponse(doc Document, now time.Time) DocumentResponse {
	return DocumentResponse{
		ID:            doc.ID,
		EmployeeID:    doc.EmployeeID,
		Category:      doc.Category,
		FileName:      doc.FileName,
		FileType:      doc.FileType,
		FileSize:      doc.FileSize,
		IssueDate:     doc.IssueDate.Format(dateLayout),
		ExpiryDate:    doc.ExpiryDate.Format(dateLayout),
		Status:        doc.Status,
		DaysRemaining: DaysRemaining(doc.ExpiryDate, now),
		UploadedAt:    doc.UploadedAt,
		UpdatedAt:     doc.UpdatedAt,
	}
}

type ListDocumentResponse struct {
	Documents  []DocumentResponse `json:"documents"`
	TotalCount int64              `json:"total_count"`
	Page       int                `json:"page"`
	Limit      int                `json:"limit"`
	TotalPages int                `json:"total_pages"`
}

// RefreshResult summarizes a status recompute pass.
type RefreshResult struct {
	Scanned int        `json:"scanned"`
	Changed []Document `json:"-"`
}
