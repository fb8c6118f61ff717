package workflow

import (
	"mime/multipart"
	"strings"
	"time"

	"github.com/lucidata/hr-core-go/internal/pkg/validator"
)

type CreateRequestRequest struct {
	Type        string            `json:"type"`
	RequesterID string            `json:"requester_id"`
	Reason      string            `json:"reason"`
	Days        *int              `json:"days,omitempty"`
	Details     map[string]string `json:"details,omitempty"`
	Submit      bool              `json:"submit"`
}

func (r *CreateRequestRequest) Validate() error {
	var errs validator.ValidationErrors

	if !Type(r.Type).IsValid() {
		errs.Add("type", "type must be one of leave, data_change, document_request, equipment")
	}
	errs.Required("requester_id", r.RequesterID)
	if !validator.IsEmpty(r.RequesterID) && !validator.IsValidUUID(r.RequesterID) {
		errs.Add("requester_id", "requester_id must be a valid UUID")
	}
	errs.Required("reason", r.Reason)
	errs.MaxLen("reason", r.Reason, 2000)
	if r.Days != nil && *r.Days <= 0 {
		errs.Add("days", "days must be positive")
	}
	if Type(r.Type) == TypeLeave && r.Days == nil {
		errs.Add("days", "days is required for leave requests")
	}

	return errs.Err()
}

// VersionedRequest carries the version the client last read. A nil
// version skips the client-side check; the write is still versioned.
type VersionedRequest struct {
	ID      string `json:"-"`
	Version *int   `json:"version,omitempty"`
}

func (r *VersionedRequest) validate(errs *validator.ValidationErrors) {
	errs.Required("id", r.ID)
	if r.Version != nil && *r.Version < 1 {
		errs.Add("version", "version must be positive")
	}
}

type SubmitRequest struct {
	VersionedRequest
}

func (r *SubmitRequest) Validate() error {
	var errs validator.ValidationErrors
	r.validate(&errs)
	return errs.Err()
}

type DecideRequest struct {
	VersionedRequest
	Step     string `json:"step"`
	Decision string `json:"decision"`
	Comment  string `json:"comment,omitempty"`

	// Filled from the caller identity, never from the body.
	ApproverID   string `json:"-"`
	ApproverRole string `json:"-"`
}

func (r *DecideRequest) Validate() error {
	var errs validator.ValidationErrors
	r.validate(&errs)

	if !Step(r.Step).IsApprovalStep() {
		errs.Add("step", "step must be one of Manager, HR, Finance")
	}
	if !Decision(r.Decision).IsValid() {
		errs.Add("decision", "decision must be Approved or Rejected")
	}
	errs.MaxLen("comment", r.Comment, 2000)

	return errs.Err()
}

type CommentRequest struct {
	VersionedRequest
	Text     string `json:"text"`
	AuthorID string `json:"-"`
}

func (r *CommentRequest) Validate() error {
	var errs validator.ValidationErrors
	r.validate(&errs)

	errs.Required("text", r.Text)
	errs.MaxLen("text", r.Text, 2000)

	return errs.Err()
}

type AttachRequest struct {
	VersionedRequest
	File       multipart.File        `json:"-"`
	FileHeader *multipart.FileHeader `json:"-"`
}

func (r *AttachRequest) Validate() error {
	var errs validator.ValidationErrors
	r.validate(&errs)

	if r.File == nil || r.FileHeader == nil {
		errs.Add("file", ErrAttachmentRequired.Error())
	}

	return errs.Err()
}

type DeleteRequest struct {
	VersionedRequest
}

type RequestFilter struct {
	RequesterID *string
	Type        *string
	Status      *string
	SortOrder   string
	Page        int
	Limit       int
}

func (f *RequestFilter) Validate() error {
	var errs validator.ValidationErrors

	if f.RequesterID != nil && !validator.IsValidUUID(*f.RequesterID) {
		errs.Add("requester_id", "requester_id must be a valid UUID")
	}
	if f.Type != nil && !Type(*f.Type).IsValid() {
		errs.Add("type", "invalid workflow type")
	}
	if f.Status != nil && !Status(*f.Status).IsValid() {
		errs.Add("status", "status must be one of Draft, Pending, Approved, Rejected")
	}
	if f.SortOrder != "" && !validator.IsInSlice(strings.ToLower(f.SortOrder), []string{"asc", "desc"}) {
		errs.Add("sort_order", "sort_order must be asc or desc")
	}

	return errs.Err()
}

type RequestResponse struct {
	ID          string      `json:"id"`
	Type        Type        `json:"type"`
	RequesterID string      `json:"requester_id"`
	Payload     Payload     `json:"payload"`
	Status      Status      `json:"status"`
	NextStep    string      `json:"next_step"`
	Approvals   Approvals   `json:"approvals"`
	Attachments Attachments `json:"attachments"`
	Version     int         `json:"version"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

func NewRequestResponse(req Request) RequestResponse {
	approvals := req.Approvals
	if approvals == nil {
		approvals = Approvals{}
	}
	attachments := req.Attachments
	if attachments == nil {
		attachments = Attachments{}
	}
	return RequestResponse{
		ID:          req.ID,
		Type:        req.Type,
		RequesterID: req.RequesterID,
		Payload:     req.Payload,
		Status:      req.Status,
		NextStep:    NextStep(req),
		Approvals:   approvals,
		Attachments: attachments,
		Version:     req.Version,
		CreatedAt:   req.CreatedAt,
		UpdatedAt:   req.UpdatedAt,
	}
}

type ListRequestResponse struct {
	Requests   []RequestResponse `json:"requests"`
	TotalCount int64             `json:"total_count"`
	Page       int               `json:"page"`
	Limit      int               `json:"limit"`
	TotalPages int               `json:"total_pages"`
}
