package workflow

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

type Status string

const (
	StatusDraft    Status = "Draft"
	StatusPending  Status = "Pending"
	StatusApproved Status = "Approved"
	StatusRejected Status = "Rejected"
)

var validStatuses = map[Status]bool{
	StatusDraft:    true,
	StatusPending:  true,
	StatusApproved: true,
	StatusRejected: true,
}

// IsTerminal reports whether the overall status can no longer change.
func (s Status) IsTerminal() bool {
	return s == StatusApproved || s == StatusRejected
}

func (s Status) IsValid() bool {
	return validStatuses[s]
}

type Decision string

const (
	DecisionApproved Decision = "Approved"
	DecisionRejected Decision = "Rejected"
)

func (d Decision) IsValid() bool {
	return d == DecisionApproved || d == DecisionRejected
}

// Step names one entry kind in the approvals log.
type Step string

const (
	StepManager Step = "Manager"
	StepHR      Step = "HR"
	StepFinance Step = "Finance"
	StepComment Step = "Comment"
)

// ApprovalSteps is the fixed decision order.
var ApprovalSteps = []Step{StepManager, StepHR, StepFinance}

func (s Step) IsApprovalStep() bool {
	return s == StepManager || s == StepHR || s == StepFinance
}

// Labels returned by NextStep besides the approval step names.
const (
	NextDraft    = "Draft"
	NextRejected = "Rejected"
	NextDone     = "Done"
)

type Type string

const (
	TypeLeave           Type = "leave"
	TypeDataChange      Type = "data_change"
	TypeDocumentRequest Type = "document_request"
	TypeEquipment       Type = "equipment"
)

func AllTypes() []Type {
	return []Type{TypeLeave, TypeDataChange, TypeDocumentRequest, TypeEquipment}
}

func (t Type) IsValid() bool {
	for _, known := range AllTypes() {
		if t == known {
			return true
		}
	}
	return false
}

type Payload struct {
	Reason  string            `json:"reason"`
	Days    *int              `json:"days,omitempty"`
	Details map[string]string `json:"details,omitempty"`
}

// Approval is one entry of the approvals log. Decision is nil for the
// placeholder seeded on submit and for comments.
type Approval struct {
	Step       Step      `json:"step"`
	ApproverID *string   `json:"approver_id,omitempty"`
	Decision   *Decision `json:"decision"`
	Comment    string    `json:"comment,omitempty"`
	Date       time.Time `json:"date"`
}

type Attachment struct {
	FileName   string    `json:"file_name"`
	FileType   string    `json:"file_type,omitempty"`
	FileSize   int64     `json:"file_size"`
	FilePath   string    `json:"file_path,omitempty"`
	UploadedAt time.Time `json:"uploaded_at"`
}

type Approvals []Approval

type Attachments []Attachment

type Request struct {
	ID          string
	Type        Type
	RequesterID string
	Payload     Payload
	Status      Status
	Approvals   Approvals
	Attachments Attachments
	Version     int
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Value and Scan store the JSON columns. Postgres keeps them as JSONB,
// SQLite as TEXT; both drivers may hand back either a string or bytes.

func (p Payload) Value() (driver.Value, error) { return jsonValue(p) }

func (p *Payload) Scan(src any) error { return jsonScan(src, p) }

func (a Approvals) Value() (driver.Value, error) {
	if a == nil {
		a = Approvals{}
	}
	return jsonValue(a)
}

func (a *Approvals) Scan(src any) error { return jsonScan(src, a) }

func (a Attachments) Value() (driver.Value, error) {
	if a == nil {
		a = Attachments{}
	}
	return jsonValue(a)
}

func (a *Attachments) Scan(src any) error { return jsonScan(src, a) }

func jsonValue(v any) (driver.Value, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func jsonScan(src any, dst any) error {
	var data []byte
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("unsupported JSON column type %T", src)
	}
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, dst)
}
