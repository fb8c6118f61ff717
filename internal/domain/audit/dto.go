package audit

import (
	"time"

	"github.com/lucidata/hr-core-go/internal/pkg/validator"
)

type EntryFilter struct {
	EntityType *string
	EntityID   *string
	Actor      *string
	Page       int
	Limit      int
}

var entityTypes = []string{
	string(EntityEmployee),
	string(EntityDocument),
	string(EntityWorkflow),
	string(EntityFeedback),
	string(EntitySettings),
}

func (f *EntryFilter) Validate() error {
	var errs validator.ValidationErrors
	if f.EntityType != nil && !validator.IsInSlice(*f.EntityType, entityTypes) {
		errs.Add("entity_type", ErrInvalidEntityType.Error())
	}
	return errs.Err()
}

type EntryResponse struct {
	ID         string                 `json:"id"`
	Actor      string                 `json:"actor"`
	Action     Action                 `json:"action"`
	EntityType EntityType             `json:"entity_type"`
	EntityID   string                 `json:"entity_id"`
	Details    map[string]interface{} `json:"details,omitempty"`
	CreatedAt  time.Time              `json:"created_at"`
}

type ListEntryResponse struct {
	Entries    []EntryResponse `json:"entries"`
	TotalCount int64           `json:"total_count"`
	Page       int             `json:"page"`
	Limit      int             `json:"limit"`
	TotalPages int             `json:"total_pages"`
}
