package settings

import (
	"fmt"
	"time"

	"github.com/lucidata/hr-core-go/internal/config"
	"github.com/lucidata/hr-core-go/internal/pkg/validator"
)

type UpdateSettingsRequest struct {
	WarnDays   *int    `json:"warn_days,omitempty"`
	AuditActor *string `json:"audit_actor,omitempty"`
}

func (r *UpdateSettingsRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.WarnDays != nil && (*r.WarnDays < config.MinWarnDays || *r.WarnDays > config.MaxWarnDays) {
		errs.Add("warn_days", fmt.Sprintf("warn_days must be between %d and %d", config.MinWarnDays, config.MaxWarnDays))
	}
	if r.AuditActor != nil {
		if validator.IsEmpty(*r.AuditActor) {
			errs.Add("audit_actor", "audit_actor must not be empty")
		} else {
			errs.MaxLen("audit_actor", *r.AuditActor, 100)
		}
	}

	return errs.Err()
}

type SettingsResponse struct {
	WarnDays   int       `json:"warn_days"`
	AuditActor string    `json:"audit_actor"`
	UpdatedAt  time.Time `json:"updated_at"`
}
