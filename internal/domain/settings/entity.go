package settings

import "time"

// Settings is the single persisted row of runtime-tunable options.
type Settings struct {
	WarnDays   int
	AuditActor string
	UpdatedAt  time.Time
}
