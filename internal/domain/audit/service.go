package audit

import "context"

// Recorder is what mutating services depend on. Recording never fails the
// caller's operation.
type Recorder interface {
	Record(ctx context.Context, action Action, entityType EntityType, entityID string, details map[string]interface{})
}

type AuditService interface {
	Recorder
	List(ctx context.Context, filter EntryFilter) (ListEntryResponse, error)
}
