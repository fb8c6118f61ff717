package settings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUpdateSettingsRequest_Validate(t *testing.T) {
	days := func(v int) *int { return &v }
	actor := func(v string) *string { return &v }

	tests := []struct {
		name    string
		req     UpdateSettingsRequest
		wantErr bool
	}{
		{"empty update", UpdateSettingsRequest{}, false},
		{"lower bound", UpdateSettingsRequest{WarnDays: days(7)}, false},
		{"upper bound", UpdateSettingsRequest{WarnDays: days(180)}, false},
		{"below range", UpdateSettingsRequest{WarnDays: days(6)}, true},
		{"above range", UpdateSettingsRequest{WarnDays: days(181)}, true},
		{"blank actor", UpdateSettingsRequest{AuditActor: actor("  ")}, true},
		{"actor", UpdateSettingsRequest{AuditActor: actor("Ioana Popescu")}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.req.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
