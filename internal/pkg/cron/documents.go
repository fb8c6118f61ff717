package cron

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/lucidata/hr-core-go/internal/domain/document"
	"github.com/lucidata/hr-core-go/internal/domain/notification"
)

const DocumentExpiryScan = "document_expiry_scan"

type DocumentJobs struct {
	documentSvc document.DocumentService
	notifier    notification.Notifier
	interval    time.Duration
	now         func() time.Time
}

func NewDocumentJobs(documentSvc document.DocumentService, notifier notification.Notifier, interval time.Duration) *DocumentJobs {
	return &DocumentJobs{
		documentSvc: documentSvc,
		notifier:    notifier,
		interval:    interval,
		now:         time.Now,
	}
}

func (j *DocumentJobs) RegisterJobs(scheduler *Scheduler) {
	scheduler.AddJob(DocumentExpiryScan, j.interval, j.ScanExpiry)
}

// ScanExpiry refreshes cached document statuses and tells HR about every
// document that moved into Warning or Expired since the last scan.
func (j *DocumentJobs) ScanExpiry(ctx context.Context) error {
	now := j.now().UTC()
	result, err := j.documentSvc.RefreshStatuses(ctx, now)
	if err != nil {
		return fmt.Errorf("refresh document statuses: %w", err)
	}

	notified := 0
	for _, doc := range result.Changed {
		req, ok := expiryNotification(doc, now)
		if !ok {
			continue
		}
		if err := j.notifier.QueueNotification(ctx, req); err != nil {
			slog.Error("Cron: Failed to queue document notification", "document_id", doc.ID, "error", err)
			continue
		}
		notified++
	}

	slog.Info("Cron: Document expiry scan finished",
		"scanned", result.Scanned, "changed", len(result.Changed), "notified", notified)
	return nil
}

func expiryNotification(doc document.Document, now time.Time) (notification.CreateNotificationRequest, bool) {
	days := document.DaysRemaining(doc.ExpiryDate, now)
	data := map[string]interface{}{
		"document_id":    doc.ID,
		"employee_id":    doc.EmployeeID,
		"category":       doc.Category,
		"expiry_date":    doc.ExpiryDate.Format("2006-01-02"),
		"days_remaining": days,
	}

	switch doc.Status {
	case document.StatusWarning:
		return notification.CreateNotificationRequest{
			RecipientID: notification.RecipientHR,
			Type:        notification.TypeDocumentExpiring,
			Title:       "Document expiring soon",
			Message:     fmt.Sprintf("%s expires in %d day(s)", doc.FileName, days),
			Data:        data,
		}, true
	case document.StatusExpired:
		return notification.CreateNotificationRequest{
			RecipientID: notification.RecipientHR,
			Type:        notification.TypeDocumentExpired,
			Title:       "Document expired",
			Message:     fmt.Sprintf("%s expired %d day(s) ago", doc.FileName, -days),
			Data:        data,
		}, true
	}
	return notification.CreateNotificationRequest{}, false
}
