package notification

import (
	"context"
	"log/slog"
	"time"

	"github.com/lucidata/hr-core-go/internal/domain/notification"
)

const flushTimeout = 30 * time.Second

// batchWriter accumulates queued notifications for one worker goroutine.
type batchWriter struct {
	svc     *service
	id      int
	pending []*notification.Notification
}

func (b *batchWriter) add(n *notification.Notification) {
	b.pending = append(b.pending, n)
	if len(b.pending) >= b.svc.config.BatchSize {
		b.flush()
	}
}

// flush writes the pending batch with one COPY and fans it out to SSE
// subscribers. A failed batch is logged and dropped.
func (b *batchWriter) flush() {
	if len(b.pending) == 0 {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), flushTimeout)
	defer cancel()

	if err := b.svc.repo.CreateBatch(ctx, b.pending); err != nil {
		slog.Error("Failed to batch insert notifications", "worker", b.id, "count", len(b.pending), "error", err)
	} else {
		slog.Debug("Inserted notifications", "worker", b.id, "count", len(b.pending))
		for _, n := range b.pending {
			b.svc.publish(n)
		}
	}
	b.pending = make([]*notification.Notification, 0, b.svc.config.BatchSize)
}

// run flushes on BatchSize or FlushInterval, whichever comes first, and
// drains the queue once the service is stopped.
func (b *batchWriter) run() {
	defer b.svc.wg.Done()

	ticker := time.NewTicker(b.svc.config.FlushInterval)
	defer ticker.Stop()

	for {
		select {
		case n := <-b.svc.queue:
			b.add(n)
		case <-ticker.C:
			b.flush()
		case <-b.svc.stopCh:
			b.drain()
			return
		}
	}
}

func (b *batchWriter) drain() {
	for {
		select {
		case n := <-b.svc.queue:
			b.add(n)
		default:
			b.flush()
			return
		}
	}
}
