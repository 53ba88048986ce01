package history

import (
	"context"
	"log/slog"
	"time"
)

// ScheduleRetention prunes rows older than retention once now and then every interval until ctx ends
func (s *Store) ScheduleRetention(ctx context.Context, retention, interval time.Duration) {
	slog.Info("Scheduling history cleanup", "retention", retention.String(), "interval", interval.String())

	s.pruneOnce(ctx, retention)

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.pruneOnce(ctx, retention)
			case <-ctx.Done():
				return
			}
		}
	}()
}

func (s *Store) pruneOnce(ctx context.Context, retention time.Duration) {
	removed, err := s.Prune(ctx, retention)
	if err != nil {
		slog.Error("History cleanup failed", "error", err)
		return
	}
	slog.Info("History cleanup completed", "cutoff", time.Now().UTC().Add(-retention).Format(time.RFC3339), "deleted", removed)
}
