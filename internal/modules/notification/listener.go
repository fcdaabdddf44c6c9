package notification

import (
	"context"
	"log/slog"
)

// LogListener writes every order event to the structured log. Subscribe it
// to each event name that should be visible in the audit trail.
func LogListener(ctx context.Context, evt Event) error {
	slog.InfoContext(ctx, "domain event",
		"event", evt.Name,
		"event_id", evt.ID,
		"occurred_at", evt.OccurredAt,
		"payload", evt.Payload,
	)
	return nil
}
