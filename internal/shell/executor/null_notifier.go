package executor

import (
	"context"
	"log"

	"turbo-export/internal/core/domain"
)

// NullJobCompletionNotifier is a no-op implementation of JobCompletionNotifier
// that does nothing when notifications are disabled (null object pattern)
type NullJobCompletionNotifier struct{}

// NewNullJobCompletionNotifier creates a new null notifier
func NewNullJobCompletionNotifier() *NullJobCompletionNotifier {
	return &NullJobCompletionNotifier{}
}

// JobComplete does nothing - this is a no-op implementation
func (n *NullJobCompletionNotifier) JobComplete(ctx context.Context, notification *domain.ExportNotification) error {
	log.Printf("No notifier configured - skipping completion notification for run: %s", notification.RunID)
	return nil
}
