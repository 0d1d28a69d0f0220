package executor

import (
	"context"
	"log"

	"turbo-export/internal/core/domain"
	"turbo-export/internal/shell/messaging"
)

// MessageSender publishes notification messages. It is satisfied by messaging.KafkaProducer.
type MessageSender interface {
	SendNotificationMessage(message *messaging.NotificationMessage) error
}

// NotificationsBasedJobCompletionNotifier sends job completion notifications via Kafka
type NotificationsBasedJobCompletionNotifier struct {
	sender MessageSender
}

// NewNotificationsBasedJobCompletionNotifier creates a new notifications-based notifier
func NewNotificationsBasedJobCompletionNotifier(sender MessageSender) *NotificationsBasedJobCompletionNotifier {
	return &NotificationsBasedJobCompletionNotifier{
		sender: sender,
	}
}

// JobComplete sends a job completion notification to Kafka
func (n *NotificationsBasedJobCompletionNotifier) JobComplete(ctx context.Context, notification *domain.ExportNotification) error {
	log.Printf("Sending platform notification via Kafka for run: %s", notification.RunID)

	platformNotification := messaging.NewExportCompletionNotification(
		notification.RunID,
		notification.JobID,
		notification.OrgID,
		string(notification.Kind),
		string(notification.Status),
		notification.OutputPath,
		notification.RowCount,
		notification.PartCount,
		notification.ErrorMsg,
	)

	if err := n.sender.SendNotificationMessage(platformNotification); err != nil {
		log.Printf("Failed to send platform notification for run %s: %v", notification.RunID, err)
		return err
	}

	log.Printf("Platform notification sent successfully for run %s", notification.RunID)
	return nil
}
