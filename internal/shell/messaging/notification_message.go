package messaging

import (
	"encoding/json"
	"time"
)

const (
	notificationVersion     = "v1.2.0"
	notificationBundle      = "rhel"
	notificationApplication = "turbo-export"

	EventExportCompleted = "export-completed"
	EventExportFailed    = "export-failed"
)

// NotificationMessage represents the structure for platform notification events
// Based on the notifications-backend message format
type NotificationMessage struct {
	Version     string                 `json:"version"`
	Bundle      string                 `json:"bundle"`
	Application string                 `json:"application"`
	EventType   string                 `json:"event_type"`
	Timestamp   string                 `json:"timestamp"` // RFC3339 format
	AccountID   string                 `json:"account_id"`
	OrgID       string                 `json:"org_id"`
	Context     map[string]interface{} `json:"context"`
	Events      []interface{}          `json:"events"`
	Recipients  []interface{}          `json:"recipients"`
}

// NewExportCompletionNotification creates a notification message for a finished export run
func NewExportCompletionNotification(runID, jobID, orgID, kind, status, outputPath string, rowCount, partCount int, errorMsg string) *NotificationMessage {
	context := map[string]interface{}{
		"run_id":      runID,
		"job_id":      jobID,
		"kind":        kind,
		"status":      status,
		"output_path": outputPath,
		"row_count":   rowCount,
	}

	if partCount > 0 {
		context["part_count"] = partCount
	}

	// Add error message if present
	if errorMsg != "" {
		context["error_message"] = errorMsg
	}

	eventType := EventExportCompleted
	if status == "failed" {
		eventType = EventExportFailed
	}

	return &NotificationMessage{
		Version:     notificationVersion,
		Bundle:      notificationBundle,
		Application: notificationApplication,
		EventType:   eventType,
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
		OrgID:       orgID,
		Context:     context,
		Events:      []interface{}{},
		Recipients:  []interface{}{},
	}
}

// ToJSON converts the notification message to JSON bytes
func (n *NotificationMessage) ToJSON() ([]byte, error) {
	return json.Marshal(n)
}
