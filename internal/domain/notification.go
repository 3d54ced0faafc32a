package domain

import "time"

// Notification is a persisted message for a recipient about an issue
// lifecycle event.
type Notification struct {
	ID          string
	RecipientID string
	IssueID     string
	EventType   string
	Message     string
	ReadAt      *time.Time
	CreatedAt   time.Time
}
