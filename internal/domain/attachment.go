package domain

import "time"

// AttachmentOwner identifies which record an attachment is linked to.
type AttachmentOwner string

const (
	AttachmentOwnerIssue      AttachmentOwner = "ISSUE"
	AttachmentOwnerEscalation AttachmentOwner = "ESCALATION"
	AttachmentOwnerResolution AttachmentOwner = "RESOLUTION"
	AttachmentOwnerReject     AttachmentOwner = "REJECT"
	AttachmentOwnerReRaise    AttachmentOwner = "RE_RAISE"
)

// Attachment is a stored file. Ownership is by link rows, so one file
// may be referenced from an issue and several audit records at once.
type Attachment struct {
	ID           string
	FileName     string
	StorageKey   string
	MimeType     string
	SizeBytes    int64
	UploadedByID string
	CreatedAt    time.Time
}
