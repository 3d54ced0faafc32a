package domain

import "time"

// IssueEscalation records a move from one hierarchy tier to another.
// A nil ToNodeID means "escalated to top". Append-only.
type IssueEscalation struct {
	ID            string
	IssueID       string
	FromNodeID    *string
	ToNodeID      *string
	Reason        string
	EscalatedByID string
	CreatedAt     time.Time
	Attachments   []Attachment
}

// IssueResolution records an attempt to resolve the issue. An issue may
// accumulate several attempts before the reporter confirms one.
type IssueResolution struct {
	ID           string
	IssueID      string
	Notes        string
	ResolvedByID string
	CreatedAt    time.Time
	Attachments  []Attachment
}

// IssueReject records a handler declining an assignment or a reporter
// declining a resolution. The issue status is left unchanged.
type IssueReject struct {
	ID           string
	IssueID      string
	Reason       string
	RejectedByID string
	CreatedAt    time.Time
	Attachments  []Attachment
}

// IssueReRaise records the reporter reopening a resolved issue.
type IssueReRaise struct {
	ID         string
	IssueID    string
	Reason     string
	RaisedByID string
	ReRaisedAt time.Time
	CreatedAt  time.Time
	Attachments []Attachment
}
