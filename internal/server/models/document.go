package models

import "time"

// Document is the record store's metadata for an uploaded personal document.
// The file itself lives in object storage under StorageKey.
type Document struct {
	ID          string
	OwnerUserID string
	Category    CategoryTag
	Name        string
	StorageKey  string
	CreatedAt   time.Time
}

// AccessAction is what a third party did with a shared document.
type AccessAction string

const (
	ActionView     AccessAction = "view"
	ActionDownload AccessAction = "download"
)

// Valid reports whether a is a known action.
func (a AccessAction) Valid() bool {
	return a == ActionView || a == ActionDownload
}

// DocumentAccessEvent is one append-only access record. The suspicion verdict
// is computed once, when the event is written, and never re-evaluated.
type DocumentAccessEvent struct {
	ID               string
	ShareCodeID      string
	DocumentID       string
	Action           AccessAction
	ClientAddress    string
	UserAgent        string
	OccurredAt       time.Time
	Suspicious       bool
	SuspiciousReason string
}
