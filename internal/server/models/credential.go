package models

import (
	"time"

	"github.com/dmitrijs2005/custodian/internal/cryptox"
)

// CredentialRecord holds a case's portal login, each field sealed separately.
// It is never exposed in plaintext outside the vault's retrieve operation.
type CredentialRecord struct {
	CaseID            string
	EncryptedUsername cryptox.EncryptedSecret
	EncryptedPassword cryptox.EncryptedSecret
	CreatedAt         time.Time
}

// AccessLogEntry is an immutable record of one credential disclosure.
type AccessLogEntry struct {
	ID         string
	Who        string // handler user id
	What       string // case id or document id
	Note       string
	OccurredAt time.Time
}
