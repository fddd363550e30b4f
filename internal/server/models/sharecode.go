package models

import (
	"slices"
	"time"
)

// CategoryTag scopes which of an owner's documents a share code discloses.
type CategoryTag string

const (
	CategoryIdentity   CategoryTag = "identity"
	CategoryIncome     CategoryTag = "income"
	CategoryDeductions CategoryTag = "deductions"
	CategoryBanking    CategoryTag = "banking"
	CategoryProperty   CategoryTag = "property"
	CategoryInsurance  CategoryTag = "insurance"
	CategoryMedical    CategoryTag = "medical"
	CategoryOther      CategoryTag = "other"
)

// KnownCategories lists every accepted tag.
var KnownCategories = []CategoryTag{
	CategoryIdentity, CategoryIncome, CategoryDeductions, CategoryBanking,
	CategoryProperty, CategoryInsurance, CategoryMedical, CategoryOther,
}

// Valid reports whether c is one of KnownCategories.
func (c CategoryTag) Valid() bool {
	return slices.Contains(KnownCategories, c)
}

// ShareState is the redemption state of a share code.
type ShareState string

const (
	ShareStateActive  ShareState = "active"
	ShareStateExpired ShareState = "expired"
	ShareStateRevoked ShareState = "revoked"
)

// ShareCode grants a third party time-boxed, category-scoped read access to
// an owner's documents. Categories never change after creation; only the
// access counters and RevokedAt are ever written again.
type ShareCode struct {
	ID             string
	OwnerUserID    string
	RawCode        string
	Name           string
	Categories     []CategoryTag
	CreatedAt      time.Time
	ExpiresAt      time.Time
	RevokedAt      *time.Time
	AccessCount    int64
	LastAccessedAt *time.Time
}

// State computes the lifecycle state at now. Revocation wins over expiry, and
// neither terminal state can lead back to active.
func (s *ShareCode) State(now time.Time) ShareState {
	switch {
	case s.RevokedAt != nil:
		return ShareStateRevoked
	case !now.Before(s.ExpiresAt):
		return ShareStateExpired
	default:
		return ShareStateActive
	}
}

// Covers reports whether the code discloses documents of category c.
func (s *ShareCode) Covers(c CategoryTag) bool {
	return slices.Contains(s.Categories, c)
}
