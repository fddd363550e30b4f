// Package models defines server-side data models persisted in the record store.
package models

import "time"

// CaseStatus is the lifecycle state of a filing engagement.
type CaseStatus string

const (
	CaseStatusIntake     CaseStatus = "intake"
	CaseStatusInProgress CaseStatus = "in_progress"
	CaseStatusFiled      CaseStatus = "filed"
	CaseStatusCancelled  CaseStatus = "cancelled"
)

// Terminal reports whether the case no longer accepts changes.
func (s CaseStatus) Terminal() bool {
	return s == CaseStatusFiled || s == CaseStatusCancelled
}

// FilingCase is one tax-filing engagement. Intake and assignment are handled
// outside this service; here a case is read-only.
type FilingCase struct {
	ID                string
	OwnerUserID       string
	AssignedHandlerID string
	Status            CaseStatus
	CreatedAt         time.Time
}
