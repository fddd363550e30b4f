package services

import (
	"context"
	"database/sql"
	"time"

	"github.com/dmitrijs2005/custodian/internal/anomaly"
	"github.com/dmitrijs2005/custodian/internal/common"
	"github.com/dmitrijs2005/custodian/internal/logging"
	"github.com/dmitrijs2005/custodian/internal/server/models"
	"github.com/dmitrijs2005/custodian/internal/server/notify"
	"github.com/dmitrijs2005/custodian/internal/server/repositories/repomanager"
)

// AccessService records third-party document accesses and flags suspicious
// patterns.
type AccessService struct {
	db           *sql.DB
	repomanager  repomanager.RepositoryManager
	detector     *anomaly.Detector
	notifier     notify.Sender
	historyLimit int
	log          logging.Logger
	now          Clock
}

func NewAccessService(db *sql.DB, m repomanager.RepositoryManager, detector *anomaly.Detector,
	notifier notify.Sender, historyLimit int, log logging.Logger) *AccessService {
	return &AccessService{
		db:           db,
		repomanager:  m,
		detector:     detector,
		notifier:     notifier,
		historyLimit: historyLimit,
		log:          log.With("module", "access"),
		now:          systemClock,
	}
}

// LogAccess records one access to documentID through shareCodeID.
//
// The document must belong to the code's owner and fall in one of the code's
// categories. The suspicion verdict is computed from history committed before
// this call and stored with the event. Only a failure to store the event is
// returned; the counter update and the owner notification are best effort.
func (s *AccessService) LogAccess(ctx context.Context, shareCodeID, documentID string, action models.AccessAction,
	clientAddress, userAgent string) (*models.DocumentAccessEvent, error) {
	if !action.Valid() {
		return nil, common.ErrorValidation
	}

	code, err := s.repomanager.ShareCodes(s.db).GetByID(ctx, shareCodeID)
	if err != nil {
		return nil, err
	}

	doc, err := s.repomanager.Documents(s.db).GetByID(ctx, documentID)
	if err != nil {
		return nil, err
	}
	if doc.OwnerUserID != code.OwnerUserID || !code.Covers(doc.Category) {
		s.log.Warn(ctx, "document outside share scope", "share_code_id", code.ID, "document_id", doc.ID)
		return nil, common.ErrorForbidden
	}

	now := s.now()
	verdict, err := s.evaluate(ctx, code, clientAddress, now)
	if err != nil {
		return nil, err
	}

	event := &models.DocumentAccessEvent{
		ID:               newID(),
		ShareCodeID:      code.ID,
		DocumentID:       doc.ID,
		Action:           action,
		ClientAddress:    clientAddress,
		UserAgent:        userAgent,
		OccurredAt:       now,
		Suspicious:       verdict.Suspicious,
		SuspiciousReason: verdict.Reason(),
	}
	if err := s.repomanager.AccessEvents(s.db).Append(ctx, event); err != nil {
		return nil, err
	}

	if err := s.repomanager.ShareCodes(s.db).IncrementAccess(ctx, code.ID, now); err != nil {
		s.log.Error(ctx, "access counter update failed",
			logging.AlertKey, "access_counter_update_failed",
			"share_code_id", code.ID, "event_id", event.ID, "error", err)
	}

	if verdict.Suspicious {
		s.log.Warn(ctx, "suspicious document access",
			"share_code_id", code.ID, "document_id", doc.ID, "client_address", clientAddress, "reason", event.SuspiciousReason)
	}

	n := notify.Notification{
		OwnerUserID:   code.OwnerUserID,
		DocumentID:    doc.ID,
		DocumentName:  doc.Name,
		ShareCodeID:   code.ID,
		ShareCodeName: code.Name,
		Action:        action,
		ClientAddress: clientAddress,
		OccurredAt:    now,
		Suspicious:    event.Suspicious,
		Reason:        event.SuspiciousReason,
	}
	if err := s.notifier.Notify(ctx, n); err != nil {
		s.log.Warn(ctx, "owner notification failed", "share_code_id", code.ID, "event_id", event.ID, "error", err)
	}

	return event, nil
}

// CheckSuspiciousActivity evaluates a hypothetical access from clientAddress
// without recording anything. Only the code's owner may ask.
func (s *AccessService) CheckSuspiciousActivity(ctx context.Context, ownerUserID, shareCodeID, clientAddress string) (anomaly.Verdict, error) {
	code, err := s.repomanager.ShareCodes(s.db).GetByID(ctx, shareCodeID)
	if err != nil {
		return anomaly.Verdict{}, err
	}
	if ownerUserID == "" || code.OwnerUserID != ownerUserID {
		return anomaly.Verdict{}, common.ErrorForbidden
	}
	return s.evaluate(ctx, code, clientAddress, s.now())
}

func (s *AccessService) evaluate(ctx context.Context, code *models.ShareCode, clientAddress string, now time.Time) (anomaly.Verdict, error) {
	since := now.Add(-s.detector.Policy().Lookback())
	history, err := s.repomanager.AccessEvents(s.db).ListSince(ctx, code.ID, since, s.historyLimit)
	if err != nil {
		return anomaly.Verdict{}, err
	}
	return s.detector.Check(history, code, clientAddress, now), nil
}
