// Package notify tells document owners that a shared document was accessed.
// Delivery is best effort: callers log a failed Notify and carry on.
package notify

import (
	"context"
	"time"

	"github.com/dmitrijs2005/custodian/internal/logging"
	"github.com/dmitrijs2005/custodian/internal/server/models"
)

// Notification describes one third-party access.
type Notification struct {
	OwnerUserID   string              `json:"owner_user_id"`
	DocumentID    string              `json:"document_id"`
	DocumentName  string              `json:"document_name"`
	ShareCodeID   string              `json:"share_code_id"`
	ShareCodeName string              `json:"share_code_name"`
	Action        models.AccessAction `json:"action"`
	ClientAddress string              `json:"client_address"`
	OccurredAt    time.Time           `json:"occurred_at"`
	Suspicious    bool                `json:"suspicious"`
	Reason        string              `json:"reason,omitempty"`
}

// Sender delivers notifications to owners.
type Sender interface {
	Notify(ctx context.Context, n Notification) error
}

// LogSender writes notifications to the log. It is the default when no
// message broker is configured.
type LogSender struct {
	log logging.Logger
}

func NewLogSender(log logging.Logger) *LogSender {
	return &LogSender{log: log.With("module", "notify")}
}

func (s *LogSender) Notify(ctx context.Context, n Notification) error {
	args := []any{
		"owner_user_id", n.OwnerUserID,
		"document_id", n.DocumentID,
		"share_code_id", n.ShareCodeID,
		"action", string(n.Action),
		"suspicious", n.Suspicious,
	}
	if n.Suspicious {
		s.log.Warn(ctx, "suspicious document access", append(args, "reason", n.Reason)...)
		return nil
	}
	s.log.Info(ctx, "document accessed", args...)
	return nil
}
