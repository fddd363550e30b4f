package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/custodian/internal/common"
	"github.com/dmitrijs2005/custodian/internal/dbx"
	"github.com/dmitrijs2005/custodian/internal/logging"
	"github.com/dmitrijs2005/custodian/internal/server/models"
	"github.com/dmitrijs2005/custodian/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/custodian/internal/sharecode"
)

const (
	maxShareCodeNameLen = 100
	// rawCodeAttempts bounds retries when a freshly drawn raw code collides.
	rawCodeAttempts = 3
)

// IssuedCode is a stored share code together with the full code to hand out.
type IssuedCode struct {
	Code     *models.ShareCode
	FullCode string
}

// Grant is what a successful redemption discloses: the code and the owner's
// documents in the code's categories.
type Grant struct {
	Code      *models.ShareCode
	Documents []*models.Document
}

// ShareCodePolicy holds the TTL bounds for issued codes.
type ShareCodePolicy struct {
	DefaultTTL time.Duration
	MaxTTL     time.Duration
}

// ShareCodeService manages the share code lifecycle.
type ShareCodeService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	policy      ShareCodePolicy
	log         logging.Logger
	now         Clock
	newRawCode  func() (string, error)
}

func NewShareCodeService(db *sql.DB, m repomanager.RepositoryManager, policy ShareCodePolicy, log logging.Logger) *ShareCodeService {
	return &ShareCodeService{
		db:          db,
		repomanager: m,
		policy:      policy,
		log:         log.With("module", "sharecodes"),
		now:         systemClock,
		newRawCode:  sharecode.NewRawCode,
	}
}

// Issue creates a code for ownerID covering categories. A zero ttl uses the
// policy default; ttl above the policy maximum is rejected.
func (s *ShareCodeService) Issue(ctx context.Context, ownerID, name string, categories []models.CategoryTag, ttl time.Duration) (*IssuedCode, error) {
	if ownerID == "" || len(name) > maxShareCodeNameLen {
		return nil, common.ErrorValidation
	}
	cats, err := normalizeCategories(categories)
	if err != nil {
		return nil, err
	}
	if ttl == 0 {
		ttl = s.policy.DefaultTTL
	}
	if ttl < 0 || ttl > s.policy.MaxTTL {
		return nil, fmt.Errorf("%w: ttl must be within (0, %s]", common.ErrorValidation, s.policy.MaxTTL)
	}

	now := s.now()
	code := &models.ShareCode{
		OwnerUserID: ownerID,
		Name:        strings.TrimSpace(name),
		Categories:  cats,
		CreatedAt:   now,
		ExpiresAt:   now.Add(ttl),
	}
	if err := s.create(ctx, s.db, code); err != nil {
		return nil, err
	}

	s.log.Info(ctx, "share code issued", "owner_user_id", ownerID, "share_code_id", code.ID, "expires_at", code.ExpiresAt)
	return &IssuedCode{Code: code, FullCode: sharecode.Compose(code.RawCode, ownerID)}, nil
}

// Revoke permanently disables one of the owner's codes.
func (s *ShareCodeService) Revoke(ctx context.Context, ownerID, shareCodeID string) error {
	code, err := s.ownedCode(ctx, ownerID, shareCodeID)
	if err != nil {
		return err
	}
	if code.RevokedAt != nil {
		return common.ErrorInvalidState
	}

	if err := s.repomanager.ShareCodes(s.db).Revoke(ctx, shareCodeID, s.now()); err != nil {
		return err
	}

	s.log.Info(ctx, "share code revoked", "owner_user_id", ownerID, "share_code_id", shareCodeID)
	return nil
}

// Rotate revokes an active code and issues its replacement in one
// transaction. The replacement keeps the name, categories and expiry.
func (s *ShareCodeService) Rotate(ctx context.Context, ownerID, shareCodeID string) (*IssuedCode, error) {
	old, err := s.ownedCode(ctx, ownerID, shareCodeID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if old.State(now) != models.ShareStateActive {
		return nil, fmt.Errorf("%w: share code is %s", common.ErrorInvalidState, old.State(now))
	}

	next := &models.ShareCode{
		OwnerUserID: ownerID,
		Name:        old.Name,
		Categories:  old.Categories,
		CreatedAt:   now,
		ExpiresAt:   old.ExpiresAt,
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := s.repomanager.ShareCodes(tx).Revoke(ctx, old.ID, now); err != nil {
			return err
		}
		return s.create(ctx, tx, next)
	})
	if err != nil {
		return nil, err
	}

	s.log.Info(ctx, "share code rotated", "owner_user_id", ownerID, "old_share_code_id", old.ID, "share_code_id", next.ID)
	return &IssuedCode{Code: next, FullCode: sharecode.Compose(next.RawCode, ownerID)}, nil
}

// Redeem resolves a code presented by a third party.
//
// Codes without an owner prefix are looked up as bare raw codes, which keeps
// codes issued before prefixes existed working. A prefixed code whose prefix
// does not belong to the stored owner is refused.
func (s *ShareCodeService) Redeem(ctx context.Context, fullCode string) (*Grant, error) {
	fullCode = strings.ToUpper(strings.TrimSpace(fullCode))
	if fullCode == "" {
		return nil, common.ErrorValidation
	}

	raw := fullCode
	parsed, prefixed := sharecode.Parse(fullCode)
	if prefixed {
		raw = parsed.RawCode
	}

	code, err := s.repomanager.ShareCodes(s.db).GetByRawCode(ctx, raw)
	if err != nil {
		return nil, err
	}

	if prefixed {
		if !sharecode.ValidateOwnership(fullCode, code.OwnerUserID) {
			s.log.Warn(ctx, "share code prefix mismatch", "share_code_id", code.ID)
			return nil, common.ErrorForbidden
		}
	} else {
		s.log.Debug(ctx, "legacy share code redeemed", "share_code_id", code.ID)
	}

	switch code.State(s.now()) {
	case models.ShareStateRevoked:
		return nil, common.ErrorCodeRevoked
	case models.ShareStateExpired:
		return nil, common.ErrorCodeExpired
	}

	docs, err := s.repomanager.Documents(s.db).ListByOwnerCategories(ctx, code.OwnerUserID, code.Categories)
	if err != nil {
		return nil, err
	}

	return &Grant{Code: code, Documents: docs}, nil
}

// ListByOwner returns every code the owner issued, newest first.
func (s *ShareCodeService) ListByOwner(ctx context.Context, ownerID string) ([]*models.ShareCode, error) {
	if ownerID == "" {
		return nil, common.ErrorValidation
	}
	return s.repomanager.ShareCodes(s.db).ListByOwner(ctx, ownerID)
}

// Compose prefixes rawCode for ownerID.
func (s *ShareCodeService) Compose(ownerID, rawCode string) (string, error) {
	rawCode = strings.ToUpper(strings.TrimSpace(rawCode))
	if ownerID == "" || len(rawCode) < sharecode.RawCodeLen || strings.Trim(rawCode, sharecode.Alphabet) != "" {
		return "", common.ErrorValidation
	}
	return sharecode.Compose(rawCode, ownerID), nil
}

func (s *ShareCodeService) ownedCode(ctx context.Context, ownerID, shareCodeID string) (*models.ShareCode, error) {
	code, err := s.repomanager.ShareCodes(s.db).GetByID(ctx, shareCodeID)
	if err != nil {
		return nil, err
	}
	if ownerID == "" || code.OwnerUserID != ownerID {
		return nil, common.ErrorForbidden
	}
	return code, nil
}

// create assigns an id and a fresh raw code, redrawing on collision.
func (s *ShareCodeService) create(ctx context.Context, db dbx.DBTX, code *models.ShareCode) error {
	repo := s.repomanager.ShareCodes(db)

	var err error
	for range rawCodeAttempts {
		code.ID = newID()
		code.RawCode, err = s.newRawCode()
		if err != nil {
			return fmt.Errorf("raw code: %w", err)
		}
		err = repo.Create(ctx, code)
		if err == nil || !isUniqueViolation(err) {
			return err
		}
	}
	return fmt.Errorf("raw code collision after %d attempts: %w", rawCodeAttempts, err)
}

func normalizeCategories(in []models.CategoryTag) ([]models.CategoryTag, error) {
	if len(in) == 0 {
		return nil, fmt.Errorf("%w: at least one category is required", common.ErrorValidation)
	}
	seen := make(map[models.CategoryTag]struct{}, len(in))
	out := make([]models.CategoryTag, 0, len(in))
	for _, c := range in {
		c = models.CategoryTag(strings.ToLower(strings.TrimSpace(string(c))))
		if !c.Valid() {
			return nil, fmt.Errorf("%w: unknown category %q", common.ErrorValidation, c)
		}
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out, nil
}

