package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/custodian/internal/common"
	"github.com/dmitrijs2005/custodian/internal/cryptox"
	"github.com/dmitrijs2005/custodian/internal/logging"
	"github.com/dmitrijs2005/custodian/internal/server/models"
	"github.com/dmitrijs2005/custodian/internal/server/repositories/repomanager"
)

// accessLogPageSize bounds ListAccessLog.
const accessLogPageSize = 100

const disclosureNote = "credentials retrieved for filing"

// SecretCipher seals and opens individual credential fields.
type SecretCipher interface {
	Encrypt(plaintext string) (cryptox.EncryptedSecret, error)
	Decrypt(secret cryptox.EncryptedSecret) (string, error)
}

// Credentials is a decrypted portal login.
type Credentials struct {
	Username string
	Password string
}

// VaultService stores and discloses filing credentials. Disclosure is limited
// to the case's assigned handler and always leaves an audit entry.
type VaultService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	cipher      SecretCipher
	log         logging.Logger
	now         Clock
}

func NewVaultService(db *sql.DB, m repomanager.RepositoryManager, cipher SecretCipher, log logging.Logger) *VaultService {
	return &VaultService{
		db:          db,
		repomanager: m,
		cipher:      cipher,
		log:         log.With("module", "vault"),
		now:         systemClock,
	}
}

// StoreCredentials seals username and password separately and stores them as
// the case's current record, superseding any earlier one. Only the case owner
// or its assigned handler may store, and only while the case is open.
func (s *VaultService) StoreCredentials(ctx context.Context, caseID, requesterID, username, password string) (*models.CredentialRecord, error) {
	if strings.TrimSpace(caseID) == "" || strings.TrimSpace(username) == "" || password == "" {
		return nil, common.ErrorValidation
	}

	c, err := s.repomanager.Cases(s.db).GetByID(ctx, caseID)
	if err != nil {
		return nil, err
	}
	if requesterID == "" || (requesterID != c.OwnerUserID && requesterID != c.AssignedHandlerID) {
		s.log.Warn(ctx, "credential store denied", "case_id", caseID, "requester_id", requesterID)
		return nil, common.ErrorForbidden
	}
	if c.Status.Terminal() {
		return nil, fmt.Errorf("%w: case is %s", common.ErrorInvalidState, c.Status)
	}

	encUser, err := s.cipher.Encrypt(username)
	if err != nil {
		return nil, err
	}
	encPass, err := s.cipher.Encrypt(password)
	if err != nil {
		return nil, err
	}

	rec := &models.CredentialRecord{
		CaseID:            caseID,
		EncryptedUsername: encUser,
		EncryptedPassword: encPass,
		CreatedAt:         s.now(),
	}
	if err := s.repomanager.Credentials(s.db).Upsert(ctx, rec); err != nil {
		return nil, err
	}

	s.log.Info(ctx, "credentials stored", "case_id", caseID, "requester_id", requesterID)
	return rec, nil
}

// RetrieveCredentials discloses a case's credentials to its assigned handler.
//
// Authorization completes before anything is decrypted. The disclosure is
// written to the access log before the plaintext is returned; if that write
// fails the credentials are still returned and an alert is logged.
func (s *VaultService) RetrieveCredentials(ctx context.Context, caseID, requesterID string) (*Credentials, error) {
	c, err := s.repomanager.Cases(s.db).GetByID(ctx, caseID)
	if err != nil {
		return nil, err
	}

	if requesterID == "" || requesterID != c.AssignedHandlerID {
		s.log.Warn(ctx, "credential access denied", "case_id", caseID, "requester_id", requesterID)
		return nil, common.ErrorForbidden
	}

	rec, err := s.repomanager.Credentials(s.db).GetByCaseID(ctx, caseID)
	if err != nil {
		return nil, err
	}

	username, err := s.cipher.Decrypt(rec.EncryptedUsername)
	if err != nil {
		s.logDecryptFailure(ctx, caseID, "username", rec.EncryptedUsername, err)
		return nil, common.ErrorDecryption
	}
	password, err := s.cipher.Decrypt(rec.EncryptedPassword)
	if err != nil {
		s.logDecryptFailure(ctx, caseID, "password", rec.EncryptedPassword, err)
		return nil, common.ErrorDecryption
	}

	s.auditDisclosure(ctx, caseID, requesterID)

	return &Credentials{Username: username, Password: password}, nil
}

// ListAccessLog returns the newest disclosure entries for a case. The owner
// and the assigned handler may read it.
func (s *VaultService) ListAccessLog(ctx context.Context, caseID, requesterID string) ([]*models.AccessLogEntry, error) {
	c, err := s.repomanager.Cases(s.db).GetByID(ctx, caseID)
	if err != nil {
		return nil, err
	}
	if requesterID == "" || (requesterID != c.OwnerUserID && requesterID != c.AssignedHandlerID) {
		return nil, common.ErrorForbidden
	}
	return s.repomanager.AccessLog(s.db).ListByWhat(ctx, caseID, accessLogPageSize)
}

func (s *VaultService) auditDisclosure(ctx context.Context, caseID, handlerID string) {
	entry := &models.AccessLogEntry{
		ID:         newID(),
		Who:        handlerID,
		What:       caseID,
		Note:       disclosureNote,
		OccurredAt: s.now(),
	}
	if err := s.repomanager.AccessLog(s.db).Append(ctx, entry); err != nil {
		s.log.Error(ctx, "audit write failed",
			logging.AlertKey, "audit_write_failed",
			"case_id", caseID, "handler_id", handlerID, "error", err)
	}
}

func (s *VaultService) logDecryptFailure(ctx context.Context, caseID, field string, blob cryptox.EncryptedSecret, err error) {
	if !errors.Is(err, common.ErrorDecryption) {
		err = fmt.Errorf("%w: %v", common.ErrorDecryption, err)
	}
	s.log.Error(ctx, "credential decryption failed",
		"case_id", caseID, "field", field, "blob_len", cryptox.BlobLen(blob), "error", err)
}
