package grpc

import (
	"context"
	"time"

	"github.com/dmitrijs2005/custodian/internal/anomaly"
	"github.com/dmitrijs2005/custodian/internal/common"
	"github.com/dmitrijs2005/custodian/internal/logging"
	"github.com/dmitrijs2005/custodian/internal/server/models"
	"github.com/dmitrijs2005/custodian/internal/server/services"
)

type fakeVerifier map[string]string

func (f fakeVerifier) Verify(_ context.Context, token string) (string, error) {
	id, ok := f[token]
	if !ok {
		return "", common.ErrInvalidToken
	}
	return id, nil
}

type fakeVault struct {
	gotCase, gotRequester string
	creds                 *services.Credentials
	record                *models.CredentialRecord
	entries               []*models.AccessLogEntry
	err                   error
}

func (f *fakeVault) StoreCredentials(_ context.Context, caseID, requesterID, _, _ string) (*models.CredentialRecord, error) {
	f.gotCase, f.gotRequester = caseID, requesterID
	return f.record, f.err
}

func (f *fakeVault) RetrieveCredentials(_ context.Context, caseID, requesterID string) (*services.Credentials, error) {
	f.gotCase, f.gotRequester = caseID, requesterID
	return f.creds, f.err
}

func (f *fakeVault) ListAccessLog(_ context.Context, caseID, requesterID string) ([]*models.AccessLogEntry, error) {
	f.gotCase, f.gotRequester = caseID, requesterID
	return f.entries, f.err
}

type fakeCodes struct {
	gotOwner string
	gotCats  []models.CategoryTag
	gotTTL   time.Duration
	issued   *services.IssuedCode
	list     []*models.ShareCode
	full     string
	err      error
}

func (f *fakeCodes) Issue(_ context.Context, ownerID, _ string, cats []models.CategoryTag, ttl time.Duration) (*services.IssuedCode, error) {
	f.gotOwner, f.gotCats, f.gotTTL = ownerID, cats, ttl
	return f.issued, f.err
}

func (f *fakeCodes) Revoke(_ context.Context, ownerID, _ string) error {
	f.gotOwner = ownerID
	return f.err
}

func (f *fakeCodes) Rotate(_ context.Context, ownerID, _ string) (*services.IssuedCode, error) {
	f.gotOwner = ownerID
	return f.issued, f.err
}

func (f *fakeCodes) ListByOwner(_ context.Context, ownerID string) ([]*models.ShareCode, error) {
	f.gotOwner = ownerID
	return f.list, f.err
}

func (f *fakeCodes) Compose(ownerID, _ string) (string, error) {
	f.gotOwner = ownerID
	return f.full, f.err
}

type fakeAccess struct {
	verdict anomaly.Verdict
	err     error
}

func (f *fakeAccess) CheckSuspiciousActivity(context.Context, string, string, string) (anomaly.Verdict, error) {
	return f.verdict, f.err
}

func newTestServer(vault *fakeVault, codes *fakeCodes, access *fakeAccess) *GRPCServer {
	return NewGRPCServer("127.0.0.1:0", logging.Nop{}, fakeVerifier{"tok-handler": "handler-1", "tok-owner": "owner-1"},
		vault, codes, access)
}

func asUser(userID string) context.Context {
	return context.WithValue(context.Background(), userIDKey, userID)
}
