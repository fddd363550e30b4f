package services

import (
	"context"
	"database/sql"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/dmitrijs2005/custodian/internal/common"
	"github.com/dmitrijs2005/custodian/internal/cryptox"
	"github.com/dmitrijs2005/custodian/internal/dbx"
	"github.com/dmitrijs2005/custodian/internal/logging"
	"github.com/dmitrijs2005/custodian/internal/server/models"
	"github.com/dmitrijs2005/custodian/internal/server/notify"
	"github.com/dmitrijs2005/custodian/internal/server/repositories/accessevents"
	"github.com/dmitrijs2005/custodian/internal/server/repositories/accesslog"
	"github.com/dmitrijs2005/custodian/internal/server/repositories/cases"
	"github.com/dmitrijs2005/custodian/internal/server/repositories/credentials"
	"github.com/dmitrijs2005/custodian/internal/server/repositories/documents"
	"github.com/dmitrijs2005/custodian/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/custodian/internal/server/repositories/sharecodes"
)

// -------- in-memory store --------

type fakeStore struct {
	mu sync.Mutex

	cases       map[string]*models.FilingCase
	credentials map[string]*models.CredentialRecord
	accessLog   []*models.AccessLogEntry
	shareCodes  map[string]*models.ShareCode
	documents   map[string]*models.Document
	events      []models.DocumentAccessEvent

	appendLogErr  error
	appendEvtErr  error
	incrementErr  error
	createCodeErr []error
	revokeErr     error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		cases:       map[string]*models.FilingCase{},
		credentials: map[string]*models.CredentialRecord{},
		shareCodes:  map[string]*models.ShareCode{},
		documents:   map[string]*models.Document{},
	}
}

type fakeCases struct{ s *fakeStore }

func (f fakeCases) GetByID(_ context.Context, id string) (*models.FilingCase, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	c, ok := f.s.cases[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *c
	return &cp, nil
}

type fakeCredentials struct{ s *fakeStore }

func (f fakeCredentials) Upsert(_ context.Context, rec *models.CredentialRecord) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	cp := *rec
	f.s.credentials[rec.CaseID] = &cp
	return nil
}

func (f fakeCredentials) GetByCaseID(_ context.Context, caseID string) (*models.CredentialRecord, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	rec, ok := f.s.credentials[caseID]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *rec
	return &cp, nil
}

type fakeAccessLog struct{ s *fakeStore }

func (f fakeAccessLog) Append(_ context.Context, e *models.AccessLogEntry) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if f.s.appendLogErr != nil {
		return f.s.appendLogErr
	}
	cp := *e
	f.s.accessLog = append(f.s.accessLog, &cp)
	return nil
}

func (f fakeAccessLog) ListByWhat(_ context.Context, what string, limit int) ([]*models.AccessLogEntry, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	var out []*models.AccessLogEntry
	for i := len(f.s.accessLog) - 1; i >= 0 && len(out) < limit; i-- {
		if f.s.accessLog[i].What == what {
			out = append(out, f.s.accessLog[i])
		}
	}
	return out, nil
}

type fakeShareCodes struct{ s *fakeStore }

func (f fakeShareCodes) Create(_ context.Context, c *models.ShareCode) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if len(f.s.createCodeErr) > 0 {
		err := f.s.createCodeErr[0]
		f.s.createCodeErr = f.s.createCodeErr[1:]
		if err != nil {
			return err
		}
	}
	cp := *c
	f.s.shareCodes[c.ID] = &cp
	return nil
}

func (f fakeShareCodes) GetByID(_ context.Context, id string) (*models.ShareCode, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	c, ok := f.s.shareCodes[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *c
	return &cp, nil
}

func (f fakeShareCodes) GetByRawCode(_ context.Context, raw string) (*models.ShareCode, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	for _, c := range f.s.shareCodes {
		if c.RawCode == raw {
			cp := *c
			return &cp, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f fakeShareCodes) ListByOwner(_ context.Context, owner string) ([]*models.ShareCode, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	var out []*models.ShareCode
	for _, c := range f.s.shareCodes {
		if c.OwnerUserID == owner {
			cp := *c
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (f fakeShareCodes) Revoke(_ context.Context, id string, at time.Time) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if f.s.revokeErr != nil {
		return f.s.revokeErr
	}
	c, ok := f.s.shareCodes[id]
	if !ok || c.RevokedAt != nil {
		return common.ErrorInvalidState
	}
	c.RevokedAt = &at
	return nil
}

func (f fakeShareCodes) IncrementAccess(_ context.Context, id string, at time.Time) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if f.s.incrementErr != nil {
		return f.s.incrementErr
	}
	c, ok := f.s.shareCodes[id]
	if !ok {
		return common.ErrorNotFound
	}
	c.AccessCount++
	c.LastAccessedAt = &at
	return nil
}

type fakeDocuments struct{ s *fakeStore }

func (f fakeDocuments) GetByID(_ context.Context, id string) (*models.Document, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	d, ok := f.s.documents[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	cp := *d
	return &cp, nil
}

func (f fakeDocuments) ListByOwnerCategories(_ context.Context, owner string, cats []models.CategoryTag) ([]*models.Document, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	var out []*models.Document
	for _, d := range f.s.documents {
		if d.OwnerUserID != owner {
			continue
		}
		for _, c := range cats {
			if d.Category == c {
				cp := *d
				out = append(out, &cp)
				break
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type fakeAccessEvents struct{ s *fakeStore }

func (f fakeAccessEvents) Append(_ context.Context, e *models.DocumentAccessEvent) error {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if f.s.appendEvtErr != nil {
		return f.s.appendEvtErr
	}
	f.s.events = append(f.s.events, *e)
	return nil
}

func (f fakeAccessEvents) ListSince(_ context.Context, id string, since time.Time, limit int) ([]models.DocumentAccessEvent, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	var out []models.DocumentAccessEvent
	for i := len(f.s.events) - 1; i >= 0 && len(out) < limit; i-- {
		e := f.s.events[i]
		if e.ShareCodeID == id && e.OccurredAt.After(since) {
			out = append(out, e)
		}
	}
	return out, nil
}

type fakeRepoManager struct {
	repomanager.RepositoryManager
	s *fakeStore
}

func (m *fakeRepoManager) Cases(dbx.DBTX) cases.Repository             { return fakeCases{m.s} }
func (m *fakeRepoManager) Credentials(dbx.DBTX) credentials.Repository { return fakeCredentials{m.s} }
func (m *fakeRepoManager) AccessLog(dbx.DBTX) accesslog.Repository     { return fakeAccessLog{m.s} }
func (m *fakeRepoManager) ShareCodes(dbx.DBTX) sharecodes.Repository   { return fakeShareCodes{m.s} }
func (m *fakeRepoManager) Documents(dbx.DBTX) documents.Repository     { return fakeDocuments{m.s} }
func (m *fakeRepoManager) AccessEvents(dbx.DBTX) accessevents.Repository {
	return fakeAccessEvents{m.s}
}

// -------- cipher, notifier, logger --------

// countingCipher wraps a real cipher and counts decrypt attempts.
type countingCipher struct {
	inner    *cryptox.Cipher
	decrypts int
}

func (c *countingCipher) Encrypt(p string) (cryptox.EncryptedSecret, error) { return c.inner.Encrypt(p) }

func (c *countingCipher) Decrypt(s cryptox.EncryptedSecret) (string, error) {
	c.decrypts++
	return c.inner.Decrypt(s)
}

func newCountingCipher(t *testing.T) *countingCipher {
	t.Helper()
	key := make([]byte, cryptox.KeySize)
	for i := range key {
		key[i] = byte(i + 1)
	}
	c, err := cryptox.NewCipher(key)
	if err != nil {
		t.Fatalf("NewCipher: %v", err)
	}
	return &countingCipher{inner: c}
}

type fakeNotifier struct {
	sent []notify.Notification
	err  error
}

func (f *fakeNotifier) Notify(_ context.Context, n notify.Notification) error {
	f.sent = append(f.sent, n)
	return f.err
}

func newObservedLogger() (logging.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return logging.NewZapLogger(zap.New(core)), logs
}

func alerts(logs *observer.ObservedLogs, alert string) int {
	return logs.FilterField(zap.String(logging.AlertKey, alert)).Len()
}

func fixedClock(t time.Time) Clock {
	return func() time.Time { return t }
}

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}
