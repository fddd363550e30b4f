package cli

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/custodian/internal/rpc"
	"github.com/dmitrijs2005/custodian/internal/server/auth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClient struct {
	calls []string

	storedUser, storedPass string
	issuedName             string
	issuedCats             []string
	issuedTTL              time.Duration

	codes []rpc.ShareCode
	err   error
}

func (f *fakeClient) record(s string) error {
	f.calls = append(f.calls, s)
	return f.err
}

func (f *fakeClient) Ping(context.Context) error { return f.record("ping") }

func (f *fakeClient) StoreCredentials(_ context.Context, caseID, u, p string) (time.Time, error) {
	f.storedUser, f.storedPass = u, p
	return time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC), f.record("store " + caseID)
}

func (f *fakeClient) RetrieveCredentials(_ context.Context, caseID string) (*rpc.RetrieveCredentialsResponse, error) {
	if err := f.record("retrieve " + caseID); err != nil {
		return nil, err
	}
	return &rpc.RetrieveCredentialsResponse{Username: "jdoe", Password: "s3cret"}, nil
}

func (f *fakeClient) ListAccessLog(_ context.Context, caseID string) ([]rpc.AccessLogEntry, error) {
	return []rpc.AccessLogEntry{{Who: "handler-1", Note: "credentials disclosed", OccurredAt: time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)}},
		f.record("log " + caseID)
}

func (f *fakeClient) IssueShareCode(_ context.Context, name string, cats []string, ttl time.Duration) (*rpc.IssuedShareCodeResponse, error) {
	f.issuedName, f.issuedCats, f.issuedTTL = name, cats, ttl
	return &rpc.IssuedShareCodeResponse{FullCode: "11DFKQ-K7M2PQRS", Code: rpc.ShareCode{ID: "sc-1"}}, f.record("issue")
}

func (f *fakeClient) RevokeShareCode(_ context.Context, id string) error { return f.record("revoke " + id) }

func (f *fakeClient) RotateShareCode(_ context.Context, id string) (*rpc.IssuedShareCodeResponse, error) {
	return &rpc.IssuedShareCodeResponse{FullCode: "11DFKQ-NEWCODE2", Code: rpc.ShareCode{ID: "sc-2"}}, f.record("rotate " + id)
}

func (f *fakeClient) ListShareCodes(context.Context) ([]rpc.ShareCode, error) {
	return f.codes, f.record("list")
}

func (f *fakeClient) ComposeCode(_ context.Context, raw string) (string, error) {
	return "11DFKQ-" + raw, f.record("compose " + raw)
}

func (f *fakeClient) CheckSuspiciousActivity(_ context.Context, id, addr string) (*rpc.CheckSuspiciousActivityResponse, error) {
	return &rpc.CheckSuspiciousActivityResponse{Suspicious: true, Reasons: []string{"access after code expiry"}}, f.record("check " + id + " " + addr)
}

func run(t *testing.T, f *fakeClient, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	app := NewApp(f, strings.NewReader(stdin), &out)
	app.getenv = func(string) string { return "" }
	err := app.Run(context.Background(), args)
	return out.String(), err
}

func TestRun_HelpAndUnknown(t *testing.T) {
	out, err := run(t, &fakeClient{}, "")
	require.NoError(t, err)
	assert.Contains(t, out, "retrieve-credentials <case-id>")

	_, err = run(t, &fakeClient{}, "", "frobnicate")
	assert.ErrorIs(t, err, ErrUsage)
}

func TestStoreCredentials_PromptsForSecrets(t *testing.T) {
	stubTerminal(t, false, nil, nil)
	f := &fakeClient{}

	out, err := run(t, f, "jdoe\ns3cret\n", "store-credentials", "case-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"store case-1"}, f.calls)
	assert.Equal(t, "jdoe", f.storedUser)
	assert.Equal(t, "s3cret", f.storedPass)
	assert.Contains(t, out, "Credentials stored for case case-1")
}

func TestRetrieveCredentials(t *testing.T) {
	out, err := run(t, &fakeClient{}, "", "retrieve-credentials", "case-1")
	require.NoError(t, err)
	assert.Contains(t, out, "Username: jdoe")
	assert.Contains(t, out, "Password: s3cret")
}

func TestRetrieveCredentials_ErrorSurfaced(t *testing.T) {
	denied := errors.New("access denied")
	_, err := run(t, &fakeClient{err: denied}, "", "retrieve-credentials", "case-1")
	assert.ErrorIs(t, err, denied)
}

func TestCommands_ArgCountChecked(t *testing.T) {
	for _, args := range [][]string{
		{"retrieve-credentials"},
		{"revoke-code", "a", "b"},
		{"check-activity", "sc-1"},
		{"issue-code", "-name", "x"},
		{"mint-token"},
	} {
		f := &fakeClient{}
		out, err := run(t, f, "", args...)
		assert.ErrorIs(t, err, ErrUsage, args)
		assert.Contains(t, out, "Usage:", args)
		assert.Empty(t, f.calls, args)
	}
}

func TestIssueCode(t *testing.T) {
	f := &fakeClient{}
	out, err := run(t, f, "", "issue-code", "-name", "cpa", "-categories", "income, banking", "-ttl", "72h")
	require.NoError(t, err)
	assert.Equal(t, "cpa", f.issuedName)
	assert.Equal(t, []string{"income", "banking"}, f.issuedCats)
	assert.Equal(t, 72*time.Hour, f.issuedTTL)
	assert.Contains(t, out, "Share code: 11DFKQ-K7M2PQRS")
}

func TestListCodes(t *testing.T) {
	f := &fakeClient{codes: []rpc.ShareCode{
		{ID: "sc-1", Name: "cpa", State: "active", Categories: []string{"income"}, AccessCount: 3},
	}}
	out, err := run(t, f, "", "list-codes")
	require.NoError(t, err)
	assert.Contains(t, out, "STATE")
	assert.Contains(t, out, "sc-1")
	assert.Contains(t, out, "active")
}

func TestRevokeRotateCompose(t *testing.T) {
	f := &fakeClient{}
	_, err := run(t, f, "", "revoke-code", "sc-1")
	require.NoError(t, err)
	_, err = run(t, f, "", "rotate-code", "sc-1")
	require.NoError(t, err)
	out, err := run(t, f, "", "compose-code", "K7M2PQRS")
	require.NoError(t, err)

	assert.Equal(t, []string{"revoke sc-1", "rotate sc-1", "compose K7M2PQRS"}, f.calls)
	assert.Equal(t, "11DFKQ-K7M2PQRS\n", out)
}

func TestCheckActivity(t *testing.T) {
	out, err := run(t, &fakeClient{}, "", "check-activity", "sc-1", "203.0.113.7")
	require.NoError(t, err)
	assert.Contains(t, out, "access after code expiry")
}

func TestMintToken(t *testing.T) {
	stubTerminal(t, false, nil, nil)

	out, err := run(t, &fakeClient{}, "dev-secret\n", "mint-token", "-user", "owner-1", "-ttl", "5m")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	token := strings.TrimSpace(strings.TrimPrefix(lines[len(lines)-1], "> "))
	uid, err := auth.GetUserIDFromToken(token, []byte("dev-secret"))
	require.NoError(t, err)
	assert.Equal(t, "owner-1", uid)
}
