package client

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/custodian/internal/common"
	"github.com/dmitrijs2005/custodian/internal/rpc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// fakeConn answers Invoke by running reply on the decoded response.
type fakeConn struct {
	lastMethod string
	lastReq    any
	reply      func(resp any)
	err        error
	deadline   bool
}

func (f *fakeConn) Invoke(ctx context.Context, method string, args, reply any, _ ...grpc.CallOption) error {
	f.lastMethod = method
	f.lastReq = args
	_, f.deadline = ctx.Deadline()
	if f.err != nil {
		return f.err
	}
	if f.reply != nil {
		f.reply(reply)
	}
	return nil
}

func newTestClient(f *fakeConn) *GRPCClient {
	return &GRPCClient{cc: f, timeout: time.Second}
}

func TestRetrieveCredentials(t *testing.T) {
	f := &fakeConn{reply: func(resp any) {
		*resp.(*rpc.RetrieveCredentialsResponse) = rpc.RetrieveCredentialsResponse{Username: "jdoe", Password: "s3cret"}
	}}
	c := newTestClient(f)

	got, err := c.RetrieveCredentials(context.Background(), "case-1")
	require.NoError(t, err)
	assert.Equal(t, "jdoe", got.Username)
	assert.Equal(t, "/custodian.v1.Custodian/RetrieveCredentials", f.lastMethod)
	assert.Equal(t, &rpc.RetrieveCredentialsRequest{CaseID: "case-1"}, f.lastReq)
	assert.True(t, f.deadline, "calls carry the configured timeout")
}

func TestIssueShareCode_SendsSeconds(t *testing.T) {
	f := &fakeConn{reply: func(resp any) {
		resp.(*rpc.IssuedShareCodeResponse).FullCode = "11DFKQ-K7M2PQRS"
	}}
	c := newTestClient(f)

	got, err := c.IssueShareCode(context.Background(), "cpa", []string{"income"}, 48*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, "11DFKQ-K7M2PQRS", got.FullCode)
	assert.Equal(t, int64(172800), f.lastReq.(*rpc.IssueShareCodeRequest).TTLSeconds)
}

func TestMapError(t *testing.T) {
	tests := []struct {
		name string
		in   error
		want error
	}{
		{name: "unauthenticated", in: status.Error(codes.Unauthenticated, "missing token"), want: ErrUnauthorized},
		{name: "denied", in: status.Error(codes.PermissionDenied, "access denied"), want: ErrAccessDenied},
		{name: "unavailable", in: status.Error(codes.Unavailable, "x"), want: ErrUnavailable},
		{name: "deadline", in: status.Error(codes.DeadlineExceeded, "x"), want: ErrUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := newTestClient(&fakeConn{err: tt.in}).RevokeShareCode(context.Background(), "sc-1")
			assert.ErrorIs(t, err, tt.want)
		})
	}

	err := newTestClient(&fakeConn{err: status.Error(codes.FailedPrecondition, "share code is no longer active")}).
		RevokeShareCode(context.Background(), "sc-1")
	assert.EqualError(t, err, "share code is no longer active")

	plain := errors.New("dial failed")
	assert.Same(t, plain, newTestClient(&fakeConn{}).mapError(plain))
}

func TestAccessTokenInterceptor(t *testing.T) {
	c := &GRPCClient{accessToken: "tok-1"}

	var got []string
	inv := func(ctx context.Context, method string, req, reply any, cc *grpc.ClientConn, opts ...grpc.CallOption) error {
		md, _ := metadata.FromOutgoingContext(ctx)
		got = md.Get(common.AccessTokenHeaderName)
		return nil
	}

	ctx := metadata.AppendToOutgoingContext(context.Background(), common.AccessTokenHeaderName, "stale")
	require.NoError(t, c.accessTokenInterceptor(ctx, "/m", nil, nil, nil, inv))
	assert.Equal(t, []string{"tok-1"}, got)

	c.accessToken = ""
	require.NoError(t, c.accessTokenInterceptor(context.Background(), "/m", nil, nil, nil, inv))
	assert.Empty(t, got)
}
