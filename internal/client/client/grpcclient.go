package client

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrijs2005/custodian/internal/common"
	"github.com/dmitrijs2005/custodian/internal/rpc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
)

// invoker is the part of *grpc.ClientConn the client uses.
type invoker interface {
	Invoke(ctx context.Context, method string, args, reply any, opts ...grpc.CallOption) error
}

type GRPCClient struct {
	endpointURL string
	accessToken string
	timeout     time.Duration
	conn        *grpc.ClientConn
	cc          invoker
}

func withAccessToken(ctx context.Context, token string) context.Context {
	md, _ := metadata.FromOutgoingContext(ctx)
	md = md.Copy()
	if md == nil {
		md = metadata.MD{}
	}
	md.Set(common.AccessTokenHeaderName, token)

	return metadata.NewOutgoingContext(ctx, md)
}

func (s *GRPCClient) accessTokenInterceptor(
	ctx context.Context,
	method string,
	req, reply any,
	cc *grpc.ClientConn,
	invoker grpc.UnaryInvoker,
	opts ...grpc.CallOption,
) error {
	if s.accessToken != "" {
		ctx = withAccessToken(ctx, s.accessToken)
	}
	return invoker(ctx, method, req, reply, cc, opts...)
}

func NewCustodianClient(endpointURL, accessToken string, timeout time.Duration) (*GRPCClient, error) {
	c := &GRPCClient{endpointURL: endpointURL, accessToken: accessToken, timeout: timeout}

	conn, err := grpc.NewClient(c.endpointURL,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithUnaryInterceptor(c.accessTokenInterceptor),
		grpc.WithDefaultCallOptions(grpc.CallContentSubtype(rpc.CodecName)),
	)
	if err != nil {
		return nil, err
	}
	c.conn = conn
	c.cc = conn
	return c, nil
}

func (s *GRPCClient) Close() error {
	if s.conn == nil {
		return nil
	}
	return s.conn.Close()
}

func (s *GRPCClient) call(ctx context.Context, method string, req, resp any) error {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	return s.mapError(s.cc.Invoke(ctx, rpc.FullMethod(method), req, resp))
}

func (s *GRPCClient) Ping(ctx context.Context) error {
	var resp rpc.PingResponse
	return s.call(ctx, rpc.MethodPing, &rpc.PingRequest{}, &resp)
}

func (s *GRPCClient) StoreCredentials(ctx context.Context, caseID, username, password string) (time.Time, error) {
	var resp rpc.StoreCredentialsResponse
	err := s.call(ctx, rpc.MethodStoreCredentials, &rpc.StoreCredentialsRequest{CaseID: caseID, Username: username, Password: password}, &resp)
	return resp.StoredAt, err
}

func (s *GRPCClient) RetrieveCredentials(ctx context.Context, caseID string) (*rpc.RetrieveCredentialsResponse, error) {
	var resp rpc.RetrieveCredentialsResponse
	if err := s.call(ctx, rpc.MethodRetrieveCredentials, &rpc.RetrieveCredentialsRequest{CaseID: caseID}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (s *GRPCClient) ListAccessLog(ctx context.Context, caseID string) ([]rpc.AccessLogEntry, error) {
	var resp rpc.ListAccessLogResponse
	if err := s.call(ctx, rpc.MethodListAccessLog, &rpc.ListAccessLogRequest{CaseID: caseID}, &resp); err != nil {
		return nil, err
	}
	return resp.Entries, nil
}

func (s *GRPCClient) IssueShareCode(ctx context.Context, name string, categories []string, ttl time.Duration) (*rpc.IssuedShareCodeResponse, error) {
	req := &rpc.IssueShareCodeRequest{Name: name, Categories: categories, TTLSeconds: int64(ttl / time.Second)}
	var resp rpc.IssuedShareCodeResponse
	if err := s.call(ctx, rpc.MethodIssueShareCode, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (s *GRPCClient) RevokeShareCode(ctx context.Context, shareCodeID string) error {
	var resp rpc.RevokeShareCodeResponse
	return s.call(ctx, rpc.MethodRevokeShareCode, &rpc.RevokeShareCodeRequest{ShareCodeID: shareCodeID}, &resp)
}

func (s *GRPCClient) RotateShareCode(ctx context.Context, shareCodeID string) (*rpc.IssuedShareCodeResponse, error) {
	var resp rpc.IssuedShareCodeResponse
	if err := s.call(ctx, rpc.MethodRotateShareCode, &rpc.RotateShareCodeRequest{ShareCodeID: shareCodeID}, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (s *GRPCClient) ListShareCodes(ctx context.Context) ([]rpc.ShareCode, error) {
	var resp rpc.ListShareCodesResponse
	if err := s.call(ctx, rpc.MethodListShareCodes, &rpc.ListShareCodesRequest{}, &resp); err != nil {
		return nil, err
	}
	return resp.Codes, nil
}

func (s *GRPCClient) ComposeCode(ctx context.Context, rawCode string) (string, error) {
	var resp rpc.ComposeCodeResponse
	if err := s.call(ctx, rpc.MethodComposeCode, &rpc.ComposeCodeRequest{RawCode: rawCode}, &resp); err != nil {
		return "", err
	}
	return resp.FullCode, nil
}

func (s *GRPCClient) CheckSuspiciousActivity(ctx context.Context, shareCodeID, clientAddress string) (*rpc.CheckSuspiciousActivityResponse, error) {
	var resp rpc.CheckSuspiciousActivityResponse
	req := &rpc.CheckSuspiciousActivityRequest{ShareCodeID: shareCodeID, ClientAddress: clientAddress}
	if err := s.call(ctx, rpc.MethodCheckSuspiciousActivity, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (s *GRPCClient) mapError(err error) error {
	if err == nil {
		return nil
	}
	st, ok := status.FromError(err)
	if !ok {
		return err
	}
	switch st.Code() {
	case codes.Unauthenticated:
		return ErrUnauthorized
	case codes.PermissionDenied:
		return ErrAccessDenied
	case codes.Unavailable, codes.DeadlineExceeded:
		return ErrUnavailable
	default:
		return errors.New(st.Message())
	}
}
