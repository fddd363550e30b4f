package grpc

import (
	"context"

	"github.com/dmitrijs2005/custodian/internal/rpc"
	"google.golang.org/grpc"
)

// CustodianServer is the method set registered under rpc.ServiceName.
type CustodianServer interface {
	StoreCredentials(context.Context, *rpc.StoreCredentialsRequest) (*rpc.StoreCredentialsResponse, error)
	RetrieveCredentials(context.Context, *rpc.RetrieveCredentialsRequest) (*rpc.RetrieveCredentialsResponse, error)
	ListAccessLog(context.Context, *rpc.ListAccessLogRequest) (*rpc.ListAccessLogResponse, error)
	IssueShareCode(context.Context, *rpc.IssueShareCodeRequest) (*rpc.IssuedShareCodeResponse, error)
	RevokeShareCode(context.Context, *rpc.RevokeShareCodeRequest) (*rpc.RevokeShareCodeResponse, error)
	RotateShareCode(context.Context, *rpc.RotateShareCodeRequest) (*rpc.IssuedShareCodeResponse, error)
	ListShareCodes(context.Context, *rpc.ListShareCodesRequest) (*rpc.ListShareCodesResponse, error)
	ComposeCode(context.Context, *rpc.ComposeCodeRequest) (*rpc.ComposeCodeResponse, error)
	CheckSuspiciousActivity(context.Context, *rpc.CheckSuspiciousActivityRequest) (*rpc.CheckSuspiciousActivityResponse, error)
	Ping(context.Context, *rpc.PingRequest) (*rpc.PingResponse, error)
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: rpc.ServiceName,
	HandlerType: (*CustodianServer)(nil),
	Methods: []grpc.MethodDesc{
		unary(rpc.MethodStoreCredentials, CustodianServer.StoreCredentials),
		unary(rpc.MethodRetrieveCredentials, CustodianServer.RetrieveCredentials),
		unary(rpc.MethodListAccessLog, CustodianServer.ListAccessLog),
		unary(rpc.MethodIssueShareCode, CustodianServer.IssueShareCode),
		unary(rpc.MethodRevokeShareCode, CustodianServer.RevokeShareCode),
		unary(rpc.MethodRotateShareCode, CustodianServer.RotateShareCode),
		unary(rpc.MethodListShareCodes, CustodianServer.ListShareCodes),
		unary(rpc.MethodComposeCode, CustodianServer.ComposeCode),
		unary(rpc.MethodCheckSuspiciousActivity, CustodianServer.CheckSuspiciousActivity),
		unary(rpc.MethodPing, CustodianServer.Ping),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "custodian/v1/custodian.json",
}

// unary builds the method descriptor that decodes Req and dispatches to call
// through the server's interceptor chain.
func unary[Req, Resp any](name string, call func(CustodianServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			impl := srv.(CustodianServer)
			if interceptor == nil {
				return call(impl, ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: rpc.FullMethod(name)}
			return interceptor(ctx, in, info, func(ctx context.Context, req any) (any, error) {
				return call(impl, ctx, req.(*Req))
			})
		},
	}
}
