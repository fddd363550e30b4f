// Package client is the operator-side gRPC client for the custodian service.
//
// GRPCClient dials the server with the Struct codec, attaches the access token
// to every call and maps gRPC status codes to sentinel errors callers can
// match with errors.Is: ErrUnauthorized, ErrAccessDenied, ErrUnavailable.
// Other server errors surface with the server's generic message.
package client
