// Package rpc holds the wire contract shared by the custodian gRPC server and
// the operator CLI: the service and method names, the request and response
// messages, and the protobuf Struct codec they travel in.
package rpc

const ServiceName = "custodian.v1.Custodian"

const (
	MethodStoreCredentials        = "StoreCredentials"
	MethodRetrieveCredentials     = "RetrieveCredentials"
	MethodListAccessLog           = "ListAccessLog"
	MethodIssueShareCode          = "IssueShareCode"
	MethodRevokeShareCode         = "RevokeShareCode"
	MethodRotateShareCode         = "RotateShareCode"
	MethodListShareCodes          = "ListShareCodes"
	MethodComposeCode             = "ComposeCode"
	MethodCheckSuspiciousActivity = "CheckSuspiciousActivity"
	MethodPing                    = "Ping"
)

// FullMethod returns the gRPC path of method, e.g. "/custodian.v1.Custodian/Ping".
func FullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}
