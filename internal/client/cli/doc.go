// Package cli implements the custodian operator CLI: one command per
// invocation, run against the gRPC service with the caller's access token.
//
// Commands cover the credential vault (store, retrieve, access history), share
// code management (issue, revoke, rotate, list, compose, activity check) and
// minting development tokens for the JWT identity provider.
package cli
