// Package auth verifies caller identity tokens. Handlers only ever see the
// user id a Verifier returned; request payloads never carry identity.
package auth

import "context"

// Verifier turns a bearer token into a verified user id. It returns
// common.ErrInvalidToken or common.ErrTokenExpired (possibly wrapped) when
// the token is rejected.
type Verifier interface {
	Verify(ctx context.Context, token string) (string, error)
}
