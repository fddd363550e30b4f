// Package cryptox holds the credential vault's key material handling and its
// authenticated cipher.
package cryptox

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/custodian/internal/common"
	"golang.org/x/crypto/pbkdf2"
)

// MasterKeyEnv is the only configuration source for the master key.
const MasterKeyEnv = "CUSTODIAN_MASTER_KEY"

// KeySize is the AES-256 key length in bytes.
const KeySize = 32

const pbkdf2Iterations = 100_000

// masterKeySalt is fixed so the same passphrase always yields the same key.
var masterKeySalt = []byte("custodian/credential-vault/v1")

// ResolveMasterKey turns the configured secret into a 32-byte key.
//
// A 64-character hex string is decoded directly. Any other non-blank string is
// treated as a passphrase and stretched with PBKDF2-HMAC-SHA256. A blank secret
// is a configuration error: there is no default key.
func ResolveMasterKey(secret string) ([]byte, error) {
	if strings.TrimSpace(secret) == "" {
		return nil, fmt.Errorf("%w: %s is not set", common.ErrorConfig, MasterKeyEnv)
	}

	if len(secret) == 2*KeySize {
		if key, err := hex.DecodeString(secret); err == nil {
			return key, nil
		}
	}

	return pbkdf2.Key([]byte(secret), masterKeySalt, pbkdf2Iterations, KeySize, sha256.New), nil
}
