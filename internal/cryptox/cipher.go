package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"encoding/base64"
	"fmt"

	"github.com/awnumar/memguard"
	"github.com/dmitrijs2005/custodian/internal/common"
)

// Blob layout: salt || iv || tag || ciphertext.
const (
	SaltSize  = 64
	NonceSize = 16
	TagSize   = 16

	headerSize = SaltSize + NonceSize + TagSize
)

// EncryptedSecret is the base64-encoded blob stored in place of one plaintext
// string. It is opaque to everything except Cipher.
type EncryptedSecret string

// Cipher performs AES-256-GCM envelope encryption of short secrets.
//
// The per-call salt is stored with the blob and bound to it as additional
// authenticated data, but it is not yet mixed into key derivation: every
// record is sealed under the same master key. The salt is reserved for
// per-record key diversification.
//
// The key lives in a memguard enclave and is only decrypted into locked memory
// for the duration of a single operation. A Cipher is safe for concurrent use.
type Cipher struct {
	key *memguard.Enclave
}

// NewCipher seals key into an enclave. The caller's slice is wiped.
func NewCipher(key []byte) (*Cipher, error) {
	if len(key) != KeySize {
		common.WipeByteArray(key)
		return nil, fmt.Errorf("%w: master key must be %d bytes, got %d", common.ErrorConfig, KeySize, len(key))
	}
	return &Cipher{key: memguard.NewEnclave(key)}, nil
}

func (c *Cipher) aead() (cipher.AEAD, error) {
	buf, err := c.key.Open()
	if err != nil {
		return nil, fmt.Errorf("open key enclave: %w", err)
	}
	defer buf.Destroy()

	block, err := aes.NewCipher(buf.Bytes())
	if err != nil {
		return nil, err
	}
	return cipher.NewGCMWithNonceSize(block, NonceSize)
}

// Encrypt seals plaintext into a fresh blob. Blank plaintext is a caller bug
// and is rejected before any cryptographic work.
func (c *Cipher) Encrypt(plaintext string) (EncryptedSecret, error) {
	if plaintext == "" {
		return "", fmt.Errorf("%w: plaintext is empty", common.ErrorValidation)
	}

	aead, err := c.aead()
	if err != nil {
		return "", err
	}

	salt := common.GenerateRandByteArray(SaltSize)
	nonce := common.GenerateRandByteArray(NonceSize)

	// Seal returns ciphertext || tag.
	sealed := aead.Seal(nil, nonce, []byte(plaintext), salt)
	ct, tag := sealed[:len(sealed)-TagSize], sealed[len(sealed)-TagSize:]

	blob := make([]byte, 0, headerSize+len(ct))
	blob = append(blob, salt...)
	blob = append(blob, nonce...)
	blob = append(blob, tag...)
	blob = append(blob, ct...)

	return EncryptedSecret(base64.StdEncoding.EncodeToString(blob)), nil
}

// Decrypt verifies and opens a blob produced by Encrypt. Any malformed or
// tampered input yields common.ErrorDecryption and no plaintext.
func (c *Cipher) Decrypt(secret EncryptedSecret) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(string(secret))
	if err != nil {
		return "", fmt.Errorf("%w: malformed encoding", common.ErrorDecryption)
	}
	if len(raw) < headerSize {
		return "", fmt.Errorf("%w: blob is %d bytes, need at least %d", common.ErrorDecryption, len(raw), headerSize)
	}

	salt := raw[:SaltSize]
	nonce := raw[SaltSize : SaltSize+NonceSize]
	tag := raw[SaltSize+NonceSize : headerSize]
	ct := raw[headerSize:]

	aead, err := c.aead()
	if err != nil {
		return "", err
	}

	sealed := make([]byte, 0, len(ct)+TagSize)
	sealed = append(sealed, ct...)
	sealed = append(sealed, tag...)

	plaintext, err := aead.Open(nil, nonce, sealed, salt)
	if err != nil {
		return "", fmt.Errorf("%w: authentication failed", common.ErrorDecryption)
	}
	defer common.WipeByteArray(plaintext)

	return string(plaintext), nil
}

// BlobLen reports the decoded length of a blob, for operator diagnostics.
// It never reveals content. Returns -1 if the blob is not valid base64.
func BlobLen(secret EncryptedSecret) int {
	raw, err := base64.StdEncoding.DecodeString(string(secret))
	if err != nil {
		return -1
	}
	return len(raw)
}
