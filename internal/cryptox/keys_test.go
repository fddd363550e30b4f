package cryptox

import (
	"bytes"
	"encoding/hex"
	"errors"
	"strings"
	"testing"

	"github.com/dmitrijs2005/custodian/internal/common"
)

func TestResolveMasterKey_HexIsDecodedDirectly(t *testing.T) {
	want := bytes.Repeat([]byte{0xab}, KeySize)
	secret := hex.EncodeToString(want)

	got, err := ResolveMasterKey(secret)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Equal(got, want) {
		t.Fatalf("hex key mismatch: got %x", got)
	}
}

func TestResolveMasterKey_PassphraseIsStretched(t *testing.T) {
	k1, err := ResolveMasterKey("correct horse battery staple")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	k2, err := ResolveMasterKey("correct horse battery staple")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(k1) != KeySize {
		t.Fatalf("expected %d-byte key, got %d", KeySize, len(k1))
	}
	if !bytes.Equal(k1, k2) {
		t.Fatalf("same passphrase must yield the same key")
	}

	k3, err := ResolveMasterKey("another passphrase")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if bytes.Equal(k1, k3) {
		t.Fatalf("different passphrases must yield different keys")
	}
}

func TestResolveMasterKey_NonHex64CharsIsPassphrase(t *testing.T) {
	secret := strings.Repeat("z", 64)
	got, err := ResolveMasterKey(secret)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if bytes.Equal(got, []byte(secret)[:KeySize]) {
		t.Fatalf("non-hex input must not be used verbatim")
	}
}

func TestResolveMasterKey_MissingIsConfigError(t *testing.T) {
	for _, secret := range []string{"", "   ", "\n"} {
		_, err := ResolveMasterKey(secret)
		if !errors.Is(err, common.ErrorConfig) {
			t.Fatalf("secret %q: want ErrorConfig, got %v", secret, err)
		}
	}
}
