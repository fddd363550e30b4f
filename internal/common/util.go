package common

import "crypto/rand"

// GenerateRandByteArray returns size bytes read from crypto/rand.
// crypto/rand.Read never returns an error on supported platforms, so a failure
// here is treated as fatal.
func GenerateRandByteArray(size int) []byte {
	b := make([]byte, size)
	if _, err := rand.Read(b); err != nil {
		panic(err)
	}
	return b
}

// WipeByteArray overwrites the contents of the provided byte slice with zeros.
// Used for plaintext secrets and key material once they are no longer needed.
//
// If the slice is nil, the function does nothing.
func WipeByteArray(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
