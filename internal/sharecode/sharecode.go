// Package sharecode derives owner-bound share codes and parses redeemed ones.
//
// A full code has the shape "{prefix}-{raw}". The prefix is a one-way,
// deterministic function of the owner's user id, so a code issued by one
// owner can never be redeemed against another owner's documents even if the
// raw parts collide.
package sharecode

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"math/big"
	"strings"
)

// Alphabet has 33 symbols. 0, O and I are left out because they are easily
// confused with O, 0 and 1 when typed from paper.
const Alphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ123456789"

const (
	// PrefixLen is the number of symbols in an owner prefix.
	PrefixLen = 6
	// RawCodeLen is the length of freshly issued raw codes.
	RawCodeLen = 8
	// minSegmentLen is the shortest prefix or code Parse accepts.
	minSegmentLen = 4

	separator = "-"
)

// Parsed is a full code split into its parts.
type Parsed struct {
	Prefix  string
	RawCode string
}

// DerivePrefix maps ownerUserID to its 6-symbol prefix.
func DerivePrefix(ownerUserID string) string {
	sum := sha256.Sum256([]byte(ownerUserID))

	var b strings.Builder
	b.Grow(PrefixLen)
	for _, x := range sum[:PrefixLen] {
		b.WriteByte(Alphabet[int(x)%len(Alphabet)])
	}
	return b.String()
}

// Compose returns the code an owner hands out.
func Compose(rawCode, ownerUserID string) string {
	return DerivePrefix(ownerUserID) + separator + rawCode
}

// Parse splits fullCode on its last hyphen. Everything before it is the prefix
// (which may itself contain hyphens). It reports false for codes that are not
// in this format, which includes legacy codes issued without a prefix.
func Parse(fullCode string) (Parsed, bool) {
	i := strings.LastIndex(fullCode, separator)
	if i < 0 {
		return Parsed{}, false
	}

	p := Parsed{Prefix: fullCode[:i], RawCode: fullCode[i+1:]}
	if len(p.Prefix) < minSegmentLen || len(p.RawCode) < minSegmentLen {
		return Parsed{}, false
	}
	return p, true
}

// ValidateOwnership reports whether fullCode carries claimedOwnerUserID's
// prefix. The comparison is constant-time.
func ValidateOwnership(fullCode, claimedOwnerUserID string) bool {
	p, ok := Parse(fullCode)
	if !ok {
		return false
	}
	want := DerivePrefix(claimedOwnerUserID)
	return subtle.ConstantTimeCompare([]byte(p.Prefix), []byte(want)) == 1
}

// NewRawCode draws a uniformly random raw code from Alphabet.
func NewRawCode() (string, error) {
	max := big.NewInt(int64(len(Alphabet)))

	var b strings.Builder
	b.Grow(RawCodeLen)
	for range RawCodeLen {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b.WriteByte(Alphabet[n.Int64()])
	}
	return b.String(), nil
}
