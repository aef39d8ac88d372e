// Package commit implements the hash commitment scheme for provably fair
// bets: the player publishes Commit(secret) when the bet is placed and
// discloses the secret at reveal time.
package commit

import (
	"crypto/subtle"
	"encoding/hex"
	"fmt"

	"golang.org/x/crypto/sha3"
)

// Size is the commitment digest size in bytes.
const Size = 32

// Digest is a SHA3-256 commitment digest.
type Digest [Size]byte

// ParseDigest decodes a 64-character hex string.
func ParseDigest(s string) (Digest, error) {
	raw, err := hex.DecodeString(s)
	if err != nil {
		return Digest{}, fmt.Errorf("invalid digest hex: %w", err)
	}
	if len(raw) != Size {
		return Digest{}, fmt.Errorf("digest must be %d bytes, got %d", Size, len(raw))
	}
	var d Digest
	copy(d[:], raw)
	return d, nil
}

func (d Digest) String() string {
	return hex.EncodeToString(d[:])
}

func (d Digest) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Digest) UnmarshalJSON(data []byte) error {
	if len(data) < 2 || data[0] != '"' || data[len(data)-1] != '"' {
		return fmt.Errorf("digest must be a JSON string")
	}
	parsed, err := ParseDigest(string(data[1 : len(data)-1]))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Commit computes the commitment digest of a secret.
func Commit(secret []byte) Digest {
	return sha3.Sum256(secret)
}

// Verify reports whether secret hashes to digest. It fails closed: any
// mismatch, including an empty secret, is simply "not verified".
func Verify(secret []byte, digest Digest) bool {
	computed := Commit(secret)
	return subtle.ConstantTimeCompare(computed[:], digest[:]) == 1
}
