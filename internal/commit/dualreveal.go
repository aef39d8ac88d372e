package commit

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"fmt"
)

// This file carries the two-party commit-reveal scheme: both the player
// and the house commit to independent secrets and the final randomness
// is derived from the XOR of the two reveals, so neither side can bias
// the outcome alone. The settlement engine still seeds game randomness
// from the player's reveal only; this scheme is not wired into it.

// DualCommit computes the hex SHA-256 commitment of a secret.
func DualCommit(secret []byte) string {
	sum := sha256.Sum256(secret)
	return hex.EncodeToString(sum[:])
}

// DualVerify checks a hex-encoded secret against a hex commitment.
func DualVerify(secretHex, commitHex string) (bool, error) {
	secret, err := hex.DecodeString(secretHex)
	if err != nil {
		return false, fmt.Errorf("invalid secret hex: %w", err)
	}
	expected, err := hex.DecodeString(commitHex)
	if err != nil {
		return false, fmt.Errorf("invalid commit hex: %w", err)
	}
	sum := sha256.Sum256(secret)
	if len(expected) != len(sum) {
		return false, nil
	}
	for i := range sum {
		if sum[i] != expected[i] {
			return false, nil
		}
	}
	return true, nil
}

// CombineSecrets XORs the player and house secrets, hashes the result
// for distribution, and returns the first 8 bytes as a uint64 seed.
func CombineSecrets(playerHex, houseHex string) (uint64, error) {
	player, err := hex.DecodeString(playerHex)
	if err != nil {
		return 0, fmt.Errorf("invalid player secret hex: %w", err)
	}
	house, err := hex.DecodeString(houseHex)
	if err != nil {
		return 0, fmt.Errorf("invalid house secret hex: %w", err)
	}

	n := len(player)
	if len(house) > n {
		n = len(house)
	}
	combined := make([]byte, n)
	for i := range combined {
		var p, h byte
		if i < len(player) {
			p = player[i]
		}
		if i < len(house) {
			h = house[i]
		}
		combined[i] = p ^ h
	}

	sum := sha256.Sum256(combined)
	return binary.LittleEndian.Uint64(sum[:8]), nil
}

// RandomInRange reduces a seed to [0, max). max of zero yields zero.
func RandomInRange(random, max uint64) uint64 {
	if max == 0 {
		return 0
	}
	return random % max
}

// ExpandRandom derives count follow-on values from a single seed.
func ExpandRandom(seed uint64, count int) []uint64 {
	results := make([]uint64, 0, count)
	current := seed
	for i := 0; i < count; i++ {
		var buf [16]byte
		binary.LittleEndian.PutUint64(buf[:8], current)
		binary.LittleEndian.PutUint64(buf[8:], uint64(i))
		sum := sha256.Sum256(buf[:])
		current = binary.LittleEndian.Uint64(sum[:8])
		results = append(results, current)
	}
	return results
}
