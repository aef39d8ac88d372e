package games

import (
	"encoding/binary"

	"golang.org/x/crypto/sha3"
)

// gameDigest derives the per-game pseudorandom stream: SHA3-256 over the
// reveal followed by an ASCII domain separation tag, so the same reveal
// yields unrelated streams for different games.
func gameDigest(reveal [32]byte, tag string) [32]byte {
	h := sha3.New256()
	h.Write(reveal[:])
	h.Write([]byte(tag))

	var digest [32]byte
	copy(digest[:], h.Sum(nil))
	return digest
}

// beUint32 extracts a big-endian uint32 from the digest starting at
// offset, wrapping each byte index modulo the digest length.
func beUint32(digest [32]byte, offset int) uint32 {
	var window [4]byte
	for i := 0; i < 4; i++ {
		window[i] = digest[(offset+i)%len(digest)]
	}
	return binary.BigEndian.Uint32(window[:])
}
