package utils

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// HashAlgorithm represents the hashing algorithm to use
type HashAlgorithm string

const (
	SHA256 HashAlgorithm = "sha256"
)

// Hasher computes checksums of persisted payloads
type Hasher struct {
	algorithm HashAlgorithm
}

// NewHasher creates a new hasher with the specified algorithm
func NewHasher(algorithm HashAlgorithm) *Hasher {
	return &Hasher{
		algorithm: algorithm,
	}
}

// DefaultHasher returns a hasher with the default algorithm
func DefaultHasher() *Hasher {
	return NewHasher(SHA256)
}

// Hash computes a hash of the input data
func (h *Hasher) Hash(data []byte) string {
	switch h.algorithm {
	case SHA256:
		hash := sha256.Sum256(data)
		return hex.EncodeToString(hash[:])
	default:
		// Fallback to SHA256
		hash := sha256.Sum256(data)
		return hex.EncodeToString(hash[:])
	}
}

// Checksum returns "<algorithm>:<hex>" for data
func (h *Hasher) Checksum(data []byte) string {
	return fmt.Sprintf("%s:%s", h.algorithm, h.Hash(data))
}

// Verify checks data against a checksum produced by Checksum. An empty
// checksum always verifies (older state without one).
func (h *Hasher) Verify(data []byte, checksum string) bool {
	if checksum == "" {
		return true
	}
	algorithm, _, ok := strings.Cut(checksum, ":")
	if !ok {
		return false
	}
	return NewHasher(HashAlgorithm(algorithm)).Checksum(data) == checksum
}
