package crypto

import (
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"os"

	"golang.org/x/crypto/blake2b"
)

// NewHash returns an unkeyed BLAKE2b-256 hash.
func NewHash() hash.Hash {
	// New256 only fails for keys longer than 64 bytes.
	h, _ := blake2b.New256(nil)
	return h
}

// Digest returns the hex BLAKE2b-256 digest of everything read from r.
func Digest(r io.Reader) (string, error) {
	h := NewHash()
	if _, err := io.Copy(h, r); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// FileDigest returns the hex BLAKE2b-256 digest of the file at path.
func FileDigest(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	sum, err := Digest(f)
	if err != nil {
		return "", fmt.Errorf("failed to hash %s: %w", path, err)
	}
	return sum, nil
}

// SameContent reports whether two files have identical digests.
func SameContent(a, b string) (bool, error) {
	da, err := FileDigest(a)
	if err != nil {
		return false, err
	}
	db, err := FileDigest(b)
	if err != nil {
		return false, err
	}
	return da == db, nil
}
