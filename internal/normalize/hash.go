package normalize

import (
	"crypto/sha256"
	"fmt"
	"io"
	"os"
	"strings"
)

// FileHash computes the hex-encoded SHA-256 of the file at path.
func FileHash(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open file for hash: %w", err)
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("hash file: %w", err)
	}
	return fmt.Sprintf("%x", h.Sum(nil)), nil
}

// BytesHash computes the hex-encoded SHA-256 of b.
func BytesHash(b []byte) string {
	return fmt.Sprintf("%x", sha256.Sum256(b))
}

// ContentDigest computes a SHA-256 over trimmed values joined with null
// separators and returns its first n hex characters.
func ContentDigest(n int, values ...string) string {
	h := sha256.New()
	for _, v := range values {
		h.Write([]byte(strings.TrimSpace(v)))
		h.Write([]byte{0})
	}
	sum := fmt.Sprintf("%x", h.Sum(nil))
	if n > 0 && n < len(sum) {
		return sum[:n]
	}
	return sum
}
