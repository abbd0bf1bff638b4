package gateways

import (
	"crypto/md5" //nolint:gosec // G501: MD5 is the backend's duplicate-detection hash, not a security boundary
	"encoding/hex"
	"fmt"
	"io"
	"os"
)

// md5Hasher computes the archive content hash TPA records for uploaded symbols
type md5Hasher struct{}

// NewContentHasher creates a new MD5 content hasher
//
//nolint:revive // unexported-return: Intentionally returns concrete type for testability
func NewContentHasher() *md5Hasher {
	return &md5Hasher{}
}

// CalculateChecksum returns the lowercase hex MD5 of the file's full contents
func (h *md5Hasher) CalculateChecksum(filePath string) (string, error) {
	//nolint:gosec // G304: File path is user-provided archive path
	f, err := os.Open(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	//nolint:errcheck // Defer close on read-only file
	defer f.Close()

	sum := md5.New() //nolint:gosec // G401: see import
	if _, err := io.Copy(sum, f); err != nil {
		return "", fmt.Errorf("failed to hash file: %w", err)
	}

	return hex.EncodeToString(sum.Sum(nil)), nil
}
