package gateways

import (
	"fmt"

	"github.com/ochairo/tpa-symbols/internal/external-adapters/gpg"
)

// gpgVerifier wraps the external GPG adapter to implement the domain gateway interface
type gpgVerifier struct {
	keyring *gpg.Keyring
}

// NewSignatureVerifier creates a verifier trusting the public keys in keyPath
//
//nolint:revive // unexported-return: Intentionally returns concrete type for testability
func NewSignatureVerifier(keyPath string) (*gpgVerifier, error) {
	keyring, err := gpg.LoadKeyring(keyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to import GPG key from file: %w", err)
	}
	return &gpgVerifier{keyring: keyring}, nil
}

// VerifyArchive verifies the detached signature stored at <archive>.sig or
// <archive>.asc and returns the signer's key ID
func (g *gpgVerifier) VerifyArchive(archivePath string) (string, error) {
	signer, err := g.keyring.VerifyArchive(archivePath)
	if err != nil {
		return "", fmt.Errorf("GPG signature verification failed: %w", err)
	}
	return signer, nil
}
