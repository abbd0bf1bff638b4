// Package gpg checks detached OpenPGP signatures shipped next to symbol archives.
package gpg

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/ProtonMail/go-crypto/openpgp"
)

// SignatureSuffixes are tried in order next to an archive
var SignatureSuffixes = []string{".sig", ".asc"}

// ErrNoSignature is returned when an archive has no detached signature beside it
var ErrNoSignature = errors.New("no detached signature found")

var armorHeader = []byte("-----BEGIN PGP SIGNATURE-----")

// Keyring holds the public keys trusted to sign archives
type Keyring struct {
	keys openpgp.EntityList
}

// LoadKeyring reads trusted public keys from keyPath, armored or binary
func LoadKeyring(keyPath string) (*Keyring, error) {
	//nolint:gosec // G304: keyPath is the configured signature key
	data, err := os.ReadFile(keyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read key file: %w", err)
	}

	keys, err := openpgp.ReadArmoredKeyRing(bytes.NewReader(data))
	if err != nil {
		keys, err = openpgp.ReadKeyRing(bytes.NewReader(data))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse keys in %s: %w", keyPath, err)
	}
	if len(keys) == 0 {
		return nil, fmt.Errorf("no keys found in %s", keyPath)
	}

	return &Keyring{keys: keys}, nil
}

// FindSignature returns the first existing <archive><suffix> signature path
func FindSignature(archivePath string) (string, error) {
	for _, suffix := range SignatureSuffixes {
		sigPath := archivePath + suffix
		info, err := os.Stat(sigPath)
		if err == nil && !info.IsDir() {
			return sigPath, nil
		}
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("failed to stat %s: %w", sigPath, err)
		}
	}
	return "", fmt.Errorf("%w for %s (looked for .sig and .asc)", ErrNoSignature, archivePath)
}

// VerifyArchive checks archivePath against its detached signature and
// returns the signer's primary key ID in hex
func (k *Keyring) VerifyArchive(archivePath string) (string, error) {
	sigPath, err := FindSignature(archivePath)
	if err != nil {
		return "", err
	}

	//nolint:gosec // G304: sigPath sits next to a resolved upload target
	sig, err := os.ReadFile(sigPath)
	if err != nil {
		return "", fmt.Errorf("failed to read signature: %w", err)
	}

	//nolint:gosec // G304: archivePath is a resolved upload target
	archive, err := os.Open(archivePath)
	if err != nil {
		return "", fmt.Errorf("failed to open archive: %w", err)
	}
	//nolint:errcheck // Defer close on read-only file
	defer archive.Close()

	// .asc files are usually armored but either suffix may hold either form
	var signer *openpgp.Entity
	if bytes.HasPrefix(bytes.TrimSpace(sig), armorHeader) {
		signer, err = openpgp.CheckArmoredDetachedSignature(k.keys, archive, bytes.NewReader(sig), nil)
	} else {
		signer, err = openpgp.CheckDetachedSignature(k.keys, archive, bytes.NewReader(sig), nil)
	}
	if err != nil {
		return "", fmt.Errorf("bad signature %s: %w", sigPath, err)
	}

	return signer.PrimaryKey.KeyIdString(), nil
}
