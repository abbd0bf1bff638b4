// Package gateways defines interfaces for external service adapters.
package gateways

import (
	"context"
	"io"

	"github.com/ochairo/tpa-symbols/internal/domain/entities"
)

// TPAGateway defines operations against the TPA symbol backend
type TPAGateway interface {
	// ListSymbols fetches the symbol archives already uploaded for the project's app
	ListSymbols(ctx context.Context, project entities.Project) (entities.RemoteInventory, error)

	// UploadSymbols uploads one archive for meta's build and version
	UploadSymbols(ctx context.Context, project entities.Project, meta entities.ArchiveMetadata, filename string, content io.Reader) error
}

// ContentHasher computes the content hash recorded in a SymbolArchiveDescriptor
type ContentHasher interface {
	CalculateChecksum(filePath string) (string, error)
}

// SignatureVerifier checks a detached signature that sits next to an archive
// and returns the signer's key ID
type SignatureVerifier interface {
	VerifyArchive(archivePath string) (string, error)
}
