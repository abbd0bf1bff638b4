package services

import (
	"path/filepath"

	"github.com/ochairo/tpa-symbols/internal/domain/entities"
	"github.com/ochairo/tpa-symbols/internal/domain/interfaces/gateways"
)

// Decider decides whether a candidate archive is missing from the remote inventory
type Decider struct {
	hasher gateways.ContentHasher
}

// NewDecider creates a decider that hashes archives with hasher
func NewDecider(hasher gateways.ContentHasher) *Decider {
	return &Decider{hasher: hasher}
}

// Describe builds the descriptor the backend would record for path
func (d *Decider) Describe(path string) (entities.SymbolArchiveDescriptor, entities.ArchiveMetadata, error) {
	meta, err := ParseMetadata(path)
	if err != nil {
		return entities.SymbolArchiveDescriptor{}, entities.ArchiveMetadata{}, err
	}

	desc, err := d.DescriptorFor(path, meta)
	return desc, meta, err
}

// DescriptorFor hashes path and combines it with already parsed meta
func (d *Decider) DescriptorFor(path string, meta entities.ArchiveMetadata) (entities.SymbolArchiveDescriptor, error) {
	hash, err := d.hasher.CalculateChecksum(path)
	if err != nil {
		return entities.SymbolArchiveDescriptor{}, entities.NewError(entities.KindIO, "failed to hash", path, err)
	}

	return entities.SymbolArchiveDescriptor{
		Filename:      filepath.Base(path),
		VersionNumber: meta.Build,
		VersionString: meta.Version,
		ContentHash:   hash,
	}, nil
}

// ShouldUpload returns true iff no inventory record equals path's descriptor
func (d *Decider) ShouldUpload(inventory entities.RemoteInventory, path string) (bool, error) {
	desc, _, err := d.Describe(path)
	if err != nil {
		return false, err
	}
	return !inventory.Contains(desc), nil
}
