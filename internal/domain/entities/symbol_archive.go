// Package entities defines core domain models and data structures.
package entities

// ArchiveMetadata holds the three tokens encoded in a dSYM archive filename:
// <appIdentifier>-<version>-<build>.dSYM.zip
type ArchiveMetadata struct {
	AppIdentifier string
	Version       string
	Build         string
}

// SymbolArchiveDescriptor describes one symbol archive as the TPA backend
// records it. The JSON tags match the inventory listing format.
type SymbolArchiveDescriptor struct {
	Filename      string `json:"filename"`
	VersionNumber string `json:"version_number"`
	VersionString string `json:"version_string"`
	ContentHash   string `json:"hash"`
}

// Equal reports whether all four fields match exactly
func (d SymbolArchiveDescriptor) Equal(other SymbolArchiveDescriptor) bool {
	return d.Filename == other.Filename &&
		d.VersionNumber == other.VersionNumber &&
		d.VersionString == other.VersionString &&
		d.ContentHash == other.ContentHash
}

// RemoteInventory is the backend's list of already-uploaded symbol archives
type RemoteInventory []SymbolArchiveDescriptor

// Contains reports whether some record is field-wise equal to d
func (inv RemoteInventory) Contains(d SymbolArchiveDescriptor) bool {
	for _, record := range inv {
		if record.Equal(d) {
			return true
		}
	}
	return false
}

// UploadTarget is a resolved, absolute path to a candidate archive
type UploadTarget struct {
	Path string
}

// Project identifies the TPA project and app that symbols are uploaded to
type Project struct {
	Host          string // scheme and authority, e.g. https://someproject.tpa.io
	ProjectUUID   string
	AppIdentifier string
}
