// Package services contains domain logic that has no I/O of its own.
package services

import (
	"fmt"
	"path/filepath"
	"regexp"

	"github.com/ochairo/tpa-symbols/internal/domain/entities"
)

// ArchiveSuffix is the filename suffix every symbol archive carries
const ArchiveSuffix = ".dSYM.zip"

// archivePattern captures app identifier, version and build. Each group is
// greedy, so hyphens inside the app identifier stay with the first group.
var archivePattern = regexp.MustCompile(`^(.+)-(.+)-(.+)\.dSYM\.zip$`)

// ParseMetadata extracts app identifier, version and build from the
// basename of path
func ParseMetadata(path string) (entities.ArchiveMetadata, error) {
	m := archivePattern.FindStringSubmatch(filepath.Base(path))
	if m == nil {
		return entities.ArchiveMetadata{}, entities.Errorf(entities.KindParse, path,
			"failed to extract app identifier, version and build number from")
	}

	return entities.ArchiveMetadata{
		AppIdentifier: m[1],
		Version:       m[2],
		Build:         m[3],
	}, nil
}

// FormatFilename builds the archive filename for meta
func FormatFilename(meta entities.ArchiveMetadata) string {
	return fmt.Sprintf("%s-%s-%s%s", meta.AppIdentifier, meta.Version, meta.Build, ArchiveSuffix)
}
