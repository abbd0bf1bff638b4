package gateways

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ochairo/tpa-symbols/internal/domain/services"
)

// ArchiveFinder provides utilities for locating dSYM archives on disk
type ArchiveFinder struct{}

// NewArchiveFinder creates a new archive finder
func NewArchiveFinder() *ArchiveFinder {
	return &ArchiveFinder{}
}

// FindAll searches dir recursively for *.dSYM.zip files, oldest first
func (f *ArchiveFinder) FindAll(dir string) ([]string, error) {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return nil, fmt.Errorf("directory does not exist: %s", dir)
	}

	type found struct {
		path    string
		modTime int64
	}
	var archives []found

	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		// .dSYM bundles are directories; only zipped archives count
		if d.IsDir() || !strings.HasSuffix(d.Name(), services.ArchiveSuffix) {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		archives = append(archives, found{path: path, modTime: info.ModTime().UnixNano()})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to search %s: %w", dir, err)
	}

	sort.SliceStable(archives, func(i, j int) bool {
		return archives[i].modTime < archives[j].modTime
	})

	paths := make([]string, len(archives))
	for i, a := range archives {
		paths[i] = a.path
	}
	return paths, nil
}

// Latest returns the most recently modified archive under dir, or "" when none exists
func (f *ArchiveFinder) Latest(dir string) (string, error) {
	archives, err := f.FindAll(dir)
	if err != nil {
		return "", err
	}
	if len(archives) == 0 {
		return "", nil
	}
	return archives[len(archives)-1], nil
}

// ReadPathList reads a newline-separated list of archive paths written by a
// previous pipeline step. Blank lines and lines starting with # are ignored.
func (f *ArchiveFinder) ReadPathList(listFile string) ([]string, error) {
	//nolint:gosec // G304: listFile is user-provided
	data, err := os.ReadFile(listFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read path list: %w", err)
	}

	var paths []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		paths = append(paths, line)
	}
	return paths, nil
}

// ValidateArchive checks that path exists, is a regular file and is a zip
func (f *ArchiveFinder) ValidateArchive(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		abs, _ := filepath.Abs(path)
		return fmt.Errorf("couldn't find file at path '%s'", abs)
	}
	if info.IsDir() {
		return fmt.Errorf("'%s' is a directory, symbolication file needs to be zip", path)
	}
	if !strings.HasSuffix(path, ".zip") {
		return fmt.Errorf("symbolication file needs to be zip: %s", path)
	}
	return nil
}
