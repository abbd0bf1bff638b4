package services

import (
	"path/filepath"

	"github.com/ochairo/tpa-symbols/internal/domain/entities"
)

// ResolveTargets turns explicit paths and paths handed over by a previous
// pipeline step into absolute upload targets. Duplicates are dropped by
// absolute path, keeping the first occurrence.
func ResolveTargets(explicit, pipeline []string) ([]entities.UploadTarget, error) {
	seen := make(map[string]bool)
	targets := make([]entities.UploadTarget, 0, len(explicit)+len(pipeline))

	for _, group := range [][]string{explicit, pipeline} {
		for _, p := range group {
			if p == "" {
				continue
			}
			abs, err := filepath.Abs(p)
			if err != nil {
				return nil, entities.NewError(entities.KindUserInput, "failed to resolve path", p, err)
			}
			if seen[abs] {
				continue
			}
			seen[abs] = true
			targets = append(targets, entities.UploadTarget{Path: abs})
		}
	}

	return targets, nil
}
