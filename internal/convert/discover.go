// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/pdiddy/mmap2md/internal/container"
	"github.com/pdiddy/mmap2md/pkg/types"
)

// Discover expands paths into the list of maps to convert. Files are taken
// as given, whatever their extension. Directories are walked recursively
// for .mmap/.xmmap files, in lexical order, and each map found records its
// folder relative to the walked directory in Dir. Duplicates are dropped.
func Discover(paths []string) ([]types.MapFile, error) {
	seen := make(map[string]bool)
	var out []types.MapFile
	add := func(m types.MapFile) {
		m.Path = filepath.Clean(m.Path)
		if !seen[m.Path] {
			seen[m.Path] = true
			out = append(out, m)
		}
	}

	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil || !info.IsDir() {
			// Missing files are passed through so the engine reports them
			// as InputNotFound.
			add(types.MapFile{Path: p})
			continue
		}

		var found []string
		err = filepath.WalkDir(p, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && container.IsMapFile(path) {
				found = append(found, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("scanning %s: %w", p, err)
		}
		sort.Strings(found)
		for _, m := range Under(p, found) {
			add(m)
		}
	}
	return out, nil
}

// Under builds MapFile records for paths found below root, setting Dir to
// each path's folder relative to root. Paths outside root get no Dir.
func Under(root string, paths []string) []types.MapFile {
	maps := make([]types.MapFile, len(paths))
	for i, p := range paths {
		maps[i] = types.MapFile{Path: p}
		rel, err := filepath.Rel(root, filepath.Dir(p))
		if err != nil || rel == "." || !filepath.IsLocal(rel) {
			continue
		}
		maps[i].Dir = rel
	}
	return maps
}
