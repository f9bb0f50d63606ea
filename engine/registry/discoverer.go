// Package registry holds the hot-reloadable agent and workflow registries:
// file-backed stores that resolve definitions from a directory tree and
// refresh themselves as files change.
package registry

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/flowmesh/orchestrator/engine/core"
)

// discoverFiles returns every file under root matching pattern (a doublestar
// glob), rejecting any pattern that could escape root.
func discoverFiles(root, pattern string) ([]string, error) {
	if err := validatePattern(pattern); err != nil {
		return nil, err
	}
	full := filepath.Join(root, pattern)
	matches, err := doublestar.FilepathGlob(full)
	if err != nil {
		return nil, fmt.Errorf("invalid glob pattern %q: %w", pattern, err)
	}
	files := make([]string, 0, len(matches))
	for _, match := range matches {
		rel, err := filepath.Rel(root, match)
		if err != nil || strings.HasPrefix(rel, "..") || filepath.IsAbs(rel) {
			return nil, core.NewError(
				fmt.Errorf("path escapes root: %s", match),
				core.KindConfigInvalid,
				map[string]any{"file": match, "root": root},
			)
		}
		files = append(files, match)
	}
	slices.Sort(files)
	return files, nil
}

func validatePattern(pattern string) error {
	clean := filepath.Clean(pattern)
	if filepath.IsAbs(clean) {
		return fmt.Errorf("absolute glob patterns are not allowed: %s", pattern)
	}
	if slices.Contains(strings.Split(clean, string(filepath.Separator)), "..") {
		return fmt.Errorf("parent directory references are not allowed: %s", pattern)
	}
	return nil
}
