package workflow

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/flowmesh/orchestrator/engine/core"
)

// discoverWorkflowFiles returns every .yaml file under root, rejecting any
// match that would resolve outside of root.
func discoverWorkflowFiles(root string) ([]string, error) {
	pattern := filepath.Join(root, "**/*.yaml")
	matches, err := doublestar.FilepathGlob(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid workflow glob pattern: %w", err)
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
