package agent

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/flowmesh/orchestrator/engine/core"
)

// maxIncludeDepth caps the recursion depth of {{include: ...}} expansion.
const maxIncludeDepth = 16

var (
	includePattern   = regexp.MustCompile(`\{\{\s*include:\s*([^}]+?)\s*\}\}`)
	placeholderRegex = regexp.MustCompile(`\{\{\s*([a-zA-Z0-9_.\-]+)\s*\}\}`)
)

// processPrompt expands {{include: path}} tokens (recursively, depth
// capped) and then substitutes {{key}} placeholders from metadata. Includes
// are resolved first, placeholders second, per spec order. baseDir is
// passed explicitly through the recursion rather than carried in
// thread-local-style package state, so the loader is safely re-entrant
// across concurrent workers.
func processPrompt(text string, baseDir string, root string, metadata map[string]any) (string, error) {
	expanded, err := expandIncludes(text, baseDir, root, 0)
	if err != nil {
		return "", err
	}
	return substitutePlaceholders(expanded, metadata), nil
}

func expandIncludes(text string, baseDir string, root string, depth int) (string, error) {
	if depth > maxIncludeDepth {
		return "", core.NewError(
			fmt.Errorf("include depth exceeded %d", maxIncludeDepth),
			core.KindIncludeDepthExceeded,
			map[string]any{"baseDir": baseDir},
		)
	}
	var outerErr error
	result := includePattern.ReplaceAllStringFunc(text, func(match string) string {
		if outerErr != nil {
			return match
		}
		sub := includePattern.FindStringSubmatch(match)
		relPath := strings.TrimSpace(sub[1])
		resolvedPath, err := resolveIncludePath(baseDir, root, relPath)
		if err != nil {
			outerErr = err
			return match
		}
		contents, err := os.ReadFile(resolvedPath)
		if err != nil {
			outerErr = core.NewError(err, core.KindFileIO, map[string]any{"path": resolvedPath})
			return match
		}
		nestedBase := filepath.Dir(resolvedPath)
		nested, err := expandIncludes(string(contents), nestedBase, root, depth+1)
		if err != nil {
			outerErr = err
			return match
		}
		return nested
	})
	if outerErr != nil {
		return "", outerErr
	}
	return result, nil
}

// resolveIncludePath resolves relPath against baseDir and rejects any
// result that escapes root, per the security posture in spec.md §9.
func resolveIncludePath(baseDir, root, relPath string) (string, error) {
	if filepath.IsAbs(relPath) {
		return "", core.NewError(
			fmt.Errorf("absolute include paths are not allowed: %s", relPath),
			core.KindConfigInvalid,
			map[string]any{"path": relPath},
		)
	}
	joined := filepath.Join(baseDir, relPath)
	abs, err := filepath.Abs(joined)
	if err != nil {
		return "", core.NewError(err, core.KindFileIO, map[string]any{"path": relPath})
	}
	rootAbs, err := filepath.Abs(root)
	if err != nil {
		return "", core.NewError(err, core.KindFileIO, map[string]any{"root": root})
	}
	rel, err := filepath.Rel(rootAbs, abs)
	if err != nil || strings.HasPrefix(rel, "..") || rel == ".." {
		return "", core.NewError(
			fmt.Errorf("include path escapes base directory: %s", relPath),
			core.KindConfigInvalid,
			map[string]any{"path": relPath, "root": root},
		)
	}
	return abs, nil
}

// substitutePlaceholders replaces every {{key}} found in metadata with its
// stringified value. Unknown keys are left intact as literal text.
func substitutePlaceholders(text string, metadata map[string]any) string {
	return placeholderRegex.ReplaceAllStringFunc(text, func(match string) string {
		sub := placeholderRegex.FindStringSubmatch(match)
		key := sub[1]
		v, ok := metadata[key]
		if !ok {
			return match
		}
		return stringifyMetadataValue(v)
	})
}

func stringifyMetadataValue(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case fmt.Stringer:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64)
	default:
		return fmt.Sprintf("%v", t)
	}
}
