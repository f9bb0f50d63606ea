package agent

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcessPrompt(t *testing.T) {
	t.Run("Should substitute known placeholders and leave unknown ones literal", func(t *testing.T) {
		root := t.TempDir()
		out, err := processPrompt(
			"Hello {{name}}, your role is {{role}} and {{unknown}} stays put.",
			root, root,
			map[string]any{"name": "Ada", "role": "reviewer"},
		)
		require.NoError(t, err)
		assert.Equal(t, "Hello Ada, your role is reviewer and {{unknown}} stays put.", out)
	})

	t.Run("Should expand a single include relative to the base directory", func(t *testing.T) {
		root := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(root, "shared.md"), []byte("shared text"), 0o644))
		out, err := processPrompt("intro\n{{include: shared.md}}\noutro", root, root, nil)
		require.NoError(t, err)
		assert.Equal(t, "intro\nshared text\noutro", out)
	})

	t.Run("Should expand nested includes recursively", func(t *testing.T) {
		root := t.TempDir()
		require.NoError(t, os.MkdirAll(filepath.Join(root, "nested"), 0o755))
		require.NoError(t, os.WriteFile(filepath.Join(root, "nested", "b.md"), []byte("leaf"), 0o644))
		require.NoError(t, os.WriteFile(
			filepath.Join(root, "a.md"),
			[]byte("wrapped: {{include: nested/b.md}}"),
			0o644,
		))
		out, err := processPrompt("{{include: a.md}}", root, root, nil)
		require.NoError(t, err)
		assert.Equal(t, "wrapped: leaf", out)
	})

	t.Run("Should expand includes before substituting placeholders", func(t *testing.T) {
		root := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(root, "frag.md"), []byte("hi {{name}}"), 0o644))
		out, err := processPrompt("{{include: frag.md}}", root, root, map[string]any{"name": "Grace"})
		require.NoError(t, err)
		assert.Equal(t, "hi Grace", out)
	})

	t.Run("Should reject an include path that escapes the root directory", func(t *testing.T) {
		root := t.TempDir()
		outside := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(outside, "secret.md"), []byte("leaked"), 0o644))
		rel, err := filepath.Rel(root, filepath.Join(outside, "secret.md"))
		require.NoError(t, err)
		_, err = processPrompt("{{include: "+rel+"}}", root, root, nil)
		assert.Error(t, err)
	})

	t.Run("Should reject an absolute include path", func(t *testing.T) {
		root := t.TempDir()
		_, err := processPrompt("{{include: /etc/passwd}}", root, root, nil)
		assert.Error(t, err)
	})

	t.Run("Should fail when include recursion exceeds the depth cap", func(t *testing.T) {
		root := t.TempDir()
		for i := 0; i < maxIncludeDepth+2; i++ {
			name := filepath.Join(root, fileNameForDepth(i))
			next := fileNameForDepth(i + 1)
			contents := "{{include: " + next + "}}"
			require.NoError(t, os.WriteFile(name, []byte(contents), 0o644))
		}
		last := filepath.Join(root, fileNameForDepth(maxIncludeDepth+2))
		require.NoError(t, os.WriteFile(last, []byte("bottom"), 0o644))

		_, err := processPrompt("{{include: "+fileNameForDepth(0)+"}}", root, root, nil)
		assert.Error(t, err)
	})
}

func fileNameForDepth(i int) string {
	return "depth_" + string(rune('a'+i%26)) + ".md"
}
