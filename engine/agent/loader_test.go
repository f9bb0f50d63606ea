package agent

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/flowmesh/orchestrator/engine/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path string, contents string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
}

func TestLoad(t *testing.T) {
	t.Run("Should load a well-formed agent definition with resolved prompts", func(t *testing.T) {
		root := t.TempDir()
		writeFile(t, filepath.Join(root, "system.md"), "You are {{persona}}.")
		writeFile(t, filepath.Join(root, "user.md"), "{{include: shared/greeting.md}}")
		writeFile(t, filepath.Join(root, "shared", "greeting.md"), "Hello there.")
		agentYAML := `
id: summarizer
name: Summarizer
version: "1.0.0"
description: Summarizes text
systemPromptPath: system.md
userPromptPath: user.md
model:
  provider: openai
  name: gpt-4o-mini
  temperature: 0.2
allowedTools:
  - search
metadata:
  persona: a concise summarizer
`
		agentPath := filepath.Join(root, "summarizer.yaml")
		writeFile(t, agentPath, agentYAML)

		def, err := Load(agentPath, root)
		require.NoError(t, err)
		assert.Equal(t, "summarizer", def.ID)
		assert.Equal(t, "You are a concise summarizer.", def.SystemPrompt)
		assert.Equal(t, "Hello there.", def.UserPrompt)
		assert.Equal(t, "openai", def.Model.Provider)
		assert.InDelta(t, 0.2, def.Model.Temperature, 1e-9)
		assert.Equal(t, []string{"search"}, def.AllowedTools)
	})

	t.Run("Should tolerate absent prompt paths by returning empty prompts", func(t *testing.T) {
		root := t.TempDir()
		agentPath := filepath.Join(root, "bare.yaml")
		writeFile(t, agentPath, `
id: bare
model:
  provider: anthropic
  name: claude-3-5-sonnet
`)
		def, err := Load(agentPath, root)
		require.NoError(t, err)
		assert.Equal(t, "", def.SystemPrompt)
		assert.Equal(t, "", def.UserPrompt)
	})

	t.Run("Should default an omitted temperature to 0.7 without touching an explicit one", func(t *testing.T) {
		root := t.TempDir()
		bare := filepath.Join(root, "bare.yaml")
		writeFile(t, bare, "id: bare\nmodel:\n  provider: anthropic\n  name: claude-3-5-sonnet\n")
		def, err := Load(bare, root)
		require.NoError(t, err)
		assert.InDelta(t, 0.7, def.Model.Temperature, 1e-9)

		explicit := filepath.Join(root, "explicit.yaml")
		writeFile(t, explicit, "id: explicit\nmodel:\n  provider: anthropic\n  name: claude-3-5-sonnet\n  temperature: 0.2\n")
		def2, err := Load(explicit, root)
		require.NoError(t, err)
		assert.InDelta(t, 0.2, def2.Model.Temperature, 1e-9)
	})

	t.Run("Should fail with config_invalid when id is missing", func(t *testing.T) {
		root := t.TempDir()
		agentPath := filepath.Join(root, "no_id.yaml")
		writeFile(t, agentPath, `
model:
  provider: openai
  name: gpt-4o-mini
`)
		_, err := Load(agentPath, root)
		require.Error(t, err)
		var coreErr *core.Error
		require.ErrorAs(t, err, &coreErr)
		assert.Equal(t, core.KindConfigInvalid, coreErr.Code)
	})

	t.Run("Should fail with config_invalid when model fields are missing", func(t *testing.T) {
		root := t.TempDir()
		agentPath := filepath.Join(root, "no_model.yaml")
		writeFile(t, agentPath, `
id: incomplete
`)
		_, err := Load(agentPath, root)
		require.Error(t, err)
		var coreErr *core.Error
		require.ErrorAs(t, err, &coreErr)
		assert.Equal(t, core.KindConfigInvalid, coreErr.Code)
	})

	t.Run("Should fail with file_io when the agent file does not exist", func(t *testing.T) {
		root := t.TempDir()
		_, err := Load(filepath.Join(root, "missing.yaml"), root)
		require.Error(t, err)
		var coreErr *core.Error
		require.ErrorAs(t, err, &coreErr)
		assert.Equal(t, core.KindFileIO, coreErr.Code)
	})

	t.Run("Should fail with config_invalid on malformed YAML", func(t *testing.T) {
		root := t.TempDir()
		agentPath := filepath.Join(root, "broken.yaml")
		writeFile(t, agentPath, "id: [unterminated")
		_, err := Load(agentPath, root)
		require.Error(t, err)
		var coreErr *core.Error
		require.ErrorAs(t, err, &coreErr)
		assert.Equal(t, core.KindConfigInvalid, coreErr.Code)
	})
}
