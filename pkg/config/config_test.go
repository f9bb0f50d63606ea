package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("Should require a base path", func(t *testing.T) {
		_, err := Load("")
		require.Error(t, err)
	})

	t.Run("Should accept an explicit base path", func(t *testing.T) {
		cfg, err := Load("/srv/agents")
		require.NoError(t, err)
		assert.Equal(t, "/srv/agents", cfg.BasePath)
		assert.Equal(t, "http://localhost:11434", cfg.OllamaBaseURL)
	})

	t.Run("Should resolve provider credentials from the environment", func(t *testing.T) {
		t.Setenv("OPENAI_API_KEY", "sk-test")
		t.Setenv("ANTHROPIC_API_KEY", "sk-ant-test")

		cfg, err := Load("/srv/agents")
		require.NoError(t, err)

		key, ok := cfg.Credential("openai")
		assert.True(t, ok)
		assert.Equal(t, "sk-test", key)

		key, ok = cfg.Credential("claude")
		assert.True(t, ok)
		assert.Equal(t, "sk-ant-test", key)
	})

	t.Run("Should leave credentials unset when missing", func(t *testing.T) {
		os.Unsetenv("GROQ_API_KEY")
		cfg, err := Load("/srv/agents")
		require.NoError(t, err)

		_, ok := cfg.Credential("groq")
		assert.False(t, ok)
	})

	t.Run("Should override base path from GENAI_BASE_PATH when argument is empty", func(t *testing.T) {
		t.Setenv("GENAI_BASE_PATH", "/from/env")
		cfg, err := Load("")
		require.NoError(t, err)
		assert.Equal(t, "/from/env", cfg.BasePath)
	})
}
