package workflow

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/flowmesh/orchestrator/engine/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeWorkflow(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "workflow.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	t.Run("Should load a chain workflow", func(t *testing.T) {
		path := writeWorkflow(t, `
id: grade-essay
name: Grade Essay
type: CHAIN
steps:
  - stepId: step1
    agentId: summarizer
    inputSource: USER_INPUT
  - stepId: step2
    agentId: grader
    inputTemplate: "score {{step1}} for {{USER_INPUT}}"
`)
		def, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, TypeChain, def.Type)
		require.Len(t, def.Steps, 2)
		assert.Equal(t, "step2", def.Steps[1].StepID)
	})

	t.Run("Should load a router workflow and default maxSteps", func(t *testing.T) {
		path := writeWorkflow(t, `
id: router-flow
type: ROUTER
managerAgentId: manager
allowedAgents: [worker1, worker2]
`)
		def, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, TypeRouter, def.Type)
		assert.Equal(t, 5, def.EffectiveMaxSteps())
	})

	t.Run("Should honor an explicit positive maxSteps", func(t *testing.T) {
		path := writeWorkflow(t, `
id: router-flow
type: ROUTER
managerAgentId: manager
maxSteps: 3
`)
		def, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, 3, def.EffectiveMaxSteps())
	})

	t.Run("Should reject a non-positive maxSteps by falling back to the default", func(t *testing.T) {
		path := writeWorkflow(t, `
id: router-flow
type: ROUTER
managerAgentId: manager
maxSteps: -1
`)
		def, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, 5, def.EffectiveMaxSteps())
	})

	t.Run("Should fail when a chain workflow has duplicate step ids", func(t *testing.T) {
		path := writeWorkflow(t, `
id: dup
type: CHAIN
steps:
  - stepId: a
    agentId: agent1
  - stepId: a
    agentId: agent2
`)
		_, err := Load(path)
		require.Error(t, err)
		var coreErr *core.Error
		require.ErrorAs(t, err, &coreErr)
		assert.Equal(t, core.KindConfigInvalid, coreErr.Code)
	})

	t.Run("Should fail when a chain workflow has no steps", func(t *testing.T) {
		path := writeWorkflow(t, `
id: empty
type: CHAIN
`)
		_, err := Load(path)
		assert.Error(t, err)
	})

	t.Run("Should fail when a router workflow has no managerAgentId", func(t *testing.T) {
		path := writeWorkflow(t, `
id: router-no-manager
type: ROUTER
`)
		_, err := Load(path)
		assert.Error(t, err)
	})

	t.Run("Should fail for an unknown workflow type", func(t *testing.T) {
		path := writeWorkflow(t, `
id: weird
type: GRAPH
`)
		_, err := Load(path)
		assert.Error(t, err)
	})
}
