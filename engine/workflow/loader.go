package workflow

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/flowmesh/orchestrator/engine/core"
	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-yaml"
)

var validate = validator.New()

// Load parses a single workflow YAML file at path into a validated
// Definition.
func Load(path string) (*Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, core.NewError(err, core.KindFileIO, map[string]any{"path": path})
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, core.NewError(err, core.KindConfigInvalid, map[string]any{"path": path})
	}

	if err := validateConfig(&cfg, path); err != nil {
		return nil, err
	}

	return &Definition{
		ID:             cfg.ID,
		Name:           cfg.Name,
		Version:        cfg.Version,
		Type:           cfg.Type,
		Steps:          cfg.Steps,
		ManagerAgentID: cfg.ManagerAgentID,
		AllowedAgents:  cfg.AllowedAgents,
		MaxSteps:       cfg.MaxSteps,
	}, nil
}

func validateConfig(cfg *Config, path string) error {
	if err := validate.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			return invalidConfig(path, "id is required")
		}
		return invalidConfig(path, err.Error())
	}
	switch cfg.Type {
	case TypeChain:
		return validateChain(cfg, path)
	case TypeRouter:
		return validateRouter(cfg, path)
	default:
		return invalidConfig(path, fmt.Sprintf("unknown workflow type: %q", cfg.Type))
	}
}

func validateChain(cfg *Config, path string) error {
	if len(cfg.Steps) == 0 {
		return invalidConfig(path, "chain workflow requires at least one step")
	}
	seen := make(map[string]bool, len(cfg.Steps))
	for _, step := range cfg.Steps {
		if strings.TrimSpace(step.StepID) == "" {
			return invalidConfig(path, "every step requires a stepId")
		}
		if seen[step.StepID] {
			return invalidConfig(path, fmt.Sprintf("duplicate stepId: %s", step.StepID))
		}
		seen[step.StepID] = true
		if strings.TrimSpace(step.AgentID) == "" {
			return invalidConfig(path, fmt.Sprintf("step %s requires an agentId", step.StepID))
		}
	}
	return nil
}

func validateRouter(cfg *Config, path string) error {
	if strings.TrimSpace(cfg.ManagerAgentID) == "" {
		return invalidConfig(path, "router workflow requires a managerAgentId")
	}
	return nil
}

func invalidConfig(path, message string) error {
	return core.NewError(
		fmt.Errorf("%s", message),
		core.KindConfigInvalid,
		map[string]any{"path": path},
	)
}
