package agent

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"dario.cat/mergo"
	"github.com/flowmesh/orchestrator/engine/core"
	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-yaml"
)

// validate runs the struct-tag required-field checks declared on Config; a
// single instance is reused across loads per validator's own guidance (it
// caches struct metadata internally and is safe for concurrent use).
var validate = validator.New()

// Load parses a single agent YAML file at path, validates required fields,
// resolves and processes its prompt files relative to the directory
// containing path, and returns an immutable Definition. root bounds include
// expansion: prompt includes may not resolve outside of it.
func Load(path string, root string) (*Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, core.NewError(err, core.KindFileIO, map[string]any{"path": path})
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, core.NewError(err, core.KindConfigInvalid, map[string]any{"path": path})
	}

	if err := mergo.Merge(&cfg.Model, defaultModelConfig); err != nil {
		return nil, core.NewError(err, core.KindConfigInvalid, map[string]any{"path": path})
	}

	if err := validateConfig(&cfg, path); err != nil {
		return nil, err
	}

	baseDir := filepath.Dir(path)

	systemPrompt, err := loadPrompt(cfg.SystemPromptPath, baseDir, root, cfg.Metadata)
	if err != nil {
		return nil, err
	}
	userPrompt, err := loadPrompt(cfg.UserPromptPath, baseDir, root, cfg.Metadata)
	if err != nil {
		return nil, err
	}

	return &Definition{
		ID:           cfg.ID,
		Name:         cfg.Name,
		Version:      cfg.Version,
		Description:  cfg.Description,
		SystemPrompt: systemPrompt,
		UserPrompt:   userPrompt,
		Model:        cfg.Model,
		AllowedTools: cfg.AllowedTools,
		Metadata:     cfg.Metadata,
	}, nil
}

// validateConfig enforces the required-field rule from spec.md §4.B (id,
// model.provider, model.name) via struct tags on Config rather than
// hand-rolled blank checks.
func validateConfig(cfg *Config, path string) error {
	err := validate.Struct(cfg)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return core.NewError(err, core.KindConfigInvalid, map[string]any{"path": path})
	}
	missing := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		missing = append(missing, requiredFieldName(fe.Namespace()))
	}
	return core.NewError(
		fmt.Errorf("missing required fields: %s", strings.Join(missing, ", ")),
		core.KindConfigInvalid,
		map[string]any{"path": path, "missing": missing},
	)
}

// requiredFieldName converts a validator namespace ("Config.Model.Provider")
// into the dotted lower-case field name used in error messages
// ("model.provider").
func requiredFieldName(namespace string) string {
	parts := strings.Split(namespace, ".")
	if len(parts) > 0 {
		parts = parts[1:] // drop the leading "Config" segment
	}
	for i, p := range parts {
		if p == "ID" {
			parts[i] = "id"
			continue
		}
		parts[i] = strings.ToLower(p[:1]) + p[1:]
	}
	return strings.Join(parts, ".")
}

// loadPrompt reads and processes the prompt file at relPath (joined to
// baseDir). An absent or blank relPath resolves to an empty prompt rather
// than an error, since system/user prompts are both optional.
func loadPrompt(relPath string, baseDir string, root string, metadata map[string]any) (string, error) {
	if strings.TrimSpace(relPath) == "" {
		return "", nil
	}
	full := filepath.Join(baseDir, relPath)
	data, err := os.ReadFile(full)
	if err != nil {
		return "", core.NewError(err, core.KindFileIO, map[string]any{"path": full})
	}
	return processPrompt(string(data), baseDir, root, metadata)
}
