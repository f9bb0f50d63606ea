// Package agent defines agent configuration and the hydrated, immutable
// agent definitions produced from it by the loader.
package agent

// ModelConfig describes which provider/model/temperature an agent talks to.
type ModelConfig struct {
	Provider    string  `yaml:"provider"    json:"provider"    validate:"required"`
	Name        string  `yaml:"name"        json:"name"        validate:"required"`
	Temperature float64 `yaml:"temperature" json:"temperature"`
}

// defaultModelConfig supplies fields an agent file is allowed to omit.
// Merged in with mergo.Merge (fill-empty semantics, no override) so an
// explicit non-zero value the file sets is kept. An explicit temperature
// of 0 counts as empty and is replaced by 0.7.
var defaultModelConfig = ModelConfig{Temperature: 0.7}

// Config is the on-disk shape of one agent YAML file.
type Config struct {
	ID               string         `yaml:"id"               json:"id"               validate:"required"`
	Name             string         `yaml:"name"             json:"name"`
	Version          string         `yaml:"version"          json:"version"`
	Description      string         `yaml:"description"      json:"description"`
	SystemPromptPath string         `yaml:"systemPromptPath" json:"systemPromptPath"`
	UserPromptPath   string         `yaml:"userPromptPath"   json:"userPromptPath"`
	Model            ModelConfig    `yaml:"model"             json:"model"             validate:"required"`
	AllowedTools     []string       `yaml:"allowedTools"     json:"allowedTools"`
	Metadata         map[string]any `yaml:"metadata"         json:"metadata"`
}

// Definition is the fully hydrated, immutable agent produced by the
// loader: systemPrompt/userPrompt are resolved text (includes expanded,
// placeholders substituted). Identity is ID.
type Definition struct {
	ID               string
	Name             string
	Version          string
	Description      string
	SystemPrompt     string
	UserPrompt       string
	Model            ModelConfig
	AllowedTools     []string
	Metadata         map[string]any
}
