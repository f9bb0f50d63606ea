// Package workflow defines workflow definitions and the chain/router
// execution engine that interprets them against a live agent registry.
package workflow

// Type distinguishes the two supported workflow topologies.
type Type string

const (
	TypeChain  Type = "CHAIN"
	TypeRouter Type = "ROUTER"
)

// InputSource selects where a chain step's input is drawn from absent an
// explicit inputTemplate.
type InputSource string

const (
	InputUserInput InputSource = "USER_INPUT"
	InputPrevious  InputSource = "PREVIOUS"
)

// Step is one stage of a CHAIN workflow.
type Step struct {
	StepID        string      `yaml:"stepId"        json:"stepId"`
	AgentID       string      `yaml:"agentId"       json:"agentId"`
	InputSource   InputSource `yaml:"inputSource"   json:"inputSource"`
	InputTemplate string      `yaml:"inputTemplate" json:"inputTemplate"`
}

// Config is the on-disk shape of a workflow YAML file.
type Config struct {
	ID             string   `yaml:"id"             json:"id"             validate:"required"`
	Name           string   `yaml:"name"           json:"name"`
	Version        string   `yaml:"version"        json:"version"`
	Type           Type     `yaml:"type"           json:"type"`
	Steps          []Step   `yaml:"steps"          json:"steps"`
	ManagerAgentID string   `yaml:"managerAgentId" json:"managerAgentId"`
	AllowedAgents  []string `yaml:"allowedAgents"  json:"allowedAgents"`
	MaxSteps       int      `yaml:"maxSteps"       json:"maxSteps"`
}

// Definition is the validated, in-memory workflow. It is structurally
// identical to Config; the distinction mirrors agent.Config/Definition and
// leaves room for future hydration (e.g. precompiled templates) without
// changing the registry's public surface.
type Definition struct {
	ID             string
	Name           string
	Version        string
	Type           Type
	Steps          []Step
	ManagerAgentID string
	AllowedAgents  []string
	MaxSteps       int
}

// defaultMaxSteps is used when a router workflow omits MaxSteps or sets it
// to a non-positive value.
const defaultMaxSteps = 5

// EffectiveMaxSteps returns MaxSteps if positive, else the default.
func (d *Definition) EffectiveMaxSteps() int {
	if d.MaxSteps > 0 {
		return d.MaxSteps
	}
	return defaultMaxSteps
}
