package workflow

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/flowmesh/orchestrator/engine/agent"
	"github.com/flowmesh/orchestrator/engine/core"
	"github.com/flowmesh/orchestrator/pkg/logger"
	"github.com/tmc/langchaingo/llms"
)

var placeholderRegex = regexp.MustCompile(`\{\{\s*([a-zA-Z0-9_.\-]+)\s*\}\}`)

// WorkflowFileChanged is published by the Agent Registry when it observes a
// change under a workflows subtree, decoupling file watching from workflow
// loading.
type WorkflowFileChanged struct {
	Path string
}

// AgentLookup resolves a hydrated agent definition by id. Satisfied by
// *registry.AgentRegistry.
type AgentLookup interface {
	Get(id string) (*agent.Definition, error)
}

// ModelFactory produces a cached chat-model client for a given provider,
// model name and temperature. Satisfied by *model.Factory.
type ModelFactory interface {
	Get(provider, name string, temperature float64) (ChatModel, error)
}

// ChatModel is the minimal surface the engine needs to invoke a model.
type ChatModel interface {
	GenerateContent(ctx context.Context, messages []llms.MessageContent, opts ...llms.CallOption) (*llms.ContentResponse, error)
}

// Engine owns the live workflowId -> Definition mapping and interprets
// chain and router workflows against an agent registry and model factory.
type Engine struct {
	root string
	log  logger.Logger

	agents AgentLookup
	models ModelFactory

	mu   sync.RWMutex
	byID map[string]*Definition
}

// NewEngine builds an Engine rooted at the workflows directory, resolving
// agents through agents and models through models.
func NewEngine(root string, agents AgentLookup, models ModelFactory, log logger.Logger) *Engine {
	if log == nil {
		log = logger.FromContext(context.Background())
	}
	return &Engine{root: root, log: log, agents: agents, models: models, byID: make(map[string]*Definition)}
}

// LoadAll discovers and loads every workflow file under root.
func (e *Engine) LoadAll() error {
	files, err := discoverWorkflowFiles(e.root)
	if err != nil {
		return err
	}
	next := make(map[string]*Definition, len(files))
	var failures []string
	for _, file := range files {
		def, loadErr := Load(file)
		if loadErr != nil {
			failures = append(failures, fmt.Sprintf("%s: %v", file, loadErr))
			continue
		}
		next[def.ID] = def
	}
	e.mu.Lock()
	e.byID = next
	e.mu.Unlock()
	if len(failures) > 0 {
		return core.NewError(
			fmt.Errorf("failed to load %d workflow file(s)", len(failures)),
			core.KindConfigInvalid,
			map[string]any{"failures": failures},
		)
	}
	return nil
}

// Run drains changes until ctx is canceled, reloading the affected workflow
// file on each event.
func (e *Engine) Run(ctx context.Context, changes <-chan WorkflowFileChanged) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-changes:
			if !ok {
				return
			}
			e.reloadOne(ev.Path)
		}
	}
}

func (e *Engine) reloadOne(path string) {
	def, err := Load(path)
	if err != nil {
		e.log.Warn("failed to reload workflow file", "path", path, "error", err)
		return
	}
	e.mu.Lock()
	e.byID[def.ID] = def
	e.mu.Unlock()
}

// Get returns the workflow definition for id.
func (e *Engine) Get(id string) (*Definition, error) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	def, ok := e.byID[id]
	if !ok {
		return nil, core.NewError(fmt.Errorf("workflow not found: %s", id), core.KindWorkflowNotFound, map[string]any{"id": id})
	}
	return def, nil
}

// All returns a snapshot slice of every currently loaded workflow definition.
func (e *Engine) All() []*Definition {
	e.mu.RLock()
	defer e.mu.RUnlock()
	out := make([]*Definition, 0, len(e.byID))
	for _, def := range e.byID {
		out = append(out, def)
	}
	return out
}

// Execute runs workflowID against initialInput, dispatching to the chain or
// router interpreter according to the workflow's declared type.
func (e *Engine) Execute(ctx context.Context, workflowID, initialInput string) (string, error) {
	def, err := e.Get(workflowID)
	if err != nil {
		return "", err
	}
	switch def.Type {
	case TypeChain:
		return e.runChain(ctx, def, initialInput)
	case TypeRouter:
		return e.runRouter(ctx, def, initialInput)
	default:
		return "", core.NewError(fmt.Errorf("unknown workflow type: %s", def.Type), core.KindConfigInvalid, map[string]any{"workflowId": workflowID})
	}
}

func (e *Engine) runChain(ctx context.Context, def *Definition, initialInput string) (string, error) {
	execCtx := map[string]string{"USER_INPUT": initialInput}
	current := initialInput
	for _, step := range def.Steps {
		stepInput := resolveStepInput(step, execCtx, current)
		resp, err := e.invokeAgent(ctx, step.AgentID, stepInput)
		if err != nil {
			return "", err
		}
		execCtx[step.StepID] = resp
		current = resp
	}
	return current, nil
}

// resolveStepInput implements the input-resolution rule from §4.E: an
// inputTemplate takes precedence over inputSource, with unknown keys left
// as literal text.
func resolveStepInput(step Step, execCtx map[string]string, current string) string {
	if step.InputTemplate != "" {
		return substituteContext(step.InputTemplate, execCtx)
	}
	if step.InputSource == InputUserInput {
		return execCtx[string(InputUserInput)]
	}
	return current
}

func substituteContext(template string, execCtx map[string]string) string {
	return placeholderRegex.ReplaceAllStringFunc(template, func(match string) string {
		sub := placeholderRegex.FindStringSubmatch(match)
		key := sub[1]
		if v, ok := execCtx[key]; ok {
			return v
		}
		return match
	})
}

type routingDecision struct {
	NextAgent string `json:"next_agent"`
}

func (e *Engine) runRouter(ctx context.Context, def *Definition, initialInput string) (string, error) {
	current := initialInput
	n := def.EffectiveMaxSteps()
	for i := 0; i < n; i++ {
		prompt := buildRoutingPrompt(current, def.AllowedAgents)
		raw, err := e.invokeAgent(ctx, def.ManagerAgentID, prompt)
		if err != nil {
			return "", err
		}
		decision, ok := parseRoutingDecision(raw)
		if !ok {
			// Fail-safe: an unparsable or malformed decision terminates
			// the loop and returns the current payload unchanged.
			return current, nil
		}
		if strings.EqualFold(decision.NextAgent, "FINISH") {
			return current, nil
		}
		resp, err := e.invokeAgent(ctx, decision.NextAgent, current)
		if err != nil {
			return "", err
		}
		current = resp
	}
	return current, nil
}

func buildRoutingPrompt(payload string, allowedAgents []string) string {
	var b strings.Builder
	b.WriteString("Current payload:\n")
	b.WriteString(payload)
	b.WriteString("\n\nAllowed agents: ")
	b.WriteString(strings.Join(allowedAgents, ", "))
	b.WriteString("\n\nRespond with JSON of the form {\"next_agent\": \"<id>\"} or ")
	b.WriteString("{\"next_agent\": \"FINISH\"} when no further step is needed.")
	return b.String()
}

func parseRoutingDecision(raw string) (routingDecision, bool) {
	processed := postProcess(raw)
	var decision routingDecision
	if err := json.Unmarshal([]byte(processed), &decision); err != nil {
		return routingDecision{}, false
	}
	if strings.TrimSpace(decision.NextAgent) == "" {
		return routingDecision{}, false
	}
	return decision, true
}

// invokeAgent builds the final prompt, resolves a model through the
// factory, calls it, and post-processes the response.
func (e *Engine) invokeAgent(ctx context.Context, agentID, input string) (string, error) {
	def, err := e.agents.Get(agentID)
	if err != nil {
		return "", err
	}
	chatModel, err := e.models.Get(def.Model.Provider, def.Model.Name, def.Model.Temperature)
	if err != nil {
		return "", err
	}
	prompt := def.SystemPrompt + "\n\nUser Input:\n" + input
	resp, err := chatModel.GenerateContent(ctx, []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeHuman, prompt),
	})
	if err != nil {
		return "", classifyAgentError(err)
	}
	if len(resp.Choices) == 0 {
		return "", &AgentExecutionError{Message: "model returned no choices", StatusCode: 500, Retryable: false}
	}
	return postProcess(resp.Choices[0].Content), nil
}
