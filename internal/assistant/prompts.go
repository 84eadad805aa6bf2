// Package assistant holds the language-model stages of a turn: choosing a
// backend action, summarizing its result and answering general questions.
package assistant

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"iss-assistant-backend/internal/action"
	"iss-assistant-backend/internal/llm"
)

//go:embed prompts.yaml
var defaultPrompts []byte

// Style is the generation setting for one kind of model call.
type Style struct {
	Temperature  float32 `yaml:"temperature"`
	MaxTokens    int     `yaml:"max_tokens"`
	Instructions string  `yaml:"instructions"`
}

func (s Style) request(prompt string) llm.Request {
	return llm.Request{Prompt: prompt, Temperature: s.Temperature, MaxOutputTokens: s.MaxTokens}
}

// Prompts is the prompt catalog: fixed replies, per-stage instructions and
// the backend actions offered to the interpreter.
type Prompts struct {
	Identity        string         `yaml:"identity"`
	Greeting        string         `yaml:"greeting"`
	ErrorReply      string         `yaml:"error_reply"`
	GeneralFallback string         `yaml:"general_fallback"`
	Interpret       Style          `yaml:"interpret"`
	Summarize       Style          `yaml:"summarize"`
	Respond         Style          `yaml:"respond"`
	Actions         action.Catalog `yaml:"actions"`
}

// DefaultPrompts returns the embedded catalog.
func DefaultPrompts() *Prompts {
	p, err := parsePrompts(defaultPrompts)
	if err != nil {
		panic(fmt.Sprintf("embedded prompts.yaml: %v", err))
	}
	return p
}

// LoadPrompts reads a catalog from path, or the embedded one when path is
// empty. Missing fields in a file fall back to the embedded values.
func LoadPrompts(path string) (*Prompts, error) {
	if strings.TrimSpace(path) == "" {
		return DefaultPrompts(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read prompts: %w", err)
	}
	p, err := parsePrompts(b)
	if err != nil {
		return nil, fmt.Errorf("parse prompts %s: %w", path, err)
	}
	return p.merge(DefaultPrompts()), nil
}

func parsePrompts(b []byte) (*Prompts, error) {
	var p Prompts
	if err := yaml.Unmarshal(b, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (p *Prompts) merge(def *Prompts) *Prompts {
	str := func(v *string, d string) {
		if strings.TrimSpace(*v) == "" {
			*v = d
		}
	}
	style := func(s *Style, d Style) {
		if s.Temperature <= 0 {
			s.Temperature = d.Temperature
		}
		if s.MaxTokens <= 0 {
			s.MaxTokens = d.MaxTokens
		}
		str(&s.Instructions, d.Instructions)
	}
	str(&p.Identity, def.Identity)
	str(&p.Greeting, def.Greeting)
	str(&p.ErrorReply, def.ErrorReply)
	str(&p.GeneralFallback, def.GeneralFallback)
	style(&p.Interpret, def.Interpret)
	style(&p.Summarize, def.Summarize)
	style(&p.Respond, def.Respond)
	if len(p.Actions) == 0 {
		p.Actions = def.Actions
	}
	return p
}

// interpretPrompt lists the actions, numbering each distinct action name once.
func (p *Prompts) interpretPrompt(utterance string) string {
	var b strings.Builder
	b.WriteString(p.Identity)
	b.WriteString("\n\nAvailable actions:\n")
	n, prev := 0, ""
	for _, a := range p.Actions {
		if a.Name != prev || a.Name == "" {
			n++
			fmt.Fprintf(&b, "%d. %s\n", n, a.Name)
			prev = a.Name
		}
		fmt.Fprintf(&b, "   %s %s: %s", a.Method, a.Endpoint, a.Purpose)
		if len(a.Params) > 0 {
			fmt.Fprintf(&b, " (fields: %s)", strings.Join(a.Params, ", "))
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(p.Interpret.Instructions)
	b.WriteString("\n\nUser message:\n")
	b.WriteString(utterance)
	return b.String()
}

func (p *Prompts) summarizePrompt(query, endpoint, data string) string {
	var b strings.Builder
	b.WriteString(p.Identity)
	b.WriteString("\n\n")
	b.WriteString(p.Summarize.Instructions)
	b.WriteString("\n\nUser question:\n")
	b.WriteString(query)
	b.WriteString("\n\nData source (internal, do not mention): ")
	b.WriteString(endpoint)
	b.WriteString("\n\nData:\n")
	b.WriteString(data)
	return b.String()
}

func (p *Prompts) respondPrompt(utterance string) string {
	var b strings.Builder
	b.WriteString(p.Identity)
	b.WriteString("\n\n")
	b.WriteString(p.Respond.Instructions)
	b.WriteString("\n\nUser message:\n")
	b.WriteString(utterance)
	return b.String()
}
