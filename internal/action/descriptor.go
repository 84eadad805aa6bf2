package action

import (
	"encoding/json"
	"errors"
	"strings"
)

// Defaults applied when the model omits a field.
const (
	DefaultEndpoint = "/api/search"
	DefaultMethod   = "GET"
)

var ErrNoJSON = errors.New("no JSON object found in model output")

// Descriptor is the structured classification of a user utterance: either a
// general-conversation query or a backend call.
type Descriptor struct {
	IsGeneralQuery bool           `json:"isGeneralQuery,omitempty"`
	Endpoint       string         `json:"endpoint,omitempty"`
	Method         string         `json:"method,omitempty"`
	Params         map[string]any `json:"params,omitempty"`
	Payload        map[string]any `json:"payload,omitempty"`
}

// General returns the general-conversation descriptor.
func General() Descriptor {
	return Descriptor{IsGeneralQuery: true}
}

// Parse extracts the first JSON object from raw model output and converts it
// into a Descriptor with defaults applied.
func Parse(text string) (Descriptor, error) {
	span, ok := Extract(text)
	if !ok {
		return Descriptor{}, ErrNoJSON
	}
	var m map[string]any
	if err := json.Unmarshal([]byte(span), &m); err != nil {
		return Descriptor{}, err
	}
	return FromMap(m), nil
}

// FromMap builds a Descriptor from a decoded JSON object. isGeneralQuery wins
// over every other field. Missing fields get safe defaults; an endpoint that is
// present but not a string becomes "" so dispatch fails fast.
func FromMap(m map[string]any) Descriptor {
	if general, _ := m["isGeneralQuery"].(bool); general {
		return General()
	}
	d := Descriptor{
		Endpoint: DefaultEndpoint,
		Method:   DefaultMethod,
		Params:   map[string]any{},
		Payload:  map[string]any{},
	}
	if raw, ok := m["endpoint"]; ok && raw != nil {
		s, isString := raw.(string)
		d.Endpoint = strings.TrimSpace(s)
		if isString && d.Endpoint == "" {
			d.Endpoint = DefaultEndpoint
		}
		if !isString {
			d.Endpoint = ""
		}
	}
	if s, ok := m["method"].(string); ok && strings.TrimSpace(s) != "" {
		d.Method = strings.ToUpper(strings.TrimSpace(s))
	}
	if p, ok := m["params"].(map[string]any); ok {
		d.Params = p
	}
	if p, ok := m["payload"].(map[string]any); ok {
		d.Payload = p
	}
	return d
}

// WithDefaults fills a zero method, params or payload. Endpoint is left as is:
// FromMap has already resolved it, and "" must reach the dispatcher.
func (d Descriptor) WithDefaults() Descriptor {
	if d.IsGeneralQuery {
		return d
	}
	if d.Method == "" {
		d.Method = DefaultMethod
	}
	if d.Params == nil {
		d.Params = map[string]any{}
	}
	if d.Payload == nil {
		d.Payload = map[string]any{}
	}
	return d
}
