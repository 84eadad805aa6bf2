package action

import "strings"

// Spec describes one backend action the interpreter may choose.
type Spec struct {
	Name     string   `yaml:"name" json:"name"`
	Endpoint string   `yaml:"endpoint" json:"endpoint"`
	Method   string   `yaml:"method" json:"method"`
	Purpose  string   `yaml:"purpose" json:"purpose"`
	Params   []string `yaml:"params,omitempty" json:"params,omitempty"`
}

// Catalog is the ordered list of actions offered to the model.
type Catalog []Spec

// Lookup finds the action served by endpoint. Endpoints are compared without
// query string or trailing slash.
func (c Catalog) Lookup(endpoint string) (Spec, bool) {
	want := normalizeEndpoint(endpoint)
	for _, s := range c {
		if normalizeEndpoint(s.Endpoint) == want {
			return s, true
		}
	}
	return Spec{}, false
}

func normalizeEndpoint(e string) string {
	e = strings.TrimSpace(e)
	if i := strings.IndexByte(e, '?'); i >= 0 {
		e = e[:i]
	}
	if len(e) > 1 {
		e = strings.TrimRight(e, "/")
	}
	return e
}
