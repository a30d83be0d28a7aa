package loader

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/aretw0/lattice/pkg/domain"
)

// Blueprint is the YAML description of a network.
type Blueprint struct {
	Components []ComponentSpec `yaml:"components"`
	Couplings  []CouplingSpec  `yaml:"couplings"`
}

// ComponentSpec declares one named component.
type ComponentSpec struct {
	Name string `yaml:"name"`
	// Kind defaults to "atomic".
	Kind string `yaml:"kind,omitempty"`
	// Wraps names the component a wrapper adapts.
	Wraps string `yaml:"wraps,omitempty"`
	// Params are decoded into the component using its json field names.
	Params map[string]any `yaml:"params,omitempty"`
	// Network describes the contents of a nested digraph.
	Network *Blueprint `yaml:"network,omitempty"`
}

// CouplingSpec couples one source endpoint to each destination endpoint.
// Endpoints are written "name:port"; a bare name means port 0 and "self" is
// the boundary.
type CouplingSpec struct {
	From  string   `yaml:"from"`
	To    []string `yaml:"to"`
	Times int      `yaml:"times,omitempty"`
}

// ParseEndpoint splits "name:port".
func ParseEndpoint(s string) (string, domain.Port, error) {
	s = strings.TrimSpace(s)
	i := strings.LastIndex(s, ":")
	if i < 0 {
		if s == "" {
			return "", 0, fmt.Errorf("empty endpoint")
		}
		return s, 0, nil
	}

	name := s[:i]
	port, err := strconv.Atoi(s[i+1:])
	if err != nil {
		return "", 0, fmt.Errorf("endpoint %q: invalid port: %w", s, err)
	}
	if name == "" {
		return "", 0, fmt.Errorf("endpoint %q: missing component name", s)
	}
	return name, domain.Port(port), nil
}
