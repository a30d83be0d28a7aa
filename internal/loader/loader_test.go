package loader_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aretw0/lattice/internal/loader"
	"github.com/aretw0/lattice/pkg/domain"
	"github.com/aretw0/lattice/pkg/model"
	"github.com/aretw0/lattice/pkg/network"
	"github.com/aretw0/lattice/pkg/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const plant = `
components:
  - name: gen
  - name: proc
    params:
      name: processor
  - name: legacy
    kind: wrapper
    wraps: proc
    params:
      time_last: "1.5"
  - name: cell
    kind: digraph
    network:
      components:
        - name: leaf
      couplings:
        - from: self
          to: [leaf]
couplings:
  - from: self:0
    to: [gen:0]
  - from: gen:0
    to: [proc:0]
    times: 2
  - from: proc:1
    to: [self:1, cell:0]
`

func kinds() *registry.Registry {
	r := registry.NewRegistry()
	model.RegisterKinds(r)
	network.RegisterKinds(r)
	return r
}

func TestLoader_Load(t *testing.T) {
	d, err := loader.New(kinds()).Load(strings.NewReader(plant))
	require.NoError(t, err)

	comps := d.Components()
	require.Len(t, comps, 4)

	gen := comps[0].(*model.Atomic)
	proc := comps[1].(*model.Atomic)
	legacy := comps[2].(*model.Wrapper)
	cell := comps[3].(*network.Digraph)

	assert.Equal(t, "gen", gen.Name)
	assert.Equal(t, "processor", proc.Name, "params override the declared name")
	assert.Same(t, proc, legacy.Wrapped())
	assert.InDelta(t, 1.5, legacy.TimeLast, 1e-9)

	assert.Equal(t, 2, d.Multiplicity(gen, 0, proc, 0))

	out := d.Route(domain.NewPortValue(1, "v"), proc)
	require.Len(t, out, 2)
	assert.Same(t, d, out[0].Target)
	assert.Same(t, cell, out[1].Target)

	inner := cell.Route(domain.NewPortValue(0, "v"), cell)
	require.Len(t, inner, 1)
	assert.Equal(t, "leaf", inner[0].Target.(domain.Labeled).Label())
}

func TestLoader_LoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "plant.yaml")
	require.NoError(t, os.WriteFile(path, []byte(plant), 0o644))

	d, err := loader.New(kinds()).LoadFile(path)
	require.NoError(t, err)
	assert.Len(t, d.Components(), 4)

	_, err = loader.New(kinds()).LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestLoader_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"unknown kind", "components:\n  - name: x\n    kind: mystery\n", "unknown component kind"},
		{"unknown field", "components:\n  - name: x\n    colour: red\n", "colour"},
		{"atomic cannot wrap", "components:\n  - name: a\n  - name: b\n    wraps: a\n", "cannot wrap"},
		{"bad port", "components:\n  - name: a\ncouplings:\n  - from: a:x\n    to: [a]\n", "invalid port"},
		{"dangling", "components:\n  - name: a\ncouplings:\n  - from: a\n    to: [b:1]\n", "component not found"},
		{"network on atomic", "components:\n  - name: a\n    network: {}\n", "nested network"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := loader.New(kinds()).Load(strings.NewReader(tt.src))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestParseEndpoint(t *testing.T) {
	name, port, err := loader.ParseEndpoint("self:3")
	require.NoError(t, err)
	assert.Equal(t, "self", name)
	assert.Equal(t, domain.Port(3), port)

	name, port, err = loader.ParseEndpoint(" gen ")
	require.NoError(t, err)
	assert.Equal(t, "gen", name)
	assert.Equal(t, domain.Port(0), port)

	_, _, err = loader.ParseEndpoint(":1")
	assert.Error(t, err)
	_, _, err = loader.ParseEndpoint("")
	assert.Error(t, err)
}
