package schema_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/aretw0/lattice/pkg/domain"
	"github.com/aretw0/lattice/pkg/model"
	"github.com/aretw0/lattice/pkg/registry"
	"github.com/aretw0/lattice/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

type opaque struct{}

func (o *opaque) Kind() string { return "opaque" }

type byValue struct {
	tags []string
}

func (b byValue) Kind() string { return "by-value" }

func kinds() *registry.Registry {
	r := registry.NewRegistry()
	model.RegisterKinds(r)
	return r
}

func TestComponentRef_JSON(t *testing.T) {
	var n schema.NodeRecord
	require.NoError(t, json.Unmarshal([]byte(`{"component":"self","port":2}`), &n))
	assert.True(t, n.Component.IsSelf())
	assert.Equal(t, domain.Port(2), n.Port)

	require.NoError(t, json.Unmarshal([]byte(`{"component":3,"port":0}`), &n))
	assert.False(t, n.Component.IsSelf())
	assert.Equal(t, 3, n.Component.Ref())

	require.NoError(t, json.Unmarshal([]byte(`{"component":null,"port":0}`), &n))
	assert.False(t, n.Component.Valid())

	var absent schema.NodeRecord
	require.NoError(t, json.Unmarshal([]byte(`{"port":0}`), &absent))
	assert.False(t, absent.Component.Valid(), "absent reference is never the sentinel")

	assert.Error(t, json.Unmarshal([]byte(`{"component":"parent"}`), &n))

	_, err := json.Marshal(schema.NodeRecord{})
	assert.Error(t, err)

	out, err := json.Marshal(schema.NodeRecord{Component: schema.SelfRef(), Port: 1})
	require.NoError(t, err)
	assert.JSONEq(t, `{"component":"self","port":1}`, string(out))
}

func TestComponentRef_YAML(t *testing.T) {
	var n schema.NodeRecord
	require.NoError(t, yaml.Unmarshal([]byte("component: self\nport: 1\n"), &n))
	assert.True(t, n.Component.IsSelf())

	require.NoError(t, yaml.Unmarshal([]byte("component: 7\nport: 0\n"), &n))
	assert.Equal(t, 7, n.Component.Ref())

	require.NoError(t, yaml.Unmarshal([]byte("component: ~\nport: 0\n"), &n))
	assert.False(t, n.Component.Valid())

	assert.Error(t, yaml.Unmarshal([]byte("component: [1]\n"), &n))

	out, err := yaml.Marshal(schema.NodeRecord{Component: schema.RefTo(4)})
	require.NoError(t, err)
	assert.Equal(t, "component: 4\nport: 0\n", string(out))
}

func TestWriter_BackReferencesRepeatedIdentity(t *testing.T) {
	a := model.NewAtomic("gen")
	w := schema.NewWriter()

	first, err := w.Component(a)
	require.NoError(t, err)
	assert.False(t, first.IsBackRef())
	assert.Equal(t, 1, first.Ref)
	require.Len(t, first.Chain, 2)
	assert.Equal(t, model.LevelBase, first.Chain[0].Level)
	assert.Equal(t, model.LevelAtomic, first.Chain[1].Level)

	second, err := w.Component(a)
	require.NoError(t, err)
	assert.True(t, second.IsBackRef())
	assert.Equal(t, first.Ref, second.Ref)

	other, err := w.Component(model.NewAtomic("gen"))
	require.NoError(t, err)
	assert.Equal(t, 2, other.Ref, "equal values with distinct identity are distinct components")
}

func TestWriter_RejectsNonPersistent(t *testing.T) {
	_, err := schema.NewWriter().Component(nil)
	assert.ErrorIs(t, err, domain.ErrNotPersistent)

	_, err = schema.NewWriter().Component(&opaque{})
	assert.ErrorIs(t, err, domain.ErrNotPersistent)

	_, err = schema.NewWriter().Component(byValue{tags: []string{"x"}})
	assert.ErrorIs(t, err, domain.ErrNotPersistent)
}

func TestEncodeDecode_Atomic(t *testing.T) {
	doc, err := schema.Encode(model.NewAtomic("gen"))
	require.NoError(t, err)
	assert.Equal(t, schema.Version, doc.Version)

	c, err := schema.Decode(doc, kinds())
	require.NoError(t, err)
	a, ok := c.(*model.Atomic)
	require.True(t, ok)
	assert.Equal(t, "gen", a.Name)
}

func TestDecode_Errors(t *testing.T) {
	atomic := func(levels ...string) schema.ComponentRecord {
		rec := schema.ComponentRecord{Ref: 1, Kind: model.KindAtomic}
		for _, l := range levels {
			rec.Chain = append(rec.Chain, schema.Layer{Level: l})
		}
		return rec
	}

	tests := []struct {
		name    string
		doc     *schema.Document
		target  error
		corrupt bool
	}{
		{name: "nil document", doc: nil},
		{name: "unsupported version", doc: &schema.Document{Version: 9, Root: atomic("devs", "atomic")}},
		{name: "root back-reference", doc: &schema.Document{Version: schema.Version, Root: schema.ComponentRecord{Ref: 1}}, corrupt: true},
		{name: "missing ref", doc: &schema.Document{Version: schema.Version, Root: schema.ComponentRecord{Kind: model.KindAtomic}}, corrupt: true},
		{
			name:   "unknown kind",
			doc:    &schema.Document{Version: schema.Version, Root: schema.ComponentRecord{Ref: 1, Kind: "mystery"}},
			target: domain.ErrUnknownKind,
		},
		{name: "missing ancestor level", doc: &schema.Document{Version: schema.Version, Root: atomic("atomic")}, target: domain.ErrChainMismatch},
		{name: "truncated chain", doc: &schema.Document{Version: schema.Version, Root: atomic("devs")}, target: domain.ErrChainMismatch},
		{name: "extra level", doc: &schema.Document{Version: schema.Version, Root: atomic("devs", "atomic", "extra")}, target: domain.ErrChainMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := schema.Decode(tt.doc, kinds())
			require.Error(t, err)
			if tt.target != nil {
				assert.ErrorIs(t, err, tt.target)
			}
			assert.Equal(t, tt.corrupt, domain.IsCorruptGraph(err))
		})
	}
}

func TestReader_UnresolvedBackReference(t *testing.T) {
	_, _, err := schema.NewReader(kinds()).Component(schema.ComponentRecord{Ref: 4})
	require.Error(t, err)

	var corrupt *domain.CorruptGraphError
	require.ErrorAs(t, err, &corrupt)
	assert.Equal(t, 4, corrupt.Ref)
}

func TestDecodeFields_WeakTyping(t *testing.T) {
	var out struct {
		Every time.Duration `json:"every"`
		Count int           `json:"count"`
		Name  string        `json:"name"`
	}
	in := map[string]any{"every": "1500ms", "count": "3", "name": "gen"}

	require.NoError(t, schema.DecodeFields(in, &out))
	assert.Equal(t, 1500*time.Millisecond, out.Every)
	assert.Equal(t, 3, out.Count)
	assert.Equal(t, "gen", out.Name)
}
