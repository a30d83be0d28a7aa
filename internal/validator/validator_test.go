package validator_test

import (
	"testing"

	"github.com/aretw0/lattice/internal/validator"
	"github.com/aretw0/lattice/pkg/domain"
	"github.com/aretw0/lattice/pkg/model"
	"github.com/aretw0/lattice/pkg/network"
	"github.com/aretw0/lattice/pkg/registry"
	"github.com/aretw0/lattice/pkg/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func kinds() *registry.Registry {
	r := registry.NewRegistry()
	model.RegisterKinds(r)
	network.RegisterKinds(r)
	return r
}

func document(t *testing.T) *schema.Document {
	t.Helper()
	shared := model.NewAtomic("shared")
	inner := network.New()
	require.NoError(t, inner.Couple(inner, 0, shared, 0))

	d := network.New()
	require.NoError(t, d.Couple(d, 0, shared, 0))
	require.NoError(t, d.Couple(shared, 0, inner, 0))
	require.NoError(t, d.Couple(shared, 0, inner, 0))

	doc, err := network.Marshal(d)
	require.NoError(t, err)
	return doc
}

func TestValidateDocument_Sound(t *testing.T) {
	report := validator.ValidateDocument(document(t), kinds())
	require.NoError(t, report.Err())

	assert.Equal(t, 3, report.Definitions)
	assert.Equal(t, 1, report.BackRefs, "the inner network refers back to the shared atomic")
	assert.Equal(t, 2, report.Kinds[network.KindDigraph])
	assert.Equal(t, 1, report.Kinds[model.KindAtomic])
	assert.Equal(t, 3, report.Couplings)
	assert.Equal(t, 4, report.Deliveries)
}

func TestValidateDocument_CollectsEveryIssue(t *testing.T) {
	doc := document(t)
	layer := &doc.Root.Chain[2]
	layer.Graph[0].To[0].Component = schema.ComponentRef{}
	layer.Graph[1].To[0].Component = schema.RefTo(77)
	layer.Components[0].Kind = "mystery"

	report := validator.ValidateDocument(doc, kinds())
	require.Len(t, report.Issues, 3)
	assert.ErrorIs(t, report.Err(), domain.ErrUnknownKind)
	assert.True(t, domain.IsCorruptGraph(report.Err()))
}

func TestValidateDocument_ReferenceErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(doc *schema.Document)
	}{
		{"root back-reference", func(doc *schema.Document) { doc.Root.Kind = "" }},
		{"unresolved back-reference", func(doc *schema.Document) {
			doc.Root.Chain[2].Components[0] = schema.ComponentRecord{Ref: 50}
		}},
		{"duplicate definition", func(doc *schema.Document) {
			doc.Root.Chain[2].Components[1].Ref = doc.Root.Chain[2].Components[0].Ref
		}},
		{"network lists itself", func(doc *schema.Document) {
			layer := &doc.Root.Chain[2]
			layer.Components = append(layer.Components, schema.ComponentRecord{Ref: doc.Root.Ref})
		}},
		{"missing record ref", func(doc *schema.Document) { doc.Root.Chain[2].Components[0].Ref = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := document(t)
			tt.mutate(doc)
			report := validator.ValidateDocument(doc, nil)
			assert.True(t, domain.IsCorruptGraph(report.Err()), "got %v", report.Err())
		})
	}
}

func TestValidateDocument_Nil(t *testing.T) {
	assert.Error(t, validator.ValidateDocument(nil, nil).Err())
}
