package network_test

import (
	"testing"

	"github.com/aretw0/lattice/pkg/domain"
	"github.com/aretw0/lattice/pkg/model"
	"github.com/aretw0/lattice/pkg/network"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_AddIsIdempotent(t *testing.T) {
	r := network.NewRegistry()
	c := model.NewAtomic("c")

	h1, err := r.Add(c)
	require.NoError(t, err)
	h2, err := r.Add(c)
	require.NoError(t, err)
	h3, err := r.AddShared(c)
	require.NoError(t, err)

	assert.Equal(t, h1, h2)
	assert.Equal(t, h1, h3)
	assert.Equal(t, 1, r.Len())
	assert.Equal(t, 1, c.Holders(), "re-adding must not retain again")

	o, ok := r.Ownership(h1)
	require.True(t, ok)
	assert.Equal(t, domain.Exclusive, o, "first registration decides ownership")
}

func TestRegistry_LookupReturnsAbsent(t *testing.T) {
	r := network.NewRegistry()
	a := model.NewAtomic("a")
	r.Add(a)

	_, ok := r.Lookup(model.NewAtomic("a"))
	assert.False(t, ok, "equal fields are not the same identity")

	_, ok = r.Lookup(nil)
	assert.False(t, ok)

	_, ok = r.Component(domain.Handle(7))
	assert.False(t, ok)

	_, ok = r.Component(domain.Handle(-1))
	assert.False(t, ok)

	_, ok = r.Ownership(domain.Handle(7))
	assert.False(t, ok)

	h, ok := r.Lookup(a)
	require.True(t, ok)
	got, ok := r.Component(h)
	require.True(t, ok)
	assert.Same(t, a, got)
}

func TestRegistry_ComponentsInRegistrationOrder(t *testing.T) {
	r := network.NewRegistry()
	a, b, c := model.NewAtomic("a"), model.NewAtomic("b"), model.NewAtomic("c")
	r.Add(b)
	r.AddShared(a)
	r.Add(c)
	r.Add(b)

	assert.Equal(t, []domain.Component{b, a, c}, r.Components())
	assert.Equal(t, []domain.Handle{0, 1, 2}, r.Handles())

	o, _ := r.Ownership(1)
	assert.Equal(t, domain.Shared, o)
}

func TestRegistry_RejectsInvalidIdentity(t *testing.T) {
	r := network.NewRegistry()

	_, err := r.Add(nil)
	assert.ErrorIs(t, err, domain.ErrInvalidComponent)

	v := valueComponent{tags: []string{"x"}}
	_, err = r.AddShared(v)
	assert.ErrorIs(t, err, domain.ErrInvalidComponent)

	_, ok := r.Lookup(v)
	assert.False(t, ok)
	assert.Zero(t, r.Len())
}

func TestNetwork_NeverOwnsItself(t *testing.T) {
	d := network.New()
	_, err := d.Add(d)
	assert.ErrorIs(t, err, domain.ErrInvalidComponent)
	_, err = d.AddShared(d)
	assert.ErrorIs(t, err, domain.ErrInvalidComponent)
	assert.Zero(t, d.Registry().Len())

	s := network.NewSimple()
	_, err = s.Add(s)
	assert.ErrorIs(t, err, domain.ErrInvalidComponent)

	a := model.NewAtomic("a")
	require.NoError(t, d.Couple(d, 0, a, 0))
	loaded, err := roundTrip(d)
	require.NoError(t, err)
	assert.Equal(t, []string{"self:0->a:0"}, topology(loaded.Graph()))
}

func TestRegistry_CloseOwnershipCycle(t *testing.T) {
	parent, child := network.New(), network.New()
	leaf := &closer{}

	_, err := parent.Add(child)
	require.NoError(t, err)
	_, err = child.AddShared(parent)
	require.NoError(t, err)
	_, err = child.Add(leaf)
	require.NoError(t, err)

	require.NoError(t, parent.Close())
	assert.Equal(t, 1, leaf.closed)
	assert.Zero(t, parent.Registry().Len())
	assert.Zero(t, child.Registry().Len())
	assert.Zero(t, parent.Holders())
	assert.Zero(t, child.Holders())

	require.NoError(t, parent.Close(), "closing again is a no-op")
	assert.Equal(t, 1, leaf.closed)
}

func TestRegistry_CloseLoadedOwnershipCycle(t *testing.T) {
	parent, child := network.New(), network.New()
	a := model.NewAtomic("a")
	require.NoError(t, parent.Couple(parent, 0, child, 0))
	require.NoError(t, child.Couple(child, 0, a, 0))
	_, err := child.AddShared(parent)
	require.NoError(t, err)

	loaded, err := roundTrip(parent)
	require.NoError(t, err)

	comps := loaded.Components()
	require.Len(t, comps, 1)
	inner, ok := comps[0].(*network.Digraph)
	require.True(t, ok)
	assert.Contains(t, inner.Components(), domain.Component(loaded), "back-reference resolves to the loading ancestor")

	require.NoError(t, loaded.Close())
	assert.Zero(t, inner.Registry().Len())
}

func TestRefCount_ReleaseReportsLastHolderOnce(t *testing.T) {
	var rc model.RefCount
	assert.False(t, rc.Release(), "nothing held")

	rc.Retain()
	rc.Retain()
	assert.False(t, rc.Release())
	assert.True(t, rc.Release())
	assert.False(t, rc.Release(), "already released")
	assert.Zero(t, rc.Holders())
}

func TestRegistry_ReleaseSharedClosesOnLastHolder(t *testing.T) {
	p := &closer{}
	first := network.New()
	second := network.New()

	first.Add(p)
	second.AddShared(p)
	assert.Equal(t, 2, p.Holders())

	require.NoError(t, first.Close())
	assert.Equal(t, 0, p.closed, "second network still holds it")
	assert.Equal(t, 1, p.Holders())

	require.NoError(t, second.Close())
	assert.Equal(t, 1, p.closed)
	assert.Equal(t, 0, first.Registry().Len())
}

func TestRegistry_ReleasePlainComponents(t *testing.T) {
	owned := &plainCloser{}
	shared := &plainCloser{}
	failing := &plainCloser{err: errCloseFailed}

	r := network.NewRegistry()
	r.Add(owned)
	r.AddShared(shared)
	r.Add(failing)

	err := r.Release()
	require.Error(t, err)
	assert.ErrorIs(t, err, errCloseFailed)

	assert.Equal(t, 1, owned.closed)
	assert.Equal(t, 0, shared.closed, "a co-owner never closes a component it cannot count")
	assert.Equal(t, 1, failing.closed)
	assert.Equal(t, 0, r.Len())
}
