package model

import (
	"github.com/aretw0/lattice/pkg/domain"
	"github.com/aretw0/lattice/pkg/registry"
)

// RegisterKinds installs the factories of this package's components.
func RegisterKinds(r *registry.Registry) {
	r.Register(KindAtomic, func() domain.Component { return &Atomic{} })
	r.Register(KindWrapper, func() domain.Component { return &Wrapper{} })
}
