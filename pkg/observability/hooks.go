package observability

import (
	"log/slog"

	"github.com/aretw0/lattice/pkg/domain"
)

// LogHooks returns network hooks that write a debug record per event.
func LogHooks(logger *slog.Logger) domain.Hooks {
	return domain.Hooks{
		OnCouple: func(from, to domain.Node) {
			logger.Debug("couple", "from", from.String(), "to", to.String())
		},
		OnRoute: func(from domain.Node, deliveries int) {
			logger.Debug("route", "from", from.String(), "deliveries", deliveries)
		},
	}
}

// Compose runs every set of hooks in order.
func Compose(hooks ...domain.Hooks) domain.Hooks {
	return domain.Hooks{
		OnCouple: func(from, to domain.Node) {
			for _, h := range hooks {
				if h.OnCouple != nil {
					h.OnCouple(from, to)
				}
			}
		},
		OnRoute: func(from domain.Node, deliveries int) {
			for _, h := range hooks {
				if h.OnRoute != nil {
					h.OnRoute(from, deliveries)
				}
			}
		},
	}
}
