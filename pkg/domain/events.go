package domain

// Event is a delivery synthesized by a router: Value must be delivered to Target.
// When the destination is the boundary, Target is the enclosing network itself.
type Event struct {
	Target Component
	Value  PortValue
}

// Hooks defines callbacks for network observability.
// Hooks run synchronously inside the operation that triggers them.
type Hooks struct {
	OnCouple func(from, to Node)
	OnRoute  func(from Node, deliveries int)
}
