package domain

import "fmt"

// Port identifies an attachment point on a component.
// Ports are totally ordered by their integer value.
type Port int

// PortValue is the immutable unit of data flowing across a coupling.
type PortValue struct {
	Port  Port `json:"port" yaml:"port"`
	Value any  `json:"value" yaml:"value"`
}

// NewPortValue creates a PortValue for the given port.
func NewPortValue(port Port, value any) PortValue {
	return PortValue{Port: port, Value: value}
}

func (pv PortValue) String() string {
	return fmt.Sprintf("%d:%v", pv.Port, pv.Value)
}
