// Package strategy names the pluggable calculation rules of the engine: the
// rateio basis functions and the reconciliation scorer.
package strategy

// Type groups strategies by the calculation they plug into
type Type string

const (
	TypeRateioBasis  Type = "rateio_basis"
	TypeMatchScoring Type = "match_scoring"
)

// IsValid returns true for a known strategy type
func (t Type) IsValid() bool {
	return t == TypeRateioBasis || t == TypeMatchScoring
}

// Strategy describes one rule so it can be listed and logged
type Strategy interface {
	Name() string
	Type() Type
	Description() string
}

// Base implements Strategy for embedding
type Base struct {
	name        string
	kind        Type
	description string
}

// NewBase creates the descriptor of a strategy
func NewBase(name string, kind Type, description string) Base {
	return Base{name: name, kind: kind, description: description}
}

func (b Base) Name() string        { return b.name }
func (b Base) Type() Type          { return b.kind }
func (b Base) Description() string { return b.description }
