package world

import (
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

// ErrOpaqueFunction is returned when a custom severity function would have to
// be serialized or constructed from data.
var ErrOpaqueFunction = errors.New("custom severity function is opaque")

// SeverityKind selects how a SeverityFunction maps severity to an effect.
type SeverityKind uint8

const (
	NoAdjustment SeverityKind = iota
	Scaling
	Static
	Custom
)

func (k SeverityKind) String() string {
	switch k {
	case NoAdjustment:
		return "none"
	case Scaling:
		return "scaling"
	case Static:
		return "static"
	case Custom:
		return "custom"
	default:
		return fmt.Sprintf("SeverityKind(%d)", uint8(k))
	}
}

// SeverityFunction maps a severity value to a health or progression delta.
// The zero value is NoAdjustment.
type SeverityFunction struct {
	Kind  SeverityKind
	Value float32
	Fn    func(severity float32) float32
}

// ScaleBy returns a function yielding k × severity.
func ScaleBy(k float32) SeverityFunction {
	return SeverityFunction{Kind: Scaling, Value: k}
}

// Constant returns a function yielding k regardless of severity.
func Constant(k float32) SeverityFunction {
	return SeverityFunction{Kind: Static, Value: k}
}

// CustomFunc wraps an arbitrary callback. Custom functions cannot be
// serialized.
func CustomFunc(fn func(severity float32) float32) SeverityFunction {
	return SeverityFunction{Kind: Custom, Fn: fn}
}

// Effect evaluates the function. NoAdjustment is the identity of the
// combining operation: 1 for coefficients, 0 for flat terms.
func (f SeverityFunction) Effect(isCoefficient bool, severity float32) float32 {
	switch f.Kind {
	case Scaling:
		return f.Value * severity
	case Static:
		return f.Value
	case Custom:
		if f.Fn == nil {
			break
		}
		return f.Fn(severity)
	}
	if isCoefficient {
		return 1.0
	}
	return 0.0
}

func (f SeverityFunction) String() string {
	switch f.Kind {
	case Scaling:
		return fmt.Sprintf("scaling(%g)", f.Value)
	case Static:
		return fmt.Sprintf("static(%g)", f.Value)
	default:
		return f.Kind.String()
	}
}

type severityDoc struct {
	Kind  string  `yaml:"kind"`
	Value float32 `yaml:"value,omitempty"`
}

// MarshalYAML implements yaml.Marshaler.
func (f SeverityFunction) MarshalYAML() (any, error) {
	if f.Kind == Custom {
		return nil, ErrOpaqueFunction
	}
	return severityDoc{Kind: f.Kind.String(), Value: f.Value}, nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (f *SeverityFunction) UnmarshalYAML(node *yaml.Node) error {
	var doc severityDoc
	if err := node.Decode(&doc); err != nil {
		return fmt.Errorf("severity function: %w", err)
	}
	switch doc.Kind {
	case "", "none":
		*f = SeverityFunction{}
	case "scaling":
		*f = ScaleBy(doc.Value)
	case "static":
		*f = Constant(doc.Value)
	case "custom":
		return fmt.Errorf("severity function at line %d: %w", node.Line, ErrOpaqueFunction)
	default:
		return fmt.Errorf("severity function at line %d: unknown kind %q", node.Line, doc.Kind)
	}
	return nil
}
