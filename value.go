package animgraph

import "github.com/phanxgames/animgraph/animmath"

// ValueKind discriminates the payload carried by a Value. Spec §9 calls for
// porting the source's untagged C++ unions as "enum-with-payload" tagged
// unions, discriminated centrally rather than per-field — this is that
// enum.
type ValueKind int

const (
	ValueNone ValueKind = iota
	ValueFloat
	ValueBool
	ValueInt
	ValueVector3
	ValuePose
)

// Value is the single type flowing through every Box in the graph. Only one
// field is meaningful at a time, selected by Kind; Pose is a pointer because
// poses are large (one Transform per bone) and are handed out of a pool
// rather than copied.
type Value struct {
	Kind   ValueKind
	Float  float32
	Bool   bool
	Int    int
	Vector animmath.Vector3
	Pose   *Pose
}

// ZeroValue is the default fallback returned for unresolved boxes, missing
// assets and call-stack overflow (spec §7).
var ZeroValue = Value{Kind: ValueFloat, Float: 0}

// FloatValue wraps a float32 in a Value.
func FloatValue(f float32) Value { return Value{Kind: ValueFloat, Float: f} }

// BoolValue wraps a bool in a Value.
func BoolValue(b bool) Value { return Value{Kind: ValueBool, Bool: b} }

// IntValue wraps an int in a Value.
func IntValue(i int) Value { return Value{Kind: ValueInt, Int: i} }

// Vector3Value wraps a Vector3 in a Value.
func Vector3Value(v animmath.Vector3) Value { return Value{Kind: ValueVector3, Vector: v} }

// PoseValue wraps a *Pose in a Value.
func PoseValue(p *Pose) Value { return Value{Kind: ValuePose, Pose: p} }

// AsFloat returns the Value's float payload, coercing Bool as 0/1, Int to its
// float value, and
// Pose/Vector3/None to 0 — used by numeric input boxes fed from a
// differently-typed upstream node, which the loader permits for convenience
// wires (e.g. a bool driving a blend weight).
func (v Value) AsFloat() float32 {
	switch v.Kind {
	case ValueFloat:
		return v.Float
	case ValueBool:
		if v.Bool {
			return 1
		}
		return 0
	case ValueInt:
		return float32(v.Int)
	default:
		return 0
	}
}

// AsBool returns the Value's bool payload, treating any nonzero float/int as
// true.
func (v Value) AsBool() bool {
	switch v.Kind {
	case ValueBool:
		return v.Bool
	case ValueFloat:
		return v.Float != 0
	case ValueInt:
		return v.Int != 0
	default:
		return false
	}
}

// AsInt returns the Value's int payload.
func (v Value) AsInt() int {
	switch v.Kind {
	case ValueInt:
		return v.Int
	case ValueFloat:
		return int(v.Float)
	case ValueBool:
		if v.Bool {
			return 1
		}
		return 0
	default:
		return 0
	}
}

// AsPose returns the Value's pose payload, or nil if the Value does not hold
// one.
func (v Value) AsPose() *Pose {
	if v.Kind != ValuePose {
		return nil
	}
	return v.Pose
}
