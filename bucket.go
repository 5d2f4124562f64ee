package animgraph

import "github.com/tanema/gween"

// Bucket is the per-instance, per-stateful-node persistent state record
// described in spec §3. Bucket indices are assigned once at load time
// (loader.go) and are stable for the instance's lifetime; the owning node's
// (Group, Type) discriminates which of the fields below is meaningful, so no
// separate runtime tag is carried (spec §9's tagged-union design note).
type Bucket struct {
	Animation    AnimationBucket
	MultiBlend   MultiBlendBucket
	BlendPose    BlendPoseBucket
	StateMachine StateMachineBucket
	Slot         SlotBucket
	InstanceData InstanceDataBucket
}

// AnimationBucket backs a sampled-clip node: current time position and the
// frame index it was last advanced on.
type AnimationBucket struct {
	TimePosition    float64
	LastUpdateFrame int64
	initialized     bool
}

// ClipSample is one concurrently-sampled clip slot inside a MultiBlendBucket
// — up to 3 are kept live at once to cover a 2D blend's triangle interior
// (spec §3).
type ClipSample struct {
	ClipIndex    int
	TimePosition float64
}

// MultiBlendBucket backs a MultiBlend1D/2D node.
type MultiBlendBucket struct {
	Samples         [3]ClipSample
	ActiveCount     int
	LastUpdateFrame int64
}

// BlendPoseBucket backs a Blend Poses crossfade node: which input index is
// selected, which was selected before it, and the in-progress crossfade
// tween between them. Tween is nil when no crossfade is in flight (either
// never started, or already finished), grounded on the teacher's
// TweenGroup/gween.Tween pairing in animation.go (spec §4.5).
type BlendPoseBucket struct {
	CurrentIndex  int
	PreviousIndex int
	Tween         *gween.Tween
	initialized   bool
}

// ActiveStateTransition is a state machine's in-flight transition.
type ActiveStateTransition struct {
	Transition  *StateTransition
	Destination int
	Position    float32
}

// BaseStateTransition is the "previous transition" a state machine keeps
// around when an in-flight transition is itself interrupted (spec §4.6 step
// 2d, scenario 5), so later blending can resume from a seamless starting
// pose instead of popping back to the plain source state.
type BaseStateTransition struct {
	SourceState   int
	Destination   int
	Position      float32
	BlendDuration float32
	Curve         BlendCurveKind
}

// StateMachineBucket backs a state-machine node.
type StateMachineBucket struct {
	LastUpdateFrame int64
	CurrentState    int
	Active          *ActiveStateTransition
	Base            *BaseStateTransition
	initialized     bool
}

// SlotBucket backs a slot-player node.
type SlotBucket struct {
	CurrentSlot    int // index into Instance.Slots, -1 if none playing
	TimePosition   float64
	BlendProgress  float32
	LoopsDone      int
	LoopsRemaining int // -1 = unlimited
}

// InstanceDataBucket backs an instance-data node: 4 floats of user state,
// initialized once from a connected literal box and read-only thereafter
// (spec §4.7).
type InstanceDataBucket struct {
	Initialized bool
	Values      [4]float32
}
