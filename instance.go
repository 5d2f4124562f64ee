package animgraph

import "github.com/phanxgames/animgraph/animmath"

// RootMotionMode is the instance-level policy for whether extracted root
// motion is even consulted by the host (spec SPEC_FULL §C.4) — distinct
// from a clip's own RootMotionFlags, which control what is extracted in the
// first place.
type RootMotionMode int

const (
	RootMotionEnable RootMotionMode = iota
	RootMotionIgnore
	RootMotionNoExtraction
)

// SlotRequest is one playback request pushed by the host onto an Instance's
// slot list (spec §4.7).
type SlotRequest struct {
	Name          string
	Clip          *Clip
	Speed         float32
	BlendInTime   float32
	BlendOutTime  float32
	LoopCount     int // -1 = unlimited
	Reset         bool
	Paused        bool
}

// EventRecord is one fired event reported to the host after a tick (spec
// §6).
type EventRecord struct {
	Kind    EventKind
	Clip    *Clip
	Time    float64
	DT      float64
	Payload any
}

// TraceEntry is one optional trace-event record (spec §6, SPEC_FULL §C.1),
// only populated when Evaluator.Tracing (actually the package-level Tracing
// flag) is set.
type TraceEntry struct {
	NodeID   int
	NodePath []int // capped at 8 entries
	Clip     *Clip
	Value    float32 // time position, or packed X for 2D blends
	Value2   float32 // packed Y for 2D blends, 0 otherwise
}

// activeEventKey identifies one continuous event instance for OnBegin/OnEnd
// bracketing (spec §4.3).
type activeEventKey struct {
	clip  *Clip
	track int
	key   int
}

// Instance is the mutable, per-character playback state bound to a Graph
// (spec §3's "Graph instance").
type Instance struct {
	graph   *Graph
	version int

	Params []Value // same layout/order as graph.Params, per-instance overrides

	Buckets []Bucket

	lastUpdateTime float64
	currentFrame   int64

	RootTransform animmath.Transform
	RootMotion    animmath.Transform
	RootMotionMode RootMotionMode

	TargetSkeleton *Skeleton // may differ from graph.BaseSkeleton; triggers retargeting
	OutputPoseBones []animmath.Transform

	Slots []SlotRequest

	activeEvents map[activeEventKey]bool
	EventQueue   []EventRecord
	TraceQueue   []TraceEntry
}

// NewInstance allocates an Instance bound to g, targeting g's own base
// skeleton (no retargeting) until SetTargetSkeleton is called.
func NewInstance(g *Graph) *Instance {
	inst := &Instance{
		graph:          g,
		version:        -1, // force first-tick sync in Evaluator.Update
		TargetSkeleton: g.BaseSkeleton,
		activeEvents:   make(map[activeEventKey]bool),
	}
	inst.Params = make([]Value, len(g.Params))
	for i, p := range g.Params {
		inst.Params[i] = p.Default
	}
	return inst
}

// SetTargetSkeleton rebinds the instance to render onto a different
// skeleton than the graph's own base skeleton, enabling retargeting at the
// final evaluation stage (spec §3, §4.8).
func (inst *Instance) SetTargetSkeleton(s *Skeleton) {
	inst.TargetSkeleton = s
}

// SetParam overrides the named parameter's value for this instance only.
func (inst *Instance) SetParam(id ParamID, v Value) {
	idx := inst.graph.paramIndex(id)
	if idx < 0 {
		return
	}
	inst.Params[idx] = v
}

// Param returns the instance's current value for parameter id, falling back
// to the graph default if unset.
func (inst *Instance) Param(id ParamID) Value {
	idx := inst.graph.paramIndex(id)
	if idx < 0 {
		return ZeroValue
	}
	return inst.Params[idx]
}

// PushSlot queues a slot playback request (spec §4.7).
func (inst *Instance) PushSlot(req SlotRequest) {
	inst.Slots = append(inst.Slots, req)
}

// OutputPose returns the final per-bone local-space transforms produced by
// the previous Evaluator.Update call, sized to the target skeleton.
func (inst *Instance) OutputPose() []animmath.Transform {
	return inst.OutputPoseBones
}

// resetBuckets reallocates the bucket array to the graph's current total and
// zeroes every bucket, used on first tick and on every version-mismatch
// recovery (spec §4.2 step 1, §7 "version mismatch: always recovered by
// full bucket reset").
func (inst *Instance) resetBuckets() {
	inst.Buckets = make([]Bucket, inst.graph.TotalBucketCount)
	inst.version = inst.graph.Version
	inst.currentFrame = 0
	inst.activeEvents = make(map[activeEventKey]bool)
}

// resetBucketRange zeroes buckets in [start, start+count), used when a state
// machine (re)enters a state and must clear its descendants' buckets (spec
// §4.6 steps 1 and 2b).
func (inst *Instance) resetBucketRange(start, count int) {
	for i := start; i < start+count && i < len(inst.Buckets); i++ {
		inst.Buckets[i] = Bucket{}
	}
}
