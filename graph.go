package animgraph

// NodeGroup and NodeType together select a node's evaluation handler,
// mirroring the (groupId, typeId) dispatch pair described in spec §3. Groups
// roughly follow FlaxEngine's AnimGraph node groups (original_source's
// AnimGroup.Animation.cpp etc.); only the subset this evaluator implements
// is enumerated.
type NodeGroup int

const (
	GroupTool NodeGroup = iota
	GroupAnimation
	GroupStateMachine
	GroupCustom
)

// NodeType enumerates the node kinds dispatched in eval.go. Values are
// unique across groups for simplicity; a real editor-facing loader would key
// on (Group, Type) pairs as spec §3 describes, which this module preserves
// structurally on Node even though Type alone suffices for dispatch here.
type NodeType int

const (
	TypeOutput NodeType = iota
	TypeAnimation
	TypeMultiBlend1D
	TypeMultiBlend2D
	TypeBlendPose
	TypeStateMachine
	TypeState
	TypeAnyState
	TypeEntry
	TypeSlot
	TypeFunction
	TypeFunctionInput
	TypeCustom
	TypeInstanceData
	TypeTransformNode
	TypeCopyNode
	TypeAimIK
	TypeTwoBoneIK
	TypeGetParameter
)

// boxSentinel marks an unconnected box reference.
const boxSentinel = -1

// BoxRef is a back-reference from an input box to the output box feeding it:
// (node, box) pair, spec §3's pull-based connection site.
type BoxRef struct {
	NodeID int
	BoxID  int
}

// Box is an input or output port on a Node. All evaluation pulls from output
// boxes toward their Sources; a Box with no Sources falls back to the owning
// node's default literal for that port (spec §4.2 step 1).
type Box struct {
	ID      int
	Sources []BoxRef
}

// connected reports whether b has at least one upstream source wired in.
func (b Box) connected() bool {
	return len(b.Sources) > 0
}

// Node is a typed record in the graph: a (group, type) dispatch pair, a list
// of constant literal Values (one per box, used as a fallback default), an
// ordered list of Box ports, an optional bucket index if the node is
// stateful, and one of several per-type auxiliary payloads.
type Node struct {
	ID          int
	Group       NodeGroup
	Type        NodeType
	Name        string // slot name, parameter-get target, custom-type identifier
	Values      []Value
	Boxes       []Box
	BucketIndex int // -1 if the node carries no persistent state

	FunctionGraph *SubGraph // body of a TypeFunction node

	Animation    *AnimationAux
	MultiBlend1D *MultiBlend1DAux
	MultiBlend2D *MultiBlend2DAux
	BlendPose    *BlendPoseAux
	StateMachine *StateMachineAux
	State        *StateAux
	Transform    *TransformAux
	IK           *IKAux
	Param        *ParamAux
	FuncInput    *FunctionInputAux
	Custom       *CustomAux
}

func (n *Node) box(id int) *Box {
	for i := range n.Boxes {
		if n.Boxes[i].ID == id {
			return &n.Boxes[i]
		}
	}
	return nil
}

func (n *Node) defaultValue(boxID int) Value {
	if boxID >= 0 && boxID < len(n.Values) {
		return n.Values[boxID]
	}
	return ZeroValue
}

// ParamID is a stable, load-time-assigned identifier for a Parameter.
type ParamID int

// ParamBaseSkeleton is the well-known reserved parameter carrying a graph's
// preferred base skeleton reference, analogous to FlaxEngine's reserved
// ANIM_GRAPH_PARAM_BASE_MODEL_ID parameter (spec SPEC_FULL §C.2).
const ParamBaseSkeleton ParamID = 0

// Parameter is a named, typed, default-valued cell overridable per instance.
type Parameter struct {
	ID      ParamID
	Name    string
	Default Value
}

// StateTransitionFlags mirrors FlaxEngine's AnimGraphStateTransition flag
// bits (original_source/AnimGraph.h), preserved because the state machine
// logic in statemachine.go depends on every one of them.
type StateTransitionFlags uint8

const (
	TransitionEnabled StateTransitionFlags = 1 << iota
	TransitionSolo
	TransitionUseDefaultRule
	TransitionInterruptionRuleRechecking
	TransitionInterruptionInstant
	TransitionInterruptionFromSource
	TransitionInterruptionFromDestination
)

// StateTransition is a directed edge between two states (spec §3/§4.6).
type StateTransition struct {
	ID             int
	Destination    int // node ID of destination state, within the owning sub-graph
	BlendDuration  float32
	Curve          BlendCurveKind
	Flags          StateTransitionFlags
	RuleGraph      *SubGraph // nil if no rule (unconditional / default-rule only)
}

func (t *StateTransition) has(flag StateTransitionFlags) bool { return t.Flags&flag != 0 }

// SubGraph is a nested, self-contained graph: the body of a state, the rule
// of a transition, or the body of a reusable function. Sub-graphs share the
// owning Graph's bucket counter, so bucket indices stay globally unique.
type SubGraph struct {
	ID          int
	Nodes       map[int]*Node
	Params      []Parameter
	OutputNode  int // node ID of this sub-graph's designated output, or -1
	OutputBox   int

	BucketsStart     int
	BucketsCountSelf int

	Transitions []StateTransition // flat table; states index into it (spec §3)
}

func (g *SubGraph) node(id int) *Node { return g.Nodes[id] }

// Graph is the immutable, load-once graph definition shared by every
// Instance playing it.
type Graph struct {
	Version int

	Root *SubGraph // top-level sub-graph; its OutputNode is the evaluator's root

	Params []Parameter

	TotalBucketCount int

	BaseSkeleton *Skeleton // resolved base skeleton, nil if unbound at load time

	MaxTransitionsPerUpdate int // 0 = unlimited (spec §4.6 step 3)
}

// paramIndex finds the parameter with the given ID, or -1.
func (g *Graph) paramIndex(id ParamID) int {
	for i := range g.Params {
		if g.Params[i].ID == id {
			return i
		}
	}
	return -1
}

// --- per-node-type auxiliary data (spec §3's tagged-union cache) ---

// AnimationAux carries the clip reference and playback defaults for a
// sampled-clip node (spec §4.3). Speed is also exposed as box 1 so it can be
// driven by upstream parameters; Speed here is the load-time default used
// when that box is unconnected. Loop has no box and is always taken from
// here.
type AnimationAux struct {
	Clip  *Clip
	Loop  bool
	Speed float32
}

// MultiBlend1DAux caches the sorted-by-X clip index table for a 1D
// multi-blend node (spec §4.1/§4.4).
type MultiBlend1DAux struct {
	Clips      []Blend1DClip
	sortedIdx  []int // indices into Clips sorted by X, computed at load
	length     float32
	lengthSet  bool
}

// Blend1DClip is one entry of a MultiBlend1D node's clip table.
type Blend1DClip struct {
	X    float32
	Clip *Clip
}

// BlendPoseAux carries the crossfade duration and curve for a Blend Poses
// node (spec §4.5); the number of selectable pose inputs is just the
// remaining Box count after the output and selector boxes.
type BlendPoseAux struct {
	BlendDuration float32
	Curve         BlendCurveKind
}

// MultiBlend2DAux caches the Delaunay triangle table for a 2D multi-blend
// node (spec §4.1/§4.4).
type MultiBlend2DAux struct {
	Clips     []Blend2DClip
	Triangles []Triangle // computed at load by delaunay.go
	length    float32
	lengthSet bool
}

// Blend2DClip is one entry of a MultiBlend2D node's clip table.
type Blend2DClip struct {
	X, Y float32
	Clip *Clip
}

// StateMachineAux holds the owned sub-graph of a state-machine node.
type StateMachineAux struct {
	Graph            *SubGraph
	EntryState       int // node ID of the initial state
	ReinitializeOnBecomingRelevant bool
}

// StateAux holds the owned sub-graph of a single state node, plus the
// indices into the owning sub-graph's Transitions table that originate from
// this state (terminated implicitly by slice length, not a sentinel, since
// Go slices carry their own length).
type StateAux struct {
	Graph           *SubGraph
	TransitionIdx   []int
}

// TransformAux carries the resolved skeleton-node index for a TransformNode
// or CopyNode (spec §4.1), plus the three-mode blend behavior the original
// AnimGraph's transform node supports (spec SPEC_FULL §C.3). SourceBoneIndex
// is only meaningful for CopyNode: the bone whose transform is copied onto
// BoneIndex.
type TransformAux struct {
	BoneIndex       int // -1 if unresolved (no-op passthrough, spec §7)
	SourceBoneIndex int // CopyNode only, -1 otherwise
	Mode            BoneTransformMode
}

// IKAux resolves the bone chain driving a Two Bone IK node (spec §4.8).
type IKAux struct {
	RootBone int
	MidBone  int
	EndBone  int
}

// ParamAux binds a Get Parameter node to a graph parameter (spec §3).
type ParamAux struct {
	ID ParamID
}

// FunctionInputAux records which positional argument of the enclosing
// function call a FunctionInput node resolves to (spec §4.7).
type FunctionInputAux struct {
	Ordinal int
}

// BoneTransformMode mirrors FlaxEngine's transform-node mode: whether the
// node's world/local offset is ignored, added, or replaces the bone
// transform outright.
type BoneTransformMode int

const (
	BoneTransformNone BoneTransformMode = iota
	BoneTransformAdd
	BoneTransformReplace
)

// CustomAux is the opaque extension handle for a host-registered node type
// (spec §4.7).
type CustomAux struct {
	Handler CustomNodeHandler
}

// CustomNodeHandler is implemented by host code to extend the evaluator with
// new node types without the core needing to know their shape (spec §4.7,
// §9's "vtable-style trait").
type CustomNodeHandler interface {
	Evaluate(ctx *Context, node *Node, boxID int) Value
}
