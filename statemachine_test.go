package animgraph

import (
	"testing"

	"github.com/phanxgames/animgraph/animmath"
)

// constantXClip returns a 1-bone, length-second clip whose root bone sits
// motionless at translation X=x throughout — a state body simple enough that
// sampled output identifies which state produced it without relying on
// playback timing.
func constantXClip(length float64, x float32) *Clip {
	val := animmath.Transform{Translation: animmath.Vector3{X: x}, Rotation: animmath.IdentityQuat, Scale: animmath.One3}
	return &Clip{
		Length:        length,
		RootBoneIndex: 0,
		Channels: []Channel{
			{BoneIndex: 0, Keyframes: []Keyframe{
				{Time: 0, Transform: val},
				{Time: length, Transform: val},
			}},
		},
	}
}

// stateBody wires a single constant-pose Animation node straight to a
// sub-graph's output, the smallest possible state body.
func stateBody(subGraphID int, bucketIndex int, clip *Clip) *SubGraph {
	anim := &Node{ID: 1, Type: TypeAnimation, BucketIndex: bucketIndex, Boxes: []Box{{ID: 0}}, Animation: &AnimationAux{Clip: clip, Loop: true, Speed: 1}}
	out := &Node{ID: 0, Type: TypeOutput, BucketIndex: -1, Boxes: []Box{{ID: 0, Sources: []BoxRef{{NodeID: 1, BoxID: 0}}}}}
	return &SubGraph{
		ID:               subGraphID,
		Nodes:            map[int]*Node{0: out, 1: anim},
		OutputNode:       0,
		OutputBox:        0,
		BucketsStart:     bucketIndex,
		BucketsCountSelf: 1,
	}
}

// buildTwoStateGraph wires a two-state machine (A --default-rule--> B) as
// the graph's sole output, mirroring spec §8 scenario 4. t0Flags lets tests
// exercise the TransitionEnabled bit directly (loader.go:171,
// statemachine.go:173).
func buildTwoStateGraph(t0Flags StateTransitionFlags, blendDuration float32) (*Graph, *Node) {
	skeleton := newTestSkeleton()
	bodyA := stateBody(2, 1, constantXClip(1, 0))
	bodyB := stateBody(3, 2, constantXClip(1, 5))

	stateA := &Node{ID: 10, Type: TypeState, BucketIndex: -1, State: &StateAux{Graph: bodyA, TransitionIdx: []int{0}}}
	stateB := &Node{ID: 11, Type: TypeState, BucketIndex: -1, State: &StateAux{Graph: bodyB}}

	smGraph := &SubGraph{
		ID:    1,
		Nodes: map[int]*Node{10: stateA, 11: stateB},
		Transitions: []StateTransition{
			{ID: 0, Destination: 11, BlendDuration: blendDuration, Curve: CurveLinear, Flags: t0Flags},
		},
	}

	smNode := &Node{
		ID: 1, Type: TypeStateMachine, BucketIndex: 0, Boxes: []Box{{ID: 0}},
		StateMachine: &StateMachineAux{Graph: smGraph, EntryState: 10},
	}
	outputNode := &Node{ID: 0, Type: TypeOutput, BucketIndex: -1, Boxes: []Box{{ID: 0, Sources: []BoxRef{{NodeID: 1, BoxID: 0}}}}}
	root := &SubGraph{ID: 0, Nodes: map[int]*Node{0: outputNode, 1: smNode}, OutputNode: 0, OutputBox: 0}

	return &Graph{Version: 1, Root: root, BaseSkeleton: skeleton, TotalBucketCount: 3}, smNode
}

// TestStateMachineDefaultRuleTransition drives a state machine through a
// default-rule transition (spec §8 scenario 4): the current state's clip
// runs down to within half a blend duration of its end, the transition
// fires unprompted, and the output blends smoothly from state A's pose to
// state B's before settling on B alone.
func TestStateMachineDefaultRuleTransition(t *testing.T) {
	graph, smNode := buildTwoStateGraph(TransitionEnabled|TransitionUseDefaultRule, 0.2)
	inst := NewInstance(graph)
	ev := NewEvaluator(inst)

	const dt = 0.1
	firedAt := -1
	for i := 1; i <= 13; i++ {
		ev.Update(dt)
		bucket := &inst.Buckets[smNode.BucketIndex].StateMachine
		if bucket.Active != nil && firedAt < 0 {
			firedAt = i
		}
	}

	if firedAt < 0 {
		t.Fatalf("expected default-rule transition to fire before tick 13")
	}
	// pos>=length-blendDuration/2 (1-0.1=0.9) is crossed around tick 9; allow
	// a tick of slack either side for float accumulation in the time base.
	if firedAt < 8 || firedAt > 10 {
		t.Fatalf("expected transition to fire near tick 9 (pos>=length-blendDuration/2), fired at tick %d", firedAt)
	}

	bucket := &inst.Buckets[smNode.BucketIndex].StateMachine
	if bucket.CurrentState != 11 {
		t.Fatalf("expected machine to have committed to state 11 after transition completed, got %d", bucket.CurrentState)
	}
	if bucket.Active != nil {
		t.Fatalf("expected no active transition once settled in the destination state")
	}
	if x := inst.OutputPoseBones[0].Translation.X; x != 5 {
		t.Fatalf("expected output to settle on state B's pose (X=5), got %v", x)
	}
}

// TestStateMachineDisabledTransitionNeverFires is a direct regression test
// for the inverted TransitionEnabled filter: a transition whose Flags carry
// TransitionUseDefaultRule but NOT TransitionEnabled must never fire, even
// once its default-rule condition is satisfied.
func TestStateMachineDisabledTransitionNeverFires(t *testing.T) {
	graph, smNode := buildTwoStateGraph(TransitionUseDefaultRule, 0.2)
	inst := NewInstance(graph)
	ev := NewEvaluator(inst)

	for i := 0; i < 20; i++ {
		ev.Update(0.1)
	}

	bucket := &inst.Buckets[smNode.BucketIndex].StateMachine
	if bucket.CurrentState != 10 || bucket.Active != nil {
		t.Fatalf("disabled transition fired: state=%d active=%v", bucket.CurrentState, bucket.Active)
	}
	if x := inst.OutputPoseBones[0].Translation.X; x != 0 {
		t.Fatalf("expected output to remain on state A's pose (X=0), got %v", x)
	}
}

// TestStateMachineInterruptionBlendsFromBaseTransition exercises spec §8
// scenario 5: while A is mid-transition to B, a second, rule-graph-gated
// transition from A to C becomes eligible and interrupts it. The machine
// must record the interrupted transition as a BaseStateTransition and, on the
// tick of interruption, output the base A->B blend at its recorded progress
// (the new A->C blend starts from it, so there is no pop), then finish
// settling on C.
func TestStateMachineInterruptionBlendsFromBaseTransition(t *testing.T) {
	skeleton := newTestSkeleton()
	bodyA := stateBody(2, 1, constantXClip(1, 0))
	bodyB := stateBody(3, 2, constantXClip(1, 5))
	bodyC := stateBody(4, 3, constantXClip(1, 9))

	const interruptParam ParamID = 1
	ruleNode := &Node{ID: 200, Type: TypeGetParameter, BucketIndex: -1, Boxes: []Box{{ID: 0}}, Param: &ParamAux{ID: interruptParam}}
	ruleGraph := &SubGraph{ID: 5, Nodes: map[int]*Node{200: ruleNode}, OutputNode: 200, OutputBox: 0}

	stateA := &Node{ID: 10, Type: TypeState, BucketIndex: -1, State: &StateAux{Graph: bodyA, TransitionIdx: []int{0, 1}}}
	stateB := &Node{ID: 11, Type: TypeState, BucketIndex: -1, State: &StateAux{Graph: bodyB}}
	stateC := &Node{ID: 12, Type: TypeState, BucketIndex: -1, State: &StateAux{Graph: bodyC}}

	smGraph := &SubGraph{
		ID:    1,
		Nodes: map[int]*Node{10: stateA, 11: stateB, 12: stateC},
		Transitions: []StateTransition{
			{ID: 0, Destination: 11, BlendDuration: 0.4, Curve: CurveLinear, Flags: TransitionEnabled | TransitionUseDefaultRule | TransitionInterruptionFromSource},
			{ID: 1, Destination: 12, BlendDuration: 0.2, Curve: CurveLinear, Flags: TransitionEnabled, RuleGraph: ruleGraph},
		},
	}
	smNode := &Node{ID: 1, Type: TypeStateMachine, BucketIndex: 0, Boxes: []Box{{ID: 0}}, StateMachine: &StateMachineAux{Graph: smGraph, EntryState: 10}}
	outputNode := &Node{ID: 0, Type: TypeOutput, BucketIndex: -1, Boxes: []Box{{ID: 0, Sources: []BoxRef{{NodeID: 1, BoxID: 0}}}}}
	root := &SubGraph{ID: 0, Nodes: map[int]*Node{0: outputNode, 1: smNode}, OutputNode: 0, OutputBox: 0}
	graph := &Graph{
		Version: 1, Root: root, BaseSkeleton: skeleton, TotalBucketCount: 4,
		Params: []Parameter{{ID: interruptParam, Name: "interrupt", Default: BoolValue(false)}},
	}

	inst := NewInstance(graph)
	ev := NewEvaluator(inst)
	const dt = 0.1

	// Tick until A's default rule fires and the A->B transition commits
	// (threshold pos>=length-blendDuration/2 = 0.8); bail out well before
	// it could also complete (0.4 blend duration / 0.1 dt = 4 ticks later).
	var bucket *StateMachineBucket
	fired := false
	for i := 1; i <= 10 && !fired; i++ {
		ev.Update(dt)
		bucket = &inst.Buckets[0].StateMachine
		fired = bucket.Active != nil
	}
	if !fired || bucket.Active.Destination != 11 {
		t.Fatalf("expected an in-flight A->B transition within 10 ticks, got %+v", bucket.Active)
	}

	// Flip the rule that makes the A->C transition eligible, then tick once
	// more: the interruption must fire, and the output is the base A->B blend
	// after one more tick (position 0.1 of 0.4, alpha 0.25: 0 + 5*0.25 = 1.25).
	inst.SetParam(interruptParam, BoolValue(true))
	ev.Update(dt)

	bucket = &inst.Buckets[0].StateMachine
	if bucket.Base == nil {
		t.Fatalf("expected the interrupted A->B transition to be recorded as a base transition")
	}
	if bucket.Base.Destination != 11 {
		t.Fatalf("expected base transition to remember B as the interrupted destination, got %d", bucket.Base.Destination)
	}
	if bucket.Active == nil || bucket.Active.Destination != 12 {
		t.Fatalf("expected the new active transition to target C, got %+v", bucket.Active)
	}
	if x, want := inst.OutputPoseBones[0].Translation.X, float32(1.25); x < want-1e-3 || x > want+1e-3 {
		t.Fatalf("expected output at interruption to equal blend(A,B,0.25): want %v, got %v", want, x)
	}

	// Drive the A->C transition to completion.
	for i := 0; i < 5; i++ {
		ev.Update(dt)
	}
	bucket = &inst.Buckets[0].StateMachine
	if bucket.CurrentState != 12 || bucket.Active != nil || bucket.Base != nil {
		t.Fatalf("expected machine to settle on state C with no in-flight transitions, got state=%d active=%v base=%v", bucket.CurrentState, bucket.Active, bucket.Base)
	}
	if x := inst.OutputPoseBones[0].Translation.X; x != 9 {
		t.Fatalf("expected output to settle on state C's pose (X=9), got %v", x)
	}
}
