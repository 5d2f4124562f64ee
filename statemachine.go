package animgraph

const transitionEpsilon = 1e-5

// evalStateMachine resolves a StateMachine node per spec §4.6. It owns the
// trickiest control flow in the evaluator: entry/reinitialization, advancing
// or interrupting an in-flight transition, scanning for newly-eligible
// transitions up to maxTransitionsPerUpdate times, and finally sampling and
// blending the current (and, mid-transition, destination) state.
func evalStateMachine(c *Context, n *Node) *Pose {
	aux := n.StateMachine
	bucket := &c.bucket(n).StateMachine
	sg := aux.Graph

	wasRelevantLastTick := bucket.LastUpdateFrame == c.inst.currentFrame-1
	if !bucket.initialized || (aux.ReinitializeOnBecomingRelevant && !wasRelevantLastTick) {
		bucket.CurrentState = aux.EntryState
		bucket.Active = nil
		bucket.Base = nil
		bucket.initialized = true
		resetStateDescendants(c, sg, aux.EntryState)
	}
	bucket.LastUpdateFrame = c.inst.currentFrame

	if bucket.Active != nil {
		advanceActiveTransition(c, sg, bucket)
	}

	maxIter := c.graph.MaxTransitionsPerUpdate
	iterations := 0
	for bucket.Active == nil {
		if maxIter > 0 && iterations >= maxIter {
			// spec §9 open question: preserve the ambiguous fall-through —
			// stop scanning and sample normally with no active transition.
			break
		}
		iterations++
		fired := scanTransitions(c, sg, bucket)
		if !fired {
			break
		}
		// Instant transitions (blendDuration <= epsilon) already committed
		// CurrentState inside scanTransitions/commitTransition and left no
		// Active transition, so the loop continues (spec §4.6 ordering note).
		if bucket.Active != nil {
			break
		}
	}

	return sampleMachineOutput(c, sg, bucket)
}

// resetStateDescendants clears the bucket range owned by a state's body
// sub-graph, used when the machine enters or re-enters a state (spec §4.6
// steps 1 and 2b).
func resetStateDescendants(c *Context, sg *SubGraph, stateID int) {
	state := sg.node(stateID)
	if state == nil || state.State == nil || state.State.Graph == nil {
		return
	}
	body := state.State.Graph
	c.inst.resetBucketRange(body.BucketsStart, body.BucketsCountSelf)
}

// advanceActiveTransition implements spec §4.6 step 2: advance, commit,
// recheck-rule cancellation, and interruption handling.
func advanceActiveTransition(c *Context, sg *SubGraph, bucket *StateMachineBucket) {
	active := bucket.Active
	active.Position += float32(c.dt)

	if active.Position >= active.Transition.BlendDuration {
		resetStateDescendants(c, sg, bucket.CurrentState)
		bucket.CurrentState = active.Destination
		bucket.Active = nil
		bucket.Base = nil
		return
	}

	if active.Transition.has(TransitionInterruptionRuleRechecking) && active.Transition.RuleGraph != nil {
		if !evalRuleGraph(c, active.Transition.RuleGraph) {
			if active.Transition.has(TransitionInterruptionInstant) {
				bucket.Active = nil
				return
			}
			active.Position -= 2 * float32(c.dt)
			if active.Position <= 0 {
				bucket.Active = nil
				return
			}
		}
	}

	if bucket.Active == nil {
		return
	}

	if active.Transition.has(TransitionInterruptionFromSource) {
		if t := firstEligibleTransition(c, sg, bucket.CurrentState, active.Destination); t != nil {
			interruptActiveTransition(c, bucket, t)
		}
	} else if active.Transition.has(TransitionInterruptionFromDestination) {
		if t := firstEligibleTransition(c, sg, active.Destination, bucket.CurrentState); t != nil {
			interruptActiveTransition(c, bucket, t)
		}
	}
}

// interruptActiveTransition records the current Active transition as a Base
// transition (so later blending resumes from a seamless starting pose, spec
// §4.6 step 2d / scenario 5) and switches to the newly-eligible transition.
func interruptActiveTransition(c *Context, bucket *StateMachineBucket, t *StateTransition) {
	old := bucket.Active
	bucket.Base = &BaseStateTransition{
		SourceState:   bucket.CurrentState,
		Destination:   old.Destination,
		Position:      old.Position,
		BlendDuration: old.Transition.BlendDuration,
		Curve:         old.Transition.Curve,
	}
	bucket.Active = &ActiveStateTransition{Transition: t, Destination: t.Destination, Position: 0}
}

// firstEligibleTransition scans fromState's transitions (excluding ones
// targeting excludeDest) for the first whose rule is true, honoring solo
// (spec §4.6 step 2d).
func firstEligibleTransition(c *Context, sg *SubGraph, fromState, excludeDest int) *StateTransition {
	state := sg.node(fromState)
	if state == nil || state.State == nil {
		return nil
	}
	for _, idx := range state.State.TransitionIdx {
		if idx < 0 || idx >= len(sg.Transitions) {
			continue
		}
		t := &sg.Transitions[idx]
		if t.Destination == excludeDest {
			continue
		}
		if evalTransitionRule(c, sg, t, fromState) {
			return t
		}
		if t.has(TransitionSolo) {
			break
		}
	}
	return nil
}

// scanTransitions implements spec §4.6 step 3: evaluate the current state's
// transitions, then the sub-graph's Any State transitions, committing the
// first one whose rule fires. Returns true if a transition was committed.
func scanTransitions(c *Context, sg *SubGraph, bucket *StateMachineBucket) bool {
	if fireFirstMatching(c, sg, bucket, sg.node(bucket.CurrentState)) {
		return true
	}
	for _, node := range sg.Nodes {
		if node.Type == TypeAnyState {
			return fireFirstMatching(c, sg, bucket, node)
		}
	}
	return false
}

func fireFirstMatching(c *Context, sg *SubGraph, bucket *StateMachineBucket, owner *Node) bool {
	if owner == nil || owner.State == nil {
		return false
	}
	for _, idx := range owner.State.TransitionIdx {
		if idx < 0 || idx >= len(sg.Transitions) {
			continue
		}
		t := &sg.Transitions[idx]
		if !t.has(TransitionEnabled) {
			continue
		}
		if evalTransitionRule(c, sg, t, bucket.CurrentState) {
			commitTransition(c, sg, bucket, t)
			return true
		}
		if t.has(TransitionSolo) {
			return false
		}
	}
	return false
}

// evalTransitionRule evaluates one transition's firing condition (spec §4.6
// step 3a-c): default-rule ("current state about to end") or the rule
// sub-graph.
func evalTransitionRule(c *Context, sg *SubGraph, t *StateTransition, fromState int) bool {
	pos, length := sampleStateTransitionData(c, sg, fromState)
	if t.has(TransitionUseDefaultRule) {
		return pos >= length-t.BlendDuration/2
	}
	if t.RuleGraph == nil {
		return false
	}
	return evalRuleGraph(c, t.RuleGraph)
}

// sampleStateTransitionData produces the {position, length} a rule
// sub-graph's "source state anim" nodes and the default rule consult (spec
// §4.6 step 3a) — these come straight off the state's body output pose,
// which the evaluator resolves and caches like any other box.
func sampleStateTransitionData(c *Context, sg *SubGraph, stateID int) (position, length float32) {
	pose := sampleState(c, sg, stateID)
	return pose.Position, pose.Length
}

func evalRuleGraph(c *Context, rule *SubGraph) bool {
	if rule == nil || rule.OutputNode == boxSentinel {
		return false
	}
	c.pushGraph(rule)
	defer c.popGraph()
	owner := rule.node(rule.OutputNode)
	if owner == nil {
		return false
	}
	return resolveBox(c, owner, rule.OutputBox).AsBool()
}

// commitTransition starts a new active transition. Instant transitions
// (blendDuration <= epsilon) commit the destination state immediately in
// the same tick, per spec §4.6's ordering note, and leave no Active
// transition so the scanning loop continues.
func commitTransition(c *Context, sg *SubGraph, bucket *StateMachineBucket, t *StateTransition) {
	if t.BlendDuration <= transitionEpsilon {
		resetStateDescendants(c, sg, bucket.CurrentState)
		bucket.CurrentState = t.Destination
		return
	}
	bucket.Active = &ActiveStateTransition{Transition: t, Destination: t.Destination, Position: 0}
}

// sampleState evaluates a state's body sub-graph and returns its output
// pose.
func sampleState(c *Context, sg *SubGraph, stateID int) *Pose {
	state := sg.node(stateID)
	if state == nil || state.State == nil || state.State.Graph == nil {
		return c.poseCache.get()
	}
	body := state.State.Graph
	if body.OutputNode == boxSentinel {
		return c.poseCache.get()
	}
	c.pushGraph(body)
	defer c.popGraph()
	owner := body.node(body.OutputNode)
	if owner == nil {
		return c.poseCache.get()
	}
	v := resolveBox(c, owner, body.OutputBox)
	if p := v.AsPose(); p != nil {
		return p
	}
	return c.poseCache.get()
}

// sampleMachineOutput implements spec §4.6 step 4: sample the current state
// (or a stored base transition's source blended toward its destination),
// and if an active transition exists, blend toward its destination.
func sampleMachineOutput(c *Context, sg *SubGraph, bucket *StateMachineBucket) *Pose {
	var poseA *Pose
	if bucket.Base != nil {
		src := sampleState(c, sg, bucket.Base.SourceState)
		dst := sampleState(c, sg, bucket.Base.Destination)
		alpha := alphaBlend(bucket.Base.Curve, safeAlpha(bucket.Base.Position, bucket.Base.BlendDuration))
		poseA = blendPoses(c, src, dst, alpha)
	} else {
		poseA = sampleState(c, sg, bucket.CurrentState)
	}

	if bucket.Active == nil {
		return poseA
	}
	poseB := sampleState(c, sg, bucket.Active.Destination)
	alpha := alphaBlend(bucket.Active.Transition.Curve, safeAlpha(bucket.Active.Position, bucket.Active.Transition.BlendDuration))
	return blendPoses(c, poseA, poseB, alpha)
}
