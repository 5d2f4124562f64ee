package animgraph

import "github.com/phanxgames/animgraph/animmath"

// Evaluator drives one Instance against its bound Graph. It owns a reusable
// Context so the scratch allocations (ValueCache map, PoseCache pool,
// call/graph/path stacks) are paid once per Evaluator rather than per tick
// (spec §4.2, §9). That Context is bound to the Instance given to
// NewEvaluator and is not shared with other instances.
type Evaluator struct {
	ctx *Context
}

// NewEvaluator builds an Evaluator bound to inst. Each instance needs its own
// Evaluator; an Evaluator cannot be switched to a different instance.
func NewEvaluator(inst *Instance) *Evaluator {
	return &Evaluator{ctx: newContext(inst)}
}

// Update advances inst by dt seconds and produces a fresh output pose,
// implementing the full per-tick algorithm of spec §4.2:
//
//  1. sync bucket storage to the graph's current Version (full reset on
//     mismatch, spec §7)
//  2. reset per-tick scratch (ValueCache, PoseCache, call/graph/path stacks)
//  3. pull the root output box, recursively resolving the graph
//  4. renormalize every bone rotation (additive blends can drift off unit
//     length)
//  5. retarget onto the instance's target skeleton, if different from the
//     graph's base skeleton
//  6. commit the final per-bone local pose and root-motion delta
//  7. the event queue and trace queue, already populated during step 3, are
//     left for the host to drain and are cleared at the start of the next
//     Update
func (e *Evaluator) Update(dt float64) {
	inst := e.ctx.inst
	graph := inst.graph

	if inst.version != graph.Version {
		inst.resetBuckets()
	}
	inst.currentFrame++
	inst.lastUpdateTime += dt
	inst.EventQueue = inst.EventQueue[:0]
	inst.TraceQueue = inst.TraceQueue[:0]

	e.ctx.beginTick(dt)

	pose := e.resolveRoot()
	pose.normalizeRotations()

	if inst.TargetSkeleton != nil && inst.TargetSkeleton != graph.BaseSkeleton {
		retargeter := NewIdentityRetargeter(graph.BaseSkeleton, inst.TargetSkeleton)
		pose = retargeter.Retarget(pose)
	}

	inst.OutputPoseBones = append(inst.OutputPoseBones[:0], pose.Bones...)
	inst.RootTransform = inst.RootTransform.Add(pose.RootMotion)
	switch inst.RootMotionMode {
	case RootMotionIgnore, RootMotionNoExtraction:
		inst.RootMotion = animmath.IdentityTransform
	default:
		inst.RootMotion = pose.RootMotion
	}
}

// resolveRoot pulls the graph's designated output box, returning a bind pose
// if the graph has no root node or the root doesn't resolve to a pose (spec
// §7's "missing root: evaluator still produces a bind pose").
func (e *Evaluator) resolveRoot() *Pose {
	c := e.ctx
	root := c.graph.Root
	owner := root.node(root.OutputNode)
	if owner == nil {
		return c.poseCache.get()
	}
	v := resolveBox(c, owner, root.OutputBox)
	if p := v.AsPose(); p != nil {
		return p
	}
	return c.poseCache.get()
}

// --- box resolution dispatch (spec §3's pull evaluation model) ---

// resolveBox evaluates one output box of node n within the graph currently
// on top of the context's graph stack, memoizing the result for the rest of
// this tick (spec §4.2 step 1's per-tick ValueCache) and guarding against
// runaway recursion via the call stack (spec §4.2 step 3, §7).
func resolveBox(c *Context, n *Node, boxID int) Value {
	if n == nil {
		return ZeroValue
	}
	key := valueCacheKey{graphID: c.currentGraph().ID, nodeID: n.ID, boxID: boxID}
	if v, ok := c.valueCache[key]; ok {
		return v
	}
	if !c.pushNode(n) {
		return ZeroValue
	}
	v := computeBox(c, n, boxID)
	c.popNode()
	c.valueCache[key] = v
	return v
}

// inputValue resolves box boxID of node n as a plain input wire: pulls
// whatever is connected to it, or falls back to the node's own literal
// default for that box (spec §4.2 step 1).
func inputValue(c *Context, n *Node, boxID int) Value {
	b := n.box(boxID)
	if b == nil || !b.connected() {
		return n.defaultValue(boxID)
	}
	src := b.Sources[0]
	srcNode := c.currentGraph().node(src.NodeID)
	if srcNode == nil {
		return n.defaultValue(boxID)
	}
	return resolveBox(c, srcNode, src.BoxID)
}

// computeBox is the (group, type) dispatch table of spec §3: every node kind
// this evaluator implements maps to one case here. Box-ID conventions (which
// input feeds which parameter) are documented per case; box 0 is reserved as
// a node's primary computed output everywhere a node actually computes
// something, so a request for any other box ID on a computing node always
// means "pull this auxiliary input", never "recompute under a different
// output".
func computeBox(c *Context, n *Node, boxID int) Value {
	switch n.Type {
	case TypeAnimation:
		return PoseValue(evalAnimationNode(c, n))

	case TypeMultiBlend1D:
		axis := inputValue(c, n, 1).AsFloat()
		speed := speedInput(c, n, 2)
		return PoseValue(evalMultiBlend1D(c, n, axis, speed))

	case TypeMultiBlend2D:
		x := inputValue(c, n, 1).AsFloat()
		y := inputValue(c, n, 2).AsFloat()
		speed := speedInput(c, n, 3)
		return PoseValue(evalMultiBlend2D(c, n, x, y, speed))

	case TypeBlendPose:
		return PoseValue(evalBlendPoseNode(c, n))

	case TypeStateMachine:
		return PoseValue(evalStateMachine(c, n))

	case TypeSlot:
		// Box 1 is the slot's pass-through "Pose In" input; box 0 is the
		// slot's own output (spec §4.7).
		return PoseValue(evalSlot(c, n, 1))

	case TypeFunction:
		return evalFunction(c, n)

	case TypeFunctionInput:
		ordinal := 0
		if n.FuncInput != nil {
			ordinal = n.FuncInput.Ordinal
		}
		return evalFunctionInput(c, n, ordinal)

	case TypeCustom:
		return evalCustom(c, n, boxID)

	case TypeInstanceData:
		return evalInstanceData(c, n, boxID)

	case TypeGetParameter:
		if n.Param == nil {
			return ZeroValue
		}
		return c.inst.Param(n.Param.ID)

	case TypeTransformNode:
		return PoseValue(evalTransformNode(c, n))

	case TypeCopyNode:
		return PoseValue(evalCopyNode(c, n))

	case TypeAimIK:
		return PoseValue(evalAimIKNode(c, n))

	case TypeTwoBoneIK:
		return PoseValue(evalTwoBoneIKNode(c, n))

	default:
		// Output, Entry, State, AnyState and any unrecognized type are plain
		// pass-through: whatever is wired into this box is the answer (spec
		// §4.2 step 1).
		return inputValue(c, n, boxID)
	}
}

// speedInput resolves an optional speed-override box, defaulting to 1 when
// unconnected and carrying no literal override (spec §4.4).
func speedInput(c *Context, n *Node, boxID int) float32 {
	b := n.box(boxID)
	if b == nil {
		return 1
	}
	if !b.connected() && (boxID >= len(n.Values) || n.Values[boxID].Kind == ValueNone) {
		return 1
	}
	return inputValue(c, n, boxID).AsFloat()
}

// evalAnimationNode advances a sampled-clip node's bucket by one tick and
// samples it (spec §4.3). Box 1 optionally overrides the load-time default
// speed.
func evalAnimationNode(c *Context, n *Node) *Pose {
	out := c.poseCache.get()
	aux := n.Animation
	if aux == nil || aux.Clip == nil {
		return out
	}
	speed := aux.Speed
	if speed == 0 {
		speed = 1
	}
	if b := n.box(1); b != nil && b.connected() {
		speed = inputValue(c, n, 1).AsFloat()
	}

	bucket := &c.bucket(n).Animation
	prevTime := bucket.TimePosition
	if !bucket.initialized {
		prevTime = 0
		bucket.initialized = true
	}
	newTime := prevTime + c.dt*float64(speed)

	sampleClip(c, aux.Clip, prevTime, newTime, aux.Loop, speed, bucket, c.graph.BaseSkeleton, out)

	bucket.TimePosition = wrapOrClamp(newTime, aux.Clip.Length, aux.Loop)
	bucket.LastUpdateFrame = c.inst.currentFrame

	c.addTraceEvent(n.ID, aux.Clip, out.Position, 0)
	return out
}

// evalBlendPoseNode reads a Blend Poses node's selector and configuration and
// delegates to evalBlendPose. Box 0 is the node's output, box 1 the integer
// pose selector, and boxes 2..N the N selectable pose inputs (spec §4.5).
func evalBlendPoseNode(c *Context, n *Node) *Pose {
	selector := int(inputValue(c, n, 1).AsFloat())
	numOptions := len(n.Boxes) - 2
	if numOptions < 1 {
		return c.poseCache.get()
	}
	if selector < 0 {
		selector = 0
	}
	if selector >= numOptions {
		selector = numOptions - 1
	}
	duration := float32(0)
	curve := CurveLinear
	if n.BlendPose != nil {
		duration = n.BlendPose.BlendDuration
		curve = n.BlendPose.Curve
	}
	return evalBlendPose(c, n, selector+2, duration, curve)
}

// evalTransformNode applies a translation/rotation offset to one bone of its
// input pose, either adding to or replacing the sampled transform (spec
// SPEC_FULL §C.3). Box 1 is the pass-through input pose, box 2 an optional
// offset Transform fed as a Vector3 translation (rotation offsets are out of
// scope for this node's simplified wiring).
func evalTransformNode(c *Context, n *Node) *Pose {
	in := resolvePoseInputByBox(c, n, 1)
	aux := n.Transform
	if aux == nil || aux.BoneIndex < 0 || aux.Mode == BoneTransformNone {
		return in
	}
	offset := inputValue(c, n, 2).Vector

	out := in.clone()
	bone := out.Bones[aux.BoneIndex]
	switch aux.Mode {
	case BoneTransformAdd:
		bone.Translation = bone.Translation.Add(offset)
	case BoneTransformReplace:
		bone.Translation = offset
	}
	out.Bones[aux.BoneIndex] = bone
	return out
}

// evalCopyNode copies one bone's sampled transform onto another within the
// same pose (spec SPEC_FULL §C.3), used to puppet an IK target or weapon
// socket from an already-animated bone. Box 1 is the pass-through input
// pose.
func evalCopyNode(c *Context, n *Node) *Pose {
	in := resolvePoseInputByBox(c, n, 1)
	aux := n.Transform
	if aux == nil || aux.BoneIndex < 0 || aux.SourceBoneIndex < 0 {
		return in
	}
	out := in.clone()
	out.Bones[aux.BoneIndex] = out.Bones[aux.SourceBoneIndex]
	return out
}

// evalAimIKNode resolves an Aim IK node: samples the bone's current world
// position off the input pose's bind-relative chain, then rotates it toward
// a world-space target (spec §4.8). Box 1 is the input pose, box 2 the
// Vector3 world-space target, box 3 the blend weight (default 1), box 4 an
// optional local-space forward axis (default +Z).
func evalAimIKNode(c *Context, n *Node) *Pose {
	in := resolvePoseInputByBox(c, n, 1)
	aux := n.Transform
	skeleton := c.graph.BaseSkeleton
	if aux == nil || aux.BoneIndex < 0 || skeleton == nil {
		return in
	}

	target := inputValue(c, n, 2).Vector
	weight := float32(1)
	if n.box(3) != nil {
		weight = inputValue(c, n, 3).AsFloat()
	}
	forward := animmath.Vector3{X: 0, Y: 0, Z: 1}
	if n.box(4) != nil {
		if v := inputValue(c, n, 4).Vector; v.Length() > 1e-6 {
			forward = v
		}
	}

	parentWorld := parentWorldOf(skeleton, aux.BoneIndex)
	boneWorld := in.Bones[aux.BoneIndex].Combine(parentWorld)

	return evalAimIK(c, n, boneWorld.Translation, target, forward, weight, in)
}

// evalTwoBoneIKNode resolves a Two Bone IK node: reads the chain's current
// world positions and bind-pose segment lengths, solves the planar triangle,
// and writes the resulting root/mid local rotations into a cloned pose (spec
// §4.8). Box 1 is the input pose, box 2 the Vector3 world-space target, box
// 3 the blend weight (default 1), box 4 an optional stretch factor (default
// 0).
func evalTwoBoneIKNode(c *Context, n *Node) *Pose {
	in := resolvePoseInputByBox(c, n, 1)
	aux := n.IK
	skeleton := c.graph.BaseSkeleton
	if aux == nil || aux.RootBone < 0 || aux.MidBone < 0 || aux.EndBone < 0 || skeleton == nil {
		return in
	}

	target := inputValue(c, n, 2).Vector
	weight := float32(1)
	if n.box(3) != nil {
		weight = inputValue(c, n, 3).AsFloat()
	}
	stretch := float32(0)
	if n.box(4) != nil {
		stretch = inputValue(c, n, 4).AsFloat()
	}
	if weight <= 0 {
		return in
	}

	rootParent := parentWorldOf(skeleton, aux.RootBone)
	rootWorld := in.Bones[aux.RootBone].Combine(rootParent)
	midWorld := in.Bones[aux.MidBone].Combine(rootWorld)
	endWorld := in.Bones[aux.EndBone].Combine(midWorld)

	upperLen := skeleton.BindWorld(aux.MidBone).WorldOffsetFrom(skeleton.BindWorld(aux.RootBone)).Translation.Length()
	lowerLen := skeleton.BindWorld(aux.EndBone).WorldOffsetFrom(skeleton.BindWorld(aux.MidBone)).Translation.Length()

	result := solveTwoBoneIK(rootWorld.Translation, midWorld.Translation, endWorld.Translation, target, upperLen, lowerLen, stretch)

	out := in.clone()
	root := out.Bones[aux.RootBone]
	root.Rotation = root.Rotation.Nlerp(result.RootRotation.Multiply(root.Rotation).Normalize(), weight)
	out.Bones[aux.RootBone] = root

	mid := out.Bones[aux.MidBone]
	mid.Rotation = mid.Rotation.Nlerp(result.MidRotation.Multiply(mid.Rotation).Normalize(), weight)
	out.Bones[aux.MidBone] = mid

	return out
}
