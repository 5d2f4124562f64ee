package animgraph

import (
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// evalBlendPose resolves a Blend Poses node: selects one of N input pose
// boxes by index, crossfading via a named alpha curve whenever the selected
// index changes. The crossfade progress itself is driven by a gween.Tween
// from 0 to 1 over blendDuration (the same driver the teacher's TweenGroup
// uses for Node.X/Node.Alpha); the named BlendCurveKind is then applied to
// the tween's linear output to shape the actual blend alpha (spec §4.5).
func evalBlendPose(c *Context, n *Node, selectedIndex int, blendDuration float32, curve BlendCurveKind) *Pose {
	bucket := &c.bucket(n).BlendPose
	if !bucket.initialized {
		bucket.CurrentIndex = selectedIndex
		bucket.PreviousIndex = selectedIndex
		bucket.Tween = nil
		bucket.initialized = true
	}

	if selectedIndex != bucket.CurrentIndex {
		bucket.PreviousIndex = bucket.CurrentIndex
		bucket.CurrentIndex = selectedIndex
		if blendDuration > 1e-5 {
			bucket.Tween = gween.New(0, 1, blendDuration, ease.Linear)
		} else {
			bucket.Tween = nil
		}
	}

	currentPose := resolvePoseInput(c, n, bucket.CurrentIndex)
	if bucket.Tween == nil {
		return currentPose
	}

	position, finished := bucket.Tween.Update(float32(c.dt))
	if finished {
		bucket.Tween = nil
		return currentPose
	}

	prevPose := resolvePoseInput(c, n, bucket.PreviousIndex)
	alpha := alphaBlend(curve, position)
	return blendPoses(c, prevPose, currentPose, alpha)
}

// resolvePoseInput pulls the pose-typed box at the given input index,
// returning an identity pose (via PoseCache) if the index is out of range or
// unconnected.
func resolvePoseInput(c *Context, n *Node, index int) *Pose {
	if index < 0 || index >= len(n.Boxes) {
		return c.poseCache.get()
	}
	v := inputValue(c, n, n.Boxes[index].ID)
	if p := v.AsPose(); p != nil {
		return p
	}
	return c.poseCache.get()
}

// blendPoses linearly interpolates every bone transform and the root motion
// between a and b by alpha, returning a fresh pooled Pose.
func blendPoses(c *Context, a, b *Pose, alpha float32) *Pose {
	out := c.poseCache.get()
	for i := range out.Bones {
		out.Bones[i] = a.Bones[i].Lerp(b.Bones[i], alpha)
	}
	out.RootMotion = a.RootMotion.Lerp(b.RootMotion, alpha)
	out.Position = a.Position*(1-alpha) + b.Position*alpha
	out.Length = a.Length*(1-alpha) + b.Length*alpha
	return out
}
