package animgraph

import (
	"testing"

	"github.com/phanxgames/animgraph/animmath"
)

func newTestSkeleton() *Skeleton {
	return &Skeleton{Bones: []Bone{
		{Name: "root", ParentIndex: -1, BindLocal: animmath.IdentityTransform},
	}}
}

func newTestContext(skeleton *Skeleton) *Context {
	graph := &Graph{BaseSkeleton: skeleton, Version: 1, TotalBucketCount: 1}
	inst := NewInstance(graph)
	inst.resetBuckets()
	c := newContext(inst)
	c.dt = 0.5
	return c
}

func linearXClip(length float64) *Clip {
	return &Clip{
		Length:        length,
		RootBoneIndex: 0,
		Channels: []Channel{
			{BoneIndex: 0, Keyframes: []Keyframe{
				{Time: 0, Transform: animmath.Transform{Rotation: animmath.IdentityQuat, Scale: animmath.One3}},
				{Time: length, Transform: animmath.Transform{
					Translation: animmath.Vector3{X: float32(length)},
					Rotation:    animmath.IdentityQuat, Scale: animmath.One3,
				}},
			}},
		},
	}
}

func TestWrapOrClampLoop(t *testing.T) {
	cases := []struct {
		t, length float64
		loop      bool
		want      float64
	}{
		{0.5, 1, true, 0.5},
		{1.2, 1, true, 0.2},
		{-0.2, 1, true, 0.8},
		{1.2, 1, false, 1},
		{-0.2, 1, false, 0},
	}
	for _, tc := range cases {
		got := wrapOrClamp(tc.t, tc.length, tc.loop)
		if diff := got - tc.want; diff > 1e-6 || diff < -1e-6 {
			t.Errorf("wrapOrClamp(%v,%v,%v) = %v, want %v", tc.t, tc.length, tc.loop, got, tc.want)
		}
	}
}

func TestSampleClipLinearInterpolation(t *testing.T) {
	skeleton := newTestSkeleton()
	c := newTestContext(skeleton)
	clip := linearXClip(1)
	bucket := &AnimationBucket{}
	out := &Pose{Bones: make([]animmath.Transform, 1)}
	out.reset(skeleton)

	sampleClip(c, clip, 0, 0.5, false, 1, bucket, skeleton, out)

	if x := out.Bones[0].Translation.X; x < 0.499 || x > 0.501 {
		t.Fatalf("expected bone X ~0.5 at half-length sample, got %v", x)
	}
}

// TestRootMotionLoopSeamContinuity mirrors spec §8's loop-seam scenario: a
// one-second looping clip whose root bone travels linearly from 0 to 1 on X
// must still report a 0.4-unit root-motion delta for a 0.4-second tick that
// straddles the loop boundary (prevTime=0.8 -> newTime=1.2), matching the
// steady 1 unit/sec root velocity the clip encodes.
func TestRootMotionLoopSeamContinuity(t *testing.T) {
	skeleton := newTestSkeleton()
	c := newTestContext(skeleton)
	clip := linearXClip(1)
	clip.RootMotionFlags = RootMotionPositionXZ
	bucket := &AnimationBucket{}
	out := &Pose{Bones: make([]animmath.Transform, 1)}
	out.reset(skeleton)

	sampleClip(c, clip, 0.8, 1.2, true, 1, bucket, skeleton, out)

	got := out.RootMotion.Translation.X
	if got < 0.399 || got > 0.401 {
		t.Fatalf("expected root motion delta ~0.4 across loop seam, got %v", got)
	}

	// the extracted component must be zeroed out of the root bone's own
	// local transform so it isn't double-applied to the skeletal pose.
	if out.Bones[0].Translation.X != 0 {
		t.Fatalf("expected root bone local X zeroed after extraction, got %v", out.Bones[0].Translation.X)
	}
}

func TestSampleClipClampsWhenNotLooping(t *testing.T) {
	skeleton := newTestSkeleton()
	c := newTestContext(skeleton)
	clip := linearXClip(1)
	bucket := &AnimationBucket{}
	out := &Pose{Bones: make([]animmath.Transform, 1)}
	out.reset(skeleton)

	sampleClip(c, clip, 1.0, 1.5, false, 1, bucket, skeleton, out)

	if x := out.Bones[0].Translation.X; x != 1 {
		t.Fatalf("expected clamped sample at clip end (X=1), got %v", x)
	}
}
