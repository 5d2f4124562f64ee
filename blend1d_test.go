package animgraph

import "testing"

func buildMultiBlend1DNode(clips []Blend1DClip) *Node {
	idx := sortClip1DIndices(clips)
	return &Node{
		ID:          1,
		Type:        TypeMultiBlend1D,
		BucketIndex: 0,
		MultiBlend1D: &MultiBlend1DAux{
			Clips:     clips,
			sortedIdx: idx,
		},
	}
}

func TestMultiBlend1DBlendsBetweenNeighbors(t *testing.T) {
	skeleton := newTestSkeleton()
	c := newTestContext(skeleton)
	c.inst.Buckets = make([]Bucket, 1)

	walk := linearXClip(1)
	run := &Clip{Length: 1, RootBoneIndex: -1}
	node := buildMultiBlend1DNode([]Blend1DClip{
		{X: 0, Clip: walk},
		{X: 1, Clip: run},
	})

	pose := evalMultiBlend1D(c, node, 0.5, 1)
	// walk's channel moves bone 0 to X=? at t=dt=0.5 within its own 1s clip,
	// run has no channel for bone 0 so it stays at bind pose (X=0); at
	// axis=0.5 the two are blended evenly.
	if pose.Bones[0].Translation.X <= 0 {
		t.Fatalf("expected a nonzero blended X from the walk clip's contribution, got %v", pose.Bones[0].Translation.X)
	}
}

func TestMultiBlend1DClampsAxisOutsideRange(t *testing.T) {
	skeleton := newTestSkeleton()
	c := newTestContext(skeleton)
	c.inst.Buckets = make([]Bucket, 1)

	walk := linearXClip(1)
	run := &Clip{Length: 1, RootBoneIndex: -1}
	node := buildMultiBlend1DNode([]Blend1DClip{
		{X: 0, Clip: walk},
		{X: 1, Clip: run},
	})

	below := evalMultiBlend1D(c, node, -5, 1)
	c.inst.Buckets = make([]Bucket, 1) // fresh bucket, independent sample
	above := evalMultiBlend1D(c, node, 5, 1)

	if below.Bones[0].Translation.X == above.Bones[0].Translation.X {
		t.Fatalf("expected axis clamping to still select distinct endpoints, got equal poses")
	}
}
