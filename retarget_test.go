package animgraph

import (
	"testing"

	"github.com/phanxgames/animgraph/animmath"
)

func translateLocal(x, y, z float32) animmath.Transform {
	return animmath.Transform{
		Translation: animmath.Vector3{X: x, Y: y, Z: z},
		Rotation:    animmath.IdentityQuat,
		Scale:       animmath.One3,
	}
}

// TestRetargetPreservesWorldOffsetAcrossProportions exercises a 2-bone chain
// (root + child) retargeted onto a target skeleton whose child bone is
// twice as long. Every rotation in the chain is identity, so the expected
// numbers below are plain vector arithmetic rather than a restatement of the
// implementation: the child's sampled 0.3-unit world-space deviation from
// its own bind pose must reappear, unchanged, added onto the *target's*
// bind-local translation — proving the target's different proportions are
// respected rather than overwritten (spec §4.8).
func TestRetargetPreservesWorldOffsetAcrossProportions(t *testing.T) {
	source := &Skeleton{Bones: []Bone{
		{Name: "root", ParentIndex: -1, BindLocal: animmath.IdentityTransform},
		{Name: "child", ParentIndex: 0, BindLocal: translateLocal(0, 1, 0)},
	}}
	target := &Skeleton{Bones: []Bone{
		{Name: "root", ParentIndex: -1, BindLocal: animmath.IdentityTransform},
		{Name: "child", ParentIndex: 0, BindLocal: translateLocal(0, 2, 0)},
	}}

	src := &Pose{Bones: []animmath.Transform{
		translateLocal(0.1, 0, 0), // root nudged on X
		translateLocal(0, 1, 0.3), // child: bind (0,1,0) plus a 0.3 Z deviation
	}}

	retargeter := NewIdentityRetargeter(source, target)
	out := retargeter.Retarget(src)

	if len(out.Bones) != 2 {
		t.Fatalf("expected 2 retargeted bones, got %d", len(out.Bones))
	}

	wantRoot := animmath.Vector3{X: 0.1, Y: 0, Z: 0}
	if !out.Bones[0].Translation.ApproxEqual(wantRoot, 1e-5) {
		t.Fatalf("root: got %+v, want %+v", out.Bones[0].Translation, wantRoot)
	}

	wantChild := animmath.Vector3{X: 0, Y: 2, Z: 0.3}
	if !out.Bones[1].Translation.ApproxEqual(wantChild, 1e-5) {
		t.Fatalf("child: got %+v, want %+v (target bind Y=2 plus preserved 0.3 Z deviation)", out.Bones[1].Translation, wantChild)
	}
}

// TestRetargetFallsBackToBindPoseWhenUnmapped checks that a target bone with
// no name match on the source skeleton holds its own bind pose rather than
// panicking or zeroing out (spec §4.8's "hold bind pose" fallback).
func TestRetargetFallsBackToBindPoseWhenUnmapped(t *testing.T) {
	source := &Skeleton{Bones: []Bone{
		{Name: "root", ParentIndex: -1, BindLocal: animmath.IdentityTransform},
	}}
	target := &Skeleton{Bones: []Bone{
		{Name: "root", ParentIndex: -1, BindLocal: animmath.IdentityTransform},
		{Name: "tail", ParentIndex: 0, BindLocal: translateLocal(0, 0, 1)},
	}}
	src := &Pose{Bones: []animmath.Transform{animmath.IdentityTransform}}

	retargeter := NewIdentityRetargeter(source, target)
	out := retargeter.Retarget(src)

	if !out.Bones[1].ApproxEqual(target.Bones[1].BindLocal, 1e-6) {
		t.Fatalf("expected unmapped bone to hold its bind pose, got %+v", out.Bones[1])
	}
}
