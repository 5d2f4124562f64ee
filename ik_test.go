package animgraph

import (
	"testing"

	"github.com/phanxgames/animgraph/animmath"
)

func TestRotationBetweenIdentityWhenAligned(t *testing.T) {
	a := animmath.Vector3{X: 0, Y: 0, Z: 1}
	q := rotationBetween(a, a)
	if !q.ApproxEqual(animmath.IdentityQuat, 1e-5) {
		t.Fatalf("expected identity rotation for aligned vectors, got %+v", q)
	}
}

func TestRotationBetweenMapsForwardOntoTarget(t *testing.T) {
	forward := animmath.Vector3{X: 0, Y: 0, Z: 1}
	target := animmath.Vector3{X: 1, Y: 0, Z: 0}
	q := rotationBetween(forward, target)

	rotated := q.RotateVector(forward)
	if !rotated.ApproxEqual(target, 1e-4) {
		t.Fatalf("expected rotation to map forward onto target, got %+v want %+v", rotated, target)
	}
}

// TestSolveTwoBoneIKAimsRootTowardTarget exercises a right-triangle chain (a
// straight-up upper segment, a straight-right lower segment) within reach of
// the target, and checks the root rotation places the upper segment at the
// closed-form law-of-cosines angle from the target direction, per spec
// §4.8's "closed-form solver" requirement.
func TestSolveTwoBoneIKAimsRootTowardTarget(t *testing.T) {
	root := animmath.Vector3{X: 0, Y: 0, Z: 0}
	joint := animmath.Vector3{X: 0, Y: 1, Z: 0}
	end := animmath.Vector3{X: 1, Y: 1, Z: 0}
	target := animmath.Vector3{X: 0.7, Y: 0.7, Z: 0}

	upperLen := joint.Sub(root).Length()
	lowerLen := end.Sub(joint).Length()

	result := solveTwoBoneIK(root, joint, end, target, upperLen, lowerLen, 0)

	newUpperDir := result.RootRotation.RotateVector(joint.Sub(root)).Normalize()
	toTarget := target.Sub(root).Normalize()

	// The upper segment must sit at the law-of-cosines angle from the
	// root->target direction: cos = (upper² + d² - lower²) / (2·upper·d) with
	// d = |target-root|. Here upper = lower = 1 and d = 0.7·√2 ≈ 0.98995, so
	// cos ≈ 0.49497, i.e. further from the target than the starting 45°.
	d := target.Sub(root).Length()
	want := (upperLen*upperLen + d*d - lowerLen*lowerLen) / (2 * upperLen * d)
	after := newUpperDir.Dot(toTarget)
	if after < want-1e-3 || after > want+1e-3 {
		t.Fatalf("expected upper segment at the law-of-cosines angle to target: want dot %v, got %v", want, after)
	}
	if result.RootRotation.Length() < 0.99 || result.RootRotation.Length() > 1.01 {
		t.Fatalf("expected normalized root rotation, got %+v", result.RootRotation)
	}
}

func TestSolveTwoBoneIKClampsUnreachableTarget(t *testing.T) {
	root := animmath.Vector3{X: 0, Y: 0, Z: 0}
	joint := animmath.Vector3{X: 0, Y: 1, Z: 0}
	end := animmath.Vector3{X: 0, Y: 2, Z: 0}
	target := animmath.Vector3{X: 0, Y: 10, Z: 0} // far beyond reach of a length-2 chain

	result := solveTwoBoneIK(root, joint, end, target, 1, 1, 0)

	if result.RootRotation.Length() < 0.99 || result.RootRotation.Length() > 1.01 {
		t.Fatalf("expected a normalized root rotation even for an unreachable target, got %+v", result.RootRotation)
	}
}
