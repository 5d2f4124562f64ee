package animmath

import (
	"math"
	"testing"
)

func assertTransform(t *testing.T, name string, got, want Transform) {
	t.Helper()
	if !got.ApproxEqual(want, epsilon) {
		t.Errorf("%s = %+v, want %+v", name, got, want)
	}
}

func TestTransformLerpIdentity(t *testing.T) {
	got := IdentityTransform.Lerp(IdentityTransform, 0.5)
	assertTransform(t, "lerp-identity", got, IdentityTransform)
}

func TestTransformLerpTranslation(t *testing.T) {
	a := IdentityTransform
	b := IdentityTransform
	b.Translation = Vector3{10, 0, 0}
	got := a.Lerp(b, 0.5)
	assertVec3(t, "lerp-translation", got.Translation, Vector3{5, 0, 0})
}

func TestTransformAddIdentity(t *testing.T) {
	a := IdentityTransform
	a.Translation = Vector3{1, 2, 3}
	got := a.Add(IdentityTransform)
	assertTransform(t, "add-identity", got, a)
}

func TestTransformInvertRoundTrip(t *testing.T) {
	tr := Transform{
		Translation: Vector3{5, -2, 3},
		Rotation:    FromAxisAngle(Vector3{0, 1, 0}, float32(math.Pi/6)),
		Scale:       Vector3{2, 2, 2},
	}
	inv := tr.Invert()
	got := tr.Combine(inv)
	assertTransform(t, "combine-with-inverse", got, IdentityTransform)
}

func TestTransformCombineParentChild(t *testing.T) {
	parent := IdentityTransform
	parent.Translation = Vector3{10, 0, 0}
	child := IdentityTransform
	child.Translation = Vector3{1, 0, 0}
	got := child.Combine(parent)
	assertVec3(t, "combine-parent-child", got.Translation, Vector3{11, 0, 0})
}

func TestTransformWorldOffsetFrom(t *testing.T) {
	src := IdentityTransform
	src.Translation = Vector3{1, 0, 0}
	got := src.WorldOffsetFrom(IdentityTransform)
	assertVec3(t, "world-offset-from-identity", got.Translation, Vector3{1, 0, 0})
}
