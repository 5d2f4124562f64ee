package animmath

import "testing"

const epsilon = 1e-5

func assertVec3(t *testing.T, name string, got, want Vector3) {
	t.Helper()
	if !got.ApproxEqual(want, epsilon) {
		t.Errorf("%s = %+v, want %+v", name, got, want)
	}
}

func TestVector3Add(t *testing.T) {
	got := Vector3{1, 2, 3}.Add(Vector3{4, 5, 6})
	assertVec3(t, "add", got, Vector3{5, 7, 9})
}

func TestVector3Sub(t *testing.T) {
	got := Vector3{4, 5, 6}.Sub(Vector3{1, 2, 3})
	assertVec3(t, "sub", got, Vector3{3, 3, 3})
}

func TestVector3Cross(t *testing.T) {
	got := Vector3{1, 0, 0}.Cross(Vector3{0, 1, 0})
	assertVec3(t, "cross", got, Vector3{0, 0, 1})
}

func TestVector3Dot(t *testing.T) {
	got := Vector3{1, 2, 3}.Dot(Vector3{4, 5, 6})
	if absf(got-32) > epsilon {
		t.Errorf("dot = %v, want 32", got)
	}
}

func TestVector3NormalizeZero(t *testing.T) {
	got := Vector3{}.Normalize()
	assertVec3(t, "normalize-zero", got, Vector3{})
}

func TestVector3NormalizeUnit(t *testing.T) {
	got := Vector3{3, 0, 4}.Normalize()
	if absf(got.Length()-1) > epsilon {
		t.Errorf("length = %v, want 1", got.Length())
	}
}

func TestVector3Lerp(t *testing.T) {
	a := Vector3{0, 0, 0}
	b := Vector3{10, 20, 30}
	got := a.Lerp(b, 0.5)
	assertVec3(t, "lerp-half", got, Vector3{5, 10, 15})
}

func TestVector2Cross(t *testing.T) {
	got := Vector2{1, 0}.Cross(Vector2{0, 1})
	if absf(got-1) > epsilon {
		t.Errorf("cross = %v, want 1", got)
	}
}

func TestVector2Length(t *testing.T) {
	got := Vector2{3, 4}.Length()
	if absf(got-5) > epsilon {
		t.Errorf("length = %v, want 5", got)
	}
}
