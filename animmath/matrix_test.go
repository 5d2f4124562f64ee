package animmath

import "testing"

func assertMat4(t *testing.T, name string, got, want Matrix4) {
	t.Helper()
	for i := range got {
		if absf(got[i]-want[i]) > epsilon {
			t.Errorf("%s[%d] = %v, want %v (full: %v vs %v)", name, i, got[i], want[i], got, want)
		}
	}
}

func TestFromTransformIdentity(t *testing.T) {
	got := FromTransform(IdentityTransform)
	assertMat4(t, "identity", got, IdentityMatrix4)
}

func TestFromTransformTranslation(t *testing.T) {
	tr := IdentityTransform
	tr.Translation = Vector3{1, 2, 3}
	got := FromTransform(tr)
	want := IdentityMatrix4
	want[12], want[13], want[14] = 1, 2, 3
	assertMat4(t, "translation", got, want)
}

func TestMatrix4MulPointTranslation(t *testing.T) {
	tr := IdentityTransform
	tr.Translation = Vector3{5, 0, 0}
	m := FromTransform(tr)
	got := m.MulPoint(Vector3{1, 0, 0})
	assertVec3(t, "mulpoint", got, Vector3{6, 0, 0})
}

func TestMatrix4InvertIdentity(t *testing.T) {
	got := IdentityMatrix4.Invert()
	assertMat4(t, "invert-identity", got, IdentityMatrix4)
}

func TestMatrix4InvertRoundTrip(t *testing.T) {
	tr := Transform{
		Translation: Vector3{3, -1, 2},
		Rotation:    FromAxisAngle(Vector3{0, 0, 1}, 0.7),
		Scale:       Vector3{1, 1, 1},
	}
	m := FromTransform(tr)
	inv := m.Invert()
	got := m.Mul(inv)
	assertMat4(t, "m*inv(m)", got, IdentityMatrix4)
}
