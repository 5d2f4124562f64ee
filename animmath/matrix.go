package animmath

import "math"

// Matrix4 is a 4x4 matrix stored column-major in a flat array, matching the
// convention in Carmen-Shannon/oxy-go's common/math.go (Mul4/Invert4 operate
// on flat []float32 in column-major order). Retargeting (§4.8) and IK in the
// animgraph package work on SRT Transforms and do not use Matrix4.
type Matrix4 [16]float32

// IdentityMatrix4 is the 4x4 identity matrix.
var IdentityMatrix4 = Matrix4{
	1, 0, 0, 0,
	0, 1, 0, 0,
	0, 0, 1, 0,
	0, 0, 0, 1,
}

// FromTransform builds the column-major world matrix equivalent to t.
func FromTransform(t Transform) Matrix4 {
	q := t.Rotation
	x2, y2, z2 := q.X+q.X, q.Y+q.Y, q.Z+q.Z
	xx, xy, xz := q.X*x2, q.X*y2, q.X*z2
	yy, yz, zz := q.Y*y2, q.Y*z2, q.Z*z2
	wx, wy, wz := q.W*x2, q.W*y2, q.W*z2
	s := t.Scale

	var m Matrix4
	m[0] = (1 - (yy + zz)) * s.X
	m[1] = (xy + wz) * s.X
	m[2] = (xz - wy) * s.X
	m[3] = 0

	m[4] = (xy - wz) * s.Y
	m[5] = (1 - (xx + zz)) * s.Y
	m[6] = (yz + wx) * s.Y
	m[7] = 0

	m[8] = (xz + wy) * s.Z
	m[9] = (yz - wx) * s.Z
	m[10] = (1 - (xx + yy)) * s.Z
	m[11] = 0

	m[12] = t.Translation.X
	m[13] = t.Translation.Y
	m[14] = t.Translation.Z
	m[15] = 1
	return m
}

// Mul returns a * b (column-major composition: applying the result to a
// vector first applies b, then a).
func (a Matrix4) Mul(b Matrix4) Matrix4 {
	var r Matrix4
	for col := 0; col < 4; col++ {
		for row := 0; row < 4; row++ {
			var sum float32
			for k := 0; k < 4; k++ {
				sum += a[k*4+row] * b[col*4+k]
			}
			r[col*4+row] = sum
		}
	}
	return r
}

// MulPoint transforms a point (w=1) by m.
func (m Matrix4) MulPoint(v Vector3) Vector3 {
	return Vector3{
		X: m[0]*v.X + m[4]*v.Y + m[8]*v.Z + m[12],
		Y: m[1]*v.X + m[5]*v.Y + m[9]*v.Z + m[13],
		Z: m[2]*v.X + m[6]*v.Y + m[10]*v.Z + m[14],
	}
}

// Invert returns the inverse of m, or IdentityMatrix4 if m is singular.
// Direct port of the cofactor-expansion approach used by oxy-go's Invert4.
func (m Matrix4) Invert() Matrix4 {
	a00, a01, a02, a03 := m[0], m[1], m[2], m[3]
	a10, a11, a12, a13 := m[4], m[5], m[6], m[7]
	a20, a21, a22, a23 := m[8], m[9], m[10], m[11]
	a30, a31, a32, a33 := m[12], m[13], m[14], m[15]

	b00 := a00*a11 - a01*a10
	b01 := a00*a12 - a02*a10
	b02 := a00*a13 - a03*a10
	b03 := a01*a12 - a02*a11
	b04 := a01*a13 - a03*a11
	b05 := a02*a13 - a03*a12
	b06 := a20*a31 - a21*a30
	b07 := a20*a32 - a22*a30
	b08 := a20*a33 - a23*a30
	b09 := a21*a32 - a22*a31
	b10 := a21*a33 - a23*a31
	b11 := a22*a33 - a23*a32

	det := b00*b11 - b01*b10 + b02*b09 + b03*b08 - b04*b07 + b05*b06
	if float32(math.Abs(float64(det))) < 1e-12 {
		return IdentityMatrix4
	}
	invDet := 1 / det

	var r Matrix4
	r[0] = (a11*b11 - a12*b10 + a13*b09) * invDet
	r[1] = (a02*b10 - a01*b11 - a03*b09) * invDet
	r[2] = (a31*b05 - a32*b04 + a33*b03) * invDet
	r[3] = (a22*b04 - a21*b05 - a23*b03) * invDet
	r[4] = (a12*b08 - a10*b11 - a13*b07) * invDet
	r[5] = (a00*b11 - a02*b08 + a03*b07) * invDet
	r[6] = (a32*b02 - a30*b05 - a33*b01) * invDet
	r[7] = (a20*b05 - a22*b02 + a23*b01) * invDet
	r[8] = (a10*b10 - a11*b08 + a13*b06) * invDet
	r[9] = (a01*b08 - a00*b10 - a03*b06) * invDet
	r[10] = (a30*b04 - a31*b02 + a33*b00) * invDet
	r[11] = (a21*b02 - a20*b04 - a23*b00) * invDet
	r[12] = (a11*b07 - a10*b09 - a12*b06) * invDet
	r[13] = (a00*b09 - a01*b07 + a02*b06) * invDet
	r[14] = (a31*b01 - a30*b03 - a32*b00) * invDet
	r[15] = (a20*b03 - a21*b01 + a22*b00) * invDet
	return r
}
