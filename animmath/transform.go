package animmath

// Transform is a local SRT (scale-rotation-translation) transform, the unit
// the evaluator blends and the loader/sampler produce per bone. Matches the
// original's layout (translation, rotation quaternion, scale) rather than a
// raw matrix, since every blend operation in §4 operates component-wise.
type Transform struct {
	Translation Vector3
	Rotation    Quaternion
	Scale       Vector3
}

// IdentityTransform is the neutral transform (no translation, no rotation,
// unit scale).
var IdentityTransform = Transform{
	Translation: Zero3,
	Rotation:    IdentityQuat,
	Scale:       One3,
}

// Lerp blends two transforms component-wise: linear for translation and
// scale, normalized-lerp for rotation (the dot-product sign fix keeps the
// interpolation on the shorter arc — spec §9).
func (a Transform) Lerp(b Transform, t float32) Transform {
	return Transform{
		Translation: a.Translation.Lerp(b.Translation, t),
		Rotation:    a.Rotation.Nlerp(b.Rotation, t),
		Scale:       a.Scale.Lerp(b.Scale, t),
	}
}

// Add returns a transform representing a with b's offset applied additively:
// translations sum, rotations compose as a*b (b applied first, then a),
// scales multiply.
// This is the "Add" half of the original's additive blend modes (§4.3/§C.3).
func (a Transform) Add(b Transform) Transform {
	return Transform{
		Translation: a.Translation.Add(b.Translation),
		Rotation:    a.Rotation.Multiply(b.Rotation).Normalize(),
		Scale:       a.Scale.Mul(b.Scale),
	}
}

// AddScaled returns a blended additively with b scaled by weight: used by
// weighted-additive blend mode (§4.3) where multiple clips each contribute a
// fraction of their delta from the reference pose.
func (a Transform) AddScaled(b Transform, weight float32) Transform {
	if weight <= 0 {
		return a
	}
	scaledRotation := IdentityQuat.Nlerp(b.Rotation, weight)
	return Transform{
		Translation: a.Translation.Add(b.Translation.Scale(weight)),
		Rotation:    a.Rotation.Multiply(scaledRotation).Normalize(),
		Scale:       a.Scale.Add(b.Scale.Sub(One3).Scale(weight)),
	}
}

// Invert returns the inverse of t such that t.Invert().Combine(t) is
// approximately identity (assuming non-zero scale components).
func (t Transform) Invert() Transform {
	invRot := t.Rotation.Conjugate()
	invScale := Vector3{safeInv(t.Scale.X), safeInv(t.Scale.Y), safeInv(t.Scale.Z)}
	invTrans := invRot.RotateVector(t.Translation.Negate().Mul(invScale))
	return Transform{Translation: invTrans, Rotation: invRot, Scale: invScale}
}

func safeInv(v float32) float32 {
	if v == 0 {
		return 0
	}
	return 1 / v
}

// Combine returns the world transform of a child with local transform "t"
// whose parent has world transform "parent" — parent * t in matrix terms.
func (t Transform) Combine(parent Transform) Transform {
	return Transform{
		Translation: parent.Translation.Add(parent.Rotation.RotateVector(t.Translation.Mul(parent.Scale))),
		Rotation:    parent.Rotation.Multiply(t.Rotation).Normalize(),
		Scale:       parent.Scale.Mul(t.Scale),
	}
}

// WorldOffsetFrom returns the transform that maps points expressed relative
// to the receiver into points relative to "from" — i.e. t applied, then
// from's inverse (from⁻¹ * t in matrix terms). Used by retargeting (§4.8) to preserve a bone's
// world-space offset from its source skeleton equivalent when remapping onto
// a differently-proportioned target skeleton.
func (t Transform) WorldOffsetFrom(from Transform) Transform {
	return t.Combine(from.Invert())
}

// ApproxEqual reports whether a and b match within epsilon on every field.
func (a Transform) ApproxEqual(b Transform, epsilon float32) bool {
	return a.Translation.ApproxEqual(b.Translation, epsilon) &&
		a.Rotation.ApproxEqual(b.Rotation, epsilon) &&
		a.Scale.ApproxEqual(b.Scale, epsilon)
}
