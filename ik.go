package animgraph

import (
	"math"

	"github.com/phanxgames/animgraph/animmath"
)

// AimIK rotates one bone toward a world-space target using the quaternion
// that maps the bone's forward direction onto (target - bonePos), then
// blends the result against the input pose by weight (spec §4.8).
func evalAimIK(c *Context, n *Node, bonePos, target animmath.Vector3, forward animmath.Vector3, weight float32, pose *Pose) *Pose {
	aux := n.Transform
	if aux == nil || aux.BoneIndex < 0 {
		return pose
	}
	toTarget := target.Sub(bonePos).Normalize()
	if toTarget.Length() < 1e-6 {
		return pose
	}
	rot := rotationBetween(forward.Normalize(), toTarget)

	out := pose.clone()
	base := out.Bones[aux.BoneIndex]
	aimed := base
	aimed.Rotation = rot.Multiply(base.Rotation).Normalize()
	out.Bones[aux.BoneIndex] = base.Lerp(aimed, weight)
	return out
}

// rotationBetween returns the shortest-arc rotation mapping unit vector a
// onto unit vector b.
func rotationBetween(a, b animmath.Vector3) animmath.Quaternion {
	d := a.Dot(b)
	if d > 0.999999 {
		return animmath.IdentityQuat
	}
	if d < -0.999999 {
		// 180 degrees: pick any axis perpendicular to a.
		axis := animmath.Vector3{X: 1, Y: 0, Z: 0}.Cross(a)
		if axis.Length() < 1e-6 {
			axis = animmath.Vector3{X: 0, Y: 1, Z: 0}.Cross(a)
		}
		return animmath.FromAxisAngle(axis, float32(math.Pi))
	}
	axis := a.Cross(b)
	s := float32(math.Sqrt(float64((1 + d) * 2)))
	invS := 1 / s
	return animmath.Quaternion{
		X: axis.X * invS,
		Y: axis.Y * invS,
		Z: axis.Z * invS,
		W: s * 0.5,
	}.Normalize()
}

// TwoBoneIKResult is the computed root and mid rotations for a two-bone
// chain (spec §4.8).
type TwoBoneIKResult struct {
	RootRotation animmath.Quaternion
	MidRotation  animmath.Quaternion
}

// solveTwoBoneIK solves the planar triangle for a root-joint-end chain with
// an optional stretch factor, given the chain's bind-pose bone lengths and
// current world positions (spec §4.8: "straightforward closed-form
// solver").
func solveTwoBoneIK(rootPos, jointPos, endPos, target animmath.Vector3, upperLen, lowerLen, stretch float32) TwoBoneIKResult {
	toTarget := target.Sub(rootPos)
	targetDist := toTarget.Length()

	maxReach := (upperLen + lowerLen) * (1 + stretch)
	if targetDist > maxReach {
		targetDist = maxReach
		toTarget = toTarget.Normalize().Scale(targetDist)
		target = rootPos.Add(toTarget)
	}
	minReach := absf32(upperLen - lowerLen)
	if targetDist < minReach {
		targetDist = minReach + 1e-4
	}

	cosUpper := clamp32((upperLen*upperLen+targetDist*targetDist-lowerLen*lowerLen)/(2*upperLen*targetDist), -1, 1)
	upperAngle := float32(math.Acos(float64(cosUpper)))

	cosJoint := clamp32((upperLen*upperLen+lowerLen*lowerLen-targetDist*targetDist)/(2*upperLen*lowerLen), -1, 1)
	jointAngle := float32(math.Pi) - float32(math.Acos(float64(cosJoint)))

	currentUpperDir := jointPos.Sub(rootPos).Normalize()
	targetDir := toTarget.Normalize()

	bendAxis := currentUpperDir.Cross(endPos.Sub(rootPos))
	if bendAxis.Length() < 1e-6 {
		bendAxis = animmath.Vector3{X: 0, Y: 0, Z: 1}
	}
	bendAxis = bendAxis.Normalize()

	aimRotation := rotationBetween(currentUpperDir, targetDir)
	poleRotation := animmath.FromAxisAngle(bendAxis, upperAngle)

	currentJointAngle := interiorAngle(rootPos, jointPos, endPos)
	jointDelta := jointAngle - currentJointAngle

	return TwoBoneIKResult{
		RootRotation: poleRotation.Multiply(aimRotation).Normalize(),
		MidRotation:  animmath.FromAxisAngle(bendAxis, jointDelta),
	}
}

func interiorAngle(a, b, c animmath.Vector3) float32 {
	ba := a.Sub(b).Normalize()
	bc := c.Sub(b).Normalize()
	d := clamp32(ba.Dot(bc), -1, 1)
	return float32(math.Acos(float64(d)))
}

func clamp32(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
