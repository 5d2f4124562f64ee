package animgraph

import "github.com/phanxgames/animgraph/animmath"

// BoneMapping maps one target-skeleton bone to a source-skeleton bone, or
// marks it to hold its bind pose when there is no equivalent (spec §4.8).
type BoneMapping struct {
	SourceBoneIndex int // -1 = hold bind pose
}

// Retargeter remaps a pose sampled on a source skeleton onto a differently
// proportioned target skeleton, preserving the world-space difference of
// the source bone's animation within the target parent's frame (spec
// §4.8).
type Retargeter struct {
	Source  *Skeleton
	Target  *Skeleton
	Mapping []BoneMapping // indexed by target bone
}

// NewIdentityRetargeter builds a Retargeter that maps each target bone to
// the source bone of the same name, falling back to bind pose when no match
// exists.
func NewIdentityRetargeter(source, target *Skeleton) *Retargeter {
	mapping := make([]BoneMapping, len(target.Bones))
	for i, b := range target.Bones {
		mapping[i] = BoneMapping{SourceBoneIndex: source.BoneIndex(b.Name)}
	}
	return &Retargeter{Source: source, Target: target, Mapping: mapping}
}

// Retarget produces a target-skeleton pose from a source-skeleton pose
// (spec §4.8):
//
//	bindSource      = world matrix of source bind pose at source bone
//	localFromSource = invBindSource * world matrix of sampled source local
//	targetWorld     = world matrix of target bind pose at target bone
//	invParentTarget = inverse world matrix of target bone's parent (bind)
//	localTarget     = decompose(targetWorld * localFromSource * invParentTarget)
func (r *Retargeter) Retarget(src *Pose) *Pose {
	out := &Pose{
		Bones:      make([]animmath.Transform, len(r.Target.Bones)),
		RootMotion: src.RootMotion,
		Position:   src.Position,
		Length:     src.Length,
	}
	for ti, m := range r.Mapping {
		targetBone := r.Target.Bones[ti]
		if m.SourceBoneIndex < 0 || m.SourceBoneIndex >= len(src.Bones) {
			out.Bones[ti] = targetBone.BindLocal
			continue
		}

		bindSource := r.Source.BindWorld(m.SourceBoneIndex)
		sampledSourceWorld := src.Bones[m.SourceBoneIndex].Combine(parentWorldOf(r.Source, m.SourceBoneIndex))
		localFromSource := sampledSourceWorld.WorldOffsetFrom(bindSource)

		targetWorld := r.Target.BindWorld(ti)
		invParentTarget := animmath.IdentityTransform
		if targetBone.ParentIndex >= 0 {
			invParentTarget = r.Target.BindWorld(targetBone.ParentIndex).Invert()
		}

		localTarget := invParentTarget.Combine(localFromSource) // localFromSource * invParentTarget
		out.Bones[ti] = localTarget.Combine(targetWorld)        // targetWorld * localFromSource * invParentTarget
	}
	return out
}

func parentWorldOf(s *Skeleton, boneIndex int) animmath.Transform {
	b := s.Bones[boneIndex]
	if b.ParentIndex < 0 {
		return animmath.IdentityTransform
	}
	return s.BindWorld(b.ParentIndex)
}
