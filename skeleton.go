package animgraph

import "github.com/phanxgames/animgraph/animmath"

// Bone is one entry of a Skeleton: a name, a parent index (-1 for roots,
// grounded on Carmen-Shannon/oxy-go's skeleton extractor convention), and
// the bind-pose local transform.
type Bone struct {
	Name        string
	ParentIndex int
	BindLocal   animmath.Transform
}

// Skeleton is bone names, parent indices and bind local transforms, shared
// read-only by every Graph and Instance bound to it (spec §3, §6).
type Skeleton struct {
	Bones []Bone
}

// BoneIndex returns the index of the bone named name, or -1.
func (s *Skeleton) BoneIndex(name string) int {
	for i := range s.Bones {
		if s.Bones[i].Name == name {
			return i
		}
	}
	return -1
}

// BindWorld returns the world-space bind transform of bone i by walking its
// parent chain. Used by retargeting (§4.8); not cached, per spec §9's note
// that a straightforward recompute through an arena is acceptable.
func (s *Skeleton) BindWorld(i int) animmath.Transform {
	if i < 0 || i >= len(s.Bones) {
		return animmath.IdentityTransform
	}
	b := s.Bones[i]
	if b.ParentIndex < 0 {
		return b.BindLocal
	}
	return b.BindLocal.Combine(s.BindWorld(b.ParentIndex))
}
