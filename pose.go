package animgraph

import "github.com/phanxgames/animgraph/animmath"

// Pose is the value every sampling and blend node in §4.3-§4.7 produces and
// consumes: a local-space transform per base-skeleton bone, a separate
// root-motion delta, and the {position, length} of whatever clip produced it
// (so downstream multi-blend nodes know how to average playback time,
// GLOSSARY "Pose").
type Pose struct {
	Bones      []animmath.Transform
	RootMotion animmath.Transform
	Position   float32
	Length     float32
}

// reset clears p back to bind pose / zero root motion without reallocating
// its Bones slice, so pooled poses can be reused tick to tick.
func (p *Pose) reset(skeleton *Skeleton) {
	if cap(p.Bones) < len(skeleton.Bones) {
		p.Bones = make([]animmath.Transform, len(skeleton.Bones))
	}
	p.Bones = p.Bones[:len(skeleton.Bones)]
	for i, b := range skeleton.Bones {
		p.Bones[i] = b.BindLocal
	}
	p.RootMotion = animmath.IdentityTransform
	p.Position = 0
	p.Length = 0
}

// normalizeRotations renormalizes every bone's rotation quaternion. Additive
// blends accumulated through a tick can drift off unit length (spec §4.2
// step 4, §8's `|q| ∈ [1-1e-4, 1+1e-4]` invariant).
func (p *Pose) normalizeRotations() {
	for i := range p.Bones {
		p.Bones[i].Rotation = p.Bones[i].Rotation.Normalize()
	}
}

// clone makes an independent deep copy of p (used where a node must hold
// onto a pose across a blend that also mutates its inputs in place).
func (p *Pose) clone() *Pose {
	c := &Pose{
		Bones:      append([]animmath.Transform(nil), p.Bones...),
		RootMotion: p.RootMotion,
		Position:   p.Position,
		Length:     p.Length,
	}
	return c
}

// PoseCache is a pool of pre-allocated Pose buffers sized to the base
// skeleton's bone count, handed out by index — cheaper than allocating a
// fresh Pose per resolved box every tick (spec §4.2).
type PoseCache struct {
	skeleton *Skeleton
	pool     []*Pose
	used     int
}

// newPoseCache builds a PoseCache bound to skeleton.
func newPoseCache(skeleton *Skeleton) *PoseCache {
	return &PoseCache{skeleton: skeleton}
}

// reset returns every previously handed-out Pose to the free list; called at
// the start of every tick (spec §4.2 step 2).
func (c *PoseCache) reset() {
	c.used = 0
}

// get returns a Pose reset to bind pose, extending the pool if every
// existing buffer is currently checked out.
func (c *PoseCache) get() *Pose {
	if c.used < len(c.pool) {
		p := c.pool[c.used]
		c.used++
		p.reset(c.skeleton)
		return p
	}
	p := &Pose{}
	p.reset(c.skeleton)
	c.pool = append(c.pool, p)
	c.used++
	return p
}
