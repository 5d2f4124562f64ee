package animgraph

import "github.com/phanxgames/animgraph/animmath"

// RootMotionFlags masks which components of a clip's root-bone animation
// are extracted into Pose.RootMotion (spec §4.3).
type RootMotionFlags uint8

const (
	RootMotionPositionXZ RootMotionFlags = 1 << iota
	RootMotionPositionY
	RootMotionRotation
)

// Keyframe is one sample of a bone channel curve at a point in time.
type Keyframe struct {
	Time      float64
	Transform animmath.Transform
}

// Channel is a per-bone curve: an ordered list of keyframes, interpolated
// linearly between neighbors (the loader is responsible for producing
// keyframes dense enough that this is visually equivalent to whatever
// curve representation the source asset used).
type Channel struct {
	BoneIndex int
	Keyframes []Keyframe
}

// eval samples c at time t, clamping to the first/last keyframe outside its
// range.
func (c *Channel) eval(t float64) animmath.Transform {
	n := len(c.Keyframes)
	if n == 0 {
		return animmath.IdentityTransform
	}
	if n == 1 || t <= c.Keyframes[0].Time {
		return c.Keyframes[0].Transform
	}
	if t >= c.Keyframes[n-1].Time {
		return c.Keyframes[n-1].Transform
	}
	lo := 0
	for i := 1; i < n; i++ {
		if c.Keyframes[i].Time > t {
			lo = i - 1
			break
		}
	}
	a, b := c.Keyframes[lo], c.Keyframes[lo+1]
	span := b.Time - a.Time
	alpha := float32(0)
	if span > 0 {
		alpha = float32((t - a.Time) / span)
	}
	return a.Transform.Lerp(b.Transform, alpha)
}

// EventKind distinguishes point events from the three phases of a
// continuous (duration > 0) event (spec §4.3).
type EventKind int

const (
	EventPoint EventKind = iota
	EventOnBegin
	EventOnEvent
	EventOnEnd
)

// EventTrack is one named keyframed event channel on a Clip.
type EventTrack struct {
	Name      string
	Keyframes []EventKeyframe
}

// EventKeyframe is a single scheduled event; Duration == 0 means a point
// event, otherwise the window [Time, Time+Duration] brackets OnBegin/Event/
// OnEnd (spec §4.3).
type EventKeyframe struct {
	Time     float64
	Duration float64
	Payload  any // spec SPEC_FULL §C.5: arbitrary host-defined event data
}

// NestedClip overlays another clip's sample over a specific time range of
// the parent, used by clips built from multiple source takes (spec §4.3).
type NestedClip struct {
	Clip       *Clip
	StartTime  float64
	EndTime    float64
}

// Clip is a loaded animation: per-bone channels, event tracks, optional
// nested clips and root-motion extraction flags (spec §6's clip-handle
// inputs).
type Clip struct {
	Name            string
	Length          float64
	FrameRate       float64
	Channels        []Channel
	Events          []EventTrack
	Nested          []NestedClip
	RootMotionFlags RootMotionFlags
	RootBoneIndex   int // -1 if the clip declares no root bone

	channelByBone map[int]*Channel
}

// prepare builds the bone->channel lookup used by the sampler; called once
// after a Clip is fully populated by the loader.
func (c *Clip) prepare() {
	c.channelByBone = make(map[int]*Channel, len(c.Channels))
	for i := range c.Channels {
		c.channelByBone[c.Channels[i].BoneIndex] = &c.Channels[i]
	}
}

func (c *Clip) channel(boneIndex int) *Channel {
	if c.channelByBone == nil {
		c.prepare()
	}
	return c.channelByBone[boneIndex]
}
