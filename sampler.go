package animgraph

import "github.com/phanxgames/animgraph/animmath"

// BoneBlendMode selects how a sampled bone transform is combined into the
// destination pose (spec §4.3).
type BoneBlendMode int

const (
	BlendOverride BoneBlendMode = iota
	BlendWeighted
	BlendAdditive
	BlendAdditiveBlend
)

// sampleClip maps newTime into the clip's [0, length] domain (wrapping when
// looping, clamping otherwise), evaluates every channel, applies root-motion
// extraction, and writes the resulting pose into out (spec §4.3).
//
// prevTime/newTime are the caller-integrated, unwrapped playback positions
// (newTime = prevTime + dt*speed); sampleClip is responsible only for
// mapping them into clip-local time and handling the loop seam.
func sampleClip(c *Context, clip *Clip, prevTime, newTime float64, loop bool, speed float32, bucket *AnimationBucket, skeleton *Skeleton, out *Pose) {
	if clip == nil || skeleton == nil {
		return
	}
	length := clip.Length
	if length <= 0 {
		length = 1
	}

	pos := wrapOrClamp(newTime, length, loop)
	out.Position = float32(pos)
	out.Length = float32(length)

	for i := range out.Bones {
		ch := clip.channel(i)
		if ch == nil {
			continue // bone falls back to the bind pose already written by Pose.reset
		}
		out.Bones[i] = ch.eval(pos)
	}

	sampleNested(clip, pos, out)

	if clip.RootMotionFlags != 0 && clip.RootBoneIndex >= 0 {
		extractRootMotion(clip, prevTime, newTime, pos, length, loop, skeleton, out)
	}

	emitEvents(c, clip, prevTime, newTime, loop, length)
}

// wrapOrClamp maps t into [0, length]: wrapping (modulo) when loop is set,
// clamping to the boundary otherwise (spec §4.3).
func wrapOrClamp(t, length float64, loop bool) float64 {
	if !loop {
		if t < 0 {
			return 0
		}
		if t > length {
			return length
		}
		return t
	}
	m := mod(t, length)
	if m < 0 {
		m += length
	}
	return m
}

func mod(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	n := a / b
	return a - float64(int64(n))*b
}

// sampleNested overlays a clip's nested sub-clips whose [StartTime, EndTime]
// window contains pos, using a bone-write bitmask so a later nested clip
// skips bones an earlier nested clip already wrote (spec §4.3).
func sampleNested(clip *Clip, pos float64, out *Pose) {
	if len(clip.Nested) == 0 {
		return
	}
	written := make([]bool, len(out.Bones))
	for _, nested := range clip.Nested {
		if pos < nested.StartTime || pos > nested.EndTime {
			continue
		}
		local := pos - nested.StartTime
		tmp := &Pose{Bones: make([]animmath.Transform, len(out.Bones))}
		copy(tmp.Bones, out.Bones)
		for i := range tmp.Bones {
			ch := nested.Clip.channel(i)
			if ch == nil || written[i] {
				continue
			}
			tmp.Bones[i] = ch.eval(local)
			written[i] = true
		}
		copy(out.Bones, tmp.Bones)
	}
}

// extractRootMotion evaluates the root bone at the previous and current
// positions (and, across a loop seam, also at the clip boundaries) to
// preserve continuous motion, masks the result by clip.RootMotionFlags,
// writes it to out.RootMotion, and removes the extracted components from
// the root bone's local transform (spec §4.3).
func extractRootMotion(clip *Clip, prevTime, newTime, pos, length float64, loop bool, skeleton *Skeleton, out *Pose) {
	root := clip.RootBoneIndex
	ch := clip.channel(root)
	if ch == nil {
		return
	}

	prevPos := wrapOrClamp(prevTime, length, loop)
	var delta animmath.Transform
	if loop && newTime-prevTime > 0 && crossesSeam(prevTime, newTime, length) {
		atEnd := ch.eval(length)
		atBegin := ch.eval(0)
		before := ch.eval(prevPos)
		now := ch.eval(pos)
		// end - before + now - begin, spec §4.3's loop-seam continuity rule.
		deltaTrans := atEnd.Translation.Sub(before.Translation).Add(now.Translation.Sub(atBegin.Translation))
		delta.Translation = deltaTrans
		delta.Rotation = atEnd.Rotation.Conjugate().Multiply(before.Rotation).Conjugate().
			Multiply(now.Rotation.Conjugate().Multiply(atBegin.Rotation).Conjugate())
		delta.Scale = animmath.One3
	} else {
		before := ch.eval(prevPos)
		now := ch.eval(pos)
		delta.Translation = now.Translation.Sub(before.Translation)
		delta.Rotation = before.Rotation.Conjugate().Multiply(now.Rotation)
		delta.Scale = animmath.One3
	}

	masked := animmath.IdentityTransform
	if clip.RootMotionFlags&RootMotionPositionXZ != 0 {
		masked.Translation.X = delta.Translation.X
		masked.Translation.Z = delta.Translation.Z
	}
	if clip.RootMotionFlags&RootMotionPositionY != 0 {
		masked.Translation.Y = delta.Translation.Y
	}
	if clip.RootMotionFlags&RootMotionRotation != 0 {
		masked.Rotation = delta.Rotation
	}

	// Convert from the root bone's local space to instance space by walking
	// up the bind hierarchy (spec §4.3).
	parentWorld := animmath.IdentityTransform
	if b := skeleton.Bones[root]; b.ParentIndex >= 0 {
		parentWorld = skeleton.BindWorld(b.ParentIndex)
	}
	out.RootMotion = masked.Combine(parentWorld)

	// Remove the extracted components from the root bone's own local
	// transform so they aren't double-applied to the skeletal pose.
	rootLocal := out.Bones[root]
	if clip.RootMotionFlags&RootMotionPositionXZ != 0 {
		rootLocal.Translation.X = 0
		rootLocal.Translation.Z = 0
	}
	if clip.RootMotionFlags&RootMotionPositionY != 0 {
		rootLocal.Translation.Y = 0
	}
	if clip.RootMotionFlags&RootMotionRotation != 0 {
		rootLocal.Rotation = animmath.IdentityQuat
	}
	out.Bones[root] = rootLocal
}

func crossesSeam(prevTime, newTime, length float64) bool {
	return int64(prevTime/length) != int64(newTime/length)
}

// blendBone combines src into the bone transform dst using the given mode and
// weight (spec §4.3's four bone blend modes).
func blendBone(dst *animmath.Transform, src animmath.Transform, mode BoneBlendMode, weight float32, bind animmath.Transform) {
	switch mode {
	case BlendOverride:
		*dst = src
	case BlendWeighted:
		*dst = dst.Lerp(src, weight)
	case BlendAdditive:
		*dst = dst.AddScaled(src, weight)
	case BlendAdditiveBlend:
		delta := animmath.Transform{
			Translation: src.Translation.Sub(bind.Translation),
			Rotation:    bind.Rotation.Conjugate().Multiply(src.Rotation),
			Scale:       src.Scale,
		}
		*dst = dst.AddScaled(delta, weight)
	}
}
