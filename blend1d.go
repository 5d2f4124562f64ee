package animgraph

import "sort"

// sortClip1DIndices returns indices into clips sorted by ascending X, used
// by evalMultiBlend1D to find, by a linear scan, the two neighboring clips
// for a given axis value (spec §4.1).
func sortClip1DIndices(clips []Blend1DClip) []int {
	idx := make([]int, len(clips))
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(a, b int) bool { return clips[idx[a]].X < clips[idx[b]].X })
	return idx
}

// evalMultiBlend1D resolves a MultiBlend1D node: clamps the axis input into
// the configured range, finds the two neighboring clips, samples each with
// its own per-instance time position continued from last frame, and blends
// with weights (1-alpha, alpha) (spec §4.4).
func evalMultiBlend1D(c *Context, n *Node, axis float32, speed float32) *Pose {
	aux := n.MultiBlend1D
	out := c.poseCache.get()
	if aux == nil || len(aux.Clips) == 0 {
		return out
	}

	bucket := &c.bucket(n).MultiBlend
	sorted := aux.sortedIdx

	lo, hi := sorted[0], sorted[len(sorted)-1]
	x := clampf(axis, aux.Clips[lo].X, aux.Clips[hi].X)

	loIdx, hiIdx := lo, lo
	for i := 0; i+1 < len(sorted); i++ {
		a, b := sorted[i], sorted[i+1]
		if x >= aux.Clips[a].X && x <= aux.Clips[b].X {
			loIdx, hiIdx = a, b
			break
		}
	}
	var alpha float32
	span := aux.Clips[hiIdx].X - aux.Clips[loIdx].X
	if span > 1e-5 {
		alpha = (x - aux.Clips[loIdx].X) / span
	}

	timeA := continueClipTime(bucket, loIdx, c.dt, speed)
	timeB := continueClipTime(bucket, hiIdx, c.dt, speed)

	poseA := c.poseCache.get()
	poseB := c.poseCache.get()
	skeleton := c.graph.BaseSkeleton

	sampleClip(c, aux.Clips[loIdx].Clip, timeA.prev, timeA.now, true, speed, nil, skeleton, poseA)
	sampleClip(c, aux.Clips[hiIdx].Clip, timeB.prev, timeB.now, true, speed, nil, skeleton, poseB)

	for i := range out.Bones {
		out.Bones[i] = poseA.Bones[i].Lerp(poseB.Bones[i], alpha)
	}
	out.RootMotion = poseA.RootMotion.Lerp(poseB.RootMotion, alpha)
	out.Position = poseA.Position*(1-alpha) + poseB.Position*alpha
	out.Length = multiBlendLength(aux, alpha, poseA.Length, poseB.Length)

	commitClipTime(bucket, 0, loIdx, timeA.now)
	commitClipTime(bucket, 1, hiIdx, timeB.now)
	bucket.ActiveCount = 2
	bucket.LastUpdateFrame = c.inst.currentFrame

	c.addTraceEvent(n.ID, nil, x, 0)
	return out
}

func clampf(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

type clipTimeSpan struct{ prev, now float64 }

// continueClipTime looks up clipIdx's previous time position in bucket (0 if
// not previously sampled this instance) and advances it by dt*speed,
// preserving independent per-clip speeds across frames (spec §4.4).
func continueClipTime(bucket *MultiBlendBucket, clipIdx int, dt float64, speed float32) clipTimeSpan {
	for i := range bucket.Samples {
		if bucket.Samples[i].ClipIndex == clipIdx && bucket.LastUpdateFrame != 0 {
			prev := bucket.Samples[i].TimePosition
			return clipTimeSpan{prev: prev, now: prev + dt*float64(speed)}
		}
	}
	return clipTimeSpan{prev: 0, now: dt * float64(speed)}
}

func commitClipTime(bucket *MultiBlendBucket, slot, clipIdx int, t float64) {
	if slot < 0 || slot >= len(bucket.Samples) {
		return
	}
	bucket.Samples[slot] = ClipSample{ClipIndex: clipIdx, TimePosition: t}
}

// multiBlendLength computes a shared effective length across the blended
// clips so looped playback is stable regardless of which clips are mixed
// (spec §4.4's "computes a shared effective length", §4.1's lazily-cached
// total length).
func multiBlendLength(aux *MultiBlend1DAux, alpha, lenA, lenB float32) float32 {
	if !aux.lengthSet {
		var total float32
		for _, clip := range aux.Clips {
			if clip.Clip != nil {
				total += float32(clip.Clip.Length)
			}
		}
		if len(aux.Clips) > 0 {
			total /= float32(len(aux.Clips))
		}
		aux.length = total
		aux.lengthSet = true
	}
	if aux.length > 0 {
		return aux.length
	}
	return lenA*(1-alpha) + lenB*alpha
}
