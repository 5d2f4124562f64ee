package animgraph

import "github.com/phanxgames/animgraph/animmath"

// evalMultiBlend2D resolves a MultiBlend2D node: walks the triangle table to
// find which triangle (x, y) falls in, computes barycentric weights, and
// blends the three corresponding clips. Points outside every triangle fall
// back to the nearest hull edge and a 2-clip blend (spec §4.4).
func evalMultiBlend2D(c *Context, n *Node, x, y float32, speed float32) *Pose {
	aux := n.MultiBlend2D
	out := c.poseCache.get()
	if aux == nil || len(aux.Clips) == 0 {
		return out
	}
	p := animmath.Vector2{X: x, Y: y}
	pts := blend2DPositions(aux.Clips)

	bucket := &c.bucket(n).MultiBlend
	skeleton := c.graph.BaseSkeleton
	c.addTraceEvent(n.ID, nil, x, y)

	for _, tri := range aux.Triangles {
		u, v, w, ok := barycentric(pts[tri.A], pts[tri.B], pts[tri.C], p)
		if !ok || u < -1e-4 || v < -1e-4 || w < -1e-4 {
			continue
		}
		return blendThreeClips(c, bucket, skeleton, aux, tri.A, tri.B, tri.C, u, v, w, speed, out)
	}

	// Outside every triangle: fall back to the closest hull edge (spec
	// §4.4).
	bestA, bestB, bestAlpha := hullFallback(aux.Triangles, pts, p)
	return blendTwoClips(c, bucket, skeleton, aux, bestA, bestB, bestAlpha, speed, out)
}

func blendThreeClips(c *Context, bucket *MultiBlendBucket, skeleton *Skeleton, aux *MultiBlend2DAux, a, b, d int, u, v, w float32, speed float32, out *Pose) *Pose {
	ta := continueClipTime2D(bucket, a, c.dt, speed)
	tb := continueClipTime2D(bucket, b, c.dt, speed)
	td := continueClipTime2D(bucket, d, c.dt, speed)

	pa := c.poseCache.get()
	pb := c.poseCache.get()
	pd := c.poseCache.get()
	sampleClip(c, aux.Clips[a].Clip, ta.prev, ta.now, true, speed, nil, skeleton, pa)
	sampleClip(c, aux.Clips[b].Clip, tb.prev, tb.now, true, speed, nil, skeleton, pb)
	sampleClip(c, aux.Clips[d].Clip, td.prev, td.now, true, speed, nil, skeleton, pd)

	for i := range out.Bones {
		ab := pa.Bones[i].Lerp(pb.Bones[i], safeAlpha(v, u+v))
		out.Bones[i] = ab.Lerp(pd.Bones[i], w)
	}
	out.RootMotion = pa.RootMotion
	out.Position = pa.Position*u + pb.Position*v + pd.Position*w
	out.Length = blend2DLength(aux)

	commitClipTime(bucket, 0, a, ta.now)
	commitClipTime(bucket, 1, b, tb.now)
	commitClipTime(bucket, 2, d, td.now)
	bucket.ActiveCount = 3
	bucket.LastUpdateFrame = c.inst.currentFrame
	return out
}

func blendTwoClips(c *Context, bucket *MultiBlendBucket, skeleton *Skeleton, aux *MultiBlend2DAux, a, b int, alpha float32, speed float32, out *Pose) *Pose {
	if a < 0 || b < 0 {
		return out
	}
	ta := continueClipTime2D(bucket, a, c.dt, speed)
	tb := continueClipTime2D(bucket, b, c.dt, speed)

	pa := c.poseCache.get()
	pb := c.poseCache.get()
	sampleClip(c, aux.Clips[a].Clip, ta.prev, ta.now, true, speed, nil, skeleton, pa)
	sampleClip(c, aux.Clips[b].Clip, tb.prev, tb.now, true, speed, nil, skeleton, pb)

	for i := range out.Bones {
		out.Bones[i] = pa.Bones[i].Lerp(pb.Bones[i], alpha)
	}
	out.RootMotion = pa.RootMotion.Lerp(pb.RootMotion, alpha)
	out.Position = pa.Position*(1-alpha) + pb.Position*alpha
	out.Length = blend2DLength(aux)

	commitClipTime(bucket, 0, a, ta.now)
	commitClipTime(bucket, 1, b, tb.now)
	bucket.ActiveCount = 2
	bucket.LastUpdateFrame = c.inst.currentFrame
	return out
}

func safeAlpha(v, denom float32) float32 {
	if denom < 1e-6 {
		return 0
	}
	return v / denom
}

func continueClipTime2D(bucket *MultiBlendBucket, clipIdx int, dt float64, speed float32) clipTimeSpan {
	return continueClipTime(bucket, clipIdx, dt, speed)
}

// hullFallback finds the closest edge of the triangle hull to p and returns
// the two clip indices at its endpoints plus the interpolation weight along
// that edge (spec §4.4).
func hullFallback(tris []Triangle, pts []animmath.Vector2, p animmath.Vector2) (int, int, float32) {
	bestDist := float32(-1)
	bestA, bestB, bestAlpha := -1, -1, float32(0)
	edges := hullEdges(tris)
	for _, e := range edges {
		a, b := pts[e.A], pts[e.B]
		ab := b.Sub(a)
		denom := ab.Dot(ab)
		t := float32(0)
		if denom > 1e-9 {
			t = clamp01(p.Sub(a).Dot(ab) / denom)
		}
		closest := animmath.Vector2{X: a.X + ab.X*t, Y: a.Y + ab.Y*t}
		d := closest.Sub(p).Length()
		if bestDist < 0 || d < bestDist {
			bestDist = d
			bestA, bestB, bestAlpha = e.A, e.B, t
		}
	}
	return bestA, bestB, bestAlpha
}

type hullEdge struct{ A, B int }

// hullEdges returns every triangle edge that is not shared by two triangles
// — the boundary of the triangulated region.
func hullEdges(tris []Triangle) []hullEdge {
	count := map[[2]int]int{}
	order := map[[2]int]hullEdge{}
	add := func(a, b int) {
		k := [2]int{a, b}
		if a > b {
			k = [2]int{b, a}
		}
		count[k]++
		order[k] = hullEdge{a, b}
	}
	for _, t := range tris {
		add(t.A, t.B)
		add(t.B, t.C)
		add(t.C, t.A)
	}
	var edges []hullEdge
	for k, n := range count {
		if n == 1 {
			edges = append(edges, order[k])
		}
	}
	return edges
}

func blend2DLength(aux *MultiBlend2DAux) float32 {
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
	return aux.length
}
