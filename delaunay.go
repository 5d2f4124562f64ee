package animgraph

import "github.com/phanxgames/animgraph/animmath"

// Triangle is one face of a MultiBlend2D node's triangulated clip-position
// table: three indices into the node's clip list (spec §4.1/§4.4).
type Triangle struct {
	A, B, C int
}

// triangulate2D computes a Delaunay triangulation of pts (clip X/Y
// positions), falling back to a synthetic fan when all points are collinear
// (spec §4.1). Fewer than 3 points yield no triangles; evalMultiBlend2D then
// finds no triangle or hull edge and returns the bind pose. This is a simple O(n^2) Bowyer-Watson variant sized for
// editor-authored blend spaces (a handful to a few dozen clips), not a
// general-purpose large-scale triangulator.
func triangulate2D(pts []animmath.Vector2) []Triangle {
	n := len(pts)
	if n < 3 {
		return nil
	}
	if collinear(pts) {
		return fanTriangles(pts)
	}

	superTri, superPts := superTriangle(pts)
	triangles := []superTriangleFace{{superTri[0], superTri[1], superTri[2]}}
	all := append(append([]animmath.Vector2(nil), pts...), superPts...)

	for i := 0; i < n; i++ {
		triangles = insertPoint(triangles, all, i)
	}

	var result []Triangle
	for _, tri := range triangles {
		if tri.a >= n || tri.b >= n || tri.c >= n {
			continue // discard triangles touching the synthetic super-triangle
		}
		result = append(result, Triangle{tri.a, tri.b, tri.c})
	}
	if len(result) == 0 {
		return fanTriangles(pts)
	}
	return result
}

type superTriangleFace struct {
	a, b, c int
}

// collinear reports whether every point in pts lies on a single line.
func collinear(pts []animmath.Vector2) bool {
	if len(pts) < 3 {
		return true
	}
	a, b := pts[0], pts[1]
	ab := b.Sub(a)
	for i := 2; i < len(pts); i++ {
		ac := pts[i].Sub(a)
		if absf32(ab.Cross(ac)) > 1e-6 {
			return false
		}
	}
	return true
}

func absf32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}

// fanTriangles builds a degenerate 1D-style fan so evaluation still has
// something to walk, per spec §4.1's "degenerate inputs are replaced by
// dummy triangles".
func fanTriangles(pts []animmath.Vector2) []Triangle {
	var result []Triangle
	for i := 1; i+1 < len(pts); i++ {
		result = append(result, Triangle{0, i, i + 1})
	}
	if len(result) == 0 && len(pts) >= 2 {
		result = append(result, Triangle{0, 0, len(pts) - 1})
	}
	return result
}

// superTriangle returns a triangle large enough to contain every point in
// pts, plus the three synthetic vertex positions (appended after the real
// points so callers can tell them apart by index).
func superTriangle(pts []animmath.Vector2) ([3]int, []animmath.Vector2) {
	minX, minY := pts[0].X, pts[0].Y
	maxX, maxY := pts[0].X, pts[0].Y
	for _, p := range pts {
		if p.X < minX {
			minX = p.X
		}
		if p.X > maxX {
			maxX = p.X
		}
		if p.Y < minY {
			minY = p.Y
		}
		if p.Y > maxY {
			maxY = p.Y
		}
	}
	dx, dy := maxX-minX, maxY-minY
	delta := dx
	if dy > delta {
		delta = dy
	}
	if delta <= 0 {
		delta = 1
	}
	midX, midY := (minX+maxX)/2, (minY+maxY)/2

	super := []animmath.Vector2{
		{X: midX - 20*delta, Y: midY - delta},
		{X: midX, Y: midY + 20*delta},
		{X: midX + 20*delta, Y: midY - delta},
	}
	n := len(pts)
	return [3]int{n, n + 1, n + 2}, super
}

// insertPoint performs one Bowyer-Watson insertion step of point index idx
// into the current triangle set.
func insertPoint(triangles []superTriangleFace, pts []animmath.Vector2, idx int) []superTriangleFace {
	p := pts[idx]
	var bad []superTriangleFace
	var kept []superTriangleFace
	for _, tri := range triangles {
		if inCircumcircle(pts[tri.a], pts[tri.b], pts[tri.c], p) {
			bad = append(bad, tri)
		} else {
			kept = append(kept, tri)
		}
	}

	edgeCount := map[[2]int]int{}
	edgeOf := func(a, b int) [2]int {
		if a > b {
			a, b = b, a
		}
		return [2]int{a, b}
	}
	for _, tri := range bad {
		edgeCount[edgeOf(tri.a, tri.b)]++
		edgeCount[edgeOf(tri.b, tri.c)]++
		edgeCount[edgeOf(tri.c, tri.a)]++
	}
	for edge, count := range edgeCount {
		if count == 1 {
			kept = append(kept, superTriangleFace{edge[0], edge[1], idx})
		}
	}
	return kept
}

// inCircumcircle reports whether point d lies inside the circumcircle of
// triangle (a,b,c).
func inCircumcircle(a, b, c, d animmath.Vector2) bool {
	ax, ay := a.X-d.X, a.Y-d.Y
	bx, by := b.X-d.X, b.Y-d.Y
	cx, cy := c.X-d.X, c.Y-d.Y

	det := (ax*ax+ay*ay)*(bx*cy-cx*by) -
		(bx*bx+by*by)*(ax*cy-cx*ay) +
		(cx*cx+cy*cy)*(ax*by-bx*ay)

	// Orientation-dependent sign: positive if a,b,c wind counter-clockwise.
	orient := (b.X-a.X)*(c.Y-a.Y) - (c.X-a.X)*(b.Y-a.Y)
	if orient < 0 {
		det = -det
	}
	return det > 0
}

// barycentric computes the barycentric weights of point p within triangle
// (a,b,c). Returns ok=false if the triangle is degenerate.
func barycentric(a, b, c, p animmath.Vector2) (u, v, w float32, ok bool) {
	v0 := b.Sub(a)
	v1 := c.Sub(a)
	v2 := p.Sub(a)
	d00 := v0.Dot(v0)
	d01 := v0.Dot(v1)
	d11 := v1.Dot(v1)
	d20 := v2.Dot(v0)
	d21 := v2.Dot(v1)
	denom := d00*d11 - d01*d01
	if absf32(denom) < 1e-9 {
		return 0, 0, 0, false
	}
	vv := (d11*d20 - d01*d21) / denom
	ww := (d00*d21 - d01*d20) / denom
	uu := 1 - vv - ww
	return uu, vv, ww, true
}
