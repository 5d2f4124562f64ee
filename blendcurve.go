package animgraph

import (
	"math"

	"github.com/tanema/gween/ease"
)

// BlendCurveKind names one of the 14 alpha-blend curves a Blend Poses
// crossfade or state-machine transition can use (spec §4.5). The curve
// function itself is a pure map [0,1] -> [0,1], saturated on output.
type BlendCurveKind int

const (
	CurveLinear BlendCurveKind = iota
	CurveCubic
	CurveHermiteCubic
	CurveSinusoidal
	CurveQuadraticInOut
	CurveCubicInOut
	CurveQuarticInOut
	CurveQuinticInOut
	CurveCircularIn
	CurveCircularOut
	CurveCircularInOut
	CurveExpIn
	CurveExpOut
	CurveExpInOut
)

// curveFuncs maps each BlendCurveKind to an ease.TweenFunc. Where the
// teacher's gween/ease package already names the exact curve, it is reused
// directly; the three curves original_source's AlphaBlend.h names that
// gween/ease has no equivalent for (Cubic, HermiteCubic, Sinusoidal) are
// hand-written below in the same TweenFunc shape for uniform dispatch.
var curveFuncs = map[BlendCurveKind]ease.TweenFunc{
	CurveLinear:         ease.Linear,
	CurveCubic:          cubicEaseIn,
	CurveHermiteCubic:   hermiteCubic,
	CurveSinusoidal:     sinusoidal,
	CurveQuadraticInOut: ease.InOutQuad,
	CurveCubicInOut:     ease.InOutCubic,
	CurveQuarticInOut:   ease.InOutQuart,
	CurveQuinticInOut:   ease.InOutQuint,
	CurveCircularIn:     ease.InCirc,
	CurveCircularOut:    ease.OutCirc,
	CurveCircularInOut:  ease.InOutCirc,
	CurveExpIn:          ease.InExpo,
	CurveExpOut:         ease.OutExpo,
	CurveExpInOut:       ease.InOutExpo,
}

// cubicEaseIn is FlaxEngine AlphaBlend.h's plain "Cubic" mode: t^3, distinct
// from the symmetric CubicInOut curve.
func cubicEaseIn(t, b, c, d float32) float32 {
	t /= d
	return b + c*t*t*t
}

// hermiteCubic is the classic 3t^2-2t^3 smoothstep, FlaxEngine's
// "HermiteCubic" mode.
func hermiteCubic(t, b, c, d float32) float32 {
	t /= d
	return b + c*(t*t*(3-2*t))
}

// sinusoidal is FlaxEngine's "Sinusoidal" mode: a half-cosine ease.
func sinusoidal(t, b, c, d float32) float32 {
	t /= d
	return b + c*float32(0.5-0.5*math.Cos(float64(t)*math.Pi))
}

// alphaBlend evaluates curve at alpha (expected in [0,1]) and saturates the
// result to [0,1] (spec §4.5's "saturated on output").
func alphaBlend(curve BlendCurveKind, alpha float32) float32 {
	fn, ok := curveFuncs[curve]
	if !ok {
		fn = ease.Linear
	}
	v := fn(clamp01(alpha), 0, 1, 1)
	return clamp01(v)
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
