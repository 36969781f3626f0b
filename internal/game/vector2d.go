package game

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Vec2 is the simulation's 2D vector.
type Vec2 = mgl64.Vec2

// V builds a Vec2.
func V(x, y float64) Vec2 {
	return Vec2{x, y}
}

// unitOr normalizes v, returning fallback for a zero vector.
func unitOr(v, fallback Vec2) Vec2 {
	l := v.Len()
	if l == 0 {
		return fallback
	}
	return v.Mul(1 / l)
}

// overlaps reports whether two points lie within d of each other,
// compared on squared distance.
func overlaps(a, b Vec2, d float64) bool {
	return a.Sub(b).LenSqr() <= d*d
}

// signum is -1, 0 or 1 per component.
func signum(v Vec2) Vec2 {
	return Vec2{sign(v[0]), sign(v[1])}
}

func sign(f float64) float64 {
	switch {
	case f > 0:
		return 1
	case f < 0:
		return -1
	}
	return 0
}

// clampAbs limits |f| to max, keeping its sign.
func clampAbs(f, max float64) float64 {
	if math.Abs(f) > max {
		return math.Copysign(max, f)
	}
	return f
}

func clampInt(n, lo, hi int) int {
	if n < lo {
		return lo
	}
	if n > hi {
		return hi
	}
	return n
}
