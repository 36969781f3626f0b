package game

import "math"

// resolveCollision applies the elastic response to a and b if they overlap
// within threshold. It returns true when a deflection was applied.
func resolveCollision(a, b *Ball, threshold float64) bool {
	if !a.OnTable() || !b.OnTable() {
		return false
	}
	if !overlaps(a.Position, b.Position, threshold) {
		return false
	}

	va, vb := a.Velocity, b.Velocity
	before := va.Len() + vb.Len()

	normal := unitOr(b.Position.Sub(a.Position), V(1, 0))
	sinkA := math.Abs(va.Dot(normal))
	sinkB := math.Abs(vb.Dot(normal))

	deflectA := normal.Mul(-sinkB)
	deflectB := normal.Mul(sinkA)

	finalA := va.Add(deflectA).Sub(deflectB)
	finalB := vb.Add(deflectB).Sub(deflectA)

	// Rescale so the summed speed is unchanged.
	if after := finalA.Len() + finalB.Len(); after > 0 {
		scale := before / after
		finalA = finalA.Mul(scale)
		finalB = finalB.Mul(scale)
	}

	for _, pair := range [...]struct {
		ball *Ball
		v    Vec2
	}{{a, finalA}, {b, finalB}} {
		if pair.ball.State == Stationary {
			pair.ball.LastStationary = pair.ball.Position
		}
		pair.ball.Velocity = pair.v
		pair.ball.State = Moving
		pair.ball.Position = pair.ball.Position.Add(signum(pair.v))
	}

	recordContact(a, b)
	recordContact(b, a)
	return true
}

func recordContact(white, other *Ball) {
	if white.Contact != nil {
		white.Contact.Record(other.Colour)
	}
}

// reflectBounds pushes a ball that crossed the table edge back inside, flush
// against the edge, with the offending velocity component pointing inward.
// Each axis is tested on its two hit-box points independently, so a corner
// hit corrects both axes.
func reflectBounds(b *Ball, bounds Bounds) bool {
	hit := false
	r := b.Radius
	for axis := 0; axis < 2; axis++ {
		lo, hi := bounds.Min[axis], bounds.Max[axis]
		switch {
		case b.Position[axis]-r < lo:
			b.Position[axis] = lo + r
			b.Velocity[axis] = math.Abs(b.Velocity[axis])
			hit = true
		case b.Position[axis]+r > hi:
			b.Position[axis] = hi - r
			b.Velocity[axis] = -math.Abs(b.Velocity[axis])
			hit = true
		}
	}
	return hit
}
