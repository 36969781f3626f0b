package game

import "fmt"

// Replace returns a pocketed ball to the table at its last resting point, or
// the nearest free point found by stepping along -Y and then -X one unit at
// a time. The search is bounded by MaxReplacementSteps; on exhaustion the
// ball stays pocketed and ErrNoFreePosition is returned.
func (t *Table) Replace(b *Ball) error {
	if b.OnTable() {
		return nil
	}
	origin := b.LastStationary
	if t.isFree(b, origin) {
		b.place(origin)
		return nil
	}

	limit := t.cfg.MaxReplacementSteps
	r := b.Radius
	steps := 0

	for k := 1.0; steps < limit; k++ {
		p := V(origin[0], origin[1]-k)
		if p[1]-r < t.Bounds.Min[1] {
			break
		}
		steps++
		if t.isFree(b, p) {
			b.place(p)
			return nil
		}
	}
	for k := 1.0; steps < limit; k++ {
		p := V(origin[0]-k, origin[1])
		if p[0]-r < t.Bounds.Min[0] {
			break
		}
		steps++
		if t.isFree(b, p) {
			b.place(p)
			return nil
		}
	}
	return fmt.Errorf("%w: %s after %d steps from (%.1f, %.1f)", ErrNoFreePosition, b.ID, steps, origin[0], origin[1])
}

// isFree reports whether b could rest at p without overlapping another
// on-table ball or sitting in a pocket.
func (t *Table) isFree(b *Ball, p Vec2) bool {
	if _, in := t.PocketAt(p); in {
		return false
	}
	threshold := t.cfg.Threshold()
	for el := t.balls.Front(); el != nil; el = el.Next() {
		other := el.Value
		if other == b || !other.OnTable() {
			continue
		}
		if overlaps(other.Position, p, threshold) {
			return false
		}
	}
	return true
}
