package game

// TickReport summarises one integrator tick.
type TickReport struct {
	// Pocketed lists balls captured this tick in capture order.
	Pocketed []*Ball
	// Collisions counts ball-ball deflections.
	Collisions int
	// Cushions counts boundary reflections.
	Cushions int
	// Moving is true if any ball is still Moving after the tick.
	Moving bool
}

// Integrator advances every ball on a table by whole ticks.
type Integrator struct {
	table     *Table
	subSteps  int
	friction  float64
	stopSpeed float64
	threshold float64
}

// NewIntegrator builds an integrator using the table's configuration.
func NewIntegrator(t *Table) *Integrator {
	cfg := t.Config()
	return &Integrator{
		table:     t,
		subSteps:  cfg.SubSteps,
		friction:  cfg.FrictionRate,
		stopSpeed: cfg.StopSpeed,
		threshold: cfg.Threshold(),
	}
}

// Tick advances the table by one tick.
//
// Each sub-step first translates every moving ball by v/N, then runs pocket
// detection, then resolves every unordered pair with at least one moving
// participant. No ball sees another's partial update inside a sub-step.
// After the last sub-step every ball that moved is reflected off the
// boundary once and slowed by friction.
func (in *Integrator) Tick() TickReport {
	var report TickReport
	balls := in.table.Balls()

	// Slow balls come to rest before any translation.
	for _, b := range balls {
		if b.State == Moving && b.Speed() <= in.stopSpeed {
			b.stop()
		}
	}

	active := make(map[*Ball]bool, len(balls))
	n := float64(in.subSteps)
	for step := 0; step < in.subSteps; step++ {
		for _, b := range balls {
			if b.State != Moving {
				continue
			}
			active[b] = true
			b.Position = b.Position.Add(b.Velocity.Mul(1 / n))
		}

		for _, b := range balls {
			if b.State != Moving {
				continue
			}
			if _, ok := in.table.PocketAt(b.Position); ok {
				b.pocket()
				report.Pocketed = append(report.Pocketed, b)
			}
		}

		for i := 0; i < len(balls); i++ {
			a := balls[i]
			if !a.OnTable() {
				continue
			}
			for j := i + 1; j < len(balls); j++ {
				b := balls[j]
				if !b.OnTable() || (a.State != Moving && b.State != Moving) {
					continue
				}
				if resolveCollision(a, b, in.threshold) {
					report.Collisions++
					active[a] = true
					active[b] = true
				}
			}
		}
	}

	for _, b := range balls {
		if !active[b] || !b.OnTable() {
			continue
		}
		if reflectBounds(b, in.table.Bounds) {
			report.Cushions++
		}
		b.Velocity = b.Velocity.Mul(1 - in.friction)
		if b.Speed() <= in.stopSpeed {
			b.stop()
		}
	}

	report.Moving = in.table.AnyMoving()
	return report
}
