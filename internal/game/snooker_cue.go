package game

// CueImpulse maps a pointer position to the white's launch velocity:
// (white - pointer) / divisor per axis, each axis clamped to its maximum.
func CueImpulse(cfg Config, white, pointer Vec2) Vec2 {
	d := white.Sub(pointer)
	return V(
		clampAbs(d[0]/cfg.SpeedDivisor, cfg.MaxCueSpeedX),
		clampAbs(d[1]/cfg.SpeedDivisor, cfg.MaxCueSpeedY),
	)
}

// Cue is the aiming preview shown while a shot is available.
type Cue struct {
	Visible bool    `json:"visible"`
	Start   Vec2    `json:"start"`
	End     Vec2    `json:"end"`
	Speed   Vec2    `json:"speed"`
	Pointer Vec2    `json:"pointer"`
	Length  float64 `json:"length"`
}

// Aim aligns the cue behind the white along the white-to-pointer direction
// and updates the projected speed.
func (c *Cue) Aim(cfg Config, white *Ball, pointer Vec2) {
	c.Pointer = pointer
	c.Length = cfg.CueLength()
	dir := unitOr(pointer.Sub(white.Position), V(-1, 0))
	c.Start = white.Position.Add(dir.Mul(cfg.BallDiameter() / 1.5))
	c.End = c.Start.Add(dir.Mul(c.Length))
	c.Speed = CueImpulse(cfg, white.Position, pointer)
}
