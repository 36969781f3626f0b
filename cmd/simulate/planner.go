package main

import (
	"math"

	"github.com/playmatatu/snooker/internal/game"
)

type ballView struct {
	id     string
	colour game.BallColour
	pos    game.Vec2
}

// ballsInFrame lists the balls drawn in f.
func ballsInFrame(f game.Frame) []ballView {
	var out []ballView
	for _, d := range f.Drawables {
		if d.Kind != game.DrawCircle || d.Circle == nil {
			continue
		}
		if d.Layer != game.LayerBall && d.Layer != game.LayerWhiteBall {
			continue
		}
		out = append(out, ballView{id: d.ID, colour: game.BallColour(d.Colour), pos: d.Circle.Center})
	}
	return out
}

// planShot picks the pointer release that drives the white straight at the
// nearest legal target with the given speed.
func planShot(f game.Frame, st game.MatchState, cfg game.Config, speed float64) (game.Vec2, bool) {
	balls := ballsInFrame(f)
	var white *ballView
	for i := range balls {
		if balls[i].colour == game.ColourWhite {
			white = &balls[i]
		}
	}
	if white == nil {
		return game.Vec2{}, false
	}

	want := st.Nominated
	if want == game.ColourNone {
		want = game.ColourRed
	}
	target, ok := nearest(balls, white.pos, func(b ballView) bool { return b.colour == want })
	if !ok {
		target, ok = nearest(balls, white.pos, func(b ballView) bool { return b.colour != game.ColourWhite })
	}
	if !ok {
		return game.Vec2{}, false
	}

	dir := target.pos.Sub(white.pos)
	if dir.Len() == 0 {
		return game.Vec2{}, false
	}
	v := dir.Normalize().Mul(speed)
	return white.pos.Sub(v.Mul(cfg.SpeedDivisor)), true
}

// planNomination clicks the lowest-valued colour still on the table.
func planNomination(f game.Frame) (game.Vec2, bool) {
	best, found := ballView{}, false
	for _, b := range ballsInFrame(f) {
		if !b.colour.IsNominable() {
			continue
		}
		if !found || b.colour.Value() < best.colour.Value() {
			best, found = b, true
		}
	}
	return best.pos, found
}

func nearest(balls []ballView, from game.Vec2, keep func(ballView) bool) (ballView, bool) {
	best, bestDist, found := ballView{}, math.Inf(1), false
	for _, b := range balls {
		if !keep(b) {
			continue
		}
		if d := b.pos.Sub(from).LenSqr(); d < bestDist {
			best, bestDist, found = b, d, true
		}
	}
	return best, found
}
