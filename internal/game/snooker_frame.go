package game

import (
	"fmt"
	"sort"
)

// DrawKind tags the shape carried by a Drawable.
type DrawKind string

const (
	DrawCircle    DrawKind = "circle"
	DrawRectangle DrawKind = "rectangle"
	DrawLine      DrawKind = "line"
	DrawText      DrawKind = "text"
)

// CircleShape is a filled circle: balls and pockets.
type CircleShape struct {
	Center Vec2    `json:"center"`
	Radius float64 `json:"radius"`
}

// RectShape is an axis-aligned rectangle given by two corners.
type RectShape struct {
	Min Vec2 `json:"min"`
	Max Vec2 `json:"max"`
}

// LineShape is a segment drawn with the given thickness.
type LineShape struct {
	From      Vec2    `json:"from"`
	To        Vec2    `json:"to"`
	Thickness float64 `json:"thickness"`
}

// TextShape is a label anchored at Position.
type TextShape struct {
	Text     string  `json:"text"`
	Position Vec2    `json:"position"`
	Size     float64 `json:"size"`
}

// Drawable is one primitive for the display. Exactly one shape pointer is
// set, matching Kind.
type Drawable struct {
	Kind   DrawKind     `json:"kind"`
	Layer  int          `json:"layer"`
	Colour string       `json:"colour"`
	ID     string       `json:"id,omitempty"`
	Circle *CircleShape `json:"circle,omitempty"`
	Rect   *RectShape   `json:"rect,omitempty"`
	Line   *LineShape   `json:"line,omitempty"`
	Text   *TextShape   `json:"text,omitempty"`
}

// Frame is everything the display needs for one tick.
type Frame struct {
	Tick        uint64     `json:"tick"`
	Phase       Phase      `json:"phase"`
	Drawables   []Drawable `json:"drawables"`
	Fingerprint uint64     `json:"fingerprint"`
}

// Label text shown to players.
const (
	GameOverMessage = "The game has ended!"
)

// BuildFrame renders the match into a layer-sorted drawable list. Lower
// layers come first; equal layers keep insertion order.
func BuildFrame(m *Match, tick uint64) Frame {
	t := m.Table()
	cfg := t.Config()
	var ds []Drawable

	ds = append(ds, Drawable{
		Kind: DrawRectangle, Layer: LayerTable, Colour: "DARKGREEN",
		Rect: &RectShape{Min: t.Inner.Min, Max: t.Inner.Max},
	})

	current := m.Current()
	for i, p := range m.Players() {
		colour := "WHITE"
		if i == current {
			colour = "YELLOW"
		}
		pos := V(cfg.Width/8, cfg.Height*0.1)
		if i == 1 {
			pos = V(3*cfg.Width/4, cfg.Height*0.1)
		}
		ds = append(ds, Drawable{
			Kind: DrawText, Layer: LayerPlayerText, Colour: colour,
			Text: &TextShape{Text: fmt.Sprintf("%s: %d", p.Name, p.Score), Position: pos, Size: 30},
		})
	}

	for _, p := range t.Pockets {
		ds = append(ds, Drawable{
			Kind: DrawCircle, Layer: LayerPocket, Colour: "BLACK",
			ID:     fmt.Sprintf("pocket-%d", p.ID),
			Circle: &CircleShape{Center: p.Position, Radius: p.CaptureRadius / 2},
		})
	}

	ds = append(ds, Drawable{
		Kind: DrawLine, Layer: LayerBaulk, Colour: "LIGHTGREY",
		Line: &LineShape{From: V(t.BaulkX, t.Bounds.Min[1]), To: V(t.BaulkX, t.Bounds.Max[1]), Thickness: 1},
	})

	lo, hi := t.Bounds.Min, t.Bounds.Max
	for _, edge := range [][2]Vec2{
		{V(lo[0], lo[1]), V(hi[0], lo[1])},
		{V(lo[0], lo[1]), V(lo[0], hi[1])},
		{V(hi[0], hi[1]), V(lo[0], hi[1])},
		{V(hi[0], hi[1]), V(hi[0], lo[1])},
	} {
		ds = append(ds, Drawable{
			Kind: DrawLine, Layer: LayerBound, Colour: "BROWN",
			Line: &LineShape{From: edge[0], To: edge[1], Thickness: cfg.BoundThickness},
		})
	}

	for _, b := range t.OnTable() {
		layer := LayerBall
		if b.IsWhite() {
			layer = LayerWhiteBall
		}
		ds = append(ds, Drawable{
			Kind: DrawCircle, Layer: layer, Colour: string(b.Colour), ID: b.ID,
			Circle: &CircleShape{Center: b.Position, Radius: b.Radius},
		})
	}

	if cue := m.Cue(); cue.Visible {
		ds = append(ds, Drawable{
			Kind: DrawLine, Layer: LayerCue, Colour: "ORANGE", ID: "cue",
			Line: &LineShape{From: cue.Start, To: cue.End, Thickness: CueThickness},
		})
	}

	ds = append(ds, infoLabels(m, cfg)...)

	sort.SliceStable(ds, func(i, j int) bool { return ds[i].Layer < ds[j].Layer })

	return Frame{
		Tick:        tick,
		Phase:       m.Phase(),
		Drawables:   ds,
		Fingerprint: t.Fingerprint(),
	}
}

func infoLabels(m *Match, cfg Config) []Drawable {
	nominated := m.Nominated()
	colour := string(nominated)
	switch nominated {
	case ColourNone:
		colour = "WHITE"
	case ColourBlack:
		colour = "GREY"
	}
	speed := m.Cue().Speed
	labels := []Drawable{
		{
			Kind: DrawText, Layer: LayerInfoText, Colour: colour, ID: "nominated",
			Text: &TextShape{
				Text:     fmt.Sprintf("Selected Ball Colour: %s", nominated),
				Position: V(cfg.Width*0.35, cfg.Height*0.1),
				Size:     20,
			},
		},
		{
			Kind: DrawText, Layer: LayerInfoText, Colour: "WHITE", ID: "speed",
			Text: &TextShape{
				Text:     fmt.Sprintf("Speed X: %.2f Y: %.2f", speed[0], speed[1]),
				Position: V(cfg.Width*0.35, cfg.Height*0.05),
				Size:     20,
			},
		},
	}
	if m.Phase() == PhaseGameOver {
		labels = append(labels, Drawable{
			Kind: DrawText, Layer: LayerInfoText, Colour: "YELLOW", ID: "game-over",
			Text: &TextShape{Text: GameOverMessage, Position: V(cfg.Width/3.6, cfg.Height*0.9), Size: 30},
		})
	}
	return labels
}
