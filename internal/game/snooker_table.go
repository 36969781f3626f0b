package game

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/elliotchance/orderedmap/v2"
	"github.com/zeebo/xxh3"
)

// Bounds is the playable rectangle ball edges must stay within.
type Bounds struct {
	Min Vec2 `json:"min"`
	Max Vec2 `json:"max"`
}

// Pocket is a capture region.
type Pocket struct {
	ID            int     `json:"id"`
	Position      Vec2    `json:"position"`
	CaptureRadius float64 `json:"capture_radius"`
}

// Contains reports whether a point lies within the capture radius.
func (p Pocket) Contains(pt Vec2) bool {
	return overlaps(p.Position, pt, p.CaptureRadius)
}

// BallSpec describes a ball to place at setup.
type BallSpec struct {
	ID       string
	Kind     BallKind
	Colour   BallColour
	Position Vec2
}

// Table owns the ball registry and the fixed geometry.
type Table struct {
	cfg Config

	// Inner is the table surface drawn under the balls.
	Inner   Bounds   `json:"inner"`
	Bounds  Bounds   `json:"bounds"`
	Pockets []Pocket `json:"pockets"`
	BaulkX  float64  `json:"baulk_x"`

	diameter float64
	balls    *orderedmap.OrderedMap[string, *Ball]
	white    *Ball
}

// NewTable builds the table geometry from cfg and places the given balls.
// Exactly one white is required and ball IDs must be unique.
func NewTable(cfg Config, specs []BallSpec) (*Table, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	t := &Table{
		cfg:      cfg,
		diameter: cfg.BallDiameter(),
		balls:    orderedmap.NewOrderedMap[string, *Ball](),
	}
	t.layoutGeometry()

	for _, spec := range specs {
		if spec.ID == "" {
			return nil, fmt.Errorf("%w: empty ball id", ErrInvalidConfig)
		}
		if _, exists := t.balls.Get(spec.ID); exists {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateBall, spec.ID)
		}
		if spec.Kind == KindWhite && t.white != nil {
			return nil, fmt.Errorf("%w: found a second white %q", ErrWhiteBall, spec.ID)
		}
		if err := checkSpec(spec); err != nil {
			return nil, err
		}
		b := newBall(spec, t.diameter/2)
		t.balls.Set(spec.ID, b)
		if b.IsWhite() {
			t.white = b
		}
	}
	if t.white == nil {
		return nil, ErrWhiteBall
	}
	return t, nil
}

func checkSpec(spec BallSpec) error {
	switch spec.Kind {
	case KindWhite:
		if spec.Colour != ColourWhite {
			return fmt.Errorf("%w: white ball %q has colour %s", ErrInvalidConfig, spec.ID, spec.Colour)
		}
	case KindRed:
		if spec.Colour != ColourRed {
			return fmt.Errorf("%w: red ball %q has colour %s", ErrInvalidConfig, spec.ID, spec.Colour)
		}
	case KindColour:
		if !spec.Colour.IsNominable() {
			return fmt.Errorf("%w: colour ball %q has colour %s", ErrInvalidConfig, spec.ID, spec.Colour)
		}
	default:
		return fmt.Errorf("%w: ball %q has unknown kind %q", ErrInvalidConfig, spec.ID, spec.Kind)
	}
	return nil
}

// NewStandardTable builds a table with the standard opening layout.
func NewStandardTable(cfg Config) (*Table, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return NewTable(cfg, StandardLayout(cfg))
}

func (t *Table) layoutGeometry() {
	c := t.cfg
	t.Inner = Bounds{
		Min: V(c.Indent, c.Indent),
		Max: V(c.Width-c.Indent, c.Height-c.Indent),
	}
	half := c.BoundThickness / 2
	t.Bounds = Bounds{
		Min: t.Inner.Min.Add(V(half, half)),
		Max: t.Inner.Max.Sub(V(half, half)),
	}

	x1, y1 := t.Bounds.Min[0], t.Bounds.Min[1]
	x2, y2 := t.Bounds.Max[0], t.Bounds.Max[1]
	midX := x1 + c.TableWidth()/2
	size := c.PocketSize()
	t.Pockets = []Pocket{
		{ID: 0, Position: V(x1, y1), CaptureRadius: size},
		{ID: 1, Position: V(midX, y1), CaptureRadius: size},
		{ID: 2, Position: V(x2, y1), CaptureRadius: size},
		{ID: 3, Position: V(x1, y2), CaptureRadius: size},
		{ID: 4, Position: V(midX, y2), CaptureRadius: size},
		{ID: 5, Position: V(x2, y2), CaptureRadius: size},
	}
	t.BaulkX = x1 + BaulkLineRatio*c.TableWidth()
}

// StandardLayout returns the opening positions for cfg's table.
func StandardLayout(cfg Config) []BallSpec {
	d := cfg.BallDiameter()
	half := cfg.BoundThickness / 2
	left := cfg.Indent + half
	right := cfg.Width - cfg.Indent
	midX := cfg.Width / 2
	midY := cfg.Height / 2
	baulkX := left + BaulkLineRatio*cfg.TableWidth()
	sep := ColourSeparation * cfg.TableHeight()

	pink := V((midX+right)/2, midY)
	specs := []BallSpec{
		{ID: "white", Kind: KindWhite, Colour: ColourWhite, Position: V(baulkX, midY+20)},
		{ID: "brown", Kind: KindColour, Colour: ColourBrown, Position: V(baulkX, midY)},
		{ID: "green", Kind: KindColour, Colour: ColourGreen, Position: V(baulkX, midY-sep)},
		{ID: "yellow", Kind: KindColour, Colour: ColourYellow, Position: V(baulkX, midY+sep)},
		{ID: "blue", Kind: KindColour, Colour: ColourBlue, Position: V(midX+d/3, midY)},
		{ID: "pink", Kind: KindColour, Colour: ColourPink, Position: pink},
		{ID: "black", Kind: KindColour, Colour: ColourBlack, Position: V(right*0.95, midY)},
	}

	// Reds form a triangle behind the pink, apex first.
	rowStart := V(pink[0]+d+2, midY)
	n := 0
	for row := 0; n < cfg.NumReds; row++ {
		p := rowStart
		for i := 0; i <= row && n < cfg.NumReds; i++ {
			n++
			specs = append(specs, BallSpec{
				ID:       fmt.Sprintf("red-%d", n),
				Kind:     KindRed,
				Colour:   ColourRed,
				Position: p,
			})
			p = p.Sub(V(0, d))
		}
		rowStart = rowStart.Add(V(d, d/2))
	}
	return specs
}

// Config returns the configuration the table was built with.
func (t *Table) Config() Config { return t.cfg }

// Diameter is the shared ball diameter.
func (t *Table) Diameter() float64 { return t.diameter }

// White returns the cue ball.
func (t *Table) White() *Ball { return t.white }

// Ball looks up a ball by id.
func (t *Table) Ball(id string) (*Ball, bool) {
	return t.balls.Get(id)
}

// Balls returns every ball in registry order.
func (t *Table) Balls() []*Ball {
	out := make([]*Ball, 0, t.balls.Len())
	for el := t.balls.Front(); el != nil; el = el.Next() {
		out = append(out, el.Value)
	}
	return out
}

// OnTable returns the non-pocketed balls in registry order.
func (t *Table) OnTable() []*Ball {
	out := make([]*Ball, 0, t.balls.Len())
	for el := t.balls.Front(); el != nil; el = el.Next() {
		if el.Value.OnTable() {
			out = append(out, el.Value)
		}
	}
	return out
}

// AnyMoving reports whether any ball is in the Moving state.
func (t *Table) AnyMoving() bool {
	for el := t.balls.Front(); el != nil; el = el.Next() {
		if el.Value.State == Moving {
			return true
		}
	}
	return false
}

// RedsRemaining counts reds still on the table.
func (t *Table) RedsRemaining() int {
	n := 0
	for el := t.balls.Front(); el != nil; el = el.Next() {
		if el.Value.Kind == KindRed && el.Value.OnTable() {
			n++
		}
	}
	return n
}

// LowestColour returns the lowest-valued colour ball still on the table.
func (t *Table) LowestColour() (*Ball, bool) {
	var lowest *Ball
	for el := t.balls.Front(); el != nil; el = el.Next() {
		b := el.Value
		if b.Kind != KindColour || !b.OnTable() {
			continue
		}
		if lowest == nil || b.Value < lowest.Value {
			lowest = b
		}
	}
	return lowest, lowest != nil
}

// PocketAt returns the pocket containing pt, if any.
func (t *Table) PocketAt(pt Vec2) (Pocket, bool) {
	for _, p := range t.Pockets {
		if p.Contains(pt) {
			return p, true
		}
	}
	return Pocket{}, false
}

// BallAt returns the first on-table ball whose area contains pt.
func (t *Table) BallAt(pt Vec2) (*Ball, bool) {
	return t.ballAt(pt, func(*Ball) bool { return true })
}

// ColourAt returns the first on-table colour ball whose area contains pt.
// White and red balls under the same point are skipped.
func (t *Table) ColourAt(pt Vec2) (*Ball, bool) {
	return t.ballAt(pt, func(b *Ball) bool { return b.Kind == KindColour })
}

func (t *Table) ballAt(pt Vec2, keep func(*Ball) bool) (*Ball, bool) {
	for el := t.balls.Front(); el != nil; el = el.Next() {
		b := el.Value
		if b.OnTable() && keep(b) && overlaps(b.Position, pt, t.diameter) {
			return b, true
		}
	}
	return nil, false
}

// Fingerprint hashes every ball's id, state, position and velocity in
// registry order. Two tables that evolved identically hash identically.
func (t *Table) Fingerprint() uint64 {
	h := xxh3.New()
	var buf [8]byte
	putFloat := func(f float64) {
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(f))
		_, _ = h.Write(buf[:])
	}
	for el := t.balls.Front(); el != nil; el = el.Next() {
		b := el.Value
		_, _ = h.WriteString(b.ID)
		_, _ = h.WriteString(string(b.State))
		putFloat(b.Position[0])
		putFloat(b.Position[1])
		putFloat(b.Velocity[0])
		putFloat(b.Velocity[1])
	}
	return h.Sum64()
}
