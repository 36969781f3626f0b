package game

// BallKind tags a ball's role in the rules.
type BallKind string

const (
	KindWhite  BallKind = "WHITE"
	KindRed    BallKind = "RED"
	KindColour BallKind = "COLOUR"
)

// BallColour names a ball's colour. ColourNone doubles as "nothing nominated"
// and "nothing contacted".
type BallColour string

const (
	ColourNone   BallColour = "NONE"
	ColourWhite  BallColour = "WHITE"
	ColourRed    BallColour = "RED"
	ColourYellow BallColour = "YELLOW"
	ColourGreen  BallColour = "GREEN"
	ColourBrown  BallColour = "BROWN"
	ColourBlue   BallColour = "BLUE"
	ColourPink   BallColour = "PINK"
	ColourBlack  BallColour = "BLACK"
)

// colourValues is indexed by score: Red is 1, Black is 7.
var colourValues = []BallColour{
	ColourNone, ColourRed, ColourYellow, ColourGreen, ColourBrown, ColourBlue, ColourPink, ColourBlack,
}

// Value returns the points scored by potting a ball of this colour.
func (c BallColour) Value() int {
	for v, col := range colourValues {
		if col == c {
			return v
		}
	}
	return 0
}

// IsNominable reports whether the colour may be nominated.
func (c BallColour) IsNominable() bool {
	return c.Value() >= 2
}

// ColourForValue maps a score back to its colour.
func ColourForValue(v int) BallColour {
	if v < 1 || v >= len(colourValues) {
		return ColourNone
	}
	return colourValues[v]
}

// MotionState is a ball's integration state.
type MotionState string

const (
	Stationary MotionState = "STATIONARY"
	Moving     MotionState = "MOVING"
	Pocketed   MotionState = "POCKETED"
)

// ContactTracker records the first ball the white touches during a shot.
type ContactTracker struct {
	colour BallColour
}

// Record stores c if nothing has been recorded since the last Reset.
func (t *ContactTracker) Record(c BallColour) {
	if t.colour == ColourNone || t.colour == "" {
		t.colour = c
	}
}

// First returns the first contact and whether any contact happened.
func (t *ContactTracker) First() (BallColour, bool) {
	if t.colour == "" || t.colour == ColourNone {
		return ColourNone, false
	}
	return t.colour, true
}

// Reset clears the record for the next shot.
func (t *ContactTracker) Reset() {
	t.colour = ColourNone
}

// Ball is a single snooker ball.
type Ball struct {
	ID       string      `json:"id"`
	Kind     BallKind    `json:"kind"`
	Colour   BallColour  `json:"colour"`
	Value    int         `json:"value"`
	Position Vec2        `json:"position"`
	Velocity Vec2        `json:"velocity"`
	Radius   float64     `json:"radius"`
	State    MotionState `json:"state"`

	// LastStationary is where the ball last rested; foul replacement
	// restores pocketed balls here.
	LastStationary Vec2 `json:"last_stationary"`

	// Contact is set on the white only.
	Contact *ContactTracker `json:"-"`
}

func newBall(spec BallSpec, radius float64) *Ball {
	b := &Ball{
		ID:             spec.ID,
		Kind:           spec.Kind,
		Colour:         spec.Colour,
		Value:          spec.Colour.Value(),
		Position:       spec.Position,
		Radius:         radius,
		State:          Stationary,
		LastStationary: spec.Position,
	}
	if spec.Kind == KindWhite {
		b.Value = 0
		b.Contact = &ContactTracker{colour: ColourNone}
	}
	return b
}

// IsWhite reports whether this is the cue ball.
func (b *Ball) IsWhite() bool { return b.Kind == KindWhite }

// OnTable reports whether the ball takes part in collisions.
func (b *Ball) OnTable() bool { return b.State != Pocketed }

// Speed is the magnitude of the ball's velocity.
func (b *Ball) Speed() float64 { return b.Velocity.Len() }

// setVelocity applies v and moves the ball into the Moving state,
// remembering where it rested.
func (b *Ball) setVelocity(v Vec2) {
	if b.State == Pocketed {
		return
	}
	if b.State == Stationary {
		b.LastStationary = b.Position
	}
	b.Velocity = v
	if v[0] != 0 || v[1] != 0 {
		b.State = Moving
	}
}

func (b *Ball) stop() {
	b.Velocity = Vec2{}
	if b.State != Pocketed {
		b.State = Stationary
		b.LastStationary = b.Position
	}
}

func (b *Ball) pocket() {
	b.Velocity = Vec2{}
	b.State = Pocketed
}

// place puts a pocketed ball back at p at rest.
func (b *Ball) place(p Vec2) {
	b.Position = p
	b.Velocity = Vec2{}
	b.State = Stationary
	b.LastStationary = p
}
