package game

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
)

// Player is one side of the match.
type Player struct {
	Name  string `json:"name"`
	Score int    `json:"score"`
}

// Foul types.
const (
	FoulNoContact         = "no_contact"
	FoulWrongFirstContact = "wrong_first_contact"
	FoulPotWhite          = "pot_white"
	FoulPotWrongColour    = "pot_wrong_colour"
)

// FoulInfo describes a foul that occurred during a shot.
type FoulInfo struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// ShotResult is the adjudicated outcome of one shot.
type ShotResult struct {
	Shot          int        `json:"shot"`
	Shooter       int        `json:"shooter"`
	Foul          *FoulInfo  `json:"foul,omitempty"`
	FirstContact  BallColour `json:"first_contact"`
	PocketedBalls []string   `json:"pocketed_balls"`
	// Points went to the shooter on a fair shot, to the opponent on a foul.
	Points      int        `json:"points"`
	TurnChange  bool       `json:"turn_change"`
	NextPlayer  int        `json:"next_player"`
	Phase       Phase      `json:"phase"`
	Nominated   BallColour `json:"nominated"`
	GameOver    bool       `json:"game_over"`
	Winner      string     `json:"winner,omitempty"`
	Draw        bool       `json:"draw,omitempty"`
	Unreplaced  []string   `json:"unreplaced,omitempty"`
	TicksMoving int        `json:"ticks_moving"`
}

// MatchState is a read-only snapshot of a match.
type MatchState struct {
	Players     [2]Player   `json:"players"`
	Current     int         `json:"current"`
	Phase       Phase       `json:"phase"`
	Nominated   BallColour  `json:"nominated"`
	Shots       int         `json:"shots"`
	RedsLeft    int         `json:"reds_left"`
	LastShot    *ShotResult `json:"last_shot,omitempty"`
	Winner      string      `json:"winner,omitempty"`
	Draw        bool        `json:"draw,omitempty"`
	Fingerprint uint64      `json:"fingerprint"`
}

// Match is the turn and rule engine. It owns the table and its integrator.
// A Match is not safe for concurrent use; Engine serialises access to it.
type Match struct {
	table *Table
	integ *Integrator
	log   logrus.FieldLogger

	players   [2]Player
	current   int
	phase     Phase
	nominated BallColour
	cue       Cue

	shots        int
	shotPocketed []*Ball
	ticksMoving  int
	pending      []*Ball
	last         *ShotResult
	winner       string
	draw         bool
}

// NewMatch starts a match on t with the first player to shoot.
func NewMatch(t *Table, log logrus.FieldLogger) *Match {
	if log == nil {
		log = logrus.StandardLogger()
	}
	names := t.Config().PlayerNames
	m := &Match{
		table:     t,
		integ:     NewIntegrator(t),
		log:       log.WithField("component", "match"),
		players:   [2]Player{{Name: names[0]}, {Name: names[1]}},
		phase:     PhaseAwaitingShot,
		nominated: ColourNone,
	}
	m.phaseCheck()
	m.cue.Visible = m.phase == PhaseAwaitingShot
	m.cue.Aim(t.Config(), t.White(), t.White().Position.Sub(V(1, 0)))
	return m
}

// Table returns the table the match is played on.
func (m *Match) Table() *Table { return m.table }

// Phase returns the current phase.
func (m *Match) Phase() Phase { return m.phase }

// Nominated returns the colour the current player must hit, or ColourNone.
func (m *Match) Nominated() BallColour { return m.nominated }

// Current returns the index of the player to act.
func (m *Match) Current() int { return m.current }

// Players returns both players.
func (m *Match) Players() [2]Player { return m.players }

// Cue returns the current aiming preview.
func (m *Match) Cue() Cue { return m.cue }

// LastShot returns the most recent shot result, or nil.
func (m *Match) LastShot() *ShotResult { return m.last }

// State returns a snapshot of the match.
func (m *Match) State() MatchState {
	s := MatchState{
		Players:     m.players,
		Current:     m.current,
		Phase:       m.phase,
		Nominated:   m.nominated,
		Shots:       m.shots,
		RedsLeft:    m.table.RedsRemaining(),
		Winner:      m.winner,
		Draw:        m.draw,
		Fingerprint: m.table.Fingerprint(),
	}
	if m.last != nil {
		last := *m.last
		s.LastShot = &last
	}
	return s
}

// Aim updates the cue preview from a pointer position. Outside AwaitingShot
// only the pointer is remembered.
func (m *Match) Aim(pointer Vec2) {
	if m.phase != PhaseAwaitingShot {
		m.cue.Pointer = pointer
		return
	}
	m.cue.Aim(m.table.Config(), m.table.White(), pointer)
}

// Shoot fires the white from a pointer release.
func (m *Match) Shoot(pointer Vec2) (Vec2, error) {
	if m.phase != PhaseAwaitingShot {
		return Vec2{}, fmt.Errorf("%w: shoot during %s", ErrWrongPhase, m.phase)
	}
	white := m.table.White()
	if !white.OnTable() {
		m.RetryReplacements()
		if !white.OnTable() {
			return Vec2{}, fmt.Errorf("white is off the table: %w", ErrNoFreePosition)
		}
	}

	v := CueImpulse(m.table.Config(), white.Position, pointer)
	white.Contact.Reset()
	m.shotPocketed = m.shotPocketed[:0]
	m.ticksMoving = 0
	m.shots++

	white.setVelocity(v)
	m.cue.Visible = false
	m.phase = PhaseBallsMoving

	m.log.WithFields(logrus.Fields{
		"shot":   m.shots,
		"player": m.players[m.current].Name,
		"vx":     v[0],
		"vy":     v[1],
	}).Debug("shot fired")
	return v, nil
}

// Nominate handles a click during colour selection. A click that does not
// land on a colour ball leaves the phase unchanged.
func (m *Match) Nominate(pointer Vec2) (BallColour, error) {
	if m.phase != PhaseColourSelection {
		return ColourNone, fmt.Errorf("%w: nominate during %s", ErrWrongPhase, m.phase)
	}
	b, ok := m.table.ColourAt(pointer)
	if !ok {
		return ColourNone, ErrInvalidNomination
	}
	m.nominated = b.Colour
	m.phase = PhaseAwaitingShot
	m.cue.Visible = true
	m.Aim(m.cue.Pointer)

	m.log.WithFields(logrus.Fields{
		"player":    m.players[m.current].Name,
		"nominated": b.Colour,
	}).Info("colour nominated")
	return b.Colour, nil
}

// Advance runs one integrator tick while balls are moving and resolves the
// shot on the first tick that ends with every ball at rest. It returns the
// shot result on that tick and nil otherwise.
func (m *Match) Advance() (TickReport, *ShotResult) {
	if m.phase != PhaseBallsMoving {
		return TickReport{}, nil
	}
	report := m.integ.Tick()
	m.ticksMoving++
	m.shotPocketed = append(m.shotPocketed, report.Pocketed...)
	for _, b := range report.Pocketed {
		m.log.WithFields(logrus.Fields{"ball": b.ID, "shot": m.shots}).Debug("ball pocketed")
	}
	if report.Moving {
		return report, nil
	}
	m.phase = PhaseTurnResolution
	return report, m.resolve()
}

func (m *Match) resolve() *ShotResult {
	shooter := m.current
	white := m.table.White()
	first, _ := white.Contact.First()

	res := &ShotResult{
		Shot:          m.shots,
		Shooter:       shooter,
		FirstContact:  first,
		PocketedBalls: make([]string, 0, len(m.shotPocketed)),
		TicksMoving:   m.ticksMoving,
	}
	for _, b := range m.shotPocketed {
		res.PocketedBalls = append(res.PocketedBalls, b.ID)
	}

	if foul := m.detectFoul(); foul != nil {
		res.Foul = foul
		res.Points = m.foulPoints()
		m.players[1-shooter].Score += res.Points
		for _, b := range m.shotPocketed {
			if b.Kind == KindRed {
				continue
			}
			if err := m.table.Replace(b); err != nil {
				m.log.WithError(err).WithField("ball", b.ID).Warn("replacement failed, will retry")
				m.pending = append(m.pending, b)
			}
		}
		m.switchTurn()
		res.TurnChange = true
	} else if len(m.shotPocketed) == 0 {
		m.switchTurn()
		res.TurnChange = true
		m.phase = PhaseAwaitingShot
	} else {
		red := false
		for _, b := range m.shotPocketed {
			res.Points += b.Value
			red = red || b.Kind == KindRed
		}
		m.players[shooter].Score += res.Points
		if red {
			m.phase = PhaseColourSelection
		} else {
			m.phase = PhaseAwaitingShot
		}
	}

	m.phaseCheck()

	m.shotPocketed = m.shotPocketed[:0]
	white.Contact.Reset()
	m.cue.Visible = m.phase == PhaseAwaitingShot
	if m.cue.Visible {
		m.Aim(m.cue.Pointer)
	}

	res.NextPlayer = m.current
	res.Phase = m.phase
	res.Nominated = m.nominated
	res.GameOver = m.phase == PhaseGameOver
	res.Winner = m.winner
	res.Draw = m.draw
	for _, b := range m.pending {
		res.Unreplaced = append(res.Unreplaced, b.ID)
	}
	m.last = res

	entry := m.log.WithFields(logrus.Fields{
		"shot":     res.Shot,
		"shooter":  m.players[shooter].Name,
		"points":   res.Points,
		"pocketed": res.PocketedBalls,
		"phase":    res.Phase,
	})
	if res.Foul != nil {
		entry = entry.WithField("foul", res.Foul.Type)
	}
	entry.Info("shot resolved")
	return res
}

func (m *Match) detectFoul() *FoulInfo {
	target := m.nominated
	if target == ColourNone {
		target = ColourRed
	}
	first, touched := m.table.White().Contact.First()
	switch {
	case !touched:
		return &FoulInfo{Type: FoulNoContact, Message: "White did not contact any ball"}
	case first != target:
		return &FoulInfo{Type: FoulWrongFirstContact, Message: fmt.Sprintf("Hit %s first, needed %s", first, target)}
	}
	for _, b := range m.shotPocketed {
		if b.IsWhite() {
			return &FoulInfo{Type: FoulPotWhite, Message: "White was pocketed"}
		}
	}
	for _, b := range m.shotPocketed {
		if b.Colour != target {
			return &FoulInfo{Type: FoulPotWrongColour, Message: fmt.Sprintf("Pocketed %s, needed %s", b.Colour, target)}
		}
	}
	return nil
}

// foulPoints is the larger of the nominated value and the highest pocketed
// value, clamped to [MinFoulPoints, MaxFoulPoints].
func (m *Match) foulPoints() int {
	points := m.nominated.Value()
	for _, b := range m.shotPocketed {
		if b.Value > points {
			points = b.Value
		}
	}
	return clampInt(points, MinFoulPoints, MaxFoulPoints)
}

func (m *Match) switchTurn() {
	m.current = 1 - m.current
	m.phase = PhaseAwaitingShot
}

// phaseCheck runs before every next shot. Once the reds are gone the
// nomination is forced to the lowest colour left; with no colours left the
// match ends. While reds remain the nomination is cleared.
func (m *Match) phaseCheck() {
	m.RetryReplacements()

	if m.table.RedsRemaining() > 0 {
		m.nominated = ColourNone
		return
	}

	lowest, ok := m.table.LowestColour()
	for _, b := range m.pending {
		if b.Kind == KindColour && (!ok || b.Value < lowest.Value) {
			lowest, ok = b, true
		}
	}
	if !ok {
		m.endGame()
		return
	}
	m.nominated = lowest.Colour
	m.phase = PhaseAwaitingShot
}

// RetryReplacements re-attempts foul replacements that previously found no
// free position. It returns the number still pending.
func (m *Match) RetryReplacements() int {
	if len(m.pending) == 0 {
		return 0
	}
	still := m.pending[:0]
	for _, b := range m.pending {
		err := m.table.Replace(b)
		switch {
		case err == nil:
			m.log.WithField("ball", b.ID).Info("ball replaced")
		case errors.Is(err, ErrNoFreePosition):
			still = append(still, b)
		default:
			m.log.WithError(err).WithField("ball", b.ID).Warn("replacement error")
			still = append(still, b)
		}
	}
	m.pending = still
	return len(m.pending)
}

// Pending returns the ids of balls waiting for a free replacement spot.
func (m *Match) Pending() []string {
	ids := make([]string, 0, len(m.pending))
	for _, b := range m.pending {
		ids = append(ids, b.ID)
	}
	return ids
}

func (m *Match) endGame() {
	m.phase = PhaseGameOver
	m.nominated = ColourNone
	m.cue.Visible = false
	m.table.White().pocket()

	p1, p2 := m.players[0], m.players[1]
	switch {
	case p1.Score > p2.Score:
		m.winner = p1.Name
	case p2.Score > p1.Score:
		m.winner = p2.Name
	default:
		m.draw = true
	}
	m.log.WithFields(logrus.Fields{
		"winner": m.winner,
		"draw":   m.draw,
		"score":  fmt.Sprintf("%d-%d", p1.Score, p2.Score),
	}).Info("match over")
}
