package game

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// redPotMatch lines the white up behind a red that rolls into the top-right
// corner pocket.
func redPotMatch(t *testing.T) *Match {
	t.Helper()
	return newTestMatch(t,
		white(470, 115),
		red("red-1", 500, 115),
		red("red-2", 300, 400),
		colour(ColourBlue, 400, 300),
	)
}

func TestRedPotScoresAndRequestsNomination(t *testing.T) {
	m := redPotMatch(t)
	require.Equal(t, PhaseAwaitingShot, m.Phase())

	v, err := m.Shoot(V(350, 115))
	require.NoError(t, err)
	assert.Equal(t, V(20, 0), v)
	assert.Equal(t, PhaseBallsMoving, m.Phase())
	assert.False(t, m.Cue().Visible)

	res := playOut(t, m)

	assert.Nil(t, res.Foul)
	assert.Equal(t, []string{"red-1"}, res.PocketedBalls)
	assert.Equal(t, Pocketed, mustBall(t, m.Table(), "red-1").State)
	assert.Equal(t, 1, m.Players()[0].Score)
	assert.Equal(t, 0, m.Players()[1].Score)
	assert.Equal(t, 0, m.Current())
	assert.Equal(t, PhaseColourSelection, m.Phase())
	assert.False(t, m.Phase().CueEnabled())
	assert.False(t, m.Cue().Visible)
	assert.Equal(t, ColourRed, res.FirstContact)
}

func TestNominationMustTargetColour(t *testing.T) {
	m := redPotMatch(t)
	_, err := m.Shoot(V(350, 115))
	require.NoError(t, err)
	playOut(t, m)
	require.Equal(t, PhaseColourSelection, m.Phase())

	_, err = m.Nominate(V(300, 400))
	assert.ErrorIs(t, err, ErrInvalidNomination)
	assert.Equal(t, PhaseColourSelection, m.Phase())

	_, err = m.Nominate(m.Table().White().Position)
	assert.ErrorIs(t, err, ErrInvalidNomination)

	_, err = m.Nominate(V(20, 20))
	assert.ErrorIs(t, err, ErrInvalidNomination)
	assert.Equal(t, PhaseColourSelection, m.Phase())

	col, err := m.Nominate(V(402, 301))
	require.NoError(t, err)
	assert.Equal(t, ColourBlue, col)
	assert.Equal(t, ColourBlue, m.Nominated())
	assert.Equal(t, PhaseAwaitingShot, m.Phase())
	assert.True(t, m.Cue().Visible)
}

func TestNominationReachesColourTouchingOtherBalls(t *testing.T) {
	m := newTestMatch(t,
		white(300, 300),
		red("red-1", 308, 312),
		colour(ColourBlue, 312, 300),
		red("red-2", 600, 450),
	)
	m.phase = PhaseColourSelection

	col, err := m.Nominate(V(308, 300))
	require.NoError(t, err)
	assert.Equal(t, ColourBlue, col)
	assert.Equal(t, PhaseAwaitingShot, m.Phase())
}

func TestNoHitIsAFoul(t *testing.T) {
	m := newTestMatch(t, white(300, 300), red("red-1", 600, 450))

	_, err := m.Shoot(V(294, 300))
	require.NoError(t, err)
	res := playOut(t, m)

	require.NotNil(t, res.Foul)
	assert.Equal(t, FoulNoContact, res.Foul.Type)
	assert.GreaterOrEqual(t, m.Players()[1].Score, 4)
	assert.Equal(t, 0, m.Players()[0].Score)
	assert.Equal(t, 1, m.Current())
	assert.True(t, res.TurnChange)
	assert.Equal(t, PhaseAwaitingShot, m.Phase())
	assert.True(t, m.Cue().Visible)
}

func TestPottedWhiteIsReplacedAfterFoul(t *testing.T) {
	m := newTestMatch(t, white(650, 150), red("red-1", 300, 400))

	_, err := m.Shoot(pointerFor(m, V(5, -5)))
	require.NoError(t, err)
	res := playOut(t, m)

	require.NotNil(t, res.Foul)
	assert.Contains(t, res.PocketedBalls, "white")
	assert.Equal(t, 4, res.Points)
	w := m.Table().White()
	assert.Equal(t, Stationary, w.State)
	assert.Equal(t, V(650, 150), w.Position)
	assert.Empty(t, m.Pending())
}

func TestFairMissPassesTurn(t *testing.T) {
	m := newTestMatch(t, white(300, 300), red("red-1", 340, 300))

	_, err := m.Shoot(pointerFor(m, V(2, 0)))
	require.NoError(t, err)
	res := playOut(t, m)

	assert.Nil(t, res.Foul)
	assert.Empty(t, res.PocketedBalls)
	assert.Equal(t, 1, m.Current())
	assert.Equal(t, [2]Player{{Name: "Player 1"}, {Name: "Player 2"}}, m.Players())
	assert.Equal(t, ColourNone, m.Nominated())
}

func TestLastColourEndsMatch(t *testing.T) {
	m := newTestMatch(t, white(640, 160), colour(ColourYellow, 670, 130))
	require.Equal(t, ColourYellow, m.Nominated(), "lowest colour is forced once reds are gone")

	_, err := m.Shoot(pointerFor(m, V(6, -6)))
	require.NoError(t, err)
	res := playOut(t, m)

	assert.Nil(t, res.Foul)
	assert.Equal(t, 2, res.Points)
	assert.True(t, res.GameOver)
	assert.Equal(t, "Player 1", res.Winner)
	assert.False(t, res.Draw)
	assert.Equal(t, PhaseGameOver, m.Phase())
	assert.Equal(t, Pocketed, m.Table().White().State)
	assert.False(t, m.Cue().Visible)

	_, err = m.Shoot(V(0, 0))
	assert.ErrorIs(t, err, ErrWrongPhase)
}

func TestAutoNominationPicksLowestRemaining(t *testing.T) {
	m := newTestMatch(t,
		white(200, 300),
		colour(ColourBlack, 600, 300),
		colour(ColourGreen, 400, 200),
		colour(ColourPink, 500, 400),
	)
	assert.Equal(t, ColourGreen, m.Nominated())

	mustBall(t, m.Table(), "green").pocket()
	m.phaseCheck()
	assert.Equal(t, ColourPink, m.Nominated())
	assert.Equal(t, PhaseAwaitingShot, m.Phase())
}

func TestDrawWhenScoresLevel(t *testing.T) {
	m := newTestMatch(t, white(200, 300), red("red-1", 400, 300))
	m.players[0].Score, m.players[1].Score = 12, 12

	m.endGame()

	assert.True(t, m.draw)
	assert.Empty(t, m.winner)
	assert.Equal(t, PhaseGameOver, m.Phase())
}

func TestCommandsRejectedInWrongPhase(t *testing.T) {
	m := redPotMatch(t)
	before := m.State()

	_, err := m.Nominate(V(400, 300))
	assert.ErrorIs(t, err, ErrWrongPhase)
	assert.Equal(t, before, m.State())

	_, err = m.Shoot(V(350, 115))
	require.NoError(t, err)

	_, err = m.Shoot(V(350, 115))
	assert.ErrorIs(t, err, ErrWrongPhase)

	playOut(t, m)
	require.Equal(t, PhaseColourSelection, m.Phase())
	mid := m.State()
	_, err = m.Shoot(V(350, 115))
	assert.True(t, errors.Is(err, ErrWrongPhase))
	assert.Equal(t, mid, m.State())
}

func TestDetectFoul(t *testing.T) {
	cases := []struct {
		name      string
		nominated BallColour
		first     BallColour
		pocketed  []string
		want      string
	}{
		{"no contact", ColourNone, ColourNone, nil, FoulNoContact},
		{"colour first while on reds", ColourNone, ColourBlue, nil, FoulWrongFirstContact},
		{"red first while on blue", ColourBlue, ColourRed, nil, FoulWrongFirstContact},
		{"in-off", ColourNone, ColourRed, []string{"white"}, FoulPotWhite},
		{"colour potted while on reds", ColourNone, ColourRed, []string{"blue"}, FoulPotWrongColour},
		{"red potted while on blue", ColourBlue, ColourBlue, []string{"red-1"}, FoulPotWrongColour},
		{"fair red", ColourNone, ColourRed, []string{"red-1"}, ""},
		{"fair colour", ColourBlue, ColourBlue, []string{"blue"}, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m := newTestMatch(t, white(200, 300), red("red-1", 400, 300), colour(ColourBlue, 500, 300))
			m.nominated = tc.nominated
			m.Table().White().Contact.Record(tc.first)
			for _, id := range tc.pocketed {
				m.shotPocketed = append(m.shotPocketed, mustBall(t, m.Table(), id))
			}

			foul := m.detectFoul()
			if tc.want == "" {
				assert.Nil(t, foul)
				return
			}
			require.NotNil(t, foul)
			assert.Equal(t, tc.want, foul.Type)
		})
	}
}

func TestFoulPointsStayWithinRange(t *testing.T) {
	cases := []struct {
		nominated BallColour
		pocketed  []string
		want      int
	}{
		{ColourNone, nil, 4},
		{ColourYellow, nil, 4},
		{ColourBlue, nil, 5},
		{ColourNone, []string{"pink"}, 6},
		{ColourGreen, []string{"black", "red-1"}, 7},
		{ColourBlack, []string{"yellow"}, 7},
	}
	for _, tc := range cases {
		m := newTestMatch(t,
			white(200, 300), red("red-1", 400, 300),
			colour(ColourYellow, 250, 250), colour(ColourPink, 500, 300), colour(ColourBlack, 600, 300))
		m.nominated = tc.nominated
		for _, id := range tc.pocketed {
			m.shotPocketed = append(m.shotPocketed, mustBall(t, m.Table(), id))
		}
		got := m.foulPoints()
		assert.Equal(t, tc.want, got, "nominated %s pocketed %v", tc.nominated, tc.pocketed)
		assert.GreaterOrEqual(t, got, MinFoulPoints)
		assert.LessOrEqual(t, got, MaxFoulPoints)
	}
}

func TestFailedReplacementIsRetried(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxReplacementSteps = 2
	tbl := newTestTable(t, cfg, white(200, 300), red("red-1", 400, 300), colour(ColourPink, 500, 300))
	m := NewMatch(tbl, quietLogger())

	pink := mustBall(t, tbl, "pink")
	pink.pocket()
	// Occupy the pink's resting point and both directions of the search.
	blocker := mustBall(t, tbl, "red-1")
	blocker.Position = V(500, 299)
	m.pending = append(m.pending, pink)

	assert.Equal(t, 1, m.RetryReplacements())
	assert.Equal(t, []string{"pink"}, m.Pending())
	assert.Equal(t, Pocketed, pink.State)

	blocker.Position = V(400, 300)
	assert.Equal(t, 0, m.RetryReplacements())
	assert.Equal(t, V(500, 300), pink.Position)
	assert.Equal(t, Stationary, pink.State)
}
