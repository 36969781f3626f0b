package game

import (
	"io"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func quietLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func white(x, y float64) BallSpec {
	return BallSpec{ID: "white", Kind: KindWhite, Colour: ColourWhite, Position: V(x, y)}
}

func red(id string, x, y float64) BallSpec {
	return BallSpec{ID: id, Kind: KindRed, Colour: ColourRed, Position: V(x, y)}
}

func colour(c BallColour, x, y float64) BallSpec {
	return BallSpec{ID: strings.ToLower(string(c)), Kind: KindColour, Colour: c, Position: V(x, y)}
}

func newTestTable(t *testing.T, cfg Config, specs ...BallSpec) *Table {
	t.Helper()
	tbl, err := NewTable(cfg, specs)
	require.NoError(t, err)
	return tbl
}

func newTestMatch(t *testing.T, specs ...BallSpec) *Match {
	t.Helper()
	return NewMatch(newTestTable(t, DefaultConfig(), specs...), quietLogger())
}

// playOut advances the match until the current shot resolves.
func playOut(t *testing.T, m *Match) *ShotResult {
	t.Helper()
	for i := 0; i < 20000; i++ {
		if _, res := m.Advance(); res != nil {
			return res
		}
	}
	t.Fatal("shot never resolved")
	return nil
}

// pointerFor returns the pointer release that launches the white at v.
func pointerFor(m *Match, v Vec2) Vec2 {
	return m.Table().White().Position.Sub(v.Mul(m.Table().Config().SpeedDivisor))
}

func mustBall(t *testing.T, tbl *Table, id string) *Ball {
	t.Helper()
	b, ok := tbl.Ball(id)
	require.True(t, ok, "ball %s", id)
	return b
}
