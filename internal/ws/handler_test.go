package ws

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/playmatatu/snooker/internal/game"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type received struct {
	Type    string          `json:"type"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

func quietLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func newTestEngine(t *testing.T) *game.Engine {
	t.Helper()
	tbl, err := game.NewTable(game.DefaultConfig(), []game.BallSpec{
		{ID: "white", Kind: game.KindWhite, Colour: game.ColourWhite, Position: game.V(300, 300)},
		{ID: "red-1", Kind: game.KindRed, Colour: game.ColourRed, Position: game.V(600, 450)},
	})
	require.NoError(t, err)
	return game.NewEngineForMatch(game.NewMatch(tbl, quietLogger()), quietLogger())
}

// startHub serves a hub for e and dials one display.
func startHub(t *testing.T, e *game.Engine) (*Hub, *websocket.Conn, chan error) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	hub := NewHub(e, quietLogger())
	errc := make(chan error, 1)
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go func() { errc <- hub.Run(ctx) }()

	r := gin.New()
	r.GET("/ws", HandleWebSocket(hub))
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	require.Eventually(t, func() bool { return hub.Clients() == 1 }, time.Second, time.Millisecond)
	return hub, conn, errc
}

// readUntil reads messages until one of type kind arrives and match accepts it.
func readUntil(t *testing.T, conn *websocket.Conn, kind string, match func(received) bool) received {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	for {
		var msg received
		require.NoError(t, conn.ReadJSON(&msg))
		if msg.Type == kind && (match == nil || match(msg)) {
			return msg
		}
	}
}

func send(t *testing.T, conn *websocket.Conn, kind string, x, y float64) {
	t.Helper()
	data, err := json.Marshal(PointerData{X: x, Y: y})
	require.NoError(t, err)
	require.NoError(t, conn.WriteJSON(WSMessage{Type: kind, Data: data}))
}

func TestDisplayReceivesStateOnConnect(t *testing.T) {
	_, conn, _ := startHub(t, newTestEngine(t))

	msg := readUntil(t, conn, MessageState, nil)
	var st game.MatchState
	require.NoError(t, json.Unmarshal(msg.Data, &st))
	assert.Equal(t, game.PhaseAwaitingShot, st.Phase)
	assert.Equal(t, 1, st.RedsLeft)
}

func TestPointerMoveUpdatesBroadcastFrame(t *testing.T) {
	e := newTestEngine(t)
	_, conn, _ := startHub(t, e)
	send(t, conn, MessagePointerMove, 300, 360)

	require.Eventually(t, func() bool {
		if _, err := e.Step(); err != nil {
			return false
		}
		return speedLabel(e.Frame()) == "Speed X: 0.00 Y: -10.00"
	}, 2*time.Second, 5*time.Millisecond)

	readUntil(t, conn, MessageFrame, func(m received) bool {
		var f game.Frame
		require.NoError(t, json.Unmarshal(m.Data, &f))
		return speedLabel(f) == "Speed X: 0.00 Y: -10.00"
	})
}

func TestPointerReleaseFiresShot(t *testing.T) {
	e := newTestEngine(t)
	_, conn, _ := startHub(t, e)
	send(t, conn, MessagePointerRelease, 294, 300)

	require.Eventually(t, func() bool {
		if _, err := e.Step(); err != nil {
			return false
		}
		return e.State().Phase == game.PhaseBallsMoving
	}, 2*time.Second, 5*time.Millisecond)

	msg := readUntil(t, conn, MessageResult, nil)
	var res game.CommandResult
	require.NoError(t, json.Unmarshal(msg.Data, &res))
	assert.Equal(t, game.CommandShoot, res.Kind)
	assert.Equal(t, game.V(1, 0), res.Velocity)
}

func TestPressOutsideSelectionIsIgnored(t *testing.T) {
	e := newTestEngine(t)
	_, conn, _ := startHub(t, e)
	before := e.State().Fingerprint

	send(t, conn, MessagePointerPress, 600, 450)
	send(t, conn, "pointer_wiggle", 0, 0)

	msg := readUntil(t, conn, MessageError, nil)
	assert.Contains(t, msg.Message, "pointer_wiggle")

	_, err := e.Step()
	require.NoError(t, err)
	assert.Equal(t, before, e.State().Fingerprint)
	assert.Equal(t, game.PhaseAwaitingShot, e.State().Phase)
}

func TestMalformedMessageReportsError(t *testing.T) {
	_, conn, _ := startHub(t, newTestEngine(t))
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("{not json")))

	msg := readUntil(t, conn, MessageError, nil)
	assert.Equal(t, "malformed message", msg.Message)
}

func TestEngineShutdownClosesDisplays(t *testing.T) {
	e := newTestEngine(t)
	hub, conn, errc := startHub(t, e)

	e.Shutdown()

	select {
	case err := <-errc:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("hub did not stop")
	}
	assert.Equal(t, 0, hub.Clients())

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}
}

func speedLabel(f game.Frame) string {
	for _, d := range f.Drawables {
		if d.ID == "speed" && d.Text != nil {
			return d.Text.Text
		}
	}
	return ""
}
