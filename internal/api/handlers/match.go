package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/playmatatu/snooker/internal/game"
	"github.com/sirupsen/logrus"
)

// pointerRequest is a pointer position in device coordinates.
type pointerRequest struct {
	X *float64 `json:"x" binding:"required"`
	Y *float64 `json:"y" binding:"required"`
}

func (r pointerRequest) vec() game.Vec2 { return game.V(*r.X, *r.Y) }

// GetMatchState returns the current match snapshot.
func GetMatchState(e *game.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, e.State())
	}
}

// GetFrame returns the most recent drawable frame.
func GetFrame(e *game.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, e.Frame())
	}
}

// TakeShot releases the cue at the given pointer position.
func TakeShot(e *game.Engine, log logrus.FieldLogger) gin.HandlerFunc {
	return pointerCommand(e, log, game.CommandShoot)
}

// NominateColour registers a nomination click.
func NominateColour(e *game.Engine, log logrus.FieldLogger) gin.HandlerFunc {
	return pointerCommand(e, log, game.CommandNominate)
}

// MovePointer updates the cue preview.
func MovePointer(e *game.Engine, log logrus.FieldLogger) gin.HandlerFunc {
	return pointerCommand(e, log, game.CommandAim)
}

// pointerCommand queues a command and waits for the tick that applies it.
func pointerCommand(e *game.Engine, log logrus.FieldLogger, kind game.CommandKind) gin.HandlerFunc {
	log = log.WithField("component", "api")
	return func(c *gin.Context) {
		var req pointerRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "x and y are required"})
			return
		}

		done, err := e.Submit(game.Command{Kind: kind, Point: req.vec()})
		if err != nil {
			c.JSON(statusFor(err), gin.H{"error": err.Error()})
			return
		}

		select {
		case res := <-done:
			if res.Err != nil {
				log.WithError(res.Err).WithField("command", kind).Debug("command rejected")
				c.JSON(statusFor(res.Err), gin.H{"error": res.Err.Error()})
				return
			}
			c.JSON(http.StatusOK, gin.H{
				"result": res,
				"state":  e.State(),
			})
		case <-c.Request.Context().Done():
			c.JSON(http.StatusGatewayTimeout, gin.H{"error": "request cancelled before the next tick"})
		}
	}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, game.ErrWrongPhase), errors.Is(err, game.ErrNoFreePosition):
		return http.StatusConflict
	case errors.Is(err, game.ErrInvalidNomination):
		return http.StatusUnprocessableEntity
	case errors.Is(err, game.ErrEngineStopped):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
