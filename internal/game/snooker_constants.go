package game

import (
	"fmt"
	"time"
)

// Table and physics defaults for a two-player snooker match.
// Positions are in window units; speeds are in units per tick.

const (
	DefaultWidth          = 800.0
	DefaultHeight         = 600.0
	DefaultIndent         = 100.0
	DefaultBoundThickness = 10.0

	BallDiameterRatio = 0.02
	PocketSizeRatio   = 0.05
	BaulkLineRatio    = 73.66 / 365.76 // baulk distance over table length
	ColourSeparation  = 0.15           // green/yellow offset as a share of table height
	CueLengthRatio    = 0.19
	CueThickness      = 4.0

	MaxCueSpeed  = 30.0
	SpeedDivisor = 6.0
	FrictionRate = 0.01
	StopSpeed    = 0.1
	SubSteps     = 25
	NumReds      = 15

	MaxReplacementSteps = 5000
	TickDuration        = 10 * time.Millisecond

	// MinFoulPoints and MaxFoulPoints bound the penalty awarded to the opponent.
	MinFoulPoints = 4
	MaxFoulPoints = 7
)

// Draw layers. Lower layers render first.
const (
	LayerTable      = 1
	LayerPlayerText = 1
	LayerPocket     = 2
	LayerBaulk      = 2
	LayerBound      = 3
	LayerBall       = 3
	LayerWhiteBall  = 4
	LayerCue        = 5
	LayerInfoText   = 10
)

// Config is the tunable surface of the simulation.
type Config struct {
	Width          float64 `json:"width"`
	Height         float64 `json:"height"`
	Indent         float64 `json:"indent"`
	BoundThickness float64 `json:"bound_thickness"`

	BallDiameterRatio float64 `json:"ball_diameter_ratio"`
	PocketSizeRatio   float64 `json:"pocket_size_ratio"`

	MaxCueSpeedX float64 `json:"max_cue_speed_x"`
	MaxCueSpeedY float64 `json:"max_cue_speed_y"`
	SpeedDivisor float64 `json:"speed_divisor"`

	FrictionRate float64 `json:"friction_rate"`
	// CollisionThreshold is the centre distance at or below which two balls
	// overlap. Zero means one ball diameter.
	CollisionThreshold float64 `json:"collision_threshold"`
	StopSpeed          float64 `json:"stop_speed"`
	SubSteps           int     `json:"sub_steps"`

	TickDuration        time.Duration `json:"tick_duration"`
	MaxReplacementSteps int           `json:"max_replacement_steps"`
	NumReds             int           `json:"num_reds"`

	PlayerNames [2]string `json:"player_names"`
}

// DefaultConfig returns the standard table on an 800x600 window.
func DefaultConfig() Config {
	return Config{
		Width:               DefaultWidth,
		Height:              DefaultHeight,
		Indent:              DefaultIndent,
		BoundThickness:      DefaultBoundThickness,
		BallDiameterRatio:   BallDiameterRatio,
		PocketSizeRatio:     PocketSizeRatio,
		MaxCueSpeedX:        MaxCueSpeed,
		MaxCueSpeedY:        MaxCueSpeed,
		SpeedDivisor:        SpeedDivisor,
		FrictionRate:        FrictionRate,
		StopSpeed:           StopSpeed,
		SubSteps:            SubSteps,
		TickDuration:        TickDuration,
		MaxReplacementSteps: MaxReplacementSteps,
		NumReds:             NumReds,
		PlayerNames:         [2]string{"Player 1", "Player 2"},
	}
}

// Validate rejects configurations the table cannot be built from.
func (c Config) Validate() error {
	switch {
	case c.Width <= 0 || c.Height <= 0:
		return fmt.Errorf("%w: window %.1fx%.1f", ErrInvalidConfig, c.Width, c.Height)
	case c.Indent < 0 || c.TableWidth() <= 0 || c.TableHeight() <= 0:
		return fmt.Errorf("%w: indent %.1f leaves no table", ErrInvalidConfig, c.Indent)
	case c.BoundThickness < 0 || c.BoundThickness >= c.TableHeight():
		return fmt.Errorf("%w: bound thickness %.1f", ErrInvalidConfig, c.BoundThickness)
	case c.BallDiameterRatio <= 0 || c.PocketSizeRatio <= 0:
		return fmt.Errorf("%w: ball and pocket ratios must be positive", ErrInvalidConfig)
	case c.MaxCueSpeedX <= 0 || c.MaxCueSpeedY <= 0 || c.SpeedDivisor <= 0:
		return fmt.Errorf("%w: cue speed limits and divisor must be positive", ErrInvalidConfig)
	case c.FrictionRate < 0 || c.FrictionRate >= 1:
		return fmt.Errorf("%w: friction rate %.3f outside [0,1)", ErrInvalidConfig, c.FrictionRate)
	case c.CollisionThreshold < 0 || c.StopSpeed < 0:
		return fmt.Errorf("%w: negative threshold", ErrInvalidConfig)
	case c.SubSteps <= 0 || c.MaxReplacementSteps <= 0:
		return fmt.Errorf("%w: sub-steps and replacement steps must be positive", ErrInvalidConfig)
	case c.TickDuration <= 0:
		return fmt.Errorf("%w: tick duration %s", ErrInvalidConfig, c.TickDuration)
	case c.NumReds < 0 || c.NumReds > 15:
		return fmt.Errorf("%w: %d reds (triangle holds 0-15)", ErrInvalidConfig, c.NumReds)
	}
	return nil
}

// TableWidth is the inner playing surface width.
func (c Config) TableWidth() float64 { return c.Width - 2*c.Indent }

// TableHeight is the inner playing surface height.
func (c Config) TableHeight() float64 { return c.Height - 2*c.Indent }

// BallDiameter derives the shared diameter from the table width.
func (c Config) BallDiameter() float64 { return c.TableWidth() * c.BallDiameterRatio }

// PocketSize is the pocket capture distance.
func (c Config) PocketSize() float64 { return c.TableWidth() * c.PocketSizeRatio }

// Threshold returns the effective ball-ball overlap distance.
func (c Config) Threshold() float64 {
	if c.CollisionThreshold > 0 {
		return c.CollisionThreshold
	}
	return c.BallDiameter()
}

// CueLength is the drawn length of the cue line.
func (c Config) CueLength() float64 { return c.Width * CueLengthRatio }
