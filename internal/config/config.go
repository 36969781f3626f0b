package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/playmatatu/snooker/internal/game"
)

type Config struct {
	// Environment
	Environment string
	LogLevel    string
	SentryDSN   string

	// ProfilerAddr enables the runtime stats viewer when set.
	ProfilerAddr string

	// Server
	Host        string
	Port        string
	FrontendURL string

	// Shot event feed, disabled when RedisURL is empty
	RedisURL     string
	RedisChannel string

	// Table geometry
	TableWidth        float64
	TableHeight       float64
	TableIndent       float64
	BallDiameterRatio float64
	PocketSizeRatio   float64

	// Cue
	MaxCueSpeedX float64
	MaxCueSpeedY float64
	SpeedDivisor float64

	// Physics
	FrictionRate        float64
	CollisionThreshold  float64
	StopSpeed           float64
	SubSteps            int
	TickMillis          int
	MaxReplacementSteps int

	// Players
	Player1Name string
	Player2Name string
}

func Load() *Config {
	// Load .env file if it exists
	godotenv.Load()

	d := game.DefaultConfig()
	return &Config{
		// Environment
		Environment:  getEnv("APP_ENV", "development"),
		LogLevel:     getEnv("LOG_LEVEL", "info"),
		SentryDSN:    getEnv("SENTRY_DSN", ""),
		ProfilerAddr: getEnv("PROFILER_ADDR", ""),

		// Server
		Host:        getEnv("APP_HOST", "127.0.0.1"),
		Port:        getEnv("APP_PORT", "8080"),
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:5173"),

		// Shot event feed
		RedisURL:     getEnv("REDIS_URL", ""),
		RedisChannel: getEnv("REDIS_CHANNEL", "snooker_events"),

		// Table geometry
		TableWidth:        getEnvFloat("TABLE_WIDTH", d.Width),
		TableHeight:       getEnvFloat("TABLE_HEIGHT", d.Height),
		TableIndent:       getEnvFloat("TABLE_INDENT", d.Indent),
		BallDiameterRatio: getEnvFloat("BALL_DIAMETER_RATIO", d.BallDiameterRatio),
		PocketSizeRatio:   getEnvFloat("POCKET_SIZE_RATIO", d.PocketSizeRatio),

		// Cue
		MaxCueSpeedX: getEnvFloat("MAX_CUE_SPEED_X", d.MaxCueSpeedX),
		MaxCueSpeedY: getEnvFloat("MAX_CUE_SPEED_Y", d.MaxCueSpeedY),
		SpeedDivisor: getEnvFloat("SPEED_DIVISOR", d.SpeedDivisor),

		// Physics
		FrictionRate:        getEnvFloat("FRICTION_RATE", d.FrictionRate),
		CollisionThreshold:  getEnvFloat("COLLISION_THRESHOLD", d.CollisionThreshold),
		StopSpeed:           getEnvFloat("STOP_SPEED", d.StopSpeed),
		SubSteps:            getEnvInt("SUB_STEPS", d.SubSteps),
		TickMillis:          getEnvInt("TICK_MILLIS", int(d.TickDuration/time.Millisecond)),
		MaxReplacementSteps: getEnvInt("MAX_REPLACEMENT_STEPS", d.MaxReplacementSteps),

		// Players
		Player1Name: getEnv("PLAYER1_NAME", d.PlayerNames[0]),
		Player2Name: getEnv("PLAYER2_NAME", d.PlayerNames[1]),
	}
}

// GameConfig maps the environment onto the simulation settings. The result
// still needs game.Config.Validate.
func (c *Config) GameConfig() game.Config {
	g := game.DefaultConfig()
	g.Width = c.TableWidth
	g.Height = c.TableHeight
	g.Indent = c.TableIndent
	g.BallDiameterRatio = c.BallDiameterRatio
	g.PocketSizeRatio = c.PocketSizeRatio
	g.MaxCueSpeedX = c.MaxCueSpeedX
	g.MaxCueSpeedY = c.MaxCueSpeedY
	g.SpeedDivisor = c.SpeedDivisor
	g.FrictionRate = c.FrictionRate
	g.CollisionThreshold = c.CollisionThreshold
	g.StopSpeed = c.StopSpeed
	g.SubSteps = c.SubSteps
	g.TickDuration = time.Duration(c.TickMillis) * time.Millisecond
	g.MaxReplacementSteps = c.MaxReplacementSteps
	g.PlayerNames = [2]string{c.Player1Name, c.Player2Name}
	return g
}

// Addr is the listen address for the bridge.
func (c *Config) Addr() string {
	return c.Host + ":" + c.Port
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}
