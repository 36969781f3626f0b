package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/playmatatu/snooker/internal/game"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// EventShotResolved is the type of every published shot event.
const EventShotResolved = "shot_resolved"

const eventBuffer = 64

// Publisher is the subset of the Redis client used to fan out events.
type Publisher interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
}

// ShotEvent is the payload published after each resolved shot.
type ShotEvent struct {
	Type  string          `json:"type"`
	Shot  game.ShotResult `json:"shot"`
	State game.MatchState `json:"state"`
}

// ShotFeed publishes resolved shots to a Redis channel for external
// scoreboards. Shots are queued by the engine hook and published from Run,
// so a slow Redis never stalls the tick loop.
type ShotFeed struct {
	client  Publisher
	channel string
	log     logrus.FieldLogger
	events  chan ShotEvent
}

// NewShotFeed creates a feed publishing on channel.
func NewShotFeed(client Publisher, channel string, log logrus.FieldLogger) *ShotFeed {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &ShotFeed{
		client:  client,
		channel: channel,
		log:     log.WithField("component", "events"),
		events:  make(chan ShotEvent, eventBuffer),
	}
}

// Attach registers the feed as a shot hook on e.
func (f *ShotFeed) Attach(e *game.Engine) {
	e.OnShot(f.enqueue)
}

func (f *ShotFeed) enqueue(res game.ShotResult, st game.MatchState) {
	select {
	case f.events <- ShotEvent{Type: EventShotResolved, Shot: res, State: st}:
	default:
		f.log.WithField("shot", res.Shot).Warn("event buffer full, dropping shot event")
	}
}

// Run publishes queued events until ctx is done.
func (f *ShotFeed) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-f.events:
			if err := f.Publish(ctx, ev); err != nil {
				f.log.WithError(err).WithField("shot", ev.Shot.Shot).Warn("publish failed")
			}
		}
	}
}

// Publish sends one event immediately.
func (f *ShotFeed) Publish(ctx context.Context, ev ShotEvent) error {
	b, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal shot event: %w", err)
	}
	n, err := f.client.Publish(ctx, f.channel, b).Result()
	if err != nil {
		return fmt.Errorf("publish to %s: %w", f.channel, err)
	}
	f.log.WithFields(logrus.Fields{
		"shot":        ev.Shot.Shot,
		"subscribers": n,
	}).Debug("shot event published")
	return nil
}
