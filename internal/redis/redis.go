package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const pingTimeout = 5 * time.Second

// Connect opens a client for redisURL and checks it with a PING.
func Connect(ctx context.Context, redisURL string, log logrus.FieldLogger) (*redis.Client, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	start := time.Now()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis at %s: %w", opt.Addr, err)
	}

	if log != nil {
		log.WithFields(logrus.Fields{
			"component": "events",
			"addr":      opt.Addr,
			"db":        opt.DB,
			"ping":      time.Since(start),
		}).Info("redis connected")
	}
	return client, nil
}

// OpenShotFeed connects to redisURL and returns a feed publishing on
// channel. The returned close func releases the client.
func OpenShotFeed(ctx context.Context, redisURL, channel string, log logrus.FieldLogger) (*ShotFeed, func() error, error) {
	if channel == "" {
		return nil, nil, fmt.Errorf("shot feed needs a channel name")
	}
	client, err := Connect(ctx, redisURL, log)
	if err != nil {
		return nil, nil, err
	}
	return NewShotFeed(client, channel, log), client.Close, nil
}
