package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
	"github.com/go-echarts/statsview"
	"github.com/go-echarts/statsview/viewer"
	"github.com/playmatatu/snooker/internal/api"
	"github.com/playmatatu/snooker/internal/config"
	"github.com/playmatatu/snooker/internal/game"
	"github.com/playmatatu/snooker/internal/redis"
	"github.com/playmatatu/snooker/internal/ws"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

func main() {
	cfg := config.Load()

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{
		TimestampFormat: "2006-01-02 15:04:05",
		FullTimestamp:   true,
	})
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.WithError(err).Warn("unknown LOG_LEVEL, using info")
		level = logrus.InfoLevel
	}
	log.SetLevel(level)

	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:         cfg.SentryDSN,
			Environment: cfg.Environment,
		}); err != nil {
			log.WithError(err).Fatal("failed to initialise sentry")
		}
		defer sentry.Flush(2 * time.Second)
	}

	if cfg.ProfilerAddr != "" {
		viewer.SetConfiguration(viewer.WithTheme(viewer.ThemeWesteros), viewer.WithAddr(cfg.ProfilerAddr))
		mgr := statsview.New()
		go mgr.Start()
		defer mgr.Stop()
		log.WithField("addr", cfg.ProfilerAddr).Info("stats viewer enabled")
	}

	gcfg := cfg.GameConfig()
	if err := gcfg.Validate(); err != nil {
		log.WithError(err).Fatal("invalid table configuration")
	}
	engine, err := game.NewEngine(gcfg, log)
	if err != nil {
		log.WithError(err).Fatal("failed to build match")
	}
	hub := ws.NewHub(engine, log)

	var feed *redis.ShotFeed
	if cfg.RedisURL != "" {
		var closeFeed func() error
		feed, closeFeed, err = redis.OpenShotFeed(context.Background(), cfg.RedisURL, cfg.RedisChannel, log)
		if err != nil {
			log.WithError(err).Fatal("failed to open shot event feed")
		}
		defer closeFeed()
		feed.Attach(engine)
		log.WithField("channel", cfg.RedisChannel).Info("shot event feed enabled")
	}

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	api.SetupRoutes(router, engine, hub, cfg, log)

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return engine.Run(gctx)
	})
	g.Go(func() error {
		return hub.Run(gctx)
	})
	if feed != nil {
		g.Go(func() error {
			return feed.Run(gctx)
		})
	}
	g.Go(func() error {
		log.WithField("addr", srv.Addr).Info("starting snooker bridge")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		select {
		case <-gctx.Done():
		case <-engine.Done():
		}
		log.Info("shutting down")
		engine.Shutdown()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.WithError(err).Error("server stopped with error")
		os.Exit(1)
	}
	log.Info("server stopped")
}
