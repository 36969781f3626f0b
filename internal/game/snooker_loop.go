package game

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/sirupsen/logrus"
)

// CommandKind identifies a queued input command.
type CommandKind string

const (
	CommandShoot    CommandKind = "shoot"
	CommandNominate CommandKind = "nominate"
	CommandAim      CommandKind = "aim"
)

// Command is an input event waiting for the next tick boundary.
type Command struct {
	Kind  CommandKind
	Point Vec2
	done  chan CommandResult
}

// CommandResult reports how a command was applied.
type CommandResult struct {
	Kind      CommandKind `json:"kind"`
	Velocity  Vec2        `json:"velocity,omitempty"`
	Nominated BallColour  `json:"nominated,omitempty"`
	Err       error       `json:"-"`
}

// Engine owns a match and advances it one fixed tick at a time. Commands
// from other goroutines are queued and applied at the start of the next tick.
type Engine struct {
	log      logrus.FieldLogger
	interval time.Duration

	mu    sync.RWMutex
	match *Match
	tick  uint64
	frame Frame

	cmdMu sync.Mutex
	queue []Command

	subMu   sync.Mutex
	subs    map[int]chan Frame
	nextSub int

	hookMu sync.Mutex
	hooks  []ShotHook

	stop     chan struct{}
	stopOnce sync.Once
	stopped  atomic.Bool
}

// ShotHook is called on the loop goroutine after a shot resolves. Hooks must
// not block or call back into the engine's Step.
type ShotHook func(res ShotResult, state MatchState)

// NewEngine builds a standard table and match from cfg.
func NewEngine(cfg Config, log logrus.FieldLogger) (*Engine, error) {
	t, err := NewStandardTable(cfg)
	if err != nil {
		return nil, fmt.Errorf("build table: %w", err)
	}
	return NewEngineForMatch(NewMatch(t, log), log), nil
}

// NewEngineForMatch wraps an existing match.
func NewEngineForMatch(m *Match, log logrus.FieldLogger) *Engine {
	if log == nil {
		log = logrus.StandardLogger()
	}
	e := &Engine{
		log:      log.WithField("component", "engine"),
		interval: m.Table().Config().TickDuration,
		match:    m,
		subs:     make(map[int]chan Frame),
		stop:     make(chan struct{}),
	}
	e.frame = BuildFrame(m, 0)
	return e
}

// Submit queues a command. The returned channel receives exactly one result
// once the command has been applied.
func (e *Engine) Submit(cmd Command) (<-chan CommandResult, error) {
	cmd.done = make(chan CommandResult, 1)
	e.cmdMu.Lock()
	defer e.cmdMu.Unlock()
	if e.stopped.Load() {
		return nil, ErrEngineStopped
	}
	e.queue = append(e.queue, cmd)
	return cmd.done, nil
}

// Shoot queues a pointer release.
func (e *Engine) Shoot(p Vec2) (<-chan CommandResult, error) {
	return e.Submit(Command{Kind: CommandShoot, Point: p})
}

// Nominate queues a nomination click.
func (e *Engine) Nominate(p Vec2) (<-chan CommandResult, error) {
	return e.Submit(Command{Kind: CommandNominate, Point: p})
}

// AimAt queues a pointer move.
func (e *Engine) AimAt(p Vec2) (<-chan CommandResult, error) {
	return e.Submit(Command{Kind: CommandAim, Point: p})
}

// Step applies queued commands and advances the match by one tick. It
// returns the shot result on the tick a shot is resolved.
func (e *Engine) Step() (*ShotResult, error) {
	if e.stopped.Load() {
		return nil, ErrEngineStopped
	}

	e.cmdMu.Lock()
	cmds := e.queue
	e.queue = nil
	e.cmdMu.Unlock()

	e.mu.Lock()
	for _, cmd := range cmds {
		e.apply(cmd)
	}
	report, res := e.match.Advance()
	e.tick++
	frame := BuildFrame(e.match, e.tick)
	e.frame = frame
	var state MatchState
	if res != nil {
		state = e.match.State()
	}
	e.mu.Unlock()

	if report.Collisions > 0 || len(report.Pocketed) > 0 {
		e.log.WithFields(logrus.Fields{
			"tick":       frame.Tick,
			"collisions": report.Collisions,
			"cushions":   report.Cushions,
			"pocketed":   len(report.Pocketed),
		}).Debug("tick")
	}
	e.publish(frame)
	if res != nil {
		e.notifyShot(*res, state)
	}
	return res, nil
}

// OnShot registers a hook run after every resolved shot.
func (e *Engine) OnShot(h ShotHook) {
	e.hookMu.Lock()
	defer e.hookMu.Unlock()
	e.hooks = append(e.hooks, h)
}

func (e *Engine) notifyShot(res ShotResult, state MatchState) {
	e.hookMu.Lock()
	hooks := append([]ShotHook(nil), e.hooks...)
	e.hookMu.Unlock()
	for _, h := range hooks {
		h(res, state)
	}
}

func (e *Engine) apply(cmd Command) {
	out := CommandResult{Kind: cmd.Kind}
	switch cmd.Kind {
	case CommandShoot:
		out.Velocity, out.Err = e.match.Shoot(cmd.Point)
	case CommandNominate:
		out.Nominated, out.Err = e.match.Nominate(cmd.Point)
	case CommandAim:
		e.match.Aim(cmd.Point)
	default:
		out.Err = fmt.Errorf("unknown command %q", cmd.Kind)
	}
	if out.Err != nil {
		e.log.WithError(out.Err).WithFields(logrus.Fields{
			"command": cmd.Kind,
			"phase":   e.match.Phase(),
		}).Warn("command rejected")
	}
	cmd.done <- out
}

// Run steps the engine every tick until ctx is done or Shutdown is called.
// A panic in the loop is reported to sentry and shuts the engine down.
func (e *Engine) Run(ctx context.Context) error {
	defer e.Shutdown()
	defer sentry.Recover()

	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	e.log.WithField("interval", e.interval).Info("engine loop started")
	for {
		select {
		case <-ctx.Done():
			e.Shutdown()
			return ctx.Err()
		case <-e.stop:
			e.log.Info("engine loop stopped")
			return nil
		case <-ticker.C:
			if _, err := e.Step(); err != nil {
				return nil
			}
		}
	}
}

// Shutdown stops the loop after the current tick. Queued commands are
// answered with ErrEngineStopped and subscriber channels are closed. It is
// safe to call more than once.
func (e *Engine) Shutdown() {
	e.stopOnce.Do(func() {
		e.stopped.Store(true)
		close(e.stop)

		e.cmdMu.Lock()
		for _, cmd := range e.queue {
			cmd.done <- CommandResult{Kind: cmd.Kind, Err: ErrEngineStopped}
		}
		e.queue = nil
		e.cmdMu.Unlock()

		e.subMu.Lock()
		for id, ch := range e.subs {
			close(ch)
			delete(e.subs, id)
		}
		e.subMu.Unlock()
	})
}

// Done is closed once Shutdown has been called.
func (e *Engine) Done() <-chan struct{} { return e.stop }

// Frame returns the most recent frame.
func (e *Engine) Frame() Frame {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.frame
}

// State returns a snapshot of the match.
func (e *Engine) State() MatchState {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.match.State()
}

// Subscribe returns a channel carrying frames as they are built. A slow
// reader only ever sees the newest frame. Call cancel to unsubscribe.
func (e *Engine) Subscribe() (frames <-chan Frame, cancel func()) {
	ch := make(chan Frame, 1)
	e.subMu.Lock()
	if e.stopped.Load() {
		e.subMu.Unlock()
		close(ch)
		return ch, func() {}
	}
	ch <- e.Frame()
	id := e.nextSub
	e.nextSub++
	e.subs[id] = ch
	e.subMu.Unlock()

	return ch, func() {
		e.subMu.Lock()
		defer e.subMu.Unlock()
		if c, ok := e.subs[id]; ok {
			close(c)
			delete(e.subs, id)
		}
	}
}

func (e *Engine) publish(f Frame) {
	e.subMu.Lock()
	defer e.subMu.Unlock()
	for _, ch := range e.subs {
		select {
		case ch <- f:
			continue
		default:
		}
		// Drop the stale frame and retry once.
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- f:
		default:
		}
	}
}
