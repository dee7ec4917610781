// pkg/loop/runner.go
// Package loop drives an event.Dispatcher from a frame loop. Each frame publishes FrameStarted,
// runs the frame callback, processes the deferred queue, publishes FrameEnded and triggers the
// "frame" hook. The loop runs on the caller's goroutine.
package loop

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/vulntor/tinyevents/pkg/event"
	"github.com/vulntor/tinyevents/pkg/hook"
	"github.com/vulntor/tinyevents/pkg/logging"
)

// Hook names triggered by Runner.
const (
	HookStart = "start"
	HookFrame = "frame"
	HookStop  = "stop"
)

// FrameStarted is dispatched at the beginning of every frame, before queued events are
// processed.
type FrameStarted struct {
	Frame uint64
	At    time.Time
}

// FrameEnded is dispatched after the frame's queued events have been delivered.
type FrameEnded struct {
	Frame   uint64
	Elapsed time.Duration
}

// Runner owns the frame cadence for a Dispatcher.
type Runner struct {
	d        *event.Dispatcher
	hooks    *hook.Manager
	interval time.Duration
	onFrame  func(frame uint64)
	logger   zerolog.Logger
	frames   uint64
}

// Option configures a Runner.
type Option func(*Runner)

// WithInterval waits between frames. Zero runs frames back to back.
func WithInterval(interval time.Duration) Option {
	return func(r *Runner) {
		r.interval = interval
	}
}

// WithFrameFunc sets a callback run every frame before the queue is processed.
func WithFrameFunc(fn func(frame uint64)) Option {
	return func(r *Runner) {
		r.onFrame = fn
	}
}

// WithHooks shares an existing hook manager instead of creating one on the dispatcher.
func WithHooks(m *hook.Manager) Option {
	return func(r *Runner) {
		r.hooks = m
	}
}

// WithLogger sets the runner logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(r *Runner) {
		r.logger = logger
	}
}

// New creates a Runner for d.
func New(d *event.Dispatcher, opts ...Option) *Runner {
	r := &Runner{
		d:      d,
		logger: logging.NewLogger("loop", zerolog.TraceLevel),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.hooks == nil {
		r.hooks = hook.NewManager(d)
	}
	return r
}

// Dispatcher returns the driven dispatcher.
func (r *Runner) Dispatcher() *event.Dispatcher { return r.d }

// Hooks returns the lifecycle hook manager.
func (r *Runner) Hooks() *hook.Manager { return r.hooks }

// Frames returns the number of completed frames.
func (r *Runner) Frames() uint64 { return r.frames }

// Step runs exactly one frame.
func (r *Runner) Step(ctx context.Context) {
	frame := r.frames + 1
	start := time.Now()

	event.Dispatch(r.d, FrameStarted{Frame: frame, At: start})
	if r.onFrame != nil {
		r.onFrame(frame)
	}
	queued := r.d.QueueLen()
	r.d.Process()

	elapsed := time.Since(start)
	event.Dispatch(r.d, FrameEnded{Frame: frame, Elapsed: elapsed})
	r.hooks.Trigger(ctx, HookFrame)
	r.frames = frame

	r.logger.Trace().
		Int("queued", queued).
		Dur("elapsed", elapsed).
		MsgFunc(logging.LazyMessage("frame ", frame, " complete"))
}

// Run executes frames until n frames have completed or ctx is done. n == 0 runs until ctx is
// done. The start and stop hooks fire once per call; stop also fires on cancellation.
func (r *Runner) Run(ctx context.Context, n uint64) error {
	r.logger.Debug().Uint64("frames", n).Dur("interval", r.interval).Msg("loop starting")
	r.hooks.Trigger(ctx, HookStart)
	defer func() {
		r.hooks.Trigger(context.WithoutCancel(ctx), HookStop)
		r.logger.Debug().Uint64("frames", r.frames).Msg("loop stopped")
	}()

	var tick <-chan time.Time
	if r.interval > 0 {
		ticker := time.NewTicker(r.interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for done := uint64(0); n == 0 || done < n; done++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		r.Step(ctx)

		if tick == nil || (n != 0 && done+1 == n) {
			continue
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-tick:
		}
	}
	return nil
}
