// pkg/bench/bench.go
// Package bench drives a synthetic listener workload through an event.Dispatcher and a frame
// loop, and checks the dispatcher's delivery guarantees while doing so.
package bench

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/vulntor/tinyevents/pkg/event"
	"github.com/vulntor/tinyevents/pkg/logging"
	"github.com/vulntor/tinyevents/pkg/loop"
)

var (
	// ErrOrderViolation is returned when listeners of one dispatch ran out of priority order.
	ErrOrderViolation = errors.New("listener priority order violated")
	// ErrDeliveryMismatch is returned when an event was delivered a different number of times
	// than expected, or queued events arrived out of enqueue order.
	ErrDeliveryMismatch = errors.New("delivery count mismatch")
)

// Ping is dispatched immediately.
type Ping struct{ Seq uint64 }

// Pong is always queued.
type Pong struct{ Seq uint64 }

// Tick is queued once per frame.
type Tick struct {
	Seq   uint64
	Frame uint64
}

// Options describes one benchmark run.
type Options struct {
	Listeners      int
	EventsPerFrame int
	OnceRatio      float64
	MinPriority    int32
	MaxPriority    int32
	Seed           uint64
	Frames         uint64
	Interval       time.Duration
	Logger         *zerolog.Logger
}

// Report summarizes a run.
type Report struct {
	RunID           string        `json:"run_id" yaml:"run_id"`
	Listeners       int           `json:"listeners" yaml:"listeners"`
	OneShot         int           `json:"one_shot" yaml:"one_shot"`
	Frames          uint64        `json:"frames" yaml:"frames"`
	Immediate       uint64        `json:"immediate" yaml:"immediate"`
	Queued          uint64        `json:"queued" yaml:"queued"`
	OrderViolations int           `json:"order_violations" yaml:"order_violations"`
	Duration        time.Duration `json:"duration" yaml:"duration"`
	EventsPerSecond float64       `json:"events_per_second" yaml:"events_per_second"`
	Stats           event.Stats   `json:"stats" yaml:"stats"`
	// Failure holds the error that ended the run or failed a self-check. Empty on success.
	Failure string `json:"failure,omitempty" yaml:"failure,omitempty"`
}

// sentinelPriority sits below every generated priority so the sentinel observes each event last.
const sentinelPriority = math.MinInt32

// Run executes the workload described by opts. A non-nil Report is returned whenever the loop
// ran, including when a self-check failed.
func Run(ctx context.Context, opts Options) (*Report, error) {
	if opts.Listeners < 1 {
		return nil, fmt.Errorf("bench: listeners must be positive, got %d", opts.Listeners)
	}
	if opts.MaxPriority < opts.MinPriority {
		return nil, fmt.Errorf("bench: priority range [%d, %d] is empty", opts.MinPriority, opts.MaxPriority)
	}

	logger := logging.NewLogger("bench", zerolog.TraceLevel)
	if opts.Logger != nil {
		logger = *opts.Logger
	}

	runID := uuid.NewString()
	logger = logger.With().Str("run_id", runID).Logger()

	w := newWorkload(opts, logger)
	w.subscribeAll()

	r := loop.New(w.d,
		loop.WithInterval(opts.Interval),
		loop.WithFrameFunc(w.frame),
		loop.WithLogger(logger),
	)
	r.Hooks().Register(loop.HookFrame, func(context.Context) { w.replenish() })

	logger.Info().
		Int("listeners", opts.Listeners).
		Int("one_shot", w.oneShot).
		Uint64("frames", opts.Frames).
		Int("events_per_frame", opts.EventsPerFrame).
		Msg("bench starting")

	start := time.Now()
	runErr := r.Run(ctx, opts.Frames)
	// Deliver whatever the last frame queued so the delivery check sees every event.
	w.d.Process()
	elapsed := time.Since(start)

	report := &Report{
		RunID:           runID,
		Listeners:       opts.Listeners,
		OneShot:         w.oneShot,
		Frames:          r.Frames(),
		Immediate:       w.immediate,
		Queued:          w.queued,
		OrderViolations: w.violations,
		Duration:        elapsed,
		Stats:           w.d.Stats(),
	}
	if secs := elapsed.Seconds(); secs > 0 {
		report.EventsPerSecond = float64(w.immediate+w.queued) / secs
	}

	if runErr != nil {
		err := fmt.Errorf("bench: loop stopped: %w", runErr)
		report.Failure = err.Error()
		return report, err
	}
	if err := w.verify(); err != nil {
		report.Failure = err.Error()
		return report, err
	}

	logger.Info().
		Dur("duration", elapsed).
		Float64("events_per_second", report.EventsPerSecond).
		Msg("bench finished")
	return report, nil
}

// workload holds the listeners, expectations and observations of one run.
type workload struct {
	opts   Options
	d      *event.Dispatcher
	rng    *rand.Rand
	logger zerolog.Logger

	seq       uint64
	immediate uint64
	queued    uint64
	oneShot   int

	order      map[string]*orderTracker
	violations int

	// expected holds, per immediate Ping seq, the listener count at dispatch time;
	// deliveries counts invocations per seq across all types.
	expected   map[uint64]int
	deliveries map[uint64]int

	// queuedOrder records the order in which the Pong/Tick sentinels saw queued seqs.
	enqueuedOrder []uint64
	queuedOrder   []uint64

	// fired counts invocations per one-shot handle; consumed holds those to replace.
	fired    map[event.Handle]int
	consumed []consumedOnce
}

type consumedOnce struct {
	kind     int
	priority int32
}

type orderTracker struct {
	seq  uint64
	last int32
}

func newWorkload(opts Options, logger zerolog.Logger) *workload {
	return &workload{
		opts:       opts,
		d:          event.New(event.WithLogger(logger)),
		rng:        rand.New(rand.NewPCG(opts.Seed, opts.Seed^0x9e3779b97f4a7c15)),
		logger:     logger,
		order:      make(map[string]*orderTracker),
		expected:   make(map[uint64]int),
		deliveries: make(map[uint64]int),
		fired:      make(map[event.Handle]int),
	}
}

func (w *workload) priority() int32 {
	span := int64(w.opts.MaxPriority) - int64(w.opts.MinPriority) + 1
	return int32(int64(w.opts.MinPriority) + w.rng.Int64N(span))
}

func (w *workload) subscribeAll() {
	for i := 0; i < w.opts.Listeners; i++ {
		once := w.rng.Float64() < w.opts.OnceRatio
		if once {
			w.oneShot++
		}
		w.subscribe(i%3, w.priority(), once)
	}

	event.Subscribe(w.d, func(p Ping) {
		w.observe("ping", p.Seq, sentinelPriority)
	}, event.WithPriority(sentinelPriority), event.WithName("ping-sentinel"))
	event.Subscribe(w.d, func(p Pong) {
		w.observe("pong", p.Seq, sentinelPriority)
		w.queuedOrder = append(w.queuedOrder, p.Seq)
	}, event.WithPriority(sentinelPriority), event.WithName("pong-sentinel"))
	event.Subscribe(w.d, func(t Tick) {
		w.observe("tick", t.Seq, sentinelPriority)
		w.queuedOrder = append(w.queuedOrder, t.Seq)
	}, event.WithPriority(sentinelPriority), event.WithName("tick-sentinel"))
}

// subscribe registers one generated listener of the given kind (0 Ping, 1 Pong, 2 Tick).
func (w *workload) subscribe(kind int, priority int32, once bool) {
	opts := []event.SubscribeOption{event.WithPriority(priority)}
	switch kind {
	case 0:
		subscribeTracked(w, "ping", func(p Ping) uint64 { return p.Seq }, kind, priority, once, opts)
	case 1:
		subscribeTracked(w, "pong", func(p Pong) uint64 { return p.Seq }, kind, priority, once, opts)
	default:
		subscribeTracked(w, "tick", func(t Tick) uint64 { return t.Seq }, kind, priority, once, opts)
	}
}

func subscribeTracked[T any](w *workload, name string, seqOf func(T) uint64, kind int, priority int32, once bool, opts []event.SubscribeOption) {
	if !once {
		event.Subscribe(w.d, func(ev T) {
			w.observe(name, seqOf(ev), priority)
		}, opts...)
		return
	}

	var h event.Handle
	h = event.SubscribeOnce(w.d, func(ev T) {
		w.observe(name, seqOf(ev), priority)
		w.fired[h]++
		if w.fired[h] == 1 {
			w.consumed = append(w.consumed, consumedOnce{kind: kind, priority: priority})
		}
	}, opts...)
}

// observe counts a delivery and checks that priorities seen within one dispatch never increase.
func (w *workload) observe(name string, seq uint64, priority int32) {
	w.deliveries[seq]++

	tr, ok := w.order[name]
	if !ok {
		tr = &orderTracker{}
		w.order[name] = tr
	}
	if tr.seq == seq && priority > tr.last {
		w.violations++
		w.logger.Error().
			Str("type", name).
			Uint64("seq", seq).
			Int32("priority", priority).
			Int32("previous", tr.last).
			Msg("priority order violated")
	}
	tr.seq = seq
	tr.last = priority
}

func (w *workload) nextSeq() uint64 {
	w.seq++
	return w.seq
}

// frame publishes this frame's events.
func (w *workload) frame(frame uint64) {
	for i := 0; i < w.opts.EventsPerFrame; i++ {
		seq := w.nextSeq()
		// Every live Ping listener, sentinel included, is in the snapshot.
		w.expected[seq] = event.ListenerCount[Ping](w.d)
		event.Dispatch(w.d, Ping{Seq: seq})
		w.immediate++

		seq = w.nextSeq()
		event.Enqueue(w.d, Pong{Seq: seq})
		w.enqueuedOrder = append(w.enqueuedOrder, seq)
		w.queued++
	}

	seq := w.nextSeq()
	event.Enqueue(w.d, Tick{Seq: seq, Frame: frame})
	w.enqueuedOrder = append(w.enqueuedOrder, seq)
	w.queued++
}

// replenish replaces one-shot listeners consumed during the frame.
func (w *workload) replenish() {
	for _, c := range w.consumed {
		w.subscribe(c.kind, c.priority, true)
	}
	w.consumed = w.consumed[:0]
}

func (w *workload) verify() error {
	if w.violations > 0 {
		return fmt.Errorf("%w: %d violations", ErrOrderViolation, w.violations)
	}

	for h, n := range w.fired {
		if n != 1 {
			return fmt.Errorf("%w: one-shot listener %d fired %d times", ErrDeliveryMismatch, h, n)
		}
	}

	for seq, want := range w.expected {
		if got := w.deliveries[seq]; got != want {
			return fmt.Errorf("%w: ping %d delivered %d times, want %d", ErrDeliveryMismatch, seq, got, want)
		}
	}

	if len(w.queuedOrder) != len(w.enqueuedOrder) {
		return fmt.Errorf("%w: %d queued events enqueued, %d delivered",
			ErrDeliveryMismatch, len(w.enqueuedOrder), len(w.queuedOrder))
	}
	for i, seq := range w.enqueuedOrder {
		if w.queuedOrder[i] != seq {
			return fmt.Errorf("%w: queued event %d delivered at position %d out of order",
				ErrDeliveryMismatch, seq, i)
		}
	}

	return nil
}
