package bench

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testOptions() Options {
	nop := zerolog.Nop()
	return Options{
		Listeners:      60,
		EventsPerFrame: 4,
		OnceRatio:      0.25,
		MinPriority:    -5,
		MaxPriority:    5,
		Seed:           7,
		Frames:         5,
		Logger:         &nop,
	}
}

func TestRun_PassesSelfChecks(t *testing.T) {
	t.Parallel()

	opts := testOptions()
	report, err := Run(context.Background(), opts)
	require.NoError(t, err)
	require.NotNil(t, report)

	_, err = uuid.Parse(report.RunID)
	require.NoError(t, err)

	assert.Equal(t, opts.Listeners, report.Listeners)
	assert.Equal(t, opts.Frames, report.Frames)
	assert.Equal(t, uint64(opts.EventsPerFrame)*opts.Frames, report.Immediate)
	assert.Equal(t, (uint64(opts.EventsPerFrame)+1)*opts.Frames, report.Queued)
	assert.Zero(t, report.OrderViolations)
	assert.Empty(t, report.Failure)
	assert.Equal(t, report.Queued, report.Stats.Processed)
	assert.Equal(t, report.Queued, report.Stats.Enqueued)
	assert.Positive(t, report.Stats.Delivered)
}

func TestRun_IsDeterministicForSeed(t *testing.T) {
	t.Parallel()

	a, err := Run(context.Background(), testOptions())
	require.NoError(t, err)
	b, err := Run(context.Background(), testOptions())
	require.NoError(t, err)

	assert.Equal(t, a.OneShot, b.OneShot)
	assert.Equal(t, a.Stats, b.Stats)
	assert.NotEqual(t, a.RunID, b.RunID)
}

func TestRun_OneShotListenersAreReplenished(t *testing.T) {
	t.Parallel()

	opts := testOptions()
	opts.OnceRatio = 1
	report, err := Run(context.Background(), opts)
	require.NoError(t, err)

	assert.Equal(t, opts.Listeners, report.OneShot)
	// Replacements are subscribed after every frame that consumed one-shot listeners.
	assert.Greater(t, report.Stats.Subscribed, uint64(opts.Listeners+3))
}

func TestRun_NoEventsPerFrame(t *testing.T) {
	t.Parallel()

	opts := testOptions()
	opts.EventsPerFrame = 0
	report, err := Run(context.Background(), opts)
	require.NoError(t, err)

	assert.Zero(t, report.Immediate)
	assert.Equal(t, opts.Frames, report.Queued, "one tick per frame")
}

func TestRun_InvalidOptions(t *testing.T) {
	t.Parallel()

	opts := testOptions()
	opts.Listeners = 0
	_, err := Run(context.Background(), opts)
	require.Error(t, err)

	opts = testOptions()
	opts.MinPriority, opts.MaxPriority = 3, 1
	_, err = Run(context.Background(), opts)
	require.Error(t, err)
}

func TestRun_Cancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := Run(ctx, testOptions())
	require.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, report)
	assert.Zero(t, report.Frames)
	assert.Contains(t, report.Failure, context.Canceled.Error())
}

func TestRun_WithInterval(t *testing.T) {
	t.Parallel()

	opts := testOptions()
	opts.Frames = 2
	opts.Interval = 2 * time.Millisecond

	report, err := Run(context.Background(), opts)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, report.Duration, opts.Interval)
}

func TestWorkload_ObserveDetectsOrderViolation(t *testing.T) {
	t.Parallel()

	w := newWorkload(testOptions(), zerolog.Nop())
	w.observe("ping", 1, 5)
	w.observe("ping", 1, 3)
	w.observe("ping", 2, 9)
	require.NoError(t, w.verify())

	w.observe("ping", 2, 10)
	err := w.verify()
	require.ErrorIs(t, err, ErrOrderViolation)
}

func TestWorkload_VerifyDetectsDeliveryMismatch(t *testing.T) {
	t.Parallel()

	w := newWorkload(testOptions(), zerolog.Nop())
	w.expected[1] = 2
	w.observe("ping", 1, 0)
	require.ErrorIs(t, w.verify(), ErrDeliveryMismatch)

	w = newWorkload(testOptions(), zerolog.Nop())
	w.enqueuedOrder = []uint64{1, 2}
	w.queuedOrder = []uint64{2, 1}
	require.ErrorIs(t, w.verify(), ErrDeliveryMismatch)

	w = newWorkload(testOptions(), zerolog.Nop())
	w.fired[3] = 2
	require.ErrorIs(t, w.verify(), ErrDeliveryMismatch)
}

func TestWorkload_PriorityStaysInRange(t *testing.T) {
	t.Parallel()

	opts := testOptions()
	opts.MinPriority, opts.MaxPriority = -2, 2
	w := newWorkload(opts, zerolog.Nop())

	seen := make(map[int32]bool)
	for i := 0; i < 500; i++ {
		p := w.priority()
		require.GreaterOrEqual(t, p, int32(-2))
		require.LessOrEqual(t, p, int32(2))
		seen[p] = true
	}
	assert.Len(t, seen, 5)
}
