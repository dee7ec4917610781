// pkg/hook/manager_test.go
package hook_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vulntor/tinyevents/pkg/event"
	"github.com/vulntor/tinyevents/pkg/hook"
)

func TestHookManager_OnShutdown(t *testing.T) {
	t.Parallel()

	mgr := hook.NewManager(event.New())
	ctx := context.Background()

	var hookCalled bool
	mgr.Register("onShutdown", func(ctx context.Context) {
		hookCalled = true
		if ctx.Err() != nil {
			t.Error("context should not be canceled")
		}
	})

	assert.False(t, mgr.IsTriggered("onShutdown"))
	mgr.Trigger(ctx, "onShutdown")

	assert.True(t, hookCalled, "hook was not executed")
	assert.True(t, mgr.IsTriggered("onShutdown"))
}

func TestMultipleHooks(t *testing.T) {
	t.Parallel()

	mgr := hook.NewManager(event.New())

	var callCount int
	const numHooks = 5
	for i := 0; i < numHooks; i++ {
		mgr.Register("test", func(ctx context.Context) {
			callCount++
		})
	}

	mgr.Trigger(context.Background(), "test")
	assert.Equal(t, numHooks, callCount)
}

func TestHooks_OnlyMatchingNameRuns(t *testing.T) {
	t.Parallel()

	mgr := hook.NewManager(event.New())
	var started, stopped int

	mgr.Register("start", func(context.Context) { started++ })
	mgr.Register("stop", func(context.Context) { stopped++ })

	mgr.Trigger(context.Background(), "start")
	mgr.Trigger(context.Background(), "start")

	assert.Equal(t, 2, started)
	assert.Zero(t, stopped)
	assert.False(t, mgr.IsTriggered("stop"))
}

func TestHooks_PriorityOrder(t *testing.T) {
	t.Parallel()

	mgr := hook.NewManager(event.New())
	var order []string

	mgr.Register("frame", func(context.Context) { order = append(order, "late") }, event.WithPriority(-1))
	mgr.Register("frame", func(context.Context) { order = append(order, "early") }, event.WithPriority(1))
	mgr.Register("frame", func(context.Context) { order = append(order, "normal") })

	mgr.Trigger(context.Background(), "frame")
	assert.Equal(t, []string{"early", "normal", "late"}, order)
}

func TestHookWithCanceledContext(t *testing.T) {
	t.Parallel()

	mgr := hook.NewManager(event.New())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var called bool
	mgr.Register("test", func(ctx context.Context) {
		called = true
		if ctx.Err() == nil {
			t.Error("expected context to be canceled")
		}
	})

	mgr.Trigger(ctx, "test")
	assert.True(t, called, "hook should be called even with canceled context")
}

func TestRegisterOnce(t *testing.T) {
	t.Parallel()

	mgr := hook.NewManager(event.New())
	var calls int

	h := mgr.RegisterOnce("init", func(ctx context.Context) {
		calls++
	})

	mgr.Trigger(context.Background(), "other")
	assert.Zero(t, calls, "a different name must not consume the one-shot hook")

	mgr.Trigger(context.Background(), "init")
	mgr.Trigger(context.Background(), "init")
	assert.Equal(t, 1, calls)

	mgr.Unregister(h)
}

func TestRegisterOnce_NestedTrigger(t *testing.T) {
	t.Parallel()

	mgr := hook.NewManager(event.New())
	var calls int

	mgr.RegisterOnce("reload", func(ctx context.Context) {
		calls++
		mgr.Trigger(ctx, "reload")
	})

	mgr.Trigger(context.Background(), "reload")
	assert.Equal(t, 1, calls)
}

func TestRegisterOnce_TriggeredFromEarlierHook(t *testing.T) {
	t.Parallel()

	mgr := hook.NewManager(event.New())
	var calls int
	retriggered := false

	mgr.Register("reload", func(ctx context.Context) {
		if !retriggered {
			retriggered = true
			mgr.Trigger(ctx, "reload")
		}
	}, event.WithPriority(10))
	mgr.RegisterOnce("reload", func(context.Context) { calls++ })

	mgr.Trigger(context.Background(), "reload")
	assert.Equal(t, 1, calls)
}

func TestUnregister(t *testing.T) {
	t.Parallel()

	d := event.New()
	mgr := hook.NewManager(d)
	var calls int

	h := mgr.Register("tick", func(context.Context) { calls++ })
	mgr.Unregister(h)
	mgr.Unregister(h)

	mgr.Trigger(context.Background(), "tick")
	assert.Zero(t, calls)
	assert.False(t, d.HasListener(h))
}
