// pkg/hook/manager.go
// Package hook provides a lightweight lifecycle extension mechanism.
// Hooks are registered for named lifecycle events and triggered synchronously, in priority
// order, through an event.Dispatcher shared with the rest of the application.
package hook

import (
	"context"

	"github.com/vulntor/tinyevents/pkg/event"
)

// HookFunc represents a function that can be triggered by a hook event.
type HookFunc func(ctx context.Context)

// Triggered is the payload dispatched for every Trigger call. Listeners subscribed to it
// directly observe all hook names.
type Triggered struct {
	Ctx  context.Context
	Name string
}

// Manager stores and manages hooks for different named events.
// Like the dispatcher it wraps, a Manager is not safe for concurrent use.
type Manager struct {
	d         *event.Dispatcher
	triggered map[string]bool
}

// NewManager creates a hook manager on top of d.
func NewManager(d *event.Dispatcher) *Manager {
	return &Manager{
		d:         d,
		triggered: make(map[string]bool),
	}
}

// Register adds a hook function to a named event and returns its handle.
func (m *Manager) Register(name string, fn HookFunc, opts ...event.SubscribeOption) event.Handle {
	return event.Subscribe(m.d, func(t Triggered) {
		if t.Name == name {
			fn(t.Ctx)
		}
	}, opts...)
}

// RegisterOnce adds a hook function that runs on the first trigger of name only.
func (m *Manager) RegisterOnce(name string, fn HookFunc, opts ...event.SubscribeOption) event.Handle {
	var h event.Handle
	fired := false
	h = event.Subscribe(m.d, func(t Triggered) {
		if t.Name != name || fired {
			return
		}
		fired = true
		m.d.Remove(h)
		fn(t.Ctx)
	}, opts...)
	return h
}

// Unregister removes a hook. Unknown handles are ignored.
func (m *Manager) Unregister(h event.Handle) {
	m.d.Remove(h)
}

// Trigger calls all hooks registered to a named event, highest priority first.
func (m *Manager) Trigger(ctx context.Context, name string) {
	m.triggered[name] = true
	event.Dispatch(m.d, Triggered{Ctx: ctx, Name: name})
}

// IsTriggered checks if a specific event has been triggered.
func (m *Manager) IsTriggered(name string) bool {
	return m.triggered[name]
}
