// pkg/event/dispatcher.go
package event

import (
	"reflect"
	"slices"

	"github.com/rs/zerolog"
)

// Dispatcher owns the listener registry and the deferred event queue.
// Create one with New; the zero value is not usable.
type Dispatcher struct {
	listeners map[reflect.Type][]listenerEntry
	queue     []func(*Dispatcher)
	// pending holds one-shot listeners that are currently running.
	pending map[Handle]struct{}
	lastID  Handle
	stats   Stats
	logger  zerolog.Logger
}

// New creates an empty Dispatcher. It logs nothing unless WithLogger is given.
func New(opts ...Option) *Dispatcher {
	d := &Dispatcher{
		listeners: make(map[reflect.Type][]listenerEntry),
		pending:   make(map[Handle]struct{}),
		logger:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Subscribe registers listener for events of type T and returns its handle.
func Subscribe[T any](d *Dispatcher, listener func(T), opts ...SubscribeOption) Handle {
	cfg := newSubscribeConfig(opts)
	h := d.nextHandle()
	d.insert(typeKey[T](), listenerEntry{
		handle:   h,
		priority: cfg.priority,
		name:     cfg.name,
		callback: func(ev any) { listener(*ev.(*T)) },
	})
	return h
}

// SubscribeMethod registers a method of instance, given as a method expression such as
// (*Player).OnPing, for events of type T.
func SubscribeMethod[T, C any](d *Dispatcher, instance *C, method func(*C, T), opts ...SubscribeOption) Handle {
	return Subscribe(d, func(ev T) { method(instance, ev) }, opts...)
}

// SubscribeOnce registers listener for a single event of type T. The listener is removed after
// its first invocation and never runs again, including from outer dispatches whose snapshot was
// taken before it fired and from dispatches nested inside that invocation.
func SubscribeOnce[T any](d *Dispatcher, listener func(T), opts ...SubscribeOption) Handle {
	cfg := newSubscribeConfig(opts)
	h := d.nextHandle()
	fired := false
	d.insert(typeKey[T](), listenerEntry{
		handle:   h,
		priority: cfg.priority,
		name:     cfg.name,
		callback: func(ev any) {
			if fired {
				return
			}
			fired = true
			d.pending[h] = struct{}{}
			defer func() {
				delete(d.pending, h)
				d.Remove(h)
			}()
			listener(*ev.(*T))
		},
	})
	return h
}

// SubscribeMethodOnce is the one-shot form of SubscribeMethod.
func SubscribeMethodOnce[T, C any](d *Dispatcher, instance *C, method func(*C, T), opts ...SubscribeOption) Handle {
	return SubscribeOnce(d, func(ev T) { method(instance, ev) }, opts...)
}

// Dispatch delivers ev to every listener of type T before returning. Listeners subscribed or
// removed while the dispatch is running do not change who receives ev.
func Dispatch[T any](d *Dispatcher, ev T) {
	d.dispatch(typeKey[T](), &ev)
}

// Enqueue stores a copy of ev for delivery on the next Process call.
func Enqueue[T any](d *Dispatcher, ev T) {
	key := typeKey[T]()
	d.queue = append(d.queue, func(d *Dispatcher) {
		d.dispatch(key, &ev)
	})
	d.stats.Enqueued++
}

// ListenerCount reports how many listeners are registered for type T.
func ListenerCount[T any](d *Dispatcher) int {
	return len(d.listeners[typeKey[T]()])
}

// Process delivers every queued event in enqueue order against the current listeners.
// Events enqueued while Process runs are kept for the next call.
func (d *Dispatcher) Process() {
	if len(d.queue) == 0 {
		return
	}

	batch := d.queue
	d.queue = nil

	d.logger.Debug().Int("events", len(batch)).Msg("processing queued events")
	for _, deliver := range batch {
		deliver(d)
		d.stats.Processed++
	}
}

// Remove deletes the listener identified by h. Unknown and already removed handles are ignored,
// as is a one-shot listener's handle while that listener is running.
func (d *Dispatcher) Remove(h Handle) {
	if _, running := d.pending[h]; running {
		return
	}

	for key, entries := range d.listeners {
		i := slices.IndexFunc(entries, func(e listenerEntry) bool { return e.handle == h })
		if i < 0 {
			continue
		}

		name := entries[i].name
		entries = slices.Delete(entries, i, i+1)
		if len(entries) == 0 {
			delete(d.listeners, key)
		} else {
			d.listeners[key] = entries
		}
		d.stats.Removed++

		d.logger.Debug().
			Uint64("handle", uint64(h)).
			Stringer("type", key).
			Str("name", name).
			Msg("listener removed")
		return
	}
}

// HasListener reports whether h names a live listener. A running one-shot listener counts as
// already gone.
func (d *Dispatcher) HasListener(h Handle) bool {
	if _, running := d.pending[h]; running {
		return false
	}
	for _, entries := range d.listeners {
		if slices.ContainsFunc(entries, func(e listenerEntry) bool { return e.handle == h }) {
			return true
		}
	}
	return false
}

// Len returns the number of registered listeners across all event types.
func (d *Dispatcher) Len() int {
	n := 0
	for _, entries := range d.listeners {
		n += len(entries)
	}
	return n
}

// QueueLen returns the number of events waiting for Process.
func (d *Dispatcher) QueueLen() int {
	return len(d.queue)
}

// Clear drops every listener and queued event. Handles issued before Clear are not reused.
func (d *Dispatcher) Clear() {
	removed := d.Len()
	d.listeners = make(map[reflect.Type][]listenerEntry)
	d.queue = nil
	d.stats.Removed += uint64(removed)
	d.logger.Debug().Int("listeners", removed).Msg("dispatcher cleared")
}

func (d *Dispatcher) nextHandle() Handle {
	d.lastID++
	return d.lastID
}

// insert places entry before the first listener with a strictly lower priority.
func (d *Dispatcher) insert(key reflect.Type, entry listenerEntry) {
	entries := d.listeners[key]
	i := slices.IndexFunc(entries, func(e listenerEntry) bool { return e.priority < entry.priority })
	if i < 0 {
		i = len(entries)
	}
	d.listeners[key] = slices.Insert(entries, i, entry)
	d.stats.Subscribed++

	d.logger.Debug().
		Uint64("handle", uint64(entry.handle)).
		Stringer("type", key).
		Int32("priority", entry.priority).
		Str("name", entry.name).
		Msg("listener subscribed")
}

func (d *Dispatcher) dispatch(key reflect.Type, payload any) {
	d.stats.Dispatched++

	entries := d.listeners[key]
	if len(entries) == 0 {
		return
	}
	snapshot := slices.Clone(entries)

	d.logger.Trace().Stringer("type", key).Int("listeners", len(snapshot)).Msg("dispatching event")
	for _, e := range snapshot {
		if _, running := d.pending[e.handle]; running {
			d.stats.Skipped++
			continue
		}
		d.stats.Delivered++
		e.callback(payload)
	}
}
