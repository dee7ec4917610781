// pkg/event/event.go
// Package event provides an in-process, synchronous, type-keyed publish/subscribe dispatcher.
//
// Listeners subscribe to a payload type and run in priority order, highest first, with ties
// kept in subscription order. Events are either delivered immediately with Dispatch or queued
// with Enqueue and delivered by a later call to Dispatcher.Process, typically once per frame.
//
// A Dispatcher is not safe for concurrent use. Listeners may subscribe, remove, dispatch and
// enqueue from inside their own invocation; each dispatch iterates a snapshot of the listener
// list taken when it starts.
//
// Handles and Tokens must not be used after their Dispatcher has been discarded by its owner.
// This is not checked at runtime.
package event

import "reflect"

// Handle identifies one subscription. Handles are allocated from 1 upward per Dispatcher and are
// never reused; the zero Handle never names a subscription.
type Handle uint64

type listenerEntry struct {
	handle   Handle
	priority int32
	name     string
	// callback receives a *T boxed in an any and unwraps it for the typed listener.
	callback func(any)
}

// typeKey returns the registry key for payload type T. Interface types key on the interface
// itself, not on the dynamic type of the value.
func typeKey[T any]() reflect.Type {
	return reflect.TypeFor[T]()
}
