package event

// Stats counts dispatcher activity since creation or the last ResetStats.
type Stats struct {
	// Subscribed is the number of listeners added.
	Subscribed uint64 `json:"subscribed" yaml:"subscribed"`

	// Removed is the number of listeners deleted, including one-shot self-removal and Clear.
	Removed uint64 `json:"removed" yaml:"removed"`

	// Dispatched is the number of events delivered, immediately or from the queue.
	Dispatched uint64 `json:"dispatched" yaml:"dispatched"`

	// Delivered is the number of listener invocations.
	Delivered uint64 `json:"delivered" yaml:"delivered"`

	// Skipped is the number of invocations suppressed because a one-shot listener was running.
	Skipped uint64 `json:"skipped" yaml:"skipped"`

	// Enqueued is the number of events queued for Process.
	Enqueued uint64 `json:"enqueued" yaml:"enqueued"`

	// Processed is the number of queued events Process has delivered.
	Processed uint64 `json:"processed" yaml:"processed"`
}

// Stats returns a copy of the activity counters.
func (d *Dispatcher) Stats() Stats {
	return d.stats
}

// ResetStats sets every counter to zero.
func (d *Dispatcher) ResetStats() {
	d.stats = Stats{}
}
