package event

// noCopy lets go vet's copylocks check report Tokens copied by value.
type noCopy struct{}

func (*noCopy) Lock()   {}
func (*noCopy) Unlock() {}

// Token owns a subscription and removes it when closed. Pass Tokens by pointer: two copies of
// one Token would both try to remove the same listener. Use Move to hand ownership to another
// holder.
type Token struct {
	_ noCopy

	d      *Dispatcher
	handle Handle
	active bool
}

// NewToken takes ownership of the subscription h on d.
func NewToken(d *Dispatcher, h Handle) *Token {
	return &Token{d: d, handle: h, active: true}
}

// Listen subscribes listener and returns a Token owning the subscription.
func Listen[T any](d *Dispatcher, listener func(T), opts ...SubscribeOption) *Token {
	return NewToken(d, Subscribe(d, listener, opts...))
}

// ListenOnce is the one-shot form of Listen. Closing the Token after the listener has fired is
// a no-op.
func ListenOnce[T any](d *Dispatcher, listener func(T), opts ...SubscribeOption) *Token {
	return NewToken(d, SubscribeOnce(d, listener, opts...))
}

// Handle returns the owned subscription handle.
func (t *Token) Handle() Handle {
	return t.handle
}

// Active reports whether closing t would remove its listener.
func (t *Token) Active() bool {
	return t != nil && t.active
}

// Close removes the listener if t still owns it. It always returns nil so a Token can be
// deferred or used as an io.Closer.
func (t *Token) Close() error {
	t.Remove()
	return nil
}

// Remove deletes the owned listener now and releases ownership.
func (t *Token) Remove() {
	if !t.Active() {
		return
	}
	t.d.Remove(t.handle)
	t.active = false
}

// Move transfers ownership to a new Token. Closing t afterwards does nothing.
func (t *Token) Move() *Token {
	moved := &Token{d: t.d, handle: t.handle, active: t.active}
	t.active = false
	return moved
}

// Assign releases the subscription t currently owns, then takes ownership of src's.
func (t *Token) Assign(src *Token) {
	if t == src {
		return
	}
	t.Remove()
	t.d, t.handle, t.active = src.d, src.handle, src.active
	src.active = false
}
