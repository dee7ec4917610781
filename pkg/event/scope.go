package event

// Scope collects Tokens so that an owner holding several subscriptions can release them with a
// single Close. The zero value is ready to use.
type Scope struct {
	_ noCopy

	tokens []*Token
}

// Add takes ownership of t and returns its handle.
func (s *Scope) Add(t *Token) Handle {
	s.tokens = append(s.tokens, t.Move())
	return t.Handle()
}

// Len returns the number of tokens that still own a listener.
func (s *Scope) Len() int {
	n := 0
	for _, t := range s.tokens {
		if t.Active() {
			n++
		}
	}
	return n
}

// Close removes every owned listener, most recently added first.
func (s *Scope) Close() error {
	for i := len(s.tokens) - 1; i >= 0; i-- {
		s.tokens[i].Remove()
	}
	s.tokens = nil
	return nil
}
