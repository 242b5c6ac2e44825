package lww

// Register is a single-value last-writer-wins register for callers merging
// replica states pairwise instead of folding a row stream. It applies the
// same total order and the same NULL policy as the Accumulator, so both
// entry points resolve a given set of writes identically.
type Register struct {
	acc Accumulator
}

// Apply merges one update into the register. It reports whether the update
// became the new winner.
func (r *Register) Apply(u Update) (won bool, err error) {
	before, _ := r.acc.WinningKey()
	hadKey := r.acc.Initialized()
	if err := r.acc.Accept(u); err != nil {
		return false, err
	}
	after, _ := r.acc.WinningKey()
	return !hadKey || after.Beats(before), nil
}

// Get returns the current winning payload. The Value is borrowed from the
// register; ok is false when the register is empty or holds NULL.
func (r *Register) Get() (Value, bool) {
	return r.acc.Current()
}

// Key returns the key of the current winner, if any.
func (r *Register) Key() (Key, bool) {
	return r.acc.WinningKey()
}

// Clear releases any held payload and empties the register.
func (r *Register) Clear() {
	r.acc.Release()
}
