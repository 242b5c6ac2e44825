package lww

import "fmt"

// Accumulator folds candidate updates for one group or window instance and
// tracks the current winner. The zero value is ready to use.
//
// Instances are not safe for concurrent use; the caller serializes Accept,
// Retract, Current and Finalize for a given group. Independent groups each
// get their own Accumulator and share no state.
type Accumulator struct {
	initialized bool
	winner      Value // owned copy, present iff initialized
	key         Key
}

// Accept folds one candidate into the accumulator.
//
// The first candidate seeds the accumulator verbatim, copying its payload
// even when NULL, so a group consisting entirely of NULL payloads still
// reports NULL. After that a candidate replaces the stored winner only when
// its key strictly beats the winner's key and its payload is not NULL: a
// later-keyed NULL never overwrites stored data. The superseded copy is
// released immediately.
//
// A failed payload copy leaves the previous winner intact and is reported
// to the caller; the accumulator never stores a partially copied payload.
func (a *Accumulator) Accept(u Update) error {
	cand := u.Value
	if cand == nil {
		cand = Null{}
	}

	if !a.initialized {
		dup, err := cand.Clone()
		if err != nil {
			return fmt.Errorf("lww: clone payload: %w", err)
		}
		a.winner = dup
		a.key = u.Key
		a.initialized = true
		return nil
	}

	if cand.IsNull() || !u.Key.Beats(a.key) {
		return nil
	}

	dup, err := cand.Clone()
	if err != nil {
		return fmt.Errorf("lww: clone payload: %w", err)
	}
	a.winner.Release()
	a.winner = dup
	a.key = u.Key
	return nil
}

// Retract is the sliding-window "remove this row from the frame" operation
// and is deliberately a no-op: the accumulator keeps whatever winner it
// holds. Exact incremental retraction would need the full multiset of
// in-frame candidates to find the next maximum, so hosts must instead
// rebuild the accumulator from scratch for frames where a row left.
// See the window package for a driver that applies that policy.
func (a *Accumulator) Retract(u Update) {}

// Current returns the stored winning payload without altering state. The
// returned Value is borrowed: it remains owned by the accumulator and is
// valid until the next Accept, Finalize or Release. ok is false when no
// payload is held, which renders as NULL at the boundary.
func (a *Accumulator) Current() (v Value, ok bool) {
	if !a.initialized || a.winner.IsNull() {
		return nil, false
	}
	return a.winner, true
}

// Finalize returns the winning payload and resets the accumulator to its
// empty state. Ownership of the returned Value passes to the caller; the
// accumulator retains nothing afterwards. Safe to call on an accumulator
// that never saw a candidate.
func (a *Accumulator) Finalize() (v Value, ok bool) {
	w := a.winner
	a.winner = nil
	a.initialized = false
	a.key = Key{}

	if w == nil || w.IsNull() {
		if w != nil {
			w.Release()
		}
		return nil, false
	}
	return w, true
}

// Release frees any owned payload copy without reporting a winner, for
// groups abandoned before Finalize. Safe to call repeatedly.
func (a *Accumulator) Release() {
	if a.winner != nil {
		a.winner.Release()
	}
	a.winner = nil
	a.initialized = false
	a.key = Key{}
}

// Initialized reports whether at least one candidate has been accepted
// since the last reset.
func (a *Accumulator) Initialized() bool { return a.initialized }

// WinningKey returns the key of the current winner. ok is false while the
// accumulator is uninitialized.
func (a *Accumulator) WinningKey() (k Key, ok bool) {
	if !a.initialized {
		return Key{}, false
	}
	return a.key, true
}
