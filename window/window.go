// Package window drives the last-writer-wins reduction as a windowed
// aggregate over an ordered row slice.
//
// The accumulator's Retract is a declared no-op, so incremental results are
// stale for any frame that dropped rows. This driver applies the required
// recovery policy: frames that only grow at the end are extended
// incrementally, and any frame whose start moved is recomputed from scratch.
package window

import (
	"fmt"

	kitErrors "github.com/c0deZ3R0/go-lww-kit/errors"
	"github.com/c0deZ3R0/go-lww-kit/lww"
)

// Frame is a half-open row range [Start, End) within the driver's row slice.
// An empty frame (Start == End) yields no value.
type Frame struct {
	Start int
	End   int
}

// SlidingFrames returns one frame per output row over n rows, each covering
// the size-1 preceding rows plus the current row (ROWS size-1 PRECEDING AND
// CURRENT ROW).
func SlidingFrames(n, size int) []Frame {
	frames := make([]Frame, n)
	for i := 0; i < n; i++ {
		start := i - size + 1
		if start < 0 {
			start = 0
		}
		frames[i] = Frame{Start: start, End: i + 1}
	}
	return frames
}

// CumulativeFrames returns one frame per output row over n rows, each
// covering every row from the first through the current one.
func CumulativeFrames(n int) []Frame {
	frames := make([]Frame, n)
	for i := 0; i < n; i++ {
		frames[i] = Frame{Start: 0, End: i + 1}
	}
	return frames
}

// Driver evaluates the reduction frame by frame. Frames may be requested in
// any order; the driver reuses accumulated state only when it is provably
// still exact.
//
// A Driver is not safe for concurrent use. Independent row streams get
// independent drivers.
type Driver struct {
	rows   []lww.Update
	acc    lww.Accumulator
	lo, hi int // rows currently folded into acc: [lo, hi)
	primed bool
}

// NewDriver returns a driver over rows. The slice is not copied; the caller
// must not mutate it while the driver is in use.
func NewDriver(rows []lww.Update) *Driver {
	return &Driver{rows: rows}
}

// Value returns the winning payload for frame f. The returned Value is
// borrowed from the driver's accumulator and is valid until the next Value,
// Finalize or Close call; ok is false when the frame holds no payload,
// which renders as NULL at the boundary.
//
// Value may be called many times while a frame is still open; it never
// alters the winner for the frame it reports on.
func (d *Driver) Value(f Frame) (v lww.Value, ok bool, err error) {
	if f.Start < 0 || f.End < f.Start || f.End > len(d.rows) {
		return nil, false, kitErrors.E(
			kitErrors.OpWindow,
			kitErrors.Component("window"),
			kitErrors.KindInvalidInput,
			kitErrors.ErrCodeValidationFailure,
			fmt.Errorf("frame [%d, %d) out of range for %d rows", f.Start, f.End, len(d.rows)),
		)
	}

	if !d.primed || f.Start != d.lo || f.End < d.hi {
		if d.primed {
			// Protocol fidelity: rows leaving the frame are retracted.
			// Retract keeps no state, so the fold below starts from empty.
			for i := d.lo; i < d.hi && i < f.Start; i++ {
				d.acc.Retract(d.rows[i])
			}
		}
		d.acc.Release()
		d.lo, d.hi = f.Start, f.Start
		d.primed = true
	}

	for d.hi < f.End {
		if err := d.acc.Accept(d.rows[d.hi]); err != nil {
			return nil, false, kitErrors.WrapOpComponentKind(err, string(kitErrors.OpWindow), "window", kitErrors.KindInternal)
		}
		d.hi++
	}

	v, ok = d.acc.Current()
	return v, ok, nil
}

// Finalize reports the winner of the most recently evaluated frame and
// resets the driver's accumulator. Ownership of the returned Value passes
// to the caller. Safe to call before any Value call.
func (d *Driver) Finalize() (lww.Value, bool) {
	d.primed = false
	d.lo, d.hi = 0, 0
	return d.acc.Finalize()
}

// Close releases any state held by the driver. Safe to call repeatedly and
// after Finalize.
func (d *Driver) Close() {
	d.acc.Release()
	d.primed = false
	d.lo, d.hi = 0, 0
}
