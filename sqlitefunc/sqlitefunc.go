// Package sqlitefunc registers the last-writer-wins reduction as a SQLite
// aggregate function, under two names: keep_last for plain GROUP BY
// aggregation and keep_last_window for windowed use.
//
// Both names bind the same step/finalize pair. Argument order is fixed:
// payload first, then timestamp, origin id, sequence id. The function is
// deterministic and side-effect free, so it is registered as pure.
package sqlitefunc

import (
	sqlite3 "github.com/mattn/go-sqlite3"

	kitErrors "github.com/c0deZ3R0/go-lww-kit/errors"
	"github.com/c0deZ3R0/go-lww-kit/lww"
)

// Registered function names.
const (
	FuncKeepLast       = "keep_last"
	FuncKeepLastWindow = "keep_last_window"
)

// Operation constants for consistent error reporting
const (
	opRegister = "sqlitefunc.Register"
	opOpen     = "sqlitefunc.Open"
)

// Func adapts one lww.Accumulator to the host engine's four-entry
// aggregate/window protocol. The engine creates one Func per group or
// window instance and serializes all calls to it.
type Func struct {
	acc lww.Accumulator
}

// NewFunc is the aggregator constructor handed to the driver. SQLite calls
// it once per group.
func NewFunc() *Func { return &Func{} }

// Step folds one row: payload, timestamp, origin id, sequence id. The
// registration fixes the arity at four, so the driver never delivers a
// short row here; StepRow carries the guard for hosts that feed raw rows.
//
// A failed payload copy leaves the previous winner authoritative, so the
// error is intentionally not surfaced to the engine (there is nothing to
// retry: resolution is a pure function of its inputs).
func (f *Func) Step(value any, timestamp, originID, sequenceID int64) {
	_ = f.acc.Accept(lww.Update{
		Value: lww.FromAny(value),
		Key: lww.Key{
			Timestamp:  timestamp,
			OriginID:   originID,
			SequenceID: sequenceID,
		},
	})
}

// StepRow folds one raw row. Rows with fewer than four fields are ignored
// as a no-op; extra fields beyond the fourth are ignored too. Key fields
// that are not integers make the row malformed, so it is skipped the same
// way.
func (f *Func) StepRow(args ...any) {
	if len(args) < 4 {
		return
	}
	timestamp, ok1 := args[1].(int64)
	originID, ok2 := args[2].(int64)
	sequenceID, ok3 := args[3].(int64)
	if !ok1 || !ok2 || !ok3 {
		return
	}
	f.Step(args[0], timestamp, originID, sequenceID)
}

// Value reports the winner for the currently open window frame without
// consuming it. May be called many times per frame. A held NULL payload or
// an empty accumulator renders as nil.
func (f *Func) Value() any {
	v, ok := f.acc.Current()
	if !ok {
		return nil
	}
	return lww.AsAny(v)
}

// Inverse is the window "remove row from frame" callback and is a no-op:
// hosts must recompute frames that dropped rows (see the window package).
func (f *Func) Inverse(value any, timestamp, originID, sequenceID int64) {}

// Done finalizes the group: it renders the winner (or nil) and releases all
// accumulator state. SQLite calls it exactly once per group.
func (f *Func) Done() any {
	v, ok := f.acc.Finalize()
	if !ok {
		return nil
	}
	out := lww.AsAny(v)
	v.Release()
	return out
}

// Register installs keep_last and keep_last_window on a single connection.
// Intended for use as a driver ConnectHook so every pooled connection
// carries both functions.
func Register(conn *sqlite3.SQLiteConn) error {
	if err := conn.RegisterAggregator(FuncKeepLast, NewFunc, true); err != nil {
		return kitErrors.NewRegistrationError(kitErrors.Op(opRegister), err)
	}
	if err := conn.RegisterAggregator(FuncKeepLastWindow, NewFunc, true); err != nil {
		return kitErrors.NewRegistrationError(kitErrors.Op(opRegister), err)
	}
	return nil
}
