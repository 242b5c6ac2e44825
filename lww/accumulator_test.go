package lww

import (
	"errors"
	"fmt"
	"testing"
)

// countingValue tracks clone/release pairing for ownership tests.
type countingValue struct {
	name     string
	null     bool
	cloneErr error
	clones   *int
	releases *int
}

func (c *countingValue) Clone() (Value, error) {
	if c.cloneErr != nil {
		return nil, c.cloneErr
	}
	*c.clones++
	return &countingValue{name: c.name, null: c.null, clones: c.clones, releases: c.releases}, nil
}

func (c *countingValue) Release() { *c.releases++ }

func (c *countingValue) IsNull() bool { return c.null }

func upd(v Value, ts, origin, seq int64) Update {
	return Update{Value: v, Key: Key{Timestamp: ts, OriginID: origin, SequenceID: seq}}
}

func finalText(t *testing.T, acc *Accumulator) string {
	t.Helper()
	v, ok := acc.Finalize()
	return asText(t, v, ok)
}

func currentText(t *testing.T, acc *Accumulator) string {
	t.Helper()
	v, ok := acc.Current()
	return asText(t, v, ok)
}

func asText(t *testing.T, v Value, ok bool) string {
	t.Helper()
	if !ok {
		t.Fatalf("expected a winner, got none")
	}
	s, isText := v.(Text)
	if !isText {
		t.Fatalf("expected Text payload, got %T", v)
	}
	return string(s)
}

func TestAccumulator_TieBreak(t *testing.T) {
	tests := []struct {
		name    string
		updates []Update
		want    string
	}{
		{
			name:    "identical key keeps existing winner",
			updates: []Update{upd(Text("v1"), 10, 1, 1), upd(Text("v2"), 10, 1, 1)},
			want:    "v1",
		},
		{
			name:    "higher sequence id wins at equal timestamp and origin",
			updates: []Update{upd(Text("v1"), 10, 1, 1), upd(Text("v2"), 10, 1, 2)},
			want:    "v2",
		},
		{
			name:    "timestamp dominates origin id",
			updates: []Update{upd(Text("v1"), 5, 99, 0), upd(Text("v2"), 10, 1, 0)},
			want:    "v2",
		},
		{
			name:    "higher origin id wins at equal timestamp",
			updates: []Update{upd(Text("v1"), 5, 99, 0), upd(Text("v2"), 5, 1, 0)},
			want:    "v1",
		},
		{
			name:    "stale timestamp never replaces",
			updates: []Update{upd(Text("v1"), 10, 1, 1), upd(Text("v2"), 9, 99, 99)},
			want:    "v1",
		},
		{
			name:    "single candidate is returned exactly",
			updates: []Update{upd(Text("only"), 1, 2, 3)},
			want:    "only",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var acc Accumulator
			for _, u := range tt.updates {
				if err := acc.Accept(u); err != nil {
					t.Fatalf("Accept(%v): %v", u.Key, err)
				}
			}
			got := finalText(t, &acc)
			if got != tt.want {
				t.Fatalf("winner = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestAccumulator_OrderIndependence(t *testing.T) {
	// For a multiset of non-NULL candidates the arrival order must not
	// matter: the comparison key alone determines the winner.
	base := []Update{
		upd(Text("a"), 5, 2, 1),
		upd(Text("b"), 7, 1, 4),
		upd(Text("c"), 7, 3, 0),
		upd(Text("d"), 7, 3, 2), // greatest key
	}

	var permute func(prefix, rest []Update)
	permute = func(prefix, rest []Update) {
		if len(rest) == 0 {
			var acc Accumulator
			for _, u := range prefix {
				if err := acc.Accept(u); err != nil {
					t.Fatalf("Accept: %v", err)
				}
			}
			got := finalText(t, &acc)
			if got != "d" {
				t.Fatalf("winner for order %v = %q, want %q", keysOf(prefix), got, "d")
			}
			return
		}
		for i := range rest {
			next := make([]Update, 0, len(rest)-1)
			next = append(next, rest[:i]...)
			next = append(next, rest[i+1:]...)
			permute(append(prefix, rest[i]), next)
		}
	}
	permute(nil, base)
}

func keysOf(updates []Update) []Key {
	keys := make([]Key, len(updates))
	for i, u := range updates {
		keys[i] = u.Key
	}
	return keys
}

func TestAccumulator_NullPolicy(t *testing.T) {
	t.Run("null seed reports null", func(t *testing.T) {
		var acc Accumulator
		if err := acc.Accept(upd(Null{}, 1, 1, 1)); err != nil {
			t.Fatalf("Accept: %v", err)
		}
		if v, ok := acc.Finalize(); ok {
			t.Fatalf("expected no value, got %v", v)
		}
	})

	t.Run("nil value is treated as null", func(t *testing.T) {
		var acc Accumulator
		if err := acc.Accept(upd(nil, 1, 1, 1)); err != nil {
			t.Fatalf("Accept: %v", err)
		}
		if v, ok := acc.Current(); ok {
			t.Fatalf("expected no value, got %v", v)
		}
	})

	t.Run("later null never displaces data", func(t *testing.T) {
		var acc Accumulator
		if err := acc.Accept(upd(Text("v1"), 1, 1, 1)); err != nil {
			t.Fatalf("Accept: %v", err)
		}
		if err := acc.Accept(upd(Null{}, 2, 1, 1)); err != nil {
			t.Fatalf("Accept: %v", err)
		}
		if got := finalText(t, &acc); got != "v1" {
			t.Fatalf("winner = %q, want v1", got)
		}
	})

	t.Run("non-null after null seed wins on greater key", func(t *testing.T) {
		var acc Accumulator
		if err := acc.Accept(upd(Null{}, 1, 1, 1)); err != nil {
			t.Fatalf("Accept: %v", err)
		}
		if err := acc.Accept(upd(Text("v2"), 2, 1, 1)); err != nil {
			t.Fatalf("Accept: %v", err)
		}
		if got := finalText(t, &acc); got != "v2" {
			t.Fatalf("winner = %q, want v2", got)
		}
	})

	t.Run("non-null behind null seed key stays hidden", func(t *testing.T) {
		// The null seed tracks key (10,1,1); a smaller-keyed candidate
		// cannot displace it, so the group still reports NULL.
		var acc Accumulator
		if err := acc.Accept(upd(Null{}, 10, 1, 1)); err != nil {
			t.Fatalf("Accept: %v", err)
		}
		if err := acc.Accept(upd(Text("old"), 5, 1, 1)); err != nil {
			t.Fatalf("Accept: %v", err)
		}
		if v, ok := acc.Finalize(); ok {
			t.Fatalf("expected no value, got %v", v)
		}
	})
}

func TestAccumulator_RetractIsNoOp(t *testing.T) {
	var acc Accumulator
	first := upd(Text("v1"), 1, 1, 1)
	second := upd(Text("v2"), 2, 1, 1)
	if err := acc.Accept(first); err != nil {
		t.Fatalf("Accept: %v", err)
	}
	if err := acc.Accept(second); err != nil {
		t.Fatalf("Accept: %v", err)
	}

	acc.Retract(first)
	if got := currentText(t, &acc); got != "v2" {
		t.Fatalf("winner after retract = %q, want v2", got)
	}

	// Retracting the winner itself changes nothing either; frame
	// correctness under retraction is the caller's responsibility.
	acc.Retract(second)
	if got := currentText(t, &acc); got != "v2" {
		t.Fatalf("winner after retracting winner = %q, want v2", got)
	}
}

func TestAccumulator_EmptyFinalize(t *testing.T) {
	var acc Accumulator
	if v, ok := acc.Finalize(); ok {
		t.Fatalf("expected no value from empty accumulator, got %v", v)
	}
	// Finalize must leave the accumulator reusable.
	if err := acc.Accept(upd(Text("v"), 1, 1, 1)); err != nil {
		t.Fatalf("Accept after empty finalize: %v", err)
	}
	if got := finalText(t, &acc); got != "v" {
		t.Fatalf("winner = %q, want v", got)
	}
}

func TestAccumulator_CurrentDoesNotConsume(t *testing.T) {
	var acc Accumulator
	if err := acc.Accept(upd(Text("v"), 1, 1, 1)); err != nil {
		t.Fatalf("Accept: %v", err)
	}
	for i := 0; i < 3; i++ {
		if got := currentText(t, &acc); got != "v" {
			t.Fatalf("Current() call %d = %q, want v", i, got)
		}
	}
	if got := finalText(t, &acc); got != "v" {
		t.Fatalf("Finalize after Current = %q, want v", got)
	}
	if _, ok := acc.Current(); ok {
		t.Fatalf("expected empty accumulator after finalize")
	}
}

func TestAccumulator_ResourcePairing(t *testing.T) {
	// N candidates, each beating the last: exactly N-1 intermediate copies
	// are released and one owned copy stays alive until Finalize.
	const n = 8
	var clones, releases int
	var acc Accumulator
	for i := 0; i < n; i++ {
		src := &countingValue{name: fmt.Sprintf("v%d", i), clones: &clones, releases: &releases}
		if err := acc.Accept(upd(src, int64(i), 1, 1)); err != nil {
			t.Fatalf("Accept %d: %v", i, err)
		}
	}
	if clones != n {
		t.Fatalf("clones = %d, want %d", clones, n)
	}
	if releases != n-1 {
		t.Fatalf("releases before finalize = %d, want %d", releases, n-1)
	}

	v, ok := acc.Finalize()
	if !ok {
		t.Fatalf("expected a winner")
	}
	v.Release()
	if releases != n {
		t.Fatalf("releases after caller release = %d, want %d", releases, n)
	}
}

func TestAccumulator_ReleaseOnAbandonment(t *testing.T) {
	var clones, releases int
	var acc Accumulator
	src := &countingValue{name: "v", clones: &clones, releases: &releases}
	if err := acc.Accept(upd(src, 1, 1, 1)); err != nil {
		t.Fatalf("Accept: %v", err)
	}

	acc.Release()
	if releases != 1 {
		t.Fatalf("releases = %d, want 1", releases)
	}
	if acc.Initialized() {
		t.Fatalf("accumulator still initialized after Release")
	}
	// Release is idempotent.
	acc.Release()
	if releases != 1 {
		t.Fatalf("releases after second Release = %d, want 1", releases)
	}
}

func TestAccumulator_CloneFailureKeepsWinner(t *testing.T) {
	var clones, releases int
	var acc Accumulator
	if err := acc.Accept(upd(&countingValue{name: "good", clones: &clones, releases: &releases}, 1, 1, 1)); err != nil {
		t.Fatalf("Accept: %v", err)
	}

	boom := errors.New("copy failed")
	bad := &countingValue{name: "bad", cloneErr: boom, clones: &clones, releases: &releases}
	err := acc.Accept(upd(bad, 2, 1, 1))
	if !errors.Is(err, boom) {
		t.Fatalf("Accept error = %v, want wrapped %v", err, boom)
	}

	// Previous winner stays intact and still owned.
	v, ok := acc.Current()
	if !ok {
		t.Fatalf("expected winner to survive failed copy")
	}
	if cv := v.(*countingValue); cv.name != "good" {
		t.Fatalf("winner = %q, want good", cv.name)
	}
	if releases != 0 {
		t.Fatalf("releases = %d, want 0", releases)
	}
	if k, _ := acc.WinningKey(); k.Timestamp != 1 {
		t.Fatalf("winning key timestamp = %d, want 1", k.Timestamp)
	}
	acc.Release()
}

func TestAccumulator_CloneFailureOnSeed(t *testing.T) {
	var clones, releases int
	boom := errors.New("copy failed")
	var acc Accumulator
	err := acc.Accept(upd(&countingValue{cloneErr: boom, clones: &clones, releases: &releases}, 1, 1, 1))
	if !errors.Is(err, boom) {
		t.Fatalf("Accept error = %v, want wrapped %v", err, boom)
	}
	if acc.Initialized() {
		t.Fatalf("accumulator must stay uninitialized after failed seed copy")
	}
	if v, ok := acc.Finalize(); ok {
		t.Fatalf("expected no value, got %v", v)
	}
}

func TestKey_Compare(t *testing.T) {
	tests := []struct {
		name string
		a, b Key
		want int
	}{
		{"equal", Key{1, 2, 3}, Key{1, 2, 3}, 0},
		{"timestamp ascends", Key{1, 9, 9}, Key{2, 0, 0}, -1},
		{"origin breaks timestamp tie", Key{5, 2, 0}, Key{5, 1, 9}, 1},
		{"sequence breaks full tie", Key{5, 5, 1}, Key{5, 5, 2}, -1},
		{"negative timestamps order as signed", Key{-5, 0, 0}, Key{-4, 0, 0}, -1},
		{"negative origin orders as signed", Key{0, -1, 0}, Key{0, 1, 0}, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Compare(tt.b); got != tt.want {
				t.Fatalf("Compare = %d, want %d", got, tt.want)
			}
			if got := tt.b.Compare(tt.a); got != -tt.want {
				t.Fatalf("reverse Compare = %d, want %d", got, -tt.want)
			}
			if tt.want == 1 && !tt.a.Beats(tt.b) {
				t.Fatalf("expected %v to beat %v", tt.a, tt.b)
			}
			if tt.want != 1 && tt.a.Beats(tt.b) {
				t.Fatalf("did not expect %v to beat %v", tt.a, tt.b)
			}
		})
	}
}
