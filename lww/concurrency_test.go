package lww

import (
	"fmt"
	"testing"

	"golang.org/x/sync/errgroup"
)

// TestAccumulator_IndependentGroups runs many groups concurrently, one
// accumulator each. Accumulators share no state, so no synchronization
// beyond per-group serialization is needed.
func TestAccumulator_IndependentGroups(t *testing.T) {
	const groups = 64
	const rowsPerGroup = 200

	winners := make([]string, groups)
	var g errgroup.Group
	for gi := 0; gi < groups; gi++ {
		gi := gi
		g.Go(func() error {
			var acc Accumulator
			// Deliver rows out of timestamp order, per-group winner is the
			// row with timestamp rowsPerGroup-1.
			for r := rowsPerGroup - 1; r >= 0; r-- {
				u := upd(Text(fmt.Sprintf("g%d-r%d", gi, r)), int64(r), int64(gi), int64(r))
				if err := acc.Accept(u); err != nil {
					return err
				}
			}
			v, ok := acc.Finalize()
			if !ok {
				return fmt.Errorf("group %d: no winner", gi)
			}
			winners[gi] = string(v.(Text))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		t.Fatalf("group processing failed: %v", err)
	}

	for gi := 0; gi < groups; gi++ {
		want := fmt.Sprintf("g%d-r%d", gi, rowsPerGroup-1)
		if winners[gi] != want {
			t.Fatalf("group %d winner = %q, want %q", gi, winners[gi], want)
		}
	}
}
