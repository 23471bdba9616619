package timeline

import (
	"fmt"
	"math"
)

// Reconcile compares the chain's natural duration against the target and
// decides how to close the gap:
//
//   - chain shorter than target: hold the last composited frame for the
//     difference, appended at the end with no new visual content.
//   - chain longer than target: trim the difference off the tail only, so
//     playback always starts at segment 0.
//   - within one frame period: leave it alone.
//
// framePeriod is the tolerance band, normally 1/fps.
func Reconcile(natural, target, framePeriod float64) (Adjustment, error) {
	if math.IsNaN(natural) || math.IsInf(natural, 0) || natural <= 0 {
		return Adjustment{}, &ReconciliationError{Reason: fmt.Sprintf("natural duration %v is unusable", natural)}
	}
	if math.IsNaN(target) || math.IsInf(target, 0) || target <= 0 {
		return Adjustment{}, &ReconciliationError{Reason: fmt.Sprintf("target duration %v is unusable", target)}
	}
	if framePeriod < 0 {
		return Adjustment{}, &ReconciliationError{Reason: fmt.Sprintf("frame period %v is negative", framePeriod)}
	}

	diff := target - natural
	if math.Abs(diff) <= framePeriod {
		return Adjustment{Kind: AdjustNone, Amount: 0}, nil
	}

	adj := Adjustment{Kind: AdjustHold, Amount: diff}
	if diff < 0 {
		adj = Adjustment{Kind: AdjustTrim, Amount: -diff}
	}
	if adj.Amount < 0 {
		return Adjustment{}, &ReconciliationError{Reason: fmt.Sprintf(
			"computed a negative %s amount %.6fs", adj.Kind, adj.Amount)}
	}
	return adj, nil
}

// AdjustedDuration applies an adjustment to a natural duration.
func AdjustedDuration(natural float64, adj Adjustment) float64 {
	switch adj.Kind {
	case AdjustHold:
		return natural + adj.Amount
	case AdjustTrim:
		return natural - adj.Amount
	default:
		return natural
	}
}
