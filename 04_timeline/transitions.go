package timeline

import (
	"fmt"
	"math"
)

// Offsets from the fold recursion and the closed form must never drift
// apart by more than this.
const offsetEpsilon = 1e-9

// BuildTransitions chains adjacent segments into a strict left-to-right
// fold: transition i blends the accumulated result of segments 0..i with
// raw segment i+1. Later transitions operate on the result of earlier
// ones, never on raw segments, so playback order is always sequential.
//
// The offset of transition i, how far into the accumulated chain the
// blend starts, comes from the fold recursion
//
//	chainLen(0)   = segment 0 duration
//	offset(i)     = chainLen(i) - fadeDur
//	chainLen(i+1) = offset(i) + segment i+1 duration
//
// which collapses to the closed form (i+1)*D - i*F - F for uniform
// segment durations. Both are computed and cross-checked here.
func BuildTransitions(segments []Segment, fadeDur float64) ([]Transition, error) {
	if len(segments) < 2 {
		return nil, nil
	}

	transitions := make([]Transition, 0, len(segments)-1)
	chainLen := segments[0].NominalDuration

	for i := 0; i+1 < len(segments); i++ {
		left, right := segments[i], segments[i+1]
		if fadeDur >= left.NominalDuration || fadeDur >= right.NominalDuration {
			return nil, &TimingError{Reason: fmt.Sprintf(
				"crossfade %.3fs does not fit between segments %d and %d", fadeDur, i, i+1)}
		}

		offset := chainLen - fadeDur
		if offset < 0 {
			return nil, &TimingError{Reason: fmt.Sprintf(
				"transition %d derived a negative offset %.3fs", i, offset)}
		}

		closed := closedFormOffset(i, left.NominalDuration, fadeDur)
		if math.Abs(offset-closed) > offsetEpsilon {
			return nil, &TimingError{Reason: fmt.Sprintf(
				"transition %d offset %.6fs disagrees with closed form %.6fs", i, offset, closed)}
		}

		transitions = append(transitions, Transition{
			LeftIndex:  i,
			RightIndex: i + 1,
			Offset:     offset,
			Duration:   fadeDur,
			Kind:       Crossfade,
		})

		chainLen = offset + right.NominalDuration
	}

	return transitions, nil
}

// closedFormOffset is (i+1)*D - i*F - F: the point exactly fadeDur
// seconds before the accumulated chain's end once segment i+1 is queued.
func closedFormOffset(i int, imageDur, fadeDur float64) float64 {
	return float64(i+1)*imageDur - float64(i)*fadeDur - fadeDur
}

// ChainDuration folds the transitions over the segments and returns the
// resulting chain length. For valid inputs it equals NaturalDuration.
func ChainDuration(segments []Segment, transitions []Transition) float64 {
	if len(segments) == 0 {
		return 0
	}
	chainLen := segments[0].NominalDuration
	for _, tr := range transitions {
		chainLen = tr.Offset + segments[tr.RightIndex].NominalDuration
	}
	return chainLen
}
