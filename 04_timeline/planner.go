package timeline

import "fmt"

// PlanSegments places N sources on the nominal timeline: each segment
// shows for imageDur seconds and segment i starts at i*(imageDur-fadeDur),
// so consecutive segments overlap by exactly the crossfade length.
//
// A single source yields a single segment; its effective duration gets
// pinned to the target later by reconciliation, since no crossfade applies.
func PlanSegments(sources []ImageSource, imageDur, fadeDur float64) ([]Segment, error) {
	if len(sources) == 0 {
		return nil, &InputError{Reason: "no visual input"}
	}
	if imageDur <= 0 {
		return nil, &TimingError{Reason: fmt.Sprintf("image duration %.3fs must be positive", imageDur)}
	}
	if fadeDur < 0 {
		return nil, &TimingError{Reason: fmt.Sprintf("crossfade duration %.3fs must not be negative", fadeDur)}
	}
	if fadeDur >= imageDur {
		return nil, &TimingError{Reason: fmt.Sprintf(
			"crossfade duration %.3fs must be shorter than image duration %.3fs", fadeDur, imageDur)}
	}

	segments := make([]Segment, len(sources))
	for i, src := range sources {
		segments[i] = Segment{
			Index:           i,
			Source:          src,
			NominalStart:    float64(i) * (imageDur - fadeDur),
			NominalDuration: imageDur,
		}
	}
	return segments, nil
}

// NaturalDuration is the chain length before any adjustment:
// N*D - (N-1)*F for two or more segments, D for a single one.
func NaturalDuration(n int, imageDur, fadeDur float64) float64 {
	switch {
	case n <= 0:
		return 0
	case n == 1:
		return imageDur
	default:
		return float64(n)*imageDur - float64(n-1)*fadeDur
	}
}
