package timeline

import (
	"fmt"
	"strings"
)

// InputError reports missing or unusable caller-supplied input:
// zero images, a missing audio reference or an empty title.
type InputError struct {
	Reason string
}

func (e *InputError) Error() string {
	return "invalid input: " + e.Reason
}

// TimingError reports an impossible timing request, such as a crossfade
// longer than the image display time or a non-positive duration.
type TimingError struct {
	Reason string
}

func (e *TimingError) Error() string {
	return "invalid timing: " + e.Reason
}

// ReconciliationError reports an adjustment computation that produced a
// negative or undefined amount. Input validation makes this unreachable;
// it exists so a broken caller fails loudly instead of rendering garbage.
type ReconciliationError struct {
	Reason string
}

func (e *ReconciliationError) Error() string {
	return "reconciliation: " + e.Reason
}

// BackendError reports a failed render execution: non-zero exit, timeout,
// or a missing/empty/mistimed output artifact.
type BackendError struct {
	Op       string // "ffmpeg", "ffprobe", "verify"
	ExitCode int
	TimedOut bool
	Stderr   string
	Err      error
}

func (e *BackendError) Error() string {
	var sb strings.Builder
	sb.WriteString(e.Op)
	if e.TimedOut {
		sb.WriteString(" timed out")
	} else if e.Err != nil {
		sb.WriteString(": " + e.Err.Error())
	} else {
		sb.WriteString(fmt.Sprintf(" exited with code %d", e.ExitCode))
	}
	if e.Stderr != "" {
		sb.WriteString(": " + e.Stderr)
	}
	return sb.String()
}

func (e *BackendError) Unwrap() error {
	return e.Err
}
