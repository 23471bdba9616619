package render

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// ProbeDuration measures a file's container duration with ffprobe.
func ProbeDuration(ctx context.Context, path string) (float64, error) {
	out, err := exec.CommandContext(ctx, "ffprobe",
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	).Output()
	if err != nil {
		return 0, err
	}
	raw := strings.TrimSpace(string(out))
	var dur float64
	if _, err := fmt.Sscanf(raw, "%f", &dur); err != nil {
		return 0, fmt.Errorf("parse ffprobe duration %q: %w", raw, err)
	}
	return dur, nil
}
