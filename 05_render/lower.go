package render

import (
	"fmt"
	"strings"

	timeline "folklore-pipeline/04_timeline"
)

// LowerOptions carries the raster parameters the composition graph is
// deliberately ignorant of.
type LowerOptions struct {
	Width  int
	Height int
	FPS    int
}

// Plan is a fully lowered ffmpeg invocation: input arguments, the
// complete filter graph and the numbers the executor needs to map,
// bound and verify the result.
type Plan struct {
	InputArgs       []string
	FilterComplex   string
	OutputLabel     string
	AudioInputIndex int
	Duration        float64
	FPS             int
}

// Lower compiles a composition graph into a Plan. The walk follows the
// node list, which Graph construction keeps in topological order:
// prepare filters first, then the transition fold, then the adjustment
// normalized onto the [out] label, then the optional overlay.
func Lower(g *timeline.Graph, audioPath string, opts LowerOptions) (*Plan, error) {
	if g == nil || len(g.Nodes) == 0 {
		return nil, fmt.Errorf("lower: empty graph")
	}
	if err := g.Validate(); err != nil {
		return nil, fmt.Errorf("lower: %w", err)
	}
	if opts.Width <= 0 || opts.Height <= 0 || opts.FPS <= 0 {
		return nil, fmt.Errorf("lower: raster options %dx%d@%d are invalid", opts.Width, opts.Height, opts.FPS)
	}

	plan := &Plan{FPS: opts.FPS}

	labels := make(map[timeline.NodeID]string)
	sourcePos := make(map[timeline.NodeID]int)

	var (
		filters   []string
		inputArgs []string
		sourceDur []float64
		chainDur  float64
		chainLive bool
		nextFade  int
		adjusted  bool
	)

	for _, n := range g.Nodes {
		switch n.Kind {
		case timeline.NodeSource:
			if n.Source == nil {
				return nil, fmt.Errorf("lower: source node %d has no image", n.ID)
			}
			pos := len(sourceDur)
			inputArgs = append(inputArgs,
				"-loop", "1",
				"-t", formatSeconds(n.Duration),
				"-i", n.Source.Ref,
			)
			sourceDur = append(sourceDur, n.Duration)
			sourcePos[n.ID] = pos
			labels[n.ID] = fmt.Sprintf("%d:v", pos)

		case timeline.NodePrepare:
			if len(n.Inputs) != 1 {
				return nil, fmt.Errorf("lower: prepare node %d needs one input", n.ID)
			}
			pos, ok := sourcePos[n.Inputs[0]]
			if !ok {
				return nil, fmt.Errorf("lower: prepare node %d input is not a source", n.ID)
			}
			out := fmt.Sprintf("v%d", pos)
			filters = append(filters, fmt.Sprintf(
				"[%s]scale=%d:%d:force_original_aspect_ratio=increase,crop=%d:%d,setsar=1,fps=%d[%s]",
				labels[n.Inputs[0]], opts.Width, opts.Height, opts.Width, opts.Height, opts.FPS, out))
			labels[n.ID] = out
			if !chainLive {
				chainDur = sourceDur[pos]
				chainLive = true
			}

		case timeline.NodeTransition:
			if len(n.Inputs) != 2 {
				return nil, fmt.Errorf("lower: transition node %d needs two inputs", n.ID)
			}
			right := g.Node(n.Inputs[1])
			if right.Kind != timeline.NodePrepare || len(right.Inputs) != 1 {
				return nil, fmt.Errorf("lower: transition node %d right side is not a prepared source", n.ID)
			}
			out := fmt.Sprintf("f%d", nextFade)
			filters = append(filters, fmt.Sprintf(
				"[%s][%s]xfade=transition=fade:duration=%s:offset=%s[%s]",
				labels[n.Inputs[0]], labels[n.Inputs[1]],
				formatSeconds(n.Fade), formatSeconds(n.Offset), out))
			labels[n.ID] = out
			nextFade++
			chainDur = n.Offset + sourceDur[sourcePos[right.Inputs[0]]]

		case timeline.NodeHold:
			if len(n.Inputs) != 1 {
				return nil, fmt.Errorf("lower: hold node %d needs one input", n.ID)
			}
			filters = append(filters, fmt.Sprintf(
				"[%s]tpad=stop_mode=clone:stop_duration=%s[out]",
				labels[n.Inputs[0]], formatSeconds(n.Duration)))
			labels[n.ID] = "out"
			chainDur += n.Duration
			adjusted = true

		case timeline.NodeTrim:
			if len(n.Inputs) != 1 {
				return nil, fmt.Errorf("lower: trim node %d needs one input", n.ID)
			}
			filters = append(filters, fmt.Sprintf(
				"[%s]trim=duration=%s,setpts=PTS-STARTPTS[out]",
				labels[n.Inputs[0]], formatSeconds(n.Duration)))
			labels[n.ID] = "out"
			chainDur = n.Duration
			adjusted = true

		case timeline.NodeOverlay:
			if len(n.Inputs) != 1 {
				return nil, fmt.Errorf("lower: overlay node %d needs one input", n.ID)
			}
			if n.Overlay == nil {
				return nil, fmt.Errorf("lower: overlay node %d has no text", n.ID)
			}
			if !adjusted {
				// The chain already matches the target; bridge it onto
				// the label the overlay and the output map expect.
				filters = append(filters, fmt.Sprintf("[%s]copy[out]", labels[n.Inputs[0]]))
				adjusted = true
			}
			filters = append(filters, drawtextFilter(n.Overlay))
			labels[n.ID] = "final"

		case timeline.NodeOutput:
			if len(n.Inputs) != 1 {
				return nil, fmt.Errorf("lower: output node %d needs one input", n.ID)
			}
			final := labels[n.Inputs[0]]
			if !adjusted {
				filters = append(filters, fmt.Sprintf("[%s]copy[out]", final))
				final = "out"
				adjusted = true
			}
			plan.OutputLabel = "[" + final + "]"

		default:
			return nil, fmt.Errorf("lower: unknown node kind %s", n.Kind)
		}
	}

	if len(sourceDur) == 0 {
		return nil, fmt.Errorf("lower: graph has no sources")
	}
	if plan.OutputLabel == "" {
		return nil, fmt.Errorf("lower: graph has no output node")
	}

	inputArgs = append(inputArgs, "-i", audioPath)
	plan.InputArgs = inputArgs
	plan.AudioInputIndex = len(sourceDur)
	plan.FilterComplex = strings.Join(filters, ";")
	plan.Duration = chainDur
	return plan, nil
}

// drawtextFilter renders the title overlay onto the adjusted chain,
// centered horizontally with a backing box and drop shadow.
func drawtextFilter(o *timeline.TextOverlay) string {
	s := o.Style
	return fmt.Sprintf(
		"[out]drawtext=text='%s':fontsize=%d:fontcolor=%s:x=(w-text_w)/2:y=%d:"+
			"box=1:boxcolor=%s:boxborderw=%d:shadowcolor=%s:shadowx=%d:shadowy=%d[final]",
		escapeFFmpegText(o.Text), s.FontSize, s.FontColor, s.MarginTop,
		s.BoxColor, s.BoxBorder, s.ShadowColor, s.ShadowX, s.ShadowY)
}

// formatSeconds prints a duration for a filter argument. Three decimals
// is well inside a frame period at any sane frame rate.
func formatSeconds(v float64) string {
	return fmt.Sprintf("%.3f", v)
}

func escapeFFmpegText(s string) string {
	s = strings.ReplaceAll(s, "'", "\\'")
	s = strings.ReplaceAll(s, ":", "\\:")
	return s
}
