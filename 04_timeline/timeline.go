// Package timeline computes the slideshow composition for a single video:
// ordered image segments, the crossfade chain between them, and the
// hold-or-trim adjustment that lands the result exactly on the narration
// length. All of it is pure arithmetic; rendering happens elsewhere.
package timeline

// Defaults used when the config leaves timing unset.
const (
	DefaultImageDuration = 2.0
	DefaultFadeDuration  = 0.5
	DefaultFPS           = 30
)

// ImageSource is an opaque reference to one still image plus its
// intrinsic dimensions.
type ImageSource struct {
	Ref    string `json:"ref"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
}

// Segment is one image placed on the nominal (pre-transition) timeline.
type Segment struct {
	Index           int         `json:"index"`
	Source          ImageSource `json:"source"`
	NominalStart    float64     `json:"nominal_start"`
	NominalDuration float64     `json:"nominal_duration"`
}

// TransitionKind names the blend applied between two adjacent segments.
type TransitionKind string

const Crossfade TransitionKind = "crossfade"

// Transition blends the accumulated chain ending at LeftIndex with the
// raw segment RightIndex, starting Offset seconds into the chain.
type Transition struct {
	LeftIndex  int            `json:"left_index"`
	RightIndex int            `json:"right_index"`
	Offset     float64        `json:"offset"`
	Duration   float64        `json:"duration"`
	Kind       TransitionKind `json:"kind"`
}

// AdjustmentKind says how the chain is reconciled against the target.
type AdjustmentKind int

const (
	AdjustNone AdjustmentKind = iota
	AdjustHold
	AdjustTrim
)

func (k AdjustmentKind) String() string {
	switch k {
	case AdjustHold:
		return "hold"
	case AdjustTrim:
		return "trim"
	default:
		return "none"
	}
}

// Adjustment is computed once by Reconcile and applied once by the
// render stage, never renegotiated.
type Adjustment struct {
	Kind   AdjustmentKind `json:"kind"`
	Amount float64        `json:"amount"`
}

// Timeline is the complete composition for one video: immutable once
// built, handed to the render backend, then discarded.
type Timeline struct {
	Segments        []Segment    `json:"segments"`
	Transitions     []Transition `json:"transitions"`
	NaturalDuration float64      `json:"natural_duration"`
	TargetDuration  float64      `json:"target_duration"`
	FPS             int          `json:"fps"`
	Adjustment      Adjustment   `json:"adjustment"`
	Overlay         *TextOverlay `json:"overlay,omitempty"`
}

// BuildInput is everything needed to compose one timeline.
type BuildInput struct {
	Sources        []ImageSource
	ImageDuration  float64 // display time per image, seconds
	FadeDuration   float64 // crossfade length, seconds
	TargetDuration float64 // measured narration length, seconds
	FPS            int
	Title          string
	Style          *OverlayStyle // nil means DefaultOverlayStyle
}

// Build plans segments, chains transitions, reconciles against the
// target duration and attaches the title overlay. Input problems
// surface here as InputError or TimingError before any backend work.
func Build(in BuildInput) (*Timeline, error) {
	if in.FPS == 0 {
		in.FPS = DefaultFPS
	}
	if in.FPS < 0 {
		return nil, &TimingError{Reason: "frame rate must be positive"}
	}
	// All-zero timing means "use defaults"; a zero fade with an explicit
	// image duration stays a legal no-crossfade request.
	if in.ImageDuration == 0 && in.FadeDuration == 0 {
		in.ImageDuration = DefaultImageDuration
		in.FadeDuration = DefaultFadeDuration
	}
	if in.TargetDuration <= 0 {
		return nil, &TimingError{Reason: "target duration must be positive"}
	}

	segments, err := PlanSegments(in.Sources, in.ImageDuration, in.FadeDuration)
	if err != nil {
		return nil, err
	}

	transitions, err := BuildTransitions(segments, in.FadeDuration)
	if err != nil {
		return nil, err
	}

	natural := NaturalDuration(len(segments), in.ImageDuration, in.FadeDuration)

	adj, err := Reconcile(natural, in.TargetDuration, 1.0/float64(in.FPS))
	if err != nil {
		return nil, err
	}

	overlay, err := NewTextOverlay(in.Title, in.Style)
	if err != nil {
		return nil, err
	}

	return &Timeline{
		Segments:        segments,
		Transitions:     transitions,
		NaturalDuration: natural,
		TargetDuration:  in.TargetDuration,
		FPS:             in.FPS,
		Adjustment:      adj,
		Overlay:         overlay,
	}, nil
}

// FinalDuration is the duration the rendered artifact must measure.
func (t *Timeline) FinalDuration() float64 {
	return t.TargetDuration
}

// FramePeriod is the tolerance window for duration comparisons.
func (t *Timeline) FramePeriod() float64 {
	return 1.0 / float64(t.FPS)
}
