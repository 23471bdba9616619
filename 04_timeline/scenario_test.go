package timeline

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

// End-to-end composition scenarios covering the contract the render
// stage depends on: the reconciled timeline always lands on the
// narration length, whatever the image count.

func TestScenario_TenImagesHeldToNarration(t *testing.T) {
	Convey("10 images at 2s with 0.5s crossfades against an 18.3s narration", t, func() {
		tl, err := Build(BuildInput{
			Sources:        makeSources(10),
			ImageDuration:  2.0,
			FadeDuration:   0.5,
			TargetDuration: 18.3,
			FPS:            30,
			Title:          "Баба-Яга",
		})
		So(err, ShouldBeNil)

		Convey("the chain runs 15.5s before adjustment", func() {
			So(tl.NaturalDuration, ShouldAlmostEqual, 15.5, 1e-9)
			So(len(tl.Segments), ShouldEqual, 10)
			So(len(tl.Transitions), ShouldEqual, 9)
		})

		Convey("the last frame is held for the missing 2.8s", func() {
			So(tl.Adjustment.Kind, ShouldEqual, AdjustHold)
			So(tl.Adjustment.Amount, ShouldAlmostEqual, 2.8, 1e-9)
			So(AdjustedDuration(tl.NaturalDuration, tl.Adjustment), ShouldAlmostEqual, 18.3, 1e-9)
		})
	})
}

func TestScenario_ThreeImagesTrimmedToShortNarration(t *testing.T) {
	Convey("3 images at 2s with 0.5s crossfades against a 3.0s narration", t, func() {
		tl, err := Build(BuildInput{
			Sources:        makeSources(3),
			ImageDuration:  2.0,
			FadeDuration:   0.5,
			TargetDuration: 3.0,
			FPS:            30,
			Title:          "Леший",
		})
		So(err, ShouldBeNil)

		Convey("the 5.0s chain is trimmed by 2.0s from the tail", func() {
			So(tl.NaturalDuration, ShouldAlmostEqual, 5.0, 1e-9)
			So(tl.Adjustment.Kind, ShouldEqual, AdjustTrim)
			So(tl.Adjustment.Amount, ShouldAlmostEqual, 2.0, 1e-9)
		})

		Convey("the last segment never appears in the trimmed window", func() {
			// Segment 2 first blends in at the second transition's offset.
			So(tl.Transitions[1].Offset, ShouldAlmostEqual, 3.0, 1e-9)
			So(tl.Transitions[1].Offset, ShouldBeGreaterThanOrEqualTo, tl.TargetDuration)
		})
	})
}

func TestScenario_SingleImagePinnedToNarration(t *testing.T) {
	Convey("a single 2s image against a 12.0s narration", t, func() {
		tl, err := Build(BuildInput{
			Sources:        makeSources(1),
			ImageDuration:  2.0,
			FadeDuration:   0.5,
			TargetDuration: 12.0,
			FPS:            30,
			Title:          "Водяной",
		})
		So(err, ShouldBeNil)

		Convey("no transitions exist and the natural duration is one display time", func() {
			So(len(tl.Transitions), ShouldEqual, 0)
			So(tl.NaturalDuration, ShouldAlmostEqual, 2.0, 1e-9)
		})

		Convey("the single frame is held out to the full narration", func() {
			So(tl.Adjustment.Kind, ShouldEqual, AdjustHold)
			So(tl.Adjustment.Amount, ShouldAlmostEqual, 10.0, 1e-9)
			So(AdjustedDuration(tl.NaturalDuration, tl.Adjustment), ShouldAlmostEqual, 12.0, 1e-9)
		})
	})
}

func TestScenario_OverlayIsTimingNeutral(t *testing.T) {
	Convey("two builds differing only in title", t, func() {
		build := func(title string) *Timeline {
			tl, err := Build(BuildInput{
				Sources:        makeSources(6),
				ImageDuration:  2.0,
				FadeDuration:   0.5,
				TargetDuration: 14.0,
				FPS:            30,
				Title:          title,
			})
			So(err, ShouldBeNil)
			return tl
		}
		a := build("Кикимора")
		b := build("A much longer title that wraps and wraps and wraps")

		Convey("every computed timing value is identical", func() {
			So(a.NaturalDuration, ShouldEqual, b.NaturalDuration)
			So(a.Adjustment, ShouldResemble, b.Adjustment)
			So(len(a.Transitions), ShouldEqual, len(b.Transitions))
			for i := range a.Transitions {
				So(a.Transitions[i], ShouldResemble, b.Transitions[i])
			}
		})

		Convey("the overlay itself spans the adjusted timeline", func() {
			So(a.Overlay, ShouldNotBeNil)
			So(a.Overlay.Anchor, ShouldEqual, AnchorTopCenter)
			So(a.Overlay.Text, ShouldEqual, "Кикимора")
		})
	})
}

func TestScenario_RejectedBeforeAnyBackendWork(t *testing.T) {
	Convey("invalid inputs fail construction", t, func() {
		base := BuildInput{
			Sources:        makeSources(5),
			ImageDuration:  2.0,
			FadeDuration:   0.5,
			TargetDuration: 20.0,
			FPS:            30,
			Title:          "Русалка",
		}

		Convey("zero images", func() {
			in := base
			in.Sources = nil
			_, err := Build(in)
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "no visual input")
		})

		Convey("crossfade as long as the display time", func() {
			in := base
			in.FadeDuration = 2.0
			_, err := Build(in)
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "crossfade")
		})

		Convey("empty title", func() {
			in := base
			in.Title = ""
			_, err := Build(in)
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "title")
		})

		Convey("non-positive narration length", func() {
			in := base
			in.TargetDuration = 0
			_, err := Build(in)
			So(err, ShouldNotBeNil)
			So(err.Error(), ShouldContainSubstring, "target duration")
		})
	})
}
