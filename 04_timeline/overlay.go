package timeline

// Anchor positions the overlay; only top-center is used today.
type Anchor int

const AnchorTopCenter Anchor = iota

// OverlayStyle controls title legibility against arbitrary imagery.
type OverlayStyle struct {
	FontSize    int    `json:"font_size"`
	FontColor   string `json:"font_color"`
	BoxColor    string `json:"box_color"` // semi-opaque backing box
	BoxBorder   int    `json:"box_border"`
	ShadowColor string `json:"shadow_color"`
	ShadowX     int    `json:"shadow_x"`
	ShadowY     int    `json:"shadow_y"`
	MarginTop   int    `json:"margin_top"` // pixels from the top edge
}

// DefaultOverlayStyle matches the channel's established title look.
func DefaultOverlayStyle() OverlayStyle {
	return OverlayStyle{
		FontSize:    70,
		FontColor:   "white",
		BoxColor:    "black@0.6",
		BoxBorder:   20,
		ShadowColor: "black@0.8",
		ShadowX:     2,
		ShadowY:     2,
		MarginTop:   80,
	}
}

// TextOverlay is the persistent title spanning the whole adjusted
// timeline. It contributes zero duration: attaching or omitting it never
// changes a computed timing value.
type TextOverlay struct {
	Text   string       `json:"text"`
	Anchor Anchor       `json:"anchor"`
	Style  OverlayStyle `json:"style"`
}

// NewTextOverlay builds the title overlay. An empty title is an input
// error: every published video carries one.
func NewTextOverlay(text string, style *OverlayStyle) (*TextOverlay, error) {
	if text == "" {
		return nil, &InputError{Reason: "empty title"}
	}
	s := DefaultOverlayStyle()
	if style != nil {
		s = *style
	}
	return &TextOverlay{Text: text, Anchor: AnchorTopCenter, Style: s}, nil
}
