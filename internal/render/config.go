package render

import "image/color"

// Key face constants.
var (
	LabelColor = color.RGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF}
	KeyColor   = color.RGBA{A: 0xFF}

	// LabelMargin is the strip kept free under the icon for one text line;
	// the top of the label sits LabelMargin pixels above the bottom edge.
	LabelMargin = 20
	// LabelSize is the label font size in pixels.
	LabelSize = 14.0
)
