package particle

import (
	"fmt"

	"github.com/lucasb-eyer/go-colorful"
)

// Point appearance.
const (
	BaseSize       = 0.035
	BurstSize      = 0.02
	BurstWhitening = 0.5
)

// DefaultColor is the initial particle color.
const DefaultColor = "#ff4d4d"

// Palette lists the selectable particle colors.
var Palette = []string{"#ff4d4d", "#4dff88", "#4d94ff", "#ffeb3b", "#e056fd", "#ffffff"}

var white = colorful.Color{R: 1, G: 1, B: 1}

// Style is the point appearance derived from the explosion factor.
type Style struct {
	Size  float64
	Color colorful.Color
}

// StyleFor grows the points and shifts base toward white as explosion rises.
func StyleFor(base colorful.Color, explosion float64) Style {
	return Style{
		Size:  BaseSize + explosion*BurstSize,
		Color: base.BlendRgb(white, explosion*BurstWhitening).Clamped(),
	}
}

// ParseColor parses a "#rrggbb" color.
func ParseColor(hex string) (colorful.Color, error) {
	c, err := colorful.Hex(hex)
	if err != nil {
		return colorful.Color{}, fmt.Errorf("parse color %q: %w", hex, err)
	}
	return c, nil
}
