package imaging

import (
	"fmt"
	"image"
	"math"
	"sort"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// RGBColor represents an RGB color with 8-bit components.
type RGBColor struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
}

// RGBAColor represents an RGBA color with 8-bit components including alpha
// (0 = fully transparent, 255 = fully opaque).
type RGBAColor struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
	A uint8 `json:"a"`
}

// HSLColor represents a color in HSL (Hue, Saturation, Lightness) color space.
type HSLColor struct {
	H int `json:"h"` // Hue: 0-360 degrees (0=red, 120=green, 240=blue)
	S int `json:"s"` // Saturation: 0-100 percent (0=gray, 100=vivid)
	L int `json:"l"` // Lightness: 0-100 percent (0=black, 50=normal, 100=white)
}

// ColorResult contains a color value in multiple representations.
type ColorResult struct {
	Hex  string    `json:"hex"`  // Hex format "#RRGGBB" (no alpha)
	RGB  RGBColor  `json:"rgb"`  // RGB components
	RGBA RGBAColor `json:"rgba"` // RGBA components with alpha
	HSL  HSLColor  `json:"hsl"`  // HSL representation
}

// SampleColor extracts the color value at a specific pixel coordinate.
// Coordinates are 0-based from the image origin.
//
// The color is reported unpremultiplied with 8-bit components; Hex excludes
// alpha, use RGBA.A to get transparency information.
func SampleColor(img image.Image, x, y int) (*ColorResult, error) {
	bounds := img.Bounds()
	if x < 0 || x >= bounds.Dx() || y < 0 || y >= bounds.Dy() {
		return nil, fmt.Errorf("coordinates (%d,%d) outside image bounds", x, y)
	}

	r, g, b, a := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
	// Undo alpha premultiplication before converting to 8-bit
	if a != 0 && a != 0xffff {
		r = r * 0xffff / a
		g = g * 0xffff / a
		b = b * 0xffff / a
	}
	r8, g8, b8, a8 := uint8(r>>8), uint8(g>>8), uint8(b>>8), uint8(a>>8)

	c := rgb8(r8, g8, b8)
	return &ColorResult{
		Hex:  hexString(c),
		RGB:  RGBColor{R: r8, G: g8, B: b8},
		RGBA: RGBAColor{R: r8, G: g8, B: b8, A: a8},
		HSL:  hslOf(c),
	}, nil
}

// ColorFrequency represents a color and its occurrence frequency.
type ColorFrequency struct {
	Hex        string   `json:"hex"`        // Hex color "#RRGGBB" (quantized)
	Percentage float64  `json:"percentage"` // Percentage of sampled pixels with this color (0-100)
	RGB        RGBColor `json:"rgb"`        // RGB components (quantized)
	HSL        HSLColor `json:"hsl"`
}

// BorderColorsResult reports the most common colors found along the grid
// lines of a sticker sheet, most common first.
type BorderColorsResult struct {
	Band          int              `json:"band"`
	SampledPixels int              `json:"sampled_pixels"`
	Colors        []ColorFrequency `json:"colors"`
}

// BorderColors samples every pixel within band pixels of a cell boundary
// (the outer frame included) and returns the count most common colors.
//
// Sticker sheets often carry separator lines or a solid gutter between
// stickers; a single dominant color here suggests that a margin of roughly
// band pixels will trim it away.
//
// Colors are quantized to 16 levels per channel so that anti-aliased edges
// fall into the same bucket as the line they belong to.
func BorderColors(img image.Image, spec GridSpec, band, count int) (*BorderColorsResult, error) {
	bounds := img.Bounds()
	if err := spec.Validate(bounds.Dx(), bounds.Dy()); err != nil {
		return nil, err
	}
	if band <= 0 {
		return nil, fmt.Errorf("band must be positive, got %d", band)
	}
	cw, ch := spec.CellSize(bounds.Dx(), bounds.Dy())
	bf := float64(band)

	nearLine := func(pos, cell float64) bool {
		k := math.Round(pos / cell)
		return math.Abs(pos-k*cell) < bf
	}

	freq, total := dominantColors(img, count, func(x, y int) bool {
		return nearLine(float64(x)+0.5, cw) || nearLine(float64(y)+0.5, ch)
	})
	return &BorderColorsResult{Band: band, SampledPixels: total, Colors: freq}, nil
}

// dominantColors counts quantized colors over the pixels (relative to the
// image origin) accepted by include, and returns the count most frequent.
func dominantColors(img image.Image, count int, include func(x, y int) bool) ([]ColorFrequency, int) {
	bounds := img.Bounds()
	colorCounts := make(map[RGBColor]int)
	totalPixels := 0

	for y := 0; y < bounds.Dy(); y++ {
		for x := 0; x < bounds.Dx(); x++ {
			if !include(x, y) {
				continue
			}
			r, g, b, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			key := RGBColor{
				R: uint8((r >> 8) / 16 * 16),
				G: uint8((g >> 8) / 16 * 16),
				B: uint8((b >> 8) / 16 * 16),
			}
			colorCounts[key]++
			totalPixels++
		}
	}

	colors := make([]ColorFrequency, 0, len(colorCounts))
	for rgb, cnt := range colorCounts {
		c := rgb8(rgb.R, rgb.G, rgb.B)
		colors = append(colors, ColorFrequency{
			Hex:        hexString(c),
			Percentage: float64(cnt) / float64(totalPixels) * 100,
			RGB:        rgb,
			HSL:        hslOf(c),
		})
	}

	sort.Slice(colors, func(i, j int) bool {
		if colors[i].Percentage != colors[j].Percentage {
			return colors[i].Percentage > colors[j].Percentage
		}
		return colors[i].Hex < colors[j].Hex
	})

	if count > 0 && len(colors) > count {
		colors = colors[:count]
	}
	return colors, totalPixels
}

func rgb8(r, g, b uint8) colorful.Color {
	return colorful.Color{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255}
}

func hexString(c colorful.Color) string {
	return strings.ToUpper(c.Hex())
}

func hslOf(c colorful.Color) HSLColor {
	h, s, l := c.Hsl()
	return HSLColor{H: int(h), S: int(s * 100), L: int(l * 100)}
}
