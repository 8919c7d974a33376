package imaging

import (
	"image"
	"iter"
	"math"

	"github.com/disintegration/imaging"
)

// GridSpec describes how a sticker sheet is partitioned: a uniform grid of
// Columns x Rows cells, each shrunk inward by Margin pixels on all four sides.
type GridSpec struct {
	Columns int `json:"columns"`
	Rows    int `json:"rows"`
	Margin  int `json:"margin"`
}

// DefaultGridSpec is the layout of a typical 4x5 sticker sheet with no trim.
var DefaultGridSpec = GridSpec{Columns: 4, Rows: 5, Margin: 0}

// Count returns the number of cells in the grid.
func (g GridSpec) Count() int {
	return g.Columns * g.Rows
}

// CellSize returns the real-valued size of one cell before the margin is
// applied. The division is not truncated, so cell boundaries are spread
// evenly across the whole image even when it does not divide exactly.
func (g GridSpec) CellSize(width, height int) (w, h float64) {
	return float64(width) / float64(g.Columns), float64(height) / float64(g.Rows)
}

// Validate checks the grid against an image of the given size.
//
// It returns *InvalidGridError when Columns or Rows is not positive, when
// Margin is negative, when there are more columns or rows than pixels, or
// when twice the margin is at least the cell width or height (the box would
// be empty or inverted). Validate runs before anything sized by Count() is
// allocated.
func (g GridSpec) Validate(width, height int) error {
	fail := func(reason string) error {
		return &InvalidGridError{Spec: g, Width: width, Height: height, Reason: reason}
	}
	if g.Columns <= 0 {
		return fail("columns must be positive")
	}
	if g.Rows <= 0 {
		return fail("rows must be positive")
	}
	if g.Margin < 0 {
		return fail("margin must not be negative")
	}
	if g.Columns > width || g.Rows > height {
		return fail("cells are smaller than one pixel")
	}
	cw, ch := g.CellSize(width, height)
	m := float64(g.Margin)
	if cw-2*m <= 0 {
		return fail("margin leaves no width in each cell")
	}
	if ch-2*m <= 0 {
		return fail("margin leaves no height in each cell")
	}
	return nil
}

// Box is a real-valued cell rectangle in image coordinates relative to the
// image origin. Left/Top are inclusive, Right/Bottom exclusive.
type Box struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Right  float64 `json:"right"`
	Bottom float64 `json:"bottom"`
}

// Width returns Right - Left.
func (b Box) Width() float64 { return b.Right - b.Left }

// Height returns Bottom - Top.
func (b Box) Height() float64 { return b.Bottom - b.Top }

// Center returns the midpoint of the box.
func (b Box) Center() (x, y float64) {
	return (b.Left + b.Right) / 2, (b.Top + b.Bottom) / 2
}

// Rect rounds the box to whole pixels. Halves round to even so that
// adjacent cells of a fractional grid share the same boundary pixel column.
func (b Box) Rect() image.Rectangle {
	return image.Rect(
		int(math.RoundToEven(b.Left)),
		int(math.RoundToEven(b.Top)),
		int(math.RoundToEven(b.Right)),
		int(math.RoundToEven(b.Bottom)),
	)
}

// Region is a whole-pixel rectangle. (X1, Y1) is inclusive, (X2, Y2) exclusive.
type Region struct {
	X1 int `json:"x1"`
	Y1 int `json:"y1"`
	X2 int `json:"x2"`
	Y2 int `json:"y2"`
}

// RegionOf converts an image.Rectangle.
func RegionOf(r image.Rectangle) Region {
	return Region{X1: r.Min.X, Y1: r.Min.Y, X2: r.Max.X, Y2: r.Max.Y}
}

// PixelRegions returns the whole-pixel regions Slice would extract for an
// image of the given size, in tile order.
func PixelRegions(width, height int, spec GridSpec) ([]Region, error) {
	boxes, err := Layout(width, height, spec)
	if err != nil {
		return nil, err
	}
	bounds := image.Rect(0, 0, width, height)
	regions := make([]Region, len(boxes))
	for i, b := range boxes {
		regions[i] = RegionOf(pixelRect(b, bounds))
	}
	return regions, nil
}

// cellBox computes the margin-adjusted box of the cell at (row, col).
func cellBox(row, col int, cw, ch, margin float64) Box {
	return Box{
		Left:   float64(col)*cw + margin,
		Top:    float64(row)*ch + margin,
		Right:  float64(col+1)*cw - margin,
		Bottom: float64(row+1)*ch - margin,
	}
}

// Layout computes the ordered cell boxes of a grid over an image of the given
// size without touching any pixels. Boxes are ordered row by row, top to
// bottom, and left to right within a row, so box i belongs to
// row i/Columns, column i%Columns.
func Layout(width, height int, spec GridSpec) ([]Box, error) {
	if err := spec.Validate(width, height); err != nil {
		return nil, err
	}
	cw, ch := spec.CellSize(width, height)
	m := float64(spec.Margin)

	boxes := make([]Box, 0, spec.Count())
	for r := 0; r < spec.Rows; r++ {
		for c := 0; c < spec.Columns; c++ {
			boxes = append(boxes, cellBox(r, c, cw, ch, m))
		}
	}
	return boxes, nil
}

// Tile is one extracted cell of a sticker sheet.
type Tile struct {
	// Index is the zero-based position in row-major order: row*Columns+column.
	Index int
	Row   int
	Col   int

	// Box is the exact real-valued cell box.
	Box Box

	// Bounds is Box rounded to whole pixels and clamped to the image, relative
	// to the image origin.
	Bounds image.Rectangle

	// Image holds a copy of the pixels in Bounds. Its own bounds start at (0,0).
	Image *image.NRGBA
}

// Tiles validates spec against img and returns a sequence that extracts the
// tiles one at a time in index order. The sequence can be ranged over more
// than once and stopping early skips the remaining extraction work, so a
// caller can show progress or a partial preview while tiles are produced.
//
// Every cell is checked up front: a cell that rounds to an empty pixel
// rectangle makes Tiles fail with *InvalidGridError before anything is
// extracted.
func Tiles(img image.Image, spec GridSpec) (iter.Seq[Tile], error) {
	bounds := img.Bounds()
	boxes, err := Layout(bounds.Dx(), bounds.Dy(), spec)
	if err != nil {
		return nil, err
	}

	rects := make([]image.Rectangle, len(boxes))
	for i, b := range boxes {
		r := pixelRect(b, bounds)
		if r.Empty() {
			return nil, &InvalidGridError{
				Spec:   spec,
				Width:  bounds.Dx(),
				Height: bounds.Dy(),
				Reason: "cells are smaller than one pixel",
			}
		}
		rects[i] = r
	}

	return func(yield func(Tile) bool) {
		for i, b := range boxes {
			if !yield(extractTile(img, spec, i, b, rects[i])) {
				return
			}
		}
	}, nil
}

// Slice cuts img into spec.Count() tiles, returned in index order.
//
// The source image is only read. Slice returns *InvalidGridError when the
// spec does not fit the image; no tiles are returned in that case.
func Slice(img image.Image, spec GridSpec) ([]Tile, error) {
	seq, err := Tiles(img, spec)
	if err != nil {
		return nil, err
	}
	tiles := make([]Tile, 0, spec.Count())
	for t := range seq {
		tiles = append(tiles, t)
	}
	return tiles, nil
}

// TileAt extracts the single tile with the given zero-based index.
func TileAt(img image.Image, spec GridSpec, index int) (Tile, error) {
	bounds := img.Bounds()
	if err := spec.Validate(bounds.Dx(), bounds.Dy()); err != nil {
		return Tile{}, err
	}
	if index < 0 || index >= spec.Count() {
		return Tile{}, &InvalidGridError{
			Spec:   spec,
			Width:  bounds.Dx(),
			Height: bounds.Dy(),
			Reason: "tile index out of range",
		}
	}

	cw, ch := spec.CellSize(bounds.Dx(), bounds.Dy())
	b := cellBox(index/spec.Columns, index%spec.Columns, cw, ch, float64(spec.Margin))
	r := pixelRect(b, bounds)
	if r.Empty() {
		return Tile{}, &InvalidGridError{
			Spec:   spec,
			Width:  bounds.Dx(),
			Height: bounds.Dy(),
			Reason: "cells are smaller than one pixel",
		}
	}
	return extractTile(img, spec, index, b, r), nil
}

// pixelRect rounds b and clamps it to an image of the size of bounds.
// The result is relative to the image origin.
func pixelRect(b Box, bounds image.Rectangle) image.Rectangle {
	return b.Rect().Intersect(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
}

func extractTile(img image.Image, spec GridSpec, index int, b Box, r image.Rectangle) Tile {
	origin := img.Bounds().Min
	return Tile{
		Index:  index,
		Row:    index / spec.Columns,
		Col:    index % spec.Columns,
		Box:    b,
		Bounds: r,
		Image:  imaging.Crop(img, r.Add(origin)),
	}
}
