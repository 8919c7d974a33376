package imaging

import (
	"image"
	"strconv"

	"github.com/disintegration/imaging"
)

// CropResult contains one tile encoded for display.
type CropResult struct {
	Index       int    `json:"index"`
	Name        string `json:"name"`
	Box         Box    `json:"box"`
	Bounds      Region `json:"bounds"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
}

// PreviewResult holds the first tiles of a sheet and the total tile count.
type PreviewResult struct {
	Total int          `json:"total"`
	Shown int          `json:"shown"`
	More  int          `json:"more"` // tiles not included in Tiles
	Tiles []CropResult `json:"tiles"`
}

// DefaultPreviewLimit is the number of tiles shown by a preview when the
// caller does not ask for a specific count.
const DefaultPreviewLimit = 8

// StickerName returns the archive entry name of the tile with the given
// zero-based index: sticker_1.png for index 0.
func StickerName(index int) string {
	return "sticker_" + strconv.Itoa(index+1) + ".png"
}

// TileImage extracts a single tile and returns it as base64 PNG, optionally
// scaled. A scale of 0 or 1 keeps the tile at its native size.
func TileImage(img image.Image, spec GridSpec, index int, scale float64) (*CropResult, error) {
	t, err := TileAt(img, spec, index)
	if err != nil {
		return nil, err
	}
	return renderTile(t, scale)
}

// Preview renders the first limit tiles of the sheet. Tiles past limit are
// never extracted. A limit of 0 uses DefaultPreviewLimit.
func Preview(img image.Image, spec GridSpec, limit int, scale float64) (*PreviewResult, error) {
	if limit <= 0 {
		limit = DefaultPreviewLimit
	}
	seq, err := Tiles(img, spec)
	if err != nil {
		return nil, err
	}

	result := &PreviewResult{Total: spec.Count()}
	for t := range seq {
		if len(result.Tiles) == limit {
			break
		}
		cr, err := renderTile(t, scale)
		if err != nil {
			return nil, err
		}
		result.Tiles = append(result.Tiles, *cr)
	}
	result.Shown = len(result.Tiles)
	result.More = result.Total - result.Shown
	return result, nil
}

func renderTile(t Tile, scale float64) (*CropResult, error) {
	var out image.Image = t.Image
	if scale > 0 && scale != 1.0 {
		w := int(float64(t.Image.Bounds().Dx()) * scale)
		h := int(float64(t.Image.Bounds().Dy()) * scale)
		if w < 1 {
			w = 1
		}
		if h < 1 {
			h = 1
		}
		out = imaging.Resize(t.Image, w, h, imaging.Lanczos)
	}

	encoded, err := encodeBase64PNG(out, t.Index)
	if err != nil {
		return nil, err
	}

	return &CropResult{
		Index:       t.Index,
		Name:        StickerName(t.Index),
		Box:         t.Box,
		Bounds:      RegionOf(t.Bounds),
		Width:       out.Bounds().Dx(),
		Height:      out.Bounds().Dy(),
		ImageBase64: encoded,
		MimeType:    PNGMimeType,
	}, nil
}
