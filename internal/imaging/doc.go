// Package imaging cuts sticker sheets into individual tiles.
//
// A sheet is divided by a GridSpec into Columns x Rows equal cells. Cell
// sizes are real numbers, so a sheet whose width is not a multiple of the
// column count still yields cells that together cover it exactly. Each
// cell is shrunk by Margin pixels on every side to trim separator lines,
// then rounded to whole pixels when it is cut.
//
// # Coordinate System
//
// All coordinates are 0-based and relative to the image origin, regardless
// of where the decoded image's bounds start:
//   - X: horizontal position (0 = leftmost pixel)
//   - Y: vertical position (0 = topmost pixel)
//   - For regions, (x1,y1) is inclusive (top-left), (x2,y2) is exclusive (bottom-right)
//
// # Tile Order
//
// Tiles are numbered in row-major order: the tile in row r and column c has
// index r*Columns + c. The archive entry for index i is sticker_<i+1>.png.
//
// # Thread Safety
//
// The ImageCache type is safe for concurrent use. Slicing never modifies
// the source image, so several goroutines may slice the same sheet.
//
// # Error Handling
//
// Grid, decode and encode failures match a sentinel with errors.Is:
//   - ErrInvalidGrid: the grid cannot be applied to the image (*InvalidGridError)
//   - ErrDecode: the input is not a PNG or JPEG image (*DecodeError)
//   - ErrEncode: a tile could not be written as PNG (*EncodeError)
//
// Other errors are plain wrapped errors: a missing or unreadable file wraps
// the os error, and out-of-range sample coordinates or a non-positive
// border band are reported with fmt.Errorf.
//
// # Performance Considerations
//
// Tiles extracts each tile only when the sequence reaches it, so callers
// that stop early or stream tiles into an archive never hold the whole
// sheet's worth of tiles in memory. Cached sheets stay in memory until
// Evict() or Clear() is called.
package imaging
