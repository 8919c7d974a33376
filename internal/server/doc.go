// Package server implements the MCP (Model Context Protocol) server that
// cuts sticker sheets into individual stickers.
//
// # Protocol
//
// The server communicates over stdio using JSON-RPC 2.0:
//   - Input: JSON-RPC requests on stdin (one per line)
//   - Output: JSON-RPC responses and notifications on stdout
//
// Supported MCP methods:
//   - initialize: Protocol handshake
//   - tools/list: Enumerate available tools
//   - tools/call: Execute a tool with arguments
//   - ping: Health check
//
// # Available Tools
//
// Source image:
//   - image_load: Load a sheet and get its metadata
//   - image_dimensions: Get width and height
//   - image_sample_color: Get the color at a pixel
//
// Grid inspection:
//   - sticker_layout: Bounding box of every sticker, no pixels cut
//   - sticker_grid_overlay: Sheet with the grid and sticker numbers drawn on it
//   - sticker_border_colors: Dominant colors along the grid lines
//
// Tiles:
//   - sticker_preview: The first stickers as base64 PNG (8 by default)
//   - sticker_tile: One sticker as base64 PNG
//   - sticker_slice: All stickers packed into a zip archive
//
// Every sticker_* tool takes path, columns (default 4), rows (default 5) and
// margin (default 0). Stickers are numbered row by row, left to right, and
// stored as sticker_1.png ... sticker_N.png.
//
// # Progress
//
// When a tools/call request carries params._meta.progressToken, sticker_slice
// emits a notifications/progress message after each sticker is archived.
//
// # Error Handling
//
// Tool execution errors are returned as JSON-RPC error responses with:
//   - code: -32000 (tool execution failure) or standard JSON-RPC codes
//   - message: Human-readable error description
//   - data: The Go error string, e.g. an invalid grid or an undecodable image
//
// # Usage
//
//	cfg, err := server.ConfigFromEnv()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := server.NewWithConfig(cfg).Run(); err != nil {
//	    log.Fatal(err)
//	}
package server
