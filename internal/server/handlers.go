package server

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log"
	"path/filepath"

	"github.com/ironsheep/sticker-slicer-mcp/internal/archive"
	"github.com/ironsheep/sticker-slicer-mcp/internal/imaging"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "sticker_slice").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`

	// Meta carries the optional progress token of the call.
	Meta *struct {
		ProgressToken interface{} `json:"progressToken,omitempty"`
	} `json:"_meta,omitempty"`
}

// progressFunc reports progress of a long-running tool as done out of total.
type progressFunc func(done, total int)

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	progress := func(int, int) {}
	if params.Meta != nil && params.Meta.ProgressToken != nil {
		token := params.Meta.ProgressToken
		progress = func(done, total int) {
			s.notify("notifications/progress", map[string]interface{}{
				"progressToken": token,
				"progress":      done,
				"total":         total,
			})
		}
	}

	result, err := s.executeTool(params.Name, params.Arguments, progress)
	if err != nil {
		if s.cfg.Debug {
			log.Printf("Tool %s failed: %v", params.Name, err)
		}
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
func (s *Server) executeTool(name string, args json.RawMessage, progress progressFunc) (interface{}, error) {
	switch name {
	// Source image
	case "image_load":
		return s.handleImageLoad(args)
	case "image_dimensions":
		return s.handleImageDimensions(args)
	case "image_sample_color":
		return s.handleImageSampleColor(args)

	// Grid inspection
	case "sticker_layout":
		return s.handleStickerLayout(args)
	case "sticker_grid_overlay":
		return s.handleStickerGridOverlay(args)
	case "sticker_border_colors":
		return s.handleStickerBorderColors(args)

	// Tiles
	case "sticker_preview":
		return s.handleStickerPreview(args)
	case "sticker_tile":
		return s.handleStickerTile(args)
	case "sticker_slice":
		return s.handleStickerSlice(args, progress)

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// On marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// === Source Image Handlers ===

type imageLoadArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleImageLoad(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return imaging.LoadImageInfo(s.cache, a.Path)
}

func (s *Server) handleImageDimensions(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return imaging.GetDimensions(s.cache, a.Path)
}

type imageSampleColorArgs struct {
	Path string `json:"path"`
	X    int    `json:"x"`
	Y    int    `json:"y"`
}

func (s *Server) handleImageSampleColor(args json.RawMessage) (interface{}, error) {
	var a imageSampleColorArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	return imaging.SampleColor(img, a.X, a.Y)
}

// === Grid Handlers ===

// gridArgs are the arguments shared by every sticker_* tool. Columns and
// Rows default to a 4x5 sheet when omitted; an explicit 0 is rejected.
type gridArgs struct {
	Path    string `json:"path"`
	Columns *int   `json:"columns"`
	Rows    *int   `json:"rows"`
	Margin  int    `json:"margin"`
}

func (a gridArgs) spec() imaging.GridSpec {
	spec := imaging.DefaultGridSpec
	if a.Columns != nil {
		spec.Columns = *a.Columns
	}
	if a.Rows != nil {
		spec.Rows = *a.Rows
	}
	spec.Margin = a.Margin
	return spec
}

type layoutTile struct {
	Index  int            `json:"index"`
	Row    int            `json:"row"`
	Col    int            `json:"col"`
	Name   string         `json:"name"`
	Box    imaging.Box    `json:"box"`
	Bounds imaging.Region `json:"bounds"`
}

type layoutResult struct {
	Width      int              `json:"width"`
	Height     int              `json:"height"`
	Grid       imaging.GridSpec `json:"grid"`
	CellWidth  float64          `json:"cell_width"`
	CellHeight float64          `json:"cell_height"`
	Tiles      []layoutTile     `json:"tiles"`
}

func (s *Server) handleStickerLayout(args json.RawMessage) (interface{}, error) {
	var a gridArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	dims, err := imaging.GetDimensions(s.cache, a.Path)
	if err != nil {
		return nil, err
	}

	spec := a.spec()
	boxes, err := imaging.Layout(dims.Width, dims.Height, spec)
	if err != nil {
		return nil, err
	}
	regions, err := imaging.PixelRegions(dims.Width, dims.Height, spec)
	if err != nil {
		return nil, err
	}

	cw, ch := spec.CellSize(dims.Width, dims.Height)
	result := &layoutResult{
		Width:      dims.Width,
		Height:     dims.Height,
		Grid:       spec,
		CellWidth:  cw,
		CellHeight: ch,
		Tiles:      make([]layoutTile, len(boxes)),
	}
	for i, b := range boxes {
		result.Tiles[i] = layoutTile{
			Index:  i,
			Row:    i / spec.Columns,
			Col:    i % spec.Columns,
			Name:   imaging.StickerName(i),
			Box:    b,
			Bounds: regions[i],
		}
	}
	return result, nil
}

type stickerGridOverlayArgs struct {
	gridArgs
	ShowLabels *bool  `json:"show_labels"`
	Color      string `json:"color"`
}

func (s *Server) handleStickerGridOverlay(args json.RawMessage) (interface{}, error) {
	var a stickerGridOverlayArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	showLabels := true
	if a.ShowLabels != nil {
		showLabels = *a.ShowLabels
	}
	if a.Color == "" {
		a.Color = "#FF0000"
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	return imaging.GridOverlay(img, a.spec(), showLabels, a.Color)
}

type stickerBorderColorsArgs struct {
	gridArgs
	Band  int `json:"band"`
	Count int `json:"count"`
}

func (s *Server) handleStickerBorderColors(args json.RawMessage) (interface{}, error) {
	var a stickerBorderColorsArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Band == 0 {
		a.Band = 3
	}
	if a.Count == 0 {
		a.Count = 5
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	return imaging.BorderColors(img, a.spec(), a.Band, a.Count)
}

// === Tile Handlers ===

type stickerPreviewArgs struct {
	gridArgs
	Limit int     `json:"limit"`
	Scale float64 `json:"scale"`
}

func (s *Server) handleStickerPreview(args json.RawMessage) (interface{}, error) {
	var a stickerPreviewArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Limit == 0 {
		a.Limit = s.cfg.PreviewLimit
	}
	if a.Scale == 0 {
		a.Scale = 1.0
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	return imaging.Preview(img, a.spec(), a.Limit, a.Scale)
}

type stickerTileArgs struct {
	gridArgs
	Index int     `json:"index"`
	Scale float64 `json:"scale"`
}

func (s *Server) handleStickerTile(args json.RawMessage) (interface{}, error) {
	var a stickerTileArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Scale == 0 {
		a.Scale = 1.0
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	return imaging.TileImage(img, a.spec(), a.Index, a.Scale)
}

type stickerSliceArgs struct {
	gridArgs
	OutputPath string `json:"output_path"`
	Inline     bool   `json:"inline"`
}

type sliceResult struct {
	FileName      string   `json:"file_name"`
	MimeType      string   `json:"mime_type"`
	ArchivePath   string   `json:"archive_path,omitempty"`
	ArchiveBase64 string   `json:"archive_base64,omitempty"`
	SizeBytes     int64    `json:"size_bytes"`
	Count         int      `json:"count"`
	Entries       []string `json:"entries"`
}

func (s *Server) handleStickerSlice(args json.RawMessage, progress progressFunc) (interface{}, error) {
	var a stickerSliceArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}

	spec := a.spec()
	tiles, err := imaging.Tiles(img, spec)
	if err != nil {
		return nil, err
	}

	total := spec.Count()
	builder := &archive.Builder{
		Progress: func(done int) { progress(done, total) },
	}

	result := &sliceResult{
		FileName: archive.DefaultName,
		MimeType: archive.MimeType,
		Count:    total,
		Entries:  make([]string, total),
	}
	for i := range result.Entries {
		result.Entries[i] = imaging.StickerName(i)
	}

	if a.Inline {
		var buf bytes.Buffer
		if _, err := builder.Stream(&buf, tiles); err != nil {
			return nil, err
		}
		result.ArchiveBase64 = base64.StdEncoding.EncodeToString(buf.Bytes())
		result.SizeBytes = int64(buf.Len())
		return result, nil
	}

	outPath := a.OutputPath
	if outPath == "" {
		outPath = filepath.Join(s.cfg.OutputDir, archive.DefaultName)
	}
	fr, err := builder.WriteFile(outPath, tiles)
	if err != nil {
		return nil, err
	}
	if s.cfg.Debug {
		log.Printf("Wrote %d stickers to %s (%d bytes)", fr.Entries, fr.Path, fr.SizeBytes)
	}
	result.ArchivePath = fr.Path
	result.FileName = filepath.Base(fr.Path)
	result.SizeBytes = fr.SizeBytes
	return result, nil
}
