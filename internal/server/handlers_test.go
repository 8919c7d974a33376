package server

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/zip"
)

// createTestImageFile creates a test image file and returns its path
func createTestImageFile(t *testing.T, width, height int, c color.Color) string {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, c)
		}
	}

	tmpFile, err := os.CreateTemp("", "handler-test-*.png")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	defer tmpFile.Close()

	if err := png.Encode(tmpFile, img); err != nil {
		os.Remove(tmpFile.Name())
		t.Fatalf("failed to encode image: %v", err)
	}

	return tmpFile.Name()
}

// callTool builds a tools/call request for name with args.
func callTool(t *testing.T, name string, args map[string]interface{}) *MCPRequest {
	t.Helper()
	params := map[string]interface{}{
		"name":      name,
		"arguments": args,
	}
	paramsJSON, err := json.Marshal(params)
	if err != nil {
		t.Fatalf("failed to marshal params: %v", err)
	}
	return &MCPRequest{
		JSONRPC: "2.0",
		ID:      1,
		Method:  "tools/call",
		Params:  paramsJSON,
	}
}

// decodeToolResult unmarshals the JSON text content of a successful tools/call response into v.
func decodeToolResult(t *testing.T, resp *MCPResponse, v interface{}) {
	t.Helper()
	if resp == nil {
		t.Fatal("nil response")
	}
	if resp.Error != nil {
		t.Fatalf("Unexpected error: %v (%v)", resp.Error.Message, resp.Error.Data)
	}
	result, ok := resp.Result.(map[string]interface{})
	if !ok {
		t.Fatal("Result should be a map")
	}
	content, ok := result["content"].([]map[string]interface{})
	if !ok || len(content) != 1 {
		t.Fatalf("content: got %v", result["content"])
	}
	text, ok := content[0]["text"].(string)
	if !ok {
		t.Fatal("content text should be a string")
	}
	if err := json.Unmarshal([]byte(text), v); err != nil {
		t.Fatalf("failed to decode result: %v", err)
	}
}

func TestHandleToolsCall_ImageLoad(t *testing.T) {
	s := New()
	imgPath := createTestImageFile(t, 100, 80, color.RGBA{255, 0, 0, 255})
	defer os.Remove(imgPath)

	resp := s.handleRequest(callTool(t, "image_load", map[string]interface{}{"path": imgPath}))

	var info struct {
		Width  int    `json:"width"`
		Height int    `json:"height"`
		Format string `json:"format"`
	}
	decodeToolResult(t, resp, &info)
	if info.Width != 100 || info.Height != 80 {
		t.Errorf("dimensions: got %dx%d, want 100x80", info.Width, info.Height)
	}
	if info.Format != "png" {
		t.Errorf("format: got %s, want png", info.Format)
	}
}

func TestHandleToolsCall_ImageDimensions(t *testing.T) {
	s := New()
	imgPath := createTestImageFile(t, 200, 150, color.RGBA{0, 255, 0, 255})
	defer os.Remove(imgPath)

	resp := s.handleToolsCall(callTool(t, "image_dimensions", map[string]interface{}{"path": imgPath}))

	var dims struct {
		Width  int `json:"width"`
		Height int `json:"height"`
	}
	decodeToolResult(t, resp, &dims)
	if dims.Width != 200 || dims.Height != 150 {
		t.Errorf("dimensions: got %dx%d, want 200x150", dims.Width, dims.Height)
	}
}

func TestHandleToolsCall_NonExistentFile(t *testing.T) {
	s := New()

	resp := s.handleToolsCall(callTool(t, "image_load", map[string]interface{}{"path": "/nonexistent/image.png"}))

	if resp.Error == nil {
		t.Fatal("expected error for non-existent file")
	}
	if resp.Error.Code != -32000 {
		t.Errorf("Error code: got %d, want -32000", resp.Error.Code)
	}
}

func TestHandleToolsCall_NotAnImage(t *testing.T) {
	s := New()
	tmp, err := os.CreateTemp("", "handler-test-*.png")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	tmp.WriteString("definitely not a png")
	tmp.Close()
	defer os.Remove(tmp.Name())

	resp := s.handleToolsCall(callTool(t, "sticker_slice", map[string]interface{}{"path": tmp.Name(), "inline": true}))

	if resp.Error == nil {
		t.Fatal("expected error for undecodable image")
	}
	if data, _ := resp.Error.Data.(string); !strings.Contains(data, "decode") {
		t.Errorf("error data should mention decoding, got %q", data)
	}
}

func TestHandleToolsCall_InvalidTool(t *testing.T) {
	s := New()

	resp := s.handleToolsCall(callTool(t, "nonexistent_tool", map[string]interface{}{}))

	if resp.Error == nil {
		t.Fatal("expected error for unknown tool")
	}
	if resp.Error.Code != -32000 {
		t.Errorf("Error code: got %d, want -32000", resp.Error.Code)
	}
}

func TestHandleToolsCall_InvalidParams(t *testing.T) {
	s := New()
	req := &MCPRequest{
		JSONRPC: "2.0",
		ID:      1,
		Params:  json.RawMessage(`not json`),
	}

	resp := s.handleToolsCall(req)

	if resp.Error == nil {
		t.Fatal("expected error for invalid params")
	}
	if resp.Error.Code != -32602 {
		t.Errorf("Error code: got %d, want -32602", resp.Error.Code)
	}
}

func TestHandleToolsCall_SampleColor(t *testing.T) {
	s := New()
	imgPath := createTestImageFile(t, 100, 100, color.RGBA{255, 128, 64, 255})
	defer os.Remove(imgPath)

	resp := s.handleToolsCall(callTool(t, "image_sample_color", map[string]interface{}{"path": imgPath, "x": 50, "y": 50}))

	var c struct {
		Hex string `json:"hex"`
	}
	decodeToolResult(t, resp, &c)
	if c.Hex != "#FF8040" {
		t.Errorf("hex: got %s, want #FF8040", c.Hex)
	}
}

func TestHandleToolsCall_StickerLayout(t *testing.T) {
	s := New()
	imgPath := createTestImageFile(t, 400, 500, color.RGBA{200, 200, 200, 255})
	defer os.Remove(imgPath)

	// columns and rows omitted: the 4x5 default applies
	resp := s.handleToolsCall(callTool(t, "sticker_layout", map[string]interface{}{"path": imgPath}))

	var layout layoutResult
	decodeToolResult(t, resp, &layout)

	if len(layout.Tiles) != 20 {
		t.Fatalf("tiles: got %d, want 20", len(layout.Tiles))
	}
	if layout.CellWidth != 100 || layout.CellHeight != 100 {
		t.Errorf("cell size: got %vx%v, want 100x100", layout.CellWidth, layout.CellHeight)
	}
	last := layout.Tiles[19]
	if last.Name != "sticker_20.png" || last.Row != 4 || last.Col != 3 {
		t.Errorf("last tile: got %+v", last)
	}
	if last.Bounds.X1 != 300 || last.Bounds.Y1 != 400 || last.Bounds.X2 != 400 || last.Bounds.Y2 != 500 {
		t.Errorf("last tile bounds: got %+v, want (300,400)-(400,500)", last.Bounds)
	}
}

func TestHandleToolsCall_StickerLayout_Margin(t *testing.T) {
	s := New()
	imgPath := createTestImageFile(t, 400, 500, color.RGBA{200, 200, 200, 255})
	defer os.Remove(imgPath)

	resp := s.handleToolsCall(callTool(t, "sticker_layout", map[string]interface{}{
		"path": imgPath, "columns": 4, "rows": 5, "margin": 5,
	}))

	var layout layoutResult
	decodeToolResult(t, resp, &layout)

	first := layout.Tiles[0].Box
	if first.Left != 5 || first.Top != 5 || first.Right != 95 || first.Bottom != 95 {
		t.Errorf("first box: got %+v, want (5,5,95,95)", first)
	}
}

func TestHandleToolsCall_InvalidGrid(t *testing.T) {
	s := New()
	imgPath := createTestImageFile(t, 400, 500, color.RGBA{200, 200, 200, 255})
	defer os.Remove(imgPath)

	tests := []struct {
		name string
		args map[string]interface{}
	}{
		{"zero columns", map[string]interface{}{"path": imgPath, "columns": 0, "rows": 5}},
		{"negative rows", map[string]interface{}{"path": imgPath, "columns": 4, "rows": -1}},
		{"margin inverts cell", map[string]interface{}{"path": imgPath, "columns": 4, "rows": 5, "margin": 50}},
		{"huge grid", map[string]interface{}{"path": imgPath, "columns": 1000000, "rows": 1000000}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := s.handleToolsCall(callTool(t, "sticker_layout", tt.args))
			if resp.Error == nil {
				t.Fatal("expected error for invalid grid")
			}
			if data, _ := resp.Error.Data.(string); !strings.Contains(data, "invalid grid") {
				t.Errorf("error data: got %q", data)
			}
		})
	}
}

func TestHandleToolsCall_StickerGridOverlay(t *testing.T) {
	s := New()
	imgPath := createTestImageFile(t, 120, 100, color.RGBA{0, 0, 0, 255})
	defer os.Remove(imgPath)

	resp := s.handleToolsCall(callTool(t, "sticker_grid_overlay", map[string]interface{}{
		"path": imgPath, "columns": 3, "rows": 2, "show_labels": false, "color": "#00FF00",
	}))

	var result struct {
		Tiles       int    `json:"tiles"`
		ImageBase64 string `json:"image_base64"`
	}
	decodeToolResult(t, resp, &result)
	if result.Tiles != 6 {
		t.Errorf("tiles: got %d, want 6", result.Tiles)
	}

	data, err := base64.StdEncoding.DecodeString(result.ImageBase64)
	if err != nil {
		t.Fatalf("failed to decode base64: %v", err)
	}
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("failed to decode PNG: %v", err)
	}
	// left edge of the second column
	_, g, _, _ := img.At(40, 25).RGBA()
	if g>>8 != 255 {
		t.Errorf("outline at (40,25) should be green, got g=%d", g>>8)
	}
}

func TestHandleToolsCall_StickerBorderColors(t *testing.T) {
	s := New()
	imgPath := createTestImageFile(t, 100, 100, color.RGBA{255, 255, 255, 255})
	defer os.Remove(imgPath)

	resp := s.handleToolsCall(callTool(t, "sticker_border_colors", map[string]interface{}{
		"path": imgPath, "columns": 2, "rows": 2,
	}))

	var result struct {
		Band   int `json:"band"`
		Colors []struct {
			Hex        string  `json:"hex"`
			Percentage float64 `json:"percentage"`
		} `json:"colors"`
	}
	decodeToolResult(t, resp, &result)
	if result.Band != 3 {
		t.Errorf("band: got %d, want default 3", result.Band)
	}
	if len(result.Colors) != 1 || result.Colors[0].Hex != "#F0F0F0" {
		t.Errorf("colors: got %+v, want single quantized white", result.Colors)
	}
}

func TestHandleToolsCall_StickerPreview(t *testing.T) {
	s := New()
	imgPath := createTestImageFile(t, 400, 500, color.RGBA{10, 20, 30, 255})
	defer os.Remove(imgPath)

	resp := s.handleToolsCall(callTool(t, "sticker_preview", map[string]interface{}{"path": imgPath}))

	var result struct {
		Total int `json:"total"`
		Shown int `json:"shown"`
		More  int `json:"more"`
		Tiles []struct {
			Name   string `json:"name"`
			Width  int    `json:"width"`
			Height int    `json:"height"`
		} `json:"tiles"`
	}
	decodeToolResult(t, resp, &result)
	if result.Total != 20 || result.Shown != 8 || result.More != 12 {
		t.Errorf("counts: got total=%d shown=%d more=%d, want 20/8/12", result.Total, result.Shown, result.More)
	}
	if len(result.Tiles) != 8 || result.Tiles[7].Name != "sticker_8.png" {
		t.Errorf("tiles: got %+v", result.Tiles)
	}
}

func TestHandleToolsCall_StickerPreview_ConfiguredLimit(t *testing.T) {
	cfg := DefaultConfig()
	cfg.PreviewLimit = 3
	s := NewWithConfig(cfg)
	imgPath := createTestImageFile(t, 40, 40, color.RGBA{10, 20, 30, 255})
	defer os.Remove(imgPath)

	resp := s.handleToolsCall(callTool(t, "sticker_preview", map[string]interface{}{
		"path": imgPath, "columns": 2, "rows": 2,
	}))

	var result struct {
		Shown int `json:"shown"`
		More  int `json:"more"`
	}
	decodeToolResult(t, resp, &result)
	if result.Shown != 3 || result.More != 1 {
		t.Errorf("got shown=%d more=%d, want 3/1", result.Shown, result.More)
	}
}

func TestHandleToolsCall_StickerTile(t *testing.T) {
	s := New()
	imgPath := createTestImageFile(t, 400, 500, color.RGBA{10, 20, 30, 255})
	defer os.Remove(imgPath)

	resp := s.handleToolsCall(callTool(t, "sticker_tile", map[string]interface{}{
		"path": imgPath, "index": 5, "margin": 5, "scale": 0.5,
	}))

	var result struct {
		Index  int    `json:"index"`
		Name   string `json:"name"`
		Width  int    `json:"width"`
		Height int    `json:"height"`
	}
	decodeToolResult(t, resp, &result)
	if result.Index != 5 || result.Name != "sticker_6.png" {
		t.Errorf("tile: got index %d name %s", result.Index, result.Name)
	}
	if result.Width != 45 || result.Height != 45 {
		t.Errorf("scaled size: got %dx%d, want 45x45", result.Width, result.Height)
	}
}

func readZip(t *testing.T, data []byte) *zip.Reader {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("failed to open archive: %v", err)
	}
	return zr
}

func TestHandleToolsCall_StickerSlice_File(t *testing.T) {
	dir := t.TempDir()
	cfg := DefaultConfig()
	cfg.OutputDir = dir
	s := NewWithConfig(cfg)
	imgPath := createTestImageFile(t, 400, 500, color.RGBA{10, 20, 30, 255})
	defer os.Remove(imgPath)

	resp := s.handleToolsCall(callTool(t, "sticker_slice", map[string]interface{}{"path": imgPath}))

	var result sliceResult
	decodeToolResult(t, resp, &result)

	wantPath := filepath.Join(dir, "stickers_pack.zip")
	if result.ArchivePath != wantPath {
		t.Errorf("archive path: got %s, want %s", result.ArchivePath, wantPath)
	}
	if result.Count != 20 || len(result.Entries) != 20 {
		t.Errorf("count: got %d entries %d, want 20", result.Count, len(result.Entries))
	}
	if result.MimeType != "application/zip" {
		t.Errorf("mime type: got %s", result.MimeType)
	}

	data, err := os.ReadFile(wantPath)
	if err != nil {
		t.Fatalf("archive not written: %v", err)
	}
	if int64(len(data)) != result.SizeBytes {
		t.Errorf("size: got %d on disk, reported %d", len(data), result.SizeBytes)
	}
	zr := readZip(t, data)
	if len(zr.File) != 20 {
		t.Fatalf("archive entries: got %d, want 20", len(zr.File))
	}
	for i, f := range zr.File {
		if f.Name != result.Entries[i] {
			t.Errorf("entry %d: got %s, want %s", i, f.Name, result.Entries[i])
		}
	}
}

func TestHandleToolsCall_StickerSlice_Inline(t *testing.T) {
	s := New()
	imgPath := createTestImageFile(t, 90, 60, color.RGBA{10, 20, 30, 255})
	defer os.Remove(imgPath)

	resp := s.handleToolsCall(callTool(t, "sticker_slice", map[string]interface{}{
		"path": imgPath, "columns": 3, "rows": 2, "margin": 2, "inline": true,
	}))

	var result sliceResult
	decodeToolResult(t, resp, &result)
	if result.ArchivePath != "" {
		t.Errorf("inline slice should not write a file, got %s", result.ArchivePath)
	}

	data, err := base64.StdEncoding.DecodeString(result.ArchiveBase64)
	if err != nil {
		t.Fatalf("failed to decode base64: %v", err)
	}
	zr := readZip(t, data)
	if len(zr.File) != 6 {
		t.Fatalf("archive entries: got %d, want 6", len(zr.File))
	}

	rc, err := zr.File[0].Open()
	if err != nil {
		t.Fatalf("failed to open entry: %v", err)
	}
	defer rc.Close()
	tile, err := png.Decode(rc)
	if err != nil {
		t.Fatalf("failed to decode entry: %v", err)
	}
	if tile.Bounds().Dx() != 26 || tile.Bounds().Dy() != 26 {
		t.Errorf("tile size: got %dx%d, want 26x26", tile.Bounds().Dx(), tile.Bounds().Dy())
	}
}

func TestHandleToolsCall_StickerSlice_InvalidGridWritesNothing(t *testing.T) {
	dir := t.TempDir()
	s := New()
	imgPath := createTestImageFile(t, 100, 100, color.RGBA{10, 20, 30, 255})
	defer os.Remove(imgPath)
	outPath := filepath.Join(dir, "out.zip")

	resp := s.handleToolsCall(callTool(t, "sticker_slice", map[string]interface{}{
		"path": imgPath, "columns": 2, "rows": 2, "margin": 25, "output_path": outPath,
	}))

	if resp.Error == nil {
		t.Fatal("expected error for margin that inverts cells")
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("output dir should be empty, found %d entries", len(entries))
	}
}

func TestServe_SliceProgress(t *testing.T) {
	dir := t.TempDir()
	cfg := DefaultConfig()
	cfg.OutputDir = dir
	s := NewWithConfig(cfg)
	imgPath := createTestImageFile(t, 40, 40, color.RGBA{10, 20, 30, 255})
	defer os.Remove(imgPath)

	req := map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      7,
		"method":  "tools/call",
		"params": map[string]interface{}{
			"name":      "sticker_slice",
			"arguments": map[string]interface{}{"path": imgPath, "columns": 2, "rows": 2},
			"_meta":     map[string]interface{}{"progressToken": "slice-1"},
		},
	}
	line, _ := json.Marshal(req)

	var out bytes.Buffer
	if err := s.Serve(bytes.NewReader(append(line, '\n')), &out); err != nil {
		t.Fatalf("Serve failed: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 5 {
		t.Fatalf("output lines: got %d, want 4 notifications and 1 response:\n%s", len(lines), out.String())
	}

	for i, l := range lines[:4] {
		var n struct {
			Method string `json:"method"`
			Params struct {
				ProgressToken string `json:"progressToken"`
				Progress      int    `json:"progress"`
				Total         int    `json:"total"`
			} `json:"params"`
		}
		if err := json.Unmarshal([]byte(l), &n); err != nil {
			t.Fatalf("failed to decode notification: %v", err)
		}
		if n.Method != "notifications/progress" || n.Params.ProgressToken != "slice-1" {
			t.Errorf("notification %d: got %+v", i, n)
		}
		if n.Params.Progress != i+1 || n.Params.Total != 4 {
			t.Errorf("notification %d: progress %d/%d, want %d/4", i, n.Params.Progress, n.Params.Total, i+1)
		}
	}

	var resp MCPResponse
	if err := json.Unmarshal([]byte(lines[4]), &resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Error != nil {
		t.Fatalf("Unexpected error: %v", resp.Error)
	}
	if resp.ID != float64(7) {
		t.Errorf("ID: got %v, want 7", resp.ID)
	}
}

func TestServe_SkipsBadLines(t *testing.T) {
	s := New()
	input := "\n{not json}\n" + `{"jsonrpc":"2.0","id":1,"method":"ping"}` + "\n"

	var out bytes.Buffer
	if err := s.Serve(strings.NewReader(input), &out); err != nil {
		t.Fatalf("Serve failed: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 1 {
		t.Fatalf("output lines: got %d, want 1", len(lines))
	}
}

func TestExecuteTool_AllTools(t *testing.T) {
	s := NewWithConfig(Config{OutputDir: t.TempDir(), PreviewLimit: 8})
	imgPath := createTestImageFile(t, 100, 100, color.RGBA{128, 128, 128, 255})
	defer os.Remove(imgPath)

	toolTests := []struct {
		name string
		args map[string]interface{}
	}{
		{"image_load", map[string]interface{}{"path": imgPath}},
		{"image_dimensions", map[string]interface{}{"path": imgPath}},
		{"image_sample_color", map[string]interface{}{"path": imgPath, "x": 50, "y": 50}},
		{"sticker_layout", map[string]interface{}{"path": imgPath}},
		{"sticker_grid_overlay", map[string]interface{}{"path": imgPath}},
		{"sticker_border_colors", map[string]interface{}{"path": imgPath}},
		{"sticker_preview", map[string]interface{}{"path": imgPath}},
		{"sticker_tile", map[string]interface{}{"path": imgPath, "index": 0}},
		{"sticker_slice", map[string]interface{}{"path": imgPath}},
	}

	for _, tt := range toolTests {
		t.Run(tt.name, func(t *testing.T) {
			argsJSON, _ := json.Marshal(tt.args)
			result, err := s.executeTool(tt.name, argsJSON, func(int, int) {})
			if err != nil {
				t.Fatalf("executeTool(%s) failed: %v", tt.name, err)
			}
			if result == nil {
				t.Errorf("executeTool(%s) returned nil result", tt.name)
			}
		})
	}
}

func TestExecuteTool_UnknownTool(t *testing.T) {
	s := New()

	_, err := s.executeTool("unknown_tool", json.RawMessage(`{}`), func(int, int) {})
	if err == nil {
		t.Error("executeTool should fail for unknown tool")
	}
}

func TestExecuteTool_InvalidJSON(t *testing.T) {
	s := New()

	_, err := s.executeTool("sticker_slice", json.RawMessage(`{invalid`), func(int, int) {})
	if err == nil {
		t.Error("executeTool should fail for invalid JSON")
	}
}
