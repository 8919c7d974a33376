package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func pathProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Absolute path to the sticker sheet (PNG or JPEG)",
	}
}

// gridProperties returns the schema properties shared by every sticker_*
// tool, merged with extra.
func gridProperties(extra map[string]interface{}) map[string]interface{} {
	props := map[string]interface{}{
		"path": pathProperty(),
		"columns": map[string]interface{}{
			"type":        "integer",
			"description": "Number of stickers across. Default 4",
			"default":     4,
			"minimum":     1,
		},
		"rows": map[string]interface{}{
			"type":        "integer",
			"description": "Number of stickers down. Default 5",
			"default":     5,
			"minimum":     1,
		},
		"margin": map[string]interface{}{
			"type":        "integer",
			"description": "Pixels trimmed from every side of each cell to remove separator lines. Default 0",
			"default":     0,
			"minimum":     0,
		},
	}
	for k, v := range extra {
		props[k] = v
	}
	return props
}

func scaleProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "number",
		"description": "Optional scale factor for the returned images. Default 1.0",
		"default":     1.0,
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		// Source image
		{
			Name:        "image_load",
			Description: "Load a sticker sheet and return its dimensions, format and file size. The decoded image is cached for later calls.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_dimensions",
			Description: "Get the width and height of a sticker sheet.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
				},
				"required": []string{"path"},
			},
		},
		{
			Name:        "image_sample_color",
			Description: "Get the exact color value at a specific pixel coordinate, e.g. to check the color of a separator line.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path": pathProperty(),
					"x": map[string]interface{}{
						"type":        "integer",
						"description": "X coordinate (0-based, from left)",
					},
					"y": map[string]interface{}{
						"type":        "integer",
						"description": "Y coordinate (0-based, from top)",
					},
				},
				"required": []string{"path", "x", "y"},
			},
		},

		// Grid inspection
		{
			Name:        "sticker_layout",
			Description: "Compute the bounding box of every sticker for a grid without cutting the image. Tiles are numbered row by row, left to right.",
			InputSchema: map[string]interface{}{
				"type":       "object",
				"properties": gridProperties(nil),
				"required":   []string{"path"},
			},
		},
		{
			Name:        "sticker_grid_overlay",
			Description: "Draw the outline of every sticker on the sheet and return it as base64 PNG, to check the grid and margin before slicing.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": gridProperties(map[string]interface{}{
					"show_labels": map[string]interface{}{
						"type":        "boolean",
						"description": "Number each sticker as in its archive name. Default true",
						"default":     true,
					},
					"color": map[string]interface{}{
						"type":        "string",
						"description": "Outline color as hex (#RRGGBB or #RRGGBBAA). Default #FF0000",
						"default":     "#FF0000",
					},
				}),
				"required": []string{"path"},
			},
		},
		{
			Name:        "sticker_border_colors",
			Description: "Report the most common colors along the grid lines. A dominant line color suggests a margin is needed to trim it.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": gridProperties(map[string]interface{}{
					"band": map[string]interface{}{
						"type":        "integer",
						"description": "Distance in pixels from a grid line that is sampled. Default 3",
						"default":     3,
					},
					"count": map[string]interface{}{
						"type":        "integer",
						"description": "Number of colors to return. Default 5",
						"default":     5,
					},
				}),
				"required": []string{"path"},
			},
		},

		// Tiles
		{
			Name:        "sticker_preview",
			Description: "Cut the first stickers of the sheet and return them as base64 PNG, with the total number of stickers.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": gridProperties(map[string]interface{}{
					"limit": map[string]interface{}{
						"type":        "integer",
						"description": "Maximum number of stickers to return. Default 8",
						"default":     8,
					},
					"scale": scaleProperty(),
				}),
				"required": []string{"path"},
			},
		},
		{
			Name:        "sticker_tile",
			Description: "Cut a single sticker by its 0-based index and return it as base64 PNG.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": gridProperties(map[string]interface{}{
					"index": map[string]interface{}{
						"type":        "integer",
						"description": "0-based sticker index (row * columns + column)",
					},
					"scale": scaleProperty(),
				}),
				"required": []string{"path", "index"},
			},
		},
		{
			Name:        "sticker_slice",
			Description: "Cut the whole sheet into stickers and pack them as sticker_1.png ... sticker_N.png in a zip archive. Writes the archive to disk, or returns it as base64 when inline is set.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": gridProperties(map[string]interface{}{
					"output_path": map[string]interface{}{
						"type":        "string",
						"description": "Where to write the zip. Default <output dir>/stickers_pack.zip",
					},
					"inline": map[string]interface{}{
						"type":        "boolean",
						"description": "Return the archive as base64 instead of writing a file. Default false",
						"default":     false,
					},
				}),
				"required": []string{"path"},
			},
		},
	}
}

// handleToolsList returns the list of available tools
func (s *Server) handleToolsList(req *MCPRequest) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"tools": GetToolDefinitions(),
		},
	}
}
