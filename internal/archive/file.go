package archive

import (
	"fmt"
	"iter"
	"os"
	"path/filepath"

	"github.com/ironsheep/sticker-slicer-mcp/internal/imaging"
)

// FileResult describes an archive written to disk.
type FileResult struct {
	Path      string
	Entries   int
	SizeBytes int64
}

// WriteFile streams the archive for tiles into path. The archive is built in
// a temporary file next to path and renamed into place only once complete,
// so a failed build never leaves a partial archive behind.
func (b *Builder) WriteFile(path string, tiles iter.Seq[imaging.Tile]) (*FileResult, error) {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".stickers-*.zip.tmp")
	if err != nil {
		return nil, fmt.Errorf("failed to create archive: %w", err)
	}
	tmpName := tmp.Name()
	keep := false
	defer func() {
		if !keep {
			os.Remove(tmpName)
		}
	}()

	n, err := b.Stream(tmp, tiles)
	if err != nil {
		tmp.Close()
		return nil, err
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("failed to close archive: %w", err)
	}

	stat, err := os.Stat(tmpName)
	if err != nil {
		return nil, fmt.Errorf("failed to stat archive: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return nil, fmt.Errorf("failed to move archive into place: %w", err)
	}
	keep = true

	return &FileResult{Path: path, Entries: n, SizeBytes: stat.Size()}, nil
}
