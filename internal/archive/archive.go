// Package archive packs sliced stickers into a single zip file.
//
// Each tile becomes one PNG entry named sticker_<n>.png, where n is the
// tile's 1-based position, stored with deflate compression. Entries appear
// in the order the tiles are received.
package archive

import (
	"bytes"
	"fmt"
	"io"
	"iter"
	"slices"
	"time"

	"github.com/klauspost/compress/zip"

	"github.com/ironsheep/sticker-slicer-mcp/internal/imaging"
)

const (
	// DefaultName is the file name offered for download.
	DefaultName = "stickers_pack.zip"

	// MimeType is the media type of a built archive.
	MimeType = "application/zip"
)

// Entry is one encoded sticker ready to be stored in the archive.
type Entry struct {
	Name string
	Data []byte
}

// EncodeEntry renders t as PNG and names it after its index.
// Failures are reported as *imaging.EncodeError.
func EncodeEntry(t imaging.Tile) (Entry, error) {
	var buf bytes.Buffer
	if err := imaging.EncodePNG(&buf, t.Image); err != nil {
		return Entry{}, &imaging.EncodeError{Index: t.Index, Err: err}
	}
	return Entry{Name: imaging.StickerName(t.Index), Data: buf.Bytes()}, nil
}

// Builder writes sticker archives. The zero value is ready to use.
// A Builder holds only options and may be shared between goroutines as long
// as Progress is safe to call concurrently.
type Builder struct {
	// Modified is stamped on every entry. The zero value leaves the zip
	// timestamp fields empty, so equal input gives byte-identical output.
	Modified time.Time

	// Progress, when set, is called after each entry is written with the
	// number of entries written so far.
	Progress func(done int)
}

// Build packs tiles into an in-memory zip archive. An empty slice gives a
// valid archive with no entries. If any tile fails to encode, Build returns
// the error and no bytes.
func (b *Builder) Build(tiles []imaging.Tile) ([]byte, error) {
	var buf bytes.Buffer
	if _, err := b.Stream(&buf, slices.Values(tiles)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Stream writes the archive for tiles to w, encoding one tile at a time,
// and returns the number of entries written. On error w holds an incomplete
// archive; callers that must not expose partial output should write to a
// buffer or temporary file first.
func (b *Builder) Stream(w io.Writer, tiles iter.Seq[imaging.Tile]) (n int, err error) {
	zw := zip.NewWriter(w)
	defer func() {
		if err != nil {
			// The archive is abandoned; the original error is the one to report.
			_ = zw.Close()
		}
	}()

	for t := range tiles {
		entry, err := EncodeEntry(t)
		if err != nil {
			return n, err
		}
		if err := b.writeEntry(zw, entry); err != nil {
			return n, fmt.Errorf("failed to write %s: %w", entry.Name, err)
		}
		n++
		if b.Progress != nil {
			b.Progress(n)
		}
	}
	if err := zw.Close(); err != nil {
		return n, fmt.Errorf("failed to finish archive: %w", err)
	}
	return n, nil
}

func (b *Builder) writeEntry(zw *zip.Writer, e Entry) error {
	hdr := &zip.FileHeader{
		Name:   e.Name,
		Method: zip.Deflate,
	}
	if !b.Modified.IsZero() {
		hdr.Modified = b.Modified
	}
	fw, err := zw.CreateHeader(hdr)
	if err != nil {
		return err
	}
	_, err = fw.Write(e.Data)
	return err
}

// Build packs tiles with a default Builder.
func Build(tiles []imaging.Tile) ([]byte, error) {
	var b Builder
	return b.Build(tiles)
}
