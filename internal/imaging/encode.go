package imaging

import (
	"bytes"
	"encoding/base64"
	"image"
	"io"

	"github.com/anthonynsimon/bild/imgio"
)

// PNGMimeType is the MIME type of every image this package produces.
const PNGMimeType = "image/png"

var pngEncoder = imgio.PNGEncoder()

// EncodePNG writes img to w as PNG.
func EncodePNG(w io.Writer, img image.Image) error {
	return pngEncoder(w, img)
}

// encodeBase64PNG encodes img as PNG and returns it base64 encoded.
// Failures are reported as *EncodeError carrying index.
func encodeBase64PNG(img image.Image, index int) (string, error) {
	var buf bytes.Buffer
	if err := EncodePNG(&buf, img); err != nil {
		return "", &EncodeError{Index: index, Err: err}
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
