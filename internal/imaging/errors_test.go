package imaging

import (
	"errors"
	"fmt"
	"image"
	"strings"
	"testing"
)

func TestErrors_Is(t *testing.T) {
	cause := errors.New("boom")

	tests := []struct {
		name   string
		err    error
		target error
		other  error
	}{
		{"grid", &InvalidGridError{Spec: GridSpec{Columns: 0, Rows: 5}}, ErrInvalidGrid, ErrDecode},
		{"decode", &DecodeError{Source: "a.png", Err: cause}, ErrDecode, ErrEncode},
		{"encode", &EncodeError{Index: 3, Err: cause}, ErrEncode, ErrInvalidGrid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := fmt.Errorf("handler: %w", tt.err)
			if !errors.Is(wrapped, tt.target) {
				t.Errorf("%v should match %v", wrapped, tt.target)
			}
			if errors.Is(wrapped, tt.other) {
				t.Errorf("%v should not match %v", wrapped, tt.other)
			}
		})
	}
}

func TestErrors_Unwrap(t *testing.T) {
	if err := (&DecodeError{Err: image.ErrFormat}); !errors.Is(err, image.ErrFormat) {
		t.Error("DecodeError should unwrap to its cause")
	}
	cause := errors.New("disk full")
	if err := (&EncodeError{Index: 0, Err: cause}); !errors.Is(err, cause) {
		t.Error("EncodeError should unwrap to its cause")
	}
}

func TestErrors_Messages(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{
			&InvalidGridError{Spec: GridSpec{Columns: 4, Rows: 5, Margin: 60}, Width: 400, Height: 500, Reason: "margin too large"},
			"invalid grid (4 columns x 5 rows, margin 60) for 400x500 image: margin too large",
		},
		{&DecodeError{Source: "sheet.png", Err: image.ErrFormat}, "failed to decode image sheet.png: image: unknown format"},
		{&DecodeError{Err: image.ErrFormat}, "failed to decode image: image: unknown format"},
		{&EncodeError{Index: 7, Err: errors.New("x")}, "failed to encode tile 7: x"},
		{&EncodeError{Index: -1, Err: errors.New("x")}, "failed to encode image: x"},
	}

	for _, tt := range tests {
		if got := tt.err.Error(); got != tt.want {
			t.Errorf("got %q, want %q", got, tt.want)
		}
	}
}

func TestValidate_ReportsReason(t *testing.T) {
	err := GridSpec{Columns: 4, Rows: 5, Margin: 50}.Validate(400, 500)
	if err == nil {
		t.Fatal("margin of half a cell should be rejected")
	}
	if !strings.Contains(err.Error(), "400x500") {
		t.Errorf("message should name the image size: %v", err)
	}
}

func TestErrors_PlainFailures(t *testing.T) {
	img := createPatternImage(40, 40)
	sentinels := []error{ErrInvalidGrid, ErrDecode, ErrEncode}

	_, sampleErr := SampleColor(img, 40, 0)
	_, bandErr := BorderColors(img, GridSpec{Columns: 2, Rows: 2}, 0, 5)

	for _, err := range []error{sampleErr, bandErr} {
		if err == nil {
			t.Fatal("expected an error")
		}
		for _, s := range sentinels {
			if errors.Is(err, s) {
				t.Errorf("%v should not match %v", err, s)
			}
		}
	}
}
