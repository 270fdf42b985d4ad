// Package content defines what a clipboard read produces and how captured
// text is classified.
package content

import (
	"bytes"
	"fmt"
	"image/png"
	"strings"
)

// Kind is the classification stored alongside every history entry.
type Kind string

const (
	KindText  Kind = "text"
	KindURL   Kind = "url"
	KindCode  Kind = "code"
	KindImage Kind = "image"
)

// codeMarkers are matched as plain substrings; false positives are accepted.
var codeMarkers = []string{
	"fn ",
	"function ",
	"def ",
	"class ",
	"const ",
	"let ",
	"import ",
	"#include",
}

// Classify returns the Kind of a piece of clipboard text.
func Classify(text string) Kind {
	trimmed := strings.TrimSpace(text)
	if strings.HasPrefix(trimmed, "http://") || strings.HasPrefix(trimmed, "https://") {
		return KindURL
	}
	for _, m := range codeMarkers {
		if strings.Contains(trimmed, m) {
			return KindCode
		}
	}
	return KindText
}

// ParseKind converts a stored string back to a Kind, defaulting to KindText.
func ParseKind(s string) Kind {
	switch Kind(s) {
	case KindURL, KindCode, KindImage:
		return Kind(s)
	default:
		return KindText
	}
}

// Image is a PNG-encoded clipboard image.
type Image struct {
	PNG    []byte
	Width  int
	Height int
}

// DecodeImage reads the dimensions from a PNG header without decoding pixels.
func DecodeImage(data []byte) (*Image, error) {
	cfg, err := png.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("png header: %w", err)
	}
	return &Image{PNG: data, Width: cfg.Width, Height: cfg.Height}, nil
}

// Snapshot is one clipboard read. Exactly one of Text or Image is set.
type Snapshot struct {
	Text  string
	Image *Image
}

// TextSnapshot returns a text Snapshot.
func TextSnapshot(text string) Snapshot { return Snapshot{Text: text} }

// ImageSnapshot returns an image Snapshot.
func ImageSnapshot(img *Image) Snapshot { return Snapshot{Image: img} }

// IsImage reports whether the snapshot carries an image.
func (s Snapshot) IsImage() bool { return s.Image != nil }

// Placeholder is the searchable text stored for an image entry. The short
// fingerprint keeps two images of equal size from folding into one row.
func Placeholder(img *Image, fingerprint uint64) string {
	return fmt.Sprintf("[Image %dx%d #%08x]", img.Width, img.Height, uint32(fingerprint))
}
