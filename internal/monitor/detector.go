package monitor

import (
	"encoding/binary"
	"strings"

	"github.com/cespare/xxhash/v2"

	"go.klb.dev/clipstream/internal/content"
)

// fingerprintPrefix bounds how much of an image payload is hashed per tick.
// Images that differ only past this prefix (and share a length) collide.
const fingerprintPrefix = 1024

// Fingerprint is a cheap change signal for image payloads. It is not a
// content hash: only the length and the first KiB are mixed in.
func Fingerprint(data []byte) uint64 {
	d := xxhash.New()
	var n [8]byte
	binary.LittleEndian.PutUint64(n[:], uint64(len(data)))
	_, _ = d.Write(n[:])
	if len(data) > fingerprintPrefix {
		data = data[:fingerprintPrefix]
	}
	_, _ = d.Write(data)
	return d.Sum64()
}

// Event is a detected clipboard change.
type Event struct {
	// Text is the trimmed text for text changes.
	Text string
	// Image is set for image changes.
	Image *content.Image
	// Fingerprint is the image fingerprint; zero for text.
	Fingerprint uint64
	// SourceApp is the foreground application at capture time, if known.
	SourceApp *string
}

// IsImage reports whether the event carries an image.
func (e Event) IsImage() bool { return e.Image != nil }

// Detector remembers the last clipboard state seen. At most one of the text
// and image fingerprints is set at a time. A Detector is not safe for
// concurrent use; it belongs to the polling goroutine.
type Detector struct {
	lastText    *string
	lastImageFP *uint64
}

// Observe reports whether snap differs from the previous snapshot and, if so,
// records it as the new last-seen state.
func (d *Detector) Observe(snap content.Snapshot) (Event, bool) {
	if snap.IsImage() {
		fp := Fingerprint(snap.Image.PNG)
		if d.lastImageFP != nil && *d.lastImageFP == fp {
			return Event{}, false
		}
		d.lastImageFP = &fp
		d.lastText = nil
		return Event{Image: snap.Image, Fingerprint: fp}, true
	}

	text := strings.TrimSpace(snap.Text)
	if text == "" {
		return Event{}, false
	}
	if d.lastText != nil && *d.lastText == text {
		return Event{}, false
	}
	d.lastText = &text
	d.lastImageFP = nil
	return Event{Text: text}, true
}
