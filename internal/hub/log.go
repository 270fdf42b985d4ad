package hub

import (
	"context"
	"log/slog"
	"unicode/utf8"
)

const previewLen = 120

// LogEvent logs a history event at INFO (kind, id, type, source) and DEBUG
// (content preview up to 120 chars, or image size).
func LogEvent(ev Event) {
	if ev.Entry == nil {
		slog.Info("history "+string(ev.Kind), "id", ev.ID, "removed", ev.Removed)
		return
	}
	e := ev.Entry
	source := ""
	if e.SourceApp != nil {
		source = *e.SourceApp
	}
	slog.Info("history "+string(ev.Kind), "id", e.ID, "type", e.ContentType, "source", source, "pinned", e.IsPinned)

	if !slog.Default().Enabled(context.Background(), slog.LevelDebug) {
		return
	}
	if len(e.Image) > 0 {
		slog.Debug("history entry", "id", e.ID, "size_bytes", len(e.Image))
		return
	}
	slog.Debug("history entry", "id", e.ID, "preview", Preview(e.Content))
}

// Preview shortens s to at most 120 runes.
func Preview(s string) string {
	if utf8.RuneCountInString(s) <= previewLen {
		return s
	}
	r := []rune(s)
	return string(r[:previewLen]) + "…"
}
