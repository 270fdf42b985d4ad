// Package logging configures the global slog logger for clipstream.
//
// The daemon usually runs detached from a terminal, so besides stderr it can
// append to a log file. Terminals get colourised tinter output; everything
// else gets JSON unless text is asked for, in which case colour is dropped.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/pwntr/tinter"
)

// Format selects the log output format.
type Format string

const (
	FormatAuto Format = "auto"
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// ParseFormat converts a string to a Format, returning FormatAuto for unknown values.
func ParseFormat(s string) Format {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "text", "tint", "human":
		return FormatText
	case "json":
		return FormatJSON
	default:
		return FormatAuto
	}
}

// ParseLevel converts a string to a slog.Level, defaulting to Info.
func ParseLevel(s string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return l
}

// IsTTY reports whether w is a terminal.
func IsTTY(w io.Writer) bool {
	if f, ok := w.(*os.File); ok {
		return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return false
}

// Options describes where and how to log.
type Options struct {
	Format Format
	// Level is a slog level name. Empty picks debug for interactive runs and
	// info otherwise.
	Level string
	// Interactive marks a foreground run (--no-background or a terminal).
	Interactive bool
	// File, when set, receives logs instead of stderr. It is created with
	// owner-only permissions and appended to.
	File string
}

func (o Options) level() slog.Level {
	if o.Level == "" {
		if o.Interactive {
			return slog.LevelDebug
		}
		return slog.LevelInfo
	}
	return ParseLevel(o.Level)
}

// NewHandler returns a colourised handler when w is a terminal (or text is
// forced) and a JSON handler otherwise.
func NewHandler(w io.Writer, format Format, level slog.Level) slog.Handler {
	tty := IsTTY(w)
	if format == FormatText || (format == FormatAuto && tty) {
		return tinter.NewHandler(w, &tinter.Options{
			Level:      level,
			TimeFormat: "15:04:05.000",
			NoColor:    !tty,
		})
	}
	return slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
}

// Setup installs the global slog logger described by opts. The returned
// closer releases the log file, if any; call it on shutdown.
func Setup(opts Options) (io.Closer, error) {
	var (
		w      io.Writer = os.Stderr
		closer io.Closer = io.NopCloser(nil)
	)
	if opts.File != "" {
		f, err := openLogFile(opts.File)
		if err != nil {
			return nil, err
		}
		w, closer = f, f
	}
	slog.SetDefault(slog.New(NewHandler(w, opts.Format, opts.level())))
	return closer, nil
}

func openLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf("log dir: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return f, nil
}
