// Package logging builds the zerolog logger shared by the server and the
// terminal UI.
package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
)

const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

func New(level, format string, out io.Writer) (zerolog.Logger, error) {
	parsed, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("log level %q: %w", level, err)
	}
	if parsed == zerolog.NoLevel {
		parsed = zerolog.InfoLevel
	}
	if out == nil {
		out = os.Stderr
	}

	switch format {
	case FormatJSON:
	case FormatConsole, "":
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339, NoColor: !isTerminal(out)}
	default:
		return zerolog.Nop(), fmt.Errorf("unknown log format %q", format)
	}
	return zerolog.New(out).Level(parsed).With().Timestamp().Logger(), nil
}

// OpenFile returns a logger appending JSON lines to path, for the terminal UI
// where stderr belongs to the screen.
func OpenFile(level, path string) (zerolog.Logger, io.Closer, error) {
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return zerolog.Nop(), nil, err
	}
	logger, err := New(level, FormatJSON, file)
	if err != nil {
		_ = file.Close()
		return zerolog.Nop(), nil, err
	}
	return logger, file, nil
}

func isTerminal(out io.Writer) bool {
	file, ok := out.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(file.Fd()) || isatty.IsCygwinTerminal(file.Fd())
}
