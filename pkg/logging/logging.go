// Package logging builds the slog loggers used across grayplug.
package logging

import (
	"errors"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/rs5lab/grayplug/pkg/utils"
	slogmulti "github.com/samber/slog-multi"
)

var ErrInvalidLevel = errors.New("invalid log level")

type Options struct {
	// debug, info, warn or error
	Level string
	// text or json
	Format string
	// Console destination. Defaults to stderr
	Console io.Writer
	// Optional destination receiving every record as JSON, regardless of Level
	File io.Writer
}

// Returns the slog level with the given name
func ParseLevel(name string) (slog.Level, error) {
	var level slog.Level

	if err := level.UnmarshalText([]byte(strings.TrimSpace(name))); err != nil {
		return 0, utils.MakeError(ErrInvalidLevel, "'%v'", name)
	}

	return level, nil
}

// Builds a logger fanning records out to the console and the optional log file
func New(options Options) (*slog.Logger, error) {
	level := slog.LevelInfo
	if options.Level != "" {
		parsed, err := ParseLevel(options.Level)
		if err != nil {
			return nil, err
		}
		level = parsed
	}

	console := options.Console
	if console == nil {
		console = os.Stderr
	}

	consoleOptions := &slog.HandlerOptions{Level: level}

	var handlers []slog.Handler

	if strings.EqualFold(options.Format, "json") {
		handlers = append(handlers, slog.NewJSONHandler(console, consoleOptions))
	} else {
		handlers = append(handlers, slog.NewTextHandler(console, consoleOptions))
	}

	if options.File != nil {
		handlers = append(handlers, slog.NewJSONHandler(options.File, &slog.HandlerOptions{Level: slog.LevelDebug}))
	}

	return slog.New(slogmulti.Fanout(handlers...)), nil
}

// Returns a logger dropping every record
func Discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
