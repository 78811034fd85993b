// Package shared holds the state every grayplug command needs once the root command
// loaded the configuration: settings, logger and terminal styles.
package shared

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/fatih/color"
	"github.com/rs5lab/grayplug/pkg/config"
	"github.com/rs5lab/grayplug/pkg/logging"
	"github.com/spf13/viper"
)

var (
	ColorError   = color.New(color.FgRed, color.Bold)
	ColorSuccess = color.New(color.FgGreen)
	ColorWarning = color.New(color.FgYellow)
	ColorHeader  = color.New(color.FgWhite, color.Bold, color.Underline)
	ColorHex     = color.New(color.FgMagenta)
	ColorName    = color.New(color.FgCyan)
)

var (
	settings = config.Default()
	logger   = logging.Discard()
	logFile  *os.File
)

// Loads the settings from viper and builds the logger. Called once by the root command
func Init(v *viper.Viper) error {
	loaded, err := config.Load(v)
	if err != nil {
		return err
	}

	options := logging.Options{
		Level:  loaded.Log.Level,
		Format: loaded.Log.Format,
	}

	if loaded.Log.File != "" {
		file, err := os.OpenFile(loaded.Log.File, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("opening log file: %w", err)
		}

		logFile = file
		options.File = file
	}

	built, err := logging.New(options)
	if err != nil {
		return err
	}

	settings = loaded
	logger = built
	slog.SetDefault(logger)

	return nil
}

// Flushes and closes the log file, if any
func Close() {
	if logFile != nil {
		logFile.Close()
		logFile = nil
	}
}

func Settings() config.Settings {
	return settings
}

func Logger() *slog.Logger {
	return logger
}

// Returns a context cancelled on interrupt
func Context() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

// Prints the error and exits with the given code
func Fatal(code int, format string, args ...any) {
	ColorError.Fprint(os.Stderr, "Error: ")
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	Close()
	os.Exit(code)
}

// Prints a success status line to stderr
func Success(format string, args ...any) {
	ColorSuccess.Fprintf(os.Stderr, format+"\n", args...)
}

// Opens the output file, or returns stdout when path is empty or "-"
func Output(path string) (io.WriteCloser, error) {
	if path == "" || path == "-" {
		return nopCloser{os.Stdout}, nil
	}

	return os.Create(path)
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error {
	return nil
}
