// Package pipeline runs the image conversion experiment step by step inside a workspace
// directory, each step consuming the artifacts the previous ones left there.
package pipeline

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs5lab/grayplug/pkg/config"
	"github.com/rs5lab/grayplug/pkg/hw/plugin/mmio"
	"github.com/rs5lab/grayplug/pkg/logging"
	"github.com/rs5lab/grayplug/pkg/utils"
)

var (
	ErrMissingArtifact      = errors.New("missing artifact")
	ErrInconsistentArtifact = errors.New("inconsistent artifact")
	ErrNoImage              = errors.New("no image selected")
)

// Artifacts stored in a workspace
const (
	SelectionFile  = "source.txt"
	ManifestFile   = "image.yaml"
	InputFile      = "input.png"
	PixelsBinFile  = "pixels.bin"
	PixelsHexFile  = "pixels.hex"
	ProgramFile    = "program.c"
	ResultsBinFile = "results.bin"
	ResultsHexFile = "results.hex"
	OutputFile     = "output.png"
	StatsFile      = "stats.yaml"
)

type Options struct {
	// Directory the select step picks images from
	InputDir string
	// Image to convert. Takes precedence over InputDir
	Source string
	// 1-based index of the image picked from InputDir. Zero picks the first one
	Selection int
	// Bounds the converted image is scaled down to fit in. Zero means unbounded
	MaxWidth  int
	MaxHeight int
	Settings  config.Settings
	Logger    *slog.Logger
}

// A directory holding the artifacts of one experiment
type Workspace struct {
	Dir     string
	Options Options
	logger  *slog.Logger
}

func NewWorkspace(dir string, options Options) (*Workspace, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	logger := options.Logger
	if logger == nil {
		logger = logging.Discard()
	}

	return &Workspace{
		Dir:     dir,
		Options: options,
		logger:  logger.With("workspace", dir),
	}, nil
}

func (w *Workspace) Logger() *slog.Logger {
	return w.logger
}

// Returns the path of an artifact
func (w *Workspace) Path(artifact string) string {
	return filepath.Join(w.Dir, artifact)
}

// Returns true if the artifact exists
func (w *Workspace) Has(artifact string) bool {
	_, err := os.Stat(w.Path(artifact))
	return err == nil
}

func (w *Workspace) require(step string, artifacts ...string) error {
	for _, artifact := range artifacts {
		if !w.Has(artifact) {
			return utils.MakeError(ErrMissingArtifact, "step '%v' needs %v, run the previous steps first", step, artifact)
		}
	}

	return nil
}

// Returns the image recorded by the select step
func (w *Workspace) Selection() (string, error) {
	data, err := os.ReadFile(w.Path(SelectionFile))
	if errors.Is(err, os.ErrNotExist) {
		return "", utils.MakeError(ErrMissingArtifact, "%v", SelectionFile)
	} else if err != nil {
		return "", err
	}

	return strings.TrimSpace(string(data)), nil
}

// Returns the RAM address results are stored at for an image of count pixels loaded at
// imageAddress
func (w *Workspace) ResultAddress(imageAddress uint32, count int) uint32 {
	if address := w.Options.Settings.Memory.ResultAddress; address != 0 {
		return uint32(address)
	}

	return mmio.ResultAddressAfter(imageAddress, count)
}

// Returns the register map of the configured plugin
func (w *Workspace) Registers() (mmio.RegisterMap, error) {
	return mmio.NewRegisterMap(uint32(w.Options.Settings.Plugin.BaseAddress))
}
