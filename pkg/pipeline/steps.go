package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs5lab/grayplug/pkg/codegen"
	"github.com/rs5lab/grayplug/pkg/hw/plugin/mmio"
	"github.com/rs5lab/grayplug/pkg/hw/plugin/pixel"
	"github.com/rs5lab/grayplug/pkg/imaging"
	"github.com/rs5lab/grayplug/pkg/utils"
	"gopkg.in/yaml.v3"
)

type Step struct {
	Name        string
	Description string
	// Artifact present once the step ran
	Output string
	Run    func(ctx context.Context, w *Workspace) error
}

// Returns the experiment steps in execution order
func Steps() []Step {
	return []Step{
		{Name: "select", Description: "Pick the image to process", Output: SelectionFile, Run: Select},
		{Name: "convert", Description: "Convert the image into a little endian pixel stream", Output: ManifestFile, Run: Convert},
		{Name: "generate", Description: "Generate the C program driving the plugin", Output: ProgramFile, Run: GenerateProgram},
		{Name: "hex", Description: "Transcode the pixel stream into the simulator hex format", Output: PixelsHexFile, Run: PrepareHex},
		{Name: "run", Description: "Process the pixel stream through the plugin model", Output: ResultsBinFile, Run: Run},
		{Name: "reconstruct", Description: "Rebuild the grayscale image from the results", Output: OutputFile, Run: Reconstruct},
	}
}

// Returns the step with the given name
func FindStep(name string) (Step, bool) {
	for _, step := range Steps() {
		if step.Name == name {
			return step, true
		}
	}

	return Step{}, false
}

// Runs a single step, logging its outcome
func RunStep(ctx context.Context, w *Workspace, step Step) error {
	logger := w.Logger().With("step", step.Name)
	logger.Info("running step", "description", step.Description)

	start := time.Now()
	if err := step.Run(ctx, w); err != nil {
		logger.Error("step failed", "error", err)
		return utils.MakeError(err, "step '%v'", step.Name)
	}

	logger.Info("step completed", "elapsed", time.Since(start))
	return nil
}

// Runs the steps in order, stopping at the first failure
func RunAll(ctx context.Context, w *Workspace, steps []Step) error {
	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return err
		}

		if err := RunStep(ctx, w, step); err != nil {
			return err
		}
	}

	return nil
}

func Select(_ context.Context, w *Workspace) error {
	source := w.Options.Source

	if source == "" {
		if w.Options.InputDir == "" {
			return utils.MakeError(ErrNoImage, "neither an image nor an input directory was given")
		}

		images, err := imaging.List(w.Options.InputDir)
		if err != nil {
			return err
		}

		if len(images) == 0 {
			return utils.MakeError(ErrNoImage, "no supported images in %v", w.Options.InputDir)
		}

		index := max(w.Options.Selection, 1)
		if index > len(images) {
			return utils.MakeError(ErrNoImage, "selection %v out of the %v images in %v", index, len(images), w.Options.InputDir)
		}

		source = images[index-1]
	}

	if !imaging.IsSupported(source) {
		return utils.MakeError(imaging.ErrUnsupportedImage, "%v", source)
	}

	if _, err := os.Stat(source); err != nil {
		return err
	}

	absolute, err := filepath.Abs(source)
	if err != nil {
		return err
	}

	w.Logger().Info("image selected", "source", absolute)
	return os.WriteFile(w.Path(SelectionFile), []byte(absolute+"\n"), 0o644)
}

func Convert(_ context.Context, w *Workspace) error {
	source, err := w.Selection()
	if err != nil {
		return err
	}

	img, format, err := imaging.Load(source)
	if err != nil {
		return err
	}

	original := img.Bounds()
	img = imaging.Resize(img, w.Options.MaxWidth, w.Options.MaxHeight)
	bounds := img.Bounds()

	w.Logger().Info("image loaded",
		"format", format,
		"original", fmt.Sprintf("%vx%v", original.Dx(), original.Dy()),
		"converted", fmt.Sprintf("%vx%v", bounds.Dx(), bounds.Dy()))

	pixels := imaging.ToPixelWords(img)

	stream := bytes.Buffer{}
	if err := pixel.WriteStream(&stream, pixel.PixelsToWords(pixels)); err != nil {
		return err
	}

	if err := os.WriteFile(w.Path(PixelsBinFile), stream.Bytes(), 0o644); err != nil {
		return err
	}

	if err := imaging.SavePNG(w.Path(InputFile), img); err != nil {
		return err
	}

	manifest := imaging.NewManifest(source, bounds.Dx(), bounds.Dy(), pixels, uint32(w.Options.Settings.Memory.ImageAddress))
	return manifest.Save(w.Path(ManifestFile))
}

func GenerateProgram(_ context.Context, w *Workspace) error {
	if err := w.require("generate", ManifestFile); err != nil {
		return err
	}

	manifest, err := imaging.LoadManifest(w.Path(ManifestFile))
	if err != nil {
		return err
	}

	registers, err := w.Registers()
	if err != nil {
		return err
	}

	generator, err := codegen.NewGenerator()
	if err != nil {
		return err
	}

	settings := w.Options.Settings
	params := codegen.ImageParams{
		Target: codegen.Target{
			Registers:   registers,
			UARTAddress: uint32(settings.Memory.UARTAddress),
			SpinCycles:  settings.Driver.SpinCycles,
			PollLimit:   settings.Driver.PollLimit,
		},
		Source:        filepath.Base(manifest.Source),
		Width:         manifest.Width,
		Height:        manifest.Height,
		ImageAddress:  uint32(manifest.ImageAddress),
		ResultAddress: w.ResultAddress(uint32(manifest.ImageAddress), manifest.TotalPixels),
	}

	w.Logger().Info("generating program", "path", w.Path(ProgramFile), "result_address", utils.FormatUintHex(uint64(params.ResultAddress), 8))

	return generator.GenerateFile(w.Path(ProgramFile), func(out io.Writer) error {
		return generator.Image(out, params)
	})
}

func PrepareHex(_ context.Context, w *Workspace) error {
	if err := w.require("hex", PixelsBinFile); err != nil {
		return err
	}

	return transcode(w.Path(PixelsBinFile), w.Path(PixelsHexFile), pixel.BinToHex)
}

func transcode(from, to string, convert func(io.Reader, io.Writer) (int, error)) error {
	in, err := os.Open(from)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(to)
	if err != nil {
		return err
	}

	if _, err := convert(in, out); err != nil {
		out.Close()
		return utils.MakeError(err, "%v", from)
	}

	return out.Close()
}

func Run(ctx context.Context, w *Workspace) error {
	if err := w.require("run", ManifestFile, PixelsHexFile); err != nil {
		return err
	}

	manifest, err := imaging.LoadManifest(w.Path(ManifestFile))
	if err != nil {
		return err
	}

	hex, err := os.Open(w.Path(PixelsHexFile))
	if err != nil {
		return err
	}
	defer hex.Close()

	words, err := pixel.ReadHex(hex)
	if err != nil {
		return utils.MakeError(err, "%v", PixelsHexFile)
	}

	if len(words) != manifest.TotalPixels {
		return utils.MakeError(ErrInconsistentArtifact, "%v holds %v pixels, %v expects %v", PixelsHexFile, len(words), ManifestFile, manifest.TotalPixels)
	}

	settings := w.Options.Settings

	plugin, err := settings.PluginConfig()
	if err != nil {
		return err
	}

	imageAddress := uint32(manifest.ImageAddress)
	resultAddress := w.ResultAddress(imageAddress, len(words))

	system, err := mmio.NewSystem(mmio.SystemConfig{
		BaseAddress: uint32(settings.Plugin.BaseAddress),
		RAMSize:     mmio.RequiredRAM(imageAddress, resultAddress, len(words)),
		Plugin:      plugin,
		SpinCycles:  settings.Driver.SpinCycles,
		PollLimit:   settings.Driver.PollLimit,
		Logger:      w.Logger(),
	})
	if err != nil {
		return err
	}

	w.Logger().Info("running plugin", "pixels", len(words), "function", plugin.Function.Name(), "memory_map", system.Bus.Windows())

	results, err := system.RunImage(ctx, words, imageAddress, resultAddress)
	if err != nil {
		return err
	}

	pluginStats, driverStats := system.Plugin.Stats(), system.Driver.Stats()
	w.Logger().Info("plugin run completed",
		"triggers", pluginStats.Triggers,
		"violations", pluginStats.Violations,
		"spins", driverStats.Spins,
		"polls", driverStats.Polls)

	binary := bytes.Buffer{}
	if err := pixel.WriteStream(&binary, results); err != nil {
		return err
	}

	if err := os.WriteFile(w.Path(ResultsBinFile), binary.Bytes(), 0o644); err != nil {
		return err
	}

	return transcode(w.Path(ResultsBinFile), w.Path(ResultsHexFile), pixel.BinToHex)
}

func Reconstruct(_ context.Context, w *Workspace) error {
	if err := w.require("reconstruct", ManifestFile, ResultsBinFile); err != nil {
		return err
	}

	manifest, err := imaging.LoadManifest(w.Path(ManifestFile))
	if err != nil {
		return err
	}

	stream, err := os.Open(w.Path(ResultsBinFile))
	if err != nil {
		return err
	}
	defer stream.Close()

	words, err := pixel.ReadStream(stream)
	if err != nil {
		return err
	}

	if len(words) < manifest.TotalPixels {
		w.Logger().Warn("results stream is short, padding with black", "results", len(words), "expected", manifest.TotalPixels)
	}

	results := make([]pixel.Result, len(words))
	for i, word := range words {
		results[i] = pixel.Result(word)
	}

	img, err := imaging.FromResultWords(results, manifest.Width, manifest.Height)
	if err != nil {
		return err
	}

	if err := imaging.SavePNG(w.Path(OutputFile), img); err != nil {
		return err
	}

	stats := imaging.ComputeStats(img)
	w.Logger().Info("image reconstructed", "path", w.Path(OutputFile), "stats", stats.String())

	data, err := yaml.Marshal(&stats)
	if err != nil {
		return err
	}

	return os.WriteFile(w.Path(StatsFile), data, 0o644)
}

// Reads the statistics written by the reconstruct step
func LoadStats(w *Workspace) (imaging.Stats, error) {
	if err := w.require("stats", StatsFile); err != nil {
		return imaging.Stats{}, err
	}

	data, err := os.ReadFile(w.Path(StatsFile))
	if err != nil {
		return imaging.Stats{}, err
	}

	var stats imaging.Stats
	if err := yaml.Unmarshal(data, &stats); err != nil {
		return imaging.Stats{}, utils.MakeError(ErrInconsistentArtifact, "%v: %v", StatsFile, err)
	}

	return stats, nil
}
