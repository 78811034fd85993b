package imaging

import (
	"bytes"
	"errors"
	"os"
	"time"

	"github.com/rs5lab/grayplug/pkg/config"
	"github.com/rs5lab/grayplug/pkg/hw/plugin/pixel"
	"github.com/rs5lab/grayplug/pkg/utils"
	"gopkg.in/yaml.v3"
)

var ErrInvalidManifest = errors.New("invalid image manifest")

// Pixel layout recorded in manifests
const PixelFormat = "0xRRGGBB00"

// Number of pixels recorded as samples in a manifest
const ManifestSamples = 10

type Sample struct {
	Index int        `yaml:"index"`
	X     int        `yaml:"x"`
	Y     int        `yaml:"y"`
	Word  pixel.Word `yaml:"-"`
	Hex   string     `yaml:"word"`
	R     uint8      `yaml:"r"`
	G     uint8      `yaml:"g"`
	B     uint8      `yaml:"b"`
}

// Describes a converted image: where it came from, its dimensions and where its pixel
// stream is loaded in RAM
type Manifest struct {
	Source       string         `yaml:"source"`
	Format       string         `yaml:"format"`
	Width        int            `yaml:"width"`
	Height       int            `yaml:"height"`
	TotalPixels  int            `yaml:"total_pixels"`
	ImageAddress config.Address `yaml:"image_address"`
	CreatedAt    time.Time      `yaml:"created_at"`
	Samples      []Sample       `yaml:"samples,omitempty"`
}

// Builds the manifest of a converted image
func NewManifest(source string, width, height int, pixels []pixel.Word, imageAddress uint32) Manifest {
	manifest := Manifest{
		Source:       source,
		Format:       PixelFormat,
		Width:        width,
		Height:       height,
		TotalPixels:  width * height,
		ImageAddress: config.Address(imageAddress),
		CreatedAt:    time.Now().UTC().Truncate(time.Second),
	}

	for i := 0; i < len(pixels) && i < ManifestSamples && width > 0; i++ {
		r, g, b := pixels[i].Unpack()

		manifest.Samples = append(manifest.Samples, Sample{
			Index: i,
			X:     i % width,
			Y:     i / width,
			Word:  pixels[i],
			Hex:   pixels[i].String(),
			R:     r,
			G:     g,
			B:     b,
		})
	}

	return manifest
}

// Checks the dimensions agree with each other
func (m *Manifest) Validate() error {
	if m.Width <= 0 || m.Height <= 0 {
		return utils.MakeError(ErrInvalidManifest, "dimensions %vx%v", m.Width, m.Height)
	}

	if m.TotalPixels != m.Width*m.Height {
		return utils.MakeError(ErrInvalidManifest, "total_pixels %v does not match %vx%v", m.TotalPixels, m.Width, m.Height)
	}

	return nil
}

// Writes the manifest as YAML into path
func (m *Manifest) Save(path string) error {
	buffer := bytes.Buffer{}

	encoder := yaml.NewEncoder(&buffer)
	encoder.SetIndent(2)

	if err := encoder.Encode(m); err != nil {
		return utils.MakeError(ErrInvalidManifest, "%v", err)
	}

	if err := encoder.Close(); err != nil {
		return err
	}

	return os.WriteFile(path, buffer.Bytes(), 0o644)
}

// Reads and validates a YAML manifest
func LoadManifest(path string) (Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Manifest{}, err
	}

	var manifest Manifest
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return Manifest{}, utils.MakeError(ErrInvalidManifest, "%v: %v", path, err)
	}

	for i := range manifest.Samples {
		word, err := utils.ParseUint(manifest.Samples[i].Hex, 32)
		if err != nil {
			return Manifest{}, utils.MakeError(ErrInvalidManifest, "sample %v: %v", i, err)
		}
		manifest.Samples[i].Word = pixel.Word(word)
	}

	if err := manifest.Validate(); err != nil {
		return Manifest{}, utils.MakeError(err, "%v", path)
	}

	return manifest, nil
}
