// Package imaging converts images to and from the pixel streams processed by the plugin.
package imaging

import (
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"slices"
	"strings"

	_ "image/gif"
	_ "image/jpeg"

	"github.com/rs5lab/grayplug/pkg/hw/plugin/pixel"
	"github.com/rs5lab/grayplug/pkg/utils"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
)

var (
	ErrUnsupportedImage = errors.New("unsupported image")
	ErrInvalidSize      = errors.New("invalid image size")
)

// File extensions Load can decode
var SupportedExtensions = []string{".bmp", ".gif", ".jpeg", ".jpg", ".png", ".tif", ".tiff"}

// Returns true if the file extension is one of SupportedExtensions
func IsSupported(path string) bool {
	return slices.Contains(SupportedExtensions, strings.ToLower(filepath.Ext(path)))
}

// Returns the sorted paths of the supported images found in dir, not recursing
func List(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var paths []string
	for _, entry := range entries {
		if !entry.IsDir() && IsSupported(entry.Name()) {
			paths = append(paths, filepath.Join(dir, entry.Name()))
		}
	}

	slices.Sort(paths)
	return paths, nil
}

// Decodes an image file. Returns the image and the name of its format
func Load(path string) (image.Image, string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, "", err
	}
	defer file.Close()

	img, format, err := image.Decode(file)
	if err != nil {
		return nil, "", utils.MakeError(ErrUnsupportedImage, "%v: %v", path, err)
	}

	return img, format, nil
}

// Returns the size of a width x height image scaled down to fit in maxWidth x maxHeight,
// keeping its aspect ratio. A zero bound does not limit that dimension. Images are
// never scaled up
func FitSize(width, height, maxWidth, maxHeight int) (int, int) {
	scale := 1.0

	if maxWidth > 0 && width > maxWidth {
		scale = min(scale, float64(maxWidth)/float64(width))
	}

	if maxHeight > 0 && height > maxHeight {
		scale = min(scale, float64(maxHeight)/float64(height))
	}

	if scale == 1.0 {
		return width, height
	}

	return max(1, int(float64(width)*scale+0.5)), max(1, int(float64(height)*scale+0.5))
}

// Scales the image down to fit in maxWidth x maxHeight with Catmull-Rom resampling.
// The image is returned as is when it already fits
func Resize(img image.Image, maxWidth, maxHeight int) image.Image {
	bounds := img.Bounds()
	width, height := FitSize(bounds.Dx(), bounds.Dy(), maxWidth, maxHeight)

	if width == bounds.Dx() && height == bounds.Dy() {
		return img
	}

	resized := image.NewNRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(resized, resized.Bounds(), img, bounds, draw.Src, nil)
	return resized
}

// Returns the pixel words of the image in row-major order. Alpha is dropped
func ToPixelWords(img image.Image) []pixel.Word {
	bounds := img.Bounds()
	words := make([]pixel.Word, 0, bounds.Dx()*bounds.Dy())

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			c := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			words = append(words, pixel.Pack(c.R, c.G, c.B))
		}
	}

	return words
}

// Builds a width x height grayscale image from result words in row-major order. Missing
// results are left black and extra ones are ignored
func FromResultWords(results []pixel.Result, width, height int) (*image.Gray, error) {
	if width <= 0 || height <= 0 {
		return nil, utils.MakeError(ErrInvalidSize, "%vx%v", width, height)
	}

	img := image.NewGray(image.Rect(0, 0, width, height))

	for i := 0; i < len(results) && i < width*height; i++ {
		img.Pix[(i/width)*img.Stride+i%width] = results[i].Gray()
	}

	return img, nil
}

// Encodes the image as PNG into path
func SavePNG(path string, img image.Image) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}

	if err := png.Encode(file, img); err != nil {
		file.Close()
		return utils.MakeError(err, "encoding %v", path)
	}

	return file.Close()
}
