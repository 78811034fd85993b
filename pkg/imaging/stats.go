package imaging

import (
	"fmt"
	"image"
	"math"
)

// Intensity statistics of a grayscale image
type Stats struct {
	Pixels int     `yaml:"pixels"`
	Min    uint8   `yaml:"min"`
	Max    uint8   `yaml:"max"`
	Mean   float64 `yaml:"mean"`
	// Population standard deviation
	StdDev float64 `yaml:"stddev"`
}

func (s Stats) String() string {
	return fmt.Sprintf("min=%v max=%v mean=%.2f stddev=%.2f (%v pixels)", s.Min, s.Max, s.Mean, s.StdDev, s.Pixels)
}

// Computes the intensity statistics of the image. An empty image has zero stats
func ComputeStats(img *image.Gray) Stats {
	bounds := img.Bounds()
	stats := Stats{Pixels: bounds.Dx() * bounds.Dy(), Min: math.MaxUint8}

	if stats.Pixels == 0 {
		return Stats{}
	}

	var sum, sumSquares float64

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			value := img.GrayAt(x, y).Y

			stats.Min = min(stats.Min, value)
			stats.Max = max(stats.Max, value)
			sum += float64(value)
			sumSquares += float64(value) * float64(value)
		}
	}

	n := float64(stats.Pixels)
	stats.Mean = sum / n
	stats.StdDev = math.Sqrt(max(sumSquares/n-stats.Mean*stats.Mean, 0))

	return stats
}
