// Package pixel implements the data formats exchanged with the plugin: pixel and result
// words, the little endian pixel stream and its hex text transcoding.
package pixel

import "fmt"

// A pixel packed as R[31:24] | G[23:16] | B[15:8] | pad[7:0]
type Word uint32

// A grayscale result packed as gray[31:24] | gray[23:16] | gray[15:8] | 0x00
type Result uint32

// Packs the color channels into a pixel word. The pad byte is always zero
func Pack(r, g, b uint8) Word {
	return Word(uint32(r)<<24 | uint32(g)<<16 | uint32(b)<<8)
}

// Returns the color channels of the pixel word, ignoring the pad byte
func (w Word) Unpack() (r, g, b uint8) {
	return uint8(w >> 24), uint8(w >> 16), uint8(w >> 8)
}

// Returns the grayscale level computed by the plugin: (R + G + B) >> 2.
// This truncates and is not an average, white maps to 191
func (w Word) Gray() uint8 {
	r, g, b := w.Unpack()
	return uint8((uint32(r) + uint32(g) + uint32(b)) >> 2)
}

// Returns the result word the plugin produces for this pixel
func (w Word) Grayscale() Result {
	return MakeResult(w.Gray())
}

// Broadcasts a grayscale level into the three upper bytes of a result word
func MakeResult(gray uint8) Result {
	g := uint32(gray)
	return Result(g<<24 | g<<16 | g<<8)
}

// Returns the grayscale level stored in the result word
func (r Result) Gray() uint8 {
	return uint8(r >> 24)
}

func (w Word) String() string {
	return fmt.Sprintf("0x%08X", uint32(w))
}

func (r Result) String() string {
	return fmt.Sprintf("0x%08X", uint32(r))
}
