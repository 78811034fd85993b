package pixel

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/rs5lab/grayplug/pkg/utils"
)

var ErrMalformedHex = errors.New("malformed hex word")

// Bytes per word in the pixel stream
const WordSize = 4

// Decodes a little endian word stream. A trailing partial word is zero padded
func DecodeStream(data []byte) []uint32 {
	words := make([]uint32, 0, (len(data)+WordSize-1)/WordSize)

	for offset := 0; offset < len(data); offset += WordSize {
		var chunk [WordSize]byte
		copy(chunk[:], data[offset:])
		words = append(words, binary.LittleEndian.Uint32(chunk[:]))
	}

	return words
}

// Encodes words as a little endian stream
func EncodeStream(words []uint32) []byte {
	data := make([]byte, 0, len(words)*WordSize)

	for _, word := range words {
		data = binary.LittleEndian.AppendUint32(data, word)
	}

	return data
}

// Reads a whole little endian word stream
func ReadStream(r io.Reader) ([]uint32, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	return DecodeStream(data), nil
}

// Writes words as a little endian stream
func WriteStream(w io.Writer, words []uint32) error {
	_, err := w.Write(EncodeStream(words))
	return err
}

// Writes one uppercase 8 digit hex word per line
func WriteHex(w io.Writer, words []uint32) error {
	buffered := bufio.NewWriter(w)

	for _, word := range words {
		if _, err := fmt.Fprintf(buffered, "%08X\n", word); err != nil {
			return err
		}
	}

	return buffered.Flush()
}

// Reads one hex word per line. Blank lines are skipped, an optional 0x prefix and
// lowercase digits are accepted
func ReadHex(r io.Reader) ([]uint32, error) {
	var words []uint32

	scanner := bufio.NewScanner(r)
	line := 0

	for scanner.Scan() {
		line++

		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}

		digits := strings.TrimPrefix(strings.TrimPrefix(text, "0x"), "0X")
		if len(digits) == 0 || len(digits) > 8 {
			return nil, utils.MakeError(ErrMalformedHex, "line %v: '%v'", line, text)
		}

		word, err := strconv.ParseUint(digits, 16, 32)
		if err != nil {
			return nil, utils.MakeError(ErrMalformedHex, "line %v: %w", line, err)
		}

		words = append(words, uint32(word))
	}

	return words, scanner.Err()
}

// Transcodes a little endian word stream into hex text lines
func BinToHex(r io.Reader, w io.Writer) (int, error) {
	words, err := ReadStream(r)
	if err != nil {
		return 0, err
	}

	return len(words), WriteHex(w, words)
}

// Transcodes hex text lines into a little endian word stream
func HexToBin(r io.Reader, w io.Writer) (int, error) {
	words, err := ReadHex(r)
	if err != nil {
		return 0, err
	}

	return len(words), WriteStream(w, words)
}

// Converts pixel words into raw words
func PixelsToWords(pixels []Word) []uint32 {
	words := make([]uint32, len(pixels))
	for i, p := range pixels {
		words[i] = uint32(p)
	}
	return words
}

// Converts raw words into pixel words
func WordsToPixels(words []uint32) []Word {
	pixels := make([]Word, len(words))
	for i, w := range words {
		pixels[i] = Word(w)
	}
	return pixels
}
