package pixel

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGrayscale(t *testing.T) {
	tests := []struct {
		name     string
		r, g, b  uint8
		gray     uint8
		expected Result
	}{
		{"red", 255, 0, 0, 63, 0x3F3F3F00},
		{"green", 0, 255, 0, 63, 0x3F3F3F00},
		{"blue", 0, 0, 255, 63, 0x3F3F3F00},
		{"white", 255, 255, 255, 191, 0xBFBFBF00},
		{"black", 0, 0, 0, 0, 0x00000000},
		{"mid gray", 128, 128, 128, 96, 0x60606000},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			word := Pack(test.r, test.g, test.b)

			assert.Equal(t, test.gray, word.Gray())
			assert.Equal(t, test.expected, word.Grayscale())
			assert.Equal(t, test.gray, word.Grayscale().Gray())
		})
	}
}

func TestGrayscale_IgnoresPad(t *testing.T) {
	assert.Equal(t, Result(0x60606000), Word(0x808080FF).Grayscale())
}

func TestPackUnpack(t *testing.T) {
	word := Pack(0x12, 0x34, 0x56)
	assert.Equal(t, Word(0x12345600), word)

	r, g, b := word.Unpack()
	assert.Equal(t, []uint8{0x12, 0x34, 0x56}, []uint8{r, g, b})
}

func TestStream_LittleEndian(t *testing.T) {
	data := EncodeStream([]uint32{0xFF000000, 0x04030201})

	assert.Equal(t, []byte{0x00, 0x00, 0x00, 0xFF, 0x01, 0x02, 0x03, 0x04}, data)
	assert.Equal(t, []uint32{0xFF000000, 0x04030201}, DecodeStream(data))
}

func TestDecodeStream_PadsTail(t *testing.T) {
	assert.Equal(t, []uint32{0x04030201, 0x00000605}, DecodeStream([]byte{1, 2, 3, 4, 5, 6}))
	assert.Empty(t, DecodeStream(nil))
}

func TestReadWriteStream(t *testing.T) {
	words := []uint32{0x3F3F3F00, 0xBFBFBF00, 0}

	var buffer bytes.Buffer
	require.NoError(t, WriteStream(&buffer, words))

	decoded, err := ReadStream(&buffer)
	require.NoError(t, err)
	assert.Equal(t, words, decoded)
}

func TestHex(t *testing.T) {
	var buffer bytes.Buffer
	require.NoError(t, WriteHex(&buffer, []uint32{0xFF000000, 0x3f3f3f00, 1}))

	assert.Equal(t, "FF000000\n3F3F3F00\n00000001\n", buffer.String())

	words, err := ReadHex(strings.NewReader(buffer.String()))
	require.NoError(t, err)
	assert.Equal(t, []uint32{0xFF000000, 0x3F3F3F00, 1}, words)
}

func TestReadHex_Lenient(t *testing.T) {
	words, err := ReadHex(strings.NewReader("\n0xdeadbeef\n  bfbfbf00  \n\n"))
	require.NoError(t, err)
	assert.Equal(t, []uint32{0xDEADBEEF, 0xBFBFBF00}, words)
}

func TestReadHex_Malformed(t *testing.T) {
	for _, input := range []string{"XYZ\n", "123456789\n", "0x\n"} {
		_, err := ReadHex(strings.NewReader(input))
		assert.ErrorIs(t, err, ErrMalformedHex, "input %q", input)
	}
}

func TestBinToHex(t *testing.T) {
	var hex bytes.Buffer

	count, err := BinToHex(bytes.NewReader([]byte{0x00, 0xFF, 0x00, 0xFF, 0xAA}), &hex)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.Equal(t, "FF00FF00\n000000AA\n", hex.String())

	var bin bytes.Buffer
	count, err = HexToBin(strings.NewReader(hex.String()), &bin)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.Equal(t, []byte{0x00, 0xFF, 0x00, 0xFF, 0xAA, 0x00, 0x00, 0x00}, bin.Bytes())
}
