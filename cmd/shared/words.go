package shared

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/rs5lab/grayplug/pkg/hw/plugin/pixel"
)

// Returns true if the file holds hex text words rather than a little endian stream
func IsHexFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".hex", ".txt":
		return true
	}

	return false
}

// Reads a word file, hex text or little endian stream depending on its extension
func ReadWords(path string) ([]uint32, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	if IsHexFile(path) {
		return pixel.ReadHex(file)
	}

	return pixel.ReadStream(file)
}

// Writes a word file, hex text or little endian stream depending on its extension
func WriteWords(path string, words []uint32) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}

	if IsHexFile(path) {
		err = pixel.WriteHex(file, words)
	} else {
		err = pixel.WriteStream(file, words)
	}

	if err != nil {
		file.Close()
		return err
	}

	return file.Close()
}
