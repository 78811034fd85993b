package utils

import (
	"fmt"
	"strconv"
	"strings"
)

// Formats an uint value into a fixed width binary string of n bits
func FormatUintBinary(value uint64, bits int) string {
	leadingZerosFormat := "%0" + fmt.Sprint(bits) + "s"
	return fmt.Sprintf(leadingZerosFormat, strconv.FormatUint(value, 2))
}

// Formats an uint value into an fixed width uppercase hex string of n digits, with 0x prefix
func FormatUintHex(value uint64, digits int) string {
	leadingZerosFormat := "0x%0" + fmt.Sprint(digits) + "s"
	return fmt.Sprintf(leadingZerosFormat, strings.ToUpper(strconv.FormatUint(value, 16)))
}

// Parses an unsigned integer written in decimal, 0x hex or 0b binary notation.
// Underscores are allowed as digit separators.
func ParseUint(text string, bits int) (uint64, error) {
	return strconv.ParseUint(strings.TrimSpace(text), 0, bits)
}
