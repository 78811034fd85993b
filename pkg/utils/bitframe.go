package utils

import (
	"fmt"
	"strings"
)

// A contiguous range of bits within a frame, drawn as one column
type BitFrameField struct {
	// Name of the field, shown in the first row
	Name string
	// Field contents, shown in the second row
	Value string
	// Least significant bit of the field
	Begin int
	// Field width in bits
	Width int
}

// Most significant bit of the field
func (f *BitFrameField) TopBit() int {
	return f.Begin + f.Width - 1
}

func (f *BitFrameField) indexLabel(columnWidth int) string {
	top := fmt.Sprint(f.TopBit())
	if f.Width == 1 {
		return top + strings.Repeat(" ", columnWidth+1-len(top))
	}

	bottom := fmt.Sprint(f.Begin)
	return top + strings.Repeat(" ", columnWidth-len(top)-len(bottom)) + bottom + " "
}

func centered(text string, width int) string {
	left := (width - len(text)) / 2
	right := width - len(text) - left
	return strings.Repeat(" ", left) + text + strings.Repeat(" ", right)
}

// Draws an ascii diagram of a binary frame. Fields are given most significant first,
// each column is labeled with its top and bottom bit indices:
//
//	11    7 6       0
//	+-------+---------+
//	|  rd   | opcode  |
//	| 00011 | 0001011 |
//	+-------+---------+
func BitFrame(fields []BitFrameField, leftpad int) string {
	pad := strings.Repeat(" ", leftpad)

	var indices, border, names, values strings.Builder

	for i := range fields {
		field := &fields[i]
		width := max(len(field.Name), len(field.Value), len(fmt.Sprint(field.TopBit()))+len(fmt.Sprint(field.Begin))+1) + 2

		indices.WriteString(field.indexLabel(width))
		border.WriteString("+" + strings.Repeat("-", width))
		names.WriteString("|" + centered(field.Name, width))
		values.WriteString("|" + centered(field.Value, width))
	}

	border.WriteString("+")
	names.WriteString("|")
	values.WriteString("|")

	var result strings.Builder
	for _, row := range []string{indices.String(), border.String(), names.String(), values.String(), border.String()} {
		result.WriteString(pad)
		result.WriteString(strings.TrimRight(row, " "))
		result.WriteString("\n")
	}

	return result.String()
}
