package utils

import (
	"regexp"
	"strings"

	"github.com/fatih/color"
)

// C syntax highlighting colors
var (
	cKeywordColor      = color.New(color.FgMagenta, color.Bold)
	cTypeColor         = color.New(color.FgCyan)
	cStringColor       = color.New(color.FgGreen)
	cNumberColor       = color.New(color.FgYellow)
	cCommentColor      = color.New(color.FgHiBlack)
	cPreprocessorColor = color.New(color.FgBlue)
	cFunctionColor     = color.New(color.FgHiYellow)
)

var cKeywords = map[string]bool{
	"asm": true, "__asm__": true, "break": true, "case": true, "const": true,
	"continue": true, "default": true, "do": true, "else": true, "for": true,
	"if": true, "inline": true, "return": true, "sizeof": true, "static": true,
	"struct": true, "switch": true, "typedef": true, "volatile": true, "while": true,
}

var cTypes = map[string]bool{
	"void": true, "char": true, "short": true, "int": true, "long": true,
	"signed": true, "unsigned": true, "uint8_t": true, "uint32_t": true, "int32_t": true,
}

// One alternative per token class, tried left to right. Block comments are matched
// only when they open and close on the same line.
var cTokenPattern = regexp.MustCompile(`(?P<comment>//.*$|/\*.*?\*/)` +
	`|(?P<string>"(?:[^"\\]|\\.)*"|'(?:[^'\\]|\\.)*')` +
	`|(?P<number>\b(?:0[xX][0-9a-fA-F]+|[0-9]+)[uUlL]*\b)` +
	`|(?P<call>\b[a-zA-Z_][a-zA-Z0-9_]*\s*\()` +
	`|(?P<ident>\b[a-zA-Z_][a-zA-Z0-9_]*\b)`)

var cPreprocessorPattern = regexp.MustCompile(`^\s*#\s*\w+`)

func highlightCToken(kind, text string) string {
	switch kind {
	case "comment":
		return cCommentColor.Sprint(text)
	case "string":
		return cStringColor.Sprint(text)
	case "number":
		return cNumberColor.Sprint(text)
	case "call":
		name := strings.TrimRight(text[:len(text)-1], " \t")
		rest := text[len(name):]
		if cKeywords[name] {
			return cKeywordColor.Sprint(name) + rest
		}
		return cFunctionColor.Sprint(name) + rest
	case "ident":
		if cKeywords[text] {
			return cKeywordColor.Sprint(text)
		}
		if cTypes[text] {
			return cTypeColor.Sprint(text)
		}
	}

	return text
}

func highlightCLine(line string) string {
	var result strings.Builder
	pos := 0

	if loc := cPreprocessorPattern.FindStringIndex(line); loc != nil {
		result.WriteString(cPreprocessorColor.Sprint(line[:loc[1]]))
		pos = loc[1]
	}

	names := cTokenPattern.SubexpNames()

	// Match offsets are relative to base, where the token scan starts
	base := pos

	for _, match := range cTokenPattern.FindAllStringSubmatchIndex(line[base:], -1) {
		result.WriteString(line[pos : base+match[0]])

		for group := 1; group < len(names); group++ {
			if match[2*group] >= 0 {
				result.WriteString(highlightCToken(names[group], line[base+match[2*group]:base+match[2*group+1]]))
				break
			}
		}

		pos = base + match[1]
	}

	result.WriteString(line[pos:])
	return result.String()
}

// HighlightCCode applies syntax highlighting to C source code and returns the colored string.
// Colors are not emitted when color.NoColor is set, in which case the code is returned unchanged.
func HighlightCCode(code string) string {
	lines := strings.Split(code, "\n")

	for i, line := range lines {
		lines[i] = highlightCLine(line)
	}

	return strings.Join(lines, "\n")
}
