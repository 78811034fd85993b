package mmio

import (
	"errors"
	"strings"

	"github.com/rs5lab/grayplug/pkg/hw/plugin/pixel"
	"github.com/rs5lab/grayplug/pkg/utils"
)

var ErrUnknownFunction = errors.New("unknown plugin function")

// The computation a plugin performs when triggered
type Function interface {
	// Name used in configuration files
	Name() string
	// Result latched into RESULT for the operands captured at trigger time
	Compute(input uint32, aux uint32) uint32
}

// Converts a pixel word into a result word. AUX is ignored
type Grayscale struct{}

func (Grayscale) Name() string {
	return "grayscale"
}

func (Grayscale) Compute(input uint32, _ uint32) uint32 {
	return uint32(pixel.Word(input).Grayscale())
}

// Adds INPUT and AUX, wrapping at 32 bits
type Adder struct{}

func (Adder) Name() string {
	return "adder"
}

func (Adder) Compute(input uint32, aux uint32) uint32 {
	return input + aux
}

var functions = map[string]Function{
	Grayscale{}.Name(): Grayscale{},
	Adder{}.Name():     Adder{},
}

// Returns the function with the given name. An empty name selects grayscale
func ParseFunction(name string) (Function, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return Grayscale{}, nil
	}

	if f, ok := functions[name]; ok {
		return f, nil
	}

	return nil, utils.MakeError(ErrUnknownFunction, "'%v'", name)
}
