package isa

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs5lab/grayplug/pkg/utils"
)

var ErrInvalidRegister = errors.New("invalid register")

// ABI names of the integer registers, indexed by register number
var abiNames = [MaxRegister + 1]string{
	"zero", "ra", "sp", "gp", "tp", "t0", "t1", "t2",
	"s0", "s1", "a0", "a1", "a2", "a3", "a4", "a5",
	"a6", "a7", "s2", "s3", "s4", "s5", "s6", "s7",
	"s8", "s9", "s10", "s11", "t3", "t4", "t5", "t6",
}

var abiIndices = func() map[string]uint32 {
	indices := make(map[string]uint32, len(abiNames)+1)
	for i, name := range abiNames {
		indices[name] = uint32(i)
	}
	indices["fp"] = 8
	return indices
}()

// Returns the architectural name (x0..x31) of a register index
func RegisterName(index uint32) string {
	return fmt.Sprintf("x%d", index)
}

// Returns the ABI name of a register index, or the architectural name if out of range
func ABIName(index uint32) string {
	if index <= MaxRegister {
		return abiNames[index]
	}

	return RegisterName(index)
}

// Parses a register given its architectural name (x5), ABI name (t0) or plain index (5).
// Indices above MaxRegister are returned as ErrOutOfRange so callers can tell them apart
// from malformed names
func ParseRegister(name string) (uint32, error) {
	name = strings.ToLower(strings.TrimSpace(name))

	if index, isABI := abiIndices[name]; isABI {
		return index, nil
	}

	digits := strings.TrimPrefix(name, "x")

	index, err := strconv.ParseUint(digits, 10, 32)
	if err != nil {
		return 0, utils.MakeError(ErrInvalidRegister, "'%v'", name)
	}

	if index > MaxRegister {
		return 0, utils.MakeError(ErrOutOfRange, "register '%v' exceeds x%v", name, MaxRegister)
	}

	return uint32(index), nil
}
