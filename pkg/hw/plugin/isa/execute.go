package isa

import "github.com/rs5lab/grayplug/pkg/utils"

// Constant added by the plugin datapath to every ADD_PLUGIN sum
const AccumulateBias uint32 = 5

// Returns the value the plugin writes into rd when executing an instruction of the given
// kind with the given source register values. Arithmetic wraps at 32 bits
func Execute(kind Kind, rs1, rs2 uint32) (uint32, error) {
	switch kind {
	case Kind_PixelAccumulate:
		return rs1 + rs2 + AccumulateBias, nil
	case Kind_SequenceGenerator:
		return fibonacci(rs1), nil
	}

	return 0, utils.MakeError(ErrUnknownEncoding, "cannot execute %v", kind)
}

func fibonacci(n uint32) uint32 {
	var previous, current uint32 = 0, 1

	if n == 0 {
		return 0
	}

	for steps := n - 1; steps > 0; steps-- {
		previous, current = current, previous+current
	}

	return current
}
