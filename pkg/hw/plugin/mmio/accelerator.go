package mmio

import (
	"fmt"
	"log/slog"

	"github.com/rs5lab/grayplug/pkg/logging"
	"github.com/rs5lab/grayplug/pkg/utils"
)

// Handshake state of the plugin
type State uint

const (
	// No operation pending, RESULT does not hold a fresh value
	State_Idle State = iota
	// Operation in progress, waiting for the settle delay
	State_Triggered
	// RESULT holds the output of the most recent trigger
	State_Ready
)

func (s State) String() string {
	switch s {
	case State_Idle:
		return "idle"
	case State_Triggered:
		return "triggered"
	case State_Ready:
		return "ready"
	}

	return fmt.Sprintf("State(%d)", uint(s))
}

// Settle delay used when none is configured, matching the spin loop of the generated program
const DefaultSettleCycles = 10

type Config struct {
	// Clock ticks between a trigger and the result becoming valid. Zero completes the
	// operation at trigger time
	SettleCycles int
	// When set, reading RESULT before it is ready fails with ErrNotReady instead of
	// returning stale contents
	Strict bool
	// Computation performed on trigger. Defaults to Grayscale
	Function Function
	// Logger receiving state transitions (debug) and protocol violations (warn).
	// Defaults to a discarding logger
	Logger *slog.Logger
}

// Counters of the plugin activity
type Stats struct {
	Triggers   int
	Completed  int
	Violations int
}

// A memory mapped plugin. Offsets are relative to the plugin base address, so the
// plugin can be mapped at any base with memory.MappedBus.
//
// The plugin is not safe for concurrent use: the protocol assumes a single master
// issuing one operation at a time
type Accelerator struct {
	config Config
	logger *slog.Logger

	state   State
	input   uint32
	aux     uint32
	result  uint32
	elapsed int

	// operands captured on trigger
	capturedInput uint32
	capturedAux   uint32

	stats Stats
}

func NewAccelerator(config Config) *Accelerator {
	if config.Function == nil {
		config.Function = Grayscale{}
	}

	if config.SettleCycles < 0 {
		config.SettleCycles = 0
	}

	logger := config.Logger
	if logger == nil {
		logger = logging.Discard()
	}

	return &Accelerator{
		config: config,
		logger: logger.With("component", "plugin", "function", config.Function.Name()),
	}
}

// Current handshake state
func (a *Accelerator) State() State {
	return a.state
}

// True if RESULT holds the output of the most recent trigger
func (a *Accelerator) Fresh() bool {
	return a.state == State_Ready
}

func (a *Accelerator) Config() Config {
	return a.config
}

func (a *Accelerator) Stats() Stats {
	return a.stats
}

func (a *Accelerator) transition(to State, reason string) {
	if a.state != to {
		a.logger.Debug("plugin state transition", "from", a.state, "to", to, "reason", reason)
	}

	a.state = to
}

func (a *Accelerator) trigger() {
	a.capturedInput = a.input
	a.capturedAux = a.aux
	a.elapsed = 0
	a.stats.Triggers++

	a.transition(State_Triggered, "trigger")

	if a.config.SettleCycles == 0 {
		a.complete()
	}
}

func (a *Accelerator) complete() {
	a.result = a.config.Function.Compute(a.capturedInput, a.capturedAux)
	a.stats.Completed++

	a.transition(State_Ready, "settled")
}

// Advances one clock cycle. Completes a triggered operation once the settle delay elapsed
func (a *Accelerator) Tick() {
	if a.state != State_Triggered {
		return
	}

	a.elapsed++
	if a.elapsed >= a.config.SettleCycles {
		a.complete()
	}
}

func (a *Accelerator) Read(offset uint32) (uint32, error) {
	register, err := RegisterAt(offset)
	if err != nil {
		return 0, err
	}

	switch register {
	case Register_Input:
		return 0, utils.MakeError(ErrWriteOnlyRegister, "%v", register)
	case Register_Aux:
		return a.aux, nil
	case Register_Result:
		return a.readResult()
	case Register_Control:
		if a.state == State_Ready {
			return StatusReady, nil
		}
		return StatusBusy, nil
	}

	panic("unreachable")
}

func (a *Accelerator) readResult() (uint32, error) {
	if a.state == State_Ready {
		return a.result, nil
	}

	a.stats.Violations++

	if a.config.Strict {
		return 0, utils.MakeError(ErrNotReady, "RESULT read in %v state (%v/%v settle cycles)", a.state, a.elapsed, a.config.SettleCycles)
	}

	a.logger.Warn("RESULT read before the plugin settled, returning stale data",
		"state", a.state,
		"elapsed", a.elapsed,
		"settle_cycles", a.config.SettleCycles,
		"stale", fmt.Sprintf("0x%08X", a.result))

	return a.result, nil
}

func (a *Accelerator) Write(value uint32, offset uint32) error {
	register, err := RegisterAt(offset)
	if err != nil {
		return err
	}

	switch register {
	case Register_Input:
		a.input = value
		if a.state == State_Ready {
			a.transition(State_Idle, "new operand")
		}
	case Register_Aux:
		a.aux = value
	case Register_Result:
		return utils.MakeError(ErrReadOnlyRegister, "%v", register)
	case Register_Control:
		if value != 0 {
			a.trigger()
		}
	}

	return nil
}
