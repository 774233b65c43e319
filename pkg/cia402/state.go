// Package cia402 models the CiA 402 drive state machine : the state
// enumeration, status word decoding, the legal transition table with
// its control word commands and shortest path planning between states.
package cia402

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownState      = errors.New("status word does not match any CiA 402 state")
	ErrInvalidTransition = errors.New("no direct transition between states, drive via intermediate states")
)

// Drive state per CiA 402. START is the synthetic power-up state, HALT
// is entered through the halt bit while operation stays enabled.
type State uint8

const (
	Start State = iota
	NotReadyToSwitchOn
	SwitchOnDisabled
	ReadyToSwitchOn
	SwitchedOn
	OperationEnabled
	QuickStopActive
	FaultReactionActive
	Fault
	Halt
)

var stateDescription = map[State]string{
	Start:               "START",
	NotReadyToSwitchOn:  "NOT READY TO SWITCH ON",
	SwitchOnDisabled:    "SWITCH ON DISABLED",
	ReadyToSwitchOn:     "READY TO SWITCH ON",
	SwitchedOn:          "SWITCHED ON",
	OperationEnabled:    "OPERATION ENABLED",
	QuickStopActive:     "QUICK STOP ACTIVE",
	FaultReactionActive: "FAULT REACTION ACTIVE",
	Fault:               "FAULT",
	Halt:                "HALT",
}

func (s State) String() string {
	if description, ok := stateDescription[s]; ok {
		return description
	}
	return fmt.Sprintf("State(%d)", uint8(s))
}

// Control word commands causing the state transitions. Values are the
// full control word, not individual bits.
type Command uint16

const (
	CmdDisableVoltage   Command = 0x0000
	CmdQuickStop        Command = 0x0002
	CmdShutDown         Command = 0x0006
	CmdSwitchOn         Command = 0x0007
	CmdDisableOperation Command = 0x0007
	CmdEnableOperation  Command = 0x000F
	CmdHold             Command = 0x010F
	CmdFaultReset       Command = 0x0080
	cmdAutomatic        Command = 0x0000
)

// statusMatcher is one row of the ordered status word decode table.
type statusMatcher struct {
	mask  uint16
	value uint16
	state State
}

// Ordered decode table, first match wins. START and HALT have no status
// word pattern, they are never decoded from the wire.
var statusTable = []statusMatcher{
	{0x004F, 0x0000, NotReadyToSwitchOn},
	{0x004F, 0x0040, SwitchOnDisabled},
	{0x006F, 0x0021, ReadyToSwitchOn},
	{0x006F, 0x0023, SwitchedOn},
	{0x006F, 0x0027, OperationEnabled},
	{0x006F, 0x0007, QuickStopActive},
	{0x004F, 0x000F, FaultReactionActive},
	{0x004F, 0x0008, Fault},
}

// WhichState decodes the drive state from a status word. The decode
// table is matched in order, first match wins.
func WhichState(statusword uint16) (State, error) {
	for _, row := range statusTable {
		if statusword&row.mask == row.value {
			return row.state, nil
		}
	}
	return 0, fmt.Errorf("%w : 0x%04X", ErrUnknownState, statusword)
}

// StatusPattern returns the (mask, value) pair a status word has to
// match in order to decode to the given state.
func StatusPattern(state State) (mask uint16, value uint16, ok bool) {
	for _, row := range statusTable {
		if row.state == state {
			return row.mask, row.value, true
		}
	}
	return 0, 0, false
}
