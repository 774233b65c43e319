package cia402

// Transition is a directed edge of the CiA 402 state machine.
type Transition struct {
	From State
	To   State
}

// TransitionCommands holds every legal single-step transition and the
// control word value causing it. Automatic transitions (power up
// sequence, fault reaction) carry a zero command, the drive performs
// them on its own.
var TransitionCommands = map[Transition]Command{
	// Automatic transitions
	{Start, NotReadyToSwitchOn}:            cmdAutomatic,
	{NotReadyToSwitchOn, SwitchOnDisabled}: cmdAutomatic,
	{FaultReactionActive, Fault}:           cmdAutomatic,

	// Shut down
	{SwitchOnDisabled, ReadyToSwitchOn}: CmdShutDown,
	{SwitchedOn, ReadyToSwitchOn}:       CmdShutDown,
	{OperationEnabled, ReadyToSwitchOn}: CmdShutDown,

	// Switch on / disable operation
	{ReadyToSwitchOn, SwitchedOn}:  CmdSwitchOn,
	{OperationEnabled, SwitchedOn}: CmdDisableOperation,

	// Enable operation
	{SwitchedOn, OperationEnabled}:      CmdEnableOperation,
	{QuickStopActive, OperationEnabled}: CmdEnableOperation,

	// Disable voltage
	{ReadyToSwitchOn, SwitchOnDisabled}:  CmdDisableVoltage,
	{SwitchedOn, SwitchOnDisabled}:       CmdDisableVoltage,
	{OperationEnabled, SwitchOnDisabled}: CmdDisableVoltage,
	{QuickStopActive, SwitchOnDisabled}:  CmdDisableVoltage,

	// Quick stop
	{ReadyToSwitchOn, QuickStopActive}:  CmdQuickStop,
	{SwitchedOn, QuickStopActive}:       CmdQuickStop,
	{OperationEnabled, QuickStopActive}: CmdQuickStop,

	// Halt
	{OperationEnabled, Halt}: CmdHold,
	{Halt, OperationEnabled}: CmdEnableOperation,

	// Fault reset
	{Fault, SwitchOnDisabled}: CmdFaultReset,
}

// allStates in a fixed order so that derived tables are reproducible.
var allStates = []State{
	Start,
	NotReadyToSwitchOn,
	SwitchOnDisabled,
	ReadyToSwitchOn,
	SwitchedOn,
	OperationEnabled,
	QuickStopActive,
	FaultReactionActive,
	Fault,
	Halt,
}

// successorStates returns the direct successors of a state in the fixed
// state order, the FIFO discovery order of the path search depends on it.
func successorStates(s State) []State {
	var successors []State
	for _, to := range allStates {
		if _, ok := TransitionCommands[Transition{s, to}]; ok {
			successors = append(successors, to)
		}
	}
	return successors
}

// FindShortestStatePath searches the transition graph breadth-first and
// returns the state sequence from start to end, start included. Ties
// are broken by FIFO discovery order. The path is empty when start
// equals end and also when end is unreachable.
func FindShortestStatePath(start State, end State) []State {
	if start == end {
		return nil
	}
	type node struct {
		state State
		path  []State
	}
	queue := []node{{state: start, path: []State{start}}}
	visited := map[State]bool{start: true}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, successor := range successorStates(current.state) {
			if visited[successor] {
				continue
			}
			path := append(append([]State{}, current.path...), successor)
			if successor == end {
				return path
			}
			visited[successor] = true
			queue = append(queue, node{state: successor, path: path})
		}
	}
	return nil
}

// WhereToGoNext maps every reachable (current, target) pair to the next
// intermediate state on the shortest path, making runtime lookups O(1).
var WhereToGoNext = map[Transition]State{}

func init() {
	for _, start := range allStates {
		for _, end := range allStates {
			path := FindShortestStatePath(start, end)
			if len(path) >= 2 {
				WhereToGoNext[Transition{start, end}] = path[1]
			}
		}
	}
}

// ControlwordWriter writes a raw control word to a drive.
type ControlwordWriter interface {
	WriteControlword(value uint16) error
}

// SetState issues the direct transition command from current to target.
// Already being at the target is a no-op. Requesting a state without a
// direct edge is a caller error, multi-hop changes must go through a
// state switching job instead.
func SetState(w ControlwordWriter, current State, target State) error {
	if current == target {
		return nil
	}
	command, ok := TransitionCommands[Transition{current, target}]
	if !ok {
		return ErrInvalidTransition
	}
	return w.WriteControlword(uint16(command))
}
