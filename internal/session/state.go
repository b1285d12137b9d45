package session

import "fmt"

// State is a step of the orchestration loop.
type State uint8

const (
	// Scan captures one snapshot of the target.
	Scan State = iota
	// Profile diffs queued snapshots once enough have accumulated.
	Profile
	// Throttle sleeps for the sampling interval.
	Throttle
	// Exit drains what is left, replays the events and reports. It is terminal.
	Exit

	numStates
)

func (s State) String() string {
	switch s {
	case Scan:
		return "SCAN"
	case Profile:
		return "PROFILE"
	case Throttle:
		return "THROTTLE"
	case Exit:
		return "EXIT"
	default:
		return fmt.Sprintf("State(%d)", uint8(s))
	}
}

// Action is the work performed in a state.
type Action uint8

const (
	ActionTick Action = iota + 1
	ActionDrainAtThreshold
	ActionSleep
	ActionFinish
)

func (a Action) String() string {
	switch a {
	case ActionTick:
		return "tick"
	case ActionDrainAtThreshold:
		return "drain-at-threshold"
	case ActionSleep:
		return "sleep"
	case ActionFinish:
		return "finish"
	default:
		return fmt.Sprintf("Action(%d)", uint8(a))
	}
}

type transition struct {
	action Action
	next   State
}

var transitions = [numStates]transition{
	Scan:     {action: ActionTick, next: Profile},
	Profile:  {action: ActionDrainAtThreshold, next: Throttle},
	Throttle: {action: ActionSleep, next: Scan},
	Exit:     {action: ActionFinish, next: Exit},
}

// Valid reports whether s is a known state.
func (s State) Valid() bool {
	return s < numStates
}

// Terminal reports whether the loop stops after s.
func (s State) Terminal() bool {
	return s == Exit
}

// Action returns the work performed in s, or zero for an unknown state.
func (s State) Action() Action {
	if !s.Valid() {
		return 0
	}
	return transitions[s].action
}

// Next returns the state after s. A finished target moves any state to Exit.
// ok is false for an unknown state.
func Next(s State, finished bool) (next State, ok bool) {
	if !s.Valid() {
		return s, false
	}
	if finished {
		return Exit, true
	}
	return transitions[s].next, true
}
