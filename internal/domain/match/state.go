package match

import (
	"errors"
	"fmt"
	"strings"
)

type State string

const (
	StateScheduled State = "SCHEDULED"
	StateLive      State = "LIVE"
	StateHalfTime  State = "HALF_TIME"
	StateSuspended State = "SUSPENDED"
	StateFinished  State = "FINISHED"
	StateCancelled State = "CANCELLED"
)

var allStates = []State{
	StateScheduled,
	StateLive,
	StateHalfTime,
	StateSuspended,
	StateFinished,
	StateCancelled,
}

func ParseState(raw string) (State, error) {
	candidate := State(strings.ToUpper(strings.TrimSpace(raw)))
	for _, s := range allStates {
		if s == candidate {
			return s, nil
		}
	}
	return "", fmt.Errorf("unknown match state %q", raw)
}

func (s State) Valid() bool {
	_, err := ParseState(string(s))
	return err == nil
}

// InPlay reports whether events may be recorded.
func (s State) InPlay() bool {
	return s == StateLive || s == StateHalfTime
}

func (s State) Terminal() bool {
	return s == StateFinished || s == StateCancelled
}

type Action string

const (
	ActionStart         Action = "start"
	ActionRecordEvent   Action = "record_event"
	ActionAdvanceMinute Action = "advance_minute"
	ActionHalfTime      Action = "half_time"
	ActionResume        Action = "resume"
	ActionFinish        Action = "finish"
	ActionSuspend       Action = "suspend"
	ActionCancel        Action = "cancel"
)

type edge struct {
	from   State
	action Action
}

// transitions is the complete allow-list. Anything missing is illegal.
var transitions = map[edge]State{
	{StateScheduled, ActionStart}: StateLive,

	{StateLive, ActionRecordEvent}:     StateLive,
	{StateHalfTime, ActionRecordEvent}: StateHalfTime,
	{StateLive, ActionAdvanceMinute}:   StateLive,

	{StateLive, ActionHalfTime}:   StateHalfTime,
	{StateHalfTime, ActionResume}: StateLive,

	{StateLive, ActionFinish}:     StateFinished,
	{StateHalfTime, ActionFinish}: StateFinished,

	{StateLive, ActionSuspend}:     StateSuspended,
	{StateHalfTime, ActionSuspend}: StateSuspended,
	{StateLive, ActionCancel}:      StateCancelled,
	{StateHalfTime, ActionCancel}:  StateCancelled,

	{StateSuspended, ActionResume}: StateLive,
	{StateSuspended, ActionCancel}: StateCancelled,
}

// intendedTarget is the state an action normally leads to, used to name the
// attempted state when the action is rejected.
var intendedTarget = map[Action]State{
	ActionStart:    StateLive,
	ActionHalfTime: StateHalfTime,
	ActionResume:   StateLive,
	ActionFinish:   StateFinished,
	ActionSuspend:  StateSuspended,
	ActionCancel:   StateCancelled,
}

var ErrInvalidTransition = errors.New("invalid transition")

// TransitionError names the state the match was in and what was attempted.
type TransitionError struct {
	From   State
	Action Action
	To     State
}

func (e *TransitionError) Error() string {
	if e.To != "" {
		return fmt.Sprintf("invalid transition: match is %s, cannot %s (to %s)", e.From, e.Action, e.To)
	}
	return fmt.Sprintf("invalid transition: match is %s, cannot %s", e.From, e.Action)
}

func (e *TransitionError) Unwrap() error {
	return ErrInvalidTransition
}

// Transition returns the state reached by applying action in from.
func Transition(from State, action Action) (State, error) {
	if to, ok := transitions[edge{from: from, action: action}]; ok {
		return to, nil
	}
	return from, &TransitionError{From: from, Action: action, To: intendedTarget[action]}
}

// Allowed lists the actions legal in s, in a stable order.
func Allowed(s State) []Action {
	order := []Action{
		ActionStart,
		ActionRecordEvent,
		ActionAdvanceMinute,
		ActionHalfTime,
		ActionResume,
		ActionFinish,
		ActionSuspend,
		ActionCancel,
	}
	out := make([]Action, 0, len(order))
	for _, a := range order {
		if _, ok := transitions[edge{from: s, action: a}]; ok {
			out = append(out, a)
		}
	}
	return out
}
