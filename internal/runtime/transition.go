package runtime

import "github.com/lazyvibe/tgauto/internal/model"

// Event is an input to the controller state machine.
type Event int

const (
	// EventActivated fires when an idle controller started a task that produced a worker.
	EventActivated Event = iota
	// EventResumed fires when run is forwarded to an already active task.
	EventResumed
	EventPauseRequested
	EventStopRequested
	// EventCompleted fires once the active worker has finished or was abandoned.
	EventCompleted
)

func (e Event) String() string {
	switch e {
	case EventActivated:
		return "activated"
	case EventResumed:
		return "resumed"
	case EventPauseRequested:
		return "pause_requested"
	case EventStopRequested:
		return "stop_requested"
	case EventCompleted:
		return "completed"
	default:
		return "unknown"
	}
}

// EffectKind names a side effect of a transition.
type EffectKind int

const (
	EffectSetPosture EffectKind = iota
	EffectFreeze
	EffectUnfreeze
	EffectSpawnMonitor
)

// Effect is a side effect the controller performs after a transition.
type Effect struct {
	Kind    EffectKind
	Posture model.Posture
}

func setPosture(p model.Posture) Effect {
	return Effect{Kind: EffectSetPosture, Posture: p}
}

// Transition maps (state, event) to the next state and its side effects.
// Only activation from Idle spawns a monitor; resuming re-enters the worker
// the existing monitor is already waiting on.
func Transition(state model.RunState, ev Event) (model.RunState, []Effect) {
	switch ev {
	case EventActivated:
		if state != model.RunStateIdle {
			return state, nil
		}
		return model.RunStateRunning, []Effect{
			setPosture(model.PostureRunning),
			{Kind: EffectFreeze},
			{Kind: EffectSpawnMonitor},
		}

	case EventResumed:
		if state == model.RunStateIdle {
			return state, nil
		}
		return model.RunStateRunning, []Effect{setPosture(model.PostureRunning)}

	case EventPauseRequested:
		if state == model.RunStateIdle {
			return state, nil
		}
		return model.RunStatePaused, []Effect{setPosture(model.PosturePaused)}

	case EventStopRequested:
		return state, nil

	case EventCompleted:
		if state == model.RunStateIdle {
			return state, nil
		}
		return model.RunStateIdle, []Effect{
			setPosture(model.PostureIdle),
			{Kind: EffectUnfreeze},
		}
	}
	return state, nil
}
