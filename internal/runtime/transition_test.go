package runtime

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lazyvibe/tgauto/internal/model"
)

func TestTransition(t *testing.T) {
	tests := []struct {
		name    string
		state   model.RunState
		event   Event
		next    model.RunState
		effects []Effect
	}{
		{
			name:  "activate from idle",
			state: model.RunStateIdle,
			event: EventActivated,
			next:  model.RunStateRunning,
			effects: []Effect{
				{Kind: EffectSetPosture, Posture: model.PostureRunning},
				{Kind: EffectFreeze},
				{Kind: EffectSpawnMonitor},
			},
		},
		{
			name:  "activate while running is ignored",
			state: model.RunStateRunning,
			event: EventActivated,
			next:  model.RunStateRunning,
		},
		{
			name:    "resume from paused",
			state:   model.RunStatePaused,
			event:   EventResumed,
			next:    model.RunStateRunning,
			effects: []Effect{{Kind: EffectSetPosture, Posture: model.PostureRunning}},
		},
		{
			name:  "resume from idle is ignored",
			state: model.RunStateIdle,
			event: EventResumed,
			next:  model.RunStateIdle,
		},
		{
			name:    "pause while running",
			state:   model.RunStateRunning,
			event:   EventPauseRequested,
			next:    model.RunStatePaused,
			effects: []Effect{{Kind: EffectSetPosture, Posture: model.PosturePaused}},
		},
		{
			name:  "pause while idle is ignored",
			state: model.RunStateIdle,
			event: EventPauseRequested,
			next:  model.RunStateIdle,
		},
		{
			name:  "stop keeps state until completion",
			state: model.RunStateRunning,
			event: EventStopRequested,
			next:  model.RunStateRunning,
		},
		{
			name:  "complete while paused",
			state: model.RunStatePaused,
			event: EventCompleted,
			next:  model.RunStateIdle,
			effects: []Effect{
				{Kind: EffectSetPosture, Posture: model.PostureIdle},
				{Kind: EffectUnfreeze},
			},
		},
		{
			name:  "complete while idle is ignored",
			state: model.RunStateIdle,
			event: EventCompleted,
			next:  model.RunStateIdle,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, effects := Transition(tt.state, tt.event)
			assert.Equal(t, tt.next, next)
			assert.Equal(t, tt.effects, effects)
		})
	}
}

func TestTransitionSpawnsOneMonitorPerActivation(t *testing.T) {
	events := []Event{
		EventActivated, EventPauseRequested, EventResumed, EventPauseRequested,
		EventResumed, EventStopRequested, EventCompleted,
		EventActivated, EventCompleted,
	}

	state := model.RunStateIdle
	spawned := 0
	for _, ev := range events {
		var effects []Effect
		state, effects = Transition(state, ev)
		for _, eff := range effects {
			if eff.Kind == EffectSpawnMonitor {
				spawned++
			}
		}
	}

	assert.Equal(t, model.RunStateIdle, state)
	assert.Equal(t, 2, spawned)
}

func TestEventString(t *testing.T) {
	assert.Equal(t, "pause_requested", EventPauseRequested.String())
	assert.Equal(t, "unknown", Event(42).String())
}
