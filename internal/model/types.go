// Package model defines core data structures for tgauto.
package model

// Country is one entry of the SMS-activation country catalog.
type Country struct {
	// ID is the zero-based position of the country in catalog order.
	ID int `json:"id"`
	// Name is the English display name.
	Name string `json:"name"`
}

// PhoneNumber is a disposable number leased for one verification attempt.
type PhoneNumber struct {
	// ActivationID identifies the activation on the service side.
	ActivationID string `json:"activation_id"`
	// Number is the phone number in international format without "+".
	Number string `json:"number"`
}

// Outcome is the final state reported for an activation.
type Outcome int

const (
	// OutcomeConfirmed marks the activation as complete.
	OutcomeConfirmed Outcome = iota
	// OutcomeCanceled releases the number without using it.
	OutcomeCanceled
)

// StatusCode returns the numeric setStatus code for the outcome.
func (o Outcome) StatusCode() int {
	switch o {
	case OutcomeCanceled:
		return 8
	default:
		return 1
	}
}

func (o Outcome) String() string {
	switch o {
	case OutcomeConfirmed:
		return "confirmed"
	case OutcomeCanceled:
		return "canceled"
	default:
		return "unknown"
	}
}

// ActivationStatusKind classifies a single poll of an activation.
type ActivationStatusKind string

const (
	// StatusPendingCode means no code has arrived yet.
	StatusPendingCode ActivationStatusKind = "pending_code"
	// StatusCodeReceived means Code holds the verification code.
	StatusCodeReceived ActivationStatusKind = "code_received"
	// StatusError means the activation failed; Message holds the reason.
	StatusError ActivationStatusKind = "error"
)

// ActivationStatus is the outcome of one poll. It is never cached.
type ActivationStatus struct {
	Kind    ActivationStatusKind
	Code    string
	Message string
}

// RunState is the controller-level automation state.
type RunState int

const (
	// RunStateIdle means no task is active.
	RunStateIdle RunState = iota
	// RunStateRunning means the active task is executing steps.
	RunStateRunning
	// RunStatePaused means the active task is suspended at a step boundary.
	RunStatePaused
)

func (s RunState) String() string {
	switch s {
	case RunStateIdle:
		return "idle"
	case RunStateRunning:
		return "running"
	case RunStatePaused:
		return "paused"
	default:
		return "unknown"
	}
}

// TaskState is the lifecycle state of a single task instance.
type TaskState int

const (
	TaskNotStarted TaskState = iota
	TaskRunning
	TaskPaused
	TaskCompleted
	TaskStopped
)

func (s TaskState) String() string {
	switch s {
	case TaskNotStarted:
		return "not_started"
	case TaskRunning:
		return "running"
	case TaskPaused:
		return "paused"
	case TaskCompleted:
		return "completed"
	case TaskStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transitions are possible.
func (s TaskState) Terminal() bool {
	return s == TaskCompleted || s == TaskStopped
}

// Posture is the enabled/disabled arrangement of the operator controls.
type Posture int

const (
	PostureIdle Posture = iota
	PostureRunning
	PosturePaused
)

func (p Posture) String() string {
	switch p {
	case PostureIdle:
		return "idle"
	case PostureRunning:
		return "running"
	case PosturePaused:
		return "paused"
	default:
		return "unknown"
	}
}

// Affordances describes which operator commands are available.
type Affordances struct {
	RunEnabled   bool
	PauseEnabled bool
	StopEnabled  bool
	// RunLabel is "Run" when idle and "Resume" once a task is active.
	RunLabel string
}

// Affordances returns the control arrangement for the posture.
func (p Posture) Affordances() Affordances {
	switch p {
	case PostureRunning:
		return Affordances{PauseEnabled: true, StopEnabled: true, RunLabel: "Resume"}
	case PosturePaused:
		return Affordances{RunEnabled: true, RunLabel: "Resume"}
	default:
		return Affordances{RunEnabled: true, RunLabel: "Run"}
	}
}

// NotificationConfig holds notification settings.
type NotificationConfig struct {
	// Desktop enables desktop notifications via system APIs.
	Desktop bool `json:"desktop"`
	// WebhookURL is the optional URL to send webhook notifications.
	WebhookURL string `json:"webhook_url,omitempty"`
}
