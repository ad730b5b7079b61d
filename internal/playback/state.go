package playback

import (
	"time"

	"github.com/codex-k8s/scenariosim/internal/status"
)

// State is the scheduler state.
type State int

const (
	// Idle means playback has not started; the cursor is -1.
	Idle State = iota
	// Running means the cursor advances on every tick.
	Running
	// Paused means the cursor is frozen until Resume.
	Paused
	// StoppedFailure means the cursor froze on a failed or skipped unit.
	StoppedFailure
	// Completed means the cursor reached the last unit.
	Completed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Paused:
		return "paused"
	case StoppedFailure:
		return "stopped-failure"
	case Completed:
		return "completed"
	default:
		return "invalid"
	}
}

// Terminal reports whether s only leaves through Reset.
func (s State) Terminal() bool {
	return s == StoppedFailure || s == Completed
}

// MarshalText implements encoding.TextMarshaler.
func (s State) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// Phase classifies a unit relative to the cursor.
type Phase int

const (
	// PhasePending is a unit the cursor has not reached.
	PhasePending Phase = iota
	// PhaseActive is the unit under the cursor.
	PhaseActive
	// PhaseComplete is a unit the cursor has passed.
	PhaseComplete
)

func (p Phase) String() string {
	switch p {
	case PhasePending:
		return "pending"
	case PhaseActive:
		return "active"
	case PhaseComplete:
		return "complete"
	default:
		return "invalid"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (p Phase) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

// Unit is one stage-like element of a playback sequence. Job and Step are the
// indices the cursor reports while this unit is active, -1 when not applicable.
type Unit struct {
	ID     string                `json:"id"`
	Name   string                `json:"name"`
	Status status.PipelineStatus `json:"status"`
	Job    int                   `json:"job"`
	Step   int                   `json:"step"`
}

// Cursor is the playback position.
type Cursor struct {
	Stage     int           `json:"stage"`
	Job       int           `json:"job"`
	Step      int           `json:"step"`
	Animating bool          `json:"isAnimating"`
	Paused    bool          `json:"isPaused"`
	Speed     time.Duration `json:"speed"`
}

// Snapshot is a consistent read of the scheduler.
type Snapshot struct {
	State  State  `json:"state"`
	Cursor Cursor `json:"cursor"`
	Units  []Unit `json:"units"`
}

// Phase classifies unit i of the snapshot. Indices outside the sequence are pending.
func (s Snapshot) Phase(i int) Phase {
	return phaseOf(i, s.Cursor.Stage, len(s.Units))
}

func phaseOf(i, cursor, n int) Phase {
	switch {
	case i < 0 || i >= n:
		return PhasePending
	case cursor < 0 || i > cursor:
		return PhasePending
	case i == cursor:
		return PhaseActive
	default:
		return PhaseComplete
	}
}
