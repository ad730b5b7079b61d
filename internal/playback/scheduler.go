// Package playback advances a cursor through an ordered sequence of
// stage-like units on a fixed cadence.
//
// The scheduler owns at most one pending timer. Every command that changes
// the timeline (Pause, Reset, Load, Close) cancels it and bumps a generation
// counter, so a callback that was already in flight is discarded instead of
// advancing a cursor that has since moved on.
package playback

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/codex-k8s/scenariosim/internal/logging"
)

const (
	// DefaultSpeed is the interval between stage advances.
	DefaultSpeed = 1500 * time.Millisecond
	// DefaultAutoStartDelay lets the first frame render before playback starts.
	DefaultAutoStartDelay = 500 * time.Millisecond
)

var (
	// ErrInvalidTransition is returned by commands that are meaningless in the
	// current state. The command is a no-op.
	ErrInvalidTransition = errors.New("invalid playback transition")
	// ErrInvalidSpeed is returned by SetSpeed for non-positive intervals.
	ErrInvalidSpeed = errors.New("playback speed must be positive")
)

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithSpeed sets the initial interval between stage advances.
func WithSpeed(d time.Duration) Option {
	return func(s *Scheduler) {
		if d > 0 {
			s.speed = d
		}
	}
}

// WithClock replaces the real-time clock.
func WithClock(c Clock) Option {
	return func(s *Scheduler) {
		if c != nil {
			s.clock = c
		}
	}
}

// WithOnComplete registers the callback fired once per entry into
// StoppedFailure or Completed. It runs before listeners see the terminal snapshot.
func WithOnComplete(fn func(Snapshot)) Option {
	return func(s *Scheduler) { s.onComplete = fn }
}

// WithLogger sets the logger used for transition traces.
func WithLogger(l *slog.Logger) Option {
	return func(s *Scheduler) {
		if l != nil {
			s.logger = l
		}
	}
}

// Scheduler is the playback state machine. It is safe for concurrent use;
// listeners and the completion callback run without the lock held and may
// issue commands.
type Scheduler struct {
	mu sync.Mutex

	clock      Clock
	logger     *slog.Logger
	onComplete func(Snapshot)

	units  []Unit
	state  State
	cursor int
	speed  time.Duration

	timer Timer
	gen   uint64
	fired bool

	listeners map[int]func(Snapshot)
	nextID    int
}

// New constructs an idle scheduler over units.
func New(units []Unit, opts ...Option) *Scheduler {
	s := &Scheduler{
		clock:     RealClock{},
		logger:    logging.Discard(),
		units:     cloneUnits(units),
		cursor:    -1,
		speed:     DefaultSpeed,
		listeners: make(map[int]func(Snapshot)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// effects collects what must happen after the lock is released.
type effects struct {
	changed  bool
	complete bool
}

// Start moves Idle to Running with the cursor on the first unit. An empty
// sequence stays Idle.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	fx, err := s.startLocked()
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.flush(fx, snap)
	return err
}

// StartAfter arms a one-shot timer that calls Start after delay. It replaces
// any pending timer; Reset, Load and Close cancel it.
func (s *Scheduler) StartAfter(delay time.Duration) error {
	if delay <= 0 {
		return s.Start()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != Idle {
		return fmt.Errorf("start from %s: %w", s.state, ErrInvalidTransition)
	}
	if len(s.units) == 0 {
		return nil
	}
	s.armLocked(delay, s.startLocked)
	s.logger.Debug("playback auto-start armed", "delay", delay)
	return nil
}

func (s *Scheduler) startLocked() (effects, error) {
	if s.state != Idle {
		return effects{}, fmt.Errorf("start from %s: %w", s.state, ErrInvalidTransition)
	}
	if len(s.units) == 0 {
		s.cancelLocked()
		return effects{}, nil
	}
	s.state = Running
	s.cursor = 0
	s.fired = false
	s.armLocked(s.speed, s.tickLocked)
	s.logger.Debug("playback started", "units", len(s.units), "speed", s.speed)
	return effects{changed: true}, nil
}

// Tick performs one step of the state machine immediately. Outside Running it
// is a no-op. The pending timer is replaced, never stacked.
func (s *Scheduler) Tick() {
	s.mu.Lock()
	var fx effects
	if s.state == Running {
		s.cancelLocked()
		fx, _ = s.tickLocked()
	}
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.flush(fx, snap)
}

func (s *Scheduler) tickLocked() (effects, error) {
	if s.state != Running || s.cursor < 0 || s.cursor >= len(s.units) {
		return effects{}, nil
	}

	current := s.units[s.cursor]
	switch {
	case current.Status.Halts():
		s.state = StoppedFailure
		s.logger.Debug("playback stopped on halting unit", "stage", s.cursor, "unit", current.ID, "status", current.Status)
		return s.terminalLocked(), nil
	case s.cursor >= len(s.units)-1:
		s.state = Completed
		s.logger.Debug("playback completed", "stage", s.cursor)
		return s.terminalLocked(), nil
	default:
		s.cursor++
		s.armLocked(s.speed, s.tickLocked)
		s.logger.Debug("playback advanced", "stage", s.cursor, "unit", s.units[s.cursor].ID)
		return effects{changed: true}, nil
	}
}

func (s *Scheduler) terminalLocked() effects {
	s.cancelLocked()
	fx := effects{changed: true}
	if !s.fired {
		s.fired = true
		fx.complete = true
	}
	return fx
}

// Pause freezes a running cursor and cancels the pending tick.
func (s *Scheduler) Pause() error {
	s.mu.Lock()
	if s.state != Running {
		state := s.state
		s.mu.Unlock()
		return fmt.Errorf("pause from %s: %w", state, ErrInvalidTransition)
	}
	s.cancelLocked()
	s.state = Paused
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.flush(effects{changed: true}, snap)
	return nil
}

// Resume continues a paused cursor from its current unit with a fresh interval.
func (s *Scheduler) Resume() error {
	s.mu.Lock()
	if s.state != Paused {
		state := s.state
		s.mu.Unlock()
		return fmt.Errorf("resume from %s: %w", state, ErrInvalidTransition)
	}
	s.state = Running
	s.armLocked(s.speed, s.tickLocked)
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.flush(effects{changed: true}, snap)
	return nil
}

// Reset returns to Idle from any state and cancels the pending timer.
// Calling it twice is the same as calling it once.
func (s *Scheduler) Reset() {
	s.mu.Lock()
	changed := s.resetLocked()
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.flush(effects{changed: changed}, snap)
}

func (s *Scheduler) resetLocked() bool {
	s.cancelLocked()
	changed := s.state != Idle || s.cursor != -1
	s.state = Idle
	s.cursor = -1
	s.fired = false
	return changed
}

// SetSpeed changes the interval used for the next armed tick. A tick that is
// already pending keeps its deadline.
func (s *Scheduler) SetSpeed(d time.Duration) error {
	if d <= 0 {
		return fmt.Errorf("set speed %s: %w", d, ErrInvalidSpeed)
	}
	s.mu.Lock()
	changed := s.speed != d
	s.speed = d
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.flush(effects{changed: changed}, snap)
	return nil
}

// Load replaces the sequence and resets playback. Any pending tick for the
// previous sequence is cancelled.
func (s *Scheduler) Load(units []Unit) {
	s.Replace(units)()
}

// Replace is Load without notifying listeners. The returned function delivers
// the reset snapshot and must be called once the caller has released any lock
// its listeners take.
func (s *Scheduler) Replace(units []Unit) (notify func()) {
	s.mu.Lock()
	s.resetLocked()
	s.units = cloneUnits(units)
	snap := s.snapshotLocked()
	s.mu.Unlock()

	return func() { s.flush(effects{changed: true}, snap) }
}

// Close resets playback and drops every listener. It is called when the
// consuming view goes away.
func (s *Scheduler) Close() {
	s.mu.Lock()
	s.resetLocked()
	s.listeners = make(map[int]func(Snapshot))
	s.mu.Unlock()
}

// Subscribe registers fn to receive a snapshot after every state change and
// returns a function that removes it.
func (s *Scheduler) Subscribe(fn func(Snapshot)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.listeners, id)
	}
}

// Snapshot returns the current state, cursor and sequence.
func (s *Scheduler) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// State returns the current state.
func (s *Scheduler) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// ActiveIndex returns the cursor position, -1 before playback starts.
func (s *Scheduler) ActiveIndex() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cursor
}

// Phase classifies unit i relative to the cursor.
func (s *Scheduler) Phase(i int) Phase {
	s.mu.Lock()
	defer s.mu.Unlock()
	return phaseOf(i, s.cursor, len(s.units))
}

// IsActive reports whether unit i is under the cursor.
func (s *Scheduler) IsActive(i int) bool { return s.Phase(i) == PhaseActive }

// IsComplete reports whether the cursor has passed unit i.
func (s *Scheduler) IsComplete(i int) bool { return s.Phase(i) == PhaseComplete }

// IsPending reports whether the cursor has not reached unit i.
func (s *Scheduler) IsPending(i int) bool { return s.Phase(i) == PhasePending }

func (s *Scheduler) snapshotLocked() Snapshot {
	cur := Cursor{
		Stage:     s.cursor,
		Job:       -1,
		Step:      -1,
		Animating: s.state == Running || s.state == Paused,
		Paused:    s.state == Paused,
		Speed:     s.speed,
	}
	if s.cursor >= 0 && s.cursor < len(s.units) {
		cur.Job = s.units[s.cursor].Job
		cur.Step = s.units[s.cursor].Step
	}
	return Snapshot{State: s.state, Cursor: cur, Units: cloneUnits(s.units)}
}

// armLocked replaces the pending timer with one that runs step after d.
func (s *Scheduler) armLocked(d time.Duration, step func() (effects, error)) {
	s.cancelLocked()
	gen := s.gen
	s.timer = s.clock.AfterFunc(d, func() { s.fire(gen, step) })
}

// cancelLocked stops the pending timer and invalidates callbacks already in flight.
func (s *Scheduler) cancelLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.gen++
}

func (s *Scheduler) fire(gen uint64, step func() (effects, error)) {
	s.mu.Lock()
	if gen != s.gen {
		s.mu.Unlock()
		s.logger.Debug("discarded stale playback timer")
		return
	}
	s.timer = nil
	fx, err := step()
	snap := s.snapshotLocked()
	s.mu.Unlock()

	if err != nil {
		s.logger.Debug("playback timer ignored", "error", err)
	}
	s.flush(fx, snap)
}

func (s *Scheduler) flush(fx effects, snap Snapshot) {
	if !fx.changed && !fx.complete {
		return
	}

	s.mu.Lock()
	listeners := make([]func(Snapshot), 0, len(s.listeners))
	for id := 0; id < s.nextID; id++ {
		if fn, ok := s.listeners[id]; ok {
			listeners = append(listeners, fn)
		}
	}
	onComplete := s.onComplete
	s.mu.Unlock()

	if fx.complete && onComplete != nil {
		onComplete(snap)
	}
	for _, fn := range listeners {
		fn(snap)
	}
}

func cloneUnits(units []Unit) []Unit {
	out := make([]Unit, len(units))
	copy(out, units)
	return out
}
