// Package hooks is the notification surface fed by the engine: simulated
// failures and playback terminal states are dispatched to registered sinks.
package hooks

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// Kind classifies a notification.
type Kind string

const (
	// KindPodKilled is emitted when a pod is killed by a simulated failure.
	KindPodKilled Kind = "podKilled"
	// KindPodRestarted is emitted when a pod restart is simulated.
	KindPodRestarted Kind = "podRestarted"
	// KindNodeDown is emitted when a node is taken down.
	KindNodeDown Kind = "nodeDown"
	// KindComponentDegraded is emitted when a control plane component loses health.
	KindComponentDegraded Kind = "componentDegraded"
	// KindPlaybackCompleted is emitted when playback reaches the last stage.
	KindPlaybackCompleted Kind = "playbackCompleted"
	// KindPlaybackStopped is emitted when playback freezes on a failed or skipped stage.
	KindPlaybackStopped Kind = "playbackStopped"
)

// Notification is a single user-facing event.
type Notification struct {
	// Session correlates notifications of one mounted view.
	Session string
	// Kind classifies the event.
	Kind Kind
	// Resource is the affected resource in kind/name form.
	Resource string
	// Message is a human-readable summary.
	Message string
	// At is the time the event was raised.
	At time.Time
}

// Sink receives notifications.
type Sink interface {
	Notify(n Notification)
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(n Notification)

// Notify calls f(n).
func (f SinkFunc) Notify(n Notification) { f(n) }

// Dispatcher fans notifications out to registered sinks.
type Dispatcher struct {
	mu    sync.RWMutex
	sinks []Sink
	now   func() time.Time
}

// NewDispatcher constructs a Dispatcher with the given sinks.
func NewDispatcher(sinks ...Sink) *Dispatcher {
	return &Dispatcher{sinks: sinks, now: time.Now}
}

// Register adds a sink.
func (d *Dispatcher) Register(s Sink) {
	if s == nil {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sinks = append(d.sinks, s)
}

// Dispatch stamps n when needed and delivers it to every sink in registration order.
func (d *Dispatcher) Dispatch(n Notification) {
	if d == nil {
		return
	}
	if n.At.IsZero() {
		n.At = d.now()
	}
	d.mu.RLock()
	sinks := make([]Sink, len(d.sinks))
	copy(sinks, d.sinks)
	d.mu.RUnlock()

	for _, s := range sinks {
		s.Notify(n)
	}
}

// LogSink writes notifications to a structured logger.
type LogSink struct {
	logger *slog.Logger
}

// NewLogSink constructs a LogSink bound to the provided logger.
func NewLogSink(logger *slog.Logger) *LogSink {
	return &LogSink{logger: logger}
}

// Notify logs n at info level, or warn level for failure notifications.
func (s *LogSink) Notify(n Notification) {
	if s.logger == nil {
		return
	}
	level := slog.LevelInfo
	switch n.Kind {
	case KindPodKilled, KindNodeDown, KindComponentDegraded, KindPlaybackStopped:
		level = slog.LevelWarn
	}
	s.logger.Log(context.Background(), level, n.Message, "kind", string(n.Kind), "resource", n.Resource, "session", n.Session)
}
