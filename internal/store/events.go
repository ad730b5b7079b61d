package store

import (
	"sync"

	"github.com/codex-k8s/scenariosim/internal/catalog"
)

// EventType classifies a store change.
type EventType string

const (
	// EventLoaded means a scenario was (re)loaded and selections were cleared.
	EventLoaded EventType = "loaded"
	// EventSelected means a selection slot changed.
	EventSelected EventType = "selected"
	// EventMutated means a simulated failure changed a resource.
	EventMutated EventType = "mutated"
)

// Event notifies subscribers of a store change.
type Event struct {
	Family     catalog.Family
	Type       EventType
	ScenarioID string
	Ref        Ref
}

// listeners is a registry of change callbacks.
type listeners struct {
	mu     sync.Mutex
	fns    map[int]func(Event)
	nextID int
}

func (l *listeners) add(fn func(Event)) func() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.fns == nil {
		l.fns = make(map[int]func(Event))
	}
	id := l.nextID
	l.nextID++
	l.fns[id] = fn
	return func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		delete(l.fns, id)
	}
}

func (l *listeners) emit(ev Event) {
	l.mu.Lock()
	fns := make([]func(Event), 0, len(l.fns))
	for id := 0; id < l.nextID; id++ {
		if fn, ok := l.fns[id]; ok {
			fns = append(fns, fn)
		}
	}
	l.mu.Unlock()

	for _, fn := range fns {
		fn(ev)
	}
}
