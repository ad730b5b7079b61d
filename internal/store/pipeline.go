package store

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/codex-k8s/scenariosim/internal/catalog"
	"github.com/codex-k8s/scenariosim/internal/logging"
)

// PipelineSource resolves pipelines by id.
type PipelineSource interface {
	Pipeline(id string) (*catalog.Pipeline, error)
}

// PipelineSelection holds the selected stage, job and step. The levels
// cascade: a new stage clears job and step, a new job clears step.
type PipelineSelection struct {
	Stage string
	Job   string
	Step  string
}

// Empty reports whether nothing is selected.
func (s PipelineSelection) Empty() bool {
	return s == PipelineSelection{}
}

// PipelineStore holds the active pipeline.
type PipelineStore struct {
	source PipelineSource
	logger *slog.Logger

	mu        sync.RWMutex
	current   *catalog.Pipeline
	selection PipelineSelection

	listeners listeners
}

// NewPipelineStore constructs an empty store backed by source.
func NewPipelineStore(source PipelineSource, logger *slog.Logger) *PipelineStore {
	if logger == nil {
		logger = logging.Discard()
	}
	return &PipelineStore{source: source, logger: logger}
}

// Load replaces the active pipeline with id and clears every selection.
func (s *PipelineStore) Load(id string) error {
	p, err := s.source.Pipeline(id)
	if err != nil {
		return fmt.Errorf("load pipeline: %w", err)
	}

	s.mu.Lock()
	s.current = p
	s.selection = PipelineSelection{}
	s.mu.Unlock()

	s.logger.Info("pipeline loaded", "pipeline", id, "stages", len(p.Stages))
	s.listeners.emit(Event{Family: catalog.FamilyPipeline, Type: EventLoaded, ScenarioID: id})
	return nil
}

// Current returns a copy of the active pipeline, or nil when none is loaded.
func (s *PipelineStore) Current() *catalog.Pipeline {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.Clone()
}

// Selection returns the current selections.
func (s *PipelineStore) Selection() PipelineSelection {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selection
}

// Select dispatches ref to SelectStage, SelectJob or SelectStep.
func (s *PipelineStore) Select(ref Ref) error {
	switch ref.Kind {
	case KindStage:
		return s.SelectStage(ref.Name)
	case KindJob:
		return s.SelectJob(ref.Name)
	case KindStep:
		return s.SelectStep(ref.Name)
	default:
		return fmt.Errorf("select %s in pipeline: %w", ref, ErrUnsupported)
	}
}

// SelectStage selects a stage and clears the job and step selections.
func (s *PipelineStore) SelectStage(id string) error {
	return s.update(Ref{Kind: KindStage, Name: id}, func(p *catalog.Pipeline, sel *PipelineSelection) bool {
		if _, _, ok := p.Stage(id); !ok {
			return false
		}
		*sel = PipelineSelection{Stage: id}
		return true
	})
}

// SelectJob selects a job and clears the step selection.
func (s *PipelineStore) SelectJob(id string) error {
	return s.update(Ref{Kind: KindJob, Name: id}, func(p *catalog.Pipeline, sel *PipelineSelection) bool {
		if _, _, ok := p.Job(id); !ok {
			return false
		}
		sel.Job = id
		sel.Step = ""
		return true
	})
}

// SelectStep selects a step. Nothing below a step cascades.
func (s *PipelineStore) SelectStep(id string) error {
	return s.update(Ref{Kind: KindStep, Name: id}, func(p *catalog.Pipeline, sel *PipelineSelection) bool {
		if _, _, ok := p.Step(id); !ok {
			return false
		}
		sel.Step = id
		return true
	})
}

// ClearSelection empties every selection slot.
func (s *PipelineStore) ClearSelection() {
	s.mu.Lock()
	s.selection = PipelineSelection{}
	s.mu.Unlock()
}

func (s *PipelineStore) update(ref Ref, apply func(*catalog.Pipeline, *PipelineSelection) bool) error {
	s.mu.Lock()
	if s.current == nil {
		s.mu.Unlock()
		return &catalog.NotFoundError{Kind: "pipeline", Name: "(none loaded)"}
	}
	if !apply(s.current, &s.selection) {
		s.mu.Unlock()
		return &catalog.NotFoundError{Kind: string(ref.Kind), Name: ref.Name}
	}
	id := s.current.ID
	s.mu.Unlock()

	s.listeners.emit(Event{Family: catalog.FamilyPipeline, Type: EventSelected, ScenarioID: id, Ref: ref})
	return nil
}

// Subscribe registers fn for store changes and returns a function that removes it.
func (s *PipelineStore) Subscribe(fn func(Event)) func() {
	return s.listeners.add(fn)
}
