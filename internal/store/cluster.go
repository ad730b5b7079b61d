// Package store owns the active scenario of each family and the UI
// selections within it.
package store

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/codex-k8s/scenariosim/internal/catalog"
	"github.com/codex-k8s/scenariosim/internal/logging"
	"github.com/codex-k8s/scenariosim/internal/status"
)

// ClusterSource resolves cluster scenarios by id.
type ClusterSource interface {
	Cluster(id string) (*catalog.ClusterSnapshot, error)
}

// ClusterSelection holds at most one selected resource per cluster kind.
// Cluster selections are flat: changing one slot never clears another.
type ClusterSelection struct {
	Component  catalog.ComponentID
	Node       string
	Pod        string
	Service    string
	Ingress    string
	Deployment string
}

// Empty reports whether nothing is selected.
func (s ClusterSelection) Empty() bool {
	return s == ClusterSelection{}
}

// Mutation describes the effect of a simulated failure.
type Mutation struct {
	Ref    Ref         `json:"ref" yaml:"ref"`
	Kind   FailureKind `json:"kind" yaml:"kind"`
	Before string      `json:"before" yaml:"before"`
	After  string      `json:"after" yaml:"after"`
}

// ClusterStore holds the active cluster scenario.
type ClusterStore struct {
	source ClusterSource
	logger *slog.Logger

	mu        sync.RWMutex
	current   *catalog.ClusterSnapshot
	selection ClusterSelection

	listeners listeners
}

// NewClusterStore constructs an empty store backed by source.
func NewClusterStore(source ClusterSource, logger *slog.Logger) *ClusterStore {
	if logger == nil {
		logger = logging.Discard()
	}
	return &ClusterStore{source: source, logger: logger}
}

// Load replaces the active scenario with id and clears every selection.
// Reloading the active id is a fresh reload.
func (s *ClusterStore) Load(id string) error {
	snap, err := s.source.Cluster(id)
	if err != nil {
		return fmt.Errorf("load cluster scenario: %w", err)
	}

	s.mu.Lock()
	s.current = snap
	s.selection = ClusterSelection{}
	s.mu.Unlock()

	s.logger.Info("cluster scenario loaded", "scenario", id, "pods", len(snap.Pods), "nodes", len(snap.Nodes))
	s.listeners.emit(Event{Family: catalog.FamilyCluster, Type: EventLoaded, ScenarioID: id})
	return nil
}

// Current returns a copy of the active scenario, or nil when none is loaded.
func (s *ClusterStore) Current() *catalog.ClusterSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current.Clone()
}

// Selection returns the current selections.
func (s *ClusterStore) Selection() ClusterSelection {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selection
}

// Select sets the selection slot for ref.Kind.
func (s *ClusterStore) Select(ref Ref) error {
	s.mu.Lock()
	if s.current == nil {
		s.mu.Unlock()
		return &catalog.NotFoundError{Kind: "cluster scenario", Name: "(none loaded)"}
	}
	if err := s.resolveLocked(ref); err != nil {
		s.mu.Unlock()
		return err
	}

	switch ref.Kind {
	case KindComponent:
		s.selection.Component = catalog.ComponentID(ref.Name)
	case KindNode:
		s.selection.Node = ref.Name
	case KindPod:
		s.selection.Pod = ref.Name
	case KindService:
		s.selection.Service = ref.Name
	case KindIngress:
		s.selection.Ingress = ref.Name
	case KindDeployment:
		s.selection.Deployment = ref.Name
	}
	id := s.current.ID
	s.mu.Unlock()

	s.listeners.emit(Event{Family: catalog.FamilyCluster, Type: EventSelected, ScenarioID: id, Ref: ref})
	return nil
}

// ClearSelection empties every selection slot.
func (s *ClusterStore) ClearSelection() {
	s.mu.Lock()
	s.selection = ClusterSelection{}
	s.mu.Unlock()
}

// resolveLocked checks that ref names a resource of the active scenario.
func (s *ClusterStore) resolveLocked(ref Ref) error {
	found := false
	switch ref.Kind {
	case KindComponent:
		_, found = s.current.Component(catalog.ComponentID(ref.Name))
	case KindNode:
		_, found = s.current.Node(ref.Name)
	case KindPod:
		_, found = s.current.Pod(ref.Name)
	case KindService:
		for _, svc := range s.current.Services {
			found = found || svc.Name == ref.Name
		}
	case KindIngress:
		for _, ing := range s.current.Ingresses {
			found = found || ing.Name == ref.Name
		}
	case KindDeployment:
		for _, d := range s.current.Deployments {
			found = found || d.Name == ref.Name
		}
	default:
		return fmt.Errorf("select %s in cluster scenario: %w", ref, ErrUnsupported)
	}
	if !found {
		return &catalog.NotFoundError{Kind: string(ref.Kind), Name: ref.Name}
	}
	return nil
}

// SimulateFailure applies a failure to one resource of the active scenario.
// The change is made on a copy and swapped in, so readers never see a
// half-applied mutation. No other resource changes.
func (s *ClusterStore) SimulateFailure(ref Ref, kind FailureKind) (Mutation, error) {
	s.mu.Lock()
	if s.current == nil {
		s.mu.Unlock()
		return Mutation{}, &catalog.NotFoundError{Kind: "cluster scenario", Name: "(none loaded)"}
	}

	next := s.current.Clone()
	m, err := applyFailure(next, ref, kind)
	if err != nil {
		s.mu.Unlock()
		return Mutation{}, err
	}
	s.current = next
	id := next.ID
	s.mu.Unlock()

	s.logger.Info("simulated failure", "scenario", id, "resource", ref.String(), "kind", string(kind), "before", m.Before, "after", m.After)
	s.listeners.emit(Event{Family: catalog.FamilyCluster, Type: EventMutated, ScenarioID: id, Ref: ref})
	return m, nil
}

func applyFailure(c *catalog.ClusterSnapshot, ref Ref, kind FailureKind) (Mutation, error) {
	m := Mutation{Ref: ref, Kind: kind}
	unsupported := fmt.Errorf("%s on %s: %w", kind, ref, ErrUnsupported)

	switch kind {
	case FailureKill, FailureRestart:
		if ref.Kind != KindPod {
			return m, unsupported
		}
		pod, ok := c.Pod(ref.Name)
		if !ok {
			return m, &catalog.NotFoundError{Kind: string(KindPod), Name: ref.Name}
		}
		if kind == FailureKill {
			m.Before, m.After = pod.Status.String(), status.PodFailed.String()
			pod.Status = status.PodFailed
			pod.Reason = "Killed"
			return m, nil
		}
		m.Before = fmt.Sprintf("restarts=%d", pod.Restarts)
		pod.Restarts++
		m.After = fmt.Sprintf("restarts=%d", pod.Restarts)
		return m, nil

	case FailureNodeDown:
		if ref.Kind != KindNode {
			return m, unsupported
		}
		node, ok := c.Node(ref.Name)
		if !ok {
			return m, &catalog.NotFoundError{Kind: string(KindNode), Name: ref.Name}
		}
		m.Before, m.After = node.Status.String(), status.NodeNotReady.String()
		node.Status = status.NodeNotReady
		return m, nil

	case FailureDegrade, FailureOutage:
		if ref.Kind != KindComponent {
			return m, unsupported
		}
		comp, ok := c.Component(catalog.ComponentID(ref.Name))
		if !ok {
			return m, &catalog.NotFoundError{Kind: string(KindComponent), Name: ref.Name}
		}
		target := status.Degraded
		if kind == FailureOutage {
			target = status.Unhealthy
		}
		m.Before, m.After = comp.Status.String(), target.String()
		comp.Status = target
		return m, nil

	default:
		return m, fmt.Errorf("failure kind %q: %w", kind, ErrUnsupported)
	}
}

// Subscribe registers fn for store changes and returns a function that removes it.
func (s *ClusterStore) Subscribe(fn func(Event)) func() {
	return s.listeners.add(fn)
}
