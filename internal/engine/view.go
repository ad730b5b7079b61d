package engine

import (
	"time"

	"github.com/codex-k8s/scenariosim/internal/catalog"
	"github.com/codex-k8s/scenariosim/internal/playback"
	"github.com/codex-k8s/scenariosim/internal/status"
	"github.com/codex-k8s/scenariosim/internal/store"
)

// ClusterView is the read contract for the cluster topology screen.
type ClusterView struct {
	Scenario  *catalog.ClusterSnapshot `json:"scenario"`
	Selection store.ClusterSelection   `json:"selection"`
	Summary   ClusterSummary           `json:"summary"`
}

// ClusterSummary aggregates resource counts for the header line.
type ClusterSummary struct {
	ControlPlane status.Health `json:"controlPlane"`
	Nodes        int           `json:"nodes"`
	NodesReady   int           `json:"nodesReady"`
	Pods         int           `json:"pods"`
	PodsRunning  int           `json:"podsRunning"`
	PodsFailed   int           `json:"podsFailed"`
	Restarts     int           `json:"restarts"`
}

// StageView is one stage as shown by the pipeline screen.
type StageView struct {
	ID       string                `json:"id"`
	Name     string                `json:"name"`
	Status   status.PipelineStatus `json:"status"`
	Badge    status.Badge          `json:"badge"`
	Phase    playback.Phase        `json:"phase"`
	Selected bool                  `json:"selected"`
}

// PipelineView is the read contract for the pipeline screen.
type PipelineView struct {
	Session          string                  `json:"session,omitempty"`
	Pipeline         *catalog.Pipeline       `json:"pipeline"`
	Selection        store.PipelineSelection `json:"selection"`
	State            playback.State          `json:"state"`
	ActiveStageIndex int                     `json:"activeStageIndex"`
	ActiveJobIndex   int                     `json:"activeJobIndex"`
	ActiveStepIndex  int                     `json:"activeStepIndex"`
	IsAnimating      bool                    `json:"isAnimating"`
	IsPaused         bool                    `json:"isPaused"`
	Speed            time.Duration           `json:"speed"`
	Stages           []StageView             `json:"stages"`
}

// IsStageActive reports whether stage i is under the cursor.
func (v PipelineView) IsStageActive(i int) bool { return v.phase(i) == playback.PhaseActive }

// IsStageComplete reports whether the cursor has passed stage i.
func (v PipelineView) IsStageComplete(i int) bool { return v.phase(i) == playback.PhaseComplete }

// IsStagePending reports whether the cursor has not reached stage i.
func (v PipelineView) IsStagePending(i int) bool { return v.phase(i) == playback.PhasePending }

func (v PipelineView) phase(i int) playback.Phase {
	if i < 0 || i >= len(v.Stages) {
		return playback.PhasePending
	}
	return v.Stages[i].Phase
}

// ClusterView returns the active cluster scenario with selections and counts.
// Scenario is nil when nothing is loaded.
func (e *Engine) ClusterView() ClusterView {
	c := e.clusters.Current()
	v := ClusterView{Scenario: c, Selection: e.clusters.Selection()}
	if c != nil {
		v.Summary = summarize(c)
	}
	return v
}

// PipelineView returns the active pipeline combined with the playback cursor.
func (e *Engine) PipelineView() PipelineView {
	e.loadMu.RLock()
	p := e.pipelines.Current()
	sel := e.pipelines.Selection()
	snap := e.player.Snapshot()
	e.loadMu.RUnlock()

	v := PipelineView{
		Session:          e.Session(),
		Pipeline:         p,
		Selection:        sel,
		State:            snap.State,
		ActiveStageIndex: snap.Cursor.Stage,
		ActiveJobIndex:   snap.Cursor.Job,
		ActiveStepIndex:  snap.Cursor.Step,
		IsAnimating:      snap.Cursor.Animating,
		IsPaused:         snap.Cursor.Paused,
		Speed:            snap.Cursor.Speed,
	}
	v.Stages = make([]StageView, len(snap.Units))
	for i, u := range snap.Units {
		v.Stages[i] = StageView{
			ID:       u.ID,
			Name:     u.Name,
			Status:   u.Status,
			Badge:    u.Status.Badge(),
			Phase:    snap.Phase(i),
			Selected: sel.Stage != "" && sel.Stage == u.ID,
		}
	}
	return v
}

func summarize(c *catalog.ClusterSnapshot) ClusterSummary {
	s := ClusterSummary{ControlPlane: status.Healthy, Nodes: len(c.Nodes), Pods: len(c.Pods)}
	// Health values are ordered by severity.
	for _, comp := range c.ControlPlane {
		if comp.Status > s.ControlPlane {
			s.ControlPlane = comp.Status
		}
	}
	for _, n := range c.Nodes {
		if n.Status == status.NodeReady {
			s.NodesReady++
		}
	}
	for _, p := range c.Pods {
		switch p.Status {
		case status.PodRunning:
			s.PodsRunning++
		case status.PodFailed:
			s.PodsFailed++
		}
		s.Restarts += p.Restarts
	}
	return s
}
