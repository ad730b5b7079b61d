// Package engine composes the scenario catalog, the per-family snapshot
// stores, the playback scheduler and the notification surface behind the
// command and read contracts used by the presentation layer.
package engine

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/codex-k8s/scenariosim/internal/catalog"
	"github.com/codex-k8s/scenariosim/internal/hooks"
	"github.com/codex-k8s/scenariosim/internal/logging"
	"github.com/codex-k8s/scenariosim/internal/playback"
	"github.com/codex-k8s/scenariosim/internal/store"
)

// Source resolves scenarios of both families. *catalog.Catalog implements it.
type Source interface {
	store.ClusterSource
	store.PipelineSource
}

// Options configures an Engine. Zero values fall back to playback defaults.
type Options struct {
	Speed          time.Duration
	AutoStartDelay time.Duration
	Clock          playback.Clock
	Logger         *slog.Logger
	Sinks          []hooks.Sink
	// NewSession generates mount session ids; uuid.NewString by default.
	NewSession func() string
}

// MountOptions controls how a pipeline view is mounted.
type MountOptions struct {
	// AutoStart starts playback after the configured auto-start delay.
	AutoStart bool
}

// Engine is the playback engine facade.
type Engine struct {
	src       Source
	clusters  *store.ClusterStore
	pipelines *store.PipelineStore
	player    *playback.Scheduler
	hooks     *hooks.Dispatcher
	logger    *slog.Logger

	autoStartDelay time.Duration
	newSession     func() string

	// loadMu keeps the pipeline store and the player sequence in step.
	loadMu sync.RWMutex

	mu      sync.Mutex
	session string
}

// New wires an engine over src.
func New(src Source, opts Options) *Engine {
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	delay := opts.AutoStartDelay
	if delay < 0 {
		delay = 0
	}
	newSession := opts.NewSession
	if newSession == nil {
		newSession = uuid.NewString
	}

	e := &Engine{
		src:            src,
		clusters:       store.NewClusterStore(src, logger),
		pipelines:      store.NewPipelineStore(src, logger),
		hooks:          hooks.NewDispatcher(opts.Sinks...),
		logger:         logger,
		autoStartDelay: delay,
		newSession:     newSession,
	}
	e.player = playback.New(nil,
		playback.WithSpeed(opts.Speed),
		playback.WithClock(opts.Clock),
		playback.WithLogger(logger),
		playback.WithOnComplete(e.playbackFinished),
	)
	return e
}

// Register adds a notification sink.
func (e *Engine) Register(s hooks.Sink) {
	e.hooks.Register(s)
}

// Session returns the id of the current mount, empty when nothing is mounted.
func (e *Engine) Session() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.session
}

// LoadCluster activates a cluster scenario and clears cluster selections.
func (e *Engine) LoadCluster(id string) error {
	return e.clusters.Load(id)
}

// LoadPipeline activates a pipeline. Any in-flight playback is discarded and
// the cursor returns to Idle over the new stages. Readers never observe the
// new pipeline paired with the old cursor.
func (e *Engine) LoadPipeline(id string) error {
	p, err := e.src.Pipeline(id)
	if err != nil {
		return fmt.Errorf("load pipeline: %w", err)
	}

	e.loadMu.Lock()
	// The player is replaced first so a tick racing the load is discarded
	// before the store holds the new pipeline.
	notify := e.player.Replace(unitsFor(p))
	err = e.pipelines.Load(id)
	e.loadMu.Unlock()

	notify()
	return err
}

// Select routes ref to the store of its family.
func (e *Engine) Select(ref store.Ref) error {
	switch ref.Kind {
	case store.KindStage, store.KindJob, store.KindStep:
		return e.pipelines.Select(ref)
	default:
		return e.clusters.Select(ref)
	}
}

// ClearSelection empties the selections of both families.
func (e *Engine) ClearSelection() {
	e.clusters.ClearSelection()
	e.pipelines.ClearSelection()
}

// SimulateFailure applies a failure to the active cluster scenario and
// notifies the registered sinks.
func (e *Engine) SimulateFailure(ref store.Ref, kind store.FailureKind) (store.Mutation, error) {
	m, err := e.clusters.SimulateFailure(ref, kind)
	if err != nil {
		return store.Mutation{}, err
	}
	e.hooks.Dispatch(hooks.Notification{
		Session:  e.Session(),
		Kind:     notificationKind(kind),
		Resource: ref.String(),
		Message:  failureMessage(m),
	})
	return m, nil
}

// Start begins playback of the loaded pipeline.
func (e *Engine) Start() error { return e.player.Start() }

// Pause freezes playback.
func (e *Engine) Pause() error { return e.player.Pause() }

// Resume continues paused playback.
func (e *Engine) Resume() error { return e.player.Resume() }

// Reset returns playback to Idle.
func (e *Engine) Reset() { e.player.Reset() }

// SetSpeed changes the stage interval.
func (e *Engine) SetSpeed(d time.Duration) error { return e.player.SetSpeed(d) }

// Mount loads pipelineID for a new view and returns its session id. With
// AutoStart, playback starts after the configured delay.
func (e *Engine) Mount(pipelineID string, opts MountOptions) (string, error) {
	if err := e.LoadPipeline(pipelineID); err != nil {
		return "", err
	}

	session := e.newSession()
	e.mu.Lock()
	e.session = session
	e.mu.Unlock()

	logger := e.logger.With("session", session)
	logger.Info("pipeline mounted", "pipeline", pipelineID, "autoStart", opts.AutoStart)
	if !opts.AutoStart {
		return session, nil
	}
	if err := e.player.StartAfter(e.autoStartDelay); err != nil {
		return session, fmt.Errorf("auto-start %s: %w", pipelineID, err)
	}
	return session, nil
}

// Unmount cancels any pending timer and drops playback listeners.
func (e *Engine) Unmount() {
	e.player.Close()

	e.mu.Lock()
	session := e.session
	e.session = ""
	e.mu.Unlock()

	if session != "" {
		e.logger.Info("pipeline unmounted", "session", session)
	}
}

// SubscribePipeline calls fn with a fresh view after every playback change
// and returns a function that removes it.
func (e *Engine) SubscribePipeline(fn func(PipelineView)) func() {
	return e.player.Subscribe(func(playback.Snapshot) { fn(e.PipelineView()) })
}

// SubscribeCluster calls fn after every cluster store change.
func (e *Engine) SubscribeCluster(fn func(store.Event)) func() {
	return e.clusters.Subscribe(fn)
}

func (e *Engine) playbackFinished(snap playback.Snapshot) {
	if e.superseded(snap) {
		e.logger.Debug("dropped notification for a replaced pipeline", "state", snap.State.String())
		return
	}
	n := hooks.Notification{Session: e.Session()}
	unit := playback.Unit{}
	if i := snap.Cursor.Stage; i >= 0 && i < len(snap.Units) {
		unit = snap.Units[i]
	}
	n.Resource = store.Ref{Kind: store.KindStage, Name: unit.ID}.String()

	switch snap.State {
	case playback.StoppedFailure:
		n.Kind = hooks.KindPlaybackStopped
		n.Message = fmt.Sprintf("playback stopped at %s stage %s", unit.Status, unit.ID)
	default:
		n.Kind = hooks.KindPlaybackCompleted
		n.Message = "playback completed"
	}
	e.hooks.Dispatch(n)
}

// superseded reports whether a load replaced the sequence snap was taken from.
func (e *Engine) superseded(snap playback.Snapshot) bool {
	e.loadMu.RLock()
	cur := e.player.Snapshot()
	e.loadMu.RUnlock()

	if len(cur.Units) != len(snap.Units) {
		return true
	}
	for i := range cur.Units {
		if cur.Units[i].ID != snap.Units[i].ID {
			return true
		}
	}
	return false
}

// unitsFor flattens pipeline stages into playback units. The job and step
// focus is the first job of the stage and the first step of that job.
func unitsFor(p *catalog.Pipeline) []playback.Unit {
	if p == nil {
		return nil
	}
	out := make([]playback.Unit, 0, len(p.Stages))
	for _, st := range p.Stages {
		u := playback.Unit{ID: st.ID, Name: st.Name, Status: st.Status, Job: -1, Step: -1}
		if len(st.Jobs) > 0 {
			u.Job = 0
			if len(st.Jobs[0].Steps) > 0 {
				u.Step = 0
			}
		}
		out = append(out, u)
	}
	return out
}

func notificationKind(kind store.FailureKind) hooks.Kind {
	switch kind {
	case store.FailureKill:
		return hooks.KindPodKilled
	case store.FailureRestart:
		return hooks.KindPodRestarted
	case store.FailureNodeDown:
		return hooks.KindNodeDown
	default:
		return hooks.KindComponentDegraded
	}
}

func failureMessage(m store.Mutation) string {
	switch m.Kind {
	case store.FailureKill:
		return "pod killed"
	case store.FailureRestart:
		return "pod restarted"
	case store.FailureNodeDown:
		return "node down"
	default:
		return fmt.Sprintf("component %s", m.After)
	}
}
