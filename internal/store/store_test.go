package store

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/codex-k8s/scenariosim/internal/catalog"
	"github.com/codex-k8s/scenariosim/internal/status"
)

func defaultCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	cat, err := catalog.Default()
	require.NoError(t, err)
	return cat
}

func TestClusterLoadEveryScenario(t *testing.T) {
	cat := defaultCatalog(t)
	s := NewClusterStore(cat, nil)
	assert.Nil(t, s.Current())

	for _, id := range cat.ClusterIDs() {
		require.NoError(t, s.Load(id))
		assert.Equal(t, id, s.Current().ID)
		assert.True(t, s.Selection().Empty())
	}
}

func TestClusterLoadUnknown(t *testing.T) {
	s := NewClusterStore(defaultCatalog(t), nil)
	require.NoError(t, s.Load("healthy"))

	err := s.Load("nope")
	assert.ErrorIs(t, err, catalog.ErrNotFound)
	assert.Equal(t, "healthy", s.Current().ID, "failed load keeps the active scenario")
}

func TestClusterReloadClearsSelection(t *testing.T) {
	s := NewClusterStore(defaultCatalog(t), nil)
	require.NoError(t, s.Load("healthy"))
	require.NoError(t, s.Select(Ref{Kind: KindPod, Name: "web-7d9c6b-abcde"}))
	require.NoError(t, s.Select(Ref{Kind: KindComponent, Name: "etcd"}))

	sel := s.Selection()
	assert.Equal(t, "web-7d9c6b-abcde", sel.Pod, "cluster selections are flat")
	assert.Equal(t, catalog.Etcd, sel.Component)

	require.NoError(t, s.Load("healthy"))
	assert.True(t, s.Selection().Empty())
}

func TestClusterSelectErrors(t *testing.T) {
	s := NewClusterStore(defaultCatalog(t), nil)

	err := s.Select(Ref{Kind: KindPod, Name: "web"})
	assert.ErrorIs(t, err, catalog.ErrNotFound)

	require.NoError(t, s.Load("healthy"))
	assert.ErrorIs(t, s.Select(Ref{Kind: KindPod, Name: "ghost"}), catalog.ErrNotFound)
	assert.ErrorIs(t, s.Select(Ref{Kind: KindStage, Name: "build"}), ErrUnsupported)
	assert.NoError(t, s.Select(Ref{Kind: KindService, Name: "web"}))
	assert.NoError(t, s.Select(Ref{Kind: KindIngress, Name: "shop"}))
	assert.NoError(t, s.Select(Ref{Kind: KindDeployment, Name: "api"}))
	assert.NoError(t, s.Select(Ref{Kind: KindNode, Name: "worker-2"}))
}

func TestRestartIncrementsOnlyTargetPod(t *testing.T) {
	s := NewClusterStore(defaultCatalog(t), nil)
	require.NoError(t, s.Load("crashLoopBackOff"))
	before := s.Current()

	m, err := s.SimulateFailure(Ref{Kind: KindPod, Name: "api-6c8d9f-pqrst"}, FailureRestart)
	require.NoError(t, err)
	assert.Equal(t, "restarts=7", m.Before)
	assert.Equal(t, "restarts=8", m.After)

	after := s.Current()
	want := before.Clone()
	pod, _ := want.Pod("api-6c8d9f-pqrst")
	pod.Restarts++
	assert.True(t, reflect.DeepEqual(want, after), "only the restart counter may change")
}

func TestSimulateFailureKinds(t *testing.T) {
	tests := []struct {
		name    string
		ref     Ref
		kind    FailureKind
		check   func(t *testing.T, c *catalog.ClusterSnapshot)
		wantErr error
	}{
		{
			name: "kill pod",
			ref:  Ref{Kind: KindPod, Name: "web-7d9c6b-abcde"},
			kind: FailureKill,
			check: func(t *testing.T, c *catalog.ClusterSnapshot) {
				pod, _ := c.Pod("web-7d9c6b-abcde")
				assert.Equal(t, status.PodFailed, pod.Status)
				assert.Equal(t, 0, pod.Restarts)
			},
		},
		{
			name: "node down",
			ref:  Ref{Kind: KindNode, Name: "worker-1"},
			kind: FailureNodeDown,
			check: func(t *testing.T, c *catalog.ClusterSnapshot) {
				node, _ := c.Node("worker-1")
				assert.Equal(t, status.NodeNotReady, node.Status)
			},
		},
		{
			name: "degrade etcd",
			ref:  Ref{Kind: KindComponent, Name: "etcd"},
			kind: FailureDegrade,
			check: func(t *testing.T, c *catalog.ClusterSnapshot) {
				comp, _ := c.Component(catalog.Etcd)
				assert.Equal(t, status.Degraded, comp.Status)
			},
		},
		{
			name: "api-server outage",
			ref:  Ref{Kind: KindComponent, Name: "api-server"},
			kind: FailureOutage,
			check: func(t *testing.T, c *catalog.ClusterSnapshot) {
				comp, _ := c.Component(catalog.APIServer)
				assert.Equal(t, status.Unhealthy, comp.Status)
			},
		},
		{
			name:    "unknown pod",
			ref:     Ref{Kind: KindPod, Name: "ghost"},
			kind:    FailureKill,
			wantErr: catalog.ErrNotFound,
		},
		{
			name:    "unknown component",
			ref:     Ref{Kind: KindComponent, Name: "cloud-controller"},
			kind:    FailureDegrade,
			wantErr: catalog.ErrNotFound,
		},
		{
			name:    "kill a node",
			ref:     Ref{Kind: KindNode, Name: "worker-1"},
			kind:    FailureKill,
			wantErr: ErrUnsupported,
		},
		{
			name:    "unknown kind",
			ref:     Ref{Kind: KindPod, Name: "web-7d9c6b-abcde"},
			kind:    FailureKind("meteor"),
			wantErr: ErrUnsupported,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewClusterStore(defaultCatalog(t), nil)
			require.NoError(t, s.Load("healthy"))
			before := s.Current()

			_, err := s.SimulateFailure(tt.ref, tt.kind)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Equal(t, before, s.Current(), "rejected failures leave the scenario untouched")
				return
			}
			require.NoError(t, err)
			tt.check(t, s.Current())
		})
	}
}

func TestSimulateFailureWithoutScenario(t *testing.T) {
	s := NewClusterStore(defaultCatalog(t), nil)
	_, err := s.SimulateFailure(Ref{Kind: KindPod, Name: "x"}, FailureKill)
	assert.ErrorIs(t, err, catalog.ErrNotFound)
}

func TestSimulateFailureDoesNotTouchCatalog(t *testing.T) {
	cat := defaultCatalog(t)
	s := NewClusterStore(cat, nil)
	require.NoError(t, s.Load("healthy"))
	_, err := s.SimulateFailure(Ref{Kind: KindPod, Name: "web-7d9c6b-abcde"}, FailureKill)
	require.NoError(t, err)

	require.NoError(t, s.Load("healthy"))
	pod, ok := s.Current().Pod("web-7d9c6b-abcde")
	require.True(t, ok)
	assert.Equal(t, status.PodRunning, pod.Status)
}

func TestCurrentReturnsCopy(t *testing.T) {
	s := NewClusterStore(defaultCatalog(t), nil)
	require.NoError(t, s.Load("healthy"))

	c := s.Current()
	c.Pods[0].Status = status.PodFailed

	assert.Equal(t, status.PodRunning, s.Current().Pods[0].Status)
}

func TestClusterEvents(t *testing.T) {
	s := NewClusterStore(defaultCatalog(t), nil)
	var events []EventType
	unsubscribe := s.Subscribe(func(ev Event) { events = append(events, ev.Type) })

	require.NoError(t, s.Load("healthy"))
	require.NoError(t, s.Select(Ref{Kind: KindPod, Name: "web-7d9c6b-abcde"}))
	_, err := s.SimulateFailure(Ref{Kind: KindPod, Name: "web-7d9c6b-abcde"}, FailureKill)
	require.NoError(t, err)
	unsubscribe()
	require.NoError(t, s.Load("healthy"))

	assert.Equal(t, []EventType{EventLoaded, EventSelected, EventMutated}, events)
}

func TestPipelineCascadingSelection(t *testing.T) {
	s := NewPipelineStore(defaultCatalog(t), nil)
	require.NoError(t, s.Load("success"))

	require.NoError(t, s.SelectStage("build"))
	require.NoError(t, s.SelectJob("compile"))
	require.NoError(t, s.SelectStep("go-build"))
	assert.Equal(t, PipelineSelection{Stage: "build", Job: "compile", Step: "go-build"}, s.Selection())

	require.NoError(t, s.SelectJob("image"))
	assert.Equal(t, PipelineSelection{Stage: "build", Job: "image"}, s.Selection(), "job reselection clears step")

	require.NoError(t, s.SelectStep("docker-push"))
	require.NoError(t, s.SelectStage("deploy"))
	assert.Equal(t, PipelineSelection{Stage: "deploy"}, s.Selection(), "stage reselection clears job and step")
}

func TestPipelineSelectByRef(t *testing.T) {
	s := NewPipelineStore(defaultCatalog(t), nil)
	require.NoError(t, s.Load("success"))

	require.NoError(t, s.Select(Ref{Kind: KindStage, Name: "test"}))
	require.NoError(t, s.Select(Ref{Kind: KindJob, Name: "lint"}))
	require.NoError(t, s.Select(Ref{Kind: KindStep, Name: "golangci"}))
	assert.Equal(t, PipelineSelection{Stage: "test", Job: "lint", Step: "golangci"}, s.Selection())

	assert.ErrorIs(t, s.Select(Ref{Kind: KindPod, Name: "x"}), ErrUnsupported)
	assert.ErrorIs(t, s.Select(Ref{Kind: KindJob, Name: "ghost"}), catalog.ErrNotFound)
	assert.Equal(t, PipelineSelection{Stage: "test", Job: "lint", Step: "golangci"}, s.Selection(), "failed select keeps selection")
}

func TestPipelineLoadResetsSelection(t *testing.T) {
	cat := defaultCatalog(t)
	s := NewPipelineStore(cat, nil)

	assert.ErrorIs(t, s.SelectStage("build"), catalog.ErrNotFound)

	for _, id := range cat.PipelineIDs() {
		require.NoError(t, s.Load(id))
		assert.Equal(t, id, s.Current().ID)
		assert.True(t, s.Selection().Empty())
	}

	require.NoError(t, s.Load("success"))
	require.NoError(t, s.SelectStage("build"))
	require.NoError(t, s.Load("success"))
	assert.True(t, s.Selection().Empty())

	assert.ErrorIs(t, s.Load("missing"), catalog.ErrNotFound)
}

func TestParseRef(t *testing.T) {
	ref, err := ParseRef("pod/web-1")
	require.NoError(t, err)
	assert.Equal(t, Ref{Kind: KindPod, Name: "web-1"}, ref)
	assert.Equal(t, "pod/web-1", ref.String())

	ref, err = ParseRef("Component/etcd")
	require.NoError(t, err)
	assert.Equal(t, KindComponent, ref.Kind)

	_, err = ParseRef("pod")
	assert.Error(t, err)
	_, err = ParseRef("volume/data")
	assert.Error(t, err)

	var decoded Ref
	require.NoError(t, decoded.UnmarshalText([]byte("node/worker-1")))
	assert.Equal(t, Ref{Kind: KindNode, Name: "worker-1"}, decoded)

	kind, err := ParseFailureKind("nodedown")
	require.NoError(t, err)
	assert.Equal(t, FailureNodeDown, kind)
	_, err = ParseFailureKind("meteor")
	assert.Error(t, err)
}
