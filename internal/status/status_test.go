package status

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestParsePipelineStatus(t *testing.T) {
	tests := []struct {
		in      string
		want    PipelineStatus
		wantErr bool
	}{
		{in: "pending", want: Pending},
		{in: "Running", want: Running},
		{in: " succeeded ", want: Succeeded},
		{in: "failed", want: Failed},
		{in: "skipped", want: Skipped},
		{in: "cancelled", want: Cancelled},
		{in: "success", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParsePipelineStatus(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestHalts(t *testing.T) {
	halting := map[PipelineStatus]bool{Failed: true, Skipped: true}
	for s := Pending; s < pipelineCount; s++ {
		assert.Equal(t, halting[s], s.Halts(), s.String())
	}
}

func TestEveryStatusHasBadge(t *testing.T) {
	for s := Pending; s < pipelineCount; s++ {
		assert.NotEmpty(t, s.Badge().Label, s.String())
	}
	for s := PodRunning; s < podCount; s++ {
		assert.NotEmpty(t, s.Badge().Label, s.String())
	}
	for s := Healthy; s < healthCount; s++ {
		assert.NotEmpty(t, s.Badge().Label, s.String())
	}
	for s := NodeReady; s < nodeCount; s++ {
		assert.NotEmpty(t, s.Badge().Label, s.String())
	}
	for s := EndpointActive; s < endpointCount; s++ {
		assert.NotEmpty(t, s.Badge().Label, s.String())
	}
	for s := DeploymentAvailable; s < deploymentCount; s++ {
		assert.NotEmpty(t, s.Badge().Label, s.String())
	}
}

func TestStatusYAMLRoundTrip(t *testing.T) {
	type pod struct {
		Status PodStatus `yaml:"status"`
	}

	var p pod
	require.NoError(t, yaml.Unmarshal([]byte("status: failed\n"), &p))
	assert.Equal(t, PodFailed, p.Status)

	err := yaml.Unmarshal([]byte("status: exploded\n"), &p)
	assert.Error(t, err)

	out, err := yaml.Marshal(pod{Status: PodSucceeded})
	require.NoError(t, err)
	assert.Equal(t, "status: succeeded\n", string(out))
}

func TestBadgeJSON(t *testing.T) {
	out, err := json.Marshal(NodeNotReady.Badge())
	require.NoError(t, err)
	assert.JSONEq(t, `{"label":"NotReady","tone":"red","icon":"✕"}`, string(out))
}

func TestInvalidValueString(t *testing.T) {
	assert.Equal(t, "invalid", PodStatus(42).String())
}

func TestInvalidValueBadge(t *testing.T) {
	want := Badge{Label: "Invalid", Tone: ToneGray, Icon: "?"}
	assert.Equal(t, want, PipelineStatus(99).Badge())
	assert.Equal(t, want, PipelineStatus(-1).Badge())
	assert.Equal(t, want, Health(7).Badge())
	assert.Equal(t, want, NodeStatus(7).Badge())
	assert.Equal(t, want, PodStatus(42).Badge())
	assert.Equal(t, want, EndpointStatus(9).Badge())
	assert.Equal(t, want, DeploymentStatus(9).Badge())
}
