// Package catalog holds the immutable, pre-authored scenarios replayed by the
// simulator: cluster snapshots and pipeline definitions.
package catalog

import (
	"slices"
	"time"

	"github.com/codex-k8s/scenariosim/internal/status"
)

// Family distinguishes the two scenario schemas.
type Family string

const (
	// FamilyCluster is a cluster topology snapshot.
	FamilyCluster Family = "cluster"
	// FamilyPipeline is a build/deploy pipeline definition.
	FamilyPipeline Family = "pipeline"
)

// ComponentID identifies one of the four fixed control plane components.
type ComponentID string

const (
	APIServer         ComponentID = "api-server"
	Etcd              ComponentID = "etcd"
	ControllerManager ComponentID = "controller-manager"
	Scheduler         ComponentID = "scheduler"
)

// ComponentIDs lists the control plane components in display order.
var ComponentIDs = []ComponentID{APIServer, Etcd, ControllerManager, Scheduler}

// Component is a control plane component.
type Component struct {
	ID     ComponentID   `yaml:"id" json:"id"`
	Name   string        `yaml:"name" json:"name"`
	Status status.Health `yaml:"status" json:"status"`
}

// ClusterSnapshot is a named cluster topology with pre-assigned statuses.
type ClusterSnapshot struct {
	ID           string       `yaml:"id" json:"id"`
	Name         string       `yaml:"name" json:"name"`
	Description  string       `yaml:"description,omitempty" json:"description,omitempty"`
	ControlPlane []Component  `yaml:"controlPlane" json:"controlPlane"`
	Nodes        []Node       `yaml:"nodes" json:"nodes"`
	Pods         []Pod        `yaml:"pods" json:"pods"`
	Services     []Service    `yaml:"services,omitempty" json:"services,omitempty"`
	Ingresses    []Ingress    `yaml:"ingresses,omitempty" json:"ingresses,omitempty"`
	Deployments  []Deployment `yaml:"deployments,omitempty" json:"deployments,omitempty"`
}

// Node is a cluster node.
type Node struct {
	Name    string            `yaml:"name" json:"name"`
	Role    string            `yaml:"role,omitempty" json:"role,omitempty"`
	Version string            `yaml:"version,omitempty" json:"version,omitempty"`
	Status  status.NodeStatus `yaml:"status" json:"status"`
}

// Pod is a workload pod scheduled on a node.
type Pod struct {
	Name      string           `yaml:"name" json:"name"`
	Namespace string           `yaml:"namespace,omitempty" json:"namespace,omitempty"`
	Node      string           `yaml:"node,omitempty" json:"node,omitempty"`
	Image     string           `yaml:"image,omitempty" json:"image,omitempty"`
	Status    status.PodStatus `yaml:"status" json:"status"`
	Restarts  int              `yaml:"restarts" json:"restarts"`
	Reason    string           `yaml:"reason,omitempty" json:"reason,omitempty"`
}

// Service exposes a set of pods.
type Service struct {
	Name      string                `yaml:"name" json:"name"`
	Namespace string                `yaml:"namespace,omitempty" json:"namespace,omitempty"`
	Type      string                `yaml:"type,omitempty" json:"type,omitempty"`
	Selector  map[string]string     `yaml:"selector,omitempty" json:"selector,omitempty"`
	Targets   []string              `yaml:"targets,omitempty" json:"targets,omitempty"`
	Status    status.EndpointStatus `yaml:"status" json:"status"`
}

// Ingress routes external traffic to a service.
type Ingress struct {
	Name    string                `yaml:"name" json:"name"`
	Host    string                `yaml:"host,omitempty" json:"host,omitempty"`
	Backend string                `yaml:"backend,omitempty" json:"backend,omitempty"`
	Status  status.EndpointStatus `yaml:"status" json:"status"`
}

// Deployment manages a replicated set of pods.
type Deployment struct {
	Name          string                  `yaml:"name" json:"name"`
	Namespace     string                  `yaml:"namespace,omitempty" json:"namespace,omitempty"`
	Replicas      int                     `yaml:"replicas" json:"replicas"`
	ReadyReplicas int                     `yaml:"readyReplicas" json:"readyReplicas"`
	Status        status.DeploymentStatus `yaml:"status" json:"status"`
}

// Pipeline is an ordered sequence of stages.
type Pipeline struct {
	ID          string  `yaml:"id" json:"id"`
	Name        string  `yaml:"name" json:"name"`
	Description string  `yaml:"description,omitempty" json:"description,omitempty"`
	Trigger     string  `yaml:"trigger,omitempty" json:"trigger,omitempty"`
	Stages      []Stage `yaml:"stages" json:"stages"`
}

// Stage is an ordered group of jobs. DependsOn is informational only.
type Stage struct {
	ID        string                `yaml:"id" json:"id"`
	Name      string                `yaml:"name" json:"name"`
	Status    status.PipelineStatus `yaml:"status" json:"status"`
	DependsOn []string              `yaml:"dependsOn,omitempty" json:"dependsOn,omitempty"`
	Jobs      []Job                 `yaml:"jobs,omitempty" json:"jobs,omitempty"`
}

// Job is an ordered group of steps.
type Job struct {
	ID     string                `yaml:"id" json:"id"`
	Name   string                `yaml:"name" json:"name"`
	Status status.PipelineStatus `yaml:"status" json:"status"`
	Steps  []Step                `yaml:"steps,omitempty" json:"steps,omitempty"`
}

// Step is a single command of a job.
type Step struct {
	ID       string                `yaml:"id" json:"id"`
	Name     string                `yaml:"name" json:"name"`
	Status   status.PipelineStatus `yaml:"status" json:"status"`
	Duration time.Duration         `yaml:"duration,omitempty" json:"duration,omitempty"`
	Log      []string              `yaml:"log,omitempty" json:"log,omitempty"`
}

// Component returns the control plane component with the given id.
func (c *ClusterSnapshot) Component(id ComponentID) (*Component, bool) {
	for i := range c.ControlPlane {
		if c.ControlPlane[i].ID == id {
			return &c.ControlPlane[i], true
		}
	}
	return nil, false
}

// Node returns the node with the given name.
func (c *ClusterSnapshot) Node(name string) (*Node, bool) {
	for i := range c.Nodes {
		if c.Nodes[i].Name == name {
			return &c.Nodes[i], true
		}
	}
	return nil, false
}

// Pod returns the pod with the given name.
func (c *ClusterSnapshot) Pod(name string) (*Pod, bool) {
	for i := range c.Pods {
		if c.Pods[i].Name == name {
			return &c.Pods[i], true
		}
	}
	return nil, false
}

// Clone returns a deep copy of c.
func (c *ClusterSnapshot) Clone() *ClusterSnapshot {
	if c == nil {
		return nil
	}
	out := *c
	out.ControlPlane = slices.Clone(c.ControlPlane)
	out.Nodes = slices.Clone(c.Nodes)
	out.Pods = slices.Clone(c.Pods)
	out.Ingresses = slices.Clone(c.Ingresses)
	out.Deployments = slices.Clone(c.Deployments)
	if c.Services != nil {
		out.Services = make([]Service, len(c.Services))
		for i, svc := range c.Services {
			svc.Targets = slices.Clone(svc.Targets)
			if svc.Selector != nil {
				sel := make(map[string]string, len(svc.Selector))
				for k, v := range svc.Selector {
					sel[k] = v
				}
				svc.Selector = sel
			}
			out.Services[i] = svc
		}
	}
	return &out
}

// Clone returns a deep copy of p.
func (p *Pipeline) Clone() *Pipeline {
	if p == nil {
		return nil
	}
	out := *p
	if p.Stages != nil {
		out.Stages = make([]Stage, len(p.Stages))
		for i, st := range p.Stages {
			st.DependsOn = slices.Clone(st.DependsOn)
			if st.Jobs != nil {
				jobs := make([]Job, len(st.Jobs))
				for j, job := range st.Jobs {
					if job.Steps != nil {
						steps := make([]Step, len(job.Steps))
						for k, step := range job.Steps {
							step.Log = slices.Clone(step.Log)
							steps[k] = step
						}
						job.Steps = steps
					}
					jobs[j] = job
				}
				st.Jobs = jobs
			}
			out.Stages[i] = st
		}
	}
	return &out
}

// Stage returns the stage with the given id and its index.
func (p *Pipeline) Stage(id string) (*Stage, int, bool) {
	for i := range p.Stages {
		if p.Stages[i].ID == id {
			return &p.Stages[i], i, true
		}
	}
	return nil, -1, false
}

// Job returns the job with the given id and the stage containing it.
func (p *Pipeline) Job(id string) (*Job, *Stage, bool) {
	for i := range p.Stages {
		st := &p.Stages[i]
		for j := range st.Jobs {
			if st.Jobs[j].ID == id {
				return &st.Jobs[j], st, true
			}
		}
	}
	return nil, nil, false
}

// Step returns the step with the given id and the job containing it.
func (p *Pipeline) Step(id string) (*Step, *Job, bool) {
	for i := range p.Stages {
		for j := range p.Stages[i].Jobs {
			job := &p.Stages[i].Jobs[j]
			for k := range job.Steps {
				if job.Steps[k].ID == id {
					return &job.Steps[k], job, true
				}
			}
		}
	}
	return nil, nil, false
}
