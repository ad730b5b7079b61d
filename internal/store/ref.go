package store

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnsupported is returned when an operation does not apply to the referenced resource kind.
var ErrUnsupported = errors.New("unsupported operation")

// Kind is the kind of a referenced resource.
type Kind string

const (
	KindComponent  Kind = "component"
	KindNode       Kind = "node"
	KindPod        Kind = "pod"
	KindService    Kind = "service"
	KindIngress    Kind = "ingress"
	KindDeployment Kind = "deployment"
	KindStage      Kind = "stage"
	KindJob        Kind = "job"
	KindStep       Kind = "step"
)

var kinds = []Kind{
	KindComponent, KindNode, KindPod, KindService, KindIngress, KindDeployment,
	KindStage, KindJob, KindStep,
}

// Ref points at a resource of the active scenario.
type Ref struct {
	Kind Kind
	Name string
}

func (r Ref) String() string {
	return string(r.Kind) + "/" + r.Name
}

// MarshalText implements encoding.TextMarshaler.
func (r Ref) MarshalText() ([]byte, error) { return []byte(r.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *Ref) UnmarshalText(b []byte) error {
	parsed, err := ParseRef(string(b))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// ParseRef parses a "kind/name" reference such as "pod/web-1".
func ParseRef(s string) (Ref, error) {
	kind, name, ok := strings.Cut(strings.TrimSpace(s), "/")
	if !ok || name == "" {
		return Ref{}, fmt.Errorf("invalid resource reference %q, expected kind/name", s)
	}
	for _, k := range kinds {
		if strings.EqualFold(string(k), kind) {
			return Ref{Kind: k, Name: name}, nil
		}
	}
	return Ref{}, fmt.Errorf("unknown resource kind %q", kind)
}

// FailureKind is a failure a learner can trigger on a cluster resource.
type FailureKind string

const (
	// FailureKill sets a pod to failed.
	FailureKill FailureKind = "kill"
	// FailureRestart increments a pod's restart counter.
	FailureRestart FailureKind = "restart"
	// FailureNodeDown marks a node NotReady.
	FailureNodeDown FailureKind = "nodeDown"
	// FailureDegrade marks a control plane component degraded.
	FailureDegrade FailureKind = "degrade"
	// FailureOutage marks a control plane component unhealthy.
	FailureOutage FailureKind = "outage"
)

// FailureKinds lists every supported failure kind.
var FailureKinds = []FailureKind{FailureKill, FailureRestart, FailureNodeDown, FailureDegrade, FailureOutage}

// ParseFailureKind parses a failure kind name.
func ParseFailureKind(s string) (FailureKind, error) {
	for _, k := range FailureKinds {
		if strings.EqualFold(string(k), strings.TrimSpace(s)) {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown failure kind %q", s)
}
