package status

// Health is the status of a control plane component.
type Health int

const (
	Healthy Health = iota
	Degraded
	Unhealthy

	healthCount
)

var healthNames = [...]string{
	Healthy:   "healthy",
	Degraded:  "degraded",
	Unhealthy: "unhealthy",
}

var healthBadges = [...]Badge{
	Healthy:   {Label: "Healthy", Tone: ToneGreen, Icon: "●"},
	Degraded:  {Label: "Degraded", Tone: ToneYellow, Icon: "◐"},
	Unhealthy: {Label: "Unhealthy", Tone: ToneRed, Icon: "✕"},
}

func (h Health) String() string { return enumName(healthNames[:], int(h)) }

// Badge returns the presentation of h.
func (h Health) Badge() Badge { return enumBadge(healthBadges[:], int(h)) }

// ParseHealth parses a control plane health value.
func ParseHealth(s string) (Health, error) {
	v, err := parseEnum("health", healthNames[:], s)
	return Health(v), err
}

// MarshalText implements encoding.TextMarshaler.
func (h Health) MarshalText() ([]byte, error) { return []byte(h.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (h *Health) UnmarshalText(b []byte) error {
	v, err := ParseHealth(string(b))
	if err != nil {
		return err
	}
	*h = v
	return nil
}

// NodeStatus is the readiness of a cluster node.
type NodeStatus int

const (
	NodeReady NodeStatus = iota
	NodeNotReady
	NodeUnknown

	nodeCount
)

var nodeNames = [...]string{
	NodeReady:    "ready",
	NodeNotReady: "notReady",
	NodeUnknown:  "unknown",
}

var nodeBadges = [...]Badge{
	NodeReady:    {Label: "Ready", Tone: ToneGreen, Icon: "●"},
	NodeNotReady: {Label: "NotReady", Tone: ToneRed, Icon: "✕"},
	NodeUnknown:  {Label: "Unknown", Tone: ToneGray, Icon: "?"},
}

func (s NodeStatus) String() string { return enumName(nodeNames[:], int(s)) }

// Badge returns the presentation of s.
func (s NodeStatus) Badge() Badge { return enumBadge(nodeBadges[:], int(s)) }

// ParseNodeStatus parses a node status value.
func ParseNodeStatus(s string) (NodeStatus, error) {
	v, err := parseEnum("node", nodeNames[:], s)
	return NodeStatus(v), err
}

// MarshalText implements encoding.TextMarshaler.
func (s NodeStatus) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *NodeStatus) UnmarshalText(b []byte) error {
	v, err := ParseNodeStatus(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// PodStatus is the phase of a pod.
type PodStatus int

const (
	PodRunning PodStatus = iota
	PodPending
	PodFailed
	PodSucceeded
	PodUnknown

	podCount
)

var podNames = [...]string{
	PodRunning:   "running",
	PodPending:   "pending",
	PodFailed:    "failed",
	PodSucceeded: "succeeded",
	PodUnknown:   "unknown",
}

var podBadges = [...]Badge{
	PodRunning:   {Label: "Running", Tone: ToneGreen, Icon: "●"},
	PodPending:   {Label: "Pending", Tone: ToneYellow, Icon: "○"},
	PodFailed:    {Label: "Failed", Tone: ToneRed, Icon: "✕"},
	PodSucceeded: {Label: "Succeeded", Tone: ToneBlue, Icon: "✓"},
	PodUnknown:   {Label: "Unknown", Tone: ToneGray, Icon: "?"},
}

func (s PodStatus) String() string { return enumName(podNames[:], int(s)) }

// Badge returns the presentation of s.
func (s PodStatus) Badge() Badge { return enumBadge(podBadges[:], int(s)) }

// ParsePodStatus parses a pod status value.
func ParsePodStatus(s string) (PodStatus, error) {
	v, err := parseEnum("pod", podNames[:], s)
	return PodStatus(v), err
}

// MarshalText implements encoding.TextMarshaler.
func (s PodStatus) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *PodStatus) UnmarshalText(b []byte) error {
	v, err := ParsePodStatus(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// EndpointStatus is the status of a service or an ingress.
type EndpointStatus int

const (
	EndpointActive EndpointStatus = iota
	EndpointPending
	EndpointFailed

	endpointCount
)

var endpointNames = [...]string{
	EndpointActive:  "active",
	EndpointPending: "pending",
	EndpointFailed:  "failed",
}

var endpointBadges = [...]Badge{
	EndpointActive:  {Label: "Active", Tone: ToneGreen, Icon: "●"},
	EndpointPending: {Label: "Pending", Tone: ToneYellow, Icon: "○"},
	EndpointFailed:  {Label: "Failed", Tone: ToneRed, Icon: "✕"},
}

func (s EndpointStatus) String() string { return enumName(endpointNames[:], int(s)) }

// Badge returns the presentation of s.
func (s EndpointStatus) Badge() Badge { return enumBadge(endpointBadges[:], int(s)) }

// ParseEndpointStatus parses a service or ingress status value.
func ParseEndpointStatus(s string) (EndpointStatus, error) {
	v, err := parseEnum("endpoint", endpointNames[:], s)
	return EndpointStatus(v), err
}

// MarshalText implements encoding.TextMarshaler.
func (s EndpointStatus) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *EndpointStatus) UnmarshalText(b []byte) error {
	v, err := ParseEndpointStatus(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// DeploymentStatus is the rollout status of a deployment.
type DeploymentStatus int

const (
	DeploymentAvailable DeploymentStatus = iota
	DeploymentProgressing
	DeploymentFailed

	deploymentCount
)

var deploymentNames = [...]string{
	DeploymentAvailable:   "available",
	DeploymentProgressing: "progressing",
	DeploymentFailed:      "failed",
}

var deploymentBadges = [...]Badge{
	DeploymentAvailable:   {Label: "Available", Tone: ToneGreen, Icon: "●"},
	DeploymentProgressing: {Label: "Progressing", Tone: ToneBlue, Icon: "◌"},
	DeploymentFailed:      {Label: "Failed", Tone: ToneRed, Icon: "✕"},
}

func (s DeploymentStatus) String() string { return enumName(deploymentNames[:], int(s)) }

// Badge returns the presentation of s.
func (s DeploymentStatus) Badge() Badge { return enumBadge(deploymentBadges[:], int(s)) }

// ParseDeploymentStatus parses a deployment status value.
func ParseDeploymentStatus(s string) (DeploymentStatus, error) {
	v, err := parseEnum("deployment", deploymentNames[:], s)
	return DeploymentStatus(v), err
}

// MarshalText implements encoding.TextMarshaler.
func (s DeploymentStatus) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *DeploymentStatus) UnmarshalText(b []byte) error {
	v, err := ParseDeploymentStatus(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}
