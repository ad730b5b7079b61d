// Package status defines the closed status domains of cluster resources and
// pipeline units together with their presentation badges.
package status

import (
	"fmt"
	"strings"
)

// Tone is the colour family a presentation layer uses for a status.
type Tone int

const (
	// ToneGray marks inactive or unknown states.
	ToneGray Tone = iota
	// ToneGreen marks healthy or successful states.
	ToneGreen
	// ToneYellow marks transitional or degraded states.
	ToneYellow
	// ToneRed marks failed states.
	ToneRed
	// ToneBlue marks in-progress states.
	ToneBlue

	toneCount
)

var toneNames = [...]string{
	ToneGray:   "gray",
	ToneGreen:  "green",
	ToneYellow: "yellow",
	ToneRed:    "red",
	ToneBlue:   "blue",
}

// String returns the tone name.
func (t Tone) String() string { return enumName(toneNames[:], int(t)) }

// Badge is the presentation of a single status value.
type Badge struct {
	Label string `json:"label" yaml:"label"`
	Tone  Tone   `json:"tone" yaml:"tone"`
	Icon  string `json:"icon" yaml:"icon"`
}

// MarshalText renders the tone by name.
func (t Tone) MarshalText() ([]byte, error) { return []byte(t.String()), nil }

// invalidBadge is shown for values outside a status domain.
var invalidBadge = Badge{Label: "Invalid", Tone: ToneGray, Icon: "?"}

func enumBadge(badges []Badge, v int) Badge {
	if v < 0 || v >= len(badges) {
		return invalidBadge
	}
	return badges[v]
}

func enumName(names []string, v int) string {
	if v < 0 || v >= len(names) {
		return "invalid"
	}
	return names[v]
}

// parseEnum resolves s against names case-insensitively.
func parseEnum(domain string, names []string, s string) (int, error) {
	value := strings.TrimSpace(s)
	for i, name := range names {
		if strings.EqualFold(name, value) {
			return i, nil
		}
	}
	return 0, fmt.Errorf("invalid %s status %q (expected one of %s)", domain, s, strings.Join(names, ", "))
}

// Compile-time checks: every status value has a name and a badge.
func _() {
	var x [1]struct{}
	_ = x[len(toneNames)-int(toneCount)]
	_ = x[len(healthNames)-int(healthCount)]
	_ = x[len(healthBadges)-int(healthCount)]
	_ = x[len(nodeNames)-int(nodeCount)]
	_ = x[len(nodeBadges)-int(nodeCount)]
	_ = x[len(podNames)-int(podCount)]
	_ = x[len(podBadges)-int(podCount)]
	_ = x[len(endpointNames)-int(endpointCount)]
	_ = x[len(endpointBadges)-int(endpointCount)]
	_ = x[len(deploymentNames)-int(deploymentCount)]
	_ = x[len(deploymentBadges)-int(deploymentCount)]
	_ = x[len(pipelineNames)-int(pipelineCount)]
	_ = x[len(pipelineBadges)-int(pipelineCount)]
}
