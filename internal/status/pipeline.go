package status

// PipelineStatus is the status of a pipeline stage, job or step.
type PipelineStatus int

const (
	Pending PipelineStatus = iota
	Running
	Succeeded
	Failed
	Skipped
	Cancelled

	pipelineCount
)

var pipelineNames = [...]string{
	Pending:   "pending",
	Running:   "running",
	Succeeded: "succeeded",
	Failed:    "failed",
	Skipped:   "skipped",
	Cancelled: "cancelled",
}

var pipelineBadges = [...]Badge{
	Pending:   {Label: "Pending", Tone: ToneGray, Icon: "○"},
	Running:   {Label: "Running", Tone: ToneBlue, Icon: "◌"},
	Succeeded: {Label: "Succeeded", Tone: ToneGreen, Icon: "✓"},
	Failed:    {Label: "Failed", Tone: ToneRed, Icon: "✕"},
	Skipped:   {Label: "Skipped", Tone: ToneYellow, Icon: "⤼"},
	Cancelled: {Label: "Cancelled", Tone: ToneGray, Icon: "⊘"},
}

func (s PipelineStatus) String() string { return enumName(pipelineNames[:], int(s)) }

// Badge returns the presentation of s.
func (s PipelineStatus) Badge() Badge { return enumBadge(pipelineBadges[:], int(s)) }

// Halts reports whether playback must freeze on a unit with this status.
func (s PipelineStatus) Halts() bool {
	return s == Failed || s == Skipped
}

// ParsePipelineStatus parses a stage, job or step status value.
func ParsePipelineStatus(s string) (PipelineStatus, error) {
	v, err := parseEnum("pipeline", pipelineNames[:], s)
	return PipelineStatus(v), err
}

// MarshalText implements encoding.TextMarshaler.
func (s PipelineStatus) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *PipelineStatus) UnmarshalText(b []byte) error {
	v, err := ParsePipelineStatus(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}
