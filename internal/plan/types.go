package plan

// Plan represents a complete verification plan.
type Plan struct {
	Version int           `yaml:"version,omitempty"`
	Score   *bool         `yaml:"score,omitempty"`
	Buffers []BufferCheck `yaml:"buffers,omitempty"`
}

// BufferCheck names one debug_dumps entry to diff.
type BufferCheck struct {
	Key   string `yaml:"key"`
	Dtype string `yaml:"dtype,omitempty"` // Element type override for both sides
}

// ScoreEnabled reports whether the plan includes the score check.
// Absent means enabled.
func (p *Plan) ScoreEnabled() bool {
	return p.Score == nil || *p.Score
}
