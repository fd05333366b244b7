package plan

// Default plan values.
const (
	DefaultVersion = 1
)

// applyDefaults fills in default values for unset plan fields.
func applyDefaults(p *Plan) {
	if p.Version == 0 {
		p.Version = DefaultVersion
	}
	if p.Score == nil {
		enabled := true
		p.Score = &enabled
	}
}
