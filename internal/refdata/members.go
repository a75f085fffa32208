package refdata

import "strings"

// Member status values. Anything else reads as StatusUnknown.
const (
	StatusActive     = "active"
	StatusInactive   = "inactive"
	StatusTerminated = "terminated"
	StatusUnknown    = "unknown"
)

// Member is one registry entry.
type Member struct {
	Status string `yaml:"status"`
	Plan   string `yaml:"plan"`
	Name   string `yaml:"name"`
}

// Active reports whether the member's coverage is in force.
func (m Member) Active() bool {
	return strings.EqualFold(strings.TrimSpace(m.Status), StatusActive)
}

// NormalizedStatus returns the lowercased status, or StatusUnknown.
func (m Member) NormalizedStatus() string {
	switch s := strings.ToLower(strings.TrimSpace(m.Status)); s {
	case StatusActive, StatusInactive, StatusTerminated:
		return s
	}
	return StatusUnknown
}

// Members is the registry keyed by member id. A nil Members means no registry
// was loaded, which the validator treats as "everyone is eligible".
type Members map[string]Member

// Lookup finds a member by id.
func (m Members) Lookup(id string) (Member, bool) {
	mem, ok := m[strings.TrimSpace(id)]
	return mem, ok
}

// LoadMembers reads a mapping of member_id to {status, plan, name}.
func LoadMembers(path string) (Members, error) {
	var m Members
	if err := readYAML(path, "members", &m); err != nil {
		return nil, err
	}
	if len(m) == 0 {
		return nil, nil
	}
	return m, nil
}
