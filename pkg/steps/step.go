package steps

import "fmt"

// Step is a declared unit of desired system state.
type Step interface {
	// Name identifies the step in plans, logs and errors.
	Name() string

	// Apply reconciles the live system toward the declared target.
	Apply() error

	// DryApply reports what Apply would change without changing it.
	DryApply() (Plan, error)

	// Delete reconciles toward the resource being absent.
	Delete() error

	// DryDelete reports what Delete would change without changing it.
	DryDelete() (Plan, error)
}

// Action is what a step does to one attribute of its resource.
type Action string

const (
	ActionNone   Action = "none"
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionRemove Action = "remove"
)

// Change is one attribute of a resource and what would happen to it.
type Change struct {
	Attribute string `yaml:"attribute"`
	Action    Action `yaml:"action"`
	Current   string `yaml:"current,omitempty"`
	Desired   string `yaml:"desired,omitempty"`
}

func (c Change) String() string {
	switch c.Action {
	case ActionNone:
		return fmt.Sprintf("%s: %s (unchanged)", c.Attribute, c.Current)
	case ActionCreate:
		return fmt.Sprintf("%s: create %s", c.Attribute, c.Desired)
	case ActionRemove:
		return fmt.Sprintf("%s: remove %s", c.Attribute, c.Current)
	default:
		return fmt.Sprintf("%s: %s -> %s", c.Attribute, c.Current, c.Desired)
	}
}

// Plan is the delta of one step.
type Plan struct {
	Step    string   `yaml:"step"`
	Changes []Change `yaml:"changes"`
}

// Pending returns the changes that would mutate the system.
func (p Plan) Pending() []Change {
	var out []Change
	for _, c := range p.Changes {
		if c.Action != ActionNone {
			out = append(out, c)
		}
	}
	return out
}

// IsNoop reports whether the step is already converged.
func (p Plan) IsNoop() bool {
	return len(p.Pending()) == 0
}
