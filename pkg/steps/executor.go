package steps

import (
	"fmt"

	"github.com/arthur-debert/nix-installer/pkg/errors"
	"github.com/arthur-debert/nix-installer/pkg/logging"
)

// Mode selects which Step operation the Executor invokes.
type Mode int

const (
	ModeApply Mode = iota
	ModeDryApply
	ModeDelete
	ModeDryDelete
)

func (m Mode) String() string {
	switch m {
	case ModeApply:
		return "apply"
	case ModeDryApply:
		return "dry-apply"
	case ModeDelete:
		return "delete"
	case ModeDryDelete:
		return "dry-delete"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// IsDry reports whether the mode only computes plans.
func (m Mode) IsDry() bool {
	return m == ModeDryApply || m == ModeDryDelete
}

// Executor drives an ordered list of steps through one operation.
type Executor struct{}

// NewExecutor creates a new Executor.
func NewExecutor() *Executor {
	return &Executor{}
}

// Run invokes mode on each step in order. It stops at the first failing
// step and returns a STEP_FAILED error naming it and wrapping its cause;
// steps already run are left as they are. Dry modes return one plan per
// step run; live modes return nil plans.
func (e *Executor) Run(mode Mode, steps []Step) ([]Plan, error) {
	logger := logging.GetLogger("steps.executor").With().
		Str("mode", mode.String()).
		Int("step_count", len(steps)).
		Logger()
	done := logging.LogOperationStart(logger, mode.String())
	defer done()

	var plans []Plan
	for i, step := range steps {
		logger.Info().Int("index", i).Str("step", step.Name()).Msg("Running step")

		var plan Plan
		var err error
		switch mode {
		case ModeApply:
			err = step.Apply()
		case ModeDryApply:
			plan, err = step.DryApply()
		case ModeDelete:
			err = step.Delete()
		case ModeDryDelete:
			plan, err = step.DryDelete()
		default:
			return plans, errors.Newf(errors.ErrInvalidInput, "unknown executor mode %d", int(mode))
		}

		if err != nil {
			logger.Error().Err(err).Int("index", i).Str("step", step.Name()).Msg("Step failed")
			return plans, errors.Wrapf(err, errors.ErrStepFailed,
				"%s %s (step %d of %d)", mode, step.Name(), i+1, len(steps)).
				WithDetail("step", step.Name()).
				WithDetail("index", i)
		}
		if mode.IsDry() {
			plans = append(plans, plan)
		}
	}

	return plans, nil
}
