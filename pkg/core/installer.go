package core

import (
	"github.com/arthur-debert/nix-installer/pkg/config"
	"github.com/arthur-debert/nix-installer/pkg/gateway"
	"github.com/arthur-debert/nix-installer/pkg/layout"
	"github.com/arthur-debert/nix-installer/pkg/logging"
	"github.com/arthur-debert/nix-installer/pkg/steps"
)

// Options configures an install or uninstall run.
type Options struct {
	System   gateway.System
	Settings *config.Settings
	DryRun   bool
}

// Result describes what a run did, or would do when dry.
type Result struct {
	Mode steps.Mode
	// Steps is the number of steps in the sequence, including any not
	// reached after a failure.
	Steps   int
	Plans   []steps.Plan
	NixConf *NixConfChange
}

// InstallSteps returns the install sequence: directories, then the pool.
func InstallSteps(sys gateway.System, settings *config.Settings) []steps.Step {
	list := layout.DirectorySteps(sys, settings.Users.GID)
	return append(list, layout.UserPool(sys, settings.Users, settings.Users.Count))
}

// UninstallSteps returns the uninstall sequence: the pool, then the
// directories children first.
func UninstallSteps(sys gateway.System, settings *config.Settings) []steps.Step {
	dirs := layout.DirectorySteps(sys, settings.Users.GID)
	list := []steps.Step{layout.UserPool(sys, settings.Users, 0)}
	for i := len(dirs) - 1; i >= 0; i-- {
		list = append(list, dirs[i])
	}
	return list
}

// Install creates or repairs the Nix layout and build users, then makes
// sure nix.conf names the build group.
func Install(opts Options) (*Result, error) {
	logger := logging.GetLogger("core.install")
	logger.Info().
		Int("build_users", opts.Settings.Users.Count).
		Bool("dry_run", opts.DryRun).
		Msg("Starting install")

	mode := steps.ModeApply
	if opts.DryRun {
		mode = steps.ModeDryApply
	}

	list := InstallSteps(opts.System, opts.Settings)
	plans, err := steps.NewExecutor().Run(mode, list)
	result := &Result{Mode: mode, Steps: len(list), Plans: plans}
	if err != nil {
		return result, err
	}

	change, err := EnsureNixConf(opts.System, opts.Settings.NixConf.Path, opts.Settings.Users.Group, !opts.DryRun)
	result.NixConf = change
	if err != nil {
		return result, err
	}

	logger.Info().Msg("Install finished")
	return result, nil
}

// Uninstall removes the build users, their group and every managed
// directory with its contents.
func Uninstall(opts Options) (*Result, error) {
	logger := logging.GetLogger("core.uninstall")
	logger.Info().Bool("dry_run", opts.DryRun).Msg("Starting uninstall")

	mode := steps.ModeDelete
	if opts.DryRun {
		mode = steps.ModeDryDelete
	}

	list := UninstallSteps(opts.System, opts.Settings)
	plans, err := steps.NewExecutor().Run(mode, list)
	result := &Result{Mode: mode, Steps: len(list), Plans: plans}
	if err != nil {
		return result, err
	}

	logger.Info().Msg("Uninstall finished")
	return result, nil
}

// Plan is a dry-run Install.
func Plan(opts Options) (*Result, error) {
	opts.DryRun = true
	return Install(opts)
}
