package nixinstaller

import (
	"fmt"
	"io"

	"github.com/arthur-debert/nix-installer/internal/version"
	"github.com/arthur-debert/nix-installer/pkg/config"
	"github.com/arthur-debert/nix-installer/pkg/core"
	"github.com/arthur-debert/nix-installer/pkg/logging"
	"github.com/arthur-debert/nix-installer/pkg/output"
	"github.com/arthur-debert/nix-installer/pkg/preflight"
	"github.com/spf13/cobra"
)

func newInstallCmd(g *globals) *cobra.Command {
	var numBuildUsers int

	cmd := &cobra.Command{
		Use:   "install",
		Short: MsgInstallShort,
		Long:  MsgInstallLong,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInstall(cmd, g, numBuildUsers, g.dryRun)
		},
	}
	cmd.Flags().IntVar(&numBuildUsers, "num-build-users", -1, MsgFlagUsers)
	return cmd
}

func newPlanCmd(g *globals) *cobra.Command {
	var numBuildUsers int

	cmd := &cobra.Command{
		Use:   "plan",
		Short: MsgPlanShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInstall(cmd, g, numBuildUsers, true)
		},
	}
	cmd.Flags().IntVar(&numBuildUsers, "num-build-users", -1, MsgFlagUsers)
	return cmd
}

func runInstall(cmd *cobra.Command, g *globals, numBuildUsers int, dryRun bool) error {
	logger := logging.GetLogger("cmd.install")

	settings := *g.settings
	if cmd.Flags().Changed("num-build-users") {
		if numBuildUsers < 0 {
			return fmt.Errorf(MsgErrBuildUsers, numBuildUsers)
		}
		settings.Users.Count = numBuildUsers
		if err := settings.Validate(); err != nil {
			return err
		}
	}

	renderer, err := g.renderer()
	if err != nil {
		return err
	}
	if err := checkPreconditions(g, dryRun); err != nil {
		return err
	}

	logger.Info().
		Int("build_users", settings.Users.Count).
		Bool("dry_run", dryRun).
		Msg("Running install")

	result, err := core.Install(core.Options{System: g.host(), Settings: &settings, DryRun: dryRun})
	if err != nil {
		return err
	}
	return renderResult(renderer, result)
}

func newUninstallCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "uninstall",
		Short: MsgUninstallShort,
		Long:  MsgUninstallLong,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			renderer, err := g.renderer()
			if err != nil {
				return err
			}
			if err := checkPreconditions(g, g.dryRun); err != nil {
				return err
			}

			result, err := core.Uninstall(core.Options{System: g.host(), Settings: g.settings, DryRun: g.dryRun})
			if err != nil {
				return err
			}
			return renderResult(renderer, result)
		},
	}
}

// checkPreconditions refuses NixOS hosts, and non-root users unless
// nothing will be changed.
func checkPreconditions(g *globals, dryRun bool) error {
	if !dryRun {
		if err := preflight.CheckRoot(g.env.EUID()); err != nil {
			return err
		}
	}
	return preflight.CheckHost(g.host())
}

func renderResult(renderer *output.Renderer, result *core.Result) error {
	if err := renderer.RenderResult(result); err != nil {
		return err
	}
	if result.Mode.IsDry() && renderer.Format() != output.FormatYAML {
		return renderer.RenderMessage(output.StyleMuted, MsgDryRunNotice)
	}
	return nil
}

func newVersionCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: MsgVersionShort,
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			out := g.env.Stdout
			fmt.Fprintf(out, "nix-installer version %s\n", version.Version)
			fmt.Fprintf(out, "  commit: %s\n", version.Commit)
			fmt.Fprintf(out, "  built:  %s\n", version.Date)
		},
	}
}

func newSettingsCmd(g *globals) *cobra.Command {
	var defaults bool
	cmd := &cobra.Command{
		Use:   "settings",
		Short: MsgSettingsShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if defaults {
				_, err := io.WriteString(g.env.Stdout, config.DefaultsContent())
				return err
			}
			data, err := g.settings.TOML()
			if err != nil {
				return err
			}
			_, err = g.env.Stdout.Write(data)
			return err
		},
	}
	cmd.Flags().BoolVar(&defaults, "defaults", false, MsgFlagDefaults)
	return cmd
}
