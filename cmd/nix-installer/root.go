// Package nixinstaller is the nix-installer command line.
package nixinstaller

import (
	"fmt"
	"io"
	"os"

	"github.com/arthur-debert/nix-installer/internal/version"
	"github.com/arthur-debert/nix-installer/pkg/config"
	"github.com/arthur-debert/nix-installer/pkg/gateway"
	"github.com/arthur-debert/nix-installer/pkg/logging"
	"github.com/arthur-debert/nix-installer/pkg/output"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// Environment is what the commands run against.
type Environment struct {
	// System is called once, after logging is set up, the first time a
	// command needs the host.
	System func() gateway.System
	// EUID returns the effective user id for the root check.
	EUID   func() int
	Stdout io.Writer
	Stderr io.Writer
}

// DefaultEnvironment targets the running host.
func DefaultEnvironment() Environment {
	return Environment{
		System: func() gateway.System { return gateway.NewHost() },
		EUID:   os.Geteuid,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
}

// globals holds the state shared by every subcommand of one root.
type globals struct {
	env          Environment
	verbosity    int
	dryRun       bool
	settingsFile string
	outputFormat string

	settings *config.Settings
	system   gateway.System
}

// host returns the gateway, creating it on first use.
func (g *globals) host() gateway.System {
	if g.system == nil {
		g.system = g.env.System()
	}
	return g.system
}

func (g *globals) renderer() (*output.Renderer, error) {
	format, err := output.ParseFormat(g.outputFormat)
	if err != nil {
		return nil, fmt.Errorf(MsgErrOutput, err)
	}
	return output.NewRenderer(g.env.Stdout, format), nil
}

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	return NewRootCmdWithEnv(DefaultEnvironment())
}

// NewRootCmdWithEnv creates the root command running against env.
func NewRootCmdWithEnv(env Environment) *cobra.Command {
	// Initialize custom template formatting functions
	initTemplateFormatting()

	g := &globals{env: env}

	rootCmd := &cobra.Command{
		Use:     "nix-installer",
		Short:   MsgRootShort,
		Long:    MsgRootLong,
		Version: version.Version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Setup logging based on verbosity
			logging.SetupLogger(g.verbosity)
			log.Debug().Str("command", cmd.Name()).Msg("Command started")

			settings, err := config.Load(g.settingsFile)
			if err != nil {
				return fmt.Errorf(MsgErrSettingLoad, err)
			}
			g.settings = settings
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			// If we get here, no subcommand was provided
			_ = cmd.Help()
			return fmt.Errorf(MsgErrNoCommand)
		},
		SilenceUsage:      true,
		SilenceErrors:     true,
		DisableAutoGenTag: true,
	}
	rootCmd.SetOut(env.Stdout)
	rootCmd.SetErr(env.Stderr)

	// Global flags
	rootCmd.PersistentFlags().CountVarP(&g.verbosity, "verbose", "v", MsgFlagVerbose)
	rootCmd.PersistentFlags().BoolVar(&g.dryRun, "dry-run", false, MsgFlagDryRun)
	rootCmd.PersistentFlags().StringVar(&g.settingsFile, "settings", "", MsgFlagSettings)
	rootCmd.PersistentFlags().StringVarP(&g.outputFormat, "output", "o", "auto", MsgFlagOutput)

	rootCmd.SetUsageTemplate(MsgUsageTemplate)

	rootCmd.AddCommand(newInstallCmd(g))
	rootCmd.AddCommand(newUninstallCmd(g))
	rootCmd.AddCommand(newPlanCmd(g))
	rootCmd.AddCommand(newConfigCmd(g))
	rootCmd.AddCommand(newSettingsCmd(g))
	rootCmd.AddCommand(newVersionCmd(g))

	return rootCmd
}

// Main runs the command line and returns the process exit code.
func Main(args []string, env Environment) int {
	rootCmd := NewRootCmdWithEnv(env)
	rootCmd.SetArgs(args)
	if err := rootCmd.Execute(); err != nil {
		_ = output.NewRenderer(env.Stderr, output.FormatAuto).RenderError(err)
		return 1
	}
	return 0
}
