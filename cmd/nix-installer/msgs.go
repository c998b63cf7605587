package nixinstaller

// Short messages (one-liners)
const (
	// Command descriptions
	MsgRootShort      = "Manage your local Nix install"
	MsgInstallShort   = "Install Nix prerequisites or repair an existing install"
	MsgUninstallShort = "Completely remove Nix from this system"
	MsgPlanShort      = "Show what install would change"
	MsgConfigShort    = "Read and edit nix.conf"
	MsgConfigGet      = "Print the value of a setting"
	MsgConfigSet      = "Set a setting, keeping comments and layout"
	MsgConfigUnset    = "Remove a setting and its comment"
	MsgConfigList     = "List every setting"
	MsgConfigShow     = "Print nix.conf as the installer would write it"
	MsgSettingsShort  = "Print the effective installer settings"
	MsgVersionShort   = "Print version information"

	MsgRootLong = `nix-installer creates the directories, build users and nix.conf a
Nix package manager install needs, and removes them again.

Every command reconciles the system from whatever state it is in, so a
failed or interrupted run is repaired by running the same command again.`

	MsgInstallLong = `Install creates every Nix directory with its fixed mode and ownership,
brings the pool of build users to the requested size, and makes sure
nix.conf names the build users group. A missing nix.conf is created from
a built-in default.

Run it again at any time to repair drift.`

	MsgUninstallLong = `Uninstall removes every build user and the build group, then deletes
the Nix directories with everything in them, including /nix/store and
/etc/nix.`

	// Status messages
	MsgDryRunNotice    = "DRY RUN MODE - No changes were made"
	MsgNoValue         = "%s is not set in %s"
	MsgConfigWritten   = "Updated %s"
	MsgConfigUnchanged = "%s already up to date"

	// Error messages
	MsgErrNoCommand   = "no command specified"
	MsgErrBuildUsers  = "--num-build-users must be zero or more, got %d"
	MsgErrOutput      = "invalid --output: %w"
	MsgErrSettingLoad = "failed to load settings: %w"

	// Flag descriptions
	MsgFlagVerbose   = "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)"
	MsgFlagDryRun    = "Preview changes without executing them"
	MsgFlagSettings  = "Path to an installer settings file (TOML)"
	MsgFlagDefaults  = "Print the built-in defaults file instead"
	MsgFlagOutput    = "Output format: auto, text, term or yaml"
	MsgFlagUsers     = "How many build users to set up (default from settings)"
	MsgFlagFile      = "nix.conf to operate on (default from settings)"
	MsgFlagComment   = "Comment placed above the setting"
)

// MsgUsageTemplate is the cobra usage template, using the bold helpers
// from formatting.go.
const MsgUsageTemplate = `{{bold "USAGE:"}}{{if .Runnable}}
  {{.UseLine}}{{end}}{{if .HasAvailableSubCommands}}
  {{.CommandPath}} [command]{{end}}{{if gt (len .Aliases) 0}}

{{bold "ALIASES:"}}
  {{.NameAndAliases}}{{end}}{{if .HasExample}}

{{bold "EXAMPLES:"}}
{{.Example}}{{end}}{{if .HasAvailableSubCommands}}

{{bold "COMMANDS:"}}{{range .Commands}}{{if (or .IsAvailableCommand (eq .Name "help"))}}
  {{rpad .Name .NamePadding }} {{.Short}}{{end}}{{end}}{{end}}{{if .HasAvailableLocalFlags}}

{{boldUpper "flags:"}}
{{.LocalFlags.FlagUsages | trimTrailingWhitespaces}}{{end}}{{if .HasAvailableInheritedFlags}}

{{boldUpper "global flags:"}}
{{.InheritedFlags.FlagUsages | trimTrailingWhitespaces}}{{end}}{{if .HasAvailableSubCommands}}

Use "{{.CommandPath}} [command] --help" for more information about a command.{{end}}
`
