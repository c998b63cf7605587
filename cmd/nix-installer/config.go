package nixinstaller

import (
	"fmt"

	"github.com/arthur-debert/nix-installer/pkg/core"
	"github.com/arthur-debert/nix-installer/pkg/nixconf"
	"github.com/spf13/cobra"
)

func newConfigCmd(g *globals) *cobra.Command {
	var file string

	path := func() string {
		if file != "" {
			return file
		}
		return g.settings.NixConf.Path
	}

	configCmd := &cobra.Command{
		Use:   "config",
		Short: MsgConfigShort,
	}
	configCmd.PersistentFlags().StringVarP(&file, "file", "f", "", MsgFlagFile)

	configCmd.AddCommand(&cobra.Command{
		Use:   "get KEY",
		Short: MsgConfigGet,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			value, ok, err := core.ConfigGet(g.host(), path(), args[0])
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf(MsgNoValue, args[0], path())
			}
			fmt.Fprintln(g.env.Stdout, value)
			return nil
		},
	})

	var comment string
	setCmd := &cobra.Command{
		Use:   "set KEY VALUE",
		Short: MsgConfigSet,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if g.dryRun {
				if err := core.ValidateSetting(args[0], args[1]); err != nil {
					return err
				}
				return previewEdit(g, path(), func(doc *nixconf.Document) {
					core.ApplySetting(doc, args[0], args[1], comment)
				})
			}
			written, err := core.ConfigSet(g.host(), path(), args[0], args[1], comment)
			if err != nil {
				return err
			}
			return reportWrite(g, path(), written)
		},
	}
	setCmd.Flags().StringVarP(&comment, "comment", "c", "", MsgFlagComment)
	configCmd.AddCommand(setCmd)

	configCmd.AddCommand(&cobra.Command{
		Use:   "unset KEY",
		Short: MsgConfigUnset,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if g.dryRun {
				return previewEdit(g, path(), func(doc *nixconf.Document) {
					doc.Remove(args[0])
				})
			}
			written, err := core.ConfigUnset(g.host(), path(), args[0])
			if err != nil {
				return err
			}
			return reportWrite(g, path(), written)
		},
	})

	configCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: MsgConfigList,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := core.ConfigList(g.host(), path())
			if err != nil {
				return err
			}
			renderer, err := g.renderer()
			if err != nil {
				return err
			}
			return renderer.RenderSettings(settings)
		},
	})

	configCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: MsgConfigShow,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, _, err := core.LoadNixConf(g.host(), path())
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(g.env.Stdout, doc.String())
			return err
		},
	})

	return configCmd
}

// previewEdit prints the document that edit would produce without
// writing it.
func previewEdit(g *globals, path string, edit func(*nixconf.Document)) error {
	doc, _, err := core.LoadNixConf(g.host(), path)
	if err != nil {
		return err
	}
	edit(doc)
	fmt.Fprint(g.env.Stdout, doc.String())
	fmt.Fprintln(g.env.Stderr, MsgDryRunNotice)
	return nil
}

func reportWrite(g *globals, path string, written bool) error {
	if written {
		fmt.Fprintf(g.env.Stdout, MsgConfigWritten+"\n", path)
	} else {
		fmt.Fprintf(g.env.Stdout, MsgConfigUnchanged+"\n", path)
	}
	return nil
}
