package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra/doc"

	nixinstaller "github.com/arthur-debert/nix-installer/cmd/nix-installer"
	"github.com/arthur-debert/nix-installer/internal/version"
)

func main() {
	rootCmd := nixinstaller.NewRootCmd()

	header := &doc.GenManHeader{
		Title:   "NIX-INSTALLER",
		Section: "8",
		Source:  "nix-installer " + version.Version,
		Manual:  "nix-installer manual",
	}

	err := doc.GenMan(rootCmd, header, os.Stdout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error generating man page: %v\n", err)
		os.Exit(1)
	}
}
