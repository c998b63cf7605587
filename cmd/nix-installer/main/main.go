package main

import (
	"os"

	nixinstaller "github.com/arthur-debert/nix-installer/cmd/nix-installer"
)

func main() {
	os.Exit(nixinstaller.Main(os.Args[1:], nixinstaller.DefaultEnvironment()))
}
