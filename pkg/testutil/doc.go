// Package testutil provides utilities for testing nix-installer components.
//
// Key components:
//   - FakeGateway: an in-memory host (afero MemMapFs plus user and group
//     tables) that simulates useradd, userdel, groupadd and groupdel and
//     records every command it is asked to run
//   - AssertDirectory / AssertAbsent: checks on the fake host's nodes
//
// Tests should run against FakeGateway unless they exercise the real host
// implementation in package gateway.
package testutil
