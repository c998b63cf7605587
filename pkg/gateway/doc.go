// Package gateway is the installer's only door to the host system.
//
// Everything the reconciliation steps need from the machine goes through
// the System interface: node inspection and mutation on the filesystem,
// invocation of the user-management executables, and lookups in the user
// and group databases. The Host implementation talks to the real machine
// through an afero filesystem, os/exec and os/user; tests swap in
// testutil.FakeGateway, which reuses Host on top of an in-memory afero
// filesystem and fakes the account database.
package gateway
