// Package core implements the installer commands on top of the step
// engine.
//
// Install reconciles the host towards the managed layout: every directory
// in the layout table (parents first), then the build user pool, then
// nix.conf. Uninstall walks the same resources backwards: the pool is
// emptied and its group removed, then the directories are deleted
// children first.
//
// Both commands stop at the first failing step. Nothing is rolled back;
// running the command again resumes where it stopped because every step
// reconciles from whatever state it finds.
//
// The nix.conf helpers edit the file through package nixconf and only
// write it back when its content actually changed.
package core
