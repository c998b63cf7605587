// Package steps reconciles host resources toward a declared state.
//
// A Step is one declared resource: a Directory with an exact owner, group
// and mode, or a UserPool of numbered build users. Each step computes its
// own delta against the live system through the gateway and applies it,
// so running the same step twice is always safe. The Executor runs an
// ordered list of steps and stops at the first failure; nothing is rolled
// back, a later successful run converges regardless of where an earlier
// one stopped.
package steps
