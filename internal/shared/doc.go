// Package shared holds helpers used by tests across the module.
//
// The testutil subpackage provides:
//
//   - BufferedSlogHandler and NewTestLogger for asserting on log output
//   - Raw recipe and interaction CSV fixtures with a writer for temp dirs
//
// It must not import application packages so that any package's tests can
// depend on it.
package shared
