// Package version exposes build metadata for the project.
//
// Variables Version, Commit, and BuildTime are injected at build time via
// Go ldflags and default to sensible values for local builds. Version is also
// the single source of truth for the release version: the packager parses this
// file to decide which version it is building and packaging.
// Helper functions Short and Full render the version string for CLI output and logs.
package version
