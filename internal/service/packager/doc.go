// Package packager drives the release pipeline for the application bundle.
//
// A run resolves the version from source, cleans previous outputs, builds the
// bundle, verifies the embedded version, stages the drag-to-install layout,
// authors and publishes the disk image, verifies it again, and leaves a YAML
// receipt. The first failure aborts the run; a marker file keeps two runs
// from ever overlapping.
package packager
