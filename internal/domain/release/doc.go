// Package release contains core domain types for the packaging pipeline.
//
// It defines the pipeline state machine with its transition table, stage
// identities and results, the failure classes a run can abort with, and the
// Receipt written after a successful run.
package release
