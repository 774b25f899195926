package release

import "errors"

// Failure classes of a packaging run. The pipeline wraps every stage failure
// with exactly one of these, so callers and tests can tell a broken build from
// a version mismatch without parsing messages.
var (
	// ErrResolution covers failures reading the version out of source code.
	ErrResolution = errors.New("version resolution failed")
	// ErrBuild covers build command failures and a missing bundle afterwards.
	ErrBuild = errors.New("build failed")
	// ErrVersionMismatch covers a probed version differing from the resolved one.
	ErrVersionMismatch = errors.New("version mismatch")
	// ErrPackaging covers staging and image authoring failures.
	ErrPackaging = errors.New("packaging failed")
	// ErrProbe covers failures reading metadata back from an artifact.
	ErrProbe = errors.New("artifact probe failed")
)
