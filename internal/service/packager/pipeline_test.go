package packager

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/noahxp/katrain/internal/config"
	"github.com/noahxp/katrain/internal/domain/release"
)

// testPipeline returns a pipeline with defaults and a resolved version,
// without touching the run marker.
func testPipeline(t *testing.T) *pipeline {
	t.Helper()

	cfg := new(config.Config)
	require.NoError(t, config.Validate(cfg))

	return &pipeline{
		cfg:     cfg,
		machine: release.NewMachine(),
		version: "1.4.0",
	}
}

// TestArtifactNaming pins the published artifact name and volume name.
func TestArtifactNaming(t *testing.T) {
	t.Parallel()

	p := testPipeline(t)

	require.Equal(t, "KaTrain-1.4.0.dmg", p.artifactPath())
	require.Equal(t, "dist/KaTrain.app", p.bundlePath())
	require.Equal(t, "dist/KaTrain-rw.dmg", p.scratchImagePath())
	require.Equal(t, "KaTrain 1.4.0", p.volumeName())
}

// TestEnsureSameVersion covers semantic comparison of probed versions.
func TestEnsureSameVersion(t *testing.T) {
	t.Parallel()

	p := testPipeline(t)

	require.NoError(t, p.ensureSameVersion("1.4.0", "bundle"))

	err := p.ensureSameVersion("1.3.9", "bundle")
	require.ErrorIs(t, err, release.ErrVersionMismatch)
	require.Contains(t, err.Error(), "bundle reports 1.3.9")

	err = p.ensureSameVersion("not-a-version", "image")
	require.ErrorIs(t, err, release.ErrVersionMismatch)
}
