package report

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noahxp/katrain/internal/domain/release"
)

// TestFileRepository_NotFound verifies Load returns ErrNotFound for a missing file.
func TestFileRepository_NotFound(t *testing.T) {
	t.Parallel()

	repo := NewFileRepository(filepath.Join(t.TempDir(), "missing.yaml"))

	receipt, err := repo.Load(context.Background())
	require.ErrorIs(t, err, ErrNotFound)
	require.Nil(t, receipt)
}

// TestFileRepository_SaveLoad_Roundtrip ensures Save followed by Load returns
// an equal receipt.
func TestFileRepository_SaveLoad_Roundtrip(t *testing.T) {
	t.Parallel()

	repo := NewFileRepository(filepath.Join(t.TempDir(), "receipt.yaml"))

	want := &release.Receipt{
		Version:        "1.4.0",
		Artifact:       "KaTrain-1.4.0.dmg",
		SizeBytes:      1024,
		ChecksumSHA512: "c2hhNTEy",
		BundleVersion:  "1.4.0",
		ImageVersion:   "1.4.0",
		Stages: []release.StageReport{
			{Name: "clean", Status: "ok", Duration: "12ms"},
			{Name: "build", Status: "ok", Duration: "3m2s"},
			{Name: "package", Status: "ok", Duration: "41s"},
		},
		BuiltBy:   "dev@buildhost",
		CreatedAt: time.Now().UTC().Truncate(time.Second),
	}

	require.NoError(t, repo.Save(context.Background(), want))

	got, err := repo.Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, want.Version, got.Version)
	require.Equal(t, want.Artifact, got.Artifact)
	require.Equal(t, want.SizeBytes, got.SizeBytes)
	require.Equal(t, want.ChecksumSHA512, got.ChecksumSHA512)
	require.Equal(t, want.Stages, got.Stages)
	require.Equal(t, want.BuiltBy, got.BuiltBy)
	require.True(t, want.CreatedAt.Equal(got.CreatedAt))
}
