package integration

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/noahxp/katrain/internal/config"
	"github.com/noahxp/katrain/internal/domain/release"
	"github.com/noahxp/katrain/internal/repository/report"
	"github.com/noahxp/katrain/internal/service/packager"
)

// The stub tools below stand in for make, defaults, create-dmg and hdiutil.
// They stick to shell builtins and `command -p` lookups, so each test can
// reduce the PATH to the stub directory alone and decide exactly which tools
// the pipeline finds.

// buildStub lays out the bundle the way the real build would, stamping the
// version handed over through the environment.
const buildStub = `#!/bin/sh
[ "$1" = "bundle" ] || exit 64
command -p mkdir -p dist/KaTrain.app/Contents/MacOS
printf 'CFBundleShortVersionString=%s\n' "$KATRAIN_VERSION" > dist/KaTrain.app/Contents/Info.plist
printf 'engine placeholder\n' > dist/KaTrain.app/Contents/MacOS/KaTrain
`

// skewedBuildStub ignores the injected version and stamps an older one.
const skewedBuildStub = `#!/bin/sh
command -p mkdir -p dist/KaTrain.app/Contents
printf 'CFBundleShortVersionString=1.3.9\n' > dist/KaTrain.app/Contents/Info.plist
`

// failingBuildStub fails the way a broken build target would.
const failingBuildStub = `#!/bin/sh
echo 'make: *** [bundle] Error 1' >&2
exit 2
`

// defaultsStub answers metadata reads from "<path>.plist" key=value files.
const defaultsStub = `#!/bin/sh
[ "$1" = "read" ] || exit 64
while IFS='=' read -r key value; do
	if [ "$key" = "$3" ]; then
		echo "$value"
		exit 0
	fi
done < "$2.plist"
exit 1
`

// createDMGStub authors the image as a copy of the staged metadata, so
// mounting the image later reproduces the staged bundle's version. The
// output image precedes the staging directory in the argument list.
const createDMGStub = `#!/bin/sh
image=
out=
for arg; do
	image="$out"
	out="$arg"
done
command -p cp "$out/KaTrain.app/Contents/Info.plist" "$image"
`

// grumpyCreateDMGStub produces the image and then exits non-zero, the way
// the real tool does when its Finder scripting trips.
const grumpyCreateDMGStub = `#!/bin/sh
image=
out=
for arg; do
	image="$out"
	out="$arg"
done
command -p cp "$out/KaTrain.app/Contents/Info.plist" "$image"
echo 'AppleScript timed out' >&2
exit 2
`

// hdiutilStub covers create, attach and detach. Created images carry the
// staged metadata; attaching materializes the bundle at the mountpoint.
const hdiutilStub = `#!/bin/sh
case "$1" in
create)
	for out; do :; done
	command -p cp "$5/KaTrain.app/Contents/Info.plist" "$out"
	;;
attach)
	command -p mkdir -p "$5/KaTrain.app/Contents"
	command -p cp "$6" "$5/KaTrain.app/Contents/Info.plist"
	;;
detach)
	command -p rm -rf "$2"
	;;
*)
	exit 64
	;;
esac
`

// artifactName is the image the pipeline publishes for the test version.
const artifactName = "KaTrain-1.4.0.dmg"

// installStub writes an executable stub script under the given tool name.
func installStub(t *testing.T, dir, name, script string) {
	t.Helper()

	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(script), 0o755))
}

// setupProject moves into a fresh project root with the version declaration
// in place and the build and metadata stubs as the entire PATH. It returns
// the stub directory so tests can add the imaging tools they want found.
func setupProject(t *testing.T, version string) string {
	t.Helper()

	t.Chdir(t.TempDir())

	require.NoError(t, os.MkdirAll(filepath.Dir(config.DefaultVersionSource), 0o755))
	require.NoError(t, os.WriteFile(
		config.DefaultVersionSource,
		[]byte("package version\n\n// Version is the current application version.\nvar Version = \""+version+"\"\n"),
		0o644,
	))

	stubs := t.TempDir()
	installStub(t, stubs, "make", buildStub)
	installStub(t, stubs, "defaults", defaultsStub)
	t.Setenv("PATH", stubs)

	return stubs
}

// runPackager runs the service in-process with default settings.
func runPackager(t *testing.T) error {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	return packager.Run(ctx, &packager.Options{})
}

// loadReceipt reads the release receipt from its default location.
func loadReceipt(t *testing.T) *release.Receipt {
	t.Helper()

	receipt, err := report.NewFileRepository(config.DefaultReportFile).Load(context.Background())
	require.NoError(t, err)

	return receipt
}

// TestPackager_PublishesVersionedImage runs the whole pipeline in-process and
// checks the published image, the receipt, and that transient state is gone.
func TestPackager_PublishesVersionedImage(t *testing.T) {
	stubs := setupProject(t, "1.4.0")
	installStub(t, stubs, "create-dmg", createDMGStub)
	installStub(t, stubs, "hdiutil", hdiutilStub)

	// A leftover from an earlier run must be replaced, not appended to.
	require.NoError(t, os.WriteFile(artifactName, []byte("stale image"), 0o644))

	require.NoError(t, runPackager(t))

	artifact, err := os.ReadFile(artifactName)
	require.NoError(t, err)
	require.Equal(t, "CFBundleShortVersionString=1.4.0\n", string(artifact))

	receipt := loadReceipt(t)
	require.Equal(t, "1.4.0", receipt.Version)
	require.Equal(t, artifactName, receipt.Artifact)
	require.Equal(t, "1.4.0", receipt.BundleVersion)
	require.Equal(t, "1.4.0", receipt.ImageVersion)
	require.Equal(t, int64(len(artifact)), receipt.SizeBytes)
	require.NotEmpty(t, receipt.ChecksumSHA512)
	require.NotEmpty(t, receipt.BuiltBy)
	require.False(t, receipt.CreatedAt.IsZero())

	require.Len(t, receipt.Stages, 3)

	for _, stage := range receipt.Stages {
		require.Equal(t, "ok", stage.Status)
	}

	// Scratch image, staging area, run marker and the replaced artifact's
	// backup must all be gone.
	require.NoFileExists(t, filepath.Join("dist", "KaTrain-rw.dmg"))
	require.NoDirExists(t, filepath.Join("dist", "dmg"))
	require.NoFileExists(t, packager.MarkerFilename)
	require.NoFileExists(t, artifactName+".old")

	// A second run over the same checkout succeeds identically.
	require.NoError(t, runPackager(t))
	require.FileExists(t, artifactName)
	require.NoDirExists(t, filepath.Join("dist", "dmg"))
	require.Equal(t, "1.4.0", loadReceipt(t).Version)
}

// TestPackager_FallsBackToSystemImager verifies the run still publishes when
// only the system imaging tool is on the PATH.
func TestPackager_FallsBackToSystemImager(t *testing.T) {
	stubs := setupProject(t, "1.4.0")
	installStub(t, stubs, "hdiutil", hdiutilStub)

	require.NoError(t, runPackager(t))
	require.FileExists(t, artifactName)

	receipt := loadReceipt(t)
	require.Equal(t, "1.4.0", receipt.ImageVersion)
}

// TestPackager_ToleratesPrimaryImagerFailure verifies a non-zero exit of the
// primary tool does not abort the run as long as the image got written, and
// that verification probes the built bundle when no mounting tool exists.
func TestPackager_ToleratesPrimaryImagerFailure(t *testing.T) {
	stubs := setupProject(t, "1.4.0")
	installStub(t, stubs, "create-dmg", grumpyCreateDMGStub)

	require.NoError(t, runPackager(t))
	require.FileExists(t, artifactName)

	receipt := loadReceipt(t)
	require.Equal(t, "1.4.0", receipt.ImageVersion)
}

// TestPackager_AbortsOnVersionMismatch verifies a bundle stamped with a
// different version stops the run before anything is staged or packaged.
func TestPackager_AbortsOnVersionMismatch(t *testing.T) {
	stubs := setupProject(t, "1.4.0")
	installStub(t, stubs, "make", skewedBuildStub)

	err := runPackager(t)
	require.ErrorIs(t, err, release.ErrVersionMismatch)
	require.ErrorContains(t, err, "1.3.9")

	require.NoFileExists(t, artifactName)
	require.NoDirExists(t, filepath.Join("dist", "dmg"))
	require.NoFileExists(t, packager.MarkerFilename)

	_, err = report.NewFileRepository(config.DefaultReportFile).Load(context.Background())
	require.ErrorIs(t, err, report.ErrNotFound)
}

// TestPackager_FailsWhenBuildFails verifies a failed build surfaces its
// output and leaves no artifact behind.
func TestPackager_FailsWhenBuildFails(t *testing.T) {
	stubs := setupProject(t, "1.4.0")
	installStub(t, stubs, "make", failingBuildStub)

	err := runPackager(t)
	require.ErrorIs(t, err, release.ErrBuild)
	require.ErrorContains(t, err, "Error 1")

	require.NoFileExists(t, artifactName)
	require.NoFileExists(t, packager.MarkerFilename)
}

// TestPackager_FailsWhenNoImageProduced verifies that tolerating the primary
// tool's exit status never masks a genuinely missing image, and that the
// populated staging area is released on the failure path.
func TestPackager_FailsWhenNoImageProduced(t *testing.T) {
	stubs := setupProject(t, "1.4.0")
	// Exits cleanly without writing anything.
	installStub(t, stubs, "create-dmg", "#!/bin/sh\nexit 0\n")

	err := runPackager(t)
	require.ErrorIs(t, err, release.ErrPackaging)

	require.NoFileExists(t, artifactName)
	require.NoDirExists(t, filepath.Join("dist", "dmg"))
	require.NoFileExists(t, packager.MarkerFilename)
}
