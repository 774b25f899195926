package source

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// writeSource drops a Go file with the given contents into a temp dir.
func writeSource(t *testing.T, contents string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "version.go")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))

	return path
}

// TestResolveVar reads a plain var declaration.
func TestResolveVar(t *testing.T) {
	t.Parallel()

	path := writeSource(t, `package version

var Version = "1.4.0"
`)

	got, err := Resolver{Path: path, Ident: "Version"}.Resolve()
	require.NoError(t, err)
	require.Equal(t, "1.4.0", got)
}

// TestResolveGroupedConst reads the right name out of a grouped declaration.
func TestResolveGroupedConst(t *testing.T) {
	t.Parallel()

	path := writeSource(t, `package version

const (
	Commit  = "none"
	Version = "2.0.1"
)
`)

	got, err := Resolver{Path: path, Ident: "Version"}.Resolve()
	require.NoError(t, err)
	require.Equal(t, "2.0.1", got)
}

// TestResolveMissingFile fails when the source file is absent.
func TestResolveMissingFile(t *testing.T) {
	t.Parallel()

	_, err := Resolver{
		Path:  filepath.Join(t.TempDir(), "absent.go"),
		Ident: "Version",
	}.Resolve()
	require.Error(t, err)
}

// TestResolveMissingIdent fails when the declaration does not exist.
func TestResolveMissingIdent(t *testing.T) {
	t.Parallel()

	path := writeSource(t, `package version

var Commit = "none"
`)

	_, err := Resolver{Path: path, Ident: "Version"}.Resolve()
	require.ErrorIs(t, err, errVersionNotFound)
}

// TestResolveNonString fails when the declaration is not a string literal.
func TestResolveNonString(t *testing.T) {
	t.Parallel()

	path := writeSource(t, `package version

var Version = 140
`)

	_, err := Resolver{Path: path, Ident: "Version"}.Resolve()
	require.ErrorIs(t, err, errVersionNotString)
}

// TestResolveRejectsLooseVersions fails on values that are not strict semver.
func TestResolveRejectsLooseVersions(t *testing.T) {
	t.Parallel()

	for _, value := range []string{"v1.4.0", "1.4", "release-1"} {
		path := writeSource(t, `package version

var Version = "`+value+`"
`)

		_, err := Resolver{Path: path, Ident: "Version"}.Resolve()
		require.Error(t, err, value)
	}
}
