package staging

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/noahxp/katrain/internal/logger"
)

// applicationsTarget is where the convenience drop link points.
const applicationsTarget = "/Applications"

// Area is the transient directory where the disk image layout is assembled.
// Each run owns exactly one area; nothing else may live under its path.
type Area struct {
	// Path is the staging directory.
	Path string
}

// Acquire removes whatever a previous run may have left at the staging
// location and creates the directory fresh.
func (a Area) Acquire(ctx context.Context) error {
	if err := os.RemoveAll(a.Path); err != nil {
		return fmt.Errorf("remove stale staging area: %w", err)
	}

	if err := os.MkdirAll(a.Path, 0o755); err != nil {
		return fmt.Errorf("create staging area: %w", err)
	}

	logger.DebugKV(ctx, "Staging area ready", "path", a.Path)

	return nil
}

// Populate copies the built bundle into the area and creates the
// Applications drop link next to it.
func (a Area) Populate(ctx context.Context, bundlePath string) error {
	target := filepath.Join(a.Path, filepath.Base(bundlePath))

	if err := copyTree(ctx, bundlePath, target); err != nil {
		return fmt.Errorf("copy bundle into staging area: %w", err)
	}

	link := filepath.Join(a.Path, filepath.Base(applicationsTarget))
	if err := os.Symlink(applicationsTarget, link); err != nil {
		return fmt.Errorf("create drop link: %w", err)
	}

	logger.DebugKV(ctx, "Staging area populated", "bundle", target)

	return nil
}

// Release removes the area. It is idempotent, so callers pair every Acquire
// with a deferred Release and it runs on error paths and interrupts too.
func (a Area) Release(ctx context.Context) error {
	if err := os.RemoveAll(a.Path); err != nil {
		return fmt.Errorf("release staging area: %w", err)
	}

	logger.DebugKV(ctx, "Staging area released", "path", a.Path)

	return nil
}

// copyTree mirrors src into dst, preserving file modes and symbolic links.
// Application bundles rely on framework symlinks, so links are recreated
// rather than followed.
func copyTree(ctx context.Context, src, dst string) error {
	return filepath.WalkDir(src, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		// Bundles can be large; stop promptly when the run is interrupted.
		if err = ctx.Err(); err != nil {
			return err
		}

		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}

		target := filepath.Join(dst, rel)

		info, err := entry.Info()
		if err != nil {
			return err
		}

		switch {
		case entry.Type()&fs.ModeSymlink != 0:
			linkTarget, err := os.Readlink(path)
			if err != nil {
				return fmt.Errorf("readlink %s: %w", path, err)
			}

			return os.Symlink(linkTarget, target)
		case entry.IsDir():
			// Children land after the directory, so the owner write bit stays set.
			return os.MkdirAll(target, info.Mode().Perm()|0o700)
		default:
			return copyFile(path, target, info.Mode().Perm())
		}
	})
}

// copyFile copies one regular file with the given permissions.
func copyFile(src, dst string, perm fs.FileMode) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}

	// Best-effort cleanup.
	defer func() {
		_ = in.Close()
	}()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, perm)
	if err != nil {
		return err
	}

	if _, err = io.Copy(out, in); err != nil {
		_ = out.Close()

		return fmt.Errorf("copy %s: %w", src, err)
	}

	return out.Close()
}
