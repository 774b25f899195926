package packager

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/noahxp/katrain/internal/domain/release"
	"github.com/noahxp/katrain/internal/imaging"
	"github.com/noahxp/katrain/internal/logger"
	"github.com/noahxp/katrain/internal/service/common"
)

// removeAll deletes each path recursively, tolerating absent ones.
func (p *pipeline) removeAll(paths ...string) error {
	for _, path := range paths {
		if err := os.RemoveAll(path); err != nil {
			return fmt.Errorf("remove %s: %w", path, err)
		}
	}

	return nil
}

// build runs the external build command with the resolved version injected
// through the configured environment variable, then verifies the result.
func (p *pipeline) build(ctx context.Context) error {
	name, args := p.cfg.BuildCommand[0], p.cfg.BuildCommand[1:]

	logger.InfoKV(ctx, "Building bundle",
		"command", strings.Join(p.cfg.BuildCommand, " "),
		"version_env", p.cfg.VersionEnv,
		"version", p.version)

	result, err := common.Run(ctx, common.Command{
		Name:    name,
		Args:    args,
		Env:     map[string]string{p.cfg.VersionEnv: p.version},
		Timeout: p.cfg.CommandTimeout,
	})
	if err != nil {
		return fmt.Errorf("%w: %w: %s", release.ErrBuild, err, strings.TrimSpace(result.Output))
	}

	if _, err = os.Stat(p.bundlePath()); err != nil {
		return fmt.Errorf("%w: no bundle at %s after build", release.ErrBuild, p.bundlePath())
	}

	if err = p.advance(ctx, release.StateBuilt); err != nil {
		return err
	}

	return p.verifyBuild(ctx)
}

// verifyBuild compares the bundle's embedded version against the resolved
// one, before anything gets staged or packaged.
func (p *pipeline) verifyBuild(ctx context.Context) error {
	probed, err := p.probe.ReadVersion(ctx, p.bundlePath(), p.cfg.VersionKey)
	if err != nil {
		return fmt.Errorf("%w: %w", release.ErrProbe, err)
	}

	p.bundleVersion = probed

	if err = p.ensureSameVersion(probed, "bundle"); err != nil {
		return err
	}

	logger.InfoKV(ctx, "Bundle version verified", "version", probed)

	return p.advance(ctx, release.StateBuildVerified)
}

// packageImage stages the bundle, authors the disk image, publishes it, and
// verifies the published artifact.
func (p *pipeline) packageImage(ctx context.Context) error {
	if err := p.area.Acquire(ctx); err != nil {
		return fmt.Errorf("%w: %w", release.ErrPackaging, err)
	}

	// The area belongs to this run alone; give it back on every exit path.
	defer func() {
		if err := p.area.Release(ctx); err != nil {
			logger.Warnf(ctx, "Could not release staging area: %v", err)
		}
	}()

	if err := p.area.Populate(ctx, p.bundlePath()); err != nil {
		return fmt.Errorf("%w: %w", release.ErrPackaging, err)
	}

	if err := p.advance(ctx, release.StateStaged); err != nil {
		return err
	}

	if err := p.author(ctx); err != nil {
		return err
	}

	if err := p.advance(ctx, release.StatePackaged); err != nil {
		return err
	}

	return p.verifyPackage(ctx)
}

// author selects an imaging tool, creates the scratch image, and publishes
// it as the final artifact.
func (p *pipeline) author(ctx context.Context) error {
	authorer, err := imaging.Select(imaging.CreateDMG{}, imaging.HDIUtil{})
	if err != nil {
		return fmt.Errorf("%w: %w", release.ErrPackaging, err)
	}

	logger.InfoKV(ctx, "Authoring disk image", "tool", authorer.Name())

	scratch := p.scratchImagePath()
	request := imaging.Request{
		StagingPath: p.cfg.StagingDir,
		OutputPath:  scratch,
		VolumeName:  p.volumeName(),
		AppName:     p.cfg.AppName,
		Look: imaging.Look{
			VolumeIcon:  p.cfg.VolumeIcon,
			WindowPos:   p.cfg.WindowPos,
			WindowSize:  p.cfg.WindowSize,
			IconSize:    p.cfg.IconSize,
			IconPos:     p.cfg.IconPos,
			DropLinkPos: p.cfg.DropLinkPos,
		},
		Timeout: p.cfg.CommandTimeout,
	}

	if err = authorer.Create(ctx, request); err != nil {
		return fmt.Errorf("%w: %w", release.ErrPackaging, err)
	}

	// Tool exit codes lie; the authored file decides.
	if _, err = imaging.ValidateImage(scratch); err != nil {
		return fmt.Errorf("%w: %w", release.ErrPackaging, err)
	}

	checksum, size, err := imaging.Publish(ctx, scratch, p.artifactPath())
	if err != nil {
		return fmt.Errorf("%w: %w", release.ErrPackaging, err)
	}

	p.checksum, p.size = checksum, size

	logger.InfoKV(ctx, "Disk image published",
		"artifact", p.artifactPath(), "size_bytes", size)

	return nil
}

// verifyPackage re-validates the published artifact and the version it
// actually carries.
func (p *pipeline) verifyPackage(ctx context.Context) error {
	if _, err := imaging.ValidateImage(p.artifactPath()); err != nil {
		return fmt.Errorf("%w: %w", release.ErrPackaging, err)
	}

	verifier := imaging.Verifier{
		Probe:   p.probe,
		AppName: p.cfg.AppName,
		Key:     p.cfg.VersionKey,
		Timeout: p.cfg.CommandTimeout,
	}

	probed, err := verifier.ReadImageVersion(ctx, p.artifactPath(), p.bundlePath())
	if err != nil {
		return fmt.Errorf("%w: %w", release.ErrProbe, err)
	}

	p.imageVersion = probed

	if err = p.ensureSameVersion(probed, "image"); err != nil {
		return err
	}

	logger.InfoKV(ctx, "Image version verified", "version", probed)

	return p.advance(ctx, release.StatePackageVerified)
}
