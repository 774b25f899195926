package packager

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/Masterminds/semver/v3"

	"github.com/noahxp/katrain/internal/bundle"
	"github.com/noahxp/katrain/internal/config"
	"github.com/noahxp/katrain/internal/domain/release"
	"github.com/noahxp/katrain/internal/logger"
	"github.com/noahxp/katrain/internal/repository/report"
	"github.com/noahxp/katrain/internal/source"
	"github.com/noahxp/katrain/internal/staging"
)

// pipeline drives a packaging run from source version to published image.
// It is unexported; callers use Run, which encapsulates setup and cleanup.
type pipeline struct {
	// cfg holds the packaging settings for this run.
	cfg *config.Config
	// machine validates that stages and checks happen in order.
	machine *release.Machine
	// probe reads versions back out of bundles and images.
	probe bundle.Probe
	// area is the staging directory owned by this run.
	area staging.Area
	// receipts persists the release receipt.
	receipts report.Repository

	// version is the release version resolved from source.
	version string
	// bundleVersion is the version probed from the built bundle.
	bundleVersion string
	// imageVersion is the version probed from the published image.
	imageVersion string
	// checksum is the base64 SHA-512 of the published image.
	checksum string
	// size is the published image size in bytes.
	size int64
	// stages collects per-stage outcomes for the receipt.
	stages []release.StageResult
}

// newPipeline claims the single-run marker and wires the run's collaborators.
func newPipeline(ctx context.Context, cfg *config.Config) (*pipeline, error) {
	if err := acquireRunMarker(ctx); err != nil {
		return nil, err
	}

	return &pipeline{
		cfg:      cfg,
		machine:  release.NewMachine(),
		probe:    bundle.Probe{Timeout: cfg.CommandTimeout},
		area:     staging.Area{Path: cfg.StagingDir},
		receipts: report.NewFileRepository(cfg.ReportFile),
	}, nil
}

// Run executes the stages in order. The first failure aborts the run;
// nothing after it executes.
func (p *pipeline) Run(ctx context.Context) error {
	if err := p.resolveVersion(ctx); err != nil {
		p.machine.Abort()

		return fmt.Errorf("%w: %w", release.ErrResolution, err)
	}

	steps := []struct {
		stage release.StageName
		run   func(context.Context) error
	}{
		{release.StageClean, p.clean},
		{release.StageBuild, p.build},
		{release.StagePackage, p.packageImage},
	}

	for _, step := range steps {
		started := time.Now()
		err := step.run(ctx)

		result := release.StageResult{
			Stage:    step.stage,
			Duration: time.Since(started),
			Err:      err,
		}
		p.stages = append(p.stages, result)
		p.reportStage(ctx, result)

		if err != nil {
			p.machine.Abort()

			return err
		}
	}

	return p.finish(ctx)
}

// cleanup releases run-wide resources. Stage-scoped resources, the staging
// area included, are released by the stages that acquire them.
func (p *pipeline) cleanup(ctx context.Context) {
	releaseRunMarker(ctx)
}

// resolveVersion reads the release version out of the configured source file.
func (p *pipeline) resolveVersion(ctx context.Context) error {
	resolver := source.Resolver{
		Path:  p.cfg.VersionSource,
		Ident: p.cfg.VersionIdent,
	}

	version, err := resolver.Resolve()
	if err != nil {
		return err
	}

	p.version = version

	logger.InfoKV(ctx, "Resolved release version",
		"version", version, "source", p.cfg.VersionSource)

	return nil
}

// clean removes previous build outputs, the staging area, and any stale
// artifact under the name this run will publish. Missing paths are fine.
func (p *pipeline) clean(ctx context.Context) error {
	logger.InfoKV(ctx, "Cleaning previous outputs",
		"bundle_dir", p.cfg.BundleDir, "artifact", p.artifactPath())

	if err := p.removeAll(p.cfg.BundleDir, p.cfg.StagingDir, p.artifactPath()); err != nil {
		return err
	}

	return p.advance(ctx, release.StateCleaned)
}

// advance moves the state machine and traces the transition.
func (p *pipeline) advance(ctx context.Context, to release.State) error {
	if err := p.machine.Advance(to); err != nil {
		return err
	}

	logger.DebugKV(ctx, "Pipeline state", "state", to)

	return nil
}

// ensureSameVersion checks a probed version equals the resolved release
// version. Comparison is semantic, not textual.
func (p *pipeline) ensureSameVersion(probed, where string) error {
	want, err := semver.NewVersion(p.version)
	if err != nil {
		return fmt.Errorf("%w: parse resolved version %q: %w", release.ErrVersionMismatch, p.version, err)
	}

	got, err := semver.NewVersion(probed)
	if err != nil {
		return fmt.Errorf("%w: %s reports %q, which is not a version: %w",
			release.ErrVersionMismatch, where, probed, err)
	}

	if !want.Equal(got) {
		return fmt.Errorf("%w: %s reports %s, source declares %s",
			release.ErrVersionMismatch, where, probed, p.version)
	}

	return nil
}

// bundlePath is where the build must leave the application bundle.
func (p *pipeline) bundlePath() string {
	return filepath.Join(p.cfg.BundleDir, p.cfg.AppName+".app")
}

// scratchImagePath is where the image is authored before publication.
func (p *pipeline) scratchImagePath() string {
	return filepath.Join(p.cfg.BundleDir, p.cfg.AppName+"-rw.dmg")
}

// artifactPath is the final published image location.
func (p *pipeline) artifactPath() string {
	return filepath.Join(p.cfg.OutputDir, p.cfg.AppName+"-"+p.version+".dmg")
}

// volumeName names the mounted volume after the app and its version.
func (p *pipeline) volumeName() string {
	return p.cfg.AppName + " " + p.version
}
