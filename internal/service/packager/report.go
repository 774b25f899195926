package packager

import (
	"context"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/noahxp/katrain/internal/domain/release"
	"github.com/noahxp/katrain/internal/logger"
	"github.com/noahxp/katrain/internal/service/common"
)

// reportStage logs one status line per finished stage.
func (p *pipeline) reportStage(ctx context.Context, result release.StageResult) {
	if result.Err != nil {
		logger.ErrorKV(ctx, "Stage failed",
			"stage", result.Stage,
			"duration", result.Duration.String(),
			"error", result.Err.Error())

		return
	}

	logger.InfoKV(ctx, "Stage finished",
		"stage", result.Stage,
		"duration", result.Duration.String())
}

// finish writes the release receipt and logs the final summary.
func (p *pipeline) finish(ctx context.Context) error {
	builtBy, err := common.DetectBuilder()
	if err != nil {
		logger.Warnf(ctx, "Could not detect builder identity: %v", err)
	}

	receipt := &release.Receipt{
		Version:        p.version,
		Artifact:       p.artifactPath(),
		SizeBytes:      p.size,
		ChecksumSHA512: p.checksum,
		BundleVersion:  p.bundleVersion,
		ImageVersion:   p.imageVersion,
		BuiltBy:        builtBy,
		CreatedAt:      time.Now().UTC(),
	}

	for _, result := range p.stages {
		receipt.Stages = append(receipt.Stages, result.Report())
	}

	if err = p.receipts.Save(ctx, receipt); err != nil {
		return fmt.Errorf("save release receipt: %w", err)
	}

	logger.InfoKV(ctx, "Release receipt written", "path", p.cfg.ReportFile)

	if err = p.advance(ctx, release.StateReported); err != nil {
		return err
	}

	logger.Infof(ctx, "Release %s ready: %s (%s)",
		p.version, p.artifactPath(), humanize.IBytes(uint64(p.size)))

	return nil
}
