package packager

import (
	"context"
	"fmt"

	"github.com/noahxp/katrain/internal/config"
	"github.com/noahxp/katrain/internal/logger"
)

// Options contains inputs for the packager entry point.
type Options struct {
	// ConfigPath is an optional path to the packaging settings
	// (defaults to katrain-packager.yaml next to the binary).
	ConfigPath string
}

// Run executes the packaging workflow: resolve the version, clean, build,
// verify, and publish the release disk image.
func Run(ctx context.Context, opts *Options) error {
	// Set context with logger name for tracking.
	ctx = logger.WithName(ctx, "katrain-packager")

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	p, err := newPipeline(ctx, cfg)
	if err != nil {
		return fmt.Errorf("initialize packager: %w", err)
	}

	defer p.cleanup(ctx)

	if err = p.Run(ctx); err != nil {
		return fmt.Errorf("packager failed: %w", err)
	}

	logger.Info(ctx, "Packager completed successfully")

	return nil
}
