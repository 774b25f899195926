package imaging

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/noahxp/katrain/internal/bundle"
	"github.com/noahxp/katrain/internal/logger"
	"github.com/noahxp/katrain/internal/service/common"
)

// Verifier re-reads the version embedded in a published image.
type Verifier struct {
	// Probe reads bundle metadata.
	Probe bundle.Probe
	// AppName locates the bundle inside the mounted image.
	AppName string
	// Key is the metadata key holding the version.
	Key string
	// Timeout bounds the mount and detach invocations when positive.
	Timeout time.Duration
}

// ReadImageVersion returns the version the image actually carries. When the
// host can mount images, the image is attached read-only and the bundle
// inside it is probed. Otherwise the built bundle the image was authored
// from is probed instead.
func (v Verifier) ReadImageVersion(ctx context.Context, imagePath, builtBundlePath string) (string, error) {
	if !common.Available(hdiutilTool) {
		logger.Warn(ctx, "Image mounting unavailable, probing the built bundle instead")

		return v.Probe.ReadVersion(ctx, builtBundlePath, v.Key)
	}

	mountpoint, err := os.MkdirTemp("", "katrain-image-*")
	if err != nil {
		return "", fmt.Errorf("create mountpoint: %w", err)
	}

	// Best-effort cleanup.
	defer func() {
		_ = os.Remove(mountpoint)
	}()

	_, err = common.Run(ctx, common.Command{
		Name:    hdiutilTool,
		Args:    []string{"attach", "-readonly", "-nobrowse", "-mountpoint", mountpoint, imagePath},
		Timeout: v.Timeout,
	})
	if err != nil {
		return "", fmt.Errorf("attach image: %w", err)
	}

	// Detach still runs when the run is interrupted mid-probe.
	detachCtx := context.WithoutCancel(ctx)

	defer func() {
		if _, detachErr := common.Run(detachCtx, common.Command{
			Name:    hdiutilTool,
			Args:    []string{"detach", mountpoint},
			Timeout: v.Timeout,
		}); detachErr != nil {
			logger.Warnf(detachCtx, "Could not detach image at %s: %v", mountpoint, detachErr)
		}
	}()

	return v.Probe.ReadVersion(ctx, filepath.Join(mountpoint, v.AppName+".app"), v.Key)
}
