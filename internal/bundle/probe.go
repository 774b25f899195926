package bundle

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/noahxp/katrain/internal/service/common"
)

// metadataReader is the host tool extracting values from property lists.
const metadataReader = "defaults"

// Probe reads metadata out of a built application bundle.
// The identical invocation serves the post-build and the post-package
// checks; only the bundle path differs between them.
type Probe struct {
	// Timeout bounds the metadata reader invocation when positive.
	Timeout time.Duration
}

var (
	// errBundleMissing is returned when the probed bundle does not exist.
	errBundleMissing = errors.New("bundle does not exist")
	// errEmptyMetadataValue is returned when the reader yields nothing for a key.
	errEmptyMetadataValue = errors.New("metadata value is empty")
)

// ReadVersion returns the value stored under key in the bundle's property list.
// The read is strictly read-only.
func (p Probe) ReadVersion(ctx context.Context, bundlePath, key string) (string, error) {
	if _, err := os.Stat(bundlePath); err != nil {
		return "", fmt.Errorf("%w: %s", errBundleMissing, bundlePath)
	}

	abs, err := filepath.Abs(bundlePath)
	if err != nil {
		return "", fmt.Errorf("resolve bundle path: %w", err)
	}

	// The reader resolves the .plist extension itself.
	result, err := common.Run(ctx, common.Command{
		Name:    metadataReader,
		Args:    []string{"read", filepath.Join(abs, "Contents", "Info"), key},
		Timeout: p.Timeout,
	})
	if err != nil {
		return "", fmt.Errorf("read %s from %s: %w", key, bundlePath, err)
	}

	value := strings.TrimSpace(result.Output)
	if value == "" {
		return "", fmt.Errorf("%w: %s in %s", errEmptyMetadataValue, key, bundlePath)
	}

	return value, nil
}
