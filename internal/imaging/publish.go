package imaging

import (
	"bytes"
	"context"
	"crypto"
	"encoding/base64"
	"errors"
	"fmt"
	"os"

	goupdate "github.com/doitdistributed/go-update"

	"github.com/noahxp/katrain/internal/logger"

	// Ensure SHA512 is available for checksum calculation.
	_ "crypto/sha512"
)

const (
	// artifactMode is the permission of the published image.
	artifactMode os.FileMode = 0o644

	// checksumFunction hashes published images.
	checksumFunction crypto.Hash = crypto.SHA512
)

var (
	// errHashUnavailable is returned when the checksum function is not compiled in.
	errHashUnavailable = errors.New("hash function unavailable")
	// errEmptyImage is returned when an authored image has no content.
	errEmptyImage = errors.New("image is empty")
)

// ValidateImage checks that an image exists with actual content and returns
// its size. Authoring success is decided here, not by tool exit codes.
func ValidateImage(path string) (int64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, fmt.Errorf("authored image: %w", err)
	}

	if info.Size() == 0 {
		return 0, fmt.Errorf("%w: %s", errEmptyImage, path)
	}

	return info.Size(), nil
}

// Publish moves the scratch image into place as the final artifact.
// The write goes through a checksum-verified atomic replacement, so a partial
// copy can never masquerade as the artifact. It returns the base64-encoded
// SHA-512 checksum and the published size.
func Publish(ctx context.Context, scratchPath, artifactPath string) (string, int64, error) {
	data, err := os.ReadFile(scratchPath)
	if err != nil {
		return "", 0, fmt.Errorf("read scratch image: %w", err)
	}

	checksum, err := checksumBytes(data)
	if err != nil {
		return "", 0, err
	}

	// The replacement target must exist beforehand.
	if _, err = os.Stat(artifactPath); err != nil && os.IsNotExist(err) {
		if _, err = os.Create(artifactPath); err != nil {
			return "", 0, fmt.Errorf("create artifact target: %w", err)
		}
	}

	options := goupdate.Options{
		TargetPath: artifactPath,
		TargetMode: artifactMode,
		Checksum:   checksum,
		Hash:       checksumFunction,
	}

	if err = goupdate.Apply(bytes.NewReader(data), options); err != nil {
		return "", 0, fmt.Errorf("publish image: %w", err)
	}

	oldFileName := artifactPath + ".old"
	if _, err = os.Stat(oldFileName); err == nil {
		_ = os.Remove(oldFileName)
	}

	if err = os.Remove(scratchPath); err != nil {
		logger.Warnf(ctx, "Could not remove scratch image %s: %v", scratchPath, err)
	}

	logger.DebugKV(ctx, "Image published", "artifact", artifactPath, "size", len(data))

	return base64.StdEncoding.EncodeToString(checksum), int64(len(data)), nil
}

// checksumBytes returns checksum bytes for data using checksumFunction.
func checksumBytes(data []byte) ([]byte, error) {
	if !checksumFunction.Available() {
		return nil, fmt.Errorf("checksum calculation not possible: %w", errHashUnavailable)
	}

	hasher := checksumFunction.New()
	if _, err := hasher.Write(data); err != nil {
		return nil, fmt.Errorf("calculate checksum: %w", err)
	}

	return hasher.Sum(nil), nil
}
