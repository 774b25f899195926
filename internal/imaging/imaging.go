package imaging

import (
	"context"
	"errors"
	"time"

	"github.com/noahxp/katrain/internal/config"
)

// Look holds the cosmetic window options of the primary authoring tool.
type Look struct {
	// VolumeIcon is an optional .icns path shown as the volume icon.
	VolumeIcon string
	// WindowPos is the top-left position of the image window.
	WindowPos config.Point
	// WindowSize is the size of the image window.
	WindowSize config.Size
	// IconSize is the icon size inside the window.
	IconSize int
	// IconPos is the position of the application icon.
	IconPos config.Point
	// DropLinkPos is the position of the Applications drop link.
	DropLinkPos config.Point
}

// Request describes one disk image to author.
type Request struct {
	// StagingPath is the directory whose contents become the image.
	StagingPath string
	// OutputPath is where the image is written.
	OutputPath string
	// VolumeName is the name of the mounted volume.
	VolumeName string
	// AppName is the bundle name inside the staging area, without the .app suffix.
	AppName string
	// Look carries the cosmetic options. Only the primary tool honors them.
	Look Look
	// Timeout bounds the authoring invocation when positive.
	Timeout time.Duration
}

// Authorer creates a disk image from a staged layout.
type Authorer interface {
	// Name identifies the underlying tool.
	Name() string
	// Available reports whether the tool can run on this host.
	Available() bool
	// Create authors the image described by the request.
	Create(ctx context.Context, req Request) error
}

// errNoAuthorer is returned when no disk image tool is available.
var errNoAuthorer = errors.New("no disk image tool available")

// Select returns the first available authorer, in preference order.
//
//nolint:ireturn,nolintlint // Returning the selected Authorer is the point.
func Select(authorers ...Authorer) (Authorer, error) {
	for _, authorer := range authorers {
		if authorer.Available() {
			return authorer, nil
		}
	}

	return nil, errNoAuthorer
}
