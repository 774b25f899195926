package imaging

import (
	"context"
	"strconv"
	"strings"

	"github.com/noahxp/katrain/internal/logger"
	"github.com/noahxp/katrain/internal/service/common"
)

// createDMGTool is the primary authoring tool.
const createDMGTool = "create-dmg"

// CreateDMG authors images with the create-dmg tool, which produces the
// polished drag-to-install window.
type CreateDMG struct{}

// Name returns the tool name.
func (CreateDMG) Name() string {
	return createDMGTool
}

// Available reports whether the tool is on the PATH.
func (CreateDMG) Available() bool {
	return common.Available(createDMGTool)
}

// Create invokes the tool. It is known to exit non-zero on cosmetic
// scripting hiccups while still producing a usable image, so a failed exit
// is logged and tolerated; the caller decides success by the output file.
func (c CreateDMG) Create(ctx context.Context, req Request) error {
	result, err := common.Run(ctx, common.Command{
		Name:    createDMGTool,
		Args:    c.args(req),
		Timeout: req.Timeout,
	})
	if err != nil {
		logger.WarnKV(ctx, "Primary imaging tool exited with an error",
			"tool", createDMGTool,
			"exit_code", result.ExitCode,
			"output", strings.TrimSpace(result.Output))
	}

	return nil
}

// args builds the invocation: cosmetic options first, then the output image
// and the staged source directory.
func (c CreateDMG) args(req Request) []string {
	bundleName := req.AppName + ".app"

	args := []string{"--volname", req.VolumeName}

	if req.Look.VolumeIcon != "" {
		args = append(args, "--volicon", req.Look.VolumeIcon)
	}

	args = append(args,
		"--window-pos", strconv.Itoa(req.Look.WindowPos.X), strconv.Itoa(req.Look.WindowPos.Y),
		"--window-size", strconv.Itoa(req.Look.WindowSize.Width), strconv.Itoa(req.Look.WindowSize.Height),
		"--icon-size", strconv.Itoa(req.Look.IconSize),
		"--icon", bundleName, strconv.Itoa(req.Look.IconPos.X), strconv.Itoa(req.Look.IconPos.Y),
		"--hide-extension", bundleName,
		"--app-drop-link", strconv.Itoa(req.Look.DropLinkPos.X), strconv.Itoa(req.Look.DropLinkPos.Y),
		req.OutputPath,
		req.StagingPath,
	)

	return args
}
