package imaging

import (
	"context"
	"fmt"
	"strings"

	"github.com/noahxp/katrain/internal/service/common"
)

// hdiutilTool is the system imaging tool, used both as the authoring
// fallback and for mounting images during verification.
const hdiutilTool = "hdiutil"

// HDIUtil authors images with the system hdiutil tool. The result is a plain
// compressed image without the drag-to-install cosmetics.
type HDIUtil struct{}

// Name returns the tool name.
func (HDIUtil) Name() string {
	return hdiutilTool
}

// Available reports whether the tool is on the PATH.
func (HDIUtil) Available() bool {
	return common.Available(hdiutilTool)
}

// Create runs hdiutil create. Unlike the primary tool, a failed exit here
// is a real failure.
func (HDIUtil) Create(ctx context.Context, req Request) error {
	result, err := common.Run(ctx, common.Command{
		Name: hdiutilTool,
		Args: []string{
			"create",
			"-volname", req.VolumeName,
			"-srcfolder", req.StagingPath,
			"-ov",
			"-format", "UDZO",
			req.OutputPath,
		},
		Timeout: req.Timeout,
	})
	if err != nil {
		return fmt.Errorf("%s create: %w: %s", hdiutilTool, err, strings.TrimSpace(result.Output))
	}

	return nil
}
