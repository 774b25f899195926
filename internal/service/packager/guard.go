package packager

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/mitchellh/go-ps"

	"github.com/noahxp/katrain/internal/logger"
)

const (
	// MarkerFilename marks that a packaging run is in progress, so two runs
	// can never fight over the staging area and the artifact.
	MarkerFilename = "katrain-packager-marker.bin"

	// packagerExecutable is the process name a live run appears under.
	packagerExecutable = "katrain-packager"
)

// errAlreadyRunning indicates another packaging run owns the marker.
var errAlreadyRunning = errors.New("another packaging run is in progress")

// acquireRunMarker claims the single-run marker or refuses the run.
func acquireRunMarker(ctx context.Context) error {
	if isPackagerRunningNow(ctx) {
		return errAlreadyRunning
	}

	if err := os.WriteFile(MarkerFilename, []byte(strconv.Itoa(os.Getpid())), 0o644); err != nil {
		return fmt.Errorf("write run marker: %w", err)
	}

	return nil
}

// releaseRunMarker removes the marker. Safe when it is already gone.
func releaseRunMarker(ctx context.Context) {
	if _, err := os.Stat(MarkerFilename); err == nil {
		_ = os.Remove(MarkerFilename)

		logger.Debug(ctx, "Run marker removed")
	}
}

// isPackagerRunningNow checks presence of the run marker and attempts
// recovery when it looks abandoned.
func isPackagerRunningNow(ctx context.Context) bool {
	logger.Debug(ctx, "Checking for the presence of a run marker")

	_, err := os.Stat(MarkerFilename)
	if err == nil {
		if anotherProcessAlive(packagerExecutable) {
			return true
		}

		logger.Info(ctx, "Run marker is abandoned, removing it")

		if err = os.Remove(MarkerFilename); err != nil {
			return true
		}

		return false
	}

	if errors.Is(err, os.ErrNotExist) {
		return false
	}

	logger.Infof(ctx, "Unable to read run marker: %v", err)

	return false
}

// anotherProcessAlive reports whether a foreign process with the given
// executable name exists. When the process table cannot be read, the
// marker is treated as live.
func anotherProcessAlive(executable string) bool {
	processList, err := ps.Processes()
	if err != nil {
		return true
	}

	thisProcessID := os.Getpid()

	for _, process := range processList {
		if process.Pid() == thisProcessID {
			continue
		}

		if process.Executable() == executable {
			return true
		}
	}

	return false
}
