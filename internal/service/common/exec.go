//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"time"
)

// Command describes one external tool invocation.
type Command struct {
	// Name is the executable name or path.
	Name string
	// Args are the command line arguments.
	Args []string
	// Dir is the working directory. Empty means the current directory.
	Dir string
	// Env holds extra environment variables appended to the parent environment.
	// The parent environment is never mutated.
	Env map[string]string
	// Timeout bounds the invocation when positive. Zero means no limit:
	// builds and image creation legitimately take as long as they take.
	Timeout time.Duration
}

// Result captures what an external tool produced.
type Result struct {
	// Output is the combined stdout and stderr of the tool.
	Output string
	// ExitCode is the tool's exit status. It is -1 when the tool
	// could not be started or was killed.
	ExitCode int
}

// errEmptyCommand is returned when a command without a name is run.
var errEmptyCommand = errors.New("command name is empty")

// Run executes the command and captures its combined output.
// A failed invocation returns both an error and a Result holding whatever
// the tool printed, so callers can decide how much of it to surface.
// There are no retries: every tool here is run exactly once per stage.
func Run(ctx context.Context, command Command) (*Result, error) {
	if command.Name == "" {
		return nil, errEmptyCommand
	}

	if command.Timeout > 0 {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, command.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, command.Name, command.Args...)
	cmd.Dir = command.Dir

	if len(command.Env) > 0 {
		env := os.Environ()
		for key, value := range command.Env {
			env = append(env, key+"="+value)
		}

		cmd.Env = env
	}

	output, err := cmd.CombinedOutput()

	result := &Result{
		Output:   string(output),
		ExitCode: -1,
	}
	if cmd.ProcessState != nil {
		result.ExitCode = cmd.ProcessState.ExitCode()
	}

	if err != nil {
		return result, fmt.Errorf("run %s: %w", command.Name, err)
	}

	return result, nil
}

// Available reports whether the named tool can be found on the PATH.
func Available(name string) bool {
	_, err := exec.LookPath(name)

	return err == nil
}
