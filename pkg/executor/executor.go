package executor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"
)

type implExecutor struct{}

// New creates a new Executor instance
func New() Executor {
	return &implExecutor{}
}

// Execute runs an external command with the given arguments
func (e *implExecutor) Execute(ctx context.Context, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return "", commandError(name, err, &stderr)
	}

	return stdout.String(), nil
}

// ExecuteInterruptible runs a long-lived command such as a live capture
func (e *implExecutor) ExecuteInterruptible(ctx context.Context, grace time.Duration, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Cancel = func() error {
		return cmd.Process.Signal(os.Interrupt)
	}
	cmd.WaitDelay = grace

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err != nil && ctx.Err() != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) || errors.Is(err, exec.ErrWaitDelay) {
			return nil
		}
	}
	if err != nil {
		return commandError(name, err, &stderr)
	}
	return nil
}

func commandError(name string, err error, stderr *bytes.Buffer) error {
	// Include stderr in error message for debugging
	stderrStr := strings.TrimSpace(stderr.String())
	if stderrStr != "" {
		return fmt.Errorf("command '%s' failed: %w\nstderr: %s", name, err, stderrStr)
	}
	return fmt.Errorf("command '%s' failed: %w", name, err)
}
