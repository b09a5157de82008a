package executor

import (
	"context"
	"time"
)

// Executor defines the interface for executing external commands
type Executor interface {
	Execute(ctx context.Context, name string, args ...string) (string, error)
	// ExecuteInterruptible runs until the command exits or ctx is done. On
	// cancellation the process receives an interrupt and is killed only if
	// it has not exited after grace. A command stopped this way is not an
	// error.
	ExecuteInterruptible(ctx context.Context, grace time.Duration, name string, args ...string) error
}
