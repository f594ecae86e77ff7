package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// SubprocessManager runs short helper commands (dependency probes, package
// upgrades) with a default timeout. Commands run one at a time.
type SubprocessManager struct {
	mu sync.Mutex

	defaultTimeout time.Duration
}

// NewSubprocessManager creates a new subprocess manager.
func NewSubprocessManager(timeout time.Duration) *SubprocessManager {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &SubprocessManager{
		defaultTimeout: timeout,
	}
}

// Execute runs a command and returns its combined output.
func (sm *SubprocessManager) Execute(ctx context.Context, name string, args ...string) ([]byte, error) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	start := time.Now()
	timeout := sm.defaultTimeout
	if deadline, hasDeadline := ctx.Deadline(); hasDeadline {
		timeout = deadline.Sub(start)
	} else {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, name, args...)
	output, err := cmd.CombinedOutput()
	logExecution(name, args, time.Since(start), err)

	if ctx.Err() != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, NewError(ErrorCodeTimeout, name, fmt.Sprintf("timed out after %v", timeout.Round(10*time.Millisecond)), ctx.Err())
		}
		return nil, NewError(ErrorCodeCanceled, name, "", ctx.Err())
	}

	if err != nil {
		return output, fmt.Errorf("subprocess failed: %w\noutput: %s", err, strings.TrimSpace(string(output)))
	}

	return output, nil
}

// CheckBinary checks if a binary exists in the system PATH.
func CheckBinary(name string) (string, error) {
	path, err := exec.LookPath(name)
	if err != nil {
		return "", fmt.Errorf("binary '%s' not found in PATH: %w", name, err)
	}
	return path, nil
}

func logExecution(command string, args []string, duration time.Duration, err error) {
	if err != nil {
		log.Debug("Subprocess failed",
			"command", command,
			"args", args,
			"duration", duration,
			"error", err)
		return
	}
	log.Debug("Subprocess executed",
		"command", command,
		"args", args,
		"duration", duration)
}
