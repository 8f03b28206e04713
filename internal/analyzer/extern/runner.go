package extern

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/codesweep/codesweep/internal/analyzer"
	"github.com/codesweep/codesweep/internal/logging"
)

// ErrTimeout indicates the tool exceeded its configured timeout.
var ErrTimeout = errors.New("extern: tool timed out")

// DefaultTimeout applies when a tool declares none.
const DefaultTimeout = 2 * time.Minute

// Runner executes one tool invocation at a time.
type Runner struct {
	log logging.Logger
}

// NewRunner creates a Runner.
func NewRunner(log logging.Logger) *Runner {
	if log == nil {
		log = logging.NewNopLogger()
	}
	return &Runner{log: log}
}

// Run executes the tool against path and returns its stdout. The {file}
// placeholder in arguments is replaced with the path. A nonzero exit with
// output on stdout is not an error, scanners signal findings that way.
func (r *Runner) Run(ctx context.Context, tool analyzer.Tool, path string) ([]byte, error) {
	timeout := tool.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	args := make([]string, 0, len(tool.Command)-1)
	for _, arg := range tool.Command[1:] {
		args = append(args, strings.ReplaceAll(arg, "{file}", path))
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, tool.Command[0], args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	r.log.Debug("running external tool", "tool", tool.Name, "path", path)
	start := time.Now()
	err := cmd.Run()
	elapsed := time.Since(start)

	if ctx.Err() == context.DeadlineExceeded {
		r.log.Warn("external tool timed out", "tool", tool.Name, "timeout", timeout)
		return nil, fmt.Errorf("%w: %s after %s", ErrTimeout, tool.Name, timeout)
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && stdout.Len() > 0 {
			r.log.Debug("external tool exited nonzero with output",
				"tool", tool.Name, "code", exitErr.ExitCode(), "elapsed", elapsed)
			return stdout.Bytes(), nil
		}
		return nil, fmt.Errorf("run %s: %w: %s", tool.Name, err, strings.TrimSpace(stderr.String()))
	}

	r.log.Debug("external tool finished", "tool", tool.Name, "elapsed", elapsed)
	return stdout.Bytes(), nil
}
