package builder

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"

	"github.com/conneroisu/docmux/internal/validation"
)

// Command is one generator invocation.
type Command struct {
	Dir     string
	Line    string
	Verbose bool
}

// Runner executes generator commands.
type Runner interface {
	Run(ctx context.Context, cmd Command) error
}

// ExecRunner runs commands as subprocesses without a shell. Verbose commands
// stream their output to Stdout and Stderr; quiet ones keep it for the error
// message.
type ExecRunner struct {
	Stdout io.Writer
	Stderr io.Writer
}

// Run implements Runner.
func (r *ExecRunner) Run(ctx context.Context, c Command) error {
	parts, err := validation.ParseCommand(c.Line)
	if err != nil {
		return fmt.Errorf("command validation failed: %w", err)
	}

	cmd := exec.CommandContext(ctx, parts[0], parts[1:]...)
	cmd.Dir = c.Dir

	if c.Verbose {
		cmd.Stdout = r.Stdout
		cmd.Stderr = r.Stderr
		if err := cmd.Run(); err != nil {
			if ctx.Err() != nil {
				return fmt.Errorf("%s cancelled: %w", c.Line, ctx.Err())
			}
			return fmt.Errorf("%s failed: %w", c.Line, err)
		}
		return nil
	}

	var output bytes.Buffer
	cmd.Stdout = &output
	cmd.Stderr = &output
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("%s cancelled: %w", c.Line, ctx.Err())
		}
		return fmt.Errorf("%s failed: %w\nOutput: %s", c.Line, err, output.Bytes())
	}

	return nil
}
