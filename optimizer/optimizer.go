// Package optimizer runs an external bytecode optimizer such as Binaryen's
// wasm-opt over a module file.
package optimizer

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/wippyai/wasm-types/errors"
)

// DefaultCommand is the optimizer looked up on PATH when Command is empty.
const DefaultCommand = "wasm-opt"

// Optimizer describes an optimizer invocation. The command line is
//
//	Command Args... <in> -o <out>
type Optimizer struct {
	Command string
	Args    []string
}

// Run optimizes in and writes the result to out. Cancelling ctx kills the
// optimizer process.
func (o Optimizer) Run(ctx context.Context, in, out string) error {
	command := o.Command
	if command == "" {
		command = DefaultCommand
	}

	path, err := exec.LookPath(command)
	if err != nil {
		e := errors.NotFound(errors.PhaseOptimize, "optimizer", command)
		e.Cause = err
		return e
	}

	args := make([]string, 0, len(o.Args)+3)
	args = append(args, o.Args...)
	args = append(args, in, "-o", out)

	var stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, path, args...)
	cmd.Stderr = &stderr

	start := time.Now()
	Logger().Debug("running optimizer", zap.String("command", path), zap.Strings("args", args))

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return errors.Wrap(errors.PhaseOptimize, errors.KindIO, ctxErr, "optimizer interrupted")
		}
		return errors.New(errors.PhaseOptimize, errors.KindInvalidInput).
			Cause(err).
			Detail("%s failed: %s", command, strings.TrimSpace(stderr.String())).
			Build()
	}

	info, err := os.Stat(out)
	if err != nil {
		return errors.IO(errors.PhaseOptimize, "optimizer produced no output", err)
	}

	Logger().Info("module optimized",
		zap.String("output", out),
		zap.Int64("size", info.Size()),
		zap.Duration("elapsed", time.Since(start)),
	)
	return nil
}
