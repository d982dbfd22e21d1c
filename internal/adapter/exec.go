package adapter

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/seqqap/seqqap/internal/ctxlog"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
)

// maxLogBytes bounds how much tool output is carried into the report; the
// full output is always on disk in the step directory.
const maxLogBytes = 4096

// ExecAdapter is the stock runner: it builds an argv from the service's
// command template and runs the external binary in the step's work
// directory. Success condition is exit status zero; a context deadline is
// treated exactly like a failure so the executor's fallback logic applies.
type ExecAdapter struct{}

// NewExecAdapter returns the exec runner.
func NewExecAdapter() *ExecAdapter { return &ExecAdapter{} }

// Invoke runs the service's command. Tokens of the form {name} in the
// command template resolve against workspace file roles first, then merged
// parameters; an unresolvable token fails the invocation before anything
// is started.
func (a *ExecAdapter) Invoke(ctx context.Context, inv Invocation) *Outcome {
	logger := ctxlog.FromContext(ctx).With("service", inv.Service.Name)

	if strings.TrimSpace(inv.Service.Command) == "" {
		return failed("service declares no command")
	}

	argv, err := expandCommand(inv.Service.Command, inv)
	if err != nil {
		return failed(err.Error())
	}

	runCtx := ctx
	if inv.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, inv.Timeout)
		defer cancel()
	}

	logger.Debug("Invoking external tool.", "argv", argv, "dir", inv.WorkDir)
	start := time.Now()
	cmd := exec.CommandContext(runCtx, argv[0], argv[1:]...)
	cmd.Dir = inv.WorkDir
	output, runErr := cmd.CombinedOutput()
	elapsed := time.Since(start)

	logPath := filepath.Join(inv.WorkDir, inv.Service.Name+".log")
	if werr := os.WriteFile(logPath, output, 0o644); werr != nil {
		logger.Warn("Could not write tool log.", "path", logPath, "error", werr)
	}

	if runErr != nil {
		reason := runErr.Error()
		if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
			reason = fmt.Sprintf("timed out after %s", inv.Timeout)
		}
		logger.Debug("Tool failed.", "reason", reason, "elapsed", elapsed)
		out := failed(reason)
		out.Log = tail(output)
		return out
	}

	artifacts := make(map[string]string, len(inv.Service.Artifacts))
	for role, rel := range inv.Service.Artifacts {
		path := filepath.Join(inv.WorkDir, rel)
		if _, err := os.Stat(path); err != nil {
			out := failed(fmt.Sprintf("declared artifact %q missing: %s", role, rel))
			out.Log = tail(output)
			return out
		}
		artifacts[role] = path
	}

	logger.Debug("Tool finished.", "elapsed", elapsed)
	return &Outcome{
		Status:    StatusOK,
		Artifacts: artifacts,
		Produced:  inv.Service.Produces,
		Log:       tail(output),
	}
}

// expandCommand splits the template into argv elements and substitutes
// {name} tokens inside each element. Splitting happens before substitution,
// so a path containing spaces stays one argument.
func expandCommand(template string, inv Invocation) ([]string, error) {
	fields := strings.Fields(template)
	argv := make([]string, 0, len(fields))
	for _, field := range fields {
		expanded, err := expandTokens(field, inv)
		if err != nil {
			return nil, err
		}
		argv = append(argv, expanded)
	}
	if len(argv) == 0 {
		return nil, fmt.Errorf("empty command after expansion")
	}
	return argv, nil
}

func expandTokens(s string, inv Invocation) (string, error) {
	var b strings.Builder
	for {
		open := strings.IndexByte(s, '{')
		if open < 0 {
			b.WriteString(s)
			return b.String(), nil
		}
		closing := strings.IndexByte(s[open:], '}')
		if closing < 0 {
			return "", fmt.Errorf("unterminated token in command: %q", s)
		}
		name := s[open+1 : open+closing]
		value, err := resolveToken(name, inv)
		if err != nil {
			return "", err
		}
		b.WriteString(s[:open])
		b.WriteString(value)
		s = s[open+closing+1:]
	}
}

func resolveToken(name string, inv Invocation) (string, error) {
	if path, ok := inv.Files[name]; ok {
		return path, nil
	}
	if val, ok := inv.Params[name]; ok {
		if val.IsNull() {
			return "", fmt.Errorf("parameter %q has no value", name)
		}
		str, err := convert.Convert(val, cty.String)
		if err != nil {
			return "", fmt.Errorf("parameter %q: %w", name, err)
		}
		return str.AsString(), nil
	}
	return "", fmt.Errorf("command token %q matches no file role or parameter", name)
}

func failed(reason string) *Outcome {
	return &Outcome{Status: StatusFailed, Reason: reason}
}

func tail(output []byte) string {
	if len(output) <= maxLogBytes {
		return string(output)
	}
	return string(output[len(output)-maxLogBytes:])
}
