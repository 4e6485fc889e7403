package executor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"time"
)

// ScriptDriver spawns a sandboxed child process via a `timeout` wrapper.
// Per spec.md §4.2.3: cleared environment, minimal injected vars, closed
// stdin, captured stdout/stderr, working directory pinned to ScriptsDir.
type ScriptDriver struct {
	ScriptsDir     string
	TimeoutSeconds int64
}

func NewScriptDriver(scriptsDir string, timeoutSeconds int64) *ScriptDriver {
	return &ScriptDriver{ScriptsDir: scriptsDir, TimeoutSeconds: timeoutSeconds}
}

func (d *ScriptDriver) Run(ctx context.Context, raw json.RawMessage, ec ExecContext) (Result, error) {
	var cfg ScriptConfig
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return Result{}, fmt.Errorf("failed to parse script config: %w", err)
	}

	scriptPath := filepath.Join(d.ScriptsDir, cfg.ScriptPath)
	if _, err := os.Stat(scriptPath); err != nil {
		return Result{}, fmt.Errorf("script not found: %s", scriptPath)
	}

	// Outer bound: even a stuck `timeout` wrapper is killed after
	// script_timeout_seconds + 5s.
	outerTimeout := time.Duration(d.TimeoutSeconds+5) * time.Second
	runCtx, cancel := context.WithTimeout(ctx, outerTimeout)
	defer cancel()

	args := append([]string{"--signal=KILL", strconv.FormatInt(d.TimeoutSeconds, 10), scriptPath}, cfg.Args...)
	cmd := exec.CommandContext(runCtx, "timeout", args...)

	cmd.Env = []string{
		"SWITCH_ID=" + ec.SwitchID,
		"EXECUTION_TYPE=" + string(ec.ExecutionType),
		"PATH=/usr/local/bin:/usr/bin:/bin",
	}
	cmd.Dir = d.ScriptsDir
	cmd.Stdin = nil

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()

	if runCtx.Err() != nil {
		return Result{}, fmt.Errorf("script timeout (%ds + 5s buffer)", d.TimeoutSeconds)
	}

	exitCode := int64(-1)
	var exitErr *exec.ExitError
	if errors.As(runErr, &exitErr) {
		exitCode = int64(exitErr.ExitCode())
	} else if runErr == nil {
		exitCode = 0
	} else {
		return Result{}, fmt.Errorf("failed to execute script: %w", runErr)
	}

	return Result{
		ExitCode: exitCode,
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
	}, nil
}
