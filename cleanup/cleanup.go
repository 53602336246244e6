// Package cleanup runs the operator's cleanup script after a failed or
// interrupted job. Nothing here is ever fatal.
package cleanup

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"time"
)

// ScriptName is looked up next to the executable when Script is empty.
const ScriptName = "cleanup.sh"

// Invoker runs Script with Shell.
type Invoker struct {
	Script  string
	Shell   string        // default "bash"
	Timeout time.Duration // default 1m
	Stdout  io.Writer     // default os.Stdout
	Stderr  io.Writer     // default os.Stderr
	Logger  *slog.Logger
}

// DefaultScript returns cleanup.sh in the executable's directory.
func DefaultScript() string {
	exe, err := os.Executable()
	if err != nil {
		return ScriptName
	}
	return filepath.Join(filepath.Dir(exe), ScriptName)
}

// Run executes the script and waits for it. It still runs when ctx is
// already cancelled, since interruption is one of the reasons to clean up.
func (inv *Invoker) Run(ctx context.Context) {
	log := inv.Logger
	if log == nil {
		log = slog.Default()
	}
	script := inv.Script
	if script == "" {
		script = DefaultScript()
	}

	if _, err := os.Stat(script); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			log.Warn("cleanup: script not found", "script", script)
		} else {
			log.Error("cleanup: stat script", "script", script, "error", err)
		}
		return
	}

	shell := inv.Shell
	if shell == "" {
		shell = "bash"
	}
	timeout := inv.Timeout
	if timeout <= 0 {
		timeout = time.Minute
	}
	runCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, shell, script)
	cmd.Stdout = inv.Stdout
	if cmd.Stdout == nil {
		cmd.Stdout = os.Stdout
	}
	cmd.Stderr = inv.Stderr
	if cmd.Stderr == nil {
		cmd.Stderr = os.Stderr
	}

	log.Info("cleanup: running script", "script", script)
	if err := cmd.Run(); err != nil {
		log.Error("cleanup: script failed", "script", script, "error", err)
		return
	}
	log.Info("cleanup: done", "script", script)
}
