package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/hazyhaar/ytharvest/cleanup"
)

func TestRunUsage(t *testing.T) {
	for _, args := range [][]string{{"extra"}, {"-unknown-flag"}} {
		if got := run(args); got != 1 {
			t.Errorf("run(%q): got %d, want 1", args, got)
		}
	}
}

func TestRunMissingConfig(t *testing.T) {
	if got := run([]string{"-config", filepath.Join(t.TempDir(), "nope.yaml")}); got != 1 {
		t.Errorf("got %d, want 1", got)
	}
}

// markerInvoker returns an Invoker whose script creates the returned file.
func markerInvoker(t *testing.T) (*cleanup.Invoker, string) {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
	dir := t.TempDir()
	marker := filepath.Join(dir, "cleaned")
	script := filepath.Join(dir, "cleanup.sh")
	if err := os.WriteFile(script, []byte("touch '"+marker+"'\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	return &cleanup.Invoker{Script: script, Shell: "sh"}, marker
}

func TestFinish(t *testing.T) {
	tests := []struct {
		name      string
		cancelled bool
		err       error
		want      int
		cleaned   bool
	}{
		{"success", false, nil, 0, false},
		{"failure", false, errors.New("chrome crashed"), 1, true},
		{"interrupted", true, context.Canceled, 130, true},
		{"interrupted with wrapped error", true, errors.New("navigate: target closed"), 130, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv, marker := markerInvoker(t)
			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()
			if tt.cancelled {
				cancel()
			}
			stopped := false
			stop := func() { stopped = true }

			if got := finish(ctx, stop, tt.err, inv, slog.Default()); got != tt.want {
				t.Errorf("exit: got %d, want %d", got, tt.want)
			}
			if !stopped {
				t.Error("signal handler not released before cleanup")
			}
			_, err := os.Stat(marker)
			if cleaned := err == nil; cleaned != tt.cleaned {
				t.Errorf("cleanup ran: got %v, want %v", cleaned, tt.cleaned)
			}
		})
	}
}
