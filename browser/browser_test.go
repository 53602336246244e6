package browser

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestShouldBlock(t *testing.T) {
	set := map[string]bool{"images": true, "fonts": true}
	tests := []struct {
		resType string
		want    bool
	}{
		{"Image", true},
		{"Font", true},
		{"Media", false},
		{"Stylesheet", false},
		{"Document", false},
		{"XHR", false},
	}
	for _, tt := range tests {
		if got := shouldBlock(set, tt.resType); got != tt.want {
			t.Errorf("shouldBlock(%q): got %v, want %v", tt.resType, got, tt.want)
		}
	}
}

func TestSelector(t *testing.T) {
	c := CSS("ytmusic-app")
	if c.IsXPath() || c.String() != "ytmusic-app" {
		t.Errorf("CSS: got %q xpath=%v", c.String(), c.IsXPath())
	}
	x := XPath("//button[.//span[text()='View all']]")
	if !x.IsXPath() || x.String() != "xpath://button[.//span[text()='View all']]" {
		t.Errorf("XPath: got %q xpath=%v", x.String(), x.IsXPath())
	}
}

func TestTimeoutErr(t *testing.T) {
	bg := context.Background()
	wrapped := fmt.Errorf("rod: %w", context.DeadlineExceeded)
	if err := TimeoutErr(bg, wrapped); !errors.Is(err, ErrTimeout) {
		t.Errorf("deadline: got %v, want ErrTimeout", err)
	}

	other := errors.New("cdp: target closed")
	if err := TimeoutErr(bg, other); err != other {
		t.Errorf("other: got %v, want passthrough", err)
	}

	cancelled, cancel := context.WithCancel(bg)
	cancel()
	if err := TimeoutErr(cancelled, wrapped); !errors.Is(err, context.Canceled) {
		t.Errorf("cancelled parent: got %v, want context.Canceled", err)
	}
}

func TestConfigDefaults(t *testing.T) {
	m := NewManager(Config{})
	if m.cfg.NavigateTimeout <= 0 {
		t.Error("NavigateTimeout default not applied")
	}
	if m.cfg.Logger == nil {
		t.Error("Logger default not applied")
	}
	if _, err := m.NewSession(context.Background()); err == nil {
		t.Error("NewSession before Start: expected error")
	}
	if err := m.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
	if err := m.Start(context.Background()); err == nil {
		t.Error("Start after Close: expected error")
	}
}
