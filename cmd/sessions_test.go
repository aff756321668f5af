package cmd

import (
	"strings"
	"testing"
)

func TestSessionsCommand_Empty(t *testing.T) {
	path, _ := writeTestConfig(t)

	out, err := runCommand(t, "sessions", "--config", path)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	// An empty project has no sessions yet: listing must not create one.
	if !strings.Contains(out, "No sessions found") {
		t.Errorf("output = %q, want empty-project message", out)
	}

	out, err = runCommand(t, "sessions", "--config", path)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !strings.Contains(out, "No sessions found") {
		t.Errorf("second listing created a session: %q", out)
	}
}

func TestSessionsCommand_ListsSeededSession(t *testing.T) {
	path, cfg := writeTestConfig(t)
	sessionName := seedSession(t, cfg, 3)

	out, err := runCommand(t, "sessions", "--config", path)
	if err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	if !strings.Contains(out, sessionName) {
		t.Errorf("output missing session name %q: %q", sessionName, out)
	}
	if !strings.Contains(out, "3") {
		t.Errorf("output missing step count 3: %q", out)
	}
}
