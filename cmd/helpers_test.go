package cmd

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/shuindub/oracle-session/internal"
)

// writeTestConfig writes a config pointing at a temp sqlite store and
// returns its path together with the parsed config.
func writeTestConfig(t *testing.T) (string, *internal.Config) {
	t.Helper()
	dir := t.TempDir()

	cfg := internal.DefaultConfig()
	cfg.Backend = "sqlite"
	cfg.SQLitePath = filepath.Join(dir, "store.db")
	cfg.RootFolder = "root-folder"
	cfg.ProjectName = "project"

	path := filepath.Join(dir, "config.yaml")
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}
	return path, cfg
}

// seedSession writes count steps into a fresh session using the engine, so
// command tests run against realistically persisted data.
func seedSession(t *testing.T, cfg *internal.Config, count int) string {
	t.Helper()
	store, err := internal.OpenSQLiteStore(cfg.SQLitePath)
	if err != nil {
		t.Fatalf("Failed to open store: %v", err)
	}
	defer store.Close()

	engine := internal.NewEngine(store, cfg)
	engine.Initialize(context.Background())
	for i := 1; i <= count; i++ {
		if err := engine.AppendTurn(context.Background(), "hi", "hello"); err != nil {
			t.Fatalf("Failed to seed step %d: %v", i, err)
		}
	}
	return engine.ActiveSession().SessionName
}

// openSeededStore reopens the sqlite store a command has written to.
func openSeededStore(cfg *internal.Config) (*internal.SQLiteStore, error) {
	return internal.OpenSQLiteStore(cfg.SQLitePath)
}

// countAllSteps counts step files across every session under the project.
func countAllSteps(t *testing.T, store internal.ObjectStore, cfg *internal.Config) int {
	t.Helper()
	ctx := context.Background()

	rootID, err := store.FindChild(ctx, internal.RootID, cfg.RootFolder, internal.KindFolder)
	if err != nil || rootID == "" {
		t.Fatalf("root folder not found: %v", err)
	}
	projectID, err := store.FindChild(ctx, rootID, cfg.ProjectName, internal.KindFolder)
	if err != nil || projectID == "" {
		t.Fatalf("project folder not found: %v", err)
	}

	sessions, err := store.ListChildren(ctx, projectID, internal.SortAscending)
	if err != nil {
		t.Fatalf("failed to list sessions: %v", err)
	}

	count := 0
	for _, session := range sessions {
		if session.Kind == internal.KindFile {
			continue
		}
		children, err := store.ListChildren(ctx, session.ID, internal.SortAscending)
		if err != nil {
			t.Fatalf("failed to list session %s: %v", session.Name, err)
		}
		for _, c := range children {
			if internal.IsStepFile(c.Name) {
				count++
			}
		}
	}
	return count
}

// runCommand executes the root command with args and returns its output.
func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	rootCmd.SetArgs(args)
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	err := rootCmd.Execute()
	return out.String(), err
}
