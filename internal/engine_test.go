package internal

import (
	"context"
	"fmt"
	"sync"
	"testing"
)

func testConfig() *Config {
	return &Config{
		RootFolder:    "root-folder",
		ProjectName:   "project",
		RestoreWindow: 5,
		Backend:       "sqlite",
	}
}

func TestEngine_FreshSessionAppendsAreGapless(t *testing.T) {
	store := NewFakeStore()
	engine := NewEngine(store, testConfig())

	result := engine.Initialize(context.Background())
	if result.Restored {
		t.Fatal("Restored = true on empty store, want false")
	}
	if !result.Persisting {
		t.Fatal("Persisting = false, want true")
	}

	const turns = 12
	for i := 1; i <= turns; i++ {
		if err := engine.AppendTurn(context.Background(), fmt.Sprintf("q%d", i), fmt.Sprintf("a%d", i)); err != nil {
			t.Fatalf("AppendTurn(%d) error = %v", i, err)
		}
	}

	session := engine.ActiveSession()
	if session.CurrentStep != turns+1 {
		t.Errorf("CurrentStep = %d, want %d", session.CurrentStep, turns+1)
	}

	names := store.NamesUnder(session.SessionID)
	var stepNames []string
	for _, n := range names {
		if IsStepFile(n) {
			stepNames = append(stepNames, n)
		}
	}
	if len(stepNames) != turns {
		t.Fatalf("found %d step files, want %d", len(stepNames), turns)
	}
	for i, name := range stepNames {
		if want := StepFileName(i + 1); name != want {
			t.Errorf("step file %d = %q, want %q (no gaps)", i, name, want)
		}
	}
}

func TestEngine_RestoreScenario(t *testing.T) {
	// Project has one session 2024-01-01T00-00-00 containing step_001.json.
	// Initialization restores it, and the next append writes step_002.json.
	store := NewFakeStore()
	projectID := store.SeedProject("root-folder", "project")
	sessionID, _ := store.CreateFolder(context.Background(), projectID, "2024-01-01T00-00-00")
	step := NewStep(1, "hi", "hello")
	_, _ = store.CreateFile(context.Background(), sessionID, StepFileName(1), step)

	engine := NewEngine(store, testConfig())
	result := engine.Initialize(context.Background())

	if !result.Restored {
		t.Fatal("Restored = false, want true")
	}
	if len(result.RecentSteps) != 1 {
		t.Fatalf("RecentSteps = %d entries, want 1", len(result.RecentSteps))
	}
	if result.RecentSteps[0].UserInput != "hi" || result.RecentSteps[0].ModelOutput != "hello" {
		t.Errorf("restored step = %+v, want hi/hello", result.RecentSteps[0])
	}
	if got := engine.ActiveSession().CurrentStep; got != 2 {
		t.Errorf("CurrentStep = %d, want 2", got)
	}

	if err := engine.AppendTurn(context.Background(), "price?", "check P&L tab"); err != nil {
		t.Fatalf("AppendTurn() error = %v", err)
	}

	if got := engine.ActiveSession().CurrentStep; got != 3 {
		t.Errorf("CurrentStep after append = %d, want 3", got)
	}

	names := store.NamesUnder(sessionID)
	found := false
	for _, n := range names {
		if n == StepFileName(2) {
			found = true
		}
	}
	if !found {
		t.Errorf("step_002.json not created; session children = %v", names)
	}
}

func TestEngine_FailedAppendDoesNotAdvanceCounter(t *testing.T) {
	store := NewFakeStore()
	engine := NewEngine(store, testConfig())
	engine.Initialize(context.Background())

	store.FailCreate = true
	err := engine.AppendTurn(context.Background(), "q", "a")
	if err == nil {
		t.Fatal("AppendTurn() expected error when store create fails")
	}
	if got := engine.ActiveSession().CurrentStep; got != 1 {
		t.Errorf("CurrentStep after failed append = %d, want 1", got)
	}

	// A retried append reuses the same sequence number.
	store.FailCreate = false
	if err := engine.AppendTurn(context.Background(), "q", "a"); err != nil {
		t.Fatalf("retried AppendTurn() error = %v", err)
	}
	session := engine.ActiveSession()
	if session.CurrentStep != 2 {
		t.Errorf("CurrentStep after retry = %d, want 2", session.CurrentStep)
	}
	names := store.NamesUnder(session.SessionID)
	for _, n := range names {
		if n == StepFileName(2) {
			t.Errorf("retry skipped to %s; children = %v", n, names)
		}
	}
}

func TestEngine_InitializeIsSingleFlight(t *testing.T) {
	store := NewFakeStore()
	store.SeedProject("root-folder", "project")
	engine := NewEngine(store, testConfig())

	const callers = 8
	var wg sync.WaitGroup
	sessions := make([]string, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			engine.Initialize(context.Background())
			sessions[i] = engine.ActiveSession().SessionID
		}(i)
	}
	wg.Wait()

	for i := 1; i < callers; i++ {
		if sessions[i] != sessions[0] {
			t.Fatalf("caller %d saw session %q, caller 0 saw %q", i, sessions[i], sessions[0])
		}
	}

	// Exactly one session folder (plus its images folder) was created under
	// the project: root + project + session + images = 4 nodes.
	if got := store.NodeCount(); got != 4 {
		t.Errorf("store has %d nodes, want 4 (one session created)", got)
	}
}

func TestEngine_ConcurrentAppendsDoNotCollide(t *testing.T) {
	store := NewFakeStore()
	engine := NewEngine(store, testConfig())
	engine.Initialize(context.Background())

	const turns = 10
	var wg sync.WaitGroup
	for i := 0; i < turns; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = engine.AppendTurn(context.Background(), fmt.Sprintf("q%d", i), "a")
		}(i)
	}
	wg.Wait()

	session := engine.ActiveSession()
	seen := make(map[string]bool)
	for _, n := range store.NamesUnder(session.SessionID) {
		if !IsStepFile(n) {
			continue
		}
		if seen[n] {
			t.Fatalf("duplicate step file %s", n)
		}
		seen[n] = true
	}
	if len(seen) != turns {
		t.Errorf("found %d step files, want %d", len(seen), turns)
	}
	if session.CurrentStep != turns+1 {
		t.Errorf("CurrentStep = %d, want %d", session.CurrentStep, turns+1)
	}
}

func TestEngine_NilStoreRunsInMemory(t *testing.T) {
	engine := NewEngine(nil, testConfig())

	result := engine.Initialize(context.Background())
	if result.Persisting {
		t.Error("Persisting = true with nil store, want false")
	}
	if engine.Persisting() {
		t.Error("Persisting() = true with nil store, want false")
	}

	// The conversation must proceed: appends succeed without persistence.
	if err := engine.AppendTurn(context.Background(), "q", "a"); err != nil {
		t.Fatalf("AppendTurn() error = %v", err)
	}
	if got := engine.ActiveSession().CurrentStep; got != 2 {
		t.Errorf("CurrentStep = %d, want 2", got)
	}
}

func TestEngine_InitFailureFallsBackToMemory(t *testing.T) {
	store := NewFakeStore()
	store.FailFind = true
	engine := NewEngine(store, testConfig())

	result := engine.Initialize(context.Background())
	if result.Persisting {
		t.Error("Persisting = true after failed initialization, want false")
	}
	if engine.ActiveSession() == nil {
		t.Fatal("ActiveSession() = nil after failed initialization, want in-memory session")
	}
	if err := engine.AppendTurn(context.Background(), "q", "a"); err != nil {
		t.Errorf("AppendTurn() error = %v, want nil for in-memory session", err)
	}
}

func TestEngine_ActiveSessionBeforeInitialize(t *testing.T) {
	engine := NewEngine(NewFakeStore(), testConfig())
	if got := engine.ActiveSession(); got != nil {
		t.Errorf("ActiveSession() = %+v before Initialize, want nil", got)
	}
}

func TestEngine_PartialRestorationReported(t *testing.T) {
	store := NewFakeStore()
	projectID := store.SeedProject("root-folder", "project")
	sessionID := store.SeedSession(projectID, "2024-01-01T00-00-00", 3)

	entries, _ := store.ListChildren(context.Background(), sessionID, SortAscending)
	for _, e := range entries {
		if e.Name == StepFileName(2) {
			store.UnreadableIDs[e.ID] = true
		}
	}

	engine := NewEngine(store, testConfig())
	result := engine.Initialize(context.Background())

	if !result.Restored || !result.Persisting {
		t.Fatalf("result = %+v, want restored and persisting", result)
	}
	if result.SkippedSteps != 1 {
		t.Errorf("SkippedSteps = %d, want 1", result.SkippedSteps)
	}
	if len(result.RecentSteps) != 2 {
		t.Errorf("RecentSteps = %d entries, want 2", len(result.RecentSteps))
	}
}
