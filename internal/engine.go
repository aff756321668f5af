package internal

import (
	"context"
	"sync"
	"time"
)

// InitResult is what Initialize reports to the conversation layer.
type InitResult struct {
	// Restored is true when a prior session's trailing window was loaded.
	Restored bool
	// RecentSteps is the restored window in ascending sequence order.
	RecentSteps []*Step
	// SkippedSteps counts window steps that could not be read (partial
	// restoration, non-fatal).
	SkippedSteps int
	// Persisting is false when the engine is running in-memory only, either
	// because no store is available or because initialization failed.
	Persisting bool
}

// Engine is the session persistence engine. It runs the resolve/select/
// restore pipeline exactly once per process and then serializes every
// conversational turn into one step file under the active session.
//
// Persistence is best-effort: no engine failure is allowed to block the
// conversation. On initialization failure the engine degrades to a purely
// in-memory session; on append failure the turn is simply not persisted and
// the sequence counter stays put so a retry reuses the number.
type Engine struct {
	store  ObjectStore
	config *Config

	// initOnce memoizes the whole pipeline: re-entrant callers block on the
	// first in-flight initialization and share its result instead of
	// racing to create a second session.
	initOnce   sync.Once
	initResult InitResult

	// mu guards session and sequencer so that sequence allocation and step
	// persistence are atomic with respect to other in-process callers.
	mu        sync.Mutex
	session   *Session
	sequencer *StepSequencer
}

// NewEngine creates an engine over store. A nil store means no persistence
// backend is available (e.g. no bearer token); the engine still serves an
// in-memory session.
func NewEngine(store ObjectStore, config *Config) *Engine {
	return &Engine{store: store, config: config}
}

// Initialize runs the resolve/select/restore pipeline. It is safe to call
// from multiple goroutines and at any time after the first call: every
// caller receives the result of the single real run. Initialize never
// returns an error to the caller path that feeds the conversation; failures
// are logged and reported through InitResult.Persisting.
func (e *Engine) Initialize(ctx context.Context) InitResult {
	e.initOnce.Do(func() {
		e.initResult = e.initialize(ctx)
	})
	return e.initResult
}

func (e *Engine) initialize(ctx context.Context) InitResult {
	if e.store == nil {
		LogWarn("No storage backend available, conversation history will not be persisted")
		e.setSession(e.memorySession(), NewStepSequencer(1))
		return InitResult{}
	}

	resolver := NewProjectResolver(e.store, e.config.RootFolder, e.config.ProjectName)
	projectID, err := resolver.Resolve(ctx)
	if err != nil {
		LogError("%v", err)
		e.setSession(e.memorySession(), NewStepSequencer(1))
		return InitResult{}
	}

	restorer := NewSessionRestorer(e.store, e.config.RestoreWindow)
	result, err := restorer.SelectOrCreate(ctx, projectID)
	if err != nil {
		LogError("%v", err)
		e.setSession(e.memorySession(), NewStepSequencer(1))
		return InitResult{}
	}

	if result.SkippedSteps > 0 {
		LogWarn("Partial restoration: %d step(s) in the window were unreadable", result.SkippedSteps)
	}

	e.setSession(result.Session, NewStepSequencer(result.Session.CurrentStep))
	LogInfo("Storage initialized: session=%s next_step=%d", result.Session.SessionName, result.Session.CurrentStep)

	return InitResult{
		Restored:     result.Restored,
		RecentSteps:  result.Steps,
		SkippedSteps: result.SkippedSteps,
		Persisting:   true,
	}
}

// AppendTurn persists one completed conversational exchange as the next step
// of the active session. On failure the sequence counter is rolled back so
// the number is reused, and the error is returned for logging only: callers
// must treat persistence as best-effort and carry on.
func (e *Engine) AppendTurn(ctx context.Context, userInput, modelOutput string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.session == nil || e.sequencer == nil {
		return &AppendError{Err: ErrAuthUnavailable}
	}
	if e.store == nil || e.session.SessionID == "" {
		// In-memory session: keep numbering turns but write nothing.
		n := e.sequencer.Next()
		e.session.CurrentStep = n + 1
		return nil
	}

	number := e.sequencer.Next()
	step := NewStep(number, userInput, modelOutput)
	name := StepFileName(number)

	if _, err := e.store.CreateFile(ctx, e.session.SessionID, name, step); err != nil {
		e.sequencer.Rollback(number)
		return &AppendError{StepNumber: number, Err: err}
	}

	e.session.CurrentStep = number + 1
	LogDebug("Persisted %s to session %s", name, e.session.SessionName)
	return nil
}

// ActiveSession returns a copy of the active session, or nil before
// initialization. The engine owns the canonical record; callers must treat
// the copy as read-only diagnostics data.
func (e *Engine) ActiveSession() *Session {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.session == nil {
		return nil
	}
	s := *e.session
	return &s
}

// Persisting reports whether the engine has a durable backend for the
// active session.
func (e *Engine) Persisting() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.store != nil && e.session != nil && e.session.SessionID != ""
}

func (e *Engine) setSession(s *Session, seq *StepSequencer) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.session = s
	e.sequencer = seq
}

func (e *Engine) memorySession() *Session {
	return &Session{SessionName: SessionNameFromTime(time.Now()), CurrentStep: 1}
}
