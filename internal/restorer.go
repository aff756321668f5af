package internal

import (
	"context"
	"sort"
	"time"
)

// imagesFolderName is created inside every new session folder, reserved for
// future multimodal turns.
const imagesFolderName = "images"

// RestoreResult is the outcome of selecting or creating a session.
type RestoreResult struct {
	Session *Session
	// Steps is the trailing window of restored steps in ascending sequence
	// order. Empty when the session is new or has no readable steps.
	Steps []*Step
	// Restored is true when an existing session with at least one step file
	// was found and its window loaded.
	Restored bool
	// SkippedSteps counts steps in the window that could not be read.
	// Non-zero means the restoration is partial but still usable.
	SkippedSteps int
}

// SessionRestorer picks the most recent session under the project folder and
// replays its trailing step window, or creates a fresh session when none
// exists. Ordering relies entirely on names: session folders sort
// newest-first descending, step files sort oldest-first ascending.
type SessionRestorer struct {
	store  ObjectStore
	window int
	// now is swappable for tests.
	now func() time.Time
}

// NewSessionRestorer creates a restorer loading up to window trailing steps.
func NewSessionRestorer(store ObjectStore, window int) *SessionRestorer {
	return &SessionRestorer{store: store, window: window, now: time.Now}
}

// SelectOrCreate restores the most recent session under projectID or creates
// a new one. Individual unreadable steps in the window are skipped and
// counted, not fatal; any other failure surfaces as an InitializationError.
func (r *SessionRestorer) SelectOrCreate(ctx context.Context, projectID string) (*RestoreResult, error) {
	entries, err := r.store.ListChildren(ctx, projectID, SortDescending)
	if err != nil {
		return nil, &InitializationError{Stage: "select", Err: &StoreError{Op: "list", Name: projectID, Err: err}}
	}

	var sessions []Entry
	for _, e := range entries {
		if e.Kind == KindFile {
			continue
		}
		sessions = append(sessions, e)
	}

	if len(sessions) == 0 {
		return r.createSession(ctx, projectID)
	}

	// Session names are sortable timestamps and the listing is descending,
	// so the first folder is the most recent session.
	latest := sessions[0]
	LogInfo("Restoring session %s", latest.Name)

	children, err := r.store.ListChildren(ctx, latest.ID, SortAscending)
	if err != nil {
		return nil, &InitializationError{Stage: "restore", Err: &StoreError{Op: "list", Name: latest.Name, Err: err}}
	}

	stepFiles := filterStepFiles(children)
	if len(stepFiles) == 0 {
		// An existing but empty session: resume it at step 1.
		return &RestoreResult{
			Session: &Session{SessionID: latest.ID, SessionName: latest.Name, CurrentStep: 1},
		}, nil
	}

	lastSeq, _ := ParseStepNumber(stepFiles[len(stepFiles)-1].Name)

	start := len(stepFiles) - r.window
	if start < 0 {
		start = 0
	}

	var steps []*Step
	skipped := 0
	for _, f := range stepFiles[start:] {
		var step Step
		if err := r.store.ReadFile(ctx, f.ID, &step); err != nil {
			LogWarn("Skipping unreadable step %s: %v", f.Name, err)
			skipped++
			continue
		}
		steps = append(steps, &step)
	}

	return &RestoreResult{
		Session:      &Session{SessionID: latest.ID, SessionName: latest.Name, CurrentStep: lastSeq + 1},
		Steps:        steps,
		Restored:     true,
		SkippedSteps: skipped,
	}, nil
}

func (r *SessionRestorer) createSession(ctx context.Context, projectID string) (*RestoreResult, error) {
	name := SessionNameFromTime(r.now())
	id, err := r.store.CreateFolder(ctx, projectID, name)
	if err != nil {
		return nil, &InitializationError{Stage: "create", Err: &StoreError{Op: "create-folder", Name: name, Err: err}}
	}

	// Reserved for multimodal attachments; failure to create it does not
	// invalidate the session.
	if _, err := r.store.CreateFolder(ctx, id, imagesFolderName); err != nil {
		LogWarn("Failed to create %s folder for session %s: %v", imagesFolderName, name, err)
	}

	LogInfo("Created new session %s", name)
	return &RestoreResult{
		Session: &Session{SessionID: id, SessionName: name, CurrentStep: 1},
	}, nil
}

// filterStepFiles keeps only step files and returns them sorted ascending by
// name, which equals ascending sequence order under the fixed-width padding.
func filterStepFiles(entries []Entry) []Entry {
	var steps []Entry
	for _, e := range entries {
		if e.Kind == KindFolder {
			continue
		}
		if IsStepFile(e.Name) {
			steps = append(steps, e)
		}
	}
	sort.Slice(steps, func(i, j int) bool { return steps[i].Name < steps[j].Name })
	return steps
}
