package internal

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"sync"
	"time"
)

// FakeStore is an in-memory ObjectStore with per-operation failure
// injection, used by engine and restorer tests.
type FakeStore struct {
	mu     sync.Mutex
	nodes  map[string]*fakeNode
	nextID int

	// FailFind, FailCreate and FailList make the corresponding operations
	// return an error when true.
	FailFind   bool
	FailCreate bool
	FailList   bool
	// FindMisses makes the next N FindChild calls report not-found even for
	// existing children, to exercise the find-then-create race path.
	FindMisses int
	// UnreadableIDs makes ReadFile fail for the listed node IDs.
	UnreadableIDs map[string]bool
}

type fakeNode struct {
	id       string
	parentID string
	name     string
	kind     NodeKind
	payload  []byte
	created  string
}

// NewFakeStore creates an empty in-memory store.
func NewFakeStore() *FakeStore {
	return &FakeStore{
		nodes:         make(map[string]*fakeNode),
		UnreadableIDs: make(map[string]bool),
	}
}

// FindChild implements ObjectStore.
func (f *FakeStore) FindChild(_ context.Context, parentID, name string, kind NodeKind) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailFind {
		return "", fmt.Errorf("injected find failure")
	}
	if f.FindMisses > 0 {
		f.FindMisses--
		return "", nil
	}
	for _, n := range f.nodes {
		if n.parentID == parentID && n.name == name && (kind == KindAny || n.kind == kind) {
			return n.id, nil
		}
	}
	return "", nil
}

// CreateFolder implements ObjectStore.
func (f *FakeStore) CreateFolder(_ context.Context, parentID, name string) (string, error) {
	return f.add(parentID, name, KindFolder, nil)
}

// CreateFile implements ObjectStore.
func (f *FakeStore) CreateFile(_ context.Context, parentID, name string, payload any) (string, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	return f.add(parentID, name, KindFile, data)
}

func (f *FakeStore) add(parentID, name string, kind NodeKind, payload []byte) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailCreate {
		return "", fmt.Errorf("injected create failure")
	}
	f.nextID++
	id := "node-" + strconv.Itoa(f.nextID)
	f.nodes[id] = &fakeNode{
		id:       id,
		parentID: parentID,
		name:     name,
		kind:     kind,
		payload:  payload,
		created:  time.Now().UTC().Format(time.RFC3339),
	}
	return id, nil
}

// ListChildren implements ObjectStore.
func (f *FakeStore) ListChildren(_ context.Context, parentID string, direction SortDirection) ([]Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailList {
		return nil, fmt.Errorf("injected list failure")
	}
	var entries []Entry
	for _, n := range f.nodes {
		if n.parentID == parentID {
			entries = append(entries, Entry{ID: n.id, Name: n.name, Kind: n.kind, CreatedAt: n.created})
		}
	}
	sort.Slice(entries, func(i, j int) bool {
		if direction == SortDescending {
			return entries[i].Name > entries[j].Name
		}
		return entries[i].Name < entries[j].Name
	})
	return entries, nil
}

// ReadFile implements ObjectStore.
func (f *FakeStore) ReadFile(_ context.Context, id string, out any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.UnreadableIDs[id] {
		return fmt.Errorf("injected read failure for %s", id)
	}
	n, ok := f.nodes[id]
	if !ok || n.kind != KindFile {
		return fmt.Errorf("no such file: %s", id)
	}
	return json.Unmarshal(n.payload, out)
}

// NodeCount returns the number of stored nodes.
func (f *FakeStore) NodeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.nodes)
}

// NamesUnder returns the sorted child names under parentID.
func (f *FakeStore) NamesUnder(parentID string) []string {
	entries, _ := f.ListChildren(context.Background(), parentID, SortAscending)
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name)
	}
	return names
}

// SeedProject creates <root>/<project> folders and returns the project ID.
func (f *FakeStore) SeedProject(root, project string) string {
	rootID, _ := f.CreateFolder(context.Background(), RootID, root)
	projectID, _ := f.CreateFolder(context.Background(), rootID, project)
	return projectID
}

// SeedSession creates a session folder with count sequential steps under
// projectID and returns the session folder ID.
func (f *FakeStore) SeedSession(projectID, name string, count int) string {
	ctx := context.Background()
	sessionID, _ := f.CreateFolder(ctx, projectID, name)
	for i := 1; i <= count; i++ {
		step := NewStep(i, fmt.Sprintf("question %d", i), fmt.Sprintf("answer %d", i))
		_, _ = f.CreateFile(ctx, sessionID, StepFileName(i), step)
	}
	return sessionID
}
