package internal

import "context"

// NodeKind distinguishes folder containers from file objects in the store.
type NodeKind string

const (
	KindFolder NodeKind = "folder"
	KindFile   NodeKind = "file"
	KindAny    NodeKind = ""
)

// SortDirection controls listing order by name.
type SortDirection string

const (
	SortAscending  SortDirection = "asc"
	SortDescending SortDirection = "desc"
)

// RootID is the parent ID addressing the store's top-level namespace.
const RootID = "root"

// Entry describes one child object returned by a listing.
type Entry struct {
	ID        string
	Name      string
	Kind      NodeKind
	CreatedAt string
}

// ObjectStore is the minimal capability the engine needs from a hierarchical
// remote store: name-based lookup, folder/file creation, ordered listing and
// payload reads. There is no atomic create-if-absent; callers do
// find-then-create and must tolerate the resulting race.
type ObjectStore interface {
	// FindChild returns the ID of the named child under parentID, filtered
	// by kind, or "" if no such child exists.
	FindChild(ctx context.Context, parentID, name string, kind NodeKind) (string, error)

	// CreateFolder creates a folder named name under parentID.
	CreateFolder(ctx context.Context, parentID, name string) (string, error)

	// CreateFile creates a file named name under parentID carrying the JSON
	// serialization of payload.
	CreateFile(ctx context.Context, parentID, name string, payload any) (string, error)

	// ListChildren lists the direct children of parentID ordered by name.
	ListChildren(ctx context.Context, parentID string, direction SortDirection) ([]Entry, error)

	// ReadFile fetches a file's payload and unmarshals it into out.
	ReadFile(ctx context.Context, id string, out any) error
}
