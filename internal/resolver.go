package internal

import "context"

// ProjectResolver finds or creates the two fixed top-level containers: the
// application root folder and the project folder beneath it. The store has
// no atomic create-if-absent, so a concurrent writer racing on an empty root
// could duplicate a container; findOrCreateFolder narrows that window by
// re-checking for an existing folder after a failed create.
type ProjectResolver struct {
	store       ObjectStore
	rootFolder  string
	projectName string
}

// NewProjectResolver creates a resolver for the given container names.
func NewProjectResolver(store ObjectStore, rootFolder, projectName string) *ProjectResolver {
	return &ProjectResolver{
		store:       store,
		rootFolder:  rootFolder,
		projectName: projectName,
	}
}

// Resolve returns the project folder ID, creating the root and project
// folders as needed. Any store failure surfaces as an InitializationError;
// retry policy belongs to the caller.
func (r *ProjectResolver) Resolve(ctx context.Context) (string, error) {
	rootID, err := r.findOrCreateFolder(ctx, RootID, r.rootFolder)
	if err != nil {
		return "", &InitializationError{Stage: "resolve", Err: err}
	}

	projectID, err := r.findOrCreateFolder(ctx, rootID, r.projectName)
	if err != nil {
		return "", &InitializationError{Stage: "resolve", Err: err}
	}

	LogDebug("Resolved project folder %s/%s -> %s", r.rootFolder, r.projectName, projectID)
	return projectID, nil
}

func (r *ProjectResolver) findOrCreateFolder(ctx context.Context, parentID, name string) (string, error) {
	id, err := r.store.FindChild(ctx, parentID, name, KindFolder)
	if err != nil {
		return "", &StoreError{Op: "find", Name: name, Err: err}
	}
	if id != "" {
		return id, nil
	}

	id, createErr := r.store.CreateFolder(ctx, parentID, name)
	if createErr == nil {
		return id, nil
	}

	// Another writer may have created the folder between the find and the
	// create. Accept whichever existing folder wins before giving up.
	id, err = r.store.FindChild(ctx, parentID, name, KindFolder)
	if err == nil && id != "" {
		return id, nil
	}
	return "", &StoreError{Op: "create-folder", Name: name, Err: createErr}
}
