package internal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"time"
)

const (
	driveAPIBase    = "https://www.googleapis.com/drive/v3"
	driveUploadBase = "https://www.googleapis.com/upload/drive/v3"
	folderMimeType  = "application/vnd.google-apps.folder"
	jsonMimeType    = "application/json"
)

// DriveStore is an ObjectStore over the Google Drive v3 REST API. Folders
// map to Drive folders, files to JSON files; lookup and ordering use Drive's
// query and orderBy parameters. Trashed objects are always excluded.
type DriveStore struct {
	client  *http.Client
	tokens  TokenSource
	timeout time.Duration

	// apiBase and uploadBase are overridable for tests.
	apiBase    string
	uploadBase string
}

// NewDriveStore creates a Drive-backed store using tokens for auth and
// timeout as the per-request bound.
func NewDriveStore(tokens TokenSource, timeout time.Duration) *DriveStore {
	return &DriveStore{
		client:     &http.Client{},
		tokens:     tokens,
		timeout:    timeout,
		apiBase:    driveAPIBase,
		uploadBase: driveUploadBase,
	}
}

type driveFile struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	MimeType    string `json:"mimeType"`
	CreatedTime string `json:"createdTime"`
}

type driveFileList struct {
	Files []driveFile `json:"files"`
}

// FindChild implements ObjectStore using a files.list query on name and
// parent, optionally constrained to folders or non-folders.
func (d *DriveStore) FindChild(ctx context.Context, parentID, name string, kind NodeKind) (string, error) {
	q := fmt.Sprintf("name='%s' and '%s' in parents and trashed=false", escapeQuery(name), parentID)
	switch kind {
	case KindFolder:
		q += fmt.Sprintf(" and mimeType='%s'", folderMimeType)
	case KindFile:
		q += fmt.Sprintf(" and mimeType!='%s'", folderMimeType)
	}

	params := url.Values{}
	params.Set("q", q)
	params.Set("fields", "files(id,name)")

	var list driveFileList
	if err := d.doJSON(ctx, http.MethodGet, d.apiBase+"/files?"+params.Encode(), nil, "", &list); err != nil {
		return "", err
	}
	if len(list.Files) == 0 {
		return "", nil
	}
	return list.Files[0].ID, nil
}

// CreateFolder implements ObjectStore via a metadata-only files.create.
func (d *DriveStore) CreateFolder(ctx context.Context, parentID, name string) (string, error) {
	metadata := map[string]any{
		"name":     name,
		"mimeType": folderMimeType,
		"parents":  []string{parentID},
	}
	body, err := json.Marshal(metadata)
	if err != nil {
		return "", err
	}

	var created driveFile
	if err := d.doJSON(ctx, http.MethodPost, d.apiBase+"/files", bytes.NewReader(body), jsonMimeType, &created); err != nil {
		return "", err
	}
	return created.ID, nil
}

// CreateFile implements ObjectStore with a multipart/related upload carrying
// the file metadata and the JSON payload in one request.
func (d *DriveStore) CreateFile(ctx context.Context, parentID, name string, payload any) (string, error) {
	metadata := map[string]any{
		"name":     name,
		"mimeType": jsonMimeType,
		"parents":  []string{parentID},
	}
	metaJSON, err := json.Marshal(metadata)
	if err != nil {
		return "", err
	}
	content, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	metaHeader := make(map[string][]string)
	metaHeader["Content-Type"] = []string{jsonMimeType}
	metaPart, err := w.CreatePart(metaHeader)
	if err != nil {
		return "", err
	}
	if _, err := metaPart.Write(metaJSON); err != nil {
		return "", err
	}

	filePart, err := w.CreatePart(metaHeader)
	if err != nil {
		return "", err
	}
	if _, err := filePart.Write(content); err != nil {
		return "", err
	}
	if err := w.Close(); err != nil {
		return "", err
	}

	contentType := "multipart/related; boundary=" + w.Boundary()
	var created driveFile
	if err := d.doJSON(ctx, http.MethodPost, d.uploadBase+"/files?uploadType=multipart", &buf, contentType, &created); err != nil {
		return "", err
	}
	return created.ID, nil
}

// ListChildren implements ObjectStore using files.list with orderBy=name.
func (d *DriveStore) ListChildren(ctx context.Context, parentID string, direction SortDirection) ([]Entry, error) {
	orderBy := "name"
	if direction == SortDescending {
		orderBy = "name desc"
	}

	params := url.Values{}
	params.Set("q", fmt.Sprintf("'%s' in parents and trashed=false", parentID))
	params.Set("orderBy", orderBy)
	params.Set("fields", "files(id,name,mimeType,createdTime)")

	var list driveFileList
	if err := d.doJSON(ctx, http.MethodGet, d.apiBase+"/files?"+params.Encode(), nil, "", &list); err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(list.Files))
	for _, f := range list.Files {
		kind := KindFile
		if f.MimeType == folderMimeType {
			kind = KindFolder
		}
		entries = append(entries, Entry{ID: f.ID, Name: f.Name, Kind: kind, CreatedAt: f.CreatedTime})
	}
	return entries, nil
}

// ReadFile implements ObjectStore via files.get with alt=media.
func (d *DriveStore) ReadFile(ctx context.Context, id string, out any) error {
	return d.doJSON(ctx, http.MethodGet, d.apiBase+"/files/"+url.PathEscape(id)+"?alt=media", nil, "", out)
}

// doJSON performs one authenticated request and decodes the JSON response
// into out when out is non-nil.
func (d *DriveStore) doJSON(ctx context.Context, method, rawURL string, body io.Reader, contentType string, out any) error {
	token, err := d.tokens.Token()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("drive API %s %s: status %d: %s", method, req.URL.Path, resp.StatusCode, bytes.TrimSpace(data))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode drive response: %w", err)
	}
	return nil
}

// escapeQuery escapes single quotes and backslashes for Drive query strings.
func escapeQuery(s string) string {
	var b bytes.Buffer
	for _, r := range s {
		if r == '\'' || r == '\\' {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
