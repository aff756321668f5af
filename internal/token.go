package internal

import (
	"os"
	"strings"
)

// TokenSource supplies the bearer token for remote store requests. The
// token acquisition flow itself (OAuth consent, refresh) is an external
// concern; the engine only consumes the resulting token.
type TokenSource interface {
	Token() (string, error)
}

// StaticTokenSource returns a fixed token.
type StaticTokenSource string

// Token implements TokenSource.
func (s StaticTokenSource) Token() (string, error) {
	if s == "" {
		return "", ErrAuthUnavailable
	}
	return string(s), nil
}

// FileTokenSource reads the token from a file on every call, so an external
// helper can refresh the file without restarting the process.
type FileTokenSource struct {
	Path string
}

// Token implements TokenSource.
func (f *FileTokenSource) Token() (string, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return "", ErrAuthUnavailable
	}
	token := strings.TrimSpace(string(data))
	if token == "" {
		return "", ErrAuthUnavailable
	}
	return token, nil
}

// EnvTokenSource reads the token from an environment variable.
type EnvTokenSource struct {
	Var string
}

// Token implements TokenSource.
func (e *EnvTokenSource) Token() (string, error) {
	token := strings.TrimSpace(os.Getenv(e.Var))
	if token == "" {
		return "", ErrAuthUnavailable
	}
	return token, nil
}
