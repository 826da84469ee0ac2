package utils

import (
	"context"
	"errors"
	"fmt"
)

// Provider is a mod-hosting service that can locate and download a mod file.
type Provider interface {
	Name() string
	Resolve(ctx context.Context, mod ModDescriptor, gameVersion string) (FileRef, error)
	Fetch(ctx context.Context, ref FileRef, targetPath string) error
}

// ModDescriptor is one manifest entry.
type ModDescriptor struct {
	Name     string `json:"name" yaml:"name"`
	Filename string `json:"filename" yaml:"filename"`
	Version  string `json:"version" yaml:"version"`
}

// FileRef points at a concrete downloadable file on a provider.
type FileRef struct {
	Provider string
	FileName string
	URL      string
	Size     int64
}

var ErrNotFound = errors.New("no matching file")

// TransportError covers timeouts, refused connections, non-2xx responses and
// malformed bodies.
type TransportError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: unexpected status code %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ManifestError is fatal for the whole run and is reported before any job starts.
type ManifestError struct {
	Path string
	Err  error
}

func (e *ManifestError) Error() string {
	return fmt.Sprintf("manifest %s: %v", e.Path, e.Err)
}

func (e *ManifestError) Unwrap() error {
	return e.Err
}

func NotFoundf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}
