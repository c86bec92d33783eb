// pkg/core/errors.go
package core

import (
	"errors"
	"fmt"
)

var (
	// ErrVersionLoad indicates the version file is missing or malformed
	ErrVersionLoad = errors.New("version load failed")

	// ErrPackageDiscovery indicates the source tree could not be enumerated
	ErrPackageDiscovery = errors.New("package discovery failed")

	// ErrManifest indicates the packaging manifest is missing or invalid
	ErrManifest = errors.New("invalid manifest")

	// ErrArtifact indicates the distribution artifact could not be written
	ErrArtifact = errors.New("artifact write failed")

	// ErrVersionSymbolNotFound indicates the version file has no version assignment
	ErrVersionSymbolNotFound = errors.New("version symbol not found")

	// ErrMalformedVersion indicates the version assignment is not a plain string literal
	ErrMalformedVersion = errors.New("malformed version literal")
)

// Error wraps an error with the failure kind and additional context
type Error struct {
	Kind error  // One of the Err* kind sentinels
	Op   string // Operation that failed
	Path string // File or directory involved, if any
	Err  error  // Underlying error
}

func (e *Error) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

// Unwrap exposes both the kind and the cause to errors.Is / errors.As.
func (e *Error) Unwrap() []error {
	if e.Kind == nil {
		return []error{e.Err}
	}
	return []error{e.Kind, e.Err}
}

// VersionLoadError builds an ErrVersionLoad error.
func VersionLoadError(path string, err error) error {
	return &Error{Kind: ErrVersionLoad, Op: "load version", Path: path, Err: err}
}

// DiscoveryError builds an ErrPackageDiscovery error.
func DiscoveryError(path string, err error) error {
	return &Error{Kind: ErrPackageDiscovery, Op: "discover packages", Path: path, Err: err}
}

// ManifestError builds an ErrManifest error.
func ManifestError(path string, err error) error {
	return &Error{Kind: ErrManifest, Op: "load manifest", Path: path, Err: err}
}

// ArtifactError builds an ErrArtifact error.
func ArtifactError(path string, err error) error {
	return &Error{Kind: ErrArtifact, Op: "write artifact", Path: path, Err: err}
}
