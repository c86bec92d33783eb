// errors.go
package hopsdist

import "github.com/logicalclocks/hopsdist/pkg/core"

var (
	// ErrVersionLoad indicates the version file is missing or malformed
	ErrVersionLoad = core.ErrVersionLoad

	// ErrPackageDiscovery indicates the source tree could not be enumerated
	ErrPackageDiscovery = core.ErrPackageDiscovery

	// ErrManifest indicates the packaging manifest is missing or invalid
	ErrManifest = core.ErrManifest

	// ErrArtifact indicates the distribution artifact could not be written
	ErrArtifact = core.ErrArtifact
)

// Error wraps an error with the failure kind and additional context
type Error = core.Error
