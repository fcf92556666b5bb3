// Package availability probes the release host for platform artifacts without downloading them.
package availability

import (
	"context"
	"fmt"
	"strings"
)

// Runtime is the artifact name prefix on the release host.
const Runtime = "node"

// Prober issues a metadata-only request and reports whether the URL exists.
type Prober interface {
	Head(ctx context.Context, url string) (bool, error)
}

// ArtifactName returns the conventional archive base name, without extension.
// It is also the name of the top-level directory inside the archive.
func ArtifactName(version string, platform string) string {
	return fmt.Sprintf("%s-%s-%s", Runtime, version, platform)
}

// ArtifactURL builds <mirror>/download/release/<ver>/node-<ver>-<platform>.zip.
func ArtifactURL(mirror string, version string, platform string) string {
	return fmt.Sprintf("%s/download/release/%s/%s.zip", strings.TrimRight(mirror, "/"), version, ArtifactName(version, platform))
}

// Checker answers whether a (version, platform) artifact exists on the mirror.
type Checker struct {
	Mirror string
	Prober Prober
}

// Exists reports artifact presence. A missing artifact is false with a nil
// error; a transport failure is false with the error, and callers decide
// whether to treat it as unavailable.
func (c *Checker) Exists(ctx context.Context, version string, platform string) (bool, error) {
	return c.Prober.Head(ctx, ArtifactURL(c.Mirror, version, platform))
}
