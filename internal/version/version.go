// Package version exposes this engine's own semantic version, parsed
// and validated at init time so a malformed build-time override fails
// fast instead of silently shipping an unparseable "engine_version".
package version

import "github.com/blang/semver/v4"

// Raw is the dotted version string; override it at link time with
// -ldflags "-X github.com/kegliz/qcec/internal/version.Raw=1.2.3" for
// release builds.
var Raw = "0.1.0"

// Parsed is Raw validated as a semver.Version. It panics on an invalid
// Raw, which can only happen if a release build injects a malformed
// string.
var Parsed = semver.MustParse(Raw)

// String returns the normalized semantic version.
func String() string { return Parsed.String() }
