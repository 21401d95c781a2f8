package untyped

import (
	"context"
	"fmt"
	"strings"

	version "github.com/hashicorp/go-version"
	"github.com/verge-io/go-verge-client/core"
)

type Version struct {
	*core.VergeResource
}

// GetVersionWithContext returns the running VergeOS system version as a
// semantic version, truncated to its x.y.z core.
func (v *Version) GetVersionWithContext(ctx context.Context) (*version.Version, error) {
	result, err := v.GetWithContext(ctx, nil)
	if err != nil {
		return nil, err
	}
	raw, ok := result["version"]
	if !ok {
		return nil, fmt.Errorf("version row carries no version field")
	}
	truncated, _ := sanitizeVersion(fmt.Sprintf("%v", raw))
	systemVersion, err := version.NewVersion(truncated)
	if err != nil {
		return nil, err
	}
	// We only work with the core version
	return systemVersion.Core(), nil
}

func (v *Version) GetVersion() (*version.Version, error) {
	return v.GetVersionWithContext(v.Rest.GetCtx())
}

// CompareWithWithContext compares the running system version against other.
// Returns -1, 0 or 1 like version.Compare.
func (v *Version) CompareWithWithContext(ctx context.Context, other *version.Version) (int, error) {
	systemVersion, err := v.GetVersionWithContext(ctx)
	if err != nil {
		return 0, err
	}
	return systemVersion.Compare(other), nil
}

func (v *Version) CompareWith(other *version.Version) (int, error) {
	return v.CompareWithWithContext(v.Rest.GetCtx(), other)
}

// sanitizeVersion truncates all segments of the system version above core
// (x.y.z) but preserves pre-release identifiers (e.g. 4.13.2-beta.1 stays as-is)
func sanitizeVersion(raw string) (string, bool) {
	// Split on '+' to separate build metadata
	mainAndPrerelease := raw
	buildMetadata := ""
	if plusIndex := strings.Index(raw, "+"); plusIndex != -1 {
		mainAndPrerelease = raw[:plusIndex]
		buildMetadata = raw[plusIndex:]
	}

	// Split on '-' to separate pre-release
	mainVersion := mainAndPrerelease
	prerelease := ""
	if dashIndex := strings.Index(mainAndPrerelease, "-"); dashIndex != -1 {
		mainVersion = mainAndPrerelease[:dashIndex]
		prerelease = mainAndPrerelease[dashIndex:]
	}

	segments := strings.Split(mainVersion, ".")
	truncated := len(segments) > 3 || buildMetadata != ""

	var coreVersion string
	if len(segments) <= 3 {
		coreVersion = mainVersion
	} else {
		coreVersion = strings.Join(segments[:3], ".")
	}

	return coreVersion + prerelease, truncated
}
