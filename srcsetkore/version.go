package srcsetkore

import (
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/semver/v3"
)

const (
	// SnapshotVersion is used for all builds that are not releases.
	SnapshotVersion = "1.0.0-SNAPSHOT"

	// ReleaseLayout formats release versions as yyyyMMddHHmm.
	ReleaseLayout = "200601021504"
)

// Version is the version string of one evaluation. The zero Version is
// [SnapshotVersion].
type Version struct {
	s       string
	release bool
}

// NewVersion returns the release version for now if release is set, the
// snapshot version otherwise.
func NewVersion(release bool, now time.Time) Version {
	if release {
		return ReleaseVersion(now)
	}
	return Version{}
}

func ReleaseVersion(t time.Time) Version {
	return Version{s: t.Format(ReleaseLayout), release: true}
}

// DevVersion returns a non-release version. The placeholder must be a
// semantic version; the empty placeholder is [SnapshotVersion].
func DevVersion(placeholder string) (Version, error) {
	if placeholder == "" {
		return Version{}, nil
	}
	if _, err := semver.StrictNewVersion(placeholder); err != nil {
		return Version{}, fmt.Errorf("development version '%s': %w", placeholder, err)
	}
	return Version{s: placeholder}, nil
}

func (v Version) String() string {
	if v.s == "" {
		return SnapshotVersion
	}
	return v.s
}

func (v Version) IsRelease() bool { return v.release }

// IsSnapshot reports whether v is a semantic version with a SNAPSHOT
// pre-release.
func (v Version) IsSnapshot() bool {
	if v.release {
		return false
	}
	sv, err := semver.NewVersion(v.String())
	if err != nil {
		return false
	}
	return strings.EqualFold(sv.Prerelease(), "SNAPSHOT")
}
