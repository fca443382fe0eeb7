package types

import (
	"fmt"
	"strings"

	goversion "github.com/hashicorp/go-version"
)

// Version is a dotted runtime version
type Version struct {
	Major int `json:"major" toml:"major"`
	Minor int `json:"minor" toml:"minor"`
	Patch int `json:"patch" toml:"patch"`
}

// ParseVersion parses "X", "X.Y" or "X.Y.Z". Pre-release and build
// suffixes are rejected.
func ParseVersion(s string) (Version, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Version{}, fmt.Errorf("empty version")
	}

	v, err := goversion.NewVersion(s)
	if err != nil {
		return Version{}, fmt.Errorf("invalid version %q: %w", s, err)
	}
	if v.Prerelease() != "" || v.Metadata() != "" {
		return Version{}, fmt.Errorf("invalid version %q: suffixes are not supported", s)
	}

	segments := v.Segments()
	if len(segments) > 3 {
		return Version{}, fmt.Errorf("invalid version %q", s)
	}
	var nums [3]int
	copy(nums[:], segments)
	return Version{Major: nums[0], Minor: nums[1], Patch: nums[2]}, nil
}

// MustParseVersion is ParseVersion for constants
func MustParseVersion(s string) Version {
	v, err := ParseVersion(s)
	if err != nil {
		panic(err)
	}
	return v
}

// String returns the dotted form
func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// IsZero reports whether v is unset
func (v Version) IsZero() bool {
	return v == Version{}
}

// Compare returns -1, 0 or 1
func (v Version) Compare(o Version) int {
	return v.semver().Compare(o.semver())
}

func (v Version) semver() *goversion.Version {
	return goversion.Must(goversion.NewVersion(v.String()))
}
