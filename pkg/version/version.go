package version

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

const (
	Major = 0
	Minor = 3
	Patch = 0
)

var ErrInvalidVersion = errors.New("invalid version")

type Version struct {
	Major int
	Minor int
	Patch int
}

func Current() Version {
	return Version{Major: Major, Minor: Minor, Patch: Patch}
}

// String gives you the string representation of the current version
func String() string {
	return Current().String()
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// Parse accepts "x.y.z" with an optional leading "v".
func Parse(s string) (Version, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "v")

	parts := strings.Split(s, ".")
	if len(parts) != 3 {
		return Version{}, fmt.Errorf("%w: %q (expected x.y.z)", ErrInvalidVersion, s)
	}

	var nums [3]int
	for i, part := range parts {
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 {
			return Version{}, fmt.Errorf("%w: %q", ErrInvalidVersion, s)
		}
		nums[i] = n
	}

	return Version{Major: nums[0], Minor: nums[1], Patch: nums[2]}, nil
}

// Compatible reports whether a config written for v can be read by the current binary.
func (v Version) Compatible() bool {
	cur := Current()
	if v.Major != cur.Major {
		return false
	}
	// 0.x makes no promises across minors
	if cur.Major == 0 && v.Minor > cur.Minor {
		return false
	}
	return true
}
