// Package versionsort implements the stable, numeric-aware revision
// ordering used to decide which of two candidate revisions is "newer"
// when the graph resolver must pick one (spec: version-sort tie-breaks,
// never semantic-version range solving).
package versionsort

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// segmentRE splits a token into runs of digits and runs of non-digits.
var segmentRE = regexp.MustCompile(`\d+|\D+`)

// Compare returns -1, 0, or 1 as a compares before, equal to, or after b
// under version-sort. HEAD sorts after every other revision, since it
// denotes whatever is presently active rather than a fixed point.
func Compare(a, b string) int {
	if a == b {
		return 0
	}
	if a == "HEAD" {
		return 1
	}
	if b == "HEAD" {
		return -1
	}

	if va, err := semver.NewVersion(a); err == nil {
		if vb, err := semver.NewVersion(b); err == nil {
			return va.Compare(vb)
		}
	}

	return compareSegments(a, b)
}

// Max returns the greater of a and b under Compare.
func Max(a, b string) string {
	if Compare(a, b) >= 0 {
		return a
	}
	return b
}

// Min returns the lesser of a and b under Compare.
func Min(a, b string) string {
	if Compare(a, b) <= 0 {
		return a
	}
	return b
}

// compareSegments compares two tokens by alternating digit/non-digit runs:
// digit runs compare numerically, everything else compares byte-wise.
func compareSegments(a, b string) int {
	as := segmentRE.FindAllString(a, -1)
	bs := segmentRE.FindAllString(b, -1)

	for i := 0; i < len(as) && i < len(bs); i++ {
		sa, sb := as[i], bs[i]
		na, errA := strconv.Atoi(sa)
		nb, errB := strconv.Atoi(sb)
		switch {
		case errA == nil && errB == nil:
			if na != nb {
				return cmpInt(na, nb)
			}
		default:
			if sa != sb {
				return strings.Compare(sa, sb)
			}
		}
	}

	return cmpInt(len(as), len(bs))
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
