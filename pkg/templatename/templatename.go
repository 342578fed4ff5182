// Package templatename parses container template archive names such as
// debian-12-standard_12.7-1_amd64.tar.zst and picks the newest match.
package templatename

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/Masterminds/semver/v3"
)

var archiveExt = regexp.MustCompile(`\.tar\.(gz|xz|zst)$`)

// Archive is a parsed template archive name.
type Archive struct {
	Name    string // full file name
	Base    string // e.g. debian-12-standard
	Version *semver.Version
	Arch    string
}

// IsArchive reports whether name looks like a template archive.
func IsArchive(name string) bool {
	return archiveExt.MatchString(name)
}

// Parse splits an archive name into base, version and architecture. Versions
// that do not parse leave Version nil.
func Parse(name string) (Archive, bool) {
	if !IsArchive(name) {
		return Archive{}, false
	}
	stem := archiveExt.ReplaceAllString(name, "")
	parts := strings.Split(stem, "_")
	if len(parts) < 2 {
		return Archive{Name: name, Base: stem}, true
	}

	a := Archive{Name: name, Base: parts[0]}
	if len(parts) >= 3 {
		a.Arch = parts[len(parts)-1]
	}
	a.Version = parseVersion(parts[1])
	return a, true
}

// parseVersion reads versions like "12.7-1" leniently. The Debian revision is
// folded into the patch number so "12.7-2" orders after "12.7-1".
func parseVersion(s string) *semver.Version {
	upstream, revision, _ := strings.Cut(s, "-")
	v, err := semver.NewVersion(upstream)
	if err != nil {
		return nil
	}
	if revision == "" {
		return v
	}
	rev, err := semver.NewVersion(revision)
	if err != nil {
		return v
	}
	folded, err := semver.NewVersion(fmt.Sprintf("%d.%d.%d", v.Major(), v.Minor(), v.Patch()*1000+rev.Major()))
	if err != nil {
		return v
	}
	return folded
}

// Resolve returns the archive named exactly like ref, or else the newest
// archive whose base equals ref (or whose name starts with ref).
func Resolve(ref string, candidates []string) (string, bool) {
	var matches []Archive
	for _, c := range candidates {
		if c == ref {
			return c, true
		}
		a, ok := Parse(c)
		if !ok {
			continue
		}
		if a.Base == ref || strings.HasPrefix(c, ref+"_") {
			matches = append(matches, a)
		}
	}
	if len(matches) == 0 {
		return "", false
	}

	sort.SliceStable(matches, func(i, j int) bool {
		vi, vj := matches[i].Version, matches[j].Version
		switch {
		case vi == nil && vj == nil:
			return matches[i].Name > matches[j].Name
		case vi == nil:
			return false
		case vj == nil:
			return true
		case !vi.Equal(vj):
			return vi.GreaterThan(vj)
		default:
			return matches[i].Name > matches[j].Name
		}
	})
	return matches[0].Name, true
}
