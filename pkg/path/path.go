// Package path implements the registry's naming grammar: building and
// decomposing instance/product paths stored as slash-delimited keys in the
// KV backend.
package path

import (
	"regexp"
	"strings"
)

var (
	clusterPatterns = []*regexp.Regexp{
		regexp.MustCompile(`^(.+)/services/[^/]+/nodes`),
		regexp.MustCompile(`^(.+)/nodes/[^/]+/services`),
		regexp.MustCompile(`^(.+)/services`),
		regexp.MustCompile(`^(.+)/nodes`),
	}
	nodePattern    = regexp.MustCompile(`^(.*/nodes/[^/]+)`)
	servicePattern = regexp.MustCompile(`^(.*/services/[^/]+)`)
	diskPattern    = regexp.MustCompile(`^(.*/disks/[^/]+)`)
	networkPattern = regexp.MustCompile(`^(.*/networks/[^/]+)`)
)

// Clean strips a trailing slash, the normal form every parser below expects.
func Clean(p string) string {
	return strings.TrimSuffix(p, "/")
}

// LastSegment returns everything after the final '/' in p.
func LastSegment(p string) string {
	p = Clean(p)
	if idx := strings.LastIndex(p, "/"); idx >= 0 {
		return p[idx+1:]
	}
	return p
}

// ClusterDN returns the longest prefix of p that terminates a cluster DN,
// using the regex ladder from spec §4.1 (preferred over the four-segment
// prefix split for compatibility with deeply nested grammars). Returns ""
// and false when p matches none of the patterns.
func ClusterDN(p string) (string, bool) {
	p = Clean(p)
	for _, re := range clusterPatterns {
		if m := re.FindStringSubmatch(p); m != nil {
			return m[1], true
		}
	}
	return "", false
}

// NodeDN returns the longest prefix of p matching .../nodes/<name>.
func NodeDN(p string) (string, bool) {
	return match(nodePattern, p)
}

// ServiceDN returns the longest prefix of p matching .../services/<name>.
func ServiceDN(p string) (string, bool) {
	return match(servicePattern, p)
}

// DiskDN returns the longest prefix of p matching .../disks/<name>.
func DiskDN(p string) (string, bool) {
	return match(diskPattern, p)
}

// NetworkDN returns the longest prefix of p matching .../networks/<name>.
func NetworkDN(p string) (string, bool) {
	return match(networkPattern, p)
}

func match(re *regexp.Regexp, p string) (string, bool) {
	p = Clean(p)
	if m := re.FindStringSubmatch(p); m != nil {
		return m[1], true
	}
	return "", false
}

// IDFromDN turns a DN into a single-segment identifier that survives as one
// path component: '/' becomes "--", then '.' becomes "__".
func IDFromDN(dn string) string {
	dn = strings.ReplaceAll(dn, "/", "--")
	dn = strings.ReplaceAll(dn, ".", "__")
	return dn
}

// DNFromID is the inverse of IDFromDN.
func DNFromID(id string) string {
	id = strings.ReplaceAll(id, "__", ".")
	id = strings.ReplaceAll(id, "--", "/")
	return id
}

// Join joins DN segments with '/', skipping empty segments.
func Join(segments ...string) string {
	parts := make([]string, 0, len(segments))
	for _, s := range segments {
		if s == "" {
			continue
		}
		parts = append(parts, strings.Trim(s, "/"))
	}
	return strings.Join(parts, "/")
}
