// Package entrylog stores decoded telemetry values per hierarchical path
// and per timestamp, and defers decoding until referenced struct schemas
// arrive.
package entrylog

import (
	"strings"
)

// Path is a slash-joined hierarchical key. Segments name entries and the
// synthetic children of flattened composites: struct field names, array
// indices, and the "length" marker beside struct arrays.
type Path string

// PathOf joins segments into a path.
func PathOf(segments ...string) Path {
	return Path(strings.Join(segments, "/"))
}

// FromName converts an entry name into a path, tolerating the leading
// slash most entry names carry ("/FMSInfo/GameSpecificMessage").
func FromName(name string) Path {
	return Path(strings.Trim(name, "/"))
}

func (p Path) Join(segment string) Path {
	if p == "" {
		return Path(segment)
	}
	return p + "/" + Path(segment)
}

// Parent returns the path minus its last segment, or "" at the root.
func (p Path) Parent() Path {
	i := strings.LastIndexByte(string(p), '/')
	if i < 0 {
		return ""
	}
	return p[:i]
}

// Last returns the final segment.
func (p Path) Last() string {
	i := strings.LastIndexByte(string(p), '/')
	return string(p[i+1:])
}

func (p Path) String() string {
	return string(p)
}
