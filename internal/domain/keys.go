package domain

import "strings"

var (
	segmentEscaper   = strings.NewReplacer("%", "%25", ":", "%3A")
	segmentUnescaper = strings.NewReplacer("%3A", ":", "%3a", ":", "%25", "%")
)

// KeySegment escapes an id for use between the ":" separators of a store key,
// so that "thai" and "thai:express" never share a key prefix. Ids without ":"
// or "%" are returned unchanged.
func KeySegment(id string) string {
	return segmentEscaper.Replace(id)
}

// ParseKeySegment reverses KeySegment. It reports false when the segment still
// contains a raw separator, which means it spans more than one id.
func ParseKeySegment(segment string) (string, bool) {
	if strings.Contains(segment, ":") {
		return "", false
	}
	return segmentUnescaper.Replace(segment), true
}
