package utils

import "strings"

// SanitizeFilename replaces characters that are illegal in file names on
// common filesystems with underscores. Spaces are legal and kept as-is;
// leading/trailing whitespace and trailing dots are trimmed.
func SanitizeFilename(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		switch {
		case r < 0x20:
			b.WriteRune('_')
		case strings.ContainsRune(`/\:*?"<>|`, r):
			b.WriteRune('_')
		default:
			b.WriteRune(r)
		}
	}
	out := strings.TrimSpace(b.String())
	out = strings.TrimRight(out, ".")
	if out == "" {
		return "untitled"
	}
	return out
}
