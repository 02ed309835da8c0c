package bookmarklet

import (
	"net/url"
	"strings"

	"github.com/google/uuid"
)

const (
	// MaxNameLength is the number of characters kept from a trimmed name.
	MaxNameLength = 120

	// DefaultName replaces a blank name.
	DefaultName = "Untitled"

	codePrefix = "javascript:"
)

// NewID returns a fresh opaque identifier.
func NewID() string {
	return uuid.NewString()
}

// SafeName trims the input and keeps at most MaxNameLength characters.
func SafeName(in string) string {
	name := strings.TrimSpace(in)
	runes := []rune(name)
	if len(runes) > MaxNameLength {
		return string(runes[:MaxNameLength])
	}
	return name
}

// Name is SafeName with DefaultName standing in for a blank result.
func Name(in string) string {
	if name := SafeName(in); name != "" {
		return name
	}
	return DefaultName
}

// NormalizeTags trims every tag, drops blanks and keeps the first occurrence
// of each duplicate.
func NormalizeTags(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, tag := range in {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}

// ParseTags splits a comma separated list and normalizes the result.
func ParseTags(in string) []string {
	return NormalizeTags(strings.Split(in, ","))
}

// NormalizeCode canonicalizes script text. A javascript: URL is percent
// decoded with its prefix removed; anything else is returned trimmed.
func NormalizeCode(in string) string {
	raw := strings.TrimSpace(in)
	if !strings.HasPrefix(strings.ToLower(raw), codePrefix) {
		return raw
	}
	body := strings.TrimSpace(raw[len(codePrefix):])
	decoded, err := url.PathUnescape(body)
	if err != nil {
		return body
	}
	return decoded
}
