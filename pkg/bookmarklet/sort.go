package bookmarklet

import (
	"sort"
	"strings"
)

// SortForLauncher returns a copy of items ordered for the launcher:
// favorites first, then most recently used (never used sorts last), then most
// recently updated.
func SortForLauncher(items []Bookmarklet) []Bookmarklet {
	out := make([]Bookmarklet, len(items))
	copy(out, items)
	sort.SliceStable(out, func(i, j int) bool {
		return launcherLess(out[i], out[j])
	})
	return out
}

func launcherLess(left, right Bookmarklet) bool {
	if left.Favorite != right.Favorite {
		return left.Favorite
	}
	lu, ru := left.LastUsedAt.Time, right.LastUsedAt.Time
	if !lu.Equal(ru) {
		return lu.After(ru)
	}
	return left.UpdatedAt.After(right.UpdatedAt.Time)
}

// Filter keeps items whose name or tags contain query, ignoring case. A blank
// query keeps everything.
func Filter(items []Bookmarklet, query string) []Bookmarklet {
	term := strings.ToLower(strings.TrimSpace(query))
	if term == "" {
		return items
	}
	out := make([]Bookmarklet, 0, len(items))
	for _, item := range items {
		name := strings.ToLower(item.Name)
		tags := strings.ToLower(strings.Join(item.Tags, " "))
		if strings.Contains(name, term) || strings.Contains(tags, term) {
			out = append(out, item)
		}
	}
	return out
}
