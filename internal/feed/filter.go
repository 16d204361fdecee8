// Package feed holds the pure post-list operations: label and text filters,
// the derived label set, and parsing of the comma-separated label field.
package feed

import (
	"slices"
	"sort"
	"strings"

	"minicms/internal/store"
)

// FilterByLabel keeps posts carrying label, compared exactly.
func FilterByLabel(posts []store.Post, label string) []store.Post {
	out := make([]store.Post, 0, len(posts))
	for _, p := range posts {
		if slices.Contains(p.Labels, label) {
			out = append(out, p)
		}
	}
	return out
}

// FilterBySearch keeps posts whose title or content contains text as a
// substring, ignoring case. Surrounding spaces are part of the needle. Blank
// text matches every post.
func FilterBySearch(posts []store.Post, text string) []store.Post {
	if strings.TrimSpace(text) == "" {
		return slices.Clone(posts)
	}
	needle := strings.ToLower(text)
	out := make([]store.Post, 0, len(posts))
	for _, p := range posts {
		if strings.Contains(strings.ToLower(p.Title), needle) ||
			strings.Contains(strings.ToLower(p.Content), needle) {
			out = append(out, p)
		}
	}
	return out
}

// AllLabels is the sorted union of every post's labels.
func AllLabels(posts []store.Post) []string {
	seen := map[string]struct{}{}
	for _, p := range posts {
		for _, l := range p.Labels {
			seen[l] = struct{}{}
		}
	}
	labels := make([]string, 0, len(seen))
	for l := range seen {
		labels = append(labels, l)
	}
	sort.Strings(labels)
	return labels
}

// ParseLabels splits the form field on commas and trims each entry. Order and
// duplicates are kept; empty entries are dropped.
func ParseLabels(raw string) []string {
	labels := []string{}
	for _, part := range strings.Split(raw, ",") {
		if l := strings.TrimSpace(part); l != "" {
			labels = append(labels, l)
		}
	}
	return labels
}

// JoinLabels is the inverse of ParseLabels used to prefill the edit form.
func JoinLabels(labels []string) string {
	return strings.Join(labels, ",")
}
