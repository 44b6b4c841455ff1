package tagging

import (
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/mmcdole/sbx/internal/domain"
)

// Selection is the list of tags chosen in one tagging dialog, unique by name
type Selection struct {
	known []domain.SeriesTag
	tags  []domain.SeriesTag
}

// NewSelection starts an empty selection over the tags known to the node
func NewSelection(known []domain.SeriesTag) *Selection {
	return &Selection{known: known}
}

// Tags returns the selected tags in the order they were added
func (s *Selection) Tags() []domain.SeriesTag {
	out := make([]domain.SeriesTag, len(s.tags))
	copy(out, s.tags)
	return out
}

// Len returns the number of selected tags
func (s *Selection) Len() int {
	return len(s.tags)
}

// Has reports whether a tag with that exact name is selected
func (s *Selection) Has(name string) bool {
	for _, t := range s.tags {
		if t.Name == name {
			return true
		}
	}
	return false
}

// Add selects tag unless one with the same name is already selected.
// It returns the tag as held by the selection.
func (s *Selection) Add(tag domain.SeriesTag) domain.SeriesTag {
	for _, t := range s.tags {
		if t.Name == tag.Name {
			return t
		}
	}
	s.tags = append(s.tags, tag)
	return tag
}

// AddName selects a tag by name. Names matching a known tag reuse it;
// anything else becomes a new tag for the node to create.
func (s *Selection) AddName(name string) domain.SeriesTag {
	name = strings.TrimSpace(name)
	for _, t := range s.known {
		if t.Name == name {
			return s.Add(t)
		}
	}
	return s.Add(domain.SeriesTag{ID: domain.NewTagID, Name: name})
}

// Remove drops the tag with the given name
func (s *Selection) Remove(name string) {
	for i, t := range s.tags {
		if t.Name == name {
			s.tags = append(s.tags[:i], s.tags[i+1:]...)
			return
		}
	}
}

// FindTags suggests known tags for search: those whose name starts with it,
// ignoring case and skipping selected names. An empty search suggests
// nothing. Without a prefix match, fuzzy matches are ranked instead.
func (s *Selection) FindTags(search string) []domain.SeriesTag {
	if search == "" {
		return nil
	}

	lc := strings.ToLower(search)
	var matches []domain.SeriesTag
	for _, t := range s.known {
		if strings.HasPrefix(strings.ToLower(t.Name), lc) && !s.Has(t.Name) {
			matches = append(matches, t)
		}
	}
	if len(matches) > 0 {
		return matches
	}
	return s.fuzzyTags(search)
}

func (s *Selection) fuzzyTags(search string) []domain.SeriesTag {
	names := make([]string, len(s.known))
	for i, t := range s.known {
		names[i] = t.Name
	}

	ranks := fuzzy.RankFindFold(search, names)
	sort.Stable(ranks)

	var out []domain.SeriesTag
	for _, r := range ranks {
		t := s.known[r.OriginalIndex]
		if !s.Has(t.Name) {
			out = append(out, t)
		}
	}
	return out
}
