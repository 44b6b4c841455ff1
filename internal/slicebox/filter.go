package slicebox

import (
	"strconv"
	"strings"

	"github.com/mmcdole/sbx/internal/domain"
)

// FilteredURL appends the non-empty filter sets of f to base as query
// parameters, in the order sources, seriestypes, seriestags. Values are
// comma-joined and left unescaped, matching what the node expects.
// The first parameter is introduced with '?' unless base already carries a
// query string.
func FilteredURL(base string, f domain.Filter) string {
	var b strings.Builder
	b.WriteString(base)
	hasQuery := strings.Contains(base, "?")

	appendParam := func(name string, values []string) {
		if len(values) == 0 {
			return
		}
		if hasQuery {
			b.WriteByte('&')
		} else {
			b.WriteByte('?')
			hasQuery = true
		}
		b.WriteString(name)
		b.WriteByte('=')
		b.WriteString(strings.Join(values, ","))
	}

	sources := make([]string, len(f.Sources))
	for i, s := range f.Sources {
		sources[i] = s.String()
	}
	appendParam("sources", sources)

	types := make([]string, len(f.SeriesTypes))
	for i, t := range f.SeriesTypes {
		types[i] = strconv.FormatInt(t.ID, 10)
	}
	appendParam("seriestypes", types)

	tags := make([]string, len(f.SeriesTags))
	for i, t := range f.SeriesTags {
		tags[i] = strconv.FormatInt(t.ID, 10)
	}
	appendParam("seriestags", tags)

	return b.String()
}

// ParseSources parses "type:id,type:id" as accepted on the command line
func ParseSources(s string) ([]domain.Source, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	var sources []domain.Source
	for _, part := range strings.Split(s, ",") {
		typ, id, ok := strings.Cut(strings.TrimSpace(part), ":")
		if !ok || typ == "" {
			return nil, &ParseError{Input: part, Reason: "expected type:id"}
		}
		n, err := strconv.ParseInt(id, 10, 64)
		if err != nil {
			return nil, &ParseError{Input: part, Reason: "source id is not a number"}
		}
		sources = append(sources, domain.Source{SourceType: typ, SourceID: n})
	}
	return sources, nil
}

// ParseError reports a malformed filter argument
type ParseError struct {
	Input  string
	Reason string
}

func (e *ParseError) Error() string {
	return "invalid filter " + strconv.Quote(e.Input) + ": " + e.Reason
}
