package slicebox

import (
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/mmcdole/sbx/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilteredURL(t *testing.T) {
	sources := []domain.Source{{SourceType: "box", SourceID: 1}, {SourceType: "user", SourceID: 2}}
	types := []domain.SeriesType{{ID: 3}, {ID: 4}}
	tags := []domain.SeriesTag{{ID: 5}}

	tests := []struct {
		name   string
		base   string
		filter domain.Filter
		want   string
	}{
		{
			name: "no filters",
			base: "/api/metadata/studies/1/images",
			want: "/api/metadata/studies/1/images",
		},
		{
			name:   "sources only",
			base:   "/api/metadata/studies/1/images",
			filter: domain.Filter{Sources: sources},
			want:   "/api/metadata/studies/1/images?sources=box:1,user:2",
		},
		{
			name:   "types and tags",
			base:   "/api/metadata/studies/1/images",
			filter: domain.Filter{SeriesTypes: types, SeriesTags: tags},
			want:   "/api/metadata/studies/1/images?seriestypes=3,4&seriestags=5",
		},
		{
			name:   "all sets",
			base:   "/x",
			filter: domain.Filter{Sources: sources, SeriesTypes: types, SeriesTags: tags},
			want:   "/x?sources=box:1,user:2&seriestypes=3,4&seriestags=5",
		},
		{
			name:   "base with query",
			base:   "/api/metadata/series?startindex=0&count=10&studyid=2",
			filter: domain.Filter{SeriesTags: tags},
			want:   "/api/metadata/series?startindex=0&count=10&studyid=2&seriestags=5",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FilteredURL(tt.base, tt.filter))
		})
	}
}

// Property: exactly one '?' and one parameter per non-empty set, in fixed order
func TestFilteredURL_ParameterShape(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	properties.Property("one parameter per non-empty set", prop.ForAll(
		func(nSources, nTypes, nTags uint8, withQuery bool) bool {
			base := "/api/metadata/studies/1/images"
			if withQuery {
				base = "/api/metadata/series?startindex=0"
			}
			var f domain.Filter
			for i := 0; i < int(nSources%4); i++ {
				f.Sources = append(f.Sources, domain.Source{SourceType: "box", SourceID: int64(i)})
			}
			for i := 0; i < int(nTypes%4); i++ {
				f.SeriesTypes = append(f.SeriesTypes, domain.SeriesType{ID: int64(i)})
			}
			for i := 0; i < int(nTags%4); i++ {
				f.SeriesTags = append(f.SeriesTags, domain.SeriesTag{ID: int64(i)})
			}

			got := FilteredURL(base, f)
			if strings.Count(got, "?") > 1 || !strings.HasPrefix(got, base) {
				return false
			}
			if f.IsEmpty() {
				return got == base
			}

			var names []string
			for _, kv := range strings.Split(got[len(base)+1:], "&") {
				name, _, _ := strings.Cut(kv, "=")
				names = append(names, name)
			}
			var want []string
			if len(f.Sources) > 0 {
				want = append(want, "sources")
			}
			if len(f.SeriesTypes) > 0 {
				want = append(want, "seriestypes")
			}
			if len(f.SeriesTags) > 0 {
				want = append(want, "seriestags")
			}
			return strings.Join(names, "&") == strings.Join(want, "&")
		},
		gen.UInt8(), gen.UInt8(), gen.UInt8(), gen.Bool(),
	))

	properties.TestingRun(t)
}

func TestParseSources(t *testing.T) {
	got, err := ParseSources("box:1, user:22")
	require.NoError(t, err)
	assert.Equal(t, []domain.Source{
		{SourceType: "box", SourceID: 1},
		{SourceType: "user", SourceID: 22},
	}, got)

	got, err = ParseSources("  ")
	require.NoError(t, err)
	assert.Nil(t, got)

	_, err = ParseSources("box")
	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "box", perr.Input)

	_, err = ParseSources("box:x")
	require.ErrorAs(t, err, &perr)
}
