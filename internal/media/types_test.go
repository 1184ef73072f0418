package media

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseKind(t *testing.T) {
	tests := []struct {
		input string
		want  Kind
		ok    bool
	}{
		{input: "movie", want: KindMovie, ok: true},
		{input: "电影", want: KindMovie, ok: true},
		{input: " TV ", want: KindSeries, ok: true},
		{input: "series", want: KindSeries, ok: true},
		{input: "电视剧", want: KindSeries, ok: true},
		{input: "anime", ok: false},
		{input: "", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, ok := ParseKind(tt.input)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestKind_Labels(t *testing.T) {
	assert.Equal(t, "电影", KindMovie.Label())
	assert.Equal(t, "电视剧", KindSeries.Label())
	assert.Equal(t, "movie", KindMovie.TMDBPath())
	assert.Equal(t, "tv", KindSeries.TMDBPath())
	assert.False(t, Kind("").Valid())
}
