package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatchPattern(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		pattern string
		want    bool
	}{
		{name: "部分一致", input: "prod-api-canary", pattern: "api", want: true},
		{name: "部分一致しない", input: "prod-api-canary", pattern: "batch", want: false},
		{name: "前方ワイルドカード", input: "prod-api-canary", pattern: "prod-*", want: true},
		{name: "後方ワイルドカード", input: "prod-api-canary", pattern: "*-canary", want: true},
		{name: "中間ワイルドカード", input: "prod-api-canary", pattern: "prod-*-canary", want: true},
		{name: "ワイルドカード不一致", input: "stg-api-canary", pattern: "prod-*", want: false},
		{name: "完全一致もglob扱い", input: "prod", pattern: "prod*", want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, MatchPattern(tt.input, tt.pattern))
		})
	}
}

func TestFilterByPattern(t *testing.T) {
	type item struct{ name string }
	items := []item{{"prod-web"}, {"prod-api"}, {"stg-web"}}

	getName := func(i item) string { return i.name }

	assert.Len(t, FilterByPattern(items, "prod-*", getName), 2)
	assert.Len(t, FilterByPattern(items, "web", getName), 2)
	assert.Len(t, FilterByPattern(items, "", getName), 3)
	assert.Empty(t, FilterByPattern(items, "dev-*", getName))
}
