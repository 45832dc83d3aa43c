package credential

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvResolve(t *testing.T) {
	tests := []struct {
		name   string
		vars   map[string]string
		want   string
		wantOK bool
	}{
		{name: "primary wins", vars: map[string]string{"GITHUB_TOKEN": "primary", "GH_TOKEN": "fallback"}, want: "primary", wantOK: true},
		{name: "fallback when primary unset", vars: map[string]string{"GH_TOKEN": "fallback"}, want: "fallback", wantOK: true},
		{name: "fallback when primary empty", vars: map[string]string{"GITHUB_TOKEN": "", "GH_TOKEN": "fallback"}, want: "fallback", wantOK: true},
		{name: "neither set", vars: map[string]string{}},
		{name: "both empty", vars: map[string]string{"GITHUB_TOKEN": "", "GH_TOKEN": ""}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := &Env{
				Primary:  "GITHUB_TOKEN",
				Fallback: "GH_TOKEN",
				Getenv:   func(name string) string { return tt.vars[name] },
			}
			got, ok := src.Resolve()
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEnvLookupReadsProcessEnvironment(t *testing.T) {
	t.Setenv("SCRIPTHUB_TEST_PRIMARY", "")
	t.Setenv("SCRIPTHUB_TEST_FALLBACK", "from-process")

	token, ok, err := NewEnv("SCRIPTHUB_TEST_PRIMARY", "SCRIPTHUB_TEST_FALLBACK").Lookup(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "from-process", token)
}
