package slug

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"simple", "Hello World", "hello-world"},
		{"punctuation collapses", "Web // Dev!!", "web-dev"},
		{"accents stripped", "Crème Brûlée", "creme-brulee"},
		{"leading and trailing junk", "--Go, Concurrency--", "go-concurrency"},
		{"digits kept", "Top 10 Tips", "top-10-tips"},
		{"already normalized", "web-dev", "web-dev"},
		{"empty", "", ""},
		{"only punctuation", "!!!", ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Normalize(tc.input))
		})
	}
}

func TestRegistry_CollisionSuffixes(t *testing.T) {
	r := NewRegistry()

	const n = 5
	got := make([]string, 0, n)
	for i := 0; i < n; i++ {
		got = append(got, r.Register("My Post", "", "article"))
	}

	want := []string{"my-post"}
	for i := 2; i <= n; i++ {
		want = append(want, fmt.Sprintf("my-post-%d", i))
	}
	assert.Equal(t, want, got)
	assert.Equal(t, n, r.Len())
}

func TestRegistry_CaseVariantsCollide(t *testing.T) {
	r := NewRegistry()

	first := r.Register("Web Dev", "", "article")
	second := r.Register("web-dev", "", "article")

	assert.Equal(t, "web-dev", first)
	assert.Equal(t, "web-dev-2", second)
}

func TestRegistry_FallbackChain(t *testing.T) {
	r := NewRegistry()

	require.Equal(t, "posts-intro", r.Register("", "posts/intro.md", "article"))
	require.Equal(t, "article-1", r.Register("", "", "article"))
	require.Equal(t, "article-2", r.Register("!!!", "???", "article"))
}

func TestRegistry_FreshPerPass(t *testing.T) {
	first := NewRegistry()
	first.Register("My Post", "", "article")

	// A new registry must not remember slugs from a previous pass.
	second := NewRegistry()
	assert.Equal(t, "my-post", second.Register("My Post", "", "article"))
}
