package inkpost

import (
	"strings"
	"testing"
	"time"
)

func TestExcerpt(t *testing.T) {
	p := Post{Description: "A summary", Content: strings.Repeat("x", 500)}
	if got := Excerpt(p); got != "A summary" {
		t.Errorf("Excerpt = %q, want the description", got)
	}

	p = Post{Content: strings.Repeat("y", 500)}
	got := Excerpt(p)
	if !strings.HasSuffix(got, "...") {
		t.Errorf("Excerpt = %q, want truncated with ellipsis", got)
	}
	if len([]rune(got)) != excerptLength+3 {
		t.Errorf("Excerpt length = %d runes", len([]rune(got)))
	}

	p = Post{Content: "short"}
	if got := Excerpt(p); got != "short" {
		t.Errorf("Excerpt = %q, want %q", got, "short")
	}

	// Multi-byte content must not be cut mid-character.
	p = Post{Content: strings.Repeat("ß", 200)}
	got = Excerpt(p)
	if !strings.HasPrefix(got, "ß") || strings.ContainsRune(got, '\uFFFD') {
		t.Errorf("Excerpt mangled multi-byte content: %q", got)
	}
}

func TestBuildURL(t *testing.T) {
	cases := []struct {
		base     string
		segments []string
		want     string
	}{
		{"http://localhost:3000", []string{"posts", "abc"}, "http://localhost:3000/posts/abc"},
		{"https://example.com/", []string{"about"}, "https://example.com/about"},
		{"https://example.com/blog", []string{"posts", "x"}, "https://example.com/blog/posts/x"},
	}
	for _, tc := range cases {
		if got := BuildURL(tc.base, tc.segments...); got != tc.want {
			t.Errorf("BuildURL(%q, %v) = %q, want %q", tc.base, tc.segments, got, tc.want)
		}
	}
}

func TestBlogPostingJsonLD(t *testing.T) {
	cfg := SiteConfig{Name: "My Blog", URL: "https://example.com"}
	p := Post{
		ID:        "abc",
		Title:     "Hello",
		Author:    "Alice",
		Content:   "body",
		CreatedAt: time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC),
	}
	got := BlogPostingJsonLD(p, cfg)
	for _, want := range []string{
		`"headline":"Hello"`,
		`"name":"Alice"`,
		`"datePublished":"2025-03-01"`,
		`https://example.com/posts/abc`,
	} {
		if !strings.Contains(got, want) {
			t.Errorf("JSON-LD missing %s:\n%s", want, got)
		}
	}
}
