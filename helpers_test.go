package localtable

import (
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"
)

func TestSlugify(t *testing.T) {
	tests := []struct{ in, want string }{
		{"Hello World", "hello-world"},
		{"  Spring -- Menu!  ", "spring-menu"},
		{"Café & Crêpes", "caf-cr-pes"},
		{"2026 Harvest", "2026-harvest"},
		{"!!!", ""},
	}
	for _, tt := range tests {
		if got := Slugify(tt.in); got != tt.want {
			t.Errorf("Slugify(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestBuildURL(t *testing.T) {
	tests := []struct {
		base string
		segs []string
		want string
	}{
		{"https://localtable.test", nil, "https://localtable.test"},
		{"https://localtable.test", []string{"blog", "a-post"}, "https://localtable.test/blog/a-post/"},
		{"https://localtable.test/sub", []string{"about"}, "https://localtable.test/sub/about/"},
	}
	for _, tt := range tests {
		if got := BuildURL(tt.base, tt.segs...); got != tt.want {
			t.Errorf("BuildURL(%q, %v) = %q, want %q", tt.base, tt.segs, got, tt.want)
		}
	}
}

func TestFilterRelatedPosts(t *testing.T) {
	current := BlogPost{Slug: "a", Tags: []string{"Farms"}}
	posts := []BlogPost{
		{Slug: "a", Tags: []string{"farms"}},
		{Slug: "b", Tags: []string{"chefs"}},
		{Slug: "c", Tags: []string{"chefs", " farms "}},
	}
	got := FilterRelatedPosts(current, posts)
	if len(got) != 1 || got[0].Slug != "c" {
		t.Errorf("FilterRelatedPosts = %v, want [c]", slugs(got))
	}
}

func TestExcerptFrom(t *testing.T) {
	content := "# Title\nThe **first** paragraph has [a link](/x).\n\nSecond one."
	if got := ExcerptFrom(content, 200); got != "The first paragraph has a link. Second one." {
		t.Errorf("ExcerptFrom = %q", got)
	}
	long := ExcerptFrom(strings.Repeat("word ", 100), 23)
	if long != "word word word word…" {
		t.Errorf("ExcerptFrom cut = %q", long)
	}
}

func TestReadingMinutes(t *testing.T) {
	if got := ReadingMinutes("short"); got != 1 {
		t.Errorf("ReadingMinutes(short) = %d", got)
	}
	if got := ReadingMinutes(strings.Repeat("w ", 1000)); got != 5 {
		t.Errorf("ReadingMinutes(1000 words) = %d, want 5", got)
	}
}

func TestBlogPostingJsonLD(t *testing.T) {
	cfg := SiteConfig{Name: "Local Table", URL: "https://localtable.test", Author: "The Kitchen"}
	post := BlogPost{
		Slug:      "market",
		Title:     "Market day",
		Excerpt:   "What we bought",
		ImageURL:  "/public/uploads/m.jpg",
		Tags:      []string{"farms", "markets"},
		CreatedAt: time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC),
		UpdatedAt: time.Date(2026, 4, 2, 9, 0, 0, 0, time.UTC),
	}
	var data map[string]any
	if err := json.Unmarshal([]byte(BlogPostingJsonLD(post, cfg)), &data); err != nil {
		t.Fatalf("invalid JSON-LD: %v", err)
	}
	want := map[string]string{
		"@type":         "BlogPosting",
		"headline":      "Market day",
		"description":   "What we bought",
		"url":           "https://localtable.test/blog/market/",
		"datePublished": "2026-04-01T09:00:00Z",
		"dateModified":  "2026-04-02T09:00:00Z",
		"image":         "https://localtable.test/public/uploads/m.jpg",
		"keywords":      "farms, markets",
	}
	for k, v := range want {
		if data[k] != v {
			t.Errorf("%s = %v, want %q", k, data[k], v)
		}
	}
}

func TestWebsiteJsonLD(t *testing.T) {
	var data map[string]any
	if err := json.Unmarshal([]byte(WebsiteJsonLD(SiteConfig{Name: "Local Table", URL: "https://localtable.test"})), &data); err != nil {
		t.Fatal(err)
	}
	if data["@type"] != "WebSite" || data["name"] != "Local Table" {
		t.Errorf("WebsiteJsonLD = %v", data)
	}
	if _, ok := data["author"]; ok {
		t.Error("author set without cfg.Author")
	}
}
