package localtable

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"
)

func seedPosts(t *testing.T, ta *testApp) {
	t.Helper()
	now := ta.clock.Now()
	posts := []BlogPost{
		{Slug: "harvest-notes", Title: "Harvest Notes", Excerpt: "Late summer tomatoes", Tags: []string{"farms", "seasonal"},
			Content: "# Tomatoes\nbrandywine\n## Peppers\nhot ones", ImageURL: "/public/uploads/tomato.jpg",
			Published: true, CreatedAt: now.Add(-24 * time.Hour), UpdatedAt: now.Add(-24 * time.Hour)},
		{Slug: "meet-chef-ana", Title: "Meet Chef Ana", Excerpt: "Dumplings on Thursdays", Tags: []string{"chefs", "seasonal"},
			Content: "Ana cooks.", Published: true, CreatedAt: now.Add(-10 * 24 * time.Hour), UpdatedAt: now.Add(-2 * time.Hour)},
		{Slug: "unfinished", Title: "Unfinished", Tags: []string{"farms"}, Content: "draft",
			Published: false, CreatedAt: now, UpdatedAt: now},
	}
	for _, p := range posts {
		if _, err := ta.Store.SavePost(context.Background(), p); err != nil {
			t.Fatal(err)
		}
	}
	ta.Cache.Invalidate()
}

func TestMarketingPages(t *testing.T) {
	ta := newTestApp(t, nil)
	seedPosts(t, ta)
	tests := []struct {
		path string
		want string
	}{
		{"/", "home|2"},
		{"/about/", "about|About | Local Table"},
		{"/how-it-works/", "how-it-works|How it works | Local Table"},
		{"/become-a-chef/", "become-a-chef|Become a chef | Local Table"},
		{"/contact/", "contact|Contact | Local Table"},
	}
	for _, tt := range tests {
		rec := ta.do(http.MethodGet, tt.path, "")
		if rec.Code != http.StatusOK {
			t.Errorf("GET %s status = %d", tt.path, rec.Code)
			continue
		}
		if got := rec.Body.String(); got != tt.want {
			t.Errorf("GET %s body = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestTrailingSlashRedirect(t *testing.T) {
	ta := newTestApp(t, nil)
	rec := ta.do(http.MethodGet, "/about", "")
	if rec.Code != http.StatusMovedPermanently || rec.Header().Get("Location") != "/about/" {
		t.Errorf("GET /about = %d -> %q", rec.Code, rec.Header().Get("Location"))
	}
}

func TestBlogListingFilters(t *testing.T) {
	ta := newTestApp(t, nil)
	seedPosts(t, ta)
	tests := []struct {
		target string
		want   string
	}{
		{"/blog/", "blog|||harvest-notes,meet-chef-ana"},
		{"/blog/?tag=Farms", "blog|farms||harvest-notes"},
		{"/blog/?q=dumpling", "blog||dumpling|meet-chef-ana"},
		{"/blog/?tag=seasonal&q=TOMATO", "blog|seasonal|TOMATO|harvest-notes"},
		{"/blog/?q=nothing-matches", "blog||nothing-matches|"},
	}
	for _, tt := range tests {
		rec := ta.do(http.MethodGet, tt.target, "")
		if got := rec.Body.String(); got != tt.want {
			t.Errorf("GET %s = %q, want %q", tt.target, got, tt.want)
		}
	}

	rec := ta.do(http.MethodGet, "/blog/?partial=blog", "", "HX-Request", "true")
	if got := rec.Body.String(); got != "blog-partial|2" {
		t.Errorf("blog partial = %q", got)
	}
}

func TestPostPage(t *testing.T) {
	ta := newTestApp(t, nil)
	seedPosts(t, ta)

	rec := ta.do(http.MethodGet, "/blog/harvest-notes/", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := rec.Body.String(); got != "post|harvest-notes|2|1" {
		t.Errorf("body = %q", got)
	}

	for _, slug := range []string{"unfinished", "missing"} {
		rec := ta.do(http.MethodGet, "/blog/"+slug+"/", "")
		if rec.Code != http.StatusNotFound || rec.Body.String() != "not-found" {
			t.Errorf("GET %s = %d %q, want 404 not-found", slug, rec.Code, rec.Body.String())
		}
	}
}

func TestAPIPosts(t *testing.T) {
	ta := newTestApp(t, nil)
	seedPosts(t, ta)

	rec := ta.do(http.MethodGet, "/api/posts?tag=chefs", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := decodeBody(t, rec)
	posts, _ := body["posts"].([]any)
	if len(posts) != 1 {
		t.Fatalf("posts = %v", body["posts"])
	}
	first := posts[0].(map[string]any)
	if first["slug"] != "meet-chef-ana" {
		t.Errorf("slug = %v", first["slug"])
	}
	if _, ok := first["content"]; ok {
		t.Error("listing should omit content")
	}

	rec = ta.do(http.MethodGet, "/api/posts/harvest-notes", "")
	body = decodeBody(t, rec)
	headings, _ := body["headings"].([]any)
	if len(headings) != 2 {
		t.Fatalf("headings = %v", body["headings"])
	}
	h0 := headings[0].(map[string]any)
	if h0["id"] != "heading-0" || h0["text"] != "Tomatoes" || h0["level"] != float64(1) {
		t.Errorf("heading-0 = %v", h0)
	}
	blocks, _ := body["blocks"].([]any)
	if len(blocks) != 4 {
		t.Errorf("blocks = %v", body["blocks"])
	}

	rec = ta.do(http.MethodGet, "/api/posts/unfinished", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("draft status = %d, want 404", rec.Code)
	}
	if got := decodeBody(t, rec)["error"]; got != "Post not found" {
		t.Errorf("error = %v", got)
	}
}

func TestSitemapEndpoint(t *testing.T) {
	ta := newTestApp(t, nil)
	seedPosts(t, ta)

	rec := ta.do(http.MethodGet, "/sitemap.xml", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/xml") {
		t.Errorf("Content-Type = %q", ct)
	}
	body := rec.Body.String()
	for _, want := range []string{
		"<loc>https://localtable.example</loc>",
		"<loc>https://localtable.example/about/</loc>",
		"<loc>https://localtable.example/blog/harvest-notes/</loc>",
		"<loc>https://localtable.example/blog/meet-chef-ana/</loc>",
		"<image:loc>https://localtable.example/public/uploads/tomato.jpg</image:loc>",
		"<news:title>Harvest Notes</news:title>",
	} {
		if !strings.Contains(body, want) {
			t.Errorf("sitemap missing %s", want)
		}
	}
	if strings.Contains(body, "unfinished") {
		t.Error("sitemap lists a draft")
	}
	if strings.Count(body, "<news:news>") != 1 {
		t.Errorf("want exactly one news entry:\n%s", body)
	}

	if rec := ta.do(http.MethodPost, "/sitemap.xml", ""); rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("POST /sitemap.xml status = %d, want 405", rec.Code)
	}
}

func TestFeed(t *testing.T) {
	ta := newTestApp(t, nil)
	seedPosts(t, ta)
	rec := ta.do(http.MethodGet, "/feed.xml", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "<title>Harvest Notes</title>") || strings.Contains(body, "Unfinished") {
		t.Errorf("feed = %s", body)
	}
	if !strings.Contains(body, "<category>farms</category>") {
		t.Errorf("feed missing categories")
	}
}

// adminSession logs in and returns cookies carrying the session and CSRF token.
func adminSession(t *testing.T, ta *testApp) (cookies []*http.Cookie, csrf string) {
	t.Helper()
	rec := ta.do(http.MethodGet, "/admin/", "")
	for _, c := range rec.Result().Cookies() {
		if c.Name == "_csrf" {
			csrf = c.Value
			cookies = append(cookies, c)
		}
	}
	if csrf == "" {
		t.Fatal("no csrf cookie")
	}
	form := url.Values{"password": {"secret"}, "_csrf": {csrf}}
	rec = ta.form(http.MethodPost, "/admin/login/", form, cookies)
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("login status = %d, body %s", rec.Code, rec.Body.String())
	}
	cookies = append(cookies, rec.Result().Cookies()...)
	return cookies, csrf
}

func (ta *testApp) form(method, target string, form url.Values, cookies []*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	ta.Echo.ServeHTTP(rec, req)
	return rec
}

func TestAdminLoginRejectsWrongPassword(t *testing.T) {
	ta := newTestApp(t, nil)
	rec := ta.do(http.MethodGet, "/admin/", "")
	if rec.Body.String() != "login|false" {
		t.Fatalf("anonymous admin = %q", rec.Body.String())
	}
	var cookies []*http.Cookie
	var csrf string
	for _, c := range rec.Result().Cookies() {
		if c.Name == "_csrf" {
			csrf = c.Value
			cookies = append(cookies, c)
		}
	}
	rec = ta.form(http.MethodPost, "/admin/login/", url.Values{"password": {"wrong"}, "_csrf": {csrf}}, cookies)
	if rec.Body.String() != "login|true" {
		t.Errorf("wrong password = %d %q", rec.Code, rec.Body.String())
	}

	rec = ta.form(http.MethodPost, "/admin/login/", url.Values{"password": {"secret"}}, nil)
	if rec.Code != http.StatusForbidden {
		t.Errorf("login without csrf status = %d, want 403", rec.Code)
	}
}

func TestAdminSaveAndDelete(t *testing.T) {
	ta := newTestApp(t, nil)
	cookies, csrf := adminSession(t, ta)

	form := url.Values{
		"_csrf":     {csrf},
		"title":     {"Autumn Soups"},
		"tags":      {"Seasonal, , soups"},
		"content":   {"# Squash\nRoast it first. Then **blend** it.\n\n## Leeks\nSweat slowly."},
		"published": {"on"},
		"date":      {"2025-05-20"},
	}
	rec := ta.form(http.MethodPost, "/admin/save/", form, cookies)
	if rec.Code != http.StatusOK || rec.Body.String() != "dashboard|saved|1" {
		t.Fatalf("save = %d %q", rec.Code, rec.Body.String())
	}

	post, err := ta.Store.GetPost(context.Background(), "autumn-soups")
	if err != nil {
		t.Fatal(err)
	}
	if post.Excerpt != "Roast it first. Then blend it. Sweat slowly." {
		t.Errorf("derived excerpt = %q", post.Excerpt)
	}
	if len(post.Tags) != 2 || post.Tags[0] != "seasonal" || post.Tags[1] != "soups" {
		t.Errorf("tags = %v", post.Tags)
	}
	if post.Date() != "2025-05-20" {
		t.Errorf("date = %q", post.Date())
	}

	// Public pages see the new post without waiting for the cache TTL.
	if rec := ta.do(http.MethodGet, "/blog/autumn-soups/", ""); rec.Code != http.StatusOK {
		t.Errorf("public post status = %d", rec.Code)
	}

	form = url.Values{"_csrf": {csrf}, "title": {"Bad"}, "date": {"20-05-2025"}}
	rec = ta.form(http.MethodPost, "/admin/save/", form, cookies)
	if rec.Code != http.StatusSeeOther || !strings.Contains(rec.Header().Get("Location"), "Invalid+date") {
		t.Errorf("bad date = %d %q", rec.Code, rec.Header().Get("Location"))
	}

	req := httptest.NewRequest(http.MethodDelete, "/admin/post/autumn-soups/", nil)
	req.Header.Set("X-CSRF-Token", csrf)
	for _, c := range cookies {
		req.AddCookie(c)
	}
	drec := httptest.NewRecorder()
	ta.Echo.ServeHTTP(drec, req)
	if drec.Body.String() != "dashboard|deleted|0" {
		t.Errorf("delete = %d %q", drec.Code, drec.Body.String())
	}
}

func TestAdminRoutesRequireSession(t *testing.T) {
	ta := newTestApp(t, nil)
	for _, target := range []string{"/admin/post/x/", "/admin/images/"} {
		rec := ta.do(http.MethodGet, target, "")
		if rec.Code != http.StatusSeeOther {
			t.Errorf("GET %s status = %d, want 303", target, rec.Code)
		}
	}
}
