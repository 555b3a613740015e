package localtable

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"

	"github.com/eringen/localtable/markdown"
)

const (
	homeLatestPosts = 3
	relatedPosts    = 3
)

func (a *App) pageMeta(title, description string, segments ...string) PageMeta {
	full := a.Config.Name
	if title != "" {
		full = title + " | " + a.Config.Name
	}
	return PageMeta{
		Title:       full,
		Description: description,
		URL:         BuildURL(a.Config.URL, segments...),
		OGType:      "website",
		JSONLD:      WebsiteJsonLD(a.Config),
	}
}

func (a *App) handleHome(c echo.Context) error {
	posts, err := a.Cache.ListPosts(c.Request().Context(), "")
	if err != nil {
		return err
	}
	if len(posts) > homeLatestPosts {
		posts = posts[:homeLatestPosts]
	}
	return Render(c, a.Views.Home(HomeData{
		Meta:        a.pageMeta("", a.Config.Description),
		LatestPosts: posts,
		SiteURL:     a.Config.URL,
	}))
}

// handlePage serves a static marketing page at its own path.
func (a *App) handlePage(view func(PageMeta) templ.Component, title, description string) echo.HandlerFunc {
	return func(c echo.Context) error {
		path := strings.Trim(c.Path(), "/")
		return Render(c, view(a.pageMeta(title, description, path)))
	}
}

func (a *App) handleBlog(c echo.Context) error {
	ctx := c.Request().Context()
	tag := normalizeTag(c.QueryParam("tag"))
	query := strings.TrimSpace(c.QueryParam("q"))
	posts, err := a.Cache.SearchPosts(ctx, tag, query)
	if err != nil {
		return err
	}
	tags, err := a.Cache.ListTags(ctx)
	if err != nil {
		return err
	}
	data := BlogData{
		Meta:      a.pageMeta("Blog", "Stories from local kitchens, farms and markets.", "blog"),
		Posts:     posts,
		Tags:      tags,
		ActiveTag: tag,
		Query:     query,
	}
	if c.Request().Header.Get("HX-Request") == "true" && c.QueryParam("partial") == "blog" {
		return Render(c, a.Views.BlogPartial(data))
	}
	return Render(c, a.Views.Blog(data))
}

func (a *App) handlePost(c echo.Context) error {
	ctx := c.Request().Context()
	post, err := a.Cache.GetPost(ctx, c.Param("slug"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return RenderStatus(c, http.StatusNotFound, a.Views.NotFound())
		}
		return err
	}
	posts, err := a.Cache.ListPosts(ctx, "")
	if err != nil {
		return err
	}
	related := FilterRelatedPosts(post, posts)
	if len(related) > relatedPosts {
		related = related[:relatedPosts]
	}
	meta := a.pageMeta(post.Title, post.Excerpt, "blog", post.Slug)
	meta.OGType = "article"
	meta.Image = absoluteURL(a.Config.URL, post.ImageURL)
	meta.JSONLD = BlogPostingJsonLD(post, a.Config)
	return Render(c, a.Views.Post(PostData{
		Meta:    meta,
		Post:    post,
		Doc:     markdown.Parse(post.Content),
		Related: related,
		SiteURL: a.Config.URL,
	}))
}

func (a *App) handleVerificationPage(c echo.Context) error {
	r := ParseVerificationResult(c.QueryParams())
	meta := a.pageMeta(r.Title(), r.Message(), strings.Trim(a.Config.VerifyPagePath, "/"))
	return Render(c, a.Views.Verification(meta, r))
}

func (a *App) handleSitemap(c echo.Context) error {
	posts, err := a.Store.ListRecentlyUpdated(c.Request().Context(), MaxSitemapPosts)
	if err != nil {
		return err
	}
	return a.renderSitemap(c, posts)
}

func (a *App) handleFeed(c echo.Context) error {
	posts, err := a.Cache.ListPosts(c.Request().Context(), "")
	if err != nil {
		return err
	}
	return a.renderRSS(c, posts)
}

func (a *App) handleFavicon(c echo.Context) error {
	return c.File(a.Config.StaticDir + "/favicon.svg")
}

func (a *App) handleRobots(c echo.Context) error {
	body := fmt.Sprintf("User-agent: *\nAllow: /\nDisallow: /admin/\nDisallow: /api/\n\nSitemap: %s/sitemap.xml\n", a.Config.URL)
	return c.String(http.StatusOK, body)
}

func (a *App) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	code := http.StatusInternalServerError
	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
	}
	if code >= 500 {
		a.Logger.Error("server error", "method", c.Request().Method, "path", c.Request().URL.Path, "error", err)
	}

	if isAPIPath(c.Request().URL.Path) {
		_ = apiError(c, code, apiErrorMessage(code, he), "")
		return
	}
	switch {
	case code == http.StatusNotFound:
		_ = RenderStatus(c, http.StatusNotFound, a.Views.NotFound())
	case code >= 500:
		_ = RenderStatus(c, code, a.Views.ServerError())
	default:
		a.Echo.DefaultHTTPErrorHandler(err, c)
	}
}

func apiErrorMessage(code int, he *echo.HTTPError) string {
	switch code {
	case http.StatusMethodNotAllowed:
		return "Method not allowed"
	case http.StatusNotFound:
		return "Not found"
	case http.StatusInternalServerError:
		return "Internal server error"
	}
	if he != nil {
		if msg, ok := he.Message.(string); ok && msg != "" {
			return msg
		}
	}
	return http.StatusText(code)
}

func absoluteURL(base, ref string) string {
	if ref == "" || strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://") {
		return ref
	}
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(ref, "/")
}
