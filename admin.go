package localtable

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
)

const excerptLength = 160

func (a *App) handleAdmin(c echo.Context) error {
	if !IsAdmin(c) {
		return Render(c, a.Views.AdminLogin(false, CsrfToken(c)))
	}
	return a.renderAdminDashboard(c, c.QueryParam("msg"))
}

func (a *App) handleAdminPost(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	slug := c.Param("slug")
	if slug == "new" {
		return Render(c, a.Views.AdminForm(BlogPost{Published: true, AuthorName: a.Config.Author}, CsrfToken(c)))
	}
	post, err := a.Store.GetPostAny(c.Request().Context(), slug)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return c.NoContent(http.StatusNotFound)
		}
		return err
	}
	return Render(c, a.Views.AdminForm(post, CsrfToken(c)))
}

func (a *App) handleAdminLogin(c echo.Context) error {
	ip := c.RealIP()
	if !a.loginLimiter.Check(ip) {
		return c.String(http.StatusTooManyRequests, "Too many login attempts. Try again later.")
	}
	pass := c.FormValue("password")
	if subtle.ConstantTimeCompare([]byte(pass), []byte(a.Config.AdminPassword)) == 1 {
		if err := setAdminSession(c); err != nil {
			return err
		}
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	a.loginLimiter.Record(ip)
	a.Logger.Warn("admin login failed", "ip", ip)
	return Render(c, a.Views.AdminLogin(true, CsrfToken(c)))
}

func handleAdminLogout(c echo.Context) error {
	if err := clearAdminSession(c); err != nil {
		return err
	}
	return c.Redirect(http.StatusSeeOther, "/admin/")
}

func adminRedirect(c echo.Context, msg string) error {
	return c.Redirect(http.StatusSeeOther, "/admin/?msg="+url.QueryEscape(msg))
}

func (a *App) handleAdminSave(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	if err := c.Request().ParseForm(); err != nil {
		return err
	}
	title := strings.TrimSpace(c.FormValue("title"))
	slug := Slugify(c.FormValue("slug"))
	if slug == "" {
		slug = Slugify(title)
	}
	if slug == "" {
		return adminRedirect(c, "Slug is required. Add a title or slug.")
	}
	if title == "" {
		return adminRedirect(c, "Title is required.")
	}

	var created time.Time
	if date := strings.TrimSpace(c.FormValue("date")); date != "" {
		d, err := time.Parse(time.DateOnly, date)
		if err != nil {
			return adminRedirect(c, "Invalid date format. Use YYYY-MM-DD.")
		}
		created = d
	}

	content := c.FormValue("content")
	excerpt := strings.TrimSpace(c.FormValue("excerpt"))
	if excerpt == "" {
		excerpt = ExcerptFrom(content, excerptLength)
	}
	imageURL := strings.TrimSpace(c.FormValue("image_url"))
	if imageURL != "" && !strings.HasPrefix(imageURL, "/") && !strings.HasPrefix(imageURL, "https://") {
		return adminRedirect(c, "Image URL must be a site path or https link.")
	}

	ctx := c.Request().Context()
	post := BlogPost{
		Slug:       slug,
		Title:      title,
		Content:    content,
		Excerpt:    excerpt,
		AuthorName: strings.TrimSpace(c.FormValue("author")),
		Tags:       FilterEmpty(strings.Split(c.FormValue("tags"), ",")),
		ImageURL:   imageURL,
		Published:  c.FormValue("published") != "",
		CreatedAt:  created,
		UpdatedAt:  a.now().UTC(),
	}
	if existing, err := a.Store.GetPostAny(ctx, slug); err == nil && created.IsZero() {
		post.CreatedAt = existing.CreatedAt
	}
	if post.CreatedAt.IsZero() {
		post.CreatedAt = post.UpdatedAt
	}
	saved, err := a.Store.SavePost(ctx, post)
	if err != nil {
		return err
	}
	a.Cache.Invalidate()
	a.Logger.Saved("post", saved.Slug)
	return a.renderAdminDashboard(c, "saved")
}

func (a *App) handleAdminDelete(c echo.Context) error {
	if !IsAdmin(c) {
		return c.Redirect(http.StatusSeeOther, "/admin/")
	}
	slug := c.Param("slug")
	if err := a.Store.DeletePost(c.Request().Context(), slug); err != nil {
		return err
	}
	a.Cache.Invalidate()
	a.Logger.Info("deleted", "kind", "post", "id", slug)
	return a.renderAdminDashboard(c, "deleted")
}

func (a *App) renderAdminDashboard(c echo.Context, msg string) error {
	posts, err := a.Store.ListAllPosts(c.Request().Context())
	if err != nil {
		return err
	}
	return Render(c, a.Views.AdminDashboard(AdminData{Posts: posts, Message: msg, CSRF: CsrfToken(c)}))
}
