// Package localtable serves the Local Table marketing site and blog: page
// rendering, the contact and newsletter flows with email verification,
// sitemap and feed generation, and post authoring.
//
// Callers provide templ components through ViewFuncs; the package owns the
// handlers, middleware, storage and outbound notifications.
package localtable

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"

	"github.com/eringen/localtable/markdown"
	"github.com/eringen/localtable/notify"
)

// HomeData feeds the landing page.
type HomeData struct {
	Meta        PageMeta
	LatestPosts []BlogPost
	SiteURL     string
}

// BlogData feeds the blog listing.
type BlogData struct {
	Meta      PageMeta
	Posts     []BlogPost
	Tags      []string
	ActiveTag string
	Query     string
}

// PostData feeds a single post page.
type PostData struct {
	Meta    PageMeta
	Post    BlogPost
	Doc     markdown.Document
	Related []BlogPost
	SiteURL string
}

// AdminData feeds the admin dashboard.
type AdminData struct {
	Posts   []BlogPost
	Message string
	CSRF    string
}

// ViewFuncs holds the templ components the handlers render. Callers own
// every template.
type ViewFuncs struct {
	Home         func(d HomeData) templ.Component
	About        func(meta PageMeta) templ.Component
	HowItWorks   func(meta PageMeta) templ.Component
	BecomeAChef  func(meta PageMeta) templ.Component
	Contact      func(meta PageMeta) templ.Component
	Blog         func(d BlogData) templ.Component
	BlogPartial  func(d BlogData) templ.Component
	Post         func(d PostData) templ.Component
	Verification func(meta PageMeta, r VerificationResult) templ.Component

	AdminLogin     func(showError bool, csrfToken string) templ.Component
	AdminDashboard func(d AdminData) templ.Component
	AdminForm      func(post BlogPost, csrfToken string) templ.Component
	AdminImages    func(images []Image, csrfToken string) templ.Component

	NotFound    func() templ.Component
	ServerError func() templ.Component
}

// App wires together the store, cache, notification clients, handlers,
// middleware and templates.
type App struct {
	Config SiteConfig
	Echo   *echo.Echo
	Store  *Store
	Cache  *PostCache
	Views  ViewFuncs
	Logger *Logger
	Mailer notify.Mailer
	Sheets notify.SheetAppender

	loginLimiter *LoginLimiter
	formLimiter  *FormLimiter
	customRoutes []func(*App)
	now          func() time.Time
	ownsStore    bool
	initialized  bool
}

// New creates an App with the given configuration and view functions.
func New(cfg SiteConfig, views ViewFuncs, opts ...Option) *App {
	cfg.setDefaults()

	a := &App{
		Config: cfg,
		Echo:   echo.New(),
		Views:  views,
		now:    time.Now,
	}
	a.Echo.HideBanner = true
	a.Echo.HidePort = true

	for _, opt := range opts {
		opt(a)
	}
	if a.Logger == nil {
		a.Logger = NewLogger(defaultLogOutput, a.Config.LogLevel)
	}
	return a
}

// Init opens the store, constructs the notification clients, and registers
// middleware and routes. Start calls it when needed; tests call it directly
// and drive a.Echo with httptest.
func (a *App) Init(ctx context.Context) error {
	if a.initialized {
		return nil
	}
	if err := a.Config.Validate(); err != nil {
		return err
	}

	if a.Store == nil {
		store, err := NewStore(a.Config.DatabasePath)
		if err != nil {
			return fmt.Errorf("localtable: init store: %w", err)
		}
		a.Store = store
		a.ownsStore = true
	}
	a.Cache = NewPostCache(a.Store, a.Config.PostCacheTTL)

	if a.Mailer == nil {
		m, err := notify.NewResendMailer(a.Config.Mail.APIKey, a.Config.Mail.From)
		switch {
		case err == nil:
			a.Mailer = m
		case errors.Is(err, notify.ErrNotConfigured):
			a.Logger.Warn("mail not configured; contact form will refuse submissions")
		default:
			return err
		}
	}
	if a.Sheets == nil {
		s, err := notify.NewGoogleSheets(ctx, a.Config.Sheets.CredentialsFile, a.Config.Sheets.SpreadsheetID)
		switch {
		case err == nil:
			a.Sheets = s
		case errors.Is(err, notify.ErrNotConfigured):
			a.Logger.Debug("sheets mirror disabled")
		default:
			// Mirroring is best effort; the site still serves without it.
			a.Logger.ConfigError("sheets", err)
		}
	}

	a.loginLimiter = NewLoginLimiter(5, time.Minute)
	a.formLimiter = NewFormLimiter(a.Config.FormRateLimit, a.Config.FormRateWindow)

	a.setupMiddleware()
	a.setupRoutes()
	for _, fn := range a.customRoutes {
		fn(a)
	}
	a.initialized = true
	return nil
}

// Start initializes the app if needed and serves until the server stops.
func (a *App) Start(ctx context.Context) error {
	if err := a.Init(ctx); err != nil {
		return err
	}
	a.Logger.Info("listening", "addr", a.Config.Addr, "url", a.Config.URL)
	if err := a.Echo.Start(a.Config.Addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops the HTTP server gracefully.
func (a *App) Shutdown(ctx context.Context) error {
	return a.Echo.Shutdown(ctx)
}

func (a *App) setupRoutes() {
	e := a.Echo

	e.Static("/public", a.Config.StaticDir)
	e.GET("/favicon.svg", a.handleFavicon)
	e.GET("/robots.txt", a.handleRobots)
	e.GET("/sitemap.xml", a.handleSitemap)
	e.GET("/feed.xml", a.handleFeed)

	// Marketing pages
	e.GET("/", a.handleHome)
	e.GET("/about/", a.handlePage(a.Views.About, "About", "How Local Table connects neighbours with home cooks."))
	e.GET("/how-it-works/", a.handlePage(a.Views.HowItWorks, "How it works", "Order, pick up, and enjoy meals cooked in your neighbourhood."))
	e.GET("/become-a-chef/", a.handlePage(a.Views.BecomeAChef, "Become a chef", "Share your cooking with your community and earn from your kitchen."))
	e.GET("/contact/", a.handlePage(a.Views.Contact, "Contact", "Questions, partnerships, or chef applications."))
	e.GET(a.Config.VerifyPagePath+"/", a.handleVerificationPage)

	// Blog
	e.GET("/blog/", a.handleBlog)
	e.GET("/blog/:slug/", a.handlePost)

	// JSON API
	api := e.Group("/api")
	api.POST("/contact", a.handleContact)
	api.GET("/verify-contact", a.handleVerifyContact)
	api.POST("/newsletter", a.handleNewsletter)
	api.GET("/verify-newsletter", a.handleVerifyNewsletter)
	api.GET("/posts", a.handleAPIPosts)
	api.GET("/posts/:slug", a.handleAPIPost)

	// Admin
	e.GET("/admin/", a.handleAdmin)
	e.POST("/admin/login/", a.handleAdminLogin)
	e.POST("/admin/logout/", handleAdminLogout)
	e.GET("/admin/post/:slug/", a.handleAdminPost)
	e.POST("/admin/save/", a.handleAdminSave)
	e.DELETE("/admin/post/:slug/", a.handleAdminDelete)
	e.GET("/admin/images/", a.handleImageList)
	e.POST("/admin/images/upload/", a.handleImageUpload)
	e.DELETE("/admin/images/:filename/", a.handleImageDelete)
}

// Close releases the limiters and, when the app opened it, the store.
func (a *App) Close() error {
	if a.loginLimiter != nil {
		a.loginLimiter.Stop()
	}
	if a.formLimiter != nil {
		a.formLimiter.Stop()
	}
	if a.Store != nil && a.ownsStore {
		return a.Store.Close()
	}
	return nil
}
