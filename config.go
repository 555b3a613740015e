package localtable

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/eringen/localtable/notify"
)

// EnvPrefix marks environment overrides, e.g. LOCALTABLE_MAIL_API_KEY -> mail.api_key.
const EnvPrefix = "LOCALTABLE_"

// SiteConfig holds all configuration for the site.
type SiteConfig struct {
	Name        string `koanf:"name"`        // Site name (default "Local Table")
	URL         string `koanf:"url"`         // Canonical URL (default "http://localhost:3000")
	Description string `koanf:"description"` // Site description for RSS and meta tags
	Author      string `koanf:"author"`      // Default author for JSON-LD

	Addr         string `koanf:"addr"`          // Listen address (default ":3000")
	DatabasePath string `koanf:"database_path"` // SQLite path (default "data/localtable.db")
	StaticDir    string `koanf:"static_dir"`    // User-owned static assets (default "public")

	AdminPassword string `koanf:"admin_password"` // Required: admin login password
	SessionSecret string `koanf:"session_secret"` // Required: session encryption secret
	CookieSecure  bool   `koanf:"cookie_secure"`  // Set true for HTTPS

	PostCacheTTL time.Duration `koanf:"post_cache_ttl"` // Post cache TTL (default 5m)

	// VerificationTTL is how long contact and newsletter links stay valid.
	VerificationTTL time.Duration `koanf:"verification_ttl"`
	// VerifyPagePath is where verification links redirect to.
	VerifyPagePath string `koanf:"verify_page_path"`

	// FormRateLimit caps form submissions per IP per FormRateWindow.
	FormRateLimit  int           `koanf:"form_rate_limit"`
	FormRateWindow time.Duration `koanf:"form_rate_window"`

	LogLevel string `koanf:"log_level"`

	Mail   MailConfig   `koanf:"mail"`
	Sheets SheetsConfig `koanf:"sheets"`
}

// MailConfig configures Resend delivery.
type MailConfig struct {
	APIKey    string `koanf:"api_key"`
	From      string `koanf:"from"`
	TeamEmail string `koanf:"team_email"` // Receives verified contact submissions
}

// SheetsConfig configures the Google Sheets mirror.
type SheetsConfig struct {
	CredentialsFile string `koanf:"credentials_file"`
	SpreadsheetID   string `koanf:"spreadsheet_id"`
	ContactRange    string `koanf:"contact_range"`
	NewsletterRange string `koanf:"newsletter_range"`
}

func (c *SiteConfig) setDefaults() {
	if c.Name == "" {
		c.Name = "Local Table"
	}
	if c.URL == "" {
		c.URL = "http://localhost:3000"
	}
	c.URL = strings.TrimRight(c.URL, "/")
	if c.Addr == "" {
		c.Addr = ":3000"
	}
	if c.DatabasePath == "" {
		c.DatabasePath = "data/localtable.db"
	}
	if c.StaticDir == "" {
		c.StaticDir = "public"
	}
	if c.PostCacheTTL == 0 {
		c.PostCacheTTL = 5 * time.Minute
	}
	if c.VerificationTTL == 0 {
		c.VerificationTTL = 24 * time.Hour
	}
	c.VerifyPagePath = strings.Trim(c.VerifyPagePath, "/")
	if c.VerifyPagePath == "" {
		c.VerifyPagePath = "verification"
	}
	c.VerifyPagePath = "/" + c.VerifyPagePath
	if c.FormRateLimit == 0 {
		c.FormRateLimit = 10
	}
	if c.FormRateWindow == 0 {
		c.FormRateWindow = time.Hour
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.Sheets.ContactRange == "" {
		c.Sheets.ContactRange = "Contacts!A:K"
	}
	if c.Sheets.NewsletterRange == "" {
		c.Sheets.NewsletterRange = "Newsletter!A:C"
	}
}

// Validate reports settings the server cannot start without.
func (c *SiteConfig) Validate() error {
	if c.AdminPassword == "" {
		return fmt.Errorf("localtable: admin_password is required")
	}
	if c.SessionSecret == "" {
		return fmt.Errorf("localtable: session_secret is required")
	}
	if c.VerificationTTL < 0 {
		return fmt.Errorf("localtable: verification_ttl must be positive")
	}
	return nil
}

// LoadConfig reads the YAML file at path, if it exists, then overlays
// LOCALTABLE_* environment variables. Nested keys use a double underscore:
// LOCALTABLE_MAIL__API_KEY sets mail.api_key.
func LoadConfig(path string) (SiteConfig, error) {
	k := koanf.New(".")

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
				return SiteConfig{}, fmt.Errorf("reading config %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return SiteConfig{}, fmt.Errorf("accessing config %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return SiteConfig{}, fmt.Errorf("loading env overrides: %w", err)
	}

	var cfg SiteConfig
	if err := k.Unmarshal("", &cfg); err != nil {
		return SiteConfig{}, fmt.Errorf("unmarshalling config: %w", err)
	}
	cfg.setDefaults()
	return cfg, nil
}

func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(s, "__", ".")
}

// Option configures additional App behavior.
type Option func(*App)

// WithCustomRoutes registers additional routes on the Echo instance.
// The callback runs after the built-in routes are registered.
func WithCustomRoutes(fn func(*App)) Option {
	return func(a *App) {
		a.customRoutes = append(a.customRoutes, fn)
	}
}

// WithStaticDir sets the directory for user-owned static assets.
func WithStaticDir(dir string) Option {
	return func(a *App) {
		a.Config.StaticDir = dir
	}
}

// WithLogger replaces the default stderr logger.
func WithLogger(l *Logger) Option {
	return func(a *App) {
		a.Logger = l
	}
}

// WithMailer injects the email client. Without one, Init builds a Resend
// client from Config.Mail when an API key is present.
func WithMailer(m notify.Mailer) Option {
	return func(a *App) {
		a.Mailer = m
	}
}

// WithSheets injects the spreadsheet mirror.
func WithSheets(s notify.SheetAppender) Option {
	return func(a *App) {
		a.Sheets = s
	}
}

// WithStore injects an already-open store.
func WithStore(s *Store) Option {
	return func(a *App) {
		a.Store = s
	}
}

// WithClock overrides the time source used for expiry and sitemap windows.
func WithClock(now func() time.Time) Option {
	return func(a *App) {
		a.now = now
	}
}
