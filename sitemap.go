package localtable

import (
	"bytes"
	"encoding/xml"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

const (
	// MaxSitemapPosts caps how many posts the sitemap lists.
	MaxSitemapPosts = 200
	// newsWindow is how long a post stays eligible for a news entry.
	newsWindow = 48 * time.Hour
)

// marketingPages are the fixed site routes listed ahead of posts.
var marketingPages = []struct {
	Path       string
	ChangeFreq string
	Priority   string
}{
	{"", "weekly", "1.0"},
	{"about", "monthly", "0.8"},
	{"how-it-works", "monthly", "0.8"},
	{"become-a-chef", "monthly", "0.8"},
	{"contact", "monthly", "0.6"},
	{"blog", "daily", "0.9"},
}

type sitemapURLSet struct {
	XMLName    xml.Name     `xml:"urlset"`
	XMLNS      string       `xml:"xmlns,attr"`
	XMLNSImage string       `xml:"xmlns:image,attr"`
	XMLNSNews  string       `xml:"xmlns:news,attr"`
	URLs       []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc        string        `xml:"loc"`
	LastMod    string        `xml:"lastmod,omitempty"`
	ChangeFreq string        `xml:"changefreq,omitempty"`
	Priority   string        `xml:"priority,omitempty"`
	Image      *sitemapImage `xml:"image:image,omitempty"`
	News       *sitemapNews  `xml:"news:news,omitempty"`
}

type sitemapImage struct {
	Loc   string `xml:"image:loc"`
	Title string `xml:"image:title,omitempty"`
}

type sitemapNews struct {
	Publication     sitemapPublication `xml:"news:publication"`
	PublicationDate string             `xml:"news:publication_date"`
	Title           string             `xml:"news:title"`
}

type sitemapPublication struct {
	Name     string `xml:"news:name"`
	Language string `xml:"news:language"`
}

// BuildSitemap renders the sitemap for the marketing routes and posts.
// Posts beyond MaxSitemapPosts are dropped; posts created within two days of
// now also get a news entry.
func BuildSitemap(cfg SiteConfig, posts []BlogPost, now time.Time) ([]byte, error) {
	if len(posts) > MaxSitemapPosts {
		posts = posts[:MaxSitemapPosts]
	}
	today := now.UTC().Format(time.DateOnly)
	urls := make([]sitemapURL, 0, len(marketingPages)+len(posts))
	for _, p := range marketingPages {
		var loc string
		if p.Path == "" {
			loc = BuildURL(cfg.URL)
		} else {
			loc = BuildURL(cfg.URL, p.Path)
		}
		urls = append(urls, sitemapURL{
			Loc:        loc,
			LastMod:    today,
			ChangeFreq: p.ChangeFreq,
			Priority:   p.Priority,
		})
	}
	for _, p := range posts {
		u := sitemapURL{
			Loc:        BuildURL(cfg.URL, "blog", p.Slug),
			LastMod:    lastModified(p).UTC().Format(time.RFC3339),
			ChangeFreq: "weekly",
			Priority:   "0.7",
		}
		if p.ImageURL != "" {
			u.Image = &sitemapImage{Loc: absoluteURL(cfg.URL, p.ImageURL), Title: p.Title}
		}
		if !p.CreatedAt.IsZero() && now.Sub(p.CreatedAt) <= newsWindow {
			u.News = &sitemapNews{
				Publication:     sitemapPublication{Name: cfg.Name, Language: "en"},
				PublicationDate: p.CreatedAt.UTC().Format(time.RFC3339),
				Title:           p.Title,
			}
		}
		urls = append(urls, u)
	}

	var buf bytes.Buffer
	buf.WriteString(xml.Header)
	enc := xml.NewEncoder(&buf)
	enc.Indent("", "  ")
	err := enc.Encode(sitemapURLSet{
		XMLNS:      "http://www.sitemaps.org/schemas/sitemap/0.9",
		XMLNSImage: "http://www.google.com/schemas/sitemap-image/1.1",
		XMLNSNews:  "http://www.google.com/schemas/sitemap-news/0.9",
		URLs:       urls,
	})
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func lastModified(p BlogPost) time.Time {
	if p.UpdatedAt.After(p.CreatedAt) {
		return p.UpdatedAt
	}
	return p.CreatedAt
}

func (a *App) renderSitemap(c echo.Context, posts []BlogPost) error {
	body, err := BuildSitemap(a.Config, posts, a.now())
	if err != nil {
		return err
	}
	return c.Blob(http.StatusOK, "application/xml; charset=utf-8", body)
}
