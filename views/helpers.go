package views

import (
	"net/url"
	"strings"
	"time"

	"github.com/a-h/templ"
	"github.com/dustin/go-humanize"

	"github.com/eringen/localtable"
)

const cardTags = 3

var navLinks = []struct{ href, label string }{
	{"/how-it-works/", "How it works"},
	{"/become-a-chef/", "Become a chef"},
	{"/about/", "About"},
	{"/blog/", "Blog"},
	{"/contact/", "Contact"},
}

var testimonials = []struct{ quote, name, role string }{
	{"I hadn't had a proper curry since moving here. Now it's Thursday night, every week.", "Priya", "Regular in Riverside"},
	{"Cooking for my street pays for my groceries and then some.", "Marco", "Home chef since 2024"},
	{"Pick-up is two doors down and the food is still warm.", "Hannah", "Weeknight subscriber"},
}

var steps = []struct{ title, body string }{
	{"Browse nearby kitchens", "See what home cooks around you are making this week, with ingredients and allergens listed up front."},
	{"Order ahead", "Reserve a portion before the cut-off. Chefs cook to order, so nothing goes to waste."},
	{"Pick up and enjoy", "Collect from the chef's door or a shared pick-up point at the time you chose."},
}

var values = []string{
	"Ingredients from local growers wherever we can",
	"Fair pay for every chef",
	"Less packaging and less food waste",
}

var perks = []string{"Set your own menu and schedule", "Food-safety training included", "Weekly payouts"}

// TagClass returns CSS classes for a tag pill, with active variant.
func TagClass(active bool) string {
	if active {
		return "tag tag-active"
	}
	return "tag"
}

// VisibleTags returns at most max tags and how many were left out.
func VisibleTags(tags []string, max int) ([]string, int) {
	if max < 0 || len(tags) <= max {
		return tags, 0
	}
	return tags[:max], len(tags) - max
}

// PostDate formats a post date for listings: "March 3, 2026".
func PostDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("January 2, 2006")
}

// RelativeDate reads "3 days ago" for recent edits.
func RelativeDate(t, now time.Time) string {
	if t.IsZero() {
		return ""
	}
	return humanize.RelTime(t, now, "ago", "from now")
}

// FileSize renders a byte count as "312 kB".
func FileSize(n int) string {
	if n < 0 {
		n = 0
	}
	return humanize.Bytes(uint64(n))
}

func tagURL(tag string) string {
	return "/blog/?tag=" + url.QueryEscape(tag)
}

// jsonLD emits a structured-data script. The payload is escaped so it cannot
// close its own script element.
func jsonLD(payload string) templ.Component {
	return templ.Raw(`<script type="application/ld+json">` + strings.ReplaceAll(payload, "</", `<\/`) + `</script>`)
}

func verificationClass(r localtable.VerificationResult) string {
	if r.Success || r.AlreadyVerified {
		return "ok"
	}
	return "error"
}

func postStatus(p localtable.BlogPost) string {
	if p.Published {
		return "Published"
	}
	return "Draft"
}

func adminFormTitle(p localtable.BlogPost) string {
	if p.Slug == "" {
		return "New post"
	}
	return "Edit " + p.Title
}
