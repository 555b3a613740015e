package markdown

import (
	"bytes"
	"context"
	"html"
	"io"
	"net/url"
	"strconv"
	"strings"

	"github.com/a-h/templ"
)

// EmptyPlaceholder is rendered in place of a post body with no blocks.
const EmptyPlaceholder = `<p class="post-empty">This post has no content yet.</p>`

// Markdown parses content and renders it as a templ component.
func Markdown(content string) templ.Component {
	return Body(Parse(content))
}

// Body renders a parsed document. Headings carry their ids so the table of
// contents and the scroll tracker can find them.
func Body(doc Document) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var buf bytes.Buffer
		RenderDocument(&buf, doc)
		_, err := w.Write(buf.Bytes())
		return err
	})
}

// TOC renders the heading list as nested anchor lists.
func TOC(headings []Heading) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var buf bytes.Buffer
		RenderTOC(&buf, headings)
		_, err := w.Write(buf.Bytes())
		return err
	})
}

// RenderDocument writes the HTML for doc to buf.
func RenderDocument(buf *bytes.Buffer, doc Document) {
	if doc.Empty() {
		buf.WriteString(EmptyPlaceholder)
		return
	}
	for _, b := range doc.Blocks {
		switch b.Kind {
		case KindHeading:
			tag := "h" + strconv.Itoa(b.Level)
			buf.WriteString("<" + tag + ` id="` + html.EscapeString(b.ID) + `" data-toc-heading>`)
			buf.WriteString(FormatInline(b.Text))
			buf.WriteString("</" + tag + ">")
		default:
			buf.WriteString("<p>")
			buf.WriteString(FormatInline(b.Text))
			buf.WriteString("</p>")
		}
	}
}

// RenderTOC writes a nested <ul> for headings. Levels deeper than the current
// open list nest one step at a time; a jump from h1 to h4 nests once.
func RenderTOC(buf *bytes.Buffer, headings []Heading) {
	if len(headings) == 0 {
		return
	}
	buf.WriteString(`<nav class="toc" aria-label="Table of contents">`)
	var stack []int
	for _, h := range headings {
		switch {
		case len(stack) == 0:
			buf.WriteString("<ul>")
			stack = append(stack, h.Level)
		case h.Level > stack[len(stack)-1]:
			buf.WriteString("<ul>")
			stack = append(stack, h.Level)
		default:
			for len(stack) > 1 && h.Level < stack[len(stack)-1] {
				buf.WriteString("</li></ul>")
				stack = stack[:len(stack)-1]
			}
			if h.Level > stack[len(stack)-1] {
				buf.WriteString("<ul>")
				stack = append(stack, h.Level)
			} else {
				buf.WriteString("</li>")
			}
		}
		id := html.EscapeString(h.ID)
		buf.WriteString(`<li class="toc-level-` + strconv.Itoa(h.Level) + `"><a href="#` + id + `" data-heading-id="` + id + `">`)
		buf.WriteString(html.EscapeString(SpansText(Tokenize(h.Text))))
		buf.WriteString("</a>")
	}
	for range stack {
		buf.WriteString("</li></ul>")
	}
	buf.WriteString("</nav>")
}

// FormatInline renders paragraph or heading text with inline formatting.
func FormatInline(s string) string {
	var buf strings.Builder
	writeSpans(&buf, Tokenize(s))
	return buf.String()
}

func writeSpans(buf *strings.Builder, spans []Span) {
	for _, s := range spans {
		switch s.Kind {
		case SpanText:
			buf.WriteString(strings.ReplaceAll(html.EscapeString(s.Text), "\n", "<br/>"))
		case SpanCode:
			buf.WriteString("<code>" + html.EscapeString(s.Text) + "</code>")
		case SpanBold:
			buf.WriteString("<strong>")
			writeSpans(buf, s.Children)
			buf.WriteString("</strong>")
		case SpanItalic:
			buf.WriteString("<em>")
			writeSpans(buf, s.Children)
			buf.WriteString("</em>")
		case SpanLink:
			href := SafeURL(s.URL)
			if href == "" {
				writeSpans(buf, s.Children)
				continue
			}
			attrs := `class="underline decoration-2 underline-offset-4"`
			if isExternal(s.URL) {
				attrs += ` target="_blank" rel="noopener noreferrer"`
			}
			buf.WriteString(`<a href="` + href + `" ` + attrs + `>`)
			writeSpans(buf, s.Children)
			buf.WriteString("</a>")
		}
	}
}

func isExternal(raw string) bool {
	u, err := url.Parse(strings.TrimSpace(raw))
	return err == nil && (u.Scheme == "http" || u.Scheme == "https")
}

// SafeURL validates and sanitizes a URL for use in HTML attributes.
// It returns "" for anything but relative, fragment, http(s), mailto and tel URLs.
func SafeURL(raw string) string {
	val := strings.TrimSpace(html.UnescapeString(raw))
	if val == "" {
		return ""
	}
	if strings.HasPrefix(val, "/") || strings.HasPrefix(val, "#") {
		return html.EscapeString(val)
	}
	parsed, err := url.Parse(val)
	if err != nil || parsed.Scheme == "" {
		return ""
	}
	switch strings.ToLower(parsed.Scheme) {
	case "http", "https", "mailto", "tel":
		return html.EscapeString(val)
	default:
		return ""
	}
}
