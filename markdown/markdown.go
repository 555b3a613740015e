// Package markdown turns stored post bodies into structured content: an ordered
// sequence of heading and paragraph blocks plus the heading list that drives the
// table of contents. Rendering to HTML lives in render.go.
package markdown

import (
	"html"
	"regexp"
	"strconv"
	"strings"
)

// MaxHeadingLevel is the deepest heading level. Longer # runs are clamped to it.
const MaxHeadingLevel = 6

// HeadingIDPrefix prefixes the sequential heading ids (heading-0, heading-1, ...).
const HeadingIDPrefix = "heading-"

// BlockKind tags a Block as a heading or a paragraph.
type BlockKind int

const (
	KindParagraph BlockKind = iota
	KindHeading
)

func (k BlockKind) String() string {
	if k == KindHeading {
		return "heading"
	}
	return "paragraph"
}

// MarshalText lets BlockKind serialize as "heading" / "paragraph" in JSON.
func (k BlockKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Heading is a table-of-contents entry.
type Heading struct {
	ID    string `json:"id"`
	Text  string `json:"text"`
	Level int    `json:"level"`
}

// Block is one unit of parsed content. ID and Level are only set for headings.
type Block struct {
	Kind  BlockKind `json:"kind"`
	ID    string    `json:"id,omitempty"`
	Level int       `json:"level,omitempty"`
	Text  string    `json:"text"`
}

// Document is the result of parsing a post body.
type Document struct {
	Blocks   []Block   `json:"blocks"`
	Headings []Heading `json:"headings"`
}

// Empty reports whether the document has nothing to render.
func (d Document) Empty() bool {
	return len(d.Blocks) == 0
}

// Wrapper remnants the rich-text editor leaves around a whole document.
var (
	rePreOpen       = regexp.MustCompile(`^\s*<pre>\s*<code[^>]*>`)
	reCodeClose     = regexp.MustCompile(`</code>\s*</pre>\s*$`)
	reEmptyParaHead = regexp.MustCompile(`^(?:\s*<p>\s*(?:<br\s*/?>)?\s*</p>)+`)
	reEmptyParaTail = regexp.MustCompile(`(?:<p>\s*(?:<br\s*/?>)?\s*</p>\s*)+$`)
)

// Clean strips the editor's document-level wrappers. Anything beyond the
// known literal patterns is left as-is.
func Clean(raw string) string {
	s := reEmptyParaHead.ReplaceAllString(raw, "")
	s = reEmptyParaTail.ReplaceAllString(s, "")
	wrapped := false
	if loc := rePreOpen.FindStringIndex(s); loc != nil {
		s = s[loc[1]:]
		wrapped = true
	}
	if loc := reCodeClose.FindStringIndex(s); loc != nil {
		s = s[:loc[0]]
		wrapped = true
	}
	if wrapped {
		// content inside <code> arrives entity-escaped
		s = html.UnescapeString(s)
	}
	return s
}

// Parse converts a raw post body into blocks and headings. It is a pure
// function of its input and never fails: malformed input yields a partial or
// empty Document.
func Parse(raw string) Document {
	doc := Document{Blocks: []Block{}, Headings: []Heading{}}
	text := strings.ReplaceAll(Clean(raw), "\r\n", "\n")

	var para []string
	flush := func() {
		if len(para) == 0 {
			return
		}
		body := strings.TrimSpace(strings.Join(para, "\n"))
		para = para[:0]
		if body == "" {
			return
		}
		doc.Blocks = append(doc.Blocks, Block{Kind: KindParagraph, Text: body})
	}

	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			flush()
			continue
		}
		if level, title, ok := headingLine(trimmed); ok {
			flush()
			id := HeadingIDPrefix + strconv.Itoa(len(doc.Headings))
			doc.Blocks = append(doc.Blocks, Block{Kind: KindHeading, ID: id, Level: level, Text: title})
			doc.Headings = append(doc.Headings, Heading{ID: id, Text: title, Level: level})
			continue
		}
		para = append(para, line)
	}
	flush()
	return doc
}

// headingLine recognises "#... text". The # run must be followed by a space
// and some text; a bare run ("##") stays paragraph text.
func headingLine(trimmed string) (level int, title string, ok bool) {
	n := 0
	for n < len(trimmed) && trimmed[n] == '#' {
		n++
	}
	if n == 0 || n == len(trimmed) {
		return 0, "", false
	}
	rest := trimmed[n:]
	if rest[0] != ' ' && rest[0] != '\t' {
		return 0, "", false
	}
	title = strings.TrimSpace(rest)
	if title == "" {
		return 0, "", false
	}
	return min(n, MaxHeadingLevel), title, true
}

// PlainText returns the reading content of the document, headings and
// paragraphs separated by blank lines.
func (d Document) PlainText() string {
	parts := make([]string, 0, len(d.Blocks))
	for _, b := range d.Blocks {
		parts = append(parts, b.Text)
	}
	return strings.Join(parts, "\n\n")
}
