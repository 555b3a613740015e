package markdown

import (
	"bytes"

	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// MaxInlineDepth bounds emphasis/link nesting. Deeper spans collapse to text.
const MaxInlineDepth = 3

// SpanKind tags an inline span.
type SpanKind int

const (
	SpanText SpanKind = iota
	SpanCode
	SpanLink
	SpanBold
	SpanItalic
)

var spanKindNames = [...]string{"text", "code", "link", "bold", "italic"}

func (k SpanKind) String() string {
	if int(k) < len(spanKindNames) {
		return spanKindNames[k]
	}
	return "text"
}

// MarshalText serializes a SpanKind by name.
func (k SpanKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Span is an inline run of paragraph text. Text is set for text and code
// spans, URL for links; bold, italic and link spans carry Children.
type Span struct {
	Kind     SpanKind `json:"kind"`
	Text     string   `json:"text,omitempty"`
	URL      string   `json:"url,omitempty"`
	Children []Span   `json:"children,omitempty"`
}

// inlineParser only knows paragraphs, so list markers, quotes and the like
// in a paragraph stay literal text. Inline precedence follows CommonMark:
// code spans bind first, then links, then emphasis.
var inlineParser = parser.NewParser(
	parser.WithBlockParsers(util.Prioritized(parser.NewParagraphParser(), 1000)),
	parser.WithInlineParsers(parser.DefaultInlineParsers()...),
)

// Tokenize splits paragraph text into inline spans in source order.
func Tokenize(s string) []Span {
	if s == "" {
		return nil
	}
	src := []byte(s)
	doc := inlineParser.Parse(text.NewReader(src))
	t := tokenizer{src: src}
	var out []Span
	for p := doc.FirstChild(); p != nil; p = p.NextSibling() {
		if len(out) > 0 {
			out = append(out, Span{Kind: SpanText, Text: "\n\n"})
		}
		out = append(out, t.children(p, 0)...)
	}
	return mergeText(out)
}

type tokenizer struct {
	src []byte
}

func (t tokenizer) children(n ast.Node, depth int) []Span {
	var out []Span
	for c := n.FirstChild(); c != nil; c = c.NextSibling() {
		out = append(out, t.inline(c, depth)...)
	}
	return mergeText(out)
}

func (t tokenizer) inline(n ast.Node, depth int) []Span {
	switch v := n.(type) {
	case *ast.Text:
		s := t.text(v)
		if v.SoftLineBreak() || v.HardLineBreak() {
			s += "\n"
		}
		return []Span{{Kind: SpanText, Text: s}}
	case *ast.String:
		return []Span{{Kind: SpanText, Text: string(v.Value)}}
	case *ast.CodeSpan:
		return []Span{{Kind: SpanCode, Text: t.plain(v)}}
	case *ast.AutoLink:
		return []Span{{
			Kind:     SpanLink,
			URL:      string(v.URL(t.src)),
			Children: []Span{{Kind: SpanText, Text: string(v.Label(t.src))}},
		}}
	case *ast.Link:
		if depth >= MaxInlineDepth {
			return []Span{{Kind: SpanText, Text: t.plain(v)}}
		}
		return []Span{{Kind: SpanLink, URL: string(v.Destination), Children: t.children(v, depth+1)}}
	case *ast.Emphasis:
		if depth >= MaxInlineDepth {
			return []Span{{Kind: SpanText, Text: t.plain(v)}}
		}
		kind := SpanItalic
		if v.Level >= 2 {
			kind = SpanBold
		}
		return []Span{{Kind: kind, Children: t.children(v, depth+1)}}
	case *ast.RawHTML:
		var buf bytes.Buffer
		for i := 0; i < v.Segments.Len(); i++ {
			seg := v.Segments.At(i)
			buf.Write(seg.Value(t.src))
		}
		return []Span{{Kind: SpanText, Text: buf.String()}}
	case *ast.Image:
		return []Span{{Kind: SpanText, Text: t.plain(v)}}
	default:
		return t.children(n, depth)
	}
}

// text decodes backslash escapes and entity references in a text segment.
func (t tokenizer) text(v *ast.Text) string {
	b := util.UnescapePunctuations(v.Segment.Value(t.src))
	return string(util.ResolveEntityNames(util.ResolveNumericReferences(b)))
}

// plain flattens a subtree to its text content.
func (t tokenizer) plain(n ast.Node) string {
	var buf bytes.Buffer
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch v := c.(type) {
		case *ast.Text:
			buf.WriteString(t.text(v))
			if v.SoftLineBreak() {
				buf.WriteByte(' ')
			}
		case *ast.String:
			buf.Write(v.Value)
		}
		return ast.WalkContinue, nil
	})
	return buf.String()
}

func mergeText(spans []Span) []Span {
	out := spans[:0]
	for _, s := range spans {
		if s.Kind == SpanText && s.Text == "" {
			continue
		}
		if n := len(out); n > 0 && s.Kind == SpanText && out[n-1].Kind == SpanText {
			out[n-1].Text += s.Text
			continue
		}
		out = append(out, s)
	}
	return out
}

// SpansText flattens spans back to their visible text.
func SpansText(spans []Span) string {
	var buf bytes.Buffer
	for _, s := range spans {
		switch s.Kind {
		case SpanText, SpanCode:
			buf.WriteString(s.Text)
		default:
			buf.WriteString(SpansText(s.Children))
		}
	}
	return buf.String()
}
