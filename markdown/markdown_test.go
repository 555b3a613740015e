package markdown

import (
	"bytes"
	"reflect"
	"strings"
	"testing"
)

func TestParseHeadingsAndParagraphs(t *testing.T) {
	doc := Parse("# A\ntext1\n\n## B\ntext2")

	wantHeadings := []Heading{
		{ID: "heading-0", Text: "A", Level: 1},
		{ID: "heading-1", Text: "B", Level: 2},
	}
	if !reflect.DeepEqual(doc.Headings, wantHeadings) {
		t.Errorf("Headings = %+v, want %+v", doc.Headings, wantHeadings)
	}

	wantBlocks := []Block{
		{Kind: KindHeading, ID: "heading-0", Level: 1, Text: "A"},
		{Kind: KindParagraph, Text: "text1"},
		{Kind: KindHeading, ID: "heading-1", Level: 2, Text: "B"},
		{Kind: KindParagraph, Text: "text2"},
	}
	if !reflect.DeepEqual(doc.Blocks, wantBlocks) {
		t.Errorf("Blocks = %+v, want %+v", doc.Blocks, wantBlocks)
	}
}

func TestParseWithoutHeadings(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"", nil},
		{"   \n\n  ", nil},
		{"hello world", []string{"hello world"}},
		{"  padded  ", []string{"padded"}},
		{"line one\nline two", []string{"line one\nline two"}},
		{"p1\n\np2\n\n\np3", []string{"p1", "p2", "p3"}},
		{"#hashtag is not a heading", []string{"#hashtag is not a heading"}},
	}
	for _, tt := range tests {
		doc := Parse(tt.input)
		if len(doc.Headings) != 0 {
			t.Errorf("Parse(%q) headings = %v, want none", tt.input, doc.Headings)
		}
		var got []string
		for _, b := range doc.Blocks {
			if b.Kind != KindParagraph {
				t.Errorf("Parse(%q) produced %v block", tt.input, b.Kind)
			}
			got = append(got, b.Text)
		}
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("Parse(%q) paragraphs = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestParseHeadingLevels(t *testing.T) {
	tests := []struct {
		input string
		level int
		text  string
	}{
		{"# One", 1, "One"},
		{"### Three", 3, "Three"},
		{"###### Six", 6, "Six"},
		{"######## Eight clamps", 6, "Eight clamps"},
		{"   ## Indented", 2, "Indented"},
		{"#\tTabbed", 1, "Tabbed"},
	}
	for _, tt := range tests {
		doc := Parse(tt.input)
		if len(doc.Headings) != 1 {
			t.Fatalf("Parse(%q) headings = %v, want exactly one", tt.input, doc.Headings)
		}
		h := doc.Headings[0]
		if h.Level != tt.level || h.Text != tt.text {
			t.Errorf("Parse(%q) = level %d text %q, want level %d text %q", tt.input, h.Level, h.Text, tt.level, tt.text)
		}
	}
}

func TestParseBareHashRunIsText(t *testing.T) {
	for _, input := range []string{"#", "##", "### ", "#\t"} {
		doc := Parse(input)
		if len(doc.Headings) != 0 {
			t.Errorf("Parse(%q) headings = %+v, want none", input, doc.Headings)
		}
		if len(doc.Blocks) != 1 || doc.Blocks[0].Kind != KindParagraph {
			t.Errorf("Parse(%q) blocks = %+v, want one paragraph", input, doc.Blocks)
		}
	}

	doc := Parse("# Title\n##\nbody")
	if len(doc.Headings) != 1 || doc.Headings[0].Text != "Title" {
		t.Fatalf("Headings = %+v, want only Title", doc.Headings)
	}
	var buf bytes.Buffer
	RenderTOC(&buf, doc.Headings)
	if strings.Count(buf.String(), "<a ") != 1 {
		t.Errorf("TOC = %s, want a single entry", buf.String())
	}
}

func TestParseHeadingFlushesParagraph(t *testing.T) {
	doc := Parse("intro line\n## Section\nbody")
	if len(doc.Blocks) != 3 {
		t.Fatalf("Blocks = %+v, want 3", doc.Blocks)
	}
	if doc.Blocks[0].Text != "intro line" || doc.Blocks[1].Kind != KindHeading || doc.Blocks[2].Text != "body" {
		t.Errorf("unexpected blocks: %+v", doc.Blocks)
	}
}

func TestParseCRLF(t *testing.T) {
	doc := Parse("# Title\r\n\r\nfirst\r\nsecond\r\n")
	if len(doc.Headings) != 1 || doc.Headings[0].Text != "Title" {
		t.Fatalf("Headings = %+v", doc.Headings)
	}
	if len(doc.Blocks) != 2 || doc.Blocks[1].Text != "first\nsecond" {
		t.Errorf("Blocks = %+v", doc.Blocks)
	}
}

func TestCleanEditorWrappers(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"<pre><code># Title\n\nA &amp; B</code></pre>", "# Title\n\nA & B"},
		{"<pre><code class=\"language-markdown\">body</code></pre>\n", "body"},
		{"<p></p># Title", "# Title"},
		{"<p><br></p><p><br/></p>text", "text"},
		{"text<p></p>", "text"},
		{"keep <p></p> inside", "keep <p></p> inside"},
		{"no wrappers &amp; entities", "no wrappers &amp; entities"},
	}
	for _, tt := range tests {
		if got := Clean(tt.input); got != tt.expected {
			t.Errorf("Clean(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestParseWrappedDocument(t *testing.T) {
	doc := Parse("<pre><code># Menu\n\nFresh &lt;greens&gt; today</code></pre>")
	if len(doc.Headings) != 1 || doc.Headings[0].Text != "Menu" {
		t.Fatalf("Headings = %+v", doc.Headings)
	}
	if len(doc.Blocks) != 2 || doc.Blocks[1].Text != "Fresh <greens> today" {
		t.Errorf("Blocks = %+v", doc.Blocks)
	}
}

func TestParseDeterministic(t *testing.T) {
	input := "# A\n\npara\n\n## B\n### C\ntext"
	first := Parse(input)
	second := Parse(input)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("Parse is not deterministic:\n%+v\n%+v", first, second)
	}
}

func TestRenderDocumentHeadingsHaveIDs(t *testing.T) {
	var buf bytes.Buffer
	RenderDocument(&buf, Parse("# Heading 1\n## Heading 2\nSome **bold** text"))
	got := buf.String()
	for _, want := range []string{
		`<h1 id="heading-0" data-toc-heading>Heading 1</h1>`,
		`<h2 id="heading-1" data-toc-heading>Heading 2</h2>`,
		`<p>Some <strong>bold</strong> text</p>`,
	} {
		if !strings.Contains(got, want) {
			t.Errorf("RenderDocument output missing %q:\n%s", want, got)
		}
	}
}

func TestRenderDocumentEmpty(t *testing.T) {
	var buf bytes.Buffer
	RenderDocument(&buf, Parse("  \n\n"))
	if buf.String() != EmptyPlaceholder {
		t.Errorf("empty document rendered %q, want placeholder", buf.String())
	}
}

func TestRenderDocumentEscapesHTML(t *testing.T) {
	var buf bytes.Buffer
	RenderDocument(&buf, Parse("<script>alert(1)</script>"))
	if strings.Contains(buf.String(), "<script>") {
		t.Errorf("raw HTML should be escaped: %q", buf.String())
	}
}

func TestRenderTOCNesting(t *testing.T) {
	var buf bytes.Buffer
	RenderTOC(&buf, []Heading{
		{ID: "heading-0", Text: "A", Level: 1},
		{ID: "heading-1", Text: "B", Level: 2},
		{ID: "heading-2", Text: "C", Level: 2},
		{ID: "heading-3", Text: "D", Level: 1},
	})
	got := buf.String()
	want := `<nav class="toc" aria-label="Table of contents">` +
		`<ul><li class="toc-level-1"><a href="#heading-0" data-heading-id="heading-0">A</a>` +
		`<ul><li class="toc-level-2"><a href="#heading-1" data-heading-id="heading-1">B</a></li>` +
		`<li class="toc-level-2"><a href="#heading-2" data-heading-id="heading-2">C</a></li></ul></li>` +
		`<li class="toc-level-1"><a href="#heading-3" data-heading-id="heading-3">D</a></li></ul></nav>`
	if got != want {
		t.Errorf("RenderTOC\n  got:  %s\n  want: %s", got, want)
	}
}

func TestRenderTOCBalanced(t *testing.T) {
	inputs := [][]Heading{
		{{ID: "a", Level: 1}, {ID: "b", Level: 3}, {ID: "c", Level: 2}},
		{{ID: "a", Level: 3}, {ID: "b", Level: 1}},
		{{ID: "a", Level: 2}, {ID: "b", Level: 4}, {ID: "c", Level: 6}, {ID: "d", Level: 1}},
	}
	for _, headings := range inputs {
		var buf bytes.Buffer
		RenderTOC(&buf, headings)
		got := buf.String()
		if o, c := strings.Count(got, "<ul>"), strings.Count(got, "</ul>"); o != c {
			t.Errorf("unbalanced <ul> (%d open, %d close): %s", o, c, got)
		}
		if o, c := strings.Count(got, "<li "), strings.Count(got, "</li>"); o != c {
			t.Errorf("unbalanced <li> (%d open, %d close): %s", o, c, got)
		}
	}
}

func TestRenderTOCShowsPlainText(t *testing.T) {
	doc := Parse("# **Bold** `code` heading\n## Fish &amp; chips")
	var buf bytes.Buffer
	RenderTOC(&buf, doc.Headings)
	got := buf.String()
	for _, want := range []string{">Bold code heading</a>", ">Fish &amp; chips</a>"} {
		if !strings.Contains(got, want) {
			t.Errorf("TOC missing %q: %s", want, got)
		}
	}
	for _, bad := range []string{"**", "`", "&amp;amp;"} {
		if strings.Contains(got, bad) {
			t.Errorf("TOC contains markup %q: %s", bad, got)
		}
	}
}

func TestRenderTOCEmpty(t *testing.T) {
	var buf bytes.Buffer
	RenderTOC(&buf, nil)
	if buf.Len() != 0 {
		t.Errorf("RenderTOC(nil) = %q, want empty", buf.String())
	}
}

func TestSafeURL(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"https://example.com", "https://example.com"},
		{"/blog/post", "/blog/post"},
		{"#heading-2", "#heading-2"},
		{"mailto:hi@example.com", "mailto:hi@example.com"},
		{"javascript:alert(1)", ""},
		{"data:text/html,hi", ""},
		{"", ""},
		{"relative/path", ""},
	}
	for _, tt := range tests {
		if got := SafeURL(tt.input); got != tt.expected {
			t.Errorf("SafeURL(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}
