package markdown

import (
	"strings"
	"testing"

	"pgregory.net/rapid"
)

func kinds(spans []Span) []SpanKind {
	out := make([]SpanKind, len(spans))
	for i, s := range spans {
		out[i] = s.Kind
	}
	return out
}

func spanDepth(spans []Span) int {
	max := 0
	for _, s := range spans {
		if len(s.Children) == 0 {
			continue
		}
		if d := 1 + spanDepth(s.Children); d > max {
			max = d
		}
	}
	return max
}

func TestFormatInlineBold(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"**bold**", "<strong>bold</strong>"},
		{"__bold__", "<strong>bold</strong>"},
		{"text **bold** more", "text <strong>bold</strong> more"},
	}
	for _, tt := range tests {
		got := FormatInline(tt.input)
		if got != tt.expected {
			t.Errorf("FormatInline(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestFormatInlineItalic(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"*italic*", "<em>italic</em>"},
		{"_italic_", "<em>italic</em>"},
		{"text *italic* more", "text <em>italic</em> more"},
	}
	for _, tt := range tests {
		got := FormatInline(tt.input)
		if got != tt.expected {
			t.Errorf("FormatInline(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestFormatInlineNested(t *testing.T) {
	got := FormatInline("**bold *italic* text**")
	want := "<strong>bold <em>italic</em> text</strong>"
	if got != want {
		t.Errorf("FormatInline nested = %q, want %q", got, want)
	}
}

func TestFormatInlineCode(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"`code`", "<code>code</code>"},
		{"use `fmt.Println` here", "use <code>fmt.Println</code> here"},
		{"`a` and `b`", "<code>a</code> and <code>b</code>"},
		{"`**not bold**`", "<code>**not bold**</code>"},
		{"`<b>`", "<code>&lt;b&gt;</code>"},
	}
	for _, tt := range tests {
		got := FormatInline(tt.input)
		if got != tt.expected {
			t.Errorf("FormatInline(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestFormatInlineLinks(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{
			"[Wikipedia](https://en.wikipedia.org/wiki/Some_Article_Title)",
			`<a href="https://en.wikipedia.org/wiki/Some_Article_Title" class="underline decoration-2 underline-offset-4" target="_blank" rel="noopener noreferrer">Wikipedia</a>`,
		},
		{
			"see [our chefs](/become-a-chef) today",
			`see <a href="/become-a-chef" class="underline decoration-2 underline-offset-4">our chefs</a> today`,
		},
		{
			"[bad](javascript:alert(1))",
			"bad",
		},
	}
	for _, tt := range tests {
		got := FormatInline(tt.input)
		if got != tt.expected {
			t.Errorf("FormatInline(%q)\n  got:  %q\n  want: %q", tt.input, got, tt.expected)
		}
	}
}

func TestTokenizeSourceOrder(t *testing.T) {
	spans := Tokenize("`code` then [link](/x) then **bold** and *it*")
	want := []SpanKind{SpanCode, SpanText, SpanLink, SpanText, SpanBold, SpanText, SpanItalic}
	got := kinds(spans)
	if len(got) != len(want) {
		t.Fatalf("kinds = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("kinds = %v, want %v", got, want)
		}
	}
	if spans[2].URL != "/x" {
		t.Errorf("link URL = %q, want /x", spans[2].URL)
	}
}

func TestTokenizeCodeSpanOutranksEmphasis(t *testing.T) {
	spans := Tokenize("*foo`*`")
	if len(spans) != 2 {
		t.Fatalf("spans = %+v, want text + code", spans)
	}
	if spans[0].Kind != SpanText || spans[0].Text != "*foo" {
		t.Errorf("first span = %+v, want text *foo", spans[0])
	}
	if spans[1].Kind != SpanCode || spans[1].Text != "*" {
		t.Errorf("second span = %+v, want code *", spans[1])
	}
}

func TestTokenizeCodeSpanOutranksLink(t *testing.T) {
	spans := Tokenize("[not a `link](/foo`)")
	for _, s := range spans {
		if s.Kind == SpanLink {
			t.Fatalf("code span should win over link: %+v", spans)
		}
	}
	if SpansText(spans) != "[not a link](/foo)" {
		t.Errorf("SpansText = %q", SpansText(spans))
	}
}

func TestTokenizeDepthBounded(t *testing.T) {
	input := "*a **b *c **d** c* b** a*"
	spans := Tokenize(input)
	if d := spanDepth(spans); d > MaxInlineDepth {
		t.Errorf("depth = %d, want <= %d: %+v", d, MaxInlineDepth, spans)
	}
	if !strings.Contains(SpansText(spans), "d") {
		t.Errorf("flattened text lost content: %q", SpansText(spans))
	}
}

func TestTokenizeSoftBreak(t *testing.T) {
	got := FormatInline("first line\nsecond line")
	if got != "first line<br/>second line" {
		t.Errorf("FormatInline soft break = %q", got)
	}
}

func TestTokenizeResolvesEntities(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Fish &amp; chips &copy; 2025", "Fish &amp; chips © 2025"},
		{"caf&#233; &#x26; bar", "café &amp; bar"},
		{"**salt &amp; pepper**", "<strong>salt &amp; pepper</strong>"},
		{"`&amp;`", "<code>&amp;amp;</code>"},
		{"&notanentity;", "&amp;notanentity;"},
	}
	for _, tt := range tests {
		if got := FormatInline(tt.input); got != tt.expected {
			t.Errorf("FormatInline(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
	if got := SpansText(Tokenize("Fish &amp; chips")); got != "Fish & chips" {
		t.Errorf("SpansText = %q, want decoded ampersand", got)
	}
}

func TestTokenizeKeepsListMarkers(t *testing.T) {
	if got := SpansText(Tokenize("- not a list")); got != "- not a list" {
		t.Errorf("SpansText = %q, want literal list marker", got)
	}
}

func TestTokenizePropertyDepthAndOrder(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		s := rapid.StringMatching("[a-z *_`\\[\\]()/]{0,40}").Draw(t, "text")
		spans := Tokenize(s)
		if d := spanDepth(spans); d > MaxInlineDepth {
			t.Fatalf("Tokenize(%q) depth %d exceeds %d", s, d, MaxInlineDepth)
		}
		for i := 1; i < len(spans); i++ {
			if spans[i].Kind == SpanText && spans[i-1].Kind == SpanText {
				t.Fatalf("Tokenize(%q) left adjacent text spans unmerged", s)
			}
		}
	})
}

func TestTokenizePlainTextRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		s := rapid.StringMatching("[a-z][a-z ,.]{0,30}[a-z]").Draw(t, "text")
		if got := SpansText(Tokenize(s)); got != s {
			t.Fatalf("SpansText(Tokenize(%q)) = %q", s, got)
		}
	})
}
