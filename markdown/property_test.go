package markdown

import (
	"reflect"
	"strconv"
	"strings"
	"testing"
	"unicode"

	"pgregory.net/rapid"
)

func lineGen() *rapid.Generator[string] {
	return rapid.OneOf(
		rapid.StringMatching(`#{1,9} [a-z ]{0,12}`),
		rapid.StringMatching(`[a-z][a-z #*]{0,16}`),
		rapid.Just(""),
		rapid.Just("   "),
	)
}

func stripSpace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

func TestParseHeadingIDsSequential(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		lines := rapid.SliceOfN(lineGen(), 0, 30).Draw(t, "lines")
		doc := Parse(strings.Join(lines, "\n"))

		for i, h := range doc.Headings {
			if want := HeadingIDPrefix + strconv.Itoa(i); h.ID != want {
				t.Fatalf("heading %d id = %q, want %q", i, h.ID, want)
			}
			if h.Level < 1 || h.Level > MaxHeadingLevel {
				t.Fatalf("heading %q level %d out of range", h.ID, h.Level)
			}
			if h.Text == "" {
				t.Fatalf("heading %q has empty text", h.ID)
			}
		}

		var fromBlocks []Heading
		for _, b := range doc.Blocks {
			if b.Kind == KindHeading {
				fromBlocks = append(fromBlocks, Heading{ID: b.ID, Text: b.Text, Level: b.Level})
			}
		}
		if len(fromBlocks) != len(doc.Headings) {
			t.Fatalf("%d heading blocks but %d headings", len(fromBlocks), len(doc.Headings))
		}
		for i := range fromBlocks {
			if fromBlocks[i] != doc.Headings[i] {
				t.Fatalf("block heading %+v != heading %+v", fromBlocks[i], doc.Headings[i])
			}
		}
	})
}

func TestParseIsDeterministic(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		s := rapid.String().Draw(t, "body")
		if a, b := Parse(s), Parse(s); !reflect.DeepEqual(a, b) {
			t.Fatalf("Parse(%q) differs between runs", s)
		}
	})
}

func TestParseWithoutHashesKeepsContent(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		s := rapid.StringMatching(`[a-z \n]{0,60}`).Draw(t, "body")
		doc := Parse(s)
		if len(doc.Headings) != 0 {
			t.Fatalf("Parse(%q) produced headings %v", s, doc.Headings)
		}
		if strings.TrimSpace(s) == "" && len(doc.Blocks) != 0 {
			t.Fatalf("Parse(%q) produced blocks for blank input", s)
		}
		if got, want := stripSpace(doc.PlainText()), stripSpace(s); got != want {
			t.Fatalf("content changed: %q -> %q", want, got)
		}
	})
}

func TestParseSingleLineIsOneParagraph(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		s := rapid.StringMatching(`[ ]{0,3}[a-z][a-z ]{0,20}`).Draw(t, "line")
		doc := Parse(s)
		if len(doc.Blocks) != 1 || doc.Blocks[0].Text != strings.TrimSpace(s) {
			t.Fatalf("Parse(%q) = %+v, want one paragraph %q", s, doc.Blocks, strings.TrimSpace(s))
		}
	})
}

func TestParseNeverPanics(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		s := rapid.String().Draw(t, "body")
		doc := Parse(s)
		var buf strings.Builder
		for _, b := range doc.Blocks {
			buf.WriteString(FormatInline(b.Text))
		}
	})
}
