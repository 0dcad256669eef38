package markdown

import (
	"bytes"
	"reflect"
	"strings"
	"testing"
)

func renderString(t *testing.T, input string) string {
	t.Helper()
	var buf bytes.Buffer
	RenderHTML(&buf, Parse(input))
	return buf.String()
}

func TestParseBoldAndItalic(t *testing.T) {
	got := Parse("**bold** and _em_")
	want := []Node{Paragraph{Inline: []Node{
		Bold{Content: "bold"},
		Text{Content: " and "},
		Italic{Content: "em"},
	}}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Parse = %#v, want %#v", got, want)
	}
}

func TestParseLeavesNoSyntaxInTextNodes(t *testing.T) {
	nodes := Parse("**bold** and _em_")
	para, ok := nodes[0].(Paragraph)
	if !ok {
		t.Fatalf("expected Paragraph, got %#v", nodes[0])
	}
	for _, n := range para.Inline {
		text, ok := n.(Text)
		if !ok {
			continue
		}
		if strings.ContainsAny(text.Content, "*_") {
			t.Errorf("text node %q contains residual syntax", text.Content)
		}
	}
}

func TestParseIdempotent(t *testing.T) {
	input := "# Title\n\nSome **bold** text\nwith a [link](https://example.com)\n\n_closing_"
	first := Parse(input)
	second := Parse(input)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("Parse is not deterministic:\n%#v\n%#v", first, second)
	}
}

func TestParseHeadings(t *testing.T) {
	tests := []struct {
		input string
		level int
		text  string
	}{
		{"# Heading 1", 1, "Heading 1"},
		{"## Heading 2", 2, "Heading 2"},
		{"### Heading 3", 3, "Heading 3"},
	}
	for _, tt := range tests {
		nodes := Parse(tt.input)
		if len(nodes) != 1 {
			t.Fatalf("Parse(%q) produced %d blocks, want 1", tt.input, len(nodes))
		}
		h, ok := nodes[0].(Heading)
		if !ok {
			t.Fatalf("Parse(%q) = %#v, want Heading", tt.input, nodes[0])
		}
		if h.Level != tt.level {
			t.Errorf("Parse(%q) level = %d, want %d", tt.input, h.Level, tt.level)
		}
		if got := RenderText(h.Inline); got != tt.text {
			t.Errorf("Parse(%q) text = %q, want %q", tt.input, got, tt.text)
		}
	}
}

func TestParseFourHashesIsNotHeading(t *testing.T) {
	nodes := Parse("#### Too deep")
	if _, ok := nodes[0].(Heading); ok {
		t.Errorf("#### should parse as a paragraph, got %#v", nodes[0])
	}
}

func TestParseHashWithoutSpaceIsNotHeading(t *testing.T) {
	nodes := Parse("#nospace")
	if _, ok := nodes[0].(Heading); ok {
		t.Errorf("#nospace should parse as a paragraph, got %#v", nodes[0])
	}
}

func TestParseParagraphGrouping(t *testing.T) {
	nodes := Parse("line one\nline two\n\nline three")
	if len(nodes) != 2 {
		t.Fatalf("expected 2 paragraphs, got %d: %#v", len(nodes), nodes)
	}
	first, ok := nodes[0].(Paragraph)
	if !ok {
		t.Fatalf("expected Paragraph, got %#v", nodes[0])
	}
	breaks := 0
	for _, n := range first.Inline {
		if _, ok := n.(LineBreak); ok {
			breaks++
		}
	}
	if breaks != 1 {
		t.Errorf("expected 1 line break between grouped lines, got %d", breaks)
	}
}

func TestParseUnsafeImageFallsBackToAlt(t *testing.T) {
	nodes := Parse(`![a photo](javascript:alert(1))`)
	para := nodes[0].(Paragraph)
	if len(para.Inline) != 1 {
		t.Fatalf("expected single inline node, got %#v", para.Inline)
	}
	text, ok := para.Inline[0].(Text)
	if !ok {
		t.Fatalf("expected Text fallback, got %#v", para.Inline[0])
	}
	if text.Content != "a photo" {
		t.Errorf("fallback text = %q, want alt text", text.Content)
	}
}

func TestParseUnsafeLinkFallsBackToLabel(t *testing.T) {
	nodes := Parse(`[click](ftp://example.com/file)`)
	para := nodes[0].(Paragraph)
	text, ok := para.Inline[0].(Text)
	if !ok {
		t.Fatalf("expected Text fallback, got %#v", para.Inline[0])
	}
	if text.Content != "click" {
		t.Errorf("fallback text = %q, want label", text.Content)
	}
}

func TestRenderHTMLEscapesText(t *testing.T) {
	got := renderString(t, "a <script>alert(1)</script> & more")
	if strings.Contains(got, "<script>") {
		t.Errorf("raw markup leaked into output: %q", got)
	}
	if !strings.Contains(got, "&lt;script&gt;") {
		t.Errorf("expected escaped markup in output: %q", got)
	}
	if !strings.Contains(got, "&amp;") {
		t.Errorf("expected escaped ampersand in output: %q", got)
	}
}

func TestRenderHTMLBoldItalic(t *testing.T) {
	got := renderString(t, "**bold** and _em_")
	want := "<p><strong>bold</strong> and <em>em</em></p>"
	if got != want {
		t.Errorf("RenderHTML = %q, want %q", got, want)
	}
}

func TestRenderHTMLHeading(t *testing.T) {
	got := renderString(t, "## Section")
	if got != "<h2>Section</h2>" {
		t.Errorf("RenderHTML = %q", got)
	}
}

func TestRenderHTMLExternalLink(t *testing.T) {
	got := renderString(t, "[site](https://example.com)")
	if !strings.Contains(got, `href="https://example.com"`) {
		t.Errorf("missing href: %q", got)
	}
	if !strings.Contains(got, `target="_blank"`) || !strings.Contains(got, `rel="noopener noreferrer"`) {
		t.Errorf("external link should open isolated in a new tab: %q", got)
	}
}

func TestRenderHTMLRelativeLink(t *testing.T) {
	got := renderString(t, "[about](about.html)")
	if strings.Contains(got, "target=") {
		t.Errorf("relative link should not get target attribute: %q", got)
	}
	if !strings.Contains(got, `href="about.html"`) {
		t.Errorf("missing relative href: %q", got)
	}
}

func TestRenderHTMLImage(t *testing.T) {
	got := renderString(t, "![sunset](/uploads/photographs/a.jpg)")
	if !strings.Contains(got, `src="/uploads/photographs/a.jpg"`) {
		t.Errorf("missing src: %q", got)
	}
	if !strings.Contains(got, `alt="sunset"`) || !strings.Contains(got, `loading="lazy"`) {
		t.Errorf("missing image attributes: %q", got)
	}
}

func TestRenderHTMLLineBreakWithinParagraph(t *testing.T) {
	got := renderString(t, "first\nsecond")
	want := "<p>first<br/>second</p>"
	if got != want {
		t.Errorf("RenderHTML = %q, want %q", got, want)
	}
}

func TestStripSyntax(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"# Title", " Title"},
		{"**bold** _em_ `code`", "bold em code"},
		{"[label](url)!", "labelurl"},
		{"plain text", "plain text"},
	}
	for _, tt := range tests {
		if got := StripSyntax(tt.input); got != tt.want {
			t.Errorf("StripSyntax(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestExcerptShortContentUnchanged(t *testing.T) {
	got := Excerpt("a **short** note", 150)
	if got != "a short note" {
		t.Errorf("Excerpt = %q", got)
	}
}

func TestExcerptTruncatesWithEllipsis(t *testing.T) {
	long := strings.Repeat("palavra ", 40)
	got := Excerpt(long, 150)
	if len([]rune(got)) != 153 {
		t.Errorf("Excerpt length = %d runes, want 153", len([]rune(got)))
	}
	if !strings.HasSuffix(got, "...") {
		t.Errorf("Excerpt should end with ellipsis: %q", got)
	}
	if !strings.HasPrefix(long, strings.TrimSuffix(got, "...")) {
		t.Errorf("Excerpt should be a prefix of the stripped content")
	}
}

func TestRenderTextFlattens(t *testing.T) {
	got := RenderText(Parse("# T\n\n**b** [l](https://e.com) ![a](/p.jpg)"))
	want := "T\nb l a"
	if got != want {
		t.Errorf("RenderText = %q, want %q", got, want)
	}
}
