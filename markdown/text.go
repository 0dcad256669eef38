package markdown

import "strings"

const syntaxChars = "#*_`[]()!"

// StripSyntax removes markdown punctuation from s, leaving plain text.
func StripSyntax(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r < 0x80 && strings.ContainsRune(syntaxChars, r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Excerpt derives a plain-text excerpt from markdown content: syntax
// characters are stripped and the result is truncated to limit runes with a
// trailing ellipsis when it was longer.
func Excerpt(content string, limit int) string {
	plain := strings.TrimSpace(StripSyntax(content))
	runes := []rune(plain)
	if len(runes) <= limit {
		return plain
	}
	return string(runes[:limit]) + "..."
}

// RenderText flattens a parsed tree to plain text. Links and images
// contribute their label and alt text; blocks are separated by newlines.
func RenderText(nodes []Node) string {
	var b strings.Builder
	for i, n := range nodes {
		switch n := n.(type) {
		case Heading:
			if i > 0 {
				b.WriteString("\n")
			}
			b.WriteString(RenderText(n.Inline))
		case Paragraph:
			if i > 0 {
				b.WriteString("\n")
			}
			b.WriteString(RenderText(n.Inline))
		case Text:
			b.WriteString(n.Content)
		case Bold:
			b.WriteString(n.Content)
		case Italic:
			b.WriteString(n.Content)
		case Link:
			b.WriteString(n.Label)
		case Image:
			b.WriteString(n.Alt)
		case LineBreak:
			b.WriteString("\n")
		}
	}
	return b.String()
}
