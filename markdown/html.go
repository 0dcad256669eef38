package markdown

import (
	"bytes"
	"context"
	"html"
	"io"
	"strconv"
	"strings"

	"github.com/a-h/templ"
)

// Component returns a templ.Component that renders content as HTML.
func Component(content string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var buf bytes.Buffer
		RenderHTML(&buf, Parse(content))
		_, err := w.Write(buf.Bytes())
		return err
	})
}

// RenderHTML writes the HTML representation of a parsed tree to buf. Every
// text and attribute value is escaped; the tree is the only structure, so
// literal markup characters in user content are never interpreted as tags.
func RenderHTML(buf *bytes.Buffer, nodes []Node) {
	for _, n := range nodes {
		switch n := n.(type) {
		case Heading:
			level := strconv.Itoa(n.Level)
			buf.WriteString("<h" + level + ">")
			RenderHTML(buf, n.Inline)
			buf.WriteString("</h" + level + ">")
		case Paragraph:
			buf.WriteString("<p>")
			RenderHTML(buf, n.Inline)
			buf.WriteString("</p>")
		case Text:
			buf.WriteString(html.EscapeString(n.Content))
		case Bold:
			buf.WriteString("<strong>")
			buf.WriteString(html.EscapeString(n.Content))
			buf.WriteString("</strong>")
		case Italic:
			buf.WriteString("<em>")
			buf.WriteString(html.EscapeString(n.Content))
			buf.WriteString("</em>")
		case Link:
			buf.WriteString(`<a href="` + html.EscapeString(n.Href) + `"`)
			if isExternal(n.Href) {
				buf.WriteString(` target="_blank" rel="noopener noreferrer"`)
			}
			buf.WriteString(">")
			buf.WriteString(html.EscapeString(n.Label))
			buf.WriteString("</a>")
		case Image:
			buf.WriteString(`<img src="` + html.EscapeString(n.Src) + `" alt="` + html.EscapeString(n.Alt) + `" loading="lazy"/>`)
		case LineBreak:
			buf.WriteString("<br/>")
		}
	}
}

func isExternal(href string) bool {
	lower := strings.ToLower(href)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}
