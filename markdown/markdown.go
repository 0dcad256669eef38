// Package markdown parses a restricted markdown dialect into a node tree and
// renders it as safe HTML or plain text.
//
// The dialect covers headings (levels 1-3), paragraphs, bold, italic, links,
// and images. Parsing and rendering are separate steps: Parse produces the
// tree, and the renderers in html.go and text.go walk it. Untrusted text never
// reaches the output unescaped.
package markdown

import (
	"regexp"
	"strings"
)

// Node is a parsed markdown element. Block nodes (Heading, Paragraph) contain
// inline nodes (Text, Bold, Italic, Link, Image, LineBreak).
type Node interface {
	node()
}

// Text is a run of literal text.
type Text struct {
	Content string
}

// Bold is strong emphasis: **text** or __text__.
type Bold struct {
	Content string
}

// Italic is emphasis: *text* or _text_.
type Italic struct {
	Content string
}

// Link is [label](url). Href has already passed SanitizeURL.
type Link struct {
	Href  string
	Label string
}

// Image is ![alt](url). Src has already passed SanitizeURL.
type Image struct {
	Src string
	Alt string
}

// LineBreak separates consecutive lines within one paragraph.
type LineBreak struct{}

// Heading is a level 1-3 heading line.
type Heading struct {
	Level  int
	Inline []Node
}

// Paragraph groups consecutive non-blank, non-heading lines.
type Paragraph struct {
	Inline []Node
}

func (Text) node()      {}
func (Bold) node()      {}
func (Italic) node()    {}
func (Link) node()      {}
func (Image) node()     {}
func (LineBreak) node() {}
func (Heading) node()   {}
func (Paragraph) node() {}

var (
	reHeading = regexp.MustCompile(`^(#{1,3})\s+(.+)$`)
	// One alternation, first match wins left to right: image, link, bold
	// (both spellings), italic (both spellings).
	reInline = regexp.MustCompile(`!\[([^\]]*)\]\(([^)]+)\)|\[([^\]]+)\]\(([^)]+)\)|\*\*([^*]+)\*\*|__([^_]+)__|\*([^*]+)\*|_([^_]+)_`)
)

// Parse converts source into a sequence of block nodes. It is a pure function
// of its input and returns a fresh tree on every call.
func Parse(source string) []Node {
	var blocks []Node
	var paraLines []string

	flushPara := func() {
		if len(paraLines) == 0 {
			return
		}
		var inline []Node
		for i, line := range paraLines {
			inline = append(inline, parseInline(line)...)
			if i < len(paraLines)-1 {
				inline = append(inline, LineBreak{})
			}
		}
		blocks = append(blocks, Paragraph{Inline: inline})
		paraLines = nil
	}

	for _, raw := range strings.Split(source, "\n") {
		line := strings.TrimSuffix(raw, "\r")
		trimmed := strings.TrimSpace(line)

		if trimmed == "" {
			flushPara()
			continue
		}

		if m := reHeading.FindStringSubmatch(trimmed); m != nil {
			flushPara()
			blocks = append(blocks, Heading{
				Level:  len(m[1]),
				Inline: parseInline(m[2]),
			})
			continue
		}

		paraLines = append(paraLines, line)
	}
	flushPara()
	return blocks
}

// parseInline scans one line segment for inline constructs. An image or link
// whose URL fails sanitization degrades to its alt text or label as plain
// text; the raw URL is never emitted.
func parseInline(segment string) []Node {
	var nodes []Node
	last := 0
	for _, m := range reInline.FindAllStringSubmatchIndex(segment, -1) {
		if m[0] > last {
			nodes = append(nodes, Text{Content: segment[last:m[0]]})
		}
		nodes = append(nodes, inlineNode(segment, m))
		last = m[1]
	}
	if last < len(segment) {
		nodes = append(nodes, Text{Content: segment[last:]})
	}
	return nodes
}

func inlineNode(segment string, m []int) Node {
	group := func(i int) (string, bool) {
		if m[2*i] < 0 {
			return "", false
		}
		return segment[m[2*i]:m[2*i+1]], true
	}

	if alt, ok := group(1); ok {
		rawSrc, _ := group(2)
		if src := SanitizeURL(rawSrc); src != "" {
			return Image{Src: src, Alt: alt}
		}
		return Text{Content: alt}
	}
	if label, ok := group(3); ok {
		rawHref, _ := group(4)
		if href := SanitizeURL(rawHref); href != "" {
			return Link{Href: href, Label: label}
		}
		return Text{Content: label}
	}
	if s, ok := group(5); ok {
		return Bold{Content: s}
	}
	if s, ok := group(6); ok {
		return Bold{Content: s}
	}
	if s, ok := group(7); ok {
		return Italic{Content: s}
	}
	s, _ := group(8)
	return Italic{Content: s}
}
