package brochure

import (
	"io"
	"strings"

	"golang.org/x/net/html"
)

// blockTags start a new line; cellTags separate with a space so a table row
// stays one line.
var (
	blockTags = map[string]bool{
		"p": true, "div": true, "li": true, "tr": true, "br": true, "hr": true,
		"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
		"section": true, "article": true, "header": true, "table": true,
		"ul": true, "ol": true, "dt": true, "dd": true, "figcaption": true,
	}
	cellTags = map[string]bool{"td": true, "th": true}
	skipTags = map[string]bool{
		"script": true, "style": true, "noscript": true, "template": true,
		"iframe": true, "svg": true, "head": true,
	}
)

// HTMLToText flattens an HTML document into newline-separated text, one
// line per block element. Script, style and similar containers are dropped.
func HTMLToText(r io.Reader) (string, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	collectText(&b, doc)

	lines := strings.Split(b.String(), "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if line = strings.Join(strings.Fields(line), " "); line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n"), nil
}

func collectText(b *strings.Builder, n *html.Node) {
	switch n.Type {
	case html.TextNode:
		b.WriteString(n.Data)
		return
	case html.ElementNode:
		name := strings.ToLower(n.Data)
		if skipTags[name] {
			return
		}
		if blockTags[name] {
			b.WriteString("\n")
		} else if cellTags[name] {
			b.WriteString(" ")
		}
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(b, c)
	}

	if n.Type == html.ElementNode {
		name := strings.ToLower(n.Data)
		if blockTags[name] {
			b.WriteString("\n")
		} else if cellTags[name] {
			b.WriteString(" ")
		}
	}
}
