package synth

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// StripLinks replaces every anchor element in the markup fragment with its
// visible text, dropping the hyperlink semantics while preserving the
// rendered content. Applied before injection so the synthesized document
// carries no live links.
func StripLinks(markup string) (string, error) {
	body := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(markup), body)
	if err != nil {
		return "", fmt.Errorf("parse fragment: %w", err)
	}

	var b strings.Builder
	for _, n := range nodes {
		stripAnchors(n)
		if err := html.Render(&b, n); err != nil {
			return "", fmt.Errorf("render fragment: %w", err)
		}
	}
	return b.String(), nil
}

// stripAnchors rewrites the subtree in place, replacing each <a> with a
// text node holding its textContent.
func stripAnchors(n *html.Node) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		if c.Type == html.ElementNode && c.DataAtom == atom.A {
			text := &html.Node{Type: html.TextNode, Data: textContent(c)}
			n.InsertBefore(text, c)
			n.RemoveChild(c)
		} else {
			stripAnchors(c)
		}
		c = next
	}
}

func textContent(n *html.Node) string {
	if n.Type == html.TextNode {
		return n.Data
	}
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		b.WriteString(textContent(c))
	}
	return b.String()
}
