// Package htmltext turns an HTML message body into a single line of plain
// text. It is lossy: structure, tables and line breaks are not preserved.
package htmltext

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
	"golang.org/x/text/unicode/norm"
)

// TypeError is returned by Normalize for input that is not text
type TypeError struct {
	Got any
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("htmltext: expected string input, got %T", e.Got)
}

// Normalize accepts a string or byte slice and returns its visible text.
func Normalize(v any) (string, error) {
	switch s := v.(type) {
	case string:
		return FromHTML(s), nil
	case []byte:
		return FromHTML(string(s)), nil
	default:
		return "", &TypeError{Got: v}
	}
}

// FromHTML returns the visible text nodes of markup joined by single spaces.
func FromHTML(markup string) string {
	doc, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		// html.Parse only fails on reader errors
		return strings.Join(strings.Fields(markup), " ")
	}

	var parts []string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && hidden(n.DataAtom) {
			return
		}
		if n.Type == html.TextNode {
			if text := strings.Join(strings.Fields(n.Data), " "); text != "" {
				parts = append(parts, text)
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)

	return norm.NFC.String(strings.Join(parts, " "))
}

func hidden(a atom.Atom) bool {
	switch a {
	case atom.Head, atom.Script, atom.Style, atom.Template, atom.Noscript:
		return true
	}
	return false
}
