package fetch

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Page is the readable content of an HTML document.
type Page struct {
	Title string // empty when the document has neither og:title nor <title>
	Text  string
}

// ParseHTML extracts the title and visible text of an HTML document.
func ParseHTML(content string) (*Page, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}
	return &Page{
		Title: Title(doc),
		Text:  VisibleText(doc),
	}, nil
}

// Title returns the Open Graph title, falling back to the <title> element.
func Title(doc *goquery.Document) string {
	if content, ok := doc.Find(`meta[property="og:title"]`).First().Attr("content"); ok {
		if title := strings.TrimSpace(content); title != "" {
			return title
		}
	}
	return strings.TrimSpace(doc.Find("title").First().Text())
}

// VisibleText returns every non-empty text node of the document, trimmed and
// joined with newlines. Script, style, noscript and template contents are skipped.
// The document is modified.
func VisibleText(doc *goquery.Document) string {
	doc.Find("script, style, noscript, template").Remove()

	var parts []string
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			if text := strings.TrimSpace(n.Data); text != "" {
				parts = append(parts, text)
			}
			return
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	for _, n := range doc.Nodes {
		walk(n)
	}
	return strings.Join(parts, "\n")
}
