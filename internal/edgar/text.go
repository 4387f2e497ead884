package edgar

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

// PlainText strips markup from an HTML document, joining text nodes with single spaces
// and collapsing all whitespace runs. Script and style contents are dropped.
func PlainText(document string) (string, error) {
	root, err := html.Parse(strings.NewReader(document))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	var parts []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style") {
			return
		}
		if n.Type == html.TextNode {
			if text := strings.TrimSpace(n.Data); text != "" {
				parts = append(parts, text)
			}
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)

	return strings.Join(strings.Fields(strings.Join(parts, " ")), " "), nil
}
