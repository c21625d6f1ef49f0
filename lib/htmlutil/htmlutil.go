package htmlutil

import (
	"bytes"
	"strings"
	"unicode"

	"golang.org/x/net/html"
)

func GetText(node *html.Node) string {
	var buffer bytes.Buffer
	getTextRecursive(node, &buffer)
	return buffer.String()
}

func getTextRecursive(node *html.Node, buffer *bytes.Buffer) {
	if node == nil {
		return
	}
	if node.Type == html.TextNode {
		buffer.WriteString(node.Data)
		return
	}
	child := node.FirstChild
	for child != nil {
		getTextRecursive(child, buffer)
		child = child.NextSibling
	}
}

// CleanText strips non-printable characters and collapses whitespace, which
// is what cell text scraped out of a rendered table needs before comparison.
func CleanText(s string) string {
	var b strings.Builder
	lastSpace := false
	for _, c := range s {
		if unicode.IsSpace(c) {
			if !lastSpace && b.Len() > 0 {
				b.WriteRune(' ')
			}
			lastSpace = true
			continue
		}
		if unicode.IsPrint(c) {
			b.WriteRune(c)
			lastSpace = false
		}
	}
	return strings.TrimRight(b.String(), " ")
}
