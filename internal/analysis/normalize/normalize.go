// Package normalize turns markup-bearing chat bodies into plain text.
package normalize

import (
	"strings"

	"golang.org/x/net/html"
)

// Text returns the concatenation of all markup-free text nodes in body,
// with outer whitespace trimmed. Absent input yields the empty string;
// there are no error conditions.
func Text(body string) string {
	if body == "" {
		return ""
	}
	if !strings.ContainsRune(body, '<') {
		return strings.TrimSpace(body)
	}

	z := html.NewTokenizer(strings.NewReader(body))
	var b strings.Builder
	for {
		switch z.Next() {
		case html.ErrorToken:
			return strings.TrimSpace(b.String())
		case html.TextToken:
			b.Write(z.Text())
		}
	}
}
