package parser

import (
	"crypto/md5"
	"encoding/hex"
	"io"
	"sort"
	"strings"

	"golang.org/x/net/html"
)

// Signature fingerprints the markup's structure: the ordered sequence of
// element names with their sorted attribute keys, ignoring text and attribute
// values. Two fetches with equal signatures differ only in content; a changed
// signature means selectors may need attention.
func Signature(markup string) string {
	h := md5.New()
	z := html.NewTokenizer(strings.NewReader(markup))
	for {
		switch z.Next() {
		case html.ErrorToken:
			// io.EOF, or a tokenizer error on truncated input; either way the walk is over.
			return hex.EncodeToString(h.Sum(nil))
		case html.StartTagToken, html.SelfClosingTagToken:
			name, hasAttr := z.TagName()
			var keys []string
			for hasAttr {
				var key []byte
				key, _, hasAttr = z.TagAttr()
				keys = append(keys, string(key))
			}
			sort.Strings(keys)
			io.WriteString(h, string(name))
			io.WriteString(h, "(")
			io.WriteString(h, strings.Join(keys, ","))
			io.WriteString(h, ");")
		}
	}
}
