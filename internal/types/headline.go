package types

import "strings"

// Headline is a single extracted headline record.
type Headline struct {
	Title   string `json:"title"             yaml:"title"             bson:"title"`
	Link    string `json:"link"              yaml:"link"              bson:"link"`
	Content string `json:"content,omitempty" yaml:"content,omitempty" bson:"content,omitempty"`
}

// Valid reports whether the record has both a title and a link.
func (h Headline) Valid() bool {
	return strings.TrimSpace(h.Title) != "" && h.Link != ""
}
