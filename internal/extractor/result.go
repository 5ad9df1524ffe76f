// Package extractor turns a chapter page's HTML into structured content using
// per-site selector rulesets.
package extractor

// Placeholders returned when no candidate yields a value.
const (
	TitleNotFound   = "title not found"
	ContentNotFound = "content not found"
	UnknownAuthor   = "unknown author"
)

// Result is the structured content extracted from one page.
// Title, Content and Author are never empty. PrevLink and NextLink are absolute URLs or nil.
type Result struct {
	Title       string  `json:"title"`
	Content     string  `json:"content"`
	Author      string  `json:"author"`
	PrevLink    *string `json:"prevLink"`
	NextLink    *string `json:"nextLink"`
	BookName    string  `json:"bookName,omitempty"`
	Description string  `json:"description,omitempty"`
}

func orPlaceholder(value, placeholder string) string {
	if value == "" {
		return placeholder
	}
	return value
}
