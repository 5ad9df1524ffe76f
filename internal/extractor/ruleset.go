package extractor

import (
	"net/url"

	"github.com/PuerkitoBio/goquery"
)

// RulesetID names a registered ruleset.
type RulesetID string

const (
	RulesetGeneric RulesetID = "generic"
	RulesetQuanben RulesetID = "quanben"
)

// TextRule yields a normalized candidate value for a text field, or "" when it has nothing.
type TextRule func(doc *goquery.Document) string

// LinkRule looks for a navigation link. found reports whether the rule located its
// element; once found, the search stops even if link is nil.
type LinkRule func(doc *goquery.Document, pageURL *url.URL) (link *string, found bool)

// Ruleset holds the ordered candidates for each field. Candidates are tried in order
// and the first non-empty value wins. A Ruleset is immutable once registered.
type Ruleset struct {
	ID          RulesetID
	Title       []TextRule
	Content     []TextRule
	Author      []TextRule
	BookName    []TextRule
	Description []TextRule
	Prev        []LinkRule
	Next        []LinkRule
}

func firstText(doc *goquery.Document, rules []TextRule) string {
	for _, rule := range rules {
		if v := rule(doc); v != "" {
			return v
		}
	}
	return ""
}

func firstLink(doc *goquery.Document, pageURL *url.URL, rules []LinkRule) *string {
	for _, rule := range rules {
		if link, found := rule(doc, pageURL); found {
			return link
		}
	}
	return nil
}

// Text returns the combined text of every element matching selector.
func Text(selector string) TextRule {
	return func(doc *goquery.Document) string {
		return normalizeSpace(doc.Find(selector).Text())
	}
}

// FirstText returns the text of the first element matching selector.
func FirstText(selector string) TextRule {
	return func(doc *goquery.Document) string {
		return normalizeSpace(doc.Find(selector).First().Text())
	}
}

// Attr returns attribute name of the first element matching selector.
func Attr(selector, name string) TextRule {
	return func(doc *goquery.Document) string {
		v, _ := doc.Find(selector).First().Attr(name)
		return normalizeSpace(v)
	}
}

// Anchor matches the first element for selector and resolves its href against the page URL.
func Anchor(selector string) LinkRule {
	return func(doc *goquery.Document, pageURL *url.URL) (*string, bool) {
		sel := doc.Find(selector)
		if sel.Length() == 0 {
			return nil, false
		}
		return anchorLink(sel, pageURL), true
	}
}
