package extractor

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// normalizeSpace collapses every run of whitespace to a single space and trims the ends.
func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// resolveHref resolves href against base. Empty or unparseable hrefs yield nil.
func resolveHref(base *url.URL, href string) *string {
	href = strings.TrimSpace(href)
	if href == "" {
		return nil
	}

	ref, err := url.Parse(href)
	if err != nil {
		return nil
	}

	abs := base.ResolveReference(ref).String()
	return &abs
}

// anchorLink resolves the href of sel's first element.
func anchorLink(sel *goquery.Selection, base *url.URL) *string {
	href, ok := sel.First().Attr("href")
	if !ok {
		return nil
	}
	return resolveHref(base, href)
}
