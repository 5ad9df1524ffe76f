package extractor

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// QuanbenURLPattern matches quanben.io chapter pages: https://quanben.io/n/{book}/{chapter}.html
var QuanbenURLPattern = regexp.MustCompile(`^https://quanben\.io/n/[^/]+/\d+\.html$`)

var chapterPathPattern = regexp.MustCompile(`^/n/([^/]+)/(\d+)\.html$`)

// QuanbenRuleset extracts chapters from quanben.io. The site carries no author.
func QuanbenRuleset() *Ruleset {
	return &Ruleset{
		ID:          RulesetQuanben,
		Title:       []TextRule{Text(`h1.headline[itemprop="headline"]`)},
		BookName:    []TextRule{Text("div.name")},
		Description: []TextRule{Attr(`meta[name="description"]`, "content")},
		Content:     []TextRule{Paragraphs("#content", "p", ".ads")},
		Prev: []LinkRule{
			quanbenPrevAnchor,
			PreviousChapter,
		},
		Next: []LinkRule{Anchor(`.list_page a[rel="next"]`)},
	}
}

// quanbenPrevAnchor reads the link inside the first span of the pager. On the
// first chapter that span holds plain text only.
func quanbenPrevAnchor(doc *goquery.Document, pageURL *url.URL) (*string, bool) {
	a := doc.Find(".list_page").Find("span").First().Find("a")
	if a.Length() == 0 {
		return nil, false
	}
	return anchorLink(a, pageURL), true
}

// Paragraphs joins the text of every item inside container with newlines, in
// document order. Items that are, or sit inside, an excluded element are skipped,
// as are items with no text.
func Paragraphs(container, item, exclude string) TextRule {
	return func(doc *goquery.Document) string {
		var lines []string
		doc.Find(container).Find(item).Each(func(_ int, p *goquery.Selection) {
			if p.Closest(exclude).Length() > 0 {
				return
			}
			if text := normalizeSpace(p.Text()); text != "" {
				lines = append(lines, text)
			}
		})
		return strings.Join(lines, "\n")
	}
}

// PreviousChapter derives the previous page from a /n/{book}/{n}.html path.
// The book segment is reused in its escaped form. Chapter 1 has no previous page.
func PreviousChapter(_ *goquery.Document, pageURL *url.URL) (*string, bool) {
	m := chapterPathPattern.FindStringSubmatch(pageURL.EscapedPath())
	if m == nil {
		return nil, true
	}

	chapter, err := strconv.Atoi(m[2])
	if err != nil || chapter <= 1 {
		return nil, true
	}

	return resolveHref(pageURL, fmt.Sprintf("/n/%s/%d.html", m[1], chapter-1)), true
}
