package extractor

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ErrInvalidBaseURL is returned when the page URL is not an absolute URL.
var ErrInvalidBaseURL = errors.New("invalid base URL")

// Engine applies rulesets to HTML documents. It is safe for concurrent use.
type Engine struct {
	rulesets map[RulesetID]*Ruleset
	fallback *Ruleset
}

// NewEngine creates an engine with the built-in rulesets plus any extra ones.
// An extra ruleset replaces a built-in one with the same ID.
func NewEngine(extra ...*Ruleset) *Engine {
	e := &Engine{
		rulesets: map[RulesetID]*Ruleset{
			RulesetGeneric: GenericRuleset(),
			RulesetQuanben: QuanbenRuleset(),
		},
	}
	for _, rs := range extra {
		e.rulesets[rs.ID] = rs
	}
	e.fallback = e.rulesets[RulesetGeneric]
	return e
}

// Ruleset returns the ruleset registered for id, or the generic ruleset.
func (e *Engine) Ruleset(id RulesetID) *Ruleset {
	if rs, ok := e.rulesets[id]; ok {
		return rs
	}
	return e.fallback
}

// Extract parses html and applies ruleset id. Relative links resolve against baseURL.
// Missing fields degrade to placeholders; only a bad baseURL or unreadable document
// produce an error.
func (e *Engine) Extract(html, baseURL string, id RulesetID) (*Result, error) {
	pageURL, err := parseBaseURL(baseURL)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	rs := e.Ruleset(id)
	return &Result{
		Title:       orPlaceholder(firstText(doc, rs.Title), TitleNotFound),
		Content:     orPlaceholder(firstText(doc, rs.Content), ContentNotFound),
		Author:      orPlaceholder(firstText(doc, rs.Author), UnknownAuthor),
		PrevLink:    firstLink(doc, pageURL, rs.Prev),
		NextLink:    firstLink(doc, pageURL, rs.Next),
		BookName:    firstText(doc, rs.BookName),
		Description: firstText(doc, rs.Description),
	}, nil
}

func parseBaseURL(raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidBaseURL, err)
	}
	if !u.IsAbs() || u.Host == "" {
		return nil, fmt.Errorf("%w: %q is not absolute", ErrInvalidBaseURL, raw)
	}
	return u, nil
}
