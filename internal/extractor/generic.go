package extractor

// GenericRuleset covers sites without a dedicated ruleset. Content is the whole text
// of the first matching container kind; no boilerplate removal is attempted.
func GenericRuleset() *Ruleset {
	return &Ruleset{
		ID: RulesetGeneric,
		Title: []TextRule{
			Text("title"),
			FirstText("h1"),
			Attr(`meta[property="og:title"]`, "content"),
		},
		Content: []TextRule{
			Text("article"),
			Text(".content"),
			Text(".article-content"),
			Text("main"),
		},
		Author: []TextRule{
			Attr(`meta[name="author"]`, "content"),
			Text(".author"),
			Text(`[rel="author"]`),
		},
		Prev: []LinkRule{
			Anchor(`a[rel="prev"]`),
			Anchor(".prev"),
			Anchor(".previous"),
		},
		Next: []LinkRule{
			Anchor(`a[rel="next"]`),
			Anchor(".next"),
		},
	}
}
