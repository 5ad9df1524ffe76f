package extractor

import "regexp"

// Route binds a URL pattern to a ruleset.
type Route struct {
	Pattern *regexp.Regexp
	Ruleset RulesetID
}

// Dispatcher maps page URLs to rulesets. Routes are checked in registration order.
type Dispatcher struct {
	routes []Route
}

// NewDispatcher creates a dispatcher over routes.
func NewDispatcher(routes ...Route) *Dispatcher {
	return &Dispatcher{routes: append([]Route(nil), routes...)}
}

// DefaultDispatcher knows every site with a dedicated ruleset.
func DefaultDispatcher() *Dispatcher {
	return NewDispatcher(
		Route{Pattern: QuanbenURLPattern, Ruleset: RulesetQuanben},
	)
}

// Select returns the ruleset for rawURL: the first matching route, else generic.
func (d *Dispatcher) Select(rawURL string) RulesetID {
	for _, r := range d.routes {
		if r.Pattern.MatchString(rawURL) {
			return r.Ruleset
		}
	}
	return RulesetGeneric
}
