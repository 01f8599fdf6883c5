package catalog

import (
	"iter"
	"regexp"
	"strings"

	"storefront/model"
)

// matcher holds one case-insensitive substring pattern per query term.
type matcher []*regexp.Regexp

func (m matcher) match(name string) bool {
	for _, re := range m {
		if !re.MatchString(name) {
			return false
		}
	}
	return true
}

func compile(query string) matcher {
	terms := strings.Fields(query)
	m := make(matcher, 0, len(terms))
	for _, term := range terms {
		m = append(m, regexp.MustCompile(`(?i)`+regexp.QuoteMeta(term)))
	}
	return m
}

func (c *Catalog) matcherFor(query string) matcher {
	if c.matchers == nil {
		return compile(query)
	}
	if m, ok := c.matchers.Get(query); ok {
		return m
	}
	m := compile(query)
	c.matchers.Add(query, m)
	return m
}

// Search yields the items whose name contains every whitespace-separated
// term of query, case-insensitively, in catalog order. Matching is by
// substring, so "rice" matches "Price". The sequence is lazy and can be
// ranged over again; each pass sees the current stock.
func (c *Catalog) Search(query string) iter.Seq[model.InventoryItem] {
	m := c.matcherFor(query)
	if len(m) == 0 && !c.opts.EmptyQueryMatchesAll {
		return func(func(model.InventoryItem) bool) {}
	}
	return func(yield func(model.InventoryItem) bool) {
		for _, name := range c.order {
			item, ok := c.items[name]
			if !ok || !m.match(name) {
				continue
			}
			if !yield(*item) {
				return
			}
		}
	}
}

// SearchNames collects the names Search yields.
func (c *Catalog) SearchNames(query string) []string {
	var names []string
	for item := range c.Search(query) {
		names = append(names, item.Name)
	}
	return names
}
