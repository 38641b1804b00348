package usecase

import (
	"regexp"
	"strings"

	"github.com/shoprank/backend/internal/domain"
)

// mallSeparatorPattern strips whitespace and common separator punctuation
// before mall-name comparison.
var mallSeparatorPattern = regexp.MustCompile(`[\s\-_.,·&()\[\]]+`)

// MatchItem decides whether a search-result item is the tracked product.
// Tiers are evaluated in order and short-circuit on first success; order
// matters because tiers increase in ambiguity and a higher tier must never
// lose to a lower, less precise one:
//
//  1. catalog id equals the item's own id
//  2. storefront id occurs inside the item's link (the storefront id is
//     never the upstream item id itself)
//  3. raw id equals the item's own id
//  4. mall-name hint fallback, normalized substring match in either direction
//
// On match it returns the matched upstream identity.
func MatchItem(item domain.SearchResultItem, product domain.TrackedProduct) (domain.MatchInfo, bool) {
	matched := false

	switch {
	case product.CatalogID != "" && product.CatalogID == item.ItemID:
		matched = true
	case product.StorefrontID != "" && strings.Contains(item.Link, product.StorefrontID):
		matched = true
	case product.RawID != "" && product.RawID == item.ItemID:
		matched = true
	case product.MallNameHint != "":
		matched = mallNamesMatch(product.MallNameHint, item.MallName)
	}

	if !matched {
		return domain.MatchInfo{}, false
	}

	return domain.MatchInfo{
		ItemID:   item.ItemID,
		MallName: item.MallName,
		Price:    item.LowPrice,
		ItemType: item.ItemType,
	}, true
}

// mallNamesMatch compares an operator-supplied store name against the item's
// mall name. Both are normalized, then matched if either is a substring of
// the other. Inherently ambiguous (a similarly named unrelated seller can
// match); kept as the lowest-confidence fallback only.
func mallNamesMatch(hint, mallName string) bool {
	h := normalizeMallName(hint)
	m := normalizeMallName(mallName)
	if h == "" || m == "" {
		return false
	}
	return strings.Contains(m, h) || strings.Contains(h, m)
}

// normalizeMallName lowercases and strips whitespace and separator
// punctuation so that "My Store" and "my-store" compare equal.
func normalizeMallName(s string) string {
	s = mallSeparatorPattern.ReplaceAllString(s, "")
	return strings.ToLower(s)
}
