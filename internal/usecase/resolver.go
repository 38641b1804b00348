package usecase

import (
	"regexp"
	"strings"

	"github.com/shoprank/backend/internal/domain"
)

// Package-level compiled regex patterns for performance.
// Resolution rules are tried in declaration order; first match wins.
var (
	// Bare numeric product id, entered directly by the operator
	bareNumeralPattern = regexp.MustCompile(`^\d{8,}$`)

	// Price-comparison catalog entry: shopping.naver.com/catalog/{id}
	catalogPattern = regexp.MustCompile(`shopping\.naver\.com/catalog/(\d+)`)

	// Merchant storefront product page: smartstore.naver.com/{store}/products/{id}.
	// This id never equals the upstream item id; it is only findable inside
	// the item's link field.
	storefrontPattern = regexp.MustCompile(`smartstore\.naver\.com/[^/]+/products/(\d+)`)

	// nv_mid query parameter carried by shopping redirect URLs
	queryParamPattern = regexp.MustCompile(`[?&]nv_mid=(\d+)`)

	// Fallback: trailing path numeral of plausible id length
	trailingNumberPattern = regexp.MustCompile(`/(\d{8,})(?:[?/#]|$)`)
)

// ResolveReference extracts a typed product identity from a merchant-supplied
// reference: a product URL or a bare numeric id. Pure function, no network or
// storage access; the same input always yields the same identity.
//
// Returns domain.ErrUnresolvedReference when no rule applies; callers must
// reject the registration in that case.
func ResolveReference(ref string) (domain.ProductIdentity, error) {
	ref = strings.TrimSpace(ref)
	identity := domain.ProductIdentity{RawReference: ref}

	if bareNumeralPattern.MatchString(ref) {
		identity.RawID = ref
		identity.Kind = domain.RefDirect
		return identity, nil
	}

	if m := catalogPattern.FindStringSubmatch(ref); m != nil {
		// The catalog id doubles as the matching key.
		identity.CatalogID = m[1]
		identity.RawID = m[1]
		identity.Kind = domain.RefCatalog
		return identity, nil
	}

	if m := storefrontPattern.FindStringSubmatch(ref); m != nil {
		identity.StorefrontID = m[1]
		identity.RawID = m[1]
		identity.Kind = domain.RefStorefront
		return identity, nil
	}

	if m := queryParamPattern.FindStringSubmatch(ref); m != nil {
		identity.RawID = m[1]
		identity.Kind = domain.RefQueryParam
		return identity, nil
	}

	if m := trailingNumberPattern.FindStringSubmatch(ref); m != nil {
		identity.RawID = m[1]
		identity.Kind = domain.RefTrailingNumber
		return identity, nil
	}

	return domain.ProductIdentity{}, domain.ErrUnresolvedReference
}
