package domain

import "time"

// RefKind classifies how a product reference was resolved to an identity.
type RefKind string

const (
	RefDirect         RefKind = "direct"
	RefCatalog        RefKind = "catalog"
	RefStorefront     RefKind = "storefront"
	RefQueryParam     RefKind = "query-param"
	RefTrailingNumber RefKind = "trailing-number"
)

// ProductIdentity is the typed identity extracted from a merchant-supplied
// product reference. At least one of RawID/CatalogID/StorefrontID is set;
// none of them mutate after resolution.
type ProductIdentity struct {
	RawReference string  `json:"rawReference"`
	RawID        string  `json:"rawId"`
	CatalogID    string  `json:"catalogId,omitempty"`
	StorefrontID string  `json:"storefrontId,omitempty"`
	Kind         RefKind `json:"kind"`
}

// TrackedProduct is a product whose search rank is monitored for a client.
type TrackedProduct struct {
	ID       int64 `json:"id"`
	ClientID int64 `json:"clientId"`
	ProductIdentity
	DisplayName  string    `json:"displayName,omitempty"`
	MallNameHint string    `json:"mallNameHint,omitempty"` // operator-supplied store name, lowest-confidence match key
	CreatedAt    time.Time `json:"createdAt,omitempty"`
}

// Keyword is a search term tracked for a client, unique per client.
type Keyword struct {
	ID        int64     `json:"id"`
	ClientID  int64     `json:"clientId"`
	Text      string    `json:"text"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
}

// Client is a merchant whose products and keywords are tracked.
type Client struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Memo      string    `json:"memo,omitempty"`
	CreatedAt time.Time `json:"createdAt,omitempty"`
}

// SearchResultItem is one item from the upstream shopping search index.
// Ephemeral: it exists only for the duration of one traversal call.
type SearchResultItem struct {
	ItemID   string
	Link     string
	MallName string
	Title    string
	LowPrice int
	ItemType int // distinguishes catalog vs standalone listings
}

// SearchPage is one fixed-size page of upstream search results.
type SearchPage struct {
	Items      []SearchResultItem
	TotalCount int
}

// MatchInfo carries the upstream identity of a matched item.
type MatchInfo struct {
	ItemID   string
	MallName string
	Price    int
	ItemType int
}

// Observation reasons for rank-absent entries.
const (
	// ReasonNotFound marks a product unobserved within the page budget.
	// A valid terminal outcome, not an error.
	ReasonNotFound = "not-found"
	// ReasonUpstreamError marks a traversal cut short by a transient
	// upstream failure.
	ReasonUpstreamError = "upstream-error"
)

// RankObservation is the unit of record: one (client, product, keyword)
// rank measurement. Immutable after creation; history is append-only.
type RankObservation struct {
	ClientID        int64     `json:"clientId"`
	ProductRef      string    `json:"productRef"`
	ProductName     string    `json:"productName,omitempty"`
	Keyword         string    `json:"keyword"`
	Rank            int       `json:"rank,omitempty"` // 1-based; 0 means not found within budget
	MatchedItemID   string    `json:"matchedItemId,omitempty"`
	MatchedMallName string    `json:"matchedMallName,omitempty"`
	MatchedPrice    int       `json:"matchedPrice,omitempty"`
	ItemType        int       `json:"itemType,omitempty"`
	Reason          string    `json:"reason,omitempty"` // set only when Rank is 0
	ObservedAt      time.Time `json:"observedAt"`
}

// Found reports whether the observation carries a rank.
func (o RankObservation) Found() bool { return o.Rank > 0 }
