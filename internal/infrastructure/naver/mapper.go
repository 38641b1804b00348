package naver

import (
	"regexp"
	"strconv"

	"github.com/shoprank/backend/internal/domain"
)

// searchResponse is the wire shape of the shopping search endpoint. Numeric
// fields arrive as strings.
type searchResponse struct {
	Total   int          `json:"total"`
	Start   int          `json:"start"`
	Display int          `json:"display"`
	Items   []searchItem `json:"items"`
}

type searchItem struct {
	Title       string `json:"title"`
	Link        string `json:"link"`
	LPrice      string `json:"lprice"`
	MallName    string `json:"mallName"`
	ProductID   string `json:"productId"`
	ProductType string `json:"productType"`
}

// boldTagPattern strips the <b>...</b> markup Naver embeds around query
// terms in item titles.
var boldTagPattern = regexp.MustCompile(`</?b>`)

// mapToSearchPage converts a wire response to the domain representation.
func mapToSearchPage(resp *searchResponse) *domain.SearchPage {
	page := &domain.SearchPage{
		TotalCount: resp.Total,
		Items:      make([]domain.SearchResultItem, 0, len(resp.Items)),
	}
	for _, item := range resp.Items {
		page.Items = append(page.Items, domain.SearchResultItem{
			ItemID:   item.ProductID,
			Link:     item.Link,
			MallName: item.MallName,
			Title:    cleanTitle(item.Title),
			LowPrice: atoiOrZero(item.LPrice),
			ItemType: atoiOrZero(item.ProductType),
		})
	}
	return page
}

// cleanTitle removes highlight markup from an item title.
func cleanTitle(title string) string {
	return boldTagPattern.ReplaceAllString(title, "")
}

// atoiOrZero parses a numeric string, returning 0 for empty or malformed
// values rather than failing the whole page.
func atoiOrZero(s string) int {
	if s == "" {
		return 0
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}
