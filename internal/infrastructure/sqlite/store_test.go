package sqlite

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shoprank/backend/internal/domain"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStore_ClientRegistration(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	client, err := store.CreateClient(ctx, "acme", "pilot customer")
	require.NoError(t, err)
	assert.NotZero(t, client.ID)

	clients, err := store.ListClients(ctx)
	require.NoError(t, err)
	require.Len(t, clients, 1)
	assert.Equal(t, "acme", clients[0].Name)
	assert.Equal(t, "pilot customer", clients[0].Memo)
	assert.False(t, clients[0].CreatedAt.IsZero())
}

func TestStore_ProductRoundTrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	client, err := store.CreateClient(ctx, "acme", "")
	require.NoError(t, err)

	product := &domain.TrackedProduct{
		ClientID: client.ID,
		ProductIdentity: domain.ProductIdentity{
			RawReference: "https://search.shopping.naver.com/catalog/51449387122",
			RawID:        "51449387122",
			CatalogID:    "51449387122",
			Kind:         domain.RefCatalog,
		},
		DisplayName:  "wireless earbuds",
		MallNameHint: "mystore",
	}
	require.NoError(t, store.AddProduct(ctx, product))
	assert.NotZero(t, product.ID)

	products, err := store.ListProducts(ctx, client.ID)
	require.NoError(t, err)
	require.Len(t, products, 1)

	got := products[0]
	assert.Equal(t, product.RawReference, got.RawReference)
	assert.Equal(t, "51449387122", got.CatalogID)
	assert.Equal(t, domain.RefCatalog, got.Kind)
	assert.Equal(t, "mystore", got.MallNameHint)
}

func TestStore_AddProductUnknownClient(t *testing.T) {
	store := openTestStore(t)

	product := &domain.TrackedProduct{
		ClientID:        999,
		ProductIdentity: domain.ProductIdentity{RawReference: "100", RawID: "100", Kind: domain.RefDirect},
	}
	err := store.AddProduct(context.Background(), product)
	assert.ErrorIs(t, err, domain.ErrClientNotFound)
}

func TestStore_KeywordUniquePerClient(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	first, err := store.CreateClient(ctx, "acme", "")
	require.NoError(t, err)
	second, err := store.CreateClient(ctx, "globex", "")
	require.NoError(t, err)

	_, err = store.AddKeyword(ctx, first.ID, "wireless earbuds")
	require.NoError(t, err)

	_, err = store.AddKeyword(ctx, first.ID, "wireless earbuds")
	assert.ErrorIs(t, err, domain.ErrDuplicateKeyword)

	// Same keyword under another client is fine.
	_, err = store.AddKeyword(ctx, second.ID, "wireless earbuds")
	assert.NoError(t, err)

	_, err = store.AddKeyword(ctx, 999, "widget")
	assert.ErrorIs(t, err, domain.ErrClientNotFound)
}

func TestStore_AppendAndHistory(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	client, err := store.CreateClient(ctx, "acme", "")
	require.NoError(t, err)

	base := time.Date(2026, 8, 20, 9, 0, 0, 0, time.UTC)
	batch := []domain.RankObservation{
		{
			ClientID: client.ID, ProductRef: "100", Keyword: "widget",
			Rank: 7, MatchedItemID: "100", MatchedMallName: "mystore",
			MatchedPrice: 9900, ItemType: 2, ObservedAt: base,
		},
		{
			ClientID: client.ID, ProductRef: "200", Keyword: "widget",
			Reason: domain.ReasonNotFound, ObservedAt: base,
		},
		{
			ClientID: client.ID, ProductRef: "100", Keyword: "widget",
			Rank: 5, MatchedItemID: "100", ObservedAt: base.Add(24 * time.Hour),
		},
	}
	require.NoError(t, store.AppendObservations(ctx, batch))

	history, err := store.History(ctx, client.ID, "widget", base.Add(-time.Hour))
	require.NoError(t, err)
	require.Len(t, history, 3)

	// Most recent first.
	assert.Equal(t, 5, history[0].Rank)
	assert.True(t, history[0].ObservedAt.After(history[1].ObservedAt))

	// Rank-absent rows keep their reason and a zero rank.
	var absent *domain.RankObservation
	for i := range history {
		if history[i].ProductRef == "200" {
			absent = &history[i]
		}
	}
	require.NotNil(t, absent)
	assert.False(t, absent.Found())
	assert.Equal(t, domain.ReasonNotFound, absent.Reason)

	// The since filter cuts off older observations.
	recent, err := store.History(ctx, client.ID, "widget", base.Add(time.Hour))
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, 5, recent[0].Rank)

	// Other keywords are not visible.
	other, err := store.History(ctx, client.ID, "gadget", base.Add(-time.Hour))
	require.NoError(t, err)
	assert.Empty(t, other)
}

func TestStore_AppendEmptyBatch(t *testing.T) {
	store := openTestStore(t)
	assert.NoError(t, store.AppendObservations(context.Background(), nil))
}

func TestStore_SameDayOrderingByInsertion(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	client, err := store.CreateClient(ctx, "acme", "")
	require.NoError(t, err)

	at := time.Date(2026, 8, 20, 9, 0, 0, 0, time.UTC)
	for _, ref := range []string{"first", "second", "third"} {
		require.NoError(t, store.AppendObservations(ctx, []domain.RankObservation{
			{ClientID: client.ID, ProductRef: ref, Keyword: "widget", Rank: 1, ObservedAt: at},
		}))
	}

	history, err := store.History(ctx, client.ID, "widget", at.Add(-time.Minute))
	require.NoError(t, err)
	require.Len(t, history, 3)

	// Equal timestamps fall back to insertion order, newest row first.
	assert.Equal(t, "third", history[0].ProductRef)
	assert.Equal(t, "first", history[2].ProductRef)
}
