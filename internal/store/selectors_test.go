package store

import (
	"testing"

	"github.com/Skotchmaster/farmconnect/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ids(products []models.Product) []string {
	out := make([]string, 0, len(products))
	for _, p := range products {
		out = append(out, p.ID)
	}
	return out
}

func TestQueryProducts(t *testing.T) {
	t.Parallel()

	catalog := append(SeedProducts(), models.Product{
		ID: "a9", Name: "Apples", Category: models.CategoryFruits, Price: 0.99, Seq: 4,
	})

	tests := []struct {
		name string
		q    CatalogQuery
		want []string
	}{
		{name: "no filter keeps order", q: CatalogQuery{}, want: []string{"1", "2", "3", "a9"}},
		{name: "search by name is case-insensitive", q: CatalogQuery{Search: "MILK"}, want: []string{"3"}},
		{name: "search matches category", q: CatalogQuery{Search: "veg"}, want: []string{"1", "2"}},
		{name: "category filter", q: CatalogQuery{Category: "Dairy"}, want: []string{"3"}},
		{name: "category all", q: CatalogQuery{Category: CategoryAll, Sort: SortName}, want: []string{"a9", "3", "1", "2"}},
		{name: "sort by price", q: CatalogQuery{Sort: SortPrice}, want: []string{"a9", "3", "1", "2"}},
		{name: "sort newest", q: CatalogQuery{Sort: SortNewest}, want: []string{"a9", "3", "2", "1"}},
		{name: "search and category", q: CatalogQuery{Search: "r", Category: "Vegetables", Sort: SortName}, want: []string{"1", "2"}},
		{name: "no match", q: CatalogQuery{Search: "bread"}, want: []string{}},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, ids(QueryProducts(catalog, tt.q)))
		})
	}
}

func TestQueryProducts_NewestFallsBackToReverseID(t *testing.T) {
	t.Parallel()

	catalog := []models.Product{{ID: "b"}, {ID: "c"}, {ID: "a"}}
	assert.Equal(t, []string{"c", "b", "a"}, ids(QueryProducts(catalog, CatalogQuery{Sort: SortNewest})))
	assert.Equal(t, []string{"b", "c", "a"}, ids(catalog), "input untouched")
}

func TestBuyerOrdersAndFarmerProducts(t *testing.T) {
	t.Parallel()

	orders := []models.Order{{ID: "o1", BuyerID: "ana"}, {ID: "o2", BuyerID: "bob"}, {ID: "o3", BuyerID: "ana"}}
	mine := BuyerOrders(orders, "ana")
	require.Len(t, mine, 2)
	assert.Equal(t, "o1", mine[0].ID)
	assert.Equal(t, "o3", mine[1].ID)
	assert.Empty(t, BuyerOrders(orders, "eve"))

	assert.Equal(t, []string{"1", "2"}, ids(FarmerProducts(SeedProducts(), "farmer1")))
	assert.Equal(t, []string{"3"}, ids(FarmerProducts(SeedProducts(), "farmer2")))
}

func TestConversationPartnersAndNames(t *testing.T) {
	t.Parallel()

	messages := []models.Message{
		{SenderID: "bob", ReceiverID: "farmer1"},
		{SenderID: "farmer2", ReceiverID: "bob"},
		{SenderID: "farmer1", ReceiverID: "bob"},
		{SenderID: "eve", ReceiverID: "farmer3"},
	}

	partners := ConversationPartners(messages, "bob")
	assert.Equal(t, []string{"farmer1", "farmer2"}, partners)

	products := SeedProducts()
	assert.Equal(t, "Green Valley Farm", PartnerName(products, "farmer1"))
	assert.Equal(t, "Hilltop Dairy", PartnerName(products, "farmer2"))
	assert.Equal(t, UnknownFarmer, PartnerName(products, "farmer3"))
}

func TestThread_UnorderedPair(t *testing.T) {
	t.Parallel()

	messages := []models.Message{
		{ID: "m1", SenderID: "bob", ReceiverID: "farmer1"},
		{ID: "m2", SenderID: "farmer1", ReceiverID: "bob"},
		{ID: "m3", SenderID: "farmer1", ReceiverID: "eve"},
	}
	thread := Thread(messages, "farmer1", "bob")
	require.Len(t, thread, 2)
	assert.Equal(t, "m1", thread[0].ID)
	assert.Equal(t, "m2", thread[1].ID)
}

func TestCartTotalAndCount(t *testing.T) {
	t.Parallel()

	seed := SeedProducts()
	cart := []models.CartItem{
		{Product: seed[0], CartQuantity: 2},
		{Product: seed[2], CartQuantity: 3},
	}
	assert.InDelta(t, 9.5, CartTotal(cart), 1e-9)
	assert.Equal(t, 5, CartCount(cart))
	assert.Zero(t, CartTotal(nil))
}

func TestEmailFor(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "ana@farmconnect.com", EmailFor("Ana"))
	assert.Equal(t, "mary.ann.smith@farmconnect.com", EmailFor("Mary  Ann Smith"))
}

func TestValidSort(t *testing.T) {
	t.Parallel()

	for _, s := range []string{"", "name", "price", "newest"} {
		assert.True(t, ValidSort(s), s)
	}
	assert.False(t, ValidSort("oldest"))
}

func TestIsLowStock(t *testing.T) {
	t.Parallel()

	assert.True(t, IsLowStock(models.Product{Quantity: 4}))
	assert.False(t, IsLowStock(models.Product{Quantity: 5}))
}
