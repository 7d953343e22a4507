package store

import (
	"cmp"
	"slices"
	"strings"

	"github.com/Skotchmaster/farmconnect/internal/models"
)

const (
	CategoryAll   = "All"
	UnknownFarmer = "Unknown Farmer"
)

type SortOption string

const (
	SortNone   SortOption = ""
	SortName   SortOption = "name"
	SortPrice  SortOption = "price"
	SortNewest SortOption = "newest"
)

type CatalogQuery struct {
	Search   string
	Category string
	Sort     SortOption
}

func CartTotal(items []models.CartItem) float64 {
	var total float64
	for _, item := range items {
		total += item.LineTotal()
	}
	return total
}

func CartCount(items []models.CartItem) int {
	n := 0
	for _, item := range items {
		n += item.CartQuantity
	}
	return n
}

func FindProduct(products []models.Product, id string) (models.Product, bool) {
	if idx := indexProduct(products, id); idx >= 0 {
		return products[idx], true
	}
	return models.Product{}, false
}

func FindOrder(orders []models.Order, id string) (models.Order, bool) {
	for _, o := range orders {
		if o.ID == id {
			return o, true
		}
	}
	return models.Order{}, false
}

func BuyerOrders(orders []models.Order, buyerID string) []models.Order {
	out := make([]models.Order, 0)
	for _, o := range orders {
		if o.BuyerID == buyerID {
			out = append(out, o)
		}
	}
	return out
}

func FarmerProducts(products []models.Product, farmerID string) []models.Product {
	out := make([]models.Product, 0)
	for _, p := range products {
		if p.FarmerID == farmerID {
			out = append(out, p)
		}
	}
	return out
}

// Thread returns the messages exchanged between a and b, in send order.
func Thread(messages []models.Message, a, b string) []models.Message {
	out := make([]models.Message, 0)
	for _, m := range messages {
		if (m.SenderID == a && m.ReceiverID == b) || (m.SenderID == b && m.ReceiverID == a) {
			out = append(out, m)
		}
	}
	return out
}

// ConversationPartners lists the distinct ids userID has exchanged messages
// with, in the order they first appear.
func ConversationPartners(messages []models.Message, userID string) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, m := range messages {
		var partner string
		switch userID {
		case m.SenderID:
			partner = m.ReceiverID
		case m.ReceiverID:
			partner = m.SenderID
		default:
			continue
		}
		if _, ok := seen[partner]; ok {
			continue
		}
		seen[partner] = struct{}{}
		out = append(out, partner)
	}
	return out
}

// PartnerName resolves a display name for a conversation partner from the
// farmer name on any of their products.
func PartnerName(products []models.Product, partnerID string) string {
	for _, p := range products {
		if p.FarmerID == partnerID {
			return p.FarmerName
		}
	}
	return UnknownFarmer
}

// QueryProducts filters and sorts the catalog. Search matches name or
// category case-insensitively; an empty category or "All" keeps every
// category. The input slice is not modified.
func QueryProducts(products []models.Product, q CatalogQuery) []models.Product {
	needle := strings.ToLower(q.Search)
	out := make([]models.Product, 0, len(products))
	for _, p := range products {
		matches := strings.Contains(strings.ToLower(p.Name), needle) ||
			strings.Contains(strings.ToLower(string(p.Category)), needle)
		if !matches {
			continue
		}
		if q.Category != "" && q.Category != CategoryAll && string(p.Category) != q.Category {
			continue
		}
		out = append(out, p)
	}

	switch q.Sort {
	case SortName:
		slices.SortStableFunc(out, func(a, b models.Product) int { return strings.Compare(a.Name, b.Name) })
	case SortPrice:
		slices.SortStableFunc(out, func(a, b models.Product) int { return cmp.Compare(a.Price, b.Price) })
	case SortNewest:
		slices.SortStableFunc(out, func(a, b models.Product) int {
			if c := cmp.Compare(b.Seq, a.Seq); c != 0 {
				return c
			}
			return strings.Compare(b.ID, a.ID)
		})
	}
	return out
}

func ValidSort(s string) bool {
	switch SortOption(s) {
	case SortNone, SortName, SortPrice, SortNewest:
		return true
	}
	return false
}

// LowStockThreshold is the stock level below which a farmer's listing is
// flagged.
const LowStockThreshold = 5

func IsLowStock(p models.Product) bool {
	return p.Quantity < LowStockThreshold
}
