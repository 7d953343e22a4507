package mykafka

import (
	"context"
	"log/slog"
	"time"

	"github.com/Skotchmaster/farmconnect/internal/models"
	"github.com/Skotchmaster/farmconnect/internal/store"
)

const publishTimeout = 5 * time.Second

type Publisher interface {
	PublishEvent(ctx context.Context, key string, event map[string]any) error
}

// EventFor describes a store change as a domain event. The key is the id
// of the acting user, or "anonymous". Rehydration produces no event.
func EventFor(ch store.Change) (key string, event map[string]any, ok bool) {
	st := ch.State
	key = "anonymous"
	if u := actingUser(ch); u != nil {
		key = u.ID
	}

	event = map[string]any{
		"version": st.Version,
		"userID":  key,
	}

	switch ch.Action {
	case store.ActionLogin:
		event["type"] = "user_logged_in"
		event["role"] = st.User.Role
		event["name"] = st.User.Name
	case store.ActionLogout:
		event["type"] = "user_logged_out"
	case store.ActionUpdateUser:
		event["type"] = "user_updated"
	case store.ActionAddProduct:
		p := st.Products[len(st.Products)-1]
		event["type"] = "product_created"
		event["productID"] = p.ID
		event["name"] = p.Name
		event["farmerID"] = p.FarmerID
	case store.ActionUpdateProduct:
		event["type"] = "product_updated"
		event["productID"] = changedProductID(ch.Prev.Products, st.Products)
	case store.ActionDeleteProduct:
		event["type"] = "product_deleted"
		event["productID"] = removedProductID(ch.Prev.Products, st.Products)
	case store.ActionAddToCart, store.ActionRemoveFromCart, store.ActionReorderItems:
		event["type"] = map[string]string{
			store.ActionAddToCart:      "cart_item_added",
			store.ActionRemoveFromCart: "cart_item_removed",
			store.ActionReorderItems:   "cart_reordered",
		}[ch.Action]
		event["items"] = store.CartCount(st.Cart)
		event["total"] = store.CartTotal(st.Cart)
	case store.ActionPlaceOrder:
		o := st.Orders[len(st.Orders)-1]
		event["type"] = "order_placed"
		event["orderID"] = o.ID
		event["total"] = o.Total
		event["items"] = len(o.Items)
	case store.ActionQueueOrder:
		o := st.OfflineOrders[len(st.OfflineOrders)-1]
		event["type"] = "order_queued_offline"
		event["orderID"] = o.ID
		event["total"] = o.Total
	case store.ActionSyncOfflineOrders:
		event["type"] = "offline_orders_synced"
		event["synced"] = len(ch.Prev.OfflineOrders) - len(st.OfflineOrders)
	case store.ActionUpdateOrderStatus:
		id, status := changedOrder(ch.Prev.Orders, st.Orders)
		event["type"] = "order_status_updated"
		event["orderID"] = id
		event["status"] = status
	case store.ActionSendMessage:
		m := st.Messages[len(st.Messages)-1]
		event["type"] = "message_sent"
		event["messageID"] = m.ID
		event["receiverID"] = m.ReceiverID
	default:
		return "", nil, false
	}
	return key, event, true
}

// Attach publishes an event for every change of s and returns the
// unsubscribe func. Publish failures are logged only.
func Attach(s *store.Store, pub Publisher, logger *slog.Logger) func() {
	if logger == nil {
		logger = slog.Default()
	}
	l := logger.With("component", "kafka_bridge")
	return s.Subscribe(func(ch store.Change) {
		key, event, ok := EventFor(ch)
		if !ok {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()
		if err := pub.PublishEvent(ctx, key, event); err != nil {
			l.Error("kafka_publish_error", "type", event["type"], "error", err)
		}
	})
}

func actingUser(ch store.Change) *models.User {
	if ch.State.User != nil {
		return ch.State.User
	}
	return ch.Prev.User
}

func removedProductID(prev, next []models.Product) string {
	for i := range prev {
		if i >= len(next) || prev[i].ID != next[i].ID {
			return prev[i].ID
		}
	}
	return ""
}

func changedProductID(prev, next []models.Product) string {
	for i := range next {
		if i < len(prev) && prev[i] != next[i] {
			return next[i].ID
		}
	}
	return ""
}

func changedOrder(prev, next []models.Order) (string, models.OrderStatus) {
	for i := range next {
		if i < len(prev) && prev[i].Status != next[i].Status {
			return next[i].ID, next[i].Status
		}
	}
	return "", ""
}
