package store

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/Skotchmaster/farmconnect/internal/models"
)

var whitespaceRun = regexp.MustCompile(`\s+`)

// EmailFor derives the login email from a display name.
func EmailFor(name string) string {
	return whitespaceRun.ReplaceAllString(strings.ToLower(name), ".") + "@" + EmailDomain
}

func (s *Store) Login(role models.Role, name string) models.User {
	user := models.User{
		ID:       s.newID(),
		Name:     name,
		Email:    EmailFor(name),
		Location: DefaultUserLocation,
		Role:     role,
	}
	s.update(ActionLogin, func(next *State) Slice {
		u := user
		next.User = &u
		return SliceUser
	})
	return user
}

func (s *Store) Logout() {
	s.update(ActionLogout, func(next *State) Slice {
		next.User = nil
		next.Cart = []models.CartItem{}
		return SliceUser | SliceCart
	})
}

// UpdateUser replaces the active user record as given. Nothing is validated.
func (s *Store) UpdateUser(user models.User) {
	s.update(ActionUpdateUser, func(next *State) Slice {
		u := user
		next.User = &u
		return SliceUser
	})
}

// AddProduct stores p under a fresh id. p.ID and p.Seq are ignored.
func (s *Store) AddProduct(p models.Product) models.Product {
	var created models.Product
	s.update(ActionAddProduct, func(next *State) Slice {
		s.seq++
		created = p
		created.ID = s.newID()
		created.Seq = s.seq
		products := make([]models.Product, 0, len(next.Products)+1)
		products = append(products, next.Products...)
		next.Products = append(products, created)
		return SliceProducts
	})
	return created
}

// DeleteProduct removes the product with id. Cart items and orders holding
// a copy of it are left alone.
func (s *Store) DeleteProduct(id string) bool {
	_, changed := s.update(ActionDeleteProduct, func(next *State) Slice {
		idx := indexProduct(next.Products, id)
		if idx < 0 {
			return 0
		}
		products := make([]models.Product, 0, len(next.Products)-1)
		products = append(products, next.Products[:idx]...)
		next.Products = append(products, next.Products[idx+1:]...)
		return SliceProducts
	})
	return changed
}

// UpdateProduct replaces the product stored under id. The stored id and
// creation sequence win over whatever p carries.
func (s *Store) UpdateProduct(id string, p models.Product) bool {
	_, changed := s.update(ActionUpdateProduct, func(next *State) Slice {
		idx := indexProduct(next.Products, id)
		if idx < 0 {
			return 0
		}
		products := make([]models.Product, len(next.Products))
		copy(products, next.Products)
		p.ID = id
		p.Seq = products[idx].Seq
		products[idx] = p
		next.Products = products
		return SliceProducts
	})
	return changed
}

// AddToCart bumps the quantity of the matching cart item, or adds a copy of
// p with quantity 1. Fields of an item already in the cart are not refreshed.
func (s *Store) AddToCart(p models.Product) {
	s.update(ActionAddToCart, func(next *State) Slice {
		next.Cart = mergeCart(next.Cart, []models.CartItem{{Product: p, CartQuantity: 1}})
		return SliceCart
	})
}

func (s *Store) RemoveFromCart(id string) bool {
	_, changed := s.update(ActionRemoveFromCart, func(next *State) Slice {
		idx := indexCart(next.Cart, id)
		if idx < 0 {
			return 0
		}
		if next.Cart[idx].CartQuantity > 1 {
			cart := cloneCart(next.Cart)
			cart[idx].CartQuantity--
			next.Cart = cart
			return SliceCart
		}
		cart := make([]models.CartItem, 0, len(next.Cart)-1)
		cart = append(cart, next.Cart[:idx]...)
		next.Cart = append(cart, next.Cart[idx+1:]...)
		return SliceCart
	})
	return changed
}

// PlaceOrder turns the cart into a pending order for the active user. With
// no user or an empty cart it does nothing and reports false.
func (s *Store) PlaceOrder() (models.Order, bool) {
	order, _, ok := s.Checkout()
	return order, ok
}

// Checkout is PlaceOrder that also reports queued=true when the
// connectivity probe said offline and the order went to OfflineOrders.
func (s *Store) Checkout() (order models.Order, queued bool, ok bool) {
	online := s.online.Online()
	action := ActionPlaceOrder
	if !online {
		action = ActionQueueOrder
	}

	_, ok = s.update(action, func(next *State) Slice {
		if next.User == nil || len(next.Cart) == 0 {
			return 0
		}
		items := cloneCart(next.Cart)
		order = models.Order{
			ID:      s.newID(),
			BuyerID: next.User.ID,
			Items:   items,
			Total:   CartTotal(items),
			Status:  models.OrderStatusPending,
			Date:    s.now().UTC(),
		}
		next.Cart = []models.CartItem{}
		if online {
			next.Orders = appendOrder(next.Orders, order)
			return SliceOrders | SliceCart
		}
		next.OfflineOrders = appendOrder(next.OfflineOrders, order)
		return SliceOfflineOrders | SliceCart
	})
	if !ok {
		return models.Order{}, false, false
	}
	return order, !online, true
}

// UpdateOrderStatus sets the status of the order with orderID. Any status
// value is accepted.
func (s *Store) UpdateOrderStatus(orderID string, status models.OrderStatus) bool {
	_, changed := s.update(ActionUpdateOrderStatus, func(next *State) Slice {
		idx := -1
		for i := range next.Orders {
			if next.Orders[i].ID == orderID {
				idx = i
				break
			}
		}
		if idx < 0 {
			return 0
		}
		orders := make([]models.Order, len(next.Orders))
		copy(orders, next.Orders)
		orders[idx].Status = status
		next.Orders = orders
		return SliceOrders
	})
	return changed
}

// ReorderItems merges items into the cart, adding each item's quantity to
// the matching entry or inserting a copy of it.
func (s *Store) ReorderItems(items []models.CartItem) {
	s.update(ActionReorderItems, func(next *State) Slice {
		if len(items) == 0 {
			return 0
		}
		next.Cart = mergeCart(next.Cart, items)
		return SliceCart
	})
}

func (s *Store) SendMessage(receiverID, text string) (models.Message, bool) {
	var msg models.Message
	_, changed := s.update(ActionSendMessage, func(next *State) Slice {
		if next.User == nil {
			return 0
		}
		msg = models.Message{
			ID:         s.newID(),
			SenderID:   next.User.ID,
			ReceiverID: receiverID,
			Text:       text,
			Timestamp:  s.now().UTC(),
		}
		messages := make([]models.Message, 0, len(next.Messages)+1)
		messages = append(messages, next.Messages...)
		next.Messages = append(messages, msg)
		return SliceMessages
	})
	return msg, changed
}

// SyncOfflineOrders hands the queued orders to the configured syncer and
// drops them from the queue once it accepts them. It returns how many
// orders left the queue.
func (s *Store) SyncOfflineOrders(ctx context.Context) (int, error) {
	batch := s.Snapshot().OfflineOrders
	if len(batch) == 0 {
		return 0, nil
	}

	if err := s.syncer.Sync(ctx, batch); err != nil {
		s.log.ErrorContext(ctx, "offline_sync_error", "component", "store", "queued", len(batch), "error", err)
		return 0, fmt.Errorf("sync offline orders: %w", err)
	}

	sent := make(map[string]struct{}, len(batch))
	for _, o := range batch {
		sent[o.ID] = struct{}{}
	}
	removed := 0
	s.update(ActionSyncOfflineOrders, func(next *State) Slice {
		rest := make([]models.Order, 0, len(next.OfflineOrders))
		for _, o := range next.OfflineOrders {
			if _, ok := sent[o.ID]; ok {
				continue
			}
			rest = append(rest, o)
		}
		removed = len(next.OfflineOrders) - len(rest)
		if removed == 0 {
			return 0
		}
		next.OfflineOrders = rest
		return SliceOfflineOrders
	})
	return removed, nil
}

// Rehydrate installs a cart read back from durable storage, replacing the
// in-memory one.
func (s *Store) Rehydrate(cart []models.CartItem) {
	s.update(ActionRehydrate, func(next *State) Slice {
		next.Cart = cloneCart(cart)
		return SliceCart
	})
}

func indexProduct(products []models.Product, id string) int {
	for i := range products {
		if products[i].ID == id {
			return i
		}
	}
	return -1
}

func indexCart(cart []models.CartItem, id string) int {
	for i := range cart {
		if cart[i].ID == id {
			return i
		}
	}
	return -1
}

func cloneCart(cart []models.CartItem) []models.CartItem {
	out := make([]models.CartItem, len(cart))
	copy(out, cart)
	return out
}

func appendOrder(orders []models.Order, o models.Order) []models.Order {
	out := make([]models.Order, 0, len(orders)+1)
	out = append(out, orders...)
	return append(out, o)
}

func mergeCart(cart, items []models.CartItem) []models.CartItem {
	out := cloneCart(cart)
	for _, item := range items {
		if idx := indexCart(out, item.ID); idx >= 0 {
			out[idx].CartQuantity += item.CartQuantity
			continue
		}
		out = append(out, item)
	}
	return out
}
