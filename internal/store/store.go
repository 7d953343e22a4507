// Package store is the application state container. It owns every entity
// collection, applies the actions that mutate them and notifies subscribers
// with the resulting snapshot.
//
// A snapshot is never modified after it has been published: every action
// builds fresh slices for the parts of the state it changes. Callers must
// treat the slices they read from a snapshot as read-only.
package store

import (
	"log/slog"
	"sync"
	"time"

	"github.com/Skotchmaster/farmconnect/internal/models"
	"github.com/Skotchmaster/farmconnect/internal/offline"
	"github.com/google/uuid"
)

type State struct {
	Version       uint64            `json:"version"`
	User          *models.User      `json:"user"`
	Products      []models.Product  `json:"products"`
	Messages      []models.Message  `json:"messages"`
	Orders        []models.Order    `json:"orders"`
	Cart          []models.CartItem `json:"cart"`
	OfflineOrders []models.Order    `json:"offlineOrders"`
}

// Slice is a bit set naming the parts of State an action replaced.
type Slice uint8

const (
	SliceUser Slice = 1 << iota
	SliceProducts
	SliceMessages
	SliceOrders
	SliceCart
	SliceOfflineOrders
)

func (s Slice) Has(other Slice) bool { return s&other != 0 }

const (
	ActionLogin             = "login"
	ActionLogout            = "logout"
	ActionUpdateUser        = "update_user"
	ActionAddProduct        = "add_product"
	ActionDeleteProduct     = "delete_product"
	ActionUpdateProduct     = "update_product"
	ActionAddToCart         = "add_to_cart"
	ActionRemoveFromCart    = "remove_from_cart"
	ActionPlaceOrder        = "place_order"
	ActionQueueOrder        = "queue_offline_order"
	ActionSyncOfflineOrders = "sync_offline_orders"
	ActionUpdateOrderStatus = "update_order_status"
	ActionReorderItems      = "reorder_items"
	ActionSendMessage       = "send_message"
	ActionRehydrate         = "rehydrate"
)

// Change is delivered to listeners after every action that altered state.
type Change struct {
	Action  string
	Touched Slice
	State   State
	Prev    State
}

type Listener func(Change)

type subscription struct {
	id uint64
	fn Listener
}

type Store struct {
	mu        sync.Mutex
	state     State
	seq       uint64
	listeners []subscription
	nextSubID uint64

	now    func() time.Time
	newID  func() string
	online offline.Connectivity
	syncer offline.Syncer
	log    *slog.Logger
}

type Option func(*Store)

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func WithIDGenerator(gen func() string) Option {
	return func(s *Store) { s.newID = gen }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.log = l }
}

func WithConnectivity(c offline.Connectivity) Option {
	return func(s *Store) { s.online = c }
}

func WithOfflineSyncer(sy offline.Syncer) Option {
	return func(s *Store) { s.syncer = sy }
}

// WithSeed replaces the built-in starter catalog.
func WithSeed(products []models.Product) Option {
	return func(s *Store) {
		s.state.Products = append([]models.Product(nil), products...)
	}
}

func New(opts ...Option) *Store {
	s := &Store{
		state: State{
			Products:      SeedProducts(),
			Messages:      []models.Message{},
			Orders:        []models.Order{},
			Cart:          []models.CartItem{},
			OfflineOrders: []models.Order{},
		},
		now:    time.Now,
		newID:  uuid.NewString,
		online: offline.AlwaysOnline,
		log:    slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.syncer == nil {
		s.syncer = offline.Discard{Logger: s.log}
	}
	for _, p := range s.state.Products {
		if p.Seq > s.seq {
			s.seq = p.Seq
		}
	}
	return s
}

func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Subscribe registers fn for every subsequent change and returns a func
// that removes it. Listeners run on the goroutine that performed the
// action, after the store lock is released, in subscription order.
func (s *Store) Subscribe(fn Listener) func() {
	s.mu.Lock()
	s.nextSubID++
	id := s.nextSubID
	s.listeners = append(s.listeners, subscription{id: id, fn: fn})
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			for i, sub := range s.listeners {
				if sub.id == id {
					s.listeners = append(s.listeners[:i:i], s.listeners[i+1:]...)
					return
				}
			}
		})
	}
}

// update runs fn against a shallow copy of the current state. fn reports
// which slices it replaced; zero means nothing changed and no snapshot is
// published. fn runs under the store lock and must not call back into s.
func (s *Store) update(action string, fn func(next *State) Slice) (State, bool) {
	s.mu.Lock()
	prev := s.state
	next := prev
	touched := fn(&next)
	if touched == 0 {
		s.mu.Unlock()
		return prev, false
	}
	next.Version = prev.Version + 1
	s.state = next
	subs := make([]subscription, len(s.listeners))
	copy(subs, s.listeners)
	s.mu.Unlock()

	s.log.Debug("store_action", "component", "store", "action", action, "version", next.Version)

	ch := Change{Action: action, Touched: touched, State: next, Prev: prev}
	for _, sub := range subs {
		sub.fn(ch)
	}
	return next, true
}
