// Package persist keeps the cart slice of the store in durable storage.
//
// Only the cart survives a restart. The stored record is a JSON document
// {"cart": [...]}; fields missing from it leave the in-memory defaults in
// place when it is read back.
package persist

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Skotchmaster/farmconnect/internal/models"
	"github.com/Skotchmaster/farmconnect/internal/store"
)

const flushTimeout = 5 * time.Second

type Document struct {
	Cart []models.CartItem `json:"cart"`
}

// Partialize selects the persisted part of a snapshot.
func Partialize(st store.State) Document {
	cart := st.Cart
	if cart == nil {
		cart = []models.CartItem{}
	}
	return Document{Cart: cart}
}

func Encode(doc Document) ([]byte, error) {
	return json.Marshal(doc)
}

// Decode parses a stored document. present reports whether the cart field
// was in it at all.
func Decode(data []byte) (cart []models.CartItem, present bool, err error) {
	var raw struct {
		Cart *[]models.CartItem `json:"cart"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, false, fmt.Errorf("decode persisted state: %w", err)
	}
	if raw.Cart == nil {
		return nil, false, nil
	}
	return *raw.Cart, true, nil
}

type pendingWrite struct {
	version uint64
	doc     Document
}

// Adapter mirrors the store's cart into a Storage record. Writes are
// queued by a store listener and performed by the goroutine started with
// Start; only the newest queued cart is written.
type Adapter struct {
	storage Storage
	name    string
	log     *slog.Logger

	mu          sync.Mutex
	pending     *pendingWrite
	lastWritten uint64

	wake   chan struct{}
	closed chan struct{}
}

func NewAdapter(storage Storage, name string, logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Adapter{
		storage: storage,
		name:    name,
		log:     logger.With("component", "persist", "record", name),
		wake:    make(chan struct{}, 1),
		closed:  make(chan struct{}),
	}
}

// Load reads the stored cart without touching any store.
func (a *Adapter) Load(ctx context.Context) ([]models.CartItem, bool, error) {
	data, err := a.storage.GetItem(ctx, a.name)
	if err != nil {
		return nil, false, fmt.Errorf("read %s: %w", a.name, err)
	}
	if data == nil {
		return nil, false, nil
	}
	return Decode(data)
}

// Hydrate merges the stored cart into s. A missing record or a document
// without a cart leaves s untouched.
func (a *Adapter) Hydrate(ctx context.Context, s *store.Store) error {
	cart, ok, err := a.Load(ctx)
	if err != nil {
		return err
	}
	if !ok {
		a.log.InfoContext(ctx, "hydrate_skipped", "reason", "no persisted cart")
		return nil
	}
	s.Rehydrate(cart)
	a.log.InfoContext(ctx, "hydrate_success", "items", len(cart))
	return nil
}

// HydrateAsync runs Hydrate in the background. Until it completes readers
// see the store's empty cart.
func (a *Adapter) HydrateAsync(ctx context.Context, s *store.Store) <-chan error {
	done := make(chan error, 1)
	go func() {
		err := a.Hydrate(ctx, s)
		if err != nil {
			a.log.ErrorContext(ctx, "hydrate_error", "error", err)
		}
		done <- err
		close(done)
	}()
	return done
}

// Attach subscribes the adapter to s and returns the unsubscribe func.
func (a *Adapter) Attach(s *store.Store) func() {
	return s.Subscribe(a.observe)
}

func (a *Adapter) observe(ch store.Change) {
	if !ch.Touched.Has(store.SliceCart) || ch.Action == store.ActionRehydrate {
		return
	}
	a.mu.Lock()
	if a.pending == nil || ch.State.Version > a.pending.version {
		a.pending = &pendingWrite{version: ch.State.Version, doc: Partialize(ch.State)}
	}
	a.mu.Unlock()

	select {
	case a.wake <- struct{}{}:
	default:
	}
}

// Start runs the writer loop until ctx is cancelled. The last queued cart
// is written before the loop exits.
func (a *Adapter) Start(ctx context.Context) {
	go func() {
		defer close(a.closed)
		for {
			select {
			case <-ctx.Done():
				flushCtx, cancel := context.WithTimeout(context.Background(), flushTimeout)
				if err := a.Flush(flushCtx); err != nil {
					a.log.Error("persist_final_flush_error", "error", err)
				}
				cancel()
				return
			case <-a.wake:
				if err := a.Flush(ctx); err != nil {
					a.log.Warn("persist_write_error", "error", err)
				}
			}
		}
	}()
}

func (a *Adapter) WaitClosed() { <-a.closed }

// Flush writes the queued cart, if it is newer than the last one written.
func (a *Adapter) Flush(ctx context.Context) error {
	a.mu.Lock()
	p := a.pending
	a.pending = nil
	if p == nil || p.version <= a.lastWritten {
		a.mu.Unlock()
		return nil
	}
	a.mu.Unlock()

	data, err := Encode(p.doc)
	if err != nil {
		return fmt.Errorf("encode persisted state: %w", err)
	}
	if err := a.storage.SetItem(ctx, a.name, data); err != nil {
		a.requeue(p)
		return fmt.Errorf("write %s: %w", a.name, err)
	}

	a.mu.Lock()
	if p.version > a.lastWritten {
		a.lastWritten = p.version
	}
	a.mu.Unlock()
	a.log.Debug("persist_write_success", "version", p.version, "items", len(p.doc.Cart))
	return nil
}

// requeue puts a failed write back unless a newer cart is already queued.
func (a *Adapter) requeue(p *pendingWrite) {
	a.mu.Lock()
	if a.pending == nil || a.pending.version < p.version {
		a.pending = p
	}
	a.mu.Unlock()
}
