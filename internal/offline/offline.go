// Package offline holds the collaborators behind the offline order queue:
// a connectivity probe deciding where a placed order goes, and a Syncer
// that flushes queued orders once the device is back online.
package offline

import (
	"context"
	"log/slog"

	"github.com/Skotchmaster/farmconnect/internal/models"
)

type Connectivity interface {
	Online() bool
}

type ConnectivityFunc func() bool

func (f ConnectivityFunc) Online() bool { return f() }

// AlwaysOnline is the default probe; there is no network detection yet.
var AlwaysOnline Connectivity = ConnectivityFunc(func() bool { return true })

// Syncer transmits queued orders. A nil error means every order in the
// batch was handed off and may be dropped from the queue.
type Syncer interface {
	Sync(ctx context.Context, orders []models.Order) error
}

type SyncerFunc func(ctx context.Context, orders []models.Order) error

func (f SyncerFunc) Sync(ctx context.Context, orders []models.Order) error { return f(ctx, orders) }

// Discard is the not-yet-implemented sync boundary. It transmits nothing
// and reports success, so the queue is cleared.
type Discard struct {
	Logger *slog.Logger
}

func (d Discard) Sync(ctx context.Context, orders []models.Order) error {
	l := d.Logger
	if l == nil {
		l = slog.Default()
	}
	ids := make([]string, 0, len(orders))
	for _, o := range orders {
		ids = append(ids, o.ID)
	}
	l.WarnContext(ctx, "offline_sync_not_implemented", "component", "offline", "dropped", len(orders), "order_ids", ids)
	return nil
}
