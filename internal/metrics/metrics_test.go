package metrics

import (
	"testing"

	"github.com/Skotchmaster/farmconnect/internal/logging"
	"github.com/Skotchmaster/farmconnect/internal/models"
	"github.com/Skotchmaster/farmconnect/internal/store"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCollector_TracksStore(t *testing.T) {
	t.Parallel()

	c := New(prometheus.NewRegistry())
	s := store.New(store.WithLogger(logging.Discard()))
	c.Attach(s)

	assert.Equal(t, 3.0, testutil.ToFloat64(c.stateItems.WithLabelValues("products")))
	assert.Equal(t, 0.0, testutil.ToFloat64(c.stateVersion))

	s.Login(models.RoleBuyer, "Ana")
	carrots, _ := store.FindProduct(s.Snapshot().Products, "1")
	s.AddToCart(carrots)
	s.AddToCart(carrots)

	assert.Equal(t, 2.0, testutil.ToFloat64(c.actionsTotal.WithLabelValues(store.ActionAddToCart)))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.stateItems.WithLabelValues("cart")))
	assert.Equal(t, 5.0, testutil.ToFloat64(c.cartValue))

	s.PlaceOrder()
	assert.Equal(t, 1.0, testutil.ToFloat64(c.stateItems.WithLabelValues("orders")))
	assert.Equal(t, 0.0, testutil.ToFloat64(c.cartValue))
	assert.Equal(t, 4.0, testutil.ToFloat64(c.stateVersion))
}

func TestCollector_NoOpActionsNotCounted(t *testing.T) {
	t.Parallel()

	c := New(prometheus.NewRegistry())
	s := store.New(store.WithLogger(logging.Discard()))
	c.Attach(s)

	s.DeleteProduct("missing")
	s.PlaceOrder()
	assert.Equal(t, 0, testutil.CollectAndCount(c.actionsTotal))
}

func TestCollector_Websockets(t *testing.T) {
	t.Parallel()

	c := New(prometheus.NewRegistry())
	c.WebsocketOpened()
	c.WebsocketOpened()
	c.WebsocketClosed()
	assert.Equal(t, 1.0, testutil.ToFloat64(c.wsConnections))
}
