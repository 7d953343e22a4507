// Package metrics exposes Prometheus metrics fed by store changes.
package metrics

import (
	"github.com/Skotchmaster/farmconnect/internal/store"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "farmconnect"

type Collector struct {
	actionsTotal  *prometheus.CounterVec
	stateItems    *prometheus.GaugeVec
	cartValue     prometheus.Gauge
	stateVersion  prometheus.Gauge
	wsConnections prometheus.Gauge
}

// New registers the collector's metrics with reg. Pass a fresh
// prometheus.NewRegistry() in tests.
func New(reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)
	return &Collector{
		actionsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_actions_total",
			Help:      "Store actions that produced a new snapshot",
		}, []string{"action"}),
		stateItems: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "store_items",
			Help:      "Entries per state slice in the latest snapshot",
		}, []string{"slice"}),
		cartValue: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "cart_value",
			Help:      "Total price of the current cart",
		}),
		stateVersion: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "store_version",
			Help:      "Version of the latest snapshot",
		}),
		wsConnections: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "websocket_connections",
			Help:      "Open snapshot websocket connections",
		}),
	}
}

// Attach records s's current state and every later change.
func (c *Collector) Attach(s *store.Store) func() {
	c.observeState(s.Snapshot())
	return s.Subscribe(func(ch store.Change) {
		c.actionsTotal.WithLabelValues(ch.Action).Inc()
		c.observeState(ch.State)
	})
}

func (c *Collector) observeState(st store.State) {
	c.stateVersion.Set(float64(st.Version))
	c.stateItems.WithLabelValues("products").Set(float64(len(st.Products)))
	c.stateItems.WithLabelValues("messages").Set(float64(len(st.Messages)))
	c.stateItems.WithLabelValues("orders").Set(float64(len(st.Orders)))
	c.stateItems.WithLabelValues("cart").Set(float64(store.CartCount(st.Cart)))
	c.stateItems.WithLabelValues("offline_orders").Set(float64(len(st.OfflineOrders)))
	c.cartValue.Set(store.CartTotal(st.Cart))
}

func (c *Collector) WebsocketOpened() { c.wsConnections.Inc() }
func (c *Collector) WebsocketClosed() { c.wsConnections.Dec() }
