package httpserver

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/farmconnect/internal/logging"
	"github.com/Skotchmaster/farmconnect/internal/store"
)

const (
	wsWriteWait  = 10 * time.Second
	wsPongWait   = 60 * time.Second
	wsPingPeriod = (wsPongWait * 9) / 10
)

// CheckOrigin is left nil: browsers may only connect from the same origin,
// clients without an Origin header are accepted.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// SnapshotMessage is pushed to /ws clients. The first message after
// connecting carries action "snapshot".
type SnapshotMessage struct {
	Action  string      `json:"action"`
	Version uint64      `json:"version"`
	State   store.State `json:"state"`
}

// Subscribe streams store snapshots over a websocket. A slow client only
// ever receives the newest snapshot; intermediate ones are skipped.
func (h *FarmHTTP) Subscribe(c echo.Context) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "ws.subscribe")

	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		l.Warn("ws_upgrade_error", "error", err)
		return nil
	}
	defer conn.Close()

	if h.Metrics != nil {
		h.Metrics.WebsocketOpened()
		defer h.Metrics.WebsocketClosed()
	}

	var (
		mu      sync.Mutex
		pending *SnapshotMessage
		sent    uint64
	)
	notify := make(chan struct{}, 1)
	push := func(m SnapshotMessage) {
		mu.Lock()
		if pending == nil || m.Version >= pending.Version {
			pending = &m
		}
		mu.Unlock()
		select {
		case notify <- struct{}{}:
		default:
		}
	}
	take := func() (SnapshotMessage, bool) {
		mu.Lock()
		defer mu.Unlock()
		if pending == nil || (sent > 0 && pending.Version <= sent) {
			pending = nil
			return SnapshotMessage{}, false
		}
		m := *pending
		pending = nil
		sent = m.Version
		return m, true
	}

	unsubscribe := h.Store.Subscribe(func(ch store.Change) {
		push(SnapshotMessage{Action: ch.Action, Version: ch.State.Version, State: ch.State})
	})
	defer unsubscribe()
	st := h.Store.Snapshot()
	push(SnapshotMessage{Action: "snapshot", Version: st.Version, State: st})

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		conn.SetReadLimit(512)
		_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(wsPongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(wsPingPeriod)
	defer ticker.Stop()

	l.Info("ws_connected")
	for {
		select {
		case <-closed:
			l.Info("ws_disconnected")
			return nil
		case <-notify:
			m, ok := take()
			if !ok {
				continue
			}
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteJSON(m); err != nil {
				l.Warn("ws_write_error", "error", err)
				return nil
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return nil
			}
		}
	}
}
