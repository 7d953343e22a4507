package httpserver

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/farmconnect/internal/logging"
	"github.com/Skotchmaster/farmconnect/internal/metrics"
	"github.com/Skotchmaster/farmconnect/internal/ministry"
	"github.com/Skotchmaster/farmconnect/internal/models"
	"github.com/Skotchmaster/farmconnect/internal/recipe"
	"github.com/Skotchmaster/farmconnect/internal/service"
	"github.com/Skotchmaster/farmconnect/internal/store"
	"github.com/Skotchmaster/farmconnect/internal/transport"
)

type testEnv struct {
	T     *testing.T
	E     *echo.Echo
	Store *store.Store
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	s := store.New(store.WithLogger(logging.Discard()))
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	m.Attach(s)

	e := echo.New()
	Register(e, &Deps{
		Handler: &FarmHTTP{
			Svc: &service.FarmService{
				Store:    s,
				Recipes:  recipe.NewGeminiClient("", "", "", logging.Discard()),
				Ministry: ministry.NewPlaceholder(logging.Discard(), 1),
			},
			Store:   s,
			Metrics: m,
		},
		Gatherer: reg,
	})
	return &testEnv{T: t, E: e, Store: s}
}

func (env *testEnv) do(method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(env.T, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	env.E.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func (env *testEnv) login(role models.Role, name string) models.User {
	rec := env.do(http.MethodPost, "/session/login", transport.LoginRequest{Role: role, Name: name})
	require.Equal(env.T, http.StatusOK, rec.Code, rec.Body.String())
	return decode[models.User](env.T, rec)
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)
	assert.Equal(t, http.StatusOK, env.do(http.MethodGet, "/health/live", nil).Code)
	assert.Equal(t, http.StatusOK, env.do(http.MethodGet, "/health/ready", nil).Code)
}

func TestLogin(t *testing.T) {
	env := newTestEnv(t)

	assert.Equal(t, http.StatusConflict, env.do(http.MethodGet, "/me", nil).Code)

	rec := env.do(http.MethodPost, "/session/login", map[string]string{"role": "admin", "name": "Ana"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	user := env.login(models.RoleBuyer, "Ana Maria")
	assert.Equal(t, "ana.maria@farmconnect.com", user.Email)

	rec = env.do(http.MethodPut, "/me", transport.UpdateUserRequest{Name: "Ana", Email: "ana@x.com", Location: "Town"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, user.ID, decode[models.User](t, rec).ID)

	assert.Equal(t, http.StatusNoContent, env.do(http.MethodPost, "/session/logout", nil).Code)
	assert.Nil(t, env.Store.Snapshot().User)
}

func TestProducts(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodGet, "/products?category=Vegetables&sort=price", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var list struct {
		Data []models.Product `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	require.Len(t, list.Data, 2)
	assert.Equal(t, "1", list.Data[0].ID)

	assert.Equal(t, http.StatusBadRequest, env.do(http.MethodGet, "/products?sort=rating", nil).Code)
	assert.Equal(t, http.StatusNotFound, env.do(http.MethodGet, "/products/nope", nil).Code)

	assert.Equal(t, http.StatusConflict, env.do(http.MethodPost, "/products", transport.ProductRequest{Name: "Apples"}).Code)

	farmer := env.login(models.RoleFarmer, "Orchard")
	rec = env.do(http.MethodPost, "/products", transport.ProductRequest{Name: "Apples", Category: models.CategoryFruits, Price: 1.2, Quantity: 2})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	created := decode[models.Product](t, rec)
	assert.Equal(t, farmer.ID, created.FarmerID)

	assert.Equal(t, http.StatusBadRequest, env.do(http.MethodPost, "/products", transport.ProductRequest{Name: "Bad", Price: -1}).Code)

	rec = env.do(http.MethodGet, "/farmer/products", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	mine := decode[[]transport.FarmerProduct](t, rec)
	require.Len(t, mine, 1)
	assert.True(t, mine[0].LowStock)

	rec = env.do(http.MethodPut, "/products/"+created.ID, transport.ProductRequest{Name: "Red Apples", Category: models.CategoryFruits, Price: 1.5, Quantity: 10})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Red Apples", decode[models.Product](t, rec).Name)

	assert.Equal(t, http.StatusNoContent, env.do(http.MethodDelete, "/products/"+created.ID, nil).Code)
	assert.Equal(t, http.StatusNotFound, env.do(http.MethodDelete, "/products/"+created.ID, nil).Code)
}

func TestRecipe(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodGet, "/products/1/recipe", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, recipe.MockRecipe("Organic Carrots"), decode[transport.RecipeResponse](t, rec).Recipe)
}

func TestCartAndOrders(t *testing.T) {
	env := newTestEnv(t)

	assert.Equal(t, http.StatusConflict, env.do(http.MethodPost, "/orders", nil).Code)
	env.login(models.RoleBuyer, "Ana")
	assert.Equal(t, http.StatusConflict, env.do(http.MethodPost, "/orders", nil).Code)

	assert.Equal(t, http.StatusNotFound, env.do(http.MethodPost, "/cart", transport.AddToCartRequest{ProductID: "x"}).Code)
	assert.Equal(t, http.StatusBadRequest, env.do(http.MethodPost, "/cart", map[string]string{}).Code)

	for i := 0; i < 2; i++ {
		require.Equal(t, http.StatusOK, env.do(http.MethodPost, "/cart", transport.AddToCartRequest{ProductID: "1"}).Code)
	}
	rec := env.do(http.MethodGet, "/cart/total", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"count":2,"total":5}`, rec.Body.String())

	rec = env.do(http.MethodPost, "/orders", nil)
	require.Equal(t, http.StatusCreated, rec.Code)
	order := decode[models.Order](t, rec)
	assert.Equal(t, 5.0, order.Total)
	assert.Equal(t, models.OrderStatusPending, order.Status)

	cart := decode[transport.CartResponse](t, env.do(http.MethodGet, "/cart", nil))
	assert.Empty(t, cart.Items)

	rec = env.do(http.MethodPatch, "/orders/"+order.ID+"/status", transport.UpdateOrderStatusRequest{Status: models.OrderStatusDelivered})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.OrderStatusDelivered, decode[models.Order](t, rec).Status)
	assert.Equal(t, http.StatusBadRequest, env.do(http.MethodPatch, "/orders/"+order.ID+"/status", map[string]string{"status": "lost"}).Code)

	rec = env.do(http.MethodPost, "/orders/"+order.ID+"/reorder", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2, decode[transport.CartResponse](t, rec).Count)

	rec = env.do(http.MethodDelete, "/cart/1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, decode[transport.CartResponse](t, rec).Count)

	orders := decode[[]models.Order](t, env.do(http.MethodGet, "/orders", nil))
	assert.Len(t, orders, 1)

	rec = env.do(http.MethodPost, "/orders/sync", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"synced":0}`, rec.Body.String())
}

func TestMessages(t *testing.T) {
	env := newTestEnv(t)

	env.login(models.RoleBuyer, "Bob")
	rec := env.do(http.MethodPost, "/messages", transport.SendMessageRequest{ReceiverID: "farmer2", Text: "Is the milk fresh?"})
	require.Equal(t, http.StatusCreated, rec.Code)

	thread := decode[[]models.Message](t, env.do(http.MethodGet, "/messages/farmer2", nil))
	require.Len(t, thread, 1)

	convs := decode[[]transport.Conversation](t, env.do(http.MethodGet, "/conversations", nil))
	require.Len(t, convs, 1)
	assert.Equal(t, "Hilltop Dairy", convs[0].PartnerName)
}

func TestMinistry(t *testing.T) {
	env := newTestEnv(t)

	assert.Equal(t, http.StatusNotFound, env.do(http.MethodGet, "/ministry/farmers/123", nil).Code)

	rec := env.do(http.MethodPost, "/ministry/products/1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasPrefix(decode[ministry.Product](t, rec).OriginCertificate, "CERT-"))
}

func TestMetricsEndpoint(t *testing.T) {
	env := newTestEnv(t)
	env.login(models.RoleBuyer, "Ana")

	rec := env.do(http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `farmconnect_store_actions_total{action="login"} 1`)
}

func TestWebsocketStreamsSnapshots(t *testing.T) {
	env := newTestEnv(t)
	srv := httptest.NewServer(env.E)
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/ws", nil)
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var first SnapshotMessage
	require.NoError(t, conn.ReadJSON(&first))
	assert.Equal(t, "snapshot", first.Action)
	assert.Len(t, first.State.Products, 3)

	env.Store.Login(models.RoleBuyer, "Ana")

	var next SnapshotMessage
	require.NoError(t, conn.ReadJSON(&next))
	assert.Equal(t, store.ActionLogin, next.Action)
	assert.Greater(t, next.Version, first.Version)
	require.NotNil(t, next.State.User)
	assert.Equal(t, "Ana", next.State.User.Name)
}

func TestWebsocketRejectsForeignOrigin(t *testing.T) {
	env := newTestEnv(t)
	srv := httptest.NewServer(env.E)
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"

	_, resp, err := websocket.DefaultDialer.Dial(wsURL, http.Header{"Origin": []string{"http://evil.example"}})
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	conn, _, err := websocket.DefaultDialer.Dial(wsURL, http.Header{"Origin": []string{srv.URL}})
	require.NoError(t, err)
	conn.Close()
}
