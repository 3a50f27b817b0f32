package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"storefront-service/internal/auth"
	"storefront-service/internal/models"
	"storefront-service/internal/notifier"
	"storefront-service/internal/service"
	"storefront-service/internal/store/memory"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx"
)

const testOrigin = "http://localhost:5173"

type testEnv struct {
	router *gin.Engine
	mem    *memory.Store
	feed   *notifier.OrderFeed
}

type response struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

func newTestEnv(t *testing.T) *testEnv {
	gin.SetMode(gin.TestMode)

	mem := memory.New()
	catalog := service.NewCatalogService(mem, nil, 0)
	ratings := service.NewRatingService(mem, catalog)
	feed := notifier.NewOrderFeed([]string{testOrigin})

	h := NewHandler(Services{
		Catalog:   catalog,
		Carts:     service.NewCartService(mem, mem),
		Addresses: service.NewAddressService(mem),
		Orders:    service.NewOrderService(mem, mem, nil, nil, 0),
		Reviews:   service.NewReviewService(mem, mem, ratings, nil),
		Auth:      service.NewAuthService(mem, auth.NewTokenManager("test-secret", time.Hour), nil, "admin@shop.test"),
	}, feed, []string{testOrigin}, mem)

	router := gin.New()
	h.SetupRoutes(router)
	return &testEnv{router: router, mem: mem, feed: feed}
}

func (e *testEnv) do(t *testing.T, method, path string, body interface{}, token string) (*httptest.ResponseRecorder, response) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)

	var resp response
	if strings.HasPrefix(w.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	}
	return w, resp
}

// login registers a user and returns its token and id
func (e *testEnv) login(t *testing.T, name, email string) (string, string) {
	t.Helper()

	w, _ := e.do(t, http.MethodPost, "/api/v1/auth", map[string]string{
		"action": "register", "userName": name, "email": email, "password": "pw",
	}, "")
	require.Equal(t, http.StatusOK, w.Code)

	w, resp := e.do(t, http.MethodPost, "/api/v1/auth", map[string]string{
		"action": "login", "email": email, "password": "pw",
	}, "")
	require.Equal(t, http.StatusOK, w.Code)

	var session struct {
		User  auth.Identity `json:"user"`
		Token string        `json:"token"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &session))
	return session.Token, session.User.UserID
}

func (e *testEnv) createProduct(t *testing.T, adminToken, title string) string {
	t.Helper()

	w, resp := e.do(t, http.MethodPost, "/api/v1/products", map[string]interface{}{
		"title": title, "price": 20, "category": "men", "brand": "nike", "image": title + ".png",
	}, adminToken)
	require.Equal(t, http.StatusOK, w.Code, resp.Message)

	var p models.Product
	require.NoError(t, json.Unmarshal(resp.Data, &p))
	return p.ID
}

func TestHealthEnvelope(t *testing.T) {
	env := newTestEnv(t)

	w, resp := env.do(t, http.MethodGet, "/health", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, resp.Success)

	w, resp = env.do(t, http.MethodGet, "/ready", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, resp.Success)

	w, resp = env.do(t, http.MethodGet, "/nowhere", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.False(t, resp.Success)
}

func TestAuthActions(t *testing.T) {
	env := newTestEnv(t)
	token, _ := env.login(t, "alice", "alice@shop.test")

	w, resp := env.do(t, http.MethodPost, "/api/v1/auth", map[string]string{
		"action": "register", "userName": "alice", "email": "alice@shop.test", "password": "pw",
	}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "User already exists with the same email! Please try again", resp.Message)

	w, resp = env.do(t, http.MethodPost, "/api/v1/auth", map[string]string{
		"action": "login", "email": "alice@shop.test", "password": "bad",
	}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.False(t, resp.Success)

	w, resp = env.do(t, http.MethodPost, "/api/v1/auth", map[string]string{"action": "check-auth"}, token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Authenticated user!", resp.Message)

	w, resp = env.do(t, http.MethodPost, "/api/v1/auth", map[string]string{"action": "check-auth"}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "No authorization header", resp.Message)

	w, resp = env.do(t, http.MethodPost, "/api/v1/auth", map[string]string{"action": "logout"}, token)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Logged out successfully!", resp.Message)

	w, resp = env.do(t, http.MethodPost, "/api/v1/auth", map[string]string{"action": "dance"}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid action", resp.Message)
}

func TestProductAdministrationRequiresAdmin(t *testing.T) {
	env := newTestEnv(t)
	userToken, _ := env.login(t, "alice", "alice@shop.test")
	adminToken, _ := env.login(t, "root", "admin@shop.test")

	body := map[string]interface{}{"title": "Tee", "price": 10}

	w, resp := env.do(t, http.MethodPost, "/api/v1/products", body, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "No authorization header", resp.Message)

	w, _ = env.do(t, http.MethodPost, "/api/v1/products", body, userToken)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, resp = env.do(t, http.MethodPost, "/api/v1/products", map[string]interface{}{
		"title": "Tee", "price": 10, "category": "aliens",
	}, adminToken)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid category", resp.Message)

	id := env.createProduct(t, adminToken, "Tee")

	w, resp = env.do(t, http.MethodGet, "/api/v1/products?category=men&sortBy=price-hightolow", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	var products []models.Product
	require.NoError(t, json.Unmarshal(resp.Data, &products))
	require.Len(t, products, 1)
	assert.Equal(t, id, products[0].ID)

	w, resp = env.do(t, http.MethodDelete, "/api/v1/products/"+id, nil, adminToken)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Product deleted successfully", resp.Message)

	w, resp = env.do(t, http.MethodGet, "/api/v1/products/"+id, nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Product not found", resp.Message)
}

func TestCheckoutFlow(t *testing.T) {
	env := newTestEnv(t)
	adminToken, _ := env.login(t, "root", "admin@shop.test")
	aliceToken, aliceID := env.login(t, "alice", "alice@shop.test")
	bobToken, _ := env.login(t, "bob", "bob@shop.test")
	productID := env.createProduct(t, adminToken, "Shirt")

	w, _ := env.do(t, http.MethodPost, "/api/v1/cart/add", map[string]interface{}{
		"userId": aliceID, "productId": productID, "quantity": 2,
	}, aliceToken)
	require.Equal(t, http.StatusOK, w.Code)

	w, _ = env.do(t, http.MethodGet, "/api/v1/cart/"+aliceID, nil, bobToken)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, resp := env.do(t, http.MethodPost, "/api/v1/reviews/add", map[string]interface{}{
		"productId": productID, "userId": aliceID, "userName": "alice", "reviewMessage": "great", "reviewValue": 5,
	}, aliceToken)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "You need to purchase product to review it.", resp.Message)

	order := map[string]interface{}{
		"userId": aliceID,
		"cartItems": []map[string]interface{}{
			{"productId": productID, "title": "Shirt", "image": "Shirt.png", "price": 20, "quantity": 2},
		},
		"addressInfo":   map[string]string{"addressId": "a1", "address": "1 Main St", "city": "Pune", "pincode": "411001", "phone": "999"},
		"paymentMethod": "cod",
		"totalAmount":   40,
	}
	w, resp = env.do(t, http.MethodPost, "/api/v1/orders/create", order, aliceToken)
	require.Equal(t, http.StatusOK, w.Code, resp.Message)
	assert.Equal(t, "Order placed successfully with Cash on Delivery", resp.Message)

	var created orderCreatedResponse
	require.NoError(t, json.Unmarshal(resp.Data, &created))

	w, resp = env.do(t, http.MethodGet, "/api/v1/cart/"+aliceID, nil, aliceToken)
	require.Equal(t, http.StatusOK, w.Code)
	var cart models.Cart
	require.NoError(t, json.Unmarshal(resp.Data, &cart))
	assert.Empty(t, cart.Items)

	w, _ = env.do(t, http.MethodGet, "/api/v1/orders/details/"+created.OrderID, nil, bobToken)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, resp = env.do(t, http.MethodGet, "/api/v1/orders/details/"+created.OrderID, nil, aliceToken)
	require.Equal(t, http.StatusOK, w.Code)
	var detail models.Order
	require.NoError(t, json.Unmarshal(resp.Data, &detail))
	assert.Equal(t, models.OrderStatusConfirmed, detail.OrderStatus)
	require.Len(t, detail.Items, 1)

	w, _ = env.do(t, http.MethodPut, "/api/v1/orders/"+created.OrderID, map[string]string{"orderStatus": "inShipping"}, aliceToken)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w, resp = env.do(t, http.MethodPut, "/api/v1/orders/"+created.OrderID, map[string]string{"orderStatus": "inShipping"}, adminToken)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Order status updated successfully!", resp.Message)

	w, _ = env.do(t, http.MethodPut, "/api/v1/orders/"+created.OrderID, map[string]string{"orderStatus": "pending"}, adminToken)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, resp = env.do(t, http.MethodPost, "/api/v1/reviews/add", map[string]interface{}{
		"productId": productID, "userId": aliceID, "userName": "alice", "reviewMessage": "great", "reviewValue": 5,
	}, aliceToken)
	assert.Equal(t, http.StatusOK, w.Code)

	w, resp = env.do(t, http.MethodPost, "/api/v1/reviews/add", map[string]interface{}{
		"productId": productID, "userId": aliceID, "userName": "alice", "reviewMessage": "again", "reviewValue": 4,
	}, aliceToken)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "You already reviewed this product!", resp.Message)
}

func TestCORSPreflight(t *testing.T) {
	env := newTestEnv(t)

	preflight := func(origin string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodOptions, "/api/v1/products", nil)
		req.Header.Set("Origin", origin)
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		req.Header.Set("Access-Control-Request-Headers", "Authorization, Idempotency-Key")
		w := httptest.NewRecorder()
		env.router.ServeHTTP(w, req)
		return w
	}

	w := preflight(testOrigin)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, testOrigin, w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))

	w = preflight("http://evil.example")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestExportProducts(t *testing.T) {
	env := newTestEnv(t)
	adminToken, _ := env.login(t, "root", "admin@shop.test")
	env.createProduct(t, adminToken, "Shirt")
	env.createProduct(t, adminToken, "Cap")

	w, _ := env.do(t, http.MethodGet, "/api/v1/admin/products/export", nil, adminToken)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, xlsxContentType, w.Header().Get("Content-Type"))

	file, err := xlsx.OpenBinary(w.Body.Bytes())
	require.NoError(t, err)
	require.Len(t, file.Sheets, 1)
	assert.Len(t, file.Sheets[0].Rows, 3)
}

func TestOrderFeedSocket(t *testing.T) {
	env := newTestEnv(t)
	adminToken, _ := env.login(t, "root", "admin@shop.test")
	userToken, _ := env.login(t, "alice", "alice@shop.test")

	srv := httptest.NewServer(env.router)
	defer srv.Close()
	base := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/v1/admin/orders/ws?token="

	_, resp, err := websocket.DefaultDialer.Dial(base+userToken, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	conn, _, err := websocket.DefaultDialer.Dial(base+adminToken, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return env.feed.ClientCount() == 1 }, time.Second, 10*time.Millisecond)
	require.NoError(t, env.feed.Broadcast("order_placed", map[string]string{"orderId": "o-9"}))

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, payload, err := conn.ReadMessage()
	require.NoError(t, err)
	assert.Contains(t, string(payload), "o-9")
}

func TestCreateEndpointsAnswerOK(t *testing.T) {
	env := newTestEnv(t)
	adminToken, _ := env.login(t, "root", "admin@shop.test")
	token, userID := env.login(t, "alice", "alice@shop.test")
	productID := env.createProduct(t, adminToken, "Shirt")

	w, resp := env.do(t, http.MethodPost, "/api/v1/addresses/add", map[string]string{
		"userId": userID, "address": "1 Main St", "city": "Pune", "pincode": "411001", "phone": "999",
	}, token)
	assert.Equal(t, http.StatusOK, w.Code, resp.Message)
	assert.True(t, resp.Success)

	order := map[string]interface{}{
		"userId": userID,
		"cartItems": []map[string]interface{}{
			{"productId": productID, "title": "Shirt", "price": 20, "quantity": 1},
		},
		"addressInfo":   map[string]string{"address": "1 Main St", "city": "Pune", "pincode": "411001", "phone": "999"},
		"paymentMethod": "paypal",
		"totalAmount":   20,
	}

	place := func() (int, string) {
		payload, err := json.Marshal(order)
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodPost, "/api/v1/orders/create", bytes.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+token)
		req.Header.Set("Idempotency-Key", "checkout-1")
		w := httptest.NewRecorder()
		env.router.ServeHTTP(w, req)

		var resp response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		var created orderCreatedResponse
		require.NoError(t, json.Unmarshal(resp.Data, &created))
		assert.Equal(t, "Order created successfully", resp.Message)
		return w.Code, created.OrderID
	}

	firstCode, firstID := place()
	replayCode, replayID := place()
	assert.Equal(t, http.StatusOK, firstCode)
	assert.Equal(t, http.StatusOK, replayCode)
	assert.NotEmpty(t, firstID)
	assert.Equal(t, firstID, replayID)
}
