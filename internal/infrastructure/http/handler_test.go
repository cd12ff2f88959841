package httptransport

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	appbasket "github.com/Denis-77/megano-store/internal/application/basket"
	appcatalog "github.com/Denis-77/megano-store/internal/application/catalog"
	apporder "github.com/Denis-77/megano-store/internal/application/order"
	appreview "github.com/Denis-77/megano-store/internal/application/review"
	basketdomain "github.com/Denis-77/megano-store/internal/domain/basket"
	"github.com/Denis-77/megano-store/internal/domain/product"
	"github.com/Denis-77/megano-store/internal/infrastructure/id"
	"github.com/Denis-77/megano-store/internal/infrastructure/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type apiFixture struct {
	server   *httptest.Server
	products *memory.ProductRepository
	lines    *memory.LineStore
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()

	products := memory.NewProductRepository()
	lines := memory.NewLineStore()
	orders := memory.NewOrderRepository()
	sessions := memory.NewSessionStore()

	ledger := appbasket.NewLedger(lines, products, nil)
	orderSvc := apporder.NewService(orders, products, lines, id.UUIDGenerator{}, nil, nil)
	catalogSvc := appcatalog.NewService(products, lines, nil)
	reviewSvc := appreview.NewService(products, products.Reviews(), nil)

	handler := NewHandler(ledger, orderSvc, catalogSvc, reviewSvc, func(sessionID string) basketdomain.SessionStore {
		return sessions.Handle(sessionID)
	})

	srv := httptest.NewServer(handler.Router())
	t.Cleanup(srv.Close)

	return &apiFixture{server: srv, products: products, lines: lines}
}

func (f *apiFixture) addProduct(t *testing.T, id string, stock int) {
	t.Helper()
	require.NoError(t, f.products.Save(context.Background(), &product.Product{
		ID:             id,
		Title:          "product " + id,
		PriceCents:     1999,
		AvailableCount: stock,
	}))
}

func (f *apiFixture) do(t *testing.T, method, path string, headers map[string]string, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, f.server.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := f.server.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestBasketAddListRemove(t *testing.T) {
	f := newAPIFixture(t)
	f.addProduct(t, "5", 10)
	asAlice := map[string]string{"X-User-ID": "alice"}

	resp := f.do(t, http.MethodPost, "/basket", asAlice, `{"id": "5", "count": 2}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	line := decodeBody[basketLineResponse](t, resp)
	assert.Equal(t, 2, line.Count)

	resp = f.do(t, http.MethodGet, "/basket", asAlice, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	basket := decodeBody[[]basketLineResponse](t, resp)
	require.Len(t, basket, 1)
	assert.Equal(t, "5", basket[0].ProductID)

	resp = f.do(t, http.MethodDelete, "/basket", asAlice, `{"id": "5", "count": 5}`)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = f.do(t, http.MethodGet, "/basket", asAlice, "")
	basket = decodeBody[[]basketLineResponse](t, resp)
	assert.Empty(t, basket)
}

func TestBasketAddBeyondStock(t *testing.T) {
	f := newAPIFixture(t)
	f.addProduct(t, "5", 2)
	asAlice := map[string]string{"X-User-ID": "alice"}

	resp := f.do(t, http.MethodPost, "/basket", asAlice, `{"id": "5", "count": 2}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = f.do(t, http.MethodPost, "/basket", asAlice, `{"id": "5", "count": 1}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestBasketUnknownProductIs404(t *testing.T) {
	f := newAPIFixture(t)
	resp := f.do(t, http.MethodPost, "/basket", map[string]string{"X-User-ID": "alice"}, `{"id": "missing", "count": 1}`)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestBasketRequiresIdentity(t *testing.T) {
	f := newAPIFixture(t)
	resp := f.do(t, http.MethodGet, "/basket", nil, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGuestBasketMergesOnSignIn(t *testing.T) {
	f := newAPIFixture(t)
	f.addProduct(t, "5", 3)

	asGuest := map[string]string{"X-Session-ID": "sess-1"}
	resp := f.do(t, http.MethodPost, "/basket", asGuest, `{"id": "5", "count": 1}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp = f.do(t, http.MethodPost, "/basket", asGuest, `{"id": "5", "count": 1}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	both := map[string]string{"X-User-ID": "alice", "X-Session-ID": "sess-1"}
	resp = f.do(t, http.MethodPost, "/sign-in", both, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = f.do(t, http.MethodGet, "/basket", map[string]string{"X-User-ID": "alice"}, "")
	basket := decodeBody[[]basketLineResponse](t, resp)
	require.Len(t, basket, 1)
	assert.Equal(t, 2, basket[0].Count)

	// The guest basket was consumed.
	resp = f.do(t, http.MethodGet, "/basket", asGuest, "")
	basket = decodeBody[[]basketLineResponse](t, resp)
	assert.Empty(t, basket)
}

func TestOrderDraftAndPayment(t *testing.T) {
	f := newAPIFixture(t)
	f.addProduct(t, "5", 10)
	asAlice := map[string]string{"X-User-ID": "alice"}

	resp := f.do(t, http.MethodPost, "/basket", asAlice, `{"id": "5", "count": 2}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = f.do(t, http.MethodPost, "/orders", asAlice,
		`{"lines": [{"id": "5", "count": 2, "price": 19.99}], "delivery": {"city": "Riga"}}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	draft := decodeBody[map[string]any](t, resp)
	orderID, _ := draft["orderId"].(string)
	require.NotEmpty(t, orderID)
	assert.InDelta(t, 39.98, draft["totalCost"], 1e-9)

	// Drafting cleared the basket.
	resp = f.do(t, http.MethodGet, "/basket", asAlice, "")
	basket := decodeBody[[]basketLineResponse](t, resp)
	assert.Empty(t, basket)

	resp = f.do(t, http.MethodPost, "/payment/"+orderID, asAlice, `{"number": "1234"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = f.do(t, http.MethodGet, "/orders/"+orderID, asAlice, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	order := decodeBody[map[string]any](t, resp)
	assert.Equal(t, "paid", order["Status"])
}

func TestPaymentBadCardIs400(t *testing.T) {
	f := newAPIFixture(t)
	f.addProduct(t, "5", 10)
	asAlice := map[string]string{"X-User-ID": "alice"}

	resp := f.do(t, http.MethodPost, "/orders", asAlice,
		`{"lines": [{"id": "5", "count": 1, "price": 19.99}], "delivery": {}}`)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	draft := decodeBody[map[string]any](t, resp)
	orderID, _ := draft["orderId"].(string)

	resp = f.do(t, http.MethodPost, "/payment/"+orderID, asAlice, `{"number": "1233"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestReviewAddUpdatesRating(t *testing.T) {
	f := newAPIFixture(t)
	f.addProduct(t, "5", 10)

	resp := f.do(t, http.MethodPost, "/products/5/reviews",
		map[string]string{"X-User-ID": "alice"}, `{"text": "great", "rate": 5}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = f.do(t, http.MethodGet, "/products", nil, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	products := decodeBody[[]map[string]any](t, resp)
	require.Len(t, products, 1)
	assert.InDelta(t, 5.0, products[0]["Rating"], 1e-9)
}
