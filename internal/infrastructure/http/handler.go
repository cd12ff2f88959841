package httptransport

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	appbasket "github.com/Denis-77/megano-store/internal/application/basket"
	appcatalog "github.com/Denis-77/megano-store/internal/application/catalog"
	apporder "github.com/Denis-77/megano-store/internal/application/order"
	appreview "github.com/Denis-77/megano-store/internal/application/review"
	basketdomain "github.com/Denis-77/megano-store/internal/domain/basket"
	orderdomain "github.com/Denis-77/megano-store/internal/domain/order"
	domainpayment "github.com/Denis-77/megano-store/internal/domain/payment"
	"github.com/Denis-77/megano-store/internal/domain/product"
	"github.com/Denis-77/megano-store/internal/infrastructure/session"
)

// Authentication and session management are external collaborators: the
// current user arrives as the X-User-ID header and the guest session as
// X-Session-ID. SessionResolver turns a session id into that session's blob
// store.
type SessionResolver func(sessionID string) basketdomain.SessionStore

type Handler struct {
	ledger   *appbasket.Ledger
	orders   *apporder.Service
	catalog  *appcatalog.Service
	reviews  *appreview.Service
	sessions SessionResolver
}

func NewHandler(
	ledger *appbasket.Ledger,
	orders *apporder.Service,
	catalog *appcatalog.Service,
	reviews *appreview.Service,
	sessions SessionResolver,
) *Handler {
	return &Handler{
		ledger:   ledger,
		orders:   orders,
		catalog:  catalog,
		reviews:  reviews,
		sessions: sessions,
	}
}

func (h *Handler) Router() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /basket", h.handleBasketGet)
	mux.HandleFunc("POST /basket", h.handleBasketAdd)
	mux.HandleFunc("DELETE /basket", h.handleBasketRemove)
	mux.HandleFunc("POST /sign-in", h.handleSignIn)
	mux.HandleFunc("GET /orders", h.handleOrderList)
	mux.HandleFunc("POST /orders", h.handleOrderDraft)
	mux.HandleFunc("GET /orders/{id}", h.handleOrderGet)
	mux.HandleFunc("POST /payment/{id}", h.handlePayment)
	mux.HandleFunc("GET /products", h.handleProductList)
	mux.HandleFunc("POST /products/{id}/reviews", h.handleReviewAdd)
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	return mux
}

// resolveOwner picks the basket owner for the request and a ledger bound to
// the matching line store: durable rows for users, the session blob for
// guests.
func (h *Handler) resolveOwner(r *http.Request) (basketdomain.Owner, *appbasket.Ledger, error) {
	if userID := r.Header.Get("X-User-ID"); userID != "" {
		return basketdomain.UserOwner(userID), h.ledger, nil
	}
	if sessionID := r.Header.Get("X-Session-ID"); sessionID != "" {
		guestLines := session.NewLineStore(h.sessions(sessionID))
		return basketdomain.GuestOwner(sessionID), h.ledger.WithLines(guestLines), nil
	}
	return basketdomain.Owner{}, nil, errors.New("missing X-User-ID or X-Session-ID")
}

type basketMutationRequest struct {
	ProductID string `json:"id"`
	Count     int    `json:"count"`
}

type basketLineResponse struct {
	ProductID string `json:"id"`
	Count     int    `json:"count"`
}

func (h *Handler) handleBasketGet(w http.ResponseWriter, r *http.Request) {
	owner, ledger, err := h.resolveOwner(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	lines, err := ledger.List(r.Context(), owner)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	out := make([]basketLineResponse, 0, len(lines))
	for _, l := range lines {
		out = append(out, basketLineResponse{ProductID: l.ProductID, Count: l.Quantity})
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) handleBasketAdd(w http.ResponseWriter, r *http.Request) {
	owner, ledger, err := h.resolveOwner(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	var req basketMutationRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	line, err := ledger.Add(r.Context(), owner, req.ProductID, req.Count)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, basketLineResponse{ProductID: line.ProductID, Count: line.Quantity})
}

func (h *Handler) handleBasketRemove(w http.ResponseWriter, r *http.Request) {
	owner, ledger, err := h.resolveOwner(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	var req basketMutationRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := ledger.Remove(r.Context(), owner, req.ProductID, req.Count); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleSignIn(w http.ResponseWriter, r *http.Request) {
	userID := r.Header.Get("X-User-ID")
	sessionID := r.Header.Get("X-Session-ID")
	if userID == "" {
		writeError(w, http.StatusBadRequest, errors.New("missing X-User-ID"))
		return
	}
	if sessionID == "" {
		// Nothing to merge; login is still a success.
		writeJSON(w, http.StatusOK, map[string]string{"message": "successful operation"})
		return
	}
	if err := h.ledger.MergeOnLogin(r.Context(), userID, h.sessions(sessionID)); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "successful operation"})
}

type draftOrderLine struct {
	ProductID string  `json:"id"`
	Count     int     `json:"count"`
	Price     float64 `json:"price"`
}

type draftOrderRequest struct {
	Lines    []draftOrderLine `json:"lines"`
	Delivery struct {
		Name         string `json:"name"`
		Email        string `json:"email"`
		Phone        string `json:"phone"`
		City         string `json:"city"`
		Address      string `json:"address"`
		DeliveryType string `json:"deliveryType"`
		PaymentType  string `json:"paymentType"`
	} `json:"delivery"`
}

func (h *Handler) handleOrderDraft(w http.ResponseWriter, r *http.Request) {
	userID := r.Header.Get("X-User-ID")
	if userID == "" {
		writeError(w, http.StatusUnauthorized, errors.New("authentication required"))
		return
	}
	var req draftOrderRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	snapshot := make([]apporder.SnapshotLine, 0, len(req.Lines))
	for _, l := range req.Lines {
		snapshot = append(snapshot, apporder.SnapshotLine{
			ProductID: l.ProductID,
			Quantity:  l.Count,
			UnitPrice: l.Price,
		})
	}
	result, err := h.orders.Draft(r.Context(), userID, snapshot, orderdomain.Delivery{
		Name:         req.Delivery.Name,
		Email:        req.Delivery.Email,
		Phone:        req.Delivery.Phone,
		City:         req.Delivery.City,
		Address:      req.Delivery.Address,
		DeliveryType: req.Delivery.DeliveryType,
		PaymentType:  req.Delivery.PaymentType,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"orderId":   result.OrderID,
		"totalCost": float64(result.TotalCostCents) / 100,
		"status":    result.Status,
	})
}

func (h *Handler) handleOrderGet(w http.ResponseWriter, r *http.Request) {
	o, err := h.orders.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (h *Handler) handleOrderList(w http.ResponseWriter, r *http.Request) {
	userID := r.Header.Get("X-User-ID")
	if userID == "" {
		writeError(w, http.StatusUnauthorized, errors.New("authentication required"))
		return
	}
	orders, err := h.orders.ListByUser(r.Context(), userID)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

type paymentRequest struct {
	Number string `json:"number"`
}

func (h *Handler) handlePayment(w http.ResponseWriter, r *http.Request) {
	var req paymentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	status, err := h.orders.ConfirmPayment(r.Context(), r.PathValue("id"), strings.TrimSpace(req.Number))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": status})
}

func (h *Handler) handleProductList(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.List(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, products)
}

type reviewRequest struct {
	Text string `json:"text"`
	Rate int    `json:"rate"`
}

func (h *Handler) handleReviewAdd(w http.ResponseWriter, r *http.Request) {
	userID := r.Header.Get("X-User-ID")
	if userID == "" {
		writeError(w, http.StatusUnauthorized, errors.New("authentication required"))
		return
	}
	var req reviewRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := h.reviews.Add(r.Context(), r.PathValue("id"), userID, req.Text, req.Rate); err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "successful operation"})
}

func decodeJSON(r *http.Request, dst any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(dst)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, basketdomain.ErrNotFound),
		errors.Is(err, product.ErrNotFound),
		errors.Is(err, orderdomain.ErrNotFound):
		writeError(w, http.StatusNotFound, err)
	case errors.Is(err, basketdomain.ErrInvalidQuantity),
		errors.Is(err, basketdomain.ErrInsufficientStock),
		errors.Is(err, basketdomain.ErrCorruptState),
		errors.Is(err, orderdomain.ErrNoLines),
		errors.Is(err, orderdomain.ErrInvalidQuantity),
		errors.Is(err, orderdomain.ErrInvalidState),
		errors.Is(err, product.ErrInvalidRate),
		errors.Is(err, domainpayment.ErrCardNotDigits),
		errors.Is(err, domainpayment.ErrCardRejected):
		writeError(w, http.StatusBadRequest, err)
	default:
		writeError(w, http.StatusInternalServerError, err)
	}
}
