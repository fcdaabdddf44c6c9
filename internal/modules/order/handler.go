package order

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tmwansa/markethub-backend/internal/modules/auth"
)

// Handler exposes order HTTP endpoints.
type Handler struct {
	service Service
	authmw  *auth.Middleware
}

func NewHandler(service Service, authmw *auth.Middleware) *Handler {
	return &Handler{service: service, authmw: authmw}
}

func (h *Handler) RegisterRoutes(r *chi.Mux) {
	r.Route("/api/v1/orders", func(r chi.Router) {
		r.Post("/", h.createOrder)                             // POST  /api/v1/orders
		r.Get("/", h.listOrders)                               // GET   /api/v1/orders?status=&page=...
		r.Get("/{id}", h.getOrder)                             // GET   /api/v1/orders/{id}
		r.Patch("/{id}/status", h.updateStatus)                // PATCH /api/v1/orders/{id}/status
		r.Post("/{id}/cancel", h.cancelOrder)                  // POST  /api/v1/orders/{id}/cancel
		r.Get("/user/{user_id}", h.listUserOrders)             // GET   /api/v1/orders/user/{user_id}
		r.With(h.authmw.RequireUser).Get("/mine", h.myOrders)  // GET   /api/v1/orders/mine
		r.Get("/reports/sales", h.salesSummary)                // GET   /api/v1/orders/reports/sales
		r.Get("/reports/status-breakdown", h.statusBreakdown)  // GET   /api/v1/orders/reports/status-breakdown
	})
}

func (h *Handler) createOrder(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	o, err := h.service.CreateOrder(r.Context(), req)
	if err != nil {
		respondKind(w, err)
		return
	}
	respond(w, http.StatusCreated, o)
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	o, err := h.service.GetOrder(r.Context(), id)
	if err != nil {
		respondKind(w, err)
		return
	}
	respond(w, http.StatusOK, o)
}

func (h *Handler) updateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	o, err := h.service.UpdateStatus(r.Context(), id, req)
	if err != nil {
		respondKind(w, err)
		return
	}
	respond(w, http.StatusOK, o)
}

func (h *Handler) cancelOrder(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req CancelRequest
	if r.Body != nil {
		json.NewDecoder(r.Body).Decode(&req)
	}
	o, err := h.service.CancelOrder(r.Context(), id, req.Reason)
	if err != nil {
		respondKind(w, err)
		return
	}
	respond(w, http.StatusOK, o)
}

func (h *Handler) listUserOrders(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(chi.URLParam(r, "user_id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	orders, err := h.service.GetUserOrders(r.Context(), userID)
	if err != nil {
		respondKind(w, err)
		return
	}
	respond(w, http.StatusOK, orders)
}

func (h *Handler) myOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.service.GetUserOrders(r.Context(), auth.UserID(r.Context()))
	if err != nil {
		respondKind(w, err)
		return
	}
	respond(w, http.StatusOK, orders)
}

func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	result, err := h.service.ListOrders(r.Context(), filterFromQuery(r))
	if err != nil {
		respondKind(w, err)
		return
	}
	respond(w, http.StatusOK, result)
}

func (h *Handler) salesSummary(w http.ResponseWriter, r *http.Request) {
	start, end, err := dateRange(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	summary, err := h.service.SalesSummary(r.Context(), start, end)
	if err != nil {
		respondKind(w, err)
		return
	}
	respond(w, http.StatusOK, summary)
}

func (h *Handler) statusBreakdown(w http.ResponseWriter, r *http.Request) {
	start, end, err := dateRange(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	breakdown, err := h.service.StatusBreakdown(r.Context(), start, end)
	if err != nil {
		respondKind(w, err)
		return
	}
	respond(w, http.StatusOK, breakdown)
}

// ── helpers ──────────────────────────────────────────────────────────────────

func filterFromQuery(r *http.Request) Filter {
	q := r.URL.Query()
	f := Filter{
		Status:    Status(q.Get("status")),
		Search:    q.Get("search"),
		SortBy:    q.Get("sort_by"),
		SortOrder: q.Get("sort_order"),
	}
	f.UserID, _ = strconv.ParseInt(q.Get("user_id"), 10, 64)
	f.Page, _ = strconv.Atoi(q.Get("page"))
	f.Limit, _ = strconv.Atoi(q.Get("limit"))

	if t, err := time.Parse(time.RFC3339, q.Get("start_date")); err == nil {
		f.StartDate = &t
	}
	if t, err := time.Parse(time.RFC3339, q.Get("end_date")); err == nil {
		f.EndDate = &t
	}
	if v, err := strconv.ParseFloat(q.Get("min_amount"), 64); err == nil {
		f.MinAmount = &v
	}
	if v, err := strconv.ParseFloat(q.Get("max_amount"), 64); err == nil {
		f.MaxAmount = &v
	}
	return f
}

func dateRange(r *http.Request) (time.Time, time.Time, error) {
	q := r.URL.Query()
	start, err := time.Parse(time.RFC3339, q.Get("start_date"))
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err := time.Parse(time.RFC3339, q.Get("end_date"))
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, end, nil
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return 0, false
	}
	return id, true
}

func respondKind(w http.ResponseWriter, err error) {
	code := http.StatusInternalServerError
	switch KindOf(err) {
	case KindInvalidRequest:
		code = http.StatusBadRequest
	case KindNotFound:
		code = http.StatusNotFound
	case KindInvalidState:
		code = http.StatusConflict
	case KindInsufficientInventory, KindUnprocessable:
		code = http.StatusUnprocessableEntity
	}
	respondError(w, code, err)
}

func respondError(w http.ResponseWriter, status int, err error) {
	respond(w, status, map[string]string{"error": err.Error()})
}

func respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
