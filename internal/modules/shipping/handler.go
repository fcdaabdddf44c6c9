package shipping

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Handler exposes the read-only shipping HTTP surface.
type Handler struct{ service Service }

func NewHandler(service Service) *Handler { return &Handler{service: service} }

func (h *Handler) RegisterRoutes(r *chi.Mux) {
	r.Route("/api/v1/shipping", func(r chi.Router) {
		r.Get("/methods", h.listMethods)   // GET  /api/v1/shipping/methods
		r.Post("/calculate", h.calculate)  // POST /api/v1/shipping/calculate
	})
}

func (h *Handler) listMethods(w http.ResponseWriter, r *http.Request) {
	methods, err := h.service.ActiveMethods(r.Context())
	if err != nil {
		respond(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	respond(w, http.StatusOK, methods)
}

func (h *Handler) calculate(w http.ResponseWriter, r *http.Request) {
	var req CalculateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	if req.MethodID != nil {
		rate, err := h.service.CalculateRate(r.Context(), *req.MethodID, req.Subtotal, req.Weight)
		if err != nil {
			code := http.StatusInternalServerError
			if errors.Is(err, ErrMethodNotFound) {
				code = http.StatusNotFound
			}
			respond(w, code, map[string]string{"error": err.Error()})
			return
		}
		respond(w, http.StatusOK, map[string]float64{"calculated_rate": rate})
		return
	}

	quotes, err := h.service.CalculateAllRates(r.Context(), req.Subtotal, req.Weight)
	if err != nil {
		respond(w, http.StatusInternalServerError, map[string]string{"error": err.Error()})
		return
	}
	respond(w, http.StatusOK, quotes)
}

func respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
