package commission

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Handler exposes the commission preview endpoints sellers use to see
// their cut before an order exists.
type Handler struct {
	calc *Calculator
}

func NewHandler(calc *Calculator) *Handler {
	return &Handler{calc: calc}
}

func (h *Handler) RegisterRoutes(r *chi.Mux) {
	r.Route("/api/v1/commission", func(r chi.Router) {
		r.Post("/preview", h.preview)    // POST /api/v1/commission/preview
		r.Post("/bulk", h.calculateBulk) // POST /api/v1/commission/bulk
	})
}

type previewRequest struct {
	SellerID int64   `json:"seller_id"`
	Amount   float64 `json:"amount"`
}

func (h *Handler) preview(w http.ResponseWriter, r *http.Request) {
	var req previewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	res, err := h.calc.Preview(r.Context(), req.SellerID, req.Amount)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}
	respond(w, http.StatusOK, res)
}

type bulkRequest struct {
	Lines []LineInput `json:"lines"`
}

func (h *Handler) calculateBulk(w http.ResponseWriter, r *http.Request) {
	var req bulkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}
	res, err := h.calc.CalculateBulk(r.Context(), req.Lines)
	if err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}
	respond(w, http.StatusOK, res)
}

func respondError(w http.ResponseWriter, status int, err error) {
	respond(w, status, map[string]string{"error": err.Error()})
}

func respond(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}
