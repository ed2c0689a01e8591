package productunit

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi"

	"github.com/profaxno/admin-management/internal"
	"github.com/profaxno/admin-management/internal/transport"
)

type ServiceAPI interface {
	Upsert(ctx context.Context, dto UpsertProductUnitDTO) (*ProductUnitDTO, error)
	UpdateBatch(ctx context.Context, dtos []UpsertProductUnitDTO) *internal.ProcessSummary
	Remove(ctx context.Context, id string) error
	Search(ctx context.Context, dto SearchProductUnitsDTO) ([]ProductUnitDTO, error)
	Synchronize(ctx context.Context, dto SynchronizeProductUnitsDTO) string
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(baseHandler *transport.BaseHandler, service ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     service,
	}
}

func (h *Handler) Upsert(w http.ResponseWriter, r *http.Request) {
	var dto UpsertProductUnitDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.Service.Upsert(r.Context(), dto)
	if err != nil {
		h.WriteServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) UpdateBatch(w http.ResponseWriter, r *http.Request) {
	var dtos []UpsertProductUnitDTO
	if err := json.NewDecoder(r.Body).Decode(&dtos); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	h.WriteJSON(w, http.StatusOK, h.Service.UpdateBatch(r.Context(), dtos))
}

func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	var dto SearchProductUnitsDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		h.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.Service.Search(r.Context(), dto)
	if err != nil {
		h.WriteServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		h.WriteError(w, http.StatusBadRequest, "id is required")
		return
	}

	if err := h.Service.Remove(r.Context(), id); err != nil {
		h.WriteServiceError(w, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, map[string]string{"message": "product unit removed"})
}

func (h *Handler) Synchronize(w http.ResponseWriter, r *http.Request) {
	var dto SynchronizeProductUnitsDTO
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
			h.WriteError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	result := h.Service.Synchronize(r.Context(), dto)
	h.WriteJSON(w, http.StatusOK, map[string]string{"message": result})
}
