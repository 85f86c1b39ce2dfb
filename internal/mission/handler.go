package mission

import (
	"context"
	"net/http"
	"strings"

	"github.com/frahmantamala/stagiaire-management/internal"
	"github.com/frahmantamala/stagiaire-management/internal/transport"
)

type ServiceAPI interface {
	List(ctx context.Context, filter ListFilter) ([]*Mission, int64, error)
	GetByID(ctx context.Context, id int64) (*Mission, error)
	Create(ctx context.Context, dto CreateMissionDTO) (*Mission, error)
	Update(ctx context.Context, id int64, dto UpdateMissionDTO) (*Mission, error)
	UpdateProgress(ctx context.Context, id int64, dto UpdateProgressDTO) (*Mission, error)
	Delete(ctx context.Context, id int64) error
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

// ListMissions handles GET /missions?status=&department=&order=&limit=&offset=
func (h *Handler) ListMissions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := ListFilter{
		Status:     q.Get("status"),
		Department: strings.TrimSpace(q.Get("department")),
		Order:      strings.ToLower(q.Get("order")),
		Limit:      transport.QueryInt(r, "limit", 100, 1, 500),
		Offset:     transport.QueryInt(r, "offset", 0, 0, 1<<31-1),
	}

	missions, total, err := h.Service.List(r.Context(), filter)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, MissionsResponse{
		Missions: missions,
		Total:    total,
		Limit:    filter.Limit,
		Offset:   filter.Offset,
	})
}

func (h *Handler) GetMission(w http.ResponseWriter, r *http.Request) {
	id, ok := h.ParseID(w, r, "id", internal.ErrMissionNotFound)
	if !ok {
		return
	}

	m, err := h.Service.GetByID(r.Context(), id)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, m)
}

func (h *Handler) CreateMission(w http.ResponseWriter, r *http.Request) {
	var dto CreateMissionDTO
	if !h.DecodeJSON(w, r, &dto) {
		return
	}

	m, err := h.Service.Create(r.Context(), dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, m)
}

func (h *Handler) UpdateMission(w http.ResponseWriter, r *http.Request) {
	id, ok := h.ParseID(w, r, "id", internal.ErrMissionNotFound)
	if !ok {
		return
	}

	var dto UpdateMissionDTO
	if !h.DecodeJSON(w, r, &dto) {
		return
	}

	m, err := h.Service.Update(r.Context(), id, dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, m)
}

// UpdateProgress handles PATCH /missions/{id}/progress
func (h *Handler) UpdateProgress(w http.ResponseWriter, r *http.Request) {
	id, ok := h.ParseID(w, r, "id", internal.ErrMissionNotFound)
	if !ok {
		return
	}

	var dto UpdateProgressDTO
	if !h.DecodeJSON(w, r, &dto) {
		return
	}

	m, err := h.Service.UpdateProgress(r.Context(), id, dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, m)
}

func (h *Handler) DeleteMission(w http.ResponseWriter, r *http.Request) {
	id, ok := h.ParseID(w, r, "id", internal.ErrMissionNotFound)
	if !ok {
		return
	}

	if err := h.Service.Delete(r.Context(), id); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	h.WriteNoContent(w)
}
