package activity

import (
	"context"
	"net/http"

	"github.com/frahmantamala/stagiaire-management/internal/transport"
)

type ServiceAPI interface {
	Recent(ctx context.Context, limit int) ([]*Activity, error)
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

type ActivitiesResponse struct {
	Activities []*Activity `json:"activities"`
}

// ListActivities handles GET /activities?limit=
func (h *Handler) ListActivities(w http.ResponseWriter, r *http.Request) {
	limit := transport.QueryInt(r, "limit", DefaultLimit, 1, MaxLimit)

	activities, err := h.Service.Recent(r.Context(), limit)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, ActivitiesResponse{Activities: activities})
}
