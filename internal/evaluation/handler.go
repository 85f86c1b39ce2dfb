package evaluation

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/frahmantamala/stagiaire-management/internal"
	"github.com/frahmantamala/stagiaire-management/internal/stagiaire"
	"github.com/frahmantamala/stagiaire-management/internal/transport"
)

type ServiceAPI interface {
	List(ctx context.Context, filter ListFilter) ([]*Evaluation, int64, error)
	ListByStagiaire(ctx context.Context, stagiaireID int64, limit, offset int) ([]*Evaluation, int64, error)
	GetByID(ctx context.Context, id int64) (*Evaluation, error)
	Create(ctx context.Context, dto CreateEvaluationDTO) (*Evaluation, error)
	Update(ctx context.Context, id int64, dto UpdateEvaluationDTO) (*Evaluation, error)
	Delete(ctx context.Context, id int64) error
	Review(ctx context.Context, id int64) (*Evaluation, error)
	Report(ctx context.Context, id int64) (*Evaluation, *stagiaire.Stagiaire, error)
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

// ListEvaluations handles GET /evaluations?stagiaireId=&status=&order=&limit=&offset=
func (h *Handler) ListEvaluations(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := ListFilter{
		Status: q.Get("status"),
		Order:  strings.ToLower(q.Get("order")),
		Limit:  transport.QueryInt(r, "limit", 100, 1, 500),
		Offset: transport.QueryInt(r, "offset", 0, 0, 1<<31-1),
	}
	if raw := q.Get("stagiaireId"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			h.WriteAppError(w, internal.NewValidationFieldError("stagiaireId", "stagiaireId must be a positive integer", internal.ErrCodeValidationFailed))
			return
		}
		filter.StagiaireID = id
	}

	evaluations, total, err := h.Service.List(r.Context(), filter)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, EvaluationsResponse{
		Evaluations: evaluations,
		Total:       total,
		Limit:       filter.Limit,
		Offset:      filter.Offset,
	})
}

// ListStagiaireEvaluations handles GET /stagiaires/{id}/evaluations
func (h *Handler) ListStagiaireEvaluations(w http.ResponseWriter, r *http.Request) {
	stagiaireID, ok := h.ParseID(w, r, "id", internal.ErrStagiaireNotFound)
	if !ok {
		return
	}
	limit := transport.QueryInt(r, "limit", 100, 1, 500)
	offset := transport.QueryInt(r, "offset", 0, 0, 1<<31-1)

	evaluations, total, err := h.Service.ListByStagiaire(r.Context(), stagiaireID, limit, offset)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, EvaluationsResponse{
		Evaluations: evaluations,
		Total:       total,
		Limit:       limit,
		Offset:      offset,
	})
}

func (h *Handler) GetEvaluation(w http.ResponseWriter, r *http.Request) {
	id, ok := h.ParseID(w, r, "id", internal.ErrEvaluationNotFound)
	if !ok {
		return
	}

	e, err := h.Service.GetByID(r.Context(), id)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, e)
}

func (h *Handler) CreateEvaluation(w http.ResponseWriter, r *http.Request) {
	var dto CreateEvaluationDTO
	if !h.DecodeJSON(w, r, &dto) {
		return
	}

	e, err := h.Service.Create(r.Context(), dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, e)
}

func (h *Handler) UpdateEvaluation(w http.ResponseWriter, r *http.Request) {
	id, ok := h.ParseID(w, r, "id", internal.ErrEvaluationNotFound)
	if !ok {
		return
	}

	var dto UpdateEvaluationDTO
	if !h.DecodeJSON(w, r, &dto) {
		return
	}

	e, err := h.Service.Update(r.Context(), id, dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, e)
}

func (h *Handler) DeleteEvaluation(w http.ResponseWriter, r *http.Request) {
	id, ok := h.ParseID(w, r, "id", internal.ErrEvaluationNotFound)
	if !ok {
		return
	}

	if err := h.Service.Delete(r.Context(), id); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	h.WriteNoContent(w)
}

// ReviewEvaluation handles PATCH /evaluations/{id}/review
func (h *Handler) ReviewEvaluation(w http.ResponseWriter, r *http.Request) {
	id, ok := h.ParseID(w, r, "id", internal.ErrEvaluationNotFound)
	if !ok {
		return
	}

	e, err := h.Service.Review(r.Context(), id)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, e)
}

// ExportPDF handles GET /evaluations/{id}/pdf
func (h *Handler) ExportPDF(w http.ResponseWriter, r *http.Request) {
	id, ok := h.ParseID(w, r, "id", internal.ErrEvaluationNotFound)
	if !ok {
		return
	}

	e, st, err := h.Service.Report(r.Context(), id)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	// render fully before writing so a failure can still become a JSON 500
	var buf bytes.Buffer
	if err := WriteReport(&buf, e, st); err != nil {
		h.HandleServiceError(w, r, fmt.Errorf("failed to render evaluation report: %w", err))
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="evaluation-%d.pdf"`, e.ID))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		h.Logger.Warn("failed to write evaluation report", "evaluation_id", id, "error", err)
	}
}
