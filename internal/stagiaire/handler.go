package stagiaire

import (
	"context"
	"io"
	"net/http"
	"strings"

	"github.com/frahmantamala/stagiaire-management/internal"
	"github.com/frahmantamala/stagiaire-management/internal/transport"
)

// MaxAvatarSize bounds avatar uploads.
const MaxAvatarSize = 5 << 20

type ServiceAPI interface {
	List(ctx context.Context, filter ListFilter) ([]*Stagiaire, int64, error)
	GetByID(ctx context.Context, id int64) (*Stagiaire, error)
	Create(ctx context.Context, dto CreateStagiaireDTO) (*Stagiaire, error)
	Update(ctx context.Context, id int64, dto UpdateStagiaireDTO) (*Stagiaire, error)
	Delete(ctx context.Context, id int64) error
	UploadAvatar(ctx context.Context, id int64, filename string, file io.Reader) (*Stagiaire, error)
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

// ListStagiaires handles GET /stagiaires?status=&search=&order=&limit=&offset=
func (h *Handler) ListStagiaires(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := ListFilter{
		Status: q.Get("status"),
		Search: q.Get("search"),
		Order:  strings.ToLower(q.Get("order")),
		Limit:  transport.QueryInt(r, "limit", 100, 1, 500),
		Offset: transport.QueryInt(r, "offset", 0, 0, 1<<31-1),
	}

	stagiaires, total, err := h.Service.List(r.Context(), filter)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, StagiairesResponse{
		Stagiaires: stagiaires,
		Total:      total,
		Limit:      filter.Limit,
		Offset:     filter.Offset,
	})
}

func (h *Handler) GetStagiaire(w http.ResponseWriter, r *http.Request) {
	id, ok := h.ParseID(w, r, "id", internal.ErrStagiaireNotFound)
	if !ok {
		return
	}

	st, err := h.Service.GetByID(r.Context(), id)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, st)
}

func (h *Handler) CreateStagiaire(w http.ResponseWriter, r *http.Request) {
	var dto CreateStagiaireDTO
	if !h.DecodeJSON(w, r, &dto) {
		return
	}

	st, err := h.Service.Create(r.Context(), dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	h.WriteJSON(w, http.StatusCreated, st)
}

func (h *Handler) UpdateStagiaire(w http.ResponseWriter, r *http.Request) {
	id, ok := h.ParseID(w, r, "id", internal.ErrStagiaireNotFound)
	if !ok {
		return
	}

	var dto UpdateStagiaireDTO
	if !h.DecodeJSON(w, r, &dto) {
		return
	}

	st, err := h.Service.Update(r.Context(), id, dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, st)
}

func (h *Handler) DeleteStagiaire(w http.ResponseWriter, r *http.Request) {
	id, ok := h.ParseID(w, r, "id", internal.ErrStagiaireNotFound)
	if !ok {
		return
	}

	if err := h.Service.Delete(r.Context(), id); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	h.WriteNoContent(w)
}

// UploadAvatar handles POST /stagiaires/{id}/avatar with a multipart "avatar" image.
func (h *Handler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	id, ok := h.ParseID(w, r, "id", internal.ErrStagiaireNotFound)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, MaxAvatarSize+1024)
	if err := r.ParseMultipartForm(MaxAvatarSize); err != nil {
		h.WriteAppError(w, internal.NewValidationFieldError("avatar", "avatar must be a multipart image upload of at most 5MB", internal.ErrCodeInvalidBody))
		return
	}

	file, header, err := r.FormFile("avatar")
	if err != nil {
		h.WriteAppError(w, internal.NewValidationFieldError("avatar", "avatar is required", internal.ErrCodeValidationFailed))
		return
	}
	defer file.Close()

	if ct := header.Header.Get("Content-Type"); ct != "" && !strings.HasPrefix(ct, "image/") {
		h.WriteAppError(w, internal.NewValidationFieldError("avatar", "avatar must be an image", internal.ErrCodeValidationFailed))
		return
	}

	st, err := h.Service.UploadAvatar(r.Context(), id, header.Filename, file)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, st)
}
