package property

import (
	"net/http"
	"strconv"

	"github.com/frahmantamala/property-hub/internal"
	"github.com/frahmantamala/property-hub/internal/access"
	"github.com/frahmantamala/property-hub/internal/core/common/validation"
	"github.com/frahmantamala/property-hub/internal/transport"
	"github.com/go-chi/chi"
)

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

func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.ListProperties)
	r.Post("/", h.CreateProperty)
	r.Get("/{id}", h.GetProperty)
}

func (h *Handler) ListProperties(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	properties, err := h.Service.List(r.Context(), limit, offset)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}

	decision := access.DecisionFromContext(r.Context())
	h.WriteJSON(w, http.StatusOK, PropertiesResponse{
		Properties: properties,
		Permission: decision.Permission.String(),
	})
}

func (h *Handler) GetProperty(w http.ResponseWriter, r *http.Request) {
	id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if appErr := validation.ValidateID("id", id); appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}

	p, err := h.Service.Get(r.Context(), id)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, p)
}

func (h *Handler) CreateProperty(w http.ResponseWriter, r *http.Request) {
	var dto CreatePropertyDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.WriteAppError(w, err)
		return
	}

	p, err := h.Service.Create(r.Context(), access.DecisionFromContext(r.Context()), internal.SubjectIDFromContext(r.Context()), dto)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusCreated, p)
}
