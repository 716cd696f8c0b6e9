package admin

import (
	"net/http"
	"strconv"

	"github.com/frahmantamala/property-hub/internal"
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

// Routes mounts the console; callers wrap it in RequireGlobalAdmin.
func (h *Handler) Routes(r chi.Router) {
	r.Put("/users/{userID}/workstreams/{workstreamID}", h.GrantWorkstreamAccess)
	r.Delete("/users/{userID}/workstreams/{workstreamID}", h.RevokeWorkstreamAccess)
	r.Patch("/users/{userID}/active", h.SetUserActive)
	r.Post("/users/{userID}/roles", h.AssignRole)
	r.Patch("/workstreams/{workstreamID}/active", h.SetWorkstreamActive)
}

func (h *Handler) GrantWorkstreamAccess(w http.ResponseWriter, r *http.Request) {
	userID, workstreamID, ok := h.userAndWorkstream(w, r)
	if !ok {
		return
	}
	var dto GrantAccessDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.WriteAppError(w, err)
		return
	}
	if appErr := dto.Validate(); appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}

	if err := h.Service.GrantWorkstreamAccess(r.Context(), internal.SubjectIDFromContext(r.Context()), userID, workstreamID, dto.PermissionTypeID); err != nil {
		h.WriteAppError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, MutationResponse{Status: "granted"})
}

func (h *Handler) RevokeWorkstreamAccess(w http.ResponseWriter, r *http.Request) {
	userID, workstreamID, ok := h.userAndWorkstream(w, r)
	if !ok {
		return
	}
	if err := h.Service.RevokeWorkstreamAccess(r.Context(), internal.SubjectIDFromContext(r.Context()), userID, workstreamID); err != nil {
		h.WriteAppError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) SetUserActive(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.pathID(w, r, "userID")
	if !ok {
		return
	}
	var dto SetActiveDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.WriteAppError(w, err)
		return
	}
	if appErr := dto.Validate(); appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}

	if err := h.Service.SetUserActive(r.Context(), internal.SubjectIDFromContext(r.Context()), userID, *dto.IsActive); err != nil {
		h.WriteAppError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, MutationResponse{Status: statusWord(*dto.IsActive)})
}

func (h *Handler) SetWorkstreamActive(w http.ResponseWriter, r *http.Request) {
	workstreamID, ok := h.pathID(w, r, "workstreamID")
	if !ok {
		return
	}
	var dto SetActiveDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.WriteAppError(w, err)
		return
	}
	if appErr := dto.Validate(); appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}

	if err := h.Service.SetWorkstreamActive(r.Context(), internal.SubjectIDFromContext(r.Context()), workstreamID, *dto.IsActive); err != nil {
		h.WriteAppError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, MutationResponse{Status: statusWord(*dto.IsActive)})
}

func (h *Handler) AssignRole(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.pathID(w, r, "userID")
	if !ok {
		return
	}
	var dto AssignRoleDTO
	if err := h.DecodeJSON(r, &dto); err != nil {
		h.WriteAppError(w, err)
		return
	}
	if appErr := dto.Validate(); appErr != nil {
		h.WriteAppError(w, appErr)
		return
	}

	if err := h.Service.AssignRole(r.Context(), internal.SubjectIDFromContext(r.Context()), userID, dto.RoleID); err != nil {
		h.WriteAppError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, MutationResponse{Status: "assigned"})
}

func (h *Handler) pathID(w http.ResponseWriter, r *http.Request, param string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, param), 10, 64)
	if err != nil {
		id = 0
	}
	if appErr := validation.ValidateID(param, id); appErr != nil {
		h.WriteAppError(w, appErr)
		return 0, false
	}
	return id, true
}

func (h *Handler) userAndWorkstream(w http.ResponseWriter, r *http.Request) (int64, int64, bool) {
	userID, ok := h.pathID(w, r, "userID")
	if !ok {
		return 0, 0, false
	}
	workstreamID, ok := h.pathID(w, r, "workstreamID")
	if !ok {
		return 0, 0, false
	}
	return userID, workstreamID, true
}

func statusWord(active bool) string {
	if active {
		return "activated"
	}
	return "deactivated"
}
