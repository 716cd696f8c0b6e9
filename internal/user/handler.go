package user

import (
	"net/http"

	"github.com/frahmantamala/property-hub/internal"
	"github.com/frahmantamala/property-hub/internal/access"
	"github.com/frahmantamala/property-hub/internal/transport"
)

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(baseHandler *transport.BaseHandler, svc ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     svc,
	}
}

// GetCurrentUser handles GET /users/me
func (h *Handler) GetCurrentUser(w http.ResponseWriter, r *http.Request) {
	u, err := h.Service.GetByID(r.Context(), internal.SubjectIDFromContext(r.Context()))
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, ToUserResponse(u))
}

// GetMyAccess handles GET /users/me/access. Global admins still see their
// raw grants.
func (h *Handler) GetMyAccess(w http.ResponseWriter, r *http.Request) {
	profile, ok := access.ProfileFromContext(r.Context())
	if !ok {
		h.WriteError(w, http.StatusUnauthorized, access.ReasonAuthenticationRequired)
		return
	}

	u, err := h.Service.GetByID(r.Context(), profile.UserID)
	if err != nil {
		h.WriteAppError(w, err)
		return
	}
	h.WriteJSON(w, http.StatusOK, AccessResponse{
		User:    ToUserResponse(u),
		Profile: profile,
	})
}
