package auth

import (
	"net/http"
	"strings"

	"github.com/noah-isme/backend-orcamento/internal/common"
)

// Handler serves POST /auth/login.
type Handler struct {
	Service *Service
}

// Login exchanges admin credentials for a bearer token.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := common.DecodeJSON(r, &body); err != nil {
		common.WriteAppError(w, err)
		return
	}
	if strings.TrimSpace(body.Email) == "" || body.Password == "" {
		common.WriteAppError(w, common.BadRequest("email", "email and password are required", nil))
		return
	}
	result, err := h.Service.Login(r.Context(), body.Email, body.Password)
	if err != nil {
		common.WriteAppError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": result})
}
