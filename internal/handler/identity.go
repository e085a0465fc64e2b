package handler

import (
	"net/http"

	"petcare-inventory-api/internal/auth"
	"petcare-inventory-api/internal/middleware"
	"petcare-inventory-api/pkg/apierror"
	"petcare-inventory-api/pkg/response"
)

// IdentityHandler reports who the caller is. It backs the client-side
// admin guard, which accepts either response shape.
type IdentityHandler struct{}

// NewIdentityHandler creates a new identity handler.
func NewIdentityHandler() *IdentityHandler {
	return &IdentityHandler{}
}

// UserInfo is the single-role shape.
type UserInfo struct {
	Username string `json:"username"`
	Role     string `json:"role"`
}

// MeResponse is returned by GET /api/v1/auth/me.
type MeResponse struct {
	User UserInfo `json:"user"`
}

// RoleRef is one entry of the role list shape.
type RoleRef struct {
	Name string `json:"name"`
}

// RolesResponse is returned by GET /api/v1/users/me.
type RolesResponse struct {
	Username string    `json:"username"`
	Roles    []RoleRef `json:"roles"`
}

// Me handles GET /api/v1/auth/me
func (h *IdentityHandler) Me(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaimsFromContext(r.Context())
	if claims == nil {
		response.Error(w, apierror.Unauthorized(""))
		return
	}

	role := ""
	if names := claims.RoleNames(); len(names) > 0 {
		role = names[0]
		if claims.HasRole(auth.RoleAdmin) {
			role = auth.RoleAdmin
		}
	}

	response.Raw(w, http.StatusOK, MeResponse{
		User: UserInfo{Username: claims.Principal(), Role: role},
	})
}

// Roles handles GET /api/v1/users/me
func (h *IdentityHandler) Roles(w http.ResponseWriter, r *http.Request) {
	claims := middleware.GetClaimsFromContext(r.Context())
	if claims == nil {
		response.Error(w, apierror.Unauthorized(""))
		return
	}

	roles := make([]RoleRef, 0)
	for _, name := range claims.RoleNames() {
		roles = append(roles, RoleRef{Name: name})
	}

	response.Raw(w, http.StatusOK, RolesResponse{Username: claims.Principal(), Roles: roles})
}
