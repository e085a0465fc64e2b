package guard

import (
	"bytes"
	"encoding/json"
	"fmt"

	"petcare-inventory-api/internal/auth"
)

// Shape identifies which form an identity response took.
type Shape int

const (
	ShapeUnknown Shape = iota
	ShapeRoles
	ShapeUser
)

// RoleClaim is one entry of a roles list. Identity services send either
// a bare string or an object keyed by name, authority or role.
type RoleClaim struct {
	Name string
}

// UnmarshalJSON accepts "ADMIN", {"name":"ADMIN"}, {"authority":"ROLE_ADMIN"}
// and {"role":"admin"}.
func (c *RoleClaim) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		return json.Unmarshal(data, &c.Name)
	}

	var obj struct {
		Name      string `json:"name"`
		Authority string `json:"authority"`
		Role      string `json:"role"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("invalid role claim: %w", err)
	}
	switch {
	case obj.Name != "":
		c.Name = obj.Name
	case obj.Authority != "":
		c.Name = obj.Authority
	default:
		c.Name = obj.Role
	}
	return nil
}

// UserClaim is the single-role shape.
type UserClaim struct {
	Username string `json:"username"`
	Role     string `json:"role"`
}

// IdentityResponse is the body of an identity check in either accepted
// shape. Use Shape to tell them apart and NormalizeRoles to flatten it.
type IdentityResponse struct {
	Roles []RoleClaim `json:"roles"`
	User  *UserClaim  `json:"user"`
}

// Shape reports which form the response took. A roles list wins when
// both are present.
func (r IdentityResponse) Shape() Shape {
	switch {
	case r.Roles != nil:
		return ShapeRoles
	case r.User != nil:
		return ShapeUser
	default:
		return ShapeUnknown
	}
}

// ParseIdentity decodes an identity response body.
func ParseIdentity(body []byte) (IdentityResponse, error) {
	var resp IdentityResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return IdentityResponse{}, fmt.Errorf("failed to parse identity response: %w", err)
	}
	return resp, nil
}

// RoleSet is a canonical set of uppercase role names.
type RoleSet map[string]struct{}

// Has reports whether the set holds role, compared in canonical form.
func (s RoleSet) Has(role string) bool {
	_, ok := s[auth.NormalizeRole(role)]
	return ok
}

// NormalizeRoles flattens either response shape into a RoleSet.
func NormalizeRoles(resp IdentityResponse) RoleSet {
	set := make(RoleSet)
	add := func(role string) {
		if n := auth.NormalizeRole(role); n != "" {
			set[n] = struct{}{}
		}
	}

	switch resp.Shape() {
	case ShapeRoles:
		for _, claim := range resp.Roles {
			add(claim.Name)
		}
	case ShapeUser:
		add(resp.User.Role)
	}
	return set
}
