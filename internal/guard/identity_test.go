package guard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseIdentityShapes(t *testing.T) {
	tests := []struct {
		body  string
		shape Shape
		roles []string
	}{
		{`{"roles":["admin","Role_Staff"]}`, ShapeRoles, []string{"ADMIN", "STAFF"}},
		{`{"roles":[{"name":"admin"},{"role":"vet"}]}`, ShapeRoles, []string{"ADMIN", "VET"}},
		{`{"roles":[]}`, ShapeRoles, nil},
		{`{"user":{"username":"a","role":"role_admin"}}`, ShapeUser, []string{"ADMIN"}},
		{`{"roles":["STAFF"],"user":{"role":"ADMIN"}}`, ShapeRoles, []string{"STAFF"}},
		{`{}`, ShapeUnknown, nil},
	}

	for _, tt := range tests {
		t.Run(tt.body, func(t *testing.T) {
			resp, err := ParseIdentity([]byte(tt.body))
			require.NoError(t, err)
			assert.Equal(t, tt.shape, resp.Shape())

			set := NormalizeRoles(resp)
			assert.Len(t, set, len(tt.roles))
			for _, r := range tt.roles {
				assert.True(t, set.Has(r), r)
			}
		})
	}
}

func TestParseIdentityRejectsBadRoles(t *testing.T) {
	_, err := ParseIdentity([]byte(`{"roles":[42]}`))
	assert.Error(t, err)

	_, err = ParseIdentity([]byte(`not json`))
	assert.Error(t, err)
}

func TestRoleSetHasNormalizes(t *testing.T) {
	set := RoleSet{"ADMIN": {}}
	assert.True(t, set.Has("admin"))
	assert.True(t, set.Has("ROLE_ADMIN"))
	assert.False(t, set.Has("STAFF"))
	assert.False(t, RoleSet(nil).Has("ADMIN"))
}
