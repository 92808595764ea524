package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseRole(t *testing.T) {
	assert.Equal(t, RoleOwner, ParseRole("owner"))
	assert.Equal(t, RoleAdmin, ParseRole(" Admin "))
	assert.Equal(t, RoleOptometrist, ParseRole("OPTOMETRIST"))
	assert.Equal(t, RoleUnknown, ParseRole("superuser"))
	assert.Equal(t, RoleUnknown, ParseRole(""))
	assert.Equal(t, "UNKNOWN", RoleUnknown.String())
}

func TestHasChainWideScope(t *testing.T) {
	chainWide := map[Role]bool{
		RoleOwner:        true,
		RoleAdmin:        true,
		RoleManager:      false,
		RoleStaff:        false,
		RoleOptometrist:  false,
		RoleReceptionist: false,
		RoleUnknown:      false,
	}
	for role, want := range chainWide {
		assert.Equal(t, want, role.HasChainWideScope(), role.String())
	}
}
