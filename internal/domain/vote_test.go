package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQuorumThreshold(t *testing.T) {
	cases := []struct {
		superAdmins int
		want        int
	}{
		{0, 0},
		{1, 1},
		{2, 1},
		{3, 2},
		{4, 2},
		{5, 3},
		{10, 5},
		{11, 6},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, QuorumThreshold(tc.superAdmins), "superAdmins=%d", tc.superAdmins)
	}
}

func TestVoteTypeRoles(t *testing.T) {
	assert.Equal(t, RoleSuperAdmin, VoteTypeRemoveSuperAdmin.RequiredRole())
	assert.Equal(t, RoleAdmin, VoteTypeRemoveSuperAdmin.DemotedRole())

	assert.Equal(t, RoleAdmin, VoteTypeRemoveAdmin.RequiredRole())
	assert.Equal(t, RoleUser, VoteTypeRemoveAdmin.DemotedRole())
}
