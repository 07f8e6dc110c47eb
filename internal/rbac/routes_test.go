package rbac

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanAccessRoute(t *testing.T) {
	cases := []struct {
		role  Role
		route string
		want  bool
	}{
		{RoleUser, "/dashboard/users", false},
		{RoleMaster, "/dashboard/users", true},
		{RoleAdmin, "/dashboard/products/edit/123", true},
		{RoleUser, "/dashboard/products/edit/123", false},
		{RoleUser, "/dashboard/products/view/123", true},
		{RoleAdmin, "/dashboard/users/edit/42", false},
		{RoleMaster, "/dashboard/users/edit/42", true},
		{RoleUser, "/dashboard", true},
		{RoleUser, "/dashboard/logs", false},
		{RoleAdmin, "/dashboard/whats-new/view/9", true},
		{RoleMaster, "/settings", false},
		{RoleMaster, "/dashboardx", false},
		{RoleUser, "/dashboard/products/newest", true},
		{RoleUser, "/dashboard/products/new/", false},
		{RoleMaster, "/", false},
		{RolePending, "/dashboard", false},
		{"", "/dashboard", false},
		{"intruder", "/dashboard/products", false},
	}
	for _, tc := range cases {
		assert.Equalf(t, tc.want, CanAccessRoute(tc.role, tc.route), "%q %s", tc.role, tc.route)
	}
}

func TestCanAccessRouteLongestPrefixWins(t *testing.T) {
	// "/dashboard" alone would admit users; the longer categories/new entry must decide.
	assert.False(t, CanAccessRoute(RoleUser, "/dashboard/categories/new/draft"))
	assert.True(t, CanAccessRoute(RoleUser, "/dashboard/categories/abrasives"))
}
