package rbac

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// policy mirrors the published dashboard matrix, written as action -> resources.
var policy = map[Role]map[Action][]Resource{
	RoleMaster: {
		ActionCreate: {ResourceProducts, ResourceCategories, ResourceUsers, ResourceNotifications, ResourceWhatsNew},
		ActionRead:   {ResourceProducts, ResourceCategories, ResourceUsers, ResourceLogs, ResourceInquiries, ResourceAppUsers, ResourceNotifications, ResourceWhatsNew},
		ActionUpdate: {ResourceProducts, ResourceCategories, ResourceUsers, ResourceInquiries, ResourceAppUsers, ResourceNotifications, ResourceWhatsNew},
		ActionDelete: {ResourceProducts, ResourceCategories, ResourceUsers, ResourceNotifications, ResourceWhatsNew},
	},
	RoleAdmin: {
		ActionCreate: {ResourceProducts, ResourceCategories, ResourceNotifications, ResourceWhatsNew},
		ActionRead:   {ResourceProducts, ResourceCategories, ResourceUsers, ResourceLogs, ResourceInquiries, ResourceAppUsers, ResourceNotifications, ResourceWhatsNew},
		ActionUpdate: {ResourceProducts, ResourceCategories, ResourceInquiries, ResourceAppUsers, ResourceNotifications, ResourceWhatsNew},
		ActionDelete: {ResourceProducts, ResourceCategories, ResourceNotifications, ResourceWhatsNew},
	},
	RoleUser: {
		ActionRead: {ResourceProducts, ResourceCategories, ResourceInquiries, ResourceNotifications, ResourceWhatsNew},
	},
}

func allowedByPolicy(role Role, action Action, resource Resource) bool {
	for _, r := range policy[role][action] {
		if r == resource {
			return true
		}
	}
	return false
}

func TestHasPermissionMatchesPolicyExhaustively(t *testing.T) {
	for _, role := range Roles() {
		for _, action := range Actions() {
			for _, resource := range Resources() {
				want := allowedByPolicy(role, action, resource)
				got := HasPermission(role, action, resource)
				assert.Equalf(t, want, got, "%s %s %s", role, action, resource)
			}
		}
	}
}

func TestHasPermissionDefaultDeny(t *testing.T) {
	unknown := []Role{"", "pending", "guest", "MASTER", "root"}
	for _, role := range unknown {
		for _, action := range Actions() {
			for _, resource := range Resources() {
				assert.Falsef(t, HasPermission(role, action, resource), "%q %s %s", role, action, resource)
			}
		}
	}
	assert.False(t, HasPermission(RoleMaster, "publish", ResourceProducts))
	assert.False(t, HasPermission(RoleMaster, ActionRead, "invoices"))
}

func TestHasPermissionExamples(t *testing.T) {
	assert.False(t, HasPermission(RoleUser, ActionDelete, ResourceProducts))
	assert.True(t, HasPermission(RoleAdmin, ActionUpdate, ResourceCategories))
	assert.True(t, HasPermission(RoleMaster, ActionRead, ResourceLogs))
	assert.False(t, HasPermission(RoleUser, ActionRead, ResourceLogs))
}

func TestEveryTableRoleIsKnown(t *testing.T) {
	for role, set := range grants {
		_, ok := ParseRole(string(role))
		require.Truef(t, ok, "role %q in table is not a known role", role)
		for p := range set {
			_, ok := ParseAction(string(p.Action))
			assert.True(t, ok, p.String())
			_, ok = ParseResource(string(p.Resource))
			assert.True(t, ok, p.String())
		}
	}
}

func TestPermissionsSorted(t *testing.T) {
	perms := Permissions(RoleUser)
	require.Len(t, perms, 5)
	assert.Equal(t, Permission{Action: ActionRead, Resource: ResourceCategories}, perms[0])
	assert.Equal(t, Permission{Action: ActionRead, Resource: ResourceWhatsNew}, perms[4])
	assert.Empty(t, Permissions(RolePending))
	assert.Empty(t, Permissions(""))
}

func TestParseRole(t *testing.T) {
	role, ok := ParseRole(" Admin ")
	require.True(t, ok)
	assert.Equal(t, RoleAdmin, role)

	_, ok = ParseRole("owner")
	assert.False(t, ok)
}
