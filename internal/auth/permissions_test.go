package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultPermissionTable(t *testing.T) {
	table := DefaultPermissionTable()

	assert.True(t, table.Has(RoleAdmin, PermManageUsers))
	assert.True(t, table.Has(RoleAdmin, PermManageOwnCourses))
	assert.True(t, table.Has(RoleManager, PermManageCourses))
	assert.False(t, table.Has(RoleManager, PermManageOwnCourses))
	assert.True(t, table.Has(RoleInstructor, PermManageOwnCourses))
	assert.False(t, table.Has(RoleInstructor, PermManageUsers))
	assert.True(t, table.Has(RoleStudent, PermRead))
	assert.False(t, table.Has(RoleStudent, PermWrite))
	assert.False(t, table.Has("ghost", PermRead))

	assert.Equal(t, []string{PermManageContent, PermRead, PermWrite}, table.Permissions(RoleDesigner))
}

func TestParsePermissionTable(t *testing.T) {
	table, err := ParsePermissionTable([]byte(`
roles:
  admin: [read, write, delete, manage_users]
  student: [read, write]
`))
	require.NoError(t, err)
	assert.True(t, table.Has(RoleStudent, PermWrite))
	assert.False(t, table.Has(RoleInstructor, PermRead))

	_, err = ParsePermissionTable([]byte("roles:\n  wizard: [read]\n"))
	assert.Error(t, err)

	_, err = ParsePermissionTable([]byte("roles:\n  admin: [fly]\n"))
	assert.Error(t, err)

	_, err = ParsePermissionTable([]byte("roles: {}\n"))
	assert.Error(t, err)
}

func TestRoleHelpers(t *testing.T) {
	assert.True(t, IsSelfAssignable(RoleStudent))
	assert.True(t, IsSelfAssignable(RoleInstructor))
	assert.False(t, IsSelfAssignable(RoleAdmin))
	assert.False(t, IsSelfAssignable(RoleManager))
	assert.False(t, IsSelfAssignable("root"))
	assert.True(t, IsPrivileged(RoleManager))
	assert.False(t, IsPrivileged(RoleInstructor))
}
