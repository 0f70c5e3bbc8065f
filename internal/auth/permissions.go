package auth

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v2"
)

// Roles
const (
	RoleAdmin      = "admin"
	RoleManager    = "manager"
	RoleInstructor = "instructor"
	RoleStudent    = "student"
	RoleJobseeker  = "jobseeker"
	RoleEmployee   = "employee"
	RoleDesigner   = "designer"
)

// Permissions
const (
	PermRead             = "read"
	PermWrite            = "write"
	PermDelete           = "delete"
	PermManageUsers      = "manage_users"
	PermManageCourses    = "manage_courses"
	PermManageContent    = "manage_content"
	PermManageOwnCourses = "manage_own_courses"
)

var AllRoles = []string{
	RoleAdmin, RoleManager, RoleInstructor, RoleStudent,
	RoleJobseeker, RoleEmployee, RoleDesigner,
}

// LearnerRoles may enroll in courses. Admins and managers oversee instead.
var LearnerRoles = []string{
	RoleStudent, RoleInstructor, RoleJobseeker, RoleEmployee, RoleDesigner,
}

var allPermissions = []string{
	PermRead, PermWrite, PermDelete, PermManageUsers,
	PermManageCourses, PermManageContent, PermManageOwnCourses,
}

// IsValidRole reports whether role belongs to the closed role set.
func IsValidRole(role string) bool {
	for _, r := range AllRoles {
		if r == role {
			return true
		}
	}
	return false
}

// IsSelfAssignable reports whether a role may be picked at registration.
func IsSelfAssignable(role string) bool {
	return IsValidRole(role) && role != RoleAdmin && role != RoleManager
}

// IsPrivileged reports whether a role bypasses ownership and enrollment checks.
func IsPrivileged(role string) bool {
	return role == RoleAdmin || role == RoleManager
}

// PermissionTable maps a role to its capability set.
type PermissionTable struct {
	roles map[string]map[string]struct{}
}

type permissionFile struct {
	Roles map[string][]string `yaml:"roles"`
}

// DefaultPermissionTable is used when no permissions file is configured.
func DefaultPermissionTable() *PermissionTable {
	return NewPermissionTable(map[string][]string{
		RoleAdmin:      allPermissions,
		RoleManager:    {PermRead, PermWrite, PermDelete, PermManageUsers, PermManageCourses, PermManageContent},
		RoleInstructor: {PermRead, PermWrite, PermManageOwnCourses, PermManageContent},
		RoleStudent:    {PermRead},
		RoleJobseeker:  {PermRead},
		RoleEmployee:   {PermRead, PermWrite},
		RoleDesigner:   {PermRead, PermWrite, PermManageContent},
	})
}

func NewPermissionTable(src map[string][]string) *PermissionTable {
	t := &PermissionTable{roles: make(map[string]map[string]struct{}, len(src))}
	for role, perms := range src {
		set := make(map[string]struct{}, len(perms))
		for _, p := range perms {
			set[p] = struct{}{}
		}
		t.roles[role] = set
	}
	return t
}

// LoadPermissionTable reads a YAML file of the form:
//
//	roles:
//	  admin: [read, write, ...]
func LoadPermissionTable(path string) (*PermissionTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read permissions file: %w", err)
	}
	return ParsePermissionTable(data)
}

func ParsePermissionTable(data []byte) (*PermissionTable, error) {
	var f permissionFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse permissions file: %w", err)
	}
	if len(f.Roles) == 0 {
		return nil, fmt.Errorf("permissions file defines no roles")
	}
	for role, perms := range f.Roles {
		if !IsValidRole(role) {
			return nil, fmt.Errorf("unknown role %q in permissions file", role)
		}
		for _, p := range perms {
			if !isKnownPermission(p) {
				return nil, fmt.Errorf("unknown permission %q for role %q", p, role)
			}
		}
	}
	return NewPermissionTable(f.Roles), nil
}

func isKnownPermission(p string) bool {
	for _, known := range allPermissions {
		if known == p {
			return true
		}
	}
	return false
}

// Has проверяет есть ли у роли указанное разрешение
func (t *PermissionTable) Has(role, permission string) bool {
	set, ok := t.roles[role]
	if !ok {
		return false
	}
	_, ok = set[permission]
	return ok
}

// Permissions returns the sorted permission list of a role.
func (t *PermissionTable) Permissions(role string) []string {
	out := make([]string, 0, len(t.roles[role]))
	for p := range t.roles[role] {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}
