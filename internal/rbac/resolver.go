package rbac

import "github.com/educore-erp/educore-erp/internal/shared"

// RoleResolver attaches roles to a username at login time. The real
// implementation would query the backend's role assignments; the
// static resolver below stands in for that service.
type RoleResolver interface {
	Resolve(username string) []shared.Role
}

// StaticResolver maps usernames to roles from a fixed table, handing
// every unknown user the fallback role.
type StaticResolver struct {
	table    map[string][]string
	fallback []string
}

// NewStaticResolver returns the demo user/role table.
func NewStaticResolver() *StaticResolver {
	return &StaticResolver{
		table: map[string][]string{
			AdministratorUser: {SystemManagerRole},
			"admin":           {SystemManagerRole},
			"academic.admin":  {"Education Manager"},
			"registrar":       {"Student User"},
			"prof.smith":      {"Instructor"},
			"student.doe":     {"Student"},
			"data.clerk":      {"Data Entry User"},
			"reports.viewer":  {"Report User"},
		},
		fallback: []string{"Education User"},
	}
}

// Resolve implements RoleResolver.
func (r *StaticResolver) Resolve(username string) []shared.Role {
	names, ok := r.table[username]
	if !ok {
		names = r.fallback
	}
	roles := make([]shared.Role, 0, len(names))
	for _, name := range names {
		roles = append(roles, shared.Role{Name: name, Description: "Demo role: " + name})
	}
	return roles
}
