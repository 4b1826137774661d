package rbac

import (
	"slices"

	"github.com/educore-erp/educore-erp/internal/shared"
)

// Service answers permission and navigation queries. All methods are
// pure reads over the injected config and never fail: missing data
// resolves to the most restrictive answer except the documented
// grace-period fallbacks.
type Service struct {
	cfg Config
}

// NewService constructs a Service over an immutable config.
func NewService(cfg Config) *Service {
	return &Service{cfg: cfg}
}

// HasPermission reports whether the identity may perform action on the
// doctype. Roles are OR-combined, never AND.
func (s *Service) HasPermission(id *shared.Identity, doctype string, action Action) bool {
	if id == nil {
		return false
	}
	if len(id.Roles) == 0 {
		if !s.cfg.GracePeriod {
			return false
		}
		if id.User == AdministratorUser {
			return true
		}
		return action == ActionRead
	}
	if id.HasRole(SystemManagerRole) {
		return true
	}
	for _, role := range id.Roles {
		if perm, ok := s.cfg.Permissions[role.Name][doctype]; ok && perm.Allows(action) {
			return true
		}
	}
	return false
}

// Permissions aggregates the full action tuple for a doctype across
// the identity's roles.
func (s *Service) Permissions(id *shared.Identity, doctype string) Permission {
	var perm Permission
	if id == nil || len(id.Roles) == 0 {
		return perm
	}
	if id.HasRole(SystemManagerRole) {
		return allGranted
	}
	for _, role := range id.Roles {
		if p, ok := s.cfg.Permissions[role.Name][doctype]; ok {
			perm.Read = perm.Read || p.Read
			perm.Write = perm.Write || p.Write
			perm.Create = perm.Create || p.Create
			perm.Delete = perm.Delete || p.Delete
		}
	}
	return perm
}

// CanAccessRoute reports whether the identity may see a named route.
func (s *Service) CanAccessRoute(id *shared.Identity, route string) bool {
	if id == nil {
		return false
	}
	if len(id.Roles) == 0 {
		if !s.cfg.GracePeriod {
			return false
		}
		if id.User == AdministratorUser {
			return true
		}
		return slices.Contains(s.cfg.GraceRoutes, route)
	}
	if id.HasRole(SystemManagerRole) {
		return true
	}
	for _, role := range id.Roles {
		if slices.Contains(s.cfg.Navigation[role.Name], route) {
			return true
		}
	}
	return false
}

// AllowedNavigation returns the union of the identity's role route
// sets, preserving the configured route order.
func (s *Service) AllowedNavigation(id *shared.Identity) []string {
	if id == nil || len(id.Roles) == 0 {
		return nil
	}
	seen := make(map[string]struct{})
	var routes []string
	for _, role := range id.Roles {
		for _, route := range s.cfg.Navigation[role.Name] {
			if _, ok := seen[route]; ok {
				continue
			}
			seen[route] = struct{}{}
			routes = append(routes, route)
		}
	}
	return routes
}

// PrimaryRole picks the identity's highest-priority role; with no
// priority match the first role wins.
func (s *Service) PrimaryRole(id *shared.Identity) string {
	if id == nil || len(id.Roles) == 0 {
		return ""
	}
	for _, name := range s.cfg.Priority {
		if id.HasRole(name) {
			return name
		}
	}
	return id.Roles[0].Name
}

// HasRole checks role membership; under the grace period the
// Administrator account counts as System Manager.
func (s *Service) HasRole(id *shared.Identity, name string) bool {
	if id == nil {
		return false
	}
	if len(id.Roles) == 0 {
		return s.cfg.GracePeriod && id.User == AdministratorUser && name == SystemManagerRole
	}
	return id.HasRole(name)
}

// Dashboard selects the preset for the identity's primary role.
func (s *Service) Dashboard(id *shared.Identity) DashboardConfig {
	if id == nil {
		return DashboardConfig{}
	}
	if len(id.Roles) == 0 {
		if !s.cfg.GracePeriod {
			return s.cfg.DefaultDashboard
		}
		if id.User == AdministratorUser {
			return DashboardConfig{ShowSystemStatus: true, ShowAllMetrics: true, ShowQuickActions: true, ShowDebugInfo: true}
		}
		return DashboardConfig{ShowAllMetrics: true, ShowQuickActions: true}
	}
	if preset, ok := s.cfg.Dashboards[s.PrimaryRole(id)]; ok {
		return preset
	}
	return s.cfg.DefaultDashboard
}
