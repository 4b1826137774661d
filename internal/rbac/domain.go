// Package rbac implements the role-based visibility model. The gating
// here is advisory UI state only; the backend remains the authority on
// every data call.
package rbac

// Action names the four document permissions.
type Action string

// Document actions.
const (
	ActionRead   Action = "read"
	ActionWrite  Action = "write"
	ActionCreate Action = "create"
	ActionDelete Action = "delete"
)

// Distinguished principals.
const (
	// SystemManagerRole grants every action on every doctype
	// regardless of table contents.
	SystemManagerRole = "System Manager"
	// AdministratorUser is the fallback account treated as all-powerful
	// before role data is attached.
	AdministratorUser = "Administrator"
)

// Permission is the per-doctype action tuple.
type Permission struct {
	Read   bool `json:"read"`
	Write  bool `json:"write"`
	Create bool `json:"create"`
	Delete bool `json:"delete"`
}

// Allows resolves one action against the tuple.
func (p Permission) Allows(action Action) bool {
	switch action {
	case ActionRead:
		return p.Read
	case ActionWrite:
		return p.Write
	case ActionCreate:
		return p.Create
	case ActionDelete:
		return p.Delete
	}
	return false
}

// DashboardConfig is the per-role dashboard preset.
type DashboardConfig struct {
	ShowSystemStatus bool
	ShowAllMetrics   bool
	ShowQuickActions bool
	ShowDebugInfo    bool
}

// Config is the immutable permission configuration injected at process
// start. Absence of an entry always denies.
type Config struct {
	// Permissions maps role -> doctype -> allowed actions.
	Permissions map[string]map[string]Permission
	// Navigation maps role -> allowed route names.
	Navigation map[string][]string
	// Priority orders roles for primary-role selection.
	Priority []string
	// Dashboards maps primary role -> preset; DefaultDashboard covers
	// unrecognized roles.
	Dashboards       map[string]DashboardConfig
	DefaultDashboard DashboardConfig

	// GracePeriod enables the pre-role-data permissive fallback:
	// Administrator gets everything, other authenticated users read
	// access and GraceRoutes. Toggleable so the policy can be audited
	// or disabled independently of the tables.
	GracePeriod bool
	GraceRoutes []string
}

var allGranted = Permission{Read: true, Write: true, Create: true, Delete: true}
var readOnly = Permission{Read: true}

// DefaultConfig returns the static tables for the educational ERP's
// eight roles and six doctypes.
func DefaultConfig() Config {
	return Config{
		Permissions: map[string]map[string]Permission{
			SystemManagerRole: {
				"Student":       allGranted,
				"Program":       allGranted,
				"Course":        allGranted,
				"Academic Year": allGranted,
				"Customer":      allGranted,
				"Supplier":      allGranted,
			},
			"Education Manager": {
				"Student":       allGranted,
				"Program":       allGranted,
				"Course":        allGranted,
				"Academic Year": allGranted,
				"Customer":      readOnly,
				"Supplier":      readOnly,
			},
			"Education User": {
				"Student":       {Read: true, Write: true, Create: true},
				"Program":       readOnly,
				"Course":        {Read: true, Write: true, Create: true},
				"Academic Year": readOnly,
			},
			"Student User": {
				"Student":       {Read: true, Write: true, Create: true},
				"Program":       readOnly,
				"Course":        readOnly,
				"Academic Year": readOnly,
			},
			"Instructor": {
				"Student":       readOnly,
				"Program":       readOnly,
				"Course":        {Read: true, Write: true},
				"Academic Year": readOnly,
			},
			"Student": {
				"Student":       readOnly,
				"Program":       readOnly,
				"Course":        readOnly,
				"Academic Year": readOnly,
			},
			"Data Entry User": {
				"Student":       {Read: true, Write: true, Create: true},
				"Program":       readOnly,
				"Course":        readOnly,
				"Academic Year": readOnly,
				"Customer":      {Read: true, Write: true, Create: true},
				"Supplier":      {Read: true, Write: true, Create: true},
			},
			"Report User": {
				"Student":       readOnly,
				"Program":       readOnly,
				"Course":        readOnly,
				"Academic Year": readOnly,
				"Customer":      readOnly,
				"Supplier":      readOnly,
			},
		},
		Navigation: map[string][]string{
			SystemManagerRole:   {"dashboard", "students", "courses", "academic-years", "partners", "debug"},
			"Education Manager": {"dashboard", "students", "courses", "academic-years", "partners"},
			"Education User":    {"dashboard", "students", "courses", "academic-years"},
			"Student User":      {"dashboard", "students", "courses", "academic-years"},
			"Instructor":        {"dashboard", "students", "courses"},
			"Student":           {"dashboard", "courses"},
			"Data Entry User":   {"dashboard", "students", "partners"},
			"Report User":       {"dashboard"},
		},
		Priority: []string{
			SystemManagerRole,
			"Education Manager",
			"Accounts Manager",
			"Education User",
			"Student User",
			"Instructor",
			"Student",
			"Data Entry User",
			"Report User",
		},
		Dashboards: map[string]DashboardConfig{
			SystemManagerRole:   {ShowSystemStatus: true, ShowAllMetrics: true, ShowQuickActions: true, ShowDebugInfo: true},
			"Education Manager": {ShowSystemStatus: true, ShowAllMetrics: true, ShowQuickActions: true},
			"Education User":    {ShowAllMetrics: true, ShowQuickActions: true},
			"Student User":      {ShowAllMetrics: true, ShowQuickActions: true},
			"Instructor":        {},
			"Student":           {},
			"Data Entry User":   {ShowQuickActions: true},
			"Report User":       {ShowAllMetrics: true},
		},
		DefaultDashboard: DashboardConfig{},
		GracePeriod:      true,
		GraceRoutes:      []string{"dashboard", "students", "courses", "academic-years"},
	}
}
