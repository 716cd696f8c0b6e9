package access

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"
)

// ResourceCategory is the closed set of workstream-gated resources.
type ResourceCategory int

const (
	CategoryUnscoped ResourceCategory = iota
	CategoryProperties
	CategoryTenants
	CategoryJournals
	CategoryContactLogs
	CategoryTags
)

var categoryNames = map[ResourceCategory]string{
	CategoryUnscoped:    "unscoped",
	CategoryProperties:  "properties",
	CategoryTenants:     "tenants",
	CategoryJournals:    "journals",
	CategoryContactLogs: "contact-logs",
	CategoryTags:        "tags",
}

// ParseResourceCategory maps a path segment to its category. Anything
// outside the closed set is unscoped.
func ParseResourceCategory(s string) ResourceCategory {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "properties":
		return CategoryProperties
	case "tenants":
		return CategoryTenants
	case "journals":
		return CategoryJournals
	case "contact-logs":
		return CategoryContactLogs
	case "tags":
		return CategoryTags
	default:
		return CategoryUnscoped
	}
}

// String returns the path segment for c.
func (c ResourceCategory) String() string {
	if name, ok := categoryNames[c]; ok {
		return name
	}
	return "unscoped"
}

// Scoped reports whether c is guarded by a workstream.
func (c ResourceCategory) Scoped() bool {
	return c > CategoryUnscoped && c <= CategoryTags
}

// Target is the resource a request addresses.
type Target struct {
	Category ResourceCategory
	Path     string
}

// TargetFromPath takes the first segment after prefix as the category.
// Paths outside prefix are unscoped.
func TargetFromPath(path, prefix string) Target {
	t := Target{Category: CategoryUnscoped, Path: path}

	prefix = "/" + strings.Trim(prefix, "/")
	if prefix == "/" {
		prefix = ""
	}
	rest, ok := strings.CutPrefix(path, prefix)
	if !ok || (rest != "" && !strings.HasPrefix(rest, "/")) {
		return t
	}

	rest = strings.TrimLeft(rest, "/")
	segment, _, _ := strings.Cut(rest, "/")
	t.Category = ParseResourceCategory(segment)
	return t
}

// WorkstreamTable maps each scoped category to the code of its owning
// workstream.
type WorkstreamTable struct {
	codes map[ResourceCategory]string
}

// NewWorkstreamTable rejects unscoped category names and empty codes.
func NewWorkstreamTable(mapping map[string]string) (*WorkstreamTable, error) {
	table := &WorkstreamTable{codes: make(map[ResourceCategory]string, len(mapping))}
	for name, code := range mapping {
		category := ParseResourceCategory(name)
		if !category.Scoped() {
			return nil, fmt.Errorf("resource category %q is not workstream-scoped", name)
		}
		code = strings.TrimSpace(code)
		if code == "" {
			return nil, fmt.Errorf("resource category %q maps to an empty workstream code", name)
		}
		table.codes[category] = code
	}
	return table, nil
}

// WorkstreamFor returns the workstream code that owns c.
func (t *WorkstreamTable) WorkstreamFor(c ResourceCategory) (string, bool) {
	if t == nil {
		return "", false
	}
	code, ok := t.codes[c]
	return code, ok
}

// Outcome is the gate's verdict.
type Outcome int

const (
	Deny Outcome = iota
	Allow
)

// Denial reasons carried on a Decision.
const (
	ReasonAuthenticationRequired   = "authentication required"
	ReasonNoWorkstreamAccess       = "no workstream access"
	ReasonWorkstreamAccessRequired = "workstream access required"
)

// Decision carries an Outcome with the HTTP status and matched workstream.
type Decision struct {
	Outcome    Outcome
	Status     int
	Reason     string
	Category   ResourceCategory
	Workstream string
	Permission PermissionLevel
}

// Allowed reports whether the request may proceed.
func (d Decision) Allowed() bool {
	return d.Outcome == Allow
}

// Permits is the write-level check handlers apply after the gate allowed the
// request. Unscoped allows carry no permission and permit nothing.
func (d Decision) Permits(required PermissionLevel) bool {
	return d.Allowed() && d.Permission.Allows(required)
}

func allow(target Target, workstream string, permission PermissionLevel) Decision {
	return Decision{Outcome: Allow, Category: target.Category, Workstream: workstream, Permission: permission}
}

func deny(target Target, status int, reason string) Decision {
	return Decision{Outcome: Deny, Status: status, Reason: reason, Category: target.Category}
}

// Gate is a pure function of target, profile and table. It is safe for
// concurrent use.
type Gate struct {
	table  *WorkstreamTable
	logger *slog.Logger
}

// NewGate builds a gate over table. Denials are logged to logger.
func NewGate(table *WorkstreamTable, logger *slog.Logger) *Gate {
	return &Gate{
		table:  table,
		logger: logger,
	}
}

// Authorize decides whether profile may reach target and logs every denial.
func (g *Gate) Authorize(target Target, profile *Profile) Decision {
	d := g.decide(target, profile)
	if !d.Allowed() {
		var userID int64
		if profile != nil {
			userID = profile.UserID
		}
		g.logger.Warn("access denied",
			"user_id", userID,
			"category", target.Category.String(),
			"path", target.Path,
			"status", d.Status,
			"reason", d.Reason)
	}
	return d
}

func (g *Gate) decide(target Target, profile *Profile) Decision {
	if !target.Category.Scoped() {
		return allow(target, "", PermissionNone)
	}
	if !profile.Authenticated() {
		return deny(target, http.StatusUnauthorized, ReasonAuthenticationRequired)
	}
	if profile.IsGlobalAdmin {
		code, _ := g.table.WorkstreamFor(target.Category)
		return allow(target, code, PermissionAdmin)
	}
	if len(profile.Grants) == 0 {
		return deny(target, http.StatusForbidden, ReasonNoWorkstreamAccess)
	}

	code, ok := g.table.WorkstreamFor(target.Category)
	if !ok {
		return deny(target, http.StatusForbidden, ReasonWorkstreamAccessRequired)
	}
	grant, ok := profile.GrantFor(code)
	if !ok {
		return deny(target, http.StatusForbidden, ReasonWorkstreamAccessRequired)
	}
	return allow(target, code, grant.Permission)
}
