package permission

import (
	"sort"

	"ultrabms-backend/shared/database/models"
)

// Resource types the coarse per-resource-type rules cover
const (
	ResourceProperty   = "property"
	ResourceUnit       = "unit"
	ResourceTenant     = "tenant"
	ResourceLease      = "lease"
	ResourceWorkOrder  = "workorder"
	ResourceVendor     = "vendor"
	ResourceInvoice    = "invoice"
	ResourcePDC        = "pdc"
	ResourceCompliance = "compliance"
	ResourceDocument   = "document"
	ResourceReport     = "report"
	ResourceUser       = "user"
	ResourceSession    = "session"
)

// Resolver answers authorization questions against an immutable role map.
// It is built once at startup; unknown roles resolve to no permissions.
type Resolver struct {
	grants map[models.Role]map[string]struct{}
}

// NewResolver builds a resolver from a role -> permission-strings map. The
// input is copied, so the resolver cannot be mutated afterwards.
func NewResolver(rolePermissions map[models.Role][]string) *Resolver {
	grants := make(map[models.Role]map[string]struct{}, len(rolePermissions))
	for role, perms := range rolePermissions {
		set := make(map[string]struct{}, len(perms))
		for _, p := range perms {
			set[p] = struct{}{}
		}
		grants[role] = set
	}
	return &Resolver{grants: grants}
}

// PermissionsFor returns the sorted permission snapshot for a role. Unknown
// roles get an empty set, never everything.
func (r *Resolver) PermissionsFor(role models.Role) []string {
	set, ok := r.grants[role]
	if !ok {
		return []string{}
	}
	perms := make([]string, 0, len(set))
	for p := range set {
		perms = append(perms, p)
	}
	sort.Strings(perms)
	return perms
}

// Has reports whether the role holds the permission. ADMIN is role-name
// gated and short-circuits before the map is consulted.
func (r *Resolver) Has(role models.Role, permission string) bool {
	if role == models.RoleAdmin {
		return true
	}
	set, ok := r.grants[role]
	if !ok {
		return false
	}
	_, granted := set[permission]
	return granted
}

// HasAny reports whether the role holds at least one of the permissions
func (r *Resolver) HasAny(role models.Role, permissions ...string) bool {
	for _, p := range permissions {
		if r.Has(role, p) {
			return true
		}
	}
	return false
}

// HasAll reports whether the role holds every one of the permissions
func (r *Resolver) HasAll(role models.Role, permissions ...string) bool {
	for _, p := range permissions {
		if !r.Has(role, p) {
			return false
		}
	}
	return true
}

// CanAccessResourceType is the coarse per-resource-type rule. The switch is
// exhaustive over the closed role set and denies unless explicitly granted.
func (r *Resolver) CanAccessResourceType(role models.Role, resourceType string) bool {
	switch role {
	case models.RoleAdmin:
		return true
	case models.RolePropertyManager:
		switch resourceType {
		case ResourceProperty, ResourceUnit, ResourceTenant, ResourceLease,
			ResourceWorkOrder, ResourceVendor, ResourceCompliance,
			ResourceDocument, ResourceReport, ResourceSession:
			return true
		}
		return false
	case models.RoleAccountant:
		switch resourceType {
		case ResourceInvoice, ResourcePDC, ResourceLease, ResourceReport,
			ResourceDocument, ResourceSession:
			return true
		}
		return false
	case models.RoleMaintenanceSupervisor:
		switch resourceType {
		case ResourceWorkOrder, ResourceVendor, ResourceProperty,
			ResourceUnit, ResourceDocument, ResourceSession:
			return true
		}
		return false
	case models.RoleTenant:
		switch resourceType {
		case ResourceLease, ResourceWorkOrder, ResourceInvoice,
			ResourceDocument, ResourceSession:
			return true
		}
		return false
	case models.RoleVendor:
		switch resourceType {
		case ResourceWorkOrder, ResourceDocument, ResourceSession:
			return true
		}
		return false
	}
	return false
}

// DefaultRolePermissions is the static Ultra BMS role -> capability table,
// loaded once at process start.
func DefaultRolePermissions() map[models.Role][]string {
	return map[models.Role][]string{
		models.RoleAdmin: {
			"property:manage", "unit:manage", "tenant:manage", "lease:manage",
			"workorder:manage", "vendor:manage", "invoice:manage", "pdc:manage",
			"compliance:manage", "document:manage", "report:manage",
			"user:manage", "session:manage",
		},
		models.RolePropertyManager: {
			"property:read", "property:create", "property:update",
			"unit:read", "unit:create", "unit:update",
			"tenant:read", "tenant:create", "tenant:update",
			"lease:read", "lease:create", "lease:update",
			"workorder:read", "workorder:create", "workorder:update",
			"vendor:read",
			"compliance:read", "compliance:update",
			"document:read", "document:create",
			"report:read",
			"session:manage",
		},
		models.RoleAccountant: {
			"invoice:read", "invoice:create", "invoice:update",
			"pdc:read", "pdc:create", "pdc:update",
			"lease:read",
			"report:read",
			"document:read",
			"session:manage",
		},
		models.RoleMaintenanceSupervisor: {
			"workorder:read", "workorder:create", "workorder:update",
			"vendor:read", "vendor:create", "vendor:update",
			"property:read", "unit:read",
			"document:read", "document:create",
			"session:manage",
		},
		models.RoleTenant: {
			"lease:read",
			"workorder:read", "workorder:create",
			"invoice:read",
			"document:read",
			"session:manage",
		},
		models.RoleVendor: {
			"workorder:read", "workorder:update",
			"document:read",
			"session:manage",
		},
	}
}
