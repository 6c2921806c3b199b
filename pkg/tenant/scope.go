package tenant

import (
	"context"
	"log/slog"
	"sync"
)

// Role identifies the privilege level of a scope. It is forwarded to the
// database session so row-security policies can distinguish ordinary
// tenant traffic from administrative access.
type Role string

const (
	// RoleAuthenticated is the default role for request-bound scopes.
	RoleAuthenticated Role = "authenticated"
	// RoleService bypasses per-tenant filtering for legitimate
	// cross-tenant work (migrations, superadmin tooling).
	RoleService Role = "service_role"
)

// Scope carries the tenant identity for one logical call chain. The
// pointer lives in the context, so nested scopes shadow the outer one and
// concurrent chains never share an instance. It is mutable on purpose:
// Set and Clear adjust the identity of an already running chain, e.g.
// after an auth lookup that had to run tenant-agnostic queries first.
type Scope struct {
	mu       sync.RWMutex
	tenantID string
	userID   string
	role     Role
}

// TenantID returns the tenant identifier held by the scope.
func (s *Scope) TenantID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.tenantID
}

// UserID returns the user identifier held by the scope.
func (s *Scope) UserID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.userID
}

// Role returns the privilege level of the scope.
func (s *Scope) Role() Role {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.role
}

func (s *Scope) set(tenantID, userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tenantID = tenantID
	s.userID = userID
}

type scopeKey struct{}

// WithScope returns a context carrying a fresh, fully independent scope.
// An outer scope on ctx is shadowed, not modified, and becomes visible
// again in any code still holding the original context.
func WithScope(ctx context.Context, tenantID, userID string) context.Context {
	return context.WithValue(ctx, scopeKey{}, &Scope{
		tenantID: tenantID,
		userID:   userID,
		role:     RoleAuthenticated,
	})
}

// ScopeFromContext returns the active scope, if any.
func ScopeFromContext(ctx context.Context) (*Scope, bool) {
	s, ok := ctx.Value(scopeKey{}).(*Scope)
	return s, ok && s != nil
}

// CurrentTenantID returns the active scope's tenant id.
// Returns ("", false) outside any scope or when the scope was cleared.
func CurrentTenantID(ctx context.Context) (string, bool) {
	s, ok := ScopeFromContext(ctx)
	if !ok {
		return "", false
	}
	id := s.TenantID()
	return id, id != ""
}

// CurrentUserID returns the active scope's user id.
// Returns ("", false) outside any scope or when no user is associated.
func CurrentUserID(ctx context.Context) (string, bool) {
	s, ok := ScopeFromContext(ctx)
	if !ok {
		return "", false
	}
	id := s.UserID()
	return id, id != ""
}

// CurrentRole returns the active scope's role, or RoleAuthenticated
// outside any scope.
func CurrentRole(ctx context.Context) Role {
	s, ok := ScopeFromContext(ctx)
	if !ok {
		return RoleAuthenticated
	}
	return s.Role()
}

// SetScope mutates the currently active scope in place. Used when the
// identity is resolved partway through a call chain. Outside a scope it
// logs a warning and does nothing; there is no scope to mutate and
// creating one here would leak past the caller.
func SetScope(ctx context.Context, tenantID, userID string) {
	s, ok := ScopeFromContext(ctx)
	if !ok {
		slog.Default().WarnContext(ctx, "tenant: SetScope called outside of a scope, ignoring",
			slog.String("tenant_id", tenantID))
		return
	}
	s.set(tenantID, userID)
}

// ClearScope resets the active scope's identity to empty, so subsequent
// data access in the same chain is treated as having no tenant. No-op
// outside a scope.
func ClearScope(ctx context.Context) {
	s, ok := ScopeFromContext(ctx)
	if !ok {
		return
	}
	s.set("", "")
}

// Run establishes a new isolated scope for the dynamic extent of fn and
// returns fn's result. The scope is visible to everything fn calls or
// spawns with the context it receives, and to nothing else; it is
// discarded when fn returns. tenantID must be non-empty.
func Run(ctx context.Context, tenantID, userID string, fn func(context.Context) error) error {
	if tenantID == "" {
		return ErrEmptyTenantID
	}
	return fn(WithScope(ctx, tenantID, userID))
}

// RunScoped is Run for callbacks that produce a value.
func RunScoped[T any](ctx context.Context, tenantID, userID string, fn func(context.Context) (T, error)) (T, error) {
	if tenantID == "" {
		var zero T
		return zero, ErrEmptyTenantID
	}
	return fn(WithScope(ctx, tenantID, userID))
}

// AsServiceRole runs fn under an elevated scope that bypasses per-tenant
// filtering. Reserved for operational code paths that legitimately span
// tenants; everything executed under it is logged with the service role
// attached.
func AsServiceRole(ctx context.Context, fn func(context.Context) error) error {
	scoped := context.WithValue(ctx, scopeKey{}, &Scope{role: RoleService})
	return fn(scoped)
}

// AsAuthenticatedUser runs fn under a normal authenticated scope for the
// given user, keeping the currently active tenant if there is one.
// Convenience wrapper for jobs that act on behalf of a known user.
func AsAuthenticatedUser(ctx context.Context, userID string, fn func(context.Context) error) error {
	tenantID := ""
	if s, ok := ScopeFromContext(ctx); ok {
		tenantID = s.TenantID()
	}
	scoped := context.WithValue(ctx, scopeKey{}, &Scope{
		tenantID: tenantID,
		userID:   userID,
		role:     RoleAuthenticated,
	})
	return fn(scoped)
}
