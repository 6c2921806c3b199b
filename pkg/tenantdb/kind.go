package tenantdb

import (
	"fmt"
	"regexp"
	"slices"
)

// Kind names a persisted resource kind. The string value doubles as the
// table name unless the definition overrides it.
type Kind string

// Resource kinds of the CRM data model.
const (
	KindCompanies        Kind = "companies"
	KindContacts         Kind = "contacts"
	KindDeliveryRules    Kind = "delivery_rules"
	KindEmailLogs        Kind = "email_logs"
	KindNotificationLogs Kind = "notification_logs"

	KindTenants     Kind = "tenants"
	KindUsers       Kind = "users"
	KindAccounts    Kind = "accounts"
	KindSessions    Kind = "sessions"
	KindMemberships Kind = "memberships"
	KindInvitations Kind = "invitations"
)

// Class partitions resource kinds into the two isolation classes. Every
// kind belongs to exactly one; a kind that is never registered cannot be
// queried at all, so nothing silently bypasses isolation.
type Class int

const (
	// ClassTenantScoped rows carry a tenant_id column and are always
	// filtered and stamped by the active scope.
	ClassTenantScoped Class = iota
	// ClassGlobal covers identity infrastructure that must stay queryable
	// before a tenant scope exists (resolving which tenant a user belongs
	// to). Exempt from interception.
	ClassGlobal
)

// TenantColumn is the column stamped and filtered on tenant-scoped kinds.
const TenantColumn = "tenant_id"

// Definition declares one resource kind: its table, isolation class, and
// the columns callers may reference in filters and payloads.
type Definition struct {
	Kind    Kind
	Table   string
	Class   Class
	Columns []string

	colset map[string]struct{}
}

// HasColumn reports whether the column may appear in filters or payloads.
func (d Definition) HasColumn(name string) bool {
	_, ok := d.colset[name]
	return ok
}

var identPattern = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

// Registry is the static catalog of all resource kinds. Populate it once
// at startup; it is read-only afterwards and safe for concurrent use.
type Registry struct {
	defs map[Kind]Definition
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{defs: make(map[Kind]Definition)}
}

// Register adds a kind definition. Table defaults to the kind name.
// Tenant-scoped kinds must declare the tenant column; every identifier is
// validated so registered names are safe to interpolate into SQL.
func (r *Registry) Register(def Definition) error {
	if def.Kind == "" {
		return fmt.Errorf("%w: empty kind", ErrInvalidDefinition)
	}
	if _, exists := r.defs[def.Kind]; exists {
		return fmt.Errorf("%w: %s", ErrKindAlreadyRegistered, def.Kind)
	}
	if def.Table == "" {
		def.Table = string(def.Kind)
	}
	if !identPattern.MatchString(def.Table) {
		return fmt.Errorf("%w: invalid table name %q", ErrInvalidDefinition, def.Table)
	}
	if len(def.Columns) == 0 {
		return fmt.Errorf("%w: kind %s declares no columns", ErrInvalidDefinition, def.Kind)
	}
	for _, col := range def.Columns {
		if !identPattern.MatchString(col) {
			return fmt.Errorf("%w: invalid column %q on kind %s", ErrInvalidDefinition, col, def.Kind)
		}
	}
	if def.Class == ClassTenantScoped && !slices.Contains(def.Columns, TenantColumn) {
		return fmt.Errorf("%w: tenant-scoped kind %s lacks %s column", ErrInvalidDefinition, def.Kind, TenantColumn)
	}

	def.colset = make(map[string]struct{}, len(def.Columns))
	for _, col := range def.Columns {
		def.colset[col] = struct{}{}
	}
	r.defs[def.Kind] = def
	return nil
}

// MustRegister is Register for startup wiring, panicking on bad definitions.
func (r *Registry) MustRegister(def Definition) {
	if err := r.Register(def); err != nil {
		panic(err)
	}
}

// Lookup returns the definition for a kind, or ErrUnknownKind.
func (r *Registry) Lookup(kind Kind) (Definition, error) {
	def, ok := r.defs[kind]
	if !ok {
		return Definition{}, fmt.Errorf("%w: %s", ErrUnknownKind, kind)
	}
	return def, nil
}

// Kinds returns all registered kinds, for review tooling and tests.
func (r *Registry) Kinds() []Kind {
	kinds := make([]Kind, 0, len(r.defs))
	for kind := range r.defs {
		kinds = append(kinds, kind)
	}
	slices.Sort(kinds)
	return kinds
}

// DefaultRegistry returns the exhaustive catalog for the CRM data model.
// Introducing a new table means adding it here, in exactly one class.
func DefaultRegistry() *Registry {
	r := NewRegistry()

	r.MustRegister(Definition{Kind: KindCompanies, Class: ClassTenantScoped,
		Columns: []string{"id", "tenant_id", "name", "domain", "industry", "memo", "created_at", "updated_at"}})
	r.MustRegister(Definition{Kind: KindContacts, Class: ClassTenantScoped,
		Columns: []string{"id", "tenant_id", "company_id", "name", "email", "phone", "position", "created_at", "updated_at"}})
	r.MustRegister(Definition{Kind: KindDeliveryRules, Class: ClassTenantScoped,
		Columns: []string{"id", "tenant_id", "name", "channel", "template_id", "enabled", "created_at", "updated_at"}})
	r.MustRegister(Definition{Kind: KindEmailLogs, Class: ClassTenantScoped,
		Columns: []string{"id", "tenant_id", "contact_id", "message_id", "subject", "status", "created_at"}})
	r.MustRegister(Definition{Kind: KindNotificationLogs, Class: ClassTenantScoped,
		Columns: []string{"id", "tenant_id", "contact_id", "channel", "status", "sent_at", "created_at"}})

	r.MustRegister(Definition{Kind: KindTenants, Class: ClassGlobal,
		Columns: []string{"id", "subdomain", "name", "plan_id", "active", "created_at", "updated_at"}})
	r.MustRegister(Definition{Kind: KindUsers, Class: ClassGlobal,
		Columns: []string{"id", "email", "name", "created_at", "updated_at"}})
	r.MustRegister(Definition{Kind: KindAccounts, Class: ClassGlobal,
		Columns: []string{"id", "user_id", "provider", "provider_account_id", "created_at"}})
	r.MustRegister(Definition{Kind: KindSessions, Class: ClassGlobal,
		Columns: []string{"id", "user_id", "token", "expires_at", "created_at"}})
	r.MustRegister(Definition{Kind: KindMemberships, Class: ClassGlobal,
		Columns: []string{"id", "tenant_id", "user_id", "role", "created_at"}})
	r.MustRegister(Definition{Kind: KindInvitations, Class: ClassGlobal,
		Columns: []string{"id", "tenant_id", "email", "role", "token", "expires_at", "created_at"}})

	return r
}
