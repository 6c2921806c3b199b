package tenant

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Tenant is the minimal tenant record needed by request handling:
// identity, plan, and whether the tenant is allowed to operate.
type Tenant struct {
	ID        uuid.UUID `json:"id"`
	Subdomain string    `json:"subdomain"`
	Name      string    `json:"name"`
	PlanID    string    `json:"plan_id"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

// Provider loads tenant records from a data source. Lookups run before a
// scope exists, so implementations must read from a global (non
// tenant-scoped) resource kind.
type Provider interface {
	// GetByIdentifier retrieves a tenant by any unique identifier, such
	// as a UUID or subdomain. Returns ErrTenantNotFound if nothing matches.
	GetByIdentifier(ctx context.Context, identifier string) (*Tenant, error)
}
