package limits

import (
	"context"

	"github.com/google/uuid"

	"github.com/nabi-crm/nabi/pkg/tenant"
)

// PlanResolver resolves the active plan id for a tenant.
type PlanResolver func(ctx context.Context, tenantID uuid.UUID) (string, error)

// TenantRecordResolver reads the plan id from the tenant record the
// middleware placed in the context. It is the default resolver.
func TenantRecordResolver(ctx context.Context, _ uuid.UUID) (string, error) {
	t, ok := tenant.FromContext(ctx)
	if !ok || t.PlanID == "" {
		return "", ErrNoPlanForTenant
	}
	return t.PlanID, nil
}

// StaticResolver always resolves to the given plan id. Useful in tests
// and single-plan deployments.
func StaticResolver(planID string) PlanResolver {
	return func(context.Context, uuid.UUID) (string, error) {
		if planID == "" {
			return "", ErrNoPlanForTenant
		}
		return planID, nil
	}
}
