package limits

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/nabi-crm/nabi/pkg/tenantdb"
)

// StoreCounter counts all rows of kind for the tenant via the protected
// store. Under an active scope the store pins the count to the scope
// tenant; under a service-role scope the explicit tenant id applies.
func StoreCounter(store *tenantdb.Store, kind tenantdb.Kind) CounterFunc {
	return func(ctx context.Context, tenantID uuid.UUID) (int64, error) {
		return store.Count(ctx, kind, tenantdb.Filter{
			"tenant_id": tenantID.String(),
		})
	}
}

// PeriodStoreCounter counts rows created inside the current billing
// month, for resources whose quota resets monthly.
func PeriodStoreCounter(store *tenantdb.Store, kind tenantdb.Kind, now func() time.Time) CounterFunc {
	if now == nil {
		now = time.Now
	}
	return func(ctx context.Context, tenantID uuid.UUID) (int64, error) {
		from, to := MonthWindow(now())
		return store.Count(ctx, kind, tenantdb.Filter{
			"tenant_id":  tenantID.String(),
			"created_at": tenantdb.Range{From: from, To: to},
		})
	}
}
