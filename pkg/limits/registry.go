package limits

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// CounterFunc returns the current usage of a resource for a tenant.
// Keep it cheap: counters run on every quota check.
type CounterFunc func(ctx context.Context, tenantID uuid.UUID) (int64, error)

// CounterRegistry maps resources to their counters. Register everything
// at startup; the map is read concurrently afterwards without locking.
type CounterRegistry map[Resource]CounterFunc

func NewRegistry() CounterRegistry {
	return make(CounterRegistry)
}

// Register sets the counter for res, replacing any previous one.
func (r CounterRegistry) Register(res Resource, fn CounterFunc) {
	if fn == nil {
		panic(fmt.Sprintf("limits: counter for resource %q cannot be nil", res))
	}
	r[res] = fn
}
