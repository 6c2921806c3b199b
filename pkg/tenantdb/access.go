package tenantdb

import (
	"context"

	"github.com/google/uuid"
)

// ValidateAccess reports whether the resource with the given id exists
// within the given tenant. Endpoints use it as an explicit ownership
// check before sensitive mutations when the resource id arrives from the
// client; a false result is an ordinary outcome handled as 403/404, not
// an error.
//
// The lookup runs through the interceptor, so under an active scope the
// scope's tenant id overrides the argument and the check cannot be bent
// into probing another tenant. Administrative callers that genuinely need
// to check a foreign tenant wrap the call in tenant.AsServiceRole, which
// makes the explicit tenantID argument authoritative.
func (s *Store) ValidateAccess(ctx context.Context, tenantID, resourceID uuid.UUID, kind Kind) (bool, error) {
	n, err := s.Count(ctx, kind, Filter{
		"id":         resourceID,
		TenantColumn: tenantID.String(),
	})
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
