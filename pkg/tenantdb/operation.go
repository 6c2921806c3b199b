package tenantdb

import (
	"context"
	"fmt"
	"maps"

	"github.com/nabi-crm/nabi/pkg/tenant"
)

// Filter selects rows by column value. Values are compared with equality
// unless the value is a Range.
type Filter map[string]any

// Record is a row payload or result keyed by column name.
type Record map[string]any

// Range matches rows where the column is >= From and < To. Used for
// period-bounded queries such as billing-window usage counts.
type Range struct {
	From any
	To   any
}

type action int

const (
	actionFind action = iota
	actionCount
	actionCreate
	actionCreateMany
	actionUpdate
	actionDelete
	actionUpsert
)

// operation is one in-flight data access about to be rewritten and
// executed. Filters and payloads are copies of the caller's maps; the
// interceptor never mutates caller state.
type operation struct {
	def     Definition
	action  action
	filter  Filter
	record  Record
	records []Record
}

// intercept is the single chokepoint every store operation passes
// through. It classifies the kind, validates the referenced columns, and
// rewrites the operation so the active scope's tenant id is authoritative
// no matter what the caller supplied. Tenant-scoped access without a
// scope fails here, before any database work.
func (s *Store) intercept(ctx context.Context, kind Kind, op *operation) error {
	def, err := s.registry.Lookup(kind)
	if err != nil {
		return err
	}
	op.def = def

	if err := op.validateColumns(); err != nil {
		return err
	}

	if def.Class == ClassGlobal {
		return nil
	}
	if tenant.CurrentRole(ctx) == tenant.RoleService {
		return nil
	}

	tenantID, ok := tenant.CurrentTenantID(ctx)
	if !ok {
		return fmt.Errorf("%w: kind %s", ErrNoActiveScope, kind)
	}

	// Overwrite, never trust caller input: an explicit tenant_id in a
	// filter or payload may originate from forwarded user input, so the
	// scope's value always replaces it.
	switch op.action {
	case actionFind, actionCount, actionUpdate, actionDelete, actionUpsert:
		op.filter = stampMap(op.filter, tenantID)
	}
	switch op.action {
	case actionCreate, actionUpsert:
		op.record = Record(stampMap(Filter(op.record), tenantID))
	case actionUpdate:
		// A change payload naming tenant_id would re-home rows into
		// another tenant; pin it to the scope like everything else.
		if _, ok := op.record[TenantColumn]; ok {
			op.record = Record(stampMap(Filter(op.record), tenantID))
		}
	case actionCreateMany:
		stamped := make([]Record, len(op.records))
		for i, rec := range op.records {
			stamped[i] = Record(stampMap(Filter(rec), tenantID))
		}
		op.records = stamped
	}
	return nil
}

func stampMap(m Filter, tenantID string) Filter {
	out := make(Filter, len(m)+1)
	maps.Copy(out, m)
	out[TenantColumn] = tenantID
	return out
}

func (op *operation) validateColumns() error {
	check := func(m map[string]any) error {
		for col := range m {
			if !op.def.HasColumn(col) {
				return fmt.Errorf("%w: %s.%s", ErrUnknownColumn, op.def.Kind, col)
			}
		}
		return nil
	}

	if err := check(op.filter); err != nil {
		return err
	}
	if err := check(op.record); err != nil {
		return err
	}
	for _, rec := range op.records {
		if err := check(rec); err != nil {
			return err
		}
	}
	return nil
}
