package tenantdb

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"
)

// Store is the single chokepoint for all persisted data access. Business
// code issues ordinary queries and mutations against it and gets
// transparent tenant scoping; there is no second path to the database.
type Store struct {
	db       DB
	registry *Registry
	log      *slog.Logger
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithLogger sets the logger used for bridge diagnostics.
func WithLogger(log *slog.Logger) StoreOption {
	return func(s *Store) {
		if log != nil {
			s.log = log
		}
	}
}

// NewStore creates a store over the given connection source and resource
// kind registry. A nil registry gets the default CRM catalog.
func NewStore(db DB, registry *Registry, opts ...StoreOption) *Store {
	if registry == nil {
		registry = DefaultRegistry()
	}
	s := &Store{
		db:       db,
		registry: registry,
		log:      slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// FindOne returns the first row matching the filter. Use
// pg.IsNotFoundError to detect an empty result.
func (s *Store) FindOne(ctx context.Context, kind Kind, filter Filter) (Record, error) {
	op := &operation{action: actionFind, filter: filter}
	if err := s.intercept(ctx, kind, op); err != nil {
		return nil, err
	}

	var out Record
	err := s.protect(ctx, op.def, func(q Querier) error {
		sql, args := buildSelect(op.def, op.filter)
		rows, err := q.Query(ctx, sql, args...)
		if err != nil {
			return err
		}
		row, err := pgx.CollectOneRow(rows, pgx.RowToMap)
		if err != nil {
			return err
		}
		out = Record(row)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// FindMany returns all rows matching the filter.
func (s *Store) FindMany(ctx context.Context, kind Kind, filter Filter) ([]Record, error) {
	op := &operation{action: actionFind, filter: filter}
	if err := s.intercept(ctx, kind, op); err != nil {
		return nil, err
	}

	var out []Record
	err := s.protect(ctx, op.def, func(q Querier) error {
		sql, args := buildSelect(op.def, op.filter)
		rows, err := q.Query(ctx, sql, args...)
		if err != nil {
			return err
		}
		collected, err := pgx.CollectRows(rows, pgx.RowToMap)
		if err != nil {
			return err
		}
		out = make([]Record, len(collected))
		for i, row := range collected {
			out[i] = Record(row)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Count returns the number of rows matching the filter.
func (s *Store) Count(ctx context.Context, kind Kind, filter Filter) (int64, error) {
	op := &operation{action: actionCount, filter: filter}
	if err := s.intercept(ctx, kind, op); err != nil {
		return 0, err
	}

	var n int64
	err := s.protect(ctx, op.def, func(q Querier) error {
		sql, args := buildCount(op.def, op.filter)
		return q.QueryRow(ctx, sql, args...).Scan(&n)
	})
	if err != nil {
		return 0, err
	}
	return n, nil
}

// Create inserts one row and returns it as stored.
func (s *Store) Create(ctx context.Context, kind Kind, rec Record) (Record, error) {
	if len(rec) == 0 {
		return nil, ErrEmptyRecord
	}
	op := &operation{action: actionCreate, record: rec}
	if err := s.intercept(ctx, kind, op); err != nil {
		return nil, err
	}

	var out Record
	err := s.protect(ctx, op.def, func(q Querier) error {
		sql, args := buildInsert(op.def, op.record)
		rows, err := q.Query(ctx, sql, args...)
		if err != nil {
			return err
		}
		row, err := pgx.CollectOneRow(rows, pgx.RowToMap)
		if err != nil {
			return err
		}
		out = Record(row)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// CreateMany inserts the given rows and returns how many were written.
func (s *Store) CreateMany(ctx context.Context, kind Kind, recs []Record) (int64, error) {
	if len(recs) == 0 {
		return 0, nil
	}
	for _, rec := range recs {
		if len(rec) == 0 {
			return 0, ErrEmptyRecord
		}
	}
	op := &operation{action: actionCreateMany, records: recs}
	if err := s.intercept(ctx, kind, op); err != nil {
		return 0, err
	}

	var n int64
	err := s.protect(ctx, op.def, func(q Querier) error {
		sql, args := buildInsertMany(op.def, op.records)
		tag, err := q.Exec(ctx, sql, args...)
		if err != nil {
			return err
		}
		n = tag.RowsAffected()
		return nil
	})
	if err != nil {
		return 0, err
	}
	return n, nil
}

// Update applies the change to all rows matching the filter and returns
// the number of rows touched.
func (s *Store) Update(ctx context.Context, kind Kind, filter Filter, change Record) (int64, error) {
	if len(filter) == 0 {
		return 0, ErrEmptyFilter
	}
	if len(change) == 0 {
		return 0, ErrEmptyRecord
	}
	op := &operation{action: actionUpdate, filter: filter, record: change}
	if err := s.intercept(ctx, kind, op); err != nil {
		return 0, err
	}

	var n int64
	err := s.protect(ctx, op.def, func(q Querier) error {
		sql, args := buildUpdate(op.def, op.filter, op.record)
		tag, err := q.Exec(ctx, sql, args...)
		if err != nil {
			return err
		}
		n = tag.RowsAffected()
		return nil
	})
	if err != nil {
		return 0, err
	}
	return n, nil
}

// Delete removes all rows matching the filter and returns the number of
// rows removed.
func (s *Store) Delete(ctx context.Context, kind Kind, filter Filter) (int64, error) {
	if len(filter) == 0 {
		return 0, ErrEmptyFilter
	}
	op := &operation{action: actionDelete, filter: filter}
	if err := s.intercept(ctx, kind, op); err != nil {
		return 0, err
	}

	var n int64
	err := s.protect(ctx, op.def, func(q Querier) error {
		sql, args := buildDelete(op.def, op.filter)
		tag, err := q.Exec(ctx, sql, args...)
		if err != nil {
			return err
		}
		n = tag.RowsAffected()
		return nil
	})
	if err != nil {
		return 0, err
	}
	return n, nil
}

// Upsert inserts the row identified by the filter or updates its payload
// columns in place. The filter columns must form a unique index on the
// table and may only use equality predicates.
func (s *Store) Upsert(ctx context.Context, kind Kind, filter Filter, rec Record) (Record, error) {
	if len(filter) == 0 {
		return nil, ErrEmptyFilter
	}
	if len(rec) == 0 {
		return nil, ErrEmptyRecord
	}
	for col, v := range filter {
		if _, isRange := v.(Range); isRange {
			return nil, fmt.Errorf("%w: range predicate on %s cannot identify an upsert target", ErrInvalidFilter, col)
		}
	}
	op := &operation{action: actionUpsert, filter: filter, record: rec}
	if err := s.intercept(ctx, kind, op); err != nil {
		return nil, err
	}

	var out Record
	err := s.protect(ctx, op.def, func(q Querier) error {
		sql, args := buildUpsert(op.def, op.filter, op.record)
		rows, err := q.Query(ctx, sql, args...)
		if err != nil {
			return err
		}
		row, err := pgx.CollectOneRow(rows, pgx.RowToMap)
		if err != nil {
			return err
		}
		out = Record(row)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
