package tenantdb

import "errors"

var (
	// ErrNoActiveScope is returned when a tenant-scoped operation is
	// attempted without an active tenant scope. This is a wiring defect
	// at the boundary, never a condition to recover from: proceeding
	// without a filter would expose cross-tenant data.
	ErrNoActiveScope = errors.New("tenant-scoped operation without an active tenant scope")

	// ErrUnknownKind is returned for a resource kind missing from the
	// registry. Unclassified kinds are refused rather than passed through.
	ErrUnknownKind = errors.New("resource kind not registered")

	// ErrKindAlreadyRegistered is returned when a kind is defined twice.
	ErrKindAlreadyRegistered = errors.New("resource kind already registered")

	// ErrInvalidDefinition is returned for malformed kind definitions.
	ErrInvalidDefinition = errors.New("invalid kind definition")

	// ErrUnknownColumn is returned when a filter or payload references a
	// column the kind does not declare.
	ErrUnknownColumn = errors.New("column not declared for kind")

	// ErrEmptyRecord is returned for create/upsert calls with no payload.
	ErrEmptyRecord = errors.New("empty record payload")

	// ErrEmptyFilter is returned for update/delete/upsert calls with no
	// target filter. Whole-table mutations must be spelled out by the
	// caller with an explicit filter, not implied by omission.
	ErrEmptyFilter = errors.New("empty target filter")

	// ErrInvalidFilter is returned when a filter predicate cannot be used
	// for the requested operation, e.g. a range predicate as an upsert
	// conflict target.
	ErrInvalidFilter = errors.New("invalid filter predicate")

	// ErrTxBegin wraps failures to open the session bridge transaction.
	ErrTxBegin = errors.New("failed to begin session bridge transaction")

	// ErrSessionIdentity wraps failures to declare the session identity
	// variables on the bridge transaction.
	ErrSessionIdentity = errors.New("failed to set session identity")
)
