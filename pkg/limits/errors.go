package limits

import "errors"

var (
	// ErrPlanNotFound is returned when a plan id resolves to no known plan.
	ErrPlanNotFound = errors.New("plan not found")

	// ErrNoPlanForTenant is returned when no plan id can be resolved for the tenant.
	ErrNoPlanForTenant = errors.New("no plan resolved for tenant")

	// ErrUnknownResource is returned when the plan does not define the resource.
	ErrUnknownResource = errors.New("unknown resource for plan")

	// ErrNoCounterRegistered is returned when a limited resource has no usage counter.
	ErrNoCounterRegistered = errors.New("no counter registered for resource")

	// ErrInvalidPlan is returned when a plan catalog fails validation.
	ErrInvalidPlan = errors.New("invalid plan configuration")

	// ErrFailedToLoadPlans is returned when a plan source cannot be read.
	ErrFailedToLoadPlans = errors.New("failed to load plans")

	// ErrFailedToCountUsage wraps counter failures.
	ErrFailedToCountUsage = errors.New("failed to count resource usage")
)
