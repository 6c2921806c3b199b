package limits

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// Service answers quota and feature questions for tenants.
//
// Plans are loaded once at construction and treated as immutable, so all
// methods are safe for concurrent use.
type Service struct {
	plans    map[string]Plan
	counters CounterRegistry
	resolver PlanResolver
}

// NewService loads the plan catalog from src and wires the usage
// counters. A nil resolver defaults to TenantRecordResolver.
func NewService(ctx context.Context, src Source, counters CounterRegistry, resolver PlanResolver) (*Service, error) {
	plans, err := src.Load(ctx)
	if err != nil {
		return nil, errors.Join(ErrFailedToLoadPlans, err)
	}
	if plans == nil {
		plans = make(map[string]Plan)
	}
	if err := validatePlans(plans); err != nil {
		return nil, err
	}
	if counters == nil {
		counters = NewRegistry()
	}
	if resolver == nil {
		resolver = TenantRecordResolver
	}
	return &Service{plans: plans, counters: counters, resolver: resolver}, nil
}

// CheckUsage compares the tenant's current usage of res against its plan
// quota. Being at or over the quota is reported through Usage.Allowed,
// never as an error; errors mean the check itself could not run.
func (s *Service) CheckUsage(ctx context.Context, tenantID uuid.UUID, res Resource) (Usage, error) {
	plan, err := s.planFor(ctx, tenantID)
	if err != nil {
		return Usage{}, err
	}

	limit, ok := plan.Limits[res]
	if !ok {
		return Usage{}, ErrUnknownResource
	}
	if limit == Unlimited {
		return Usage{Allowed: true, Current: 0, Limit: Unlimited}, nil
	}

	counter, ok := s.counters[res]
	if !ok {
		return Usage{}, ErrNoCounterRegistered
	}
	current, err := counter(ctx, tenantID)
	if err != nil {
		return Usage{}, errors.Join(ErrFailedToCountUsage, err)
	}

	return Usage{Allowed: current < limit, Current: current, Limit: limit}, nil
}

// HasFeature reports whether the tenant's plan enables the feature.
// Resolution failures read as the feature being absent.
func (s *Service) HasFeature(ctx context.Context, tenantID uuid.UUID, feature Feature) bool {
	plan, err := s.planFor(ctx, tenantID)
	if err != nil {
		return false
	}
	return plan.HasFeature(feature)
}

// AllUsage returns usage for every resource the tenant's plan limits.
// Counter failures leave Current at zero rather than failing the whole
// report; dashboards prefer partial data over none.
func (s *Service) AllUsage(ctx context.Context, tenantID uuid.UUID) (map[Resource]Usage, error) {
	plan, err := s.planFor(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	result := make(map[Resource]Usage, len(plan.Limits))
	for res, limit := range plan.Limits {
		u := Usage{Allowed: true, Limit: limit}
		if limit != Unlimited {
			if counter, ok := s.counters[res]; ok {
				if current, err := counter(ctx, tenantID); err == nil {
					u.Current = current
				}
			}
			u.Allowed = u.Current < limit
		}
		result[res] = u
	}
	return result, nil
}

// VerifyPlan reports whether planID names a known plan.
func (s *Service) VerifyPlan(planID string) error {
	if _, ok := s.plans[planID]; !ok {
		return ErrPlanNotFound
	}
	return nil
}

// PublicPlans returns the plans available for self-service signup.
func (s *Service) PublicPlans() []Plan {
	public := make([]Plan, 0, len(s.plans))
	for _, plan := range s.plans {
		if plan.Public {
			public = append(public, plan.clone())
		}
	}
	return public
}

func (s *Service) planFor(ctx context.Context, tenantID uuid.UUID) (Plan, error) {
	planID, err := s.resolver(ctx, tenantID)
	if err != nil {
		return Plan{}, err
	}
	plan, ok := s.plans[planID]
	if !ok {
		return Plan{}, ErrPlanNotFound
	}
	return plan, nil
}
