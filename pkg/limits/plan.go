package limits

import (
	"errors"
	"fmt"
	"maps"
	"slices"
)

// Plan describes a subscription tier and its per-resource quotas.
type Plan struct {
	ID       string             `yaml:"id"`
	Name     string             `yaml:"name"`
	Limits   map[Resource]int64 `yaml:"limits"`
	Features []Feature          `yaml:"features"`
	Public   bool               `yaml:"public"`
}

// HasFeature reports whether the plan enables the given feature.
func (p Plan) HasFeature(f Feature) bool {
	return slices.Contains(p.Features, f)
}

func (p Plan) clone() Plan {
	c := p
	c.Limits = maps.Clone(p.Limits)
	c.Features = slices.Clone(p.Features)
	return c
}

func validatePlans(plans map[string]Plan) error {
	for id, plan := range plans {
		if plan.ID != "" && plan.ID != id {
			return errors.Join(ErrInvalidPlan,
				fmt.Errorf("plan keyed %q declares id %q", id, plan.ID))
		}
		for res, limit := range plan.Limits {
			if limit < Unlimited {
				return errors.Join(ErrInvalidPlan,
					fmt.Errorf("plan %q has negative limit %d for %q", id, limit, res))
			}
		}
	}
	return nil
}
