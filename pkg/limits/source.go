package limits

import (
	"context"
	"errors"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

// Source loads the plan catalog, keyed by plan id.
type Source interface {
	Load(ctx context.Context) (map[string]Plan, error)
}

type memorySource struct {
	mu    sync.RWMutex
	plans map[string]Plan
}

// NewMemorySource returns a Source serving a deep copy of the given catalog.
func NewMemorySource(plans map[string]Plan) Source {
	copied := make(map[string]Plan, len(plans))
	for id, plan := range plans {
		copied[id] = plan.clone()
	}
	return &memorySource{plans: copied}
}

func (s *memorySource) Load(_ context.Context) (map[string]Plan, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	copied := make(map[string]Plan, len(s.plans))
	for id, plan := range s.plans {
		copied[id] = plan.clone()
	}
	return copied, nil
}

type fileSource struct {
	path string
}

// NewFileSource returns a Source that reads a YAML plan catalog:
//
//	plans:
//	  free:
//	    name: Free
//	    limits:
//	      contacts: 100
//	      emails_per_month: 500
//	  pro:
//	    name: Pro
//	    limits:
//	      contacts: -1
//	    features: [kakao_channel]
func NewFileSource(path string) Source {
	return &fileSource{path: path}
}

func (s *fileSource) Load(_ context.Context) (map[string]Plan, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return nil, errors.Join(ErrFailedToLoadPlans, err)
	}

	var doc struct {
		Plans map[string]Plan `yaml:"plans"`
	}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, errors.Join(ErrFailedToLoadPlans, err)
	}

	for id, plan := range doc.Plans {
		if plan.ID == "" {
			plan.ID = id
			doc.Plans[id] = plan
		}
	}
	return doc.Plans, nil
}
