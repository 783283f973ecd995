package application

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/morningforge/internal/domain/entitlement"
	"github.com/oksasatya/morningforge/internal/domain/entity"
	"github.com/oksasatya/morningforge/internal/domain/keyspace"
	repo "github.com/oksasatya/morningforge/internal/domain/repository"
)

// RoutineGenerator is the external generation service. Its output is
// opaque and only required to be a JSON object.
type RoutineGenerator interface {
	Generate(ctx context.Context, payload []byte) (json.RawMessage, error)
}

type GenerationService struct {
	Generator RoutineGenerator
	Buckets   repo.BucketRepository
	Logger    *logrus.Logger
}

func NewGenerationService(gen RoutineGenerator, buckets repo.BucketRepository, logger *logrus.Logger) *GenerationService {
	return &GenerationService{Generator: gen, Buckets: buckets, Logger: logger}
}

// Generate checks premium gates, remembers the profile and asks the
// generator for a routine.
func (s *GenerationService) Generate(ctx context.Context, a *entity.Account, p entity.RoutineProfile) (json.RawMessage, error) {
	if a == nil || a.ID == "" {
		return nil, ErrNotAuthenticated
	}
	if locked := entitlement.LockedFeatures(a, p.Goals, p.Style); len(locked) > 0 {
		return nil, &LockedError{Features: locked}
	}
	if err := writeBucket(ctx, s.Buckets, a.ID, keyspace.Profile, p); err != nil {
		return nil, err
	}
	if s.Generator == nil {
		return nil, fmt.Errorf("%w: no generator configured", ErrGenerationFailed)
	}
	payload, err := json.Marshal(p)
	if err != nil {
		return nil, err
	}
	out, err := s.Generator.Generate(ctx, payload)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("account_id", a.ID).Warn("routine generation failed")
		}
		return nil, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(out, &obj); err != nil {
		return nil, fmt.Errorf("%w: output is not a JSON object", ErrGenerationFailed)
	}
	return out, nil
}

// LastProfile returns the most recent setup-form profile, or nil.
func (s *GenerationService) LastProfile(ctx context.Context, accountID string) (*entity.RoutineProfile, error) {
	if accountID == "" {
		return nil, ErrNotAuthenticated
	}
	var p entity.RoutineProfile
	found, err := readBucket(ctx, s.Buckets, accountID, keyspace.Profile, &p)
	if err != nil || !found {
		return nil, err
	}
	return &p, nil
}
