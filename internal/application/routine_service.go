package application

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/morningforge/internal/domain/entity"
	"github.com/oksasatya/morningforge/internal/domain/keyspace"
	repo "github.com/oksasatya/morningforge/internal/domain/repository"
)

// RoutineIndex is an optional full-text index over saved routines. Search
// must only return ids owned by accountID.
type RoutineIndex interface {
	Index(ctx context.Context, accountID string, r entity.SavedRoutine) error
	Remove(ctx context.Context, accountID, routineID string) error
	Search(ctx context.Context, accountID, query string, size int) ([]string, error)
	// RemoveAll drops every document the account owns.
	RemoveAll(ctx context.Context, accountID string) error
}

// RoutineService is the saved-routine library, kept most recent first.
type RoutineService struct {
	Buckets repo.BucketRepository
	Index   RoutineIndex
	Clock   Clock
	Logger  *logrus.Logger
}

func NewRoutineService(buckets repo.BucketRepository, index RoutineIndex, clock Clock, logger *logrus.Logger) *RoutineService {
	return &RoutineService{Buckets: buckets, Index: index, Clock: clockOrSystem(clock), Logger: logger}
}

func (s *RoutineService) List(ctx context.Context, accountID string) ([]entity.SavedRoutine, error) {
	if accountID == "" {
		return nil, ErrNotAuthenticated
	}
	var list []entity.SavedRoutine
	if _, err := readBucket(ctx, s.Buckets, accountID, keyspace.Routines, &list); err != nil {
		return nil, err
	}
	if list == nil {
		list = []entity.SavedRoutine{}
	}
	return list, nil
}

// Save prepends r, assigning ID and CreatedAt when the caller left them empty.
func (s *RoutineService) Save(ctx context.Context, accountID string, r entity.SavedRoutine) (entity.SavedRoutine, error) {
	if accountID == "" {
		return entity.SavedRoutine{}, ErrNotAuthenticated
	}
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = s.Clock.Now()
	}
	err := updateBucket(ctx, s.Buckets, accountID, keyspace.Routines, func(cur []entity.SavedRoutine) ([]entity.SavedRoutine, error) {
		return append([]entity.SavedRoutine{r}, cur...), nil
	})
	if err != nil {
		return entity.SavedRoutine{}, err
	}
	s.index(ctx, accountID, r)
	return r, nil
}

// Delete removes the routine with routineID; unknown ids are a no-op.
func (s *RoutineService) Delete(ctx context.Context, accountID, routineID string) error {
	if accountID == "" {
		return ErrNotAuthenticated
	}
	err := updateBucket(ctx, s.Buckets, accountID, keyspace.Routines, func(cur []entity.SavedRoutine) ([]entity.SavedRoutine, error) {
		out := cur[:0:0]
		for _, r := range cur {
			if r.ID != routineID {
				out = append(out, r)
			}
		}
		return out, nil
	})
	if err != nil {
		return err
	}
	if s.Index != nil {
		if err := s.Index.Remove(ctx, accountID, routineID); err != nil && s.Logger != nil {
			s.Logger.WithError(err).WithField("routine_id", routineID).Warn("routine unindex failed")
		}
	}
	return nil
}

// Update replaces the routine with the same ID in place. It never inserts;
// found reports whether a routine was replaced.
func (s *RoutineService) Update(ctx context.Context, accountID string, r entity.SavedRoutine) (found bool, err error) {
	if accountID == "" {
		return false, ErrNotAuthenticated
	}
	err = updateBucket(ctx, s.Buckets, accountID, keyspace.Routines, func(cur []entity.SavedRoutine) ([]entity.SavedRoutine, error) {
		for i := range cur {
			if cur[i].ID == r.ID {
				if r.CreatedAt.IsZero() {
					r.CreatedAt = cur[i].CreatedAt
				}
				cur[i] = r
				found = true
			}
		}
		return cur, nil
	})
	if err != nil {
		return false, err
	}
	if found {
		s.index(ctx, accountID, r)
	}
	return found, nil
}

// Search matches title, goals and style. The index is used when configured
// and its hits are resolved against the account's own library.
func (s *RoutineService) Search(ctx context.Context, accountID, query string, size int) ([]entity.SavedRoutine, error) {
	list, err := s.List(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if size <= 0 || size > 50 {
		size = 10
	}
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return limit(list, size), nil
	}
	if s.Index != nil {
		ids, err := s.Index.Search(ctx, accountID, q, size)
		if err == nil {
			return pickByID(list, ids), nil
		}
		if s.Logger != nil {
			s.Logger.WithError(err).Warn("routine search index failed, scanning library")
		}
	}
	out := make([]entity.SavedRoutine, 0)
	for _, r := range list {
		if matches(r, q) {
			out = append(out, r)
		}
	}
	return limit(out, size), nil
}

func (s *RoutineService) index(ctx context.Context, accountID string, r entity.SavedRoutine) {
	if s.Index == nil {
		return
	}
	if err := s.Index.Index(ctx, accountID, r); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("routine_id", r.ID).Warn("routine index failed")
	}
}

func matches(r entity.SavedRoutine, q string) bool {
	if strings.Contains(strings.ToLower(r.Title), q) || strings.Contains(strings.ToLower(r.Style), q) {
		return true
	}
	for _, g := range r.Goals {
		if strings.Contains(strings.ToLower(g), q) {
			return true
		}
	}
	return false
}

func pickByID(list []entity.SavedRoutine, ids []string) []entity.SavedRoutine {
	byID := make(map[string]entity.SavedRoutine, len(list))
	for _, r := range list {
		byID[r.ID] = r
	}
	out := make([]entity.SavedRoutine, 0, len(ids))
	for _, id := range ids {
		if r, ok := byID[id]; ok {
			out = append(out, r)
		}
	}
	return out
}

func limit(list []entity.SavedRoutine, n int) []entity.SavedRoutine {
	if len(list) > n {
		return list[:n]
	}
	return list
}
