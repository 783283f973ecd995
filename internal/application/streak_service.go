package application

import (
	"context"

	"github.com/oksasatya/morningforge/internal/domain/entity"
	"github.com/oksasatya/morningforge/internal/domain/keyspace"
	repo "github.com/oksasatya/morningforge/internal/domain/repository"
)

// dateLayout is the calendar-day format; days are taken in UTC.
const dateLayout = "2006-01-02"

type StreakService struct {
	Buckets repo.BucketRepository
	Clock   Clock
}

func NewStreakService(buckets repo.BucketRepository, clock Clock) *StreakService {
	return &StreakService{Buckets: buckets, Clock: clockOrSystem(clock)}
}

// Get returns the zero streak if nothing was recorded yet.
func (s *StreakService) Get(ctx context.Context, accountID string) (entity.Streak, error) {
	if accountID == "" {
		return entity.Streak{}, ErrNotAuthenticated
	}
	var st entity.Streak
	_, err := readBucket(ctx, s.Buckets, accountID, keyspace.Streak, &st)
	return st, err
}

// MarkCompletedToday records today's completion once per calendar day.
// A completion yesterday continues the streak; any larger gap restarts at 1.
func (s *StreakService) MarkCompletedToday(ctx context.Context, accountID string) (entity.Streak, entity.StreakOutcome, error) {
	if accountID == "" {
		return entity.Streak{}, "", ErrNotAuthenticated
	}
	now := s.Clock.Now().UTC()
	today := now.Format(dateLayout)
	yesterday := now.AddDate(0, 0, -1).Format(dateLayout)

	var (
		result  entity.Streak
		outcome entity.StreakOutcome
	)
	err := updateBucket(ctx, s.Buckets, accountID, keyspace.Streak, func(cur entity.Streak) (entity.Streak, error) {
		if cur.LastCompletedDate == today {
			result, outcome = cur, entity.StreakAlreadyCompleted
			return cur, nil
		}
		next := entity.Streak{CurrentStreak: 1, LastCompletedDate: today}
		if cur.LastCompletedDate == yesterday {
			next.CurrentStreak = cur.CurrentStreak + 1
		}
		result, outcome = next, entity.StreakUpdated
		return next, nil
	})
	if err != nil {
		return entity.Streak{}, "", err
	}
	return result, outcome, nil
}
