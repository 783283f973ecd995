package application

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"path"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/morningforge/internal/domain/entity"
	"github.com/oksasatya/morningforge/internal/domain/keyspace"
	repo "github.com/oksasatya/morningforge/internal/domain/repository"
)

// ObjectUploader stores an object and returns its URL (GCS in production).
type ObjectUploader interface {
	Upload(ctx context.Context, objectPath, contentType string, r io.Reader) (string, error)
}

// Export is the portable copy of everything kept for one account.
type Export struct {
	ExportedAt time.Time              `json:"exported_at"`
	Account    AccountView            `json:"account"`
	Settings   entity.Settings        `json:"settings"`
	Routines   []entity.SavedRoutine  `json:"routines"`
	Streak     entity.Streak          `json:"streak"`
	Profile    *entity.RoutineProfile `json:"profile,omitempty"`
}

// AccountView is an account without credentials.
type AccountView struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	Email          string     `json:"email"`
	IsPro          bool       `json:"is_pro"`
	TrialStartDate *time.Time `json:"trial_start_date"`
	CreatedAt      time.Time  `json:"created_at"`
}

func NewAccountView(a *entity.Account) AccountView {
	return AccountView{
		ID:             a.ID,
		Name:           a.Name,
		Email:          a.Email,
		IsPro:          a.IsPro,
		TrialStartDate: a.TrialStartDate,
		CreatedAt:      a.CreatedAt,
	}
}

// DataService exports or clears all per-account buckets.
type DataService struct {
	Buckets  repo.BucketRepository
	Index    RoutineIndex
	Uploader ObjectUploader
	Clock    Clock
	Logger   *logrus.Logger
}

func NewDataService(buckets repo.BucketRepository, index RoutineIndex, uploader ObjectUploader, clock Clock, logger *logrus.Logger) *DataService {
	return &DataService{Buckets: buckets, Index: index, Uploader: uploader, Clock: clockOrSystem(clock), Logger: logger}
}

// Collect gathers the account's buckets into one document.
func (s *DataService) Collect(ctx context.Context, a *entity.Account) (*Export, error) {
	if a == nil || a.ID == "" {
		return nil, ErrNotAuthenticated
	}
	exp := &Export{
		ExportedAt: s.Clock.Now(),
		Account:    NewAccountView(a),
		Routines:   []entity.SavedRoutine{},
	}
	var stored entity.Settings
	if _, err := readBucket(ctx, s.Buckets, a.ID, keyspace.Settings, &stored); err != nil {
		return nil, err
	}
	exp.Settings = stored.MergeOver(entity.DefaultSettings())
	if _, err := readBucket(ctx, s.Buckets, a.ID, keyspace.Routines, &exp.Routines); err != nil {
		return nil, err
	}
	if exp.Routines == nil {
		exp.Routines = []entity.SavedRoutine{}
	}
	if _, err := readBucket(ctx, s.Buckets, a.ID, keyspace.Streak, &exp.Streak); err != nil {
		return nil, err
	}
	var p entity.RoutineProfile
	found, err := readBucket(ctx, s.Buckets, a.ID, keyspace.Profile, &p)
	if err != nil {
		return nil, err
	}
	if found {
		exp.Profile = &p
	}
	return exp, nil
}

// Export uploads the collected document and returns its URL.
func (s *DataService) Export(ctx context.Context, a *entity.Account) (string, error) {
	if s.Uploader == nil {
		return "", ErrExportUnavailable
	}
	exp, err := s.Collect(ctx, a)
	if err != nil {
		return "", err
	}
	b, err := json.MarshalIndent(exp, "", "  ")
	if err != nil {
		return "", err
	}
	object := path.Join("exports", a.ID, exp.ExportedAt.UTC().Format("20060102T150405Z")+".json")
	url, err := s.Uploader.Upload(ctx, object, "application/json", bytes.NewReader(b))
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("account_id", a.ID).Error("export upload failed")
		}
		return "", err
	}
	return url, nil
}

// Reset clears settings, routines, streak and profile for one account, and
// the account's search documents. The buckets are authoritative: an index
// failure is logged and leaves only stale hits that search already filters.
func (s *DataService) Reset(ctx context.Context, accountID string) error {
	if accountID == "" {
		return ErrNotAuthenticated
	}
	if err := s.Buckets.DeleteAll(ctx, accountID); err != nil {
		return err
	}
	if s.Index != nil {
		if err := s.Index.RemoveAll(ctx, accountID); err != nil && s.Logger != nil {
			s.Logger.WithError(err).WithField("account_id", accountID).Warn("routine index cleanup failed")
		}
	}
	return nil
}
