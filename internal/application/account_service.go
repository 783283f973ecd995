package application

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/morningforge/internal/domain/entitlement"
	"github.com/oksasatya/morningforge/internal/domain/entity"
	repo "github.com/oksasatya/morningforge/internal/domain/repository"
	"github.com/oksasatya/morningforge/pkg/helpers"
)

const defaultSessionTTL = 7 * 24 * time.Hour

// AccountService is the only writer of account and session state.
type AccountService struct {
	Accounts   repo.AccountRepository
	Sessions   repo.SessionRepository
	Evaluator  entitlement.Evaluator
	JWT        *helpers.JWTManager
	Clock      Clock
	SessionTTL time.Duration
	Notifier   Notifier
	Logger     *logrus.Logger
}

type TokenPair struct {
	AccessToken        string
	AccessTokenExpiry  time.Time
	RefreshToken       string
	RefreshTokenExpiry time.Time
}

// Session is an established login: its id, the evaluated account snapshot
// and, when a JWT manager is configured, the cookie tokens bound to it.
type Session struct {
	ID      string
	Account *entity.Account
	Tokens  TokenPair
}

func NewAccountService(accounts repo.AccountRepository, sessions repo.SessionRepository, evaluator entitlement.Evaluator, jwt *helpers.JWTManager, clock Clock, sessionTTL time.Duration, notifier Notifier, logger *logrus.Logger) *AccountService {
	if sessionTTL <= 0 {
		sessionTTL = defaultSessionTTL
	}
	return &AccountService{
		Accounts:   accounts,
		Sessions:   sessions,
		Evaluator:  evaluator,
		JWT:        jwt,
		Clock:      clockOrSystem(clock),
		SessionTTL: sessionTTL,
		Notifier:   notifier,
		Logger:     logger,
	}
}

// dummyCompare runs on unknown emails so they cost as much as a wrong password.
var dummyCompare = helpers.CompareDummyPassword

// Register creates an account with a bcrypt hash of password.
func (s *AccountService) Register(ctx context.Context, name, email, password string) (*entity.Account, error) {
	hash, err := helpers.HashPassword(password)
	if err != nil {
		return nil, err
	}
	now := s.Clock.Now()
	a := &entity.Account{
		ID:           uuid.NewString(),
		Name:         strings.TrimSpace(name),
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.Accounts.Create(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// FindByCredentials authenticates and returns the account after trial
// evaluation, persisting any correction. Unknown email and wrong password
// are indistinguishable to the caller.
func (s *AccountService) FindByCredentials(ctx context.Context, email, password string) (*entity.Account, error) {
	a, err := s.Accounts.GetByEmail(ctx, email)
	if errors.Is(err, repo.ErrNotFound) {
		dummyCompare(password)
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !helpers.CompareHashAndPassword(a.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	return s.evaluate(ctx, a, s.Clock.Now())
}

func (s *AccountService) Signup(ctx context.Context, name, email, password string) (*Session, error) {
	a, err := s.Register(ctx, name, email, password)
	if err != nil {
		return nil, err
	}
	if s.Notifier != nil {
		s.Notifier.Welcome(ctx, a)
	}
	return s.establish(ctx, a)
}

func (s *AccountService) Login(ctx context.Context, email, password string) (*Session, error) {
	a, err := s.FindByCredentials(ctx, email, password)
	if err != nil {
		return nil, err
	}
	return s.establish(ctx, a)
}

// Logout drops the session. The account record is untouched.
func (s *AccountService) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	return s.Sessions.Delete(ctx, sessionID)
}

// Current resolves a session to its account. The snapshot is re-validated
// against the credential store and the trial evaluated on every read.
func (s *AccountService) Current(ctx context.Context, sessionID string) (*entity.Account, error) {
	return s.current(ctx, sessionID, s.Clock.Now())
}

func (s *AccountService) current(ctx context.Context, sessionID string, now time.Time) (*entity.Account, error) {
	if sessionID == "" {
		return nil, ErrNotAuthenticated
	}
	snap, err := s.Sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if snap == nil {
		return nil, ErrNotAuthenticated
	}
	a, err := s.Accounts.GetByID(ctx, snap.ID)
	if errors.Is(err, repo.ErrNotFound) {
		_ = s.Sessions.Delete(ctx, sessionID)
		return nil, ErrNotAuthenticated
	}
	if err != nil {
		return nil, err
	}
	a, err = s.evaluate(ctx, a, now)
	if err != nil {
		return nil, err
	}
	if !sameEntitlement(snap, a) {
		s.putSession(ctx, sessionID, a)
	}
	return a, nil
}

// ActivateTrial starts the one-time trial for the session's account.
func (s *AccountService) ActivateTrial(ctx context.Context, sessionID string) (*entity.Account, error) {
	now := s.Clock.Now()
	cur, err := s.current(ctx, sessionID, now)
	if err != nil {
		return nil, err
	}
	if cur.IsTrialUsed() {
		return nil, entity.ErrTrialAlreadyUsed
	}
	a, err := s.Accounts.StartTrial(ctx, cur.ID, now)
	if err != nil {
		return nil, err
	}
	s.putSession(ctx, sessionID, a)
	if s.Logger != nil {
		helpers.AccountLog(s.Logger, a.ID).Info("trial activated")
	}
	if s.Notifier != nil {
		s.Notifier.TrialStarted(ctx, a)
	}
	return a, nil
}

// TogglePro flips IsPro outside the trial rules. It is a debug affordance:
// an account can end up Pro without a trial, which evaluation never reverts.
// A trial start is never cleared by it.
func (s *AccountService) TogglePro(ctx context.Context, sessionID string) (*entity.Account, error) {
	now := s.Clock.Now()
	cur, err := s.current(ctx, sessionID, now)
	if err != nil {
		return nil, err
	}
	a := cur.Clone()
	a.IsPro = !a.IsPro
	a.UpdatedAt = now
	if err := s.Accounts.Replace(ctx, a); err != nil {
		return nil, err
	}
	// Replace keeps a trial start committed since the read; reload to see it.
	if a, err = s.Accounts.GetByID(ctx, a.ID); err != nil {
		return nil, err
	}
	s.putSession(ctx, sessionID, a)
	if s.Logger != nil {
		s.Logger.WithFields(logrus.Fields{"account_id": a.ID, "is_pro": a.IsPro}).Warn("pro toggled")
	}
	return a, nil
}

func (s *AccountService) IsTrialUsed(a *entity.Account) bool { return a.IsTrialUsed() }

// Entitlement summarizes an evaluated account for display.
func (s *AccountService) Entitlement(a *entity.Account) entitlement.Summary {
	return s.Evaluator.Summarize(a, s.Clock.Now())
}

// Refresh rotates a live session: a new session id and token pair replace
// the ones bound to refreshToken.
func (s *AccountService) Refresh(ctx context.Context, refreshToken string) (*Session, error) {
	if s.JWT == nil {
		return nil, ErrNotAuthenticated
	}
	claims, err := s.JWT.ParseRefreshToken(refreshToken)
	if err != nil {
		return nil, ErrNotAuthenticated
	}
	a, err := s.Current(ctx, claims.SessionID)
	if err != nil {
		return nil, err
	}
	if a.ID != claims.UserID {
		return nil, ErrNotAuthenticated
	}
	sess, err := s.establish(ctx, a)
	if err != nil {
		return nil, err
	}
	if err := s.Sessions.Delete(ctx, claims.SessionID); err != nil && s.Logger != nil {
		s.Logger.WithError(err).Warn("drop rotated session failed")
	}
	return sess, nil
}

// evaluate applies lazy trial expiry and writes the correction back.
func (s *AccountService) evaluate(ctx context.Context, a *entity.Account, now time.Time) (*entity.Account, error) {
	out, changed := s.Evaluator.Evaluate(a, now)
	if !changed {
		return out, nil
	}
	if err := s.Accounts.Replace(ctx, out); err != nil {
		return nil, err
	}
	if s.Logger != nil {
		helpers.AccountLog(s.Logger, out.ID).Info("trial expired")
	}
	return out, nil
}

func (s *AccountService) establish(ctx context.Context, a *entity.Account) (*Session, error) {
	sid := uuid.NewString()
	if err := s.Sessions.Put(ctx, sid, snapshot(a), s.SessionTTL); err != nil {
		return nil, err
	}
	sess := &Session{ID: sid, Account: a}
	if s.JWT == nil {
		return sess, nil
	}
	access, aexp, err := s.JWT.GenerateAccessToken(a.ID, sid)
	if err != nil {
		if s.Logger != nil {
			helpers.AccountLog(s.Logger, a.ID).WithError(err).Error("generate access token failed")
		}
		return nil, err
	}
	refresh, rexp, err := s.JWT.GenerateRefreshToken(a.ID, sid)
	if err != nil {
		if s.Logger != nil {
			helpers.AccountLog(s.Logger, a.ID).WithError(err).Error("generate refresh token failed")
		}
		return nil, err
	}
	sess.Tokens = TokenPair{AccessToken: access, AccessTokenExpiry: aexp, RefreshToken: refresh, RefreshTokenExpiry: rexp}
	return sess, nil
}

func (s *AccountService) putSession(ctx context.Context, sessionID string, a *entity.Account) {
	if err := s.Sessions.Put(ctx, sessionID, snapshot(a), s.SessionTTL); err != nil && s.Logger != nil {
		helpers.AccountLog(s.Logger, a.ID).WithError(err).Warn("session update failed")
	}
}

// snapshot is the session copy of an account, without the password hash.
func snapshot(a *entity.Account) *entity.Account {
	c := a.Clone()
	c.PasswordHash = ""
	return c
}

func sameEntitlement(a, b *entity.Account) bool {
	if a.IsPro != b.IsPro || a.Name != b.Name || a.Email != b.Email {
		return false
	}
	if (a.TrialStartDate == nil) != (b.TrialStartDate == nil) {
		return false
	}
	return a.TrialStartDate == nil || a.TrialStartDate.Equal(*b.TrialStartDate)
}
