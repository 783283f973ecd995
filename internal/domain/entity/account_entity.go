package entity

import (
	"errors"
	"time"
)

var (
	ErrDuplicateEmail   = errors.New("email already registered")
	ErrTrialAlreadyUsed = errors.New("trial already used")
)

// Account is the aggregate root for identity and entitlement.
// PasswordHash holds a bcrypt hash; TrialStartDate is nil until the
// one-time trial is activated and is never cleared afterwards.
type Account struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	Email          string     `json:"email"`
	PasswordHash   string     `json:"password_hash"`
	IsPro          bool       `json:"is_pro"`
	TrialStartDate *time.Time `json:"trial_start_date,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// IsTrialUsed reports whether the trial was ever activated.
func (a *Account) IsTrialUsed() bool { return a != nil && a.TrialStartDate != nil }

// Clone returns a deep copy so snapshots never share the trial pointer.
func (a *Account) Clone() *Account {
	if a == nil {
		return nil
	}
	c := *a
	if a.TrialStartDate != nil {
		t := *a.TrialStartDate
		c.TrialStartDate = &t
	}
	return &c
}
