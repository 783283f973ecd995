// Package entitlement decides Pro access for an account at a point in time.
//
// Trials expire lazily: nothing runs in the background, callers evaluate the
// account on every authentication and every session read and persist the
// corrected record when Evaluate reports a change.
package entitlement

import (
	"strings"
	"time"

	"github.com/oksasatya/morningforge/internal/domain/entity"
)

// DefaultTrialLength is the one-time Pro trial window.
const DefaultTrialLength = 7 * 24 * time.Hour

const day = 24 * time.Hour

type Status string

const (
	NeverTrialed Status = "never_trialed"
	TrialActive  Status = "trial_active"
	TrialExpired Status = "trial_expired"
	// ProForced is Pro granted outside the trial path (debug toggle).
	ProForced Status = "pro_forced"
)

// Evaluator applies the trial rules. The zero value uses DefaultTrialLength.
type Evaluator struct {
	TrialLength time.Duration
}

func NewEvaluator(trialLength time.Duration) Evaluator {
	return Evaluator{TrialLength: trialLength}
}

func (e Evaluator) length() time.Duration {
	if e.TrialLength <= 0 {
		return DefaultTrialLength
	}
	return e.TrialLength
}

// Expired reports whether more than the trial length has elapsed since the
// trial started. Exactly at the boundary the trial is still valid.
func (e Evaluator) Expired(a *entity.Account, now time.Time) bool {
	if a == nil || a.TrialStartDate == nil {
		return false
	}
	return now.Sub(*a.TrialStartDate) > e.length()
}

// Evaluate returns the account with an expired trial's Pro flag cleared.
// The input is never mutated; changed is true when a copy was returned and
// must be written back. TrialStartDate is always preserved.
func (e Evaluator) Evaluate(a *entity.Account, now time.Time) (out *entity.Account, changed bool) {
	if a == nil || a.TrialStartDate == nil || !a.IsPro {
		return a, false
	}
	if !e.Expired(a, now) {
		return a, false
	}
	c := a.Clone()
	c.IsPro = false
	c.UpdatedAt = now
	return c, true
}

// StatusOf places an already evaluated account in the entitlement state machine.
func (e Evaluator) StatusOf(a *entity.Account, now time.Time) Status {
	switch {
	case a == nil:
		return NeverTrialed
	case a.TrialStartDate == nil && a.IsPro:
		return ProForced
	case a.TrialStartDate == nil:
		return NeverTrialed
	case a.IsPro && !e.Expired(a, now):
		return TrialActive
	case a.IsPro:
		return ProForced
	default:
		return TrialExpired
	}
}

// Summary is the entitlement view handed to clients.
type Summary struct {
	Status      Status     `json:"status"`
	IsPro       bool       `json:"is_pro"`
	TrialUsed   bool       `json:"trial_used"`
	TrialEndsAt *time.Time `json:"trial_ends_at,omitempty"`
	DaysLeft    int        `json:"days_left"`
}

// Summarize reports status and remaining whole trial days.
func (e Evaluator) Summarize(a *entity.Account, now time.Time) Summary {
	s := Summary{Status: e.StatusOf(a, now)}
	if a == nil {
		return s
	}
	s.IsPro = a.IsPro
	s.TrialUsed = a.IsTrialUsed()
	if a.TrialStartDate != nil {
		end := a.TrialStartDate.Add(e.length())
		s.TrialEndsAt = &end
		if s.Status == TrialActive {
			total := int(e.length() / day)
			passed := int(now.Sub(*a.TrialStartDate) / day)
			s.DaysLeft = max(0, total-passed)
		}
	}
	return s
}

var premiumGoals = map[string]struct{}{
	"skincare":     {},
	"productivity": {},
	"mindfulness":  {},
}

var premiumThemes = map[string]struct{}{
	"sunrise_gold":  {},
	"neon_focus":    {},
	"minimal_white": {},
	"midnight_deep": {},
}

// HardcoreStyle is the Pro-only routine intensity.
const HardcoreStyle = "hardcore"

func normalize(v string) string { return strings.ToLower(strings.TrimSpace(v)) }

func IsPremiumGoal(goal string) bool {
	_, ok := premiumGoals[normalize(goal)]
	return ok
}

func IsPremiumTheme(theme string) bool {
	_, ok := premiumThemes[normalize(theme)]
	return ok
}

func IsPremiumStyle(style string) bool { return normalize(style) == HardcoreStyle }

// LockedFeatures lists the premium goals and style in a request that the
// account may not use. Empty means the request is allowed.
func LockedFeatures(a *entity.Account, goals []string, style string) []string {
	if a != nil && a.IsPro {
		return nil
	}
	var locked []string
	for _, g := range goals {
		if IsPremiumGoal(g) {
			locked = append(locked, "goal:"+normalize(g))
		}
	}
	if IsPremiumStyle(style) {
		locked = append(locked, "style:"+HardcoreStyle)
	}
	return locked
}
