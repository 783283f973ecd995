package templates

import (
	"time"

	"github.com/oksasatya/morningforge/config"
)

type Option func(*EmailData)

// WithTrial sets the trial window shown in trial_started.
func WithTrial(start time.Time, length time.Duration) Option {
	return func(d *EmailData) {
		utc := start.UTC()
		end := utc.Add(length)
		d.TrialStartedAt = utc
		d.TrialEndsAt = end
		d.TrialEndsAtText = end.Format("02 January 2006, 15:04 MST")
		d.TrialDays = int(length / (24 * time.Hour))
	}
}

// NewBaseEmailData fills the common fields from config, then applies opts.
func NewBaseEmailData(cfg *config.Config, typ, name, email string, opts ...Option) EmailData {
	d := EmailData{
		Name:           name,
		Email:          email,
		RecipientEmail: email,
		Type:           typ,

		CompanyName:    cfg.CompanyName,
		CompanyAddress: cfg.CompanyAddress,
		AppName:        cfg.AppName,

		LogoURL:        cfg.LogoURL,
		SupportURL:     cfg.SupportURL,
		PrivacyURL:     cfg.PrivacyURL,
		UnsubscribeURL: cfg.UnsubscribeURL,
		PremiumURL:     cfg.PremiumURL,
	}
	for _, opt := range opts {
		opt(&d)
	}
	return d
}

func NewWelcomeData(cfg *config.Config, name, email string) map[string]any {
	return ToMap(NewBaseEmailData(cfg, Welcome, name, email))
}

func NewTrialStartedData(cfg *config.Config, name, email string, start time.Time) map[string]any {
	return ToMap(NewBaseEmailData(cfg, TrialStarted, name, email, WithTrial(start, cfg.TrialLength)))
}
