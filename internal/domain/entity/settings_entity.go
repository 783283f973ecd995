package entity

// NotificationSettings is merged field by field over the defaults.
type NotificationSettings struct {
	Email          *bool  `json:"email,omitempty"`
	Motivation     *bool  `json:"motivation,omitempty"`
	Streak         *bool  `json:"streak,omitempty"`
	ReminderTime   string `json:"reminder_time,omitempty" binding:"omitempty,hhmm"`
	WelcomeQuote   *bool  `json:"welcome_quote,omitempty"`
	RoutineSummary *bool  `json:"routine_summary,omitempty"`
}

// Settings are the theme, accessibility and notification preferences.
// Pointer fields distinguish "unset" from false so stored records can be
// layered over DefaultSettings.
type Settings struct {
	Theme          string               `json:"theme,omitempty" binding:"omitempty,oneof=light dark auto"`
	AccentColor    string               `json:"accent_color,omitempty" binding:"omitempty,oneof=indigo purple teal rose amber"`
	FontSize       string               `json:"font_size,omitempty" binding:"omitempty,oneof=sm md lg xl"`
	PremiumTheme   string               `json:"premium_theme,omitempty" binding:"omitempty,oneof=classic soft_dark sunrise_gold neon_focus minimal_white midnight_deep"`
	HighContrast   *bool                `json:"high_contrast,omitempty"`
	ReducedMotion  *bool                `json:"reduced_motion,omitempty"`
	DyslexiaFont   *bool                `json:"dyslexia_font,omitempty"`
	SimplifiedMode *bool                `json:"simplified_mode,omitempty"`
	TTSEnabled     *bool                `json:"tts_enabled,omitempty"`
	Notifications  NotificationSettings `json:"notifications"`
}

func boolPtr(b bool) *bool { return &b }

// DefaultSettings returns a fresh copy of the defaults.
func DefaultSettings() Settings {
	return Settings{
		Theme:          "light",
		AccentColor:    "indigo",
		FontSize:       "md",
		PremiumTheme:   "classic",
		HighContrast:   boolPtr(false),
		ReducedMotion:  boolPtr(false),
		DyslexiaFont:   boolPtr(false),
		SimplifiedMode: boolPtr(false),
		TTSEnabled:     boolPtr(false),
		Notifications: NotificationSettings{
			Email:          boolPtr(false),
			Motivation:     boolPtr(true),
			Streak:         boolPtr(true),
			ReminderTime:   "06:00",
			WelcomeQuote:   boolPtr(true),
			RoutineSummary: boolPtr(true),
		},
	}
}

// MergeOver layers the set fields of s over base and returns the result.
func (s Settings) MergeOver(base Settings) Settings {
	out := base
	if s.Theme != "" {
		out.Theme = s.Theme
	}
	if s.AccentColor != "" {
		out.AccentColor = s.AccentColor
	}
	if s.FontSize != "" {
		out.FontSize = s.FontSize
	}
	if s.PremiumTheme != "" {
		out.PremiumTheme = s.PremiumTheme
	}
	pick(&out.HighContrast, s.HighContrast)
	pick(&out.ReducedMotion, s.ReducedMotion)
	pick(&out.DyslexiaFont, s.DyslexiaFont)
	pick(&out.SimplifiedMode, s.SimplifiedMode)
	pick(&out.TTSEnabled, s.TTSEnabled)

	n := s.Notifications
	pick(&out.Notifications.Email, n.Email)
	pick(&out.Notifications.Motivation, n.Motivation)
	pick(&out.Notifications.Streak, n.Streak)
	pick(&out.Notifications.WelcomeQuote, n.WelcomeQuote)
	pick(&out.Notifications.RoutineSummary, n.RoutineSummary)
	if n.ReminderTime != "" {
		out.Notifications.ReminderTime = n.ReminderTime
	}
	return out
}

func pick(dst **bool, v *bool) {
	if v != nil {
		*dst = boolPtr(*v)
	}
}
