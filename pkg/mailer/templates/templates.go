package templates

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	htmpl "html/template"
	"reflect"
	"strings"
	"sync"
	texttpl "text/template"
	"time"
)

//go:embed *.tmpl
var FS embed.FS

// EmailData defines standard fields for email templates.
type EmailData struct {
	Name           string `json:"Name"`
	Email          string `json:"Email"`
	RecipientEmail string `json:"RecipientEmail"`
	Type           string `json:"Type"`

	CompanyName    string `json:"CompanyName"`
	CompanyAddress string `json:"CompanyAddress"`
	AppName        string `json:"AppName"`

	LogoURL        string `json:"LogoURL"`
	SupportURL     string `json:"SupportURL"`
	PrivacyURL     string `json:"PrivacyURL"`
	UnsubscribeURL string `json:"UnsubscribeURL"`
	PremiumURL     string `json:"PremiumURL"`

	// Trial window, set for trial_started
	TrialStartedAt  time.Time `json:"TrialStartedAt"`
	TrialEndsAt     time.Time `json:"TrialEndsAt"`
	TrialEndsAtText string    `json:"TrialEndsAtText"`
	TrialDays       int       `json:"TrialDays"`
}

// ToMap converts EmailData to a map[string]any for EmailJob.Data
func ToMap(d EmailData) map[string]any {
	b, _ := json.Marshal(d)
	var m map[string]any
	_ = json.Unmarshal(b, &m)
	return m
}

// defaultFn supports pipe usage: {{ .Value | default "Fallback" }}
func defaultFn(fallback any, value any) any {
	switch x := value.(type) {
	case string:
		if strings.TrimSpace(x) == "" {
			return fallback
		}
		return x
	case nil:
		return fallback
	default:
		rv := reflect.ValueOf(value)
		if !rv.IsValid() {
			return fallback
		}
		zero := reflect.Zero(rv.Type()).Interface()
		if reflect.DeepEqual(value, zero) {
			return fallback
		}
		return value
	}
}

func baseFuncs() map[string]any {
	return map[string]any{
		"now":        func() time.Time { return time.Now().UTC() },
		"formatTime": func(t time.Time, layout string) string { return t.Format(layout) },
		"upper":      strings.ToUpper,
		"default":    defaultFn,
	}
}

const (
	Welcome      = "welcome"
	TrialStarted = "trial_started"
)

// ErrUnknownTemplate is returned for names with no embedded template set.
var ErrUnknownTemplate = errors.New("unknown email template")

// Each template set is <name>.subject.tmpl, <name>.text.tmpl and
// <name>.html.tmpl. Subject and text share the text/template tree.
var (
	parseOnce sync.Once
	textSet   *texttpl.Template
	htmlSet   *htmpl.Template
	parseErr  error
)

func parse() error {
	parseOnce.Do(func() {
		textSet, parseErr = texttpl.New("email").Funcs(texttpl.FuncMap(baseFuncs())).ParseFS(FS, "*.subject.tmpl", "*.text.tmpl")
		if parseErr != nil {
			parseErr = fmt.Errorf("parse text templates: %w", parseErr)
			return
		}
		htmlSet, parseErr = htmpl.New("email").Funcs(htmpl.FuncMap(baseFuncs())).ParseFS(FS, "*.html.tmpl")
		if parseErr != nil {
			parseErr = fmt.Errorf("parse html templates: %w", parseErr)
		}
	})
	return parseErr
}

// Known reports whether name has an embedded template set.
func Known(name string) bool {
	if name == "" || parse() != nil {
		return false
	}
	return textSet.Lookup(name+".subject.tmpl") != nil &&
		textSet.Lookup(name+".text.tmpl") != nil &&
		htmlSet.Lookup(name+".html.tmpl") != nil
}

// Render renders the subject, text and html parts of the named template set.
func Render(name string, data any) (subject, text, html string, err error) {
	if err := parse(); err != nil {
		return "", "", "", err
	}
	if !Known(name) {
		return "", "", "", fmt.Errorf("%w: %q", ErrUnknownTemplate, name)
	}
	var buf bytes.Buffer
	if err := textSet.ExecuteTemplate(&buf, name+".subject.tmpl", data); err != nil {
		return "", "", "", fmt.Errorf("exec %s subject: %w", name, err)
	}
	subject = strings.TrimSpace(buf.String())

	buf.Reset()
	if err := textSet.ExecuteTemplate(&buf, name+".text.tmpl", data); err != nil {
		return "", "", "", fmt.Errorf("exec %s text: %w", name, err)
	}
	text = buf.String()

	buf.Reset()
	if err := htmlSet.ExecuteTemplate(&buf, name+".html.tmpl", data); err != nil {
		return "", "", "", fmt.Errorf("exec %s html: %w", name, err)
	}
	return subject, text, buf.String(), nil
}
