package validation

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type signupPayload struct {
	Name     string `json:"name" binding:"required,displayname"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,pwd"`
	Prefs    struct {
		Reminder string `json:"reminder_time" binding:"omitempty,hhmm"`
	} `json:"prefs"`
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.SetTagName("binding")
	Register(v)
	return v
}

func TestToDetails_FieldMessages(t *testing.T) {
	v := newValidator()
	p := signupPayload{Name: "Ana", Email: "not-an-email", Password: "12345"}
	p.Prefs.Reminder = "6am"

	details := ToDetails(v.Struct(p))
	require.NotNil(t, details)
	assert.Equal(t, "must be a valid email", details["email"])
	assert.Equal(t, "must be 6 to 72 characters long", details["password"])
	assert.Equal(t, "must be a time like 06:30", details["prefs.reminder_time"])
	assert.NotContains(t, details, "name")
}

func TestToDetails_AcceptsValidPayload(t *testing.T) {
	v := newValidator()
	p := signupPayload{Name: "Ana", Email: "ana@x.com", Password: "secret1"}
	assert.NoError(t, v.Struct(p))
}

func TestToDetails_InvalidJSON(t *testing.T) {
	var dst map[string]any
	err := json.Unmarshal([]byte(`{"a" 1}`), &dst)
	assert.Equal(t, map[string]string{"payload": "invalid json"}, ToDetails(err))

	err = json.Unmarshal([]byte(`{"a":"x"}`), &struct {
		A int `json:"a"`
	}{})
	assert.Equal(t, map[string]string{"payload": "invalid json"}, ToDetails(err))

	assert.Equal(t, map[string]string{"payload": "invalid payload"}, ToDetails(errors.New("EOF")))

	assert.Nil(t, ToDetails(nil))
}
