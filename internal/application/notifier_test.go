package application_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/morningforge/config"
	"github.com/oksasatya/morningforge/internal/application"
	"github.com/oksasatya/morningforge/internal/domain/entity"
	"github.com/oksasatya/morningforge/pkg/mailer"
	mailtpl "github.com/oksasatya/morningforge/pkg/mailer/templates"
)

func TestEmailNotifier(t *testing.T) {
	cfg := &config.Config{AppName: "morningforge", MailSendEnabled: true, TrialLength: 7 * 24 * time.Hour}
	pub := &fakePublisher{}
	n := application.NewEmailNotifier(pub, cfg, nil)
	ctx := context.Background()
	start := t0
	a := &entity.Account{Name: "Ana", Email: "ana@x.com"}

	n.Welcome(ctx, a)
	n.TrialStarted(ctx, a)
	a.TrialStartDate = &start
	n.TrialStarted(ctx, a)

	require.Len(t, pub.jobs, 2)
	assert.Equal(t, mailtpl.Welcome, pub.jobs[0].(mailer.EmailJob).Template)
	job := pub.jobs[1].(mailer.EmailJob)
	assert.Equal(t, mailtpl.TrialStarted, job.Template)
	assert.Equal(t, "ana@x.com", job.To)
}

func TestEmailNotifier_DisabledOrFailing(t *testing.T) {
	ctx := context.Background()
	a := &entity.Account{Name: "Ana", Email: "ana@x.com"}

	pub := &fakePublisher{}
	application.NewEmailNotifier(pub, &config.Config{}, nil).Welcome(ctx, a)
	assert.Empty(t, pub.jobs)

	failing := &fakePublisher{err: errors.New("broker down")}
	assert.NotPanics(t, func() {
		application.NewEmailNotifier(failing, &config.Config{MailSendEnabled: true}, nil).Welcome(ctx, a)
	})
}
