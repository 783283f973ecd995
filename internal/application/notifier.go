package application

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/morningforge/config"
	"github.com/oksasatya/morningforge/internal/domain/entity"
	"github.com/oksasatya/morningforge/pkg/mailer"
	mailtpl "github.com/oksasatya/morningforge/pkg/mailer/templates"
)

// Notifier announces account lifecycle events. Failures never fail the
// operation that triggered them.
type Notifier interface {
	Welcome(ctx context.Context, a *entity.Account)
	TrialStarted(ctx context.Context, a *entity.Account)
}

// JobPublisher is satisfied by helpers.RabbitPublisher.
type JobPublisher interface {
	PublishJSON(ctx context.Context, body any) error
}

// EmailNotifier queues templated emails for the email worker.
type EmailNotifier struct {
	Pub    JobPublisher
	Cfg    *config.Config
	Logger *logrus.Logger
}

func NewEmailNotifier(pub JobPublisher, cfg *config.Config, logger *logrus.Logger) *EmailNotifier {
	return &EmailNotifier{Pub: pub, Cfg: cfg, Logger: logger}
}

func (n *EmailNotifier) Welcome(ctx context.Context, a *entity.Account) {
	n.enqueue(ctx, mailer.EmailJob{
		To:       a.Email,
		Template: mailtpl.Welcome,
		Data:     mailtpl.NewWelcomeData(n.Cfg, a.Name, a.Email),
	})
}

func (n *EmailNotifier) TrialStarted(ctx context.Context, a *entity.Account) {
	if a.TrialStartDate == nil {
		return
	}
	n.enqueue(ctx, mailer.EmailJob{
		To:       a.Email,
		Template: mailtpl.TrialStarted,
		Data:     mailtpl.NewTrialStartedData(n.Cfg, a.Name, a.Email, *a.TrialStartDate),
	})
}

func (n *EmailNotifier) enqueue(ctx context.Context, job mailer.EmailJob) {
	if n == nil || n.Pub == nil || n.Cfg == nil || !n.Cfg.MailSendEnabled {
		return
	}
	if err := n.Pub.PublishJSON(ctx, job); err != nil && n.Logger != nil {
		n.Logger.WithError(err).WithField("template", job.Template).Warn("enqueue email failed")
	}
}
