package main

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/morningforge/config"
	"github.com/oksasatya/morningforge/pkg/helpers"
	"github.com/oksasatya/morningforge/pkg/mailer"
	mailtpl "github.com/oksasatya/morningforge/pkg/mailer/templates"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-email-worker", cfg.Env, cfg.LogLevel)

	if !cfg.MailSendEnabled {
		logger.Info("MAIL_SEND_ENABLED=false; email worker disabled")
		return
	}
	if cfg.RabbitMQURL == "" || cfg.RabbitMQEmailQueue == "" {
		logger.Fatal("RabbitMQ not configured")
	}
	if cfg.MailgunDomain == "" || cfg.MailgunAPIKey == "" || cfg.MailgunSender == "" {
		logger.Fatal("Mailgun not configured")
	}

	consumer, err := helpers.NewRabbitConsumer(cfg.RabbitMQURL, cfg.RabbitMQEmailQueue, 16)
	if err != nil {
		logger.Fatalf("amqp consumer: %v", err)
	}
	defer consumer.Close()
	msgs, err := consumer.Deliveries()
	if err != nil {
		logger.Fatalf("consume: %v", err)
	}

	mg := mailer.NewMailgun(cfg.MailgunDomain, cfg.MailgunAPIKey, cfg.MailgunSender, cfg.MailgunAPIBase)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	done := make(chan struct{})

	go func() {
		defer close(done)
		for msg := range msgs {
			handle(ctx, logger, mg, msg)
		}
	}()

	logger.WithField("queue", cfg.RabbitMQEmailQueue).Info("email worker listening")
	<-stop
	logger.Info("shutting down")
	cancel()
	consumer.Close()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
	}
}

// handle renders and sends one job. Malformed jobs are dropped; send
// failures are requeued.
func handle(ctx context.Context, logger *logrus.Logger, mg *mailer.Mailgun, msg amqp.Delivery) {
	var job mailer.EmailJob
	if err := json.Unmarshal(msg.Body, &job); err != nil {
		logger.WithError(err).Warn("bad message")
		_ = msg.Nack(false, false)
		return
	}
	helpers.EnsureRecipientAndEmail(&job)
	log := logger.WithFields(logrus.Fields{"template": job.Template, "to": job.To})

	subject, text, html := job.Subject, job.Text, job.HTML
	if job.Template != "" {
		if !mailtpl.Known(job.Template) {
			log.Warn("unknown template; dropping job")
			_ = msg.Nack(false, false)
			return
		}
		s, t, h, err := mailtpl.Render(job.Template, job.Data)
		if err != nil {
			log.WithError(err).Warn("render failed")
			_ = msg.Nack(false, false)
			return
		}
		subject, text, html = s, t, h
	}
	if subject == "" {
		subject = helpers.SubjectFor(job.Template)
	}

	c, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	var tags []string
	if job.Template != "" {
		tags = append(tags, job.Template)
	}
	if err := mg.Send(c, job.To, subject, text, html, tags...); err != nil {
		log.WithError(err).Warn("send failed")
		_ = msg.Nack(false, true)
		return
	}
	_ = msg.Ack(false)
	log.Info("email sent")
}
