package mailing

import (
	"context"
	"strconv"

	"AgriWaste-Marketplace/internal/utils"

	"gopkg.in/gomail.v2"
)

type (
	Mailer interface {
		SendMail(ctx context.Context, toEmail string, subject string, body string) error
	}

	MailConfig struct {
		AppURL       string
		SMTPHost     string
		SMTPPort     string
		SMTPSender   string
		SMTPEmail    string
		SMTPPassword string
	}

	smtpMailer struct {
		config MailConfig
	}
)

func LoadMailConfig() MailConfig {
	return MailConfig{
		AppURL:       utils.GetConfig("APP_URL"),
		SMTPHost:     utils.GetConfig("SMTP_HOST"),
		SMTPPort:     utils.GetConfig("SMTP_PORT"),
		SMTPSender:   utils.GetConfig("SMTP_SENDER_NAME"),
		SMTPEmail:    utils.GetConfig("SMTP_AUTH_EMAIL"),
		SMTPPassword: utils.GetConfig("SMTP_AUTH_PASSWORD"),
	}
}

// NewMailer picks the delivery backend from MAIL_DRIVER.
func NewMailer(ctx context.Context) (Mailer, error) {
	if utils.GetConfig("MAIL_DRIVER") == "ses" {
		return NewSESMailer(ctx, utils.GetConfig("SES_REGION"), utils.GetConfig("SES_FROM_EMAIL"))
	}
	return NewSMTPMailer(LoadMailConfig()), nil
}

func NewSMTPMailer(config MailConfig) Mailer {
	return &smtpMailer{config: config}
}

func (m *smtpMailer) SendMail(_ context.Context, toEmail string, subject string, body string) error {
	mailer := gomail.NewMessage()
	mailer.SetHeader("From", mailer.FormatAddress(m.config.SMTPEmail, m.config.SMTPSender))
	mailer.SetHeader("To", toEmail)
	mailer.SetHeader("Subject", subject)
	mailer.SetBody("text/html", body)

	port, err := strconv.Atoi(m.config.SMTPPort)
	if err != nil {
		return err
	}
	dialer := gomail.NewDialer(
		m.config.SMTPHost,
		port,
		m.config.SMTPEmail,
		m.config.SMTPPassword,
	)

	return dialer.DialAndSend(mailer)
}
