package reports

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"searchlight-backend/lib/configutil"

	"github.com/jordan-wright/email"
	"go.opentelemetry.io/otel/codes"
)

type SmtpConfig struct {
	Server       string `json:"server"`
	Port         int    `json:"port"`
	EmailAddress string `json:"email_address"`
	Password     string `json:"password"`
}

// SmtpConfigFromEnv reads SMTP_SERVER, SMTP_PORT, SMTP_EMAIL and
// SMTP_PASSWORD. the port defaults to 587.
func SmtpConfigFromEnv() (SmtpConfig, error) {
	cfg := SmtpConfig{
		Server:       configutil.Env("SMTP_SERVER", ""),
		EmailAddress: configutil.Env("SMTP_EMAIL", ""),
		Password:     configutil.Env("SMTP_PASSWORD", ""),
		Port:         587,
	}
	if cfg.Server == "" || cfg.EmailAddress == "" {
		return SmtpConfig{}, fmt.Errorf("SMTP_SERVER and SMTP_EMAIL must be set")
	}
	port := configutil.Env("SMTP_PORT", "")
	if port != "" {
		_, err := fmt.Sscanf(port, "%d", &cfg.Port)
		if err != nil {
			return SmtpConfig{}, fmt.Errorf("invalid SMTP_PORT %q: %w", port, err)
		}
	}
	return cfg, nil
}

type Mailer struct {
	config SmtpConfig
}

func NewMailer(config SmtpConfig) Mailer {
	return Mailer{config: config}
}

// SendSummary mails the rendered summary report as plain text.
func (m Mailer) SendSummary(ctx context.Context, to []string, report *SummaryReport) error {
	_, span := tracer.Start(ctx, "SendSummary")
	defer span.End()

	mail := email.NewEmail()
	mail.From = fmt.Sprintf("Searchlight <%s>", m.config.EmailAddress)
	mail.To = to
	mail.Subject = fmt.Sprintf(
		"アクセス解析レポート %s (%d日間)",
		report.GeneratedAt.Format("2006-01-02"),
		report.PeriodDays,
	)
	mail.Text = []byte(RenderMarkdown(report))

	addr := fmt.Sprintf("%s:%d", m.config.Server, m.config.Port)
	err := mail.Send(
		addr,
		smtp.PlainAuth("", m.config.EmailAddress, m.config.Password, m.config.Server),
	)
	if err != nil && strings.Contains(err.Error(), "server doesn't support AUTH") {
		err = mail.Send(addr, nil)
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to send report email")
		return err
	}
	return nil
}
