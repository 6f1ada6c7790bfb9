package notifications

import (
	"context"
	"fmt"
	"strings"

	"github.com/wneessen/go-mail"

	"stockpile/internal/config"
	"stockpile/internal/report"
)

// Service defines the notification surface exposed to the runner.
type Service interface {
	// NotifyRunSummary sends the one per-run summary mail to the
	// configured recipient.
	NotifyRunSummary(ctx context.Context, summary *report.RunSummary) error
	// NotifySetupFailure reports a run that aborted before any task was
	// attempted. It goes to the administrative recipient only.
	NotifySetupFailure(ctx context.Context, failure error) error
	// TestNotification sends a short probe message.
	TestNotification(ctx context.Context) error
}

// NewService builds a mail-backed notification service. When no recipient
// is configured a noop implementation is returned.
func NewService(cfg *config.Config) (Service, error) {
	if cfg.Mail.To == "" && cfg.Mail.AdminTo == "" {
		return noopService{}, nil
	}

	opts := []mail.Option{
		mail.WithPort(cfg.Mail.SMTPPort),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	}
	if cfg.Mail.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Mail.Username),
			mail.WithPassword(cfg.Mail.Password),
		)
	}
	client, err := mail.NewClient(cfg.Mail.SMTPHost, opts...)
	if err != nil {
		return nil, fmt.Errorf("build mail client: %w", err)
	}

	return &mailService{
		client:  client,
		from:    cfg.Mail.From,
		to:      cfg.Mail.To,
		adminTo: cfg.Mail.AdminTo,
	}, nil
}

type mailService struct {
	client  *mail.Client
	from    string
	to      string
	adminTo string
}

func (m *mailService) NotifyRunSummary(ctx context.Context, summary *report.RunSummary) error {
	if m.to == "" {
		return nil
	}
	importance := mail.ImportanceNormal
	if summary.Priority() == report.PriorityHigh {
		importance = mail.ImportanceHigh
	}
	return m.send(ctx, m.to, "Stockpile - "+summary.Subject(), summary.Body(), importance)
}

func (m *mailService) NotifySetupFailure(ctx context.Context, failure error) error {
	recipient := m.adminTo
	if recipient == "" {
		return nil
	}
	detail := "unknown"
	if failure != nil {
		detail = strings.TrimSpace(failure.Error())
	}
	body := "The run aborted before any task was attempted.\n\n" + detail + "\n"
	return m.send(ctx, recipient, "Stockpile - Run aborted", body, mail.ImportanceHigh)
}

func (m *mailService) TestNotification(ctx context.Context) error {
	recipient := m.to
	if recipient == "" {
		recipient = m.adminTo
	}
	return m.send(ctx, recipient, "Stockpile - Test", "Test notification from Stockpile.\n", mail.ImportanceNormal)
}

func (m *mailService) send(ctx context.Context, to, subject, body string, importance mail.Importance) error {
	msg := mail.NewMsg()
	if err := msg.From(m.from); err != nil {
		return fmt.Errorf("set sender: %w", err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("set recipient: %w", err)
	}
	msg.Subject(subject)
	msg.SetImportance(importance)
	msg.SetBodyString(mail.TypeTextPlain, body)

	if err := m.client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	return nil
}

type noopService struct{}

func (noopService) NotifyRunSummary(context.Context, *report.RunSummary) error { return nil }
func (noopService) NotifySetupFailure(context.Context, error) error            { return nil }
func (noopService) TestNotification(context.Context) error                     { return nil }

// Noop returns the disabled notification service. Intended for tests.
func Noop() Service {
	return noopService{}
}
