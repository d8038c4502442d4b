package notification

import (
	"context"
	"fmt"
	"net"
	"time"

	gomail "github.com/wneessen/go-mail"

	"plumbing_portal_backend/platform/config"
)

// Sender delivers notification emails.
type Sender interface {
	SendNewRequestEmail(ctx context.Context, toEmail string, data NewRequestEmailData) error
	SendRequestReceivedEmail(ctx context.Context, toEmail string, data RequestReceivedEmailData) error
	SendHighPriorityEmail(ctx context.Context, toEmail string, data HighPriorityEmailData) error
	SendStatusUpdateEmail(ctx context.Context, toEmail string, data StatusUpdateEmailData) error
	SendQuoteSentEmail(ctx context.Context, toEmail string, data QuoteSentEmailData) error
	SendFollowUpEmail(ctx context.Context, toEmail string, data FollowUpEmailData) error
}

// SMTPSender delivers notification emails over a direct SMTP connection.
type SMTPSender struct {
	host      string
	port      int
	username  string
	password  string
	fromName  string
	fromEmail string
}

// NewSMTPSender creates an SMTP-backed sender from the email config.
func NewSMTPSender(cfg config.EmailConfig) *SMTPSender {
	return &SMTPSender{
		host:      cfg.GetSMTPHost(),
		port:      cfg.GetSMTPPort(),
		username:  cfg.GetSMTPUsername(),
		password:  cfg.GetSMTPPassword(),
		fromName:  cfg.GetEmailFromName(),
		fromEmail: cfg.GetEmailFromAddress(),
	}
}

func (s *SMTPSender) send(ctx context.Context, toEmail, subject, htmlContent string) error {
	msg := gomail.NewMsg()
	if err := msg.FromFormat(s.fromName, s.fromEmail); err != nil {
		return fmt.Errorf("smtp from: %w", err)
	}
	if err := msg.To(toEmail); err != nil {
		return fmt.Errorf("smtp to: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextHTML, htmlContent)

	client, err := gomail.NewClient(s.host,
		gomail.WithPort(s.port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(s.username),
		gomail.WithPassword(s.password),
		gomail.WithTLSPortPolicy(gomail.TLSOpportunistic),
		gomail.WithTimeout(15*time.Second),
		gomail.WithDialContextFunc(func(dctx context.Context, _ string, addr string) (net.Conn, error) {
			return (&net.Dialer{}).DialContext(dctx, "tcp4", addr)
		}),
	)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

func (s *SMTPSender) SendNewRequestEmail(ctx context.Context, toEmail string, data NewRequestEmailData) error {
	content, err := renderEmailTemplate("new_request.html", data)
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, subjectNewRequest, content)
}

func (s *SMTPSender) SendRequestReceivedEmail(ctx context.Context, toEmail string, data RequestReceivedEmailData) error {
	content, err := renderEmailTemplate("request_received.html", data)
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, subjectRequestReceived, content)
}

func (s *SMTPSender) SendHighPriorityEmail(ctx context.Context, toEmail string, data HighPriorityEmailData) error {
	content, err := renderEmailTemplate("high_priority.html", data)
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, subjectHighPriority, content)
}

func (s *SMTPSender) SendStatusUpdateEmail(ctx context.Context, toEmail string, data StatusUpdateEmailData) error {
	content, err := renderEmailTemplate("status_update.html", data)
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, subjectStatusUpdate, content)
}

func (s *SMTPSender) SendQuoteSentEmail(ctx context.Context, toEmail string, data QuoteSentEmailData) error {
	content, err := renderEmailTemplate("quote_sent.html", data)
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, subjectQuoteSent, content)
}

func (s *SMTPSender) SendFollowUpEmail(ctx context.Context, toEmail string, data FollowUpEmailData) error {
	content, err := renderEmailTemplate("follow_up.html", data)
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, subjectFollowUp, content)
}

// NoopSender drops every email. Used when SMTP is not configured.
type NoopSender struct{}

func (NoopSender) SendNewRequestEmail(ctx context.Context, toEmail string, data NewRequestEmailData) error {
	return nil
}

func (NoopSender) SendRequestReceivedEmail(ctx context.Context, toEmail string, data RequestReceivedEmailData) error {
	return nil
}

func (NoopSender) SendHighPriorityEmail(ctx context.Context, toEmail string, data HighPriorityEmailData) error {
	return nil
}

func (NoopSender) SendStatusUpdateEmail(ctx context.Context, toEmail string, data StatusUpdateEmailData) error {
	return nil
}

func (NoopSender) SendQuoteSentEmail(ctx context.Context, toEmail string, data QuoteSentEmailData) error {
	return nil
}

func (NoopSender) SendFollowUpEmail(ctx context.Context, toEmail string, data FollowUpEmailData) error {
	return nil
}
