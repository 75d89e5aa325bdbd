package notify

import (
	"context"
	"crypto/tls"
	"fmt"
	"log"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"github.com/clusslin/exdicom/config"
)

// SMTPNotifier implements Notifier over plain SMTP with optional STARTTLS,
// matching the mail setup of the upload workflow (a submission-only account
// on the hospital relay or smtp.gmail.com:587).
type SMTPNotifier struct {
	cfg     config.NotifierConfig
	timeout time.Duration
	logger  *log.Logger
}

// NewSMTPNotifier creates an SMTP-backed notifier.
func NewSMTPNotifier(cfg config.NotifierConfig, logger *log.Logger) (*SMTPNotifier, error) {
	if cfg.SmtpHost == "" || cfg.SenderEmail == "" {
		return nil, fmt.Errorf("notifier configuration incomplete: smtp_host and sender_email are required")
	}
	logger.Printf("SMTP notifier created, server: %s:%d", cfg.SmtpHost, cfg.SmtpPort)
	return &SMTPNotifier{
		cfg:     cfg,
		timeout: config.ParseDuration(cfg.SendTimeout, 10*time.Second, "notifier.send_timeout"),
		logger:  logger,
	}, nil
}

// NotifySubmitter sends the confirmation template to the uploader.
func (n *SMTPNotifier) NotifySubmitter(ctx context.Context, email, identifier, hospital string) error {
	if email == "" {
		return fmt.Errorf("no submitter email on record")
	}
	subject, body := submitterMessage(identifier, hospital)
	if err := n.send(ctx, email, subject, body); err != nil {
		return fmt.Errorf("failed to send confirmation to %s: %w", email, err)
	}
	n.logger.Printf("Confirmation sent to %s (identifier: %s)", email, identifier)
	return nil
}

// NotifyOperator alerts the configured operator address.
func (n *SMTPNotifier) NotifyOperator(ctx context.Context, kind, message string, details map[string]string) error {
	if n.cfg.OperatorEmail == "" {
		return fmt.Errorf("no operator email configured")
	}
	subject, body := operatorMessage(kind, message, details)
	if err := n.send(ctx, n.cfg.OperatorEmail, subject, body); err != nil {
		return fmt.Errorf("failed to send operator alert: %w", err)
	}
	n.logger.Printf("Operator alert sent: %s", kind)
	return nil
}

// send performs one SMTP transaction with a bounded dial deadline. net/smtp
// has no context support, so the deadline is pushed onto the connection.
func (n *SMTPNotifier) send(ctx context.Context, to, subject, body string) error {
	addr := net.JoinHostPort(n.cfg.SmtpHost, strconv.Itoa(n.cfg.SmtpPort))

	dialer := &net.Dialer{Timeout: n.timeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to dial SMTP server %s: %w", addr, err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	client, err := smtp.NewClient(conn, n.cfg.SmtpHost)
	if err != nil {
		conn.Close()
		return fmt.Errorf("SMTP handshake failed: %w", err)
	}
	defer client.Close()

	if n.cfg.UseTLS {
		if err := client.StartTLS(&tls.Config{ServerName: n.cfg.SmtpHost}); err != nil {
			return fmt.Errorf("STARTTLS failed: %w", err)
		}
	}
	if n.cfg.Username != "" {
		auth := smtp.PlainAuth("", n.cfg.Username, n.cfg.Password, n.cfg.SmtpHost)
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("SMTP authentication failed: %w", err)
		}
	}

	if err := client.Mail(n.cfg.SenderEmail); err != nil {
		return fmt.Errorf("MAIL FROM rejected: %w", err)
	}
	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("RCPT TO rejected: %w", err)
	}
	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("DATA rejected: %w", err)
	}
	if _, err := w.Write([]byte(formatMessage(n.cfg.SenderEmail, to, subject, body))); err != nil {
		w.Close()
		return fmt.Errorf("failed to write message body: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to finish message body: %w", err)
	}
	return client.Quit()
}

// formatMessage renders a minimal RFC 5322 message.
func formatMessage(from, to, subject, body string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	b.WriteString("\r\n")
	b.WriteString(strings.ReplaceAll(body, "\n", "\r\n"))
	return b.String()
}

var _ Notifier = (*SMTPNotifier)(nil)
