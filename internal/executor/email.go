package executor

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"time"
)

const emailSendTimeout = 30 * time.Second

// SMTPConfig is the relay the email driver authenticates against; it is
// loaded once from the environment at startup (spec.md §6) and never
// changes for the life of the process.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// EmailDriver sends check-in warning/final emails over an authenticated
// SMTP relay. Port 465 uses implicit TLS; any other port requires STARTTLS
// and the send fails outright if the relay doesn't advertise it — no
// plaintext fallback.
type EmailDriver struct {
	cfg SMTPConfig
}

func NewEmailDriver(cfg SMTPConfig) *EmailDriver {
	return &EmailDriver{cfg: cfg}
}

func (d *EmailDriver) Run(ctx context.Context, raw json.RawMessage, ec ExecContext) (Result, error) {
	var cfg EmailConfig
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return Result{}, fmt.Errorf("failed to parse email config: %w", err)
	}

	recipients := cfg.BCC
	if len(recipients) == 0 {
		if cfg.To != nil && *cfg.To != "" {
			recipients = []string{*cfg.To}
		} else {
			return Result{}, errors.New("No recipients specified")
		}
	}

	// All recipients are BCC'd; the visible To header is the From address
	// so the send never leaks the recipient list to any one recipient.
	msg := buildMessage(d.cfg.From, cfg.Subject, cfg.Body)

	resultCh := make(chan error, 1)
	go func() {
		resultCh <- d.send(recipients, msg)
	}()

	select {
	case err := <-resultCh:
		if err != nil {
			return Result{}, fmt.Errorf("failed to send email: %w", err)
		}
		return Result{
			ExitCode: 0,
			Stdout:   fmt.Sprintf("Email sent to %d BCC recipients", len(recipients)),
		}, nil
	case <-time.After(emailSendTimeout):
		return Result{}, errors.New("email send timeout (30s)")
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
}

func buildMessage(from, subject, body string) []byte {
	headers := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n",
		from, from, subject)
	return []byte(headers + body)
}

func (d *EmailDriver) send(recipients []string, msg []byte) error {
	addr := net.JoinHostPort(d.cfg.Host, strconv.Itoa(d.cfg.Port))
	auth := smtp.PlainAuth("", d.cfg.Username, d.cfg.Password, d.cfg.Host)

	if d.cfg.Port == 465 {
		return d.sendImplicitTLS(addr, auth, recipients, msg)
	}
	return d.sendRequiredStartTLS(addr, auth, recipients, msg)
}

// sendImplicitTLS wraps the connection in TLS before speaking SMTP, for
// relays that listen on 465 and never negotiate STARTTLS.
func (d *EmailDriver) sendImplicitTLS(addr string, auth smtp.Auth, recipients []string, msg []byte) error {
	conn, err := tls.Dial("tcp", addr, &tls.Config{ServerName: d.cfg.Host})
	if err != nil {
		return err
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, d.cfg.Host)
	if err != nil {
		return err
	}
	defer client.Close()

	return runClientSequence(client, auth, d.cfg.From, recipients, msg)
}

// sendRequiredStartTLS negotiates STARTTLS over a plaintext connection and
// fails the send outright if the relay doesn't advertise the extension,
// rather than falling back to smtp.SendMail's best-effort STARTTLS (which
// silently sends credentials and body in clear when the extension is
// absent).
func (d *EmailDriver) sendRequiredStartTLS(addr string, auth smtp.Auth, recipients []string, msg []byte) error {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return err
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, d.cfg.Host)
	if err != nil {
		return err
	}
	defer client.Close()

	if ok, _ := client.Extension("STARTTLS"); !ok {
		return errors.New("SMTP relay does not support STARTTLS; refusing to send in plaintext")
	}
	if err := client.StartTLS(&tls.Config{ServerName: d.cfg.Host}); err != nil {
		return fmt.Errorf("STARTTLS negotiation failed: %w", err)
	}

	return runClientSequence(client, auth, d.cfg.From, recipients, msg)
}

// runClientSequence drives an already-secured *smtp.Client through
// auth/mail/rcpt/data/quit, shared by both the implicit-TLS and
// STARTTLS-required paths.
func runClientSequence(client *smtp.Client, auth smtp.Auth, from string, recipients []string, msg []byte) error {
	if err := client.Auth(auth); err != nil {
		return err
	}
	if err := client.Mail(from); err != nil {
		return err
	}
	for _, rcpt := range recipients {
		if err := client.Rcpt(rcpt); err != nil {
			return err
		}
	}
	w, err := client.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(msg); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return client.Quit()
}
