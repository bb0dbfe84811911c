package outbox

import (
	"bytes"
	"context"
	"crypto/tls"
	"fmt"
	"mime"
	"net"
	"os"
	"strings"
	"time"

	"github.com/emersion/go-sasl"
	"github.com/emersion/go-smtp"
	"github.com/mikey/loan-approval/internal/core"
	"github.com/mikey/loan-approval/internal/utils"
	"go.uber.org/zap"
)

// TLS modes for the relay connection
const (
	TLSNone     = "none"
	TLSStartTLS = "starttls"
	TLSImplicit = "tls"
)

// Settings describes the review relay
type Settings struct {
	Address  string
	Username string
	Password string
	From     string
	To       []string
	TLS      string

	// DialTimeout bounds the connect, Timeout bounds each SMTP command.
	// Zero leaves the library defaults in place.
	DialTimeout time.Duration
	Timeout     time.Duration
}

// SMTPOutbox forwards drafted decision emails to a review mailbox
type SMTPOutbox struct {
	settings      Settings
	logger        *zap.Logger
	textProcessor *utils.TextProcessor
}

// NewSMTPOutbox creates a new SMTP outbox
func NewSMTPOutbox(settings Settings, logger *zap.Logger, textProcessor *utils.TextProcessor) *SMTPOutbox {
	if settings.TLS == "" {
		settings.TLS = TLSNone
	}
	return &SMTPOutbox{
		settings:      settings,
		logger:        logger,
		textProcessor: textProcessor,
	}
}

// Forward relays the draft for applicantName to the review recipients
func (o *SMTPOutbox) Forward(ctx context.Context, applicantName string, draft core.EmailDraft) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if strings.TrimSpace(draft.Body) == "" {
		return fmt.Errorf("draft is empty")
	}

	msg := o.buildMessage(applicantName, draft, time.Now())

	if err := o.send(ctx, msg); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = ctxErr
		}
		o.logger.Error("Failed to forward draft",
			zap.String("address", o.settings.Address),
			zap.String("applicant", applicantName),
			zap.Error(err))
		return fmt.Errorf("failed to forward draft: %w", err)
	}

	o.logger.Info("Forwarded draft",
		zap.String("applicant", applicantName),
		zap.String("decision", string(draft.Decision)),
		zap.Strings("to", o.settings.To))
	return nil
}

// send delivers msg over a fresh connection
func (o *SMTPOutbox) send(ctx context.Context, msg []byte) error {
	dialCtx := ctx
	if o.settings.DialTimeout > 0 {
		var cancel context.CancelFunc
		dialCtx, cancel = context.WithTimeout(ctx, o.settings.DialTimeout)
		defer cancel()
	}

	var dialer net.Dialer
	conn, err := dialer.DialContext(dialCtx, "tcp", o.settings.Address)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", o.settings.Address, err)
	}

	// Closing the connection unblocks any pending read or write once ctx is done
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()

	var c *smtp.Client
	switch o.settings.TLS {
	case TLSImplicit:
		c = smtp.NewClient(tls.Client(conn, o.tlsConfig()))
	case TLSStartTLS:
		c, err = smtp.NewClientStartTLS(conn, o.tlsConfig())
		if err != nil {
			conn.Close()
			return fmt.Errorf("STARTTLS failed: %w", err)
		}
	default:
		c = smtp.NewClient(conn)
	}
	defer c.Close()

	if o.settings.Timeout > 0 {
		c.CommandTimeout = o.settings.Timeout
		c.SubmissionTimeout = o.settings.Timeout
	}

	hostname, err := os.Hostname()
	if err != nil {
		hostname = "localhost"
	}
	if err := c.Hello(hostname); err != nil {
		return fmt.Errorf("EHLO failed: %w", err)
	}

	if o.settings.Username != "" {
		if ok, _ := c.Extension("AUTH"); !ok {
			return fmt.Errorf("server does not support AUTH")
		}
		if err := c.Auth(sasl.NewPlainClient("", o.settings.Username, o.settings.Password)); err != nil {
			return fmt.Errorf("AUTH failed: %w", err)
		}
	}

	if err := c.Mail(o.settings.From, nil); err != nil {
		return fmt.Errorf("MAIL FROM failed: %w", err)
	}

	recipientOK := false
	for _, recipient := range o.settings.To {
		if err := c.Rcpt(recipient, nil); err != nil {
			o.logger.Warn("RCPT TO failed for recipient",
				zap.String("recipient", recipient),
				zap.Error(err))
			continue
		}
		recipientOK = true
	}
	if !recipientOK {
		return fmt.Errorf("all recipients were rejected")
	}

	wc, err := c.Data()
	if err != nil {
		return fmt.Errorf("DATA command failed: %w", err)
	}
	if _, err := wc.Write(msg); err != nil {
		wc.Close()
		return fmt.Errorf("failed to write message: %w", err)
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("failed to complete DATA: %w", err)
	}

	return c.Quit()
}

func (o *SMTPOutbox) tlsConfig() *tls.Config {
	host, _, err := net.SplitHostPort(o.settings.Address)
	if err != nil {
		host = o.settings.Address
	}
	return &tls.Config{ServerName: host}
}

func (o *SMTPOutbox) buildMessage(applicantName string, draft core.EmailDraft, now time.Time) []byte {
	name := o.textProcessor.SingleLine(applicantName, 120)
	subject := fmt.Sprintf("Loan decision draft: %s (%s)", name, draft.Decision)

	var b bytes.Buffer
	fmt.Fprintf(&b, "From: %s\r\n", o.settings.From)
	fmt.Fprintf(&b, "To: %s\r\n", strings.Join(o.settings.To, ", "))
	fmt.Fprintf(&b, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", subject))
	fmt.Fprintf(&b, "Date: %s\r\n", now.Format(time.RFC1123Z))
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	b.WriteString("\r\n")

	body := strings.ReplaceAll(draft.Body, "\r\n", "\n")
	b.WriteString(strings.ReplaceAll(body, "\n", "\r\n"))
	b.WriteString("\r\n")
	return b.Bytes()
}
