package outreach

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/wneessen/go-mail"
	"go.uber.org/zap"

	"github.com/aiboostly/leadpilot/internal/config"
	"github.com/aiboostly/leadpilot/internal/resilience"
)

// Receipt confirms a delivered message.
type Receipt struct {
	Status    string `json:"status"`
	Recipient string `json:"to_email"`
	Subject   string `json:"subject"`
}

// Sender is the transport seam; *mail.Client satisfies it.
type Sender interface {
	DialAndSendWithContext(ctx context.Context, msgs ...*mail.Msg) error
}

// Dispatcher delivers drafted emails over an authenticated SMTP session.
type Dispatcher struct {
	sender Sender
	cfg    config.SMTPConfig
	retry  resilience.RetryConfig
}

// DispatcherOption customizes the dispatcher.
type DispatcherOption func(*Dispatcher)

// WithSender overrides the SMTP transport, for tests.
func WithSender(s Sender) DispatcherOption {
	return func(d *Dispatcher) {
		d.sender = s
	}
}

// WithDispatcherRetryConfig overrides the transport retry policy.
func WithDispatcherRetryConfig(cfg resilience.RetryConfig) DispatcherOption {
	return func(d *Dispatcher) {
		d.retry = cfg
	}
}

// TransportRetryConfig retries transport-level failures at 5s/10s/20s.
// Authentication failures are excluded: retrying cannot fix bad credentials.
func TransportRetryConfig() resilience.RetryConfig {
	return resilience.RetryConfig{
		MaxAttempts:    3,
		InitialBackoff: 5 * time.Second,
		Multiplier:     2.0,
		ShouldRetry: func(err error) bool {
			return !IsAuthError(err)
		},
		OnRetry: resilience.RetryLogger("smtp", "send email"),
	}
}

// NewDispatcher creates a Dispatcher. Requires SMTP credentials; returns an
// error when they are missing since sending is a mandatory stage once
// reached.
func NewDispatcher(cfg config.SMTPConfig, opts ...DispatcherOption) (*Dispatcher, error) {
	if cfg.User == "" || cfg.Password == "" {
		return nil, eris.New("outreach: smtp user and password must be configured")
	}
	if cfg.FromEmail == "" {
		cfg.FromEmail = cfg.User
	}

	d := &Dispatcher{
		cfg:   cfg,
		retry: TransportRetryConfig(),
	}
	for _, opt := range opts {
		opt(d)
	}

	if d.sender == nil {
		client, err := mail.NewClient(cfg.Host,
			mail.WithPort(cfg.Port),
			mail.WithSMTPAuth(mail.SMTPAuthLogin),
			mail.WithUsername(cfg.User),
			mail.WithPassword(cfg.Password),
			mail.WithTLSPolicy(mail.TLSMandatory),
			mail.WithTimeout(30*time.Second),
		)
		if err != nil {
			return nil, eris.Wrap(err, "outreach: create smtp client")
		}
		d.sender = client
	}

	return d, nil
}

// Send delivers body to toAddress as a dual-format (plain + HTML) message.
// In test mode every send goes to the configured override address instead,
// and the receipt reports the override as the recipient.
func (d *Dispatcher) Send(ctx context.Context, toAddress, body, businessName string, testMode bool) (*Receipt, error) {
	recipient := toAddress
	if testMode {
		if d.cfg.TestEmail == "" {
			return nil, eris.New("outreach: test mode requires a configured test address")
		}
		zap.L().Info("outreach: test mode, redirecting send",
			zap.String("original", toAddress),
			zap.String("override", d.cfg.TestEmail),
		)
		recipient = d.cfg.TestEmail
	}

	subject := "Uw preview website"
	if businessName != "" {
		subject = fmt.Sprintf("Preview website voor %s", businessName)
	}

	msg, err := d.buildMessage(recipient, subject, body)
	if err != nil {
		return nil, err
	}

	zap.L().Info("outreach: sending email",
		zap.String("to", recipient),
		zap.String("host", d.cfg.Host),
		zap.Int("port", d.cfg.Port),
	)

	err = resilience.Do(ctx, d.retry, func(ctx context.Context) error {
		return d.sender.DialAndSendWithContext(ctx, msg)
	})
	if err != nil {
		if IsAuthError(err) {
			return nil, eris.Wrap(err, "outreach: smtp authentication failed")
		}
		return nil, eris.Wrap(err, "outreach: send email")
	}

	zap.L().Info("outreach: email sent", zap.String("to", recipient))
	return &Receipt{
		Status:    "sent",
		Recipient: recipient,
		Subject:   subject,
	}, nil
}

func (d *Dispatcher) buildMessage(recipient, subject, body string) (*mail.Msg, error) {
	msg := mail.NewMsg()
	if err := msg.FromFormat(d.cfg.FromName, d.cfg.FromEmail); err != nil {
		return nil, eris.Wrap(err, "outreach: set from address")
	}
	if err := msg.To(recipient); err != nil {
		return nil, eris.Wrap(err, "outreach: set recipient")
	}
	if err := msg.ReplyToFormat(d.cfg.FromName, d.cfg.FromEmail); err != nil {
		return nil, eris.Wrap(err, "outreach: set reply-to")
	}
	msg.Subject(subject)
	msg.SetDate()
	msg.SetMessageID()

	msg.SetBodyString(mail.TypeTextPlain, body)
	msg.AddAlternativeString(mail.TypeTextHTML, htmlBody(body))
	return msg, nil
}

// htmlBody renders the plain-text draft as minimal HTML: escaped, with line
// breaks preserved. No heavy templates.
func htmlBody(body string) string {
	escaped := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;").Replace(body)
	escaped = strings.ReplaceAll(escaped, "\n", "<br>\n")
	return fmt.Sprintf(`<html>
<body style="font-family: Arial, sans-serif; font-size: 14px; color: #333; line-height: 1.6;">
<p>%s</p>
</body>
</html>`, escaped)
}

// IsAuthError reports whether the transport failure was an authentication
// rejection. The SMTP client wraps server responses, so this goes by the
// reply code and message text.
func IsAuthError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "535") ||
		strings.Contains(msg, "authentication failed") ||
		strings.Contains(msg, "auth failed") ||
		strings.Contains(msg, "invalid credentials")
}
