package alerts

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/wneessen/go-mail"
)

// EmailConfig holds SMTP delivery settings. None of it is validated up
// front: a bad host or credential surfaces as a Send error.
type EmailConfig struct {
	From     string
	To       []string
	Password string
	Host     string
	Port     int
	Timeout  time.Duration
}

// EmailNotifier sends alerts as plain-text email over SMTP with STARTTLS.
type EmailNotifier struct {
	cfg EmailConfig
}

// NewEmailNotifier creates an SMTP notifier. The sender address doubles as
// the SMTP username.
func NewEmailNotifier(cfg EmailConfig) *EmailNotifier {
	return &EmailNotifier{cfg: cfg}
}

func (e *EmailNotifier) Name() string { return "email" }

func (e *EmailNotifier) Send(ctx context.Context, alert Alert) error {
	msg, err := e.buildMessage(alert)
	if err != nil {
		return err
	}

	opts := []mail.Option{
		mail.WithPort(e.cfg.Port),
		mail.WithTLSPolicy(mail.TLSMandatory),
	}
	if e.cfg.Password != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(e.cfg.From),
			mail.WithPassword(e.cfg.Password),
		)
	}
	if e.cfg.Timeout > 0 {
		opts = append(opts, mail.WithTimeout(e.cfg.Timeout))
	}

	client, err := mail.NewClient(e.cfg.Host, opts...)
	if err != nil {
		return fmt.Errorf("create smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("send email alert: %w", err)
	}
	return nil
}

func (e *EmailNotifier) buildMessage(alert Alert) (*mail.Msg, error) {
	if len(e.cfg.To) == 0 {
		return nil, errors.New("no email recipients configured")
	}

	msg := mail.NewMsg()
	if err := msg.From(e.cfg.From); err != nil {
		return nil, fmt.Errorf("set sender: %w", err)
	}
	if err := msg.To(e.cfg.To...); err != nil {
		return nil, fmt.Errorf("set recipients: %w", err)
	}
	msg.Subject(alert.Subject)
	msg.SetBodyString(mail.TypeTextPlain, alert.Body)
	return msg, nil
}

// SplitAddresses turns a comma or semicolon separated list into addresses.
func SplitAddresses(list string) []string {
	var out []string
	for _, part := range strings.FieldsFunc(list, func(r rune) bool { return r == ',' || r == ';' }) {
		if addr := strings.TrimSpace(part); addr != "" {
			out = append(out, addr)
		}
	}
	return out
}
