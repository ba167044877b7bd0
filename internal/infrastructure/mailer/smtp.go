package mailer

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/wneessen/go-mail"

	"devis/internal/notification"
)

type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Timeout  time.Duration
}

// SMTPTransport delivers messages through an authenticated SMTP relay.
type SMTPTransport struct {
	client *mail.Client
}

const defaultTimeout = 15 * time.Second

func NewSMTPTransport(cfg SMTPConfig) (*SMTPTransport, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	opts := []mail.Option{
		mail.WithPort(cfg.Port),
		mail.WithTimeout(timeout),
	}
	if cfg.Port == 465 {
		opts = append(opts, mail.WithSSLPort(false))
	} else {
		opts = append(opts, mail.WithTLSPortPolicy(mail.TLSMandatory))
	}
	if cfg.User != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.User),
			mail.WithPassword(cfg.Password),
		)
	}

	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating smtp client: %w", err)
	}

	return &SMTPTransport{client: client}, nil
}

func (t *SMTPTransport) Deliver(ctx context.Context, m notification.Message) (string, error) {
	msg, err := buildMessage(m)
	if err != nil {
		return "", &notification.TransportError{Code: notification.CodeUnknown, Response: err.Error(), Permanent: true, Err: err}
	}

	if err := t.client.DialAndSendWithContext(ctx, msg); err != nil {
		return "", classify(err)
	}

	return msg.GetMessageID(), nil
}

func buildMessage(m notification.Message) (*mail.Msg, error) {
	msg := mail.NewMsg()

	if err := msg.From(m.From); err != nil {
		return nil, fmt.Errorf("setting sender: %w", err)
	}
	if err := msg.To(m.To...); err != nil {
		return nil, fmt.Errorf("setting recipients: %w", err)
	}
	if len(m.Cc) > 0 {
		if err := msg.Cc(m.Cc...); err != nil {
			return nil, fmt.Errorf("setting cc: %w", err)
		}
	}

	msg.Subject(m.Subject)
	msg.SetMessageID()
	msg.SetDate()
	msg.SetBodyString(mail.TypeTextHTML, m.Body)

	for _, a := range m.Attachments {
		ct := a.ContentType
		if ct == "" {
			ct = "application/octet-stream"
		}
		if err := msg.AttachReader(a.Filename, bytes.NewReader(a.Data), mail.WithFileContentType(mail.ContentType(ct))); err != nil {
			return nil, fmt.Errorf("attaching %s: %w", a.Filename, err)
		}
	}

	return msg, nil
}

// classify turns go-mail send failures into a TransportError carrying the
// server reply code when one is known.
func classify(err error) error {
	var sendErr *mail.SendError
	if !errors.As(err, &sendErr) {
		return err
	}

	te := &notification.TransportError{
		Code:     notification.CodeSMTP,
		Response: sendErr.Error(),
		Err:      err,
	}

	var coded interface{ ErrorCode() int }
	if errors.As(err, &coded) {
		te.ResponseCode = coded.ErrorCode()
	}
	if te.ResponseCode == 0 {
		te.Code = notification.CodeConnection
	}
	te.Permanent = te.ResponseCode >= 500 && !sendErr.IsTemp()

	return te
}
