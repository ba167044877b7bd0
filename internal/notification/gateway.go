package notification

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-retry"
	"go.uber.org/zap"

	apperrors "devis/internal/errors"
)

// Transport hands one message to the mail server. It returns the message id
// assigned by the transport.
type Transport interface {
	Deliver(ctx context.Context, msg Message) (string, error)
}

type Config struct {
	MaxRetries int
	RetryDelay time.Duration
}

// Gateway sends messages with a bounded number of retries at a fixed delay.
// It knows nothing about quotes.
type Gateway struct {
	transport  Transport
	maxRetries uint64
	retryDelay time.Duration
	logger     *zap.Logger
	now        func() time.Time
}

func NewGateway(transport Transport, cfg Config, logger *zap.Logger) *Gateway {
	delay := cfg.RetryDelay
	if delay <= 0 {
		delay = time.Millisecond
	}
	retries := cfg.MaxRetries
	if retries < 0 {
		retries = 0
	}

	return &Gateway{
		transport:  transport,
		maxRetries: uint64(retries),
		retryDelay: delay,
		logger:     logger,
		now:        time.Now,
	}
}

// Send delivers msg or fails with a DeliveryError describing the last
// attempt. The message is never altered between attempts.
func (g *Gateway) Send(ctx context.Context, msg Message) (*Receipt, error) {
	if err := validate(msg); err != nil {
		return nil, err
	}

	var (
		attempts  int
		lastErr   error
		messageID string
	)

	backoff := retry.WithMaxRetries(g.maxRetries, retry.NewConstant(g.retryDelay))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempts++

		id, err := g.transport.Deliver(ctx, msg)
		if err == nil {
			messageID = id
			return nil
		}

		lastErr = err
		d := diagnose(err)
		g.logger.Warn("mail delivery attempt failed",
			zap.Int("attempt", attempts),
			zap.String("subject", msg.Subject),
			zap.String("code", d.code),
			zap.Int("responseCode", d.responseCode),
			zap.Bool("permanent", d.permanent),
			zap.Error(err),
		)

		if d.permanent {
			return err
		}
		return retry.RetryableError(err)
	})

	if err != nil {
		if lastErr == nil {
			lastErr = err
		}
		d := diagnose(lastErr)
		return nil, &apperrors.DeliveryError{
			Attempts:     attempts,
			Code:         d.code,
			Response:     d.response,
			ResponseCode: d.responseCode,
			Cause:        lastErr,
		}
	}

	return &Receipt{
		MessageID: messageID,
		Attempts:  attempts,
		SentAt:    g.now(),
	}, nil
}

func validate(msg Message) error {
	var details []apperrors.ValidationDetail
	if msg.From == "" {
		details = append(details, apperrors.ValidationDetail{Field: "from", Message: "is required"})
	}
	if len(msg.To) == 0 {
		details = append(details, apperrors.ValidationDetail{Field: "to", Message: "at least one recipient is required"})
	}
	for i, a := range msg.Attachments {
		if a.Filename == "" || len(a.Data) == 0 {
			details = append(details, apperrors.ValidationDetail{
				Field:   fmt.Sprintf("attachments[%d]", i),
				Message: "filename and content are required",
			})
		}
	}
	if len(details) > 0 {
		return apperrors.NewValidationError("invalid message", details...)
	}
	return nil
}
