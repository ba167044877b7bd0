package notification

import (
	"context"
	"errors"
	"net/textproto"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	apperrors "devis/internal/errors"
)

type mockTransport struct {
	DeliverFunc func(ctx context.Context, msg Message) (string, error)
	calls       []Message
}

func (m *mockTransport) Deliver(ctx context.Context, msg Message) (string, error) {
	m.calls = append(m.calls, msg)
	return m.DeliverFunc(ctx, msg)
}

type timeoutErr struct{}

func (timeoutErr) Error() string   { return "i/o timeout" }
func (timeoutErr) Timeout() bool   { return true }
func (timeoutErr) Temporary() bool { return true }

func testMessage() Message {
	return Message{
		From:    "no-reply@example.com",
		To:      []string{"operator@example.com"},
		Subject: "Nouveau devis",
		Body:    "<p>hello</p>",
		Attachments: []Attachment{
			{Filename: "devis.pdf", ContentType: "application/pdf", Data: []byte("%PDF-1.4")},
		},
	}
}

func newTestGateway(tr Transport, retries int) *Gateway {
	return NewGateway(tr, Config{MaxRetries: retries, RetryDelay: time.Millisecond}, zap.NewNop())
}

func TestGateway_Send_FirstAttempt(t *testing.T) {
	tr := &mockTransport{DeliverFunc: func(ctx context.Context, msg Message) (string, error) {
		return "<id@example.com>", nil
	}}

	receipt, err := newTestGateway(tr, 2).Send(context.Background(), testMessage())

	require.NoError(t, err)
	assert.Equal(t, 1, receipt.Attempts)
	assert.Equal(t, "<id@example.com>", receipt.MessageID)
	assert.False(t, receipt.SentAt.IsZero())
}

func TestGateway_Send_RetriesTransientThenSucceeds(t *testing.T) {
	n := 0
	tr := &mockTransport{DeliverFunc: func(ctx context.Context, msg Message) (string, error) {
		n++
		if n < 3 {
			return "", &textproto.Error{Code: 421, Msg: "try again later"}
		}
		return "ok", nil
	}}

	receipt, err := newTestGateway(tr, 2).Send(context.Background(), testMessage())

	require.NoError(t, err)
	assert.Equal(t, 3, receipt.Attempts)
	require.Len(t, tr.calls, 3)
	for _, msg := range tr.calls {
		assert.Equal(t, testMessage(), msg)
	}
}

func TestGateway_Send_ExhaustsRetries(t *testing.T) {
	tr := &mockTransport{DeliverFunc: func(ctx context.Context, msg Message) (string, error) {
		return "", &textproto.Error{Code: 451, Msg: "local error"}
	}}

	_, err := newTestGateway(tr, 2).Send(context.Background(), testMessage())

	de, ok := apperrors.IsDeliveryError(err)
	require.True(t, ok)
	assert.Equal(t, 3, de.Attempts)
	assert.Equal(t, CodeSMTP, de.Code)
	assert.Equal(t, 451, de.ResponseCode)
	assert.Equal(t, "local error", de.Response)
	assert.Len(t, tr.calls, 3)
}

func TestGateway_Send_PermanentFailureNotRetried(t *testing.T) {
	tr := &mockTransport{DeliverFunc: func(ctx context.Context, msg Message) (string, error) {
		return "", &textproto.Error{Code: 550, Msg: "mailbox unavailable"}
	}}

	_, err := newTestGateway(tr, 5).Send(context.Background(), testMessage())

	de, ok := apperrors.IsDeliveryError(err)
	require.True(t, ok)
	assert.Equal(t, 1, de.Attempts)
	assert.Equal(t, 550, de.ResponseCode)
}

func TestGateway_Send_TransportErrorDiagnostics(t *testing.T) {
	tr := &mockTransport{DeliverFunc: func(ctx context.Context, msg Message) (string, error) {
		return "", &TransportError{Code: CodeConnection, Response: "dial tcp: refused", Err: errors.New("refused")}
	}}

	_, err := newTestGateway(tr, 1).Send(context.Background(), testMessage())

	de, ok := apperrors.IsDeliveryError(err)
	require.True(t, ok)
	assert.Equal(t, 2, de.Attempts)
	assert.Equal(t, CodeConnection, de.Code)
	assert.Equal(t, "dial tcp: refused", de.Response)
}

func TestGateway_Send_ZeroRetries(t *testing.T) {
	tr := &mockTransport{DeliverFunc: func(ctx context.Context, msg Message) (string, error) {
		return "", errors.New("boom")
	}}

	_, err := newTestGateway(tr, 0).Send(context.Background(), testMessage())

	de, ok := apperrors.IsDeliveryError(err)
	require.True(t, ok)
	assert.Equal(t, 1, de.Attempts)
	assert.Equal(t, CodeUnknown, de.Code)
}

func TestGateway_Send_InvalidMessage(t *testing.T) {
	tr := &mockTransport{DeliverFunc: func(ctx context.Context, msg Message) (string, error) {
		return "ok", nil
	}}

	msg := testMessage()
	msg.To = nil
	msg.Attachments = append(msg.Attachments, Attachment{Filename: "empty.pdf"})

	_, err := newTestGateway(tr, 2).Send(context.Background(), msg)

	ve, ok := apperrors.IsValidationError(err)
	require.True(t, ok)
	assert.Len(t, ve.Details, 2)
	assert.Empty(t, tr.calls)
}

func TestDiagnose(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		code      string
		permanent bool
	}{
		{"smtp transient", &textproto.Error{Code: 421, Msg: "busy"}, CodeSMTP, false},
		{"smtp permanent", &textproto.Error{Code: 554, Msg: "rejected"}, CodeSMTP, true},
		{"deadline", context.DeadlineExceeded, CodeTimeout, false},
		{"net timeout", timeoutErr{}, CodeTimeout, false},
		{"unknown", errors.New("weird"), CodeUnknown, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := diagnose(tt.err)
			assert.Equal(t, tt.code, d.code)
			assert.Equal(t, tt.permanent, d.permanent)
		})
	}
}
