package notification

import (
	"context"
	"errors"
	"net"
	"net/textproto"
)

const (
	CodeTimeout    = "ETIMEDOUT"
	CodeConnection = "ECONNECTION"
	CodeSMTP       = "ESMTP"
	CodeUnknown    = "EUNKNOWN"
)

// TransportError is what transports return when they can describe the
// server's answer. Permanent failures are not retried.
type TransportError struct {
	Code         string
	Response     string
	ResponseCode int
	Permanent    bool
	Err          error
}

func (e *TransportError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return e.Response
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

type diagnostic struct {
	code         string
	response     string
	responseCode int
	permanent    bool
}

func diagnose(err error) diagnostic {
	var te *TransportError
	if errors.As(err, &te) {
		return diagnostic{code: te.Code, response: te.Response, responseCode: te.ResponseCode, permanent: te.Permanent}
	}

	var tpErr *textproto.Error
	if errors.As(err, &tpErr) {
		return diagnostic{code: CodeSMTP, response: tpErr.Msg, responseCode: tpErr.Code, permanent: tpErr.Code >= 500}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return diagnostic{code: CodeTimeout, response: err.Error()}
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return diagnostic{code: CodeTimeout, response: err.Error()}
		}
		return diagnostic{code: CodeConnection, response: err.Error()}
	}

	return diagnostic{code: CodeUnknown, response: err.Error()}
}
