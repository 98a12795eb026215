package apperr

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/url"
	"time"
)

// User-facing fallback messages. These are the only strings shown when the
// server did not supply one; raw transport or parser text never leaks out.
const (
	MsgConnectivity = "connection failed, check your network"
	MsgParseFailure = "received an unreadable response"
	MsgGeneric      = "request failed"
)

// statusMessages is the fixed status-to-message table used when the response
// body carries no server-supplied message.
var statusMessages = map[int]string{
	400: "invalid request",
	401: "authentication required",
	403: "forbidden",
	404: "not found",
	409: "conflict",
	422: "invalid data",
	429: "rate limited",
	500: "server unavailable, retry",
	502: "server unavailable, retry",
	503: "server unavailable, retry",
	504: "server unavailable, retry",
}

// serverPayload is the optional structure a failing response body may carry.
type serverPayload struct {
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields"`
}

// ClassifyResponse normalizes a non-success HTTP response. A server-supplied
// message is used verbatim; otherwise the fixed table applies. A body that is
// not valid JSON is ignored rather than surfaced. 400/422 responses carrying
// field-level detail classify as validation failures.
func ClassifyResponse(status int, body []byte) *Error {
	e := &Error{
		Kind:       KindAPI,
		StatusCode: status,
		Timestamp:  time.Now().UTC(),
		Details:    string(body),
	}

	var payload serverPayload
	if len(body) > 0 && json.Unmarshal(body, &payload) == nil {
		if payload.Message != "" {
			e.Message = payload.Message
		}
		if len(payload.Fields) > 0 {
			e.Fields = payload.Fields
		}
	}

	if e.Message == "" {
		if msg, ok := statusMessages[status]; ok {
			e.Message = msg
		} else {
			e.Message = MsgGeneric
		}
	}

	if (status == 400 || status == 422) && len(e.Fields) > 0 {
		e.Kind = KindValidation
	}

	return e
}

// ClassifyTransport normalizes a connectivity failure where no response was
// received. The wrapped error's own text is deliberately not used for the
// message; it is preserved in Details only.
func ClassifyTransport(cause error) *Error {
	return &Error{
		Kind:      KindNetwork,
		Message:   MsgConnectivity,
		Timestamp: time.Now().UTC(),
		Details:   cause,
	}
}

// Classify normalizes an arbitrary failure. Already-normalized errors pass
// through unchanged (wrapped or not); decode failures become parse failures;
// transport-shaped errors become network failures; everything else maps to
// the unknown kind with a generic message.
func Classify(err error) *Error {
	if err == nil {
		return nil
	}

	var norm *Error
	if errors.As(err, &norm) {
		return norm
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
		return ClassifyParseFailure(err)
	}

	var urlErr *url.Error
	var netErr net.Error
	if errors.As(err, &urlErr) || errors.As(err, &netErr) ||
		errors.Is(err, context.DeadlineExceeded) || errors.Is(err, io.ErrUnexpectedEOF) {
		return ClassifyTransport(err)
	}

	return &Error{
		Kind:      KindUnknown,
		Message:   MsgGeneric,
		Timestamp: time.Now().UTC(),
		Details:   err,
	}
}

// ClassifyParseFailure normalizes a failure to decode an otherwise successful
// response body. The parser's raw error text is never shown to end users.
func ClassifyParseFailure(cause error) *Error {
	return &Error{
		Kind:      KindUnknown,
		Message:   MsgParseFailure,
		Timestamp: time.Now().UTC(),
		Details:   cause,
	}
}
