// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package gateway

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// Envelope is the canonical result of a gateway call.
type Envelope[T any] struct {
	Success bool
	Data    T
	Error   string

	// Status is the HTTP status code, or 0 when no response arrived.
	Status int

	// Kind is KindNone on success.
	Kind Kind

	cause error
}

// Result converts the envelope into Go's (value, error) form. The
// error is nil on success and a *Error otherwise.
func (e Envelope[T]) Result() (T, error) {
	if e.Success {
		return e.Data, nil
	}
	var zero T
	return zero, &Error{Kind: e.Kind, Status: e.Status, Message: e.Error, Cause: e.cause}
}

// rawEnvelope is an Envelope whose payload has not been decoded yet.
type rawEnvelope struct {
	success bool
	data    json.RawMessage
	message string
	status  int
	kind    Kind
	cause   error
}

// decodeEnvelope decodes the raw payload into T. A payload that does not
// fit T is a transport failure: the service answered with something
// this client does not understand.
func decodeEnvelope[T any](raw rawEnvelope) Envelope[T] {
	envelope := Envelope[T]{
		Success: raw.success,
		Error:   raw.message,
		Status:  raw.status,
		Kind:    raw.kind,
		cause:   raw.cause,
	}
	if !raw.success || len(raw.data) == 0 {
		return envelope
	}
	if err := json.Unmarshal(raw.data, &envelope.Data); err != nil {
		return Envelope[T]{
			Error:  "unexpected response from the release service",
			Status: raw.status,
			Kind:   KindTransport,
			cause:  fmt.Errorf("decoding response payload: %w", err),
		}
	}
	return envelope
}

// normalize turns an HTTP status and body into a rawEnvelope.
// authenticated selects whether a 401 is a session failure
// (KindUnauthorized) or an ordinary refusal (KindDomain, e.g. bad
// credentials on /login).
func normalize(status int, body []byte, authenticated bool) rawEnvelope {
	ok := status >= 200 && status < 300
	body = bytes.TrimSpace(body)

	if status == http.StatusUnauthorized && authenticated {
		message, _ := structuredMessage(body)
		if message == "" {
			message = "session is no longer valid"
		}
		return rawEnvelope{message: message, status: status, kind: KindUnauthorized}
	}

	fields, isObject := objectFields(body)
	if isObject {
		if successField, present := fields["success"]; present {
			return normalizeEnvelope(status, fields, successField, 0)
		}
	}

	if ok {
		var data json.RawMessage
		if len(body) > 0 {
			data = json.RawMessage(body)
		}
		return rawEnvelope{success: true, data: data, status: status}
	}

	if message, structured := structuredMessage(body); structured {
		return rawEnvelope{message: message, status: status, kind: KindDomain}
	}
	return rawEnvelope{
		message: fmt.Sprintf("release service returned %s", http.StatusText(status)),
		status:  status,
		kind:    KindTransport,
		cause:   fmt.Errorf("unstructured %d response: %s", status, truncateBody(body)),
	}
}

// normalizeEnvelope handles a body carrying a "success" field. depth
// bounds unwrapping of an envelope nested inside "data" to one level.
func normalizeEnvelope(status int, fields map[string]json.RawMessage, successField json.RawMessage, depth int) rawEnvelope {
	var success bool
	if err := json.Unmarshal(successField, &success); err != nil {
		return rawEnvelope{
			message: "unexpected response from the release service",
			status:  status,
			kind:    KindTransport,
			cause:   fmt.Errorf("success field is not a boolean: %s", truncateBody(successField)),
		}
	}

	if !success || status < 200 || status >= 300 {
		message := messageFromFields(fields)
		if message == "" {
			message = "the release service rejected the request"
		}
		return rawEnvelope{message: message, status: status, kind: KindDomain}
	}

	data := fields["data"]
	if depth == 0 {
		if nested, isObject := objectFields(data); isObject {
			if nestedSuccess, present := nested["success"]; present {
				if _, hasData := nested["data"]; hasData || !isTrue(nestedSuccess) {
					return normalizeEnvelope(status, nested, nestedSuccess, depth+1)
				}
			}
		}
	}
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		data = nil
	}
	return rawEnvelope{success: true, data: data, status: status}
}

// structuredMessage extracts a message from a JSON object body. The
// second result reports whether the body was a JSON object carrying
// any recognized message field.
func structuredMessage(body []byte) (string, bool) {
	fields, isObject := objectFields(body)
	if !isObject {
		return "", false
	}
	message := messageFromFields(fields)
	return message, message != ""
}

// messageFromFields reads the operator-facing message. The web client
// read "error"; the service writes "message" for refusals and "errors"
// for validation failures. All three are accepted in that order.
func messageFromFields(fields map[string]json.RawMessage) string {
	for _, key := range []string{"error", "message"} {
		var text string
		if raw, present := fields[key]; present && json.Unmarshal(raw, &text) == nil && text != "" {
			return text
		}
	}
	if raw, present := fields["errors"]; present {
		var list []string
		if json.Unmarshal(raw, &list) == nil && len(list) > 0 {
			return strings.Join(list, "; ")
		}
	}
	return ""
}

func objectFields(body []byte) (map[string]json.RawMessage, bool) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 || body[0] != '{' {
		return nil, false
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, false
	}
	return fields, true
}

func isTrue(raw json.RawMessage) bool {
	var value bool
	return json.Unmarshal(raw, &value) == nil && value
}

func truncateBody(body []byte) string {
	const limit = 256
	if len(body) > limit {
		return string(body[:limit]) + "..."
	}
	return string(body)
}
