// Package apiconnect wires the splitledger API messages into Connect
// handlers and clients.
package apiconnect

import (
	"encoding/json"
	"errors"
	"strings"

	"connectrpc.com/connect"
)

// Codec carries plain Go message structs as JSON. It replaces Connect's
// protobuf JSON codec under the same "json" name, so the wire content type
// stays application/json.
type Codec struct{}

func (Codec) Name() string { return "json" }

func (Codec) Marshal(msg any) ([]byte, error) {
	return json.Marshal(msg)
}

func (Codec) Unmarshal(data []byte, msg any) error {
	if len(data) == 0 {
		return nil
	}
	return json.Unmarshal(data, msg)
}

// FieldErrorHeader carries field-tagged validation failures on an
// InvalidArgument error, one "field=message" value per failure.
const FieldErrorHeader = "Ledger-Field-Error"

// FieldError is a validation failure tied to a request field.
type FieldError struct {
	Field   string
	Message string
}

// WithFieldErrors attaches field errors to a Connect error's metadata.
func WithFieldErrors(err *connect.Error, fields []FieldError) *connect.Error {
	for _, f := range fields {
		err.Meta().Add(FieldErrorHeader, f.Field+"="+f.Message)
	}
	return err
}

// FieldErrors extracts field errors from an error returned by a client.
// It returns nil when err carries none.
func FieldErrors(err error) []FieldError {
	var connectErr *connect.Error
	if !errors.As(err, &connectErr) {
		return nil
	}
	var out []FieldError
	for _, v := range connectErr.Meta().Values(FieldErrorHeader) {
		field, msg, _ := strings.Cut(v, "=")
		out = append(out, FieldError{Field: field, Message: msg})
	}
	return out
}
