package signal

import (
	"encoding/json"
	"errors"
)

// Schema is the stable tag carried by every Diagnostic, mirroring the
// teacher's errors.Report.Schema ("ailang.error/v1").
const Schema = "yama.signal/v1"

// Diagnostic is the canonical structured error value raised by every core
// component. It implements error so it can flow through ordinary Go error
// returns, but callers that want the structured form can recover it with As.
type Diagnostic struct {
	Schema  string         `json:"schema"`
	Signal  Signal         `json:"signal"`
	Message string         `json:"message"`
	Data    map[string]any `json:"data,omitempty"`
}

// New builds a Diagnostic for sig with a human message and optional
// structured data (e.g. {"register": 3, "expected": "Int"}).
func New(sig Signal, message string, data map[string]any) *Diagnostic {
	return &Diagnostic{Schema: Schema, Signal: sig, Message: message, Data: data}
}

func (d *Diagnostic) Error() string {
	if d == nil {
		return "<nil diagnostic>"
	}
	return string(d.Signal) + ": " + d.Message
}

// As extracts a *Diagnostic from an error chain, mirroring the teacher's
// errors.AsReport.
func As(err error) (*Diagnostic, bool) {
	var d *Diagnostic
	if errors.As(err, &d) {
		return d, true
	}
	return nil, false
}

// ToJSON renders the diagnostic deterministically.
func (d *Diagnostic) ToJSON(indent bool) (string, error) {
	var (
		b   []byte
		err error
	)
	if indent {
		b, err = json.MarshalIndent(d, "", "  ")
	} else {
		b, err = json.Marshal(d)
	}
	if err != nil {
		return "", err
	}
	return string(b), nil
}
