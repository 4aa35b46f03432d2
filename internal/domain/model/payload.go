// Package model defines the core data types shared by the catalog webhook job handler.
package model

import (
	"encoding/json"
	"fmt"
	"strconv"

	jmespath "github.com/jmespath-community/go-jmespath"
)

// EventKindField is the payload key the enqueue service uses to record the DCS event type.
const EventKindField = "DCS_event"

// Event kinds understood by the handler.
const (
	EventPush    = "push"
	EventRelease = "release"
)

// Payload is a decoded webhook body as it was submitted to the queue.
// It is treated as read-only; accessors never panic on missing or oddly shaped fields.
type Payload map[string]any

// DecodePayload parses a raw JSON webhook body.
func DecodePayload(raw []byte) (Payload, error) {
	var p Payload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("decode payload: %w", err)
	}
	if p == nil {
		return nil, fmt.Errorf("decode payload: %w", ErrEmptyPayload)
	}
	return p, nil
}

// Encode marshals the payload back to JSON.
func (p Payload) Encode() ([]byte, error) {
	return json.Marshal(p)
}

// EventKind returns the DCS event discriminator, or "" if absent.
func (p Payload) EventKind() string {
	s, _ := p.String(EventKindField)
	return s
}

// Lookup evaluates a JMESPath expression against the payload.
// A nil result (field absent) is reported as ok=false.
func (p Payload) Lookup(expr string) (any, bool) {
	if p == nil {
		return nil, false
	}
	v, err := jmespath.Search(expr, map[string]any(p))
	if err != nil || v == nil {
		return nil, false
	}
	return v, true
}

// String returns the value at expr when it is a string.
func (p Payload) String(expr string) (string, bool) {
	v, ok := p.Lookup(expr)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok
}

// Scalar renders a string or number found at expr as text (ids arrive as JSON numbers).
func (p Payload) Scalar(expr string) (string, bool) {
	v, ok := p.Lookup(expr)
	if !ok {
		return "", false
	}
	switch t := v.(type) {
	case string:
		return t, true
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64), true
	case json.Number:
		return t.String(), true
	case bool:
		return strconv.FormatBool(t), true
	default:
		return "", false
	}
}

// Object returns the value at expr when it is a JSON object.
func (p Payload) Object(expr string) (map[string]any, bool) {
	v, ok := p.Lookup(expr)
	if !ok {
		return nil, false
	}
	m, ok := v.(map[string]any)
	return m, ok
}

// Has reports whether expr resolves to a non-null value.
func (p Payload) Has(expr string) bool {
	_, ok := p.Lookup(expr)
	return ok
}

// Bool returns the value at expr when it is a JSON boolean.
func (p Payload) Bool(expr string) bool {
	v, ok := p.Lookup(expr)
	if !ok {
		return false
	}
	b, ok := v.(bool)
	return ok && b
}

// CommitCount returns the number of entries in the commits list, or -1 when the
// list is missing or not an array.
func (p Payload) CommitCount() int {
	v, ok := p.Lookup("commits")
	if !ok {
		return -1
	}
	list, ok := v.([]any)
	if !ok {
		return -1
	}
	return len(list)
}

// IsSingleCommitPush reports whether the payload is a push carrying exactly one commit.
func (p Payload) IsSingleCommitPush() bool {
	return p.EventKind() == EventPush && p.CommitCount() == 1
}

// FirstCommitURL returns commits[0].url.
func (p Payload) FirstCommitURL() (string, bool) {
	return p.String("commits[0].url")
}
