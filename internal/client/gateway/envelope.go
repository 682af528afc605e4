package gateway

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// rejection is a 2xx response whose envelope reports success:false.
type rejection struct {
	msg string
}

func (r rejection) Error() string { return r.msg }

// messageKeys are consulted in order when extracting a failure message.
var messageKeys = []string{"detail", "error", "message"}

// decodeSuccess decodes a 2xx body into T. The backend usually wraps payloads
// in {"success": bool, "data": ..., "message": ..., "error": ...}; when that
// wrapper is present, T is decoded from data.
func decodeSuccess[T any](raw []byte) (T, error) {
	var out T

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err == nil {
		if ok, isEnvelope := envelopeStatus(obj); isEnvelope {
			if !ok {
				return out, rejection{msg: messageFrom(obj)}
			}
			data := bytes.TrimSpace(obj["data"])
			if len(data) == 0 || bytes.Equal(data, []byte("null")) {
				return out, nil
			}
			if err := json.Unmarshal(data, &out); err != nil {
				return out, fmt.Errorf("decode envelope data: %w", err)
			}
			return out, nil
		}
	}

	if err := json.Unmarshal(raw, &out); err != nil {
		return out, fmt.Errorf("decode body: %w", err)
	}
	return out, nil
}

// envelopeStatus reports whether obj is the backend wrapper and, if so, the
// value of its success flag.
func envelopeStatus(obj map[string]json.RawMessage) (ok bool, isEnvelope bool) {
	rawSuccess, has := obj["success"]
	if !has {
		return false, false
	}
	if _, hasData := obj["data"]; !hasData {
		if _, hasMsg := obj["message"]; !hasMsg {
			return false, false
		}
	}
	var flag bool
	if err := json.Unmarshal(rawSuccess, &flag); err != nil {
		return false, false
	}
	return flag, true
}

// errorMessage extracts a failure message from a non-2xx body.
func errorMessage(raw []byte) string {
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return MsgRequestFailed
	}
	return messageFrom(obj)
}

func messageFrom(obj map[string]json.RawMessage) string {
	for _, key := range messageKeys {
		if msg, ok := renderValue(obj[key]); ok {
			return msg
		}
	}
	return MsgRequestFailed
}

// renderValue turns a JSON value into message text. Empty values (absent,
// null, "", false, 0) are reported as not ok. Non-string values are
// returned as compact JSON.
func renderValue(v json.RawMessage) (string, bool) {
	v = bytes.TrimSpace(v)
	if len(v) == 0 {
		return "", false
	}

	switch v[0] {
	case 'n', 'f':
		return "", false
	case '"':
		var s string
		if err := json.Unmarshal(v, &s); err != nil || s == "" {
			return "", false
		}
		return s, true
	case 't':
		return "true", true
	case '{', '[':
		var buf bytes.Buffer
		if err := json.Compact(&buf, v); err != nil {
			return "", false
		}
		return buf.String(), true
	default:
		var n json.Number
		if err := json.Unmarshal(v, &n); err != nil {
			return "", false
		}
		if f, err := n.Float64(); err == nil && f == 0 {
			return "", false
		}
		return n.String(), true
	}
}
