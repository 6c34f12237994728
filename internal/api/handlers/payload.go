package handlers

import (
	"encoding/json"
	"strconv"
	"strings"
)

// payload is a loosely typed JSON object. Bodies that are empty or not a JSON
// object decode to an empty payload, never an error.
type payload map[string]any

func parsePayload(body []byte) payload {
	p := payload{}
	if len(body) == 0 {
		return p
	}
	if err := json.Unmarshal(body, &p); err != nil || p == nil {
		return payload{}
	}
	return p
}

func (p payload) has(key string) bool {
	_, ok := p[key]
	return ok
}

// stringOr returns the field when it is a JSON string, def when it is absent
// or null. Other JSON types are rendered as text.
func (p payload) stringOr(key, def string) string {
	v, ok := p[key]
	if !ok || v == nil {
		return def
	}
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		data, _ := json.Marshal(t)
		return string(data)
	}
}

// id reads a record id sent either as a JSON number or a numeric string.
// present reports whether a truthy value was supplied at all; ok reports
// whether it parses to a positive integer.
func (p payload) id(key string) (id int64, present bool, ok bool) {
	v, exists := p[key]
	if !exists || v == nil {
		return 0, false, false
	}

	switch t := v.(type) {
	case float64:
		if t == 0 {
			return 0, false, false
		}
		if t < 1 || t != float64(int64(t)) {
			return 0, true, false
		}
		return int64(t), true, true
	case string:
		s := strings.TrimSpace(t)
		if s == "" {
			return 0, false, false
		}
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil || n < 1 {
			return 0, true, false
		}
		return n, true, true
	case bool:
		return 0, t, false
	default:
		return 0, true, false
	}
}
