package game

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Answer is a submitted game answer in its raw JSON form. Single-answer games
// expect a string (shape counts also accept a number); multiple-choice sets
// expect an object keyed by sub-question index.
type Answer struct {
	raw json.RawMessage
}

func NewAnswer(raw json.RawMessage) Answer {
	return Answer{raw: bytes.TrimSpace(raw)}
}

// TextAnswer builds a single-answer submission.
func TextAnswer(s string) Answer {
	b, _ := json.Marshal(s)
	return Answer{raw: b}
}

// ChoicesAnswer builds a multiple-choice submission.
func ChoicesAnswer(choices map[string]string) Answer {
	b, _ := json.Marshal(choices)
	return Answer{raw: b}
}

func (a Answer) MarshalJSON() ([]byte, error) {
	if len(a.raw) == 0 {
		return []byte("null"), nil
	}
	return a.raw, nil
}

func (a *Answer) UnmarshalJSON(b []byte) error {
	a.raw = append(json.RawMessage(nil), bytes.TrimSpace(b)...)
	return nil
}

// IsEmpty reports whether nothing usable was submitted: no value, null, a
// blank string, or an empty object.
func (a Answer) IsEmpty() bool {
	if len(a.raw) == 0 || bytes.Equal(a.raw, []byte("null")) {
		return true
	}

	switch a.raw[0] {
	case '"':
		var s string
		return json.Unmarshal(a.raw, &s) != nil || strings.TrimSpace(s) == ""
	case '{':
		var m map[string]json.RawMessage
		return json.Unmarshal(a.raw, &m) != nil || len(m) == 0
	case '[':
		var l []json.RawMessage
		return json.Unmarshal(a.raw, &l) != nil || len(l) == 0
	}

	return false
}

// text returns the answer as a string. Numbers are returned in their literal
// form only when allowNumber is set.
func (a Answer) text(allowNumber bool) (string, bool) {
	if len(a.raw) == 0 {
		return "", false
	}

	var s string
	if err := json.Unmarshal(a.raw, &s); err == nil {
		return s, true
	}

	if allowNumber {
		d := json.NewDecoder(bytes.NewReader(a.raw))
		d.UseNumber()
		var n json.Number
		if err := d.Decode(&n); err == nil {
			return n.String(), true
		}
	}

	return "", false
}

// choices returns the per-question selections. Non-string selections are dropped.
func (a Answer) choices() map[string]string {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(a.raw, &m); err != nil {
		return nil
	}

	out := make(map[string]string, len(m))
	for k, v := range m {
		var s string
		if err := json.Unmarshal(v, &s); err == nil {
			out[k] = s
		}
	}
	return out
}
