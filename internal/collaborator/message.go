package collaborator

import (
	"bytes"
	"encoding/json"
)

// Message is the processing server's standard reply.
//
// The documented shape is {"message": string, "error": bool}, but the
// server also answers failures with {"error": "text"}. Both decode here: a
// string error marks the message as an error and becomes its text when no
// message was given.
type Message struct {
	Text  string `json:"message"`
	Error bool   `json:"error"`
}

// UnmarshalJSON accepts a boolean or string "error" field.
func (m *Message) UnmarshalJSON(data []byte) error {
	var raw struct {
		Message string          `json:"message"`
		Error   json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	m.Text = raw.Message
	m.Error = false

	errField := bytes.TrimSpace(raw.Error)
	if len(errField) == 0 || bytes.Equal(errField, []byte("null")) {
		return nil
	}

	var flag bool
	if err := json.Unmarshal(errField, &flag); err == nil {
		m.Error = flag
		return nil
	}

	var text string
	if err := json.Unmarshal(errField, &text); err != nil {
		return err
	}
	m.Error = true
	if m.Text == "" {
		m.Text = text
	}
	return nil
}
