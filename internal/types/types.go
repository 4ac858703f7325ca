// Package types holds the values exchanged between the panel and its backend.
package types

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// ColorSpaceEntry is one color space from the OCIO config.
type ColorSpaceEntry struct {
	Family string `json:"family"`
	Name   string `json:"name"`
}

// Label returns the text shown in the color profile dropdown.
func (e ColorSpaceEntry) Label() string {
	return e.Family + "/" + e.Name
}

// InputOutput is a video I/O endpoint identified by a stable key.
type InputOutput struct {
	ID    string
	Label string
}

// InputOutputs is an ordered id -> label table. It encodes as a JSON object
// whose keys keep the slice order.
type InputOutputs []InputOutput

// Contains reports whether id names an entry.
func (ios InputOutputs) Contains(id string) bool {
	for _, io := range ios {
		if io.ID == id {
			return true
		}
	}
	return false
}

// MarshalJSON writes the table as an object in slice order.
func (ios InputOutputs) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, io := range ios {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(io.ID)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(io.Label)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON reads an object and keeps its key order.
func (ios *InputOutputs) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*ios = nil
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("input_outputs: expected object, got %v", tok)
	}

	out := InputOutputs{}
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("input_outputs: expected string key, got %v", keyTok)
		}
		var label string
		if err := dec.Decode(&label); err != nil {
			return fmt.Errorf("input_outputs[%s]: %w", key, err)
		}
		out = append(out, InputOutput{ID: key, Label: label})
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*ios = out
	return nil
}

// InitState is the full state handed to the panel when it opens.
type InitState struct {
	ColorSpaces  []ColorSpaceEntry `json:"color_spaces"`
	ColorSpace   string            `json:"color_space,omitempty"`
	InputOutputs InputOutputs      `json:"input_outputs"`
	InputOutput  string            `json:"input_output,omitempty"`
	Cameras      []string          `json:"cameras"`
}

// StateUpdate is a partial state pushed on the state-update channel.
// A nil field means "unchanged". A non-nil empty Cameras slice clears the list.
type StateUpdate struct {
	CurrentColorSpace  *string  `json:"current_color_space,omitempty"`
	CurrentInputOutput *string  `json:"current_input_output,omitempty"`
	Cameras            []string `json:"cameras,omitempty"`
}

// IsEmpty reports whether the update carries no field at all.
func (u StateUpdate) IsEmpty() bool {
	return u.CurrentColorSpace == nil && u.CurrentInputOutput == nil && u.Cameras == nil
}

// Clone returns a copy that shares no memory with u.
func (u StateUpdate) Clone() StateUpdate {
	out := StateUpdate{}
	if u.CurrentColorSpace != nil {
		out.CurrentColorSpace = String(*u.CurrentColorSpace)
	}
	if u.CurrentInputOutput != nil {
		out.CurrentInputOutput = String(*u.CurrentInputOutput)
	}
	if u.Cameras != nil {
		out.Cameras = append([]string{}, u.Cameras...)
	}
	return out
}

// MarshalJSON keeps an empty but present camera list, which omitempty drops.
func (u StateUpdate) MarshalJSON() ([]byte, error) {
	m := make(map[string]any, 3)
	if u.CurrentColorSpace != nil {
		m["current_color_space"] = *u.CurrentColorSpace
	}
	if u.CurrentInputOutput != nil {
		m["current_input_output"] = *u.CurrentInputOutput
	}
	if u.Cameras != nil {
		m["cameras"] = u.Cameras
	}
	return json.Marshal(m)
}

// String returns a pointer to s, for building updates.
func String(s string) *string {
	return &s
}
