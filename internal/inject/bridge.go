// Package inject owns every script that runs inside the target page: the
// floating action button, the mode overlays, the ghost writer, toast
// notifications, and the selector utilities they share. Scripts are Go
// string constants templated only through JSON-encoded arguments, so page
// content can never escape into code.
//
// Page-to-host traffic flows through one exposed binding carrying a typed
// command envelope; the session layer dispatches on Command.
package inject

import (
	"fmt"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// BindingName is the function the browser exposes on window for page→host
// calls. The page always passes a JSON-encoded Envelope.
const BindingName = "ghostfillBridge"

// Command identifies one page→host request type.
type Command string

const (
	// CommandGenerate starts an extract-and-fill cycle from the current
	// selection or detected form.
	CommandGenerate Command = "generate"
	// CommandCancel resets the page UI to idle.
	CommandCancel Command = "cancel"
	// CommandToggleElementSelection flips element selection mode.
	CommandToggleElementSelection Command = "toggle_element_selection"
	// CommandTogglePointerDetection flips pointer detection mode.
	CommandTogglePointerDetection Command = "toggle_pointer_detection"
	// CommandToggleGhostWriter flips ghost writer mode.
	CommandToggleGhostWriter Command = "toggle_ghost_writer"
	// CommandElementSelected reports the element the user clicked while in
	// element selection mode. Payload: schemas.SelectedElement.
	CommandElementSelected Command = "element_selected"
	// CommandDetectForm asks the host to run the pipeline against one of
	// the highlighted forms. Payload: {"formIndex": n}.
	CommandDetectForm Command = "detect_form"
	// CommandHintRequest asks for a ghost-writer hint. Payload:
	// schemas.HintRequest.
	CommandHintRequest Command = "hint_request"
	// CommandFillInputByID asks the host to fill the field carrying the
	// given stable ghost-writer id. Payload: {"fieldId": "..."}.
	CommandFillInputByID Command = "fill_input_by_id"
)

// Envelope is the wire shape of every bridge call.
type Envelope struct {
	Command Command             `json:"command"`
	Payload jsoniter.RawMessage `json:"payload,omitempty"`
}

// ParseEnvelope decodes a raw bridge payload.
func ParseEnvelope(raw []byte) (Envelope, error) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return Envelope{}, fmt.Errorf("malformed bridge envelope: %w", err)
	}
	if env.Command == "" {
		return Envelope{}, fmt.Errorf("bridge envelope missing command")
	}
	return env, nil
}

// DecodePayload unmarshals an envelope payload into out.
func DecodePayload(env Envelope, out any) error {
	if len(env.Payload) == 0 {
		return fmt.Errorf("bridge command %s carried no payload", env.Command)
	}
	if err := json.Unmarshal(env.Payload, out); err != nil {
		return fmt.Errorf("malformed payload for bridge command %s: %w", env.Command, err)
	}
	return nil
}
