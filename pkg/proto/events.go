// Package proto defines the transport-neutral event, directive, and step
// vocabulary shared by the dispatcher, flow engine, and transport adapters.
package proto

import (
	"encoding/json"
	"fmt"
	"strings"
)

// EventKind represents the shape of an inbound user event.
type EventKind string

const (
	// EventText is a free-text message.
	EventText EventKind = "text"

	// EventButton is a structured choice selection (button press). The
	// payload carries the callback action string.
	EventButton EventKind = "button"

	// EventDocument is a document attachment. The payload carries the
	// filename as reported by the transport.
	EventDocument EventKind = "document"

	// EventCommand is a slash-style command. The payload carries the
	// command name without the leading slash.
	EventCommand EventKind = "command"
)

// Commands accepted from the transport layer.
const (
	// CommandStart begins (or restarts) the application flow.
	CommandStart = "start"

	// CommandCancel aborts the active flow from any step.
	CommandCancel = "cancel"

	// CommandHelp, CommandAbout and CommandContact are stateless
	// informational commands that bypass the flow entirely.
	CommandHelp    = "help"
	CommandAbout   = "about"
	CommandContact = "contact"
)

// Button callback actions understood by the flow engine.
const (
	// ActionCheckFollow confirms the social-media follow gate.
	ActionCheckFollow = "check_follow"

	// ActionFinishUpload ends the document collection step.
	ActionFinishUpload = "finish_upload"
)

// Event is an inbound user event routed into the dispatcher.
type Event struct {
	UserID  string    `json:"user_id"`
	Kind    EventKind `json:"kind"`
	Payload string    `json:"payload"`
}

// Validate checks the event for transport-level well-formedness.
func (e *Event) Validate() error {
	if strings.TrimSpace(e.UserID) == "" {
		return fmt.Errorf("event missing user_id")
	}
	switch e.Kind {
	case EventText, EventButton, EventDocument, EventCommand:
		return nil
	default:
		return fmt.Errorf("unknown event kind %q", e.Kind)
	}
}

// Choice is one selectable option attached to a directive.
type Choice struct {
	Label  string `json:"label"`
	Action string `json:"action"`
}

// Directive is the abstract output of handling one event: the text to show
// the user next, plus an optional ordered choice set. It is the only thing
// the core ever returns to a transport adapter.
type Directive struct {
	Text    string   `json:"text"`
	Choices []Choice `json:"choices,omitempty"`
}

// WithChoices returns a copy of the directive carrying the given choices.
func (d Directive) WithChoices(choices ...Choice) Directive {
	d.Choices = append([]Choice{}, choices...)
	return d
}

// ToJSON serializes the directive for transport delivery.
func (d Directive) ToJSON() ([]byte, error) {
	data, err := json.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal directive: %w", err)
	}
	return data, nil
}
