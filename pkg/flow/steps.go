// Package flow implements the conversation state machine: a data-driven
// catalog of collection steps and the engine that moves sessions through
// them. The machine is linear with one fan-out hook at the major step:
//
//	FOLLOW_CHECK -> NAME -> EMAIL -> PHONE -> MAJOR -> COUNTRY -> UPLOAD_DOCS -> FINALIZE
package flow

import (
	"strings"

	"intakebot/pkg/proto"
)

// InstagramURL is the page the follow gate points at.
const InstagramURL = "https://www.instagram.com/glovuni/"

// StepDef describes one step of the flow as data: its prompt, the input it
// accepts, and where an accepted value leads.
type StepDef struct {
	ID proto.Step

	// Prompt is the directive shown when the step becomes current.
	Prompt proto.Directive

	// Field is the answer key an accepted value is stored under; empty for
	// steps that collect nothing (follow gate, document collection).
	Field string

	// Accepts validates an event against the step's expected shape and
	// extracts the value to store. ok=false leaves the session unchanged.
	Accepts func(ev *proto.Event) (value string, ok bool)

	// Next computes the successor step for an accepted value. Only the
	// major step inspects its value today; the hook exists so field-based
	// routing stays a data change.
	Next func(value string) proto.Step

	// Terminal is true only for the finalize step.
	Terminal bool
}

// ValidTransitions defines the legal moves between steps. Advancing outside
// the table is an engine bug, caught by tests and a runtime check.
var ValidTransitions = map[proto.Step][]proto.Step{ //nolint:gochecknoglobals // Static transition table
	proto.StepNone:        {proto.StepFollowCheck},
	proto.StepFollowCheck: {proto.StepName},
	proto.StepName:        {proto.StepEmail},
	proto.StepEmail:       {proto.StepPhone},
	proto.StepPhone:       {proto.StepMajor},
	proto.StepMajor:       {proto.StepCountry},
	proto.StepCountry:     {proto.StepUploadDocs},
	proto.StepUploadDocs:  {proto.StepUploadDocs, proto.StepFinalize},
	proto.StepFinalize:    {},
}

// IsValidTransition reports whether from -> to is a legal move.
func IsValidTransition(from, to proto.Step) bool {
	for _, next := range ValidTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// acceptText accepts any non-empty free text, verbatim. Field content is
// deliberately not validated; the flow trusts what the applicant types.
func acceptText(ev *proto.Event) (string, bool) {
	if ev.Kind != proto.EventText {
		return "", false
	}
	text := strings.TrimSpace(ev.Payload)
	if text == "" {
		return "", false
	}
	return text, true
}

// majorChoices is the fixed study-field choice set offered at the major step.
var majorChoices = []proto.Choice{ //nolint:gochecknoglobals // Static choice set
	{Label: "Science", Action: "science"},
	{Label: "Engineering", Action: "engineering"},
	{Label: "Medicine", Action: "medicine"},
	{Label: "Business", Action: "business"},
	{Label: "Other", Action: "other"},
}

func uploadChoices() []proto.Choice {
	return []proto.Choice{{Label: "Done", Action: proto.ActionFinishUpload}}
}

// Catalog returns the step definition table, keyed by step id.
func Catalog() map[proto.Step]*StepDef {
	linear := func(next proto.Step) func(string) proto.Step {
		return func(string) proto.Step { return next }
	}

	steps := []*StepDef{
		{
			ID: proto.StepFollowCheck,
			Prompt: proto.Directive{
				Text: "Welcome to Glovuni!\n\n" +
					"We are here to help you reach your dream of studying at an international university.\n\n" +
					"To use our services, please follow our Instagram page first.",
				Choices: []proto.Choice{
					{Label: "Follow us on Instagram", Action: "url:" + InstagramURL},
					{Label: "Verify follow", Action: proto.ActionCheckFollow},
				},
			},
			Accepts: func(ev *proto.Event) (string, bool) {
				if ev.Kind == proto.EventButton && ev.Payload == proto.ActionCheckFollow {
					return ev.Payload, true
				}
				return "", false
			},
			Next: linear(proto.StepName),
		},
		{
			ID: proto.StepName,
			Prompt: proto.Directive{
				Text: "Thanks for following!\n\nNow let's begin. What is your full name?",
			},
			Field:   proto.FieldName,
			Accepts: acceptText,
			Next:    linear(proto.StepEmail),
		},
		{
			ID:      proto.StepEmail,
			Prompt:  proto.Directive{Text: "Thanks! What is your email address?"},
			Field:   proto.FieldEmail,
			Accepts: acceptText,
			Next:    linear(proto.StepPhone),
		},
		{
			ID:      proto.StepPhone,
			Prompt:  proto.Directive{Text: "Great! Please send your phone number (with country code)."},
			Field:   proto.FieldPhone,
			Accepts: acceptText,
			Next:    linear(proto.StepMajor),
		},
		{
			ID: proto.StepMajor,
			Prompt: proto.Directive{
				Text:    "Which field of study are you interested in?",
				Choices: majorChoices,
			},
			Field: proto.FieldMajor,
			Accepts: func(ev *proto.Event) (string, bool) {
				if ev.Kind == proto.EventButton {
					for _, choice := range majorChoices {
						if ev.Payload == choice.Action {
							return ev.Payload, true
						}
					}
					return "", false
				}
				return acceptText(ev)
			},
			// All fields currently continue to the country step.
			Next: func(string) proto.Step { return proto.StepCountry },
		},
		{
			ID:      proto.StepCountry,
			Prompt:  proto.Directive{Text: "Which country would you like to study in?"},
			Field:   proto.FieldCountry,
			Accepts: acceptText,
			Next:    linear(proto.StepUploadDocs),
		},
		{
			ID: proto.StepUploadDocs,
			Prompt: proto.Directive{
				Text: "Excellent! Please upload your documents (passport, certificates, motivation letter).\n" +
					"Send the files one at a time.",
				Choices: uploadChoices(),
			},
			Accepts: func(ev *proto.Event) (string, bool) {
				switch {
				case ev.Kind == proto.EventDocument && strings.TrimSpace(ev.Payload) != "":
					return strings.TrimSpace(ev.Payload), true
				case ev.Kind == proto.EventButton && ev.Payload == proto.ActionFinishUpload:
					return ev.Payload, true
				}
				return "", false
			},
			// Documents repeat the step; only the finish signal moves on.
			Next: func(value string) proto.Step {
				if value == proto.ActionFinishUpload {
					return proto.StepFinalize
				}
				return proto.StepUploadDocs
			},
		},
		{
			ID:       proto.StepFinalize,
			Terminal: true,
		},
	}

	catalog := make(map[proto.Step]*StepDef, len(steps))
	for _, def := range steps {
		catalog[def.ID] = def
	}
	return catalog
}

// documentReceivedDirective acknowledges one uploaded file.
func documentReceivedDirective(filename string) proto.Directive {
	ack := proto.Directive{Text: "Received: " + filename + "\n\nYou can upload more files or press 'Done'."}
	return ack.WithChoices(uploadChoices()...)
}

// cancelDirective confirms a cancelled flow.
func cancelDirective() proto.Directive {
	return proto.Directive{Text: "The process has been cancelled. Use /start to begin again."}
}
