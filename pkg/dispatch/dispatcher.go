// Package dispatch routes inbound events to their handler: flow commands,
// the active session's transition engine, or the out-of-flow knowledge
// responder. It is the single entry point transport adapters call.
package dispatch

import (
	"context"

	"intakebot/pkg/flow"
	"intakebot/pkg/knowledge"
	"intakebot/pkg/logx"
	"intakebot/pkg/proto"
)

// Dispatcher routes one inbound event at a time per user; events for
// different users are handled concurrently by the transport.
type Dispatcher struct {
	engine    *flow.Engine
	responder *knowledge.Responder
	logger    *logx.Logger
}

// NewDispatcher creates a dispatcher over the flow engine and responder.
func NewDispatcher(engine *flow.Engine, responder *knowledge.Responder) *Dispatcher {
	return &Dispatcher{
		engine:    engine,
		responder: responder,
		logger:    logx.NewLogger("dispatch"),
	}
}

// Dispatch handles one inbound event and returns the directive to deliver.
// It never returns an error; malformed events get the static fallback and
// out-of-place events an empty directive (deliver nothing).
func (d *Dispatcher) Dispatch(ctx context.Context, ev *proto.Event) proto.Directive {
	if err := ev.Validate(); err != nil {
		d.logger.Warn("dropping malformed event: %v", err)
		return proto.Directive{}
	}

	if ev.Kind == proto.EventCommand {
		return d.dispatchCommand(ev)
	}

	if d.engine.Active(ev.UserID) {
		return d.engine.HandleEvent(ctx, ev)
	}

	// No active session: free text goes to the knowledge responder,
	// anything else has nowhere to go.
	if ev.Kind == proto.EventText {
		return d.responder.Answer(ctx, ev.Payload)
	}

	d.logger.Debug("ignoring out-of-session %s event from %s", ev.Kind, ev.UserID)
	return proto.Directive{}
}

// dispatchCommand handles the command surface. Unknown commands get the
// static fallback listing what is available.
func (d *Dispatcher) dispatchCommand(ev *proto.Event) proto.Directive {
	switch ev.Payload {
	case proto.CommandStart:
		return d.engine.Start(ev.UserID)
	case proto.CommandCancel:
		return d.engine.Cancel(ev.UserID)
	case proto.CommandHelp:
		return helpDirective()
	case proto.CommandAbout:
		return aboutDirective()
	case proto.CommandContact:
		return contactDirective()
	default:
		d.logger.Debug("unknown command %q from %s", ev.Payload, ev.UserID)
		return d.responder.Fallback()
	}
}

func helpDirective() proto.Directive {
	return proto.Directive{
		Text: "Available commands:\n" +
			"/start - begin your application\n" +
			"/cancel - abort the current application\n" +
			"/about - about our service\n" +
			"/contact - how to reach us\n\n" +
			"Outside an application you can also just ask a question.",
	}
}

func aboutDirective() proto.Directive {
	return proto.Directive{
		Text: "Glovuni is an educational-consulting service helping students " +
			"apply to international universities and scholarships. Send /start " +
			"to submit your application.",
	}
}

func contactDirective() proto.Directive {
	return proto.Directive{
		Text: "Reach us any time:\n" +
			"WhatsApp: +962781460847\n" +
			"Email: info@glovuni.com\n" +
			"Web: www.glovuni.com\n" +
			"Instagram: @glovuni",
	}
}
