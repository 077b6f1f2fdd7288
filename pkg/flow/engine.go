package flow

import (
	"context"

	"intakebot/pkg/logx"
	"intakebot/pkg/proto"
	"intakebot/pkg/session"
	"intakebot/pkg/submit"
)

// Verifier checks the social-media follow gate. The production default is
// the always-true stub; the interface exists so a real social-API check can
// be injected without touching the state machine.
type Verifier interface {
	Verify(ctx context.Context, userID string) bool
}

// AlwaysFollowed is the trusting Verifier stub.
type AlwaysFollowed struct{}

// Verify always reports the user as following.
func (AlwaysFollowed) Verify(context.Context, string) bool { return true }

// Recorder receives flow observability events. pkg/metrics provides the
// Prometheus implementation.
type Recorder interface {
	ObserveTransition(from, to proto.Step)
	ObserveFinalize(outcome string)
	ObserveRejected(step proto.Step, kind proto.EventKind)
}

// NopRecorder discards all observations.
type NopRecorder struct{}

func (NopRecorder) ObserveTransition(proto.Step, proto.Step)    {}
func (NopRecorder) ObserveFinalize(string)                      {}
func (NopRecorder) ObserveRejected(proto.Step, proto.EventKind) {}

// Options tunes engine policies that the observed behavior leaves open.
type Options struct {
	// RepromptOnMismatch re-sends the current step's prompt when an event
	// does not match the step's expected shape. Default false: mismatched
	// input is a silent no-op.
	RepromptOnMismatch bool
}

// Engine drives sessions through the step catalog. Every public method
// returns a directive and never an error: collaborator failures are handled
// at the boundary where they occur. An empty directive (no text) means
// nothing should be delivered.
type Engine struct {
	sessions  session.Store
	catalog   map[proto.Step]*StepDef
	finalizer *submit.Finalizer
	verifier  Verifier
	recorder  Recorder
	opts      Options
	logger    *logx.Logger
}

// NewEngine creates an engine over the given collaborators. verifier and
// recorder may be nil (stub verifier, discarded observations).
func NewEngine(sessions session.Store, finalizer *submit.Finalizer, verifier Verifier, recorder Recorder, opts Options) *Engine {
	if verifier == nil {
		verifier = AlwaysFollowed{}
	}
	if recorder == nil {
		recorder = NopRecorder{}
	}
	return &Engine{
		sessions:  sessions,
		catalog:   Catalog(),
		finalizer: finalizer,
		verifier:  verifier,
		recorder:  recorder,
		opts:      opts,
		logger:    logx.NewLogger("flow"),
	}
}

// Start begins (or restarts) the flow for the user. Any prior session and
// its answers are discarded.
func (e *Engine) Start(userID string) proto.Directive {
	e.sessions.Create(userID, proto.StepFollowCheck)
	e.recorder.ObserveTransition(proto.StepNone, proto.StepFollowCheck)
	e.logger.Info("flow started for user %s", userID)
	return e.catalog[proto.StepFollowCheck].Prompt
}

// Cancel aborts the flow from any step.
func (e *Engine) Cancel(userID string) proto.Directive {
	e.sessions.Clear(userID)
	e.logger.Info("flow cancelled for user %s", userID)
	return cancelDirective()
}

// CurrentStep returns the user's current step, or StepNone when no session
// is active.
func (e *Engine) CurrentStep(userID string) proto.Step {
	if sess := e.sessions.Get(userID); sess != nil {
		return sess.CurrentStep
	}
	return proto.StepNone
}

// Active reports whether the user has an active session.
func (e *Engine) Active(userID string) bool {
	return e.CurrentStep(userID) != proto.StepNone
}

// HandleEvent applies one in-session event. The per-user session lock is
// held only for the read-modify-write; the follow check and finalization
// side effects run outside it.
func (e *Engine) HandleEvent(ctx context.Context, ev *proto.Event) proto.Directive {
	// The follow gate is the one step whose acceptance depends on an
	// external collaborator. Resolve it before taking the session lock.
	followed := true
	if ev.Kind == proto.EventButton && ev.Payload == proto.ActionCheckFollow {
		followed = e.verifier.Verify(ctx, ev.UserID)
	}

	var out proto.Directive
	var toFinalize *session.Session

	e.sessions.Mutate(ev.UserID, func(sess *session.Session) bool {
		if sess == nil {
			return false
		}

		def := e.catalog[sess.CurrentStep]
		if def == nil || def.Terminal {
			// Terminal sessions are cleared on entry; a leftover is stale.
			return false
		}

		value, ok := def.Accepts(ev)
		if ok && sess.CurrentStep == proto.StepFollowCheck && !followed {
			ok = false
		}
		if !ok {
			e.recorder.ObserveRejected(sess.CurrentStep, ev.Kind)
			if e.opts.RepromptOnMismatch {
				out = def.Prompt
			}
			return true
		}

		// Document uploads repeat the step, accumulating filenames.
		if sess.CurrentStep == proto.StepUploadDocs && ev.Kind == proto.EventDocument {
			sess.AppendDocument(value)
			out = documentReceivedDirective(value)
			return true
		}

		if def.Field != "" {
			sess.SetAnswer(def.Field, value)
		}

		next := def.Next(value)
		if !IsValidTransition(sess.CurrentStep, next) {
			// Catalog bug; refuse to corrupt the session.
			e.logger.Error("illegal transition %s -> %s for user %s", sess.CurrentStep, next, ev.UserID)
			return true
		}

		e.recorder.ObserveTransition(sess.CurrentStep, next)
		sess.Advance(next)

		if next == proto.StepFinalize {
			// Snapshot for finalization outside the lock; the session is
			// cleared unconditionally by returning false.
			toFinalize = sess.Clone()
			return false
		}

		out = e.catalog[next].Prompt
		return true
	})

	if toFinalize != nil {
		directive, result := e.finalizer.Finalize(ctx, toFinalize)
		e.recorder.ObserveFinalize(string(result.Outcome))
		return directive
	}
	return out
}
