// Package submit seals a completed session into a persisted submission
// record and fans out the post-finalization side effects: duplicate check,
// persistence, applicant notification, automation webhook.
package submit

import (
	"context"
	"fmt"

	"intakebot/pkg/logx"
	"intakebot/pkg/persistence"
	"intakebot/pkg/proto"
	"intakebot/pkg/session"
)

// Sink is the persistence collaborator: an append-only submission store.
type Sink interface {
	Exists(ctx context.Context, userID string) (bool, error)
	Save(ctx context.Context, sub *persistence.Submission) error
}

// Notifier delivers a confirmation message to the applicant's contact.
type Notifier interface {
	Notify(ctx context.Context, contact, text string) error
}

// Webhook posts the sealed record to an automation endpoint.
type Webhook interface {
	Post(ctx context.Context, payload any) error
}

// Outcome distinguishes finalization results instead of silently swallowing
// side-effect failures.
type Outcome string

const (
	// OutcomeRecorded means the record was persisted and the applicant notified.
	OutcomeRecorded Outcome = "recorded"

	// OutcomeRecordedNotifyFailed means the record was persisted but the
	// confirmation notification could not be delivered.
	OutcomeRecordedNotifyFailed Outcome = "recorded_notify_failed"

	// OutcomeSaveFailed means persistence failed; the user still receives a
	// success confirmation (accepted inconsistency: the record may be
	// silently missing downstream).
	OutcomeSaveFailed Outcome = "save_failed"

	// OutcomeDuplicate means a prior submission exists; nothing was persisted.
	OutcomeDuplicate Outcome = "duplicate"
)

// Result reports what finalization did.
type Result struct {
	Outcome      Outcome
	SubmissionID string
}

// Finalizer runs the terminal step of the flow.
type Finalizer struct {
	sink     Sink
	notifier Notifier
	webhook  Webhook // optional
	logger   *logx.Logger
}

// NewFinalizer creates a finalizer. webhook may be nil.
func NewFinalizer(sink Sink, notifier Notifier, webhook Webhook) *Finalizer {
	return &Finalizer{
		sink:     sink,
		notifier: notifier,
		webhook:  webhook,
		logger:   logx.NewLogger("finalizer"),
	}
}

// Finalize seals the session into a record. The caller must pass a snapshot
// taken outside the session lock and must clear the session unconditionally
// afterward, whatever the result. Finalize never returns an error: sink and
// notifier failures are logged and reflected in the result only.
func (f *Finalizer) Finalize(ctx context.Context, sess *session.Session) (proto.Directive, Result) {
	exists, err := f.sink.Exists(ctx, sess.UserID)
	if err != nil {
		f.logger.Error("duplicate check failed for user %s: %v", sess.UserID, err)
		// Treat an unanswerable check as not-registered: persisting a
		// possible duplicate beats dropping a real application.
		exists = false
	}
	if exists {
		f.logger.Info("duplicate registration attempt by user %s", sess.UserID)
		return duplicateDirective(), Result{Outcome: OutcomeDuplicate}
	}

	record := assembleRecord(sess)

	outcome := OutcomeRecorded
	if err := f.sink.Save(ctx, record); err != nil {
		f.logger.Error("failed to persist submission for user %s: %v", sess.UserID, err)
		outcome = OutcomeSaveFailed
	}

	if err := f.notifier.Notify(ctx, record.Phone, confirmationMessage(record)); err != nil {
		f.logger.Warn("confirmation notification failed for user %s: %v", sess.UserID, err)
		if outcome == OutcomeRecorded {
			outcome = OutcomeRecordedNotifyFailed
		}
	}

	if f.webhook != nil {
		if err := f.webhook.Post(ctx, record); err != nil {
			f.logger.Warn("automation webhook failed for submission %s: %v", record.ID, err)
		}
	}

	f.logger.Info("registration completed for user %s (submission %s, outcome %s)",
		sess.UserID, record.ID, outcome)
	return successDirective(), Result{Outcome: outcome, SubmissionID: record.ID}
}

// assembleRecord builds the submission from the session's answers.
func assembleRecord(sess *session.Session) *persistence.Submission {
	record := persistence.NewSubmission(sess.UserID)
	record.Name = sess.Answers[proto.FieldName]
	record.Email = sess.Answers[proto.FieldEmail]
	record.Phone = sess.Answers[proto.FieldPhone]
	record.Major = sess.Answers[proto.FieldMajor]
	record.Country = sess.Answers[proto.FieldCountry]
	record.Documents = append([]string{}, sess.Documents...)
	return record
}

func confirmationMessage(record *persistence.Submission) string {
	return fmt.Sprintf(
		"Your application has been received!\n\n"+
			"Name: %s\n"+
			"Email: %s\n"+
			"Major: %s\n"+
			"Country: %s\n\n"+
			"Our team will review your file and contact you soon.\n\n"+
			"Thank you for choosing us!",
		record.Name, record.Email, record.Major, record.Country)
}

func successDirective() proto.Directive {
	return proto.Directive{
		Text: "Your application has been received!\n\n" +
			"Our team will review your file and contact you via WhatsApp soon.\n\n" +
			"Thank you!",
	}
}

func duplicateDirective() proto.Directive {
	return proto.Directive{
		Text: "You have already registered with us.\n\n" +
			"For additional services, please reach out on WhatsApp: +962781460847",
	}
}
