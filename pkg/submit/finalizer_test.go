package submit

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"intakebot/pkg/persistence"
	"intakebot/pkg/proto"
	"intakebot/pkg/session"
)

type stubSink struct {
	exists    bool
	existsErr error
	saveErr   error
	saved     []*persistence.Submission
}

func (s *stubSink) Exists(context.Context, string) (bool, error) {
	return s.exists, s.existsErr
}

func (s *stubSink) Save(_ context.Context, sub *persistence.Submission) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.saved = append(s.saved, sub)
	return nil
}

type stubNotifier struct {
	err   error
	texts []string
}

func (n *stubNotifier) Notify(_ context.Context, _, text string) error {
	if n.err != nil {
		return n.err
	}
	n.texts = append(n.texts, text)
	return nil
}

type stubWebhook struct {
	err      error
	payloads []any
}

func (w *stubWebhook) Post(_ context.Context, payload any) error {
	if w.err != nil {
		return w.err
	}
	w.payloads = append(w.payloads, payload)
	return nil
}

func completedSession(userID string) *session.Session {
	return &session.Session{
		UserID:      userID,
		CurrentStep: proto.StepFinalize,
		Answers: map[string]string{
			proto.FieldName:    "Jane Doe",
			proto.FieldEmail:   "jane@x.com",
			proto.FieldPhone:   "+1555123",
			proto.FieldMajor:   "science",
			proto.FieldCountry: "Germany",
		},
		Documents: []string{"passport.pdf"},
	}
}

func TestFinalizeRecordsSubmission(t *testing.T) {
	sink := &stubSink{}
	notifier := &stubNotifier{}
	webhook := &stubWebhook{}
	f := NewFinalizer(sink, notifier, webhook)

	directive, result := f.Finalize(context.Background(), completedSession("u1"))

	assert.Equal(t, OutcomeRecorded, result.Outcome)
	assert.NotEmpty(t, result.SubmissionID)
	assert.Contains(t, directive.Text, "received")

	require.Len(t, sink.saved, 1)
	sub := sink.saved[0]
	assert.Equal(t, "u1", sub.UserID)
	assert.Equal(t, "Jane Doe", sub.Name)
	assert.Equal(t, persistence.StatusPending, sub.Status)

	require.Len(t, notifier.texts, 1)
	assert.Contains(t, notifier.texts[0], "Jane Doe")

	require.Len(t, webhook.payloads, 1)
}

func TestFinalizeDuplicateShortCircuits(t *testing.T) {
	sink := &stubSink{exists: true}
	notifier := &stubNotifier{}
	f := NewFinalizer(sink, notifier, nil)

	directive, result := f.Finalize(context.Background(), completedSession("u1"))

	assert.Equal(t, OutcomeDuplicate, result.Outcome)
	assert.Empty(t, result.SubmissionID)
	assert.Contains(t, directive.Text, "already registered")
	assert.Empty(t, sink.saved)
	assert.Empty(t, notifier.texts)
}

func TestFinalizeSaveFailureStillConfirmsToUser(t *testing.T) {
	sink := &stubSink{saveErr: errors.New("disk full")}
	notifier := &stubNotifier{}
	f := NewFinalizer(sink, notifier, nil)

	directive, result := f.Finalize(context.Background(), completedSession("u1"))

	assert.Equal(t, OutcomeSaveFailed, result.Outcome)
	assert.Contains(t, directive.Text, "received",
		"the user-facing confirmation must not leak internal failures")
	require.Len(t, notifier.texts, 1)
}

func TestFinalizeNotifyFailureIsNonFatal(t *testing.T) {
	sink := &stubSink{}
	notifier := &stubNotifier{err: errors.New("whatsapp down")}
	f := NewFinalizer(sink, notifier, nil)

	directive, result := f.Finalize(context.Background(), completedSession("u1"))

	assert.Equal(t, OutcomeRecordedNotifyFailed, result.Outcome)
	assert.Contains(t, directive.Text, "received")
	require.Len(t, sink.saved, 1)
}

func TestFinalizeExistsErrorTreatedAsNotRegistered(t *testing.T) {
	sink := &stubSink{existsErr: errors.New("db locked")}
	f := NewFinalizer(sink, &stubNotifier{}, nil)

	_, result := f.Finalize(context.Background(), completedSession("u1"))

	assert.Equal(t, OutcomeRecorded, result.Outcome)
	require.Len(t, sink.saved, 1, "an unanswerable duplicate check must not drop the application")
}

func TestFinalizeWebhookFailureIsIgnored(t *testing.T) {
	sink := &stubSink{}
	webhook := &stubWebhook{err: errors.New("timeout")}
	f := NewFinalizer(sink, &stubNotifier{}, webhook)

	_, result := f.Finalize(context.Background(), completedSession("u1"))

	assert.Equal(t, OutcomeRecorded, result.Outcome)
	require.Len(t, sink.saved, 1)
}
