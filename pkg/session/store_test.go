package session

import (
	"sync"
	"testing"
	"time"

	"intakebot/pkg/proto"
)

func TestCreateOverwritesExistingSession(t *testing.T) {
	store := NewMemoryStore(0)

	store.Create("u1", proto.StepFollowCheck)
	store.Mutate("u1", func(s *Session) bool {
		s.SetAnswer(proto.FieldName, "Jane")
		s.Advance(proto.StepEmail)
		return true
	})
	if got := store.Get("u1"); got.CurrentStep != proto.StepEmail {
		t.Fatalf("setup failed: expected session at %s, got %s", proto.StepEmail, got.CurrentStep)
	}

	second := store.Create("u1", proto.StepFollowCheck)
	if second.CurrentStep != proto.StepFollowCheck {
		t.Errorf("expected fresh session at %s, got %s", proto.StepFollowCheck, second.CurrentStep)
	}
	if len(second.Answers) != 0 {
		t.Errorf("expected fresh session with no answers, got %v", second.Answers)
	}
	if got := store.Get("u1"); got.CurrentStep != proto.StepFollowCheck {
		t.Errorf("store returned stale session at step %s", got.CurrentStep)
	}
}

func TestMutateDiscardsSessionOnFalse(t *testing.T) {
	store := NewMemoryStore(0)
	store.Create("u1", proto.StepFollowCheck)

	store.Mutate("u1", func(s *Session) bool {
		if s == nil {
			t.Fatal("expected active session inside Mutate")
		}
		return false
	})

	if store.Get("u1") != nil {
		t.Error("session should be discarded after Mutate returns false")
	}
	if store.Len() != 0 {
		t.Errorf("expected 0 active sessions, got %d", store.Len())
	}
}

func TestMutateWithoutSessionPassesNil(t *testing.T) {
	store := NewMemoryStore(0)

	called := false
	store.Mutate("ghost", func(s *Session) bool {
		called = true
		if s != nil {
			t.Error("expected nil session for unknown user")
		}
		return false
	})
	if !called {
		t.Fatal("Mutate must invoke fn even without a session")
	}
}

// TestMutateSerializesPerUser hammers one user's session from many
// goroutines; the per-user lock must make every increment visible.
func TestMutateSerializesPerUser(t *testing.T) {
	store := NewMemoryStore(0)
	store.Create("u1", proto.StepUploadDocs)

	const goroutines = 32
	const perGoroutine = 25

	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perGoroutine; j++ {
				store.Mutate("u1", func(s *Session) bool {
					s.AppendDocument("doc.pdf")
					return true
				})
			}
		}()
	}
	wg.Wait()

	sess := store.Get("u1")
	if sess == nil {
		t.Fatal("session vanished")
	}
	if got, want := len(sess.Documents), goroutines*perGoroutine; got != want {
		t.Errorf("lost updates: got %d documents, want %d", got, want)
	}
}

func TestClearIsIdempotent(t *testing.T) {
	store := NewMemoryStore(0)
	store.Create("u1", proto.StepFollowCheck)

	store.Clear("u1")
	store.Clear("u1")
	store.Clear("never-existed")

	if store.Get("u1") != nil {
		t.Error("session survived Clear")
	}
}

func TestSweepExpiresIdleSessions(t *testing.T) {
	store := NewMemoryStore(50 * time.Millisecond)

	// Get returns a clone, so backdating must go through the lock.
	store.Create("idle", proto.StepName)
	store.Mutate("idle", func(s *Session) bool {
		s.UpdatedAt = time.Now().UTC().Add(-time.Minute)
		return true
	})
	store.Create("fresh", proto.StepName)

	expired := store.Sweep()
	if expired != 1 {
		t.Errorf("expected 1 expired session, got %d", expired)
	}
	if store.Get("idle") != nil {
		t.Error("idle session should be gone")
	}
	if store.Get("fresh") == nil {
		t.Error("fresh session should survive the sweep")
	}
}

func TestSweepWithoutTTLNeverExpires(t *testing.T) {
	store := NewMemoryStore(0)
	store.Create("u1", proto.StepName)
	store.Mutate("u1", func(s *Session) bool {
		s.UpdatedAt = time.Now().UTC().Add(-24 * time.Hour)
		return true
	})

	if expired := store.Sweep(); expired != 0 {
		t.Errorf("TTL disabled but Sweep expired %d session(s)", expired)
	}
	if store.Get("u1") == nil {
		t.Error("session should persist with TTL disabled")
	}
}

func TestGetReturnsDetachedCopy(t *testing.T) {
	store := NewMemoryStore(0)
	store.Create("u1", proto.StepName)

	// Mutating the returned session must not leak into the store.
	got := store.Get("u1")
	got.UpdatedAt = time.Now().UTC().Add(-time.Hour)
	got.SetAnswer(proto.FieldName, "escaped")

	live := store.Get("u1")
	if _, ok := live.Answers[proto.FieldName]; ok {
		t.Error("mutation of a Get result reached the live session")
	}
	if live.UpdatedAt.Before(time.Now().UTC().Add(-time.Minute)) {
		t.Error("UpdatedAt of the live session was backdated through a Get result")
	}
}

func TestCloneIsDeep(t *testing.T) {
	store := NewMemoryStore(0)
	sess := store.Create("u1", proto.StepUploadDocs)
	sess.SetAnswer(proto.FieldName, "Jane")
	sess.AppendDocument("a.pdf")

	snap := sess.Clone()
	sess.SetAnswer(proto.FieldName, "Changed")
	sess.AppendDocument("b.pdf")

	if snap.Answers[proto.FieldName] != "Jane" {
		t.Error("clone shares the answers map with the original")
	}
	if len(snap.Documents) != 1 {
		t.Errorf("clone shares the documents slice: got %d entries", len(snap.Documents))
	}
}
