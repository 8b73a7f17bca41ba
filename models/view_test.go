package models

import (
	"fmt"
	"testing"
	"time"
)

func TestBuildView_DefaultsAndLiveRecompute(t *testing.T) {
	snap := sampleSnapshot()
	today := time.Date(2025, 1, 20, 0, 0, 0, 0, time.UTC)
	edits := NewEditSession()

	views := BuildView(snap.Records, "LIMA", edits, today)
	if len(views) != 2 {
		t.Fatalf("expected 2 views, got %d", len(views))
	}

	// EXP-1 has no pass date: defaults to today.
	if views[0].CaseNumber != "EXP-1" || views[0].EditedPassDate != "2025-01-20" {
		t.Fatalf("expected EXP-1 defaulting to today, got %+v", views[0])
	}
	if views[0].DaysRemaining == nil || *views[0].DaysRemaining != 19 {
		t.Fatalf("expected 19 days for EXP-1, got %v", derefForMsg(views[0].DaysRemaining))
	}

	// EXP-5 has a pass date but no case date.
	if views[1].EditedPassDate != "2025-01-15" {
		t.Fatalf("expected EXP-5 to start from its stored pass date, got %s", views[1].EditedPassDate)
	}
	if views[1].DaysRemaining != nil {
		t.Fatalf("expected absent days for EXP-5, got %d", *views[1].DaysRemaining)
	}

	edits.Set("EXP-1", time.Date(2025, 1, 10, 15, 0, 0, 0, time.UTC))
	views = BuildView(snap.Records, "LIMA", edits, today)
	if views[0].EditedPassDate != "2025-01-10" {
		t.Fatalf("expected edited date 2025-01-10, got %s", views[0].EditedPassDate)
	}
	if views[0].DaysRemaining == nil || *views[0].DaysRemaining != 9 {
		t.Fatalf("expected 9 days after edit, got %v", derefForMsg(views[0].DaysRemaining))
	}
	if views[0].StoredPassDate != nil {
		t.Fatalf("expected the stored pass date to stay absent before saving")
	}
}

func TestEditRegistry_SessionsAreIsolated(t *testing.T) {
	reg := NewEditRegistry(0)
	d := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)

	reg.Session("a").Set("EXP-1", d)
	if _, ok := reg.Session("b").Get("EXP-1"); ok {
		t.Fatalf("expected session b not to see edits of session a")
	}
	if got, ok := reg.Session("a").Get("EXP-1"); !ok || !got.Equal(d) {
		t.Fatalf("expected session a to keep its edit, got %v %v", got, ok)
	}

	reg.Session("a").Clear("EXP-1")
	if keys := reg.Session("a").Keys(); len(keys) != 0 {
		t.Fatalf("expected no edits after clear, got %v", keys)
	}
}

func TestEditRegistry_EvictsIdleSessions(t *testing.T) {
	reg := NewEditRegistry(time.Hour)
	now := time.Date(2025, 1, 20, 12, 0, 0, 0, time.UTC)
	reg.now = func() time.Time { return now }
	d := time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)

	reg.Session("a").Set("EXP-1", d)
	reg.Session("b").Set("EXP-2", d)
	if reg.Len() != 2 {
		t.Fatalf("expected 2 sessions, got %d", reg.Len())
	}

	now = now.Add(30 * time.Minute)
	reg.Session("b")

	// a has been idle for an hour, b for half an hour.
	now = now.Add(30 * time.Minute)
	if _, ok := reg.Session("b").Get("EXP-2"); !ok {
		t.Fatalf("expected the recently used session to keep its edit")
	}
	if reg.Len() != 1 {
		t.Fatalf("expected the idle session to be evicted, got %d sessions", reg.Len())
	}
	if _, ok := reg.Session("a").Get("EXP-1"); ok {
		t.Fatalf("expected an evicted session to start empty")
	}

	for i := 0; i < 100; i++ {
		reg.Session(fmt.Sprintf("tok-%d", i))
		now = now.Add(2 * time.Hour)
	}
	if reg.Len() != 1 {
		t.Fatalf("expected expired sessions not to accumulate, got %d", reg.Len())
	}
}

func TestEditSession_NilGet(t *testing.T) {
	var s *EditSession
	if _, ok := s.Get("EXP-1"); ok {
		t.Fatalf("expected nil session to have no edits")
	}
}
