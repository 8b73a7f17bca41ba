package models

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemoryCache_ExpiresAfterTTL(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	c := NewMemoryCache(40 * time.Second)
	c.now = func() time.Time { return now }

	if _, ok := c.Get(ctx); ok {
		t.Fatalf("expected empty cache")
	}
	snap := &Snapshot{LoadedAt: now}
	c.Set(ctx, snap)

	now = now.Add(39 * time.Second)
	if got, ok := c.Get(ctx); !ok || got != snap {
		t.Fatalf("expected cached snapshot before ttl")
	}
	now = now.Add(time.Second)
	if _, ok := c.Get(ctx); ok {
		t.Fatalf("expected snapshot to expire at ttl")
	}
}

func TestMemoryCache_ZeroTTLNeverStores(t *testing.T) {
	c := NewMemoryCache(0)
	c.Set(context.Background(), &Snapshot{})
	if _, ok := c.Get(context.Background()); ok {
		t.Fatalf("expected zero ttl cache to stay empty")
	}
}

func TestCachedStore_ServesCacheAndInvalidatesOnWrite(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore(fullHeader, caseRow("EXP-1", "LIMA", "01/01/2025", "", "pendiente", ""))
	cached := NewCachedStore(store, NewMemoryCache(time.Minute))

	if _, err := cached.LoadAll(ctx); err != nil {
		t.Fatalf("LoadAll error: %v", err)
	}
	if _, err := cached.LoadAll(ctx); err != nil {
		t.Fatalf("LoadAll error: %v", err)
	}
	if store.loads != 1 {
		t.Fatalf("expected one remote load, got %d", store.loads)
	}

	if _, err := cached.LoadFresh(ctx); err != nil {
		t.Fatalf("LoadFresh error: %v", err)
	}
	if store.loads != 2 {
		t.Fatalf("expected LoadFresh to bypass the cache, got %d loads", store.loads)
	}

	if err := cached.WriteCell(ctx, 2, ColumnPassDate, "10/01/2025 00:00:00"); err != nil {
		t.Fatalf("WriteCell error: %v", err)
	}
	snap, err := cached.LoadAll(ctx)
	if err != nil {
		t.Fatalf("LoadAll error: %v", err)
	}
	if store.loads != 3 {
		t.Fatalf("expected a write to invalidate the cache, got %d loads", store.loads)
	}
	if snap.Records[0].PassDate == nil {
		t.Fatalf("expected the fresh read to see the written pass date")
	}
}

func TestCachedStore_FailedWriteKeepsCache(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore(fullHeader, caseRow("EXP-1", "LIMA", "01/01/2025", "", "pendiente", ""))
	store.writeErr[ColumnPassDate] = errors.New("boom")
	cached := NewCachedStore(store, NewMemoryCache(time.Minute))

	if _, err := cached.LoadAll(ctx); err != nil {
		t.Fatalf("LoadAll error: %v", err)
	}
	if err := cached.WriteCell(ctx, 2, ColumnPassDate, "x"); err == nil {
		t.Fatalf("expected write error")
	}
	if _, err := cached.LoadAll(ctx); err != nil {
		t.Fatalf("LoadAll error: %v", err)
	}
	if store.loads != 1 {
		t.Fatalf("expected cache to survive a failed write, got %d loads", store.loads)
	}
}

func TestCachedStore_LoadErrorPropagates(t *testing.T) {
	store := newFakeStore(fullHeader)
	store.loadErr = ErrStoreUnavailable
	cached := NewCachedStore(store, nil)
	if _, err := cached.LoadAll(context.Background()); !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}
}

func TestMultiAuditSink_FansOutAndJoinsErrors(t *testing.T) {
	ok := &fakeAuditSink{}
	bad := &fakeAuditSink{err: errors.New("denied")}
	m := NewMultiAuditSink(ok, nil, bad)
	if m.Len() != 2 {
		t.Fatalf("expected nil sinks to be skipped, got %d", m.Len())
	}

	err := m.Append(context.Background(), AuditEntry{CaseNumber: "EXP-1"})
	if err == nil || !errors.Is(err, bad.err) {
		t.Fatalf("expected joined error containing the failing sink, got %v", err)
	}
	if len(ok.entries) != 1 {
		t.Fatalf("expected the healthy sink to receive the entry")
	}
}

func TestSheetAuditSink_AppendsToLogSheet(t *testing.T) {
	store := newFakeStore(fullHeader)
	sink := NewSheetAuditSink(store)
	entry := AuditEntry{
		Timestamp:  time.Date(2025, 1, 10, 8, 5, 3, 0, time.UTC),
		Department: "LIMA",
		Actor:      "LIMA",
		CaseNumber: "EXP-1",
		PassDate:   "10/01/2025 00:00:00",
	}
	if err := sink.Append(context.Background(), entry); err != nil {
		t.Fatalf("Append error: %v", err)
	}
	if len(store.appends) != 1 {
		t.Fatalf("expected one append, got %d", len(store.appends))
	}
	call := store.appends[0]
	if call.Sheet != "Log" || len(call.Header) != 5 || call.Header[0] != "timestamp" || call.Header[4] != "fecha_pase" {
		t.Fatalf("unexpected append target %+v", call)
	}
	if call.Values[0] != "2025-01-10 08:05:03" || call.Values[3] != "EXP-1" {
		t.Fatalf("unexpected audit row %v", call.Values)
	}
}

func TestPubSubAuditSink_Publishes(t *testing.T) {
	var gotTopic string
	var gotObj interface{}
	sink := &PubSubAuditSink{topic: "drcm-audit", publish: func(_ context.Context, topic string, obj interface{}) (string, error) {
		gotTopic, gotObj = topic, obj
		return "1", nil
	}}
	entry := AuditEntry{CaseNumber: "EXP-1"}
	if err := sink.Append(context.Background(), entry); err != nil {
		t.Fatalf("Append error: %v", err)
	}
	if gotTopic != "drcm-audit" {
		t.Fatalf("expected topic drcm-audit, got %q", gotTopic)
	}
	if e, ok := gotObj.(AuditEntry); !ok || e.CaseNumber != "EXP-1" {
		t.Fatalf("expected the audit entry to be published, got %#v", gotObj)
	}
}
