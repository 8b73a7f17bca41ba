package models

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/mmdatafocus/drcm_backend/config"
)

// Needs MySQL (DB_* env) and Redis (REDIS_ADDRESS).
func requireIntegration(t *testing.T) {
	t.Helper()
	if os.Getenv("INTEGRATION_TESTS") != "true" {
		t.Skip("set INTEGRATION_TESTS=true to run against MySQL and Redis")
	}
}

func TestGormAuditSink_Integration(t *testing.T) {
	requireIntegration(t)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	config.ConnectDatabaseWithRetry(ctx)
	if config.GetDB() == nil {
		t.Fatalf("database not connected")
	}
	if err := MigrateTable(); err != nil {
		t.Fatalf("MigrateTable error: %v", err)
	}

	caseNumber := "IT-" + time.Now().Format("20060102150405.000000")
	sink := NewGormAuditSink(config.GetDB())
	err := sink.Append(ctx, AuditEntry{
		Timestamp:  time.Now().UTC().Truncate(time.Second),
		Department: "LIMA",
		Actor:      "LIMA",
		CaseNumber: caseNumber,
		PassDate:   "10/01/2025 00:00:00",
	})
	if err != nil {
		t.Fatalf("Append error: %v", err)
	}

	var row AuditLogEntry
	if err := config.GetDB().Where("case_number = ?", caseNumber).First(&row).Error; err != nil {
		t.Fatalf("reading mirror row: %v", err)
	}
	if row.PassDate != "10/01/2025 00:00:00" || row.Department != "LIMA" {
		t.Fatalf("unexpected mirror row %+v", row)
	}
	config.GetDB().Delete(&row)
}

func TestRedisCache_Integration(t *testing.T) {
	requireIntegration(t)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	config.ConnectRedisWithRetry(ctx)
	if config.GetRedisDB() == nil {
		t.Fatalf("redis not connected")
	}

	cache := NewRedisCache(time.Minute)
	snap := sampleSnapshot()
	cache.Set(ctx, snap)

	got, ok := cache.Get(ctx)
	if !ok {
		t.Fatalf("expected cached snapshot")
	}
	if len(got.Records) != len(snap.Records) || got.Records[0].CaseNumberValue() != "EXP-1" {
		t.Fatalf("unexpected cached snapshot %+v", got.Records)
	}

	if err := cache.Invalidate(ctx); err != nil {
		t.Fatalf("Invalidate error: %v", err)
	}
	if _, ok := cache.Get(ctx); ok {
		t.Fatalf("expected miss after invalidate")
	}
}
