package models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mmdatafocus/drcm_backend/config"
	"gorm.io/gorm"
)

const (
	AuditSheetName        = "Log"
	AuditTimestampLayout  = "2006-01-02 15:04:05"
	auditPublishTimeout   = 30 * time.Second
	auditMirrorInsertWait = 10 * time.Second
)

var AuditHeader = []string{"timestamp", "dependencia", "usuario", "numero_expediente", "fecha_pase"}

// AuditEntry records one saved pass date. The actor is the department, as
// access is granted per department.
type AuditEntry struct {
	Timestamp  time.Time `json:"timestamp"`
	Department string    `json:"department"`
	Actor      string    `json:"actor"`
	CaseNumber string    `json:"case_number"`
	PassDate   string    `json:"pass_date"`
}

func (e AuditEntry) Row() []any {
	return []any{
		e.Timestamp.Format(AuditTimestampLayout),
		e.Department,
		e.Actor,
		e.CaseNumber,
		e.PassDate,
	}
}

// AuditSink is a write-only destination of audit entries.
type AuditSink interface {
	Name() string
	Append(ctx context.Context, entry AuditEntry) error
}

// SheetAuditSink appends to the "Log" worksheet, creating it on first use.
type SheetAuditSink struct {
	store TabularStore
}

func NewSheetAuditSink(store TabularStore) *SheetAuditSink {
	return &SheetAuditSink{store: store}
}

func (s *SheetAuditSink) Name() string { return "sheet" }

func (s *SheetAuditSink) Append(ctx context.Context, entry AuditEntry) error {
	return s.store.AppendRow(ctx, AuditSheetName, AuditHeader, entry.Row())
}

// PubSubAuditSink publishes each entry as JSON to a topic.
type PubSubAuditSink struct {
	topic   string
	publish func(ctx context.Context, topic string, obj interface{}) (string, error)
}

func NewPubSubAuditSink(topic string) *PubSubAuditSink {
	return &PubSubAuditSink{topic: topic, publish: config.PublishJSON}
}

func (s *PubSubAuditSink) Name() string { return "pubsub" }

func (s *PubSubAuditSink) Append(ctx context.Context, entry AuditEntry) error {
	ctx, cancel := context.WithTimeout(ctx, auditPublishTimeout)
	defer cancel()
	_, err := s.publish(ctx, s.topic, entry)
	return err
}

// AuditLogEntry is the MySQL mirror row of an AuditEntry.
type AuditLogEntry struct {
	ID         int       `gorm:"primary_key" json:"id"`
	Timestamp  time.Time `gorm:"index;not null" json:"timestamp"`
	Department string    `gorm:"size:255;index;not null" json:"department"`
	Actor      string    `gorm:"size:255;not null" json:"actor"`
	CaseNumber string    `gorm:"size:255;index;not null" json:"case_number"`
	PassDate   string    `gorm:"size:32;not null" json:"pass_date"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// GormAuditSink mirrors entries into the audit_log_entries table.
type GormAuditSink struct {
	db *gorm.DB
}

func NewGormAuditSink(db *gorm.DB) *GormAuditSink {
	return &GormAuditSink{db: db}
}

func (s *GormAuditSink) Name() string { return "mysql" }

func (s *GormAuditSink) Append(ctx context.Context, entry AuditEntry) error {
	if s.db == nil {
		return errors.New("audit mirror db is nil")
	}
	ctx, cancel := context.WithTimeout(ctx, auditMirrorInsertWait)
	defer cancel()
	row := AuditLogEntry{
		Timestamp:  entry.Timestamp,
		Department: entry.Department,
		Actor:      entry.Actor,
		CaseNumber: entry.CaseNumber,
		PassDate:   entry.PassDate,
	}
	return s.db.WithContext(ctx).Create(&row).Error
}

// MultiAuditSink appends to every sink; one failing sink doesn't stop the others.
type MultiAuditSink struct {
	sinks []AuditSink
}

func NewMultiAuditSink(sinks ...AuditSink) *MultiAuditSink {
	m := &MultiAuditSink{}
	for _, s := range sinks {
		if s != nil {
			m.sinks = append(m.sinks, s)
		}
	}
	return m
}

func (m *MultiAuditSink) Name() string { return "multi" }

func (m *MultiAuditSink) Len() int { return len(m.sinks) }

func (m *MultiAuditSink) Append(ctx context.Context, entry AuditEntry) error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.Append(ctx, entry); err != nil {
			auditFailuresTotal.WithLabelValues(s.Name()).Inc()
			errs = append(errs, fmt.Errorf("%s: %w", s.Name(), err))
		}
	}
	return errors.Join(errs...)
}
