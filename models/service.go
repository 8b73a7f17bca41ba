package models

import (
	"context"
	"fmt"
	"time"

	"github.com/mmdatafocus/drcm_backend/config"
	"github.com/mmdatafocus/drcm_backend/utils"
)

// Service is the department-facing API used by the HTTP handlers and the
// ops commands.
type Service struct {
	Store      *CachedStore
	Reconciler *Reconciler
	Gate       Gate
	Edits      *EditRegistry
	now        func() time.Time
}

func NewService(store *CachedStore, audit AuditSink, gate Gate) *Service {
	return &Service{
		Store:      store,
		Reconciler: NewReconciler(store, audit),
		Gate:       gate,
		Edits:      NewEditRegistry(utils.TokenLifespan()),
		now:        time.Now,
	}
}

// NewServiceFromSettings wires the Sheets store, the snapshot cache and the
// configured audit sinks.
func NewServiceFromSettings(ctx context.Context, s *config.Settings) (*Service, error) {
	SetDateLocation(s.Location)

	svc, err := config.GetSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	sheetsStore := NewSheetsStore(svc, SheetsStoreOptions{
		SpreadsheetId:    s.SheetId,
		SheetIndex:       s.SheetIndex,
		ValueInputOption: s.ValueInputOption,
		Location:         s.Location,
	})

	var cache SnapshotCache = NewMemoryCache(s.CacheTTL)
	if s.RedisAddress != "" {
		cache = NewRedisCache(s.CacheTTL)
	}
	store := NewCachedStore(sheetsStore, cache)

	var sinks []AuditSink
	if s.AuditLogSheet {
		sinks = append(sinks, NewSheetAuditSink(sheetsStore))
	}
	if s.PubSubAuditTopic != "" {
		sinks = append(sinks, NewPubSubAuditSink(s.PubSubAuditTopic))
	}
	if s.AuditMirrorDB {
		sinks = append(sinks, &lazyGormAuditSink{})
	}
	var audit AuditSink
	if len(sinks) > 0 {
		audit = NewMultiAuditSink(sinks...)
	}

	return NewService(store, audit, NewGate(s.AccessYear)), nil
}

// lazyGormAuditSink resolves the database at append time, since the mirror
// connects after the server starts.
type lazyGormAuditSink struct{}

func (lazyGormAuditSink) Name() string { return "mysql" }

func (lazyGormAuditSink) Append(ctx context.Context, entry AuditEntry) error {
	return NewGormAuditSink(config.GetDB()).Append(ctx, entry)
}

func (s *Service) today() time.Time {
	return Today(s.now())
}

func (s *Service) Departments(ctx context.Context) ([]string, error) {
	snap, err := s.Store.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	return Departments(snap.Records), nil
}

// Authorize checks the department secret and that department exists in the
// sheet.
func (s *Service) Authorize(ctx context.Context, department, secret string) (bool, error) {
	if !s.Gate.Authorize(department, secret) {
		return false, nil
	}
	departments, err := s.Departments(ctx)
	if err != nil {
		return false, err
	}
	for _, d := range departments {
		if d == department {
			return true, nil
		}
	}
	return false, nil
}

// PendingView lists the editable pending records of department for session.
func (s *Service) PendingView(ctx context.Context, department, session string) ([]RecordView, error) {
	snap, err := s.Store.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	return BuildView(snap.Records, department, s.Edits.Session(session), s.today()), nil
}

// Preview stores an unsaved pass date and returns the recomputed row.
func (s *Service) Preview(ctx context.Context, department, session, caseNumber string, date time.Time) (*RecordView, error) {
	snap, err := s.Store.LoadAll(ctx)
	if err != nil {
		return nil, err
	}
	edits := s.Edits.Session(session)
	edits.Set(caseNumber, date)

	views := BuildView(snap.Records, department, edits, s.today())
	for i := range views {
		if views[i].CaseNumber == caseNumber {
			return &views[i], nil
		}
	}
	edits.Clear(caseNumber)
	return nil, fmt.Errorf("%w: %s", ErrRecordNotFound, caseNumber)
}

// Save reconciles one edit against a fresh read of the sheet.
func (s *Service) Save(ctx context.Context, department, session, caseNumber string, date time.Time) (*SaveResult, error) {
	res, err := s.Reconciler.Save(ctx, SaveRequest{
		Department: department,
		CaseNumber: caseNumber,
		PassDate:   date,
	})
	if err != nil {
		return res, err
	}
	s.Edits.Session(session).Clear(caseNumber)
	return res, nil
}
