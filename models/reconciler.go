package models

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mmdatafocus/drcm_backend/config"
	"github.com/mmdatafocus/drcm_backend/utils"
	"github.com/sirupsen/logrus"
)

type SaveState string

const (
	StateIdle            SaveState = "idle"
	StateReloading       SaveState = "reloading"
	StateLocating        SaveState = "locating"
	StateWritingPassDate SaveState = "writing_fecha"
	StateWritingDays     SaveState = "writing_dias"
	StateLoggingOptional SaveState = "logging_optional"
	StateDone            SaveState = "done"
	StateFailed          SaveState = "failed"
)

// ReconcileStore is what a save needs from the store: an uncached read and
// single-cell writes.
type ReconcileStore interface {
	LoadFresh(ctx context.Context) (*Snapshot, error)
	WriteCell(ctx context.Context, row int, column string, value any) error
}

type SaveRequest struct {
	Department string
	CaseNumber string
	PassDate   time.Time
}

type SaveResult struct {
	CaseNumber    string      `json:"case_number"`
	State         SaveState   `json:"state"`
	FailedAt      SaveState   `json:"failed_at,omitempty"`
	Row           int         `json:"row,omitempty"`
	PassDate      string      `json:"pass_date,omitempty"`
	DaysRemaining *int        `json:"days_remaining"`
	AuditWarning  string      `json:"audit_warning,omitempty"`
	Trail         []SaveState `json:"trail"`
}

func (r *SaveResult) enter(s SaveState) {
	r.State = s
	r.Trail = append(r.Trail, s)
}

func (r *SaveResult) fail(err error) error {
	r.FailedAt = r.State
	r.enter(StateFailed)
	savesTotal.WithLabelValues(string(StateFailed)).Inc()
	return err
}

// Reconciler writes one edited pass date back to the sheet.
type Reconciler struct {
	store  ReconcileStore
	audit  AuditSink
	now    func() time.Time
	logger *logrus.Logger
}

// NewReconciler builds a Reconciler; audit may be nil.
func NewReconciler(store ReconcileStore, audit AuditSink) *Reconciler {
	return &Reconciler{
		store:  store,
		audit:  audit,
		now:    time.Now,
		logger: config.GetLogger(),
	}
}

// Save re-reads the sheet, locates the first record with the case number and
// writes the pass date and the day count recomputed from the fresh row. An
// audit failure is reported in AuditWarning; the cell writes stand.
func (rc *Reconciler) Save(ctx context.Context, req SaveRequest) (*SaveResult, error) {
	res := &SaveResult{CaseNumber: req.CaseNumber}
	res.enter(StateIdle)

	res.enter(StateReloading)
	snap, err := rc.store.LoadFresh(ctx)
	if err != nil {
		config.LogError(rc.logger, "reconciler.go", "Save", "LoadFresh", req.CaseNumber, err)
		return res, res.fail(err)
	}

	res.enter(StateLocating)
	rec, ok := snap.FindByCaseNumber(req.CaseNumber)
	if req.Department != "" {
		rec, ok = snap.FindByCaseNumberIn(req.Department, req.CaseNumber)
	}
	if !ok {
		return res, res.fail(fmt.Errorf("%w: %s", ErrRecordNotFound, req.CaseNumber))
	}
	res.Row = rec.RowNumber()

	res.enter(StateWritingPassDate)
	passDate := Midnight(req.PassDate)
	res.PassDate = FormatPassDate(passDate)
	if err := rc.store.WriteCell(ctx, res.Row, ColumnPassDate, res.PassDate); err != nil {
		config.LogError(rc.logger, "reconciler.go", "Save", "WriteCell pass date", res, err)
		return res, res.fail(err)
	}

	res.enter(StateWritingDays)
	res.DaysRemaining = ComputeDaysRemainingAt(rec.CaseDate, &passDate, rc.now())
	var days any = ""
	if res.DaysRemaining != nil {
		days = *res.DaysRemaining
	}
	if err := rc.store.WriteCell(ctx, res.Row, ColumnDaysRemaining, days); err != nil {
		config.LogError(rc.logger, "reconciler.go", "Save", "WriteCell days remaining", res, err)
		return res, res.fail(err)
	}

	res.enter(StateLoggingOptional)
	if rc.audit != nil {
		entry := AuditEntry{
			Timestamp:  rc.now().In(dateLocation),
			Department: utils.DereferencePtr(rec.Department),
			Actor:      utils.DereferencePtr(rec.Department),
			CaseNumber: req.CaseNumber,
			PassDate:   res.PassDate,
		}
		if err := rc.audit.Append(ctx, entry); err != nil {
			res.AuditWarning = "audit log not written: " + err.Error()
			rc.logger.WithFields(logrus.Fields{
				"module":      "reconciler.go",
				"funcName":    "Save",
				"case_number": req.CaseNumber,
				"row":         res.Row,
			}).Warn(res.AuditWarning)
		}
	}

	res.enter(StateDone)
	savesTotal.WithLabelValues(string(StateDone)).Inc()
	return res, nil
}

// RecomputeChange is one "Días restantes" cell that differs from its computed value.
type RecomputeChange struct {
	CaseNumber string `json:"case_number"`
	Row        int    `json:"row"`
	Stored     *int   `json:"stored"`
	Computed   *int   `json:"computed"`
	Written    bool   `json:"written"`
}

// Recompute rewrites the stale day counts of the pending records of
// department. Only "Días restantes" is touched.
func (rc *Reconciler) Recompute(ctx context.Context, department string, dryRun bool) ([]RecomputeChange, error) {
	snap, err := rc.store.LoadFresh(ctx)
	if err != nil {
		return nil, err
	}
	now := rc.now().In(dateLocation)

	var changes []RecomputeChange
	for _, r := range FilterPending(snap.Records, department) {
		computed := ComputeDaysRemainingAt(r.CaseDate, r.PassDate, now)
		if sameDays(r.DaysRemaining, computed) {
			continue
		}
		change := RecomputeChange{
			CaseNumber: r.CaseNumberValue(),
			Row:        r.RowNumber(),
			Stored:     r.DaysRemaining,
			Computed:   computed,
		}
		if !dryRun {
			var v any = ""
			if computed != nil {
				v = *computed
			}
			if err := rc.store.WriteCell(ctx, change.Row, ColumnDaysRemaining, v); err != nil {
				return changes, err
			}
			change.Written = true
		}
		changes = append(changes, change)
	}
	return changes, nil
}

func sameDays(a, b *int) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// IsNotFound reports whether err is a missing record (HTTP 404 material).
func IsNotFound(err error) bool {
	return errors.Is(err, ErrRecordNotFound)
}
