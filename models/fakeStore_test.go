package models

import (
	"context"
	"fmt"
	"sync"
	"time"
)

type cellWrite struct {
	Row    int
	Column string
	Value  any
}

type appendCall struct {
	Sheet  string
	Header []string
	Values []any
}

// fakeStore is an in-memory worksheet (header + data rows).
type fakeStore struct {
	mu      sync.Mutex
	header  []string
	rows    [][]string
	writes  []cellWrite
	appends []appendCall
	loads   int

	loadErr   error
	writeErr  map[string]error
	appendErr error
}

func newFakeStore(header []string, rows ...[]string) *fakeStore {
	return &fakeStore{header: header, rows: rows, writeErr: map[string]error{}}
}

func (f *fakeStore) LoadAll(context.Context) (*Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.loads++
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	all := make([][]string, 0, len(f.rows)+1)
	all = append(all, append([]string(nil), f.header...))
	for _, r := range f.rows {
		all = append(all, append([]string(nil), r...))
	}
	return BuildSnapshot(all, time.UTC, time.Now()), nil
}

func (f *fakeStore) WriteCell(_ context.Context, row int, column string, value any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.writeErr[column]; err != nil {
		return err
	}
	col, err := columnIndex(TrimHeader(f.header), column)
	if err != nil {
		return err
	}
	i := row - HeaderRows - 1
	if i < 0 || i >= len(f.rows) {
		return fmt.Errorf("row %d out of range", row)
	}
	for len(f.rows[i]) < col {
		f.rows[i] = append(f.rows[i], "")
	}
	f.rows[i][col-1] = fmt.Sprint(value)
	f.writes = append(f.writes, cellWrite{Row: row, Column: column, Value: value})
	return nil
}

func (f *fakeStore) AppendRow(_ context.Context, sheet string, header []string, values []any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.appendErr != nil {
		return f.appendErr
	}
	f.appends = append(f.appends, appendCall{Sheet: sheet, Header: header, Values: values})
	return nil
}

func (f *fakeStore) cell(row int, column string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	col, err := columnIndex(TrimHeader(f.header), column)
	if err != nil {
		return ""
	}
	r := f.rows[row-HeaderRows-1]
	if col > len(r) {
		return ""
	}
	return r[col-1]
}

func (f *fakeStore) writeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.writes)
}

// fullHeader is ExpectedColumns in sheet order.
var fullHeader = []string{
	"Número de Expediente",
	"Dependencia",
	"Fecha de Expediente",
	"Días restantes",
	"Tipo de Proceso",
	"Tipo de Calidad Migratoria",
	"Fecha Inicio de Etapa",
	"Fecha Fin de Etapa",
	"Estado Trámite",
	"Fecha Pase DRCM",
}

func caseRow(number, department, caseDate, days, status, passDate string) []string {
	return []string{number, department, caseDate, days, "Regular", "Residente", "", "", status, passDate}
}

type fakeAuditSink struct {
	mu      sync.Mutex
	entries []AuditEntry
	err     error
}

func (s *fakeAuditSink) Name() string { return "fake" }

func (s *fakeAuditSink) Append(_ context.Context, e AuditEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.entries = append(s.entries, e)
	return nil
}
