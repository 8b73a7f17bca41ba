package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Sheet header names. They must match the trimmed header row exactly.
const (
	ColumnCaseNumber           = "Número de Expediente"
	ColumnDepartment           = "Dependencia"
	ColumnCaseDate             = "Fecha de Expediente"
	ColumnDaysRemaining        = "Días restantes"
	ColumnProcessType          = "Tipo de Proceso"
	ColumnMigrationQualityType = "Tipo de Calidad Migratoria"
	ColumnStageStartDate       = "Fecha Inicio de Etapa"
	ColumnStageEndDate         = "Fecha Fin de Etapa"
	ColumnStatus               = "Estado Trámite"
	ColumnPassDate             = "Fecha Pase DRCM"
)

var ExpectedColumns = []string{
	ColumnCaseNumber,
	ColumnDepartment,
	ColumnCaseDate,
	ColumnDaysRemaining,
	ColumnProcessType,
	ColumnMigrationQualityType,
	ColumnStageStartDate,
	ColumnStageEndDate,
	ColumnStatus,
	ColumnPassDate,
}

// StatusPending is the only status value the tool acts on (compared case-insensitively).
const StatusPending = "pendiente"

// HeaderRows is the number of rows above the first record.
const HeaderRows = 1

// Record is one row of the case sheet. A nil field means the cell was empty,
// unparsable, or its column is missing from the sheet.
type Record struct {
	Position             int        `json:"position"`
	CaseNumber           *string    `json:"case_number"`
	Department           *string    `json:"department"`
	CaseDate             *time.Time `json:"case_date"`
	DaysRemaining        *int       `json:"days_remaining"`
	ProcessType          *string    `json:"process_type"`
	MigrationQualityType *string    `json:"migration_quality_type"`
	StageStartDate       *time.Time `json:"stage_start_date"`
	StageEndDate         *time.Time `json:"stage_end_date"`
	Status               *string    `json:"status"`
	PassDate             *time.Time `json:"pass_date"`
}

// RowNumber is the 1-based sheet row of the record.
func (r Record) RowNumber() int {
	return r.Position + HeaderRows + 1
}

func (r Record) CaseNumberValue() string {
	if r.CaseNumber == nil {
		return ""
	}
	return *r.CaseNumber
}

func (r Record) IsPending() bool {
	return r.Status != nil && strings.EqualFold(strings.TrimSpace(*r.Status), StatusPending)
}

// Snapshot is one full read of the case sheet.
type Snapshot struct {
	Header         []string  `json:"header"`
	Records        []Record  `json:"records"`
	MissingColumns []string  `json:"missing_columns"`
	LoadedAt       time.Time `json:"loaded_at"`
}

// ColumnIndex returns the 1-based position of name in the header.
func (s *Snapshot) ColumnIndex(name string) (int, error) {
	return columnIndex(s.Header, name)
}

// FindByCaseNumber returns the first record whose case number equals caseNumber.
func (s *Snapshot) FindByCaseNumber(caseNumber string) (Record, bool) {
	for _, r := range s.Records {
		if r.CaseNumber != nil && *r.CaseNumber == caseNumber {
			return r, true
		}
	}
	return Record{}, false
}

// FindByCaseNumberIn is FindByCaseNumber restricted to rows of department.
func (s *Snapshot) FindByCaseNumberIn(department, caseNumber string) (Record, bool) {
	for _, r := range s.Records {
		if r.CaseNumber != nil && *r.CaseNumber == caseNumber &&
			r.Department != nil && *r.Department == department {
			return r, true
		}
	}
	return Record{}, false
}

func columnIndex(header []string, name string) (int, error) {
	for i, h := range header {
		if h == name {
			return i + 1, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrColumnNotFound, name)
}

// TrimHeader trims surrounding whitespace of every header cell.
func TrimHeader(raw []string) []string {
	header := make([]string, len(raw))
	for i, h := range raw {
		header[i] = strings.TrimSpace(h)
	}
	return header
}

// MissingColumns lists the expected columns absent from header, in expected order.
func MissingColumns(header []string) []string {
	present := make(map[string]bool, len(header))
	for _, h := range header {
		present[h] = true
	}
	var missing []string
	for _, c := range ExpectedColumns {
		if !present[c] {
			missing = append(missing, c)
		}
	}
	return missing
}

// BuildSnapshot maps raw sheet rows (first row is the header) to records.
// It never fails: missing columns and bad cells read as absent.
func BuildSnapshot(rows [][]string, loc *time.Location, loadedAt time.Time) *Snapshot {
	snap := &Snapshot{LoadedAt: loadedAt}
	if len(rows) == 0 {
		snap.MissingColumns = MissingColumns(nil)
		return snap
	}

	snap.Header = TrimHeader(rows[0])
	snap.MissingColumns = MissingColumns(snap.Header)

	index := make(map[string]int, len(snap.Header))
	for i, h := range snap.Header {
		if _, dup := index[h]; !dup {
			index[h] = i
		}
	}
	cell := func(row []string, column string) string {
		i, ok := index[column]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}

	snap.Records = make([]Record, 0, len(rows)-1)
	for pos, row := range rows[1:] {
		snap.Records = append(snap.Records, Record{
			Position:             pos,
			CaseNumber:           parseText(cell(row, ColumnCaseNumber)),
			Department:           parseText(cell(row, ColumnDepartment)),
			CaseDate:             ParseDayFirstIn(cell(row, ColumnCaseDate), loc),
			DaysRemaining:        parseInteger(cell(row, ColumnDaysRemaining)),
			ProcessType:          parseText(cell(row, ColumnProcessType)),
			MigrationQualityType: parseText(cell(row, ColumnMigrationQualityType)),
			StageStartDate:       ParseDayFirstIn(cell(row, ColumnStageStartDate), loc),
			StageEndDate:         ParseDayFirstIn(cell(row, ColumnStageEndDate), loc),
			Status:               parseText(cell(row, ColumnStatus)),
			PassDate:             ParseDayFirstIn(cell(row, ColumnPassDate), loc),
		})
	}
	return snap
}

func parseText(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// parseInteger accepts "12", "12.0" and "-3"; anything else is absent.
func parseInteger(s string) *int {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if n, err := strconv.Atoi(s); err == nil {
		return &n
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != float64(int(f)) {
		return nil
	}
	n := int(f)
	return &n
}
