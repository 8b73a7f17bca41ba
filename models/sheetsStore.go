package models

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/xuri/excelize/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/api/sheets/v4"
)

var tracer = otel.Tracer("drcm-backend/models")

// SheetsStore reads and writes the case worksheet through the Sheets API.
type SheetsStore struct {
	svc              *sheets.Service
	spreadsheetId    string
	sheetIndex       int
	valueInputOption string
	loc              *time.Location
	now              func() time.Time

	mu    sync.Mutex
	title string
}

type SheetsStoreOptions struct {
	SpreadsheetId    string
	SheetIndex       int
	ValueInputOption string
	Location         *time.Location
}

func NewSheetsStore(svc *sheets.Service, opts SheetsStoreOptions) *SheetsStore {
	if opts.ValueInputOption == "" {
		opts.ValueInputOption = "RAW"
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	return &SheetsStore{
		svc:              svc,
		spreadsheetId:    opts.SpreadsheetId,
		sheetIndex:       opts.SheetIndex,
		valueInputOption: opts.ValueInputOption,
		loc:              opts.Location,
		now:              time.Now,
	}
}

func (s *SheetsStore) LoadAll(ctx context.Context) (snap *Snapshot, err error) {
	ctx, span := tracer.Start(ctx, "sheets.LoadAll")
	defer func() { endSpan(span, "load_all", err) }()

	title, err := s.worksheetTitle(ctx)
	if err != nil {
		return nil, err
	}
	resp, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetId, quoteSheet(title)).
		ValueRenderOption("FORMATTED_VALUE").
		Context(ctx).
		Do()
	if err != nil {
		return nil, unavailable("read worksheet", err)
	}
	snap = BuildSnapshot(toStrings(resp.Values), s.loc, s.now())
	span.SetAttributes(attribute.Int("records", len(snap.Records)))
	return snap, nil
}

func (s *SheetsStore) WriteCell(ctx context.Context, row int, column string, value any) (err error) {
	ctx, span := tracer.Start(ctx, "sheets.WriteCell", trace.WithAttributes(
		attribute.Int("row", row),
		attribute.String("column", column),
	))
	defer func() { endSpan(span, "write_cell", err) }()

	if row < 1 {
		return fmt.Errorf("invalid row %d", row)
	}
	title, err := s.worksheetTitle(ctx)
	if err != nil {
		return err
	}
	header, err := s.readHeader(ctx, title)
	if err != nil {
		return err
	}
	col, err := columnIndex(header, column)
	if err != nil {
		return err
	}
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}

	_, err = s.svc.Spreadsheets.Values.Update(s.spreadsheetId, quoteSheet(title)+"!"+cell, &sheets.ValueRange{
		Values: [][]interface{}{{value}},
	}).ValueInputOption(s.valueInputOption).Context(ctx).Do()
	if err != nil {
		return unavailable("write cell "+cell, err)
	}
	return nil
}

func (s *SheetsStore) AppendRow(ctx context.Context, sheet string, header []string, values []any) (err error) {
	ctx, span := tracer.Start(ctx, "sheets.AppendRow", trace.WithAttributes(attribute.String("sheet", sheet)))
	defer func() { endSpan(span, "append_row", err) }()

	if err := s.ensureSheet(ctx, sheet, header); err != nil {
		return err
	}
	_, err = s.svc.Spreadsheets.Values.Append(s.spreadsheetId, quoteSheet(sheet), &sheets.ValueRange{
		Values: [][]interface{}{values},
	}).ValueInputOption(s.valueInputOption).InsertDataOption("INSERT_ROWS").Context(ctx).Do()
	if err != nil {
		return unavailable("append to "+sheet, err)
	}
	return nil
}

// worksheetTitle resolves the title of the worksheet at sheetIndex once.
func (s *SheetsStore) worksheetTitle(ctx context.Context) (string, error) {
	s.mu.Lock()
	title := s.title
	s.mu.Unlock()
	if title != "" {
		return title, nil
	}

	titles, err := s.sheetTitles(ctx)
	if err != nil {
		return "", err
	}
	if s.sheetIndex < 0 || s.sheetIndex >= len(titles) {
		return "", fmt.Errorf("%w: worksheet index %d out of range (%d sheets)", ErrStoreUnavailable, s.sheetIndex, len(titles))
	}

	s.mu.Lock()
	s.title = titles[s.sheetIndex]
	title = s.title
	s.mu.Unlock()
	return title, nil
}

func (s *SheetsStore) sheetTitles(ctx context.Context) ([]string, error) {
	resp, err := s.svc.Spreadsheets.Get(s.spreadsheetId).
		Fields("sheets(properties(sheetId,title,index))").
		Context(ctx).
		Do()
	if err != nil {
		return nil, unavailable("open spreadsheet", err)
	}
	titles := make([]string, 0, len(resp.Sheets))
	for _, sh := range resp.Sheets {
		if sh.Properties != nil {
			titles = append(titles, sh.Properties.Title)
		}
	}
	return titles, nil
}

func (s *SheetsStore) readHeader(ctx context.Context, title string) ([]string, error) {
	resp, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetId, quoteSheet(title)+"!1:1").
		ValueRenderOption("FORMATTED_VALUE").
		Context(ctx).
		Do()
	if err != nil {
		return nil, unavailable("read header", err)
	}
	rows := toStrings(resp.Values)
	if len(rows) == 0 {
		return nil, nil
	}
	return TrimHeader(rows[0]), nil
}

func (s *SheetsStore) ensureSheet(ctx context.Context, sheet string, header []string) error {
	titles, err := s.sheetTitles(ctx)
	if err != nil {
		return err
	}
	for _, t := range titles {
		if t == sheet {
			return nil
		}
	}

	_, err = s.svc.Spreadsheets.BatchUpdate(s.spreadsheetId, &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			AddSheet: &sheets.AddSheetRequest{
				Properties: &sheets.SheetProperties{Title: sheet},
			},
		}},
	}).Context(ctx).Do()
	if err != nil {
		return unavailable("create sheet "+sheet, err)
	}

	row := make([]interface{}, len(header))
	for i, h := range header {
		row[i] = h
	}
	_, err = s.svc.Spreadsheets.Values.Update(s.spreadsheetId, quoteSheet(sheet)+"!A1", &sheets.ValueRange{
		Values: [][]interface{}{row},
	}).ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return unavailable("write header of "+sheet, err)
	}
	return nil
}

func quoteSheet(title string) string {
	return "'" + strings.ReplaceAll(title, "'", "''") + "'"
}

func toStrings(values [][]interface{}) [][]string {
	rows := make([][]string, len(values))
	for i, row := range values {
		rows[i] = make([]string, len(row))
		for j, v := range row {
			if v == nil {
				continue
			}
			rows[i][j] = fmt.Sprint(v)
		}
	}
	return rows
}

func unavailable(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrStoreUnavailable, op, err)
}

func endSpan(span trace.Span, op string, err error) {
	sheetRequestsTotal.WithLabelValues(op, resultLabel(err)).Inc()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
