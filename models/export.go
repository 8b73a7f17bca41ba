package models

import (
	"io"
	"time"

	"github.com/mmdatafocus/drcm_backend/utils"
	"github.com/xuri/excelize/v2"
)

const exportSheet = "Pendientes"

var exportHeadings = []string{
	ColumnCaseNumber,
	ColumnCaseDate,
	ColumnPassDate,
	ColumnDaysRemaining,
	ColumnProcessType,
	ColumnMigrationQualityType,
}

const exportDateLayout = "02/01/2006"

// ExportPendingWorkbook writes views as an .xlsx workbook to w.
func ExportPendingWorkbook(views []RecordView, w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return err
	}

	for i, h := range exportHeadings {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(exportSheet, cell, h); err != nil {
			return err
		}
	}

	for i, v := range views {
		row := []interface{}{
			v.CaseNumber,
			formatOptionalDate(v.CaseDate),
			formatEditedDate(v.EditedPassDate),
			optionalInt(v.DaysRemaining),
			utils.DereferencePtr(v.ProcessType),
			utils.DereferencePtr(v.MigrationQualityType),
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(exportSheet, cell, &row); err != nil {
			return err
		}
	}

	return f.Write(w)
}

func formatOptionalDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(exportDateLayout)
}

func formatEditedDate(s string) string {
	t, err := time.Parse(EditDateLayout, s)
	if err != nil {
		return s
	}
	return t.Format(exportDateLayout)
}

func optionalInt(n *int) interface{} {
	if n == nil {
		return ""
	}
	return *n
}
