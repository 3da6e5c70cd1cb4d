// Package workbook renders an export as a two-sheet xlsx workbook.
package workbook

import (
	"io"

	"github.com/m-mizutani/goerr/v2"
	"github.com/oncowatch/oncowatch/pkg/domain/model"
	"github.com/xuri/excelize/v2"
)

const (
	SubmissionsSheet = "Submissions"
	PatientsSheet    = "Patients"
)

type column struct {
	header string
	width  float64
	wrap   bool
}

var submissionColumns = []column{
	{header: "Patient Study ID", width: 18},
	{header: "Submission Date", width: 18},
	{header: "Triage Level", width: 14},
	{header: "Symptoms", width: 60, wrap: true},
	{header: "Is Baseline", width: 12},
	{header: "Notes", width: 50, wrap: true},
}

var patientColumns = []column{
	{header: "Study ID", width: 18},
	{header: "Cancer Type", width: 24},
	{header: "Triage Level", width: 14},
	{header: "Last Submission Date", width: 22},
}

type styles struct {
	header int
	wrap   int
}

// Write renders export into w
func Write(w io.Writer, export *model.Export) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	st, err := newStyles(f)
	if err != nil {
		return err
	}

	submissions := make([][]any, 0, len(export.Submissions))
	for _, r := range export.Submissions {
		submissions = append(submissions, []any{r.StudyID, r.SubmissionDate, r.TriageLevel, r.Symptoms, r.IsBaseline, r.Notes})
	}
	patients := make([][]any, 0, len(export.Patients))
	for _, r := range export.Patients {
		patients = append(patients, []any{r.StudyID, r.CancerType, r.TriageLevel, r.LastSubmissionDate})
	}

	// the default sheet becomes Submissions so it opens first
	if err := f.SetSheetName(f.GetSheetName(0), SubmissionsSheet); err != nil {
		return goerr.Wrap(err, "failed to rename default sheet")
	}
	if err := writeSheet(f, st, SubmissionsSheet, submissionColumns, submissions); err != nil {
		return err
	}

	if _, err := f.NewSheet(PatientsSheet); err != nil {
		return goerr.Wrap(err, "failed to create sheet", goerr.V("sheet", PatientsSheet))
	}
	if err := writeSheet(f, st, PatientsSheet, patientColumns, patients); err != nil {
		return err
	}

	f.SetActiveSheet(0)

	if _, err := f.WriteTo(w); err != nil {
		return goerr.Wrap(err, "failed to write workbook")
	}
	return nil
}

func newStyles(f *excelize.File) (*styles, error) {
	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6F3FF"},
			Pattern: 1,
		},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create header style")
	}

	wrap, err := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{
			Vertical: "top",
			WrapText: true,
		},
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create wrap style")
	}

	return &styles{header: header, wrap: wrap}, nil
}

func writeSheet(f *excelize.File, st *styles, sheet string, columns []column, rows [][]any) error {
	for i, c := range columns {
		name, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return goerr.Wrap(err, "failed to convert column number", goerr.V("column", i+1))
		}
		if err := f.SetColWidth(sheet, name, name, c.width); err != nil {
			return goerr.Wrap(err, "failed to set column width", goerr.V("sheet", sheet), goerr.V("column", name))
		}

		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return goerr.Wrap(err, "failed to convert coordinates")
		}
		if err := f.SetCellValue(sheet, cell, c.header); err != nil {
			return goerr.Wrap(err, "failed to set header cell", goerr.V("sheet", sheet), goerr.V("cell", cell))
		}
		if err := f.SetCellStyle(sheet, cell, cell, st.header); err != nil {
			return goerr.Wrap(err, "failed to set header style", goerr.V("sheet", sheet), goerr.V("cell", cell))
		}
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return goerr.Wrap(err, "failed to convert coordinates")
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return goerr.Wrap(err, "failed to write row", goerr.V("sheet", sheet), goerr.V("row", i+2))
		}
	}

	if len(rows) == 0 {
		return nil
	}
	for i, c := range columns {
		if !c.wrap {
			continue
		}
		top, _ := excelize.CoordinatesToCellName(i+1, 2)
		bottom, _ := excelize.CoordinatesToCellName(i+1, len(rows)+1)
		if err := f.SetCellStyle(sheet, top, bottom, st.wrap); err != nil {
			return goerr.Wrap(err, "failed to set wrap style", goerr.V("sheet", sheet), goerr.V("range", top+":"+bottom))
		}
	}

	return nil
}
