package reporting

import (
	"fmt"
	"strconv"

	"github.com/esteinig/sketchy/src/evaluation"
	"github.com/xuri/excelize/v2"
)

// CheckWorkbook rejects parameters whose timeline sheet would not fit a worksheet: the
// sheet holds a header plus one row per read and a column per rank after the read columns
func CheckWorkbook(p evaluation.Params) error {
	if p.Limit+1 > excelize.TotalRows {
		return fmt.Errorf("a limit of %d reads exceeds the %d rows of an xlsx sheet", p.Limit, excelize.TotalRows-1)
	}
	if p.ShowRanks+3 > excelize.MaxColumns {
		return fmt.Errorf("%d ranks exceed the %d columns of an xlsx sheet", p.ShowRanks, excelize.MaxColumns-3)
	}
	return nil
}

// workbookTables lays the timeline out wide, one row per read; the other tables match the TSV output
func workbookTables(res *evaluation.Result) []table {
	return []table{timelineWideTable(res), raceTable(res), concordanceTable(res), summaryTable(res)}
}

// WriteWorkbook writes the timeline, race, concordance and summary tables as sheets of
// one xlsx workbook
func WriteWorkbook(path string, res *evaluation.Result) error {
	if err := CheckWorkbook(res.Params); err != nil {
		return err
	}
	f := excelize.NewFile()
	defer f.Close()

	for i, t := range workbookTables(res) {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", t.name); err != nil {
				return err
			}
		} else if _, err := f.NewSheet(t.name); err != nil {
			return err
		}
		for c, h := range t.header {
			cell, _ := excelize.CoordinatesToCellName(c+1, 1)
			if err := f.SetCellValue(t.name, cell, h); err != nil {
				return err
			}
		}
		for r, rec := range t.records {
			for c, v := range rec {
				cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
				if err := f.SetCellValue(t.name, cell, t.cellValue(r, c, v)); err != nil {
					return err
				}
			}
		}
	}
	f.SetActiveSheet(0)
	return f.SaveAs(path)
}

// cellValue stores numeric columns as numbers so they sort and chart; labels such as
// lineage "4.10" stay text
func (t table) cellValue(row, col int, v string) interface{} {
	if !t.numeric(row, col) {
		return v
	}
	if n, err := strconv.Atoi(v); err == nil {
		return n
	}
	if x, err := strconv.ParseFloat(v, 64); err == nil {
		return x
	}
	return v
}
