// Package export renders report tables as CSV or Excel workbooks.
package export

import (
	"fmt"
	"io"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/xuri/excelize/v2"

	"flightperf/internal/models"
)

// Content types of the two formats.
const (
	ContentTypeCSV  = "text/csv; charset=utf-8"
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// Frame turns a table into a dataframe with one string column per
// dimension and a float column named after the metric.
func Frame(table models.Table) dataframe.DataFrame {
	cols := make([]series.Series, 0, len(table.Dimensions)+1)
	for d, dim := range table.Dimensions {
		values := make([]string, len(table.Rows))
		for i, row := range table.Rows {
			values[i] = row.Key[d]
		}
		cols = append(cols, series.New(values, series.String, string(dim)))
	}

	means := make([]float64, len(table.Rows))
	for i, row := range table.Rows {
		means[i] = row.Value
	}
	cols = append(cols, series.New(means, series.Float, string(table.Metric)))

	return dataframe.New(cols...)
}

// WriteCSV writes one table with a header row.
func WriteCSV(w io.Writer, table models.Table) error {
	df := Frame(table)
	if df.Err != nil {
		return fmt.Errorf("build frame: %w", df.Err)
	}
	if err := df.WriteCSV(w); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}

// SheetName is the worksheet name of the table at pos (zero based).
func SheetName(pos int, table models.Table) string {
	name := fmt.Sprintf("%d_%s", pos+1, table.Metric)
	if len(name) > 31 {
		name = name[:31]
	}
	return name
}

// WriteXLSX writes every table of result to its own worksheet.
func WriteXLSX(w io.Writer, result models.ReportResult) error {
	f := excelize.NewFile()
	defer f.Close()

	for pos, table := range result.Tables {
		sheet := SheetName(pos, table)
		if pos == 0 {
			if err := f.SetSheetName("Sheet1", sheet); err != nil {
				return fmt.Errorf("rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(sheet); err != nil {
			return fmt.Errorf("add sheet %s: %w", sheet, err)
		}

		if err := writeSheet(f, sheet, Frame(table)); err != nil {
			return err
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeSheet(f *excelize.File, sheet string, df dataframe.DataFrame) error {
	if df.Err != nil {
		return fmt.Errorf("build frame: %w", df.Err)
	}

	names := df.Names()
	for i, name := range names {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := f.SetCellValue(sheet, cell, name); err != nil {
			return err
		}
	}

	for rowIdx := 0; rowIdx < df.Nrow(); rowIdx++ {
		for colIdx, name := range names {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			if err := f.SetCellValue(sheet, cell, df.Col(name).Val(rowIdx)); err != nil {
				return err
			}
		}
	}
	return nil
}
