package dataset

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/xuri/excelize/v2"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported file format")
	ErrParse             = errors.New("error loading file")
)

// Load parses raw tabular bytes into a dataframe. The format tag is the
// lowercase file extension without the dot (csv, json, xlsx).
func Load(content []byte, format string) (dataframe.DataFrame, error) {
	switch strings.ToLower(format) {
	case "csv":
		df := dataframe.ReadCSV(bytes.NewReader(content))
		if df.Err != nil {
			return dataframe.DataFrame{}, fmt.Errorf("%w: %v", ErrParse, df.Err)
		}
		return df, nil

	case "json":
		df := dataframe.ReadJSON(bytes.NewReader(content))
		if df.Err != nil {
			return dataframe.DataFrame{}, fmt.Errorf("%w: %v", ErrParse, df.Err)
		}
		return df, nil

	case "xlsx":
		records, err := readExcelRecords(content)
		if err != nil {
			return dataframe.DataFrame{}, fmt.Errorf("%w: %v", ErrParse, err)
		}
		df := dataframe.LoadRecords(records)
		if df.Err != nil {
			return dataframe.DataFrame{}, fmt.Errorf("%w: %v", ErrParse, df.Err)
		}
		return df, nil

	default:
		return dataframe.DataFrame{}, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
}

// readExcelRecords reads the first sheet of an xlsx workbook into header+rows
// records. Rows are padded to the header width because excelize omits
// trailing empty cells.
func readExcelRecords(content []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errors.New("workbook has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, errors.New("sheet is empty")
	}

	width := len(rows[0])
	records := make([][]string, 0, len(rows))
	for _, row := range rows {
		if len(row) < width {
			padded := make([]string, width)
			copy(padded, row)
			row = padded
		} else if len(row) > width {
			row = row[:width]
		}
		records = append(records, row)
	}
	return records, nil
}

// Validate checks the structural constraints charts need. It reports problems
// as (false, message) rather than an error.
func Validate(df dataframe.DataFrame, minRows, maxRows int) (bool, string) {
	if df.Ncol() == 0 {
		return false, "Data cannot be empty"
	}
	if df.Nrow() < minRows {
		return false, fmt.Sprintf("Data must have at least %d rows", minRows)
	}
	if df.Nrow() > maxRows {
		return false, fmt.Sprintf("Data exceeds maximum limit of %d rows", maxRows)
	}
	if allCellsNull(df) {
		return false, "All data is null"
	}
	return true, "Data validated successfully"
}

func allCellsNull(df dataframe.DataFrame) bool {
	for i := 0; i < df.Nrow(); i++ {
		for j := 0; j < df.Ncol(); j++ {
			if !IsNullElem(df.Elem(i, j)) {
				return false
			}
		}
	}
	return true
}
