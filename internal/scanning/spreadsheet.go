package scanning

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ErrLegacyWorkbook is returned for .xls files, which only the remote
// analyzer accepts
var ErrLegacyWorkbook = errors.New("legacy .xls workbooks cannot be read locally, save as .xlsx")

// spreadsheetText renders every sheet of an .xlsx workbook as tab-separated
// text. It returns the text and the number of sheets read.
func spreadsheetText(data []byte, fileName string) (string, int, error) {
	if extension(fileName) == ".xls" {
		return "", 0, ErrLegacyWorkbook
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return "", 0, fmt.Errorf("opening workbook: %w", err)
	}
	defer f.Close()

	var b strings.Builder
	sheets := f.GetSheetList()
	for _, name := range sheets {
		rows, err := f.GetRows(name)
		if err != nil {
			return "", 0, fmt.Errorf("reading sheet %q: %w", name, err)
		}
		fmt.Fprintf(&b, "## Sheet: %s\n", name)
		for _, row := range rows {
			b.WriteString(strings.TrimRight(strings.Join(row, "\t"), "\t"))
			b.WriteByte('\n')
		}
		b.WriteByte('\n')
	}
	return strings.TrimRight(b.String(), "\n"), len(sheets), nil
}
