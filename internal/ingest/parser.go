// Package ingest implements the spreadsheet ingestion pipeline: parsing
// uploaded CSV/XLSX files into loosely-typed rows, validating them against
// the required supplier fields, and converting them into canonical records.
package ingest

import (
	"bytes"
	"encoding/csv"
	"io"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
	"go.uber.org/zap"
	"golang.org/x/text/encoding/charmap"
)

// RawRow maps a normalized column name to the raw cell text. Missing cells
// are the empty string, never absent keys, so downstream validation has a
// single representation for "blank".
type RawRow map[string]string

// Sentinel errors surfaced to the upload caller.
var (
	ErrEmptyFile         = eris.New("ingest: file has no data rows")
	ErrUnsupportedFormat = eris.New("ingest: unsupported file format")
)

// ParseFile reads an uploaded file's bytes and returns one RawRow per data
// row. The first row is treated as headers. ext is the file extension,
// with or without the leading dot.
func ParseFile(data []byte, ext string) ([]RawRow, error) {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), ".")) {
	case "csv":
		return parseCSV(data)
	case "xlsx", "xlsm":
		return parseWorkbook(data)
	default:
		return nil, eris.Wrapf(ErrUnsupportedFormat, "extension %q", ext)
	}
}

// parseCSV reads comma-delimited text. Blank lines are skipped and a
// malformed line never aborts the whole parse; it is logged and dropped.
func parseCSV(data []byte) ([]RawRow, error) {
	reader := csv.NewReader(bytes.NewReader(decodeText(data)))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var headers []string
	var rows []RawRow
	line := 0

	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		line++
		if err != nil {
			zap.L().Warn("ingest: skipping malformed csv line",
				zap.Int("line", line),
				zap.Error(err),
			)
			continue
		}
		if isBlank(record) {
			continue
		}
		if headers == nil {
			headers = normalizeHeaders(record)
			continue
		}
		rows = append(rows, mapRow(headers, record))
	}

	if len(rows) == 0 {
		return nil, ErrEmptyFile
	}
	return rows, nil
}

// parseWorkbook reads the first sheet of an XLSX workbook.
func parseWorkbook(data []byte) ([]RawRow, error) {
	f, err := xlsx.OpenBinary(data)
	if err != nil {
		return nil, eris.Wrap(err, "ingest: open workbook")
	}
	if len(f.Sheets) == 0 {
		return nil, ErrEmptyFile
	}

	var headers []string
	var rows []RawRow
	for _, row := range f.Sheets[0].Rows {
		cells := make([]string, len(row.Cells))
		for i, cell := range row.Cells {
			cells[i] = cell.String()
		}
		if isBlank(cells) {
			continue
		}
		if headers == nil {
			headers = normalizeHeaders(cells)
			continue
		}
		rows = append(rows, mapRow(headers, cells))
	}

	if len(rows) == 0 {
		return nil, ErrEmptyFile
	}
	return rows, nil
}

// normalizeHeaders lower-cases, trims, and collapses internal whitespace
// runs to a single underscore ("Date Livraison " becomes "date_livraison").
func normalizeHeaders(record []string) []string {
	headers := make([]string, len(record))
	for i, h := range record {
		headers[i] = strings.Join(strings.FieldsFunc(strings.ToLower(h), unicode.IsSpace), "_")
	}
	return headers
}

// mapRow pairs each header with the corresponding cell. Missing cells become
// empty strings; cells beyond the header width are dropped.
func mapRow(headers []string, record []string) RawRow {
	row := make(RawRow, len(headers))
	for i, h := range headers {
		if h == "" {
			continue
		}
		if i < len(record) {
			row[h] = record[i]
		} else {
			row[h] = ""
		}
	}
	return row
}

func isBlank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

// decodeText strips a UTF-8 BOM and falls back to Windows-1252 for files
// that are not valid UTF-8, the usual encoding of French Excel CSV exports.
func decodeText(data []byte) []byte {
	data = bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})
	if utf8.Valid(data) {
		return data
	}
	decoded, err := charmap.Windows1252.NewDecoder().Bytes(data)
	if err != nil {
		return data
	}
	return decoded
}

// parseNumber parses a cell as a float, tolerating a decimal comma.
func parseNumber(s string) (float64, error) {
	s = strings.TrimSpace(s)
	n, err := strconv.ParseFloat(s, 64)
	if err != nil && strings.Count(s, ",") == 1 && !strings.Contains(s, ".") {
		return strconv.ParseFloat(strings.Replace(s, ",", ".", 1), 64)
	}
	return n, err
}

// dateLayouts are tried in order when parsing date_livraison.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"02/01/2006",
	"2006/01/02",
	"02-01-2006",
}

// parseDate parses a cell as a calendar date.
func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, eris.Errorf("ingest: unparseable date %q", s)
}
