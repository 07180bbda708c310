// Package ingest fetches bet rows from a Google Sheets export or the local
// bet store and parses them into raw records.
package ingest

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/parlaydesk/tracker/internal/store"
)

// ErrMalformedPayload is returned when a response cannot be parsed as a sheet.
var ErrMalformedPayload = errors.New("malformed sheet payload")

// ParseCSV parses a delimited-text export whose first line holds the column
// names. Quoted fields may contain commas and escaped quotes; short rows are
// padded with blanks.
func ParseCSV(r io.Reader) ([]store.RawRecord, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read header: %v", ErrMalformedPayload, err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(header[i], "\ufeff"))
	}

	var records []store.RawRecord
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
		}
		records = append(records, toRecord(header, row))
	}

	return records, nil
}

// toRecord zips column names with cell values, skipping unnamed columns.
func toRecord(header, row []string) store.RawRecord {
	rec := make(store.RawRecord, len(header))
	for i, name := range header {
		if name == "" {
			continue
		}
		value := ""
		if i < len(row) {
			value = strings.TrimSpace(row[i])
		}
		rec[name] = value
	}
	return rec
}

// gvizResponse is the JSON body of a Google Visualization query response.
type gvizResponse struct {
	Status string `json:"status"`
	Errors []struct {
		Reason  string `json:"reason"`
		Message string `json:"message"`
	} `json:"errors"`
	Table struct {
		Cols []struct {
			ID    string `json:"id"`
			Label string `json:"label"`
			Type  string `json:"type"`
		} `json:"cols"`
		Rows []struct {
			C []*gvizCell `json:"c"`
		} `json:"rows"`
	} `json:"table"`
}

// gvizCell is one cell: V is the typed value, F the formatted text.
type gvizCell struct {
	V interface{} `json:"v"`
	F *string     `json:"f"`
}

// ParseGviz parses a Google Visualization table response. The JSON payload
// is wrapped in a JavaScript callback, which is stripped first.
func ParseGviz(body []byte) ([]store.RawRecord, error) {
	payload, err := unwrapGviz(body)
	if err != nil {
		return nil, err
	}

	var resp gvizResponse
	if err := json.Unmarshal(payload, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	if resp.Status == "error" {
		msg := "query failed"
		if len(resp.Errors) > 0 {
			msg = coalesce(resp.Errors[0].Message, resp.Errors[0].Reason, msg)
		}
		return nil, fmt.Errorf("%w: %s", ErrMalformedPayload, msg)
	}

	header := make([]string, len(resp.Table.Cols))
	labelled := false
	for i, col := range resp.Table.Cols {
		header[i] = strings.TrimSpace(col.Label)
		if header[i] != "" {
			labelled = true
		}
	}

	rows := make([][]string, 0, len(resp.Table.Rows))
	for _, r := range resp.Table.Rows {
		row := make([]string, len(r.C))
		for i, cell := range r.C {
			row[i] = cellText(cell)
		}
		rows = append(rows, row)
	}

	// Without header detection the column names arrive as the first row.
	if !labelled && len(rows) > 0 {
		header = rows[0]
		for i := range header {
			header[i] = strings.TrimSpace(header[i])
		}
		rows = rows[1:]
	}

	records := make([]store.RawRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, toRecord(header, row))
	}
	return records, nil
}

// unwrapGviz returns the outermost JSON object in body.
func unwrapGviz(body []byte) ([]byte, error) {
	start := bytes.IndexByte(body, '{')
	end := bytes.LastIndexByte(body, '}')
	if start < 0 || end < start {
		return nil, fmt.Errorf("%w: no JSON object in response", ErrMalformedPayload)
	}
	return body[start : end+1], nil
}

// cellText renders a gviz cell as sheet text. Numbers and dates use the raw
// value so locale formatting cannot break parsing.
func cellText(cell *gvizCell) string {
	if cell == nil {
		return ""
	}

	formatted := ""
	if cell.F != nil {
		formatted = *cell.F
	}

	switch v := cell.V.(type) {
	case nil:
		return strings.TrimSpace(formatted)
	case float64:
		return store.FormatDecimal(v)
	case bool:
		return strconv.FormatBool(v)
	case string:
		if date, ok := parseGvizDate(v); ok {
			return date
		}
		return strings.TrimSpace(v)
	default:
		return strings.TrimSpace(formatted)
	}
}

// parseGvizDate converts a "Date(2025,7,24)" literal, whose month is
// zero-based, to "24/08/2025".
func parseGvizDate(s string) (string, bool) {
	if !strings.HasPrefix(s, "Date(") || !strings.HasSuffix(s, ")") {
		return "", false
	}

	parts := strings.Split(s[len("Date("):len(s)-1], ",")
	if len(parts) < 3 {
		return "", false
	}

	nums := make([]int, 3)
	for i := 0; i < 3; i++ {
		n, err := strconv.Atoi(strings.TrimSpace(parts[i]))
		if err != nil {
			return "", false
		}
		nums[i] = n
	}

	return fmt.Sprintf("%02d/%02d/%04d", nums[2], nums[1]+1, nums[0]), true
}

// coalesce returns the first non-empty string.
func coalesce(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
