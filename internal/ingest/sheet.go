package ingest

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/parlaydesk/tracker/internal/ledger"
	"github.com/parlaydesk/tracker/internal/store"
)

const (
	// SheetsBaseURL is the Google Sheets document endpoint
	SheetsBaseURL = "https://docs.google.com/spreadsheets/d"
	// DefaultTimeout bounds a single sheet download
	DefaultTimeout = 10 * time.Second
	// MaxBodyBytes caps the size of a sheet response
	MaxBodyBytes = 10 << 20
)

// Format is the transport shape of a sheet export.
type Format string

const (
	FormatAuto Format = ""
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// SheetURL builds the gviz query URL exporting one tab of a spreadsheet.
func SheetURL(sheetID, sheetName string, format Format) string {
	if format == FormatAuto {
		format = FormatCSV
	}
	u := fmt.Sprintf("%s/%s/gviz/tq?tqx=out:%s", SheetsBaseURL, url.PathEscape(sheetID), format)
	if sheetName != "" {
		u += "&sheet=" + strings.ReplaceAll(url.QueryEscape(sheetName), "+", "%20")
	}
	return u
}

// SheetSource downloads bet rows from a published spreadsheet.
type SheetSource struct {
	url     string
	format  Format
	client  *http.Client
	maxBody int64
}

// NewSheetSource creates a SheetSource for the given export URL.
func NewSheetSource(sheetURL string, format Format, timeout time.Duration) *SheetSource {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &SheetSource{
		url:     sheetURL,
		format:  format,
		client:  &http.Client{Timeout: timeout},
		maxBody: MaxBodyBytes,
	}
}

// Name identifies the source in logs.
func (s *SheetSource) Name() string {
	return "sheet"
}

// Fetch downloads and parses the sheet. Any non-2xx response is an error, as
// is a body over the size cap or one that is not a sheet export (an HTML
// sign-in page, or rows without a single recognised column).
func (s *SheetSource) Fetch(ctx context.Context) ([]store.RawRecord, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request failed: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	if isHTML(resp.Header.Get("Content-Type")) {
		return nil, fmt.Errorf("%w: got an HTML page, is the sheet shared?", ErrMalformedPayload)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, s.maxBody+1))
	if err != nil {
		return nil, fmt.Errorf("read body failed: %w", err)
	}
	if int64(len(body)) > s.maxBody {
		return nil, fmt.Errorf("response exceeds %d bytes", s.maxBody)
	}
	if bytes.HasPrefix(bytes.TrimSpace(body), []byte("<")) {
		return nil, fmt.Errorf("%w: got markup instead of a sheet export", ErrMalformedPayload)
	}

	format := s.format
	if format == FormatAuto {
		format = sniffFormat(body)
	}

	var records []store.RawRecord
	switch format {
	case FormatJSON:
		records, err = ParseGviz(body)
	default:
		records, err = ParseCSV(bytes.NewReader(body))
	}
	if err != nil {
		return nil, err
	}
	if len(records) > 0 && !hasKnownColumn(records[0]) {
		return nil, fmt.Errorf("%w: no recognised columns", ErrMalformedPayload)
	}

	slog.Debug("sheet_fetched", "format", format, "bytes", len(body), "rows", len(records))
	return records, nil
}

// sniffFormat guesses the export shape from the body.
func sniffFormat(body []byte) Format {
	trimmed := bytes.TrimSpace(body)
	if bytes.HasPrefix(trimmed, []byte("/*")) || bytes.Contains(trimmed, []byte("setResponse(")) {
		return FormatJSON
	}
	return FormatCSV
}

func isHTML(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	return err == nil && (mediaType == "text/html" || mediaType == "application/xhtml+xml")
}

func hasKnownColumn(rec store.RawRecord) bool {
	for name := range rec {
		if ledger.KnownColumn(name) {
			return true
		}
	}
	return false
}
