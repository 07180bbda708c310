package ingest

import (
	"context"
	"net/http"
	"strings"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/parlaydesk/tracker/internal/store"
)

func TestSheetURL(t *testing.T) {
	got := SheetURL("abc123", "season 2025/2026", FormatCSV)
	assert.Equal(t, "https://docs.google.com/spreadsheets/d/abc123/gviz/tq?tqx=out:csv&sheet=season%202025%2F2026", got)

	got = SheetURL("abc123", "A&B=C+D", FormatCSV)
	assert.Equal(t, "https://docs.google.com/spreadsheets/d/abc123/gviz/tq?tqx=out:csv&sheet=A%26B%3DC%2BD", got)

	got = SheetURL("abc123", "", FormatJSON)
	assert.Equal(t, "https://docs.google.com/spreadsheets/d/abc123/gviz/tq?tqx=out:json", got)
}

func TestSheetSourceFetchCSV(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(sampleCSV))
	}))
	defer srv.Close()

	src := NewSheetSource(srv.URL, FormatCSV, time.Second)
	records, err := src.Fetch(context.Background())
	require.NoError(t, err)
	assert.Len(t, records, 3)
	assert.Equal(t, "sheet", src.Name())
}

func TestSheetSourceSniffsGviz(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(sampleGviz))
	}))
	defer srv.Close()

	records, err := NewSheetSource(srv.URL, FormatAuto, time.Second).Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "Arsenal v Chelsea", records[0]["Match"])
}

func TestSheetSourceNonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer srv.Close()

	_, err := NewSheetSource(srv.URL, FormatCSV, time.Second).Fetch(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}

func TestSheetSourceRejectsOversizedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(sampleCSV))
	}))
	defer srv.Close()

	src := NewSheetSource(srv.URL, FormatCSV, time.Second)
	src.maxBody = int64(len(sampleCSV)) - 1
	records, err := src.Fetch(context.Background())
	require.Error(t, err)
	assert.Nil(t, records)
	assert.Contains(t, err.Error(), "exceeds")

	src.maxBody = int64(len(sampleCSV))
	records, err = src.Fetch(context.Background())
	require.NoError(t, err)
	assert.Len(t, records, 3)
}

func TestSheetSourceRejectsNonSheetPayloads(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		body        string
	}{
		{"html sign-in page", "text/html; charset=utf-8", "<!DOCTYPE html><html><body>Sign in</body></html>"},
		{"markup served as text", "text/plain", "\n  <html><head><title>Sign in</title></head></html>"},
		{"unrecognised columns", "text/csv", "name,email\nalice,a@example.com\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", tt.contentType)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			records, err := NewSheetSource(srv.URL, FormatCSV, time.Second).Fetch(context.Background())
			assert.ErrorIs(t, err, ErrMalformedPayload)
			assert.Nil(t, records)
		})
	}
}

func TestSheetSourceEmptySheet(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/csv")
		w.Write([]byte(strings.SplitN(sampleCSV, "\n", 2)[0] + "\n"))
	}))
	defer srv.Close()

	records, err := NewSheetSource(srv.URL, FormatCSV, time.Second).Fetch(context.Background())
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestSheetSourceNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := NewSheetSource(url, FormatCSV, time.Second).Fetch(context.Background())
	assert.Error(t, err)
}

type fakeBets struct {
	bets []store.Bet
	err  error
}

func (f fakeBets) List(ctx context.Context) ([]store.Bet, error) {
	return f.bets, f.err
}

func TestLocalSourceFetch(t *testing.T) {
	bets := fakeBets{bets: []store.Bet{
		{ID: "1", Leg: store.Leg{Date: "01/09", Match: "A v B", Pick: "A", Odds: 2, ParlayOdds: "4"}},
		{ID: "2", Leg: store.Leg{Date: "01/09", Match: "C v D", Pick: "C", Odds: 2, ParlayOdds: "4"}},
	}}

	src := NewLocalSource(bets)
	records, err := src.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "C v D", records[1]["Match"])
	assert.Equal(t, "2", records[1]["Odds"])
	assert.Equal(t, "local", src.Name())
}

func TestLocalSourceError(t *testing.T) {
	_, err := NewLocalSource(fakeBets{err: assert.AnError}).Fetch(context.Background())
	assert.ErrorIs(t, err, assert.AnError)
}
