package main

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/parlaydesk/tracker/internal/config"
	"github.com/parlaydesk/tracker/internal/ledger"
)

func TestSetupLoggerLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := setupLogger("warn", &buf)

	logger.Info("hidden")
	logger.Warn("refresh_failed", "source", "sheet")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info line written at warn level: %q", out)
	}
	if !strings.Contains(out, "refresh_failed") || !strings.Contains(out, "source=sheet") {
		t.Errorf("warn line missing: %q", out)
	}
}

func TestLedgerOptions(t *testing.T) {
	cfg := &config.Config{
		SeasonStartYear:  2025,
		SeasonStartMonth: time.August,
		GroupKey:         "date",
		BankPolicy:       "delta",
		StartingBank:     500,
		DefaultStake:     20,
	}

	opts := ledgerOptions(cfg)
	if opts.Key != ledger.KeyDate {
		t.Errorf("Key = %q, want date", opts.Key)
	}
	if opts.Bank.Policy != ledger.BankDelta || opts.Bank.StartingBank != 500 || opts.Bank.DefaultStake != 20 {
		t.Errorf("Bank = %+v", opts.Bank)
	}
	if opts.Season.Label() != "2025/2026" {
		t.Errorf("Season label = %q", opts.Season.Label())
	}
}

func TestOpenSource(t *testing.T) {
	cfg := &config.Config{
		DataSource:  config.SourceSheet,
		SheetID:     "abc",
		SheetName:   "season 2025/2026",
		SheetFormat: "csv",
		HTTPTimeout: time.Second,
	}
	src, bets, err := openSource(cfg)
	if err != nil {
		t.Fatalf("openSource(sheet) error = %v", err)
	}
	if bets != nil || src.Name() != "sheet" {
		t.Errorf("sheet source = %s, bets = %v", src.Name(), bets)
	}

	cfg.DataSource = config.SourceLocal
	cfg.DBPath = filepath.Join(t.TempDir(), "nested", "bets.db")
	src, bets, err = openSource(cfg)
	if err != nil {
		t.Fatalf("openSource(local) error = %v", err)
	}
	defer bets.Close()
	if src.Name() != "local" {
		t.Errorf("local source name = %s", src.Name())
	}
}
