package main

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/nao1215/navscout/internal/config"
	"github.com/nao1215/navscout/internal/database"
	"github.com/nao1215/navscout/internal/report"
)

func executeHistory(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	cmd := NewHistoryCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

// seedHistory stores one report and returns its run ID.
func seedHistory(t *testing.T, dbDir string) string {
	t.Helper()

	db, err := database.Open(dbDir, database.DefaultOptions())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()

	id, err := db.SaveReport(t.Context(), testReport())
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	return id
}

func TestHistoryList(t *testing.T) {
	t.Parallel()

	t.Run("no database yet", func(t *testing.T) {
		t.Parallel()

		out, err := executeHistory(t, "--db-dir", t.TempDir())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(out, "No exploration history found.") {
			t.Errorf("unexpected output: %q", out)
		}
	})

	t.Run("lists stored runs", func(t *testing.T) {
		t.Parallel()

		dbDir := t.TempDir()
		id := seedHistory(t, dbDir)

		out, err := executeHistory(t, "--db-dir", dbDir)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(out, "Exploration history (1 runs):") {
			t.Errorf("expected run count, got %q", out)
		}
		if !strings.Contains(out, shortID(id)) || !strings.Contains(out, "https://app.example.com") {
			t.Errorf("expected run row, got %q", out)
		}
	})

	t.Run("filters by domain", func(t *testing.T) {
		t.Parallel()

		dbDir := t.TempDir()
		seedHistory(t, dbDir)

		out, err := executeHistory(t, "https://other.example.com", "--db-dir", dbDir)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(out, "No exploration history found for https://other.example.com") {
			t.Errorf("unexpected output: %q", out)
		}
	})
}

func TestHistoryDomains(t *testing.T) {
	t.Parallel()

	t.Run("no database yet", func(t *testing.T) {
		t.Parallel()

		out, err := executeHistory(t, "domains", "--db-dir", t.TempDir())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(out, "No exploration history found.") {
			t.Errorf("unexpected output: %q", out)
		}
	})

	t.Run("lists each domain once", func(t *testing.T) {
		t.Parallel()

		dbDir := t.TempDir()
		seedHistory(t, dbDir)
		seedHistory(t, dbDir)

		out, err := executeHistory(t, "domains", "--db-dir", dbDir)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(out, "Explored domains (1):") {
			t.Errorf("expected one domain, got %q", out)
		}
		if strings.Count(out, "https://app.example.com") != 1 {
			t.Errorf("expected the domain listed once, got %q", out)
		}
	})
}

func TestHistoryShow(t *testing.T) {
	t.Parallel()

	t.Run("prints stored report by prefix", func(t *testing.T) {
		t.Parallel()

		dbDir := t.TempDir()
		id := seedHistory(t, dbDir)

		out, err := executeHistory(t, "show", id[:8], "--json", "--db-dir", dbDir)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		got, err := report.Decode(strings.NewReader(out))
		if err != nil {
			t.Fatalf("output is not a report: %v", err)
		}
		if got.ExplorationDomain != "https://app.example.com" || len(got.DiscoveredRoutes) != 2 {
			t.Errorf("unexpected report: %+v", got)
		}
	})

	t.Run("unknown run", func(t *testing.T) {
		t.Parallel()

		dbDir := t.TempDir()
		seedHistory(t, dbDir)

		_, err := executeHistory(t, "show", "zzzzzzzz", "--db-dir", dbDir)
		if !errors.Is(err, database.ErrRunNotFound) {
			t.Errorf("expected ErrRunNotFound, got %v", err)
		}
	})

	t.Run("no database yet", func(t *testing.T) {
		t.Parallel()

		_, err := executeHistory(t, "show", "anything", "--db-dir", t.TempDir())
		if !errors.Is(err, database.ErrRunNotFound) {
			t.Errorf("expected ErrRunNotFound, got %v", err)
		}
	})

	t.Run("conflicting formats", func(t *testing.T) {
		t.Parallel()

		_, err := executeHistory(t, "show", "anything", "--json", "--markdown", "--db-dir", t.TempDir())
		if !errors.Is(err, config.ErrConflictingReportFormats) {
			t.Errorf("expected ErrConflictingReportFormats, got %v", err)
		}
	})
}

func TestHistoryDelete(t *testing.T) {
	t.Parallel()

	dbDir := t.TempDir()
	id := seedHistory(t, dbDir)

	out, err := executeHistory(t, "delete", id, "--db-dir", dbDir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "Deleted run "+id) {
		t.Errorf("unexpected output: %q", out)
	}

	if _, err := executeHistory(t, "delete", id, "--db-dir", dbDir); !errors.Is(err, database.ErrRunNotFound) {
		t.Errorf("expected ErrRunNotFound on second delete, got %v", err)
	}
}
