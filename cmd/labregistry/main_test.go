package main

import (
	"testing"
	"time"
)

func TestRunStatusWithMemoryDriver(t *testing.T) {
	t.Setenv("LABREGISTRY_STORAGE_DRIVER", "memory")

	if code := run([]string{"status"}); code != 0 {
		t.Fatalf("status exit code = %d", code)
	}
}

func TestRunReportSubcommands(t *testing.T) {
	t.Setenv("LABREGISTRY_STORAGE_DRIVER", "memory")

	if code := run([]string{"report", "most_published"}); code != 0 {
		t.Fatalf("most_published exit code = %d", code)
	}
	if code := run([]string{"report", "average_publications_by_major"}); code != 0 {
		t.Fatalf("average_publications_by_major exit code = %d", code)
	}
	if code := run([]string{"report", "funded_projects_in_period", "-start", "2024-01-01", "-end", "2024-12-31"}); code != 0 {
		t.Fatalf("funded_projects_in_period exit code = %d", code)
	}
}

func TestRunRejectsBadInput(t *testing.T) {
	t.Setenv("LABREGISTRY_STORAGE_DRIVER", "memory")

	if code := run(nil); code != 2 {
		t.Fatalf("missing subcommand exit code = %d", code)
	}
	if code := run([]string{"explode"}); code != 2 {
		t.Fatalf("unknown subcommand exit code = %d", code)
	}
	if code := run([]string{"report", "funded_projects_in_period", "-start", "bad", "-end", "2024-12-31"}); code != 2 {
		t.Fatalf("bad date exit code = %d", code)
	}
	if code := run([]string{"report", "top_contributors_by_grant"}); code != 2 {
		t.Fatalf("missing grant exit code = %d", code)
	}
	if code := run([]string{"report", "top_contributors_by_grant", "-grant", "missing"}); code != 1 {
		t.Fatalf("unknown grant exit code = %d", code)
	}
}

func TestParseDate(t *testing.T) {
	got, err := parseDate("2024-06-01")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	want := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	if !got.Equal(want) {
		t.Fatalf("parsed %v, want %v", got, want)
	}
	if _, err := parseDate(""); err == nil {
		t.Fatalf("empty date must fail")
	}
}
