// Command labregistry inspects a registry store from the command line. The
// status subcommand prints entity counts; the report subcommand runs one of
// the reporting queries and prints its rows as JSON.
//
// Storage selection follows the LABREGISTRY_STORAGE_DRIVER environment
// variable (memory, sqlite, or postgres).
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"labregistry/internal/core"
	"labregistry/internal/report"
)

var exitFunc = os.Exit

func main() {
	exitFunc(run(os.Args[1:]))
}

func run(args []string) int {
	if len(args) == 0 {
		usage()
		return 2
	}
	store, err := core.OpenPersistentStore(core.NewDefaultRulesEngine())
	if err != nil {
		fmt.Fprintf(os.Stderr, "open store: %v\n", err)
		return 1
	}
	defer closeStore(store)

	switch args[0] {
	case "status":
		return runStatus(store)
	case "report":
		return runReport(store, args[1:])
	default:
		usage()
		return 2
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage:
  labregistry status
  labregistry report most_published
  labregistry report average_publications_by_major
  labregistry report funded_projects_in_period -start YYYY-MM-DD -end YYYY-MM-DD
  labregistry report top_contributors_by_grant -grant <id> [-limit N]`)
}

func closeStore(store core.PersistentStore) {
	if closer, ok := store.(interface{ Close() error }); ok {
		_ = closer.Close()
	}
}

type statusSummary struct {
	Members      int            `json:"members"`
	Projects     int            `json:"projects"`
	Grants       int            `json:"grants"`
	Equipment    map[string]int `json:"equipment_by_status"`
	Publications int            `json:"publications"`
	Assignments  int            `json:"assignments"`
	Mentorships  int            `json:"mentorships"`
	UsageWindows int            `json:"usage_windows"`
}

func runStatus(store core.PersistentStore) int {
	summary := statusSummary{Equipment: make(map[string]int)}
	err := store.View(context.Background(), func(view core.TransactionView) error {
		summary.Members = len(view.ListMembers())
		summary.Projects = len(view.ListProjects())
		summary.Grants = len(view.ListGrants())
		summary.Publications = len(view.ListPublications())
		summary.Assignments = len(view.ListWorksOn())
		summary.Mentorships = len(view.ListMentors())
		summary.UsageWindows = len(view.ListUsesEquipment())
		for _, eq := range view.ListEquipment() {
			summary.Equipment[string(eq.Status)]++
		}
		return nil
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "status: %v\n", err)
		return 1
	}
	return printJSON(summary)
}

func runReport(store core.PersistentStore, args []string) int {
	if len(args) == 0 {
		usage()
		return 2
	}
	engine := report.NewEngine(store)
	ctx := context.Background()

	switch name := args[0]; name {
	case "most_published":
		rows, err := engine.MostPublished(ctx)
		return printReport(rows, err)
	case "average_publications_by_major":
		rows, err := engine.AveragePublicationsByMajor(ctx)
		return printReport(rows, err)
	case "funded_projects_in_period":
		fs := flag.NewFlagSet(name, flag.ContinueOnError)
		startArg := fs.String("start", "", "period start (YYYY-MM-DD)")
		endArg := fs.String("end", "", "period end (YYYY-MM-DD)")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}
		start, err := parseDate(*startArg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "invalid -start: %v\n", err)
			return 2
		}
		end, err := parseDate(*endArg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "invalid -end: %v\n", err)
			return 2
		}
		rows, err := engine.FundedProjectsInPeriod(ctx, start, end)
		return printReport(rows, err)
	case "top_contributors_by_grant":
		fs := flag.NewFlagSet(name, flag.ContinueOnError)
		grantID := fs.String("grant", "", "grant id")
		limit := fs.Int("limit", report.DefaultTopContributors, "ranking size")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}
		if *grantID == "" {
			fmt.Fprintln(os.Stderr, "-grant is required")
			return 2
		}
		rows, err := engine.TopContributorsByGrant(ctx, *grantID, *limit)
		return printReport(rows, err)
	default:
		usage()
		return 2
	}
}

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, fmt.Errorf("missing value")
	}
	return time.Parse("2006-01-02", s)
}

func printReport[T any](rows []T, err error) int {
	if err != nil {
		fmt.Fprintf(os.Stderr, "report: %v\n", err)
		return 1
	}
	return printJSON(rows)
}

func printJSON(v any) int {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(os.Stderr, "encode: %v\n", err)
		return 1
	}
	return 0
}
