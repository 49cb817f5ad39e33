// Package report computes read-only aggregations over the registry store.
// Every report runs against a single consistent snapshot so no result mixes
// state from before and after a concurrent mutation.
package report

import (
	"context"
	"math"
	"sort"
	"time"

	"labregistry/pkg/domain"
)

// Engine evaluates reporting queries against a persistent store.
type Engine struct {
	store domain.PersistentStore
}

// NewEngine constructs a reporting engine over the supplied store.
func NewEngine(store domain.PersistentStore) *Engine {
	return &Engine{store: store}
}

// MemberPublicationCount pairs a member with the number of publications it
// authored.
type MemberPublicationCount struct {
	MemberID     string `json:"member_id"`
	Name         string `json:"name"`
	Publications int    `json:"publications"`
}

// MajorAverage reports the publication output of the students of one major:
// how many students it has, their combined publication count, and the mean.
type MajorAverage struct {
	Major        string  `json:"major"`
	Students     int     `json:"students"`
	Publications int     `json:"publications"`
	Average      float64 `json:"average"`
}

// FundedProject is a project holding at least one funding link, together with
// the distinct sources of the grants funding it.
type FundedProject struct {
	ProjectID    string     `json:"project_id"`
	Title        string     `json:"title"`
	Status       string     `json:"status"`
	StartDate    time.Time  `json:"start_date"`
	EndDate      *time.Time `json:"end_date,omitempty"`
	GrantSources []string   `json:"grant_sources"`
}

// MostPublished returns the members holding the maximum publication count.
// Every member participates, so with no authorship rows all members tie at
// zero. When several members tie for the maximum, all are returned ordered by
// name, then by member id.
func (e *Engine) MostPublished(ctx context.Context) ([]MemberPublicationCount, error) {
	var out []MemberPublicationCount
	err := e.store.View(ctx, func(view domain.TransactionView) error {
		counts := make(map[string]int)
		for _, a := range view.ListAuthors() {
			counts[a.MemberID]++
		}
		members := view.ListMembers()
		max := 0
		for _, member := range members {
			if counts[member.ID] > max {
				max = counts[member.ID]
			}
		}
		for _, member := range members {
			if counts[member.ID] != max {
				continue
			}
			out = append(out, MemberPublicationCount{
				MemberID:     member.ID,
				Name:         member.Name,
				Publications: max,
			})
		}
		sort.Slice(out, func(i, j int) bool {
			if out[i].Name != out[j].Name {
				return out[i].Name < out[j].Name
			}
			return out[i].MemberID < out[j].MemberID
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// PublicationCounts returns the publication count for every member, including
// members with zero publications, ordered by member id.
func (e *Engine) PublicationCounts(ctx context.Context) ([]MemberPublicationCount, error) {
	var out []MemberPublicationCount
	err := e.store.View(ctx, func(view domain.TransactionView) error {
		counts := make(map[string]int)
		for _, a := range view.ListAuthors() {
			counts[a.MemberID]++
		}
		for _, member := range view.ListMembers() {
			out = append(out, MemberPublicationCount{
				MemberID:     member.ID,
				Name:         member.Name,
				Publications: counts[member.ID],
			})
		}
		sort.Slice(out, func(i, j int) bool { return out[i].MemberID < out[j].MemberID })
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// AveragePublicationsByMajor computes the mean publication count per student
// major, rounded to two decimal places. Students with no publications count
// as zero. Results are ordered by descending average, then by major name.
func (e *Engine) AveragePublicationsByMajor(ctx context.Context) ([]MajorAverage, error) {
	var out []MajorAverage
	err := e.store.View(ctx, func(view domain.TransactionView) error {
		counts := make(map[string]int)
		for _, a := range view.ListAuthors() {
			counts[a.MemberID]++
		}
		totals := make(map[string]int)
		students := make(map[string]int)
		for _, detail := range view.ListStudentDetails() {
			students[detail.Major]++
			totals[detail.Major] += counts[detail.MemberID]
		}
		for major, n := range students {
			avg := float64(totals[major]) / float64(n)
			out = append(out, MajorAverage{
				Major:        major,
				Students:     n,
				Publications: totals[major],
				Average:      math.Round(avg*100) / 100,
			})
		}
		sort.Slice(out, func(i, j int) bool {
			if out[i].Average != out[j].Average {
				return out[i].Average > out[j].Average
			}
			return out[i].Major < out[j].Major
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// FundedProjectsInPeriod returns the projects that hold at least one funding
// link and whose [start, end-or-open] interval intersects the supplied
// period, each with the distinct sources of its funding grants. Results are
// ordered by project title, then by project id.
func (e *Engine) FundedProjectsInPeriod(ctx context.Context, start, end time.Time) ([]FundedProject, error) {
	if end.Before(start) {
		return nil, domain.DateRangeError{Entity: domain.EntityProject, Reason: "period end before start"}
	}
	var out []FundedProject
	err := e.store.View(ctx, func(view domain.TransactionView) error {
		sources := make(map[string]map[string]bool)
		for _, f := range view.ListFunds() {
			grant, ok := view.FindGrant(f.GrantID)
			if !ok {
				continue
			}
			if sources[f.ProjectID] == nil {
				sources[f.ProjectID] = make(map[string]bool)
			}
			sources[f.ProjectID][grant.Source] = true
		}
		for _, project := range view.ListProjects() {
			if sources[project.ID] == nil {
				continue
			}
			if project.StartDate.After(end) {
				continue
			}
			if project.EndDate != nil && project.EndDate.Before(start) {
				continue
			}
			distinct := make([]string, 0, len(sources[project.ID]))
			for source := range sources[project.ID] {
				distinct = append(distinct, source)
			}
			sort.Strings(distinct)
			out = append(out, FundedProject{
				ProjectID:    project.ID,
				Title:        project.Title,
				Status:       string(project.Status),
				StartDate:    project.StartDate,
				EndDate:      project.EndDate,
				GrantSources: distinct,
			})
		}
		sort.Slice(out, func(i, j int) bool {
			if out[i].Title != out[j].Title {
				return out[i].Title < out[j].Title
			}
			return out[i].ProjectID < out[j].ProjectID
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// DefaultTopContributors is the ranking size used when the caller passes a
// non-positive limit.
const DefaultTopContributors = 3

// TopContributorsByGrant ranks the members working on projects funded by the
// grant by publication count, descending. Ties are broken by ascending member
// id so repeated calls over unchanged data return identical orderings. A
// non-positive limit means DefaultTopContributors.
func (e *Engine) TopContributorsByGrant(ctx context.Context, grantID string, limit int) ([]MemberPublicationCount, error) {
	if limit <= 0 {
		limit = DefaultTopContributors
	}
	var out []MemberPublicationCount
	err := e.store.View(ctx, func(view domain.TransactionView) error {
		if _, ok := view.FindGrant(grantID); !ok {
			return domain.NotFoundError{Entity: domain.EntityGrant, ID: grantID}
		}
		fundedProjects := make(map[string]bool)
		for _, f := range view.ListFunds() {
			if f.GrantID == grantID {
				fundedProjects[f.ProjectID] = true
			}
		}
		team := make(map[string]bool)
		for _, w := range view.ListWorksOn() {
			if fundedProjects[w.ProjectID] {
				team[w.MemberID] = true
			}
		}
		counts := make(map[string]int)
		for _, a := range view.ListAuthors() {
			if team[a.MemberID] {
				counts[a.MemberID]++
			}
		}
		for memberID := range team {
			member, ok := view.FindMember(memberID)
			if !ok {
				continue
			}
			out = append(out, MemberPublicationCount{
				MemberID:     member.ID,
				Name:         member.Name,
				Publications: counts[memberID],
			})
		}
		sort.Slice(out, func(i, j int) bool {
			if out[i].Publications != out[j].Publications {
				return out[i].Publications > out[j].Publications
			}
			return out[i].MemberID < out[j].MemberID
		})
		if len(out) > limit {
			out = out[:limit]
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
