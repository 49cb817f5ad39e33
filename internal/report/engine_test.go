package report

import (
	"context"
	"errors"
	"testing"
	"time"

	"labregistry/internal/infra/persistence/memory"
	"labregistry/pkg/domain"
)

var reportNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

type fixture struct {
	store  *memory.Store
	engine *Engine
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore(nil)
	store.SetNowFunc(func() time.Time { return reportNow })
	return &fixture{store: store, engine: NewEngine(store)}
}

func (f *fixture) run(t *testing.T, fn func(tx domain.Transaction) error) {
	t.Helper()
	if _, err := f.store.RunInTransaction(context.Background(), fn); err != nil {
		t.Fatalf("seed transaction: %v", err)
	}
}

func (f *fixture) addMember(t *testing.T, id, name string, kind domain.MemberKind) {
	f.run(t, func(tx domain.Transaction) error {
		_, err := tx.CreateMember(domain.Member{Base: domain.Base{ID: id}, Name: name, Kind: kind})
		return err
	})
}

func (f *fixture) addStudent(t *testing.T, id, name, major string) {
	f.addMember(t, id, name, domain.KindStudent)
	f.run(t, func(tx domain.Transaction) error {
		_, err := tx.CreateStudentDetail(domain.StudentDetail{
			MemberID:      id,
			StudentNumber: "S-" + id,
			Level:         domain.LevelGraduate,
			Major:         major,
		})
		return err
	})
}

func (f *fixture) addPublications(t *testing.T, memberID string, n int) {
	for i := 0; i < n; i++ {
		f.run(t, func(tx domain.Transaction) error {
			pub, err := tx.CreatePublication(domain.Publication{Title: "Paper", PubDate: reportNow, Venue: "J"})
			if err != nil {
				return err
			}
			_, err = tx.CreateAuthors(domain.Authors{MemberID: memberID, PublicationID: pub.ID})
			return err
		})
	}
}

func TestMostPublished(t *testing.T) {
	f := newFixture(t)
	f.addMember(t, "m1", "Bea", domain.KindFaculty)
	f.addMember(t, "m2", "Abe", domain.KindStudent)
	f.addMember(t, "m3", "Cy", domain.KindStudent)
	f.addPublications(t, "m1", 3)
	f.addPublications(t, "m2", 3)
	f.addPublications(t, "m3", 1)

	got, err := f.engine.MostPublished(context.Background())
	if err != nil {
		t.Fatalf("most published: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 tied members, got %d", len(got))
	}
	// Ties resolve by name.
	if got[0].Name != "Abe" || got[1].Name != "Bea" {
		t.Fatalf("unexpected order: %+v", got)
	}
	if got[0].Publications != 3 {
		t.Fatalf("count = %d, want 3", got[0].Publications)
	}
}

func TestMostPublishedAllTieAtZeroWithoutAuthorship(t *testing.T) {
	f := newFixture(t)
	f.addMember(t, "m1", "Quiet", domain.KindStudent)
	f.addMember(t, "m2", "Silent", domain.KindFaculty)

	got, err := f.engine.MostPublished(context.Background())
	if err != nil {
		t.Fatalf("most published: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected every member at the zero maximum, got %+v", got)
	}
	if got[0].Publications != 0 || got[1].Publications != 0 {
		t.Fatalf("expected zero counts, got %+v", got)
	}
}

func TestMostPublishedEmptyStore(t *testing.T) {
	f := newFixture(t)

	got, err := f.engine.MostPublished(context.Background())
	if err != nil {
		t.Fatalf("most published: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no rows, got %+v", got)
	}
}

func TestPublicationCountsIncludesZero(t *testing.T) {
	f := newFixture(t)
	f.addMember(t, "m1", "Zero", domain.KindStudent)
	f.addMember(t, "m2", "One", domain.KindStudent)
	f.addPublications(t, "m2", 1)

	got, err := f.engine.PublicationCounts(context.Background())
	if err != nil {
		t.Fatalf("counts: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected counts for every member, got %d", len(got))
	}
	if got[0].MemberID != "m1" || got[0].Publications != 0 {
		t.Fatalf("unexpected first row: %+v", got[0])
	}
	if got[1].Publications != 1 {
		t.Fatalf("unexpected second row: %+v", got[1])
	}
}

func TestAveragePublicationsByMajor(t *testing.T) {
	f := newFixture(t)
	f.addStudent(t, "s1", "A", "Physics")
	f.addStudent(t, "s2", "B", "Physics")
	f.addStudent(t, "s3", "C", "Physics")
	f.addStudent(t, "s4", "D", "History")
	f.addPublications(t, "s1", 2)
	f.addPublications(t, "s2", 2)
	f.addPublications(t, "s3", 1)
	f.addPublications(t, "s4", 1)

	got, err := f.engine.AveragePublicationsByMajor(context.Background())
	if err != nil {
		t.Fatalf("averages: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 majors, got %d", len(got))
	}
	// Physics averages (2+2+1)/3 = 1.67 after rounding.
	if got[0].Major != "Physics" || got[0].Average != 1.67 {
		t.Fatalf("unexpected first row: %+v", got[0])
	}
	if got[0].Students != 3 || got[0].Publications != 5 {
		t.Fatalf("unexpected Physics aggregates: %+v", got[0])
	}
	if got[1].Major != "History" || got[1].Average != 1 {
		t.Fatalf("unexpected second row: %+v", got[1])
	}
	if got[1].Students != 1 || got[1].Publications != 1 {
		t.Fatalf("unexpected History aggregates: %+v", got[1])
	}
}

func TestAveragePublicationsByMajorOrdersTiesByName(t *testing.T) {
	f := newFixture(t)
	f.addStudent(t, "s1", "A", "Zoology")
	f.addStudent(t, "s2", "B", "Botany")
	f.addPublications(t, "s1", 1)
	f.addPublications(t, "s2", 1)

	got, err := f.engine.AveragePublicationsByMajor(context.Background())
	if err != nil {
		t.Fatalf("averages: %v", err)
	}
	if got[0].Major != "Botany" || got[1].Major != "Zoology" {
		t.Fatalf("unexpected tie order: %+v", got)
	}
}

func TestFundedProjectsInPeriod(t *testing.T) {
	f := newFixture(t)

	addProject := func(id string, start time.Time, end *time.Time) {
		f.run(t, func(tx domain.Transaction) error {
			_, err := tx.CreateProject(domain.Project{
				Base:      domain.Base{ID: id},
				Title:     id,
				StartDate: start,
				EndDate:   end,
				Status:    domain.ProjectActive,
			})
			return err
		})
	}
	fund := func(projectID, source string) {
		f.run(t, func(tx domain.Transaction) error {
			grant, err := tx.CreateGrant(domain.Grant{Source: source, Budget: 10, StartDate: reportNow, DurationMonths: 12})
			if err != nil {
				return err
			}
			_, err = tx.CreateFunds(domain.Funds{GrantID: grant.ID, ProjectID: projectID})
			return err
		})
	}

	earlyEnd := reportNow.AddDate(-1, 0, 0)
	addProject("p-ended-before", reportNow.AddDate(-2, 0, 0), &earlyEnd)
	addProject("p-open", reportNow.AddDate(0, -3, 0), nil)
	addProject("p-later", reportNow.AddDate(0, 6, 0), nil)
	addProject("p-unfunded", reportNow.AddDate(0, -3, 0), nil)
	fund("p-ended-before", "NSF")
	fund("p-open", "NSF")
	fund("p-open", "DOE")
	fund("p-open", "NSF")
	fund("p-later", "NSF")

	start := reportNow.AddDate(0, -1, 0)
	end := reportNow.AddDate(0, 1, 0)
	got, err := f.engine.FundedProjectsInPeriod(context.Background(), start, end)
	if err != nil {
		t.Fatalf("funded projects: %v", err)
	}
	if len(got) != 1 || got[0].ProjectID != "p-open" {
		t.Fatalf("unexpected result: %+v", got)
	}
	// Two NSF grants collapse to one source entry, sorted.
	if len(got[0].GrantSources) != 2 || got[0].GrantSources[0] != "DOE" || got[0].GrantSources[1] != "NSF" {
		t.Fatalf("unexpected grant sources: %+v", got[0].GrantSources)
	}

	// A project ending exactly at the period start still intersects, and
	// results order by title.
	boundaryEnd := start
	addProject("p-boundary", reportNow.AddDate(-1, 0, 0), &boundaryEnd)
	fund("p-boundary", "NIH")
	got, err = f.engine.FundedProjectsInPeriod(context.Background(), start, end)
	if err != nil {
		t.Fatalf("funded projects: %v", err)
	}
	if len(got) != 2 || got[0].ProjectID != "p-boundary" || got[1].ProjectID != "p-open" {
		t.Fatalf("boundary project missing or misordered: %+v", got)
	}
	if len(got[0].GrantSources) != 1 || got[0].GrantSources[0] != "NIH" {
		t.Fatalf("unexpected boundary sources: %+v", got[0].GrantSources)
	}

	var dre domain.DateRangeError
	if _, err := f.engine.FundedProjectsInPeriod(context.Background(), end, start); !errors.As(err, &dre) {
		t.Fatalf("reversed period must fail with DateRangeError, got %v", err)
	}
}

func TestTopContributorsByGrant(t *testing.T) {
	f := newFixture(t)

	var grantID, projectID string
	f.run(t, func(tx domain.Transaction) error {
		project, err := tx.CreateProject(domain.Project{Title: "Funded", StartDate: reportNow, Status: domain.ProjectActive})
		if err != nil {
			return err
		}
		projectID = project.ID
		grant, err := tx.CreateGrant(domain.Grant{Source: "DOE", Budget: 500, StartDate: reportNow, DurationMonths: 24})
		if err != nil {
			return err
		}
		grantID = grant.ID
		_, err = tx.CreateFunds(domain.Funds{GrantID: grantID, ProjectID: projectID})
		return err
	})

	members := []struct {
		id   string
		pubs int
	}{
		{"c1", 5}, {"c2", 2}, {"c3", 2}, {"c4", 1},
	}
	for _, m := range members {
		f.addMember(t, m.id, "Member "+m.id, domain.KindStudent)
		f.run(t, func(tx domain.Transaction) error {
			_, err := tx.CreateWorksOn(domain.WorksOn{MemberID: m.id, ProjectID: projectID, Role: "RA", WeeklyHours: 8})
			return err
		})
		f.addPublications(t, m.id, m.pubs)
	}
	// A prolific member outside the grant team must not appear.
	f.addMember(t, "outsider", "Outsider", domain.KindFaculty)
	f.addPublications(t, "outsider", 9)

	got, err := f.engine.TopContributorsByGrant(context.Background(), grantID, 0)
	if err != nil {
		t.Fatalf("top contributors: %v", err)
	}
	if len(got) != DefaultTopContributors {
		t.Fatalf("expected %d rows, got %d", DefaultTopContributors, len(got))
	}
	if got[0].MemberID != "c1" {
		t.Fatalf("unexpected leader: %+v", got[0])
	}
	// c2 and c3 tie; ascending member id decides.
	if got[1].MemberID != "c2" || got[2].MemberID != "c3" {
		t.Fatalf("tie not broken by member id: %+v", got)
	}

	all, err := f.engine.TopContributorsByGrant(context.Background(), grantID, 10)
	if err != nil {
		t.Fatalf("top contributors: %v", err)
	}
	if len(all) != 4 {
		t.Fatalf("expected full team with larger limit, got %d", len(all))
	}

	if _, err := f.engine.TopContributorsByGrant(context.Background(), "missing", 3); !domain.IsNotFound(err) {
		t.Fatalf("expected NotFoundError for unknown grant, got %v", err)
	}
}
