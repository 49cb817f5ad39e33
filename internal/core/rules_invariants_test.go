package core

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"labregistry/pkg/domain"
)

func TestProjectLeaderMustBeFaculty(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	faculty := createFaculty(t, svc, "Dr. Chen", "Physics")
	student := createStudent(t, svc, "Ada", "CS")
	collab := createCollaborator(t, svc, "Remote Rita", "Partner Lab")
	project := createProject(t, svc, "Microscopy")

	if _, _, err := svc.AssignProjectLeader(ctx, project.ID, faculty.ID); err != nil {
		t.Fatalf("faculty leader rejected: %v", err)
	}
	if _, _, err := svc.AssignProjectLeader(ctx, project.ID, student.ID); !errors.Is(err, domain.ErrInvalidLeader) {
		t.Fatalf("expected ErrInvalidLeader for student, got %v", err)
	}
	if _, _, err := svc.AssignProjectLeader(ctx, project.ID, collab.ID); !errors.Is(err, domain.ErrInvalidLeader) {
		t.Fatalf("expected ErrInvalidLeader for collaborator, got %v", err)
	}

	// Rejections must not clobber the committed leader.
	stored, err := svc.GetProject(ctx, project.ID)
	if err != nil {
		t.Fatalf("get project: %v", err)
	}
	if stored.LeaderID == nil || *stored.LeaderID != faculty.ID {
		t.Fatalf("leader changed by rejected assignment: %+v", stored.LeaderID)
	}

	if _, _, err := svc.ClearProjectLeader(ctx, project.ID); err != nil {
		t.Fatalf("clearing leader must always succeed: %v", err)
	}
}

func TestEquipmentCapacityFourthUserRejected(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	equipment := createEquipment(t, svc, "spectrometer")
	members := make([]Member, 4)
	for i, name := range []string{"u1", "u2", "u3", "u4"} {
		members[i] = createStudent(t, svc, name, "Bio")
	}
	for i := 0; i < 3; i++ {
		if _, _, err := svc.RecordEquipmentUsage(ctx, usageFor(members[i].ID, equipment.ID)); err != nil {
			t.Fatalf("usage %d rejected: %v", i, err)
		}
	}
	if _, _, err := svc.RecordEquipmentUsage(ctx, usageFor(members[3].ID, equipment.ID)); !errors.Is(err, domain.ErrEquipmentAtCapacity) {
		t.Fatalf("expected ErrEquipmentAtCapacity, got %v", err)
	}

	// The three committed rows stay intact.
	usage := svc.Store().ListUsesEquipment()
	if len(usage) != 3 {
		t.Fatalf("expected 3 usage rows after rejection, got %d", len(usage))
	}
}

func TestEquipmentCapacityIgnoresClosedWindows(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	equipment := createEquipment(t, svc, "sequencer")
	var rows []UsesEquipment
	for _, name := range []string{"a", "b", "c"} {
		member := createStudent(t, svc, name, "Bio")
		row, _, err := svc.RecordEquipmentUsage(ctx, usageFor(member.ID, equipment.ID))
		if err != nil {
			t.Fatalf("usage for %s: %v", name, err)
		}
		rows = append(rows, row)
	}
	if _, _, err := svc.EndEquipmentUsage(ctx, rows[0].ID, testNow.AddDate(0, 0, -1)); err != nil {
		t.Fatalf("end usage: %v", err)
	}
	member := createStudent(t, svc, "d", "Bio")
	if _, _, err := svc.RecordEquipmentUsage(ctx, usageFor(member.ID, equipment.ID)); err != nil {
		t.Fatalf("slot freed by ended window, still rejected: %v", err)
	}
}

func TestEquipmentCapacityConcurrentRace(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	equipment := createEquipment(t, svc, "laser")
	m1 := createStudent(t, svc, "first", "Phys")
	m2 := createStudent(t, svc, "second", "Phys")
	if _, _, err := svc.RecordEquipmentUsage(ctx, usageFor(m1.ID, equipment.ID)); err != nil {
		t.Fatalf("seed usage 1: %v", err)
	}
	if _, _, err := svc.RecordEquipmentUsage(ctx, usageFor(m2.ID, equipment.ID)); err != nil {
		t.Fatalf("seed usage 2: %v", err)
	}

	r1 := createStudent(t, svc, "racer-a", "Phys")
	r2 := createStudent(t, svc, "racer-b", "Phys")
	r3 := createStudent(t, svc, "racer-c", "Phys")

	var wg sync.WaitGroup
	errs := make([]error, 3)
	for i, member := range []Member{r1, r2, r3} {
		wg.Add(1)
		go func(i int, memberID string) {
			defer wg.Done()
			_, _, err := svc.RecordEquipmentUsage(ctx, usageFor(memberID, equipment.ID))
			errs[i] = err
		}(i, member.ID)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, domain.ErrEquipmentAtCapacity):
		default:
			t.Fatalf("unexpected race error: %v", err)
		}
	}
	if succeeded != 1 {
		t.Fatalf("exactly one racer should win the third slot, got %d", succeeded)
	}
	usage := svc.Store().ListUsesEquipment()
	if len(usage) != 3 {
		t.Fatalf("committed usage rows = %d, want 3", len(usage))
	}
}

func TestMentorshipExclusivity(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	mentorA := createFaculty(t, svc, "Prof. A", "Math")
	mentorB := createFaculty(t, svc, "Prof. B", "Math")
	mentee := createStudent(t, svc, "Mentee", "Math")

	first, _, err := svc.BeginMentorship(ctx, Mentors{MentorID: mentorA.ID, MenteeID: mentee.ID})
	if err != nil {
		t.Fatalf("first mentorship: %v", err)
	}
	if _, _, err := svc.BeginMentorship(ctx, Mentors{MentorID: mentorB.ID, MenteeID: mentee.ID}); !errors.Is(err, domain.ErrMenteeAlreadyMentored) {
		t.Fatalf("expected ErrMenteeAlreadyMentored, got %v", err)
	}

	// The original mentorship stays active.
	rows := svc.Store().ListMentors()
	if len(rows) != 1 || rows[0].ID != first.ID || !rows[0].ActiveAt(testNow) {
		t.Fatalf("surviving mentorship corrupted: %+v", rows)
	}

	// Ending the active mentorship frees the mentee.
	if _, _, err := svc.EndMentorship(ctx, first.ID, testNow.AddDate(0, 0, -1)); err != nil {
		t.Fatalf("end mentorship: %v", err)
	}
	if _, _, err := svc.BeginMentorship(ctx, Mentors{MentorID: mentorB.ID, MenteeID: mentee.ID}); err != nil {
		t.Fatalf("mentorship after predecessor ended: %v", err)
	}
}

func TestMentorshipHierarchy(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	faculty := createFaculty(t, svc, "Prof", "Chem")
	student := createStudent(t, svc, "Grad", "Chem")

	if _, _, err := svc.BeginMentorship(ctx, Mentors{MentorID: student.ID, MenteeID: faculty.ID}); !errors.Is(err, domain.ErrInvalidMentorshipDirection) {
		t.Fatalf("expected ErrInvalidMentorshipDirection, got %v", err)
	}
	if _, _, err := svc.BeginMentorship(ctx, Mentors{MentorID: faculty.ID, MenteeID: student.ID}); err != nil {
		t.Fatalf("faculty to student mentorship rejected: %v", err)
	}
}

func TestDetailKindMismatchBlocked(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	student := createStudent(t, svc, "Sam", "EE")
	if _, _, err := svc.PutFacultyDetail(ctx, FacultyDetail{MemberID: student.ID, Department: "EE"}); !errors.Is(err, domain.ErrMemberKindMismatch) {
		t.Fatalf("expected ErrMemberKindMismatch, got %v", err)
	}

	faculty := createFaculty(t, svc, "Dr. K", "EE")
	if _, _, err := svc.PutStudentDetail(ctx, StudentDetail{MemberID: faculty.ID, StudentNumber: "X", Level: LevelSenior, Major: "EE"}); !errors.Is(err, domain.ErrMemberKindMismatch) {
		t.Fatalf("expected ErrMemberKindMismatch for student detail on faculty, got %v", err)
	}
	if _, _, err := svc.PutCollaboratorDetail(ctx, CollaboratorDetail{MemberID: faculty.ID, Affiliation: "elsewhere"}); !errors.Is(err, domain.ErrMemberKindMismatch) {
		t.Fatalf("expected ErrMemberKindMismatch for collaborator detail on faculty, got %v", err)
	}
}

func TestEquipmentStatusDerivation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	equipment := createEquipment(t, svc, "centrifuge")
	if equipment.Status != EquipmentAvailable {
		t.Fatalf("new equipment should start Available, got %s", equipment.Status)
	}

	member := createStudent(t, svc, "operator", "Bio")
	row, _, err := svc.RecordEquipmentUsage(ctx, usageFor(member.ID, equipment.ID))
	if err != nil {
		t.Fatalf("record usage: %v", err)
	}
	got, err := svc.GetEquipment(ctx, equipment.ID)
	if err != nil {
		t.Fatalf("get equipment: %v", err)
	}
	if got.Status != EquipmentInUse {
		t.Fatalf("equipment with current usage should be InUse, got %s", got.Status)
	}

	if _, _, err := svc.EndEquipmentUsage(ctx, row.ID, testNow.AddDate(0, 0, -1)); err != nil {
		t.Fatalf("end usage: %v", err)
	}
	got, _ = svc.GetEquipment(ctx, equipment.ID)
	if got.Status != EquipmentAvailable {
		t.Fatalf("equipment without current usage should revert to Available, got %s", got.Status)
	}

	// Retirement is sticky across usage churn.
	if _, _, err := svc.RetireEquipment(ctx, equipment.ID); err != nil {
		t.Fatalf("retire: %v", err)
	}
	if _, _, err := svc.RecordEquipmentUsage(ctx, usageFor(member.ID, equipment.ID)); err != nil {
		t.Fatalf("usage on retired equipment: %v", err)
	}
	got, _ = svc.GetEquipment(ctx, equipment.ID)
	if got.Status != EquipmentRetired {
		t.Fatalf("Retired must be terminal, got %s", got.Status)
	}
}

func TestCapacityJudgedAtInjectedClock(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	equipment := createEquipment(t, svc, "telescope")
	for _, name := range []string{"n1", "n2", "n3"} {
		member := createStudent(t, svc, name, "Astro")
		usage := usageFor(member.ID, equipment.ID)
		end := testNow.AddDate(0, 0, 7)
		usage.EndDate = &end
		if _, _, err := svc.RecordEquipmentUsage(ctx, usage); err != nil {
			t.Fatalf("usage for %s: %v", name, err)
		}
	}

	// Advance the clock past every window; all three rows become historical.
	store.SetNowFunc(func() time.Time { return testNow.AddDate(0, 1, 0) })
	member := createStudent(t, svc, "later", "Astro")
	usage := UsesEquipment{
		MemberID:    member.ID,
		EquipmentID: equipment.ID,
		StartDate:   testNow.AddDate(0, 1, -1),
		Purpose:     "observation",
	}
	if _, _, err := svc.RecordEquipmentUsage(ctx, usage); err != nil {
		t.Fatalf("historical rows must not count against capacity: %v", err)
	}
}
