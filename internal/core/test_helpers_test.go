package core

import (
	"context"
	"testing"
	"time"

	"labregistry/internal/infra/persistence/memory"
)

var testNow = time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestService(t *testing.T, opts ...ServiceOption) (*Service, *memory.Store) {
	t.Helper()
	store := memory.NewStore(NewDefaultRulesEngine())
	store.SetNowFunc(func() time.Time { return testNow })
	return NewService(store, opts...), store
}

func createFaculty(t *testing.T, svc *Service, name, department string) Member {
	t.Helper()
	member, _, err := svc.CreateMember(context.Background(), Member{Name: name, Kind: KindFaculty})
	if err != nil {
		t.Fatalf("create faculty %s: %v", name, err)
	}
	if _, _, err := svc.PutFacultyDetail(context.Background(), FacultyDetail{MemberID: member.ID, Department: department}); err != nil {
		t.Fatalf("faculty detail %s: %v", name, err)
	}
	return member
}

func createStudent(t *testing.T, svc *Service, name, major string) Member {
	t.Helper()
	member, _, err := svc.CreateMember(context.Background(), Member{Name: name, Kind: KindStudent})
	if err != nil {
		t.Fatalf("create student %s: %v", name, err)
	}
	detail := StudentDetail{MemberID: member.ID, StudentNumber: "S-" + member.ID[:6], Level: LevelGraduate, Major: major}
	if _, _, err := svc.PutStudentDetail(context.Background(), detail); err != nil {
		t.Fatalf("student detail %s: %v", name, err)
	}
	return member
}

func createCollaborator(t *testing.T, svc *Service, name, affiliation string) Member {
	t.Helper()
	member, _, err := svc.CreateMember(context.Background(), Member{Name: name, Kind: KindCollaborator})
	if err != nil {
		t.Fatalf("create collaborator %s: %v", name, err)
	}
	if _, _, err := svc.PutCollaboratorDetail(context.Background(), CollaboratorDetail{MemberID: member.ID, Affiliation: affiliation}); err != nil {
		t.Fatalf("collaborator detail %s: %v", name, err)
	}
	return member
}

func createEquipment(t *testing.T, svc *Service, name string) Equipment {
	t.Helper()
	equipment, _, err := svc.CreateEquipment(context.Background(), Equipment{Name: name, Type: "instrument", PurchaseDate: testNow.AddDate(-1, 0, 0)})
	if err != nil {
		t.Fatalf("create equipment %s: %v", name, err)
	}
	return equipment
}

func createProject(t *testing.T, svc *Service, title string) Project {
	t.Helper()
	project, _, err := svc.CreateProject(context.Background(), Project{
		Title:     title,
		StartDate: testNow.AddDate(0, -6, 0),
		Status:    ProjectActive,
	})
	if err != nil {
		t.Fatalf("create project %s: %v", title, err)
	}
	return project
}

func usageFor(memberID, equipmentID string) UsesEquipment {
	return UsesEquipment{
		MemberID:    memberID,
		EquipmentID: equipmentID,
		StartDate:   testNow.AddDate(0, 0, -1),
		Purpose:     "measurement",
	}
}
