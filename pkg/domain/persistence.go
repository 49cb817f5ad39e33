package domain

import "context"

// Transaction exposes the domain operations that a persistence implementation
// must support within an atomic scope. Detail rows are keyed by member ID;
// relationship rows carry their own generated IDs.
type Transaction interface {
	Snapshot() TransactionView

	CreateMember(Member) (Member, error)
	UpdateMember(id string, mutator func(*Member) error) (Member, error)
	DeleteMember(id string) error

	CreateFacultyDetail(FacultyDetail) (FacultyDetail, error)
	UpdateFacultyDetail(memberID string, mutator func(*FacultyDetail) error) (FacultyDetail, error)
	DeleteFacultyDetail(memberID string) error
	CreateStudentDetail(StudentDetail) (StudentDetail, error)
	UpdateStudentDetail(memberID string, mutator func(*StudentDetail) error) (StudentDetail, error)
	DeleteStudentDetail(memberID string) error
	CreateCollaboratorDetail(CollaboratorDetail) (CollaboratorDetail, error)
	UpdateCollaboratorDetail(memberID string, mutator func(*CollaboratorDetail) error) (CollaboratorDetail, error)
	DeleteCollaboratorDetail(memberID string) error

	CreateProject(Project) (Project, error)
	UpdateProject(id string, mutator func(*Project) error) (Project, error)
	DeleteProject(id string) error

	CreateGrant(Grant) (Grant, error)
	UpdateGrant(id string, mutator func(*Grant) error) (Grant, error)
	DeleteGrant(id string) error

	CreateEquipment(Equipment) (Equipment, error)
	UpdateEquipment(id string, mutator func(*Equipment) error) (Equipment, error)
	DeleteEquipment(id string) error

	CreatePublication(Publication) (Publication, error)
	UpdatePublication(id string, mutator func(*Publication) error) (Publication, error)
	DeletePublication(id string) error

	CreateWorksOn(WorksOn) (WorksOn, error)
	UpdateWorksOn(id string, mutator func(*WorksOn) error) (WorksOn, error)
	DeleteWorksOn(id string) error
	FindWorksOnByPair(memberID, projectID string) (WorksOn, bool)

	CreateFunds(Funds) (Funds, error)
	DeleteFunds(id string) error
	FindFundsByPair(grantID, projectID string) (Funds, bool)

	CreateMentors(Mentors) (Mentors, error)
	UpdateMentors(id string, mutator func(*Mentors) error) (Mentors, error)
	DeleteMentors(id string) error

	CreateUsesEquipment(UsesEquipment) (UsesEquipment, error)
	UpdateUsesEquipment(id string, mutator func(*UsesEquipment) error) (UsesEquipment, error)
	DeleteUsesEquipment(id string) error

	CreateAuthors(Authors) (Authors, error)
	DeleteAuthors(id string) error
	FindAuthorsByPair(memberID, publicationID string) (Authors, bool)
}

// TransactionView provides read-only access to snapshot data for rules and
// reporting. It shares the RuleView surface.
type TransactionView = RuleView

// PersistentStore is a minimal abstraction over durable backends. It mirrors
// the subset of store capabilities used directly by higher layers.
type PersistentStore interface {
	RunInTransaction(ctx context.Context, fn func(Transaction) error) (Result, error)
	View(ctx context.Context, fn func(TransactionView) error) error
	GetMember(id string) (Member, bool)
	ListMembers() []Member
	GetProject(id string) (Project, bool)
	ListProjects() []Project
	GetEquipment(id string) (Equipment, bool)
	ListEquipment() []Equipment
	ListGrants() []Grant
	ListPublications() []Publication
	ListWorksOn() []WorksOn
	ListMentors() []Mentors
	ListUsesEquipment() []UsesEquipment
}
