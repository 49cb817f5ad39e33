// Package memory provides the in-memory transactional store for the lab
// registry domain. Durable backends embed this store and snapshot its state.
package memory

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"labregistry/pkg/domain"
)

// Aliases keep method signatures concise while exposing domain types from
// this infra package.
type (
	// Member is an alias of domain.Member.
	Member = domain.Member
	// FacultyDetail is an alias of domain.FacultyDetail.
	FacultyDetail = domain.FacultyDetail
	// StudentDetail is an alias of domain.StudentDetail.
	StudentDetail = domain.StudentDetail
	// CollaboratorDetail is an alias of domain.CollaboratorDetail.
	CollaboratorDetail = domain.CollaboratorDetail
	// Project is an alias of domain.Project.
	Project = domain.Project
	// Grant is an alias of domain.Grant.
	Grant = domain.Grant
	// Equipment is an alias of domain.Equipment.
	Equipment = domain.Equipment
	// Publication is an alias of domain.Publication.
	Publication = domain.Publication
	// WorksOn is an alias of domain.WorksOn.
	WorksOn = domain.WorksOn
	// Funds is an alias of domain.Funds.
	Funds = domain.Funds
	// Mentors is an alias of domain.Mentors.
	Mentors = domain.Mentors
	// UsesEquipment is an alias of domain.UsesEquipment.
	UsesEquipment = domain.UsesEquipment
	// Authors is an alias of domain.Authors.
	Authors = domain.Authors
	// Change is an alias of domain.Change.
	Change = domain.Change
	// Result is an alias of domain.Result.
	Result = domain.Result
	// RulesEngine is an alias of domain.RulesEngine.
	RulesEngine = domain.RulesEngine
	// Transaction is an alias of domain.Transaction.
	Transaction = domain.Transaction
	// TransactionView is an alias of domain.TransactionView.
	TransactionView = domain.TransactionView
)

// Compile-time contract assertion ensuring the store satisfies the domain interface.
var _ domain.PersistentStore = (*Store)(nil)

type memoryState struct {
	members       map[string]Member
	faculty       map[string]FacultyDetail      // keyed by member ID
	students      map[string]StudentDetail      // keyed by member ID
	collaborators map[string]CollaboratorDetail // keyed by member ID
	projects      map[string]Project
	grants        map[string]Grant
	equipment     map[string]Equipment
	publications  map[string]Publication
	worksOn       map[string]WorksOn
	funds         map[string]Funds
	mentors       map[string]Mentors
	usage         map[string]UsesEquipment
	authors       map[string]Authors
}

func newMemoryState() memoryState {
	return memoryState{
		members:       make(map[string]Member),
		faculty:       make(map[string]FacultyDetail),
		students:      make(map[string]StudentDetail),
		collaborators: make(map[string]CollaboratorDetail),
		projects:      make(map[string]Project),
		grants:        make(map[string]Grant),
		equipment:     make(map[string]Equipment),
		publications:  make(map[string]Publication),
		worksOn:       make(map[string]WorksOn),
		funds:         make(map[string]Funds),
		mentors:       make(map[string]Mentors),
		usage:         make(map[string]UsesEquipment),
		authors:       make(map[string]Authors),
	}
}

func (s memoryState) clone() memoryState {
	cloned := newMemoryState()
	for k, v := range s.members {
		cloned.members[k] = v
	}
	for k, v := range s.faculty {
		cloned.faculty[k] = v
	}
	for k, v := range s.students {
		cloned.students[k] = v
	}
	for k, v := range s.collaborators {
		cloned.collaborators[k] = cloneCollaboratorDetail(v)
	}
	for k, v := range s.projects {
		cloned.projects[k] = cloneProject(v)
	}
	for k, v := range s.grants {
		cloned.grants[k] = v
	}
	for k, v := range s.equipment {
		cloned.equipment[k] = v
	}
	for k, v := range s.publications {
		cloned.publications[k] = clonePublication(v)
	}
	for k, v := range s.worksOn {
		cloned.worksOn[k] = v
	}
	for k, v := range s.funds {
		cloned.funds[k] = v
	}
	for k, v := range s.mentors {
		cloned.mentors[k] = cloneMentors(v)
	}
	for k, v := range s.usage {
		cloned.usage[k] = cloneUsage(v)
	}
	for k, v := range s.authors {
		cloned.authors[k] = v
	}
	return cloned
}

func cloneStringPtr(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneTimePtr(p *time.Time) *time.Time {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneCollaboratorDetail(d CollaboratorDetail) CollaboratorDetail {
	d.Biography = cloneStringPtr(d.Biography)
	return d
}

func cloneProject(p Project) Project {
	p.EndDate = cloneTimePtr(p.EndDate)
	p.LeaderID = cloneStringPtr(p.LeaderID)
	return p
}

func clonePublication(p Publication) Publication {
	p.DOI = cloneStringPtr(p.DOI)
	return p
}

func cloneMentors(m Mentors) Mentors {
	m.EndDate = cloneTimePtr(m.EndDate)
	return m
}

func cloneUsage(u UsesEquipment) UsesEquipment {
	u.EndDate = cloneTimePtr(u.EndDate)
	return u
}

// Snapshot is the serializable export of the full store state, one slice per
// collection, ordered by record ID for stable persistence.
type Snapshot struct {
	Members       []Member             `json:"members"`
	Faculty       []FacultyDetail      `json:"faculty"`
	Students      []StudentDetail      `json:"students"`
	Collaborators []CollaboratorDetail `json:"collaborators"`
	Projects      []Project            `json:"projects"`
	Grants        []Grant              `json:"grants"`
	Equipment     []Equipment          `json:"equipment"`
	Publications  []Publication        `json:"publications"`
	WorksOn       []WorksOn            `json:"works_on"`
	Funds         []Funds              `json:"funds"`
	Mentors       []Mentors            `json:"mentors"`
	Usage         []UsesEquipment      `json:"usage"`
	Authors       []Authors            `json:"authors"`
}

func sortedValues[T any](m map[string]T) []T {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]T, 0, len(m))
	for _, k := range keys {
		out = append(out, m[k])
	}
	return out
}

func snapshotFromState(s memoryState) Snapshot {
	return Snapshot{
		Members:       sortedValues(s.members),
		Faculty:       sortedValues(s.faculty),
		Students:      sortedValues(s.students),
		Collaborators: sortedValues(s.collaborators),
		Projects:      sortedValues(s.projects),
		Grants:        sortedValues(s.grants),
		Equipment:     sortedValues(s.equipment),
		Publications:  sortedValues(s.publications),
		WorksOn:       sortedValues(s.worksOn),
		Funds:         sortedValues(s.funds),
		Mentors:       sortedValues(s.mentors),
		Usage:         sortedValues(s.usage),
		Authors:       sortedValues(s.authors),
	}
}

func stateFromSnapshot(snapshot Snapshot) memoryState {
	state := newMemoryState()
	for _, v := range snapshot.Members {
		state.members[v.ID] = v
	}
	for _, v := range snapshot.Faculty {
		state.faculty[v.MemberID] = v
	}
	for _, v := range snapshot.Students {
		state.students[v.MemberID] = v
	}
	for _, v := range snapshot.Collaborators {
		state.collaborators[v.MemberID] = v
	}
	for _, v := range snapshot.Projects {
		state.projects[v.ID] = v
	}
	for _, v := range snapshot.Grants {
		state.grants[v.ID] = v
	}
	for _, v := range snapshot.Equipment {
		state.equipment[v.ID] = v
	}
	for _, v := range snapshot.Publications {
		state.publications[v.ID] = v
	}
	for _, v := range snapshot.WorksOn {
		state.worksOn[v.ID] = v
	}
	for _, v := range snapshot.Funds {
		state.funds[v.ID] = v
	}
	for _, v := range snapshot.Mentors {
		state.mentors[v.ID] = v
	}
	for _, v := range snapshot.Usage {
		state.usage[v.ID] = v
	}
	for _, v := range snapshot.Authors {
		state.authors[v.ID] = v
	}
	return state
}

// Store provides an in-memory transactional store for the lab registry domain.
type Store struct {
	mu     sync.RWMutex
	state  memoryState
	engine *RulesEngine
	nowFn  func() time.Time
}

// NewStore constructs an in-memory store backed by the provided rules engine.
func NewStore(engine *RulesEngine) *Store {
	if engine == nil {
		engine = domain.NewRulesEngine()
	}
	return &Store{
		state:  newMemoryState(),
		engine: engine,
		nowFn:  func() time.Time { return time.Now().UTC() },
	}
}

func (s *Store) newID() string {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		panic(err)
	}
	return hex.EncodeToString(b[:])
}

// RulesEngine exposes the currently configured engine.
func (s *Store) RulesEngine() *RulesEngine {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.engine
}

// NowFunc returns the time provider used by the store.
func (s *Store) NowFunc() func() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nowFn
}

// SetNowFunc replaces the time provider. Tests use this to pin the clock that
// "current" and "active" windows are judged against.
func (s *Store) SetNowFunc(fn func() time.Time) {
	if fn == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nowFn = fn
}

// ExportState clones the current store state for external persistence.
func (s *Store) ExportState() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return snapshotFromState(s.state.clone())
}

// ImportState replaces the store state with the provided snapshot.
func (s *Store) ImportState(snapshot Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = stateFromSnapshot(snapshot)
}

// transaction implements domain.Transaction against a cloned state.
type transaction struct {
	store   *Store
	state   memoryState
	changes []Change
	now     time.Time
}

// transactionView exposes a read-only snapshot of transactional state to
// rules and reporting.
type transactionView struct {
	state *memoryState
	now   time.Time
}

func newTransactionView(state *memoryState, now time.Time) TransactionView {
	return transactionView{state: state, now: now}
}

func (v transactionView) Now() time.Time { return v.now }

func (v transactionView) ListMembers() []Member { return sortedValues(v.state.members) }

func (v transactionView) ListFacultyDetails() []FacultyDetail { return sortedValues(v.state.faculty) }

func (v transactionView) ListStudentDetails() []StudentDetail { return sortedValues(v.state.students) }

func (v transactionView) ListCollaboratorDetails() []CollaboratorDetail {
	return sortedValues(v.state.collaborators)
}

func (v transactionView) ListProjects() []Project { return sortedValues(v.state.projects) }

func (v transactionView) ListGrants() []Grant { return sortedValues(v.state.grants) }

func (v transactionView) ListEquipment() []Equipment { return sortedValues(v.state.equipment) }

func (v transactionView) ListPublications() []Publication {
	return sortedValues(v.state.publications)
}

func (v transactionView) ListWorksOn() []WorksOn { return sortedValues(v.state.worksOn) }

func (v transactionView) ListFunds() []Funds { return sortedValues(v.state.funds) }

func (v transactionView) ListMentors() []Mentors { return sortedValues(v.state.mentors) }

func (v transactionView) ListUsesEquipment() []UsesEquipment { return sortedValues(v.state.usage) }

func (v transactionView) ListAuthors() []Authors { return sortedValues(v.state.authors) }

func (v transactionView) FindMember(id string) (Member, bool) {
	m, ok := v.state.members[id]
	return m, ok
}

func (v transactionView) FindFacultyDetail(memberID string) (FacultyDetail, bool) {
	d, ok := v.state.faculty[memberID]
	return d, ok
}

func (v transactionView) FindStudentDetail(memberID string) (StudentDetail, bool) {
	d, ok := v.state.students[memberID]
	return d, ok
}

func (v transactionView) FindCollaboratorDetail(memberID string) (CollaboratorDetail, bool) {
	d, ok := v.state.collaborators[memberID]
	return cloneCollaboratorDetail(d), ok
}

func (v transactionView) FindProject(id string) (Project, bool) {
	p, ok := v.state.projects[id]
	return cloneProject(p), ok
}

func (v transactionView) FindGrant(id string) (Grant, bool) {
	g, ok := v.state.grants[id]
	return g, ok
}

func (v transactionView) FindEquipment(id string) (Equipment, bool) {
	e, ok := v.state.equipment[id]
	return e, ok
}

func (v transactionView) FindPublication(id string) (Publication, bool) {
	p, ok := v.state.publications[id]
	return clonePublication(p), ok
}

// RunInTransaction executes fn within a transactional copy of the store
// state. Derived equipment status is recomputed and all registered rules are
// evaluated against the mutated snapshot before the commit swap; any blocking
// violation or error leaves the store unchanged.
func (s *Store) RunInTransaction(ctx context.Context, fn func(tx Transaction) error) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &transaction{
		store: s,
		state: s.state.clone(),
		now:   s.nowFn(),
	}

	if err := fn(tx); err != nil {
		return Result{}, err
	}

	if len(tx.changes) > 0 {
		if err := tx.recomputeEquipmentStatus(); err != nil {
			return Result{}, err
		}
	}

	var result Result
	if s.engine != nil {
		view := newTransactionView(&tx.state, tx.now)
		res, err := s.engine.Evaluate(ctx, view, tx.changes)
		if err != nil {
			return Result{}, err
		}
		result = res
		if res.HasBlocking() {
			return res, domain.RuleViolationError{Result: res}
		}
	}

	// A caller that abandoned the request before commit sees no effect.
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	s.state = tx.state
	result.Changes = tx.Changes()
	return result, nil
}

// View executes fn against a read-only snapshot of committed state.
func (s *Store) View(ctx context.Context, fn func(TransactionView) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot := s.state.clone()
	view := newTransactionView(&snapshot, s.nowFn())
	return fn(view)
}

// Changes returns the mutations recorded so far in the transaction.
func (tx *transaction) Changes() []Change {
	out := make([]Change, len(tx.changes))
	copy(out, tx.changes)
	return out
}

// Snapshot exposes the transactional state to in-transaction reference checks.
func (tx *transaction) Snapshot() TransactionView {
	return newTransactionView(&tx.state, tx.now)
}

func (tx *transaction) recordChange(change Change) {
	tx.changes = append(tx.changes, change)
}

// recomputeEquipmentStatus derives equipment status from current usage rows.
// Retired is sticky. Runs inside the commit path so the triggering call never
// returns with stale status; a usage row pointing at missing equipment fails
// the whole transaction.
func (tx *transaction) recomputeEquipmentStatus() error {
	current := make(map[string]int, len(tx.state.equipment))
	for _, usage := range tx.state.usage {
		if _, ok := tx.state.equipment[usage.EquipmentID]; !ok {
			return domain.InternalInconsistencyError{
				Entity: domain.EntityEquipment,
				ID:     usage.EquipmentID,
				Reason: fmt.Sprintf("usage row %s references missing equipment", usage.ID),
			}
		}
		if usage.CurrentAt(tx.now) {
			current[usage.EquipmentID]++
		}
	}
	for id, eq := range tx.state.equipment {
		if eq.Status == domain.EquipmentRetired {
			continue
		}
		status := domain.EquipmentAvailable
		if current[id] > 0 {
			status = domain.EquipmentInUse
		}
		if eq.Status == status {
			continue
		}
		before := eq
		eq.Status = status
		eq.UpdatedAt = tx.now
		tx.state.equipment[id] = eq
		tx.recordChange(Change{Entity: domain.EntityEquipment, Action: domain.ActionUpdate, Before: before, After: eq})
	}
	return nil
}

// Members ---------------------------------------------------------------------

// CreateMember stores a new member within the transaction.
func (tx *transaction) CreateMember(m Member) (Member, error) {
	if m.ID == "" {
		m.ID = tx.store.newID()
	}
	if _, exists := tx.state.members[m.ID]; exists {
		return Member{}, domain.DuplicateKeyError{Entity: domain.EntityMember, Key: m.ID}
	}
	if !m.Kind.Valid() {
		return Member{}, fmt.Errorf("unknown member kind %q", m.Kind)
	}
	if m.JoinDate.IsZero() {
		m.JoinDate = tx.now
	}
	m.CreatedAt = tx.now
	m.UpdatedAt = tx.now
	tx.state.members[m.ID] = m
	tx.recordChange(Change{Entity: domain.EntityMember, Action: domain.ActionCreate, After: m})
	return m, nil
}

// UpdateMember mutates a member. The member kind is immutable.
func (tx *transaction) UpdateMember(id string, mutator func(*Member) error) (Member, error) {
	current, ok := tx.state.members[id]
	if !ok {
		return Member{}, domain.NotFoundError{Entity: domain.EntityMember, ID: id}
	}
	before := current
	if err := mutator(&current); err != nil {
		return Member{}, err
	}
	if current.Kind != before.Kind {
		return Member{}, errors.New("member kind is immutable")
	}
	current.ID = id
	current.UpdatedAt = tx.now
	tx.state.members[id] = current
	tx.recordChange(Change{Entity: domain.EntityMember, Action: domain.ActionUpdate, Before: before, After: current})
	return current, nil
}

// DeleteMember removes a member, cascading its detail row and every
// relationship row referencing it. Projects led by the member keep existing
// with their leader cleared.
func (tx *transaction) DeleteMember(id string) error {
	current, ok := tx.state.members[id]
	if !ok {
		return domain.NotFoundError{Entity: domain.EntityMember, ID: id}
	}
	if detail, ok := tx.state.faculty[id]; ok {
		delete(tx.state.faculty, id)
		tx.recordChange(Change{Entity: domain.EntityFacultyDetail, Action: domain.ActionDelete, Before: detail})
	}
	if detail, ok := tx.state.students[id]; ok {
		delete(tx.state.students, id)
		tx.recordChange(Change{Entity: domain.EntityStudentDetail, Action: domain.ActionDelete, Before: detail})
	}
	if detail, ok := tx.state.collaborators[id]; ok {
		delete(tx.state.collaborators, id)
		tx.recordChange(Change{Entity: domain.EntityCollaboratorDetail, Action: domain.ActionDelete, Before: detail})
	}
	for key, row := range tx.state.worksOn {
		if row.MemberID == id {
			delete(tx.state.worksOn, key)
			tx.recordChange(Change{Entity: domain.EntityWorksOn, Action: domain.ActionDelete, Before: row})
		}
	}
	for key, row := range tx.state.mentors {
		if row.MentorID == id || row.MenteeID == id {
			delete(tx.state.mentors, key)
			tx.recordChange(Change{Entity: domain.EntityMentors, Action: domain.ActionDelete, Before: row})
		}
	}
	for key, row := range tx.state.usage {
		if row.MemberID == id {
			delete(tx.state.usage, key)
			tx.recordChange(Change{Entity: domain.EntityUsesEquipment, Action: domain.ActionDelete, Before: row})
		}
	}
	for key, row := range tx.state.authors {
		if row.MemberID == id {
			delete(tx.state.authors, key)
			tx.recordChange(Change{Entity: domain.EntityAuthors, Action: domain.ActionDelete, Before: row})
		}
	}
	for key, project := range tx.state.projects {
		if project.LeaderID != nil && *project.LeaderID == id {
			before := cloneProject(project)
			project.LeaderID = nil
			project.UpdatedAt = tx.now
			tx.state.projects[key] = project
			tx.recordChange(Change{Entity: domain.EntityProject, Action: domain.ActionUpdate, Before: before, After: cloneProject(project)})
		}
	}
	delete(tx.state.members, id)
	tx.recordChange(Change{Entity: domain.EntityMember, Action: domain.ActionDelete, Before: current})
	return nil
}

// Detail rows -----------------------------------------------------------------

// CreateFacultyDetail stores the faculty specialization row for a member.
func (tx *transaction) CreateFacultyDetail(d FacultyDetail) (FacultyDetail, error) {
	if _, ok := tx.state.members[d.MemberID]; !ok {
		return FacultyDetail{}, domain.NotFoundError{Entity: domain.EntityMember, ID: d.MemberID}
	}
	if _, exists := tx.state.faculty[d.MemberID]; exists {
		return FacultyDetail{}, domain.DuplicateKeyError{Entity: domain.EntityFacultyDetail, Key: d.MemberID}
	}
	d.ID = d.MemberID
	d.CreatedAt = tx.now
	d.UpdatedAt = tx.now
	tx.state.faculty[d.MemberID] = d
	tx.recordChange(Change{Entity: domain.EntityFacultyDetail, Action: domain.ActionCreate, After: d})
	return d, nil
}

// UpdateFacultyDetail mutates the faculty row of a member.
func (tx *transaction) UpdateFacultyDetail(memberID string, mutator func(*FacultyDetail) error) (FacultyDetail, error) {
	current, ok := tx.state.faculty[memberID]
	if !ok {
		return FacultyDetail{}, domain.NotFoundError{Entity: domain.EntityFacultyDetail, ID: memberID}
	}
	before := current
	if err := mutator(&current); err != nil {
		return FacultyDetail{}, err
	}
	current.ID = memberID
	current.MemberID = memberID
	current.UpdatedAt = tx.now
	tx.state.faculty[memberID] = current
	tx.recordChange(Change{Entity: domain.EntityFacultyDetail, Action: domain.ActionUpdate, Before: before, After: current})
	return current, nil
}

// DeleteFacultyDetail removes the faculty row of a member.
func (tx *transaction) DeleteFacultyDetail(memberID string) error {
	current, ok := tx.state.faculty[memberID]
	if !ok {
		return domain.NotFoundError{Entity: domain.EntityFacultyDetail, ID: memberID}
	}
	delete(tx.state.faculty, memberID)
	tx.recordChange(Change{Entity: domain.EntityFacultyDetail, Action: domain.ActionDelete, Before: current})
	return nil
}

// CreateStudentDetail stores the student specialization row for a member.
func (tx *transaction) CreateStudentDetail(d StudentDetail) (StudentDetail, error) {
	if _, ok := tx.state.members[d.MemberID]; !ok {
		return StudentDetail{}, domain.NotFoundError{Entity: domain.EntityMember, ID: d.MemberID}
	}
	if _, exists := tx.state.students[d.MemberID]; exists {
		return StudentDetail{}, domain.DuplicateKeyError{Entity: domain.EntityStudentDetail, Key: d.MemberID}
	}
	d.ID = d.MemberID
	d.CreatedAt = tx.now
	d.UpdatedAt = tx.now
	tx.state.students[d.MemberID] = d
	tx.recordChange(Change{Entity: domain.EntityStudentDetail, Action: domain.ActionCreate, After: d})
	return d, nil
}

// UpdateStudentDetail mutates the student row of a member.
func (tx *transaction) UpdateStudentDetail(memberID string, mutator func(*StudentDetail) error) (StudentDetail, error) {
	current, ok := tx.state.students[memberID]
	if !ok {
		return StudentDetail{}, domain.NotFoundError{Entity: domain.EntityStudentDetail, ID: memberID}
	}
	before := current
	if err := mutator(&current); err != nil {
		return StudentDetail{}, err
	}
	current.ID = memberID
	current.MemberID = memberID
	current.UpdatedAt = tx.now
	tx.state.students[memberID] = current
	tx.recordChange(Change{Entity: domain.EntityStudentDetail, Action: domain.ActionUpdate, Before: before, After: current})
	return current, nil
}

// DeleteStudentDetail removes the student row of a member.
func (tx *transaction) DeleteStudentDetail(memberID string) error {
	current, ok := tx.state.students[memberID]
	if !ok {
		return domain.NotFoundError{Entity: domain.EntityStudentDetail, ID: memberID}
	}
	delete(tx.state.students, memberID)
	tx.recordChange(Change{Entity: domain.EntityStudentDetail, Action: domain.ActionDelete, Before: current})
	return nil
}

// CreateCollaboratorDetail stores the collaborator specialization row.
func (tx *transaction) CreateCollaboratorDetail(d CollaboratorDetail) (CollaboratorDetail, error) {
	if _, ok := tx.state.members[d.MemberID]; !ok {
		return CollaboratorDetail{}, domain.NotFoundError{Entity: domain.EntityMember, ID: d.MemberID}
	}
	if _, exists := tx.state.collaborators[d.MemberID]; exists {
		return CollaboratorDetail{}, domain.DuplicateKeyError{Entity: domain.EntityCollaboratorDetail, Key: d.MemberID}
	}
	d.ID = d.MemberID
	d.CreatedAt = tx.now
	d.UpdatedAt = tx.now
	tx.state.collaborators[d.MemberID] = cloneCollaboratorDetail(d)
	tx.recordChange(Change{Entity: domain.EntityCollaboratorDetail, Action: domain.ActionCreate, After: cloneCollaboratorDetail(d)})
	return d, nil
}

// UpdateCollaboratorDetail mutates the collaborator row of a member.
func (tx *transaction) UpdateCollaboratorDetail(memberID string, mutator func(*CollaboratorDetail) error) (CollaboratorDetail, error) {
	current, ok := tx.state.collaborators[memberID]
	if !ok {
		return CollaboratorDetail{}, domain.NotFoundError{Entity: domain.EntityCollaboratorDetail, ID: memberID}
	}
	before := cloneCollaboratorDetail(current)
	if err := mutator(&current); err != nil {
		return CollaboratorDetail{}, err
	}
	current.ID = memberID
	current.MemberID = memberID
	current.UpdatedAt = tx.now
	tx.state.collaborators[memberID] = cloneCollaboratorDetail(current)
	tx.recordChange(Change{Entity: domain.EntityCollaboratorDetail, Action: domain.ActionUpdate, Before: before, After: cloneCollaboratorDetail(current)})
	return current, nil
}

// DeleteCollaboratorDetail removes the collaborator row of a member.
func (tx *transaction) DeleteCollaboratorDetail(memberID string) error {
	current, ok := tx.state.collaborators[memberID]
	if !ok {
		return domain.NotFoundError{Entity: domain.EntityCollaboratorDetail, ID: memberID}
	}
	delete(tx.state.collaborators, memberID)
	tx.recordChange(Change{Entity: domain.EntityCollaboratorDetail, Action: domain.ActionDelete, Before: cloneCollaboratorDetail(current)})
	return nil
}

// Projects --------------------------------------------------------------------

func validateProjectDates(p Project) error {
	if p.EndDate != nil && p.EndDate.Before(p.StartDate) {
		return domain.DateRangeError{Entity: domain.EntityProject, ID: p.ID, Reason: "end date before start date"}
	}
	if p.ExpectedDurationMonths < 0 {
		return domain.DateRangeError{Entity: domain.EntityProject, ID: p.ID, Reason: "negative expected duration"}
	}
	return nil
}

// CreateProject stores a project record.
func (tx *transaction) CreateProject(p Project) (Project, error) {
	if p.ID == "" {
		p.ID = tx.store.newID()
	}
	if _, exists := tx.state.projects[p.ID]; exists {
		return Project{}, domain.DuplicateKeyError{Entity: domain.EntityProject, Key: p.ID}
	}
	if p.Status == "" {
		p.Status = domain.ProjectActive
	}
	if err := validateProjectDates(p); err != nil {
		return Project{}, err
	}
	if p.LeaderID != nil {
		if _, ok := tx.state.members[*p.LeaderID]; !ok {
			return Project{}, domain.NotFoundError{Entity: domain.EntityMember, ID: *p.LeaderID}
		}
	}
	p.CreatedAt = tx.now
	p.UpdatedAt = tx.now
	tx.state.projects[p.ID] = cloneProject(p)
	tx.recordChange(Change{Entity: domain.EntityProject, Action: domain.ActionCreate, After: cloneProject(p)})
	return p, nil
}

// UpdateProject mutates a project record.
func (tx *transaction) UpdateProject(id string, mutator func(*Project) error) (Project, error) {
	current, ok := tx.state.projects[id]
	if !ok {
		return Project{}, domain.NotFoundError{Entity: domain.EntityProject, ID: id}
	}
	before := cloneProject(current)
	if err := mutator(&current); err != nil {
		return Project{}, err
	}
	if err := validateProjectDates(current); err != nil {
		return Project{}, err
	}
	if current.LeaderID != nil {
		if _, ok := tx.state.members[*current.LeaderID]; !ok {
			return Project{}, domain.NotFoundError{Entity: domain.EntityMember, ID: *current.LeaderID}
		}
	}
	current.ID = id
	current.UpdatedAt = tx.now
	tx.state.projects[id] = cloneProject(current)
	tx.recordChange(Change{Entity: domain.EntityProject, Action: domain.ActionUpdate, Before: before, After: cloneProject(current)})
	return current, nil
}

// DeleteProject removes a project, cascading its assignment and funding rows.
func (tx *transaction) DeleteProject(id string) error {
	current, ok := tx.state.projects[id]
	if !ok {
		return domain.NotFoundError{Entity: domain.EntityProject, ID: id}
	}
	for key, row := range tx.state.worksOn {
		if row.ProjectID == id {
			delete(tx.state.worksOn, key)
			tx.recordChange(Change{Entity: domain.EntityWorksOn, Action: domain.ActionDelete, Before: row})
		}
	}
	for key, row := range tx.state.funds {
		if row.ProjectID == id {
			delete(tx.state.funds, key)
			tx.recordChange(Change{Entity: domain.EntityFunds, Action: domain.ActionDelete, Before: row})
		}
	}
	delete(tx.state.projects, id)
	tx.recordChange(Change{Entity: domain.EntityProject, Action: domain.ActionDelete, Before: cloneProject(current)})
	return nil
}

// Grants ----------------------------------------------------------------------

func validateGrant(g Grant) error {
	if g.Budget < 0 {
		return domain.DateRangeError{Entity: domain.EntityGrant, ID: g.ID, Reason: "negative budget"}
	}
	if g.DurationMonths <= 0 {
		return domain.DateRangeError{Entity: domain.EntityGrant, ID: g.ID, Reason: "non-positive duration"}
	}
	return nil
}

// CreateGrant stores a grant record.
func (tx *transaction) CreateGrant(g Grant) (Grant, error) {
	if g.ID == "" {
		g.ID = tx.store.newID()
	}
	if _, exists := tx.state.grants[g.ID]; exists {
		return Grant{}, domain.DuplicateKeyError{Entity: domain.EntityGrant, Key: g.ID}
	}
	if err := validateGrant(g); err != nil {
		return Grant{}, err
	}
	g.CreatedAt = tx.now
	g.UpdatedAt = tx.now
	tx.state.grants[g.ID] = g
	tx.recordChange(Change{Entity: domain.EntityGrant, Action: domain.ActionCreate, After: g})
	return g, nil
}

// UpdateGrant mutates a grant record.
func (tx *transaction) UpdateGrant(id string, mutator func(*Grant) error) (Grant, error) {
	current, ok := tx.state.grants[id]
	if !ok {
		return Grant{}, domain.NotFoundError{Entity: domain.EntityGrant, ID: id}
	}
	before := current
	if err := mutator(&current); err != nil {
		return Grant{}, err
	}
	if err := validateGrant(current); err != nil {
		return Grant{}, err
	}
	current.ID = id
	current.UpdatedAt = tx.now
	tx.state.grants[id] = current
	tx.recordChange(Change{Entity: domain.EntityGrant, Action: domain.ActionUpdate, Before: before, After: current})
	return current, nil
}

// DeleteGrant removes a grant, cascading its funding links.
func (tx *transaction) DeleteGrant(id string) error {
	current, ok := tx.state.grants[id]
	if !ok {
		return domain.NotFoundError{Entity: domain.EntityGrant, ID: id}
	}
	for key, row := range tx.state.funds {
		if row.GrantID == id {
			delete(tx.state.funds, key)
			tx.recordChange(Change{Entity: domain.EntityFunds, Action: domain.ActionDelete, Before: row})
		}
	}
	delete(tx.state.grants, id)
	tx.recordChange(Change{Entity: domain.EntityGrant, Action: domain.ActionDelete, Before: current})
	return nil
}

// Equipment -------------------------------------------------------------------

// CreateEquipment stores an equipment record. Status defaults to Available;
// creating directly as InUse is not meaningful since status is derived.
func (tx *transaction) CreateEquipment(e Equipment) (Equipment, error) {
	if e.ID == "" {
		e.ID = tx.store.newID()
	}
	if _, exists := tx.state.equipment[e.ID]; exists {
		return Equipment{}, domain.DuplicateKeyError{Entity: domain.EntityEquipment, Key: e.ID}
	}
	if e.Status == "" || e.Status == domain.EquipmentInUse {
		e.Status = domain.EquipmentAvailable
	}
	e.CreatedAt = tx.now
	e.UpdatedAt = tx.now
	tx.state.equipment[e.ID] = e
	tx.recordChange(Change{Entity: domain.EntityEquipment, Action: domain.ActionCreate, After: e})
	return e, nil
}

// UpdateEquipment mutates an equipment record. Status may only be changed to
// Retired this way; Available/InUse are recomputed from usage and Retired
// never reverts.
func (tx *transaction) UpdateEquipment(id string, mutator func(*Equipment) error) (Equipment, error) {
	current, ok := tx.state.equipment[id]
	if !ok {
		return Equipment{}, domain.NotFoundError{Entity: domain.EntityEquipment, ID: id}
	}
	before := current
	if err := mutator(&current); err != nil {
		return Equipment{}, err
	}
	if current.Status != before.Status {
		if before.Status == domain.EquipmentRetired {
			return Equipment{}, errors.New("retired equipment cannot change status")
		}
		if current.Status != domain.EquipmentRetired {
			return Equipment{}, errors.New("equipment status is derived; only Retired may be set")
		}
	}
	current.ID = id
	current.UpdatedAt = tx.now
	tx.state.equipment[id] = current
	tx.recordChange(Change{Entity: domain.EntityEquipment, Action: domain.ActionUpdate, Before: before, After: current})
	return current, nil
}

// DeleteEquipment removes an equipment record, cascading its usage rows.
func (tx *transaction) DeleteEquipment(id string) error {
	current, ok := tx.state.equipment[id]
	if !ok {
		return domain.NotFoundError{Entity: domain.EntityEquipment, ID: id}
	}
	for key, row := range tx.state.usage {
		if row.EquipmentID == id {
			delete(tx.state.usage, key)
			tx.recordChange(Change{Entity: domain.EntityUsesEquipment, Action: domain.ActionDelete, Before: row})
		}
	}
	delete(tx.state.equipment, id)
	tx.recordChange(Change{Entity: domain.EntityEquipment, Action: domain.ActionDelete, Before: current})
	return nil
}

// Publications ----------------------------------------------------------------

// CreatePublication stores a publication record.
func (tx *transaction) CreatePublication(p Publication) (Publication, error) {
	if p.ID == "" {
		p.ID = tx.store.newID()
	}
	if _, exists := tx.state.publications[p.ID]; exists {
		return Publication{}, domain.DuplicateKeyError{Entity: domain.EntityPublication, Key: p.ID}
	}
	p.CreatedAt = tx.now
	p.UpdatedAt = tx.now
	tx.state.publications[p.ID] = clonePublication(p)
	tx.recordChange(Change{Entity: domain.EntityPublication, Action: domain.ActionCreate, After: clonePublication(p)})
	return p, nil
}

// UpdatePublication mutates a publication record.
func (tx *transaction) UpdatePublication(id string, mutator func(*Publication) error) (Publication, error) {
	current, ok := tx.state.publications[id]
	if !ok {
		return Publication{}, domain.NotFoundError{Entity: domain.EntityPublication, ID: id}
	}
	before := clonePublication(current)
	if err := mutator(&current); err != nil {
		return Publication{}, err
	}
	current.ID = id
	current.UpdatedAt = tx.now
	tx.state.publications[id] = clonePublication(current)
	tx.recordChange(Change{Entity: domain.EntityPublication, Action: domain.ActionUpdate, Before: before, After: clonePublication(current)})
	return current, nil
}

// DeletePublication removes a publication, cascading its authorship rows.
func (tx *transaction) DeletePublication(id string) error {
	current, ok := tx.state.publications[id]
	if !ok {
		return domain.NotFoundError{Entity: domain.EntityPublication, ID: id}
	}
	for key, row := range tx.state.authors {
		if row.PublicationID == id {
			delete(tx.state.authors, key)
			tx.recordChange(Change{Entity: domain.EntityAuthors, Action: domain.ActionDelete, Before: row})
		}
	}
	delete(tx.state.publications, id)
	tx.recordChange(Change{Entity: domain.EntityPublication, Action: domain.ActionDelete, Before: clonePublication(current)})
	return nil
}

// WorksOn ---------------------------------------------------------------------

func validateWorksOn(w WorksOn) error {
	if w.WeeklyHours < 0 || w.WeeklyHours > 168 {
		return domain.DateRangeError{Entity: domain.EntityWorksOn, ID: w.ID, Reason: "weekly hours outside [0,168]"}
	}
	return nil
}

// CreateWorksOn stores a member-project assignment. The (member, project)
// pair is unique.
func (tx *transaction) CreateWorksOn(w WorksOn) (WorksOn, error) {
	if _, ok := tx.state.members[w.MemberID]; !ok {
		return WorksOn{}, domain.NotFoundError{Entity: domain.EntityMember, ID: w.MemberID}
	}
	if _, ok := tx.state.projects[w.ProjectID]; !ok {
		return WorksOn{}, domain.NotFoundError{Entity: domain.EntityProject, ID: w.ProjectID}
	}
	if _, exists := tx.FindWorksOnByPair(w.MemberID, w.ProjectID); exists {
		return WorksOn{}, domain.DuplicateKeyError{Entity: domain.EntityWorksOn, Key: w.MemberID + "/" + w.ProjectID}
	}
	if err := validateWorksOn(w); err != nil {
		return WorksOn{}, err
	}
	if w.ID == "" {
		w.ID = tx.store.newID()
	}
	if _, exists := tx.state.worksOn[w.ID]; exists {
		return WorksOn{}, domain.DuplicateKeyError{Entity: domain.EntityWorksOn, Key: w.ID}
	}
	w.CreatedAt = tx.now
	w.UpdatedAt = tx.now
	tx.state.worksOn[w.ID] = w
	tx.recordChange(Change{Entity: domain.EntityWorksOn, Action: domain.ActionCreate, After: w})
	return w, nil
}

// UpdateWorksOn mutates an assignment row. The pair identity is fixed.
func (tx *transaction) UpdateWorksOn(id string, mutator func(*WorksOn) error) (WorksOn, error) {
	current, ok := tx.state.worksOn[id]
	if !ok {
		return WorksOn{}, domain.NotFoundError{Entity: domain.EntityWorksOn, ID: id}
	}
	before := current
	if err := mutator(&current); err != nil {
		return WorksOn{}, err
	}
	if current.MemberID != before.MemberID || current.ProjectID != before.ProjectID {
		return WorksOn{}, errors.New("works-on pair is immutable")
	}
	if err := validateWorksOn(current); err != nil {
		return WorksOn{}, err
	}
	current.ID = id
	current.UpdatedAt = tx.now
	tx.state.worksOn[id] = current
	tx.recordChange(Change{Entity: domain.EntityWorksOn, Action: domain.ActionUpdate, Before: before, After: current})
	return current, nil
}

// DeleteWorksOn removes an assignment row.
func (tx *transaction) DeleteWorksOn(id string) error {
	current, ok := tx.state.worksOn[id]
	if !ok {
		return domain.NotFoundError{Entity: domain.EntityWorksOn, ID: id}
	}
	delete(tx.state.worksOn, id)
	tx.recordChange(Change{Entity: domain.EntityWorksOn, Action: domain.ActionDelete, Before: current})
	return nil
}

// FindWorksOnByPair locates the assignment row for a (member, project) pair.
func (tx *transaction) FindWorksOnByPair(memberID, projectID string) (WorksOn, bool) {
	for _, row := range tx.state.worksOn {
		if row.MemberID == memberID && row.ProjectID == projectID {
			return row, true
		}
	}
	return WorksOn{}, false
}

// Funds -----------------------------------------------------------------------

// CreateFunds links a grant to a project. The (grant, project) pair is unique.
func (tx *transaction) CreateFunds(f Funds) (Funds, error) {
	if _, ok := tx.state.grants[f.GrantID]; !ok {
		return Funds{}, domain.NotFoundError{Entity: domain.EntityGrant, ID: f.GrantID}
	}
	if _, ok := tx.state.projects[f.ProjectID]; !ok {
		return Funds{}, domain.NotFoundError{Entity: domain.EntityProject, ID: f.ProjectID}
	}
	if _, exists := tx.FindFundsByPair(f.GrantID, f.ProjectID); exists {
		return Funds{}, domain.DuplicateKeyError{Entity: domain.EntityFunds, Key: f.GrantID + "/" + f.ProjectID}
	}
	if f.ID == "" {
		f.ID = tx.store.newID()
	}
	f.CreatedAt = tx.now
	f.UpdatedAt = tx.now
	tx.state.funds[f.ID] = f
	tx.recordChange(Change{Entity: domain.EntityFunds, Action: domain.ActionCreate, After: f})
	return f, nil
}

// DeleteFunds removes a funding link.
func (tx *transaction) DeleteFunds(id string) error {
	current, ok := tx.state.funds[id]
	if !ok {
		return domain.NotFoundError{Entity: domain.EntityFunds, ID: id}
	}
	delete(tx.state.funds, id)
	tx.recordChange(Change{Entity: domain.EntityFunds, Action: domain.ActionDelete, Before: current})
	return nil
}

// FindFundsByPair locates the funding link for a (grant, project) pair.
func (tx *transaction) FindFundsByPair(grantID, projectID string) (Funds, bool) {
	for _, row := range tx.state.funds {
		if row.GrantID == grantID && row.ProjectID == projectID {
			return row, true
		}
	}
	return Funds{}, false
}

// Mentors ---------------------------------------------------------------------

func validateMentors(m Mentors) error {
	if m.MentorID == m.MenteeID {
		return fmt.Errorf("mentorship %q: mentor and mentee must differ", m.ID)
	}
	if m.EndDate != nil && m.EndDate.Before(m.StartDate) {
		return domain.DateRangeError{Entity: domain.EntityMentors, ID: m.ID, Reason: "end date before start date"}
	}
	return nil
}

// CreateMentors stores a mentorship row.
func (tx *transaction) CreateMentors(m Mentors) (Mentors, error) {
	if _, ok := tx.state.members[m.MentorID]; !ok {
		return Mentors{}, domain.NotFoundError{Entity: domain.EntityMember, ID: m.MentorID}
	}
	if _, ok := tx.state.members[m.MenteeID]; !ok {
		return Mentors{}, domain.NotFoundError{Entity: domain.EntityMember, ID: m.MenteeID}
	}
	if err := validateMentors(m); err != nil {
		return Mentors{}, err
	}
	if m.ID == "" {
		m.ID = tx.store.newID()
	}
	if _, exists := tx.state.mentors[m.ID]; exists {
		return Mentors{}, domain.DuplicateKeyError{Entity: domain.EntityMentors, Key: m.ID}
	}
	if m.StartDate.IsZero() {
		m.StartDate = tx.now
	}
	m.CreatedAt = tx.now
	m.UpdatedAt = tx.now
	tx.state.mentors[m.ID] = cloneMentors(m)
	tx.recordChange(Change{Entity: domain.EntityMentors, Action: domain.ActionCreate, After: cloneMentors(m)})
	return m, nil
}

// UpdateMentors mutates a mentorship row.
func (tx *transaction) UpdateMentors(id string, mutator func(*Mentors) error) (Mentors, error) {
	current, ok := tx.state.mentors[id]
	if !ok {
		return Mentors{}, domain.NotFoundError{Entity: domain.EntityMentors, ID: id}
	}
	before := cloneMentors(current)
	if err := mutator(&current); err != nil {
		return Mentors{}, err
	}
	if current.MentorID != before.MentorID || current.MenteeID != before.MenteeID {
		return Mentors{}, errors.New("mentorship pair is immutable")
	}
	if err := validateMentors(current); err != nil {
		return Mentors{}, err
	}
	current.ID = id
	current.UpdatedAt = tx.now
	tx.state.mentors[id] = cloneMentors(current)
	tx.recordChange(Change{Entity: domain.EntityMentors, Action: domain.ActionUpdate, Before: before, After: cloneMentors(current)})
	return current, nil
}

// DeleteMentors removes a mentorship row.
func (tx *transaction) DeleteMentors(id string) error {
	current, ok := tx.state.mentors[id]
	if !ok {
		return domain.NotFoundError{Entity: domain.EntityMentors, ID: id}
	}
	delete(tx.state.mentors, id)
	tx.recordChange(Change{Entity: domain.EntityMentors, Action: domain.ActionDelete, Before: cloneMentors(current)})
	return nil
}

// UsesEquipment ---------------------------------------------------------------

func validateUsage(u UsesEquipment) error {
	if u.StartDate.IsZero() {
		return domain.DateRangeError{Entity: domain.EntityUsesEquipment, ID: u.ID, Reason: "missing start date"}
	}
	if u.EndDate != nil && u.EndDate.Before(u.StartDate) {
		return domain.DateRangeError{Entity: domain.EntityUsesEquipment, ID: u.ID, Reason: "end date before start date"}
	}
	return nil
}

// CreateUsesEquipment stores an equipment usage row.
func (tx *transaction) CreateUsesEquipment(u UsesEquipment) (UsesEquipment, error) {
	if _, ok := tx.state.members[u.MemberID]; !ok {
		return UsesEquipment{}, domain.NotFoundError{Entity: domain.EntityMember, ID: u.MemberID}
	}
	if _, ok := tx.state.equipment[u.EquipmentID]; !ok {
		return UsesEquipment{}, domain.NotFoundError{Entity: domain.EntityEquipment, ID: u.EquipmentID}
	}
	if err := validateUsage(u); err != nil {
		return UsesEquipment{}, err
	}
	if u.ID == "" {
		u.ID = tx.store.newID()
	}
	if _, exists := tx.state.usage[u.ID]; exists {
		return UsesEquipment{}, domain.DuplicateKeyError{Entity: domain.EntityUsesEquipment, Key: u.ID}
	}
	u.CreatedAt = tx.now
	u.UpdatedAt = tx.now
	tx.state.usage[u.ID] = cloneUsage(u)
	tx.recordChange(Change{Entity: domain.EntityUsesEquipment, Action: domain.ActionCreate, After: cloneUsage(u)})
	return u, nil
}

// UpdateUsesEquipment mutates a usage row identified by its own key, so an
// update never double-counts against itself in capacity checks.
func (tx *transaction) UpdateUsesEquipment(id string, mutator func(*UsesEquipment) error) (UsesEquipment, error) {
	current, ok := tx.state.usage[id]
	if !ok {
		return UsesEquipment{}, domain.NotFoundError{Entity: domain.EntityUsesEquipment, ID: id}
	}
	before := cloneUsage(current)
	if err := mutator(&current); err != nil {
		return UsesEquipment{}, err
	}
	if current.MemberID != before.MemberID || current.EquipmentID != before.EquipmentID {
		return UsesEquipment{}, errors.New("usage member and equipment are immutable")
	}
	if err := validateUsage(current); err != nil {
		return UsesEquipment{}, err
	}
	current.ID = id
	current.UpdatedAt = tx.now
	tx.state.usage[id] = cloneUsage(current)
	tx.recordChange(Change{Entity: domain.EntityUsesEquipment, Action: domain.ActionUpdate, Before: before, After: cloneUsage(current)})
	return current, nil
}

// DeleteUsesEquipment removes a usage row.
func (tx *transaction) DeleteUsesEquipment(id string) error {
	current, ok := tx.state.usage[id]
	if !ok {
		return domain.NotFoundError{Entity: domain.EntityUsesEquipment, ID: id}
	}
	delete(tx.state.usage, id)
	tx.recordChange(Change{Entity: domain.EntityUsesEquipment, Action: domain.ActionDelete, Before: cloneUsage(current)})
	return nil
}

// Authors ---------------------------------------------------------------------

// CreateAuthors links a member to a publication. The pair is unique.
func (tx *transaction) CreateAuthors(a Authors) (Authors, error) {
	if _, ok := tx.state.members[a.MemberID]; !ok {
		return Authors{}, domain.NotFoundError{Entity: domain.EntityMember, ID: a.MemberID}
	}
	if _, ok := tx.state.publications[a.PublicationID]; !ok {
		return Authors{}, domain.NotFoundError{Entity: domain.EntityPublication, ID: a.PublicationID}
	}
	if _, exists := tx.FindAuthorsByPair(a.MemberID, a.PublicationID); exists {
		return Authors{}, domain.DuplicateKeyError{Entity: domain.EntityAuthors, Key: a.MemberID + "/" + a.PublicationID}
	}
	if a.ID == "" {
		a.ID = tx.store.newID()
	}
	a.CreatedAt = tx.now
	a.UpdatedAt = tx.now
	tx.state.authors[a.ID] = a
	tx.recordChange(Change{Entity: domain.EntityAuthors, Action: domain.ActionCreate, After: a})
	return a, nil
}

// DeleteAuthors removes an authorship link.
func (tx *transaction) DeleteAuthors(id string) error {
	current, ok := tx.state.authors[id]
	if !ok {
		return domain.NotFoundError{Entity: domain.EntityAuthors, ID: id}
	}
	delete(tx.state.authors, id)
	tx.recordChange(Change{Entity: domain.EntityAuthors, Action: domain.ActionDelete, Before: current})
	return nil
}

// FindAuthorsByPair locates the authorship link for a (member, publication) pair.
func (tx *transaction) FindAuthorsByPair(memberID, publicationID string) (Authors, bool) {
	for _, row := range tx.state.authors {
		if row.MemberID == memberID && row.PublicationID == publicationID {
			return row, true
		}
	}
	return Authors{}, false
}

// Read helpers ----------------------------------------------------------------

// GetMember retrieves a member by ID from committed state.
func (s *Store) GetMember(id string) (Member, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.state.members[id]
	return m, ok
}

// ListMembers returns all members from committed state.
func (s *Store) ListMembers() []Member {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedValues(s.state.members)
}

// GetProject retrieves a project by ID.
func (s *Store) GetProject(id string) (Project, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.state.projects[id]
	return cloneProject(p), ok
}

// ListProjects returns all projects.
func (s *Store) ListProjects() []Project {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Project, 0, len(s.state.projects))
	for _, p := range sortedValues(s.state.projects) {
		out = append(out, cloneProject(p))
	}
	return out
}

// GetEquipment retrieves an equipment record by ID.
func (s *Store) GetEquipment(id string) (Equipment, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.state.equipment[id]
	return e, ok
}

// ListEquipment returns all equipment records.
func (s *Store) ListEquipment() []Equipment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedValues(s.state.equipment)
}

// ListGrants returns all grants.
func (s *Store) ListGrants() []Grant {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedValues(s.state.grants)
}

// ListPublications returns all publications.
func (s *Store) ListPublications() []Publication {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Publication, 0, len(s.state.publications))
	for _, p := range sortedValues(s.state.publications) {
		out = append(out, clonePublication(p))
	}
	return out
}

// ListWorksOn returns all assignment rows.
func (s *Store) ListWorksOn() []WorksOn {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sortedValues(s.state.worksOn)
}

// ListMentors returns all mentorship rows.
func (s *Store) ListMentors() []Mentors {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Mentors, 0, len(s.state.mentors))
	for _, m := range sortedValues(s.state.mentors) {
		out = append(out, cloneMentors(m))
	}
	return out
}

// ListUsesEquipment returns all usage rows.
func (s *Store) ListUsesEquipment() []UsesEquipment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]UsesEquipment, 0, len(s.state.usage))
	for _, u := range sortedValues(s.state.usage) {
		out = append(out, cloneUsage(u))
	}
	return out
}
