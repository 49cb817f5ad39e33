package core

import (
	"context"
	"time"

	"labregistry/pkg/domain"
)

// Service exposes higher-level transactional operations over the registry
// schema. Every mutation runs inside a single store transaction so that rule
// evaluation sees the complete post-mutation state.
type Service struct {
	store   domain.PersistentStore
	metrics MetricsRecorder
	tracer  Tracer
	audit   AuditSink
}

// ServiceOption customizes a Service at construction time.
type ServiceOption func(*Service)

// WithMetricsRecorder wires an operation metrics recorder into the service.
func WithMetricsRecorder(rec MetricsRecorder) ServiceOption {
	return func(s *Service) {
		if rec != nil {
			s.metrics = rec
		}
	}
}

// WithTracer wires an operation tracer into the service.
func WithTracer(tracer Tracer) ServiceOption {
	return func(s *Service) {
		if tracer != nil {
			s.tracer = tracer
		}
	}
}

// WithAuditSink wires a sink that receives the change set of every committed
// mutation.
func WithAuditSink(sink AuditSink) ServiceOption {
	return func(s *Service) {
		if sink != nil {
			s.audit = sink
		}
	}
}

// NewService constructs a service backed by the supplied store.
func NewService(store domain.PersistentStore, opts ...ServiceOption) *Service {
	svc := &Service{
		store:   store,
		metrics: noopMetrics{},
		tracer:  noopTracer{},
		audit:   noopAudit{},
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// Store returns the underlying storage implementation.
func (s *Service) Store() domain.PersistentStore {
	return s.store
}

// run executes a mutation under instrumentation. Committed change sets are
// forwarded to the audit sink; blocked or failed transactions are not.
func (s *Service) run(ctx context.Context, operation string, fn func(tx domain.Transaction) error) (Result, error) {
	ctx, span := s.tracer.Start(ctx, operation)
	start := time.Now()
	res, err := s.store.RunInTransaction(ctx, fn)
	s.metrics.Observe(ctx, operation, err == nil, time.Since(start))
	span.End(err)
	if err == nil {
		s.audit.Record(ctx, operation, res.Changes)
	}
	return res, err
}

// CreateMember persists a new member record.
func (s *Service) CreateMember(ctx context.Context, member Member) (Member, Result, error) {
	var created Member
	res, err := s.run(ctx, "create_member", func(tx domain.Transaction) error {
		var err error
		created, err = tx.CreateMember(member)
		return err
	})
	return created, res, err
}

// UpdateMember mutates a member using the provided mutator. Kind is immutable.
func (s *Service) UpdateMember(ctx context.Context, id string, mutator func(*Member) error) (Member, Result, error) {
	var updated Member
	res, err := s.run(ctx, "update_member", func(tx domain.Transaction) error {
		var err error
		updated, err = tx.UpdateMember(id, mutator)
		return err
	})
	return updated, res, err
}

// DeleteMember removes a member and every row that references it.
func (s *Service) DeleteMember(ctx context.Context, id string) (Result, error) {
	return s.run(ctx, "delete_member", func(tx domain.Transaction) error {
		return tx.DeleteMember(id)
	})
}

// GetMember fetches a committed member record.
func (s *Service) GetMember(ctx context.Context, id string) (Member, error) {
	member, ok := s.store.GetMember(id)
	if !ok {
		return Member{}, domain.NotFoundError{Entity: EntityMember, ID: id}
	}
	return member, nil
}

// ListMembers returns all committed members.
func (s *Service) ListMembers(ctx context.Context) []Member {
	return s.store.ListMembers()
}

// PutFacultyDetail creates or replaces the faculty detail row of a member.
func (s *Service) PutFacultyDetail(ctx context.Context, detail FacultyDetail) (FacultyDetail, Result, error) {
	var stored FacultyDetail
	res, err := s.run(ctx, "put_faculty_detail", func(tx domain.Transaction) error {
		var err error
		if _, ok := tx.Snapshot().FindFacultyDetail(detail.MemberID); ok {
			stored, err = tx.UpdateFacultyDetail(detail.MemberID, func(d *FacultyDetail) error {
				d.Department = detail.Department
				return nil
			})
			return err
		}
		stored, err = tx.CreateFacultyDetail(detail)
		return err
	})
	return stored, res, err
}

// PutStudentDetail creates or replaces the student detail row of a member.
func (s *Service) PutStudentDetail(ctx context.Context, detail StudentDetail) (StudentDetail, Result, error) {
	var stored StudentDetail
	res, err := s.run(ctx, "put_student_detail", func(tx domain.Transaction) error {
		var err error
		if _, ok := tx.Snapshot().FindStudentDetail(detail.MemberID); ok {
			stored, err = tx.UpdateStudentDetail(detail.MemberID, func(d *StudentDetail) error {
				d.StudentNumber = detail.StudentNumber
				d.Level = detail.Level
				d.Major = detail.Major
				return nil
			})
			return err
		}
		stored, err = tx.CreateStudentDetail(detail)
		return err
	})
	return stored, res, err
}

// PutCollaboratorDetail creates or replaces the collaborator detail row of a
// member.
func (s *Service) PutCollaboratorDetail(ctx context.Context, detail CollaboratorDetail) (CollaboratorDetail, Result, error) {
	var stored CollaboratorDetail
	res, err := s.run(ctx, "put_collaborator_detail", func(tx domain.Transaction) error {
		var err error
		if _, ok := tx.Snapshot().FindCollaboratorDetail(detail.MemberID); ok {
			stored, err = tx.UpdateCollaboratorDetail(detail.MemberID, func(d *CollaboratorDetail) error {
				d.Affiliation = detail.Affiliation
				d.Biography = detail.Biography
				return nil
			})
			return err
		}
		stored, err = tx.CreateCollaboratorDetail(detail)
		return err
	})
	return stored, res, err
}

// CreateProject persists a new project.
func (s *Service) CreateProject(ctx context.Context, project Project) (Project, Result, error) {
	var created Project
	res, err := s.run(ctx, "create_project", func(tx domain.Transaction) error {
		var err error
		created, err = tx.CreateProject(project)
		return err
	})
	return created, res, err
}

// UpdateProject mutates a project using the provided mutator.
func (s *Service) UpdateProject(ctx context.Context, id string, mutator func(*Project) error) (Project, Result, error) {
	var updated Project
	res, err := s.run(ctx, "update_project", func(tx domain.Transaction) error {
		var err error
		updated, err = tx.UpdateProject(id, mutator)
		return err
	})
	return updated, res, err
}

// DeleteProject removes a project and its assignment and funding rows.
func (s *Service) DeleteProject(ctx context.Context, id string) (Result, error) {
	return s.run(ctx, "delete_project", func(tx domain.Transaction) error {
		return tx.DeleteProject(id)
	})
}

// GetProject fetches a committed project record.
func (s *Service) GetProject(ctx context.Context, id string) (Project, error) {
	project, ok := s.store.GetProject(id)
	if !ok {
		return Project{}, domain.NotFoundError{Entity: EntityProject, ID: id}
	}
	return project, nil
}

// ListProjects returns all committed projects.
func (s *Service) ListProjects(ctx context.Context) []Project {
	return s.store.ListProjects()
}

// AssignProjectLeader sets the leader of a project. The leader must be a
// faculty member; the rules engine blocks any other assignment.
func (s *Service) AssignProjectLeader(ctx context.Context, projectID, leaderID string) (Project, Result, error) {
	var updated Project
	res, err := s.run(ctx, "assign_project_leader", func(tx domain.Transaction) error {
		if _, ok := tx.Snapshot().FindMember(leaderID); !ok {
			return domain.NotFoundError{Entity: EntityMember, ID: leaderID}
		}
		var err error
		updated, err = tx.UpdateProject(projectID, func(p *Project) error {
			p.LeaderID = &leaderID
			return nil
		})
		return err
	})
	return updated, res, err
}

// ClearProjectLeader removes the leader reference from a project.
func (s *Service) ClearProjectLeader(ctx context.Context, projectID string) (Project, Result, error) {
	var updated Project
	res, err := s.run(ctx, "clear_project_leader", func(tx domain.Transaction) error {
		var err error
		updated, err = tx.UpdateProject(projectID, func(p *Project) error {
			p.LeaderID = nil
			return nil
		})
		return err
	})
	return updated, res, err
}

// AssignTeamMember creates or refreshes a member's assignment to a project.
// An existing assignment for the same pair keeps its row and takes the new
// role and hours.
func (s *Service) AssignTeamMember(ctx context.Context, memberID, projectID, role string, weeklyHours float64) (WorksOn, Result, error) {
	var stored WorksOn
	res, err := s.run(ctx, "assign_team_member", func(tx domain.Transaction) error {
		var err error
		if existing, ok := tx.FindWorksOnByPair(memberID, projectID); ok {
			stored, err = tx.UpdateWorksOn(existing.ID, func(w *WorksOn) error {
				w.Role = role
				w.WeeklyHours = weeklyHours
				return nil
			})
			return err
		}
		stored, err = tx.CreateWorksOn(WorksOn{
			MemberID:    memberID,
			ProjectID:   projectID,
			Role:        role,
			WeeklyHours: weeklyHours,
		})
		return err
	})
	return stored, res, err
}

// RemoveTeamMember deletes the assignment row for a member/project pair.
func (s *Service) RemoveTeamMember(ctx context.Context, memberID, projectID string) (Result, error) {
	return s.run(ctx, "remove_team_member", func(tx domain.Transaction) error {
		existing, ok := tx.FindWorksOnByPair(memberID, projectID)
		if !ok {
			return domain.NotFoundError{Entity: EntityWorksOn, ID: memberID + "/" + projectID}
		}
		return tx.DeleteWorksOn(existing.ID)
	})
}

// CreateGrant persists a new grant.
func (s *Service) CreateGrant(ctx context.Context, grant Grant) (Grant, Result, error) {
	var created Grant
	res, err := s.run(ctx, "create_grant", func(tx domain.Transaction) error {
		var err error
		created, err = tx.CreateGrant(grant)
		return err
	})
	return created, res, err
}

// UpdateGrant mutates a grant using the provided mutator.
func (s *Service) UpdateGrant(ctx context.Context, id string, mutator func(*Grant) error) (Grant, Result, error) {
	var updated Grant
	res, err := s.run(ctx, "update_grant", func(tx domain.Transaction) error {
		var err error
		updated, err = tx.UpdateGrant(id, mutator)
		return err
	})
	return updated, res, err
}

// DeleteGrant removes a grant and its funding links.
func (s *Service) DeleteGrant(ctx context.Context, id string) (Result, error) {
	return s.run(ctx, "delete_grant", func(tx domain.Transaction) error {
		return tx.DeleteGrant(id)
	})
}

// ListGrants returns all committed grants.
func (s *Service) ListGrants(ctx context.Context) []Grant {
	return s.store.ListGrants()
}

// LinkGrantToProject records that a grant funds a project.
func (s *Service) LinkGrantToProject(ctx context.Context, grantID, projectID string) (Funds, Result, error) {
	var created Funds
	res, err := s.run(ctx, "link_grant_to_project", func(tx domain.Transaction) error {
		var err error
		created, err = tx.CreateFunds(Funds{GrantID: grantID, ProjectID: projectID})
		return err
	})
	return created, res, err
}

// UnlinkGrantFromProject removes the funding link for a grant/project pair.
func (s *Service) UnlinkGrantFromProject(ctx context.Context, grantID, projectID string) (Result, error) {
	return s.run(ctx, "unlink_grant_from_project", func(tx domain.Transaction) error {
		existing, ok := tx.FindFundsByPair(grantID, projectID)
		if !ok {
			return domain.NotFoundError{Entity: EntityFunds, ID: grantID + "/" + projectID}
		}
		return tx.DeleteFunds(existing.ID)
	})
}

// CreateEquipment persists a new piece of equipment.
func (s *Service) CreateEquipment(ctx context.Context, equipment Equipment) (Equipment, Result, error) {
	var created Equipment
	res, err := s.run(ctx, "create_equipment", func(tx domain.Transaction) error {
		var err error
		created, err = tx.CreateEquipment(equipment)
		return err
	})
	return created, res, err
}

// UpdateEquipment mutates equipment metadata. Status cannot be set directly
// except to Retired.
func (s *Service) UpdateEquipment(ctx context.Context, id string, mutator func(*Equipment) error) (Equipment, Result, error) {
	var updated Equipment
	res, err := s.run(ctx, "update_equipment", func(tx domain.Transaction) error {
		var err error
		updated, err = tx.UpdateEquipment(id, mutator)
		return err
	})
	return updated, res, err
}

// DeleteEquipment removes equipment and its usage rows.
func (s *Service) DeleteEquipment(ctx context.Context, id string) (Result, error) {
	return s.run(ctx, "delete_equipment", func(tx domain.Transaction) error {
		return tx.DeleteEquipment(id)
	})
}

// GetEquipment fetches a committed equipment record.
func (s *Service) GetEquipment(ctx context.Context, id string) (Equipment, error) {
	equipment, ok := s.store.GetEquipment(id)
	if !ok {
		return Equipment{}, domain.NotFoundError{Entity: EntityEquipment, ID: id}
	}
	return equipment, nil
}

// ListEquipment returns all committed equipment records.
func (s *Service) ListEquipment(ctx context.Context) []Equipment {
	return s.store.ListEquipment()
}

// RetireEquipment marks equipment as permanently out of service. Retirement
// is terminal; the derived status recomputation never reverts it.
func (s *Service) RetireEquipment(ctx context.Context, id string) (Equipment, Result, error) {
	var updated Equipment
	res, err := s.run(ctx, "retire_equipment", func(tx domain.Transaction) error {
		var err error
		updated, err = tx.UpdateEquipment(id, func(e *Equipment) error {
			e.Status = EquipmentRetired
			return nil
		})
		return err
	})
	return updated, res, err
}

// RecordEquipmentUsage opens a usage window for a member on a piece of
// equipment. The transaction is blocked if the equipment would exceed its
// concurrent user capacity.
func (s *Service) RecordEquipmentUsage(ctx context.Context, usage UsesEquipment) (UsesEquipment, Result, error) {
	var created UsesEquipment
	res, err := s.run(ctx, "record_equipment_usage", func(tx domain.Transaction) error {
		var err error
		created, err = tx.CreateUsesEquipment(usage)
		return err
	})
	return created, res, err
}

// RecordEquipmentUsageBatch opens several usage windows atomically. If any
// row fails validation or a rule blocks the combined state, none are kept.
func (s *Service) RecordEquipmentUsageBatch(ctx context.Context, usages []UsesEquipment) ([]UsesEquipment, Result, error) {
	created := make([]UsesEquipment, 0, len(usages))
	res, err := s.run(ctx, "record_equipment_usage_batch", func(tx domain.Transaction) error {
		for _, usage := range usages {
			row, err := tx.CreateUsesEquipment(usage)
			if err != nil {
				return err
			}
			created = append(created, row)
		}
		return nil
	})
	if err != nil {
		return nil, res, err
	}
	return created, res, err
}

// EndEquipmentUsage closes a usage window at the given instant.
func (s *Service) EndEquipmentUsage(ctx context.Context, usageID string, end time.Time) (UsesEquipment, Result, error) {
	var updated UsesEquipment
	res, err := s.run(ctx, "end_equipment_usage", func(tx domain.Transaction) error {
		var err error
		updated, err = tx.UpdateUsesEquipment(usageID, func(u *UsesEquipment) error {
			e := end
			u.EndDate = &e
			return nil
		})
		return err
	})
	return updated, res, err
}

// UpdateEquipmentUsage mutates a usage row. The member and equipment
// references are immutable.
func (s *Service) UpdateEquipmentUsage(ctx context.Context, usageID string, mutator func(*UsesEquipment) error) (UsesEquipment, Result, error) {
	var updated UsesEquipment
	res, err := s.run(ctx, "update_equipment_usage", func(tx domain.Transaction) error {
		var err error
		updated, err = tx.UpdateUsesEquipment(usageID, mutator)
		return err
	})
	return updated, res, err
}

// BeginMentorship opens a mentorship between two members. The mentee may
// hold at most one active mentorship and a student may not mentor faculty;
// the rules engine blocks either case.
func (s *Service) BeginMentorship(ctx context.Context, mentorship Mentors) (Mentors, Result, error) {
	var created Mentors
	res, err := s.run(ctx, "begin_mentorship", func(tx domain.Transaction) error {
		view := tx.Snapshot()
		if _, ok := view.FindMember(mentorship.MentorID); !ok {
			return domain.NotFoundError{Entity: EntityMember, ID: mentorship.MentorID}
		}
		if _, ok := view.FindMember(mentorship.MenteeID); !ok {
			return domain.NotFoundError{Entity: EntityMember, ID: mentorship.MenteeID}
		}
		var err error
		created, err = tx.CreateMentors(mentorship)
		return err
	})
	return created, res, err
}

// EndMentorship closes a mentorship window at the given instant.
func (s *Service) EndMentorship(ctx context.Context, mentorshipID string, end time.Time) (Mentors, Result, error) {
	var updated Mentors
	res, err := s.run(ctx, "end_mentorship", func(tx domain.Transaction) error {
		var err error
		updated, err = tx.UpdateMentors(mentorshipID, func(m *Mentors) error {
			e := end
			m.EndDate = &e
			return nil
		})
		return err
	})
	return updated, res, err
}

// DeleteMentorship removes a mentorship row entirely.
func (s *Service) DeleteMentorship(ctx context.Context, mentorshipID string) (Result, error) {
	return s.run(ctx, "delete_mentorship", func(tx domain.Transaction) error {
		return tx.DeleteMentors(mentorshipID)
	})
}

// CreatePublication persists a new publication.
func (s *Service) CreatePublication(ctx context.Context, publication Publication) (Publication, Result, error) {
	var created Publication
	res, err := s.run(ctx, "create_publication", func(tx domain.Transaction) error {
		var err error
		created, err = tx.CreatePublication(publication)
		return err
	})
	return created, res, err
}

// UpdatePublication mutates a publication using the provided mutator.
func (s *Service) UpdatePublication(ctx context.Context, id string, mutator func(*Publication) error) (Publication, Result, error) {
	var updated Publication
	res, err := s.run(ctx, "update_publication", func(tx domain.Transaction) error {
		var err error
		updated, err = tx.UpdatePublication(id, mutator)
		return err
	})
	return updated, res, err
}

// DeletePublication removes a publication and its authorship rows.
func (s *Service) DeletePublication(ctx context.Context, id string) (Result, error) {
	return s.run(ctx, "delete_publication", func(tx domain.Transaction) error {
		return tx.DeletePublication(id)
	})
}

// ListPublications returns all committed publications.
func (s *Service) ListPublications(ctx context.Context) []Publication {
	return s.store.ListPublications()
}

// AddAuthor links a member to a publication as an author.
func (s *Service) AddAuthor(ctx context.Context, memberID, publicationID string) (Authors, Result, error) {
	var created Authors
	res, err := s.run(ctx, "add_author", func(tx domain.Transaction) error {
		var err error
		created, err = tx.CreateAuthors(Authors{MemberID: memberID, PublicationID: publicationID})
		return err
	})
	return created, res, err
}

// RemoveAuthor removes the authorship link for a member/publication pair.
func (s *Service) RemoveAuthor(ctx context.Context, memberID, publicationID string) (Result, error) {
	return s.run(ctx, "remove_author", func(tx domain.Transaction) error {
		existing, ok := tx.FindAuthorsByPair(memberID, publicationID)
		if !ok {
			return domain.NotFoundError{Entity: EntityAuthors, ID: memberID + "/" + publicationID}
		}
		return tx.DeleteAuthors(existing.ID)
	})
}
