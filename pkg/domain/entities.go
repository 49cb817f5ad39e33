// Package domain defines the core persistent entities, relationship rows,
// and rule evaluation primitives used by labregistry.
package domain

import "time"

// EntityType identifies the type of record stored in the core domain.
type EntityType string

// Supported entity type identifiers used in Change records and persistence buckets.
const (
	// EntityMember identifies a lab member record.
	EntityMember EntityType = "member"
	// EntityFacultyDetail identifies the faculty specialization row of a member.
	EntityFacultyDetail EntityType = "faculty_detail"
	// EntityStudentDetail identifies the student specialization row of a member.
	EntityStudentDetail EntityType = "student_detail"
	// EntityCollaboratorDetail identifies the collaborator specialization row of a member.
	EntityCollaboratorDetail EntityType = "collaborator_detail"
	// EntityProject identifies a research project record.
	EntityProject EntityType = "project"
	// EntityGrant identifies a funding grant record.
	EntityGrant EntityType = "grant"
	// EntityEquipment identifies a piece of lab equipment.
	EntityEquipment EntityType = "equipment"
	// EntityPublication identifies a publication record.
	EntityPublication EntityType = "publication"
	// EntityWorksOn identifies a member-project assignment row.
	EntityWorksOn EntityType = "works_on"
	// EntityFunds identifies a grant-project funding link.
	EntityFunds EntityType = "funds"
	// EntityMentors identifies a mentorship row.
	EntityMentors EntityType = "mentors"
	// EntityUsesEquipment identifies an equipment usage row.
	EntityUsesEquipment EntityType = "uses_equipment"
	// EntityAuthors identifies a member-publication authorship link.
	EntityAuthors EntityType = "authors"
)

// MemberKind enumerates the three member specializations.
type MemberKind string

// Member kinds. A member's kind is immutable once the record is created.
const (
	KindFaculty      MemberKind = "Faculty"
	KindStudent      MemberKind = "Student"
	KindCollaborator MemberKind = "Collaborator"
)

// Valid reports whether the kind is one of the three known specializations.
func (k MemberKind) Valid() bool {
	switch k {
	case KindFaculty, KindStudent, KindCollaborator:
		return true
	}
	return false
}

// StudentLevel enumerates academic standing values for student details.
type StudentLevel string

// Academic levels recorded on student detail rows.
const (
	LevelFreshman  StudentLevel = "Freshman"
	LevelSophomore StudentLevel = "Sophomore"
	LevelJunior    StudentLevel = "Junior"
	LevelSenior    StudentLevel = "Senior"
	LevelGraduate  StudentLevel = "Graduate"
)

// ProjectStatus enumerates project workflow states.
type ProjectStatus string

// Canonical project statuses.
const (
	ProjectActive    ProjectStatus = "Active"
	ProjectCompleted ProjectStatus = "Completed"
	ProjectPaused    ProjectStatus = "Paused"
)

// EquipmentStatus enumerates equipment availability states. Available and
// InUse are derived from current usage counts; Retired is an explicit
// administrative action and is terminal.
type EquipmentStatus string

// Equipment statuses. {Available <-> InUse} transitions are driven solely by
// the current-usage count crossing zero; Retired never auto-reverts.
const (
	EquipmentAvailable EquipmentStatus = "Available"
	EquipmentInUse     EquipmentStatus = "InUse"
	EquipmentRetired   EquipmentStatus = "Retired"
)

// Severity captures rule outcomes.
type Severity string

// Rule evaluation severities determine commit behavior and logging.
const (
	// SeverityBlock blocks transaction commit.
	SeverityBlock Severity = "block"
	// SeverityWarn logs a warning but allows commit.
	SeverityWarn Severity = "warn"
	SeverityLog  Severity = "log"
)

// Base contains common fields for all domain records.
type Base struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Member represents a person affiliated with the lab.
type Member struct {
	Base
	Name     string     `json:"name"`
	Kind     MemberKind `json:"kind"`
	JoinDate time.Time  `json:"join_date"`
}

// FacultyDetail is the faculty specialization row, keyed by member ID.
// It may exist only for a member whose kind is Faculty.
type FacultyDetail struct {
	Base
	MemberID   string `json:"member_id"`
	Department string `json:"department"`
}

// StudentDetail is the student specialization row, keyed by member ID.
type StudentDetail struct {
	Base
	MemberID      string       `json:"member_id"`
	StudentNumber string       `json:"student_number"`
	Level         StudentLevel `json:"level"`
	Major         string       `json:"major"`
}

// CollaboratorDetail is the external collaborator specialization row.
type CollaboratorDetail struct {
	Base
	MemberID    string  `json:"member_id"`
	Affiliation string  `json:"affiliation"`
	Biography   *string `json:"biography,omitempty"`
}

// Project captures a research project and its optional faculty leader.
type Project struct {
	Base
	Title                  string        `json:"title"`
	StartDate              time.Time     `json:"start_date"`
	EndDate                *time.Time    `json:"end_date"`
	ExpectedDurationMonths int           `json:"expected_duration_months"`
	Status                 ProjectStatus `json:"status"`
	LeaderID               *string       `json:"leader_id"`
}

// Grant records a funding source.
type Grant struct {
	Base
	Source         string    `json:"source"`
	Budget         float64   `json:"budget"`
	StartDate      time.Time `json:"start_date"`
	DurationMonths int       `json:"duration_months"`
}

// Equipment captures a lab instrument. Status is derived state: it is
// recomputed from current usage after every committed usage mutation, except
// that Retired is sticky.
type Equipment struct {
	Base
	Name         string          `json:"name"`
	Type         string          `json:"type"`
	PurchaseDate time.Time       `json:"purchase_date"`
	Status       EquipmentStatus `json:"status"`
}

// Publication records a published work attributed to lab members.
type Publication struct {
	Base
	Title   string    `json:"title"`
	PubDate time.Time `json:"pub_date"`
	Venue   string    `json:"venue"`
	DOI     *string   `json:"doi,omitempty"`
}

// WorksOn assigns a member to a project. Unique per (member, project).
type WorksOn struct {
	Base
	MemberID    string  `json:"member_id"`
	ProjectID   string  `json:"project_id"`
	Role        string  `json:"role"`
	WeeklyHours float64 `json:"weekly_hours"`
}

// Funds links a grant to a project it funds. Unique per (grant, project).
type Funds struct {
	Base
	GrantID   string `json:"grant_id"`
	ProjectID string `json:"project_id"`
}

// Mentors records a mentorship window between two members. The row is
// "active" while EndDate is nil or on/after the evaluation clock.
type Mentors struct {
	Base
	MentorID  string     `json:"mentor_id"`
	MenteeID  string     `json:"mentee_id"`
	StartDate time.Time  `json:"start_date"`
	EndDate   *time.Time `json:"end_date"`
}

// ActiveAt reports whether the mentorship is active at the given instant.
func (m Mentors) ActiveAt(now time.Time) bool {
	return m.EndDate == nil || !m.EndDate.Before(now)
}

// UsesEquipment records a member's usage window on a piece of equipment.
// The row is "current" while StartDate is on/before the evaluation clock and
// EndDate is nil or on/after it.
type UsesEquipment struct {
	Base
	MemberID    string     `json:"member_id"`
	EquipmentID string     `json:"equipment_id"`
	StartDate   time.Time  `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
	Purpose     string     `json:"purpose"`
}

// CurrentAt reports whether the usage window covers the given instant.
func (u UsesEquipment) CurrentAt(now time.Time) bool {
	if u.StartDate.After(now) {
		return false
	}
	return u.EndDate == nil || !u.EndDate.Before(now)
}

// Authors links a member to a publication. Unique per (member, publication).
type Authors struct {
	Base
	MemberID      string `json:"member_id"`
	PublicationID string `json:"publication_id"`
}

// Change describes a mutation applied to an entity during a transaction.
type Change struct {
	Entity EntityType
	Action Action
	Before any
	After  any
}

// Action indicates the type of modification performed.
type Action string

// Change actions enumerate supported CRUD operations captured in the audit trail.
const (
	// ActionCreate indicates an entity was created.
	ActionCreate Action = "create"
	// ActionUpdate indicates an entity was updated.
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// ViolationCode identifies which invariant a violation reports.
type ViolationCode string

// Violation codes, one per enforced invariant.
const (
	CodeInvalidLeader              ViolationCode = "invalid_leader"
	CodeEquipmentAtCapacity        ViolationCode = "equipment_at_capacity"
	CodeMenteeAlreadyMentored      ViolationCode = "mentee_already_mentored"
	CodeInvalidMentorshipDirection ViolationCode = "invalid_mentorship_direction"
	CodeMemberKindMismatch         ViolationCode = "member_kind_mismatch"
)

// Violation reports a failed rule evaluation.
type Violation struct {
	Rule     string
	Code     ViolationCode
	Severity Severity
	Message  string
	Entity   EntityType
	EntityID string
}

// Result aggregates violations from the rules engine together with the
// change set the transaction committed (empty when the commit was blocked).
type Result struct {
	Violations []Violation
	Changes    []Change
}

// Merge appends violations from another result.
func (r *Result) Merge(other Result) {
	if len(other.Violations) == 0 {
		return
	}
	r.Violations = append(r.Violations, other.Violations...)
}

// HasBlocking returns true if the result contains blocking violations.
func (r Result) HasBlocking() bool {
	for _, v := range r.Violations {
		if v.Severity == SeverityBlock {
			return true
		}
	}
	return false
}

// RuleViolationError is returned when blocking violations are present.
type RuleViolationError struct {
	Result Result
}

func (e RuleViolationError) Error() string {
	return "transaction blocked by rules"
}

// Is matches the sentinel error corresponding to any blocking violation code
// in the result, so callers can use errors.Is(err, ErrEquipmentAtCapacity).
func (e RuleViolationError) Is(target error) bool {
	code, ok := sentinelCodes[target]
	if !ok {
		return false
	}
	for _, v := range e.Result.Violations {
		if v.Severity == SeverityBlock && v.Code == code {
			return true
		}
	}
	return false
}
