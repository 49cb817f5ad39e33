package core

import "labregistry/pkg/domain"

type (
	EntityType         = domain.EntityType
	MemberKind         = domain.MemberKind
	StudentLevel       = domain.StudentLevel
	ProjectStatus      = domain.ProjectStatus
	EquipmentStatus    = domain.EquipmentStatus
	Severity           = domain.Severity
	Base               = domain.Base
	Member             = domain.Member
	FacultyDetail      = domain.FacultyDetail
	StudentDetail      = domain.StudentDetail
	CollaboratorDetail = domain.CollaboratorDetail
	Project            = domain.Project
	Grant              = domain.Grant
	Equipment          = domain.Equipment
	Publication        = domain.Publication
	WorksOn            = domain.WorksOn
	Funds              = domain.Funds
	Mentors            = domain.Mentors
	UsesEquipment      = domain.UsesEquipment
	Authors            = domain.Authors
	Change             = domain.Change
	Action             = domain.Action
	Violation          = domain.Violation
	ViolationCode      = domain.ViolationCode
	Result             = domain.Result
	Rule               = domain.Rule
	RuleView           = domain.RuleView
	RulesEngine        = domain.RulesEngine
	RuleViolationError = domain.RuleViolationError
)

const (
	EntityMember             = domain.EntityMember
	EntityFacultyDetail      = domain.EntityFacultyDetail
	EntityStudentDetail      = domain.EntityStudentDetail
	EntityCollaboratorDetail = domain.EntityCollaboratorDetail
	EntityProject            = domain.EntityProject
	EntityGrant              = domain.EntityGrant
	EntityEquipment          = domain.EntityEquipment
	EntityPublication        = domain.EntityPublication
	EntityWorksOn            = domain.EntityWorksOn
	EntityFunds              = domain.EntityFunds
	EntityMentors            = domain.EntityMentors
	EntityUsesEquipment      = domain.EntityUsesEquipment
	EntityAuthors            = domain.EntityAuthors
)

const (
	KindFaculty      = domain.KindFaculty
	KindStudent      = domain.KindStudent
	KindCollaborator = domain.KindCollaborator
)

const (
	LevelFreshman  = domain.LevelFreshman
	LevelSophomore = domain.LevelSophomore
	LevelJunior    = domain.LevelJunior
	LevelSenior    = domain.LevelSenior
	LevelGraduate  = domain.LevelGraduate
)

const (
	ProjectActive    = domain.ProjectActive
	ProjectCompleted = domain.ProjectCompleted
	ProjectPaused    = domain.ProjectPaused
)

const (
	EquipmentAvailable = domain.EquipmentAvailable
	EquipmentInUse     = domain.EquipmentInUse
	EquipmentRetired   = domain.EquipmentRetired
)

const (
	SeverityBlock = domain.SeverityBlock
	SeverityWarn  = domain.SeverityWarn
	SeverityLog   = domain.SeverityLog
)

const (
	ActionCreate = domain.ActionCreate
	ActionUpdate = domain.ActionUpdate
	ActionDelete = domain.ActionDelete
)
