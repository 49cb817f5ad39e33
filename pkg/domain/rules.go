package domain

import (
	"context"
	"time"
)

// RuleView provides read-only access to domain entities for rule evaluation.
// Now returns the evaluation clock of the enclosing transaction so rules can
// judge "current" and "active" windows deterministically.
type RuleView interface {
	Now() time.Time
	ListMembers() []Member
	ListFacultyDetails() []FacultyDetail
	ListStudentDetails() []StudentDetail
	ListCollaboratorDetails() []CollaboratorDetail
	ListProjects() []Project
	ListGrants() []Grant
	ListEquipment() []Equipment
	ListPublications() []Publication
	ListWorksOn() []WorksOn
	ListFunds() []Funds
	ListMentors() []Mentors
	ListUsesEquipment() []UsesEquipment
	ListAuthors() []Authors
	FindMember(id string) (Member, bool)
	FindFacultyDetail(memberID string) (FacultyDetail, bool)
	FindStudentDetail(memberID string) (StudentDetail, bool)
	FindCollaboratorDetail(memberID string) (CollaboratorDetail, bool)
	FindProject(id string) (Project, bool)
	FindGrant(id string) (Grant, bool)
	FindEquipment(id string) (Equipment, bool)
	FindPublication(id string) (Publication, bool)
}

// Rule defines an evaluation executed within a transaction boundary.
type Rule interface {
	Name() string
	Evaluate(ctx context.Context, view RuleView, changes []Change) (Result, error)
}

// RulesEngine orchestrates rule evaluation.
type RulesEngine struct {
	rules []Rule
}

// NewRulesEngine constructs an engine instance.
func NewRulesEngine() *RulesEngine {
	return &RulesEngine{}
}

// Register appends a rule to the engine.
func (e *RulesEngine) Register(rule Rule) {
	e.rules = append(e.rules, rule)
}

// Evaluate executes all registered rules and aggregates their results.
func (e *RulesEngine) Evaluate(ctx context.Context, view RuleView, changes []Change) (Result, error) {
	var combined Result
	for _, rule := range e.rules {
		res, err := rule.Evaluate(ctx, view, changes)
		if err != nil {
			return Result{}, err
		}
		combined.Merge(res)
	}
	return combined, nil
}
