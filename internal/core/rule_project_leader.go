package core

import (
	"context"
	"fmt"

	"labregistry/pkg/domain"
)

// NewProjectLeaderRule returns the in-transaction rule requiring every set
// project leader to be a member with a faculty detail row.
func NewProjectLeaderRule() domain.Rule {
	return projectLeaderRule{}
}

type projectLeaderRule struct{}

func (projectLeaderRule) Name() string { return "project_leader" }

func (projectLeaderRule) Evaluate(_ context.Context, view domain.RuleView, _ []domain.Change) (domain.Result, error) {
	res := domain.Result{}
	for _, project := range view.ListProjects() {
		if project.LeaderID == nil {
			continue
		}
		leaderID := *project.LeaderID
		if _, ok := view.FindFacultyDetail(leaderID); ok {
			continue
		}
		message := fmt.Sprintf("project %s leader %s is not a faculty member", project.ID, leaderID)
		if _, ok := view.FindMember(leaderID); !ok {
			message = fmt.Sprintf("project %s leader %s does not exist", project.ID, leaderID)
		}
		res.Violations = append(res.Violations, domain.Violation{
			Rule:     "project_leader",
			Code:     domain.CodeInvalidLeader,
			Severity: domain.SeverityBlock,
			Message:  message,
			Entity:   domain.EntityProject,
			EntityID: project.ID,
		})
	}
	return res, nil
}
