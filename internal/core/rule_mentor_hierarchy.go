package core

import (
	"context"
	"fmt"

	"labregistry/pkg/domain"
)

// NewMentorHierarchyRule returns the in-transaction rule rejecting
// mentorships where a student mentors a faculty member. The rule applies to
// every mentorship row, active or ended.
func NewMentorHierarchyRule() domain.Rule {
	return mentorHierarchyRule{}
}

type mentorHierarchyRule struct{}

func (mentorHierarchyRule) Name() string { return "mentorship_hierarchy" }

func (mentorHierarchyRule) Evaluate(_ context.Context, view domain.RuleView, _ []domain.Change) (domain.Result, error) {
	res := domain.Result{}
	for _, row := range view.ListMentors() {
		mentor, ok := view.FindMember(row.MentorID)
		if !ok {
			continue
		}
		mentee, ok := view.FindMember(row.MenteeID)
		if !ok {
			continue
		}
		if mentor.Kind != domain.KindStudent || mentee.Kind != domain.KindFaculty {
			continue
		}
		res.Violations = append(res.Violations, domain.Violation{
			Rule:     "mentorship_hierarchy",
			Code:     domain.CodeInvalidMentorshipDirection,
			Severity: domain.SeverityBlock,
			Message:  fmt.Sprintf("student %s cannot mentor faculty %s", row.MentorID, row.MenteeID),
			Entity:   domain.EntityMentors,
			EntityID: row.ID,
		})
	}
	return res, nil
}
