package core

import (
	"context"
	"fmt"

	"labregistry/pkg/domain"
)

// NewDetailKindRule returns the in-transaction rule requiring each
// specialization detail row to belong to a member of the matching kind.
func NewDetailKindRule() domain.Rule {
	return detailKindRule{}
}

type detailKindRule struct{}

func (detailKindRule) Name() string { return "member_detail_kind" }

func (detailKindRule) Evaluate(_ context.Context, view domain.RuleView, _ []domain.Change) (domain.Result, error) {
	res := domain.Result{}

	check := func(entity domain.EntityType, memberID string, want domain.MemberKind) {
		member, ok := view.FindMember(memberID)
		if !ok {
			res.Violations = append(res.Violations, domain.Violation{
				Rule:     "member_detail_kind",
				Code:     domain.CodeMemberKindMismatch,
				Severity: domain.SeverityBlock,
				Message:  fmt.Sprintf("%s row references missing member %s", entity, memberID),
				Entity:   entity,
				EntityID: memberID,
			})
			return
		}
		if member.Kind == want {
			return
		}
		res.Violations = append(res.Violations, domain.Violation{
			Rule:     "member_detail_kind",
			Code:     domain.CodeMemberKindMismatch,
			Severity: domain.SeverityBlock,
			Message:  fmt.Sprintf("%s row for member %s conflicts with kind %s", entity, memberID, member.Kind),
			Entity:   entity,
			EntityID: memberID,
		})
	}

	for _, d := range view.ListFacultyDetails() {
		check(domain.EntityFacultyDetail, d.MemberID, domain.KindFaculty)
	}
	for _, d := range view.ListStudentDetails() {
		check(domain.EntityStudentDetail, d.MemberID, domain.KindStudent)
	}
	for _, d := range view.ListCollaboratorDetails() {
		check(domain.EntityCollaboratorDetail, d.MemberID, domain.KindCollaborator)
	}
	return res, nil
}
