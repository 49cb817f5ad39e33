package core

import (
	"context"
	"fmt"

	"labregistry/pkg/domain"
)

// NewMentorExclusivityRule returns the in-transaction rule allowing at most
// one active mentorship per mentee, irrespective of mentor.
func NewMentorExclusivityRule() domain.Rule {
	return mentorExclusivityRule{}
}

type mentorExclusivityRule struct{}

func (mentorExclusivityRule) Name() string { return "mentorship_exclusivity" }

func (mentorExclusivityRule) Evaluate(_ context.Context, view domain.RuleView, _ []domain.Change) (domain.Result, error) {
	now := view.Now()
	active := make(map[string][]domain.Mentors)
	for _, row := range view.ListMentors() {
		if row.ActiveAt(now) {
			active[row.MenteeID] = append(active[row.MenteeID], row)
		}
	}

	res := domain.Result{}
	for menteeID, rows := range active {
		if len(rows) <= 1 {
			continue
		}
		// Blame the newest row so the pre-existing mentorship stays described
		// as the surviving one.
		offending := rows[0]
		for _, row := range rows[1:] {
			if row.CreatedAt.After(offending.CreatedAt) {
				offending = row
			}
		}
		res.Violations = append(res.Violations, domain.Violation{
			Rule:     "mentorship_exclusivity",
			Code:     domain.CodeMenteeAlreadyMentored,
			Severity: domain.SeverityBlock,
			Message:  fmt.Sprintf("mentee %s has %d active mentorships; at most one allowed", menteeID, len(rows)),
			Entity:   domain.EntityMentors,
			EntityID: offending.ID,
		})
	}
	return res, nil
}
