package core

import (
	"context"
	"fmt"

	"labregistry/pkg/domain"
)

// MaxConcurrentEquipmentUsers caps the number of current usage rows per
// piece of equipment.
const MaxConcurrentEquipmentUsers = 3

// NewEquipmentCapacityRule returns the in-transaction rule enforcing the
// concurrent-user cap per equipment. It counts current usage rows in the
// post-mutation snapshot, so the row being written participates in its own
// count and the check-then-write sequence is indivisible from the caller's
// perspective.
func NewEquipmentCapacityRule() domain.Rule {
	return equipmentCapacityRule{}
}

type equipmentCapacityRule struct{}

func (equipmentCapacityRule) Name() string { return "equipment_capacity" }

func (equipmentCapacityRule) Evaluate(_ context.Context, view domain.RuleView, _ []domain.Change) (domain.Result, error) {
	now := view.Now()
	current := make(map[string]int)
	for _, usage := range view.ListUsesEquipment() {
		if usage.CurrentAt(now) {
			current[usage.EquipmentID]++
		}
	}

	res := domain.Result{}
	for _, eq := range view.ListEquipment() {
		count := current[eq.ID]
		if count <= MaxConcurrentEquipmentUsers {
			continue
		}
		res.Violations = append(res.Violations, domain.Violation{
			Rule:     "equipment_capacity",
			Code:     domain.CodeEquipmentAtCapacity,
			Severity: domain.SeverityBlock,
			Message:  fmt.Sprintf("equipment %s (%s) over concurrent-user cap: %d/%d", eq.Name, eq.ID, count, MaxConcurrentEquipmentUsers),
			Entity:   domain.EntityEquipment,
			EntityID: eq.ID,
		})
	}
	return res, nil
}
