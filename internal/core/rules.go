package core

import "labregistry/pkg/domain"

// NewRulesEngine constructs an empty engine instance.
func NewRulesEngine() *RulesEngine {
	return domain.NewRulesEngine()
}

// NewDefaultRulesEngine builds a rules engine with the built-in invariant set:
// project leadership, equipment capacity, mentorship exclusivity and
// hierarchy, and detail-kind consistency.
func NewDefaultRulesEngine() *RulesEngine {
	engine := NewRulesEngine()
	engine.Register(NewProjectLeaderRule())
	engine.Register(NewEquipmentCapacityRule())
	engine.Register(NewMentorExclusivityRule())
	engine.Register(NewMentorHierarchyRule())
	engine.Register(NewDetailKindRule())
	return engine
}
