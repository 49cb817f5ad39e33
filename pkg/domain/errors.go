package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for invariant violations. RuleViolationError matches these
// through errors.Is based on the codes carried by its blocking violations.
var (
	ErrInvalidLeader              = errors.New("project leader must be a faculty member")
	ErrEquipmentAtCapacity        = errors.New("equipment concurrent-user capacity exceeded")
	ErrMenteeAlreadyMentored      = errors.New("mentee already has an active mentorship")
	ErrInvalidMentorshipDirection = errors.New("students may not mentor faculty")
	ErrMemberKindMismatch         = errors.New("detail row does not match member kind")
)

var sentinelCodes = map[error]ViolationCode{
	ErrInvalidLeader:              CodeInvalidLeader,
	ErrEquipmentAtCapacity:        CodeEquipmentAtCapacity,
	ErrMenteeAlreadyMentored:      CodeMenteeAlreadyMentored,
	ErrInvalidMentorshipDirection: CodeInvalidMentorshipDirection,
	ErrMemberKindMismatch:         CodeMemberKindMismatch,
}

// NotFoundError reports an absent key in one of the store collections.
type NotFoundError struct {
	Entity EntityType
	ID     string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Entity, e.ID)
}

// DuplicateKeyError reports a unique-constraint violation: an existing record
// ID or an already present relationship pair.
type DuplicateKeyError struct {
	Entity EntityType
	Key    string
}

func (e DuplicateKeyError) Error() string {
	return fmt.Sprintf("%s %q already exists", e.Entity, e.Key)
}

// DateRangeError reports an invalid temporal or numeric range caught before
// invariant evaluation: end before start, non-positive duration, hours out of
// bounds, negative budget.
type DateRangeError struct {
	Entity EntityType
	ID     string
	Reason string
}

func (e DateRangeError) Error() string {
	return fmt.Sprintf("%s %q: %s", e.Entity, e.ID, e.Reason)
}

// ConflictError reports a serialization failure under contention. Callers
// should retry the whole logical operation.
type ConflictError struct {
	Op string
}

func (e ConflictError) Error() string {
	return fmt.Sprintf("%s: transaction conflict, retry", e.Op)
}

// InternalInconsistencyError reports a failed derived-state recomputation.
// The triggering mutation is rolled back rather than leaving status stale.
type InternalInconsistencyError struct {
	Entity EntityType
	ID     string
	Reason string
}

func (e InternalInconsistencyError) Error() string {
	return fmt.Sprintf("derived state for %s %q inconsistent: %s", e.Entity, e.ID, e.Reason)
}

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var nf NotFoundError
	return errors.As(err, &nf)
}

// IsDuplicateKey reports whether err is a DuplicateKeyError.
func IsDuplicateKey(err error) bool {
	var dup DuplicateKeyError
	return errors.As(err, &dup)
}
