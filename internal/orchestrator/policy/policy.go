// Package policy decides how the schema of the storage cluster follows its
// size when a single node joins or leaves.
package policy

import (
	"fmt"

	"github.com/kakao/snorch/pkg/verrors"
)

// ExpandedGCGraceSeconds is the gc_grace_seconds of the metric tables once a
// single node cluster grows to two nodes: 8 days.
const ExpandedGCGraceSeconds = 8 * 24 * 60 * 60

// SchemaUpdate is the schema change required by a cluster size transition.
type SchemaUpdate struct {
	PreviousSize int
	NewSize      int
	RepairNeeded bool
	// ReplicationFactor is the new replication factor of the primary and
	// auth keyspaces. Zero leaves it as is.
	ReplicationFactor int
	// GCGraceSeconds overrides gc_grace_seconds of the metric tables if
	// not nil.
	GCGraceSeconds *int
}

// Changed returns true if the update alters the schema.
func (su SchemaUpdate) Changed() bool {
	return su.ReplicationFactor > 0 || su.GCGraceSeconds != nil
}

func (su SchemaUpdate) String() string {
	gc := "unchanged"
	if su.GCGraceSeconds != nil {
		gc = fmt.Sprintf("%d", *su.GCGraceSeconds)
	}
	rf := "unchanged"
	if su.ReplicationFactor > 0 {
		rf = fmt.Sprintf("%d", su.ReplicationFactor)
	}
	return fmt.Sprintf("%d->%d(repair=%t, rf=%s, gc_grace_seconds=%s)",
		su.PreviousSize, su.NewSize, su.RepairNeeded, rf, gc)
}

// Decide returns the schema update for a cluster growing or shrinking from
// previousSize to newSize nodes. The sizes must differ by exactly one.
// Transitions outside the supported envelope return a PreconditionError.
func Decide(previousSize, newSize int) (SchemaUpdate, error) {
	su := SchemaUpdate{PreviousSize: previousSize, NewSize: newSize}
	if previousSize <= 0 || newSize <= 0 {
		return su, verrors.NewPreconditionError("invalid cluster size transition %d->%d: sizes must be positive", previousSize, newSize)
	}
	if diff := newSize - previousSize; diff != 1 && diff != -1 {
		return su, verrors.NewPreconditionError("invalid cluster size transition %d->%d: one node at a time", previousSize, newSize)
	}

	switch {
	case newSize == 1:
		su.ReplicationFactor = 1
		su.GCGraceSeconds = intPtr(0)
	case newSize >= 5:
	case previousSize == 4 && newSize == 3:
		su.RepairNeeded = true
		su.ReplicationFactor = 2
	case previousSize == 3 && newSize == 2:
	case previousSize == 1 && newSize == 2:
		su.RepairNeeded = true
		su.ReplicationFactor = 2
		su.GCGraceSeconds = intPtr(ExpandedGCGraceSeconds)
	case previousSize == 2 && newSize == 3:
	case previousSize == 3 && newSize == 4:
		su.RepairNeeded = true
		su.ReplicationFactor = 3
	default:
		return su, verrors.NewPreconditionError("unsupported cluster size transition %d->%d", previousSize, newSize)
	}
	return su, nil
}

// Validate checks that the transition is supported without deciding
// anything else.
func Validate(previousSize, newSize int) error {
	_, err := Decide(previousSize, newSize)
	return err
}

func intPtr(n int) *int {
	return &n
}
