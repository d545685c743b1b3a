// Package meta defines the records kept by the orchestrator's node store.
package meta

import (
	"fmt"
	"time"

	"github.com/kakao/snorch/pkg/types"
)

// ResourceID refers to the managed resource backing a storage node in the
// inventory. Zero means the node has no managed resource yet.
type ResourceID int64

// OperationRef refers to a remote operation, typically the last one that
// failed on a node.
type OperationRef struct {
	ID     types.OperationID   `json:"id"`
	Kind   types.OperationKind `json:"kind"`
	Target string              `json:"target"`
}

func (ref OperationRef) String() string {
	return fmt.Sprintf("%s#%s@%s", ref.Kind, ref.ID, ref.Target)
}

// StorageNode is a member, or a candidate member, of the storage cluster.
type StorageNode struct {
	Address            string              `json:"address"`
	Mode               types.OperationMode `json:"mode"`
	MaintenancePending bool                `json:"maintenancePending"`
	ErrorMessage       string              `json:"errorMessage,omitempty"`
	FailedOperation    *OperationRef       `json:"failedOperation,omitempty"`
	ResourceID         ResourceID          `json:"resourceId,omitempty"`
	CreateTime         time.Time           `json:"createTime"`
	UpdateTime         time.Time           `json:"updateTime"`
}

// Clone returns a deep copy of the node.
func (sn StorageNode) Clone() StorageNode {
	if sn.FailedOperation != nil {
		ref := *sn.FailedOperation
		sn.FailedOperation = &ref
	}
	return sn
}

// HasResource returns true if the node is backed by a managed resource.
func (sn StorageNode) HasResource() bool {
	return sn.ResourceID != 0
}

// IsClusterMember returns true if the node serves data as a ring member.
func (sn StorageNode) IsClusterMember() bool {
	return sn.Mode == types.ModeNormal || sn.Mode == types.ModeMaintenance
}

// CanBeDeployed returns true if a deployment workflow may be started or
// resumed on the node.
func (sn StorageNode) CanBeDeployed() bool {
	return sn.Mode == types.ModeInvalid || sn.Mode.Deploying()
}

// CanBeUndeployed returns true if an undeployment workflow may be started or
// resumed on the node.
func (sn StorageNode) CanBeUndeployed() bool {
	return sn.Mode != types.ModeInvalid && sn.Mode != types.ModeMaintenance
}

// ClearError forgets the last failure recorded on the node.
func (sn *StorageNode) ClearError() {
	sn.ErrorMessage = ""
	sn.FailedOperation = nil
}

func (sn StorageNode) String() string {
	return fmt.Sprintf("%s(%s, pending=%t)", sn.Address, sn.Mode, sn.MaintenancePending)
}

// Addresses returns the addresses of the given nodes in order.
func Addresses(nodes []StorageNode) []string {
	addrs := make([]string, 0, len(nodes))
	for _, sn := range nodes {
		addrs = append(addrs, sn.Address)
	}
	return addrs
}
