package types

import (
	"fmt"
	"strconv"
	"time"
)

type ClusterID int32

var _ fmt.Stringer = (*ClusterID)(nil)

func ParseClusterID(s string) (ClusterID, error) {
	id, err := strconv.ParseInt(s, 10, 32)
	return ClusterID(id), err
}

func (cid ClusterID) String() string {
	return strconv.FormatInt(int64(cid), 10)
}

// OperationID identifies a remote operation scheduled by an executor. Zero
// means the operation has not been scheduled yet.
type OperationID uint64

var _ fmt.Stringer = (*OperationID)(nil)

func ParseOperationID(s string) (OperationID, error) {
	id, err := strconv.ParseUint(s, 10, 64)
	return OperationID(id), err
}

func (opid OperationID) String() string {
	return strconv.FormatUint(uint64(opid), 10)
}

func (opid OperationID) Invalid() bool {
	return opid == 0
}

// Default timeouts of remote operations.
const (
	DefaultShortOperationTimeout        = 300 * time.Second
	DefaultMembershipMaintenanceTimeout = 8 * time.Hour
	DefaultRepairTimeout                = 6 * time.Hour
)
