package types

import (
	"fmt"
	"time"
)

// OperationKind is the kind of remote operation run against a storage node.
type OperationKind int8

const (
	KindInvalid OperationKind = iota
	KindAnnounce
	KindPrepareForBootstrap
	KindAddNodeMaintenance
	KindDecommission
	KindRemoveNodeMaintenance
	KindUnannounce
	KindUninstall
	KindRepair
	KindUpdateConfiguration
)

var operationKindNames = [...]string{
	KindInvalid:               "invalid",
	KindAnnounce:              "announce",
	KindPrepareForBootstrap:   "prepareForBootstrap",
	KindAddNodeMaintenance:    "addNodeMaintenance",
	KindDecommission:          "decommission",
	KindRemoveNodeMaintenance: "removeNodeMaintenance",
	KindUnannounce:            "unannounce",
	KindUninstall:             "uninstall",
	KindRepair:                "repair",
	KindUpdateConfiguration:   "updateConfiguration",
}

// String returns the name of the operation understood by node agents.
func (kind OperationKind) String() string {
	if kind < 0 || int(kind) >= len(operationKindNames) {
		return fmt.Sprintf("OperationKind(%d)", int8(kind))
	}
	return operationKindNames[kind]
}

func (kind OperationKind) Valid() bool {
	return kind > KindInvalid && int(kind) < len(operationKindNames)
}

func ParseOperationKind(s string) (OperationKind, error) {
	for kind, name := range operationKindNames {
		if kind != int(KindInvalid) && name == s {
			return OperationKind(kind), nil
		}
	}
	return KindInvalid, fmt.Errorf("invalid operation kind %q", s)
}

// Workflow returns the cluster-wide workflow the operation belongs to.
func (kind OperationKind) Workflow() Workflow {
	switch kind {
	case KindAnnounce, KindPrepareForBootstrap, KindAddNodeMaintenance:
		return WorkflowDeployment
	case KindDecommission, KindRemoveNodeMaintenance, KindUnannounce, KindUninstall:
		return WorkflowUndeployment
	case KindRepair:
		return WorkflowRepair
	case KindUpdateConfiguration:
		return WorkflowReconfiguration
	default:
		return WorkflowInvalid
	}
}

// DefaultTimeout returns the timeout passed down to the executor when the
// caller does not set one.
func (kind OperationKind) DefaultTimeout() time.Duration {
	switch kind {
	case KindAddNodeMaintenance, KindRemoveNodeMaintenance, KindDecommission:
		return DefaultMembershipMaintenanceTimeout
	case KindRepair:
		return DefaultRepairTimeout
	default:
		return DefaultShortOperationTimeout
	}
}

func (kind OperationKind) MarshalText() ([]byte, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("invalid operation kind %d", int8(kind))
	}
	return []byte(kind.String()), nil
}

func (kind *OperationKind) UnmarshalText(text []byte) error {
	k, err := ParseOperationKind(string(text))
	if err != nil {
		return err
	}
	*kind = k
	return nil
}

// Workflow is a cluster-wide sequence of remote operations.
type Workflow int8

const (
	WorkflowInvalid Workflow = iota
	WorkflowDeployment
	WorkflowUndeployment
	WorkflowRepair
	WorkflowReconfiguration
)

func (wf Workflow) String() string {
	switch wf {
	case WorkflowDeployment:
		return "Deployment"
	case WorkflowUndeployment:
		return "Undeployment"
	case WorkflowRepair:
		return "Repair"
	case WorkflowReconfiguration:
		return "Reconfiguration"
	default:
		return fmt.Sprintf("Workflow(%d)", int8(wf))
	}
}

// Exclusive returns true if at most one workflow of this kind may be in
// flight across the cluster.
func (wf Workflow) Exclusive() bool {
	return wf == WorkflowDeployment || wf == WorkflowUndeployment || wf == WorkflowRepair
}

func (wf Workflow) MarshalText() ([]byte, error) {
	return []byte(wf.String()), nil
}
