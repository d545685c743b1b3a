package types

import (
	"fmt"
	"strings"
)

// OperationMode is the state of a storage node in its lifecycle.
type OperationMode int8

const (
	ModeInvalid OperationMode = iota
	ModeAnnounce
	ModeBootstrap
	ModeAddMaintenance
	ModeNormal
	ModeMaintenance
	ModeDecommission
	ModeRemoveMaintenance
	ModeUnannounce
	ModeUninstall
)

var operationModeNames = [...]string{
	ModeInvalid:           "INVALID",
	ModeAnnounce:          "ANNOUNCE",
	ModeBootstrap:         "BOOTSTRAP",
	ModeAddMaintenance:    "ADD_MAINTENANCE",
	ModeNormal:            "NORMAL",
	ModeMaintenance:       "MAINTENANCE",
	ModeDecommission:      "DECOMMISSION",
	ModeRemoveMaintenance: "REMOVE_MAINTENANCE",
	ModeUnannounce:        "UNANNOUNCE",
	ModeUninstall:         "UNINSTALL",
}

var _ fmt.Stringer = ModeInvalid

func ParseOperationMode(s string) (OperationMode, error) {
	name := strings.ToUpper(strings.TrimSpace(s))
	for mode, modeName := range operationModeNames {
		if mode != int(ModeInvalid) && modeName == name {
			return OperationMode(mode), nil
		}
	}
	return ModeInvalid, fmt.Errorf("invalid operation mode %q", s)
}

func (mode OperationMode) String() string {
	if mode < 0 || int(mode) >= len(operationModeNames) {
		return fmt.Sprintf("OperationMode(%d)", int8(mode))
	}
	return operationModeNames[mode]
}

func (mode OperationMode) Valid() bool {
	return mode > ModeInvalid && int(mode) < len(operationModeNames)
}

// Deploying returns true if the node is on the way into the cluster.
func (mode OperationMode) Deploying() bool {
	return mode == ModeAnnounce || mode == ModeBootstrap || mode == ModeAddMaintenance
}

// Undeploying returns true if the node is on the way out of the cluster.
func (mode OperationMode) Undeploying() bool {
	switch mode {
	case ModeDecommission, ModeRemoveMaintenance, ModeUnannounce, ModeUninstall:
		return true
	default:
		return false
	}
}

func (mode OperationMode) MarshalText() ([]byte, error) {
	if !mode.Valid() {
		return nil, fmt.Errorf("invalid operation mode %d", int8(mode))
	}
	return []byte(mode.String()), nil
}

func (mode *OperationMode) UnmarshalText(text []byte) error {
	m, err := ParseOperationMode(string(text))
	if err != nil {
		return err
	}
	*mode = m
	return nil
}

// OperationStatus is the status of a remote operation reported by an
// executor.
type OperationStatus int8

const (
	StatusInvalid OperationStatus = iota
	StatusInProgress
	StatusCanceled
	StatusFailure
	StatusSuccess
)

func (status OperationStatus) String() string {
	switch status {
	case StatusInProgress:
		return "INPROGRESS"
	case StatusCanceled:
		return "CANCELED"
	case StatusFailure:
		return "FAILURE"
	case StatusSuccess:
		return "SUCCESS"
	default:
		return fmt.Sprintf("OperationStatus(%d)", int8(status))
	}
}

// Terminal returns true if no further status follows.
func (status OperationStatus) Terminal() bool {
	return status == StatusCanceled || status == StatusFailure || status == StatusSuccess
}

func (status OperationStatus) MarshalText() ([]byte, error) {
	return []byte(status.String()), nil
}

func (status *OperationStatus) UnmarshalText(text []byte) error {
	switch strings.ToUpper(string(text)) {
	case "INPROGRESS":
		*status = StatusInProgress
	case "CANCELED":
		*status = StatusCanceled
	case "FAILURE":
		*status = StatusFailure
	case "SUCCESS":
		*status = StatusSuccess
	default:
		return fmt.Errorf("invalid operation status %q", text)
	}
	return nil
}
