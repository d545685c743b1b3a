package meta

import (
	"crypto/sha256"
	"encoding/hex"
)

const (
	DefaultCQLPort    = 9142
	DefaultGossipPort = 7100
	DefaultUsername   = "rhqadmin"
)

// ClusterSettings are the cluster-wide settings handed to node agents and
// used to authenticate against the storage cluster.
type ClusterSettings struct {
	CQLPort             int              `json:"cqlPort" yaml:"cqlPort"`
	GossipPort          int              `json:"gossipPort" yaml:"gossipPort"`
	Username            string           `json:"username" yaml:"username"`
	PasswordHash        string           `json:"passwordHash,omitempty" yaml:"-"`
	AutomaticDeployment bool             `json:"automaticDeployment" yaml:"automaticDeployment"`
	RegularSnapshots    SnapshotSettings `json:"regularSnapshots" yaml:"regularSnapshots"`
}

// SnapshotSettings configure the periodic snapshots taken by node agents.
type SnapshotSettings struct {
	Enabled           bool   `json:"enabled" yaml:"enabled"`
	Schedule          string `json:"schedule,omitempty" yaml:"schedule"`
	RetentionStrategy string `json:"retentionStrategy,omitempty" yaml:"retentionStrategy"`
	Count             int    `json:"count,omitempty" yaml:"count"`
	DeletionStrategy  string `json:"deletionStrategy,omitempty" yaml:"deletionStrategy"`
	Location          string `json:"location,omitempty" yaml:"location"`
}

func DefaultClusterSettings() ClusterSettings {
	return ClusterSettings{
		CQLPort:    DefaultCQLPort,
		GossipPort: DefaultGossipPort,
		Username:   DefaultUsername,
	}
}

// PortsChanged returns true if agents must be reconfigured to move from cs
// to other.
func (cs ClusterSettings) PortsChanged(other ClusterSettings) bool {
	return cs.CQLPort != other.CQLPort || cs.GossipPort != other.GossipPort
}

// HashPassword returns the unsalted SHA-256 hex digest of password. The
// digest is only compared with the stored one to detect a password change.
// It is not suitable for storing or verifying credentials.
func HashPassword(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}

// ReplicationSettings is a read-only view of the replication factors in the
// live schema.
type ReplicationSettings struct {
	PrimaryReplicationFactor int `json:"primaryReplicationFactor"`
	AuthReplicationFactor    int `json:"authReplicationFactor"`
}
