package session

import (
	"fmt"
	"strings"
)

const (
	DefaultPrimaryKeyspace = "rhq"
	DefaultAuthKeyspace    = "system_auth"
)

// DefaultGCGraceTables are the tables of the primary keyspace whose
// gc_grace_seconds follows the cluster size.
var DefaultGCGraceTables = []string{
	"metrics_index",
	"raw_metrics",
	"one_hour_metrics",
	"six_hour_metrics",
	"twenty_four_hour_metrics",
}

func AlterKeyspaceReplication(keyspace string, replicationFactor int) string {
	return fmt.Sprintf("ALTER KEYSPACE %s WITH replication = {'class': 'SimpleStrategy', 'replication_factor': %d}",
		keyspace, replicationFactor)
}

func AlterTableGCGrace(keyspace, table string, gcGraceSeconds int) string {
	return fmt.Sprintf("ALTER TABLE %s.%s WITH gc_grace_seconds = %d", keyspace, table, gcGraceSeconds)
}

func AlterUserPassword(username, password string) string {
	return fmt.Sprintf("ALTER USER '%s' WITH PASSWORD '%s'", quote(username), quote(password))
}

func quote(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}
