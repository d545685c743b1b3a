package session

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"

	"github.com/kakao/snorch/pkg/meta"
)

var (
	alterKeyspaceRE = regexp.MustCompile(`^ALTER KEYSPACE (\w+) WITH replication = \{.*'replication_factor': (\d+)\}$`)
	alterTableRE    = regexp.MustCompile(`^ALTER (?:TABLE|COLUMNFAMILY) (\w+)\.(\w+) WITH gc_grace_seconds = (\d+)$`)
	alterUserRE     = regexp.MustCompile(`^ALTER USER '((?:[^']|'')*)' WITH PASSWORD '((?:[^']|'')*)'$`)
)

// MemorySession keeps a model of the schema in memory. It backs dry runs of
// the daemon and tests.
type MemorySession struct {
	mu                 sync.Mutex
	statements         []string
	replicationFactors map[string]int
	gcGraceSeconds     map[string]int
	passwords          map[string]string
	primaryKeyspace    string
	authKeyspace       string
	failure            func(statement string) error
}

var (
	_ Session        = (*MemorySession)(nil)
	_ SchemaMetadata = (*MemorySession)(nil)
)

// NewMemorySession returns a session whose keyspaces start with
// replication factor 1.
func NewMemorySession(primaryKeyspace, authKeyspace string) *MemorySession {
	return &MemorySession{
		replicationFactors: map[string]int{primaryKeyspace: 1, authKeyspace: 1},
		gcGraceSeconds:     make(map[string]int),
		passwords:          make(map[string]string),
		primaryKeyspace:    primaryKeyspace,
		authKeyspace:       authKeyspace,
	}
}

// FailWith makes Execute return the error returned by f. A nil error lets
// the statement through.
func (s *MemorySession) FailWith(f func(statement string) error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failure = f
}

func (s *MemorySession) Execute(ctx context.Context, statement string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.failure != nil {
		if err := s.failure(statement); err != nil {
			return err
		}
	}

	switch {
	case alterKeyspaceRE.MatchString(statement):
		m := alterKeyspaceRE.FindStringSubmatch(statement)
		rf, _ := strconv.Atoi(m[2])
		s.replicationFactors[m[1]] = rf
	case alterTableRE.MatchString(statement):
		m := alterTableRE.FindStringSubmatch(statement)
		gc, _ := strconv.Atoi(m[3])
		s.gcGraceSeconds[m[1]+"."+m[2]] = gc
	case alterUserRE.MatchString(statement):
		m := alterUserRE.FindStringSubmatch(statement)
		s.passwords[unquote(m[1])] = unquote(m[2])
	default:
		return fmt.Errorf("session: unsupported statement %q", statement)
	}
	s.statements = append(s.statements, statement)
	return nil
}

func (s *MemorySession) ReplicationSettings(ctx context.Context) (meta.ReplicationSettings, error) {
	if err := ctx.Err(); err != nil {
		return meta.ReplicationSettings{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return meta.ReplicationSettings{
		PrimaryReplicationFactor: s.replicationFactors[s.primaryKeyspace],
		AuthReplicationFactor:    s.replicationFactors[s.authKeyspace],
	}, nil
}

// Statements returns the statements executed successfully so far.
func (s *MemorySession) Statements() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.statements...)
}

func (s *MemorySession) ReplicationFactor(keyspace string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.replicationFactors[keyspace]
}

// GCGraceSeconds returns the gc_grace_seconds of keyspace.table and whether
// it has ever been altered.
func (s *MemorySession) GCGraceSeconds(keyspace, table string) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	gc, ok := s.gcGraceSeconds[keyspace+"."+table]
	return gc, ok
}

func (s *MemorySession) Password(username string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	password, ok := s.passwords[username]
	return password, ok
}

func unquote(s string) string {
	return strings.ReplaceAll(s, "''", "'")
}
