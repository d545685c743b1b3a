package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kakao/snorch/pkg/meta"
	"github.com/kakao/snorch/pkg/types"
)

func TestParseSettings(t *testing.T) {
	tcs := []struct {
		name    string
		in      string
		want    func() meta.ClusterSettings
		pass    string
		wantErr bool
	}{
		{
			name: "Empty",
			in:   "",
			want: meta.DefaultClusterSettings,
		},
		{
			name: "Partial",
			in:   "cqlPort: 9242\npassword: secret\n",
			want: func() meta.ClusterSettings {
				cs := meta.DefaultClusterSettings()
				cs.CQLPort = 9242
				return cs
			},
			pass: "secret",
		},
		{
			name: "Snapshots",
			in: `
username: admin
automaticDeployment: true
regularSnapshots:
  enabled: true
  schedule: "0 0 * * *"
  retentionStrategy: keepLastN
  count: 3
`,
			want: func() meta.ClusterSettings {
				cs := meta.DefaultClusterSettings()
				cs.Username = "admin"
				cs.AutomaticDeployment = true
				cs.RegularSnapshots = meta.SnapshotSettings{
					Enabled:           true,
					Schedule:          "0 0 * * *",
					RetentionStrategy: "keepLastN",
					Count:             3,
				}
				return cs
			},
		},
		{
			name:    "UnknownField",
			in:      "rack: r1\n",
			wantErr: true,
		},
		{
			name:    "PasswordHashRejected",
			in:      "passwordHash: abc\n",
			wantErr: true,
		},
		{
			name:    "InvalidPort",
			in:      "gossipPort: 0\n",
			wantErr: true,
		},
	}
	for _, tc := range tcs {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			sf, err := parseSettings([]byte(tc.in))
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tc.want(), sf.ClusterSettings)
			require.Equal(t, tc.pass, sf.Password)
		})
	}
}

func TestLoadSettings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(path, []byte("gossipPort: 7200\n"), 0o600))

	sf, err := loadSettings(path)
	require.NoError(t, err)
	assert.Equal(t, 7200, sf.GossipPort)
	assert.Equal(t, meta.DefaultCQLPort, sf.CQLPort)

	_, err = loadSettings(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestParseOperationTimeouts(t *testing.T) {
	timeouts, err := parseOperationTimeouts([]string{"repair=8h", "announce=30s"})
	require.NoError(t, err)
	require.Equal(t, map[types.OperationKind]time.Duration{
		types.KindRepair:   8 * time.Hour,
		types.KindAnnounce: 30 * time.Second,
	}, timeouts)

	for _, value := range []string{"repair", "rebuild=1h", "repair=forever", "repair=0s"} {
		_, err := parseOperationTimeouts([]string{value})
		require.Error(t, err, value)
	}
}

func TestStartCommandFlags(t *testing.T) {
	app := newApp()
	require.Len(t, app.Commands, 1)

	cmd := app.Commands[0]
	require.Equal(t, "start", cmd.Name)

	names := make(map[string]bool)
	for _, f := range cmd.Flags {
		for _, name := range f.Names() {
			names[name] = true
		}
	}
	for _, name := range []string{
		flagClusterID.Name, flagStoreKind.Name, flagSessionDriver.Name,
		flagAgentPath.Name, flagRepairInterval.Name, flagListen.Name, flagHealthListen.Name,
		"logdir", "telemetry-exporter",
	} {
		assert.True(t, names[name], name)
	}
}
