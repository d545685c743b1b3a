package types

import (
	"encoding/json"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestClusterID(t *testing.T) {
	cid, err := ParseClusterID("42")
	require.NoError(t, err)
	assert.Equal(t, ClusterID(42), cid)
	assert.Equal(t, "42", cid.String())

	_, err = ParseClusterID("4294967296")
	assert.Error(t, err)
}

func TestOperationID(t *testing.T) {
	assert.True(t, OperationID(0).Invalid())
	assert.False(t, OperationID(1).Invalid())

	opid, err := ParseOperationID("7")
	require.NoError(t, err)
	assert.Equal(t, "7", opid.String())
}

func TestOperationMode(t *testing.T) {
	Convey("OperationMode", t, func() {
		Convey("every valid mode should survive a text round trip", func() {
			for mode := ModeAnnounce; mode <= ModeUninstall; mode++ {
				text, err := mode.MarshalText()
				So(err, ShouldBeNil)

				var parsed OperationMode
				So(parsed.UnmarshalText(text), ShouldBeNil)
				So(parsed, ShouldEqual, mode)
			}
		})

		Convey("parsing should be case-insensitive", func() {
			mode, err := ParseOperationMode("add_maintenance")
			So(err, ShouldBeNil)
			So(mode, ShouldEqual, ModeAddMaintenance)
		})

		Convey("unknown names and the invalid mode should be rejected", func() {
			_, err := ParseOperationMode("JOINING")
			So(err, ShouldNotBeNil)
			_, err = ParseOperationMode("INVALID")
			So(err, ShouldNotBeNil)
			_, err = ModeInvalid.MarshalText()
			So(err, ShouldNotBeNil)
		})

		Convey("modes should be classified by direction", func() {
			So(ModeBootstrap.Deploying(), ShouldBeTrue)
			So(ModeNormal.Deploying(), ShouldBeFalse)
			So(ModeUnannounce.Undeploying(), ShouldBeTrue)
			So(ModeMaintenance.Undeploying(), ShouldBeFalse)
		})
	})
}

func TestOperationStatus(t *testing.T) {
	assert.False(t, StatusInProgress.Terminal())
	assert.True(t, StatusCanceled.Terminal())
	assert.True(t, StatusFailure.Terminal())
	assert.True(t, StatusSuccess.Terminal())

	var status OperationStatus
	require.NoError(t, json.Unmarshal([]byte(`"canceled"`), &status))
	assert.Equal(t, StatusCanceled, status)
	assert.Error(t, status.UnmarshalText([]byte("done")))
}

func TestOperationKind(t *testing.T) {
	tcs := []struct {
		kind     OperationKind
		name     string
		workflow Workflow
		timeout  time.Duration
	}{
		{kind: KindAnnounce, name: "announce", workflow: WorkflowDeployment, timeout: 300 * time.Second},
		{kind: KindPrepareForBootstrap, name: "prepareForBootstrap", workflow: WorkflowDeployment, timeout: 300 * time.Second},
		{kind: KindAddNodeMaintenance, name: "addNodeMaintenance", workflow: WorkflowDeployment, timeout: 28800 * time.Second},
		{kind: KindDecommission, name: "decommission", workflow: WorkflowUndeployment, timeout: 28800 * time.Second},
		{kind: KindRemoveNodeMaintenance, name: "removeNodeMaintenance", workflow: WorkflowUndeployment, timeout: 28800 * time.Second},
		{kind: KindUnannounce, name: "unannounce", workflow: WorkflowUndeployment, timeout: 300 * time.Second},
		{kind: KindUninstall, name: "uninstall", workflow: WorkflowUndeployment, timeout: 300 * time.Second},
		{kind: KindRepair, name: "repair", workflow: WorkflowRepair, timeout: 21600 * time.Second},
		{kind: KindUpdateConfiguration, name: "updateConfiguration", workflow: WorkflowReconfiguration, timeout: 300 * time.Second},
	}

	for _, tc := range tcs {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.name, tc.kind.String())
			assert.Equal(t, tc.workflow, tc.kind.Workflow())
			assert.Equal(t, tc.timeout, tc.kind.DefaultTimeout())

			parsed, err := ParseOperationKind(tc.name)
			require.NoError(t, err)
			assert.Equal(t, tc.kind, parsed)
		})
	}

	assert.False(t, KindInvalid.Valid())
	assert.Equal(t, WorkflowInvalid, KindInvalid.Workflow())
	assert.True(t, WorkflowRepair.Exclusive())
	assert.False(t, WorkflowReconfiguration.Exclusive())
}
