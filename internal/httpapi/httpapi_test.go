package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap/zaptest"

	"github.com/kakao/snorch/internal/nodestore"
	"github.com/kakao/snorch/internal/orchestrator"
	"github.com/kakao/snorch/internal/remoteop"
	"github.com/kakao/snorch/internal/session"
	"github.com/kakao/snorch/pkg/meta"
	"github.com/kakao/snorch/pkg/types"
	"github.com/kakao/snorch/pkg/verrors"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newTestServer(t *testing.T) (*Server, *MockService) {
	t.Helper()
	ctrl := gomock.NewController(t)
	svc := NewMockService(ctrl)
	s, err := New(WithService(svc), WithLogger(zaptest.NewLogger(t)))
	require.NoError(t, err)
	return s, svc
}

func do(t *testing.T, s *Server, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v))
	return v
}

func TestServer_InvalidConfig(t *testing.T) {
	_, err := New()
	require.Error(t, err)

	svc := NewMockService(gomock.NewController(t))
	_, err = New(WithService(svc), WithListenAddress(""))
	require.Error(t, err)

	_, err = New(WithService(svc), WithRequestTimeout(-time.Second))
	require.Error(t, err)

	_, err = New(WithService(svc), WithLogger(nil))
	require.Error(t, err)
}

func TestServer_Healthz(t *testing.T) {
	s, _ := newTestServer(t)

	rec := do(t, s, http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "ok", decode[map[string]string](t, rec)["status"])

	rec = do(t, s, http.MethodPost, "/healthz", "")
	require.Equal(t, http.StatusMethodNotAllowed, rec.Code)

	rec = do(t, s, http.MethodGet, "/v2/nodes", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "NOT_FOUND", decode[errorResponse](t, rec).Code)
}

func TestServer_ListNodes(t *testing.T) {
	s, svc := newTestServer(t)

	svc.EXPECT().ListNodes(gomock.Any()).Return(nil, nil)
	rec := do(t, s, http.MethodGet, "/v1/nodes", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, `{"nodes":[]}`, rec.Body.String())

	svc.EXPECT().ListNodes(gomock.Any()).Return([]meta.StorageNode{
		{Address: "10.0.0.1", Mode: types.ModeNormal},
		{Address: "10.0.0.2", Mode: types.ModeBootstrap, ErrorMessage: "boom"},
	}, nil)
	rec = do(t, s, http.MethodGet, "/v1/nodes", "")
	require.Equal(t, http.StatusOK, rec.Code)
	rsp := decode[nodesResponse](t, rec)
	require.Len(t, rsp.Nodes, 2)
	require.Equal(t, types.ModeBootstrap, rsp.Nodes[1].Mode)
	require.Equal(t, "boom", rsp.Nodes[1].ErrorMessage)

	svc.EXPECT().ListNodes(gomock.Any()).Return(nil, errors.New("store down"))
	rec = do(t, s, http.MethodGet, "/v1/nodes", "")
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Equal(t, "INTERNAL", decode[errorResponse](t, rec).Code)
}

func TestServer_GetNode(t *testing.T) {
	s, svc := newTestServer(t)

	svc.EXPECT().GetNode(gomock.Any(), "10.0.0.1").Return(meta.StorageNode{
		Address: "10.0.0.1",
		Mode:    types.ModeMaintenance,
	}, nil)
	rec := do(t, s, http.MethodGet, "/v1/nodes/10.0.0.1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	sn := decode[meta.StorageNode](t, rec)
	require.Equal(t, "10.0.0.1", sn.Address)
	require.Equal(t, types.ModeMaintenance, sn.Mode)

	svc.EXPECT().GetNode(gomock.Any(), "10.0.0.9").Return(meta.StorageNode{}, verrors.ErrNotFound)
	rec = do(t, s, http.MethodGet, "/v1/nodes/10.0.0.9", "")
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Equal(t, "NOT_FOUND", decode[errorResponse](t, rec).Code)
}

func TestServer_AddNode(t *testing.T) {
	t.Run("WithResource", func(t *testing.T) {
		s, svc := newTestServer(t)
		svc.EXPECT().AddNode(gomock.Any(), meta.StorageNode{Address: "10.0.0.2", ResourceID: 7}).Return(nil)

		rec := do(t, s, http.MethodPost, "/v1/nodes/10.0.0.2", `{"resourceId":7}`)
		require.Equal(t, http.StatusAccepted, rec.Code)
		require.JSONEq(t, `{"workflow":"Deployment","nodes":["10.0.0.2"]}`, rec.Body.String())
	})

	t.Run("EmptyBody", func(t *testing.T) {
		s, svc := newTestServer(t)
		svc.EXPECT().AddNode(gomock.Any(), meta.StorageNode{Address: "10.0.0.2"}).Return(nil)

		rec := do(t, s, http.MethodPost, "/v1/nodes/10.0.0.2", "")
		require.Equal(t, http.StatusAccepted, rec.Code)
	})

	t.Run("UnknownField", func(t *testing.T) {
		s, _ := newTestServer(t)

		rec := do(t, s, http.MethodPost, "/v1/nodes/10.0.0.2", `{"rack":"r1"}`)
		require.Equal(t, http.StatusBadRequest, rec.Code)
		require.Equal(t, "INVALID_ARGUMENT", decode[errorResponse](t, rec).Code)
	})

	tcs := []struct {
		name string
		err  error
		code int
		ec   string
	}{
		{name: "AlreadyDeployed", err: verrors.ErrAlreadyDeployed, code: http.StatusConflict, ec: "ALREADY_DEPLOYED"},
		{name: "WorkflowInProgress", err: verrors.ErrWorkflowInProgress, code: http.StatusConflict, ec: "WORKFLOW_IN_PROGRESS"},
		{name: "Precondition", err: verrors.NewPreconditionError("cannot shrink"), code: http.StatusBadRequest, ec: "PRECONDITION_VIOLATION"},
		{name: "Configuration", err: verrors.NewConfigurationError("no members"), code: http.StatusBadRequest, ec: "CONFIGURATION_ERROR"},
		{name: "Stopped", err: verrors.ErrStopped, code: http.StatusServiceUnavailable, ec: "STOPPED"},
		{name: "SchemaUpdate", err: &verrors.SchemaUpdateError{Statement: "ALTER", Err: errors.New("down")}, code: http.StatusInternalServerError, ec: "SCHEMA_UPDATE_FAILURE"},
		{name: "Timeout", err: context.DeadlineExceeded, code: http.StatusGatewayTimeout, ec: "TIMEOUT"},
	}
	for _, tc := range tcs {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			s, svc := newTestServer(t)
			svc.EXPECT().AddNode(gomock.Any(), gomock.Any()).Return(tc.err)

			rec := do(t, s, http.MethodPost, "/v1/nodes/10.0.0.2", "")
			require.Equal(t, tc.code, rec.Code)
			rsp := decode[errorResponse](t, rec)
			require.Equal(t, tc.ec, rsp.Code)
			require.Equal(t, tc.err.Error(), rsp.Message)
		})
	}
}

func TestServer_RemoveNode(t *testing.T) {
	s, svc := newTestServer(t)

	svc.EXPECT().RemoveNode(gomock.Any(), "10.0.0.4").Return(nil)
	rec := do(t, s, http.MethodDelete, "/v1/nodes/10.0.0.4", "")
	require.Equal(t, http.StatusAccepted, rec.Code)
	require.JSONEq(t, `{"workflow":"Undeployment","nodes":["10.0.0.4"]}`, rec.Body.String())

	svc.EXPECT().RemoveNode(gomock.Any(), "10.0.0.1").Return(verrors.NewPreconditionError("last node"))
	rec = do(t, s, http.MethodDelete, "/v1/nodes/10.0.0.1", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServer_Repair(t *testing.T) {
	s, svc := newTestServer(t)

	svc.EXPECT().RepairCluster(gomock.Any()).Return(nil)
	rec := do(t, s, http.MethodPost, "/v1/repair", "")
	require.Equal(t, http.StatusAccepted, rec.Code)
	require.JSONEq(t, `{"workflow":"Repair"}`, rec.Body.String())

	svc.EXPECT().RunRepair(gomock.Any(), []string{"10.0.0.1", "10.0.0.3"}).Return(nil)
	rec = do(t, s, http.MethodPost, "/v1/repair", `{"addresses":["10.0.0.1","10.0.0.3"]}`)
	require.Equal(t, http.StatusAccepted, rec.Code)
	require.JSONEq(t, `{"workflow":"Repair","nodes":["10.0.0.1","10.0.0.3"]}`, rec.Body.String())

	svc.EXPECT().RepairCluster(gomock.Any()).Return(verrors.ErrWorkflowInProgress)
	rec = do(t, s, http.MethodPost, "/v1/repair", `{}`)
	require.Equal(t, http.StatusConflict, rec.Code)

	rec = do(t, s, http.MethodPost, "/v1/repair", `{"addresses":`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServer_Settings(t *testing.T) {
	s, svc := newTestServer(t)

	want := meta.DefaultClusterSettings()
	want.CQLPort = 9242
	svc.EXPECT().ClusterSettings(gomock.Any()).Return(want, nil)
	rec := do(t, s, http.MethodGet, "/v1/settings", "")
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, want, decode[meta.ClusterSettings](t, rec))

	gomock.InOrder(
		svc.EXPECT().UpdateClusterSettings(gomock.Any(), want, "secret").Return(nil),
		svc.EXPECT().ClusterSettings(gomock.Any()).Return(want, nil),
	)
	body, err := json.Marshal(updateSettingsRequest{ClusterSettings: want, NewPassword: "secret"})
	require.NoError(t, err)
	rec = do(t, s, http.MethodPut, "/v1/settings", string(body))
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, want, decode[meta.ClusterSettings](t, rec))

	svc.EXPECT().UpdateClusterSettings(gomock.Any(), gomock.Any(), "").Return(verrors.ErrInvalid)
	rec = do(t, s, http.MethodPut, "/v1/settings", `{"cqlPort":0}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestServer_Status(t *testing.T) {
	s, svc := newTestServer(t)

	svc.EXPECT().Status(gomock.Any()).Return(orchestrator.Status{
		ClusterID: 1,
		Workflow: &orchestrator.WorkflowStatus{
			Workflow: types.WorkflowRepair,
		},
		NodesByMode:  map[string]int{"NORMAL": 3},
		Modes:        []string{"NORMAL"},
		PendingNodes: []string{"10.0.0.2"},
	}, nil)
	rec := do(t, s, http.MethodGet, "/v1/status", "")
	require.Equal(t, http.StatusOK, rec.Code)

	st := decode[map[string]any](t, rec)
	require.EqualValues(t, 1, st["clusterID"])
	require.Equal(t, "Repair", st["workflow"].(map[string]any)["workflow"])
	require.Equal(t, []any{"10.0.0.2"}, st["pendingNodes"])
}

func TestServer_Recovery(t *testing.T) {
	s, svc := newTestServer(t)

	svc.EXPECT().Status(gomock.Any()).DoAndReturn(func(context.Context) (orchestrator.Status, error) {
		panic("unexpected")
	})
	rec := do(t, s, http.MethodGet, "/v1/status", "")
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.Equal(t, "INTERNAL", decode[errorResponse](t, rec).Code)
}

func TestServer_RequestTimeout(t *testing.T) {
	svc := NewMockService(gomock.NewController(t))
	s, err := New(WithService(svc), WithRequestTimeout(10*time.Millisecond))
	require.NoError(t, err)

	svc.EXPECT().RepairCluster(gomock.Any()).DoAndReturn(func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})
	rec := do(t, s, http.MethodPost, "/v1/repair", "")
	require.Equal(t, http.StatusGatewayTimeout, rec.Code)
}

func TestServer_Orchestrator(t *testing.T) {
	ctx := context.Background()
	logger := zaptest.NewLogger(t)

	store, err := nodestore.NewMemory(nodestore.WithLogger(logger))
	require.NoError(t, err)
	defer func() {
		assert.NoError(t, store.Close())
	}()
	_, err = store.Merge(ctx, meta.StorageNode{Address: "10.0.0.1", Mode: types.ModeNormal})
	require.NoError(t, err)

	executor, err := remoteop.NewLocalExecutor(
		remoteop.WithAgent(remoteop.AgentFunc(func(context.Context, remoteop.Request) error {
			return nil
		})),
		remoteop.WithLogger(logger),
	)
	require.NoError(t, err)
	defer func() {
		assert.NoError(t, executor.Close())
	}()

	orch, err := orchestrator.New(
		orchestrator.WithClusterID(1),
		orchestrator.WithNodeStore(store),
		orchestrator.WithExecutor(executor),
		orchestrator.WithSession(session.NewMemorySession(session.DefaultPrimaryKeyspace, session.DefaultAuthKeyspace)),
		orchestrator.WithLogger(logger),
	)
	require.NoError(t, err)
	require.NoError(t, orch.Start())
	defer func() {
		assert.NoError(t, orch.Close())
	}()

	s, err := New(WithService(orch), WithLogger(logger))
	require.NoError(t, err)
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()
	client := ts.Client()

	get := func(path string, v any) int {
		rsp, err := client.Get(ts.URL + path)
		require.NoError(t, err)
		defer func() {
			_ = rsp.Body.Close()
		}()
		if v != nil {
			require.NoError(t, json.NewDecoder(rsp.Body).Decode(v))
		}
		return rsp.StatusCode
	}

	rsp, err := client.Post(ts.URL+"/v1/nodes/10.0.0.2", "application/json", nil)
	require.NoError(t, err)
	require.NoError(t, rsp.Body.Close())
	require.Equal(t, http.StatusAccepted, rsp.StatusCode)

	require.Eventually(t, func() bool {
		var sn meta.StorageNode
		return get("/v1/nodes/10.0.0.2", &sn) == http.StatusOK && sn.Mode == types.ModeNormal
	}, 5*time.Second, 10*time.Millisecond)

	var nodes nodesResponse
	require.Equal(t, http.StatusOK, get("/v1/nodes", &nodes))
	require.Equal(t, []string{"10.0.0.1", "10.0.0.2"}, meta.Addresses(nodes.Nodes))

	rsp, err = client.Post(ts.URL+"/v1/nodes/10.0.0.1", "application/json", nil)
	require.NoError(t, err)
	require.NoError(t, rsp.Body.Close())
	require.Equal(t, http.StatusConflict, rsp.StatusCode)

	var settings meta.ClusterSettings
	require.Equal(t, http.StatusOK, get("/v1/settings", &settings))
	require.Equal(t, meta.DefaultCQLPort, settings.CQLPort)
	require.Empty(t, settings.PasswordHash)
}
